package interceptor

import (
	"context"
	"errors"

	"github.com/golang-jwt/jwt/v5"

	"github.com/stageflow/stageflow/events"
	"github.com/stageflow/stageflow/stageerrors"
)

// TokenValidator validates a bearer token and returns its claims, or an
// error from the bundled taxonomy.
type TokenValidator interface {
	Validate(token string) (jwt.MapClaims, error)
}

// JWTValidator is the bundled TokenValidator, backed by golang-jwt/jwt/v5.
type JWTValidator struct {
	KeyFunc jwt.Keyfunc
}

// Validate parses and verifies token, translating jwt/v5's errors into the
// stageerrors auth taxonomy.
func (v *JWTValidator) Validate(token string) (jwt.MapClaims, error) {
	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, v.KeyFunc)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, &stageerrors.TokenExpiredError{}
		}
		return nil, &stageerrors.InvalidTokenError{Reason: err.Error()}
	}
	if !parsed.Valid {
		return nil, &stageerrors.InvalidTokenError{Reason: "token failed validation"}
	}
	return claims, nil
}

// Auth is the bundled token-validation + org-enforcement interceptor. It
// reads a bearer token and a resource org identifier out of the run's
// extensions (keys "auth_token" and "resource_org"), validates the token,
// and rejects cross-tenant access when the caller's org claim disagrees
// with the resource's org.
type Auth struct {
	Base
	Validator   TokenValidator
	TokenKey    string
	OrgClaimKey string
}

// NewAuth builds an Auth interceptor. tokenKey/orgClaimKey default to
// "auth_token"/"org_id" when empty.
func NewAuth(priority int, validator TokenValidator, tokenKey, orgClaimKey string) *Auth {
	if tokenKey == "" {
		tokenKey = "auth_token"
	}
	if orgClaimKey == "" {
		orgClaimKey = "org_id"
	}
	return &Auth{
		Base:        Base{NameValue: "auth", PriorityValue: priority},
		Validator:   validator,
		TokenKey:    tokenKey,
		OrgClaimKey: orgClaimKey,
	}
}

func (a *Auth) BeforeStage(_ context.Context, ictx *InterceptorContext) (BeforeResult, error) {
	token, _ := ictx.Snapshot.Extensions[a.TokenKey].(string)
	if token == "" {
		// No token presented: auth is a no-op unless a stage explicitly
		// requires it (that's the stage's own concern, not this hook's).
		return BeforeResult{Action: Continue}, nil
	}

	claims, err := a.Validator.Validate(token)
	if err != nil {
		events.Emit(ictx.Sink, "auth.failure", ictx.PipelineRunID, map[string]any{"stage": ictx.StageName, "error": err.Error()})
		return BeforeResult{Action: FailStage, Err: err.Error()}, nil
	}
	events.Emit(ictx.Sink, "auth.login", ictx.PipelineRunID, map[string]any{"stage": ictx.StageName})

	resourceOrg, _ := ictx.Snapshot.Extensions["resource_org"].(string)
	if resourceOrg == "" {
		return BeforeResult{Action: Continue}, nil
	}
	callerOrg, _ := claims[a.OrgClaimKey].(string)
	if callerOrg == "" {
		return BeforeResult{Action: FailStage, Err: (&stageerrors.MissingClaimsError{Claim: a.OrgClaimKey}).Error()}, nil
	}
	if callerOrg != resourceOrg {
		events.Emit(ictx.Sink, "tenant.access_denied", ictx.PipelineRunID, map[string]any{
			"stage": ictx.StageName, "resource_org": resourceOrg, "caller_org": callerOrg,
		})
		return BeforeResult{
			Action: FailStage,
			Err:    (&stageerrors.CrossTenantAccessError{ResourceOrg: resourceOrg, CallerOrg: callerOrg}).Error(),
		}, nil
	}
	return BeforeResult{Action: Continue}, nil
}
