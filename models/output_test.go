package models

import "testing"

func TestFailRequiresError(t *testing.T) {
	out := StageOutput{Status: StatusFail}
	if err := out.Validate(); err == nil {
		t.Fatal("expected error for FAIL without Error")
	}
	out = Fail("boom", nil)
	if err := out.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSkipAndCancelRequireReason(t *testing.T) {
	if err := (StageOutput{Status: StatusSkip}).Validate(); err == nil {
		t.Fatal("expected error for SKIP without Reason")
	}
	if err := (StageOutput{Status: StatusCancel}).Validate(); err == nil {
		t.Fatal("expected error for CANCEL without Reason")
	}
	if err := Skip("not applicable").Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := Cancel("user cancelled", nil).Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestOKDataIsClonedNotShared(t *testing.T) {
	data := map[string]any{"x": 1}
	out := OK(data)
	data["x"] = 2
	if out.Data["x"] != 1 {
		t.Fatalf("expected output data to be insulated from caller mutation, got %v", out.Data["x"])
	}
}

func TestWithVersionArtifactsEvents(t *testing.T) {
	out := OK(map[string]any{"a": 1}).
		WithVersion("v1").
		WithArtifacts(StageArtifact{Type: "doc", Payload: "x"}).
		WithEvents(StageEvent{Type: "note", Data: map[string]any{"k": "v"}})

	if out.Version != "v1" {
		t.Fatalf("got version %q", out.Version)
	}
	if len(out.Artifacts) != 1 || out.Artifacts[0].Type != "doc" {
		t.Fatalf("unexpected artifacts: %+v", out.Artifacts)
	}
	if len(out.Events) != 1 || out.Events[0].Type != "note" {
		t.Fatalf("unexpected events: %+v", out.Events)
	}
}
