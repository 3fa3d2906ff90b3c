package events

import "sync/atomic"

// ambientSink backs the process-wide default, used only as a convenience
// for callers that have not threaded an explicit Sink through their
// StageContext. Every StageContext field wins over this default; it is not
// a replacement for explicit threading.
var ambientSink atomic.Value

func init() {
	ambientSink.Store(Sink(NopSink{}))
}

// SetAmbient installs the process-wide default sink.
func SetAmbient(sink Sink) {
	if sink == nil {
		sink = NopSink{}
	}
	ambientSink.Store(sink)
}

// Ambient returns the process-wide default sink.
func Ambient() Sink {
	return ambientSink.Load().(Sink)
}
