package blocksync

import (
	"runtime"
	"time"

	"go.opentelemetry.io/otel/attribute"
)

func WithPollInterval(d time.Duration) func(*Synchronizer) {
	return func(s *Synchronizer) {
		s.pollInterval = d
	}
}

// WithMaxRetryElapsed limits how long Sync retries after conflicting writes.
func WithMaxRetryElapsed(d time.Duration) func(*Synchronizer) {
	return func(s *Synchronizer) {
		s.maxRetryElapsed = d
	}
}

func WithTracer(attr ...attribute.KeyValue) func(*Synchronizer) {
	return func(s *Synchronizer) {
		s.tracingEnabled = true
		if len(attr) > 0 {
			s.tracingAttributes = append(s.tracingAttributes, attr...)
		}
		_, file, _, ok := runtime.Caller(1)
		if ok {
			s.tracingAttributes = append(s.tracingAttributes, attribute.String("file", file))
		}
	}
}
