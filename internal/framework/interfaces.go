package framework

import (
	"context"
	"time"
)

// MessageSource abstracts the queue backend.
type MessageSource interface {
	// Consume blocks until a message arrives or the timeout passes.
	Consume(queue string, timeout time.Duration, ttr time.Duration) (*Message, error)

	// Ack confirms a message so the queue drops it.
	Ack(queue string, jobID string) error
}

// Logger is the logging contract the framework depends on.
type Logger interface {
	Debugf(ctx context.Context, format string, args ...interface{})
	Infof(ctx context.Context, format string, args ...interface{})
	Warnf(ctx context.Context, format string, args ...interface{})
	Errorf(ctx context.Context, format string, args ...interface{})
}
