package domains

import (
	"context"
	"errors"
	"testing"

	"github.com/bitleak/lmstfy/client"

	"tdp/pkg/errorutil"
	"tdp/pkg/lmstfyx"
)

type nopLogger struct{}

func (nopLogger) Debugf(ctx context.Context, format string, args ...interface{}) {}
func (nopLogger) Infof(ctx context.Context, format string, args ...interface{})  {}
func (nopLogger) Warnf(ctx context.Context, format string, args ...interface{})  {}
func (nopLogger) Errorf(ctx context.Context, format string, args ...interface{}) {}
func (nopLogger) Sync() error                                                    { return nil }

func TestGetProcessBuriesMalformedEnvelope(t *testing.T) {
	proc := GetProcess(nopLogger{}, &Deps{})

	resp := proc(context.Background(), &client.Job{ID: "j1", Data: []byte(`{broken`)})
	if resp.Action != lmstfyx.JobRespStatusBury {
		t.Errorf("action = %d, want bury", resp.Action)
	}
}

func TestGetProcessBuriesUnknownActionType(t *testing.T) {
	proc := GetProcess(nopLogger{}, &Deps{})

	data := []byte(`{"payload": {"data": {"request_id": "r1", "action_type": "no_such_action", "data": {}}}}`)
	resp := proc(context.Background(), &client.Job{ID: "j1", Data: data})
	if resp.Action != lmstfyx.JobRespStatusBury {
		t.Errorf("action = %d, want bury", resp.Action)
	}
}

func TestReport(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want lmstfyx.JobRespStatus
	}{
		{name: "handled", err: nil, want: lmstfyx.JobRespStatusSuccess},
		{name: "retryable released", err: errorutil.Retriable("infra", "db down"), want: lmstfyx.JobRespStatusRelease},
		{name: "permanent buried", err: errorutil.NonRetriable("invalid_payload", "bad"), want: lmstfyx.JobRespStatusBury},
		{name: "unknown buried", err: errors.New("boom"), want: lmstfyx.JobRespStatusBury},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := report(context.Background(), tt.err, nopLogger{})
			if resp.Action != tt.want {
				t.Errorf("action = %d, want %d", resp.Action, tt.want)
			}
		})
	}
}
