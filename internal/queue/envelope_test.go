package queue

import (
	"encoding/json"
	"testing"
)

func TestEnvelopeRoundTrip(t *testing.T) {
	payload := json.RawMessage(`{"steuerfall": {}}`)
	envelope := NewEnvelope("req-1", "creator-1", "send_ustva", payload)

	raw, err := json.Marshal(envelope)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	_, meta, data, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}

	if meta.RequestID != "req-1" || meta.CreatorID != "creator-1" || meta.ActionType != "send_ustva" {
		t.Errorf("meta = %+v", meta)
	}
	if meta.ID != "req-1" {
		t.Errorf("ID = %q, want the request id", meta.ID)
	}
	if string(data) != `{"steuerfall": {}}` {
		t.Errorf("data = %s", data)
	}
}

func TestParseRejectsBadStructure(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "not json", raw: `{broken`},
		{name: "missing payload", raw: `{}`},
		{name: "missing data", raw: `{"payload": {}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, _, err := Parse([]byte(tt.raw)); err == nil {
				t.Error("Parse should fail")
			}
		})
	}
}
