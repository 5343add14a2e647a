package ustvahandler

import (
	"testing"
	"time"
)

func TestClampWait(t *testing.T) {
	tests := []struct {
		name    string
		wait    int
		maxWait time.Duration
		want    int
	}{
		{name: "within bound", wait: 10, maxWait: 30 * time.Second, want: 10},
		{name: "at bound", wait: 30, maxWait: 30 * time.Second, want: 30},
		{name: "over bound clamped", wait: 86400, maxWait: 30 * time.Second, want: 30},
		{name: "zero wait", wait: 0, maxWait: 30 * time.Second, want: 0},
		{name: "negative wait", wait: -5, maxWait: 30 * time.Second, want: 0},
		{name: "waiting disabled", wait: 10, maxWait: 0, want: 0},
		{name: "sub-second bound rounds down", wait: 10, maxWait: 500 * time.Millisecond, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := clampWait(tt.wait, tt.maxWait); got != tt.want {
				t.Errorf("clampWait(%d, %v) = %d, want %d", tt.wait, tt.maxWait, got, tt.want)
			}
		})
	}
}
