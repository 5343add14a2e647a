package controller

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"tdp/internal/entity/etrequest"
	"tdp/internal/eric"
	redisinfra "tdp/pkg/infra/redis"
)

type nopLogger struct{}

func (nopLogger) Debugf(ctx context.Context, format string, args ...interface{}) {}
func (nopLogger) Infof(ctx context.Context, format string, args ...interface{})  {}
func (nopLogger) Warnf(ctx context.Context, format string, args ...interface{})  {}
func (nopLogger) Errorf(ctx context.Context, format string, args ...interface{}) {}
func (nopLogger) Sync() error                                                    { return nil }

type fakeRepo struct {
	claimOK  bool
	claimErr error

	successID     string
	successResult []byte

	failedID      string
	failedCode    string
	failedMessage string

	terminalErr error
}

func (r *fakeRepo) Create(ctx context.Context, req *etrequest.TaxRequest) error { return nil }

func (r *fakeRepo) GetByRequestID(ctx context.Context, requestID, requestType string) (*etrequest.TaxRequest, error) {
	return nil, nil
}

func (r *fakeRepo) MarkScheduled(ctx context.Context, requestID string) error { return nil }

func (r *fakeRepo) MarkProcessing(ctx context.Context, requestID string) (bool, error) {
	return r.claimOK, r.claimErr
}

func (r *fakeRepo) MarkSuccess(ctx context.Context, requestID string, result []byte) error {
	r.successID = requestID
	r.successResult = result
	return r.terminalErr
}

func (r *fakeRepo) MarkFailed(ctx context.Context, requestID, errorCode, errorMessage string, result []byte) error {
	r.failedID = requestID
	r.failedCode = errorCode
	r.failedMessage = errorMessage
	return r.terminalErr
}

type fakeTransmitter struct {
	called     bool
	document   string
	testmerker bool
	ticket     *eric.Ticket
	err        error
}

func (t *fakeTransmitter) Submit(ctx context.Context, document string, useTestmerker bool) (*eric.Ticket, error) {
	t.called = true
	t.document = document
	t.testmerker = useTestmerker
	return t.ticket, t.err
}

type fakeNotifier struct {
	notifications []*redisinfra.SubmissionNotification
}

func (n *fakeNotifier) PublishSubmissionComplete(ctx context.Context, notification *redisinfra.SubmissionNotification) error {
	n.notifications = append(n.notifications, notification)
	return nil
}

const validPayload = `{
	"steuerfall": {
		"umsatzsteuervoranmeldung": {
			"jahr": 2025,
			"zeitraum": "01",
			"steuernummer": "1096081508187",
			"kz35": 1600.00
		}
	}
}`

func TestProcessSuccess(t *testing.T) {
	repo := &fakeRepo{claimOK: true}
	transmitter := &fakeTransmitter{ticket: &eric.Ticket{Transferticket: "TICKET-123"}}
	notifier := &fakeNotifier{}
	ctrl := NewUstvaController(repo, transmitter, notifier, nopLogger{}, true)

	if err := ctrl.Process(context.Background(), "req-1", json.RawMessage(validPayload)); err != nil {
		t.Fatalf("Process error: %v", err)
	}

	if !transmitter.called {
		t.Fatal("transmitter not called")
	}
	if !transmitter.testmerker {
		t.Error("default testmerker mode not applied")
	}
	if repo.successID != "req-1" {
		t.Fatalf("MarkSuccess id = %q, want req-1", repo.successID)
	}

	var result struct {
		Transferticket string `json:"transferticket"`
	}
	if err := json.Unmarshal(repo.successResult, &result); err != nil {
		t.Fatalf("stored result not json: %v", err)
	}
	if result.Transferticket != "TICKET-123" {
		t.Errorf("stored transferticket = %q, want TICKET-123", result.Transferticket)
	}

	if len(notifier.notifications) != 1 || notifier.notifications[0].Status != "success" {
		t.Errorf("notifications = %+v, want one success", notifier.notifications)
	}
}

func TestProcessSkipsUnclaimedRequest(t *testing.T) {
	repo := &fakeRepo{claimOK: false}
	transmitter := &fakeTransmitter{}
	ctrl := NewUstvaController(repo, transmitter, nil, nopLogger{}, false)

	if err := ctrl.Process(context.Background(), "req-1", json.RawMessage(validPayload)); err != nil {
		t.Fatalf("Process error: %v", err)
	}
	if transmitter.called {
		t.Error("duplicate delivery must not transmit")
	}
	if repo.successID != "" || repo.failedID != "" {
		t.Error("duplicate delivery must not touch terminal state")
	}
}

func TestProcessClaimError(t *testing.T) {
	repo := &fakeRepo{claimErr: errors.New("db down")}
	ctrl := NewUstvaController(repo, &fakeTransmitter{}, nil, nopLogger{}, false)

	if err := ctrl.Process(context.Background(), "req-1", json.RawMessage(validPayload)); err == nil {
		t.Fatal("claim failure should propagate for redelivery")
	}
}

func TestProcessTransmissionFailure(t *testing.T) {
	repo := &fakeRepo{claimOK: true}
	transmitter := &fakeTransmitter{err: &eric.TransmissionError{Code: "610101200", Message: "invalid signature"}}
	notifier := &fakeNotifier{}
	ctrl := NewUstvaController(repo, transmitter, notifier, nopLogger{}, false)

	if err := ctrl.Process(context.Background(), "req-1", json.RawMessage(validPayload)); err != nil {
		t.Fatalf("Process error: %v", err)
	}

	if repo.failedCode != "610101200" || repo.failedMessage != "invalid signature" {
		t.Errorf("recorded failure = %q/%q, want collaborator's code and message verbatim",
			repo.failedCode, repo.failedMessage)
	}
	if len(notifier.notifications) != 1 || notifier.notifications[0].Status != "failed" {
		t.Errorf("notifications = %+v, want one failed", notifier.notifications)
	}
}

func TestProcessDerivationFailureSkipsTransmission(t *testing.T) {
	repo := &fakeRepo{claimOK: true}
	transmitter := &fakeTransmitter{ticket: &eric.Ticket{Transferticket: "T"}}
	ctrl := NewUstvaController(repo, transmitter, nil, nopLogger{}, false)

	payload := `{"steuerfall": {"umsatzsteuervoranmeldung": {"jahr": 2025}}}`
	if err := ctrl.Process(context.Background(), "req-1", json.RawMessage(payload)); err != nil {
		t.Fatalf("Process error: %v", err)
	}

	if transmitter.called {
		t.Error("derivation failure must abort before transmission")
	}
	if repo.failedCode != ErrCodeDerivation {
		t.Errorf("failure code = %q, want %q", repo.failedCode, ErrCodeDerivation)
	}
}

func TestProcessInvalidPayload(t *testing.T) {
	repo := &fakeRepo{claimOK: true}
	transmitter := &fakeTransmitter{}
	ctrl := NewUstvaController(repo, transmitter, nil, nopLogger{}, false)

	if err := ctrl.Process(context.Background(), "req-1", json.RawMessage(`{not json`)); err != nil {
		t.Fatalf("Process error: %v", err)
	}
	if repo.failedCode != ErrCodeInvalidPayload {
		t.Errorf("failure code = %q, want %q", repo.failedCode, ErrCodeInvalidPayload)
	}
	if transmitter.called {
		t.Error("invalid payload must not transmit")
	}
}

func TestProcessPayloadTestmerkerOverride(t *testing.T) {
	repo := &fakeRepo{claimOK: true}
	transmitter := &fakeTransmitter{ticket: &eric.Ticket{Transferticket: "T"}}
	ctrl := NewUstvaController(repo, transmitter, nil, nopLogger{}, true)

	payload := `{
		"use_testmerker": false,
		"steuerfall": {
			"umsatzsteuervoranmeldung": {"steuernummer": "1096081508187"}
		}
	}`
	if err := ctrl.Process(context.Background(), "req-1", json.RawMessage(payload)); err != nil {
		t.Fatalf("Process error: %v", err)
	}
	if transmitter.testmerker {
		t.Error("payload override should disable testmerker")
	}
}

func TestProcessTerminalWriteFailurePropagates(t *testing.T) {
	repo := &fakeRepo{claimOK: true, terminalErr: errors.New("db down")}
	transmitter := &fakeTransmitter{ticket: &eric.Ticket{Transferticket: "T"}}
	ctrl := NewUstvaController(repo, transmitter, nil, nopLogger{}, false)

	if err := ctrl.Process(context.Background(), "req-1", json.RawMessage(validPayload)); err == nil {
		t.Fatal("unrecorded outcome should propagate for redelivery")
	}
}
