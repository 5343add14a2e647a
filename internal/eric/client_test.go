package eric

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestClientSubmit(t *testing.T) {
	var gotBody string
	var gotQuery string
	var gotContentType string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		gotQuery = r.URL.RawQuery
		gotContentType = r.Header.Get("Content-Type")
		json.NewEncoder(w).Encode(Ticket{Transferticket: "TICKET-123"})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second)
	ticket, err := client.Submit(context.Background(), "<Elster />", true)
	if err != nil {
		t.Fatalf("Submit error: %v", err)
	}

	if ticket.Transferticket != "TICKET-123" {
		t.Errorf("transferticket = %q, want TICKET-123", ticket.Transferticket)
	}
	if gotBody != "<Elster />" {
		t.Errorf("body = %q", gotBody)
	}
	if gotQuery != "testmerker=true" {
		t.Errorf("query = %q, want testmerker=true", gotQuery)
	}
	if gotContentType != "application/xml; charset=utf-8" {
		t.Errorf("content type = %q", gotContentType)
	}
}

func TestClientSubmitBridgeError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(TransmissionError{Code: "610101200", Message: "invalid signature"})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second)
	_, err := client.Submit(context.Background(), "<Elster />", false)

	var terr *TransmissionError
	if !errors.As(err, &terr) {
		t.Fatalf("error = %v, want *TransmissionError", err)
	}
	if terr.Code != "610101200" || terr.Message != "invalid signature" {
		t.Errorf("error = %+v, want bridge code and message verbatim", terr)
	}
}

func TestClientSubmitOpaqueFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second)
	_, err := client.Submit(context.Background(), "<Elster />", false)

	var terr *TransmissionError
	if !errors.As(err, &terr) {
		t.Fatalf("error = %v, want *TransmissionError", err)
	}
	if terr.Code != "bridge" {
		t.Errorf("code = %q, want bridge", terr.Code)
	}
}
