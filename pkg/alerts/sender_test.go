package alerts

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestWebhookSender(t *testing.T) {
	var got Notification
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content type = %q", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("bad body: %v", err)
		}
	}))
	defer srv.Close()

	n := Notification{
		StationID:   9413745,
		StationName: "Santa Cruz",
		Date:        time.Date(2021, time.April, 4, 0, 0, 0, 0, time.UTC),
		MaxHeight:   6.5,
		Threshold:   5.0,
	}
	if err := NewWebhookSender(srv.URL).Send(n); err != nil {
		t.Fatalf("unexpected: %v", err)
	}
	if got.StationID != n.StationID || got.MaxHeight != n.MaxHeight {
		t.Errorf("webhook received %+v, want %+v", got, n)
	}
}

func TestWebhookSenderErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	if err := NewWebhookSender(srv.URL).Send(Notification{}); err == nil {
		t.Errorf("expected an error for a 502 response")
	}
}
