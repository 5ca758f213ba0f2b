package email

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestBrevoSinkSend(t *testing.T) {
	t.Parallel()

	var got struct {
		Sender struct {
			Email string `json:"email"`
		} `json:"sender"`
		To []struct {
			Email string `json:"email"`
		} `json:"to"`
		Subject     string `json:"subject"`
		HTMLContent string `json:"htmlContent"`
	}
	var apiKey string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		apiKey = r.Header.Get("api-key")
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	sink := NewBrevoSink("key-1", "Digest", "noreply@example.com", []string{"a@example.com", "b@example.com"})
	sink.endpoint = server.URL
	sink.client = server.Client()

	err := sink.Send(context.Background(), "Digest 2024-01-02", []byte("<html>report</html>"))
	if err != nil {
		t.Fatalf("Send error: %v", err)
	}

	if apiKey != "key-1" {
		t.Fatalf("api key header missing, got %q", apiKey)
	}
	if got.Sender.Email != "noreply@example.com" {
		t.Fatalf("unexpected sender: %+v", got.Sender)
	}
	if len(got.To) != 2 || got.To[1].Email != "b@example.com" {
		t.Fatalf("unexpected recipients: %+v", got.To)
	}
	if got.Subject != "Digest 2024-01-02" || got.HTMLContent != "<html>report</html>" {
		t.Fatalf("unexpected payload: %+v", got)
	}
}

func TestBrevoSinkReportsAPIError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"invalid key"}`, http.StatusUnauthorized)
	}))
	defer server.Close()

	sink := NewBrevoSink("bad", "Digest", "noreply@example.com", []string{"a@example.com"})
	sink.endpoint = server.URL
	sink.client = server.Client()

	if err := sink.Send(context.Background(), "s", []byte("x")); err == nil {
		t.Fatal("expected error for HTTP 401")
	}
}

func TestBrevoSinkRequiresConfig(t *testing.T) {
	t.Parallel()

	sink := NewBrevoSink("", "Digest", "noreply@example.com", nil)
	if err := sink.Send(context.Background(), "s", []byte("x")); err == nil {
		t.Fatal("expected misconfiguration error")
	}
}
