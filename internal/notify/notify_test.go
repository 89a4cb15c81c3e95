package notify

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
)

func TestSlackPostsTextPayload(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &got); err != nil {
			t.Errorf("unmarshaling slack payload: %v", err)
		}
	}))
	defer srv.Close()

	n := New(srv.URL, zap.NewNop())
	n.Slack("New Interested email from alice: hi")

	if got["text"] != "New Interested email from alice: hi" {
		t.Errorf("payload = %v, want text field", got)
	}
}

func TestSlackDisabledWithoutURL(t *testing.T) {
	// Must not panic or block with no webhook configured.
	n := New("", zap.NewNop())
	n.Slack("dropped")
}

func TestInterestedPostsEvent(t *testing.T) {
	var got InterestedEvent
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &got); err != nil {
			t.Errorf("unmarshaling event payload: %v", err)
		}
	}))
	defer srv.Close()

	n := New("", zap.NewNop())
	n.Interested(srv.URL, InterestedEvent{
		EmailID:   "m-1",
		Subject:   "hello",
		Sender:    "alice@example.com",
		AccountID: "acc-1",
	})

	if got.Event != "interested" {
		t.Errorf("event = %q, want interested", got.Event)
	}
	if got.EmailID != "m-1" || got.AccountID != "acc-1" {
		t.Errorf("payload = %+v, want ids round-tripped", got)
	}
}

func TestDeliveryFailuresAreSwallowed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer srv.Close()

	n := New(srv.URL, zap.NewNop())
	n.Slack("still fine")
	n.Interested("http://127.0.0.1:1/unreachable", InterestedEvent{EmailID: "x"})
}
