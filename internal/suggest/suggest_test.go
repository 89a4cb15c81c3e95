package suggest_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/nhle/onebox/internal/model"
	"github.com/nhle/onebox/internal/store"
	"github.com/nhle/onebox/internal/suggest"
	"github.com/nhle/onebox/tests/testutil"
)

func insertMessage(t *testing.T, s *store.SQLiteStore, subject, body string, category model.Category) string {
	t.Helper()
	now := time.Now().UTC()
	msg := &model.EmailMessage{
		AccountID:  "acc-1",
		MessageID:  "<" + subject + "@x>",
		Folder:     "INBOX",
		Subject:    subject,
		BodyText:   body,
		Date:       now,
		AICategory: category,
		RawHeaders: map[string]string{},
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.InsertMessage(context.Background(), msg); err != nil {
		t.Fatalf("InsertMessage: %v", err)
	}
	return msg.ID
}

func insertDoc(t *testing.T, s *store.SQLiteStore, title, content string, created time.Time) {
	t.Helper()
	doc := &model.AgendaDoc{Title: title, Content: content, CreatedAt: created}
	if err := s.CreateAgendaDoc(context.Background(), doc); err != nil {
		t.Fatalf("CreateAgendaDoc: %v", err)
	}
}

func TestSuggestPicksHighestOverlap(t *testing.T) {
	s := testutil.NewTestStore(t)
	engine := suggest.NewEngine(s, s)
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	id := insertMessage(t, s, "pricing question", "what does the enterprise plan cost", "")
	// Shares "enterprise", "plan", "cost" with the query.
	insertDoc(t, s, "Pricing", "the enterprise plan cost details are attached", base)
	// Shares only "question".
	insertDoc(t, s, "FAQ", "common question answers", base.Add(time.Minute))

	reply, err := engine.Suggest(context.Background(), id)
	if err != nil {
		t.Fatalf("Suggest: %v", err)
	}
	if !strings.HasPrefix(reply, "Thank you for your email.") {
		t.Errorf("reply %q does not start with the greeting", reply)
	}
	if !strings.Contains(reply, "enterprise plan cost details") {
		t.Errorf("reply %q does not contain the winning doc", reply)
	}
	if strings.Contains(reply, "common question answers") {
		t.Errorf("reply %q contains the losing doc", reply)
	}
}

func TestSuggestEmptyStoreYieldsGreetingAlone(t *testing.T) {
	s := testutil.NewTestStore(t)
	engine := suggest.NewEngine(s, s)

	id := insertMessage(t, s, "hello", "anything", "")

	reply, err := engine.Suggest(context.Background(), id)
	if err != nil {
		t.Fatalf("Suggest: %v", err)
	}
	if reply != "Thank you for your email." {
		t.Errorf("reply = %q, want greeting alone", reply)
	}
}

func TestSuggestAppendsBookingLineForInterested(t *testing.T) {
	s := testutil.NewTestStore(t)
	engine := suggest.NewEngine(s, s)
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	id := insertMessage(t, s, "demo", "interested in a demo slot", model.CategoryInterested)
	insertDoc(t, s, "Booking", "grab a demo slot at cal.com/acme", base)

	reply, err := engine.Suggest(context.Background(), id)
	if err != nil {
		t.Fatalf("Suggest: %v", err)
	}
	if !strings.HasSuffix(reply, "You can book a slot using the link above.") {
		t.Errorf("reply %q missing booking call-to-action", reply)
	}
}

func TestSuggestNoBookingLineWithoutInterest(t *testing.T) {
	s := testutil.NewTestStore(t)
	engine := suggest.NewEngine(s, s)
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	id := insertMessage(t, s, "demo", "tell me about demo slots", "")
	insertDoc(t, s, "Booking", "grab a demo slot at cal.com/acme", base)

	reply, err := engine.Suggest(context.Background(), id)
	if err != nil {
		t.Fatalf("Suggest: %v", err)
	}
	if strings.Contains(reply, "You can book a slot") {
		t.Errorf("reply %q has booking line for an uninterested message", reply)
	}
}

func TestSuggestUnknownMessage(t *testing.T) {
	s := testutil.NewTestStore(t)
	engine := suggest.NewEngine(s, s)

	_, err := engine.Suggest(context.Background(), "missing")
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}
