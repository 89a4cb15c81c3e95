package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/nhle/onebox/internal/api"
	"github.com/nhle/onebox/internal/model"
	"github.com/nhle/onebox/internal/notify"
	"github.com/nhle/onebox/internal/store"
	"github.com/nhle/onebox/internal/suggest"
	"github.com/nhle/onebox/internal/syncer"
	"github.com/nhle/onebox/tests/testutil"
)

func newTestRouter(t *testing.T) (*gin.Engine, *store.SQLiteStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	st := testutil.NewTestStore(t)
	logger := zap.NewNop()

	dial := func(model.Account, string) (syncer.Session, error) {
		return nil, errors.New("no server in tests")
	}
	password := func(acc model.Account) (string, error) { return acc.Password, nil }

	orch := syncer.NewOrchestrator(st, dial, password, logger)
	engine := suggest.NewEngine(st, st)
	notifier := notify.New("", logger)

	srv := api.NewServer(st, orch, engine, notifier, logger, 30, nil)
	return srv.Router(), st
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshaling request body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRootAndHealth(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doJSON(t, router, http.MethodGet, "/", nil)
	if w.Code != http.StatusOK {
		t.Errorf("GET / status = %d, want 200", w.Code)
	}

	w = doJSON(t, router, http.MethodGet, "/health", nil)
	if w.Code != http.StatusOK {
		t.Errorf("GET /health status = %d, want 200", w.Code)
	}
	var health map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &health); err != nil {
		t.Fatalf("unmarshaling health: %v", err)
	}
	if health["database"] != "connected" {
		t.Errorf("database = %q, want connected", health["database"])
	}
}

func TestAccountCreateAndList(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/accounts", map[string]interface{}{
		"provider": "gmail",
		"host":     "imap.gmail.com",
		"username": "alice@example.com",
		"password": "app-password",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("POST /accounts status = %d, body %s", w.Code, w.Body.String())
	}
	var created model.Account
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("unmarshaling account: %v", err)
	}
	if created.ID == "" {
		t.Error("created account has no id")
	}
	if created.Port != 993 || !created.UseSSL {
		t.Errorf("defaults not applied: port=%d use_ssl=%v", created.Port, created.UseSSL)
	}

	w = doJSON(t, router, http.MethodGet, "/accounts", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("GET /accounts status = %d", w.Code)
	}
	var accounts []model.Account
	if err := json.Unmarshal(w.Body.Bytes(), &accounts); err != nil {
		t.Fatalf("unmarshaling accounts: %v", err)
	}
	if len(accounts) != 1 {
		t.Errorf("listed %d accounts, want 1", len(accounts))
	}

	// Missing required fields are rejected.
	w = doJSON(t, router, http.MethodPost, "/accounts", map[string]interface{}{"provider": "gmail"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("invalid account status = %d, want 400", w.Code)
	}
}

func TestTriggerSync(t *testing.T) {
	router, st := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/sync/unknown", map[string]interface{}{"days": 7})
	if w.Code != http.StatusNotFound {
		t.Errorf("sync unknown account status = %d, want 404", w.Code)
	}

	acc := &model.Account{Provider: "custom", Host: "mail.example.com", Port: 993, Username: "me", UseSSL: true}
	if err := st.CreateAccount(context.Background(), acc); err != nil {
		t.Fatal(err)
	}

	w = doJSON(t, router, http.MethodPost, "/sync/"+acc.ID, map[string]interface{}{"days": 7})
	if w.Code != http.StatusOK {
		t.Fatalf("sync status = %d, body %s", w.Code, w.Body.String())
	}
	var ack map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &ack); err != nil {
		t.Fatal(err)
	}
	if ack["status"] != "started" {
		t.Errorf("ack = %v, want started", ack)
	}
}

func seedMessage(t *testing.T, st *store.SQLiteStore, accountID, subject string) *model.EmailMessage {
	t.Helper()
	now := time.Now().UTC()
	msg := &model.EmailMessage{
		AccountID:  accountID,
		MessageID:  "<" + subject + "@x>",
		Folder:     "INBOX",
		Subject:    subject,
		Sender:     "alice@example.com",
		Date:       now,
		BodyText:   "body of " + subject,
		RawHeaders: map[string]string{},
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := st.InsertMessage(context.Background(), msg); err != nil {
		t.Fatal(err)
	}
	return msg
}

func TestListEmailsAndFolders(t *testing.T) {
	router, st := newTestRouter(t)

	seedMessage(t, st, "acc-1", "first")
	seedMessage(t, st, "acc-1", "second")
	seedMessage(t, st, "acc-2", "elsewhere")

	w := doJSON(t, router, http.MethodGet, "/emails?account_id=acc-1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("GET /emails status = %d", w.Code)
	}
	var listing struct {
		Items []model.EmailMessage `json:"items"`
		Count int                  `json:"count"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &listing); err != nil {
		t.Fatal(err)
	}
	if listing.Count != 2 || len(listing.Items) != 2 {
		t.Errorf("listing = %d items, want 2", listing.Count)
	}

	w = doJSON(t, router, http.MethodGet, "/emails/folders?account_id=acc-1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("GET /emails/folders status = %d", w.Code)
	}
	var folders []store.FolderCount
	if err := json.Unmarshal(w.Body.Bytes(), &folders); err != nil {
		t.Fatal(err)
	}
	if len(folders) != 1 || folders[0].Count != 2 {
		t.Errorf("folders = %+v, want INBOX with 2", folders)
	}

	w = doJSON(t, router, http.MethodGet, "/emails/folders", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("folders without account_id status = %d, want 400", w.Code)
	}
}

func TestMarkInterestedFiresWebhook(t *testing.T) {
	router, st := newTestRouter(t)

	received := make(chan notify.InterestedEvent, 1)
	hook := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var ev notify.InterestedEvent
		_ = json.NewDecoder(r.Body).Decode(&ev)
		received <- ev
	}))
	defer hook.Close()

	msg := seedMessage(t, st, "acc-1", "big deal")

	w := doJSON(t, router, http.MethodPost, "/emails/"+msg.ID+"/mark/interested",
		map[string]interface{}{"webhook_url": hook.URL})
	if w.Code != http.StatusOK {
		t.Fatalf("mark interested status = %d, body %s", w.Code, w.Body.String())
	}

	got, err := st.GetMessage(context.Background(), msg.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.AICategory != model.CategoryInterested {
		t.Errorf("category = %q, want Interested", got.AICategory)
	}

	select {
	case ev := <-received:
		if ev.Event != "interested" || ev.EmailID != msg.ID {
			t.Errorf("webhook event = %+v", ev)
		}
	case <-time.After(2 * time.Second):
		t.Error("webhook not delivered")
	}

	w = doJSON(t, router, http.MethodPost, "/emails/missing/mark/interested", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("mark interested unknown status = %d, want 404", w.Code)
	}
}

func TestAgendaAndSuggestReply(t *testing.T) {
	router, st := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/agenda", map[string]interface{}{
		"title":   "Pricing",
		"content": "enterprise plan details inside",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("POST /agenda status = %d, body %s", w.Code, w.Body.String())
	}

	msg := seedMessage(t, st, "acc-1", "enterprise plan")

	w = doJSON(t, router, http.MethodPost, "/suggest-reply", map[string]interface{}{"email_id": msg.ID})
	if w.Code != http.StatusOK {
		t.Fatalf("POST /suggest-reply status = %d, body %s", w.Code, w.Body.String())
	}
	var out map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatal(err)
	}
	if out["suggestion"] == "" {
		t.Error("empty suggestion")
	}

	w = doJSON(t, router, http.MethodPost, "/suggest-reply", map[string]interface{}{"email_id": "missing"})
	if w.Code != http.StatusNotFound {
		t.Errorf("suggest unknown status = %d, want 404", w.Code)
	}
}
