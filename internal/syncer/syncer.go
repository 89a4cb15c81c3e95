// Package syncer drives mailbox synchronization runs: it enumerates
// folders, fetches and decodes candidate messages, deduplicates them
// against the store, classifies them, and persists new records.
package syncer

import (
	"context"
	"fmt"
	"time"

	"github.com/emersion/go-imap/v2"
	"go.uber.org/zap"

	"github.com/nhle/onebox/internal/classify"
	"github.com/nhle/onebox/internal/mailbox"
	"github.com/nhle/onebox/internal/model"
	"github.com/nhle/onebox/internal/store"
)

// maxMessagesPerFolder caps how many handles one folder contributes to
// a run. The most recent messages win; older backlog is truncated.
const maxMessagesPerFolder = 1000

// snippetLength is how many characters of the best body become the snippet.
const snippetLength = 280

// defaultFolders applies when a sync request names no folders.
var defaultFolders = []string{"INBOX"}

// Session is the slice of a mailbox session the orchestrator needs.
// Folder- and message-level failures are skip-and-continue; only the
// dial aborts a run.
type Session interface {
	Username() string
	SelectFolder(name string) error
	SearchSince(since time.Time) ([]imap.UID, error)
	FetchRaw(uid imap.UID) ([]byte, error)
	Close()
}

// Dialer opens an authenticated session for an account.
type Dialer func(acc model.Account, password string) (Session, error)

// IMAPDialer is the production Dialer backed by internal/mailbox.
func IMAPDialer(acc model.Account, password string) (Session, error) {
	return mailbox.Dial(acc.Host, acc.Port, acc.Username, password, acc.UseSSL)
}

// PasswordFunc resolves the IMAP password for an account. It exists so
// secrets can live outside the account row (e.g., in the OS keyring).
type PasswordFunc func(acc model.Account) (string, error)

// Orchestrator runs synchronization passes for individual accounts.
// A run is strictly sequential: one session, one folder, one message
// at a time. Runs for different accounts may execute concurrently;
// concurrent runs for the same account are not guarded against and can
// race on the dedup check.
type Orchestrator struct {
	messages store.MessageStore
	dial     Dialer
	password PasswordFunc
	logger   *zap.Logger

	// now is swappable for tests.
	now func() time.Time
}

// NewOrchestrator creates an Orchestrator using the given dialer and
// password resolver.
func NewOrchestrator(
	messages store.MessageStore,
	dial Dialer,
	password PasswordFunc,
	logger *zap.Logger,
) *Orchestrator {
	return &Orchestrator{
		messages: messages,
		dial:     dial,
		password: password,
		logger:   logger,
		now:      time.Now,
	}
}

// Run synchronizes one account and returns the number of newly
// inserted records. A login failure aborts immediately with a
// mailbox.AuthError in the chain; folder- and message-level failures
// are skipped and only show up as a lower inserted count. The session
// is closed on every exit path.
func (o *Orchestrator) Run(
	ctx context.Context,
	acc model.Account,
	folders []string,
	days int,
) (int, error) {
	password, err := o.password(acc)
	if err != nil {
		return 0, fmt.Errorf("resolving credentials for account %s: %w", acc.ID, err)
	}

	sess, err := o.dial(acc, password)
	if err != nil {
		return 0, fmt.Errorf("opening session for account %s: %w", acc.ID, err)
	}
	defer sess.Close()

	cutoff := o.now().AddDate(0, 0, -days)

	if len(folders) == 0 {
		folders = defaultFolders
	}

	inserted := 0
	for _, folder := range folders {
		if err := sess.SelectFolder(folder); err != nil {
			o.logger.Warn("skipping folder",
				zap.String("account_id", acc.ID),
				zap.String("folder", folder),
				zap.Error(err))
			continue
		}

		uids, err := sess.SearchSince(cutoff)
		if err != nil {
			o.logger.Warn("search failed, skipping folder",
				zap.String("account_id", acc.ID),
				zap.String("folder", folder),
				zap.Error(err))
			continue
		}
		if len(uids) > maxMessagesPerFolder {
			uids = uids[len(uids)-maxMessagesPerFolder:]
		}

		for _, uid := range uids {
			n, err := o.ingest(ctx, sess, acc, folder, uid)
			if err != nil {
				return inserted, err
			}
			inserted += n
		}
	}

	return inserted, nil
}

// ingest processes a single message handle. It returns 1 when a new
// record was persisted, 0 when the message was skipped (fetch failure
// or duplicate). Store errors abort the run.
func (o *Orchestrator) ingest(
	ctx context.Context,
	sess Session,
	acc model.Account,
	folder string,
	uid imap.UID,
) (int, error) {
	raw, err := sess.FetchRaw(uid)
	if err != nil {
		o.logger.Warn("skipping message",
			zap.String("account_id", acc.ID),
			zap.String("folder", folder),
			zap.Uint32("uid", uint32(uid)),
			zap.Error(err))
		return 0, nil
	}

	decoded := mailbox.Decode(raw)

	messageID := decoded.MessageID
	if messageID == "" {
		// Synthesized fallback identity. The UID and folder name are
		// mutable across mailbox reorganizations, so two independent
		// syncs of the same header-less message may not dedup.
		messageID = fmt.Sprintf("uid-%d-%s-%s", uid, folder, sess.Username())
	}

	existing, err := o.messages.FindByAccountAndMessageID(ctx, acc.ID, messageID)
	if err != nil {
		return 0, fmt.Errorf("dedup lookup for %q: %w", messageID, err)
	}
	if existing != nil {
		return 0, nil
	}

	now := o.now().UTC()

	date := decoded.Date
	if date.IsZero() {
		date = now
	}

	msg := &model.EmailMessage{
		AccountID:  acc.ID,
		MessageID:  messageID,
		Folder:     folder,
		Subject:    decoded.Subject,
		Sender:     decoded.Sender,
		To:         decoded.To,
		Cc:         decoded.Cc,
		Date:       date,
		Snippet:    snippet(decoded.BestBody()),
		BodyText:   decoded.BodyText,
		BodyHTML:   decoded.BodyHTML,
		Labels:     []string{},
		AICategory: classify.Categorize(decoded.Subject, decoded.BestBody()),
		RawHeaders: decoded.Headers,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := o.messages.InsertMessage(ctx, msg); err != nil {
		return 0, fmt.Errorf("inserting message %q: %w", messageID, err)
	}

	return 1, nil
}

// snippet truncates the body to the leading snippetLength characters.
func snippet(body string) string {
	runes := []rune(body)
	if len(runes) > snippetLength {
		runes = runes[:snippetLength]
	}
	return string(runes)
}
