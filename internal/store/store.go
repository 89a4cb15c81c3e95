package store

import (
	"context"
	"errors"

	"github.com/nhle/onebox/internal/model"
)

// ErrNotFound is returned when an operation addresses a record that
// does not exist.
var ErrNotFound = errors.New("not found")

// MessageFilter controls filtering and pagination for message listings.
// Zero-valued fields are ignored.
type MessageFilter struct {
	AccountID string
	Folder    string

	// Query is a case-insensitive substring match over subject,
	// body_text, and body_html.
	Query string

	// Limit is clamped to [1, 200]; zero means the default of 50.
	Limit int
	Skip  int
}

// FolderCount pairs a folder name with the number of stored messages.
type FolderCount struct {
	Folder string `json:"folder" db:"folder"`
	Count  int    `json:"count" db:"count"`
}

// AccountStore persists mailbox accounts. Accounts are created through
// the HTTP surface and consumed read-only by the sync pipeline.
type AccountStore interface {
	CreateAccount(ctx context.Context, acc *model.Account) error
	ListAccounts(ctx context.Context) ([]model.Account, error)
	GetAccount(ctx context.Context, id string) (*model.Account, error)
}

// MessageStore persists synced email messages.
type MessageStore interface {
	InsertMessage(ctx context.Context, msg *model.EmailMessage) error

	// FindByAccountAndMessageID is the dedup lookup; it returns
	// (nil, nil) when no record exists.
	FindByAccountAndMessageID(ctx context.Context, accountID, messageID string) (*model.EmailMessage, error)

	GetMessage(ctx context.Context, id string) (*model.EmailMessage, error)
	UpdateCategory(ctx context.Context, id string, category model.Category) error
	ListMessages(ctx context.Context, filter MessageFilter) ([]model.EmailMessage, error)
	CountByFolder(ctx context.Context, accountID string) ([]FolderCount, error)
}

// AgendaStore persists reference documents for reply suggestions.
type AgendaStore interface {
	CreateAgendaDoc(ctx context.Context, doc *model.AgendaDoc) error
	ListAgendaDocs(ctx context.Context) ([]model.AgendaDoc, error)
}

// Store is the full persistence interface.
type Store interface {
	AccountStore
	MessageStore
	AgendaStore

	Ping(ctx context.Context) error
	Close() error
}
