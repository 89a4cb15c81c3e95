package model

import "time"

// Account holds the connection settings for one remote IMAP mailbox.
// Accounts are created through the HTTP surface and are read-only input
// to the sync pipeline.
type Account struct {
	// ID is the opaque identifier assigned at creation.
	ID string `json:"id" db:"id"`

	// Provider names the mail provider (e.g., "gmail", "outlook", "custom").
	Provider string `json:"provider" db:"provider"`

	// Host is the IMAP server hostname.
	Host string `json:"host" db:"host"`

	// Port is the IMAP server port (993 for implicit TLS).
	Port int `json:"port" db:"port"`

	// Username is the IMAP login, usually the mailbox address.
	Username string `json:"username" db:"username"`

	// Password is the IMAP secret (app password). Empty when the
	// credential backend stores it outside the database.
	Password string `json:"password" db:"password"`

	// UseSSL selects implicit TLS; otherwise STARTTLS is attempted.
	UseSSL bool `json:"use_ssl" db:"use_ssl"`

	// Description is an optional user-facing label.
	Description string `json:"description" db:"description"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
