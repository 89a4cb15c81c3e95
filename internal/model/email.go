package model

import "time"

// Category is a classifier label assigned to an email message.
type Category string

const (
	CategoryOutOfOffice   Category = "Out of Office"
	CategoryNotInterested Category = "Not Interested"
	CategoryMeetingBooked Category = "Meeting Booked"
	CategoryInterested    Category = "Interested"
	CategorySpam          Category = "Spam"
)

// EmailMessage is the canonical record persisted for each synced message.
// At most one record exists per (AccountID, MessageID) pair; the sync
// pipeline enforces this with a lookup before insert.
type EmailMessage struct {
	ID        string `json:"id"`
	AccountID string `json:"account_id"`

	// MessageID is the Message-ID header value, or the synthesized
	// fallback "uid-<uid>-<folder>-<username>" when the header is absent.
	MessageID string `json:"message_id"`

	// Folder is the mailbox folder the message was fetched from.
	Folder string `json:"folder"`

	Subject string   `json:"subject"`
	Sender  string   `json:"sender"`
	To      []string `json:"to"`
	Cc      []string `json:"cc"`

	// Date is the parsed message timestamp, falling back to ingestion
	// time when the header is missing or unparseable.
	Date time.Time `json:"date"`

	// Snippet is the first 280 characters of the best-available body.
	Snippet string `json:"snippet"`

	BodyText string `json:"body_text"`
	BodyHTML string `json:"body_html"`

	// Labels are user-assignable tags; empty at creation.
	Labels []string `json:"labels"`

	// AICategory is the classifier output, empty when no rule matched.
	AICategory Category `json:"ai_category"`

	// RawHeaders is the full decoded header map.
	RawHeaders map[string]string `json:"raw_headers"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BestBody returns the plain text body when present, else the HTML source.
func (m *EmailMessage) BestBody() string {
	if m.BodyText != "" {
		return m.BodyText
	}
	return m.BodyHTML
}
