package model

import "time"

// AgendaDoc is a reference document scored against incoming messages to
// propose reply text. It has no relationship to EmailMessage beyond
// being queried at suggestion time.
type AgendaDoc struct {
	ID        string    `json:"id" db:"id"`
	Title     string    `json:"title" db:"title"`
	Content   string    `json:"content" db:"content"`
	Tags      []string  `json:"tags"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
