// Package suggest proposes reply text for a message by retrieving the
// stored reference document with the largest vocabulary overlap.
package suggest

import (
	"context"
	"fmt"
	"strings"

	"github.com/nhle/onebox/internal/model"
	"github.com/nhle/onebox/internal/store"
)

const greeting = "Thank you for your email."

const bookingCallToAction = "You can book a slot using the link above."

// schedulingMarker in the winning document's content triggers the
// booking call-to-action for Interested messages.
const schedulingMarker = "cal.com"

// Engine scores agenda docs against messages and renders a templated reply.
type Engine struct {
	messages store.MessageStore
	agenda   store.AgendaStore
}

// NewEngine creates a suggestion engine over the given stores.
func NewEngine(messages store.MessageStore, agenda store.AgendaStore) *Engine {
	return &Engine{messages: messages, agenda: agenda}
}

// Suggest builds a reply suggestion for the message with the given ID.
// It returns store.ErrNotFound when the message does not exist. With no
// stored documents the reply is the greeting alone.
func (e *Engine) Suggest(ctx context.Context, messageID string) (string, error) {
	msg, err := e.messages.GetMessage(ctx, messageID)
	if err != nil {
		return "", fmt.Errorf("loading message %s: %w", messageID, err)
	}

	query := msg.Subject + " " + msg.BestBody()

	docs, err := e.agenda.ListAgendaDocs(ctx)
	if err != nil {
		return "", fmt.Errorf("listing agenda docs: %w", err)
	}

	// Strictly-greater comparison keeps the first doc on ties, so the
	// result is deterministic given the store's stable iteration order.
	var best *model.AgendaDoc
	bestScore := -1
	for i := range docs {
		score := overlap(query, docs[i].Title+" "+docs[i].Content)
		if score > bestScore {
			bestScore = score
			best = &docs[i]
		}
	}

	reply := greeting
	if best != nil {
		reply += "\n\n" + best.Content
	}
	if msg.AICategory == model.CategoryInterested &&
		best != nil && strings.Contains(best.Content, schedulingMarker) {
		reply += "\n\n" + bookingCallToAction
	}

	return strings.TrimSpace(reply), nil
}

// overlap counts the distinct lower-cased words shared by two texts.
func overlap(query, doc string) int {
	queryWords := wordSet(query)
	docWords := wordSet(doc)

	count := 0
	for word := range queryWords {
		if docWords[word] {
			count++
		}
	}
	return count
}

func wordSet(text string) map[string]bool {
	set := map[string]bool{}
	for _, word := range strings.Fields(strings.ToLower(text)) {
		set[word] = true
	}
	return set
}
