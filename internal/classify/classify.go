// Package classify assigns a category to an email based on an ordered
// list of keyword rules. Classification is pure and deterministic: the
// same subject and body always produce the same label.
package classify

import (
	"strings"

	"github.com/nhle/onebox/internal/model"
)

// rule pairs a category with a predicate over the lower-cased
// subject+body text. Rules are evaluated in order; the first match wins.
type rule struct {
	category model.Category
	match    func(text string) bool
}

var (
	outOfOfficeTerms = []string{
		"out of office", "ooo", "vacation auto-reply", "automatic reply",
	}
	notInterestedTerms = []string{
		"not interested", "no longer interested", "unsubscribe",
	}
	// Meeting classification requires both an intent term and a
	// scheduling artifact (booking verb, link, or a scheduling service
	// domain). "meeting" alone is not enough.
	meetingIntentTerms = []string{
		"meeting", "calendar", "schedule", "book a time", "let's meet",
	}
	meetingArtifactTerms = []string{
		"book", "link", "schedule", "slot", "cal.com", "calendly",
	}
	interestedTerms = []string{
		"buy", "interested", "sounds good", "let's talk", "let us talk",
	}
	spamTerms = []string{
		"viagra", "lottery", "claim prize", "crypto giveaway", "spam",
	}
)

// rules is the ordered classification table. Ordering encodes
// precedence: an auto-reply that mentions "interested" must still be
// classified Out of Office, and an unsubscribe note trumps Interested.
var rules = []rule{
	{model.CategoryOutOfOffice, containsAny(outOfOfficeTerms)},
	{model.CategoryNotInterested, containsAny(notInterestedTerms)},
	{model.CategoryMeetingBooked, func(text string) bool {
		return anyIn(text, meetingIntentTerms) && anyIn(text, meetingArtifactTerms)
	}},
	{model.CategoryInterested, containsAny(interestedTerms)},
	{model.CategorySpam, containsAny(spamTerms)},
}

// Categorize maps a subject and body to a category label. It returns
// the empty category when no rule matches.
func Categorize(subject, body string) model.Category {
	text := strings.ToLower(subject + " \n " + body)
	for _, r := range rules {
		if r.match(text) {
			return r.category
		}
	}
	return ""
}

func containsAny(terms []string) func(string) bool {
	return func(text string) bool {
		return anyIn(text, terms)
	}
}

func anyIn(text string, terms []string) bool {
	for _, term := range terms {
		if strings.Contains(text, term) {
			return true
		}
	}
	return false
}
