// Package mailbox manages authenticated IMAP sessions and decodes raw
// messages into normalized records.
package mailbox

import (
	"errors"
	"fmt"
	"time"

	"github.com/emersion/go-imap/v2"
	"github.com/emersion/go-imap/v2/imapclient"
)

// AuthError indicates that the IMAP server rejected the login. It is
// fatal to a sync run; the caller reports it instead of retrying.
type AuthError struct {
	Username string
	Message  string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("auth error (%s): %s", e.Username, e.Message)
}

// IsAuthError reports whether err (or any error in its chain) is an AuthError.
func IsAuthError(err error) bool {
	var authErr *AuthError
	return errors.As(err, &authErr)
}

// Session is one authenticated IMAP connection scoped to a single sync
// run. Folder selection and fetch failures are per-call errors the
// caller can skip over; only Dial failures abort a run.
type Session struct {
	client   *imapclient.Client
	username string
}

// Dial connects to the IMAP server, authenticates, and returns a live
// session. With useSSL the connection uses implicit TLS, otherwise
// STARTTLS is attempted. The caller must Close the session on every
// exit path.
func Dial(host string, port int, username, password string, useSSL bool) (*Session, error) {
	addr := fmt.Sprintf("%s:%d", host, port)

	var client *imapclient.Client
	var err error
	if useSSL {
		client, err = imapclient.DialTLS(addr, nil)
	} else {
		client, err = imapclient.DialStartTLS(addr, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("connecting to IMAP %s: %w", addr, err)
	}

	if err := client.Login(username, password).Wait(); err != nil {
		_ = client.Logout().Wait()
		return nil, &AuthError{
			Username: username,
			Message:  fmt.Sprintf("IMAP login failed: %v", err),
		}
	}

	return &Session{client: client, username: username}, nil
}

// Username returns the login the session was opened with. The sync
// pipeline embeds it in synthesized message identifiers.
func (s *Session) Username() string {
	return s.username
}

// SelectFolder opens the named folder read-only. A failure is non-fatal
// to a run; the caller skips the folder and continues.
func (s *Session) SelectFolder(name string) error {
	opts := &imap.SelectOptions{ReadOnly: true}
	if _, err := s.client.Select(name, opts).Wait(); err != nil {
		return fmt.Errorf("selecting folder %q: %w", name, err)
	}
	return nil
}

// SearchSince returns the UIDs of messages in the selected folder dated
// on or after the given cutoff.
func (s *Session) SearchSince(since time.Time) ([]imap.UID, error) {
	criteria := &imap.SearchCriteria{Since: since}
	data, err := s.client.UIDSearch(criteria, nil).Wait()
	if err != nil {
		return nil, fmt.Errorf("searching since %s: %w", since.Format("02-Jan-2006"), err)
	}
	return data.AllUIDs(), nil
}

// FetchRaw retrieves the full raw message for one UID without marking
// it seen. A failure is non-fatal; the caller skips the message.
func (s *Session) FetchRaw(uid imap.UID) ([]byte, error) {
	bodySection := &imap.FetchItemBodySection{Peek: true}
	fetchOpts := &imap.FetchOptions{
		UID:         true,
		BodySection: []*imap.FetchItemBodySection{bodySection},
	}

	fetchCmd := s.client.Fetch(imap.UIDSetNum(uid), fetchOpts)
	defer fetchCmd.Close()

	msg := fetchCmd.Next()
	if msg == nil {
		return nil, fmt.Errorf("message UID %d not found", uid)
	}

	buf, err := msg.Collect()
	if err != nil {
		return nil, fmt.Errorf("collecting message UID %d: %w", uid, err)
	}

	raw := buf.FindBodySection(bodySection)
	if raw == nil {
		return nil, fmt.Errorf("message UID %d has no body section", uid)
	}

	if err := fetchCmd.Close(); err != nil {
		return nil, fmt.Errorf("fetching UID %d: %w", uid, err)
	}

	return raw, nil
}

// Close logs out of the server. Teardown errors are swallowed; the
// session is unusable afterwards either way.
func (s *Session) Close() {
	_ = s.client.Logout().Wait()
}
