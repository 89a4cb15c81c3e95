package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/nhle/onebox/internal/model"
)

// listLimitCap bounds a single listing page regardless of the request.
const listLimitCap = 200

// defaultListLimit applies when a filter omits its limit.
const defaultListLimit = 50

// InsertMessage inserts a new message record. If the record has no ID,
// a new UUID is generated and written back to the struct.
//
// Deduplication is the caller's job: the sync pipeline looks up
// (account_id, message_id) before inserting, because message identity
// can rest on a synthesized fallback key rather than a stored
// uniqueness constraint.
func (s *SQLiteStore) InsertMessage(ctx context.Context, msg *model.EmailMessage) error {
	if msg.ID == "" {
		msg.ID = uuid.New().String()
	}

	toJSON, err := json.Marshal(emptyIfNil(msg.To))
	if err != nil {
		return fmt.Errorf("marshaling to_addrs for message %s: %w", msg.ID, err)
	}
	ccJSON, err := json.Marshal(emptyIfNil(msg.Cc))
	if err != nil {
		return fmt.Errorf("marshaling cc_addrs for message %s: %w", msg.ID, err)
	}
	labelsJSON, err := json.Marshal(emptyIfNil(msg.Labels))
	if err != nil {
		return fmt.Errorf("marshaling labels for message %s: %w", msg.ID, err)
	}
	headersJSON, err := json.Marshal(msg.RawHeaders)
	if err != nil {
		return fmt.Errorf("marshaling raw_headers for message %s: %w", msg.ID, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO messages (
			id, account_id, message_id, folder,
			subject, sender, to_addrs, cc_addrs,
			date, snippet, body_text, body_html,
			labels, ai_category, raw_headers,
			created_at, updated_at
		) VALUES (
			?, ?, ?, ?,
			?, ?, ?, ?,
			?, ?, ?, ?,
			?, ?, ?,
			?, ?
		)`,
		msg.ID, msg.AccountID, msg.MessageID, msg.Folder,
		msg.Subject, msg.Sender, string(toJSON), string(ccJSON),
		msg.Date.UTC(), msg.Snippet, msg.BodyText, msg.BodyHTML,
		string(labelsJSON), string(msg.AICategory), string(headersJSON),
		msg.CreatedAt.UTC(), msg.UpdatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("inserting message %s: %w", msg.ID, err)
	}

	return nil
}

// FindByAccountAndMessageID looks up the dedup key. It returns
// (nil, nil) when no record exists.
func (s *SQLiteStore) FindByAccountAndMessageID(
	ctx context.Context,
	accountID, messageID string,
) (*model.EmailMessage, error) {
	rows, err := s.db.QueryxContext(ctx,
		"SELECT * FROM messages WHERE account_id = ? AND message_id = ? LIMIT 1",
		accountID, messageID,
	)
	if err != nil {
		return nil, fmt.Errorf("querying message by dedup key: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}

	msg, err := scanMessage(rows)
	if err != nil {
		return nil, err
	}

	return &msg, nil
}

// GetMessage retrieves a single message by ID. It returns ErrNotFound
// when no such message exists.
func (s *SQLiteStore) GetMessage(ctx context.Context, id string) (*model.EmailMessage, error) {
	rows, err := s.db.QueryxContext(ctx, "SELECT * FROM messages WHERE id = ?", id)
	if err != nil {
		return nil, fmt.Errorf("querying message %s: %w", id, err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("getting message %s: %w", id, err)
		}
		return nil, ErrNotFound
	}

	msg, err := scanMessage(rows)
	if err != nil {
		return nil, fmt.Errorf("getting message %s: %w", id, err)
	}

	return &msg, nil
}

// UpdateCategory overwrites a message's classifier label.
func (s *SQLiteStore) UpdateCategory(ctx context.Context, id string, category model.Category) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE messages SET ai_category = ?, updated_at = ? WHERE id = ?",
		string(category), time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("updating category for message %s: %w", id, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating category for message %s: %w", id, err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	return nil
}

// ListMessages retrieves messages matching the filter, ordered by date
// descending.
func (s *SQLiteStore) ListMessages(
	ctx context.Context,
	filter MessageFilter,
) ([]model.EmailMessage, error) {
	var conditions []string
	var args []interface{}

	if filter.AccountID != "" {
		conditions = append(conditions, "account_id = ?")
		args = append(args, filter.AccountID)
	}
	if filter.Folder != "" {
		conditions = append(conditions, "folder = ?")
		args = append(args, filter.Folder)
	}
	if filter.Query != "" {
		conditions = append(conditions, "(subject LIKE ? OR body_text LIKE ? OR body_html LIKE ?)")
		q := "%" + filter.Query + "%"
		args = append(args, q, q, q)
	}

	query := "SELECT * FROM messages"
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY date DESC"

	limit := filter.Limit
	switch {
	case limit == 0:
		limit = defaultListLimit
	case limit < 0:
		limit = 1
	case limit > listLimitCap:
		limit = listLimitCap
	}
	query += fmt.Sprintf(" LIMIT %d", limit)
	if filter.Skip > 0 {
		query += fmt.Sprintf(" OFFSET %d", filter.Skip)
	}

	rows, err := s.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying messages: %w", err)
	}
	defer rows.Close()

	var messages []model.EmailMessage
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}

	return messages, rows.Err()
}

// CountByFolder returns per-folder message counts for one account,
// ordered by folder name.
func (s *SQLiteStore) CountByFolder(ctx context.Context, accountID string) ([]FolderCount, error) {
	rows, err := s.db.QueryxContext(ctx, `
		SELECT folder, COUNT(*) AS count
		FROM messages
		WHERE account_id = ?
		GROUP BY folder
		ORDER BY folder`,
		accountID,
	)
	if err != nil {
		return nil, fmt.Errorf("counting messages by folder: %w", err)
	}
	defer rows.Close()

	var counts []FolderCount
	for rows.Next() {
		var fc FolderCount
		if err := rows.Scan(&fc.Folder, &fc.Count); err != nil {
			return nil, fmt.Errorf("scanning folder count: %w", err)
		}
		counts = append(counts, fc)
	}

	return counts, rows.Err()
}

// scanMessage scans a message row from a sqlx.Rows result set.
func scanMessage(rows *sqlx.Rows) (model.EmailMessage, error) {
	var (
		msg         model.EmailMessage
		toJSON      string
		ccJSON      string
		labelsJSON  string
		category    string
		headersJSON string
		date        time.Time
		createdAt   time.Time
		updatedAt   time.Time
	)

	err := rows.Scan(
		&msg.ID, &msg.AccountID, &msg.MessageID, &msg.Folder,
		&msg.Subject, &msg.Sender, &toJSON, &ccJSON,
		&date, &msg.Snippet, &msg.BodyText, &msg.BodyHTML,
		&labelsJSON, &category, &headersJSON,
		&createdAt, &updatedAt,
	)
	if err != nil {
		return model.EmailMessage{}, fmt.Errorf("scanning message row: %w", err)
	}

	msg.Date = date
	msg.CreatedAt = createdAt
	msg.UpdatedAt = updatedAt
	msg.AICategory = model.Category(category)

	if err := json.Unmarshal([]byte(toJSON), &msg.To); err != nil {
		return model.EmailMessage{}, fmt.Errorf("unmarshaling to_addrs: %w", err)
	}
	if err := json.Unmarshal([]byte(ccJSON), &msg.Cc); err != nil {
		return model.EmailMessage{}, fmt.Errorf("unmarshaling cc_addrs: %w", err)
	}
	if err := json.Unmarshal([]byte(labelsJSON), &msg.Labels); err != nil {
		return model.EmailMessage{}, fmt.Errorf("unmarshaling labels: %w", err)
	}
	if err := json.Unmarshal([]byte(headersJSON), &msg.RawHeaders); err != nil {
		return model.EmailMessage{}, fmt.Errorf("unmarshaling raw_headers: %w", err)
	}

	return msg, nil
}

// emptyIfNil keeps JSON columns as [] instead of null.
func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
