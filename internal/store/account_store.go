package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/nhle/onebox/internal/model"
)

// CreateAccount inserts a new account. If the account has no ID, a new
// UUID is generated and written back to the struct.
func (s *SQLiteStore) CreateAccount(ctx context.Context, acc *model.Account) error {
	if acc.ID == "" {
		acc.ID = uuid.New().String()
	}
	if acc.CreatedAt.IsZero() {
		acc.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO accounts (
			id, provider, host, port, username, password, use_ssl, description, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		acc.ID, acc.Provider, acc.Host, acc.Port,
		acc.Username, acc.Password, boolToInt(acc.UseSSL),
		acc.Description, acc.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("creating account %s: %w", acc.ID, err)
	}

	return nil
}

// ListAccounts retrieves all accounts ordered by creation time.
func (s *SQLiteStore) ListAccounts(ctx context.Context) ([]model.Account, error) {
	rows, err := s.db.QueryxContext(ctx, "SELECT * FROM accounts ORDER BY created_at")
	if err != nil {
		return nil, fmt.Errorf("querying accounts: %w", err)
	}
	defer rows.Close()

	var accounts []model.Account
	for rows.Next() {
		acc, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, acc)
	}

	return accounts, rows.Err()
}

// GetAccount retrieves a single account by ID. It returns ErrNotFound
// when no such account exists.
func (s *SQLiteStore) GetAccount(ctx context.Context, id string) (*model.Account, error) {
	rows, err := s.db.QueryxContext(ctx, "SELECT * FROM accounts WHERE id = ?", id)
	if err != nil {
		return nil, fmt.Errorf("querying account %s: %w", id, err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("getting account %s: %w", id, err)
		}
		return nil, ErrNotFound
	}

	acc, err := scanAccount(rows)
	if err != nil {
		return nil, fmt.Errorf("getting account %s: %w", id, err)
	}

	return &acc, nil
}

// scanAccount scans an account row from a sqlx.Rows result set.
func scanAccount(rows *sqlx.Rows) (model.Account, error) {
	var (
		acc       model.Account
		useSSL    int
		createdAt time.Time
	)

	err := rows.Scan(
		&acc.ID, &acc.Provider, &acc.Host, &acc.Port,
		&acc.Username, &acc.Password, &useSSL,
		&acc.Description, &createdAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Account{}, ErrNotFound
		}
		return model.Account{}, fmt.Errorf("scanning account row: %w", err)
	}

	acc.UseSSL = useSSL != 0
	acc.CreatedAt = createdAt

	return acc, nil
}
