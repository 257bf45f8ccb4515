package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/vbonduro/loandesk/internal/domain"
)

type ClientStore struct {
	db *sql.DB
}

func NewClientStore(db *sql.DB) *ClientStore {
	return &ClientStore{db: db}
}

func (s *ClientStore) Create(ctx context.Context, c *domain.Client) (*domain.Client, error) {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO clients (name, birthdate, phone, email, registration_date) VALUES (?, ?, ?, ?, ?)
	`, c.Name, c.Birthdate, c.Phone, c.Email, formatDate(c.RegistrationDate))
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get last insert id: %w", err)
	}

	return s.GetByID(ctx, id)
}

func (s *ClientStore) GetByID(ctx context.Context, id int64) (*domain.Client, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, birthdate, phone, email, registration_date FROM clients WHERE id = ?
	`, id)

	client, err := scanClient(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get client: %w", err)
	}
	return client, nil
}

func (s *ClientStore) List(ctx context.Context) ([]*domain.Client, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, birthdate, phone, email, registration_date FROM clients ORDER BY id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("failed to close rows", "error", err)
		}
	}()

	var clients []*domain.Client
	for rows.Next() {
		client, err := scanClient(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan client: %w", err)
		}
		clients = append(clients, client)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating clients: %w", err)
	}

	return clients, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanClient(row scanner) (*domain.Client, error) {
	c := &domain.Client{}
	var registered string
	if err := row.Scan(&c.ID, &c.Name, &c.Birthdate, &c.Phone, &c.Email, &registered); err != nil {
		return nil, err
	}
	t, err := parseDate(registered)
	if err != nil {
		return nil, err
	}
	c.RegistrationDate = t
	return c, nil
}
