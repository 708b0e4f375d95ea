package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/SergeiKhy/qrlink/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrLinkNotFound = errors.New("link not found")
	ErrCodeExists   = errors.New("short code already exists")
)

const pgUniqueViolation = "23505"

type LinkRepository interface {
	Create(ctx context.Context, link *models.Link) error
	GetByCode(ctx context.Context, code string) (*models.Link, error)
	Delete(ctx context.Context, code string) error
}

type linkRepository struct {
	db *PostgresDB
}

func NewLinkRepository(db *PostgresDB) LinkRepository {
	return &linkRepository{db: db}
}

func (r *linkRepository) Create(ctx context.Context, link *models.Link) error {
	query := `
		INSERT INTO links (code, type, payload, ios_url, android_url)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	err := r.db.Pool.QueryRow(
		ctx,
		query,
		link.Code,
		string(link.Type),
		link.Payload,
		nullable(link.IOSURL),
		nullable(link.AndroidURL),
	).Scan(&link.ID, &link.CreatedAt)

	if err != nil {
		if isUniqueViolation(err) {
			return ErrCodeExists
		}
		return fmt.Errorf("failed to create link: %w", err)
	}

	return nil
}

func (r *linkRepository) GetByCode(ctx context.Context, code string) (*models.Link, error) {
	query := `
		SELECT id, code, type, payload, COALESCE(ios_url, ''), COALESCE(android_url, ''), created_at
		FROM links
		WHERE code = $1
	`

	link := &models.Link{}
	var linkType string
	err := r.db.Pool.QueryRow(ctx, query, code).Scan(
		&link.ID,
		&link.Code,
		&linkType,
		&link.Payload,
		&link.IOSURL,
		&link.AndroidURL,
		&link.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrLinkNotFound
		}
		return nil, fmt.Errorf("failed to get link: %w", err)
	}
	link.Type = models.LinkType(linkType)

	return link, nil
}

func (r *linkRepository) Delete(ctx context.Context, code string) error {
	query := `DELETE FROM links WHERE code = $1`

	result, err := r.db.Pool.Exec(ctx, query, code)
	if err != nil {
		return fmt.Errorf("failed to delete link: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrLinkNotFound
	}

	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

// nullable пустая строка пишется как NULL
func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
