package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/vberezkin/linkcut/internal/database"
	"github.com/vberezkin/linkcut/internal/models"
)

type linkRecord struct {
	ID         int64     `db:"id"`
	ShortCode  string    `db:"short_code"`
	TargetURL  string    `db:"target_url"`
	OwnerID    string    `db:"owner_id"`
	ClickCount int64     `db:"click_count"`
	CreatedAt  time.Time `db:"created_at"`
}

func (r *linkRecord) toLink() *models.Link {
	return &models.Link{
		ID:         r.ID,
		Code:       r.ShortCode,
		TargetURL:  r.TargetURL,
		OwnerID:    r.OwnerID,
		ClickCount: r.ClickCount,
		CreatedAt:  r.CreatedAt,
	}
}

// LinkRepository persists links in PostgreSQL. The short_code unique
// constraint is the authoritative collision guard, and the click counter
// is only ever changed through a single atomic UPDATE.
type LinkRepository struct {
	db *sqlx.DB
}

func NewLinkRepository(db *sqlx.DB) *LinkRepository {
	return &LinkRepository{
		db: db,
	}
}

// Insert stores a new link. It returns database.ErrCodeExists when the
// short code is already taken, which callers handle by retrying with a
// freshly generated code.
func (r *LinkRepository) Insert(ctx context.Context, code, targetURL, ownerID string) (*models.Link, error) {
	const op = "database.postgres.LinkRepository.Insert"

	rec := new(linkRecord)
	query := `INSERT INTO links(short_code, target_url, owner_id)
		VALUES ($1, $2, $3)
		RETURNING *`

	err := r.db.GetContext(ctx, rec, query, code, targetURL, ownerID)
	if err != nil {
		if isUniqueViolationError(err) {
			return nil, fmt.Errorf("%s: %w", op, database.ErrCodeExists)
		}

		return nil, fmt.Errorf("%s: failed to insert link record: %w", op, err)
	}

	return rec.toLink(), nil
}

// FindByCode looks up a link without touching its click counter.
func (r *LinkRepository) FindByCode(ctx context.Context, code string) (*models.Link, error) {
	const op = "database.postgres.LinkRepository.FindByCode"

	rec := new(linkRecord)
	query := `SELECT * FROM links
		WHERE short_code = $1`

	err := r.db.GetContext(ctx, rec, query, code)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, database.ErrLinkNotFound)
		}

		return nil, fmt.Errorf("%s: failed to get link record: %w", op, err)
	}

	return rec.toLink(), nil
}

// IncrementAndFetch bumps the click counter and returns the updated link
// in one statement. Concurrent calls on the same code are serialized by
// the database, so no increment is ever lost.
func (r *LinkRepository) IncrementAndFetch(ctx context.Context, code string) (*models.Link, error) {
	const op = "database.postgres.LinkRepository.IncrementAndFetch"

	rec := new(linkRecord)
	query := `UPDATE links
		SET click_count = click_count + 1
		WHERE short_code = $1
		RETURNING *`

	err := r.db.GetContext(ctx, rec, query, code)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, database.ErrLinkNotFound)
		}

		return nil, fmt.Errorf("%s: failed to increment link record: %w", op, err)
	}

	return rec.toLink(), nil
}

// ListByOwner returns all links created by the given owner, newest first.
func (r *LinkRepository) ListByOwner(ctx context.Context, ownerID string) ([]models.Link, error) {
	const op = "database.postgres.LinkRepository.ListByOwner"

	var recs []linkRecord
	query := `SELECT * FROM links
		WHERE owner_id = $1
		ORDER BY created_at DESC, id DESC`

	if err := r.db.SelectContext(ctx, &recs, query, ownerID); err != nil {
		return nil, fmt.Errorf("%s: failed to list link records: %w", op, err)
	}

	links := make([]models.Link, 0, len(recs))
	for _, rec := range recs {
		links = append(links, *rec.toLink())
	}

	return links, nil
}

// ExistsByCode reports whether a short code is already taken. It backs the
// generator's advisory pre-check; the unique constraint remains the authority.
func (r *LinkRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	const op = "database.postgres.LinkRepository.ExistsByCode"

	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM links WHERE short_code = $1)`

	if err := r.db.GetContext(ctx, &exists, query, code); err != nil {
		return false, fmt.Errorf("%s: failed to check link record existence: %w", op, err)
	}

	return exists, nil
}
