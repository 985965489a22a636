package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"housing-assistant/internal/model"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

const listingColumns = `id, title, address, city, district, price, area,
	bedrooms, bathrooms, floor, orientation, description,
	contact, updated_at`

func init() {
	// modernc registers itself as "sqlite", which sqlx does not know by name
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
}

// ListingRepository handles housing listing queries
type ListingRepository struct {
	db     *sqlx.DB
	driver string
	likeOp string
}

// NewListingRepository opens a listing store for the given driver ("postgres" or "sqlite")
func NewListingRepository(driver, dsn string, maxConn, maxIdleConn int) (*ListingRepository, error) {
	switch driver {
	case "postgres":
	case "sqlite":
		if !strings.Contains(dsn, "_time_format") {
			if strings.Contains(dsn, "?") {
				dsn += "&_time_format=sqlite"
			} else {
				dsn += "?_time_format=sqlite"
			}
		}
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", driver)
	}

	db, err := sqlx.Connect(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return newListingRepository(db, driver, maxConn, maxIdleConn), nil
}

func newListingRepository(db *sqlx.DB, driver string, maxConn, maxIdleConn int) *ListingRepository {
	likeOp := "ILIKE"
	if driver == "sqlite" {
		// SQLite has no ILIKE; its LIKE is already case-insensitive for ASCII.
		// A single connection keeps in-memory databases shared across calls.
		likeOp = "LIKE"
		maxConn, maxIdleConn = 1, 1
	}

	db.SetMaxOpenConns(maxConn)
	db.SetMaxIdleConns(maxIdleConn)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(2 * time.Minute)

	return &ListingRepository{db: db, driver: driver, likeOp: likeOp}
}

// Driver returns the database driver name
func (r *ListingRepository) Driver() string {
	return r.driver
}

// Ping checks the database connection
func (r *ListingRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Close closes the database connection
func (r *ListingRepository) Close() error {
	return r.db.Close()
}

// Search returns listings matching the filters, most recently updated first,
// capped at filters.Limit rows.
func (r *ListingRepository) Search(ctx context.Context, filters model.SearchFilters) ([]model.Listing, error) {
	whereClause, args := applyFilters(filters, r.likeOp)

	query := r.db.Rebind(fmt.Sprintf(`
		SELECT %s
		FROM housing
		WHERE %s
		ORDER BY updated_at DESC
		LIMIT ?
	`, listingColumns, whereClause))
	args = append(args, filters.Limit)

	listings := []model.Listing{}
	if err := r.db.SelectContext(ctx, &listings, query, args...); err != nil {
		return nil, fmt.Errorf("failed to fetch listings: %w", err)
	}
	return listings, nil
}

// GetByID retrieves a single listing, or nil if it does not exist
func (r *ListingRepository) GetByID(ctx context.Context, id int64) (*model.Listing, error) {
	query := r.db.Rebind(fmt.Sprintf(`SELECT %s FROM housing WHERE id = ?`, listingColumns))

	var listing model.Listing
	if err := r.db.GetContext(ctx, &listing, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get listing: %w", err)
	}
	return &listing, nil
}

// InsertListings stores listings in a single transaction and returns how
// many rows were written. A zero UpdatedAt is stamped with the current time.
func (r *ListingRepository) InsertListings(ctx context.Context, listings []model.Listing) (int, error) {
	if len(listings) == 0 {
		return 0, nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareNamedContext(ctx, `
		INSERT INTO housing (title, address, city, district, price, area,
			bedrooms, bathrooms, floor, orientation, description, contact, updated_at)
		VALUES (:title, :address, :city, :district, :price, :area,
			:bedrooms, :bathrooms, :floor, :orientation, :description, :contact, :updated_at)
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for i := range listings {
		item := listings[i]
		if item.UpdatedAt.IsZero() {
			item.UpdatedAt = now
		}
		if _, err := stmt.ExecContext(ctx, item); err != nil {
			return 0, fmt.Errorf("failed to insert listing %q: %w", item.Title, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return len(listings), nil
}
