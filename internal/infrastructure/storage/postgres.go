// Package storage persists canonicalized records into Postgres.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/andriyandriyan/berandamuslim-scraper/internal/domain"
	"github.com/andriyandriyan/berandamuslim-scraper/internal/ports"
)

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// Open connects to Postgres and verifies the connection.
func Open(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

// Store implements ports.Store on a sqlx handle.
type Store struct {
	db *sqlx.DB
}

var _ ports.Store = (*Store)(nil)

// New wires a connected database handle.
func New(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// ListSources returns non-deleted sources with their stored article
// counts. The count column is written ahead of each catch-up fetch, so
// it reflects the last observed remote total rather than local rows.
func (s *Store) ListSources(ctx context.Context) ([]domain.Source, error) {
	query, args, err := psql.
		Select("id", "name", "url", "article_sources_count").
		From("sources").
		Where("deleted_at IS NULL").
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build sources query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query sources: %w", err)
	}
	defer rows.Close()

	var sources []domain.Source
	for rows.Next() {
		var source domain.Source
		if err := rows.Scan(&source.ID, &source.Name, &source.URL, &source.ArticlesCount); err != nil {
			return nil, fmt.Errorf("scan source: %w", err)
		}
		sources = append(sources, source)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sources: %w", err)
	}

	return sources, nil
}

// ListChannels returns non-deleted YouTube channels.
func (s *Store) ListChannels(ctx context.Context) ([]domain.Channel, error) {
	query, args, err := psql.
		Select("id", "name", "custom_url").
		From("channels").
		Where("deleted_at IS NULL").
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build channels query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query channels: %w", err)
	}
	defer rows.Close()

	var channels []domain.Channel
	for rows.Next() {
		var channel domain.Channel
		if err := rows.Scan(&channel.ID, &channel.Name, &channel.CustomURL); err != nil {
			return nil, fmt.Errorf("scan channel: %w", err)
		}
		channels = append(channels, channel)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate channels: %w", err)
	}

	return channels, nil
}

// ListInstagramAccounts returns non-deleted accounts with their first
// configured city, the fallback when a post has no resolvable location.
func (s *Store) ListInstagramAccounts(ctx context.Context) ([]domain.InstagramAccount, error) {
	query, args, err := psql.
		Select("ia.id", "ia.username", "iac.city_id").
		Options("DISTINCT ON (ia.id)").
		From("instagram_accounts ia").
		Join("instagram_account_cities iac ON iac.instagram_account_id = ia.id").
		Where("ia.deleted_at IS NULL").
		OrderBy("ia.id", "iac.city_id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build accounts query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query instagram accounts: %w", err)
	}
	defer rows.Close()

	var accounts []domain.InstagramAccount
	for rows.Next() {
		var account domain.InstagramAccount
		if err := rows.Scan(&account.ID, &account.Username, &account.CityID); err != nil {
			return nil, fmt.Errorf("scan instagram account: %w", err)
		}
		accounts = append(accounts, account)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate instagram accounts: %w", err)
	}

	return accounts, nil
}

// FindLocationByMapID resolves an external map id to a geocoded
// location. A missing mapping returns (nil, nil); the caller decides
// whether that is worth a warning.
func (s *Store) FindLocationByMapID(ctx context.Context, mapID string) (*domain.KajianLocation, error) {
	query, args, err := psql.
		Select("kl.id", "kl.city_id", "kl.lat", "kl.lng").
		From("kajian_location_maps klm").
		Join("kajian_locations kl ON kl.id = klm.kajian_location_id").
		Where(squirrel.Eq{"klm.map_id": mapID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build location query: %w", err)
	}

	var location domain.KajianLocation
	row := s.db.QueryRowContext(ctx, query, args...)
	if err := row.Scan(&location.ID, &location.CityID, &location.Lat, &location.Lng); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("query location by map id: %w", err)
	}

	return &location, nil
}

// InTx runs fn inside one transaction bounded by a wall-clock budget.
// Exceeding the budget cancels the context, which fails the pending
// statement and rolls the whole pass back.
func (s *Store) InTx(ctx context.Context, timeout time.Duration, fn func(context.Context, ports.TxStore) error) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if err := fn(ctx, &txStore{tx: tx}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			return fmt.Errorf("rollback after %v: %w", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

// wrapConflict converts unique-constraint violations into ErrConflict:
// they mean dedup or id generation misbehaved, and the pass must fail.
func wrapConflict(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return fmt.Errorf("%w: %s", domain.ErrConflict, pqErr.Constraint)
	}
	return err
}
