package repos

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/architeacher/items/internal/domain/model"
	"github.com/architeacher/items/internal/ports"
	"github.com/architeacher/items/pkg/logger"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	itemsTable = "items"

	returningColumns = "RETURNING id, name, description, created_at, updated_at"

	createItemsTable = `CREATE TABLE IF NOT EXISTS items (
	id BIGSERIAL PRIMARY KEY,
	name VARCHAR(255) NOT NULL,
	description TEXT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`
)

var (
	psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

	itemColumns = []string{"id", "name", "description", "created_at", "updated_at"}

	_ ports.ItemsRepository = (*ItemsRepository)(nil)
	_ ports.SchemaManager   = (*ItemsRepository)(nil)
)

type (
	// PoolOps is the part of the connection pool the repository needs.
	PoolOps interface {
		Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
		Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	}

	// PoolProvider returns the current pool, or nil before the store is
	// connected.
	PoolProvider func() PoolOps

	ItemsRepository struct {
		pool    PoolProvider
		scanner Scanner
		logger  logger.Logger
	}

	itemRow struct {
		ID          int64     `db:"id"`
		Name        string    `db:"name"`
		Description *string   `db:"description"`
		CreatedAt   time.Time `db:"created_at"`
		UpdatedAt   time.Time `db:"updated_at"`
	}
)

func NewItemsRepository(pool PoolProvider, scanner Scanner, log logger.Logger) *ItemsRepository {
	return &ItemsRepository{
		pool:    pool,
		scanner: scanner,
		logger:  log,
	}
}

// StaticPool adapts a fixed pool to a PoolProvider.
func StaticPool(pool PoolOps) PoolProvider {
	return func() PoolOps {
		return pool
	}
}

func (r *ItemsRepository) EnsureSchema(ctx context.Context) error {
	pool, err := r.acquire()
	if err != nil {
		return err
	}

	if _, err := pool.Exec(ctx, createItemsTable); err != nil {
		return fmt.Errorf("%w: creating items table: %v", model.ErrDatabaseQuery, err)
	}

	r.logger.Info().Str("table", itemsTable).Msg("schema ensured")

	return nil
}

func (r *ItemsRepository) List(ctx context.Context) ([]*model.Item, error) {
	query, args, err := psql.Select(itemColumns...).
		From(itemsTable).
		OrderBy("created_at DESC", "id DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}

	var rows []itemRow
	if err := r.queryAll(ctx, &rows, query, args...); err != nil {
		return nil, err
	}

	items := make([]*model.Item, 0, len(rows))
	for index := range rows {
		items = append(items, rows[index].toItem())
	}

	return items, nil
}

func (r *ItemsRepository) FetchByID(ctx context.Context, id model.ItemID) (*model.Item, error) {
	query, args, err := psql.Select(itemColumns...).
		From(itemsTable).
		Where(sq.Eq{"id": int64(id)}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}

	return r.queryOne(ctx, query, args...)
}

func (r *ItemsRepository) Create(ctx context.Context, fields model.ItemFields) (*model.Item, error) {
	query, args, err := psql.Insert(itemsTable).
		Columns("name", "description").
		Values(fields.Name, fields.Description).
		Suffix(returningColumns).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build insert query: %w", err)
	}

	item, err := r.queryOne(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	if item == nil {
		return nil, fmt.Errorf("%w: insert returned no row", model.ErrDatabaseQuery)
	}

	return item, nil
}

func (r *ItemsRepository) Update(ctx context.Context, id model.ItemID, fields model.ItemFields) (*model.Item, error) {
	query, args, err := psql.Update(itemsTable).
		Set("name", fields.Name).
		Set("description", fields.Description).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": int64(id)}).
		Suffix(returningColumns).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build update query: %w", err)
	}

	return r.queryOne(ctx, query, args...)
}

func (r *ItemsRepository) Delete(ctx context.Context, id model.ItemID) (bool, error) {
	query, args, err := psql.Delete(itemsTable).
		Where(sq.Eq{"id": int64(id)}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build delete query: %w", err)
	}

	pool, err := r.acquire()
	if err != nil {
		return false, err
	}

	result, err := pool.Exec(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("%w: %v", model.ErrDatabaseQuery, err)
	}

	return result.RowsAffected() > 0, nil
}

// queryOne returns nil without an error when the statement yields no row.
func (r *ItemsRepository) queryOne(ctx context.Context, query string, args ...any) (*model.Item, error) {
	pool, err := r.acquire()
	if err != nil {
		return nil, err
	}

	rows, err := pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrDatabaseQuery, err)
	}
	defer rows.Close()

	var row itemRow
	if err := r.scanner.ScanOne(&row, rows); err != nil {
		if r.scanner.IsNotFound(err) {
			return nil, nil
		}

		return nil, fmt.Errorf("%w: %v", model.ErrDatabaseQuery, err)
	}

	return row.toItem(), nil
}

func (r *ItemsRepository) queryAll(ctx context.Context, dst *[]itemRow, query string, args ...any) error {
	pool, err := r.acquire()
	if err != nil {
		return err
	}

	rows, err := pool.Query(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: %v", model.ErrDatabaseQuery, err)
	}
	defer rows.Close()

	if err := r.scanner.ScanAll(dst, rows); err != nil {
		return fmt.Errorf("%w: %v", model.ErrDatabaseQuery, err)
	}

	return nil
}

func (r *ItemsRepository) acquire() (PoolOps, error) {
	pool := r.pool()
	if pool == nil {
		return nil, fmt.Errorf("%w: no connection pool", model.ErrDatabaseQuery)
	}

	return pool, nil
}

func (row itemRow) toItem() *model.Item {
	return &model.Item{
		ID:          model.ItemID(row.ID),
		Name:        row.Name,
		Description: row.Description,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
}
