package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/rl1809/storefront/internal/core/domain"
	"github.com/rl1809/storefront/internal/port"
)

// unit_price is read as text so the exact decimal survives without a numeric codec.
const pgItemColumns = `id, item_name, unit_price::text,
	COALESCE(color, ''), COALESCE(description, ''), COALESCE(image, ''),
	qty_initial_bought, qty_sold`

type pgxQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type PostgresAdapter struct {
	pool *pgxpool.Pool
	q    pgxQuerier
	tx   bool
}

func NewPostgresAdapter(pool *pgxpool.Pool) *PostgresAdapter {
	return &PostgresAdapter{pool: pool, q: pool}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (domain.Item, error) {
	var (
		item  domain.Item
		price string
	)
	err := row.Scan(&item.ID, &item.Name, &price, &item.Color, &item.Description, &item.Image, &item.Bought, &item.Sold)
	if err != nil {
		return domain.Item{}, err
	}

	item.UnitPrice, err = decimal.NewFromString(price)
	if err != nil {
		return domain.Item{}, fmt.Errorf("parse unit_price %q: %w", price, err)
	}
	return item, nil
}

func (p *PostgresAdapter) GetItem(ctx context.Context, id int64) (*domain.Item, error) {
	item, err := scanItem(p.q.QueryRow(ctx, `SELECT `+pgItemColumns+` FROM inventory WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query item: %w", err)
	}
	return &item, nil
}

func (p *PostgresAdapter) GetItems(ctx context.Context, ids []int64) ([]domain.Item, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return p.queryItems(ctx, `SELECT `+pgItemColumns+` FROM inventory WHERE id = ANY($1) ORDER BY id`, ids)
}

func (p *PostgresAdapter) ListItems(ctx context.Context) ([]domain.Item, error) {
	return p.queryItems(ctx, `SELECT `+pgItemColumns+` FROM inventory ORDER BY id`)
}

func (p *PostgresAdapter) queryItems(ctx context.Context, query string, args ...any) ([]domain.Item, error) {
	rows, err := p.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query items: %w", err)
	}

	items, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Item, error) {
		return scanItem(row)
	})
	if err != nil {
		return nil, fmt.Errorf("scan items: %w", err)
	}
	return items, nil
}

func (p *PostgresAdapter) InsertItem(ctx context.Context, item domain.Item) (bool, error) {
	tag, err := p.q.Exec(ctx, `
		INSERT INTO inventory
			(id, item_name, unit_price, color, description, image, qty_initial_bought, qty_sold)
		VALUES ($1, $2, $3::numeric, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO NOTHING`,
		item.ID, item.Name, item.UnitPrice.String(), item.Color, item.Description, item.Image, item.Bought, item.Sold,
	)
	if err != nil {
		return false, fmt.Errorf("insert item: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (p *PostgresAdapter) IncreaseBought(ctx context.Context, id int64, delta int) error {
	tag, err := p.q.Exec(ctx, `
		UPDATE inventory
		SET qty_initial_bought = qty_initial_bought + $1::bigint
		WHERE id = $2 AND qty_initial_bought <= $3::bigint - $1::bigint`,
		delta, id, domain.MaxUnits,
	)
	if err != nil {
		return fmt.Errorf("update inventory: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	item, err := p.GetItem(ctx, id)
	if err != nil {
		return err
	}
	if item == nil {
		return port.ErrItemNotFound
	}
	return port.ErrCounterOverflow
}

func (p *PostgresAdapter) IncreaseSold(ctx context.Context, id int64, delta int) error {
	tag, err := p.q.Exec(ctx, `
		UPDATE inventory
		SET qty_sold = qty_sold + $1
		WHERE id = $2 AND qty_sold + $1 <= qty_initial_bought`,
		delta, id,
	)
	if err != nil {
		return fmt.Errorf("update inventory: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	item, err := p.GetItem(ctx, id)
	if err != nil {
		return err
	}
	if item == nil {
		return port.ErrItemNotFound
	}
	return port.ErrInsufficientStock
}

func (p *PostgresAdapter) WithinTx(ctx context.Context, fn func(repo port.InventoryRepository) error) error {
	if p.tx {
		return fn(p)
	}

	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(&PostgresAdapter{pool: p.pool, q: tx, tx: true}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
