package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/rl1809/storefront/internal/core/domain"
	"github.com/rl1809/storefront/internal/port"
)

const itemColumns = `id, item_name, unit_price,
	COALESCE(color, '') AS color, COALESCE(description, '') AS description, COALESCE(image, '') AS image,
	qty_initial_bought, qty_sold`

type MySQLAdapter struct {
	db *sqlx.DB
	q  sqlx.ExtContext
	tx bool
}

func NewMySQLAdapter(db *sqlx.DB) *MySQLAdapter {
	return &MySQLAdapter{db: db, q: db}
}

func (m *MySQLAdapter) GetItem(ctx context.Context, id int64) (*domain.Item, error) {
	var item domain.Item
	err := sqlx.GetContext(ctx, m.q, &item, `SELECT `+itemColumns+` FROM inventory WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query item: %w", err)
	}
	return &item, nil
}

func (m *MySQLAdapter) GetItems(ctx context.Context, ids []int64) ([]domain.Item, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query, args, err := sqlx.In(`SELECT `+itemColumns+` FROM inventory WHERE id IN (?) ORDER BY id`, ids)
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var items []domain.Item
	if err := sqlx.SelectContext(ctx, m.q, &items, m.q.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("query items: %w", err)
	}
	return items, nil
}

func (m *MySQLAdapter) ListItems(ctx context.Context) ([]domain.Item, error) {
	var items []domain.Item
	if err := sqlx.SelectContext(ctx, m.q, &items, `SELECT `+itemColumns+` FROM inventory ORDER BY id`); err != nil {
		return nil, fmt.Errorf("query items: %w", err)
	}
	return items, nil
}

func (m *MySQLAdapter) InsertItem(ctx context.Context, item domain.Item) (bool, error) {
	result, err := sqlx.NamedExecContext(ctx, m.q, `
		INSERT IGNORE INTO inventory
			(id, item_name, unit_price, color, description, image, qty_initial_bought, qty_sold)
		VALUES
			(:id, :item_name, :unit_price, :color, :description, :image, :qty_initial_bought, :qty_sold)`,
		item,
	)
	if err != nil {
		return false, fmt.Errorf("insert item: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return rows > 0, nil
}

func (m *MySQLAdapter) IncreaseBought(ctx context.Context, id int64, delta int) error {
	result, err := m.q.ExecContext(ctx, `
		UPDATE inventory
		SET qty_initial_bought = qty_initial_bought + ?
		WHERE id = ? AND qty_initial_bought <= ? - ?`,
		delta, id, domain.MaxUnits, delta,
	)
	if err != nil {
		return fmt.Errorf("update inventory: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if rows > 0 {
		return nil
	}

	item, err := m.GetItem(ctx, id)
	if err != nil {
		return err
	}
	if item == nil {
		return port.ErrItemNotFound
	}
	return port.ErrCounterOverflow
}

func (m *MySQLAdapter) IncreaseSold(ctx context.Context, id int64, delta int) error {
	result, err := m.q.ExecContext(ctx, `
		UPDATE inventory
		SET qty_sold = qty_sold + ?
		WHERE id = ? AND qty_sold + ? <= qty_initial_bought`,
		delta, id, delta,
	)
	if err != nil {
		return fmt.Errorf("update inventory: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if rows > 0 {
		return nil
	}

	item, err := m.GetItem(ctx, id)
	if err != nil {
		return err
	}
	if item == nil {
		return port.ErrItemNotFound
	}
	return port.ErrInsufficientStock
}

func (m *MySQLAdapter) WithinTx(ctx context.Context, fn func(repo port.InventoryRepository) error) error {
	if m.tx {
		return fn(m)
	}

	tx, err := m.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := fn(&MySQLAdapter{db: m.db, q: tx, tx: true}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
