package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"cafe_pos_backend/internal/models"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// TableRepository defines the interface for table-related database operations.
type TableRepository interface {
	CreateTable(executor SQLExecutor, name string) (*models.Table, error)
	GetTableByID(tableID string) (*models.Table, error)
	GetTablesWithStatus() ([]models.Table, error)
	DeleteTable(executor SQLExecutor, tableID string) error
}

type tableRepository struct {
	db *sql.DB
}

// NewTableRepository creates a new instance of TableRepository.
func NewTableRepository(db *sql.DB) TableRepository {
	return &tableRepository{db: db}
}

func (r *tableRepository) executorOrDB(executor SQLExecutor) SQLExecutor {
	if executor != nil {
		return executor
	}
	return r.db
}

func (r *tableRepository) CreateTable(executor SQLExecutor, name string) (*models.Table, error) {
	table := &models.Table{
		ID:        uuid.New().String(),
		Name:      name,
		CreatedAt: time.Now(),
	}
	query := `INSERT INTO tables (id, name, created_at) VALUES ($1, $2, $3)`
	_, err := r.executorOrDB(executor).Exec(query, table.ID, table.Name, table.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return nil, fmt.Errorf("%w: table name %q", ErrDuplicateKey, name)
		}
		return nil, fmt.Errorf("%w: creating table: %v", ErrDatabaseError, err)
	}
	return table, nil
}

func (r *tableRepository) GetTableByID(tableID string) (*models.Table, error) {
	table := &models.Table{}
	query := `SELECT id, name, created_at FROM tables WHERE id = $1`
	err := r.db.QueryRow(query, tableID).Scan(&table.ID, &table.Name, &table.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting table %s: %v", ErrDatabaseError, tableID, err)
	}
	return table, nil
}

// GetTablesWithStatus lists every table together with its open-order
// status. A table has at most one OPEN order at a time; its lock flag
// mirrors that order's lock flag.
func (r *tableRepository) GetTablesWithStatus() ([]models.Table, error) {
	tables := []models.Table{}
	query := `
		SELECT t.id, t.name, t.created_at,
		       o.id IS NOT NULL AS has_open_order,
		       COALESCE(o.is_locked, FALSE) AS is_locked
		FROM tables t
		LEFT JOIN orders o ON o.table_id = t.id AND o.status = $1
		ORDER BY t.name`
	rows, err := r.db.Query(query, models.OrderStatusOpen)
	if err != nil {
		return nil, fmt.Errorf("%w: querying tables: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var t models.Table
		if err := rows.Scan(&t.ID, &t.Name, &t.CreatedAt, &t.HasOpenOrder, &t.IsLocked); err != nil {
			return nil, fmt.Errorf("%w: scanning table: %v", ErrDatabaseError, err)
		}
		tables = append(tables, t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating table rows: %v", ErrDatabaseError, err)
	}
	return tables, nil
}

func (r *tableRepository) DeleteTable(executor SQLExecutor, tableID string) error {
	result, err := r.executorOrDB(executor).Exec(`DELETE FROM tables WHERE id = $1`, tableID)
	if err != nil {
		return fmt.Errorf("%w: deleting table %s: %v", ErrDatabaseError, tableID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: getting rows affected for table delete %s: %v", ErrDatabaseError, tableID, err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
