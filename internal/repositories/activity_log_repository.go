package repositories

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"cafe_pos_backend/internal/models"

	"github.com/google/uuid"
)

// ActivityLogRepository defines the interface for the audit trail.
type ActivityLogRepository interface {
	CreateLog(executor SQLExecutor, log *models.ActivityLog) error
	GetLogs(filters models.LogFilters) ([]models.ActivityLog, int, error)
	CountLogsByActionBetween(action string, start, end time.Time) (int, error)
	DeleteLogsBefore(executor SQLExecutor, cutoff time.Time) (int64, error)
}

type activityLogRepository struct {
	db *sql.DB
}

// NewActivityLogRepository creates a new instance of ActivityLogRepository.
func NewActivityLogRepository(db *sql.DB) ActivityLogRepository {
	return &activityLogRepository{db: db}
}

func (r *activityLogRepository) executorOrDB(executor SQLExecutor) SQLExecutor {
	if executor != nil {
		return executor
	}
	return r.db
}

func (r *activityLogRepository) CreateLog(executor SQLExecutor, log *models.ActivityLog) error {
	if log.ID == "" {
		log.ID = uuid.New().String()
	}
	if log.CreatedAt.IsZero() {
		log.CreatedAt = time.Now()
	}
	query := `INSERT INTO activity_logs (id, action, table_name, details, created_at)
	          VALUES ($1, $2, $3, $4, $5)`
	_, err := r.executorOrDB(executor).Exec(query,
		log.ID, log.Action, log.TableName, log.Details, log.CreatedAt)
	if err != nil {
		return fmt.Errorf("%w: creating activity log: %v", ErrDatabaseError, err)
	}
	return nil
}

func (r *activityLogRepository) GetLogs(filters models.LogFilters) ([]models.ActivityLog, int, error) {
	logs := []models.ActivityLog{}
	totalCount := 0

	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT id, action, table_name, details, created_at,
		COUNT(*) OVER() AS total_count FROM activity_logs`)

	var conditions []string
	var args []interface{}
	argCounter := 1

	if filters.Action != nil && *filters.Action != "" {
		conditions = append(conditions, fmt.Sprintf("action = $%d", argCounter))
		args = append(args, *filters.Action)
		argCounter++
	}

	if len(conditions) > 0 {
		queryBuilder.WriteString(" WHERE " + strings.Join(conditions, " AND "))
	}
	queryBuilder.WriteString(" ORDER BY created_at DESC")

	if filters.PageSize > 0 {
		queryBuilder.WriteString(fmt.Sprintf(" LIMIT $%d", argCounter))
		args = append(args, filters.PageSize)
		argCounter++
		if filters.Page > 0 {
			offset := (filters.Page - 1) * filters.PageSize
			queryBuilder.WriteString(fmt.Sprintf(" OFFSET $%d", argCounter))
			args = append(args, offset)
		}
	}

	rows, err := r.db.Query(queryBuilder.String(), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: querying activity logs: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var l models.ActivityLog
		err := rows.Scan(&l.ID, &l.Action, &l.TableName, &l.Details, &l.CreatedAt, &totalCount)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: scanning activity log: %v", ErrDatabaseError, err)
		}
		logs = append(logs, l)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating activity log rows: %v", ErrDatabaseError, err)
	}
	return logs, totalCount, nil
}

func (r *activityLogRepository) CountLogsByActionBetween(action string, start, end time.Time) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM activity_logs WHERE action = $1 AND created_at > $2 AND created_at <= $3`
	err := r.db.QueryRow(query, action, start, end).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("%w: counting %s logs: %v", ErrDatabaseError, action, err)
	}
	return count, nil
}

func (r *activityLogRepository) DeleteLogsBefore(executor SQLExecutor, cutoff time.Time) (int64, error) {
	result, err := r.executorOrDB(executor).Exec(
		`DELETE FROM activity_logs WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("%w: pruning activity logs: %v", ErrDatabaseError, err)
	}
	return result.RowsAffected()
}
