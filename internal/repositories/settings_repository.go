package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"cafe_pos_backend/internal/models"

	"github.com/google/uuid"
)

// SettingsRepository manages the singleton application settings row.
type SettingsRepository interface {
	GetSettings() (*models.AppSettings, error)
	SaveSettings(executor SQLExecutor, settings *models.AppSettings) (*models.AppSettings, error)
}

type settingsRepository struct {
	db *sql.DB
}

// NewSettingsRepository creates a new instance of SettingsRepository.
func NewSettingsRepository(db *sql.DB) SettingsRepository {
	return &settingsRepository{db: db}
}

func (r *settingsRepository) executorOrDB(executor SQLExecutor) SQLExecutor {
	if executor != nil {
		return executor
	}
	return r.db
}

const settingsColumns = `id, admin_pin_hash, security_question, security_answer, updated_at`

func scanSettings(row scanner) (*models.AppSettings, error) {
	var s models.AppSettings
	err := row.Scan(&s.ID, &s.AdminPinHash, &s.SecurityQuestion, &s.SecurityAnswer, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: scanning settings: %v", ErrDatabaseError, err)
	}
	return &s, nil
}

// GetSettings returns the settings row. When none exists yet, callers
// get ErrNotFound and should treat the installation as unprotected.
func (r *settingsRepository) GetSettings() (*models.AppSettings, error) {
	query := `SELECT ` + settingsColumns + ` FROM app_settings ORDER BY updated_at DESC LIMIT 1`
	return scanSettings(r.db.QueryRow(query))
}

// SaveSettings creates the settings row on first use and overwrites it
// afterwards. The table never holds more than one row.
func (r *settingsRepository) SaveSettings(executor SQLExecutor, settings *models.AppSettings) (*models.AppSettings, error) {
	if settings.ID == "" {
		existing, err := r.GetSettings()
		switch {
		case err == nil:
			settings.ID = existing.ID
		case errors.Is(err, ErrNotFound):
			settings.ID = uuid.New().String()
		default:
			return nil, err
		}
	}
	query := `
		INSERT INTO app_settings (` + settingsColumns + `)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			admin_pin_hash = EXCLUDED.admin_pin_hash,
			security_question = EXCLUDED.security_question,
			security_answer = EXCLUDED.security_answer,
			updated_at = EXCLUDED.updated_at
		RETURNING ` + settingsColumns
	row := r.executorOrDB(executor).QueryRow(query,
		settings.ID, settings.AdminPinHash, settings.SecurityQuestion, settings.SecurityAnswer,
		time.Now())
	return scanSettings(row)
}
