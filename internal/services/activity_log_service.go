package services

import (
	"cafe_pos_backend/internal/models"
	"cafe_pos_backend/internal/repositories"
	"cafe_pos_backend/pkg/utils"
)

// Audit actions written by the services. The Z-report counts
// ActionOrderCancelled entries in its window.
const (
	ActionOrderCancelled = "order.cancelled"
	ActionTableTransfer  = "table.transferred"
	ActionTableMerge     = "table.merged"
	ActionEndOfDay       = "day.closed"
	ActionAdminUnlock    = "admin.unlocked"
	ActionPinChanged     = "admin.pin_changed"
	ActionDataArchived   = "data.archived"
)

// ActivityLogService records and lists the audit trail. Recording never
// fails the caller's operation when invoked outside a transaction.
type ActivityLogService interface {
	Record(action string, details string)
	GetLogs(filters models.LogFilters) ([]models.ActivityLog, int, error)
}

type activityLogService struct {
	logRepo repositories.ActivityLogRepository
}

func NewActivityLogService(logRepo repositories.ActivityLogRepository) ActivityLogService {
	return &activityLogService{logRepo: logRepo}
}

func (s *activityLogService) Record(action string, details string) {
	entry := &models.ActivityLog{Action: action}
	if details != "" {
		entry.Details = &details
	}
	if err := s.logRepo.CreateLog(nil, entry); err != nil {
		utils.LogError(err, "failed to write activity log: "+action)
	}
}

func (s *activityLogService) GetLogs(filters models.LogFilters) ([]models.ActivityLog, int, error) {
	if filters.PageSize <= 0 {
		filters.PageSize = 50
	}
	if filters.Page <= 0 {
		filters.Page = 1
	}
	return s.logRepo.GetLogs(filters)
}
