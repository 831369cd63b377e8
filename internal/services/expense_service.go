package services

import (
	"errors"
	"strings"
	"time"

	"cafe_pos_backend/internal/models"
	"cafe_pos_backend/internal/repositories"
	"cafe_pos_backend/pkg/utils"
)

var (
	ErrExpenseNotFound      = errors.New("expense not found")
	ErrExpenseAmountInvalid = errors.New("expense amount must be positive")
	ErrDescriptionEmpty     = errors.New("description cannot be empty")
)

type CreateExpenseRequest struct {
	Description   string  `json:"description" binding:"required"`
	Amount        int64   `json:"amount" binding:"required,gt=0"`
	Category      *string `json:"category"`
	PaymentMethod string  `json:"payment_method" binding:"required"`
}

type UpdateExpenseRequest struct {
	Description   *string `json:"description"`
	Amount        *int64  `json:"amount"`
	Category      *string `json:"category"`
	PaymentMethod *string `json:"payment_method"`
}

// ExpenseService tracks outgoing money. Cash expenses reduce the
// expected drawer at end of day.
type ExpenseService interface {
	CreateExpense(req CreateExpenseRequest) (*models.Expense, error)
	GetExpenses(filters models.ExpenseFilters) ([]models.Expense, int, error)
	UpdateExpense(expenseID string, req UpdateExpenseRequest) (*models.Expense, error)
	DeleteExpense(expenseID string) error
	GetExpenseStats() (*models.ExpenseStats, error)
}

type expenseService struct {
	expenseRepo repositories.ExpenseRepository
}

func NewExpenseService(expenseRepo repositories.ExpenseRepository) ExpenseService {
	return &expenseService{expenseRepo: expenseRepo}
}

func validateMethod(method string) error {
	if method != models.PaymentMethodCash && method != models.PaymentMethodCard {
		return ErrUnknownPaymentMethod
	}
	return nil
}

func (s *expenseService) CreateExpense(req CreateExpenseRequest) (*models.Expense, error) {
	description := strings.TrimSpace(req.Description)
	if description == "" {
		return nil, ErrDescriptionEmpty
	}
	if req.Amount <= 0 {
		return nil, ErrExpenseAmountInvalid
	}
	if err := validateMethod(req.PaymentMethod); err != nil {
		return nil, err
	}
	expense := &models.Expense{
		Description:   description,
		Amount:        req.Amount,
		Category:      req.Category,
		PaymentMethod: req.PaymentMethod,
	}
	if _, err := s.expenseRepo.CreateExpense(nil, expense); err != nil {
		return nil, err
	}
	return expense, nil
}

func (s *expenseService) GetExpenses(filters models.ExpenseFilters) ([]models.Expense, int, error) {
	if filters.Limit <= 0 {
		filters.Limit = 50
	}
	return s.expenseRepo.GetExpenses(filters)
}

func (s *expenseService) UpdateExpense(expenseID string, req UpdateExpenseRequest) (*models.Expense, error) {
	expense, err := s.expenseRepo.GetExpenseByID(expenseID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrExpenseNotFound
		}
		return nil, err
	}

	if req.Description != nil {
		description := strings.TrimSpace(*req.Description)
		if description == "" {
			return nil, ErrDescriptionEmpty
		}
		expense.Description = description
	}
	if req.Amount != nil {
		if *req.Amount <= 0 {
			return nil, ErrExpenseAmountInvalid
		}
		expense.Amount = *req.Amount
	}
	if req.Category != nil {
		expense.Category = req.Category
	}
	if req.PaymentMethod != nil {
		if err := validateMethod(*req.PaymentMethod); err != nil {
			return nil, err
		}
		expense.PaymentMethod = *req.PaymentMethod
	}

	if err := s.expenseRepo.UpdateExpense(nil, expense); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrExpenseNotFound
		}
		return nil, err
	}
	return expense, nil
}

func (s *expenseService) DeleteExpense(expenseID string) error {
	err := s.expenseRepo.DeleteExpense(nil, expenseID)
	if errors.Is(err, repositories.ErrNotFound) {
		return ErrExpenseNotFound
	}
	return err
}

// GetExpenseStats summarizes today (business day) and the calendar
// month, plus the heaviest category this month.
func (s *expenseService) GetExpenseStats() (*models.ExpenseStats, error) {
	now := time.Now()
	dayStart := utils.BusinessShiftStart(now)
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.Local)

	todayTotal, err := s.expenseRepo.SumExpensesBetween(dayStart, now)
	if err != nil {
		return nil, err
	}
	monthTotal, err := s.expenseRepo.SumExpensesBetween(monthStart, now)
	if err != nil {
		return nil, err
	}
	stats := &models.ExpenseStats{
		TodayTotal: todayTotal,
		MonthTotal: monthTotal,
	}

	categories, err := s.expenseRepo.GetCategoryTotalsBetween(monthStart, now)
	if err != nil {
		return nil, err
	}
	if len(categories) > 0 {
		stats.TopCategory = &categories[0]
	}
	return stats, nil
}
