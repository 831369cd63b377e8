package services

import (
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"cafe_pos_backend/internal/models"
	"cafe_pos_backend/internal/repositories"
)

var (
	ErrTableNotFound    = errors.New("table not found")
	ErrTableNameEmpty   = errors.New("table name cannot be empty")
	ErrTableNameExists  = errors.New("table name already exists")
	ErrTableHasOpenBill = errors.New("table has an open order")
	ErrSameTable        = errors.New("source and target tables are the same")
	ErrTargetOccupied   = errors.New("target table already has an open order")
)

// TableService manages the floor plan: tables, their occupancy, and
// moving or merging open bills between them.
type TableService interface {
	CreateTable(name string) (*models.Table, error)
	GetTables() ([]models.Table, error)
	DeleteTable(tableID string) error
	TransferOrder(fromTableID, toTableID string) error
	MergeTables(sourceTableID, targetTableID string) error
}

type tableService struct {
	tableRepo   repositories.TableRepository
	orderRepo   repositories.OrderRepository
	paymentRepo repositories.PaymentRepository
	logRepo     repositories.ActivityLogRepository
	db          *sql.DB
}

func NewTableService(
	tableRepo repositories.TableRepository,
	orderRepo repositories.OrderRepository,
	paymentRepo repositories.PaymentRepository,
	logRepo repositories.ActivityLogRepository,
	db *sql.DB,
) TableService {
	return &tableService{
		tableRepo:   tableRepo,
		orderRepo:   orderRepo,
		paymentRepo: paymentRepo,
		logRepo:     logRepo,
		db:          db,
	}
}

func (s *tableService) CreateTable(name string) (*models.Table, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrTableNameEmpty
	}
	table, err := s.tableRepo.CreateTable(nil, name)
	if err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, ErrTableNameExists
		}
		return nil, err
	}
	return table, nil
}

// GetTables returns the floor plan in natural order, so "Masa 2" sorts
// before "Masa 10".
func (s *tableService) GetTables() ([]models.Table, error) {
	tables, err := s.tableRepo.GetTablesWithStatus()
	if err != nil {
		return nil, err
	}
	sort.SliceStable(tables, func(i, j int) bool {
		return naturalLess(tables[i].Name, tables[j].Name)
	})
	return tables, nil
}

// naturalLess compares strings treating digit runs as numbers and
// everything else rune by rune, so multibyte names compare whole
// characters instead of bytes.
func naturalLess(a, b string) bool {
	for a != "" && b != "" {
		aRune, aSize := utf8.DecodeRuneInString(a)
		bRune, bSize := utf8.DecodeRuneInString(b)
		if unicode.IsDigit(aRune) && unicode.IsDigit(bRune) {
			aNum, aRest := leadingInt(a)
			bNum, bRest := leadingInt(b)
			if aNum != bNum {
				return aNum < bNum
			}
			a, b = aRest, bRest
			continue
		}
		if aRune != bRune {
			return aRune < bRune
		}
		a, b = a[aSize:], b[bSize:]
	}
	return a == "" && b != ""
}

func leadingInt(s string) (int64, string) {
	i := 0
	for i < len(s) {
		r, size := utf8.DecodeRuneInString(s[i:])
		if !unicode.IsDigit(r) {
			break
		}
		i += size
	}
	n, _ := strconv.ParseInt(s[:i], 10, 64)
	return n, s[i:]
}

// DeleteTable removes a table and its closed order history. A table
// with an open bill cannot be deleted.
func (s *tableService) DeleteTable(tableID string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := s.tableRepo.GetTableByID(tableID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrTableNotFound
		}
		return err
	}
	if _, err := s.orderRepo.GetOpenOrderByTableID(tableID); err == nil {
		return ErrTableHasOpenBill
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return err
	}

	history, _, err := s.orderRepo.GetOrders(models.OrderFilters{TableID: &tableID})
	if err != nil {
		return err
	}
	for _, order := range history {
		if _, err := s.paymentRepo.DeletePaymentsByOrderID(tx, order.ID); err != nil {
			return err
		}
		if _, err := s.orderRepo.DeleteOrderItemsByOrderID(tx, order.ID); err != nil {
			return err
		}
	}
	if _, err := s.orderRepo.DeleteOrdersByTableID(tx, tableID); err != nil {
		return err
	}
	if err := s.tableRepo.DeleteTable(tx, tableID); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit table delete: %w", err)
	}
	return nil
}

// TransferOrder moves a table's open bill to an empty table.
func (s *tableService) TransferOrder(fromTableID, toTableID string) error {
	if fromTableID == toTableID {
		return ErrSameTable
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := s.tableRepo.GetTableByID(toTableID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrTableNotFound
		}
		return err
	}
	order, err := s.orderRepo.GetOpenOrderByTableID(fromTableID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrOrderNotFound
		}
		return err
	}
	if _, err := s.orderRepo.GetOpenOrderByTableID(toTableID); err == nil {
		return ErrTargetOccupied
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return err
	}

	if err := s.orderRepo.SetOrderTable(tx, order.ID, toTableID); err != nil {
		return err
	}

	details := fmt.Sprintf("order=%s from=%s to=%s", order.ID, fromTableID, toTableID)
	logEntry := &models.ActivityLog{Action: ActionTableTransfer, Details: &details}
	if err := s.logRepo.CreateLog(tx, logEntry); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit table transfer: %w", err)
	}
	return nil
}

// MergeTables folds the source table's open bill into the target
// table's open bill. Lines and payments move over, the source order is
// deleted, and the target total is recomputed from its lines.
func (s *tableService) MergeTables(sourceTableID, targetTableID string) error {
	if sourceTableID == targetTableID {
		return ErrSameTable
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	source, err := s.orderRepo.GetOpenOrderByTableID(sourceTableID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrOrderNotFound
		}
		return err
	}
	target, err := s.orderRepo.GetOpenOrderByTableID(targetTableID)
	if errors.Is(err, repositories.ErrNotFound) {
		target, err = s.orderRepo.CreateOrder(tx, targetTableID)
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrTableNotFound
		}
	}
	if err != nil {
		return err
	}

	items, err := s.orderRepo.GetOrderItemsByOrderID(tx, source.ID)
	if err != nil {
		return err
	}
	itemIDs := make([]string, 0, len(items))
	for _, item := range items {
		itemIDs = append(itemIDs, item.ID)
	}
	if err := s.orderRepo.SetOrderItemsOrder(tx, itemIDs, target.ID); err != nil {
		return err
	}
	if err := s.paymentRepo.SetPaymentsOrder(tx, source.ID, target.ID); err != nil {
		return err
	}
	if err := s.orderRepo.DeleteOrder(tx, source.ID); err != nil {
		return err
	}

	merged, err := s.orderRepo.GetOrderItemsByOrderID(tx, target.ID)
	if err != nil {
		return err
	}
	if err := s.orderRepo.SetOrderTotal(tx, target.ID, ComputeOrderTotal(merged)); err != nil {
		return err
	}

	details := fmt.Sprintf("source_order=%s target_order=%s from=%s to=%s",
		source.ID, target.ID, sourceTableID, targetTableID)
	logEntry := &models.ActivityLog{Action: ActionTableMerge, Details: &details}
	if err := s.logRepo.CreateLog(tx, logEntry); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit table merge: %w", err)
	}
	return nil
}
