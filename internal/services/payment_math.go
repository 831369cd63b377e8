package services

import (
	"errors"
	"fmt"

	"cafe_pos_backend/internal/models"
)

// --- Custom Service Errors for Payments ---
var (
	ErrPaymentNotPositive   = errors.New("payment amount must be positive")
	ErrNothingToPay         = errors.New("order has no remaining balance")
	ErrCardExceedsRemaining = errors.New("card payment cannot exceed remaining balance")
	ErrSplitCountInvalid    = errors.New("split count must be positive")
	ErrItemNotPayable       = errors.New("order item is not payable")
	ErrItemQuantityInvalid  = errors.New("selected quantity exceeds unpaid quantity")
	ErrItemsPartialPayment  = errors.New("item payments must cover the selected items")
	ErrUnknownPaymentMethod = errors.New("unknown payment method")
)

// ItemSelection picks a quantity of one order line for an item payment.
type ItemSelection struct {
	ItemID   string `json:"item_id" binding:"required"`
	Quantity int    `json:"quantity" binding:"required,gt=0"`
}

// ItemAllocation tells the caller how to settle one order line: mark
// PayQuantity units paid and leave RemainderQuantity units unpaid. A
// zero remainder means the whole line is settled in place; a positive
// remainder means the line must be split into a paid and an unpaid row.
type ItemAllocation struct {
	ItemID            string
	UnitPrice         int64
	PayQuantity       int
	RemainderQuantity int
}

// PaymentPlan is the result of the pure allocation step. Amount is what
// gets recorded as the payment row; Change belongs to the customer and
// never enters the books.
type PaymentPlan struct {
	Amount         int64
	Change         int64
	CompletesOrder bool
	Items          []ItemAllocation
}

// ComputeOrderTotal sums the order lines. It ignores nothing: paid
// lines stay in the total, remaining is derived from payments instead.
func ComputeOrderTotal(items []models.OrderItem) int64 {
	var total int64
	for _, item := range items {
		total += int64(item.Quantity) * item.UnitPrice
	}
	return total
}

// ComputeRemainingAmount clamps at zero so an overpaid order never
// reports a negative balance.
func ComputeRemainingAmount(total, alreadyPaid int64) int64 {
	remaining := total - alreadyPaid
	if remaining < 0 {
		return 0
	}
	return remaining
}

// SplitShare is one equal share of the bill, rounded up so splitCount
// shares always cover it. SplitShare(100, 3) is 34: the rounding
// surplus is absorbed by the last payer, who owes only what is left. A
// split of one is the whole bill.
func SplitShare(total int64, splitCount int) (int64, error) {
	if splitCount < 1 {
		return 0, fmt.Errorf("%w: got %d", ErrSplitCountInvalid, splitCount)
	}
	if total <= 0 {
		return 0, ErrNothingToPay
	}
	return (total + int64(splitCount) - 1) / int64(splitCount), nil
}

// ComputeEffectivePayment caps a cash tender at the remaining balance
// and returns the surplus as change. Card payments have no change, so a
// tender above the balance is rejected outright.
func ComputeEffectivePayment(tendered, remaining int64, method string) (effective, change int64, err error) {
	if tendered <= 0 {
		return 0, 0, ErrPaymentNotPositive
	}
	if remaining <= 0 {
		return 0, 0, ErrNothingToPay
	}
	switch method {
	case models.PaymentMethodCash:
		if tendered > remaining {
			return remaining, tendered - remaining, nil
		}
		return tendered, 0, nil
	case models.PaymentMethodCard:
		if tendered > remaining {
			return 0, 0, fmt.Errorf("%w: tendered %d, remaining %d", ErrCardExceedsRemaining, tendered, remaining)
		}
		return tendered, 0, nil
	default:
		return 0, 0, fmt.Errorf("%w: %q", ErrUnknownPaymentMethod, method)
	}
}

// PlanFullPayment settles the whole remaining balance or part of it in
// one tender.
func PlanFullPayment(total, alreadyPaid, tendered int64, method string) (*PaymentPlan, error) {
	remaining := ComputeRemainingAmount(total, alreadyPaid)
	effective, change, err := ComputeEffectivePayment(tendered, remaining, method)
	if err != nil {
		return nil, err
	}
	return &PaymentPlan{
		Amount:         effective,
		Change:         change,
		CompletesOrder: alreadyPaid+effective >= total,
	}, nil
}

// PlanSplitPayment settles one share of an evenly split bill. The share
// is fixed from the order total, so splitCount collections always
// exhaust the split: every payer owes the same rounded-up share and the
// last one owes only what is left. Cash above the share comes back as
// change; a short tender is recorded as-is.
func PlanSplitPayment(total, alreadyPaid, tendered int64, splitCount int, method string) (*PaymentPlan, error) {
	share, err := SplitShare(total, splitCount)
	if err != nil {
		return nil, err
	}
	remaining := ComputeRemainingAmount(total, alreadyPaid)
	if share > remaining {
		share = remaining
	}
	effective, change, err := ComputeEffectivePayment(tendered, share, method)
	if err != nil {
		return nil, err
	}
	return &PaymentPlan{
		Amount:         effective,
		Change:         change,
		CompletesOrder: alreadyPaid+effective >= total,
	}, nil
}

// PlanItemsPayment settles exactly the selected lines. The tender must
// cover the selection: paying named items short would leave the books
// unable to say which unit is paid. Cash above the selection comes back
// as change, and the recorded amount is capped at the remaining balance
// so a stale selection never over-charges the order.
func PlanItemsPayment(total, alreadyPaid, tendered int64, method string, items []models.OrderItem, selections []ItemSelection) (*PaymentPlan, error) {
	if method != models.PaymentMethodCash && method != models.PaymentMethodCard {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPaymentMethod, method)
	}
	if len(selections) == 0 {
		return nil, fmt.Errorf("%w: no items selected", ErrItemNotPayable)
	}

	byID := make(map[string]models.OrderItem, len(items))
	for _, item := range items {
		byID[item.ID] = item
	}

	var selectionTotal int64
	seen := make(map[string]bool, len(selections))
	allocations := make([]ItemAllocation, 0, len(selections))
	for _, sel := range selections {
		if seen[sel.ItemID] {
			return nil, fmt.Errorf("%w: item %s selected twice", ErrItemNotPayable, sel.ItemID)
		}
		seen[sel.ItemID] = true
		item, ok := byID[sel.ItemID]
		if !ok {
			return nil, fmt.Errorf("%w: item %s not on order", ErrItemNotPayable, sel.ItemID)
		}
		if item.IsPaid {
			return nil, fmt.Errorf("%w: item %s already paid", ErrItemNotPayable, sel.ItemID)
		}
		if sel.Quantity <= 0 || sel.Quantity > item.Quantity {
			return nil, fmt.Errorf("%w: item %s has %d unpaid, selected %d",
				ErrItemQuantityInvalid, sel.ItemID, item.Quantity, sel.Quantity)
		}
		selectionTotal += int64(sel.Quantity) * item.UnitPrice
		allocations = append(allocations, ItemAllocation{
			ItemID:            sel.ItemID,
			UnitPrice:         item.UnitPrice,
			PayQuantity:       sel.Quantity,
			RemainderQuantity: item.Quantity - sel.Quantity,
		})
	}

	if selectionTotal <= 0 {
		return nil, ErrPaymentNotPositive
	}
	remaining := ComputeRemainingAmount(total, alreadyPaid)
	if remaining <= 0 {
		return nil, ErrNothingToPay
	}
	effective := selectionTotal
	if effective > remaining {
		effective = remaining
	}
	if tendered < effective {
		return nil, fmt.Errorf("%w: selected items total %d, tendered %d",
			ErrItemsPartialPayment, effective, tendered)
	}
	var change int64
	if tendered > effective {
		if method != models.PaymentMethodCash {
			return nil, fmt.Errorf("%w: tendered %d, due %d", ErrCardExceedsRemaining, tendered, effective)
		}
		change = tendered - effective
	}

	return &PaymentPlan{
		Amount:         effective,
		Change:         change,
		CompletesOrder: alreadyPaid+effective >= total,
		Items:          allocations,
	}, nil
}
