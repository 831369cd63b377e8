package services

import (
	"errors"
	"testing"

	"cafe_pos_backend/internal/models"
)

func TestComputeOrderTotal(t *testing.T) {
	tests := []struct {
		name  string
		items []models.OrderItem
		want  int64
	}{
		{"empty order", nil, 0},
		{"single line", []models.OrderItem{{Quantity: 2, UnitPrice: 4500}}, 9000},
		{
			"paid lines still count",
			[]models.OrderItem{
				{Quantity: 1, UnitPrice: 4500, IsPaid: true},
				{Quantity: 3, UnitPrice: 1500},
			},
			9000,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ComputeOrderTotal(tt.items); got != tt.want {
				t.Errorf("ComputeOrderTotal() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestComputeRemainingAmount(t *testing.T) {
	tests := []struct {
		name        string
		total, paid int64
		want        int64
	}{
		{"nothing paid", 10000, 0, 10000},
		{"partly paid", 10000, 3400, 6600},
		{"exactly paid", 10000, 10000, 0},
		{"overpaid clamps to zero", 10000, 10001, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ComputeRemainingAmount(tt.total, tt.paid); got != tt.want {
				t.Errorf("ComputeRemainingAmount(%d, %d) = %d, want %d", tt.total, tt.paid, got, tt.want)
			}
		})
	}
}

func TestSplitShare(t *testing.T) {
	tests := []struct {
		name       string
		total      int64
		splitCount int
		want       int64
		wantErr    error
	}{
		{"exact division", 9000, 3, 3000, nil},
		{"rounds up", 100, 3, 34, nil},
		{"large bill rounds up", 1000, 3, 334, nil},
		{"two way odd", 101, 2, 51, nil},
		{"single cent", 1, 2, 1, nil},
		{"split of one is the whole bill", 9000, 1, 9000, nil},
		{"zero split rejected", 9000, 0, 0, ErrSplitCountInvalid},
		{"negative split rejected", 9000, -2, 0, ErrSplitCountInvalid},
		{"empty bill rejected", 0, 2, 0, ErrNothingToPay},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SplitShare(tt.total, tt.splitCount)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("SplitShare() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("SplitShare() unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("SplitShare(%d, %d) = %d, want %d", tt.total, tt.splitCount, got, tt.want)
			}
		})
	}
}

// A three-way split collects exactly three fixed shares: the share does
// not drift as the balance shrinks, and the last payer covers only what
// is left. A fourth collection has nothing to charge.
func TestSplitShareSequence(t *testing.T) {
	const total = int64(100)
	const splitCount = 3

	paid := int64(0)
	var shares []int64
	for paid < total {
		plan, err := PlanSplitPayment(total, paid, 50, splitCount, models.PaymentMethodCash)
		if err != nil {
			t.Fatalf("share %d: %v", len(shares), err)
		}
		shares = append(shares, plan.Amount)
		paid += plan.Amount
	}

	want := []int64{34, 34, 32}
	if len(shares) != len(want) {
		t.Fatalf("got %d shares %v, want %v", len(shares), shares, want)
	}
	for i := range want {
		if shares[i] != want[i] {
			t.Errorf("share %d = %d, want %d", i, shares[i], want[i])
		}
	}
	if paid != total {
		t.Errorf("sequence paid %d, want %d", paid, total)
	}
	if _, err := PlanSplitPayment(total, paid, 50, splitCount, models.PaymentMethodCash); !errors.Is(err, ErrNothingToPay) {
		t.Errorf("collection past the last share: error = %v, want %v", err, ErrNothingToPay)
	}
}

func TestComputeEffectivePayment(t *testing.T) {
	tests := []struct {
		name               string
		tendered, remaining int64
		method             string
		wantEffective      int64
		wantChange         int64
		wantErr            error
	}{
		{"cash exact", 5000, 5000, models.PaymentMethodCash, 5000, 0, nil},
		{"cash under", 2000, 5000, models.PaymentMethodCash, 2000, 0, nil},
		{"cash over returns change", 10000, 7500, models.PaymentMethodCash, 7500, 2500, nil},
		{"card exact", 5000, 5000, models.PaymentMethodCard, 5000, 0, nil},
		{"card under", 2000, 5000, models.PaymentMethodCard, 2000, 0, nil},
		{"card over rejected", 5001, 5000, models.PaymentMethodCard, 0, 0, ErrCardExceedsRemaining},
		{"zero tender rejected", 0, 5000, models.PaymentMethodCash, 0, 0, ErrPaymentNotPositive},
		{"negative tender rejected", -100, 5000, models.PaymentMethodCash, 0, 0, ErrPaymentNotPositive},
		{"settled order rejected", 100, 0, models.PaymentMethodCash, 0, 0, ErrNothingToPay},
		{"unknown method rejected", 100, 5000, "CHECK", 0, 0, ErrUnknownPaymentMethod},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			effective, change, err := ComputeEffectivePayment(tt.tendered, tt.remaining, tt.method)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if effective != tt.wantEffective || change != tt.wantChange {
				t.Errorf("got (%d, %d), want (%d, %d)", effective, change, tt.wantEffective, tt.wantChange)
			}
		})
	}
}

func TestPlanFullPayment(t *testing.T) {
	plan, err := PlanFullPayment(10000, 4000, 10000, models.PaymentMethodCash)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if plan.Amount != 6000 {
		t.Errorf("Amount = %d, want 6000", plan.Amount)
	}
	if plan.Change != 4000 {
		t.Errorf("Change = %d, want 4000", plan.Change)
	}
	if !plan.CompletesOrder {
		t.Error("expected plan to complete the order")
	}

	partial, err := PlanFullPayment(10000, 0, 4000, models.PaymentMethodCard)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if partial.CompletesOrder {
		t.Error("partial tender must not complete the order")
	}
	if partial.Amount != 4000 || partial.Change != 0 {
		t.Errorf("got (%d, %d), want (4000, 0)", partial.Amount, partial.Change)
	}
}

func TestPlanSplitPayment(t *testing.T) {
	// First of three payers on a 100-cent bill pays the rounded-up share.
	plan, err := PlanSplitPayment(100, 0, 34, 3, models.PaymentMethodCard)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if plan.Amount != 34 {
		t.Errorf("Amount = %d, want 34", plan.Amount)
	}
	if plan.CompletesOrder {
		t.Error("first share must not complete the order")
	}

	// Last payer: the fixed share exceeds what is left, so only the
	// leftover is due and the cash surplus is change.
	last, err := PlanSplitPayment(100, 68, 50, 3, models.PaymentMethodCash)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if last.Amount != 32 || last.Change != 18 {
		t.Errorf("got (%d, %d), want (32, 18)", last.Amount, last.Change)
	}
	if !last.CompletesOrder {
		t.Error("last share must complete the order")
	}

	// A big note for one share: charge the share, return the rest.
	note, err := PlanSplitPayment(100, 0, 5000, 3, models.PaymentMethodCash)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if note.Amount != 34 || note.Change != 4966 {
		t.Errorf("got (%d, %d), want (34, 4966)", note.Amount, note.Change)
	}

	// A short tender against a share is recorded as-is.
	short, err := PlanSplitPayment(100, 0, 20, 3, models.PaymentMethodCash)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if short.Amount != 20 || short.Change != 0 {
		t.Errorf("got (%d, %d), want (20, 0)", short.Amount, short.Change)
	}
	if short.CompletesOrder {
		t.Error("short tender must not complete the order")
	}
}

func TestPlanItemsPayment(t *testing.T) {
	items := []models.OrderItem{
		{ID: "cay", Quantity: 4, UnitPrice: 1500},
		{ID: "tost", Quantity: 2, UnitPrice: 9000},
		{ID: "su", Quantity: 1, UnitPrice: 1000, IsPaid: true},
	}
	total := ComputeOrderTotal(items) // 25000

	t.Run("whole line", func(t *testing.T) {
		plan, err := PlanItemsPayment(total, 0, 18000, models.PaymentMethodCard, items,
			[]ItemSelection{{ItemID: "tost", Quantity: 2}})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if plan.Amount != 18000 {
			t.Errorf("Amount = %d, want 18000", plan.Amount)
		}
		if len(plan.Items) != 1 || plan.Items[0].RemainderQuantity != 0 {
			t.Errorf("expected one allocation with no remainder, got %+v", plan.Items)
		}
	})

	t.Run("partial quantity splits the line", func(t *testing.T) {
		plan, err := PlanItemsPayment(total, 0, 4500, models.PaymentMethodCash, items,
			[]ItemSelection{{ItemID: "cay", Quantity: 3}})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		alloc := plan.Items[0]
		if alloc.PayQuantity != 3 || alloc.RemainderQuantity != 1 {
			t.Errorf("got pay=%d remainder=%d, want pay=3 remainder=1", alloc.PayQuantity, alloc.RemainderQuantity)
		}
		if plan.CompletesOrder {
			t.Error("partial item payment must not complete the order")
		}
	})

	t.Run("settling everything completes the order", func(t *testing.T) {
		// 18000 paid for the tost line plus the 1000 paid su row.
		plan, err := PlanItemsPayment(total, 19000, 6000, models.PaymentMethodCash, items,
			[]ItemSelection{{ItemID: "cay", Quantity: 4}})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !plan.CompletesOrder {
			t.Error("expected order completion")
		}
	})

	t.Run("cash above the selection returns change", func(t *testing.T) {
		plan, err := PlanItemsPayment(total, 0, 5000, models.PaymentMethodCash, items,
			[]ItemSelection{{ItemID: "cay", Quantity: 3}})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if plan.Amount != 4500 || plan.Change != 500 {
			t.Errorf("got (%d, %d), want (4500, 500)", plan.Amount, plan.Change)
		}
	})

	t.Run("selection capped at remaining balance", func(t *testing.T) {
		menu := []models.OrderItem{{ID: "menu", Quantity: 1, UnitPrice: 10000}}
		plan, err := PlanItemsPayment(10000, 6000, 10000, models.PaymentMethodCash, menu,
			[]ItemSelection{{ItemID: "menu", Quantity: 1}})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if plan.Amount != 4000 || plan.Change != 6000 {
			t.Errorf("got (%d, %d), want (4000, 6000)", plan.Amount, plan.Change)
		}
		if !plan.CompletesOrder {
			t.Error("expected order completion")
		}
	})

	t.Run("rejections", func(t *testing.T) {
		cases := []struct {
			name       string
			paid       int64
			tendered   int64
			method     string
			selections []ItemSelection
			wantErr    error
		}{
			{"unknown item", 0, 1500, models.PaymentMethodCash, []ItemSelection{{ItemID: "ayran", Quantity: 1}}, ErrItemNotPayable},
			{"paid item", 0, 1000, models.PaymentMethodCash, []ItemSelection{{ItemID: "su", Quantity: 1}}, ErrItemNotPayable},
			{"over quantity", 0, 7500, models.PaymentMethodCash, []ItemSelection{{ItemID: "cay", Quantity: 5}}, ErrItemQuantityInvalid},
			{"tender below selection", 0, 4000, models.PaymentMethodCash, []ItemSelection{{ItemID: "cay", Quantity: 3}}, ErrItemsPartialPayment},
			{"card above selection", 0, 5000, models.PaymentMethodCard, []ItemSelection{{ItemID: "cay", Quantity: 3}}, ErrCardExceedsRemaining},
			{"no selection", 0, 1000, models.PaymentMethodCash, nil, ErrItemNotPayable},
			{"duplicate selection", 0, 3000, models.PaymentMethodCash, []ItemSelection{{ItemID: "cay", Quantity: 1}, {ItemID: "cay", Quantity: 1}}, ErrItemNotPayable},
			{"settled order", 25000, 4500, models.PaymentMethodCash, []ItemSelection{{ItemID: "cay", Quantity: 3}}, ErrNothingToPay},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				_, err := PlanItemsPayment(total, tc.paid, tc.tendered, tc.method, items, tc.selections)
				if !errors.Is(err, tc.wantErr) {
					t.Errorf("error = %v, want %v", err, tc.wantErr)
				}
			})
		}
	})
}
