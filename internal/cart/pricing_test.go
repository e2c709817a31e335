package cart

import (
	"testing"

	"github.com/shopspring/decimal"
)

func item(price string, qty int, discount string) LineItem {
	return LineItem{
		UnitPrice:       decimal.RequireFromString(price),
		Quantity:        qty,
		PerItemDiscount: decimal.RequireFromString(discount),
	}
}

func TestTotal(t *testing.T) {
	t.Run("single item no discount", func(t *testing.T) {
		items := []LineItem{item("10", 2, "0")}
		got := Total(items, decimal.Zero)
		if !got.Equal(decimal.NewFromInt(20)) {
			t.Fatalf("expected 20, got %s", got)
		}
	})

	t.Run("idempotent on unchanged inputs", func(t *testing.T) {
		items := []LineItem{item("10", 2, "0"), item("3.33", 3, "0.5")}
		discount := decimal.RequireFromString("1.25")

		first := Total(items, discount)
		second := Total(items, discount)
		if !first.Equal(second) {
			t.Fatalf("expected identical totals, got %s and %s", first, second)
		}
	})

	t.Run("per item discount subtracted per line", func(t *testing.T) {
		items := []LineItem{item("10", 2, "1.5")}
		got := Total(items, decimal.Zero)
		if !got.Equal(decimal.RequireFromString("18.5")) {
			t.Fatalf("expected 18.5, got %s", got)
		}
	})

	t.Run("coupon discount applied", func(t *testing.T) {
		items := []LineItem{item("50", 2, "0")}
		got := Total(items, decimal.NewFromInt(10))
		if !got.Equal(decimal.NewFromInt(90)) {
			t.Fatalf("expected 90, got %s", got)
		}
	})

	t.Run("clamped at zero", func(t *testing.T) {
		items := []LineItem{item("5", 1, "0")}
		got := Total(items, decimal.NewFromInt(20))
		if !got.Equal(decimal.Zero) {
			t.Fatalf("expected 0, got %s", got)
		}
	})

	t.Run("empty cart", func(t *testing.T) {
		got := Total(nil, decimal.Zero)
		if !got.Equal(decimal.Zero) {
			t.Fatalf("expected 0, got %s", got)
		}
	})
}

func TestTotalNoBinaryFloatDrift(t *testing.T) {
	// 0.1 added ten times must be exactly 1, which raw float64
	// accumulation does not give.
	items := make([]LineItem, 10)
	for i := range items {
		items[i] = item("0.1", 1, "0")
	}

	got := Total(items, decimal.Zero)
	if !got.Equal(decimal.NewFromInt(1)) {
		t.Fatalf("expected exactly 1, got %s", got)
	}
}

func TestDisplayTotalRoundsToTwoPlaces(t *testing.T) {
	items := []LineItem{item("3.333", 3, "0")}
	got := DisplayTotal(items, decimal.Zero)
	if got != "10.00" {
		t.Fatalf("expected 10.00, got %s", got)
	}
}

func TestCartTotal(t *testing.T) {
	c := &Cart{
		Items:          []LineItem{item("15", 2, "0")},
		DiscountAmount: decimal.Zero,
	}
	if !c.Total().Equal(decimal.NewFromInt(30)) {
		t.Fatalf("expected 30, got %s", c.Total())
	}
}
