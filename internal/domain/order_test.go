package domain

import (
	"sort"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestCanTransitionTo_ExhaustiveMatrix(t *testing.T) {
	statuses := []OrderStatus{StatusPending, StatusShipped, StatusCancelled}

	allowed := map[[2]OrderStatus]bool{
		{StatusPending, StatusShipped}:   true,
		{StatusPending, StatusCancelled}: true,
	}

	for _, from := range statuses {
		for _, to := range statuses {
			want := allowed[[2]OrderStatus{from, to}]
			if got := from.CanTransitionTo(to); got != want {
				t.Errorf("CanTransitionTo(%s -> %s) = %v, want %v", from, to, got, want)
			}
		}
	}
}

func TestCanTransitionTo_UnknownStatus(t *testing.T) {
	if OrderStatus("Delivered").CanTransitionTo(StatusShipped) {
		t.Error("unknown status should have no outgoing transitions")
	}
	if StatusPending.CanTransitionTo(OrderStatus("Delivered")) {
		t.Error("transition to unknown status should be rejected")
	}
}

func TestOrderStatusIsValid(t *testing.T) {
	for _, s := range []OrderStatus{StatusPending, StatusShipped, StatusCancelled} {
		if !s.IsValid() {
			t.Errorf("expected %s to be valid", s)
		}
	}
	for _, s := range []OrderStatus{"", "pending", "Delivered"} {
		if s.IsValid() {
			t.Errorf("expected %q to be invalid", s)
		}
	}
}

func TestMergeLines_CombinesDuplicates(t *testing.T) {
	merged := MergeLines([]OrderLine{
		{ProductID: 7, Quantity: 2},
		{ProductID: 3, Quantity: 1},
		{ProductID: 7, Quantity: 3},
	})

	if len(merged) != 2 {
		t.Fatalf("expected 2 merged lines, got %d", len(merged))
	}
	if merged[0].ProductID != 3 || merged[0].Quantity != 1 {
		t.Errorf("unexpected first line: %+v", merged[0])
	}
	if merged[1].ProductID != 7 || merged[1].Quantity != 5 {
		t.Errorf("expected product 7 with quantity 5, got %+v", merged[1])
	}
}

func TestMergeLines_Properties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	lineGen := gen.SliceOf(gopter.CombineGens(
		gen.Int64Range(1, 20),
		gen.IntRange(1, 10),
	).Map(func(values []interface{}) OrderLine {
		return OrderLine{ProductID: values[0].(int64), Quantity: values[1].(int)}
	}))

	properties.Property("total quantity per product is preserved", prop.ForAll(
		func(lines []OrderLine) bool {
			want := make(map[int64]int)
			for _, line := range lines {
				want[line.ProductID] += line.Quantity
			}

			merged := MergeLines(lines)
			if len(merged) != len(want) {
				return false
			}
			for _, line := range merged {
				if want[line.ProductID] != line.Quantity {
					return false
				}
			}
			return true
		},
		lineGen,
	))

	properties.Property("result is sorted ascending with unique product IDs", prop.ForAll(
		func(lines []OrderLine) bool {
			merged := MergeLines(lines)
			if !sort.SliceIsSorted(merged, func(i, j int) bool {
				return merged[i].ProductID < merged[j].ProductID
			}) {
				return false
			}
			for i := 1; i < len(merged); i++ {
				if merged[i].ProductID == merged[i-1].ProductID {
					return false
				}
			}
			return true
		},
		lineGen,
	))

	properties.Property("merging is idempotent", prop.ForAll(
		func(lines []OrderLine) bool {
			once := MergeLines(lines)
			twice := MergeLines(once)
			if len(once) != len(twice) {
				return false
			}
			for i := range once {
				if once[i] != twice[i] {
					return false
				}
			}
			return true
		},
		lineGen,
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}
