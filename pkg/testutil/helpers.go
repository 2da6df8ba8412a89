// Package testutil provides common utility functions for testing.
package testutil

import (
	"github.com/iwvelando/installment-plan/internal/plan"
	"github.com/shopspring/decimal"
)

// FindInstallment finds an installment by number in the schedule.
// Returns a pointer to the item if found, nil otherwise.
func FindInstallment(schedule []plan.ScheduleItem, number int) *plan.ScheduleItem {
	for i := range schedule {
		if schedule[i].InstallmentNumber == number {
			return &schedule[i]
		}
	}
	return nil
}

// SumInstallments adds up the amounts of every installment in the schedule.
func SumInstallments(schedule []plan.ScheduleItem) decimal.Decimal {
	sum := decimal.Zero
	for _, item := range schedule {
		sum = sum.Add(item.Amount)
	}
	return sum
}

// IsContiguous reports whether the schedule is numbered 1..n in order and
// every accumulated value equals the running sum of amounts.
func IsContiguous(schedule []plan.ScheduleItem) bool {
	running := decimal.Zero
	for i, item := range schedule {
		if item.InstallmentNumber != i+1 {
			return false
		}
		running = running.Add(item.Amount)
		if !running.Equal(item.Accumulated) {
			return false
		}
	}
	return true
}
