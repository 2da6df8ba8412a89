package plan

import (
	"testing"
	"time"

	"github.com/iwvelando/installment-plan/internal/catalog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustOffer(t *testing.T, cat *catalog.Catalog, id string) catalog.BankOffer {
	t.Helper()
	offer, err := cat.Lookup(id)
	require.NoError(t, err)
	return offer
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestCompute_ConcreteScenario(t *testing.T) {
	cat := catalog.Default()
	calc := NewCalculator(cat)
	ref := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	// 6000 at a flat 8% over 9 months.
	result, err := calc.Compute(dec("6000"), mustOffer(t, cat, "banco1"), ref)
	require.NoError(t, err)

	assert.Equal(t, "Banco1", result.BankName)
	assert.Equal(t, "banco1", result.BankID)
	assert.Equal(t, 9, result.TermMonths)
	assert.True(t, result.OriginalAmount.Equal(dec("6000")))
	assert.True(t, result.InterestRate.Equal(dec("0.08")))
	assert.True(t, result.TotalAmount.Equal(dec("6480.00")), "total = %s", result.TotalAmount)
	assert.True(t, result.MonthlyPayment.Equal(dec("720.00")), "monthly = %s", result.MonthlyPayment)
	assert.True(t, result.TotalInterest().Equal(dec("480")), "interest = %s", result.TotalInterest())

	require.Len(t, result.Schedule, 9)
	assert.True(t, result.Schedule[0].Accumulated.Equal(dec("720.00")))
	assert.True(t, result.Schedule[8].Accumulated.Equal(dec("6480.00")))
	for _, item := range result.Schedule {
		assert.True(t, item.Amount.Equal(dec("720")), "installment %d amount = %s", item.InstallmentNumber, item.Amount)
	}
}

func TestCompute_TotalsPerBank(t *testing.T) {
	cat := catalog.Default()
	calc := NewCalculator(cat)
	ref := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		bankID      string
		total       string
		monthly     string
		lastPayment string
	}{
		// 5000 * 1.08 = 5400, 5400 / 9 = 600
		{"banco1", "5400", "600", "600"},
		// 5000 * 1.10 = 5500, 5500 / 12 = 458.333.. -> 458.33, last = 5500 - 11*458.33
		{"banco2", "5500", "458.33", "458.37"},
		// 5000 * 1.13 = 5650, 5650 / 18 = 313.888.. -> 313.88, last = 5650 - 17*313.88
		{"banco3", "5650", "313.88", "314.04"},
	}

	for _, tt := range tests {
		t.Run(tt.bankID, func(t *testing.T) {
			offer := mustOffer(t, cat, tt.bankID)
			result, err := calc.Compute(dec("5000"), offer, ref)
			require.NoError(t, err)

			assert.True(t, result.TotalAmount.Equal(dec(tt.total)), "total = %s", result.TotalAmount)
			assert.True(t, result.MonthlyPayment.Equal(dec(tt.monthly)), "monthly = %s", result.MonthlyPayment)

			last := result.Schedule[len(result.Schedule)-1]
			assert.True(t, last.Amount.Equal(dec(tt.lastPayment)), "last payment = %s", last.Amount)
			assert.True(t, last.Accumulated.Equal(result.TotalAmount), "last accumulated = %s", last.Accumulated)

			// The rounding discrepancy of a constant payment stays below one
			// cent per installment.
			constant := result.MonthlyPayment.Mul(decimal.NewFromInt(int64(offer.TermMonths)))
			tolerance := dec("0.01").Mul(decimal.NewFromInt(int64(offer.TermMonths)))
			assert.True(t, constant.Sub(result.TotalAmount).Abs().LessThan(tolerance))
		})
	}
}

func TestCompute_ScheduleShape(t *testing.T) {
	cat := catalog.Default()
	calc := NewCalculator(cat)
	ref := time.Date(2025, 7, 19, 0, 0, 0, 0, time.UTC)

	for _, principal := range []string{"5000", "6000", "12345.67", "0.01", "0.09", "0.10", "99999.99"} {
		for _, offer := range cat.Offers() {
			t.Run(offer.ID+"/"+principal, func(t *testing.T) {
				result, err := calc.Compute(dec(principal), offer, ref)
				require.NoError(t, err)
				require.Len(t, result.Schedule, offer.TermMonths)

				sum := decimal.Zero
				for i, item := range result.Schedule {
					assert.Equal(t, i+1, item.InstallmentNumber)
					assert.False(t, item.Amount.IsNegative(), "installment %d amount %s", item.InstallmentNumber, item.Amount)
					if i > 0 {
						assert.True(t, item.DueDate.After(result.Schedule[i-1].DueDate))
						assert.True(t, item.Accumulated.GreaterThanOrEqual(result.Schedule[i-1].Accumulated))
					}
					sum = sum.Add(item.Amount)
					assert.True(t, sum.Equal(item.Accumulated),
						"installment %d accumulated %s, running sum %s", item.InstallmentNumber, item.Accumulated, sum)
				}
				assert.True(t, sum.Equal(result.TotalAmount))
			})
		}
	}
}

func TestCompute_TinyPrincipalKeepsLastInstallmentNonNegative(t *testing.T) {
	cat := catalog.Default()
	calc := NewCalculator(cat)
	ref := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	// 0.09 * 1.13 = 0.1017 -> 0.10, spread over 18 months.
	result, err := calc.Compute(dec("0.09"), mustOffer(t, cat, "banco3"), ref)
	require.NoError(t, err)

	assert.True(t, result.TotalAmount.Equal(dec("0.10")), "total = %s", result.TotalAmount)
	assert.True(t, result.MonthlyPayment.IsZero(), "monthly = %s", result.MonthlyPayment)

	last := result.Schedule[len(result.Schedule)-1]
	assert.True(t, last.Amount.Equal(dec("0.10")), "last payment = %s", last.Amount)
	assert.True(t, last.Accumulated.Equal(result.TotalAmount))
	assert.True(t, last.Accumulated.GreaterThanOrEqual(result.Schedule[len(result.Schedule)-2].Accumulated))
}

func TestCompute_DueDatesClampAtMonthEnd(t *testing.T) {
	cat := catalog.Default()
	calc := NewCalculator(cat)
	ref := time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC)

	result, err := calc.Compute(dec("5000"), mustOffer(t, cat, "banco1"), ref)
	require.NoError(t, err)

	expected := []string{
		"2025-02-28", "2025-03-31", "2025-04-30", "2025-05-31", "2025-06-30",
		"2025-07-31", "2025-08-31", "2025-09-30", "2025-10-31",
	}
	require.Len(t, result.Schedule, len(expected))
	for i, want := range expected {
		assert.Equal(t, want, result.Schedule[i].DueDate.Format("2006-01-02"), "installment %d", i+1)
	}
}

func TestCompute_LeapYearDueDate(t *testing.T) {
	cat := catalog.Default()
	calc := NewCalculator(cat)
	ref := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)

	result, err := calc.Compute(dec("5000"), mustOffer(t, cat, "banco2"), ref)
	require.NoError(t, err)
	assert.Equal(t, "2024-02-29", result.Schedule[0].DueDate.Format("2006-01-02"))
	assert.Equal(t, "2025-01-31", result.Schedule[11].DueDate.Format("2006-01-02"))
}

func TestCompute_Idempotent(t *testing.T) {
	cat := catalog.Default()
	calc := NewCalculator(cat)
	ref := time.Date(2025, 5, 31, 0, 0, 0, 0, time.UTC)
	offer := mustOffer(t, cat, "banco3")

	first, err := calc.Compute(dec("7777.77"), offer, ref)
	require.NoError(t, err)
	second, err := calc.Compute(dec("7777.77"), offer, ref)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestCompute_Errors(t *testing.T) {
	cat := catalog.Default()
	calc := NewCalculator(cat)
	ref := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	banco1 := mustOffer(t, cat, "banco1")

	zeroTerm := banco1
	zeroTerm.TermMonths = 0

	negativeRate := banco1
	negativeRate.InterestRate = dec("-0.01")

	tampered := banco1
	tampered.InterestRate = dec("0.01")

	tests := []struct {
		name      string
		principal string
		offer     catalog.BankOffer
		wantErr   error
	}{
		{"Zero principal", "0", banco1, ErrInvalidInput},
		{"Negative principal", "-100", banco1, ErrInvalidInput},
		{"Zero term", "5000", zeroTerm, ErrInvalidInput},
		{"Negative rate", "5000", negativeRate, ErrInvalidInput},
		{"Unknown bank id", "5000", catalog.BankOffer{ID: "banco9", Name: "Banco9", TermMonths: 6, InterestRate: dec("0.05")}, ErrUnknownBank},
		{"Tampered catalog entry", "5000", tampered, ErrUnknownBank},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := calc.Compute(dec(tt.principal), tt.offer, ref)
			require.ErrorIs(t, err, tt.wantErr)
			assert.Empty(t, result.Schedule)
			assert.Equal(t, Result{}, result)
		})
	}
}

func TestComputeForBank(t *testing.T) {
	calc := NewCalculator(catalog.Default())
	ref := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	result, err := calc.ComputeForBank(dec("6000"), "banco1", ref)
	require.NoError(t, err)
	assert.True(t, result.TotalAmount.Equal(dec("6480")))

	_, err = calc.ComputeForBank(dec("6000"), "nope", ref)
	require.ErrorIs(t, err, ErrUnknownBank)

	_, err = calc.ComputeForBank(dec("0"), "banco2", ref)
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestCompute_NilCatalog(t *testing.T) {
	calc := NewCalculator(nil)
	offer := mustOffer(t, catalog.Default(), "banco1")

	_, err := calc.Compute(dec("6000"), offer, time.Now())
	require.ErrorIs(t, err, ErrUnknownBank)
}
