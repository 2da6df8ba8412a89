// Package plan computes deferred-payment installment plans.
//
// Interest is a flat surcharge applied once to the whole principal:
//
//	total   = round2(principal * (1 + rate))
//	monthly = floor2(total / termMonths)
//
// Every installment pays the monthly amount except the last one, which
// absorbs the non-negative residue so that the accumulated amount at the end of
// the schedule equals the total exactly. Due dates fall i calendar months
// after the reference date, clamped to the last day of shorter months.
//
// The calculation is a pure function of its inputs. It does no I/O and no
// logging.
package plan

import (
	"errors"
	"fmt"
	"time"

	"github.com/iwvelando/installment-plan/internal/catalog"
	"github.com/iwvelando/installment-plan/pkg/datetime"
	"github.com/iwvelando/installment-plan/pkg/mathutil"
	"github.com/shopspring/decimal"
)

var (
	// ErrInvalidInput is returned for a non-positive principal, a term below
	// one month or a negative rate.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnknownBank is returned when the offer is not a catalog entry.
	ErrUnknownBank = errors.New("unknown bank")
)

// ScheduleItem is one installment of a plan.
type ScheduleItem struct {
	InstallmentNumber int             `json:"installmentNumber"`
	DueDate           time.Time       `json:"dueDate"`
	Amount            decimal.Decimal `json:"amount"`
	Accumulated       decimal.Decimal `json:"accumulated"`
}

// Result is a computed installment plan.
type Result struct {
	BankID         string          `json:"bankId"`
	BankName       string          `json:"bankName"`
	OriginalAmount decimal.Decimal `json:"originalAmount"`
	InterestRate   decimal.Decimal `json:"interestRate"`
	TotalAmount    decimal.Decimal `json:"totalAmount"`
	TermMonths     int             `json:"termMonths"`
	MonthlyPayment decimal.Decimal `json:"monthlyPayment"`
	ReferenceDate  time.Time       `json:"referenceDate"`
	Schedule       []ScheduleItem  `json:"schedule"`
}

// TotalInterest returns the surcharge paid on top of the original amount.
func (r Result) TotalInterest() decimal.Decimal {
	return r.TotalAmount.Sub(r.OriginalAmount)
}

// Calculator computes plans for offers of a given catalog.
type Calculator struct {
	catalog *catalog.Catalog
}

// NewCalculator creates a calculator bound to cat.
func NewCalculator(cat *catalog.Catalog) *Calculator {
	return &Calculator{catalog: cat}
}

// Compute builds the installment plan for principal under offer, with due
// dates counted from referenceDate.
func (c *Calculator) Compute(principal decimal.Decimal, offer catalog.BankOffer, referenceDate time.Time) (Result, error) {
	if !mathutil.IsPositive(principal) {
		return Result{}, fmt.Errorf("%w: principal must be greater than zero, got %s", ErrInvalidInput, principal)
	}
	if offer.TermMonths < 1 {
		return Result{}, fmt.Errorf("%w: term must be at least one month, got %d", ErrInvalidInput, offer.TermMonths)
	}
	if offer.InterestRate.IsNegative() {
		return Result{}, fmt.Errorf("%w: interest rate must not be negative, got %s", ErrInvalidInput, offer.InterestRate)
	}
	if c.catalog == nil || !c.catalog.Contains(offer) {
		return Result{}, fmt.Errorf("%w: %q", ErrUnknownBank, offer.ID)
	}

	term := decimal.NewFromInt(int64(offer.TermMonths))
	total := mathutil.Round(mathutil.ApplyRate(principal, offer.InterestRate))
	monthly := mathutil.Floor(total.Div(term))

	schedule := make([]ScheduleItem, 0, offer.TermMonths)
	for i := 1; i <= offer.TermMonths; i++ {
		amount := monthly
		accumulated := monthly.Mul(decimal.NewFromInt(int64(i)))
		if i == offer.TermMonths {
			amount = total.Sub(monthly.Mul(decimal.NewFromInt(int64(i - 1))))
			accumulated = total
		}
		schedule = append(schedule, ScheduleItem{
			InstallmentNumber: i,
			DueDate:           datetime.AddMonths(referenceDate, i),
			Amount:            amount,
			Accumulated:       accumulated,
		})
	}

	return Result{
		BankID:         offer.ID,
		BankName:       offer.Name,
		OriginalAmount: principal,
		InterestRate:   offer.InterestRate,
		TotalAmount:    total,
		TermMonths:     offer.TermMonths,
		MonthlyPayment: monthly,
		ReferenceDate:  referenceDate,
		Schedule:       schedule,
	}, nil
}

// ComputeForBank resolves bankID through the catalog and computes its plan.
func (c *Calculator) ComputeForBank(principal decimal.Decimal, bankID string, referenceDate time.Time) (Result, error) {
	if c.catalog == nil {
		return Result{}, fmt.Errorf("%w: %q", ErrUnknownBank, bankID)
	}
	offer, err := c.catalog.Lookup(bankID)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return Result{}, fmt.Errorf("%w: %q", ErrUnknownBank, bankID)
		}
		return Result{}, err
	}
	return c.Compute(principal, offer, referenceDate)
}
