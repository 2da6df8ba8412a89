// Package checkout drives a purchase from cart total to a stored installment
// plan: eligibility gate, bank selection, plan computation and session
// hand-off.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/iwvelando/installment-plan/internal/cart"
	"github.com/iwvelando/installment-plan/internal/catalog"
	"github.com/iwvelando/installment-plan/internal/eligibility"
	"github.com/iwvelando/installment-plan/internal/plan"
	"github.com/iwvelando/installment-plan/internal/session"
	"github.com/iwvelando/installment-plan/pkg/datetime"
	"github.com/iwvelando/installment-plan/pkg/format"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ErrNotEligible is returned when the purchase total is below the minimum
// amount for deferred payment.
var ErrNotEligible = errors.New("purchase not eligible for deferred payment")

// EligibilityError reports how far a purchase is from the minimum amount.
type EligibilityError struct {
	Total     decimal.Decimal
	Shortfall decimal.Decimal
}

func (e *EligibilityError) Error() string {
	return fmt.Sprintf("%s: total %s is %s short of the %s minimum",
		ErrNotEligible, format.Currency(e.Total), format.Currency(e.Shortfall),
		format.Currency(eligibility.MinimumAmount))
}

// Unwrap lets errors.Is match ErrNotEligible.
func (e *EligibilityError) Unwrap() error {
	return ErrNotEligible
}

// Quotation is a computed plan together with the session it is stored under.
type Quotation struct {
	SessionID string      `json:"sessionId"`
	Result    plan.Result `json:"result"`
}

// Service coordinates the checkout steps.
type Service struct {
	logger     *zap.Logger
	catalog    *catalog.Catalog
	calculator *plan.Calculator
	store      session.Store
	now        func() time.Time
}

// NewService wires a checkout service. A nil logger disables logging and a
// nil clock uses time.Now.
func NewService(logger *zap.Logger, cat *catalog.Catalog, store session.Store, now func() time.Time) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if now == nil {
		now = time.Now
	}
	return &Service{
		logger:     logger,
		catalog:    cat,
		calculator: plan.NewCalculator(cat),
		store:      store,
		now:        now,
	}
}

// Banks returns the offers available for deferred payment.
func (s *Service) Banks() []catalog.BankOffer {
	return s.catalog.Offers()
}

// Eligible reports whether total qualifies and, if not, by how much it falls
// short.
func (s *Service) Eligible(total decimal.Decimal) (bool, decimal.Decimal) {
	return eligibility.IsEligible(total), eligibility.Shortfall(total)
}

// Quote computes the plan for total with the given bank, dated today, and
// stores it under a new session id.
func (s *Service) Quote(ctx context.Context, total decimal.Decimal, bankID string) (Quotation, error) {
	return s.QuoteOn(ctx, total, bankID, datetime.StartOfDay(s.now()))
}

// QuoteOn is Quote with an explicit purchase date.
func (s *Service) QuoteOn(ctx context.Context, total decimal.Decimal, bankID string, purchaseDate time.Time) (Quotation, error) {
	if !eligibility.IsEligible(total) {
		err := &EligibilityError{Total: total, Shortfall: eligibility.Shortfall(total)}
		s.logger.Info("purchase below deferred payment minimum",
			zap.String("op", "checkout.Quote"),
			zap.String("total", total.StringFixed(2)),
			zap.String("shortfall", err.Shortfall.StringFixed(2)),
		)
		return Quotation{}, err
	}

	result, err := s.calculator.ComputeForBank(total, bankID, purchaseDate)
	if err != nil {
		s.logger.Warn("failed to compute installment plan",
			zap.String("op", "checkout.Quote"),
			zap.String("bank", bankID),
			zap.Error(err),
		)
		return Quotation{}, err
	}

	id := session.NewID()
	if s.store != nil {
		if err := s.store.Save(ctx, id, result); err != nil {
			s.logger.Error("failed to store installment plan",
				zap.String("op", "checkout.Quote"),
				zap.String("session", id),
				zap.Error(err),
			)
			return Quotation{}, fmt.Errorf("failed to store plan: %w", err)
		}
	}

	s.logger.Debug("installment plan computed",
		zap.String("op", "checkout.Quote"),
		zap.String("session", id),
		zap.String("bank", result.BankID),
		zap.String("total", result.TotalAmount.StringFixed(2)),
		zap.Int("months", result.TermMonths),
	)

	return Quotation{SessionID: id, Result: result}, nil
}

// QuoteCart quotes the cart total and empties the cart once the plan has been
// stored.
func (s *Service) QuoteCart(ctx context.Context, c *cart.Cart, bankID string) (Quotation, error) {
	if c == nil || c.IsEmpty() {
		return Quotation{}, fmt.Errorf("%w: cart is empty", plan.ErrInvalidInput)
	}
	q, err := s.Quote(ctx, c.Total(), bankID)
	if err != nil {
		return Quotation{}, err
	}
	c.Clear()
	return q, nil
}

// Result loads a previously quoted plan.
func (s *Service) Result(ctx context.Context, sessionID string) (plan.Result, error) {
	if s.store == nil {
		return plan.Result{}, fmt.Errorf("%w: %s", session.ErrNotFound, sessionID)
	}
	result, err := s.store.Load(ctx, sessionID)
	if err != nil {
		if !errors.Is(err, session.ErrNotFound) {
			s.logger.Error("failed to load installment plan",
				zap.String("op", "checkout.Result"),
				zap.String("session", sessionID),
				zap.Error(err),
			)
		}
		return plan.Result{}, err
	}
	return result, nil
}
