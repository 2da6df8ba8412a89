package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/iwvelando/installment-plan/internal/cart"
	"github.com/iwvelando/installment-plan/internal/catalog"
	"github.com/iwvelando/installment-plan/internal/checkout"
	"github.com/iwvelando/installment-plan/internal/plan"
	"github.com/iwvelando/installment-plan/internal/session"
	"github.com/iwvelando/installment-plan/pkg/constants"
	"github.com/iwvelando/installment-plan/pkg/datetime"
	"github.com/iwvelando/installment-plan/pkg/format"
	"github.com/iwvelando/installment-plan/pkg/output"
	"github.com/iwvelando/installment-plan/pkg/validation"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type handler struct {
	logger        *zap.Logger
	checkout      *checkout.Service
	products      cart.Products
	maxUploadSize int64
	version       string
	metrics       *metrics
}

// NewHandler constructs the HTTP handler that serves the installment plan API.
func NewHandler(logger *zap.Logger, svc *checkout.Service, products cart.Products, maxUploadSize int64, version string) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	if maxUploadSize <= 0 {
		maxUploadSize = constants.DefaultMaxUploadSizeBytes
	}

	trimmedVersion := strings.TrimSpace(version)
	if trimmedVersion == "" {
		trimmedVersion = "dev"
	}

	h := &handler{
		logger:        logger,
		checkout:      svc,
		products:      products,
		maxUploadSize: maxUploadSize,
		version:       trimmedVersion,
		metrics:       newMetrics(),
	}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/banks", h.metrics.instrument("banks", h.handleBanks))
	mux.HandleFunc("GET /api/products", h.metrics.instrument("products", h.handleProducts))
	mux.HandleFunc("GET /api/eligibility", h.metrics.instrument("eligibility", h.handleEligibility))
	mux.HandleFunc("POST /api/plans", h.metrics.instrument("create_plan", h.handleCreatePlan))
	mux.HandleFunc("GET /api/plans/{id}", h.metrics.instrument("get_plan", h.handleGetPlan))
	mux.HandleFunc("GET /api/plans/{id}/export", h.metrics.instrument("export_plan", h.handleExportPlan))
	mux.HandleFunc("GET /api/version", h.metrics.instrument("version", h.handleVersion))
	mux.Handle("GET /metrics", h.metrics.handler())

	return mux
}

type bankResponse struct {
	catalog.BankOffer
	InterestPercent string `json:"interestPercent"`
}

type eligibilityResponse struct {
	Total     decimal.Decimal `json:"total"`
	Minimum   decimal.Decimal `json:"minimum"`
	Eligible  bool            `json:"eligible"`
	Shortfall decimal.Decimal `json:"shortfall"`
}

type planRequest struct {
	BankID       string           `json:"bankId"`
	Total        *decimal.Decimal `json:"total,omitempty"`
	Items        []itemRequest    `json:"items,omitempty"`
	PurchaseDate string           `json:"purchaseDate,omitempty"`
}

type itemRequest struct {
	ProductID int `json:"productId"`
	Quantity  int `json:"quantity"`
}

func (h *handler) handleBanks(w http.ResponseWriter, r *http.Request) {
	offers := h.checkout.Banks()
	banks := make([]bankResponse, 0, len(offers))
	for _, offer := range offers {
		banks = append(banks, bankResponse{BankOffer: offer, InterestPercent: format.Percent(offer.InterestRate)})
	}
	h.writeJSON(w, http.StatusOK, banks)
}

func (h *handler) handleProducts(w http.ResponseWriter, r *http.Request) {
	products := h.products
	if products == nil {
		products = cart.Products{}
	}
	h.writeJSON(w, http.StatusOK, products)
}

func (h *handler) handleEligibility(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleEligibility"

	raw := strings.TrimSpace(r.URL.Query().Get("total"))
	if raw == "" {
		h.respondErrorWithOp(w, http.StatusBadRequest, "missing total query parameter", op)
		return
	}
	total, err := decimal.NewFromString(raw)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("invalid total %q", raw), op)
		return
	}

	eligible, shortfall := h.checkout.Eligible(total)
	h.writeJSON(w, http.StatusOK, eligibilityResponse{
		Total:     total,
		Minimum:   decimal.NewFromInt(constants.MinimumDeferredAmount),
		Eligible:  eligible,
		Shortfall: shortfall,
	})
}

func (h *handler) handleCreatePlan(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleCreatePlan"

	start := time.Now()
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)

	var req planRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.respondErrorWithOp(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("request exceeds limit of %d bytes", h.maxUploadSize), op)
			return
		}
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to decode request: %v", err), op)
		return
	}

	quote, err := h.quote(r, req)
	if err != nil {
		status, reason := classify(err)
		h.metrics.rejections.WithLabelValues(reason).Inc()

		var eligibilityErr *checkout.EligibilityError
		if errors.As(err, &eligibilityErr) {
			h.logger.Info("plan request rejected",
				zap.String("op", op),
				zap.String("reason", reason),
				zap.String("shortfall", eligibilityErr.Shortfall.StringFixed(constants.CurrencyPlaces)),
			)
			h.writeJSON(w, status, map[string]string{
				"error":     err.Error(),
				"shortfall": eligibilityErr.Shortfall.StringFixed(constants.CurrencyPlaces),
			})
			return
		}
		h.respondErrorWithOp(w, status, err.Error(), op)
		return
	}

	h.metrics.plansComputed.WithLabelValues(quote.Result.BankID).Inc()
	h.logger.Info("plan computed",
		zap.String("op", op),
		zap.String("session", quote.SessionID),
		zap.String("bank", quote.Result.BankID),
		zap.Duration("duration", time.Since(start)),
	)

	w.Header().Set("Location", "/api/plans/"+quote.SessionID)
	h.writeJSON(w, http.StatusCreated, quote)
}

func (h *handler) quote(r *http.Request, req planRequest) (checkout.Quotation, error) {
	bankID := strings.TrimSpace(req.BankID)
	if bankID == "" {
		return checkout.Quotation{}, fmt.Errorf("%w: bankId is required", plan.ErrInvalidInput)
	}

	hasItems := len(req.Items) > 0
	switch {
	case req.Total != nil && hasItems:
		return checkout.Quotation{}, fmt.Errorf("%w: provide either total or items, not both", plan.ErrInvalidInput)
	case req.Total == nil && !hasItems:
		return checkout.Quotation{}, fmt.Errorf("%w: total or items is required", plan.ErrInvalidInput)
	}

	var c *cart.Cart
	if hasItems {
		quantities := make(map[int]int, len(req.Items))
		for _, item := range req.Items {
			if item.Quantity < 1 {
				return checkout.Quotation{}, fmt.Errorf("%w: quantity for product %d must be at least 1",
					plan.ErrInvalidInput, item.ProductID)
			}
			quantities[item.ProductID] += item.Quantity
		}
		var err error
		c, err = h.products.Fill(quantities)
		if err != nil {
			return checkout.Quotation{}, err
		}
	}

	if strings.TrimSpace(req.PurchaseDate) == "" {
		if c != nil {
			return h.checkout.QuoteCart(r.Context(), c, bankID)
		}
		return h.checkout.Quote(r.Context(), *req.Total, bankID)
	}

	purchaseDate, err := datetime.ParseDate(req.PurchaseDate, time.Time{})
	if err != nil {
		return checkout.Quotation{}, fmt.Errorf("%w: %v", plan.ErrInvalidInput, err)
	}
	var total decimal.Decimal
	if c != nil {
		total = c.Total()
	} else {
		total = *req.Total
	}
	return h.checkout.QuoteOn(r.Context(), total, bankID, purchaseDate)
}

func (h *handler) handleGetPlan(w http.ResponseWriter, r *http.Request) {
	result, ok := h.loadResult(w, r, "server.handleGetPlan")
	if !ok {
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

var exportContentTypes = map[string]string{
	constants.OutputFormatPretty: "text/plain; charset=utf-8",
	constants.OutputFormatCSV:    "text/csv; charset=utf-8",
	constants.OutputFormatJSON:   "application/json",
	constants.OutputFormatXLSX:   "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
}

var exportExtensions = map[string]string{
	constants.OutputFormatPretty: "txt",
	constants.OutputFormatCSV:    "csv",
	constants.OutputFormatJSON:   "json",
	constants.OutputFormatXLSX:   "xlsx",
}

func (h *handler) handleExportPlan(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleExportPlan"

	outputFormat := strings.TrimSpace(r.URL.Query().Get("format"))
	if outputFormat == "" {
		outputFormat = constants.OutputFormatCSV
	}
	if err := validation.ValidateOutputFormat(outputFormat); err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
		return
	}

	result, ok := h.loadResult(w, r, op)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := output.Write(&buf, outputFormat, result); err != nil {
		h.respondErrorWithOp(w, http.StatusInternalServerError, fmt.Sprintf("failed to render plan: %v", err), op)
		return
	}

	filename := fmt.Sprintf("installment-plan-%s-%s.%s",
		result.BankID, result.ReferenceDate.Format(constants.DateLayout), exportExtensions[outputFormat])
	w.Header().Set("Content-Type", exportContentTypes[outputFormat])
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.Warn("failed to write export",
			zap.String("op", op),
			zap.Error(err),
		)
	}
}

func (h *handler) loadResult(w http.ResponseWriter, r *http.Request, op string) (plan.Result, bool) {
	id := r.PathValue("id")
	if !session.ValidID(id) {
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("invalid plan id %q", id), op)
		return plan.Result{}, false
	}

	result, err := h.checkout.Result(r.Context(), id)
	if err != nil {
		status, _ := classify(err)
		h.respondErrorWithOp(w, status, err.Error(), op)
		return plan.Result{}, false
	}
	return result, true
}

func (h *handler) handleVersion(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{
		"version": h.version,
	})
}

// classify maps domain errors to an HTTP status and a metrics reason label.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, checkout.ErrNotEligible):
		return http.StatusUnprocessableEntity, "not_eligible"
	case errors.Is(err, plan.ErrUnknownBank):
		return http.StatusNotFound, "unknown_bank"
	case errors.Is(err, session.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, cart.ErrUnknownProduct):
		return http.StatusBadRequest, "unknown_product"
	case errors.Is(err, plan.ErrInvalidInput):
		return http.StatusBadRequest, "invalid_input"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

func (h *handler) respondErrorWithOp(w http.ResponseWriter, status int, msg string, op string) {
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed",
			zap.String("op", op),
			zap.Int("status", status),
			zap.String("error", msg),
		)
	} else {
		h.logger.Info("request rejected",
			zap.String("op", op),
			zap.Int("status", status),
			zap.String("error", msg),
		)
	}

	h.writeJSON(w, status, map[string]string{"error": msg})
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", zap.Error(err))
	}
}
