// Package handlers contains the HTTP handlers behind the claims API.
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/claimdesk/claimdesk/internal/claims"
	"github.com/claimdesk/claimdesk/internal/export"
	"github.com/claimdesk/claimdesk/internal/observability/metrics"
	"github.com/claimdesk/claimdesk/pkg/logging"
)

// ClaimsHandler handles HTTP requests for the claims collection.
type ClaimsHandler struct {
	repo    *claims.Repository
	sink    *export.Sink
	logger  *logging.Logger
	metrics *metrics.ClaimsMetrics
}

// NewClaimsHandler creates a claims handler. The export sink and metrics
// are optional.
func NewClaimsHandler(repo *claims.Repository, sink *export.Sink, m *metrics.ClaimsMetrics, logger *logging.Logger) *ClaimsHandler {
	if repo == nil {
		panic("handlers: repository cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &ClaimsHandler{repo: repo, sink: sink, logger: logger, metrics: m}
}

type billPayload struct {
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
}

type createClaimRequest struct {
	PatientName      string        `json:"patientName"`
	PolicyNumber     string        `json:"policyNumber"`
	ClaimDate        string        `json:"claimDate"`
	Bills            []billPayload `json:"bills"`
	AdvancePaid      float64       `json:"advancePaid"`
	SettlementAmount float64       `json:"settlementAmount"`
}

type updateClaimRequest struct {
	PatientName  string `json:"patientName"`
	PolicyNumber string `json:"policyNumber"`
	ClaimDate    string `json:"claimDate"`
}

type transitionRequest struct {
	Status string `json:"status"`
}

type amountRequest struct {
	Amount float64 `json:"amount"`
}

type billResponse struct {
	ID          string    `json:"id"`
	Description string    `json:"description"`
	Amount      float64   `json:"amount"`
	CreatedAt   time.Time `json:"createdAt"`
}

// claimResponse carries the persisted fields plus the derived financial
// values the UI renders, recomputed at response time.
type claimResponse struct {
	ID                string          `json:"id"`
	PatientName       string          `json:"patientName"`
	PolicyNumber      string          `json:"policyNumber"`
	ClaimDate         time.Time       `json:"claimDate"`
	Bills             []billResponse  `json:"bills"`
	AdvancePaid       float64         `json:"advancePaid"`
	SettlementAmount  float64         `json:"settlementAmount"`
	Status            claims.Status   `json:"status"`
	CreatedAt         time.Time       `json:"createdAt"`
	UpdatedAt         time.Time       `json:"updatedAt"`
	TotalBillAmount   float64         `json:"totalBillAmount"`
	PendingAmount     float64         `json:"pendingAmount"`
	BillCount         int             `json:"billCount"`
	IsFullySettled    bool            `json:"isFullySettled"`
	IsEditable        bool            `json:"isEditable"`
	ValidNextStatuses []claims.Status `json:"validNextStatuses"`
}

func toClaimResponse(c claims.Claim) claimResponse {
	bills := make([]billResponse, 0, len(c.Bills))
	for _, b := range c.Bills {
		bills = append(bills, billResponse{
			ID:          b.ID,
			Description: b.Description,
			Amount:      b.Amount.InexactFloat64(),
			CreatedAt:   b.CreatedAt,
		})
	}
	return claimResponse{
		ID:                c.ID,
		PatientName:       c.PatientName,
		PolicyNumber:      c.PolicyNumber,
		ClaimDate:         c.ClaimDate,
		Bills:             bills,
		AdvancePaid:       c.AdvancePaid.InexactFloat64(),
		SettlementAmount:  c.SettlementAmount.InexactFloat64(),
		Status:            c.Status,
		CreatedAt:         c.CreatedAt,
		UpdatedAt:         c.UpdatedAt,
		TotalBillAmount:   c.TotalBillAmount().InexactFloat64(),
		PendingAmount:     c.PendingAmount().InexactFloat64(),
		BillCount:         c.BillCount(),
		IsFullySettled:    c.IsFullySettled(),
		IsEditable:        c.IsEditable(),
		ValidNextStatuses: c.ValidNextStatuses(),
	}
}

type listClaimsResponse struct {
	Claims []claimResponse `json:"claims"`
	Count  int             `json:"count"`
}

// CreateClaim handles POST /claims.
func (h *ClaimsHandler) CreateClaim(w http.ResponseWriter, r *http.Request) {
	var req createClaimRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("failed to decode create claim request", "error", err)
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	claimDate, err := parseDate(req.ClaimDate)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	bills := make([]claims.Bill, 0, len(req.Bills))
	for _, bp := range req.Bills {
		bill, err := claims.NewBill(bp.Description, decimal.NewFromFloat(bp.Amount))
		if err != nil {
			h.writeError(w, err)
			return
		}
		bills = append(bills, bill)
	}

	created, err := h.repo.Create(r.Context(), req.PatientName, req.PolicyNumber, claimDate, bills,
		decimal.NewFromFloat(req.AdvancePaid), decimal.NewFromFloat(req.SettlementAmount))
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.logger.Info("claim created", "claim_id", created.ID, "patient", created.PatientName)
	writeJSON(w, http.StatusCreated, toClaimResponse(created))
}

// ListClaims handles GET /claims with optional status, search, filter, and
// sort query parameters.
func (h *ClaimsHandler) ListClaims(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var result []claims.Claim
	switch {
	case q.Get("q") != "":
		result = h.repo.Search(q.Get("q"))
	case hasFilterParams(q.Get("status"), q.Get("from"), q.Get("to"), q.Get("min_amount"), q.Get("max_amount")):
		criteria, err := buildCriteria(q.Get("status"), q.Get("from"), q.Get("to"), q.Get("min_amount"), q.Get("max_amount"))
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		result = h.repo.Filter(criteria)
	case q.Get("sort") != "":
		result = h.repo.SortedBy(claims.SortField(q.Get("sort")), q.Get("order") != "desc")
	default:
		result = h.repo.List()
	}

	resp := listClaimsResponse{Claims: make([]claimResponse, 0, len(result)), Count: len(result)}
	for _, c := range result {
		resp.Claims = append(resp.Claims, toClaimResponse(c))
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetClaim handles GET /claims/{claimID}.
func (h *ClaimsHandler) GetClaim(w http.ResponseWriter, r *http.Request) {
	c, ok := h.repo.GetByID(chi.URLParam(r, "claimID"))
	if !ok {
		http.Error(w, "claim not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, toClaimResponse(c))
}

// UpdateClaim handles PUT /claims/{claimID}.
func (h *ClaimsHandler) UpdateClaim(w http.ResponseWriter, r *http.Request) {
	var req updateClaimRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	claimDate, err := parseDate(req.ClaimDate)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	updated, err := h.repo.Update(r.Context(), chi.URLParam(r, "claimID"), req.PatientName, req.PolicyNumber, claimDate)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toClaimResponse(updated))
}

// DeleteClaim handles DELETE /claims/{claimID}.
func (h *ClaimsHandler) DeleteClaim(w http.ResponseWriter, r *http.Request) {
	if err := h.repo.Delete(r.Context(), chi.URLParam(r, "claimID")); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// TransitionStatus handles POST /claims/{claimID}/status.
func (h *ClaimsHandler) TransitionStatus(w http.ResponseWriter, r *http.Request) {
	var req transitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	updated, err := h.repo.TransitionStatus(r.Context(), chi.URLParam(r, "claimID"), claims.Status(req.Status))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.logger.Info("claim status changed", "claim_id", updated.ID, "status", updated.Status)
	writeJSON(w, http.StatusOK, toClaimResponse(updated))
}

// AddBill handles POST /claims/{claimID}/bills.
func (h *ClaimsHandler) AddBill(w http.ResponseWriter, r *http.Request) {
	var req billPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	updated, err := h.repo.AddBill(r.Context(), chi.URLParam(r, "claimID"), req.Description, decimal.NewFromFloat(req.Amount))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toClaimResponse(updated))
}

// UpdateBill handles PUT /claims/{claimID}/bills/{billID}.
func (h *ClaimsHandler) UpdateBill(w http.ResponseWriter, r *http.Request) {
	var req billPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	updated, err := h.repo.UpdateBill(r.Context(), chi.URLParam(r, "claimID"), chi.URLParam(r, "billID"), req.Description, decimal.NewFromFloat(req.Amount))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toClaimResponse(updated))
}

// RemoveBill handles DELETE /claims/{claimID}/bills/{billID}.
func (h *ClaimsHandler) RemoveBill(w http.ResponseWriter, r *http.Request) {
	updated, err := h.repo.RemoveBill(r.Context(), chi.URLParam(r, "claimID"), chi.URLParam(r, "billID"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toClaimResponse(updated))
}

// UpdateAdvance handles PUT /claims/{claimID}/advance.
func (h *ClaimsHandler) UpdateAdvance(w http.ResponseWriter, r *http.Request) {
	var req amountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	updated, err := h.repo.UpdateAdvancePaid(r.Context(), chi.URLParam(r, "claimID"), decimal.NewFromFloat(req.Amount))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toClaimResponse(updated))
}

// UpdateSettlement handles PUT /claims/{claimID}/settlement.
func (h *ClaimsHandler) UpdateSettlement(w http.ResponseWriter, r *http.Request) {
	var req amountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	updated, err := h.repo.UpdateSettlementAmount(r.Context(), chi.URLParam(r, "claimID"), decimal.NewFromFloat(req.Amount))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toClaimResponse(updated))
}

// GetAnalytics handles GET /analytics.
func (h *ClaimsHandler) GetAnalytics(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	snapshot := claims.Analyze(h.repo.Snapshot())
	h.metrics.ObserveAnalyticsLatency(time.Since(start).Seconds())
	writeJSON(w, http.StatusOK, snapshot)
}

// ExportCSV handles GET /export/claims.csv. With upload=true and a
// configured sink, the file is also uploaded to S3.
func (h *ClaimsHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	collection := h.repo.List()
	data, err := export.WriteCSV(collection)
	if err != nil {
		h.logger.Error("failed to render claims csv", "error", err)
		http.Error(w, "failed to render export", http.StatusInternalServerError)
		return
	}

	if r.URL.Query().Get("upload") == "true" && h.sink.Enabled() {
		if key, err := h.sink.UploadCSV(r.Context(), collection); err != nil {
			h.logger.Warn("failed to upload claims export", "error", err)
		} else {
			w.Header().Set("X-Export-S3-Key", key)
		}
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="claims.csv"`)
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// GetReport handles GET /claims/{claimID}/report.
func (h *ClaimsHandler) GetReport(w http.ResponseWriter, r *http.Request) {
	c, ok := h.repo.GetByID(chi.URLParam(r, "claimID"))
	if !ok {
		http.Error(w, "claim not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, export.WriteReport(c))
}

// HealthCheck handles GET /health. A degraded repository still reports
// healthy but flags the local-only state.
func (h *ClaimsHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"claims":   h.repo.Count(),
		"degraded": h.repo.Degraded(),
	})
}

func (h *ClaimsHandler) writeError(w http.ResponseWriter, err error) {
	switch {
	case claims.IsValidationError(err):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, claims.ErrClaimNotFound), errors.Is(err, claims.ErrBillNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, claims.ErrClaimNotEditable), claims.IsTransitionError(err):
		http.Error(w, err.Error(), http.StatusConflict)
	case claims.IsPersistenceError(err):
		h.logger.Error("persistence failure", "error", err)
		http.Error(w, "storage backend unavailable", http.StatusBadGateway)
	default:
		h.logger.Error("unexpected error", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func parseDate(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, errors.New("claimDate is required")
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid claimDate %q", raw)
}

func hasFilterParams(values ...string) bool {
	for _, v := range values {
		if v != "" {
			return true
		}
	}
	return false
}

func buildCriteria(status, from, to, minAmount, maxAmount string) (claims.FilterCriteria, error) {
	var criteria claims.FilterCriteria
	if status != "" {
		s := claims.ParseStatus(status)
		criteria.Status = &s
	}
	if from != "" {
		t, err := parseDate(from)
		if err != nil {
			return claims.FilterCriteria{}, err
		}
		criteria.DateFrom = &t
	}
	if to != "" {
		t, err := parseDate(to)
		if err != nil {
			return claims.FilterCriteria{}, err
		}
		criteria.DateTo = &t
	}
	if minAmount != "" {
		d, err := decimal.NewFromString(minAmount)
		if err != nil {
			return claims.FilterCriteria{}, fmt.Errorf("invalid min_amount %q", minAmount)
		}
		criteria.MinAmount = &d
	}
	if maxAmount != "" {
		d, err := decimal.NewFromString(maxAmount)
		if err != nil {
			return claims.FilterCriteria{}, fmt.Errorf("invalid max_amount %q", maxAmount)
		}
		criteria.MaxAmount = &d
	}
	return criteria, nil
}
