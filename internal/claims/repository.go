package claims

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/claimdesk/claimdesk/pkg/logging"
)

// Repository owns the canonical in-memory claim collection and is the sole
// authority on whether a requested mutation is legal. Entity operations
// compute new snapshots; the repository persists them first and only then
// swaps them into the collection, so a failed write never leaves partial
// state behind. Create is the one deliberate exception: a failed write falls
// back to a local-only insert (see Create).
type Repository struct {
	store    Store
	fallback FallbackStore
	cache    *SnapshotCache
	logger   *logging.Logger
	recorder Recorder

	mu          sync.RWMutex
	claims      map[string]Claim
	degraded    bool
	subscribers []func([]Claim)
}

// RepositoryOption configures optional repository collaborators.
type RepositoryOption func(*Repository)

// WithFallbackStore attaches the local fallback store.
func WithFallbackStore(fs FallbackStore) RepositoryOption {
	return func(r *Repository) { r.fallback = fs }
}

// WithSnapshotCache attaches the redis snapshot cache.
func WithSnapshotCache(c *SnapshotCache) RepositoryOption {
	return func(r *Repository) { r.cache = c }
}

// WithRecorder attaches repository telemetry.
func WithRecorder(rec Recorder) RepositoryOption {
	return func(r *Repository) { r.recorder = rec }
}

// NewRepository builds a repository over the given store.
func NewRepository(store Store, logger *logging.Logger, opts ...RepositoryOption) *Repository {
	if store == nil {
		panic("claims: store cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	r := &Repository{
		store:  store,
		logger: logger,
		claims: make(map[string]Claim),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Load populates the collection from the primary store, falling back to the
// snapshot cache and then the local store when the primary is unreachable.
// A fallback load marks the repository degraded.
func (r *Repository) Load(ctx context.Context) error {
	loaded, err := r.store.LoadAll(ctx)
	if err == nil {
		r.replaceAll(loaded, false)
		return nil
	}
	r.logger.Warn("primary claim store unreachable, trying fallbacks", "error", err)
	if r.recorder != nil {
		r.recorder.PersistenceFailure("load")
	}

	if r.cache != nil {
		if cached, cacheErr := r.cache.Load(ctx); cacheErr == nil {
			r.replaceAll(cached, true)
			return nil
		}
	}
	if r.fallback != nil {
		local, localErr := r.fallback.LoadAll()
		if localErr != nil {
			return &PersistenceError{Op: "load", Err: fmt.Errorf("primary: %v; fallback: %w", err, localErr)}
		}
		r.replaceAll(local, true)
		return nil
	}
	return &PersistenceError{Op: "load", Err: err}
}

// Degraded reports whether the collection holds local-only state that the
// primary store has not acknowledged.
func (r *Repository) Degraded() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.degraded
}

// Subscribe registers a callback invoked with a collection snapshot after
// every committed change. Callbacks run on the mutating goroutine.
func (r *Repository) Subscribe(fn func([]Claim)) {
	if fn == nil {
		return
	}
	r.mu.Lock()
	r.subscribers = append(r.subscribers, fn)
	r.mu.Unlock()
}

// Create validates and persists a new draft claim. When the primary write
// fails the claim is still inserted locally and the repository is flagged
// degraded: creates are best-effort, every other mutation is strict.
func (r *Repository) Create(ctx context.Context, patientName, policyNumber string, claimDate time.Time, bills []Bill, advancePaid, settlementAmount decimal.Decimal) (Claim, error) {
	c, err := NewClaim(patientName, policyNumber, claimDate, bills, advancePaid, settlementAmount)
	if err != nil {
		r.record("create", "invalid")
		return Claim{}, err
	}
	total := c.TotalBillAmount()
	if advancePaid.GreaterThan(total) {
		r.record("create", "invalid")
		return Claim{}, newValidationError("advance paid", "must not exceed the total bill amount")
	}
	if settlementAmount.GreaterThan(total.Sub(advancePaid)) {
		r.record("create", "invalid")
		return Claim{}, newValidationError("settlement amount", "must not exceed the unpaid bill amount")
	}

	if err := r.store.PutClaim(ctx, c); err != nil {
		r.logger.Warn("claim create not persisted, keeping local-only copy",
			"claim_id", c.ID,
			"error", err,
		)
		if r.recorder != nil {
			r.recorder.PersistenceFailure("create")
			r.recorder.LocalFallback()
		}
		r.commitLocalOnly(c)
		r.record("create", "degraded")
		return c, nil
	}

	r.commit(ctx, c)
	r.record("create", "ok")
	return c, nil
}

// Update replaces the identity fields of an editable claim.
func (r *Repository) Update(ctx context.Context, id, patientName, policyNumber string, claimDate time.Time) (Claim, error) {
	current, err := r.editable(id)
	if err != nil {
		r.record("update", "rejected")
		return Claim{}, err
	}
	next, err := current.WithDetails(patientName, policyNumber, claimDate)
	if err != nil {
		r.record("update", "invalid")
		return Claim{}, err
	}
	return r.persist(ctx, "update", next)
}

// Delete removes a claim. Only drafts may be deleted.
func (r *Repository) Delete(ctx context.Context, id string) error {
	if _, err := r.editable(id); err != nil {
		r.record("delete", "rejected")
		return err
	}
	if err := r.store.DeleteClaim(ctx, id); err != nil {
		if r.recorder != nil {
			r.recorder.PersistenceFailure("delete")
		}
		r.record("delete", "failed")
		return &PersistenceError{Op: "delete", Err: err}
	}

	r.mu.Lock()
	delete(r.claims, id)
	snapshot := r.snapshotLocked()
	r.mu.Unlock()

	r.afterCommit(ctx, snapshot)
	r.record("delete", "ok")
	return nil
}

// TransitionStatus moves a claim along the workflow. The transition table is
// the only authority consulted.
func (r *Repository) TransitionStatus(ctx context.Context, id string, target Status) (Claim, error) {
	current, ok := r.GetByID(id)
	if !ok {
		r.record("transition", "rejected")
		return Claim{}, ErrClaimNotFound
	}
	if !current.Status.CanTransitionTo(target) {
		r.record("transition", "rejected")
		return Claim{}, &TransitionError{From: current.Status, To: target}
	}
	return r.persist(ctx, "transition", current.WithStatus(target))
}

// AddBill creates a bill line item on an editable claim.
func (r *Repository) AddBill(ctx context.Context, id, description string, amount decimal.Decimal) (Claim, error) {
	current, err := r.editable(id)
	if err != nil {
		r.record("add_bill", "rejected")
		return Claim{}, err
	}
	bill, err := NewBill(description, amount)
	if err != nil {
		r.record("add_bill", "invalid")
		return Claim{}, err
	}
	return r.persist(ctx, "add_bill", current.AddBill(bill))
}

// UpdateBill replaces an existing bill on an editable claim.
func (r *Repository) UpdateBill(ctx context.Context, id, billID, description string, amount decimal.Decimal) (Claim, error) {
	current, err := r.editable(id)
	if err != nil {
		r.record("update_bill", "rejected")
		return Claim{}, err
	}
	if !current.HasBill(billID) {
		r.record("update_bill", "rejected")
		return Claim{}, ErrBillNotFound
	}
	var existing Bill
	for _, b := range current.Bills {
		if b.ID == billID {
			existing = b
			break
		}
	}
	next, err := existing.WithChanges(description, amount)
	if err != nil {
		r.record("update_bill", "invalid")
		return Claim{}, err
	}
	return r.persist(ctx, "update_bill", current.UpdateBill(next))
}

// RemoveBill deletes a bill from an editable claim. Removing an id that is
// not present still commits a snapshot with a refreshed UpdatedAt.
func (r *Repository) RemoveBill(ctx context.Context, id, billID string) (Claim, error) {
	current, err := r.editable(id)
	if err != nil {
		r.record("remove_bill", "rejected")
		return Claim{}, err
	}
	return r.persist(ctx, "remove_bill", current.RemoveBill(billID))
}

// UpdateAdvancePaid sets the advance on an editable claim. The advance may
// not exceed the total bill amount.
func (r *Repository) UpdateAdvancePaid(ctx context.Context, id string, amount decimal.Decimal) (Claim, error) {
	current, err := r.editable(id)
	if err != nil {
		r.record("update_advance", "rejected")
		return Claim{}, err
	}
	if amount.IsNegative() {
		r.record("update_advance", "invalid")
		return Claim{}, newValidationError("advance paid", "must not be negative")
	}
	if amount.GreaterThan(current.TotalBillAmount()) {
		r.record("update_advance", "invalid")
		return Claim{}, newValidationError("advance paid", "must not exceed the total bill amount")
	}
	return r.persist(ctx, "update_advance", current.WithAdvancePaid(amount))
}

// settlementStatuses are the statuses during which a settlement amount may
// be recorded.
var settlementStatuses = map[Status]bool{
	StatusDraft:            true,
	StatusApproved:         true,
	StatusPartiallySettled: true,
}

// UpdateSettlementAmount sets the settlement against the claim. Unlike other
// field mutations this is also allowed after approval, since settlements are
// paid out on approved claims.
func (r *Repository) UpdateSettlementAmount(ctx context.Context, id string, amount decimal.Decimal) (Claim, error) {
	current, ok := r.GetByID(id)
	if !ok {
		r.record("update_settlement", "rejected")
		return Claim{}, ErrClaimNotFound
	}
	if !settlementStatuses[current.Status] {
		r.record("update_settlement", "rejected")
		return Claim{}, ErrClaimNotEditable
	}
	if amount.IsNegative() {
		r.record("update_settlement", "invalid")
		return Claim{}, newValidationError("settlement amount", "must not be negative")
	}
	if amount.GreaterThan(current.TotalBillAmount().Sub(current.AdvancePaid)) {
		r.record("update_settlement", "invalid")
		return Claim{}, newValidationError("settlement amount", "must not exceed the unpaid bill amount")
	}
	return r.persist(ctx, "update_settlement", current.WithSettlementAmount(amount))
}

// GetByID returns the claim with the given id.
func (r *Repository) GetByID(id string) (Claim, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.claims[id]
	return c, ok
}

// List returns all claims, newest first.
func (r *Repository) List() []Claim {
	out := r.Snapshot()
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// GetByStatus returns all claims in the given status, newest first.
func (r *Repository) GetByStatus(status Status) []Claim {
	var out []Claim
	for _, c := range r.List() {
		if c.Status == status {
			out = append(out, c)
		}
	}
	return out
}

// Search matches the query case-insensitively against patient names and
// policy numbers.
func (r *Repository) Search(query string) []Claim {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return r.List()
	}
	var out []Claim
	for _, c := range r.List() {
		if strings.Contains(strings.ToLower(c.PatientName), query) ||
			strings.Contains(strings.ToLower(c.PolicyNumber), query) {
			out = append(out, c)
		}
	}
	return out
}

// FilterCriteria conjoins optional claim predicates. Nil fields match
// everything; date and amount ranges are inclusive.
type FilterCriteria struct {
	Status    *Status
	DateFrom  *time.Time
	DateTo    *time.Time
	MinAmount *decimal.Decimal
	MaxAmount *decimal.Decimal
}

// Filter returns the claims matching every supplied criterion.
func (r *Repository) Filter(criteria FilterCriteria) []Claim {
	var out []Claim
	for _, c := range r.List() {
		if criteria.Status != nil && c.Status != *criteria.Status {
			continue
		}
		if criteria.DateFrom != nil && c.ClaimDate.Before(*criteria.DateFrom) {
			continue
		}
		if criteria.DateTo != nil && c.ClaimDate.After(*criteria.DateTo) {
			continue
		}
		total := c.TotalBillAmount()
		if criteria.MinAmount != nil && total.LessThan(*criteria.MinAmount) {
			continue
		}
		if criteria.MaxAmount != nil && total.GreaterThan(*criteria.MaxAmount) {
			continue
		}
		out = append(out, c)
	}
	return out
}

// SortField names a sortable claim attribute.
type SortField string

const (
	SortByPatientName SortField = "patientName"
	SortByClaimDate   SortField = "claimDate"
	SortByTotalAmount SortField = "totalAmount"
	SortByStatus      SortField = "status"
	SortByCreatedAt   SortField = "createdAt"
	SortByUpdatedAt   SortField = "updatedAt"
)

// SortedBy returns all claims ordered by the given field. Unknown fields
// sort by creation time.
func (r *Repository) SortedBy(field SortField, ascending bool) []Claim {
	out := r.Snapshot()
	less := func(a, b Claim) bool { return a.CreatedAt.Before(b.CreatedAt) }
	switch field {
	case SortByPatientName:
		less = func(a, b Claim) bool {
			return strings.ToLower(a.PatientName) < strings.ToLower(b.PatientName)
		}
	case SortByClaimDate:
		less = func(a, b Claim) bool { return a.ClaimDate.Before(b.ClaimDate) }
	case SortByTotalAmount:
		less = func(a, b Claim) bool { return a.TotalBillAmount().LessThan(b.TotalBillAmount()) }
	case SortByStatus:
		less = func(a, b Claim) bool { return a.Status < b.Status }
	case SortByUpdatedAt:
		less = func(a, b Claim) bool { return a.UpdatedAt.Before(b.UpdatedAt) }
	}
	sort.SliceStable(out, func(i, j int) bool {
		if ascending {
			return less(out[i], out[j])
		}
		return less(out[j], out[i])
	})
	return out
}

// Snapshot returns an unordered copy of the collection.
func (r *Repository) Snapshot() []Claim {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.snapshotLocked()
}

// Count returns the number of claims in the collection.
func (r *Repository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.claims)
}

// ReplaceAll swaps in a whole new collection, as delivered by the store
// watcher. Remote snapshots replace local state wholesale; there is no
// field-level merge.
func (r *Repository) ReplaceAll(claims []Claim) {
	r.replaceAll(claims, false)
}

func (r *Repository) editable(id string) (Claim, error) {
	current, ok := r.GetByID(id)
	if !ok {
		return Claim{}, ErrClaimNotFound
	}
	if !current.IsEditable() {
		return Claim{}, ErrClaimNotEditable
	}
	return current, nil
}

func (r *Repository) persist(ctx context.Context, op string, next Claim) (Claim, error) {
	if err := r.store.PutClaim(ctx, next); err != nil {
		if r.recorder != nil {
			r.recorder.PersistenceFailure(op)
		}
		r.record(op, "failed")
		return Claim{}, &PersistenceError{Op: op, Err: err}
	}
	r.commit(ctx, next)
	r.record(op, "ok")
	return next, nil
}

func (r *Repository) commit(ctx context.Context, c Claim) {
	r.mu.Lock()
	r.claims[c.ID] = c
	snapshot := r.snapshotLocked()
	r.mu.Unlock()
	r.afterCommit(ctx, snapshot)
}

func (r *Repository) commitLocalOnly(c Claim) {
	r.mu.Lock()
	r.claims[c.ID] = c
	r.degraded = true
	snapshot := r.snapshotLocked()
	r.mu.Unlock()

	if r.fallback != nil {
		if err := r.fallback.SaveAll(snapshot); err != nil {
			r.logger.Warn("failed to save local fallback snapshot", "error", err)
		}
	}
	r.notify(snapshot)
}

func (r *Repository) replaceAll(claims []Claim, degraded bool) {
	r.mu.Lock()
	r.claims = make(map[string]Claim, len(claims))
	for _, c := range claims {
		r.claims[c.ID] = c
	}
	r.degraded = degraded
	snapshot := r.snapshotLocked()
	r.mu.Unlock()
	r.notify(snapshot)
}

func (r *Repository) afterCommit(ctx context.Context, snapshot []Claim) {
	if r.cache != nil {
		if err := r.cache.Save(ctx, snapshot); err != nil {
			r.logger.Warn("failed to refresh claim snapshot cache", "error", err)
		}
	}
	r.notify(snapshot)
}

func (r *Repository) notify(snapshot []Claim) {
	if r.recorder != nil {
		r.recorder.SetClaimCount(len(snapshot))
	}
	r.mu.RLock()
	subs := append(([]func([]Claim))(nil), r.subscribers...)
	r.mu.RUnlock()
	for _, fn := range subs {
		fn(snapshot)
	}
}

func (r *Repository) snapshotLocked() []Claim {
	out := make([]Claim, 0, len(r.claims))
	for _, c := range r.claims {
		out = append(out, c)
	}
	return out
}

func (r *Repository) record(operation, result string) {
	if r.recorder != nil {
		r.recorder.MutationApplied(operation, result)
	}
}
