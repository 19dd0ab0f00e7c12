package claims

import (
	"time"

	"github.com/shopspring/decimal"
)

// Snapshot is the read-only aggregation the reporting view renders. It is
// recomputed in full from whatever collection is passed in, never cached.
type Snapshot struct {
	TotalClaims   int            `json:"totalClaims"`
	CountByStatus map[Status]int `json:"countByStatus"`

	TotalBilled     decimal.Decimal `json:"totalBilled"`
	TotalPending    decimal.Decimal `json:"totalPending"`
	TotalSettlement decimal.Decimal `json:"totalSettlement"`

	// Rates are ratios over the non-draft population, 0 when it is empty.
	ApprovalRate   float64 `json:"approvalRate"`
	RejectionRate  float64 `json:"rejectionRate"`
	SettlementRate float64 `json:"settlementRate"`

	HighestClaimValue decimal.Decimal `json:"highestClaimValue"`
	LowestClaimValue  decimal.Decimal `json:"lowestClaimValue"`

	CreatedLastSevenDays int `json:"createdLastSevenDays"`

	// MonthlyCreated counts claims created in each of the six trailing
	// calendar months, keyed YYYY-MM, oldest first.
	MonthlyCreated []MonthCount `json:"monthlyCreated"`
}

// MonthCount is one calendar month's creation count.
type MonthCount struct {
	Month string `json:"month"`
	Count int    `json:"count"`
}

// Analyze computes the snapshot for a claim collection as of now.
func Analyze(claims []Claim) Snapshot {
	return AnalyzeAt(claims, time.Now().UTC())
}

// AnalyzeAt computes the snapshot relative to the given reference time. The
// reference time anchors the trailing 7-day window and the 6-month
// histogram.
func AnalyzeAt(claims []Claim, now time.Time) Snapshot {
	snap := Snapshot{
		TotalClaims:     len(claims),
		CountByStatus:   make(map[Status]int, len(transitions)),
		TotalBilled:     decimal.Zero,
		TotalPending:    decimal.Zero,
		TotalSettlement: decimal.Zero,
	}
	for _, s := range AllStatuses() {
		snap.CountByStatus[s] = 0
	}

	sevenDaysAgo := now.AddDate(0, 0, -7)
	months := trailingMonths(now, 6)
	monthIndex := make(map[string]int, len(months))
	for i, m := range months {
		monthIndex[m] = i
		snap.MonthlyCreated = append(snap.MonthlyCreated, MonthCount{Month: m})
	}

	var nonDraft, approvedOrBeyond, rejected, settled int
	for i, c := range claims {
		snap.CountByStatus[c.Status]++

		total := c.TotalBillAmount()
		snap.TotalBilled = snap.TotalBilled.Add(total)
		snap.TotalPending = snap.TotalPending.Add(c.PendingAmount())
		snap.TotalSettlement = snap.TotalSettlement.Add(c.SettlementAmount)

		if i == 0 || total.GreaterThan(snap.HighestClaimValue) {
			snap.HighestClaimValue = total
		}
		if i == 0 || total.LessThan(snap.LowestClaimValue) {
			snap.LowestClaimValue = total
		}

		if c.CreatedAt.After(sevenDaysAgo) {
			snap.CreatedLastSevenDays++
		}
		if idx, ok := monthIndex[c.CreatedAt.Format("2006-01")]; ok {
			snap.MonthlyCreated[idx].Count++
		}

		switch c.Status {
		case StatusDraft:
			continue
		case StatusRejected:
			rejected++
		case StatusApproved, StatusPartiallySettled:
			approvedOrBeyond++
		case StatusSettled:
			approvedOrBeyond++
			settled++
		}
		// Submitted claims count toward the population but toward no outcome.
		nonDraft++
	}

	if nonDraft > 0 {
		snap.ApprovalRate = float64(approvedOrBeyond) / float64(nonDraft)
		snap.RejectionRate = float64(rejected) / float64(nonDraft)
		snap.SettlementRate = float64(settled) / float64(nonDraft)
	}
	return snap
}

// trailingMonths returns the n calendar months ending at now, oldest first,
// formatted YYYY-MM.
func trailingMonths(now time.Time, n int) []string {
	out := make([]string, 0, n)
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	for i := n - 1; i >= 0; i-- {
		out = append(out, first.AddDate(0, -i, 0).Format("2006-01"))
	}
	return out
}
