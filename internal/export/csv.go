// Package export renders claim collections into the formats the admin UI
// downloads: CSV summaries and plain-text per-claim reports.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"time"

	"github.com/claimdesk/claimdesk/internal/claims"
)

// csvHeader is the fixed column order consumers of the export rely on.
var csvHeader = []string{
	"Claim ID",
	"Patient Name",
	"Policy Number",
	"Claim Date",
	"Status",
	"Total Bills",
	"Advance Paid",
	"Settlement Amount",
	"Pending Amount",
	"Number of Bills",
	"Created At",
	"Updated At",
}

// WriteCSV renders the claim collection as CSV in the fixed column order.
func WriteCSV(collection []claims.Claim) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(csvHeader); err != nil {
		return nil, fmt.Errorf("export: failed to write csv header: %w", err)
	}
	for _, c := range collection {
		row := []string{
			c.ID,
			c.PatientName,
			c.PolicyNumber,
			c.ClaimDate.UTC().Format("2006-01-02"),
			c.Status.DisplayName(),
			c.TotalBillAmount().StringFixed(2),
			c.AdvancePaid.StringFixed(2),
			c.SettlementAmount.StringFixed(2),
			c.PendingAmount().StringFixed(2),
			fmt.Sprintf("%d", c.BillCount()),
			c.CreatedAt.UTC().Format(time.RFC3339),
			c.UpdatedAt.UTC().Format(time.RFC3339),
		}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("export: failed to write csv row for claim %s: %w", c.ID, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("export: failed to flush csv: %w", err)
	}
	return buf.Bytes(), nil
}
