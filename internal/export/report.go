package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/claimdesk/claimdesk/internal/claims"
)

// WriteReport renders a single claim as a plain-text report: patient info,
// itemized bills, financial summary, and timestamps.
func WriteReport(c claims.Claim) string {
	var b strings.Builder

	line := strings.Repeat("=", 50)
	fmt.Fprintf(&b, "%s\nCLAIM REPORT\n%s\n\n", line, line)

	fmt.Fprintf(&b, "Claim ID:      %s\n", c.ID)
	fmt.Fprintf(&b, "Patient Name:  %s\n", c.PatientName)
	fmt.Fprintf(&b, "Policy Number: %s\n", c.PolicyNumber)
	fmt.Fprintf(&b, "Claim Date:    %s\n", c.ClaimDate.UTC().Format("2006-01-02"))
	fmt.Fprintf(&b, "Status:        %s (%s)\n\n", c.Status.DisplayName(), c.Status.Description())

	fmt.Fprintf(&b, "Bills (%d)\n%s\n", c.BillCount(), strings.Repeat("-", 50))
	if c.BillCount() == 0 {
		b.WriteString("  (no bills attached)\n")
	}
	for i, bill := range c.Bills {
		fmt.Fprintf(&b, "  %d. %-30s %12s\n", i+1, bill.Description, bill.Amount.StringFixed(2))
	}

	fmt.Fprintf(&b, "\nFinancial Summary\n%s\n", strings.Repeat("-", 50))
	fmt.Fprintf(&b, "  Total Bill Amount:  %12s\n", c.TotalBillAmount().StringFixed(2))
	fmt.Fprintf(&b, "  Advance Paid:       %12s\n", c.AdvancePaid.StringFixed(2))
	fmt.Fprintf(&b, "  Settlement Amount:  %12s\n", c.SettlementAmount.StringFixed(2))
	fmt.Fprintf(&b, "  Pending Amount:     %12s\n", c.PendingAmount().StringFixed(2))
	if c.IsFullySettled() {
		b.WriteString("  Fully settled.\n")
	}

	fmt.Fprintf(&b, "\nCreated At: %s\n", c.CreatedAt.UTC().Format(time.RFC3339))
	fmt.Fprintf(&b, "Updated At: %s\n", c.UpdatedAt.UTC().Format(time.RFC3339))

	return b.String()
}
