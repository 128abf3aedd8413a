package cli

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/financeiro-pro/reconcile-backend/internal/application/recon"
	"github.com/financeiro-pro/reconcile-backend/internal/domain/normalize"
)

// PrintHeader prints the command header.
func PrintHeader(dryRun bool) {
	mode := "PRODUCTION"
	if dryRun {
		mode = "DRY-RUN"
	}
	fmt.Printf("reconcile (%s mode)\n", mode)
}

// PrintSummary prints the run result to stdout.
func PrintSummary(summary *recon.Summary) {
	fmt.Println(strings.Repeat("-", 60))
	fmt.Printf("Run %s\n", summary.RunID)
	fmt.Printf("Matched: %d | Residual lines: %d | Residual documents: %d\n",
		summary.MatchedCount(),
		len(summary.ResidualLines),
		len(summary.ResidualDocuments))

	var residualLineTotal, residualDocTotal decimal.Decimal
	for _, l := range summary.ResidualLines {
		residualLineTotal = residualLineTotal.Add(l.Amount.Abs())
	}
	for _, d := range summary.ResidualDocuments {
		residualDocTotal = residualDocTotal.Add(d.Amount)
	}
	fmt.Printf("Residual statement value: %s | Residual Benner value: %s\n",
		normalize.FormatAmount(residualLineTotal),
		normalize.FormatAmount(residualDocTotal))

	if len(summary.Skipped) > 0 {
		fmt.Printf("\nSkipped documents: %d\n", len(summary.Skipped))
		for _, skip := range summary.Skipped {
			fmt.Printf("  - %s: %s\n", skip.DocumentID, skip.Reason)
		}
	}

	if len(summary.Diagnostics) > 0 {
		fmt.Printf("\nData problems: %d\n", len(summary.Diagnostics))
		for _, diag := range summary.Diagnostics {
			fmt.Printf("  - row %d, %s: %s", diag.Row, diag.Field, diag.Problem)
			if diag.Value != "" {
				fmt.Printf(" (%q)", diag.Value)
			}
			fmt.Println()
		}
	}
}
