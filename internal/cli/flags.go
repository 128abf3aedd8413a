package cli

import (
	"flag"

	"github.com/financeiro-pro/reconcile-backend/internal/application/recon"
)

// ReconcileFlags are the flags of the batch reconciliation command.
type ReconcileFlags struct {
	ConfigFile string
	Statement  string
	Benner     string
	DryRun     bool
	Month      string
	Bank       string
	Tolerance  string
	Threshold  int
	ExportPath string
	Verbose    bool
}

// ParseReconcileFlags parses the reconcile command line.
func ParseReconcileFlags() *ReconcileFlags {
	flags := &ReconcileFlags{}
	flag.StringVar(&flags.ConfigFile, "config", "", "Configuration file path")
	flag.StringVar(&flags.Statement, "statement", "", "Bank statement file (csv or xlsx)")
	flag.StringVar(&flags.Benner, "benner", "", "Benner export file (csv or xlsx)")
	flag.BoolVar(&flags.DryRun, "dry-run", false, "Evaluate matches without persisting")
	flag.StringVar(&flags.Month, "month", "", "Limit statement lines to one month (MM/YYYY)")
	flag.StringVar(&flags.Bank, "bank", "", "Limit statement lines to one bank label")
	flag.StringVar(&flags.Tolerance, "tolerance", "", "Value tolerance override (e.g. 0.10)")
	flag.IntVar(&flags.Threshold, "threshold", -1, "Similarity threshold override (0-100)")
	flag.StringVar(&flags.ExportPath, "export", "", "Write the result report here (.csv or .xlsx)")
	flag.BoolVar(&flags.Verbose, "verbose", false, "Verbose output")
	flag.Parse()
	return flags
}

// ToRunOptions converts the flags to run options.
func (f *ReconcileFlags) ToRunOptions() recon.Options {
	return recon.Options{
		StatementPath: f.Statement,
		BennerPath:    f.Benner,
		DryRun:        f.DryRun,
		MonthScope:    f.Month,
		BankScope:     f.Bank,
	}
}
