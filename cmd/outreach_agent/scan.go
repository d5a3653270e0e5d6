package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonathan/founder-outreach/internal/observability"
	"github.com/jonathan/founder-outreach/internal/pipeline"
)

var (
	scanLimit   int
	scanSeedArg int64
	scanQuiet   bool
	scanVerbose bool
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Discover, qualify and draft outreach for new companies",
	Long: `Collects company links from the directory home listing and a random sample of
category pages, then processes them one at a time: extract details, skip
contacted, blacklisted or recently scanned domains, keep only websites that
advertise a target role, resolve key people, draft the email and persist.

The run stops once --limit companies are persisted or the links run out.`,
	RunE: runScan,
}

func init() {
	scanCmd.Flags().IntVar(&scanLimit, "limit", 0, "Companies to persist before stopping (default from scan.limit)")
	scanCmd.Flags().Int64Var(&scanSeedArg, "seed", 0, "Seed for category sampling (default from scan.seed; 0 = random)")
	scanCmd.Flags().BoolVarP(&scanQuiet, "quiet", "q", false, "Do not print per-company progress")
	scanCmd.Flags().BoolVarP(&scanVerbose, "verbose", "v", false, "Print each persisted company and its draft")
	rootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := initStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close() //nolint:errcheck

	limit := cfg.Scan.Limit
	if scanLimit > 0 {
		limit = scanLimit
	}
	seed := cfg.Scan.Seed
	if scanSeedArg != 0 {
		seed = scanSeedArg
	}

	out := cmd.OutOrStdout()
	var progress pipeline.ProgressCallback
	if !scanQuiet {
		progress = func(ev pipeline.ProgressEvent) {
			printProgress(out, ev)
		}
	}

	p, err := initPipeline(ctx, st, seed, progress)
	if err != nil {
		return err
	}

	summary, err := p.Run(ctx, limit)
	if summary == nil {
		return err
	}
	if scanVerbose {
		printer := observability.NewPrinter(out)
		for i := range summary.Persisted {
			printer.PrintCompany(&summary.Persisted[i])
		}
		printer.PrintSummary(summary)
		return err
	}
	formatSummary(out, summary)
	return err
}

func printProgress(out io.Writer, ev pipeline.ProgressEvent) {
	name := ev.Company
	if name == "" {
		name = ev.URL
	}
	if ev.Domain != "" {
		_, _ = fmt.Fprintf(out, "  %-18s %s (%s)\n", ev.Outcome, name, ev.Domain)
		return
	}
	_, _ = fmt.Fprintf(out, "  %-18s %s\n", ev.Outcome, name)
}

// formatSummary writes the run summary and the persisted companies to out.
func formatSummary(out io.Writer, s *pipeline.Summary) {
	_, _ = fmt.Fprintf(out, "\nScan %s after %s: %d links from %d sources (%d failed), %d examined, %d persisted\n",
		s.StopReason, s.Duration.Round(time.Millisecond), s.Links, len(s.Sources), len(s.FailedSources), s.Examined, len(s.Persisted))

	outcomes := make([]string, 0, len(s.Outcomes))
	for o := range s.Outcomes {
		outcomes = append(outcomes, o)
	}
	sort.Strings(outcomes)
	for _, o := range outcomes {
		_, _ = fmt.Fprintf(out, "  %-18s %d\n", o, s.Outcomes[o])
	}

	if len(s.Persisted) == 0 {
		return
	}
	_, _ = fmt.Fprintln(out)
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tCOMPANY\tDOMAIN\tPEOPLE\tCANDIDATES")
	for _, c := range s.Persisted {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\n", c.ID, c.CompanyName, c.Domain, len(c.ResolvedPeople), len(c.EmailCandidates))
	}
	_ = w.Flush()
}
