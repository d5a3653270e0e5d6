package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/jonathan/founder-outreach/internal/observability"
	"github.com/jonathan/founder-outreach/internal/store"
	"github.com/jonathan/founder-outreach/internal/types"
)

var companiesCmd = &cobra.Command{
	Use:   "companies",
	Short: "Review and manage discovered companies",
	Long:  "Commands for listing, inspecting, blacklisting and editing the drafts of stored company records.",
}

// -- companies list --

var companiesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List companies, newest first",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		limit, _ := cmd.Flags().GetInt("limit")
		offset, _ := cmd.Flags().GetInt("offset")
		rawStatus, _ := cmd.Flags().GetString("status")

		page := store.Page{Limit: limit, Offset: offset}
		if rawStatus != "" {
			status, ok := types.ParseStatus(rawStatus)
			if !ok {
				return eris.Errorf("unknown status %q (want New, Contacted or Blacklisted)", rawStatus)
			}
			page.Status = status
		}

		companies, err := st.List(ctx, page)
		if err != nil {
			return eris.Wrap(err, "companies list")
		}
		if len(companies) == 0 {
			fmt.Fprintln(cmd.ErrOrStderr(), "No companies found.")
			return nil
		}
		formatCompaniesList(cmd.OutOrStdout(), companies)
		return nil
	},
}

// -- companies count --

var companiesCountCmd = &cobra.Command{
	Use:   "count",
	Short: "Print the number of stored companies",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		n, err := st.Count(ctx)
		if err != nil {
			return eris.Wrap(err, "companies count")
		}
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), n)
		return nil
	},
}

// -- companies show --

var companiesShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a company record as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		id, err := parseCompanyID(args[0])
		if err != nil {
			return err
		}
		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		c, err := st.Get(ctx, id)
		if err != nil {
			return eris.Wrap(err, "companies show")
		}
		if pretty, _ := cmd.Flags().GetBool("pretty"); pretty {
			observability.NewPrinter(cmd.OutOrStdout()).PrintCompany(c)
			return nil
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(c)
	},
}

// -- companies blacklist --

var companiesBlacklistCmd = &cobra.Command{
	Use:   "blacklist <id>",
	Short: "Exclude a company from future scans and outreach",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		id, err := parseCompanyID(args[0])
		if err != nil {
			return err
		}
		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		if err := st.SetStatus(ctx, id, types.StatusBlacklisted); err != nil {
			return eris.Wrap(err, "companies blacklist")
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Blacklisted %s\n", id)
		return nil
	},
}

// -- companies draft --

var companiesDraftCmd = &cobra.Command{
	Use:   "draft <id>",
	Short: "Print or replace the outreach draft of a company",
	Long: `Without flags, prints the stored draft. With --file (use - for stdin) the
draft is replaced by the file's contents.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		id, err := parseCompanyID(args[0])
		if err != nil {
			return err
		}
		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		file, _ := cmd.Flags().GetString("file")
		if file == "" {
			c, err := st.Get(ctx, id)
			if err != nil {
				return eris.Wrap(err, "companies draft")
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), c.EmailDraft)
			return nil
		}

		text, err := readInput(cmd.InOrStdin(), file)
		if err != nil {
			return err
		}
		if strings.TrimSpace(text) == "" {
			return eris.New("draft is empty")
		}
		if err := st.UpdateDraft(ctx, id, text); err != nil {
			return eris.Wrap(err, "companies draft")
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Updated draft for %s\n", id)
		return nil
	},
}

func init() {
	companiesListCmd.Flags().Int("limit", store.DefaultPageSize, "max number of companies to display")
	companiesListCmd.Flags().Int("offset", 0, "number of companies to skip")
	companiesListCmd.Flags().String("status", "", "filter by status (New, Contacted, Blacklisted)")

	companiesShowCmd.Flags().Bool("pretty", false, "print a readable summary instead of JSON")

	companiesDraftCmd.Flags().String("file", "", "replace the draft with this file's contents (- for stdin)")

	companiesCmd.AddCommand(companiesListCmd)
	companiesCmd.AddCommand(companiesCountCmd)
	companiesCmd.AddCommand(companiesShowCmd)
	companiesCmd.AddCommand(companiesBlacklistCmd)
	companiesCmd.AddCommand(companiesDraftCmd)
	rootCmd.AddCommand(companiesCmd)
}

func parseCompanyID(s string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, eris.Errorf("invalid company ID %q", s)
	}
	return id, nil
}

// readInput reads path, or stdin when path is "-".
func readInput(stdin io.Reader, path string) (string, error) {
	if path == "-" {
		b, err := io.ReadAll(stdin)
		if err != nil {
			return "", eris.Wrap(err, "read stdin")
		}
		return string(b), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return "", eris.Wrapf(err, "read %s", path)
	}
	return string(b), nil
}

// formatCompaniesList writes a tabular list of companies to out.
func formatCompaniesList(out io.Writer, companies []types.Company) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tCOMPANY\tDOMAIN\tSTATUS\tPEOPLE\tSCANNED")
	for _, c := range companies {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			c.ID, c.CompanyName, c.Domain, c.Status, peopleSummary(c.ResolvedPeople),
			c.LastScannedAt.Format("2006-01-02 15:04"))
	}
	_ = w.Flush()
}

func peopleSummary(people []types.Person) string {
	if len(people) == 0 {
		return "-"
	}
	names := make([]string, 0, len(people))
	for _, p := range people {
		names = append(names, p.Name)
	}
	return strings.Join(names, ", ")
}
