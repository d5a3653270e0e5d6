package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/founder-outreach/internal/mailer"
)

var sendCmd = &cobra.Command{
	Use:   "send <id>",
	Short: "Send the outreach email for a company",
	Long: `Sends the stored draft (or --body-file) to --to and marks the company
Contacted once the transport confirms delivery. Without SMTP settings the
message is only logged and the record is still marked Contacted.`,
	Args: cobra.ExactArgs(1),
	RunE: runSend,
}

func init() {
	sendCmd.Flags().String("to", "", "recipient address (required)")
	sendCmd.Flags().StringSlice("cc", nil, "additional recipients")
	sendCmd.Flags().String("subject", "", "subject line (default: generated from the company name)")
	sendCmd.Flags().String("body-file", "", "send this file instead of the stored draft (- for stdin)")
	sendCmd.Flags().String("founder", "", "founder name, for the log only")
	_ = sendCmd.MarkFlagRequired("to")
	rootCmd.AddCommand(sendCmd)
}

func runSend(cmd *cobra.Command, args []string) error {
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

	company, err := st.Get(ctx, id)
	if err != nil {
		return eris.Wrap(err, "send")
	}

	to, _ := cmd.Flags().GetString("to")
	cc, _ := cmd.Flags().GetStringSlice("cc")
	subject, _ := cmd.Flags().GetString("subject")
	bodyFile, _ := cmd.Flags().GetString("body-file")
	founder, _ := cmd.Flags().GetString("founder")

	body := company.EmailDraft
	if bodyFile != "" {
		if body, err = readInput(cmd.InOrStdin(), bodyFile); err != nil {
			return err
		}
	}
	if subject == "" {
		subject = initComposer().Subject(company.CompanyName)
	}

	svc := initMailer(st, zap.L())
	if !cfg.SMTP.Configured() {
		zap.L().Warn("SMTP not configured, message will only be logged")
	}
	err = svc.Send(ctx, id, mailer.Message{
		To:          to,
		CC:          cc,
		Subject:     subject,
		Body:        body,
		CompanyName: company.CompanyName,
		Domain:      company.Domain,
		FounderName: founder,
	})
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Sent to %s; %s marked Contacted\n", to, company.CompanyName)
	return nil
}
