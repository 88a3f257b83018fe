// Package cmd provides the sendmail command.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/vnFuhung2903/vcs-search-toolkit/dto"
	"github.com/vnFuhung2903/vcs-search-toolkit/entities"
	"github.com/vnFuhung2903/vcs-search-toolkit/interfaces"
	"github.com/vnFuhung2903/vcs-search-toolkit/pkg/env"
	"github.com/vnFuhung2903/vcs-search-toolkit/pkg/logger"
	"github.com/vnFuhung2903/vcs-search-toolkit/usecases/services"
)

type sendOptions struct {
	senderEmail    string
	recipientEmail string
	senderName     string
	recipientName  string
	subject        string
	textFile       string
	htmlFile       string
	noSSL          bool
}

// NewRootCmd creates the sendmail command.
func NewRootCmd() *cobra.Command {
	return newRootCmd(interfaces.NewMailDialer, logger.LoadLogger)
}

func newRootCmd(newDialer func(env.SmtpEnv) interfaces.IMailDialer, loadLogger func(env.LoggerEnv) (logger.ILogger, error)) *cobra.Command {
	var opts sendOptions
	v := env.NewViper()

	cmd := &cobra.Command{
		Use:   "sendmail",
		Short: "Send an email via SMTP",
		Long: `Send one email via SMTP.

The body is read from a plain text file, an HTML file, or both. With both,
the message is sent as multipart/alternative.

SMTP settings fall back to SMTP_HOST, SMTP_PORT, SMTP_USE_SSL, MAIL_USERNAME
and MAIL_PASSWORD when the matching flags are not given.

Examples:
  sendmail --sender-email me@example.com --recipient-email you@example.com \
    --smtp-host smtp.example.com --smtp-port 465 --text-file body.txt
  sendmail --sender-email me@example.com --sender-name "Me" \
    --recipient-email you@example.com --smtp-host localhost --smtp-port 1025 \
    --no-ssl --text-file body.txt --html-file body.html`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("no-ssl") {
				v.Set("SMTP_USE_SSL", !opts.noSSL)
			}
			return runSend(cmd, v, opts, newDialer, loadLogger)
		},
	}

	cmd.Flags().StringVar(&opts.senderEmail, "sender-email", "", "The sender's email address")
	cmd.Flags().StringVar(&opts.recipientEmail, "recipient-email", "", "The recipient's email address")
	cmd.Flags().StringVar(&opts.senderName, "sender-name", "", "The sender's display name")
	cmd.Flags().StringVar(&opts.recipientName, "recipient-name", "", "The recipient's display name")
	cmd.Flags().StringVar(&opts.subject, "subject", "", "The email subject")
	cmd.Flags().String("smtp-host", "", "SMTP server hostname")
	cmd.Flags().Int("smtp-port", 0, "SMTP server port")
	cmd.Flags().BoolVar(&opts.noSSL, "no-ssl", false, "Connect without implicit SSL/TLS; STARTTLS is still used when the server offers it, and credentials are sent when MAIL_USERNAME is set")
	cmd.Flags().StringVar(&opts.textFile, "text-file", "", "Path to a plain text file for the email body")
	cmd.Flags().StringVar(&opts.htmlFile, "html-file", "", "Path to an HTML file for the email body")

	_ = cmd.MarkFlagRequired("sender-email")
	_ = cmd.MarkFlagRequired("recipient-email")
	cmd.MarkFlagsOneRequired("text-file", "html-file")
	_ = v.BindPFlag("SMTP_HOST", cmd.Flags().Lookup("smtp-host"))
	_ = v.BindPFlag("SMTP_PORT", cmd.Flags().Lookup("smtp-port"))

	return cmd
}

func runSend(cmd *cobra.Command, v *viper.Viper, opts sendOptions, newDialer func(env.SmtpEnv) interfaces.IMailDialer, loadLogger func(env.LoggerEnv) (logger.ILogger, error)) error {
	if err := checkFile("text", opts.textFile); err != nil {
		return err
	}
	if err := checkFile("html", opts.htmlFile); err != nil {
		return err
	}

	smtpEnv, err := env.LoadSmtpEnv(v)
	if err != nil {
		return err
	}
	loggerEnv, err := env.LoadLoggerEnv(v)
	if err != nil {
		return err
	}
	log, err := loadLogger(loggerEnv)
	if err != nil {
		return fmt.Errorf("failed to init logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	mailService := services.NewMailService(newDialer(smtpEnv), log)
	err = mailService.SendEmail(cmd.Context(), dto.EmailRequest{
		Sender:    entities.Mailbox{Name: opts.senderName, Address: opts.senderEmail},
		Recipient: entities.Mailbox{Name: opts.recipientName, Address: opts.recipientEmail},
		Subject:   opts.subject,
		TextFile:  opts.textFile,
		HTMLFile:  opts.htmlFile,
	})
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), "Email sent successfully")
	return nil
}

func checkFile(kind, path string) error {
	if path == "" {
		return nil
	}
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("%s file not found: %s", kind, path)
	}
	if info.IsDir() {
		return fmt.Errorf("%s file is a directory: %s", kind, path)
	}
	return nil
}
