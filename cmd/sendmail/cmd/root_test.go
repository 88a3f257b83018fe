package cmd

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"

	"github.com/vnFuhung2903/vcs-search-toolkit/interfaces"
	mocks "github.com/vnFuhung2903/vcs-search-toolkit/mocks/interfaces"
	"github.com/vnFuhung2903/vcs-search-toolkit/pkg/env"
	"github.com/vnFuhung2903/vcs-search-toolkit/pkg/logger"
)

type SendmailCmdSuite struct {
	suite.Suite
	ctrl     *gomock.Controller
	dialer   *mocks.MockIMailDialer
	smtpEnv  env.SmtpEnv
	stdout   *bytes.Buffer
	textFile string
	htmlFile string
}

func (s *SendmailCmdSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.dialer = mocks.NewMockIMailDialer(s.ctrl)
	s.smtpEnv = env.SmtpEnv{}
	s.stdout = &bytes.Buffer{}

	for _, key := range []string{"SMTP_HOST", "SMTP_PORT", "SMTP_USE_SSL", "MAIL_USERNAME", "MAIL_PASSWORD", "ZAP_LEVEL"} {
		s.T().Setenv(key, "")
	}

	dir := s.T().TempDir()
	s.textFile = filepath.Join(dir, "body.txt")
	s.htmlFile = filepath.Join(dir, "body.html")
	s.Require().NoError(os.WriteFile(s.textFile, []byte("plain body"), 0o644))
	s.Require().NoError(os.WriteFile(s.htmlFile, []byte("<b>html body</b>"), 0o644))
}

func (s *SendmailCmdSuite) TearDownTest() {
	s.ctrl.Finish()
}

func TestSendmailCmdSuite(t *testing.T) {
	suite.Run(t, new(SendmailCmdSuite))
}

func (s *SendmailCmdSuite) execute(args ...string) error {
	cmd := newRootCmd(
		func(smtpEnv env.SmtpEnv) interfaces.IMailDialer {
			s.smtpEnv = smtpEnv
			return s.dialer
		},
		func(env.LoggerEnv) (logger.ILogger, error) {
			return zap.NewNop(), nil
		},
	)
	cmd.SetArgs(args)
	cmd.SetOut(s.stdout)
	cmd.SetErr(&bytes.Buffer{})
	return cmd.Execute()
}

func (s *SendmailCmdSuite) baseArgs() []string {
	return []string{
		"--sender-email", "alice@example.com",
		"--recipient-email", "bob@example.com",
		"--smtp-host", "smtp.test",
		"--smtp-port", "2525",
	}
}

func (s *SendmailCmdSuite) TestSendSuccess() {
	s.dialer.EXPECT().DialAndSend(gomock.Any()).DoAndReturn(func(messages ...*gomail.Message) error {
		s.Require().Len(messages, 1)
		s.Equal([]string{`"Alice" <alice@example.com>`}, messages[0].GetHeader("From"))
		s.Equal([]string{"bob@example.com"}, messages[0].GetHeader("To"))
		return nil
	})

	args := append(s.baseArgs(), "--sender-name", "Alice", "--no-ssl", "--text-file", s.textFile, "--html-file", s.htmlFile)
	err := s.execute(args...)

	s.Require().NoError(err)
	s.Equal("Email sent successfully\n", s.stdout.String())
	s.Equal("smtp.test", s.smtpEnv.SmtpHost)
	s.Equal(2525, s.smtpEnv.SmtpPort)
	s.False(s.smtpEnv.UseSSL)
}

func (s *SendmailCmdSuite) TestSSLIsDefault() {
	s.dialer.EXPECT().DialAndSend(gomock.Any()).Return(nil)

	err := s.execute(append(s.baseArgs(), "--html-file", s.htmlFile)...)

	s.Require().NoError(err)
	s.True(s.smtpEnv.UseSSL)
}

func (s *SendmailCmdSuite) TestSMTPSettingsFromEnv() {
	s.T().Setenv("SMTP_HOST", "smtp.env")
	s.T().Setenv("SMTP_PORT", "465")
	s.T().Setenv("MAIL_USERNAME", "mailer")
	s.dialer.EXPECT().DialAndSend(gomock.Any()).Return(nil)

	err := s.execute("--sender-email", "alice@example.com", "--recipient-email", "bob@example.com", "--text-file", s.textFile)

	s.Require().NoError(err)
	s.Equal("smtp.env", s.smtpEnv.SmtpHost)
	s.Equal(465, s.smtpEnv.SmtpPort)
	s.Equal("mailer", s.smtpEnv.MailUsername)
}

func (s *SendmailCmdSuite) TestFlagOverridesEnv() {
	s.T().Setenv("SMTP_HOST", "smtp.env")
	s.dialer.EXPECT().DialAndSend(gomock.Any()).Return(nil)

	err := s.execute(append(s.baseArgs(), "--text-file", s.textFile)...)

	s.Require().NoError(err)
	s.Equal("smtp.test", s.smtpEnv.SmtpHost)
}

func (s *SendmailCmdSuite) TestMissingBody() {
	err := s.execute(s.baseArgs()...)

	s.Error(err)
	s.Contains(err.Error(), "text-file")
	s.Empty(s.stdout.String())
}

func (s *SendmailCmdSuite) TestMissingBodyFile() {
	err := s.execute(append(s.baseArgs(), "--text-file", filepath.Join(s.T().TempDir(), "missing.txt"))...)

	s.Error(err)
	s.Contains(err.Error(), "text file not found")
}

func (s *SendmailCmdSuite) TestMissingRecipient() {
	err := s.execute("--sender-email", "alice@example.com", "--smtp-host", "smtp.test", "--smtp-port", "25", "--text-file", s.textFile)

	s.Error(err)
	s.Contains(err.Error(), "recipient-email")
}

func (s *SendmailCmdSuite) TestMissingSMTPHost() {
	err := s.execute("--sender-email", "alice@example.com", "--recipient-email", "bob@example.com", "--smtp-port", "25", "--text-file", s.textFile)

	s.Error(err)
	s.Contains(err.Error(), "smtp host is empty")
}

func (s *SendmailCmdSuite) TestSendFailure() {
	s.dialer.EXPECT().DialAndSend(gomock.Any()).Return(errors.New("535 authentication failed"))

	err := s.execute(append(s.baseArgs(), "--text-file", s.textFile)...)

	s.Error(err)
	s.Contains(err.Error(), "failed to send email")
	s.Contains(err.Error(), "535 authentication failed")
	s.Empty(s.stdout.String())
}

func (s *SendmailCmdSuite) TestNoSSLHelpMentionsSTARTTLS() {
	cmd := NewRootCmd()

	usage := cmd.Flags().Lookup("no-ssl").Usage

	s.Contains(usage, "STARTTLS")
	s.Contains(usage, "MAIL_USERNAME")
}
