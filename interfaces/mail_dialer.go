package interfaces

import (
	"github.com/vnFuhung2903/vcs-search-toolkit/pkg/env"
	"gopkg.in/gomail.v2"
)

type IMailDialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// NewMailDialer returns a gomail dialer for the configured SMTP server.
// With UseSSL the connection is TLS from the first byte; otherwise it is
// plain and upgraded only if the server offers STARTTLS. Credentials are
// sent only when a username is configured.
func NewMailDialer(env env.SmtpEnv) IMailDialer {
	dialer := gomail.NewDialer(env.SmtpHost, env.SmtpPort, env.MailUsername, env.MailPassword)
	dialer.SSL = env.UseSSL
	return dialer
}
