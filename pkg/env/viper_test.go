package env

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type EnvSuite struct {
	suite.Suite
}

func TestEnvSuite(t *testing.T) {
	suite.Run(t, new(EnvSuite))
}

func (s *EnvSuite) TestLoadElasticsearchEnvDefaults() {
	esEnv, err := LoadElasticsearchEnv(NewViper())
	s.NoError(err)
	s.Equal("http://localhost:9200", esEnv.ElasticsearchAddress)
	s.Empty(esEnv.ElasticsearchAPIKey)
	s.Empty(esEnv.ElasticsearchCACert)
	s.Equal(2*time.Minute, esEnv.ScrollTimeout)
	s.Equal(100, esEnv.PageSize)
}

func (s *EnvSuite) TestLoadElasticsearchEnvFromEnvironment() {
	s.T().Setenv("ELASTICSEARCH_ADDRESS", "https://es.internal:9243")
	s.T().Setenv("ELASTICSEARCH_API_KEY", "secret-key")
	s.T().Setenv("ELASTICSEARCH_CA_CERT", "/etc/ssl/es-ca.pem")
	s.T().Setenv("ELASTICSEARCH_SCROLL_TIMEOUT", "5m")
	s.T().Setenv("ELASTICSEARCH_PAGE_SIZE", "500")

	esEnv, err := LoadElasticsearchEnv(NewViper())
	s.NoError(err)
	s.Equal("https://es.internal:9243", esEnv.ElasticsearchAddress)
	s.Equal("secret-key", esEnv.ElasticsearchAPIKey)
	s.Equal("/etc/ssl/es-ca.pem", esEnv.ElasticsearchCACert)
	s.Equal(5*time.Minute, esEnv.ScrollTimeout)
	s.Equal(500, esEnv.PageSize)
}

func (s *EnvSuite) TestLoadElasticsearchEnvInvalid() {
	v := NewViper()
	v.Set("ELASTICSEARCH_ADDRESS", "")
	_, err := LoadElasticsearchEnv(v)
	s.Error(err)

	v = NewViper()
	v.Set("ELASTICSEARCH_PAGE_SIZE", 0)
	_, err = LoadElasticsearchEnv(v)
	s.Error(err)
}

func (s *EnvSuite) TestLoadSmtpEnv() {
	s.T().Setenv("SMTP_HOST", "smtp.example.com")
	s.T().Setenv("SMTP_PORT", "465")
	s.T().Setenv("MAIL_USERNAME", "mailer")

	smtpEnv, err := LoadSmtpEnv(NewViper())
	s.NoError(err)
	s.Equal("smtp.example.com", smtpEnv.SmtpHost)
	s.Equal(465, smtpEnv.SmtpPort)
	s.True(smtpEnv.UseSSL)
	s.Equal("mailer", smtpEnv.MailUsername)
}

func (s *EnvSuite) TestLoadSmtpEnvInvalid() {
	_, err := LoadSmtpEnv(NewViper())
	s.EqualError(err, "smtp host is empty")

	v := NewViper()
	v.Set("SMTP_HOST", "smtp.example.com")
	v.Set("SMTP_PORT", 70000)
	_, err = LoadSmtpEnv(v)
	s.EqualError(err, "smtp port is out of range")
}

func (s *EnvSuite) TestLoadLoggerEnv() {
	loggerEnv, err := LoadLoggerEnv(NewViper())
	s.NoError(err)
	s.Equal("info", loggerEnv.Level)
	s.Empty(loggerEnv.FilePath)

	v := NewViper()
	v.Set("ZAP_MAXSIZE", -1)
	_, err = LoadLoggerEnv(v)
	s.Error(err)
}
