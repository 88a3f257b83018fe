package env

import (
	"errors"
	"time"

	"github.com/spf13/viper"
)

type ElasticsearchEnv struct {
	ElasticsearchAddress string
	ElasticsearchAPIKey  string
	ElasticsearchCACert  string
	ScrollTimeout        time.Duration
	PageSize             int
}

type SmtpEnv struct {
	SmtpHost     string
	SmtpPort     int
	UseSSL       bool
	MailUsername string
	MailPassword string
}

type LoggerEnv struct {
	Level      string
	FilePath   string
	MaxSize    int
	MaxAge     int
	MaxBackups int
}

// NewViper returns a viper instance reading the process environment with
// the toolkit defaults applied. Commands bind their flags into it so that a
// flag, when set, wins over the matching variable.
func NewViper() *viper.Viper {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("ELASTICSEARCH_ADDRESS", "http://localhost:9200")
	v.SetDefault("ELASTICSEARCH_API_KEY", "")
	v.SetDefault("ELASTICSEARCH_CA_CERT", "")
	v.SetDefault("ELASTICSEARCH_SCROLL_TIMEOUT", 2*time.Minute)
	v.SetDefault("ELASTICSEARCH_PAGE_SIZE", 100)
	v.SetDefault("SMTP_HOST", "")
	v.SetDefault("SMTP_PORT", 0)
	v.SetDefault("SMTP_USE_SSL", true)
	v.SetDefault("MAIL_USERNAME", "")
	v.SetDefault("MAIL_PASSWORD", "")
	v.SetDefault("ZAP_LEVEL", "info")
	v.SetDefault("ZAP_FILEPATH", "")
	v.SetDefault("ZAP_MAXSIZE", 100)
	v.SetDefault("ZAP_MAXAGE", 10)
	v.SetDefault("ZAP_MAXBACKUPS", 30)
	return v
}

func LoadElasticsearchEnv(v *viper.Viper) (ElasticsearchEnv, error) {
	elasticsearchEnv := ElasticsearchEnv{
		ElasticsearchAddress: v.GetString("ELASTICSEARCH_ADDRESS"),
		ElasticsearchAPIKey:  v.GetString("ELASTICSEARCH_API_KEY"),
		ElasticsearchCACert:  v.GetString("ELASTICSEARCH_CA_CERT"),
		ScrollTimeout:        v.GetDuration("ELASTICSEARCH_SCROLL_TIMEOUT"),
		PageSize:             v.GetInt("ELASTICSEARCH_PAGE_SIZE"),
	}
	if elasticsearchEnv.ElasticsearchAddress == "" {
		return ElasticsearchEnv{}, errors.New("elasticsearch environment variables are empty")
	}
	if elasticsearchEnv.ScrollTimeout <= 0 || elasticsearchEnv.PageSize <= 0 {
		return ElasticsearchEnv{}, errors.New("elasticsearch scroll timeout and page size must be positive")
	}
	return elasticsearchEnv, nil
}

func LoadSmtpEnv(v *viper.Viper) (SmtpEnv, error) {
	smtpEnv := SmtpEnv{
		SmtpHost:     v.GetString("SMTP_HOST"),
		SmtpPort:     v.GetInt("SMTP_PORT"),
		UseSSL:       v.GetBool("SMTP_USE_SSL"),
		MailUsername: v.GetString("MAIL_USERNAME"),
		MailPassword: v.GetString("MAIL_PASSWORD"),
	}
	if smtpEnv.SmtpHost == "" {
		return SmtpEnv{}, errors.New("smtp host is empty")
	}
	if smtpEnv.SmtpPort <= 0 || smtpEnv.SmtpPort > 65535 {
		return SmtpEnv{}, errors.New("smtp port is out of range")
	}
	return smtpEnv, nil
}

func LoadLoggerEnv(v *viper.Viper) (LoggerEnv, error) {
	loggerEnv := LoggerEnv{
		Level:      v.GetString("ZAP_LEVEL"),
		FilePath:   v.GetString("ZAP_FILEPATH"),
		MaxSize:    v.GetInt("ZAP_MAXSIZE"),
		MaxAge:     v.GetInt("ZAP_MAXAGE"),
		MaxBackups: v.GetInt("ZAP_MAXBACKUPS"),
	}
	if loggerEnv.Level == "" || loggerEnv.MaxSize <= 0 || loggerEnv.MaxAge <= 0 || loggerEnv.MaxBackups <= 0 {
		return LoggerEnv{}, errors.New("logger environment variables are empty or invalid")
	}
	return loggerEnv, nil
}
