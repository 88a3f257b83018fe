// Package cmd provides the esctl commands for uploading documents to and
// streaming documents out of Elasticsearch.
package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/vnFuhung2903/vcs-search-toolkit/pkg/env"
	"github.com/vnFuhung2903/vcs-search-toolkit/pkg/logger"
	"github.com/vnFuhung2903/vcs-search-toolkit/usecases/services"
)

type loggerLoader func(env.LoggerEnv) (logger.ILogger, error)

// NewRootCmd creates the root esctl command.
func NewRootCmd() *cobra.Command {
	return newRootCmd(logger.LoadLogger)
}

func newRootCmd(loadLogger loggerLoader) *cobra.Command {
	v := env.NewViper()

	cmd := &cobra.Command{
		Use:   "esctl",
		Short: "Upload documents to and query documents from Elasticsearch",
		Long: `esctl uploads newline-delimited JSON documents to an Elasticsearch index
and streams every document matching a query back out as newline-delimited
JSON, following the scroll until the results are exhausted.

Connection settings fall back to ELASTICSEARCH_ADDRESS, ELASTICSEARCH_API_KEY,
ELASTICSEARCH_CA_CERT, ELASTICSEARCH_SCROLL_TIMEOUT and ELASTICSEARCH_PAGE_SIZE.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().String("es-address", "", "Elasticsearch URL")
	cmd.PersistentFlags().String("api-key", "", "Elasticsearch API key")
	cmd.PersistentFlags().String("ca-cert", "", "Path to a PEM CA certificate for TLS")
	cmd.PersistentFlags().Duration("scroll-timeout", 0, "How long each scroll page stays alive on the server")
	_ = v.BindPFlag("ELASTICSEARCH_ADDRESS", cmd.PersistentFlags().Lookup("es-address"))
	_ = v.BindPFlag("ELASTICSEARCH_API_KEY", cmd.PersistentFlags().Lookup("api-key"))
	_ = v.BindPFlag("ELASTICSEARCH_CA_CERT", cmd.PersistentFlags().Lookup("ca-cert"))
	_ = v.BindPFlag("ELASTICSEARCH_SCROLL_TIMEOUT", cmd.PersistentFlags().Lookup("scroll-timeout"))

	cmd.AddCommand(newUploadCmd(v, loadLogger))
	cmd.AddCommand(newQueryCmd(v, loadLogger))

	return cmd
}

// withService loads the environment, connects and runs fn. The connection is
// closed before it returns.
func withService(ctx context.Context, v *viper.Viper, loadLogger loggerLoader, fn func(services.ISearchIndexService) error) error {
	esEnv, err := env.LoadElasticsearchEnv(v)
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

	return services.WithSearchIndexService(ctx, esEnv, log, fn)
}
