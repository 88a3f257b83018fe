package databases

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"net/http"
	"os"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/vnFuhung2903/vcs-search-toolkit/interfaces"
	"github.com/vnFuhung2903/vcs-search-toolkit/pkg/env"
)

type IElasticsearchFactory interface {
	ConnectElasticsearch() (interfaces.IElasticsearchClient, error)
}

type elasticsearchFactory struct {
	env env.ElasticsearchEnv
}

func NewElasticsearchFactory(env env.ElasticsearchEnv) IElasticsearchFactory {
	return &elasticsearchFactory{env: env}
}

// ConnectElasticsearch builds a client for the configured address. It does
// not contact the server.
func (f *elasticsearchFactory) ConnectElasticsearch() (interfaces.IElasticsearchClient, error) {
	transport, err := f.newTransport()
	if err != nil {
		return nil, err
	}

	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses:    []string{f.env.ElasticsearchAddress},
		APIKey:       f.env.ElasticsearchAPIKey,
		Transport:    transport,
		DisableRetry: true,
	})
	if err != nil {
		return nil, err
	}
	return interfaces.NewElasticsearchClient(client, transport), nil
}

func (f *elasticsearchFactory) newTransport() (*http.Transport, error) {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if f.env.ElasticsearchCACert == "" {
		return transport, nil
	}

	pem, err := os.ReadFile(f.env.ElasticsearchCACert)
	if err != nil {
		return nil, fmt.Errorf("read ca certificate: %w", err)
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(pem) {
		return nil, fmt.Errorf("no certificates found in %s", f.env.ElasticsearchCACert)
	}
	transport.TLSClientConfig = &tls.Config{
		RootCAs:    pool,
		MinVersion: tls.VersionTLS12,
	}
	return transport, nil
}
