package interfaces

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

var ErrClientClosed = errors.New("elasticsearch client is closed")

type IElasticsearchClient interface {
	Do(ctx context.Context, req esapi.Request) (*esapi.Response, error)
	Close() error
}

type elasticsearchClient struct {
	client    *elasticsearch.Client
	transport *http.Transport
	closed    atomic.Bool
}

// NewElasticsearchClient wraps client. transport is the HTTP transport the
// client was configured with; Close drops its idle connections.
func NewElasticsearchClient(client *elasticsearch.Client, transport *http.Transport) IElasticsearchClient {
	return &elasticsearchClient{client: client, transport: transport}
}

func (c *elasticsearchClient) Do(ctx context.Context, req esapi.Request) (*esapi.Response, error) {
	if c.closed.Load() {
		return nil, ErrClientClosed
	}
	return req.Do(ctx, c.client)
}

func (c *elasticsearchClient) Close() error {
	if c.closed.Swap(true) {
		return nil
	}
	if c.transport != nil {
		c.transport.CloseIdleConnections()
	}
	return nil
}
