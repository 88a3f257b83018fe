package services

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"iter"
	"runtime"
	"time"

	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/tidwall/gjson"
	"github.com/vnFuhung2903/vcs-search-toolkit/dto"
	"github.com/vnFuhung2903/vcs-search-toolkit/infrastructures/databases"
	"github.com/vnFuhung2903/vcs-search-toolkit/interfaces"
	"github.com/vnFuhung2903/vcs-search-toolkit/pkg/env"
	"github.com/vnFuhung2903/vcs-search-toolkit/pkg/logger"
	"go.uber.org/zap"
)

const (
	defaultScrollTimeout = 2 * time.Minute
	defaultPageSize      = 100
)

type ISearchIndexService interface {
	// UploadDocument indexes document. An empty docID lets Elasticsearch
	// generate one.
	UploadDocument(ctx context.Context, index string, document dto.Document, docID string) (dto.WriteAck, error)
	// UploadDocuments indexes documents one at a time, in order. On failure
	// it returns the acknowledgments gathered before the failing document.
	UploadDocuments(ctx context.Context, index string, documents iter.Seq[dto.Document]) ([]dto.WriteAck, error)
	// Query runs the first search of a scroll and returns an iterator over
	// every matching document. The caller must drain or Close the iterator.
	Query(ctx context.Context, index string, opts dto.QueryOptions) (*DocumentIterator, error)
	Close() error
}

type searchIndexService struct {
	esClient      interfaces.IElasticsearchClient
	logger        logger.ILogger
	endpoint      string
	scrollTimeout time.Duration
	pageSize      int
}

// ConnectSearchIndexService builds an Elasticsearch client from env and
// validates it with a ping.
func ConnectSearchIndexService(ctx context.Context, env env.ElasticsearchEnv, logger logger.ILogger) (ISearchIndexService, error) {
	esClient, err := databases.NewElasticsearchFactory(env).ConnectElasticsearch()
	if err != nil {
		logger.Error("failed to create elasticsearch client", zap.String("endpoint", env.ElasticsearchAddress), zap.Error(err))
		return nil, &ConnectionError{Endpoint: env.ElasticsearchAddress, Err: err}
	}
	return NewSearchIndexService(ctx, esClient, logger, env)
}

// NewSearchIndexService takes ownership of esClient. The client is closed if
// the ping fails.
func NewSearchIndexService(ctx context.Context, esClient interfaces.IElasticsearchClient, logger logger.ILogger, env env.ElasticsearchEnv) (ISearchIndexService, error) {
	s := &searchIndexService{
		esClient:      esClient,
		logger:        logger,
		endpoint:      env.ElasticsearchAddress,
		scrollTimeout: env.ScrollTimeout,
		pageSize:      env.PageSize,
	}
	if s.scrollTimeout <= 0 {
		s.scrollTimeout = defaultScrollTimeout
	}
	if s.pageSize <= 0 {
		s.pageSize = defaultPageSize
	}

	if err := s.ping(ctx); err != nil {
		s.logger.Error("failed to ping elasticsearch", zap.String("endpoint", s.endpoint), zap.Error(err))
		_ = esClient.Close()
		return nil, &ConnectionError{Endpoint: s.endpoint, Err: err}
	}
	s.logger.Info("connected to elasticsearch", zap.String("endpoint", s.endpoint))
	return s, nil
}

// WithSearchIndexService connects, runs fn and closes the service on every
// exit path.
func WithSearchIndexService(ctx context.Context, env env.ElasticsearchEnv, logger logger.ILogger, fn func(ISearchIndexService) error) (err error) {
	s, err := ConnectSearchIndexService(ctx, env, logger)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := s.Close(); err == nil {
			err = closeErr
		}
	}()
	return fn(s)
}

func (s *searchIndexService) ping(ctx context.Context) error {
	res, err := s.esClient.Do(ctx, esapi.PingRequest{})
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.IsError() {
		return newResponseError(res)
	}
	return nil
}

func (s *searchIndexService) UploadDocument(ctx context.Context, index string, document dto.Document, docID string) (dto.WriteAck, error) {
	body, err := json.Marshal(document)
	if err != nil {
		s.logger.Error("failed to encode document", zap.String("index", index), zap.Error(err))
		return nil, &UploadError{Index: index, DocID: docID, Err: err}
	}

	req := esapi.IndexRequest{
		Index:      index,
		DocumentID: docID,
		Body:       bytes.NewReader(body),
	}
	res, err := s.esClient.Do(ctx, req)
	if err != nil {
		s.logger.Error("failed to upload document", zap.String("index", index), zap.Error(err))
		return nil, &UploadError{Index: index, DocID: docID, Err: err}
	}
	defer res.Body.Close()

	if res.IsError() {
		respErr := newResponseError(res)
		s.logger.Error("failed to upload document", zap.String("index", index), zap.Error(respErr))
		return nil, &UploadError{Index: index, DocID: docID, Err: respErr}
	}

	var ack dto.WriteAck
	if err := json.NewDecoder(res.Body).Decode(&ack); err != nil {
		s.logger.Error("failed to decode response body", zap.String("index", index), zap.Error(err))
		return nil, &UploadError{Index: index, DocID: docID, Err: err}
	}
	s.logger.Debug("document uploaded", zap.String("index", index), zap.String("id", ack.ID()), zap.String("result", ack.Result()))
	return ack, nil
}

func (s *searchIndexService) UploadDocuments(ctx context.Context, index string, documents iter.Seq[dto.Document]) ([]dto.WriteAck, error) {
	acks := []dto.WriteAck{}
	for document := range documents {
		ack, err := s.UploadDocument(ctx, index, document, "")
		if err != nil {
			return acks, err
		}
		acks = append(acks, ack)
	}
	s.logger.Info("documents uploaded successfully", zap.String("index", index), zap.Int("count", len(acks)))
	return acks, nil
}

func (s *searchIndexService) Query(ctx context.Context, index string, opts dto.QueryOptions) (*DocumentIterator, error) {
	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = s.pageSize
	}

	body, err := json.Marshal(map[string]interface{}{"query": resolveQuery(opts)})
	if err != nil {
		s.logger.Error("failed to encode query", zap.String("index", index), zap.Error(err))
		return nil, &QueryError{Index: index, Err: err}
	}

	it := newDocumentIterator(ctx, s, index)
	if err := it.start(body, pageSize); err != nil {
		s.logger.Error("failed to search elasticsearch", zap.String("index", index), zap.Error(err))
		return nil, err
	}
	// Iterators dropped without Close still give their scroll back.
	runtime.AddCleanup(it, (*scrollCursor).release, it.cursor)
	return it, nil
}

func (s *searchIndexService) Close() error {
	return s.esClient.Close()
}

func resolveQuery(opts dto.QueryOptions) map[string]interface{} {
	switch {
	case opts.Query != nil:
		return opts.Query
	case opts.QueryString != "":
		return map[string]interface{}{
			"query_string": map[string]interface{}{"query": opts.QueryString},
		}
	default:
		return map[string]interface{}{"match_all": map[string]interface{}{}}
	}
}

type scrollPage struct {
	ScrollID string `json:"_scroll_id"`
	Hits     struct {
		Hits []struct {
			ID     string          `json:"_id"`
			Source json.RawMessage `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

func (s *searchIndexService) search(ctx context.Context, index string, body []byte, pageSize int) (*scrollPage, error) {
	req := esapi.SearchRequest{
		Index:  []string{index},
		Body:   bytes.NewReader(body),
		Scroll: s.scrollTimeout,
		Size:   &pageSize,
	}
	res, err := s.esClient.Do(ctx, req)
	return readScrollPage(res, err)
}

func (s *searchIndexService) scroll(ctx context.Context, scrollID string) (*scrollPage, error) {
	body, err := json.Marshal(map[string]string{"scroll_id": scrollID})
	if err != nil {
		return nil, err
	}
	req := esapi.ScrollRequest{
		Body:   bytes.NewReader(body),
		Scroll: s.scrollTimeout,
	}
	res, err := s.esClient.Do(ctx, req)
	return readScrollPage(res, err)
}

// readScrollPage decodes a search or scroll response. When the body carries
// a scroll id but cannot be decoded, the returned page holds only that id so
// the caller can still clear it.
func readScrollPage(res *esapi.Response, err error) (*scrollPage, error) {
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, newResponseError(res)
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, err
	}
	var page scrollPage
	if err := json.Unmarshal(body, &page); err != nil {
		return &scrollPage{ScrollID: gjson.GetBytes(body, "_scroll_id").String()}, err
	}
	return &page, nil
}

func clearScroll(ctx context.Context, esClient interfaces.IElasticsearchClient, scrollID string) error {
	body, err := json.Marshal(map[string][]string{"scroll_id": {scrollID}})
	if err != nil {
		return err
	}
	res, err := esClient.Do(ctx, esapi.ClearScrollRequest{Body: bytes.NewReader(body)})
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.IsError() {
		return newResponseError(res)
	}
	return nil
}
