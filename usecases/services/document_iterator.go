package services

import (
	"context"
	"encoding/json"
	"errors"
	"iter"
	"sync"
	"time"

	"github.com/vnFuhung2903/vcs-search-toolkit/dto"
	"github.com/vnFuhung2903/vcs-search-toolkit/interfaces"
	"github.com/vnFuhung2903/vcs-search-toolkit/pkg/logger"
	"go.uber.org/zap"
)

const clearScrollTimeout = 10 * time.Second

var errMissingSource = errors.New("hit has no _source")

type iteratorState int

const (
	stateInit iteratorState = iota
	stateStreaming
	stateDone
)

// DocumentIterator walks the hits of a scroll query page by page. It is not
// safe for concurrent use.
//
//	it, err := svc.Query(ctx, "logs", dto.QueryOptions{QueryString: "level:error"})
//	if err != nil {
//		return err
//	}
//	defer it.Close()
//	for it.Next() {
//		handle(it.Document())
//	}
//	return it.Err()
type DocumentIterator struct {
	ctx     context.Context
	service *searchIndexService
	index   string
	cursor  *scrollCursor

	state   iteratorState
	hits    []json.RawMessage
	pos     int
	current dto.Document
	count   int
	err     error
}

func newDocumentIterator(ctx context.Context, service *searchIndexService, index string) *DocumentIterator {
	return &DocumentIterator{
		ctx:     ctx,
		service: service,
		index:   index,
		cursor: &scrollCursor{
			ctx:      context.WithoutCancel(ctx),
			esClient: service.esClient,
			logger:   service.logger,
			index:    index,
		},
		state: stateInit,
	}
}

// start issues the first search and moves the iterator to streaming.
func (it *DocumentIterator) start(body []byte, pageSize int) error {
	page, err := it.service.search(it.ctx, it.index, body, pageSize)
	if page != nil {
		it.cursor.set(page.ScrollID)
	}
	if err != nil {
		it.finish(err)
		return it.err
	}
	it.state = stateStreaming
	it.load(page)
	return nil
}

// Next advances to the following document, fetching a new page when the
// current one is exhausted. It returns false once the results are drained,
// the iterator is closed or a fetch fails; Err tells the last case apart.
func (it *DocumentIterator) Next() bool {
	for it.state == stateStreaming {
		if it.pos < len(it.hits) {
			raw := it.hits[it.pos]
			it.pos++
			if len(raw) == 0 {
				it.finish(errMissingSource)
				return false
			}
			var document dto.Document
			if err := json.Unmarshal(raw, &document); err != nil {
				it.finish(err)
				return false
			}
			it.current = document
			it.count++
			return true
		}

		if len(it.hits) == 0 || it.cursor.current() == "" {
			it.finish(nil)
			return false
		}

		page, err := it.service.scroll(it.ctx, it.cursor.current())
		if page != nil {
			it.cursor.set(page.ScrollID)
		}
		if err != nil {
			it.service.logger.Error("failed to scroll elasticsearch", zap.String("index", it.index), zap.Error(err))
			it.finish(err)
			return false
		}
		it.load(page)
	}
	return false
}

// Document returns the document Next moved to.
func (it *DocumentIterator) Document() dto.Document {
	return it.current
}

// Err returns the error that stopped iteration, if any. Early Close is not
// an error.
func (it *DocumentIterator) Err() error {
	return it.err
}

// Close stops the iteration and clears the scroll. It is safe to call more
// than once and after the iterator has been drained.
func (it *DocumentIterator) Close() {
	if it.state != stateDone {
		it.finish(nil)
	}
}

// All adapts the iterator to a range-over-func sequence. A failure is
// yielded once as the final element. Breaking out of the loop closes the
// iterator.
func (it *DocumentIterator) All() iter.Seq2[dto.Document, error] {
	return func(yield func(dto.Document, error) bool) {
		defer it.Close()
		for it.Next() {
			if !yield(it.Document(), nil) {
				return
			}
		}
		if err := it.Err(); err != nil {
			yield(nil, err)
		}
	}
}

func (it *DocumentIterator) load(page *scrollPage) {
	it.hits = it.hits[:0]
	for _, hit := range page.Hits.Hits {
		it.hits = append(it.hits, hit.Source)
	}
	it.pos = 0
}

func (it *DocumentIterator) finish(err error) {
	it.state = stateDone
	it.hits = nil
	it.current = nil
	if err != nil {
		it.err = &QueryError{Index: it.index, Err: err}
	}
	it.cursor.release()
	it.service.logger.Debug("query finished", zap.String("index", it.index), zap.Int("documents", it.count))
}

// scrollCursor owns the server side scroll context of one query. It is kept
// apart from DocumentIterator so a runtime cleanup can release it once the
// iterator is unreachable.
type scrollCursor struct {
	ctx      context.Context
	esClient interfaces.IElasticsearchClient
	logger   logger.ILogger
	index    string

	mu       sync.Mutex
	id       string
	released bool
}

func (c *scrollCursor) set(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if id != "" {
		c.id = id
	}
}

func (c *scrollCursor) current() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.id
}

// release clears the scroll once. A failure is logged and swallowed; it
// never replaces the documents or the error the query already produced.
func (c *scrollCursor) release() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.released {
		return
	}
	c.released = true
	if c.id == "" {
		return
	}

	ctx, cancel := context.WithTimeout(c.ctx, clearScrollTimeout)
	defer cancel()
	if err := clearScroll(ctx, c.esClient, c.id); err != nil {
		c.logger.Warn("failed to clear scroll", zap.String("index", c.index), zap.Error(err))
		return
	}
	c.logger.Debug("scroll cleared", zap.String("index", c.index))
}
