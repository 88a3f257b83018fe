// Package testutil provides an in-memory Elasticsearch stand-in speaking
// the subset of the REST API the toolkit uses: ping, index, search with
// scroll, scroll and clear scroll.
package testutil

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"time"
)

type storedDocument struct {
	id     string
	source json.RawMessage
	fields map[string]interface{}
}

type scrollContext struct {
	index     string
	hits      []storedDocument
	pos       int
	size      int
	keepAlive time.Duration
	expiresAt time.Time
}

// Elasticsearch is a fake cluster backed by an httptest.Server. Documents
// are returned in insertion order.
type Elasticsearch struct {
	server *httptest.Server

	mu            sync.Mutex
	indices       map[string][]storedDocument
	scrolls       map[string]*scrollContext
	nextScroll    int
	nextID        int
	pingStatus    int
	failScrollAt  int
	scrollCalls   int
	failClear     bool
	clearedIDs    []string
	searchBodies  []map[string]interface{}
	requestCounts map[string]int
}

func NewElasticsearch() *Elasticsearch {
	es := &Elasticsearch{
		indices:       make(map[string][]storedDocument),
		scrolls:       make(map[string]*scrollContext),
		pingStatus:    http.StatusOK,
		requestCounts: make(map[string]int),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("HEAD /{$}", es.handlePing)
	mux.HandleFunc("POST /{index}/_doc", es.handleIndex)
	mux.HandleFunc("PUT /{index}/_doc/{id}", es.handleIndex)
	mux.HandleFunc("POST /{index}/_doc/{id}", es.handleIndex)
	mux.HandleFunc("GET /{index}/_search", es.handleSearch)
	mux.HandleFunc("POST /{index}/_search", es.handleSearch)
	mux.HandleFunc("GET /_search/scroll", es.handleScroll)
	mux.HandleFunc("POST /_search/scroll", es.handleScroll)
	mux.HandleFunc("DELETE /_search/scroll", es.handleClearScroll)
	mux.HandleFunc("DELETE /_search/scroll/{id}", es.handleClearScroll)

	es.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// go-elasticsearch refuses to talk to servers without this header.
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		es.mu.Lock()
		es.requestCounts[r.Method+" "+r.URL.Path]++
		es.mu.Unlock()
		mux.ServeHTTP(w, r)
	}))
	return es
}

func (es *Elasticsearch) URL() string {
	return es.server.URL
}

func (es *Elasticsearch) Close() {
	es.server.Close()
}

// SetPingStatus makes HEAD / answer with status.
func (es *Elasticsearch) SetPingStatus(status int) {
	es.mu.Lock()
	defer es.mu.Unlock()
	es.pingStatus = status
}

// FailScrollAt makes the n-th scroll request (1-based) answer 500. Zero
// disables the fault.
func (es *Elasticsearch) FailScrollAt(n int) {
	es.mu.Lock()
	defer es.mu.Unlock()
	es.failScrollAt = n
}

// FailClearScroll makes clear scroll requests answer 500 without freeing
// anything.
func (es *Elasticsearch) FailClearScroll(fail bool) {
	es.mu.Lock()
	defer es.mu.Unlock()
	es.failClear = fail
}

// AddDocuments stores documents with generated ids.
func (es *Elasticsearch) AddDocuments(index string, documents ...map[string]interface{}) {
	es.mu.Lock()
	defer es.mu.Unlock()
	for _, document := range documents {
		source, _ := json.Marshal(document)
		es.putLocked(index, "", source)
	}
}

// OpenScrolls returns the number of scroll contexts not yet cleared or
// expired.
func (es *Elasticsearch) OpenScrolls() int {
	es.mu.Lock()
	defer es.mu.Unlock()
	es.expireLocked()
	return len(es.scrolls)
}

// ScrollExists reports whether id still names a live scroll context.
func (es *Elasticsearch) ScrollExists(id string) bool {
	es.mu.Lock()
	defer es.mu.Unlock()
	es.expireLocked()
	_, ok := es.scrolls[id]
	return ok
}

// ClearedScrolls returns the ids received by clear scroll, in order.
func (es *Elasticsearch) ClearedScrolls() []string {
	es.mu.Lock()
	defer es.mu.Unlock()
	return append([]string(nil), es.clearedIDs...)
}

// SearchBodies returns the decoded bodies of every initial search request.
func (es *Elasticsearch) SearchBodies() []map[string]interface{} {
	es.mu.Lock()
	defer es.mu.Unlock()
	return append([]map[string]interface{}(nil), es.searchBodies...)
}

// Requests returns how many requests hit "METHOD /path".
func (es *Elasticsearch) Requests(route string) int {
	es.mu.Lock()
	defer es.mu.Unlock()
	return es.requestCounts[route]
}

func (es *Elasticsearch) handlePing(w http.ResponseWriter, r *http.Request) {
	es.mu.Lock()
	status := es.pingStatus
	es.mu.Unlock()
	w.WriteHeader(status)
}

func (es *Elasticsearch) handleIndex(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil || !json.Valid(body) {
		writeError(w, http.StatusBadRequest, "mapper_parsing_exception", "failed to parse")
		return
	}
	var object map[string]interface{}
	if err := json.Unmarshal(body, &object); err != nil {
		writeError(w, http.StatusBadRequest, "mapper_parsing_exception", "failed to parse, document is empty")
		return
	}

	index := r.PathValue("index")
	es.mu.Lock()
	id, created := es.putLocked(index, r.PathValue("id"), body)
	es.mu.Unlock()

	result, status := "updated", http.StatusOK
	if created {
		result, status = "created", http.StatusCreated
	}
	writeJSON(w, status, map[string]interface{}{
		"_index":   index,
		"_id":      id,
		"_version": 1,
		"result":   result,
		"_shards":  map[string]int{"total": 1, "successful": 1, "failed": 0},
	})
}

func (es *Elasticsearch) handleSearch(w http.ResponseWriter, r *http.Request) {
	index := r.PathValue("index")
	var body map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil && err != io.EOF {
		writeError(w, http.StatusBadRequest, "parsing_exception", err.Error())
		return
	}

	size := 10
	if raw := r.URL.Query().Get("size"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "illegal_argument_exception", "invalid size")
			return
		}
		size = n
	}

	es.mu.Lock()
	defer es.mu.Unlock()
	es.searchBodies = append(es.searchBodies, body)

	documents, ok := es.indices[index]
	if !ok {
		writeError(w, http.StatusNotFound, "index_not_found_exception", "no such index ["+index+"]")
		return
	}
	hits, err := filterDocuments(documents, body["query"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "parsing_exception", err.Error())
		return
	}

	page := hits
	if len(page) > size {
		page = page[:size]
	}
	response := searchResponse(index, page, len(hits))

	if raw := r.URL.Query().Get("scroll"); raw != "" {
		keepAlive, err := parseKeepAlive(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "illegal_argument_exception", err.Error())
			return
		}
		es.nextScroll++
		id := fmt.Sprintf("scroll-%d", es.nextScroll)
		es.scrolls[id] = &scrollContext{
			index:     index,
			hits:      hits,
			pos:       len(page),
			size:      size,
			keepAlive: keepAlive,
			expiresAt: time.Now().Add(keepAlive),
		}
		response["_scroll_id"] = id
	}
	writeJSON(w, http.StatusOK, response)
}

func (es *Elasticsearch) handleScroll(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ScrollID string `json:"scroll_id"`
		Scroll   string `json:"scroll"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil && err != io.EOF {
		writeError(w, http.StatusBadRequest, "parsing_exception", err.Error())
		return
	}
	if body.ScrollID == "" {
		body.ScrollID = r.URL.Query().Get("scroll_id")
	}
	keepAliveRaw := r.URL.Query().Get("scroll")
	if keepAliveRaw == "" {
		keepAliveRaw = body.Scroll
	}

	es.mu.Lock()
	defer es.mu.Unlock()
	es.scrollCalls++
	if es.failScrollAt > 0 && es.scrollCalls == es.failScrollAt {
		writeError(w, http.StatusInternalServerError, "search_phase_execution_exception", "all shards failed")
		return
	}

	es.expireLocked()
	sc, ok := es.scrolls[body.ScrollID]
	if !ok {
		writeError(w, http.StatusNotFound, "search_context_missing_exception", "No search context found for id ["+body.ScrollID+"]")
		return
	}
	if keepAliveRaw != "" {
		keepAlive, err := parseKeepAlive(keepAliveRaw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "illegal_argument_exception", err.Error())
			return
		}
		sc.keepAlive = keepAlive
	}
	sc.expiresAt = time.Now().Add(sc.keepAlive)

	end := min(sc.pos+sc.size, len(sc.hits))
	page := sc.hits[sc.pos:end]
	sc.pos = end

	response := searchResponse(sc.index, page, len(sc.hits))
	response["_scroll_id"] = body.ScrollID
	writeJSON(w, http.StatusOK, response)
}

func (es *Elasticsearch) handleClearScroll(w http.ResponseWriter, r *http.Request) {
	var ids []string
	if id := r.PathValue("id"); id != "" {
		ids = strings.Split(id, ",")
	} else {
		var body struct {
			ScrollID json.RawMessage `json:"scroll_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "parsing_exception", err.Error())
			return
		}
		var single string
		if err := json.Unmarshal(body.ScrollID, &ids); err != nil {
			if err := json.Unmarshal(body.ScrollID, &single); err != nil {
				writeError(w, http.StatusBadRequest, "parsing_exception", "scroll_id must be a string or an array")
				return
			}
			ids = []string{single}
		}
	}

	es.mu.Lock()
	defer es.mu.Unlock()
	es.clearedIDs = append(es.clearedIDs, ids...)
	if es.failClear {
		writeError(w, http.StatusInternalServerError, "exception", "clear scroll failed")
		return
	}

	freed := 0
	for _, id := range ids {
		if _, ok := es.scrolls[id]; ok {
			delete(es.scrolls, id)
			freed++
		}
	}
	status := http.StatusOK
	if freed == 0 {
		status = http.StatusNotFound
	}
	writeJSON(w, status, map[string]interface{}{"succeeded": true, "num_freed": freed})
}

func (es *Elasticsearch) putLocked(index, id string, source json.RawMessage) (string, bool) {
	var fields map[string]interface{}
	_ = json.Unmarshal(source, &fields)

	if id == "" {
		es.nextID++
		id = fmt.Sprintf("doc-%06d", es.nextID)
	}
	documents := es.indices[index]
	for i := range documents {
		if documents[i].id == id {
			documents[i].source = source
			documents[i].fields = fields
			return id, false
		}
	}
	es.indices[index] = append(documents, storedDocument{id: id, source: source, fields: fields})
	return id, true
}

func (es *Elasticsearch) expireLocked() {
	now := time.Now()
	for id, sc := range es.scrolls {
		if now.After(sc.expiresAt) {
			delete(es.scrolls, id)
		}
	}
}

// filterDocuments evaluates the small query subset the tests rely on:
// match_all, ids, term and "field:value" query strings.
func filterDocuments(documents []storedDocument, query interface{}) ([]storedDocument, error) {
	if query == nil {
		return append([]storedDocument(nil), documents...), nil
	}
	clause, ok := query.(map[string]interface{})
	if !ok || len(clause) != 1 {
		return nil, fmt.Errorf("query malformed, expected a single clause")
	}

	var match func(storedDocument) bool
	for kind, params := range clause {
		args, _ := params.(map[string]interface{})
		switch kind {
		case "match_all":
			match = func(storedDocument) bool { return true }
		case "ids":
			values, _ := args["values"].([]interface{})
			wanted := make(map[string]bool, len(values))
			for _, v := range values {
				wanted[fmt.Sprint(v)] = true
			}
			match = func(d storedDocument) bool { return wanted[d.id] }
		case "term":
			if len(args) != 1 {
				return nil, fmt.Errorf("[term] query malformed")
			}
			for field, value := range args {
				if inner, ok := value.(map[string]interface{}); ok {
					value = inner["value"]
				}
				match = fieldEquals(field, value)
			}
		case "query_string":
			q, _ := args["query"].(string)
			if q == "*" {
				match = func(storedDocument) bool { return true }
				break
			}
			field, value, found := strings.Cut(q, ":")
			if !found {
				return nil, fmt.Errorf("unsupported query string [%s]", q)
			}
			match = fieldEquals(field, value)
		default:
			return nil, fmt.Errorf("unknown query [%s]", kind)
		}
	}

	var hits []storedDocument
	for _, d := range documents {
		if match(d) {
			hits = append(hits, d)
		}
	}
	return hits, nil
}

func fieldEquals(field string, value interface{}) func(storedDocument) bool {
	want := fmt.Sprint(value)
	return func(d storedDocument) bool {
		got, ok := d.fields[field]
		return ok && fmt.Sprint(got) == want
	}
}

func searchResponse(index string, page []storedDocument, total int) map[string]interface{} {
	hits := make([]map[string]interface{}, 0, len(page))
	for _, d := range page {
		hits = append(hits, map[string]interface{}{
			"_index":  index,
			"_id":     d.id,
			"_score":  1.0,
			"_source": d.source,
		})
	}
	return map[string]interface{}{
		"took":      1,
		"timed_out": false,
		"hits": map[string]interface{}{
			"total":     map[string]interface{}{"value": total, "relation": "eq"},
			"max_score": 1.0,
			"hits":      hits,
		},
	}
}

// parseKeepAlive accepts Go durations and the "nanos" unit go-elasticsearch
// emits for sub-millisecond values.
func parseKeepAlive(raw string) (time.Duration, error) {
	if strings.HasSuffix(raw, "nanos") {
		raw = strings.TrimSuffix(raw, "nanos") + "ns"
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("failed to parse setting [scroll] with value [%s]", raw)
	}
	return d, nil
}

func writeError(w http.ResponseWriter, status int, errType, reason string) {
	writeJSON(w, status, map[string]interface{}{
		"error":  map[string]interface{}{"type": errType, "reason": reason},
		"status": status,
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
