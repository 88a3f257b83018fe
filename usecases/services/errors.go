package services

import (
	"fmt"
	"io"

	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/tidwall/gjson"
)

// ConnectionError is returned when the backend cannot be reached or
// reports itself unavailable while the client is being set up.
type ConnectionError struct {
	Endpoint string
	Err      error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("failed to connect to elasticsearch at %s: %v", e.Endpoint, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

type UploadError struct {
	Index string
	DocID string
	Err   error
}

func (e *UploadError) Error() string {
	if e.DocID == "" {
		return fmt.Sprintf("failed to upload document to index %s: %v", e.Index, e.Err)
	}
	return fmt.Sprintf("failed to upload document %s to index %s: %v", e.DocID, e.Index, e.Err)
}

func (e *UploadError) Unwrap() error { return e.Err }

// QueryError covers both the initial search and any later page fetch.
type QueryError struct {
	Index string
	Err   error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("failed to query index %s: %v", e.Index, e.Err)
}

func (e *QueryError) Unwrap() error { return e.Err }

// ResponseError is a non-2xx reply from the backend.
type ResponseError struct {
	StatusCode int
	Type       string
	Reason     string
}

func (e *ResponseError) Error() string {
	if e.Type == "" {
		return fmt.Sprintf("elasticsearch returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("elasticsearch returned status %d: %s: %s", e.StatusCode, e.Type, e.Reason)
}

// newResponseError reads the body of a failed response. The body may be
// empty (HEAD requests) or not JSON at all.
func newResponseError(res *esapi.Response) *ResponseError {
	respErr := &ResponseError{StatusCode: res.StatusCode}
	if res.Body == nil {
		return respErr
	}
	body, err := io.ReadAll(res.Body)
	if err != nil || !gjson.ValidBytes(body) {
		return respErr
	}

	errField := gjson.GetBytes(body, "error")
	if errField.Type == gjson.String {
		respErr.Reason = errField.String()
		respErr.Type = "error"
		return respErr
	}
	respErr.Type = errField.Get("type").String()
	respErr.Reason = errField.Get("reason").String()
	return respErr
}
