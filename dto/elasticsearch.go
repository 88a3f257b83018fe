package dto

// Document is an indexed payload: any JSON object.
type Document map[string]interface{}

// WriteAck is the backend's acknowledgment of a single index request,
// exactly as returned.
type WriteAck map[string]interface{}

func (a WriteAck) ID() string {
	id, _ := a["_id"].(string)
	return id
}

func (a WriteAck) Result() string {
	result, _ := a["result"].(string)
	return result
}

func (a WriteAck) Version() int64 {
	version, _ := a["_version"].(float64)
	return int64(version)
}

type QueryOptions struct {
	// Query is a Query DSL clause. It takes precedence over QueryString.
	Query map[string]interface{}
	// QueryString uses the Lucene/Kibana query string syntax,
	// e.g. "status:200 AND user:john".
	QueryString string
	// PageSize is the number of hits fetched per round trip. Zero means the
	// configured default.
	PageSize int
}
