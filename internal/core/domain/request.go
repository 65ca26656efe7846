package domain

// RequestType tags the four request variants. The numeric codes are
// part of the wire protocol and shared with non-Go clients.
type RequestType uint8

const (
	TypeRead   RequestType = 0
	TypeAdd    RequestType = 1
	TypeDelete RequestType = 2
	TypeQuery  RequestType = 3
)

// String returns the request type name for logs.
func (t RequestType) String() string {
	switch t {
	case TypeRead:
		return "read"
	case TypeAdd:
		return "add"
	case TypeDelete:
		return "delete"
	case TypeQuery:
		return "query"
	default:
		return "unknown"
	}
}

// Request is one client operation. Which fields are set depends on the
// type: Read and Delete carry a key, Add carries a key and a value,
// Query carries the query string. A request is consumed exactly once.
type Request struct {
	Type  RequestType `json:"type"`
	Key   *Value      `json:"key,omitempty"`
	Value *Value      `json:"value,omitempty"`
	Query string      `json:"query,omitempty"`
}

// NewRead builds a read request for the given key.
func NewRead(key Value) *Request {
	return &Request{Type: TypeRead, Key: &key}
}

// NewAdd builds an add request for the given pair.
func NewAdd(key, value Value) *Request {
	return &Request{Type: TypeAdd, Key: &key, Value: &value}
}

// NewDelete builds a delete request for the given key.
func NewDelete(key Value) *Request {
	return &Request{Type: TypeDelete, Key: &key}
}

// NewQuery builds a query request carrying the query string verbatim.
func NewQuery(query string) *Request {
	return &Request{Type: TypeQuery, Query: query}
}
