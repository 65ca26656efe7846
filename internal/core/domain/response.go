package domain

// Response is the single reply to a request. Message is set only on
// failure; Data holds the matched or affected entries and is always
// present on the wire, even when empty.
type Response struct {
	Success bool    `json:"success"`
	Message string  `json:"message,omitempty"`
	Data    []Entry `json:"data"`
}

// OK builds a successful response carrying the given entries.
func OK(data []Entry) *Response {
	if data == nil {
		data = []Entry{}
	}
	return &Response{Success: true, Data: data}
}

// Fail converts an error into a failed response. The message is the
// stable client-facing text of the matched domain error.
func Fail(err error) *Response {
	return &Response{Success: false, Message: ClientMessage(err), Data: []Entry{}}
}
