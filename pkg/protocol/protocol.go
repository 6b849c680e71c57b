// Package protocol defines the JSON request/response shapes exchanged
// between an ignite client and server over a plain TCP connection. Every
// message is a self-delimiting JSON value; a stream of them is decoded the
// same way the on-disk command log is, one value after another with no
// separator.
package protocol

import "encoding/json"

// GetRequest asks for the value currently stored under Key.
type GetRequest struct {
	Key string `json:"key"`
}

// SetRequest stores Value under Key.
type SetRequest struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// RemoveRequest deletes Key.
type RemoveRequest struct {
	Key string `json:"key"`
}

// Request is the tagged union of every request the server accepts. Exactly
// one field is populated per message.
type Request struct {
	Get    *GetRequest    `json:"Get,omitempty"`
	Set    *SetRequest    `json:"Set,omitempty"`
	Remove *RemoveRequest `json:"Remove,omitempty"`
}

// NewGetRequest builds a Get request.
func NewGetRequest(key string) Request {
	return Request{Get: &GetRequest{Key: key}}
}

// NewSetRequest builds a Set request.
func NewSetRequest(key, value string) Request {
	return Request{Set: &SetRequest{Key: key, Value: value}}
}

// NewRemoveRequest builds a Remove request.
func NewRemoveRequest(key string) Request {
	return Request{Remove: &RemoveRequest{Key: key}}
}

// GetResult carries the outcome of a Get: Ok holds the value, or nil if
// the key was not found (absence is not an error, and is still encoded
// as a present "Ok":null, not an omitted field); Err carries a
// stringified failure.
type GetResult struct {
	Ok  *string
	Err *string
}

// MarshalJSON emits exactly one of {"Ok":...} or {"Err":"..."}, never
// both and never neither — a not-found Get is {"Ok":null}, not {}.
func (r GetResult) MarshalJSON() ([]byte, error) {
	if r.Err != nil {
		return json.Marshal(struct {
			Err string `json:"Err"`
		}{Err: *r.Err})
	}
	return json.Marshal(struct {
		Ok *string `json:"Ok"`
	}{Ok: r.Ok})
}

// UnitResult carries the outcome of a Set or Remove, which return nothing
// on success. Ok is a Go-side convenience flag, never itself marshaled;
// the wire form of success is the literal {"Ok":null}.
type UnitResult struct {
	Ok  bool `json:"-"`
	Err *string
}

// MarshalJSON emits {"Ok":null} on success or {"Err":"..."} on failure.
func (r UnitResult) MarshalJSON() ([]byte, error) {
	if r.Err != nil {
		return json.Marshal(struct {
			Err string `json:"Err"`
		}{Err: *r.Err})
	}
	return []byte(`{"Ok":null}`), nil
}

// UnmarshalJSON reconstructs Ok from the absence of Err, since the wire
// form carries no other signal of success.
func (r *UnitResult) UnmarshalJSON(b []byte) error {
	var shape struct {
		Err *string `json:"Err"`
	}
	if err := json.Unmarshal(b, &shape); err != nil {
		return err
	}
	r.Err = shape.Err
	r.Ok = shape.Err == nil
	return nil
}

// Response is the tagged union of every response the server sends back,
// nested by the operation it answers — {"Get":{"Ok":...}},
// {"Set":{"Ok":null}}, {"Remove":{"Err":"..."}}.
type Response struct {
	Get    *GetResult  `json:"Get,omitempty"`
	Set    *UnitResult `json:"Set,omitempty"`
	Remove *UnitResult `json:"Remove,omitempty"`
}

// OkGetResponse builds a successful Get response. value is nil when the
// key was not found.
func OkGetResponse(value *string) Response {
	return Response{Get: &GetResult{Ok: value}}
}

// ErrGetResponse builds a failed Get response.
func ErrGetResponse(msg string) Response {
	return Response{Get: &GetResult{Err: &msg}}
}

// OkSetResponse builds a successful Set response.
func OkSetResponse() Response {
	return Response{Set: &UnitResult{Ok: true}}
}

// ErrSetResponse builds a failed Set response.
func ErrSetResponse(msg string) Response {
	return Response{Set: &UnitResult{Err: &msg}}
}

// OkRemoveResponse builds a successful Remove response.
func OkRemoveResponse() Response {
	return Response{Remove: &UnitResult{Ok: true}}
}

// ErrRemoveResponse builds a failed Remove response.
func ErrRemoveResponse(msg string) Response {
	return Response{Remove: &UnitResult{Err: &msg}}
}
