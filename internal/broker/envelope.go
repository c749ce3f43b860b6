// Package broker defines the wire envelope exchanged between client
// proxies and server invokers.
package broker

import (
	"encoding/json"
	"fmt"

	"github.com/pixil98/go-cave/internal/game"
)

// Request is one call. Payload is the text of a JSON array of positional
// arguments.
type Request struct {
	ObjectID      string `json:"objectId"`
	OperationName string `json:"operationName"`
	Payload       string `json:"payload"`
}

// Reply answers a Request. Payload is the JSON encoding of the result, or
// plain error text on failure.
type Reply struct {
	StatusCode int    `json:"statusCode"`
	Payload    string `json:"payload"`
}

// NewRequest marshals args as the positional payload.
func NewRequest(objectID, op string, args ...any) (Request, error) {
	if args == nil {
		args = []any{}
	}
	payload, err := json.Marshal(args)
	if err != nil {
		return Request{}, fmt.Errorf("marshalling arguments of %s: %w", op, err)
	}
	return Request{ObjectID: objectID, OperationName: op, Payload: string(payload)}, nil
}

// Args splits the payload into its positional arguments. An empty payload
// has none.
func (r Request) Args() ([]json.RawMessage, error) {
	var raw []json.RawMessage
	if r.Payload == "" {
		return raw, nil
	}
	if err := json.Unmarshal([]byte(r.Payload), &raw); err != nil {
		return nil, fmt.Errorf("payload is not an argument array: %w", err)
	}
	return raw, nil
}

// DecodeArgs unmarshals the positional payload into dst, one pointer per
// expected argument. The argument count must match exactly.
func (r Request) DecodeArgs(dst ...any) error {
	raw, err := r.Args()
	if err != nil {
		return err
	}
	if len(raw) != len(dst) {
		return fmt.Errorf("expected %d arguments, got %d", len(dst), len(raw))
	}

	for i := range raw {
		if err := json.Unmarshal(raw[i], dst[i]); err != nil {
			return fmt.Errorf("argument %d: %w", i, err)
		}
	}
	return nil
}

// NewReply marshals v as the payload of a reply with status s.
func NewReply(s game.Status, v any) (Reply, error) {
	payload, err := json.Marshal(v)
	if err != nil {
		return Reply{}, fmt.Errorf("marshalling reply: %w", err)
	}
	return Reply{StatusCode: s.Code(), Payload: string(payload)}, nil
}

// ErrorReply is a reply whose payload is the message text.
func ErrorReply(s game.Status, format string, args ...any) Reply {
	return Reply{StatusCode: s.Code(), Payload: fmt.Sprintf(format, args...)}
}

// Status maps the wire code back to a game.Status.
func (r Reply) Status() (game.Status, error) {
	return game.StatusFromCode(r.StatusCode)
}

// Decode unmarshals the payload into v.
func (r Reply) Decode(v any) error {
	if err := json.Unmarshal([]byte(r.Payload), v); err != nil {
		return fmt.Errorf("decoding reply payload: %w", err)
	}
	return nil
}

// Message returns the error text of a failure reply.
func (r Reply) Message() string {
	return r.Payload
}

func MarshalRequest(r Request) ([]byte, error) {
	return json.Marshal(r)
}

func UnmarshalRequest(b []byte) (Request, error) {
	var r Request
	if err := json.Unmarshal(b, &r); err != nil {
		return Request{}, fmt.Errorf("unmarshalling request: %w", err)
	}
	return r, nil
}

func MarshalReply(r Reply) ([]byte, error) {
	return json.Marshal(r)
}

func UnmarshalReply(b []byte) (Reply, error) {
	var r Reply
	if err := json.Unmarshal(b, &r); err != nil {
		return Reply{}, fmt.Errorf("unmarshalling reply: %w", err)
	}
	return r, nil
}
