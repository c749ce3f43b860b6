// Package transport carries marshalled requests from client proxies to the
// server and the replies back.
package transport

import "context"

// Handler is the client side of a transport. Send delivers one request and
// blocks until its reply arrives or ctx is done.
type Handler interface {
	Send(ctx context.Context, request []byte) ([]byte, error)
	Close() error
}

// RequestHandler is the server side: it turns a request into a reply.
type RequestHandler interface {
	HandleRequest(ctx context.Context, request []byte) []byte
}
