package transport

import "context"

// Local calls a RequestHandler in-process. It runs the full marshalling
// path without a network.
type Local struct {
	server RequestHandler
}

var _ Handler = (*Local)(nil)

func NewLocal(server RequestHandler) *Local {
	return &Local{server: server}
}

func (l *Local) Send(ctx context.Context, request []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return l.server.HandleRequest(ctx, request), nil
}

func (l *Local) Close() error {
	return nil
}
