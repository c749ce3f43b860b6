package invoker

import (
	"context"
	"log/slog"

	"github.com/pixil98/go-cave/internal/broker"
	"github.com/pixil98/go-cave/internal/game"
)

// CaveHandler serves the "cave-" operations. They are not bound to a
// session, so the object id is not inspected.
type CaveHandler struct {
	cave game.Cave
}

func NewCaveHandler(c game.Cave) *CaveHandler {
	return &CaveHandler{cave: c}
}

func (h *CaveHandler) Handle(ctx context.Context, req broker.Request) broker.Reply {
	switch req.OperationName {
	case broker.OpLogin:
		return h.login(ctx, req)
	case broker.OpLogout:
		return h.logout(ctx, req)
	case broker.OpDescribeConfiguration:
		return h.describe(ctx, req)
	default:
		return unknownOperation(req.OperationName)
	}
}

func (h *CaveHandler) login(ctx context.Context, req broker.Request) broker.Reply {
	var loginName, password string
	if err := req.DecodeArgs(&loginName, &password); err != nil {
		return badArguments(req, err)
	}

	p, result, err := h.cave.Login(ctx, loginName, password)
	if err != nil {
		slog.ErrorContext(ctx, "login failed", "login", loginName, "error", err)
		return encodeReply(ctx, game.StatusUnauthorized, broker.LoginDTO{LoginResult: game.LoginFailedServerError})
	}
	if !result.Valid() {
		return encodeReply(ctx, game.StatusUnauthorized, broker.LoginDTO{LoginResult: result})
	}

	return encodeReply(ctx, game.StatusOK, broker.LoginDTO{
		PlayerID:    p.ID(),
		AccessToken: p.AccessToken(),
		PlayerName:  p.Name(),
		LoginResult: result,
	})
}

func (h *CaveHandler) logout(ctx context.Context, req broker.Request) broker.Reply {
	var playerID string
	if err := req.DecodeArgs(&playerID); err != nil {
		return badArguments(req, err)
	}

	result, err := h.cave.Logout(ctx, playerID)
	if err != nil {
		slog.ErrorContext(ctx, "logout failed", "player", playerID, "error", err)
		return encodeReply(ctx, game.StatusInternalError, game.LogoutServerFailure)
	}
	return encodeReply(ctx, game.StatusOK, result)
}

func (h *CaveHandler) describe(ctx context.Context, req broker.Request) broker.Reply {
	if err := req.DecodeArgs(); err != nil {
		return badArguments(req, err)
	}

	desc, err := h.cave.DescribeConfiguration(ctx)
	if err != nil {
		return internalError(ctx, req, err)
	}
	return encodeReply(ctx, game.StatusOK, desc)
}

func badArguments(req broker.Request, err error) broker.Reply {
	return broker.ErrorReply(game.StatusBadRequest, "Malformed payload for '%s': %v", req.OperationName, err)
}

func internalError(ctx context.Context, req broker.Request, err error) broker.Reply {
	slog.ErrorContext(ctx, "operation failed", "operation", req.OperationName, "error", err)
	return broker.ErrorReply(game.StatusInternalError, "Server failure in '%s'", req.OperationName)
}

func encodeReply(ctx context.Context, s game.Status, v any) broker.Reply {
	reply, err := broker.NewReply(s, v)
	if err != nil {
		slog.ErrorContext(ctx, "encoding reply payload", "error", err)
		return broker.ErrorReply(game.StatusInternalError, "encoding reply: %v", err)
	}
	return reply
}
