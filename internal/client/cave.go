package client

import (
	"context"
	"errors"

	"github.com/pixil98/go-cave/internal/broker"
	"github.com/pixil98/go-cave/internal/game"
)

// CaveProxy is the remote game.Cave.
type CaveProxy struct {
	requestor *Requestor
}

var _ game.Cave = (*CaveProxy)(nil)

func NewCaveProxy(r *Requestor) *CaveProxy {
	return &CaveProxy{requestor: r}
}

// Login returns a PlayerProxy on success. A rejected login is not an
// error: the outcome is in the LoginResult.
func (c *CaveProxy) Login(ctx context.Context, loginName, password string) (game.Player, game.LoginResult, error) {
	var dto broker.LoginDTO
	err := c.requestor.SendRequestAndAwaitReply(ctx, "", broker.OpLogin, &dto, loginName, password)

	var replyErr *ReplyError
	if errors.As(err, &replyErr) && replyErr.Status == game.StatusUnauthorized {
		if decodeErr := (broker.Reply{Payload: replyErr.Payload}).Decode(&dto); decodeErr != nil {
			return nil, "", err
		}
		return nil, dto.LoginResult, nil
	}
	if err != nil {
		return nil, "", err
	}

	if !dto.LoginResult.Valid() {
		return nil, dto.LoginResult, nil
	}
	return NewPlayerProxy(c.requestor, dto), dto.LoginResult, nil
}

func (c *CaveProxy) Logout(ctx context.Context, playerID string) (game.LogoutResult, error) {
	var result game.LogoutResult
	err := c.requestor.SendRequestAndAwaitReply(ctx, "", broker.OpLogout, &result, playerID)

	var replyErr *ReplyError
	if errors.As(err, &replyErr) && replyErr.Status == game.StatusInternalError {
		return game.LogoutServerFailure, nil
	}
	return result, err
}

func (c *CaveProxy) DescribeConfiguration(ctx context.Context) (string, error) {
	var desc string
	err := c.requestor.SendRequestAndAwaitReply(ctx, "", broker.OpDescribeConfiguration, &desc)
	return desc, err
}
