package client

import (
	"context"
	"errors"
	"fmt"

	"github.com/pixil98/go-cave/internal/broker"
	"github.com/pixil98/go-cave/internal/game"
)

// PlayerProxy is the remote game.Player. Identity is fixed at login; every
// other call goes to the server. Once a call fails with
// game.ErrSessionExpired the proxy is dead and a new login is needed.
type PlayerProxy struct {
	requestor *Requestor
	objectID  string

	id     string
	name   string
	token  string
	status game.LoginResult
}

var _ game.Player = (*PlayerProxy)(nil)

func NewPlayerProxy(r *Requestor, dto broker.LoginDTO) *PlayerProxy {
	return &PlayerProxy{
		requestor: r,
		objectID:  broker.ObjectID{PlayerID: dto.PlayerID, Token: dto.AccessToken}.Mangle(),
		id:        dto.PlayerID,
		name:      dto.PlayerName,
		token:     dto.AccessToken,
		status:    dto.LoginResult,
	}
}

func (p *PlayerProxy) call(ctx context.Context, op string, result any, args ...any) error {
	err := p.requestor.SendRequestAndAwaitReply(ctx, p.objectID, op, result, args...)

	var replyErr *ReplyError
	if errors.As(err, &replyErr) && replyErr.Status == game.StatusUnauthorized {
		return fmt.Errorf("%w: %s", game.ErrSessionExpired, replyErr.Message)
	}
	return err
}

func (p *PlayerProxy) ID() string                             { return p.id }
func (p *PlayerProxy) Name() string                           { return p.name }
func (p *PlayerProxy) AccessToken() string                    { return p.token }
func (p *PlayerProxy) AuthenticationStatus() game.LoginResult { return p.status }

func (p *PlayerProxy) Position(ctx context.Context) (game.Position, error) {
	var pos game.Position
	err := p.call(ctx, broker.OpGetPosition, &pos)
	return pos, err
}

func (p *PlayerProxy) Region(ctx context.Context) (game.Region, error) {
	var r game.Region
	err := p.call(ctx, broker.OpGetRegion, &r)
	return r, err
}

func (p *PlayerProxy) ShortRoomDescription(ctx context.Context) (string, error) {
	var desc string
	err := p.call(ctx, broker.OpGetShortRoomDescription, &desc)
	return desc, err
}

func (p *PlayerProxy) LongRoomDescription(ctx context.Context) ([]string, error) {
	var lines []string
	err := p.call(ctx, broker.OpGetLongRoomDescription, &lines)
	return lines, err
}

func (p *PlayerProxy) ExitSet(ctx context.Context) ([]game.Direction, error) {
	var exits []game.Direction
	err := p.call(ctx, broker.OpGetExitSet, &exits)
	return exits, err
}

func (p *PlayerProxy) PlayersHere(ctx context.Context) ([]string, error) {
	var names []string
	err := p.call(ctx, broker.OpGetPlayersHere, &names)
	return names, err
}

func (p *PlayerProxy) MessageList(ctx context.Context, page int) ([]game.WallMessage, error) {
	var wall []game.WallMessage
	err := p.call(ctx, broker.OpGetMessageList, &wall, page)
	return wall, err
}

func (p *PlayerProxy) Move(ctx context.Context, d game.Direction) (game.UpdateResult, error) {
	var result game.UpdateResult
	err := p.call(ctx, broker.OpMove, &result, d)
	return result, err
}

func (p *PlayerProxy) DigRoom(ctx context.Context, d game.Direction, description string) (game.UpdateResult, error) {
	var result game.UpdateResult
	err := p.call(ctx, broker.OpDigRoom, &result, d, description)
	return result, err
}

func (p *PlayerProxy) UpdateRoom(ctx context.Context, description string) (game.UpdateResult, error) {
	var result game.UpdateResult
	err := p.call(ctx, broker.OpUpdateRoom, &result, description)
	return result, err
}

func (p *PlayerProxy) AddMessage(ctx context.Context, contents string) error {
	return p.call(ctx, broker.OpAddMessage, nil, contents)
}

func (p *PlayerProxy) UpdateMessage(ctx context.Context, messageID, contents string) (game.UpdateResult, error) {
	var result game.UpdateResult
	err := p.call(ctx, broker.OpUpdateMessage, &result, messageID, contents)
	return result, err
}

func (p *PlayerProxy) Quote(ctx context.Context, index int) (string, error) {
	var q string
	err := p.call(ctx, broker.OpGetQuote, &q, index)
	return q, err
}

func (p *PlayerProxy) Execute(ctx context.Context, command string, params ...string) ([]string, error) {
	args := make([]any, 0, len(params)+1)
	args = append(args, command)
	for _, param := range params {
		args = append(args, param)
	}

	var out []string
	err := p.call(ctx, broker.OpExecute, &out, args...)
	return out, err
}
