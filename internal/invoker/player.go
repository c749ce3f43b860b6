package invoker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/pixil98/go-cave/internal/broker"
	"github.com/pixil98/go-cave/internal/game"
)

// Sessions resolves the player servant behind an object id.
type Sessions interface {
	Session(playerID, token string) (game.Player, error)
}

// playerOp runs one operation against a validated session and returns the
// status and payload of the reply.
type playerOp func(ctx context.Context, p game.Player, req broker.Request) (game.Status, any, error)

// errBadArguments marks failures to decode the positional arguments.
type errBadArguments struct{ err error }

func (e errBadArguments) Error() string { return e.err.Error() }

// PlayerHandler serves the "player-" operations. Every call must carry the
// live session of the player as object id.
type PlayerHandler struct {
	sessions Sessions
	ops      map[string]playerOp
}

func NewPlayerHandler(s Sessions) *PlayerHandler {
	return &PlayerHandler{
		sessions: s,
		ops: map[string]playerOp{
			broker.OpMove:                    move,
			broker.OpGetShortRoomDescription: shortRoomDescription,
			broker.OpGetLongRoomDescription:  longRoomDescription,
			broker.OpGetPosition:             position,
			broker.OpGetRegion:               region,
			broker.OpGetPlayersHere:          playersHere,
			broker.OpGetExitSet:              exitSet,
			broker.OpDigRoom:                 digRoom,
			broker.OpUpdateRoom:              updateRoom,
			broker.OpExecute:                 execute,
			broker.OpAddMessage:              addMessage,
			broker.OpUpdateMessage:           updateMessage,
			broker.OpGetMessageList:          messageList,
			broker.OpGetQuote:                quote,
		},
	}
}

func (h *PlayerHandler) Handle(ctx context.Context, req broker.Request) broker.Reply {
	op, ok := h.ops[req.OperationName]
	if !ok {
		return unknownOperation(req.OperationName)
	}

	oid, err := broker.Demangle(req.ObjectID)
	if err != nil {
		return broker.ErrorReply(game.StatusBadRequest, "Malformed object id: %v", err)
	}
	if oid.PlayerID == "" || oid.Token == "" {
		return broker.ErrorReply(game.StatusBadRequest, "Malformed object id: %q needs both a player id and a token", req.ObjectID)
	}

	p, err := h.sessions.Session(oid.PlayerID, oid.Token)
	if errors.Is(err, game.ErrSessionExpired) {
		return sessionExpired(ctx, oid, req)
	}
	if err != nil {
		return internalError(ctx, req, err)
	}

	// The session can still be replaced while the operation waits for the
	// player's lock; the servant reports that as an expired session too.
	status, payload, err := op(ctx, p, req)
	var badArgs errBadArguments
	if errors.As(err, &badArgs) {
		return badArguments(req, badArgs.err)
	}
	if errors.Is(err, game.ErrSessionExpired) {
		return sessionExpired(ctx, oid, req)
	}
	if err != nil {
		return internalError(ctx, req, err)
	}

	return encodeReply(ctx, status, payload)
}

func sessionExpired(ctx context.Context, oid broker.ObjectID, req broker.Request) broker.Reply {
	slog.InfoContext(ctx, "expired session", "player", oid.PlayerID, "operation", req.OperationName)
	return broker.ErrorReply(game.StatusUnauthorized, "The session for player with ID %s has expired (Multiple logins made)", oid.PlayerID)
}

func decode(req broker.Request, dst ...any) error {
	if err := req.DecodeArgs(dst...); err != nil {
		return errBadArguments{err: err}
	}
	return nil
}

func move(ctx context.Context, p game.Player, req broker.Request) (game.Status, any, error) {
	var d game.Direction
	if err := decode(req, &d); err != nil {
		return 0, nil, err
	}
	result, err := p.Move(ctx, d)
	return game.StatusOK, result, err
}

func shortRoomDescription(ctx context.Context, p game.Player, req broker.Request) (game.Status, any, error) {
	if err := decode(req); err != nil {
		return 0, nil, err
	}
	desc, err := p.ShortRoomDescription(ctx)
	return game.StatusOK, desc, err
}

func longRoomDescription(ctx context.Context, p game.Player, req broker.Request) (game.Status, any, error) {
	if err := decode(req); err != nil {
		return 0, nil, err
	}
	lines, err := p.LongRoomDescription(ctx)
	return game.StatusOK, lines, err
}

func position(ctx context.Context, p game.Player, req broker.Request) (game.Status, any, error) {
	if err := decode(req); err != nil {
		return 0, nil, err
	}
	pos, err := p.Position(ctx)
	return game.StatusOK, pos, err
}

func region(ctx context.Context, p game.Player, req broker.Request) (game.Status, any, error) {
	if err := decode(req); err != nil {
		return 0, nil, err
	}
	r, err := p.Region(ctx)
	return game.StatusOK, r, err
}

func playersHere(ctx context.Context, p game.Player, req broker.Request) (game.Status, any, error) {
	if err := decode(req); err != nil {
		return 0, nil, err
	}
	names, err := p.PlayersHere(ctx)
	return game.StatusOK, names, err
}

func exitSet(ctx context.Context, p game.Player, req broker.Request) (game.Status, any, error) {
	if err := decode(req); err != nil {
		return 0, nil, err
	}
	exits, err := p.ExitSet(ctx)
	return game.StatusOK, exits, err
}

// digRoom always answers 201; the outcome travels in the payload.
func digRoom(ctx context.Context, p game.Player, req broker.Request) (game.Status, any, error) {
	var d game.Direction
	var description string
	if err := decode(req, &d, &description); err != nil {
		return 0, nil, err
	}
	result, err := p.DigRoom(ctx, d, description)
	return game.StatusCreated, result, err
}

func updateRoom(ctx context.Context, p game.Player, req broker.Request) (game.Status, any, error) {
	var description string
	if err := decode(req, &description); err != nil {
		return 0, nil, err
	}
	result, err := p.UpdateRoom(ctx, description)
	return game.StatusOK, result, err
}

// execute takes the command name followed by any number of string
// parameters.
func execute(ctx context.Context, p game.Player, req broker.Request) (game.Status, any, error) {
	raw, err := req.Args()
	if err != nil {
		return 0, nil, errBadArguments{err: err}
	}
	if len(raw) == 0 {
		return 0, nil, errBadArguments{err: errors.New("expected at least 1 argument, got 0")}
	}

	args := make([]string, len(raw))
	for i := range raw {
		if err := json.Unmarshal(raw[i], &args[i]); err != nil {
			return 0, nil, errBadArguments{err: fmt.Errorf("argument %d: %w", i, err)}
		}
	}

	out, err := p.Execute(ctx, args[0], args[1:]...)
	return game.StatusOK, out, err
}

func addMessage(ctx context.Context, p game.Player, req broker.Request) (game.Status, any, error) {
	var contents string
	if err := decode(req, &contents); err != nil {
		return 0, nil, err
	}
	return game.StatusOK, "Message added", p.AddMessage(ctx, contents)
}

func updateMessage(ctx context.Context, p game.Player, req broker.Request) (game.Status, any, error) {
	var messageID, contents string
	if err := decode(req, &messageID, &contents); err != nil {
		return 0, nil, err
	}
	result, err := p.UpdateMessage(ctx, messageID, contents)
	return game.StatusOK, result, err
}

func messageList(ctx context.Context, p game.Player, req broker.Request) (game.Status, any, error) {
	var page int
	if err := decode(req, &page); err != nil {
		return 0, nil, err
	}
	if page < 0 {
		return 0, nil, errBadArguments{err: fmt.Errorf("page %d is negative", page)}
	}
	wall, err := p.MessageList(ctx, page)
	return game.StatusOK, wall, err
}

func quote(ctx context.Context, p game.Player, req broker.Request) (game.Status, any, error) {
	var index int
	if err := decode(req, &index); err != nil {
		return 0, nil, err
	}
	q, err := p.Quote(ctx, index)
	return game.StatusOK, q, err
}
