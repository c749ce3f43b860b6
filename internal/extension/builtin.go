package extension

import (
	"context"
	"fmt"

	"github.com/pixil98/go-cave/internal/game"
)

// HomeCommand moves the player back to the entrance of the cave.
type HomeCommand struct{}

func (HomeCommand) Execute(ctx context.Context, env Env, _ ...string) ([]string, error) {
	err := teleport(ctx, env, game.Origin)
	if err != nil {
		return nil, err
	}
	return []string{fmt.Sprintf("You went home to position %s", game.Origin)}, nil
}

// JumpCommand moves the player to any existing room, given as "(x,y,z)".
type JumpCommand struct{}

func (JumpCommand) Execute(ctx context.Context, env Env, params ...string) ([]string, error) {
	if len(params) == 0 {
		return nil, NewUserError("JumpCommand requires a position parameter like (0,1,0)")
	}

	pos, err := game.ParsePosition(params[0])
	if err != nil {
		return nil, NewUserError(fmt.Sprintf("JumpCommand failed, %q is not a position like (0,1,0)", params[0]))
	}

	room, err := env.Storage.GetRoom(ctx, pos)
	if err != nil {
		return nil, err
	}
	if room == nil {
		return nil, NewUserError(fmt.Sprintf("JumpCommand failed, room %s does not exist in the cave.", pos))
	}

	err = teleport(ctx, env, pos)
	if err != nil {
		return nil, err
	}
	return []string{fmt.Sprintf("You jumped to position: %s", pos)}, nil
}

func teleport(ctx context.Context, env Env, pos game.Position) error {
	rec, err := env.Storage.GetPlayerByID(ctx, env.PlayerID)
	if err != nil {
		return err
	}
	if rec == nil {
		return fmt.Errorf("teleporting %s: %w", env.PlayerID, game.ErrPlayerNotFound)
	}

	rec.Position = pos
	return env.Storage.UpdatePlayerRecord(ctx, *rec)
}

var (
	_ Command = HomeCommand{}
	_ Command = JumpCommand{}
)
