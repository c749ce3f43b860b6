package game

import "context"

// Cave is the entry point of the game: it creates and ends player sessions.
// It is implemented by the server-side servant and by the client proxy.
type Cave interface {
	// Login authenticates and starts a session. The returned Player is nil
	// unless the result is Valid.
	Login(ctx context.Context, loginName, password string) (Player, LoginResult, error)
	Logout(ctx context.Context, playerID string) (LogoutResult, error)
	DescribeConfiguration(ctx context.Context) (string, error)
}

// Player is the view of one logged in player. It is implemented by the
// server-side servant and by the client proxy.
type Player interface {
	ID() string
	Name() string
	AccessToken() string
	AuthenticationStatus() LoginResult

	Position(ctx context.Context) (Position, error)
	Region(ctx context.Context) (Region, error)
	ShortRoomDescription(ctx context.Context) (string, error)
	LongRoomDescription(ctx context.Context) ([]string, error)

	// ExitSet and PlayersHere are volatile: other players change them.
	ExitSet(ctx context.Context) ([]Direction, error)
	PlayersHere(ctx context.Context) ([]string, error)
	MessageList(ctx context.Context, page int) ([]WallMessage, error)
	Quote(ctx context.Context, index int) (string, error)

	Move(ctx context.Context, d Direction) (UpdateResult, error)
	DigRoom(ctx context.Context, d Direction, description string) (UpdateResult, error)
	UpdateRoom(ctx context.Context, description string) (UpdateResult, error)
	AddMessage(ctx context.Context, contents string) error
	UpdateMessage(ctx context.Context, messageID, contents string) (UpdateResult, error)
	Execute(ctx context.Context, command string, params ...string) ([]string, error)
}
