package broker

import "strings"

// Prefixes select the invoker responsible for an operation.
const (
	CavePrefix   = "cave-"
	PlayerPrefix = "player-"
)

const (
	OpLogin                 = CavePrefix + "login"
	OpLogout                = CavePrefix + "logout"
	OpDescribeConfiguration = CavePrefix + "describe-configuration"

	OpMove                    = PlayerPrefix + "move"
	OpGetShortRoomDescription = PlayerPrefix + "get-short-room-description"
	OpGetLongRoomDescription  = PlayerPrefix + "get-long-room-description"
	OpGetPosition             = PlayerPrefix + "get-position"
	OpGetRegion               = PlayerPrefix + "get-region"
	OpGetPlayersHere          = PlayerPrefix + "get-players-here"
	OpGetExitSet              = PlayerPrefix + "get-exit-set"
	OpDigRoom                 = PlayerPrefix + "dig-room"
	OpUpdateRoom              = PlayerPrefix + "update-room"
	OpExecute                 = PlayerPrefix + "execute"
	OpAddMessage              = PlayerPrefix + "add-message"
	OpUpdateMessage           = PlayerPrefix + "update-message"
	OpGetMessageList          = PlayerPrefix + "get-message-list"
	OpGetQuote                = PlayerPrefix + "get-quote"
)

// Prefix returns op up to and including its first '-', or "" if there is
// none.
func Prefix(op string) string {
	i := strings.Index(op, "-")
	if i < 0 {
		return ""
	}
	return op[:i+1]
}
