package game

// Publisher delivers out-of-band notices to a player's channel.
type Publisher interface {
	PublishToPlayer(playerID string, data []byte) error
}
