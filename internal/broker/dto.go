package broker

import "github.com/pixil98/go-cave/internal/game"

// LoginDTO is the payload of a login reply. Only LoginResult is set when the
// login failed.
type LoginDTO struct {
	PlayerID    string           `json:"playerID,omitempty"`
	AccessToken string           `json:"accessToken,omitempty"`
	PlayerName  string           `json:"playerName,omitempty"`
	LoginResult game.LoginResult `json:"loginResult"`
}
