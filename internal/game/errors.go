package game

import "errors"

var (
	// ErrSessionExpired means the caller's access token is no longer the live
	// session of the player. The caller must log in again.
	ErrSessionExpired = errors.New("player session expired")

	ErrPlayerNotFound = errors.New("player not found")
	ErrRoomNotFound   = errors.New("room not found")
)
