package game

import (
	"time"
)

// WillCrowtherID is the creator id of the rooms every cave starts with.
const WillCrowtherID = "0"

// WillCrowtherName is shown as the creator of the seed rooms.
const WillCrowtherName = "Will Crowther"

// Room is the stored state of one cell of the cave. Only Description and
// CreatorID may change after creation.
type Room struct {
	ID          string    `json:"id"`
	Description string    `json:"description"`
	CreatorID   string    `json:"creator_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewRoom creates a room draft. Storage assigns the id and timestamp.
func NewRoom(description, creatorID string) Room {
	return Room{Description: description, CreatorID: creatorID}
}

// PlayerRecord is the durable session record of a player.
type PlayerRecord struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	GroupName   string   `json:"group_name"`
	Region      Region   `json:"region"`
	Position    Position `json:"position"`
	AccessToken string   `json:"access_token,omitempty"`
}

// InCave reports whether the player has an active session.
func (r PlayerRecord) InCave() bool {
	return r.AccessToken != ""
}

// Message is a posting on the wall of a room. Only Contents may change after
// creation.
type Message struct {
	ID          string    `json:"id"`
	Contents    string    `json:"contents"`
	CreatorID   string    `json:"creator_id"`
	CreatorName string    `json:"creator_name"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewMessage creates a message draft. Storage assigns the id and timestamp.
func NewMessage(contents, creatorID, creatorName string) Message {
	return Message{Contents: contents, CreatorID: creatorID, CreatorName: creatorName}
}

// WallMessage is a formatted wall posting as shown to players.
type WallMessage struct {
	ID      string `json:"id"`
	Message string `json:"message"`
}
