package player

import (
	"context"
	"fmt"
	"time"

	"github.com/pixil98/go-cave/internal/display"
	"github.com/pixil98/go-cave/internal/game"
)

var longDescription = display.MustParse("long-description", `  Creator: {{ .Creator | default "Unknown" }}, {{ .Ago }}.
There are exits in directions:
{{ range .Exits }}  {{ . }} {{ end }}
You see other players:
{{ range $i, $p := .Players }}  [{{ $i }}] {{ $p }}{{ end }}`)

type longDescriptionData struct {
	Creator string
	Ago     string
	Exits   []game.Direction
	Players []string
}

// FormatWallPosting renders a message as "[<name>, <age>] <contents>".
func FormatWallPosting(now time.Time, m game.Message) string {
	return fmt.Sprintf("[%s, %s] %s", m.CreatorName, display.Ago(now, m.CreatedAt), m.Contents)
}

// LongRoomDescription describes the current room, who made it, where one
// can go and who else is here.
func (s *Servant) LongRoomDescription(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	room, err := s.currentRoom()
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	creator, err := s.creatorName(ctx, room.CreatorID)
	if err != nil {
		return nil, err
	}
	exits, err := s.ExitSet(ctx)
	if err != nil {
		return nil, err
	}
	players, err := s.PlayersHere(ctx)
	if err != nil {
		return nil, err
	}

	lines, err := longDescription.RenderLines(longDescriptionData{
		Creator: creator,
		Ago:     display.Ago(s.clock.Now(), room.CreatedAt),
		Exits:   exits,
		Players: players,
	})
	if err != nil {
		return nil, err
	}

	return append([]string{display.Wrap(room.Description)}, lines...), nil
}

func (s *Servant) creatorName(ctx context.Context, creatorID string) (string, error) {
	if creatorID == game.WillCrowtherID {
		return game.WillCrowtherName, nil
	}

	rec, err := s.storage.GetPlayerByID(ctx, creatorID)
	if err != nil {
		return "", err
	}
	if rec == nil {
		return creatorID, nil
	}
	return rec.Name, nil
}
