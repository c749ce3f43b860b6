package subscription

import (
	"context"
	"fmt"

	"github.com/pixil98/go-errors"

	"github.com/pixil98/go-cave/internal/game"
	"github.com/pixil98/go-cave/internal/storage"
)

// Subscription is the stored form of one subscription, keyed by login name.
type Subscription struct {
	PasswordHash string      `json:"password_hash"`
	PlayerID     string      `json:"player_id"`
	PlayerName   string      `json:"player_name"`
	GroupName    string      `json:"group_name"`
	Region       game.Region `json:"region"`
}

func (s *Subscription) Validate() error {
	if s == nil {
		return fmt.Errorf("spec must be set")
	}

	el := errors.NewErrorList()

	if s.PasswordHash == "" {
		el.Add(fmt.Errorf("password_hash must be set"))
	}
	if s.PlayerID == "" {
		el.Add(fmt.Errorf("player_id must be set"))
	}
	if s.PlayerName == "" {
		el.Add(fmt.Errorf("player_name must be set"))
	}
	if _, err := game.ParseRegion(string(s.Region)); err != nil {
		el.Add(err)
	}

	return el.Err()
}

// FileService reads subscriptions from a directory of JSON assets.
type FileService struct {
	path  string
	store *storage.FileStore[*Subscription]
}

func NewFileService(path string) (*FileService, error) {
	store, err := storage.NewFileStore[*Subscription](path)
	if err != nil {
		return nil, fmt.Errorf("loading subscriptions: %w", err)
	}
	return &FileService{path: path, store: store}, nil
}

// Register creates or replaces the subscription for loginName.
func (s *FileService) Register(loginName, password string, rec Record) error {
	hash, err := hashPassword(password)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	return s.store.Save(loginName, &Subscription{
		PasswordHash: hash,
		PlayerID:     rec.PlayerID,
		PlayerName:   rec.PlayerName,
		GroupName:    rec.GroupName,
		Region:       rec.Region,
	})
}

func (s *FileService) Authorize(ctx context.Context, loginName, password string) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}

	sub, ok := s.store.Get(loginName)
	if !ok {
		return Record{}, ErrUnknownSubscription
	}
	if err := checkPassword(sub.PasswordHash, password); err != nil {
		return Record{}, err
	}

	return Record{
		PlayerID:    sub.PlayerID,
		PlayerName:  sub.PlayerName,
		GroupName:   sub.GroupName,
		Region:      sub.Region,
		AccessToken: newToken(),
	}, nil
}

func (s *FileService) Describe() string {
	return fmt.Sprintf("FileService (%s, %d subscriptions)", s.path, s.store.Len())
}
