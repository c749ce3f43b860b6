// Package subscription authenticates login names against the subscriptions
// that grant access to the cave.
package subscription

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/pixil98/go-cave/internal/game"
)

// ErrUnknownSubscription means the login name does not exist or the password
// is wrong. The two are deliberately indistinguishable.
var ErrUnknownSubscription = errors.New("unknown subscription")

// Record is what a successful authorization tells the cave about a player.
type Record struct {
	PlayerID    string
	PlayerName  string
	GroupName   string
	Region      game.Region
	AccessToken string
}

// Service authorizes a login. Any error other than ErrUnknownSubscription is
// an infrastructure failure.
type Service interface {
	Authorize(ctx context.Context, loginName, password string) (Record, error)
	Describe() string
}

// hashCost is low on purpose: hashes are computed per process start for the
// stub users and checked on every login.
const hashCost = bcrypt.MinCost

func hashPassword(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), hashCost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

// checkPassword returns ErrUnknownSubscription on a mismatch.
func checkPassword(hash, password string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return ErrUnknownSubscription
	}
	return err
}

func newToken() string {
	return uuid.NewString()
}
