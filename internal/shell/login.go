package shell

import (
	"context"
	"strings"

	"github.com/pixil98/go-cave/internal/game"
)

const maxLoginTries = 3

func nonEmpty(str string) (bool, string) {
	if strings.TrimSpace(str) == "" {
		return false, "Please enter a login name.\n"
	}
	return true, ""
}

// Login asks for credentials until the cave accepts them or maxLoginTries
// attempts failed.
func Login(ctx context.Context, cave game.Cave, t *Terminal) (game.Player, error) {
	t.Println("Welcome to SkyCave!")

	for tries := 0; tries < maxLoginTries; tries++ {
		loginName, err := t.Prompt("Login name: ", WithValidator(nonEmpty))
		if err != nil {
			return nil, err
		}
		password, err := t.Prompt("Password: ")
		if err != nil {
			return nil, err
		}

		loginName = strings.TrimSpace(loginName)
		t.Printf("Trying to log in player with loginName: %s\n", loginName)

		p, result, err := cave.Login(ctx, loginName, password)
		if err != nil {
			return nil, err
		}
		if !result.Valid() {
			t.Printf("*** SORRY! The login failed. Reason: %s\n", result)
			continue
		}

		if result == game.LoginSuccessPlayerAlreadyInCave {
			t.Printf("*** WARNING! User '%s' is ALREADY logged in! ***\n", p.Name())
			t.Println("*** The previous session will be disconnected. ***")
		}
		return p, nil
	}

	return nil, ErrTooManyTries
}
