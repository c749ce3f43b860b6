package shell

import (
	"context"
	"errors"
	"io"
	"strconv"
	"strings"

	"github.com/pixil98/go-cave/internal/game"
)

var errIllegalDirection = errors.New("illegal direction character")

var directionKeys = map[string]game.Direction{
	"n": game.North,
	"s": game.South,
	"e": game.East,
	"w": game.West,
	"u": game.Up,
	"d": game.Down,
}

const help = `=== Help on the SkyCave commands. ===
  Many commonly used commands are single-character
Commands:
 n,s,e,w,d,u    :  MOVE north, south, etc;
 q              :  QUIT sky cave;
 h              :  HELP, print this help instructions;
 l              :  LOOK, print long description of present room;
 p              :  POSITION, print your (x,y,z) position
Longer Commands:
 who            :  WHO, print info on your avatar;
 quote [i]      :  QUOTE get famous quote number [i];
 dig [d] [desc] :  DIG room in direction [d] with description [desc];
 change [desc]  :  CHANGE current room with new description [desc];
 post [msg]     :  POST [msg] on this room's wall;
 read [p]       :  READ messages on page 'p' of this room's wall (default is p=0);
 upd [no] [msg] :  UPDATE message 'no' of last read wall messages to new [msg];
 sys            :  SYStem and configuration information;
 exec [cmd] [param]* :  EXEC [cmd] with 0 or more [param]s;
`

// Interpreter runs the commands of one logged in player.
type Interpreter struct {
	cave   game.Cave
	player game.Player
	term   *Terminal

	// lastRead is the wall page shown by the latest "read"; "upd" refers
	// to messages by their index on it.
	lastRead []game.WallMessage
}

func NewInterpreter(c game.Cave, p game.Player, t *Terminal) *Interpreter {
	return &Interpreter{
		cave:   c,
		player: p,
		term:   t,
	}
}

// Run reads and evaluates commands until the player quits, the session is
// superseded or the connection ends. A dropped connection logs the player
// out.
func (i *Interpreter) Run(ctx context.Context) error {
	i.term.Printf("\n== Welcome to SkyCave, player %s ==\n", i.player.Name())
	i.term.Println(`Entering command loop, type "q" to quit, "h" for help.`)

	for {
		i.term.Printf("> ")
		line, err := i.term.ReadLine()
		if errors.Is(err, io.EOF) {
			_, logoutErr := i.cave.Logout(ctx, i.player.ID())
			return logoutErr
		}
		if err != nil {
			return err
		}

		quit, err := i.Eval(ctx, line)
		if errors.Is(err, game.ErrSessionExpired) {
			i.term.Println("**** Sorry! Another session has started with the same loginID. ***")
			i.term.Println("**** You have been logged out.                                 ***")
			return nil
		}
		if err != nil {
			i.term.Printf("Sorry, the cave could not do that: %v\n", err)
		}
		if quit {
			i.term.Println("Leaving SkyCave - Goodbye.")
			return nil
		}
		if strings.TrimSpace(line) != "" {
			i.term.Println()
		}
	}
}

// Eval runs one command line. quit is true once the player logged out.
func (i *Interpreter) Eval(ctx context.Context, line string) (quit bool, err error) {
	tokens := strings.Fields(line)
	if len(tokens) == 0 {
		return false, nil
	}

	if len(tokens[0]) == 1 {
		return i.single(ctx, tokens[0])
	}

	err = i.multi(ctx, tokens[0], tokens[1:])
	if errors.Is(err, errIllegalDirection) {
		i.term.Println("You entered an illegal direction character, must be one of (n,e,s,w,u,d).")
		return false, nil
	}
	return false, err
}

func (i *Interpreter) single(ctx context.Context, cmd string) (bool, error) {
	if d, ok := directionKeys[cmd]; ok {
		return false, i.move(ctx, d)
	}

	switch cmd {
	case "l":
		lines, err := i.player.LongRoomDescription(ctx)
		if err != nil {
			return false, err
		}
		for _, l := range lines {
			i.term.Println(l)
		}
	case "p":
		pos, err := i.player.Position(ctx)
		if err != nil {
			return false, err
		}
		i.term.Printf("Your position in the cave is: %s\n", pos)
	case "h":
		i.term.Printf("%s", help)
	case "q":
		result, err := i.cave.Logout(ctx, i.player.ID())
		if err != nil {
			return false, err
		}
		i.term.Printf("Logged player out, result = %s\n", result)
		return true, nil
	default:
		i.term.Println("I do not understand that command. (Type 'h' for help)")
	}
	return false, nil
}

func (i *Interpreter) move(ctx context.Context, d game.Direction) error {
	result, err := i.player.Move(ctx, d)
	if err != nil {
		return err
	}
	if result != game.UpdateOK {
		i.term.Printf("There is no exit going %s\n", d)
		return nil
	}

	desc, err := i.player.ShortRoomDescription(ctx)
	if err != nil {
		return err
	}
	i.term.Printf("You moved %s\n", d)
	i.term.Println(desc)
	return nil
}

func (i *Interpreter) multi(ctx context.Context, cmd string, args []string) error {
	switch {
	case cmd == "dig" && len(args) > 1:
		return i.dig(ctx, args[0], strings.Join(args[1:], " "))
	case cmd == "change" && len(args) > 0:
		return i.change(ctx, strings.Join(args, " "))
	case cmd == "who":
		return i.who(ctx)
	case cmd == "quote" && len(args) > 0:
		n, err := strconv.Atoi(args[0])
		if err != nil {
			i.term.Println("You have to provide a numeric parameter to quote.")
			return nil
		}
		q, err := i.player.Quote(ctx, n)
		if err != nil {
			return err
		}
		i.term.Println(q)
	case cmd == "post" && len(args) > 0:
		if err := i.player.AddMessage(ctx, strings.Join(args, " ")); err != nil {
			return err
		}
		i.term.Println("You posted a message.")
	case cmd == "read":
		return i.read(ctx, args)
	case cmd == "upd" && len(args) > 1:
		return i.update(ctx, args[0], strings.Join(args[1:], " "))
	case cmd == "sys":
		desc, err := i.cave.DescribeConfiguration(ctx)
		if err != nil {
			return err
		}
		i.term.Println("System information:")
		i.term.Println(desc)
		i.term.Printf("Player: %s (%s)\n", i.player.Name(), i.player.ID())
	case cmd == "exec":
		if len(args) == 0 {
			i.term.Println("Exec commands require the name of the command to run.")
			return nil
		}
		out, err := i.player.Execute(ctx, args[0], args[1:]...)
		if err != nil {
			return err
		}
		for _, l := range out {
			i.term.Println(l)
		}
	default:
		i.term.Println("I do not understand that long command. (Type 'h' for help)")
	}
	return nil
}

func (i *Interpreter) dig(ctx context.Context, key, description string) error {
	d, ok := directionKeys[key[:1]]
	if !ok {
		return errIllegalDirection
	}

	result, err := i.player.DigRoom(ctx, d, description)
	if err != nil {
		return err
	}
	if result == game.UpdateOK {
		i.term.Printf("You dug a new room in direction %s\n", d)
	} else {
		i.term.Printf("You cannot dig there as there is already a room in direction %s\n", d)
	}
	return nil
}

func (i *Interpreter) change(ctx context.Context, description string) error {
	result, err := i.player.UpdateRoom(ctx, description)
	if err != nil {
		return err
	}
	if result == game.UpdateOK {
		i.term.Println("You changed the room's description.")
	} else {
		i.term.Println("You cannot change the room. It was not created by you.")
	}
	return nil
}

func (i *Interpreter) who(ctx context.Context) error {
	region, err := i.player.Region(ctx)
	if err != nil {
		return err
	}
	i.term.Printf("You are: %s/%s in Region %s\n", i.player.Name(), i.player.ID(), region)
	i.term.Printf("   in local session: %s\n", i.player.AccessToken())
	return nil
}

func (i *Interpreter) read(ctx context.Context, args []string) error {
	page := 0
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 0 {
			i.term.Println("You have to provide a numeric parameter for page number.")
			return nil
		}
		page = n
	}

	wall, err := i.player.MessageList(ctx, page)
	if err != nil {
		return err
	}
	i.lastRead = wall
	for n, m := range wall {
		i.term.Printf("%2d: %s\n", n, m.Message)
	}
	return nil
}

func (i *Interpreter) update(ctx context.Context, index, contents string) error {
	n, err := strconv.Atoi(index)
	if err != nil || n < 0 {
		i.term.Println("You have to provide a numeric index to tell which message to update.")
		return nil
	}
	if n >= len(i.lastRead) {
		i.term.Printf("The message no is invalid. There are only %d messages on the last read page.\n", len(i.lastRead))
		return nil
	}

	result, err := i.player.UpdateMessage(ctx, i.lastRead[n].ID, contents)
	if err != nil {
		return err
	}
	switch result {
	case game.UpdateOK:
		i.term.Println("You changed the message.")
	case game.FailAsNotCreator:
		i.term.Println("You are not the author of that message.")
	default:
		i.term.Println("That message is no longer on the wall.")
	}
	return nil
}
