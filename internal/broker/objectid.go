package broker

import (
	"fmt"
	"strings"
)

// Separator joins player id and access token in a mangled object id.
const Separator = "##"

// ObjectID addresses a player servant on behalf of one session.
type ObjectID struct {
	PlayerID string
	Token    string
}

// Mangle renders the id for the wire as "<playerID>##<token>".
func (o ObjectID) Mangle() string {
	return o.PlayerID + Separator + o.Token
}

// Demangle parses a mangled object id. It splits at the first separator,
// so it undoes Mangle for any player id without "##". Either part may be
// empty.
func Demangle(s string) (ObjectID, error) {
	id, token, ok := strings.Cut(s, Separator)
	if !ok {
		return ObjectID{}, fmt.Errorf("malformed object id %q: missing %q", s, Separator)
	}
	return ObjectID{PlayerID: id, Token: token}, nil
}
