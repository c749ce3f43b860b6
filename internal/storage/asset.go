package storage

import (
	"fmt"
	"regexp"

	"github.com/pixil98/go-errors"
)

// Login names like "mikkel_aarskort" are used as identifiers, so underscores
// are allowed next to letters, digits and hyphens.
var identifierPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]*$`)

// ValidatingSpec is the payload of an Asset.
type ValidatingSpec interface {
	Validate() error
}

// Asset is the on-disk envelope of one FileStore record.
type Asset[T ValidatingSpec] struct {
	Version    uint   `json:"version"`
	Identifier string `json:"id"`
	Spec       T      `json:"spec"`
}

func (a *Asset[T]) Validate() error {
	el := errors.NewErrorList()

	if a.Version == 0 {
		el.Add(fmt.Errorf("version must be set"))
	}

	if a.Identifier == "" {
		el.Add(fmt.Errorf("id must be set"))
	}

	if !identifierPattern.MatchString(a.Identifier) {
		el.Add(fmt.Errorf("id %q may only contain letters, digits, '-' and '_'", a.Identifier))
	}

	el.Add(a.Spec.Validate())

	return el.Err()
}
