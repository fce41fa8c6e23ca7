package nbstore

import (
	"errors"
	"fmt"
	"strings"

	"github.com/signadot/nbstore/draft"
	"github.com/signadot/nbstore/kpath"
)

var (
	ErrArity         = errors.New("wrong number of arguments")
	ErrInvalidSource = errors.New("invalid update source")
	ErrInvalidKey    = errors.New("invalid state key")
	ErrInvalidCall   = errors.New("invalid call")

	ErrInvalidPath   = kpath.ErrInvalidPath
	ErrInvalidTarget = draft.ErrInvalidTarget
	ErrDraft         = draft.ErrDraft
	ErrTransform     = draft.ErrTransform
)

// ArityError reports an entry point called with an unsupported number of
// arguments.
type ArityError struct {
	Call     string
	Accepted []string
	Got      int
}

func (e *ArityError) Error() string {
	return fmt.Sprintf("%s: %s expects %s, but received %d", ErrArity, e.Call, strings.Join(e.Accepted, " or "), e.Got)
}

func (e *ArityError) Is(target error) bool {
	return target == ErrArity
}
