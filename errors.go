package whirlwind

import (
	"github.com/rotisserie/eris"

	"pkg.whirlwind.dev/whirlwind/gamestate"
	"pkg.whirlwind.dev/whirlwind/search"
)

var (
	ErrEntityDoesNotExist     = gamestate.ErrEntityDoesNotExist
	ErrComponentNotOnEntity   = gamestate.ErrComponentNotOnEntity
	ErrComponentNotRegistered = gamestate.ErrComponentNotRegistered
	ErrResourceNotFound       = gamestate.ErrResourceNotFound
	ErrNotExactlyOneEntity    = gamestate.ErrNotExactlyOneEntity
	ErrNoMatchingEntity       = search.ErrNoMatchingEntity

	ErrScheduleNotFound = eris.New("schedule not found")
)
