package gamestate

import "github.com/rotisserie/eris"

var (
	ErrEntityDoesNotExist     = eris.New("entity does not exist")
	ErrComponentNotOnEntity   = eris.New("component not on entity")
	ErrComponentNotRegistered = eris.New("component not registered")
	ErrResourceNotFound       = eris.New("resource not found")
	ErrNotExactlyOneEntity    = eris.New("world does not have exactly one entity")
)
