package whirlwind

import (
	"testing"

	"github.com/rotisserie/eris"

	"pkg.whirlwind.dev/whirlwind/assert"
)

type latchComp struct {
	Value int
}

func (latchComp) Name() string { return "latchComp" }

// The first error in an edit chain is kept and every later mutation becomes
// a no-op.
func TestEntityWorld_ErrLatches(t *testing.T) {
	world := NewWorld()
	assert.NilError(t, RegisterComponent[latchComp](world))

	id := world.Spawn().ID()
	sentinel := eris.New("chain already failed")
	e := &EntityWorld{world: world, id: id, err: sentinel}

	e.Insert(latchComp{Value: 1}).Remove(latchComp{})
	assert.IsEqual(t, sentinel, e.Err())

	// Nothing was written through the poisoned chain.
	_, err := GetComponent[latchComp](world, id)
	assert.ErrorIs(t, err, ErrComponentNotOnEntity)
}
