// Package benchmark_test contains benchmarks that measure frame throughput at
// different world sizes, and the cost of saving and loading redis snapshots,
// which bounds how often a world can afford to checkpoint itself.
package benchmark_test

import (
	"fmt"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/rs/zerolog"

	"pkg.whirlwind.dev/whirlwind"
	"pkg.whirlwind.dev/whirlwind/assert"
	"pkg.whirlwind.dev/whirlwind/component"
	"pkg.whirlwind.dev/whirlwind/gamestate"
	"pkg.whirlwind.dev/whirlwind/snapshot"
)

type Health struct {
	Value int
}

func (Health) Name() string {
	return "health"
}

// setupWorld creates a new *whirlwind.World with numOfEntities already spawned. If
// enableHealthSystem is set, a system is added to the update schedule that increments
// every entity's "health" by 1 every frame.
func setupWorld(t testing.TB, numOfEntities int, enableHealthSystem bool) *whirlwind.World {
	zerolog.SetGlobalLevel(zerolog.Disabled)
	world := whirlwind.NewWorld()
	world.RegisterSchedule("update")

	if enableHealthSystem {
		err := world.AddSystems(
			"update",
			func(w *whirlwind.World) error {
				for _, entity := range whirlwind.Query[Health](w) {
					entity.Component.Value++
				}
				return nil
			},
		)
		assert.NilError(t, err)
	}

	assert.NilError(t, whirlwind.RegisterComponent[Health](world))
	for i := 0; i < numOfEntities; i++ {
		assert.NilError(t, world.Spawn(Health{}).Err())
	}
	return world
}

// setupSnapshot builds a state with numOfEntities health-carrying rows and a
// store backed by a fresh miniredis.
func setupSnapshot(t testing.TB, numOfEntities int) (*snapshot.Store, *gamestate.State, *component.Manager) {
	zerolog.SetGlobalLevel(zerolog.Disabled)
	redis := miniredis.RunT(t)
	store := snapshot.NewStore("benchmark-world", snapshot.Options{Addr: redis.Addr()})

	manager := component.NewManager()
	state := gamestate.New()

	metadata, err := component.NewComponentMetadata[Health]()
	assert.NilError(t, err)
	metadata, err = manager.Register(metadata)
	assert.NilError(t, err)
	assert.NilError(t, state.RegisterColumn(metadata.ID(), metadata.Name()))

	for i := 0; i < numOfEntities; i++ {
		row := state.AppendRow()
		assert.NilError(t, state.SetSlot(metadata.ID(), row, &Health{Value: i}))
	}
	return store, state, manager
}

func BenchmarkWorld_FrameNoSystems(b *testing.B) {
	maxEntities := 10000
	enableHealthSystem := false

	for i := 1; i <= maxEntities; i *= 10 {
		world := setupWorld(b, i, enableHealthSystem)
		name := fmt.Sprintf("%d entities", i)
		b.Run(
			name, func(b *testing.B) {
				for j := 0; j < b.N; j++ {
					assert.NilError(b, world.RunSchedule("update"))
				}
			},
		)
	}
}

func BenchmarkWorld_FrameWithSystem(b *testing.B) {
	maxEntities := 10000
	enableHealthSystem := true

	for i := 1; i <= maxEntities; i *= 10 {
		world := setupWorld(b, i, enableHealthSystem)
		name := fmt.Sprintf("%d entities", i)
		b.Run(
			name, func(b *testing.B) {
				for j := 0; j < b.N; j++ {
					assert.NilError(b, world.RunSchedule("update"))
				}
			},
		)
	}
}

func BenchmarkSnapshot_Save(b *testing.B) {
	maxEntities := 10000

	for i := 1; i <= maxEntities; i *= 10 {
		store, state, manager := setupSnapshot(b, i)
		name := fmt.Sprintf("%d entities", i)
		b.Run(
			name, func(b *testing.B) {
				for j := 0; j < b.N; j++ {
					assert.NilError(b, store.Save(uint64(j), state, manager))
				}
			},
		)
	}
}

func BenchmarkSnapshot_Load(b *testing.B) {
	maxEntities := 10000

	for i := 1; i <= maxEntities; i *= 10 {
		store, state, manager := setupSnapshot(b, i)
		assert.NilError(b, store.Save(1, state, manager))
		name := fmt.Sprintf("%d entities", i)
		b.Run(
			name, func(b *testing.B) {
				for j := 0; j < b.N; j++ {
					_, found, err := store.Load(state, manager)
					assert.NilError(b, err)
					assert.Check(b, found)
				}
			},
		)
	}
}
