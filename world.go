package whirlwind

import (
	"encoding/json"

	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"pkg.whirlwind.dev/whirlwind/component"
	"pkg.whirlwind.dev/whirlwind/filter"
	"pkg.whirlwind.dev/whirlwind/gamestate"
	wwlog "pkg.whirlwind.dev/whirlwind/log"
	"pkg.whirlwind.dev/whirlwind/search"
	"pkg.whirlwind.dev/whirlwind/types"
	"pkg.whirlwind.dev/whirlwind/wql"
)

var _ wwlog.Loggable = &World{}

// World owns all entity, component, resource and schedule state. It is
// single-threaded and synchronous: every operation completes within its own
// call frame and there are no locks in here. Callers that want to touch a
// World from more than one goroutine must serialize access themselves, the
// way App does around its frame loop.
type World struct {
	// Core modules
	state            *gamestate.State
	componentManager *component.Manager
	scheduleManager  *ScheduleManager

	logger *zerolog.Logger
}

// NewWorld creates an empty world with no components, resources or schedules
// registered.
func NewWorld(opts ...WorldOption) *World {
	world := &World{
		state:            gamestate.New(),
		componentManager: component.NewManager(),
		scheduleManager:  NewScheduleManager(),
		logger:           &log.Logger,
	}

	// Apply options
	for _, opt := range opts {
		opt(world)
	}

	return world
}

// Logger returns the world's logger. Inside a running system it carries the
// system's name.
func (w *World) Logger() *zerolog.Logger {
	return w.logger
}

// Spawn appends one empty row to every registered component column and
// returns a builder bound to the new entity. Any given components are
// inserted through the builder, so a failed insert surfaces on the builder's
// Err, not here.
func (w *World) Spawn(components ...types.Component) *EntityWorld {
	id := w.state.AppendRow()
	e := &EntityWorld{world: w, id: id}
	return e.Insert(components...)
}

// Despawn clears every component slot at the entity's row. The row itself
// survives: no column shrinks, no later entity shifts, and the id is never
// handed out again.
func (w *World) Despawn(id types.EntityID) error {
	if err := w.state.ClearRow(id); err != nil {
		return err
	}
	w.logger.Debug().Int("entity_id", int(id)).Msg("entity despawned")
	return nil
}

// EntityCount returns the number of entities ever spawned, despawned rows
// included.
func (w *World) EntityCount() int {
	return w.state.RowCount()
}

// Search returns a search over the world for the given filter.
func (w *World) Search(componentFilter filter.ComponentFilter) *search.Search {
	return search.New(w.state, componentFilter)
}

// RegisterSchedule creates an empty schedule under the given name,
// clearing any systems previously added to it.
func (w *World) RegisterSchedule(name string) {
	w.scheduleManager.RegisterSchedule(name)
	w.logger.Debug().Str("schedule", name).Msg("registered schedule")
}

// AddSystems appends systems to the named schedule.
func (w *World) AddSystems(scheduleName string, systems ...System) error {
	return w.scheduleManager.AddSystems(scheduleName, systems...)
}

// RunSchedule runs every system in the named schedule, synchronously and in
// the order they were added, each with exclusive access to the world.
func (w *World) RunSchedule(scheduleName string) error {
	return w.scheduleManager.RunSchedule(w, scheduleName)
}

// RunSystem invokes one system directly, bypassing schedules.
func (w *World) RunSystem(system System) error {
	return w.scheduleManager.RunSystem(w, system)
}

// registerComponentValue resolves the metadata for a concrete component
// value, registering the component dynamically if this type was never seen.
func (w *World) registerComponentValue(comp types.Component) (types.ComponentMetadata, error) {
	metadata, err := w.componentManager.ComponentByName(comp.Name())
	if err == nil {
		return metadata, nil
	}
	if !eris.Is(err, gamestate.ErrComponentNotRegistered) {
		return nil, err
	}

	dynMetadata, err := component.NewDynamicMetadata(comp)
	if err != nil {
		return nil, err
	}
	metadata, err = w.componentManager.Register(dynMetadata)
	if err != nil {
		return nil, err
	}
	if err := w.state.RegisterColumn(metadata.ID(), metadata.Name()); err != nil {
		return nil, err
	}
	w.logger.Debug().
		Str("component_name", metadata.Name()).
		Int("component_id", int(metadata.ID())).
		Msg("registered component")
	return metadata, nil
}

// LogWorld logs every registered component, schedule and resource.
func (w *World) LogWorld(level zerolog.Level) {
	wwlog.World(w.logger, w, level)
}

func (w *World) GetRegisteredComponents() []types.ComponentMetadata {
	return w.componentManager.Components()
}

func (w *World) GetRegisteredSchedules() []types.ScheduleInfo {
	return w.scheduleManager.GetSchedules()
}

func (w *World) GetResourceNames() []string {
	names := make([]string, 0)
	w.state.EachResource(func(name string, _ types.Component) bool {
		names = append(names, name)
		return true
	})
	return names
}

// ParseFilter compiles a WQL query against this world's component registry.
func (w *World) ParseFilter(query string) (filter.ComponentFilter, error) {
	return wql.Parse(query, func(name string) (types.Component, error) {
		return w.componentManager.ComponentByName(name)
	})
}

// DebugState returns every entity matching the filter together with its
// components rendered as raw JSON, in ascending entity order.
func (w *World) DebugState(componentFilter filter.ComponentFilter) (types.DebugState, error) {
	state := make(types.DebugState, 0)
	var searchErr error
	w.Search(componentFilter).Each(func(id types.EntityID) bool {
		element := types.DebugStateElement{
			ID:         id,
			Components: map[string]json.RawMessage{},
		}
		for _, comp := range w.state.RowComponents(id) {
			metadata, err := w.componentManager.ComponentByName(comp.Name())
			if err != nil {
				searchErr = err
				return false
			}
			bz, err := metadata.Encode(comp)
			if err != nil {
				searchErr = err
				return false
			}
			element.Components[comp.Name()] = bz
		}
		state = append(state, element)
		return true
	})
	if searchErr != nil {
		return nil, searchErr
	}
	return state, nil
}

// DebugResources returns every resource rendered as raw JSON, in insertion
// order.
func (w *World) DebugResources() ([]types.DebugResourceElement, error) {
	resources := make([]types.DebugResourceElement, 0)
	var encodeErr error
	w.state.EachResource(func(name string, value types.Component) bool {
		metadata, err := w.componentManager.ResourceByName(name)
		if err != nil {
			encodeErr = err
			return false
		}
		bz, err := metadata.Encode(value)
		if err != nil {
			encodeErr = err
			return false
		}
		resources = append(resources, types.DebugResourceElement{Name: name, Value: bz})
		return true
	})
	if encodeErr != nil {
		return nil, encodeErr
	}
	return resources, nil
}
