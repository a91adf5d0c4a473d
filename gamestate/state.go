// Package gamestate holds the in-memory entity store: one dense column per
// registered component type, one slot per entity row, plus the world's
// singleton resources. A nil slot means the row's entity does not carry that
// component. Every column always has the same length, equal to the number of
// entities ever spawned, so a row index is valid across all columns at once.
package gamestate

import (
	"github.com/rotisserie/eris"

	"pkg.whirlwind.dev/whirlwind/types"
)

type column struct {
	name  string
	slots []types.Component
}

// State is the storage half of a world. It knows nothing about Go types:
// values arrive and leave as boxed types.Component and columns are addressed
// by the ids the component manager assigned at registration.
type State struct {
	// rows is the number of entities ever spawned. Every column always has
	// exactly this many slots, so entities spawned before any component was
	// registered still claim their row.
	rows int

	// columns is indexed by ComponentID - 1; ids are dense and start at 1.
	columns []*column

	resources     map[string]types.Component
	resourceOrder []string
}

func New() *State {
	return &State{
		columns:   make([]*column, 0),
		resources: make(map[string]types.Component),
	}
}

// RegisterColumn allocates storage for a component type, backfilled with
// empty slots so the new column lines up with every existing row. Columns
// must be registered in id order. Registering an id that already has a
// column is a no-op, so stored values survive re-registration.
func (s *State) RegisterColumn(id types.ComponentID, name string) error {
	idx := int(id) - 1
	if idx < 0 {
		return eris.Errorf("invalid component id %d", id)
	}
	if idx < len(s.columns) {
		if s.columns[idx].name != name {
			return eris.Errorf(
				"component id %d is already bound to %q, cannot rebind it to %q",
				id, s.columns[idx].name, name,
			)
		}
		return nil
	}
	if idx != len(s.columns) {
		return eris.Errorf("component ids must be registered densely, got %d, want %d", id, len(s.columns)+1)
	}
	s.columns = append(s.columns, &column{
		name:  name,
		slots: make([]types.Component, s.RowCount()),
	})
	return nil
}

// RowCount returns the number of entities ever spawned.
func (s *State) RowCount() int {
	return s.rows
}

// AppendRow adds one empty slot to every column and returns the new row's id.
func (s *State) AppendRow() types.EntityID {
	id := types.EntityID(s.rows)
	s.rows++
	for _, col := range s.columns {
		col.slots = append(col.slots, nil)
	}
	return id
}

// ClearRow empties every component slot at the given row. The row itself
// stays: no column shrinks and no later row shifts.
func (s *State) ClearRow(row types.EntityID) error {
	if row >= types.EntityID(s.RowCount()) {
		return eris.Wrapf(ErrEntityDoesNotExist, "entity %d is out of range, %d rows exist", row, s.RowCount())
	}
	for _, col := range s.columns {
		col.slots[row] = nil
	}
	return nil
}

// SetSlot stores a boxed value at the given row of a column.
func (s *State) SetSlot(id types.ComponentID, row types.EntityID, value types.Component) error {
	col, ok := s.columnByID(id)
	if !ok {
		return eris.Wrapf(ErrComponentNotRegistered, "no column for component id %d", id)
	}
	if row >= types.EntityID(len(col.slots)) {
		return eris.Wrapf(ErrEntityDoesNotExist, "entity %d is out of range, %d rows exist", row, len(col.slots))
	}
	col.slots[row] = value
	return nil
}

// Slot returns the boxed value at the given row of a column.
func (s *State) Slot(id types.ComponentID, row types.EntityID) (types.Component, error) {
	col, ok := s.columnByID(id)
	if !ok {
		return nil, eris.Wrapf(ErrComponentNotRegistered, "no column for component id %d", id)
	}
	if row >= types.EntityID(len(col.slots)) {
		return nil, eris.Wrapf(ErrEntityDoesNotExist, "entity %d is out of range, %d rows exist", row, len(col.slots))
	}
	value := col.slots[row]
	if value == nil {
		return nil, eris.Wrapf(ErrComponentNotOnEntity, "entity %d has no %q component", row, col.name)
	}
	return value, nil
}

// ClearSlot empties a single slot.
func (s *State) ClearSlot(id types.ComponentID, row types.EntityID) error {
	col, ok := s.columnByID(id)
	if !ok {
		return eris.Wrapf(ErrComponentNotRegistered, "no column for component id %d", id)
	}
	if row >= types.EntityID(len(col.slots)) {
		return eris.Wrapf(ErrEntityDoesNotExist, "entity %d is out of range, %d rows exist", row, len(col.slots))
	}
	col.slots[row] = nil
	return nil
}

// EachSlot calls fn for every occupied slot of a column in ascending row
// order. Iteration stops early when fn returns false. An unregistered column
// iterates zero times.
func (s *State) EachSlot(id types.ComponentID, fn func(row types.EntityID, value types.Component) bool) {
	col, ok := s.columnByID(id)
	if !ok {
		return
	}
	for i, value := range col.slots {
		if value == nil {
			continue
		}
		if !fn(types.EntityID(i), value) {
			return
		}
	}
}

// RowComponents returns the boxed values occupying the given row, in column
// order. A despawned or never-spawned row yields an empty slice.
func (s *State) RowComponents(row types.EntityID) []types.Component {
	comps := make([]types.Component, 0, len(s.columns))
	for _, col := range s.columns {
		if row >= types.EntityID(len(col.slots)) {
			continue
		}
		if value := col.slots[row]; value != nil {
			comps = append(comps, value)
		}
	}
	return comps
}

// RestoreRows resets every column to the given row count with all slots
// empty. Snapshot recovery calls this before replaying stored values.
func (s *State) RestoreRows(rows int) {
	s.rows = rows
	for _, col := range s.columns {
		col.slots = make([]types.Component, rows)
	}
}

func (s *State) columnByID(id types.ComponentID) (*column, bool) {
	idx := int(id) - 1
	if idx < 0 || idx >= len(s.columns) {
		return nil, false
	}
	return s.columns[idx], true
}
