// Package snapshot persists a world's state to redis and restores it on
// startup. A snapshot is a full copy of every component column and every
// resource, written as one redis transaction so recovery never sees a
// half-written world. Only the most recent snapshot per namespace is kept.
package snapshot

import (
	"context"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog/log"

	"pkg.whirlwind.dev/whirlwind/component"
	"pkg.whirlwind.dev/whirlwind/gamestate"
	"pkg.whirlwind.dev/whirlwind/types"
)

var (
	// ErrUnknownComponent is returned when a snapshot holds a component that
	// the current world never registered.
	ErrUnknownComponent = eris.New("snapshot contains a component that is not registered")
	// ErrUnknownResource is returned when a snapshot holds a resource that the
	// current world never registered.
	ErrUnknownResource = eris.New("snapshot contains a resource that is not registered")
)

// Header records what one snapshot contains. It is stored alongside the data
// so recovery can verify the snapshot's shape before decoding anything.
type Header struct {
	SnapshotID uuid.UUID `json:"snapshot_id"`
	Frame      uint64    `json:"frame"`
	Rows       int       `json:"rows"`
	Components []string  `json:"components"`
	Resources  []string  `json:"resources"`
	TakenAt    time.Time `json:"taken_at"`
}

type Options struct {
	Addr     string
	Password string
}

// Store reads and writes snapshots for one namespace.
type Store struct {
	namespace types.Namespace
	client    *redis.Client
}

// NewStore creates a snapshot store backed by the redis instance at
// options.Addr. The connection is dialed lazily, so a bad address only
// surfaces on the first Save or Load.
func NewStore(namespace types.Namespace, options Options) *Store {
	client := redis.NewClient(&redis.Options{
		Addr:     options.Addr,
		Password: options.Password,
		DB:       0, // use default DB
	})
	return &Store{
		namespace: namespace,
		client:    client,
	}
}

// Save writes a full snapshot of the given state, replacing the namespace's
// previous snapshot. The frame number is recorded in the header and handed
// back by Load.
func (s *Store) Save(frame uint64, state *gamestate.State, components *component.Manager) error {
	ctx := context.Background()

	header := Header{
		SnapshotID: uuid.New(),
		Frame:      frame,
		Rows:       state.RowCount(),
		Components: make([]string, 0),
		Resources:  make([]string, 0),
		TakenAt:    time.Now().UTC(),
	}

	columns := make(map[string][]byte)
	schemas := make(map[string][]byte)
	for _, metadata := range components.Components() {
		column, err := encodeColumn(state, metadata)
		if err != nil {
			return err
		}
		header.Components = append(header.Components, metadata.Name())
		columns[metadata.Name()] = column
		schemas[metadata.Name()] = metadata.GetSchema()
	}

	resources := make(map[string][]byte)
	resourceSchemas := make(map[string][]byte)
	var resourceErr error
	state.EachResource(func(name string, value types.Component) bool {
		metadata, err := components.ResourceByName(name)
		if err != nil {
			resourceErr = err
			return false
		}
		bz, err := metadata.Encode(value)
		if err != nil {
			resourceErr = err
			return false
		}
		header.Resources = append(header.Resources, name)
		resources[name] = bz
		resourceSchemas[name] = metadata.GetSchema()
		return true
	})
	if resourceErr != nil {
		return resourceErr
	}

	headerBz, err := json.Marshal(header)
	if err != nil {
		return eris.Wrap(err, "failed to marshal snapshot header")
	}

	// One transaction, so a crash mid-save can never leave a torn snapshot.
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx,
			componentsKey(s.namespace),
			componentSchemasKey(s.namespace),
			resourcesKey(s.namespace),
			resourceSchemasKey(s.namespace),
		)
		pipe.Set(ctx, headerKey(s.namespace), headerBz, 0)
		for name, column := range columns {
			pipe.HSet(ctx, componentsKey(s.namespace), name, column)
			pipe.HSet(ctx, componentSchemasKey(s.namespace), name, schemas[name])
		}
		for name, value := range resources {
			pipe.HSet(ctx, resourcesKey(s.namespace), name, value)
			pipe.HSet(ctx, resourceSchemasKey(s.namespace), name, resourceSchemas[name])
		}
		return nil
	})
	if err != nil {
		return eris.Wrap(err, "failed to save snapshot")
	}

	log.Debug().
		Str("snapshot_id", header.SnapshotID.String()).
		Uint64("frame", frame).
		Int("rows", header.Rows).
		Msg("snapshot saved")
	return nil
}

// Load restores the namespace's snapshot into the given state. It returns the
// frame the snapshot was taken at and whether a snapshot existed at all.
// Every stored component and resource must already be registered, with a
// schema matching the stored one. Components registered in this world but
// absent from the snapshot simply start empty.
func (s *Store) Load(state *gamestate.State, components *component.Manager) (frame uint64, found bool, err error) {
	ctx := context.Background()

	headerBz, err := s.client.Get(ctx, headerKey(s.namespace)).Bytes()
	if eris.Is(err, redis.Nil) {
		return 0, false, nil
	} else if err != nil {
		return 0, false, eris.Wrap(err, "failed to read snapshot header")
	}

	var header Header
	if err := json.Unmarshal(headerBz, &header); err != nil {
		return 0, false, eris.Wrap(err, "failed to unmarshal snapshot header")
	}

	state.RestoreRows(header.Rows)

	for _, name := range header.Components {
		metadata, err := components.ComponentByName(name)
		if err != nil {
			return 0, false, eris.Wrapf(ErrUnknownComponent,
				"snapshot %s contains component %q", header.SnapshotID, name)
		}

		schema, err := s.client.HGet(ctx, componentSchemasKey(s.namespace), name).Bytes()
		if err != nil {
			return 0, false, eris.Wrapf(err, "failed to read stored schema for component %q", name)
		}
		if err := metadata.ValidateAgainstSchema(schema); err != nil {
			return 0, false, err
		}

		column, err := s.client.HGet(ctx, componentsKey(s.namespace), name).Bytes()
		if err != nil {
			return 0, false, eris.Wrapf(err, "failed to read stored column for component %q", name)
		}
		if err := decodeColumn(state, metadata, column, header.Rows); err != nil {
			return 0, false, err
		}
	}

	for _, name := range header.Resources {
		metadata, err := components.ResourceByName(name)
		if err != nil {
			return 0, false, eris.Wrapf(ErrUnknownResource,
				"snapshot %s contains resource %q", header.SnapshotID, name)
		}

		schema, err := s.client.HGet(ctx, resourceSchemasKey(s.namespace), name).Bytes()
		if err != nil {
			return 0, false, eris.Wrapf(err, "failed to read stored schema for resource %q", name)
		}
		if err := metadata.ValidateAgainstSchema(schema); err != nil {
			return 0, false, err
		}

		bz, err := s.client.HGet(ctx, resourcesKey(s.namespace), name).Bytes()
		if err != nil {
			return 0, false, eris.Wrapf(err, "failed to read stored value for resource %q", name)
		}
		value, err := metadata.Decode(bz)
		if err != nil {
			return 0, false, eris.Wrapf(err, "failed to decode stored resource %q", name)
		}
		state.SetResource(name, value)
	}

	log.Debug().
		Str("snapshot_id", header.SnapshotID.String()).
		Uint64("frame", header.Frame).
		Int("rows", header.Rows).
		Msg("snapshot loaded")
	return header.Frame, true, nil
}

func (s *Store) Close() error {
	if err := s.client.Close(); err != nil {
		return eris.Wrap(err, "")
	}
	return nil
}

// encodeColumn renders one component column as a JSON array with one element
// per entity row. Rows without the component become JSON nulls.
func encodeColumn(state *gamestate.State, metadata types.ComponentMetadata) ([]byte, error) {
	rows := make([]json.RawMessage, state.RowCount())
	for i := range rows {
		rows[i] = json.RawMessage("null")
	}

	var encodeErr error
	state.EachSlot(metadata.ID(), func(row types.EntityID, value types.Component) bool {
		bz, err := metadata.Encode(value)
		if err != nil {
			encodeErr = eris.Wrapf(err, "failed to encode component %q at entity %d", metadata.Name(), row)
			return false
		}
		rows[row] = bz
		return true
	})
	if encodeErr != nil {
		return nil, encodeErr
	}

	column, err := json.Marshal(rows)
	if err != nil {
		return nil, eris.Wrapf(err, "failed to marshal column for component %q", metadata.Name())
	}
	return column, nil
}

// decodeColumn restores one component column from its stored JSON array.
func decodeColumn(state *gamestate.State, metadata types.ComponentMetadata, column []byte, rows int) error {
	var stored []json.RawMessage
	if err := json.Unmarshal(column, &stored); err != nil {
		return eris.Wrapf(err, "failed to unmarshal column for component %q", metadata.Name())
	}
	if len(stored) != rows {
		return eris.Errorf("column %q holds %d rows, snapshot header says %d", metadata.Name(), len(stored), rows)
	}

	for i, bz := range stored {
		if string(bz) == "null" {
			continue
		}
		value, err := metadata.Decode(bz)
		if err != nil {
			return eris.Wrapf(err, "failed to decode component %q at entity %d", metadata.Name(), i)
		}
		if err := state.SetSlot(metadata.ID(), types.EntityID(i), value); err != nil {
			return err
		}
	}
	return nil
}
