package types

// EntityID is the stable identity of an entity. It is the entity's row index
// in every registered component column. IDs are handed out sequentially at
// spawn time and are never recycled: despawning clears the row's slots but
// leaves the row in place, so a stale ID can never silently alias a newer
// entity.
type EntityID uint64
