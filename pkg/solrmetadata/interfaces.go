package solrmetadata

import "context"

// ConfigStore is a hierarchical key-value store addressed by dotted paths of
// the form "configs.<name>.<key>". Set and Clear stage mutations; Save
// persists everything staged as one atomic unit. Values are JSON-compatible
// (strings, numbers, bools, slices, maps); decoding back into domain types is
// this package's job, not the store's.
type ConfigStore interface {
	// Get returns the value stored at exactly path. ok is false when the
	// path is absent.
	Get(ctx context.Context, path string) (value any, ok bool, err error)

	// Exists reports whether path or any descendant of it holds a value.
	Exists(ctx context.Context, path string) (bool, error)

	// Children returns the distinct immediate child names under path,
	// sorted lexically.
	Children(ctx context.Context, path string) ([]string, error)

	// Set stages a write of value at path.
	Set(ctx context.Context, path string, value any) error

	// Clear stages removal of path and its entire subtree. Clearing an
	// absent path is a no-op.
	Clear(ctx context.Context, path string) error

	// Save persists all staged mutations atomically.
	Save(ctx context.Context) error
}

// AssociationStore backs the islandora_solr_metadata_cmodels lookup table.
type AssociationStore interface {
	// GetByCmodels returns one association per distinct configuration name
	// whose cmodel is in the given set. No match yields an empty map.
	GetByCmodels(ctx context.Context, cmodels []string) (map[string]Association, error)

	// ListForConfiguration returns every association pointing at the named
	// configuration.
	ListForConfiguration(ctx context.Context, configurationName string) ([]Association, error)

	// Set maps cmodel to configurationName, replacing any prior mapping for
	// that cmodel.
	Set(ctx context.Context, cmodel, configurationName string) error

	// Remove drops the mapping for cmodel. Removing an absent cmodel is a
	// no-op.
	Remove(ctx context.Context, cmodel string) error

	// RemoveForConfiguration drops every mapping pointing at the named
	// configuration.
	RemoveForConfiguration(ctx context.Context, configurationName string) error
}

// FieldService owns the per-configuration field table. Its internal storage
// is opaque to the service layer.
type FieldService interface {
	// GetFields returns the configuration's fields in display order:
	// weight ascending, insertion order breaking ties.
	GetFields(ctx context.Context, configurationName string) ([]Field, error)

	// SetFields upserts the given fields: existing solr_field keys are
	// overwritten in place, new ones appended.
	SetFields(ctx context.Context, configurationName string, fields []Field) error

	// DeleteFields removes the named solr fields. Absent fields are
	// skipped silently.
	DeleteFields(ctx context.Context, configurationName string, solrFields []string) error
}

// EventSink defines the interface for configuration change notifications
type EventSink interface {
	// ConfigurationCreated is fired when a configuration is created
	ConfigurationCreated(ctx context.Context, event ChangeEvent) error

	// ConfigurationUpdated is fired when any part of a configuration changes
	ConfigurationUpdated(ctx context.Context, event ChangeEvent) error

	// ConfigurationDeleted is fired when a configuration is deleted
	ConfigurationDeleted(ctx context.Context, event ChangeEvent) error
}
