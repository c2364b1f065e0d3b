package solrmetadata

import (
	"errors"
	"fmt"
)

// Error types
var (
	// ErrConfigurationExists indicates a create collided with an existing name
	ErrConfigurationExists = errors.New("configuration already exists")

	// ErrConfigurationNotFound indicates a configuration was not found where
	// the caller demanded existence
	ErrConfigurationNotFound = errors.New("configuration not found")
)

// ConfigurationError represents an error from an operation on a named
// configuration.
type ConfigurationError struct {
	Name string
	Op   string
	Err  error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration operation %s failed for %q: %v", e.Op, e.Name, e.Err)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// AssociationError represents an error from the cmodel association table.
type AssociationError struct {
	Op  string
	Err error
}

func (e *AssociationError) Error() string {
	return fmt.Sprintf("association operation %s failed: %v", e.Op, e.Err)
}

func (e *AssociationError) Unwrap() error {
	return e.Err
}
