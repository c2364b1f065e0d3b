package solrmetadata

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// service implements the Service interface
type service struct {
	configs      ConfigStore
	associations AssociationStore
	fields       FieldService
	eventSink    EventSink
}

// Option represents a functional option for configuring the service
type Option func(*service)

// WithConfigStore sets the configuration store for the service
func WithConfigStore(store ConfigStore) Option {
	return func(s *service) {
		s.configs = store
	}
}

// WithAssociationStore sets the cmodel association store for the service
func WithAssociationStore(store AssociationStore) Option {
	return func(s *service) {
		s.associations = store
	}
}

// WithFieldService sets the field-configuration collaborator for the service
func WithFieldService(fields FieldService) Option {
	return func(s *service) {
		s.fields = fields
	}
}

// WithEventSink sets the event sink for the service
func WithEventSink(sink EventSink) Option {
	return func(s *service) {
		s.eventSink = sink
	}
}

// New creates a new service instance with the given options
func New(options ...Option) (Service, error) {
	s := &service{}

	for _, option := range options {
		option(s)
	}

	if s.configs == nil {
		return nil, fmt.Errorf("config store is required")
	}
	if s.associations == nil {
		return nil, fmt.Errorf("association store is required")
	}
	if s.fields == nil {
		return nil, fmt.Errorf("field service is required")
	}

	return s, nil
}

func newChangeEvent(name, op string) ChangeEvent {
	return ChangeEvent{
		ID:                uuid.New(),
		ConfigurationName: name,
		Op:                op,
		OccurredAt:        time.Now().UTC(),
	}
}

// Cmodel association lookup

func (s *service) GetAssociationsByCmodels(ctx context.Context, cmodels []string) (map[string]Association, error) {
	filtered := make([]string, 0, len(cmodels))
	for _, cm := range cmodels {
		if cm == FedoraObjectCmodel {
			continue
		}
		filtered = append(filtered, cm)
	}
	if len(filtered) == 0 {
		return map[string]Association{}, nil
	}

	associations, err := s.associations.GetByCmodels(ctx, filtered)
	if err != nil {
		return nil, &AssociationError{Op: "get_by_cmodels", Err: err}
	}
	return associations, nil
}

func (s *service) GetCmodels(ctx context.Context, configurationName string) (map[string]string, error) {
	value, ok, err := s.configs.Get(ctx, CmodelsPath(configurationName))
	if err != nil {
		return nil, &ConfigurationError{Name: configurationName, Op: "get_cmodels", Err: err}
	}

	// Absent configuration or key resolves to an empty set, not an error.
	result := map[string]string{}
	if !ok {
		return result, nil
	}
	for _, cm := range decodeStringSlice(value) {
		result[cm] = cm
	}
	return result, nil
}

// Field table operations

func (s *service) GetFields(ctx context.Context, configurationName string) ([]Field, error) {
	return s.fields.GetFields(ctx, configurationName)
}

// AddFields upserts fields into the configuration.
//
// Deprecated: AddFields is a backward-compatible alias of UpdateFields kept
// for callers of the historical API; new code should call UpdateFields.
func (s *service) AddFields(ctx context.Context, configurationName string, fields []Field) error {
	return s.UpdateFields(ctx, configurationName, fields)
}

func (s *service) UpdateFields(ctx context.Context, configurationName string, fields []Field) error {
	if err := s.fields.SetFields(ctx, configurationName, fields); err != nil {
		return &ConfigurationError{Name: configurationName, Op: "update_fields", Err: err}
	}
	s.fireUpdated(ctx, configurationName, "update_fields")
	return nil
}

func (s *service) DeleteFields(ctx context.Context, configurationName string, solrFields []string) error {
	if err := s.fields.DeleteFields(ctx, configurationName, solrFields); err != nil {
		return &ConfigurationError{Name: configurationName, Op: "delete_fields", Err: err}
	}
	s.fireUpdated(ctx, configurationName, "delete_fields")
	return nil
}

// Configuration lifecycle operations

func (s *service) ConfigurationExists(ctx context.Context, configurationName string) (bool, error) {
	exists, err := s.configs.Exists(ctx, ConfigPath(configurationName))
	if err != nil {
		return false, &ConfigurationError{Name: configurationName, Op: "exists", Err: err}
	}
	return exists, nil
}

// GetConfiguration assembles the UI-facing view of a configuration: its
// declared cmodels and description block. Fields stay with the FieldService.
func (s *service) GetConfiguration(ctx context.Context, configurationName string) (*Configuration, error) {
	exists, err := s.ConfigurationExists(ctx, configurationName)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, &ConfigurationError{Name: configurationName, Op: "get", Err: ErrConfigurationNotFound}
	}

	value, _, err := s.configs.Get(ctx, CmodelsPath(configurationName))
	if err != nil {
		return nil, &ConfigurationError{Name: configurationName, Op: "get", Err: err}
	}
	description, err := s.RetrieveDescription(ctx, configurationName)
	if err != nil {
		return nil, err
	}

	return &Configuration{
		Name:        configurationName,
		Cmodels:     decodeStringSlice(value),
		Description: description,
	}, nil
}

func (s *service) CreateConfiguration(ctx context.Context, configurationName string) error {
	exists, err := s.ConfigurationExists(ctx, configurationName)
	if err != nil {
		return err
	}
	if exists {
		return &ConfigurationError{Name: configurationName, Op: "create", Err: ErrConfigurationExists}
	}

	if err := s.configs.Set(ctx, CmodelsPath(configurationName), []string{}); err != nil {
		return &ConfigurationError{Name: configurationName, Op: "create", Err: err}
	}
	if err := s.configs.Save(ctx); err != nil {
		return &ConfigurationError{Name: configurationName, Op: "create", Err: err}
	}

	if s.eventSink != nil {
		// Sink failures never fail the operation.
		_ = s.eventSink.ConfigurationCreated(ctx, newChangeEvent(configurationName, "create"))
	}
	return nil
}

func (s *service) DeleteConfiguration(ctx context.Context, configurationName string) error {
	// Idempotent: clearing an absent subtree is a no-op in the store.
	// Associations in the cmodel table are left alone; see
	// RemoveAssociationsForConfiguration.
	if err := s.configs.Clear(ctx, ConfigPath(configurationName)); err != nil {
		return &ConfigurationError{Name: configurationName, Op: "delete", Err: err}
	}
	if err := s.configs.Save(ctx); err != nil {
		return &ConfigurationError{Name: configurationName, Op: "delete", Err: err}
	}

	if s.eventSink != nil {
		_ = s.eventSink.ConfigurationDeleted(ctx, newChangeEvent(configurationName, "delete"))
	}
	return nil
}

func (s *service) ListConfigurations(ctx context.Context) ([]string, error) {
	names, err := s.configs.Children(ctx, configsRoot)
	if err != nil {
		return nil, fmt.Errorf("list configurations: %w", err)
	}
	return names, nil
}

func (s *service) RetrieveDescription(ctx context.Context, configurationName string) (DescriptionBlock, error) {
	var block DescriptionBlock

	fieldValue, _, err := s.configs.Get(ctx, descriptionFieldPath(configurationName))
	if err != nil {
		return block, &ConfigurationError{Name: configurationName, Op: "retrieve_description", Err: err}
	}
	labelValue, _, err := s.configs.Get(ctx, descriptionLabelPath(configurationName))
	if err != nil {
		return block, &ConfigurationError{Name: configurationName, Op: "retrieve_description", Err: err}
	}
	truncValue, _, err := s.configs.Get(ctx, truncationPath(configurationName))
	if err != nil {
		return block, &ConfigurationError{Name: configurationName, Op: "retrieve_description", Err: err}
	}

	block.DescriptionField = decodeString(fieldValue)
	block.DescriptionLabel = decodeString(labelValue)
	block.Truncation, err = decodeTruncation(truncValue)
	if err != nil {
		return block, &ConfigurationError{Name: configurationName, Op: "retrieve_description", Err: err}
	}
	return block, nil
}

func (s *service) UpdateDescription(ctx context.Context, configurationName string, description DescriptionBlock) error {
	// An empty description field clears the whole block.
	if description.DescriptionField == "" {
		description = DescriptionBlock{}
	}

	sets := map[string]any{
		descriptionFieldPath(configurationName): description.DescriptionField,
		descriptionLabelPath(configurationName): description.DescriptionLabel,
		truncationPath(configurationName):       description.Truncation,
	}
	for path, value := range sets {
		if err := s.configs.Set(ctx, path, value); err != nil {
			return &ConfigurationError{Name: configurationName, Op: "update_description", Err: err}
		}
	}
	// One save covering all three writes.
	if err := s.configs.Save(ctx); err != nil {
		return &ConfigurationError{Name: configurationName, Op: "update_description", Err: err}
	}

	s.fireUpdated(ctx, configurationName, "update_description")
	return nil
}

// Cmodel maintenance helpers

// UpdateCmodels writes the configuration's declared cmodel list and
// reconciles the association table against it, so both sources of truth move
// together for callers that use this path.
func (s *service) UpdateCmodels(ctx context.Context, configurationName string, cmodels []string) error {
	filtered := make([]string, 0, len(cmodels))
	for _, cm := range cmodels {
		if cm == FedoraObjectCmodel || cm == "" {
			continue
		}
		filtered = append(filtered, cm)
	}

	if err := s.configs.Set(ctx, CmodelsPath(configurationName), filtered); err != nil {
		return &ConfigurationError{Name: configurationName, Op: "update_cmodels", Err: err}
	}
	if err := s.configs.Save(ctx); err != nil {
		return &ConfigurationError{Name: configurationName, Op: "update_cmodels", Err: err}
	}

	current, err := s.associations.ListForConfiguration(ctx, configurationName)
	if err != nil {
		return &AssociationError{Op: "list_for_configuration", Err: err}
	}
	wanted := make(map[string]struct{}, len(filtered))
	for _, cm := range filtered {
		wanted[cm] = struct{}{}
	}
	for _, assoc := range current {
		if _, keep := wanted[assoc.Cmodel]; keep {
			continue
		}
		if err := s.associations.Remove(ctx, assoc.Cmodel); err != nil {
			return &AssociationError{Op: "remove", Err: err}
		}
	}
	for _, cm := range filtered {
		if err := s.associations.Set(ctx, cm, configurationName); err != nil {
			return &AssociationError{Op: "set", Err: err}
		}
	}

	s.fireUpdated(ctx, configurationName, "update_cmodels")
	return nil
}

func (s *service) RemoveAssociationsForConfiguration(ctx context.Context, configurationName string) error {
	if err := s.associations.RemoveForConfiguration(ctx, configurationName); err != nil {
		return &AssociationError{Op: "remove_for_configuration", Err: err}
	}
	return nil
}

func (s *service) fireUpdated(ctx context.Context, name, op string) {
	if s.eventSink == nil {
		return
	}
	// Sink failures never fail the operation.
	_ = s.eventSink.ConfigurationUpdated(ctx, newChangeEvent(name, op))
}
