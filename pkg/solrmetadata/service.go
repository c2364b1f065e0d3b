package solrmetadata

import "context"

// Service defines the main interface for the metadata configuration library
type Service interface {
	// Cmodel association lookup
	GetAssociationsByCmodels(ctx context.Context, cmodels []string) (map[string]Association, error)
	GetCmodels(ctx context.Context, configurationName string) (map[string]string, error)

	// Field table operations
	GetFields(ctx context.Context, configurationName string) ([]Field, error)
	AddFields(ctx context.Context, configurationName string, fields []Field) error
	UpdateFields(ctx context.Context, configurationName string, fields []Field) error
	DeleteFields(ctx context.Context, configurationName string, solrFields []string) error

	// Configuration lifecycle operations
	ConfigurationExists(ctx context.Context, configurationName string) (bool, error)
	GetConfiguration(ctx context.Context, configurationName string) (*Configuration, error)
	CreateConfiguration(ctx context.Context, configurationName string) error
	DeleteConfiguration(ctx context.Context, configurationName string) error
	ListConfigurations(ctx context.Context) ([]string, error)
	RetrieveDescription(ctx context.Context, configurationName string) (DescriptionBlock, error)
	UpdateDescription(ctx context.Context, configurationName string, description DescriptionBlock) error

	// Cmodel maintenance helpers
	UpdateCmodels(ctx context.Context, configurationName string, cmodels []string) error
	RemoveAssociationsForConfiguration(ctx context.Context, configurationName string) error
}
