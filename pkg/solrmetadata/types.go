package solrmetadata

import (
	"time"

	"github.com/google/uuid"
)

// FedoraObjectCmodel is the base content model carried by every repository
// object. It never discriminates between configurations and is stripped from
// any cmodel set before an association lookup.
const FedoraObjectCmodel = "fedora-system:FedoraObject-3.0"

// TruncationType selects how a description value is shortened for display.
type TruncationType string

// Truncation type constants (typed).
const (
	TruncationCharacter TruncationType = "character"
	TruncationWords     TruncationType = "words"
)

// Field is a single display field within a configuration. SolrField is the
// indexed search field the displayed value is read from and is unique within
// a configuration. Weight drives display order: lower sorts first, ties keep
// insertion order.
type Field struct {
	SolrField    string `json:"solr_field"`
	DisplayLabel string `json:"display_label"`
	Weight       int    `json:"weight"`
	Hyperlink    bool   `json:"hyperlink,omitempty"`
	DateFormat   string `json:"date_format,omitempty"`
}

// TruncationOptions are stored verbatim and consumed by an external
// truncation routine; this package never interprets them.
type TruncationOptions struct {
	TruncationType    TruncationType `json:"truncation_type,omitempty"`
	MaxLength         int            `json:"max_length,omitempty"`
	WordSafe          bool           `json:"word_safe,omitempty"`
	Ellipsis          string         `json:"ellipsis,omitempty"`
	MinWordsafeLength int            `json:"min_wordsafe_length,omitempty"`
}

// DescriptionBlock is the optional per-configuration description display
// rule. A zero value means no description is configured.
type DescriptionBlock struct {
	DescriptionField string            `json:"description_field"`
	DescriptionLabel string            `json:"description_label"`
	Truncation       TruncationOptions `json:"truncation"`
}

// IsZero reports whether no description attribute is set.
func (d DescriptionBlock) IsZero() bool {
	return d.DescriptionField == "" && d.DescriptionLabel == "" && d.Truncation == (TruncationOptions{})
}

// Association is one row of the cmodel lookup table: the mapping from a
// content model to the configuration that displays objects carrying it.
type Association struct {
	Cmodel            string `json:"cmodel"`
	ConfigurationName string `json:"configuration_name"`
}

// Configuration is the assembled view of a named configuration, as served to
// UI callers. Fields live with the FieldService and are fetched separately.
type Configuration struct {
	Name        string           `json:"name"`
	Cmodels     []string         `json:"cmodels"`
	Description DescriptionBlock `json:"description"`
}

// ChangeEvent describes a configuration mutation delivered to an EventSink.
type ChangeEvent struct {
	ID                uuid.UUID `json:"id"`
	ConfigurationName string    `json:"configuration_name"`
	Op                string    `json:"op"`
	OccurredAt        time.Time `json:"occurred_at"`
}
