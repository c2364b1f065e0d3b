// Package solrmetadata manages metadata-display configurations for a
// digital-repository search system. A configuration associates repository
// content models with a named bundle of display rules: an ordered list of
// Solr-backed display fields and an optional description block with
// truncation parameters.
//
// It exposes a single Service interface over three injected collaborators:
// a hierarchical key-value ConfigStore holding each configuration's subtree,
// an AssociationStore backing the content-model lookup table, and a
// FieldService owning per-configuration field records. Memory and Postgres
// implementations of the stores are provided under subpackages; a
// ConfigStore-backed FieldService lives in the fieldconfig subpackage.
//
// Absence is not an error at this layer: unknown configurations, fields and
// associations resolve to empty results, and deletions are idempotent.
// Callers that need hard existence semantics use ConfigurationExists.
package solrmetadata
