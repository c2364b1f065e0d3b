// Package fieldconfig provides a solrmetadata.FieldService that keeps each
// configuration's field list in the ConfigStore, serialized under
// "configs.<name>.fields". The service layer treats FieldService as an
// injected collaborator, so deployments may swap this implementation for one
// with its own storage.
package fieldconfig

import (
	"context"
	"sort"

	"github.com/discoverygarden/islandora-solr-metadata/pkg/solrmetadata"
)

// Service implements solrmetadata.FieldService on top of a ConfigStore.
type Service struct {
	store solrmetadata.ConfigStore
}

// New creates a config-store-backed field service
func New(store solrmetadata.ConfigStore) *Service {
	return &Service{store: store}
}

func (s *Service) load(ctx context.Context, configurationName string) ([]solrmetadata.Field, error) {
	value, ok, err := s.store.Get(ctx, solrmetadata.FieldsPath(configurationName))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return solrmetadata.DecodeFields(value)
}

func (s *Service) GetFields(ctx context.Context, configurationName string) ([]solrmetadata.Field, error) {
	fields, err := s.load(ctx, configurationName)
	if err != nil {
		return nil, err
	}

	// Weight ascending; the stored slice keeps insertion order, so a stable
	// sort preserves it for equal weights.
	sort.SliceStable(fields, func(i, j int) bool {
		return fields[i].Weight < fields[j].Weight
	})
	return fields, nil
}

func (s *Service) SetFields(ctx context.Context, configurationName string, fields []solrmetadata.Field) error {
	existing, err := s.load(ctx, configurationName)
	if err != nil {
		return err
	}

	index := make(map[string]int, len(existing))
	for i, f := range existing {
		index[f.SolrField] = i
	}
	for _, f := range fields {
		if i, ok := index[f.SolrField]; ok {
			// Last write wins on an existing solr field.
			existing[i] = f
			continue
		}
		index[f.SolrField] = len(existing)
		existing = append(existing, f)
	}

	if err := s.store.Set(ctx, solrmetadata.FieldsPath(configurationName), existing); err != nil {
		return err
	}
	return s.store.Save(ctx)
}

func (s *Service) DeleteFields(ctx context.Context, configurationName string, solrFields []string) error {
	existing, err := s.load(ctx, configurationName)
	if err != nil {
		return err
	}
	if len(existing) == 0 || len(solrFields) == 0 {
		return nil
	}

	drop := make(map[string]struct{}, len(solrFields))
	for _, name := range solrFields {
		drop[name] = struct{}{}
	}
	kept := existing[:0]
	for _, f := range existing {
		if _, ok := drop[f.SolrField]; !ok {
			kept = append(kept, f)
		}
	}
	if len(kept) == len(existing) {
		// Nothing removed; deleting absent fields is a no-op.
		return nil
	}

	if err := s.store.Set(ctx, solrmetadata.FieldsPath(configurationName), kept); err != nil {
		return err
	}
	return s.store.Save(ctx)
}
