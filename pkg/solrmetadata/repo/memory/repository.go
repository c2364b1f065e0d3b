// Package memory provides in-memory implementations of the solrmetadata
// stores, used for tests and single-process deployments.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/discoverygarden/islandora-solr-metadata/pkg/solrmetadata"
)

// ConfigStore implements solrmetadata.ConfigStore over a flat dotted-path
// map. Set and Clear stage mutations; Save folds them into the committed
// view, mirroring the staged-save contract of the Postgres store.
type ConfigStore struct {
	mu      sync.RWMutex
	data    map[string]any
	staged  map[string]any
	cleared []string
}

// NewConfigStore creates a new in-memory config store
func NewConfigStore() *ConfigStore {
	return &ConfigStore{
		data:   make(map[string]any),
		staged: make(map[string]any),
	}
}

func isDescendant(path, prefix string) bool {
	return path == prefix || strings.HasPrefix(path, prefix+".")
}

func (s *ConfigStore) clearedSince(path string) bool {
	// Later stages win over earlier clears, so only a clear that is not
	// shadowed by a staged set hides committed data.
	for _, prefix := range s.cleared {
		if isDescendant(path, prefix) {
			if _, restaged := s.staged[path]; !restaged {
				return true
			}
		}
	}
	return false
}

func (s *ConfigStore) Get(ctx context.Context, path string) (any, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if value, ok := s.staged[path]; ok {
		return value, true, nil
	}
	if s.clearedSince(path) {
		return nil, false, nil
	}
	value, ok := s.data[path]
	return value, ok, nil
}

func (s *ConfigStore) Exists(ctx context.Context, path string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for staged := range s.staged {
		if isDescendant(staged, path) {
			return true, nil
		}
	}
	for stored := range s.data {
		if isDescendant(stored, path) && !s.clearedSince(stored) {
			return true, nil
		}
	}
	return false, nil
}

func (s *ConfigStore) Children(ctx context.Context, path string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]struct{})
	collect := func(stored string) {
		if !strings.HasPrefix(stored, path+".") {
			return
		}
		rest := strings.TrimPrefix(stored, path+".")
		name, _, _ := strings.Cut(rest, ".")
		seen[name] = struct{}{}
	}
	for staged := range s.staged {
		collect(staged)
	}
	for stored := range s.data {
		if !s.clearedSince(stored) {
			collect(stored)
		}
	}

	children := make([]string, 0, len(seen))
	for name := range seen {
		children = append(children, name)
	}
	sort.Strings(children)
	return children, nil
}

func (s *ConfigStore) Set(ctx context.Context, path string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.staged[path] = value
	return nil
}

func (s *ConfigStore) Clear(ctx context.Context, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for staged := range s.staged {
		if isDescendant(staged, path) {
			delete(s.staged, staged)
		}
	}
	s.cleared = append(s.cleared, path)
	return nil
}

func (s *ConfigStore) Save(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, prefix := range s.cleared {
		for stored := range s.data {
			if isDescendant(stored, prefix) {
				delete(s.data, stored)
			}
		}
	}
	for path, value := range s.staged {
		s.data[path] = value
	}
	s.staged = make(map[string]any)
	s.cleared = nil
	return nil
}

// AssociationStore implements solrmetadata.AssociationStore using an
// in-memory cmodel map.
type AssociationStore struct {
	mu           sync.RWMutex
	associations map[string]string // cmodel -> configuration_name
}

// NewAssociationStore creates a new in-memory association store
func NewAssociationStore() *AssociationStore {
	return &AssociationStore{
		associations: make(map[string]string),
	}
}

func (s *AssociationStore) GetByCmodels(ctx context.Context, cmodels []string) (map[string]solrmetadata.Association, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make(map[string]solrmetadata.Association)
	for _, cm := range cmodels {
		name, ok := s.associations[cm]
		if !ok {
			continue
		}
		// One record per distinct configuration name.
		if _, ok := result[name]; ok {
			continue
		}
		result[name] = solrmetadata.Association{Cmodel: cm, ConfigurationName: name}
	}
	return result, nil
}

func (s *AssociationStore) ListForConfiguration(ctx context.Context, configurationName string) ([]solrmetadata.Association, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []solrmetadata.Association
	for cm, name := range s.associations {
		if name == configurationName {
			result = append(result, solrmetadata.Association{Cmodel: cm, ConfigurationName: name})
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Cmodel < result[j].Cmodel
	})
	return result, nil
}

func (s *AssociationStore) Set(ctx context.Context, cmodel, configurationName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.associations[cmodel] = configurationName
	return nil
}

func (s *AssociationStore) Remove(ctx context.Context, cmodel string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.associations, cmodel)
	return nil
}

func (s *AssociationStore) RemoveForConfiguration(ctx context.Context, configurationName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for cm, name := range s.associations {
		if name == configurationName {
			delete(s.associations, cm)
		}
	}
	return nil
}
