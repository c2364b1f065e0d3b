package solrmetadata_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/discoverygarden/islandora-solr-metadata/pkg/solrmetadata"
	"github.com/discoverygarden/islandora-solr-metadata/pkg/solrmetadata/fieldconfig"
	"github.com/discoverygarden/islandora-solr-metadata/pkg/solrmetadata/repo/memory"
)

func TestServiceCreation(t *testing.T) {
	store := memory.NewConfigStore()

	tests := []struct {
		name        string
		options     []solrmetadata.Option
		expectError bool
	}{
		{
			name:        "no options should fail",
			options:     []solrmetadata.Option{},
			expectError: true,
		},
		{
			name: "missing field service should fail",
			options: []solrmetadata.Option{
				solrmetadata.WithConfigStore(store),
				solrmetadata.WithAssociationStore(memory.NewAssociationStore()),
			},
			expectError: true,
		},
		{
			name: "all stores should succeed",
			options: []solrmetadata.Option{
				solrmetadata.WithConfigStore(store),
				solrmetadata.WithAssociationStore(memory.NewAssociationStore()),
				solrmetadata.WithFieldService(fieldconfig.New(store)),
			},
			expectError: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := solrmetadata.New(tt.options...)

			if tt.expectError {
				assert.Error(t, err)
				assert.Nil(t, svc)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, svc)
			}
		})
	}
}

func setupTestService(t *testing.T) (solrmetadata.Service, *memory.AssociationStore) {
	store := memory.NewConfigStore()
	associations := memory.NewAssociationStore()

	svc, err := solrmetadata.New(
		solrmetadata.WithConfigStore(store),
		solrmetadata.WithAssociationStore(associations),
		solrmetadata.WithFieldService(fieldconfig.New(store)),
		solrmetadata.WithEventSink(solrmetadata.NewNoopEventSink()),
	)
	require.NoError(t, err)
	require.NotNil(t, svc)

	return svc, associations
}

func TestGetAssociationsByCmodels(t *testing.T) {
	svc, associations := setupTestService(t)
	ctx := context.Background()

	require.NoError(t, associations.Set(ctx, "islandora:sp_basic_image", "basic_image"))
	require.NoError(t, associations.Set(ctx, "islandora:sp_large_image_cmodel", "basic_image"))
	require.NoError(t, associations.Set(ctx, "islandora:bookCModel", "book"))

	t.Run("EmptySetReturnsEmptyMapping", func(t *testing.T) {
		result, err := svc.GetAssociationsByCmodels(ctx, nil)
		assert.NoError(t, err)
		assert.Empty(t, result)
	})

	t.Run("SentinelIsExcluded", func(t *testing.T) {
		withSentinel, err := svc.GetAssociationsByCmodels(ctx, []string{
			solrmetadata.FedoraObjectCmodel,
			"islandora:bookCModel",
		})
		require.NoError(t, err)

		withoutSentinel, err := svc.GetAssociationsByCmodels(ctx, []string{"islandora:bookCModel"})
		require.NoError(t, err)

		assert.Equal(t, withoutSentinel, withSentinel)
		assert.Len(t, withSentinel, 1)
		assert.Equal(t, "book", withSentinel["book"].ConfigurationName)
	})

	t.Run("SentinelOnlyReturnsEmptyMapping", func(t *testing.T) {
		result, err := svc.GetAssociationsByCmodels(ctx, []string{solrmetadata.FedoraObjectCmodel})
		assert.NoError(t, err)
		assert.Empty(t, result)
	})

	t.Run("OneRecordPerConfiguration", func(t *testing.T) {
		result, err := svc.GetAssociationsByCmodels(ctx, []string{
			"islandora:sp_basic_image",
			"islandora:sp_large_image_cmodel",
		})
		require.NoError(t, err)

		// Both cmodels map to the same configuration; only one record comes
		// back, keyed by configuration name.
		assert.Len(t, result, 1)
		assert.Contains(t, result, "basic_image")
	})

	t.Run("NoMatchReturnsEmptyMapping", func(t *testing.T) {
		result, err := svc.GetAssociationsByCmodels(ctx, []string{"islandora:unknown"})
		assert.NoError(t, err)
		assert.Empty(t, result)
	})
}

func TestGetCmodels(t *testing.T) {
	svc, _ := setupTestService(t)
	ctx := context.Background()

	t.Run("AbsentConfigurationReturnsEmptyMapping", func(t *testing.T) {
		result, err := svc.GetCmodels(ctx, "missing")
		assert.NoError(t, err)
		assert.Empty(t, result)
	})

	t.Run("SelfMappedSet", func(t *testing.T) {
		require.NoError(t, svc.UpdateCmodels(ctx, "book", []string{
			"islandora:bookCModel",
			"islandora:pageCModel",
		}))

		result, err := svc.GetCmodels(ctx, "book")
		require.NoError(t, err)
		assert.Equal(t, map[string]string{
			"islandora:bookCModel": "islandora:bookCModel",
			"islandora:pageCModel": "islandora:pageCModel",
		}, result)
	})
}

func TestFieldOperations(t *testing.T) {
	svc, _ := setupTestService(t)
	ctx := context.Background()

	fields := []solrmetadata.Field{
		{SolrField: "dc.title", DisplayLabel: "Title", Weight: 0},
		{SolrField: "dc.creator", DisplayLabel: "Creator", Weight: 1},
		{SolrField: "dc.date", DisplayLabel: "Date", Weight: 2},
	}

	t.Run("RoundTrip", func(t *testing.T) {
		require.NoError(t, svc.UpdateFields(ctx, "book", fields))

		got, err := svc.GetFields(ctx, "book")
		require.NoError(t, err)
		assert.Equal(t, fields, got)
	})

	t.Run("UpsertOverwritesExisting", func(t *testing.T) {
		require.NoError(t, svc.UpdateFields(ctx, "book", []solrmetadata.Field{
			{SolrField: "dc.title", DisplayLabel: "Object Title", Weight: 0},
		}))

		got, err := svc.GetFields(ctx, "book")
		require.NoError(t, err)
		require.Len(t, got, 3)
		assert.Equal(t, "Object Title", got[0].DisplayLabel)
	})

	t.Run("OrderedByWeight", func(t *testing.T) {
		require.NoError(t, svc.UpdateFields(ctx, "book", []solrmetadata.Field{
			{SolrField: "dc.identifier", DisplayLabel: "Identifier", Weight: -1},
		}))

		got, err := svc.GetFields(ctx, "book")
		require.NoError(t, err)
		require.Len(t, got, 4)
		assert.Equal(t, "dc.identifier", got[0].SolrField)
	})

	t.Run("DeleteIsIdempotent", func(t *testing.T) {
		require.NoError(t, svc.DeleteFields(ctx, "book", []string{"dc.date"}))

		got, err := svc.GetFields(ctx, "book")
		require.NoError(t, err)
		for _, f := range got {
			assert.NotEqual(t, "dc.date", f.SolrField)
		}

		// Repeating the delete is a no-op, not an error.
		assert.NoError(t, svc.DeleteFields(ctx, "book", []string{"dc.date"}))
	})

	t.Run("AddFieldsIsUpdateFields", func(t *testing.T) {
		require.NoError(t, svc.AddFields(ctx, "serial", fields))

		got, err := svc.GetFields(ctx, "serial")
		require.NoError(t, err)
		assert.Equal(t, fields, got)
	})
}

func TestDescriptionOperations(t *testing.T) {
	svc, _ := setupTestService(t)
	ctx := context.Background()

	block := solrmetadata.DescriptionBlock{
		DescriptionField: "dc.description",
		DescriptionLabel: "Description",
		Truncation: solrmetadata.TruncationOptions{
			TruncationType:    solrmetadata.TruncationCharacter,
			MaxLength:         250,
			WordSafe:          true,
			Ellipsis:          "...",
			MinWordsafeLength: 1,
		},
	}

	t.Run("AbsentConfigurationYieldsEmptyBlock", func(t *testing.T) {
		got, err := svc.RetrieveDescription(ctx, "missing")
		assert.NoError(t, err)
		assert.True(t, got.IsZero())
	})

	t.Run("RoundTrip", func(t *testing.T) {
		require.NoError(t, svc.UpdateDescription(ctx, "book", block))

		got, err := svc.RetrieveDescription(ctx, "book")
		require.NoError(t, err)
		assert.Equal(t, block, got)
	})

	t.Run("EmptyFieldClearsBlock", func(t *testing.T) {
		require.NoError(t, svc.UpdateDescription(ctx, "book", solrmetadata.DescriptionBlock{
			DescriptionLabel: "ignored",
			Truncation:       solrmetadata.TruncationOptions{MaxLength: 10},
		}))

		got, err := svc.RetrieveDescription(ctx, "book")
		require.NoError(t, err)
		assert.True(t, got.IsZero())
	})
}

func TestConfigurationLifecycle(t *testing.T) {
	svc, _ := setupTestService(t)
	ctx := context.Background()

	t.Run("ExistsFollowsWrites", func(t *testing.T) {
		exists, err := svc.ConfigurationExists(ctx, "audio")
		require.NoError(t, err)
		assert.False(t, exists)

		require.NoError(t, svc.UpdateFields(ctx, "audio", []solrmetadata.Field{
			{SolrField: "dc.title", DisplayLabel: "Title"},
		}))

		exists, err = svc.ConfigurationExists(ctx, "audio")
		require.NoError(t, err)
		assert.True(t, exists)

		require.NoError(t, svc.DeleteConfiguration(ctx, "audio"))

		exists, err = svc.ConfigurationExists(ctx, "audio")
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("UpdateDescriptionCreatesConfiguration", func(t *testing.T) {
		require.NoError(t, svc.UpdateDescription(ctx, "video", solrmetadata.DescriptionBlock{
			DescriptionField: "dc.description",
		}))

		exists, err := svc.ConfigurationExists(ctx, "video")
		require.NoError(t, err)
		assert.True(t, exists)
	})

	t.Run("CreateConfiguration", func(t *testing.T) {
		require.NoError(t, svc.CreateConfiguration(ctx, "newspaper"))

		exists, err := svc.ConfigurationExists(ctx, "newspaper")
		require.NoError(t, err)
		assert.True(t, exists)

		err = svc.CreateConfiguration(ctx, "newspaper")
		assert.ErrorIs(t, err, solrmetadata.ErrConfigurationExists)
	})

	t.Run("DeleteAbsentConfigurationIsNoop", func(t *testing.T) {
		assert.NoError(t, svc.DeleteConfiguration(ctx, "never-existed"))
	})

	t.Run("DeleteDoesNotCascadeToAssociations", func(t *testing.T) {
		require.NoError(t, svc.UpdateCmodels(ctx, "compound", []string{"islandora:compoundCModel"}))
		require.NoError(t, svc.DeleteConfiguration(ctx, "compound"))

		result, err := svc.GetAssociationsByCmodels(ctx, []string{"islandora:compoundCModel"})
		require.NoError(t, err)
		assert.Len(t, result, 1)

		require.NoError(t, svc.RemoveAssociationsForConfiguration(ctx, "compound"))

		result, err = svc.GetAssociationsByCmodels(ctx, []string{"islandora:compoundCModel"})
		require.NoError(t, err)
		assert.Empty(t, result)
	})

	t.Run("ListConfigurations", func(t *testing.T) {
		names, err := svc.ListConfigurations(ctx)
		require.NoError(t, err)
		assert.Contains(t, names, "video")
		assert.Contains(t, names, "newspaper")
		assert.NotContains(t, names, "audio")
	})
}

func TestGetConfiguration(t *testing.T) {
	svc, _ := setupTestService(t)
	ctx := context.Background()

	t.Run("AbsentConfiguration", func(t *testing.T) {
		configuration, err := svc.GetConfiguration(ctx, "missing")
		assert.ErrorIs(t, err, solrmetadata.ErrConfigurationNotFound)
		assert.Nil(t, configuration)
	})

	t.Run("AssembledView", func(t *testing.T) {
		require.NoError(t, svc.UpdateCmodels(ctx, "book", []string{"islandora:bookCModel"}))
		require.NoError(t, svc.UpdateDescription(ctx, "book", solrmetadata.DescriptionBlock{
			DescriptionField: "dc.description",
			DescriptionLabel: "Description",
		}))

		configuration, err := svc.GetConfiguration(ctx, "book")
		require.NoError(t, err)
		assert.Equal(t, "book", configuration.Name)
		assert.Equal(t, []string{"islandora:bookCModel"}, configuration.Cmodels)
		assert.Equal(t, "dc.description", configuration.Description.DescriptionField)
	})
}

func TestUpdateCmodelsReconcilesAssociations(t *testing.T) {
	svc, _ := setupTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.UpdateCmodels(ctx, "book", []string{
		"islandora:bookCModel",
		"islandora:pageCModel",
	}))

	// Replacing the list drops stale table rows and keeps the rest.
	require.NoError(t, svc.UpdateCmodels(ctx, "book", []string{
		"islandora:bookCModel",
		"islandora:newspaperCModel",
	}))

	result, err := svc.GetAssociationsByCmodels(ctx, []string{"islandora:pageCModel"})
	require.NoError(t, err)
	assert.Empty(t, result)

	result, err = svc.GetAssociationsByCmodels(ctx, []string{"islandora:newspaperCModel"})
	require.NoError(t, err)
	assert.Contains(t, result, "book")

	cmodels, err := svc.GetCmodels(ctx, "book")
	require.NoError(t, err)
	assert.Len(t, cmodels, 2)
}
