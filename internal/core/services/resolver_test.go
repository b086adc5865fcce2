package services

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/altum-labs/docharvest/internal/core/domain"
)

func resolverAnnotation(id, queueID int64, content ...domain.FieldNode) *domain.Annotation {
	return &domain.Annotation{
		ID: id,
		Metadata: map[string]any{
			"queue": fmt.Sprintf("https://api.example.com/v1/queues/%d", queueID),
		},
		Content: content,
	}
}

func valueNode(schemaID, value string) domain.FieldNode {
	return domain.FieldNode{
		SchemaID: schemaID,
		Content:  &domain.FieldContent{Value: value},
	}
}

func matchingConfiguration() domain.HookConfiguration {
	return domain.HookConfiguration{
		Mapping: domain.DatasetMapping{TargetSchemaID: "vendor_id", DatasetKey: "vendor"},
		Source: domain.QuerySource{
			Dataset: "suppliers",
			Queries: []any{map[string]any{"vendor": "{ vendor_id }"}},
		},
	}
}

func TestMatchHooks_FiltersByTemplate(t *testing.T) {
	fromTemplate := &domain.Hook{ID: 901, HookTemplate: "https://api.example.com/v1/hook_templates/42"}
	otherTemplate := &domain.Hook{ID: 902, HookTemplate: "https://api.example.com/v1/hook_templates/99"}
	scratch := &domain.Hook{ID: 903}

	hooks := domain.NewHookSet()
	for _, h := range []*domain.Hook{fromTemplate, otherTemplate, scratch} {
		require.NoError(t, hooks.Add(h))
	}

	a := resolverAnnotation(1, 5)
	a.RelatedHookURLs = []string{
		"https://api.example.com/v1/hooks/901",
		"https://api.example.com/v1/hooks/902",
		"https://api.example.com/v1/hooks/903",
	}
	collection := domain.Collection{1: a}

	matches := MatchHooks(collection, hooks, "42")
	require.Len(t, matches, 1)
	assert.Equal(t, int64(901), matches[0].Hook.ID)
	assert.Equal(t, int64(1), matches[0].Annotation.ID)
}

func TestResolveQueries_SubstitutesPlaceholders(t *testing.T) {
	hook := &domain.Hook{
		ID:       901,
		Settings: domain.HookSettings{Configurations: []domain.HookConfiguration{matchingConfiguration()}},
	}
	a := resolverAnnotation(1, 5, valueNode("vendor_id", "ACME-77"))

	queries, itemErrs := ResolveQueries(
		[]HookMatch{{Hook: hook, Annotation: a}},
		ResolveOptions{TargetSchemaID: "vendor_id"},
	)
	require.Empty(t, itemErrs)
	require.Len(t, queries, 1)

	assert.Equal(t, "1-901-1", queries[0].Signature)
	assert.Equal(t, "suppliers", queries[0].Dataset)
	assert.Equal(t, "vendor", queries[0].DatasetKey)
	assert.Equal(t, map[string]any{"vendor": "ACME-77"}, queries[0].Query)
}

func TestResolveQueries_QueueAllowListOnlyAppliesWhenChecked(t *testing.T) {
	conf := matchingConfiguration()
	conf.QueueIDs = []int64{5}
	hook := &domain.Hook{
		ID:       901,
		Settings: domain.HookSettings{Configurations: []domain.HookConfiguration{conf}},
	}
	// Document sits in queue 7, outside the allow-list.
	a := resolverAnnotation(1, 7, valueNode("vendor_id", "ACME-77"))
	matches := []HookMatch{{Hook: hook, Annotation: a}}

	queries, itemErrs := ResolveQueries(matches, ResolveOptions{
		TargetSchemaID:   "vendor_id",
		CheckQueueLimits: true,
	})
	assert.Empty(t, itemErrs)
	assert.Empty(t, queries)

	queries, itemErrs = ResolveQueries(matches, ResolveOptions{TargetSchemaID: "vendor_id"})
	assert.Empty(t, itemErrs)
	assert.Len(t, queries, 1)
}

func TestResolveQueries_DenyListBlocksQueue(t *testing.T) {
	conf := matchingConfiguration()
	conf.ExcludedQueueIDs = []int64{5}
	hook := &domain.Hook{
		ID:       901,
		Settings: domain.HookSettings{Configurations: []domain.HookConfiguration{conf}},
	}
	a := resolverAnnotation(1, 5, valueNode("vendor_id", "ACME-77"))

	queries, itemErrs := ResolveQueries(
		[]HookMatch{{Hook: hook, Annotation: a}},
		ResolveOptions{TargetSchemaID: "vendor_id", CheckQueueLimits: true},
	)
	assert.Empty(t, itemErrs)
	assert.Empty(t, queries)
}

func TestResolveQueries_AdditionalMappingOverridesDatasetKey(t *testing.T) {
	conf := domain.HookConfiguration{
		Mapping: domain.DatasetMapping{TargetSchemaID: "other_field", DatasetKey: "other"},
		AdditionalMappings: []domain.DatasetMapping{
			{TargetSchemaID: "vendor_id", DatasetKey: "vendor_override"},
		},
		Source: domain.QuerySource{
			Dataset: "suppliers",
			Queries: []any{"{ vendor_id }"},
		},
	}
	hook := &domain.Hook{
		ID:       901,
		Settings: domain.HookSettings{Configurations: []domain.HookConfiguration{conf}},
	}
	a := resolverAnnotation(1, 5, valueNode("vendor_id", "ACME-77"))

	queries, itemErrs := ResolveQueries(
		[]HookMatch{{Hook: hook, Annotation: a}},
		ResolveOptions{TargetSchemaID: "vendor_id"},
	)
	require.Empty(t, itemErrs)
	require.Len(t, queries, 1)
	assert.Equal(t, "vendor_override", queries[0].DatasetKey)
	assert.Equal(t, "ACME-77", queries[0].Query)
}

func TestResolveQueries_SignatureCountsMatchingConfigurationsOnly(t *testing.T) {
	unrelated := matchingConfiguration()
	unrelated.Mapping.TargetSchemaID = "something_else"
	hook := &domain.Hook{
		ID: 901,
		Settings: domain.HookSettings{Configurations: []domain.HookConfiguration{
			unrelated,
			matchingConfiguration(),
			matchingConfiguration(),
		}},
	}
	a := resolverAnnotation(4, 5, valueNode("vendor_id", "ACME-77"))

	queries, itemErrs := ResolveQueries(
		[]HookMatch{{Hook: hook, Annotation: a}},
		ResolveOptions{TargetSchemaID: "vendor_id"},
	)
	require.Empty(t, itemErrs)
	require.Len(t, queries, 2)
	assert.Equal(t, "4-901-1", queries[0].Signature)
	assert.Equal(t, "4-901-2", queries[1].Signature)
}

func TestResolveQueries_NilConfigurationsIsSchemaMismatch(t *testing.T) {
	hook := &domain.Hook{ID: 901}
	a := resolverAnnotation(1, 5)

	queries, itemErrs := ResolveQueries(
		[]HookMatch{{Hook: hook, Annotation: a}},
		ResolveOptions{TargetSchemaID: "vendor_id"},
	)
	assert.Empty(t, queries)
	require.Len(t, itemErrs, 1)
	assert.Equal(t, int64(1), itemErrs[0].ID)
	assert.ErrorIs(t, itemErrs[0].Err, domain.ErrSchemaMismatch)
}

func TestResolveQueries_PlaceholderFailureDoesNotStopOthers(t *testing.T) {
	conf := matchingConfiguration()
	conf.Source.Queries = []any{"{ missing_field }", "{ vendor_id }"}
	hook := &domain.Hook{
		ID:       901,
		Settings: domain.HookSettings{Configurations: []domain.HookConfiguration{conf}},
	}
	a := resolverAnnotation(1, 5, valueNode("vendor_id", "ACME-77"))

	queries, itemErrs := ResolveQueries(
		[]HookMatch{{Hook: hook, Annotation: a}},
		ResolveOptions{TargetSchemaID: "vendor_id"},
	)
	require.Len(t, itemErrs, 1)
	assert.ErrorIs(t, itemErrs[0].Err, domain.ErrSchemaMismatch)
	require.Len(t, queries, 1)
	assert.Equal(t, "ACME-77", queries[0].Query)
}
