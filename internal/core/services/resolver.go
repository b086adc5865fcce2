package services

import (
	"fmt"

	"github.com/altum-labs/docharvest/internal/core/domain"
	"github.com/altum-labs/docharvest/internal/logger"
)

// HookMatch pairs a hook with an annotation whose queue lists it.
type HookMatch struct {
	Hook       *domain.Hook
	Annotation *domain.Annotation
}

// MatchHooks returns the (hook, annotation) pairs whose hook was
// created from the given template. Hooks without a template never
// match. Annotations are visited in id order so the output is stable.
func MatchHooks(collection domain.Collection, hooks *domain.HookSet, templateID string) []HookMatch {
	var matches []HookMatch
	for _, id := range collection.SortedIDs() {
		a := collection[id]
		for _, url := range a.RelatedHookURLs {
			hook := hooks.Get(lastSegment(url))
			if hook == nil || hook.TemplateID() == "" {
				continue
			}
			if hook.TemplateID() == templateID {
				matches = append(matches, HookMatch{Hook: hook, Annotation: a})
			}
		}
	}
	return matches
}

// ResolvedQuery is one ready-to-run dataset query produced for a
// (document, hook, configuration, template) combination.
type ResolvedQuery struct {
	// Signature disambiguates the source of the query: document id,
	// hook id and the 1-based sequence number of the matching
	// configuration within its hook.
	Signature string `json:"signature"`

	// Query is the template with every placeholder substituted.
	Query any `json:"query"`

	// Dataset is the external dataset name the query runs against.
	Dataset string `json:"dataset"`

	// DatasetKey is the dataset column the target field maps to.
	DatasetKey string `json:"dataset_key"`

	// Hook and Annotation are back-references for presentation code.
	Hook       *domain.Hook       `json:"-"`
	Annotation *domain.Annotation `json:"-"`
}

// ResolveOptions control query resolution.
type ResolveOptions struct {
	// TargetSchemaID is the schema field under analysis.
	TargetSchemaID string

	// CheckQueueLimits enables the queue allow/deny-list filter.
	CheckQueueLimits bool
}

// ResolveQueries produces the concrete queries each matched document
// should run against its hooks' datasets. A hook without a
// configurations list, an unparsable queue id when queue checking is
// on, and a placeholder that cannot be resolved are per-item errors;
// resolution of the remaining combinations continues.
func ResolveQueries(matches []HookMatch, opts ResolveOptions) ([]ResolvedQuery, []ItemError) {
	var queries []ResolvedQuery
	var itemErrs []ItemError

	for _, match := range matches {
		hook, a := match.Hook, match.Annotation

		if match.Hook.Settings.Configurations == nil {
			itemErrs = append(itemErrs, ItemError{
				ID:  a.ID,
				Err: fmt.Errorf("%w: hook %d has no configurations", domain.ErrSchemaMismatch, hook.ID),
			})
			continue
		}

		confNumber := 0
		for i := range hook.Settings.Configurations {
			conf := &hook.Settings.Configurations[i]

			if opts.CheckQueueLimits {
				queueID, err := a.QueueID()
				if err != nil {
					itemErrs = append(itemErrs, ItemError{ID: a.ID, Err: err})
					continue
				}
				if !conf.AllowsQueue(queueID) {
					logger.Debug("resolver: hook %d configuration filtered by queue %d", hook.ID, queueID)
					continue
				}
			}

			additional := additionalMappingFor(conf, opts.TargetSchemaID)
			if conf.Mapping.TargetSchemaID != opts.TargetSchemaID &&
				(additional == nil || additional.TargetSchemaID != opts.TargetSchemaID) {
				continue
			}
			confNumber++

			// The additional mapping is the more specific override;
			// its dataset key wins when both are present.
			datasetKey := conf.Mapping.DatasetKey
			if additional != nil && additional.DatasetKey != "" {
				datasetKey = additional.DatasetKey
			}

			signature := fmt.Sprintf("%d-%d-%d", a.ID, hook.ID, confNumber)
			for _, template := range conf.Source.Queries {
				resolved, err := domain.ResolvePlaceholders(template, a.Content)
				if err != nil {
					itemErrs = append(itemErrs, ItemError{
						ID:  a.ID,
						Err: fmt.Errorf("hook %d configuration %d: %w", hook.ID, confNumber, err),
					})
					continue
				}
				queries = append(queries, ResolvedQuery{
					Signature:  signature,
					Query:      resolved,
					Dataset:    conf.Source.Dataset,
					DatasetKey: datasetKey,
					Hook:       hook,
					Annotation: a,
				})
			}
		}
	}

	return queries, itemErrs
}

func additionalMappingFor(conf *domain.HookConfiguration, targetSchemaID string) *domain.DatasetMapping {
	for i := range conf.AdditionalMappings {
		if conf.AdditionalMappings[i].TargetSchemaID == targetSchemaID {
			return &conf.AdditionalMappings[i]
		}
	}
	return nil
}

func lastSegment(url string) string {
	for i := len(url) - 1; i >= 0; i-- {
		if url[i] == '/' {
			return url[i+1:]
		}
	}
	return url
}
