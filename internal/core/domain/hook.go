package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Hook is an extension registered on one or more queues. The remote
// service returns hooks as free-form objects; the fields the harvest
// consumes are modelled explicitly and everything else is kept in
// Extra so unknown keys survive a round trip.
type Hook struct {
	// ID is the hook identifier.
	ID int64 `json:"id"`

	// Name is the human-readable hook name.
	Name string `json:"name"`

	// Type is the hook kind (function, webhook...).
	Type string `json:"type"`

	// URL is the hook resource URL.
	URL string `json:"url"`

	// Queues lists the queue resource URLs the hook is attached to.
	Queues []string `json:"queues"`

	// Events lists the annotation lifecycle events the hook runs on.
	Events []string `json:"events"`

	// Active reports whether the hook is enabled.
	Active bool `json:"active"`

	// HookTemplate is the resource URL of the template the hook was
	// created from. Empty for hooks built from scratch.
	HookTemplate string `json:"hook_template"`

	// Settings carries the dataset-mapping configurations that drive
	// query resolution.
	Settings HookSettings `json:"settings"`

	// Description is the free-text hook description.
	Description string `json:"description"`

	// Extra holds response keys not modelled above.
	Extra map[string]any `json:"-"`
}

// hookKnownKeys are the response keys decoded into named fields.
var hookKnownKeys = []string{
	"id", "name", "type", "url", "queues", "events", "active",
	"hook_template", "settings", "description",
}

// UnmarshalJSON decodes the named fields and collects every other key
// into Extra.
func (h *Hook) UnmarshalJSON(data []byte) error {
	type alias Hook
	var known alias
	if err := json.Unmarshal(data, &known); err != nil {
		return err
	}

	var all map[string]any
	if err := json.Unmarshal(data, &all); err != nil {
		return err
	}
	for _, key := range hookKnownKeys {
		delete(all, key)
	}

	*h = Hook(known)
	if len(all) > 0 {
		h.Extra = all
	}
	return nil
}

// TemplateID returns the identifier segment of the hook template URL,
// or the empty string when the hook has no template.
func (h *Hook) TemplateID() string {
	return lastURLSegment(h.HookTemplate)
}

// HookSettings is the settings block of a hook.
type HookSettings struct {
	// Configurations are the dataset-mapping rules. A nil slice means
	// the hook carries no configurations at all.
	Configurations []HookConfiguration `json:"configurations"`
}

// HookConfiguration maps schema fields to an external dataset and the
// query templates to run against it.
type HookConfiguration struct {
	// Mapping is the primary target-schema-to-dataset-key mapping.
	Mapping DatasetMapping `json:"mapping"`

	// AdditionalMappings are alternate mappings for other target
	// schema ids. When one matches the schema under analysis it takes
	// precedence over Mapping.
	AdditionalMappings []DatasetMapping `json:"additional_mappings"`

	// QueueIDs is the queue allow-list. Empty means all queues.
	QueueIDs []int64 `json:"queue_ids"`

	// ExcludedQueueIDs is the queue deny-list.
	ExcludedQueueIDs []int64 `json:"excluded_queue_ids"`

	// Source names the dataset and holds the query templates.
	Source QuerySource `json:"source"`
}

// DatasetMapping ties a target schema id to a dataset key.
type DatasetMapping struct {
	// TargetSchemaID is the schema field the mapping applies to.
	TargetSchemaID string `json:"target_schema_id"`

	// DatasetKey is the dataset column the field maps to.
	DatasetKey string `json:"dataset_key"`
}

// QuerySource describes the external dataset a configuration queries.
type QuerySource struct {
	// Dataset is the dataset name.
	Dataset string `json:"dataset"`

	// Queries are the raw query templates, arbitrarily nested
	// JSON-like values containing placeholder tokens.
	Queries []any `json:"queries"`
}

// AllowsQueue reports whether the configuration's queue allow and
// deny lists admit the given queue.
func (c *HookConfiguration) AllowsQueue(queueID int64) bool {
	if len(c.QueueIDs) > 0 && !containsID(c.QueueIDs, queueID) {
		return false
	}
	return !containsID(c.ExcludedQueueIDs, queueID)
}

func containsID(ids []int64, id int64) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}

// HookSet is a registry of fetched hooks keyed by id.
type HookSet struct {
	hooks map[string]*Hook
}

// NewHookSet creates an empty hook registry.
func NewHookSet() *HookSet {
	return &HookSet{hooks: make(map[string]*Hook)}
}

// Add registers a hook. Registering the same id twice fails with
// ErrHookExists.
func (s *HookSet) Add(h *Hook) error {
	key := strconv.FormatInt(h.ID, 10)
	if _, ok := s.hooks[key]; ok {
		return fmt.Errorf("%w: %s", ErrHookExists, key)
	}
	s.hooks[key] = h
	return nil
}

// Get returns the hook with the given id, or nil if unknown.
func (s *HookSet) Get(id string) *Hook {
	return s.hooks[id]
}

// Len returns the number of registered hooks.
func (s *HookSet) Len() int {
	return len(s.hooks)
}
