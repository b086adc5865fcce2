package domain

import (
	"fmt"
	"regexp"
	"strings"
)

// Placeholder tokens embedded in query template strings.
//
//	{field_id}          whole-token replacement, single-valued field
//	{field_id | regex}  in-place replacement inside a larger pattern
var (
	plainPlaceholderRe = regexp.MustCompile(`\{\s*([\w-]+)\s*\}`)
	regexPlaceholderRe = regexp.MustCompile(`\{\s*([\w-]+)\s*\|\s*regex\s*\}`)
)

// ResolvePlaceholders walks a query template and substitutes every
// placeholder token with the referenced field's value from the given
// field tree. The template is never mutated; arrays and objects are
// rebuilt, so the result is a deep copy. Non-string leaves pass
// through unchanged.
//
// A plain placeholder must resolve to exactly one field: zero matches
// fail with ErrSchemaMismatch, several with ErrUnsupportedShape. A
// regex placeholder takes the first match. An empty resolved value is
// substituted as a single space so the surrounding query stays
// syntactically valid.
func ResolvePlaceholders(template any, content []FieldNode) (any, error) {
	switch value := template.(type) {
	case string:
		return resolveString(value, content)

	case []any:
		resolved := make([]any, len(value))
		for i, item := range value {
			item, err := ResolvePlaceholders(item, content)
			if err != nil {
				return nil, err
			}
			resolved[i] = item
		}
		return resolved, nil

	case map[string]any:
		resolved := make(map[string]any, len(value))
		for key, item := range value {
			item, err := ResolvePlaceholders(item, content)
			if err != nil {
				return nil, err
			}
			resolved[key] = item
		}
		return resolved, nil

	default:
		return value, nil
	}
}

func resolveString(s string, content []FieldNode) (string, error) {
	if token := regexPlaceholderRe.FindStringSubmatch(s); token != nil {
		value, err := singleOrFirstValue(content, token[1], false)
		if err != nil {
			return "", err
		}
		return strings.ReplaceAll(s, token[0], value), nil
	}

	if token := plainPlaceholderRe.FindStringSubmatch(s); token != nil {
		value, err := singleOrFirstValue(content, token[1], true)
		if err != nil {
			return "", err
		}
		if value == "" {
			value = " "
		}
		return strings.ReplaceAll(s, token[0], value), nil
	}

	return s, nil
}

func singleOrFirstValue(content []FieldNode, fieldID string, exactlyOne bool) (string, error) {
	matches := FindBySchemaID(content, fieldID)
	if len(matches) == 0 {
		return "", fmt.Errorf("%w: placeholder field %q has no match", ErrSchemaMismatch, fieldID)
	}
	if exactlyOne && len(matches) > 1 {
		return "", fmt.Errorf("%w: placeholder field %q matched %d nodes", ErrUnsupportedShape, fieldID, len(matches))
	}
	if matches[0].Content == nil {
		return "", nil
	}
	return matches[0].Content.Value, nil
}
