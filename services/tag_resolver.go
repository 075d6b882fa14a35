package services

import (
	"strings"

	"catalog-admin/models"
)

// TagResolver reconciles typed tag values with the tags that already exist
// remotely. Lookups against remote tags ignore case; the draft's own list is
// compared exactly.
type TagResolver struct {
	existing []models.Tag
}

func NewTagResolver(existing []models.Tag) *TagResolver {
	return &TagResolver{existing: append([]models.Tag{}, existing...)}
}

// Suggest returns existing tags whose value contains input, ignoring case.
func (r *TagResolver) Suggest(input string) []models.Tag {
	out := []models.Tag{}
	if input == "" {
		return out
	}
	needle := strings.ToLower(input)
	for _, t := range r.existing {
		if strings.Contains(strings.ToLower(t.Value), needle) {
			out = append(out, t)
		}
	}
	return out
}

// Resolve maps typed input to the canonical value of a matching existing tag,
// or to the trimmed input itself when nothing matches.
func (r *TagResolver) Resolve(input string) (string, bool) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return "", false
	}
	if t, ok := r.match(trimmed); ok {
		return t.Value, true
	}
	return trimmed, true
}

// Add appends the resolved value unless it is blank or already present.
func (r *TagResolver) Add(tags []string, input string) ([]string, bool) {
	value, ok := r.Resolve(input)
	if !ok {
		return tags, false
	}
	return appendUnique(tags, value)
}

func (r *TagResolver) SelectSuggestion(tags []string, tag models.Tag) ([]string, bool) {
	if tag.Value == "" {
		return tags, false
	}
	return appendUnique(tags, tag.Value)
}

// Remove drops the first entry equal to value.
func (r *TagResolver) Remove(tags []string, value string) ([]string, bool) {
	for i, t := range tags {
		if t == value {
			out := make([]string, 0, len(tags)-1)
			out = append(out, tags[:i]...)
			return append(out, tags[i+1:]...), true
		}
	}
	return tags, false
}

// Payload turns draft tag values into remote tag references. Values equal to an
// existing tag carry its id.
func (r *TagResolver) Payload(tags []string) []models.TagRef {
	out := make([]models.TagRef, 0, len(tags))
	for _, value := range tags {
		ref := models.TagRef{Value: value}
		for _, t := range r.existing {
			if t.Value == value {
				ref.ID = t.ID
				break
			}
		}
		out = append(out, ref)
	}
	return out
}

func (r *TagResolver) match(value string) (models.Tag, bool) {
	for _, t := range r.existing {
		if strings.EqualFold(t.Value, value) {
			return t, true
		}
	}
	return models.Tag{}, false
}

func appendUnique(tags []string, value string) ([]string, bool) {
	for _, t := range tags {
		if t == value {
			return tags, false
		}
	}
	out := make([]string, 0, len(tags)+1)
	out = append(out, tags...)
	return append(out, value), true
}
