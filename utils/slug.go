package utils

import (
	"strings"

	"github.com/gosimple/slug"
)

// Handle turns a category name into a URL-safe handle. Non-Latin scripts are
// transliterated.
func Handle(name string) string {
	s := slug.Make(strings.TrimSpace(name))
	if s == "" {
		return "category"
	}
	return s
}
