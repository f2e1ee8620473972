package domain

import (
	"path"
	"strings"
)

// IdentityFromSource derives a document identity from its storage location:
// the last path element without its extension ("texts/42.txt" -> "42").
// Both slash and backslash separators are accepted.
func IdentityFromSource(source string) string {
	source = strings.ReplaceAll(strings.TrimSpace(source), `\`, "/")
	base := path.Base(source)
	if base == "." || base == "/" {
		return ""
	}
	return strings.TrimSuffix(base, path.Ext(base))
}
