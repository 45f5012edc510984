// Package reference finds document reference tokens in free text and
// replaces them with the (optionally compressed) documents they name.
//
// A token is the document name in braces, optionally followed by chunk
// granularity, compression level and auxiliary weight:
//
//	{handbook}          whole document
//	{handbook,2}        sentence chunks, no compression level
//	{handbook,2,7,3}    sentences, level 7, weight 0.3 on the document context
package reference

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/fyrsmithlabs/docref/internal/resolver"
)

const maxAuxWeight = 10

var tokenPattern = regexp.MustCompile(
	`\{\s*(\w[\w ./-]*?)\s*(?:,\s*(-?\d+)\s*(?:,\s*(-?\d+)\s*(?:,\s*(-?\d+)\s*)?)?)?\}`)

// Reference is one parsed token.
type Reference struct {
	// Raw is the token exactly as it appeared in the text.
	Raw  string
	Name string

	Granularity int
	Level       int

	// AuxWeight is the token's integer weight (0-10) scaled to [0,1].
	AuxWeight float64
}

// WantsCompression reports whether the token asks for chunking or
// compression.
func (r Reference) WantsCompression() bool {
	return r.Granularity > 0 || r.Level > 0
}

// Parse returns the references in text in order of first appearance.
// Repeated tokens are returned once.
func Parse(text string) []Reference {
	matches := tokenPattern.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(matches))
	refs := make([]Reference, 0, len(matches))
	for _, m := range matches {
		raw := m[0]
		if _, dup := seen[raw]; dup {
			continue
		}
		seen[raw] = struct{}{}

		weight := min(max(atoi(m[4]), 0), maxAuxWeight)
		refs = append(refs, Reference{
			Raw:         raw,
			Name:        strings.TrimSpace(m[1]),
			Granularity: atoi(m[2]),
			Level:       atoi(m[3]),
			AuxWeight:   float64(weight) / maxAuxWeight,
		})
	}
	return refs
}

// atoi parses an optional group; absent or out of range values are 0.
func atoi(s string) int {
	if s == "" {
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

// Format renders a resolved document for splicing into text.
func Format(doc resolver.Document, content string) string {
	body := fmt.Sprintf("[%s] %s [/%s]", doc.Filename, content, doc.Filename)
	if ctx := strings.TrimSpace(doc.Context); ctx != "" {
		return ctx + " " + body
	}
	return body
}

// Unresolved is the notice left in place of a reference that could not be
// resolved.
func Unresolved(name string) string {
	return fmt.Sprintf("[Reference not found: %s]", name)
}
