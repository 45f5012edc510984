package reference

import (
	"testing"

	"github.com/fyrsmithlabs/docref/internal/resolver"
	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []Reference
	}{
		{
			name: "bare name",
			text: "see {handbook} please",
			want: []Reference{{Raw: "{handbook}", Name: "handbook"}},
		},
		{
			name: "granularity only",
			text: "{handbook,2}",
			want: []Reference{{Raw: "{handbook,2}", Name: "handbook", Granularity: 2}},
		},
		{
			name: "all parameters",
			text: "{handbook,2,7,3}",
			want: []Reference{{Raw: "{handbook,2,7,3}", Name: "handbook", Granularity: 2, Level: 7, AuxWeight: 0.3}},
		},
		{
			name: "whitespace inside token",
			text: "{ release notes , 3, 5 }",
			want: []Reference{{Raw: "{ release notes , 3, 5 }", Name: "release notes", Granularity: 3, Level: 5}},
		},
		{
			name: "weight clamped high",
			text: "{doc,1,1,25}",
			want: []Reference{{Raw: "{doc,1,1,25}", Name: "doc", Granularity: 1, Level: 1, AuxWeight: 1}},
		},
		{
			name: "weight clamped low",
			text: "{doc,1,1,-4}",
			want: []Reference{{Raw: "{doc,1,1,-4}", Name: "doc", Granularity: 1, Level: 1}},
		},
		{
			name: "paths allowed",
			text: "{guides/setup.md}",
			want: []Reference{{Raw: "{guides/setup.md}", Name: "guides/setup.md"}},
		},
		{
			name: "duplicates once, order kept",
			text: "{b} then {a} then {b} again",
			want: []Reference{{Raw: "{b}", Name: "b"}, {Raw: "{a}", Name: "a"}},
		},
		{
			name: "different parameters are distinct",
			text: "{a} and {a,3}",
			want: []Reference{{Raw: "{a}", Name: "a"}, {Raw: "{a,3}", Name: "a", Granularity: 3}},
		},
		{
			name: "json is not a reference",
			text: `payload {"key": 1} and {a: b}`,
			want: nil,
		},
		{
			name: "too many parameters",
			text: "{a,1,2,3,4}",
			want: nil,
		},
		{
			name: "empty braces",
			text: "{} { }",
			want: nil,
		},
		{
			name: "no tokens",
			text: "plain text",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(tt.text)
			if tt.want == nil {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParse_OverflowIsZero(t *testing.T) {
	refs := Parse("{doc,99999999999999999999999}")
	if assert.Len(t, refs, 1) {
		assert.Zero(t, refs[0].Granularity)
	}
}

func TestWantsCompression(t *testing.T) {
	assert.False(t, Reference{}.WantsCompression())
	assert.True(t, Reference{Granularity: 2}.WantsCompression())
	assert.True(t, Reference{Level: 1}.WantsCompression())
	assert.False(t, Reference{AuxWeight: 0.5}.WantsCompression())
}

func TestFormat(t *testing.T) {
	doc := resolver.Document{Filename: "faq.md", Context: "Common questions"}
	assert.Equal(t, "Common questions [faq.md] body [/faq.md]", Format(doc, "body"))

	doc.Context = "  "
	assert.Equal(t, "[faq.md] body [/faq.md]", Format(doc, "body"))
}

func TestUnresolved(t *testing.T) {
	assert.Equal(t, "[Reference not found: missing]", Unresolved("missing"))
}
