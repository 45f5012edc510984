package compression

import (
	"fmt"
	"strings"
	"testing"
	"unicode"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var chunkSamples = []string{
	"A, B; C.",
	"The quick brown fox jumps. Over the lazy dog! Does it? Yes: it does, mostly.\n\nSecond paragraph here; with a clause.",
	"  leading space, trailing space  \n\r\n\tTabbed line. Another sentence!\n",
	"No punctuation at all in this line\nNor in this one",
	"Pi is 3.14 and e is 2.71.A sentence without space.",
	"Unicode too, naïve café: résumé. 日本語のテキスト。End.",
}

func TestChunk_Phrases(t *testing.T) {
	assert.Equal(t, []string{"A,", "B;", "C."}, Chunk("A, B; C.", 1))
}

func TestChunk_PhrasesStayInParagraph(t *testing.T) {
	assert.Equal(t, []string{"a,", "b", "c:", "d"}, Chunk("a, b\nc: d", 1))
}

func TestChunk_Sentences(t *testing.T) {
	got := Chunk("One. Two! Three? Four", 2)
	assert.Equal(t, []string{"One.", "Two!", "Three?", "Four"}, got)
}

func TestChunk_SentenceNeedsWhitespace(t *testing.T) {
	got := Chunk("Pi is 3.14 today. e is 2.71", 2)
	assert.Equal(t, []string{"Pi is 3.14 today.", "e is 2.71"}, got)
}

func TestChunk_Paragraphs(t *testing.T) {
	got := Chunk("a\n\n  b  \n\r\nc", 3)
	assert.Equal(t, []string{"a", "b", "c"}, got)
}

func TestChunk_ParagraphGroups(t *testing.T) {
	text := "p1\np2\np3\np4\np5"

	got := Chunk(text, 4)
	assert.Equal(t, []string{"p1\np2", "p3\np4", "p5"}, got)

	got = Chunk(text, 5)
	assert.Equal(t, []string{"p1\np2\np3", "p4\np5"}, got)
}

func TestChunk_WholeText(t *testing.T) {
	assert.Equal(t, []string{"a, b. c"}, Chunk("a, b. c", 0))
	assert.Equal(t, []string{""}, Chunk("", 0))
}

func TestChunk_EmptyInputFinerLevels(t *testing.T) {
	for g := 1; g <= MaxGranularity; g++ {
		assert.Empty(t, Chunk("", g), "granularity %d", g)
		assert.Empty(t, Chunk(" \n\t\n ", g), "granularity %d", g)
	}
}

func TestChunk_ClampsGranularity(t *testing.T) {
	text := "a\nb\nc"
	assert.Equal(t, Chunk(text, 0), Chunk(text, -4))
	assert.Equal(t, Chunk(text, MaxGranularity), Chunk(text, 42))
}

func TestChunk_NoWhitespaceUnits(t *testing.T) {
	for _, text := range chunkSamples {
		for g := 1; g <= 3; g++ {
			for _, u := range Chunk(text, g) {
				assert.NotEmpty(t, strings.TrimSpace(u), "granularity %d of %q", g, text)
				assert.Equal(t, strings.TrimSpace(u), u, "unit not trimmed")
			}
		}
	}
}

func TestChunk_PreservesNonWhitespace(t *testing.T) {
	strip := func(s string) string {
		return strings.Map(func(r rune) rune {
			if unicode.IsSpace(r) {
				return -1
			}
			return r
		}, s)
	}

	for _, text := range chunkSamples {
		for g := 1; g <= MaxGranularity; g++ {
			joined := strings.Join(Chunk(text, g), Separator(g))
			assert.Equal(t, strip(text), strip(joined), "granularity %d of %q", g, text)
		}
	}
}

func TestChunk_GroupCount(t *testing.T) {
	for paragraphs := 1; paragraphs <= 23; paragraphs++ {
		lines := make([]string, paragraphs)
		for i := range lines {
			lines[i] = fmt.Sprintf("paragraph %d", i)
		}
		text := strings.Join(lines, "\n\n")

		for g := 4; g <= MaxGranularity; g++ {
			size := g - 2
			want := (paragraphs + size - 1) / size
			require.Len(t, Chunk(text, g), want, "paragraphs=%d granularity=%d", paragraphs, g)
		}
	}
}

func TestSeparator(t *testing.T) {
	assert.Equal(t, "\n", Separator(0))
	assert.Equal(t, " ", Separator(1))
	assert.Equal(t, " ", Separator(2))
	assert.Equal(t, "\n", Separator(3))
	assert.Equal(t, "\n", Separator(7))
}

func TestReassemble(t *testing.T) {
	assert.Equal(t, "a, c.", Reassemble([]string{"a,", "c."}, 1))
	assert.Equal(t, "First. Second! Third.", Reassemble([]string{"First", "Second!", "Third."}, 2))
	assert.Equal(t, "p1\np3", Reassemble([]string{"p1", "p3"}, 3))
	assert.Equal(t, "p1\np2\np5", Reassemble([]string{"p1\np2", "p5"}, 4))
	assert.Equal(t, "", Reassemble(nil, 2))
}
