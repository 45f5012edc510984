package compression

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// MaxGranularity is the coarsest supported granularity.
const MaxGranularity = 10

const (
	phraseBreaks   = ",;:"
	sentenceBreaks = ".!?"
)

// ClampGranularity limits g to [0, MaxGranularity].
func ClampGranularity(g int) int {
	switch {
	case g < 0:
		return 0
	case g > MaxGranularity:
		return MaxGranularity
	default:
		return g
	}
}

// Chunk splits text into ordered units at the given granularity.
//
// Granularity 0 returns the whole text, even when empty. Finer levels never
// return whitespace-only units and may return none at all.
func Chunk(text string, granularity int) []string {
	g := ClampGranularity(granularity)
	if g == 0 {
		return []string{text}
	}

	paragraphs := splitParagraphs(text)

	switch g {
	case 1:
		return splitEach(paragraphs, phraseBreaks)
	case 2:
		return splitEach(paragraphs, sentenceBreaks)
	case 3:
		return paragraphs
	default:
		return groupParagraphs(paragraphs, g-2)
	}
}

// Separator returns the string used to rejoin units of a granularity.
func Separator(granularity int) string {
	switch ClampGranularity(granularity) {
	case 1, 2:
		return " "
	default:
		return "\n"
	}
}

// Reassemble joins selected units back into text. Sentence units are given a
// terminal period when they lack terminal punctuation.
func Reassemble(units []string, granularity int) string {
	if ClampGranularity(granularity) != 2 {
		return strings.Join(units, Separator(granularity))
	}

	out := make([]string, len(units))
	for i, u := range units {
		out[i] = terminate(u)
	}
	return strings.Join(out, " ")
}

func terminate(sentence string) string {
	r, _ := utf8.DecodeLastRuneInString(sentence)
	if r == utf8.RuneError || strings.ContainsRune(sentenceBreaks, r) {
		return sentence
	}
	return sentence + "."
}

// splitParagraphs returns trimmed, non-empty lines.
func splitParagraphs(text string) []string {
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if p := strings.TrimSpace(line); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func splitEach(paragraphs []string, breaks string) []string {
	var units []string
	for _, p := range paragraphs {
		units = append(units, splitAfter(p, breaks)...)
	}
	return units
}

// splitAfter cuts s immediately after any rune in breaks that is followed by
// whitespace.
func splitAfter(s, breaks string) []string {
	var (
		units []string
		start int
	)
	emit := func(end int) {
		if u := strings.TrimSpace(s[start:end]); u != "" {
			units = append(units, u)
		}
		start = end
	}

	for i, r := range s {
		if !strings.ContainsRune(breaks, r) {
			continue
		}
		end := i + utf8.RuneLen(r)
		next, _ := utf8.DecodeRuneInString(s[end:])
		if end < len(s) && unicode.IsSpace(next) {
			emit(end)
		}
	}
	emit(len(s))
	return units
}

func groupParagraphs(paragraphs []string, size int) []string {
	units := make([]string, 0, (len(paragraphs)+size-1)/size)
	for i := 0; i < len(paragraphs); i += size {
		end := min(i+size, len(paragraphs))
		units = append(units, strings.Join(paragraphs[i:end], "\n"))
	}
	return units
}
