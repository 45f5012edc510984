package http

import "github.com/fyrsmithlabs/docref/internal/reference"

// CountExpansions tallies expansion results for the response summary.
//
// A reference counts as compressed only when content was actually reduced;
// skipped compressions (too short, single unit) count as neither compressed
// nor failed.
func CountExpansions(expansions []reference.Expansion) ExpandCounts {
	counts := ExpandCounts{References: len(expansions)}
	for _, x := range expansions {
		if !x.Resolved {
			counts.Unresolved++
			continue
		}
		counts.Resolved++
		switch {
		case x.Outcome.Compressed():
			counts.Compressed++
		case x.Outcome.Failed():
			counts.Failed++
		}
	}
	return counts
}
