// Package compression reduces document content to its most representative
// units before it is spliced into a message.
//
// The pipeline is extractive only. Content is split into units at a chosen
// granularity (phrase, sentence, paragraph or paragraph groups), every unit
// is embedded, and each unit is scored by cosine similarity to the centroid
// of all unit vectors, optionally blended with similarity to an auxiliary
// description vector. The highest scoring units are kept in their original
// order according to a keep-ratio derived from the compression level.
//
// # Degradation
//
// Compress never returns an error. Every early exit and failure yields the
// original content together with a Trace of bracketed tags and a typed
// Outcome, so callers can tell "nothing to do" from "something broke":
//
//	res := svc.Compress(ctx, compression.Request{
//	    Content:     doc.Content,
//	    Granularity: 2,
//	    Level:       5,
//	})
//	fmt.Println(res.Text(true))
//	// [CHUNKS:12] [EMBEDDINGS:12] [COMPRESSED_CHUNKS:6] [RATIO:0.48] [SUCCESS] ...
//
// # Granularity
//
//	0     whole text as one unit
//	1     phrases, split after , ; : followed by whitespace
//	2     sentences, split after . ! ? followed by whitespace
//	3     paragraphs
//	4-10  groups of (granularity - 2) paragraphs
//
// Phrase and sentence splitting never crosses a paragraph boundary.
//
// # Compression levels
//
// Levels 1 through 10 keep 90% down to 10% of the units. Any other positive
// level keeps half. At least one unit is always kept and, for more than one
// unit, at least one is always dropped.
package compression
