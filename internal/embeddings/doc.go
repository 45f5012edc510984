// Package embeddings turns text into vectors for the compression engine.
//
// A Provider talks to one backend: Ollama or Text Embeddings Inference over
// HTTP, or FastEmbed running ONNX models in-process (cgo builds only). The
// Gateway wraps a Provider with the per-call policy the compressor relies on:
// whitespace-only input is rejected without a backend call, every call gets
// its own timeout, calls can be rate limited, and an empty vector counts as a
// failure.
//
//	gw, err := embeddings.NewFromConfig(cfg.Embedding, logger)
//	if err != nil {
//	    return err
//	}
//	defer gw.Close()
//
//	vec, err := gw.Embed(ctx, "a unit of text")
package embeddings
