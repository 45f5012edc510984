//go:build !cgo

package embeddings

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFastEmbed_UnavailableWithoutCgo(t *testing.T) {
	_, err := NewProvider(ProviderConfig{Provider: "fastembed"})
	assert.ErrorIs(t, err, ErrFastEmbedNotAvailable)

	var p FastEmbedProvider
	_, err = p.Embed(context.Background(), "text")
	assert.ErrorIs(t, err, ErrFastEmbedNotAvailable)
	assert.NoError(t, p.Close())
}
