package hash_test

import (
	"context"
	"math"
	"testing"

	"github.com/fwojciec/docqa"
	"github.com/fwojciec/docqa/flat"
	"github.com/fwojciec/docqa/hash"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbedder_Embed(t *testing.T) {
	t.Parallel()

	t.Run("is deterministic", func(t *testing.T) {
		t.Parallel()

		e := hash.NewEmbedder(64)

		a, err := e.Embed(context.Background(), "configure the server port")
		require.NoError(t, err)
		b, err := e.Embed(context.Background(), "configure the server port")
		require.NoError(t, err)

		assert.Equal(t, a, b)
		assert.Len(t, a, 64)
	})

	t.Run("returns unit vectors", func(t *testing.T) {
		t.Parallel()

		v, err := hash.NewEmbedder(64).Embed(context.Background(), "hello world")
		require.NoError(t, err)

		var norm float64
		for _, x := range v {
			norm += float64(x) * float64(x)
		}
		assert.InDelta(t, 1, math.Sqrt(norm), 1e-5)
	})

	t.Run("ranks texts sharing words closer", func(t *testing.T) {
		t.Parallel()

		e := hash.NewEmbedder(256)
		ctx := context.Background()
		query, err := e.Embed(ctx, "How do I configure the server port?")
		require.NoError(t, err)
		related, err := e.Embed(ctx, "The server port is configured with the port option.")
		require.NoError(t, err)
		unrelated, err := e.Embed(ctx, "Bananas grow in tropical climates.")
		require.NoError(t, err)

		assert.Less(t, flat.SquaredL2(query, related), flat.SquaredL2(query, unrelated))
	})

	t.Run("empty text yields zero vector", func(t *testing.T) {
		t.Parallel()

		v, err := hash.NewEmbedder(8).Embed(context.Background(), "  ")

		require.NoError(t, err)
		assert.Equal(t, make([]float32, 8), v)
	})

	t.Run("cancelled context returns EEMBED", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := hash.NewEmbedder(8).Embed(ctx, "text")

		assert.Equal(t, docqa.EEMBED, docqa.ErrorCode(err))
	})
}

func TestEmbedder_Model(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "hash-128", hash.NewEmbedder(128).Model())
	assert.Equal(t, hash.DefaultDimensions, hash.NewEmbedder(0).Dimensions())
}
