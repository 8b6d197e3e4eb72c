package ai

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testCompleter is a minimal Completer for wiring tests.
type testCompleter struct {
	name   string
	closed bool
}

func (c *testCompleter) Complete(ctx context.Context, systemPrompt, userPrompt string, maxTokens int) (string, error) {
	return "answer from " + c.name, nil
}

func (c *testCompleter) Name() string {
	return c.name
}

func (c *testCompleter) Close() error {
	c.closed = true
	return nil
}

// testEmbedder is a minimal Embedder for wiring tests.
type testEmbedder struct{}

func (testEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	return []float32{1, 0, 0}, nil
}

func (testEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i := range texts {
		vectors[i] = []float32{1, 0, 0}
	}
	return vectors, nil
}

func TestProviderSet_CompleterFor(t *testing.T) {
	general := &testCompleter{name: "general"}
	fast := &testCompleter{name: "fast"}
	reasoning := &testCompleter{name: "reasoning"}

	t.Run("exact tier match", func(t *testing.T) {
		provider := NewProviderSet(testEmbedder{}, map[Tier]Completer{
			TierGeneral:   general,
			TierFast:      fast,
			TierReasoning: reasoning,
		})

		assert.Equal(t, "general", provider.CompleterFor(TierGeneral).Name())
		assert.Equal(t, "fast", provider.CompleterFor(TierFast).Name())
		assert.Equal(t, "reasoning", provider.CompleterFor(TierReasoning).Name())
	})

	t.Run("missing tier degrades to general", func(t *testing.T) {
		provider := NewProviderSet(testEmbedder{}, map[Tier]Completer{
			TierGeneral: general,
		})

		assert.Equal(t, "general", provider.CompleterFor(TierFast).Name())
		assert.Equal(t, "general", provider.CompleterFor(TierReasoning).Name())
	})

	t.Run("no general falls back to any backend", func(t *testing.T) {
		provider := NewProviderSet(testEmbedder{}, map[Tier]Completer{
			TierFast: fast,
		})

		got := provider.CompleterFor(TierReasoning)
		require.NotNil(t, got)
		assert.Equal(t, "fast", got.Name())
	})

	t.Run("no completers returns nil", func(t *testing.T) {
		provider := NewProviderSet(testEmbedder{}, nil)

		assert.Nil(t, provider.CompleterFor(TierGeneral))
	})

	t.Run("nil entries are dropped", func(t *testing.T) {
		provider := NewProviderSet(testEmbedder{}, map[Tier]Completer{
			TierGeneral: nil,
			TierFast:    fast,
		})

		got := provider.CompleterFor(TierGeneral)
		require.NotNil(t, got)
		assert.Equal(t, "fast", got.Name())
	})
}

func TestProviderSet_Embedder(t *testing.T) {
	embedder := testEmbedder{}
	provider := NewProviderSet(embedder, nil)

	got := provider.Embedder()
	require.NotNil(t, got)

	vector, err := got.EmbedText(context.Background(), "text")
	require.NoError(t, err)
	assert.Len(t, vector, 3)
}

func TestProviderSet_Close(t *testing.T) {
	general := &testCompleter{name: "general"}
	fast := &testCompleter{name: "fast"}

	provider := NewProviderSet(testEmbedder{}, map[Tier]Completer{
		TierGeneral: general,
		TierFast:    fast,
	})

	err := provider.Close()

	require.NoError(t, err)
	assert.True(t, general.closed)
	assert.True(t, fast.closed)
}

func TestTier_String(t *testing.T) {
	assert.Equal(t, "general", TierGeneral.String())
	assert.Equal(t, "fast", TierFast.String())
	assert.Equal(t, "reasoning", TierReasoning.String())
	assert.Equal(t, "unknown", Tier(0).String())
}
