package mock

import (
	"context"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeterministicVectorIsUnitLength(t *testing.T) {
	for _, text := range []string{"a", "hello world", "日本語"} {
		vector := DeterministicVector(text, 64)
		require.Len(t, vector, 64)

		var sumSquares float64
		for _, v := range vector {
			sumSquares += float64(v) * float64(v)
		}
		assert.InDelta(t, 1.0, math.Sqrt(sumSquares), 1e-4, text)
	}
}

func TestDeterministicVectorStable(t *testing.T) {
	assert.Equal(t, DeterministicVector("same text", 32), DeterministicVector("same text", 32))
	assert.NotEqual(t, DeterministicVector("one text", 32), DeterministicVector("другой", 32))
}

func TestMockEmbedderConcurrentUse(t *testing.T) {
	embedder := NewMockEmbedder()
	ctx := context.Background()

	// Pool workers batch-embed while the test thread probes single texts
	// and reads the counter; none of it may race.
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 25; j++ {
				_, err := embedder.EmbedTexts(ctx, []string{"alpha", "beta"})
				assert.NoError(t, err)
				_, err = embedder.EmbedText(ctx, "gamma")
				assert.NoError(t, err)
				embedder.CallCount()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 8*25*2, embedder.CallCount())
}

func TestMockCompleterConcurrentUse(t *testing.T) {
	completer := NewMockCompleter("answer")
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 25; j++ {
				text, err := completer.Complete(ctx, "system", "user")
				assert.NoError(t, err)
				assert.Equal(t, "answer", text)
				completer.LastSystem()
				completer.LastUser()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 8*25, completer.CallCount())
	assert.Equal(t, "system", completer.LastSystem())
	assert.Equal(t, "user", completer.LastUser())
}
