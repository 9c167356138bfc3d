package settlement_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/truenumber/gameservice/internal/settlement"
)

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("entropy source unavailable")
}

func TestCryptoGenerator_Draw(t *testing.T) {
	t.Run("stays within bounds", func(t *testing.T) {
		gen := settlement.NewGenerator()
		seen := map[int]bool{}

		for i := 0; i < 5000; i++ {
			n, err := gen.Draw()
			require.NoError(t, err)
			require.GreaterOrEqual(t, n, 0)
			require.LessOrEqual(t, n, 100)
			seen[n] = true
		}

		assert.Greater(t, len(seen), 90)
	})

	t.Run("wraps source failures", func(t *testing.T) {
		gen := settlement.NewGeneratorFromSource(failingReader{})

		_, err := gen.Draw()

		assert.ErrorIs(t, err, settlement.ErrGeneratorFailure)
	})
}
