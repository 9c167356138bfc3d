package settlement

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"math/big"
)

var ErrGeneratorFailure = errors.New("GENERATOR_FAILURE")

type Generator interface {
	Draw() (int, error)
}

type CryptoGenerator struct {
	source io.Reader
	span   *big.Int
}

func NewGenerator() Generator {
	return NewGeneratorFromSource(rand.Reader)
}

func NewGeneratorFromSource(source io.Reader) *CryptoGenerator {
	return &CryptoGenerator{source: source, span: big.NewInt(MaxOutcome - MinOutcome + 1)}
}

// Draw returns a uniform integer in [MinOutcome, MaxOutcome].
func (g *CryptoGenerator) Draw() (int, error) {
	n, err := rand.Int(g.source, g.span)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrGeneratorFailure, err)
	}
	return int(n.Int64()) + MinOutcome, nil
}
