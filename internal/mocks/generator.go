package mocks

import "github.com/stretchr/testify/mock"

type Generator struct {
	mock.Mock
}

func (g *Generator) Draw() (int, error) {
	args := g.Called()
	return args.Int(0), args.Error(1)
}
