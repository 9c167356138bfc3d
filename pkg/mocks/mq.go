package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/truenumber/gameservice/pkg/mq"
)

type Publisher struct {
	mock.Mock
}

func (p *Publisher) Publish(ctx context.Context, exchange string, routingKey string, msg mq.Message) error {
	args := p.Called(ctx, exchange, routingKey, msg)
	return args.Error(0)
}

type Consumer struct {
	mock.Mock
}

func (c *Consumer) Consume(ctx context.Context, prefetch int, queue string, handler mq.Handle) error {
	args := c.Called(ctx, prefetch, queue, handler)
	return args.Error(0)
}
