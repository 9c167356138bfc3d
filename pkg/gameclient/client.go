package gameclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/truenumber/gameservice/pkg/httpclient"
)

const (
	PlayEndpoint    = "/api/v1/game/play"
	BalanceEndpoint = "/api/v1/user/balance"
	HistoryEndpoint = "/api/v1/user/history"
	UsersEndpoint   = "/api/v1/users"

	HeaderUserID = "X-User-ID"
)

type Client interface {
	CreateAccount(ctx context.Context, userID string) error
	Play(ctx context.Context, userID, idempotencyKey string) (Game, error)
	Balance(ctx context.Context, userID string) (int64, error)
	History(ctx context.Context, userID string, limit int) ([]Game, error)
}

type client struct {
	client httpclient.HTTPClient
	config Config
}

func NewClient(cfg Config, httpClient httpclient.HTTPClient) Client {
	return &client{config: cfg, client: httpClient}
}

type playRequest struct {
	IdempotencyKey string `json:"idempotency_key,omitempty"`
}

type createAccountRequest struct {
	UserID string `json:"user_id"`
}

func (c *client) CreateAccount(ctx context.Context, userID string) error {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(createAccountRequest{UserID: userID}); err != nil {
		return fmt.Errorf("encoding error: %w", err)
	}

	resp, err := c.client.Post(ctx, c.config.BaseURL+UsersEndpoint, &buf, map[string]string{"Content-Type": "application/json"})
	if err != nil {
		return transportError(err)
	}

	_, err = decode[Balance](resp)
	return err
}

func (c *client) Play(ctx context.Context, userID, idempotencyKey string) (Game, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(playRequest{IdempotencyKey: idempotencyKey}); err != nil {
		return Game{}, fmt.Errorf("encoding error: %w", err)
	}

	headers := map[string]string{
		"Content-Type": "application/json",
		HeaderUserID:   userID,
	}

	resp, err := c.client.Post(ctx, c.config.BaseURL+PlayEndpoint, &buf, headers)
	if err != nil {
		return Game{}, transportError(err)
	}

	return decode[Game](resp)
}

func (c *client) Balance(ctx context.Context, userID string) (int64, error) {
	resp, err := c.client.Get(ctx, c.config.BaseURL+BalanceEndpoint, map[string]string{HeaderUserID: userID})
	if err != nil {
		return 0, transportError(err)
	}

	balance, err := decode[Balance](resp)
	if err != nil {
		return 0, err
	}

	return balance.Balance, nil
}

// History returns the caller's games newest first. limit <= 0 fetches all.
func (c *client) History(ctx context.Context, userID string, limit int) ([]Game, error) {
	endpoint := c.config.BaseURL + HistoryEndpoint
	if limit > 0 {
		endpoint += "?" + url.Values{"limit": {strconv.Itoa(limit)}}.Encode()
	}

	resp, err := c.client.Get(ctx, endpoint, map[string]string{HeaderUserID: userID})
	if err != nil {
		return nil, transportError(err)
	}

	history, err := decode[History](resp)
	if err != nil {
		return nil, err
	}

	return history.Games, nil
}

func decode[T any](resp *http.Response) (T, error) {
	defer resp.Body.Close()

	var zero T
	if resp.StatusCode != StatusOK && resp.StatusCode != StatusCreated {
		return zero, MapStatusToError(resp.StatusCode)
	}

	var response Response[T]
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return zero, fmt.Errorf("decoding error: %w", err)
	}

	return response.Result, nil
}

func transportError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrTimeout
	}

	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ErrTimeout
	}

	return err
}
