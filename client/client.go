// Package client talks to a papertrader server over its JSON API.
package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rustyeddy/papertrader/ledger"
	"github.com/rustyeddy/papertrader/market"
	"github.com/rustyeddy/papertrader/risk"
	"github.com/rustyeddy/papertrader/server"
	"github.com/rustyeddy/papertrader/session"
	"github.com/shopspring/decimal"
)

const DefaultTimeout = 10 * time.Second

// RejectedError is a 422 from POST /orders. It matches the risk sentinel for
// its code with errors.Is.
type RejectedError struct {
	Code string
	Msg  string
}

func (e *RejectedError) Error() string { return e.Msg }

func (e *RejectedError) Unwrap() error {
	switch e.Code {
	case risk.CodeInvalidOrder:
		return risk.ErrInvalidOrder
	case risk.CodeInsufficientFunds:
		return risk.ErrInsufficientFunds
	case risk.CodeInsufficientPosition:
		return risk.ErrInsufficientPosition
	case risk.CodeSessionNotActive:
		return risk.ErrSessionNotActive
	}
	return nil
}

// ErrRateLimited is returned when the server throttles an order.
var ErrRateLimited = errors.New("rate limited")

type apiError struct {
	Code  string `json:"code"`
	Error string `json:"error"`
}

type Client struct {
	client *resty.Client
}

// New returns a client for the server at baseURL, e.g. http://localhost:8080.
func New(baseURL string) *Client {
	client := resty.New()
	client.SetBaseURL(strings.TrimRight(baseURL, "/") + "/api/v1")
	client.SetTimeout(DefaultTimeout)
	client.SetHeader("Accept", "application/json")
	return &Client{client: client}
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) (*resty.Response, error) {
	var apiErr apiError
	req := c.client.R().SetContext(ctx).SetError(&apiErr)
	if body != nil {
		req.SetBody(body)
	}
	if out != nil {
		req.SetResult(out)
	}
	resp, err := req.Execute(method, path)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	if !resp.IsError() {
		return resp, nil
	}

	switch resp.StatusCode() {
	case http.StatusUnprocessableEntity:
		return resp, &RejectedError{Code: apiErr.Code, Msg: apiErr.Error}
	case http.StatusTooManyRequests:
		return resp, ErrRateLimited
	}
	msg := apiErr.Error
	if msg == "" {
		msg = resp.String()
	}
	return resp, fmt.Errorf("API error %d: %s", resp.StatusCode(), msg)
}

func (c *Client) Status(ctx context.Context) (session.Status, error) {
	var st session.Status
	_, err := c.do(ctx, http.MethodGet, "/session", nil, &st)
	return st, err
}

func (c *Client) Start(ctx context.Context) (session.Status, error) {
	return c.lifecycle(ctx, "start")
}

func (c *Client) Pause(ctx context.Context) (session.Status, error) {
	return c.lifecycle(ctx, "pause")
}

func (c *Client) Reset(ctx context.Context) (session.Status, error) {
	return c.lifecycle(ctx, "reset")
}

func (c *Client) lifecycle(ctx context.Context, action string) (session.Status, error) {
	var st session.Status
	_, err := c.do(ctx, http.MethodPost, "/session/"+action, nil, &st)
	return st, err
}

func (c *Client) SubmitOrder(ctx context.Context, side ledger.Side, symbol string, qty int64) (ledger.Trade, error) {
	var t ledger.Trade
	body := server.OrderRequest{Side: string(side), Symbol: symbol, Quantity: qty}
	_, err := c.do(ctx, http.MethodPost, "/orders", body, &t)
	return t, err
}

// Tick posts a manual price. It reports false when the server ignored it
// because the session is not running.
func (c *Client) Tick(ctx context.Context, symbol string, price decimal.Decimal) (bool, error) {
	resp, err := c.do(ctx, http.MethodPost, "/ticks", server.TickRequest{Symbol: symbol, Price: price}, nil)
	if resp != nil && resp.StatusCode() == http.StatusConflict {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (c *Client) Positions(ctx context.Context) ([]ledger.Position, error) {
	var out []ledger.Position
	_, err := c.do(ctx, http.MethodGet, "/positions", nil, &out)
	return out, err
}

// Trades lists the trade log newest first.
func (c *Client) Trades(ctx context.Context) ([]ledger.Trade, error) {
	var out []ledger.Trade
	_, err := c.do(ctx, http.MethodGet, "/trades", nil, &out)
	return out, err
}

func (c *Client) Quotes(ctx context.Context) ([]market.Quote, error) {
	var out []market.Quote
	_, err := c.do(ctx, http.MethodGet, "/quotes", nil, &out)
	return out, err
}

func (c *Client) History(ctx context.Context, symbol string) ([]market.Quote, error) {
	var out []market.Quote
	_, err := c.do(ctx, http.MethodGet, "/history/"+symbol, nil, &out)
	return out, err
}

// Indicators returns moving averages over symbol's history; period <= 0
// uses the server default.
func (c *Client) Indicators(ctx context.Context, symbol string, period int) (server.IndicatorsResponse, error) {
	var out server.IndicatorsResponse
	path := "/indicators/" + symbol
	if period > 0 {
		path += "?period=" + strconv.Itoa(period)
	}
	_, err := c.do(ctx, http.MethodGet, path, nil, &out)
	return out, err
}
