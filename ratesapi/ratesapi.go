// Package ratesapi is the HTTP client for the exchange-rates administration
// API. The backend runs on Azure Functions, so every call carries the
// function key both as the x-functions-key header and as the code query
// parameter.
package ratesapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/cccteam/fxadmin/transport"
	"github.com/go-playground/errors/v5"
	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Client calls the administration API.
type Client struct {
	baseURL     string
	functionKey string
	client      *http.Client
}

// Option is a function that can set an option on a Client.
type Option func(*Client)

// WithHTTPClient sets the http.Client used for API calls. Pass a client
// whose transport authenticates requests. (default: http.DefaultClient)
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.client = client
	}
}

// WithFunctionKey sets the Azure Functions access key.
func WithFunctionKey(key string) Option {
	return func(c *Client) {
		c.functionKey = key
	}
}

// New returns a Client for the API rooted at baseURL, e.g.
// "http://localhost:7071/api".
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}

	return c
}

// ExchangeRates returns all exchange rates.
func (c *Client) ExchangeRates(ctx context.Context) ([]ExchangeRate, error) {
	var rates []ExchangeRate
	if err := c.do(ctx, "Client.ExchangeRates()", http.MethodGet, "/exchange-rates", nil, nil, &rates); err != nil {
		return nil, err
	}

	return rates, nil
}

// ExchangeRate returns one exchange rate by id.
func (c *Client) ExchangeRate(ctx context.Context, id string) (*ExchangeRate, error) {
	rate := &ExchangeRate{}
	if err := c.do(ctx, "Client.ExchangeRate()", http.MethodGet, "/exchange-rates/"+url.PathEscape(id), nil, nil, rate); err != nil {
		return nil, err
	}

	return rate, nil
}

// CreateExchangeRate creates an exchange rate.
func (c *Client) CreateExchangeRate(ctx context.Context, req CreateExchangeRateRequest) (*ExchangeRate, error) {
	if err := validate.StructCtx(ctx, req); err != nil {
		return nil, errors.Wrap(err, "validator.Validate.StructCtx()")
	}

	rate := &ExchangeRate{}
	if err := c.do(ctx, "Client.CreateExchangeRate()", http.MethodPost, "/exchange-rates", nil, req, rate); err != nil {
		return nil, err
	}

	return rate, nil
}

// UpdateExchangeRate updates an exchange rate.
func (c *Client) UpdateExchangeRate(ctx context.Context, id string, req UpdateExchangeRateRequest) (*ExchangeRate, error) {
	if err := validate.StructCtx(ctx, req); err != nil {
		return nil, errors.Wrap(err, "validator.Validate.StructCtx()")
	}

	rate := &ExchangeRate{}
	if err := c.do(ctx, "Client.UpdateExchangeRate()", http.MethodPut, "/exchange-rates/"+url.PathEscape(id), nil, req, rate); err != nil {
		return nil, err
	}

	return rate, nil
}

// DeleteExchangeRate deactivates an exchange rate, recording who did it.
func (c *Client) DeleteExchangeRate(ctx context.Context, id, modifiedBy string) error {
	query := url.Values{"modifiedBy": []string{modifiedBy}}

	return c.do(ctx, "Client.DeleteExchangeRate()", http.MethodDelete, "/exchange-rates/"+url.PathEscape(id), query, nil, nil)
}

// Parameters returns all parameters.
func (c *Client) Parameters(ctx context.Context) ([]Parameter, error) {
	var params []Parameter
	if err := c.do(ctx, "Client.Parameters()", http.MethodGet, "/parameters", nil, nil, &params); err != nil {
		return nil, err
	}

	return params, nil
}

// ParametersByParent returns the parameters nested under the parent with the
// given code.
func (c *Client) ParametersByParent(ctx context.Context, parentCode string) ([]Parameter, error) {
	query := url.Values{"parentCode": []string{parentCode}}

	var params []Parameter
	if err := c.do(ctx, "Client.ParametersByParent()", http.MethodGet, "/parameters/by-parent", query, nil, &params); err != nil {
		return nil, err
	}

	return params, nil
}

// CreateParameter creates a parameter.
func (c *Client) CreateParameter(ctx context.Context, req CreateParameterRequest) (*Parameter, error) {
	if err := validate.StructCtx(ctx, req); err != nil {
		return nil, errors.Wrap(err, "validator.Validate.StructCtx()")
	}

	param := &Parameter{}
	if err := c.do(ctx, "Client.CreateParameter()", http.MethodPost, "/parameters", nil, req, param); err != nil {
		return nil, err
	}

	return param, nil
}

// UpdateParameter updates a parameter.
func (c *Client) UpdateParameter(ctx context.Context, id string, req UpdateParameterRequest) (*Parameter, error) {
	if err := validate.StructCtx(ctx, req); err != nil {
		return nil, errors.Wrap(err, "validator.Validate.StructCtx()")
	}

	param := &Parameter{}
	if err := c.do(ctx, "Client.UpdateParameter()", http.MethodPut, "/parameters/"+url.PathEscape(id), nil, req, param); err != nil {
		return nil, err
	}

	return param, nil
}

// DeleteParameter deactivates a parameter, recording who did it.
func (c *Client) DeleteParameter(ctx context.Context, id, modifiedBy string) error {
	query := url.Values{}
	if modifiedBy != "" {
		query.Set("modifiedBy", modifiedBy)
	}

	return c.do(ctx, "Client.DeleteParameter()", http.MethodDelete, "/parameters/"+url.PathEscape(id), query, nil, nil)
}

// do performs one API call and decodes the response into out when out is
// non-nil.
func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, body, out any) error {
	ctx, span := otel.Tracer("ratesapi").Start(ctx, op)
	defer span.End()

	if query == nil {
		query = url.Values{}
	}
	if c.functionKey != "" {
		query.Set("code", c.functionKey)
	}

	endpoint := c.baseURL + path
	if encoded := query.Encode(); encoded != "" {
		endpoint += "?" + encoded
	}

	var payload io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return errors.Wrap(err, "json.Marshal()")
		}
		payload = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, payload)
	if err != nil {
		return errors.Wrap(err, "http.NewRequestWithContext()")
	}
	req.Header.Set("Content-Type", "application/json")
	if c.functionKey != "" {
		req.Header.Set("x-functions-key", c.functionKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return errors.Wrap(err, "http.Client.Do()")
	}
	defer resp.Body.Close()

	if err := transport.CheckResponse(resp); err != nil {
		return errors.Wrap(err, "transport.CheckResponse()")
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)

		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrap(err, "json.Decoder.Decode()")
	}

	return nil
}
