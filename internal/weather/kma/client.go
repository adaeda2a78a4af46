// Package kma implements weather.Provider against the Korea Meteorological
// Administration village forecast service (VilageFcstInfoService_2.0).
package kma

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/weatherwear/weatherwear/internal/provider/resilience"
	"github.com/weatherwear/weatherwear/internal/weather"
)

const (
	// ProviderName identifies this weather provider.
	ProviderName = "kma"

	// DefaultBaseURL is the VilageFcstInfoService_2.0 base URL.
	DefaultBaseURL = "https://apis.data.go.kr/1360000/VilageFcstInfoService_2.0"

	// DefaultTimeout bounds a single call. KMA calls are never retried.
	DefaultTimeout = 5 * time.Second

	// resultCodeOK is the only envelope result code treated as success.
	resultCodeOK = "00"
)

// Operation names per product.
const (
	OperationObservation = "getUltraSrtNcst"
	OperationNearTerm    = "getUltraSrtFcst"
	OperationShortRange  = "getVilageFcst"
)

// ErrMalformedEnvelope is returned when the body is not a readable KMA envelope.
var ErrMalformedEnvelope = fmt.Errorf("malformed kma envelope: %w", weather.ErrEnvelope)

// ResultError is returned when the envelope header carries a result code
// other than "00".
type ResultError struct {
	Code    string
	Message string
}

func (e *ResultError) Error() string {
	return fmt.Sprintf("kma result %s: %s", e.Code, e.Message)
}

// Is makes ResultError match weather.ErrEnvelope.
func (e *ResultError) Is(target error) bool {
	return target == weather.ErrEnvelope
}

// ClientConfig holds configuration for the KMA client.
type ClientConfig struct {
	// ServiceKey is the data.go.kr service key. It is sent exactly as
	// configured, so an already percent-encoded key stays intact.
	ServiceKey string

	// BaseURL is the service base URL (optional, defaults to DefaultBaseURL).
	BaseURL string

	// HTTPClient is the HTTP client to use (optional).
	// If nil, uses a single-attempt resilient client with DefaultTimeout.
	HTTPClient *resilience.Client

	// Logger for client operations.
	Logger zerolog.Logger
}

// Client is a KMA village forecast API client.
type Client struct {
	serviceKey string
	baseURL    string
	httpClient *resilience.Client
	logger     zerolog.Logger
}

// NewClient creates a new KMA client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = resilience.NewClient(resilience.SingleAttemptConfig(ProviderName, DefaultTimeout))
	}

	return &Client{
		serviceKey: cfg.ServiceKey,
		baseURL:    baseURL,
		httpClient: httpClient,
		logger:     cfg.Logger,
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return ProviderName
}

// FetchItems calls the operation matching req.Product and returns its item list.
func (c *Client) FetchItems(ctx context.Context, req weather.Request) ([]weather.RawItem, error) {
	operation, err := operationFor(req.Product)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.requestURL(operation, req), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("decoding response: %w", errors.Join(ErrMalformedEnvelope, err))
	}

	items, err := env.items()
	if err != nil {
		return nil, err
	}

	c.logger.Debug().
		Str("operation", operation).
		Int("items", len(items)).
		Msg("kma response decoded")

	return items, nil
}

// requestURL builds the operation URL. serviceKey is prepended verbatim
// because data.go.kr issues keys that are already percent-encoded.
func (c *Client) requestURL(operation string, req weather.Request) string {
	params := url.Values{}
	params.Set("pageNo", "1")
	params.Set("numOfRows", strconv.Itoa(req.Product.PageSize()))
	params.Set("dataType", "JSON")
	params.Set("base_date", req.Window.BaseDate)
	params.Set("base_time", req.Window.BaseTime)
	params.Set("nx", strconv.Itoa(req.Cell.X))
	params.Set("ny", strconv.Itoa(req.Cell.Y))

	return fmt.Sprintf("%s/%s?serviceKey=%s&%s", c.baseURL, operation, c.serviceKey, params.Encode())
}

func operationFor(p weather.Product) (string, error) {
	switch p {
	case weather.ProductObservation:
		return OperationObservation, nil
	case weather.ProductNearTerm:
		return OperationNearTerm, nil
	case weather.ProductShortRange:
		return OperationShortRange, nil
	default:
		return "", fmt.Errorf("unsupported product %q", p)
	}
}

// KMA API response structures.

type envelope struct {
	Response *struct {
		Header *struct {
			ResultCode string `json:"resultCode"`
			ResultMsg  string `json:"resultMsg"`
		} `json:"header"`
		Body *struct {
			DataType   string `json:"dataType"`
			PageNo     int    `json:"pageNo"`
			NumOfRows  int    `json:"numOfRows"`
			TotalCount int    `json:"totalCount"`
			Items      *struct {
				Item []weather.RawItem `json:"item"`
			} `json:"items"`
		} `json:"body"`
	} `json:"response"`
}

// items validates the envelope and returns its item list.
func (e *envelope) items() ([]weather.RawItem, error) {
	if e.Response == nil || e.Response.Header == nil {
		return nil, ErrMalformedEnvelope
	}

	header := e.Response.Header
	if header.ResultCode != resultCodeOK {
		return nil, &ResultError{Code: header.ResultCode, Message: header.ResultMsg}
	}

	body := e.Response.Body
	if body == nil || body.Items == nil {
		return nil, ErrMalformedEnvelope
	}
	return body.Items.Item, nil
}
