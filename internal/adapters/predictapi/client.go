// Package predictapi is the fetch boundary to the remote prediction API.
//
// Every response is decoded into model types and normalized before it is
// returned; callers never see the alternate upstream date field.
package predictapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sony/gobreaker"

	"github.com/okian/coverscope/internal/domain/model"
	"github.com/okian/coverscope/pkg/logger"
	"github.com/okian/coverscope/pkg/metrics"
)

// Endpoint labels used in logs and metrics.
const (
	EndpointPredict = "predict"
	EndpointBatch   = "predict_batch"
	EndpointProfile = "profile"
)

const (
	defaultTimeout     = 30 * time.Second
	defaultMaxFailures = 5
	defaultOpenTimeout = 30 * time.Second
	defaultBreakerName = "prediction-api"
	maxErrorBodyBytes  = 4 << 10

	// RequestIDHeader carries the per-call correlation id.
	RequestIDHeader = "X-Request-ID"
)

// errServerStatus marks 5xx replies as breaker failures.
var errServerStatus = errors.New("server error status")

// canceledError wraps a failure caused by the caller abandoning the call.
// The breaker counts it as neither a success nor a failure of the upstream.
type canceledError struct{ err error }

func (e canceledError) Error() string { return e.err.Error() }
func (e canceledError) Unwrap() error { return e.err }

func isCanceled(err error) bool {
	var ce canceledError
	return errors.As(err, &ce)
}

// Client calls the prediction API.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	timeout    time.Duration
	log        logger.Logger

	breakerName string
	maxFailures uint32
	openTimeout time.Duration
	breaker     *gobreaker.CircuitBreaker
}

// NewClient builds a client for the API rooted at baseURL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(strings.TrimSpace(baseURL), "/"))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidURL, baseURL)
	}

	c := &Client{
		baseURL:     u,
		httpClient:  &http.Client{},
		timeout:     defaultTimeout,
		log:         logger.Nop(),
		breakerName: defaultBreakerName,
		maxFailures: defaultMaxFailures,
		openTimeout: defaultOpenTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}

	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        c.breakerName,
		MaxRequests: 1,
		Timeout:     c.openTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= c.maxFailures
		},
		IsSuccessful: func(err error) bool {
			return err == nil || isCanceled(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			c.log.Warn(context.Background(), "circuit breaker state changed",
				logger.String("breaker", name),
				logger.String("from", from.String()),
				logger.String("to", to.String()),
			)
			metrics.UpdateBreakerState(name, int(to))
		},
	})
	metrics.UpdateBreakerState(c.breakerName, int(gobreaker.StateClosed))
	return c, nil
}

type predictRequest struct {
	RestaurantID string            `json:"restaurant_id"`
	ServiceDate  string            `json:"service_date"`
	ServiceType  model.ServiceType `json:"service_type"`
}

type batchRequest struct {
	RestaurantID string            `json:"restaurant_id"`
	Dates        []string          `json:"dates"`
	ServiceType  model.ServiceType `json:"service_type"`
}

// FetchDay requests the prediction of one service.
func (c *Client) FetchDay(ctx context.Context, restaurantID, date string, st model.ServiceType) (model.PredictionRecord, error) {
	var rec model.PredictionRecord
	body := predictRequest{RestaurantID: restaurantID, ServiceDate: date, ServiceType: st}
	if err := c.call(ctx, call{
		endpoint: EndpointPredict,
		op:       "prediction",
		method:   http.MethodPost,
		path:     "/predict",
		body:     body,
	}, &rec); err != nil {
		return model.PredictionRecord{}, err
	}

	rec.Normalize()
	c.check(ctx, EndpointPredict, rec)
	return rec, nil
}

// FetchBatch requests predictions for every date in dates.
func (c *Client) FetchBatch(ctx context.Context, restaurantID string, dates []string, st model.ServiceType) (model.BatchResponse, error) {
	var resp model.BatchResponse
	body := batchRequest{RestaurantID: restaurantID, Dates: dates, ServiceType: st}
	if err := c.call(ctx, call{
		endpoint: EndpointBatch,
		op:       "batch prediction",
		method:   http.MethodPost,
		path:     "/predict/batch",
		body:     body,
	}, &resp); err != nil {
		return model.BatchResponse{}, err
	}

	resp.Normalize()
	for _, rec := range resp.Predictions {
		c.check(ctx, EndpointBatch, rec)
	}
	return resp, nil
}

// FetchProfile looks a restaurant profile up by outlet name. A 404 yields
// a *NotFoundError.
func (c *Client) FetchProfile(ctx context.Context, name string) (model.RestaurantProfile, error) {
	var profile model.RestaurantProfile
	if err := c.call(ctx, call{
		endpoint: EndpointProfile,
		op:       "restaurant profile fetch",
		method:   http.MethodGet,
		path:     "/api/restaurant/profile/by-name/" + url.PathEscape(name),
		notFound: name,
	}, &profile); err != nil {
		return model.RestaurantProfile{}, err
	}
	return profile, nil
}

// check logs invariant violations; the record is still used.
func (c *Client) check(ctx context.Context, endpoint string, rec model.PredictionRecord) {
	if err := rec.Validate(); err != nil {
		c.log.Warn(ctx, "prediction violates record invariants",
			logger.String("endpoint", endpoint),
			logger.String("date", rec.CanonicalDate()),
			logger.Error(err),
		)
	}
}

type call struct {
	endpoint string
	op       string
	method   string
	path     string
	body     any
	notFound string // identifier reported on 404, empty to treat 404 as a plain failure
}

type reply struct {
	status int
	body   []byte
}

func (c *Client) call(ctx context.Context, cl call, out any) error {
	requestID := uuid.NewString()
	log := c.log.Named(cl.endpoint)
	start := time.Now()

	var rep reply
	_, err := c.breaker.Execute(func() (interface{}, error) {
		r, err := c.roundTrip(ctx, cl, requestID)
		if err != nil {
			if ctx.Err() != nil {
				return nil, canceledError{err: err}
			}
			return nil, err
		}
		rep = r
		if r.status >= http.StatusInternalServerError {
			return nil, errServerStatus
		}
		return nil, nil
	})
	elapsed := time.Since(start)
	metrics.RecordUpstreamLatency(cl.endpoint, float64(elapsed.Milliseconds()))

	fields := []logger.Field{
		logger.String("request_id", requestID),
		logger.String("method", cl.method),
		logger.String("path", cl.path),
		logger.Duration("took", elapsed),
	}

	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.RecordUpstreamRequest(cl.endpoint, metrics.OutcomeBreakerOpen)
		log.Warn(ctx, "prediction api unavailable", append(fields, logger.Error(err))...)
		return &RequestError{Op: cl.op, Message: "prediction service temporarily unavailable", Err: err}
	case isCanceled(err):
		metrics.RecordUpstreamRequest(cl.endpoint, metrics.OutcomeCanceled)
		log.Debug(ctx, "prediction api call abandoned by caller", append(fields, logger.Error(err))...)
		return &RequestError{Op: cl.op, Message: err.Error(), Err: err}
	case err != nil && !errors.Is(err, errServerStatus):
		metrics.RecordUpstreamRequest(cl.endpoint, metrics.OutcomeTransport)
		log.Error(ctx, "prediction api transport failure", append(fields, logger.Error(err))...)
		return &RequestError{Op: cl.op, Message: err.Error(), Err: err}
	}

	fields = append(fields, logger.Int("status", rep.status))
	if rep.status == http.StatusNotFound && cl.notFound != "" {
		metrics.RecordUpstreamRequest(cl.endpoint, metrics.OutcomeNotFound)
		log.Info(ctx, "prediction api lookup not found", fields...)
		return &NotFoundError{Identifier: cl.notFound}
	}
	if rep.status < 200 || rep.status > 299 {
		outcome := metrics.OutcomeClientError
		if rep.status >= http.StatusInternalServerError {
			outcome = metrics.OutcomeServerError
		}
		metrics.RecordUpstreamRequest(cl.endpoint, outcome)
		log.Error(ctx, "prediction api returned an error", fields...)
		return &RequestError{Op: cl.op, Status: rep.status, Message: errorText(rep), Err: StatusError(rep.status)}
	}

	if err := json.Unmarshal(rep.body, out); err != nil {
		metrics.RecordUpstreamRequest(cl.endpoint, metrics.OutcomeDecodeError)
		log.Error(ctx, "prediction api response undecodable", append(fields, logger.Error(err))...)
		return &RequestError{Op: cl.op, Status: rep.status, Message: "malformed response", Err: err}
	}

	metrics.RecordUpstreamRequest(cl.endpoint, metrics.OutcomeSuccess)
	log.Debug(ctx, "prediction api call done", fields...)
	return nil
}

func (c *Client) roundTrip(ctx context.Context, cl call, requestID string) (reply, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var body io.Reader
	if cl.body != nil {
		payload, err := json.Marshal(cl.body)
		if err != nil {
			return reply{}, fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, cl.method, c.baseURL.String()+cl.path, body)
	if err != nil {
		return reply{}, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return reply{}, err
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return reply{}, fmt.Errorf("read response: %w", err)
	}
	return reply{status: resp.StatusCode, body: data}, nil
}

// errorText extracts the server message: FastAPI style {"detail": "..."}
// when present, else the trimmed body, else the status text.
func errorText(rep reply) string {
	var detail struct {
		Detail any `json:"detail"`
	}
	if json.Unmarshal(rep.body, &detail) == nil {
		if s, ok := detail.Detail.(string); ok && s != "" {
			return s
		}
	}
	text := strings.TrimSpace(string(rep.body))
	if len(text) > maxErrorBodyBytes {
		text = text[:maxErrorBodyBytes]
	}
	if text == "" {
		return http.StatusText(rep.status)
	}
	return text
}
