// Package clinicapi is the console's client for the clinic REST API.
//
// Every failure, whether the request never completed, the server answered with
// a non-2xx status, or the body could not be decoded, is returned as a
// *RequestError so callers handle one shape.
package clinicapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"time"

	"github.com/eyecare-clinic/console/pkg/common/config"
	"github.com/eyecare-clinic/console/pkg/common/logger"
	"github.com/eyecare-clinic/console/pkg/common/models"
	"github.com/eyecare-clinic/console/pkg/gateway/httpclient"
	"github.com/eyecare-clinic/console/pkg/observability/metrics"
	"github.com/eyecare-clinic/console/pkg/session"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker/v2"
)

// GenericFailure is the message used when the server did not supply one.
const GenericFailure = "API request failed"

const (
	breakerName  = "clinic-api"
	retryBackoff = 200 * time.Millisecond
	maxBodyBytes = 8 << 20
)

type Config struct {
	BaseURL          string
	Timeout          time.Duration
	RetryAttempts    int
	BreakerFailures  uint32
	BreakerOpenDelay time.Duration
}

func ConfigFrom(cfg *config.Config) Config {
	failures := cfg.APIBreakerFailures
	if failures < 0 {
		failures = 0
	}
	return Config{
		BaseURL:          cfg.APIBaseURL,
		Timeout:          cfg.APIRequestTimeout,
		RetryAttempts:    cfg.APIRetryAttempts,
		BreakerFailures:  uint32(failures),
		BreakerOpenDelay: cfg.APIBreakerOpenDelay,
	}
}

// RequestError is the uniform failure of a clinic API call. StatusCode is 0
// when no response was received.
type RequestError struct {
	Method     string
	Path       string
	StatusCode int
	Message    string
	Err        error
}

func (e *RequestError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s %s: %s: %v", e.Method, e.Path, e.Message, e.Err)
	}
	return fmt.Sprintf("%s %s: %s", e.Method, e.Path, e.Message)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// IsRequestError reports whether err is, or wraps, a *RequestError.
func IsRequestError(err error) bool {
	var re *RequestError
	return errors.As(err, &re)
}

// FailureMessage returns the message to show a user for err.
func FailureMessage(err error) string {
	var re *RequestError
	if errors.As(err, &re) && re.Message != "" {
		return re.Message
	}
	return GenericFailure
}

// serverError marks a 5xx answer so the breaker and the retry loop count it.
type serverError struct {
	status int
}

func (e *serverError) Error() string {
	return fmt.Sprintf("server responded %d", e.status)
}

type response struct {
	status int
	body   []byte
}

type Client struct {
	baseURL       string
	http          *http.Client
	session       *session.Session
	breaker       *gobreaker.CircuitBreaker[*response]
	retryAttempts int
	metrics       *metrics.Collector
}

func New(cfg Config, sess *session.Session, collector *metrics.Collector) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	settings := gobreaker.Settings{
		Name:    breakerName,
		Timeout: cfg.BreakerOpenDelay,
		OnStateChange: func(name string, from, to gobreaker.State) {
			collector.SetBreakerState(name, int(to))
			logger.Log.WithFields(logrus.Fields{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("Clinic API circuit breaker changed state")
		},
	}
	if cfg.BreakerFailures > 0 {
		threshold := cfg.BreakerFailures
		settings.ReadyToTrip = func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		}
	} else {
		settings.ReadyToTrip = func(gobreaker.Counts) bool { return false }
	}

	return &Client{
		baseURL:       cfg.BaseURL,
		http:          httpclient.New(timeout),
		session:       sess,
		breaker:       gobreaker.NewCircuitBreaker[*response](settings),
		retryAttempts: cfg.RetryAttempts,
		metrics:       collector,
	}
}

// Do sends one request to {BaseURL}{path}. filters become query parameters,
// body (if non-nil) is sent as JSON, and a successful JSON answer is decoded
// into out (if non-nil).
func (c *Client) Do(ctx context.Context, method, path string, filters models.Filters, body, out interface{}) error {
	start := time.Now()
	endpoint := endpointLabel(path)

	var payload []byte
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return &RequestError{Method: method, Path: path, Message: GenericFailure, Err: fmt.Errorf("encoding request: %w", err)}
		}
		payload = encoded
	}
	target := c.baseURL + path
	if len(filters) > 0 {
		query := url.Values{}
		for k, v := range filters {
			query.Set(k, v)
		}
		target += "?" + query.Encode()
	}

	attempts := 1
	if method == http.MethodGet {
		attempts = c.retryAttempts
	}

	var resp *response
	err := httpclient.Retry(ctx, attempts, retryBackoff, retriable, func() error {
		var err error
		resp, err = c.breaker.Execute(func() (*response, error) {
			return c.send(ctx, method, target, payload)
		})
		return err
	})

	reqErr := c.interpret(method, path, resp, err, out)
	c.metrics.ObserveAPIRequest(method, endpoint, outcome(reqErr), time.Since(start))
	if reqErr != nil {
		logger.Log.WithError(reqErr).WithFields(logrus.Fields{
			"method":   method,
			"endpoint": endpoint,
			"status":   reqErr.StatusCode,
		}).Error("API request error")
		return reqErr
	}
	return nil
}

func (c *Client) send(ctx context.Context, method, target string, payload []byte) (*response, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.New().String())
	if token := c.session.Token(); token != nil {
		token.SetAuthHeader(req)
	}

	httpResp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(httpResp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	resp := &response{status: httpResp.StatusCode, body: data}
	if httpResp.StatusCode >= http.StatusInternalServerError {
		return resp, &serverError{status: httpResp.StatusCode}
	}
	return resp, nil
}

func (c *Client) interpret(method, path string, resp *response, err error, out interface{}) *RequestError {
	var srvErr *serverError
	if err != nil && !errors.As(err, &srvErr) {
		return &RequestError{Method: method, Path: path, Message: GenericFailure, Err: err}
	}
	if resp == nil {
		return &RequestError{Method: method, Path: path, Message: GenericFailure, Err: err}
	}

	if resp.status < 200 || resp.status > 299 {
		msg := GenericFailure
		var failure struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(resp.body, &failure) == nil && failure.Error != "" {
			msg = failure.Error
		}
		return &RequestError{Method: method, Path: path, StatusCode: resp.status, Message: msg}
	}

	if out != nil && len(bytes.TrimSpace(resp.body)) > 0 {
		if err := json.Unmarshal(resp.body, out); err != nil {
			return &RequestError{
				Method:     method,
				Path:       path,
				StatusCode: resp.status,
				Message:    GenericFailure,
				Err:        fmt.Errorf("decoding response: %w", err),
			}
		}
	}
	return nil
}

func retriable(err error) bool {
	var srvErr *serverError
	if errors.As(err, &srvErr) {
		return true
	}
	return httpclient.IsRetriable(err)
}

func outcome(err *RequestError) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err.Err, gobreaker.ErrOpenState), errors.Is(err.Err, gobreaker.ErrTooManyRequests):
		return "breaker_open"
	case err.StatusCode == 0:
		return "transport_error"
	case err.StatusCode >= 500:
		return "server_error"
	case err.StatusCode >= 400:
		return "client_error"
	default:
		return "decode_error"
	}
}

var numericSegment = regexp.MustCompile(`/\d+`)

// endpointLabel collapses ids so metric labels stay bounded.
func endpointLabel(path string) string {
	return numericSegment.ReplaceAllString(path, "/:id")
}
