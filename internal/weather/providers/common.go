package providers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/i474232898/weather-dashboard/internal/weather"
	"github.com/sony/gobreaker"
)

// BreakerConfig controls when the circuit breaker opens.
type BreakerConfig struct {
	// MaxFailures is the number of consecutive failures that opens the breaker.
	MaxFailures uint32
	// Timeout is how long the breaker stays open before letting a probe through.
	Timeout time.Duration
}

// HTTPClientConfig bundles the outbound HTTP settings shared by requests.
type HTTPClientConfig struct {
	Client *http.Client
}

var (
	errNoHTTPClient = errors.New("http client not configured")
	errCircuitOpen  = errors.New("circuit breaker open")
)

func newBreaker(name string, cfg BreakerConfig) *gobreaker.CircuitBreaker {
	maxFailures := cfg.MaxFailures
	if maxFailures == 0 {
		maxFailures = 5
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    1 * time.Minute,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		IsSuccessful: func(err error) bool {
			var done *callerDoneError
			return err == nil || errors.As(err, &done)
		},
	})
}

// callerDoneError marks a request abandoned because the caller's context
// ended. The upstream said nothing about its health, so the breaker does not
// count it.
type callerDoneError struct {
	err *weather.Error
}

func (e *callerDoneError) Error() string { return e.err.Error() }
func (e *callerDoneError) Unwrap() error { return e.err }

// doRequest executes a single attempt of the request through the circuit
// breaker and returns the response body. Transport failures and 5xx responses
// count against the breaker unless ctx was already done; every failure is
// returned as a *weather.Error.
func doRequest(
	ctx context.Context,
	cfg HTTPClientConfig,
	cb *gobreaker.CircuitBreaker,
	op string,
	buildRequest func() (*http.Request, error),
) ([]byte, error) {
	if cfg.Client == nil {
		return nil, &weather.Error{Kind: weather.KindUnknown, Op: op, Err: errNoHTTPClient}
	}

	req, err := buildRequest()
	if err != nil {
		return nil, &weather.Error{Kind: weather.KindUnknown, Op: op, Err: err}
	}

	// Ensure the request obeys context cancellation.
	req = req.WithContext(ctx)

	result, err := cb.Execute(func() (interface{}, error) {
		resp, execErr := cfg.Client.Do(req)
		if execErr != nil {
			we := &weather.Error{Kind: weather.KindTransport, Op: op, Err: execErr}
			if ctx.Err() != nil {
				return nil, &callerDoneError{err: we}
			}
			return nil, we
		}
		if resp.StatusCode >= 500 {
			drain(resp)
			return nil, &weather.Error{Kind: weather.KindUpstream, Op: op, Status: resp.StatusCode}
		}
		return resp, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, &weather.Error{Kind: weather.KindUnknown, Op: op, Err: errCircuitOpen}
		}
		var we *weather.Error
		if errors.As(err, &we) {
			return nil, we
		}
		return nil, &weather.Error{Kind: weather.KindUnknown, Op: op, Err: err}
	}

	resp, ok := result.(*http.Response)
	if !ok {
		return nil, &weather.Error{Kind: weather.KindUnknown, Op: op, Err: errors.New("unexpected result type from circuit breaker")}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &weather.Error{Kind: weather.KindUpstream, Op: op, Status: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &weather.Error{Kind: weather.KindTransport, Op: op, Err: err}
	}
	return body, nil
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
	resp.Body.Close()
}
