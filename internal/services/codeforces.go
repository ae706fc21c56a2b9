package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/itzRohit45/Student-Progress-Management/pkg/logger"
	"golang.org/x/time/rate"
)

const (
	DefaultCFAPIBase = "https://codeforces.com/api"

	// Codeforces asks for at most ~2 requests per second per key; we stay
	// well under that. The spacing is a hard requirement, not a tunable.
	cfCallInterval = 500 * time.Millisecond

	// user.status is bounded to the most recent submissions
	submissionFetchCount = 1000
)

// ErrHandleNotFound marks a handle the Codeforces API does not know. It is a
// domain-level rejection, not a transient failure, and must not be retried.
var ErrHandleNotFound = errors.New("codeforces handle not found")

// Raw API payloads. Field names follow the Codeforces wire format.

type CFUser struct {
	Handle    string `json:"handle"`
	Rating    int    `json:"rating"`
	MaxRating int    `json:"maxRating"`
	Rank      string `json:"rank"`
	Country   string `json:"country"`
}

type CFRatingChange struct {
	ContestID               int    `json:"contestId"`
	ContestName             string `json:"contestName"`
	Rank                    int    `json:"rank"`
	OldRating               int    `json:"oldRating"`
	NewRating               int    `json:"newRating"`
	RatingUpdateTimeSeconds int64  `json:"ratingUpdateTimeSeconds"`
}

type CFProblem struct {
	ContestID int    `json:"contestId"`
	Index     string `json:"index"`
	Name      string `json:"name"`
	Rating    *int   `json:"rating"`
}

type CFSubmission struct {
	ID                  int64      `json:"id"`
	ContestID           int        `json:"contestId"`
	CreationTimeSeconds int64      `json:"creationTimeSeconds"`
	Problem             *CFProblem `json:"problem"`
	Verdict             string     `json:"verdict"`
}

// CodeforcesAPI is the read-only surface the sync pipeline needs. The
// interface exists so tests can run against a fake instead of the live API.
type CodeforcesAPI interface {
	UserExists(ctx context.Context, handle string) (bool, error)
	FetchUserInfo(ctx context.Context, handle string) (*CFUser, error)
	FetchUserRating(ctx context.Context, handle string) ([]CFRatingChange, error)
	FetchUserSubmissions(ctx context.Context, handle string) ([]CFSubmission, error)
}

// CodeforcesClient talks to the live Codeforces API. All calls funnel through
// one rate limiter so that concurrent fetches still keep the mandatory
// spacing between requests.
type CodeforcesClient struct {
	BaseURL string
	HTTP    *http.Client
	Limiter *rate.Limiter
}

func NewCodeforcesClient(baseURL string) *CodeforcesClient {
	if baseURL == "" {
		baseURL = DefaultCFAPIBase
	}
	return &CodeforcesClient{
		BaseURL: baseURL,
		HTTP:    &http.Client{Timeout: 30 * time.Second},
		Limiter: rate.NewLimiter(rate.Every(cfCallInterval), 1),
	}
}

// cfEnvelope is the response wrapper every Codeforces endpoint uses.
// A FAILED status carries a human-readable comment.
type cfEnvelope struct {
	Status  string          `json:"status"`
	Comment string          `json:"comment"`
	Result  json.RawMessage `json:"result"`
}

func (c *CodeforcesClient) call(ctx context.Context, method string, params url.Values, out interface{}) error {
	if err := c.Limiter.Wait(ctx); err != nil {
		return err
	}

	endpoint := fmt.Sprintf("%s/%s?%s", c.BaseURL, method, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}

	start := time.Now()
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("codeforces %s request failed: %w", method, err)
	}
	defer resp.Body.Close()

	var env cfEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("codeforces %s returned malformed response (status %d): %w", method, resp.StatusCode, err)
	}

	if env.Status != "OK" {
		if strings.Contains(strings.ToLower(env.Comment), "not found") {
			return ErrHandleNotFound
		}
		return fmt.Errorf("codeforces %s failed: %s", method, env.Comment)
	}

	logger.Debug().
		Str("method", method).
		Dur("latency", time.Since(start)).
		Msg("Codeforces API call")

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(env.Result, out); err != nil {
		return fmt.Errorf("codeforces %s returned unexpected result shape: %w", method, err)
	}
	return nil
}

// UserExists checks whether the handle is known to Codeforces. A not-found
// answer is a regular false, any other failure is an error.
func (c *CodeforcesClient) UserExists(ctx context.Context, handle string) (bool, error) {
	params := url.Values{"handles": {handle}}
	var users []CFUser
	if err := c.call(ctx, "user.info", params, &users); err != nil {
		if errors.Is(err, ErrHandleNotFound) {
			return false, nil
		}
		return false, err
	}
	return len(users) > 0, nil
}

func (c *CodeforcesClient) FetchUserInfo(ctx context.Context, handle string) (*CFUser, error) {
	params := url.Values{"handles": {handle}}
	var users []CFUser
	if err := c.call(ctx, "user.info", params, &users); err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, ErrHandleNotFound
	}
	return &users[0], nil
}

func (c *CodeforcesClient) FetchUserRating(ctx context.Context, handle string) ([]CFRatingChange, error) {
	params := url.Values{"handle": {handle}}
	var changes []CFRatingChange
	if err := c.call(ctx, "user.rating", params, &changes); err != nil {
		return nil, err
	}
	return changes, nil
}

// FetchUserSubmissions returns the most recent submissions, bounded to 1000.
// Ordering is whatever the API provides; callers must not depend on it.
func (c *CodeforcesClient) FetchUserSubmissions(ctx context.Context, handle string) ([]CFSubmission, error) {
	params := url.Values{
		"handle": {handle},
		"from":   {"1"},
		"count":  {fmt.Sprintf("%d", submissionFetchCount)},
	}
	var submissions []CFSubmission
	if err := c.call(ctx, "user.status", params, &submissions); err != nil {
		return nil, err
	}
	return submissions, nil
}
