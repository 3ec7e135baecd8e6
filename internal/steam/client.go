package steam

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/net/html"
	"golang.org/x/time/rate"

	"github.com/robertmkjeffrey/wisdom-of-the-gaming-crowd/internal/retry"
	"github.com/robertmkjeffrey/wisdom-of-the-gaming-crowd/pkg/crowd/ingest"
	"github.com/robertmkjeffrey/wisdom-of-the-gaming-crowd/pkg/crowd/internalerr"
)

const (
	DefaultBaseURL = "https://store.steampowered.com"
	PageSize       = 20
)

// StatusError is a non-200 reply from the reviews endpoint.
type StatusError struct {
	AppID      int
	Page       int
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("app %d page %d: HTTP %d", e.AppID, e.Page, e.StatusCode)
}

var errUnsuccessful = errors.New("steam reported success != 1")

// Options configures a Client. Zero values fall back to the defaults.
type Options struct {
	BaseURL           string
	HTTPClient        *http.Client
	Policy            retry.Policy
	RequestsPerSecond float64 // 0 disables the limiter
	BreakerFailures   uint32  // consecutive failures that open the breaker
	BreakerTimeout    time.Duration
	MaxPages          int // 0 downloads until the end
	Logger            *slog.Logger
}

// DefaultPolicy retries up to 10 times starting at one second.
func DefaultPolicy() retry.Policy {
	return retry.Policy{
		MaxAttempts:      10,
		InitialBackoff:   time.Second,
		MaxBackoff:       5 * time.Minute,
		RateLimitBackoff: 30 * time.Second,
		MaxJitter:        time.Second,
	}
}

// Client downloads reviews from the Steam appreviews endpoint.
type Client struct {
	baseURL  string
	http     *http.Client
	policy   retry.Policy
	limiter  *rate.Limiter
	breaker  *gobreaker.CircuitBreaker
	maxPages int
	logger   *slog.Logger
}

// NewClient creates a review client.
func NewClient(opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}
	if opts.Policy.MaxAttempts < 1 {
		clock := opts.Policy.Clock
		opts.Policy = DefaultPolicy()
		opts.Policy.Clock = clock
	}
	if opts.BreakerFailures == 0 {
		opts.BreakerFailures = 20
	}
	if opts.BreakerTimeout == 0 {
		opts.BreakerTimeout = 2 * time.Minute
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	limit := rate.Inf
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
	}

	c := &Client{
		baseURL:  strings.TrimRight(opts.BaseURL, "/"),
		http:     opts.HTTPClient,
		policy:   opts.Policy,
		limiter:  rate.NewLimiter(limit, 1),
		maxPages: opts.MaxPages,
		logger:   opts.Logger,
	}

	failures := opts.BreakerFailures
	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "steam",
		Timeout: opts.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		IsSuccessful: func(err error) bool {
			// A permanent reply still proves the API is up.
			return err == nil || classifyStatus(err) == retry.Stop
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			c.logger.Warn("circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
		},
	})

	return c
}

// BreakerState exposes the breaker state for logging and tests.
func (c *Client) BreakerState() gobreaker.State {
	return c.breaker.State()
}

// PageURL builds the request URL for one page of an app's reviews.
func (c *Client) PageURL(appID, page int) string {
	q := url.Values{}
	q.Set("json", "1")
	q.Set("filter", "recent")
	q.Set("language", "all")
	q.Set("start_offset", strconv.Itoa(page*PageSize))
	q.Set("num_per_page", strconv.Itoa(PageSize))
	return fmt.Sprintf("%s/appreviews/%d?%s", c.baseURL, appID, q.Encode())
}

type pageResponse struct {
	Success int             `json:"success"`
	Reviews []ingest.Review `json:"reviews"`
}

// FetchPage downloads one zero-based page, retrying transient failures.
// An empty slice means the app has no more reviews.
func (c *Client) FetchPage(ctx context.Context, appID, page int) ([]ingest.Review, error) {
	policy := c.policy
	policy.OnRetry = func(attempt int, err error, backoff time.Duration) {
		c.logger.Warn("retrying review page", "app", appID, "page", page, "attempt", attempt, "backoff", backoff, "error", err)
	}

	classify := func(err error) retry.Action {
		if ctx.Err() != nil {
			return retry.Stop
		}
		return classifyStatus(err)
	}

	return retry.Do(ctx, policy, classify, func() ([]ingest.Review, error) {
		return c.fetchOnce(ctx, appID, page)
	})
}

func (c *Client) fetchOnce(ctx context.Context, appID, page int) ([]ingest.Review, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	out, err := c.breaker.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.PageURL(appID, page), nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			io.Copy(io.Discard, resp.Body)
			return nil, &StatusError{AppID: appID, Page: page, StatusCode: resp.StatusCode}
		}

		var body pageResponse
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			return nil, fmt.Errorf("decode app %d page %d: %w", appID, page, err)
		}
		if body.Success != 1 {
			return nil, fmt.Errorf("app %d page %d: %w", appID, page, errUnsuccessful)
		}
		return body.Reviews, nil
	})
	if err != nil {
		return nil, err
	}

	reviews := out.([]ingest.Review)
	for i := range reviews {
		reviews[i].Text = StripHTML(reviews[i].Text)
	}
	return reviews, nil
}

// classifyStatus maps a fetch error to a retry action: 429 waits for the
// rate-limit backoff, 5xx and network faults back off, anything else stops.
func classifyStatus(err error) retry.Action {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return retry.Stop
	}
	if errors.Is(err, errUnsuccessful) {
		return retry.Stop
	}

	var status *StatusError
	if errors.As(err, &status) {
		switch {
		case status.StatusCode == http.StatusTooManyRequests:
			return retry.After
		case status.StatusCode >= 500:
			return retry.Retry
		default:
			return retry.Stop
		}
	}
	return retry.Retry
}

// DownloadResult is everything retrieved for one app.
type DownloadResult struct {
	AppID    int
	Reviews  []ingest.Review
	Pages    int
	Complete bool
	Err      error // why the download stopped early; nil when Complete
}

// Download pages through an app's reviews until an empty page, a page with
// nothing new, or MaxPages. A page that still fails after retries ends the
// download with Complete false and the reviews gathered so far. The error
// return is reserved for ctx cancellation.
func (c *Client) Download(ctx context.Context, appID int) (DownloadResult, error) {
	res := DownloadResult{AppID: appID}
	seen := make(map[string]bool)

	for page := 0; c.maxPages == 0 || page < c.maxPages; page++ {
		batch, err := c.FetchPage(ctx, appID, page)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return res, ctxErr
			}
			res.Err = fmt.Errorf("%w: app %d page %d: %w", internalerr.ErrIncompleteDownload, appID, page, err)
			c.logger.Error("incomplete download", "app", appID, "page", page, "reviews", len(res.Reviews), "error", err)
			return res, nil
		}
		res.Pages++

		added := 0
		for _, r := range batch {
			if r.RecommendationID != "" {
				if seen[r.RecommendationID] {
					continue
				}
				seen[r.RecommendationID] = true
			}
			res.Reviews = append(res.Reviews, r)
			added++
		}
		c.logger.Debug("fetched review page", "app", appID, "page", page, "reviews", len(batch), "new", added)

		if added == 0 {
			break
		}
	}

	res.Complete = true
	return res, nil
}

// StripHTML reduces review markup to its text content.
func StripHTML(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return s
	}

	doc, err := html.Parse(strings.NewReader(s))
	if err != nil {
		return s
	}

	var buf strings.Builder
	var extractText func(*html.Node)
	extractText = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		if n.Type == html.ElementNode && n.Data == "br" {
			buf.WriteByte('\n')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extractText(c)
		}
	}
	extractText(doc)

	return strings.TrimSpace(buf.String())
}
