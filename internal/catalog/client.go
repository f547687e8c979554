package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"go.uber.org/zap"
)

const (
	defaultBaseURL      = "https://api.themoviedb.org/3"
	defaultImageBaseURL = "https://image.tmdb.org/t/p"
	defaultTimeout      = 10 * time.Second
	defaultAttempts     = 3
	defaultRetryDelay   = 250 * time.Millisecond
	defaultImageSize    = "w500"
	placeholderImage    = "/placeholder-movie.jpg"
	youTubeEmbedBaseURL = "https://www.youtube.com/embed/"
	detailsAppendFields = "credits,videos,similar"
)

var (
	// ErrInvalidClientConfig indicates the catalog client could not be constructed.
	ErrInvalidClientConfig = errors.New("catalog: invalid client config")
	// ErrNotFound is returned when the catalog has no record for the requested movie.
	ErrNotFound = errors.New("catalog: movie not found")
	// ErrUnavailable wraps non-success responses from the catalog.
	ErrUnavailable = errors.New("catalog: upstream unavailable")

	errMissingAPIKey  = errors.New("api key is required")
	errInvalidBaseURL = errors.New("base url is invalid")
	errInvalidMovieID = errors.New("movie id must be positive")
)

// ClientConfig bundles configuration for the TMDB client.
type ClientConfig struct {
	APIKey       string
	BaseURL      string
	ImageBaseURL string
	HTTPClient   *http.Client
	Timeout      time.Duration
	Attempts     uint
	RetryDelay   time.Duration
	Logger       *zap.Logger
}

// Client is a thin read-only wrapper around the TMDB v3 REST API.
type Client struct {
	apiKey       string
	baseURL      *url.URL
	imageBaseURL string
	httpClient   *http.Client
	attempts     uint
	retryDelay   time.Duration
	logger       *zap.Logger
}

// NewClient validates configuration and returns a Client.
func NewClient(cfg ClientConfig) (*Client, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, fmt.Errorf("%w: %v", ErrInvalidClientConfig, errMissingAPIKey)
	}

	rawBase := strings.TrimSpace(cfg.BaseURL)
	if rawBase == "" {
		rawBase = defaultBaseURL
	}
	baseURL, err := url.Parse(strings.TrimRight(rawBase, "/"))
	if err != nil || baseURL.Scheme == "" || baseURL.Host == "" {
		return nil, fmt.Errorf("%w: %v", ErrInvalidClientConfig, errInvalidBaseURL)
	}

	imageBaseURL := strings.TrimRight(strings.TrimSpace(cfg.ImageBaseURL), "/")
	if imageBaseURL == "" {
		imageBaseURL = defaultImageBaseURL
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	attempts := cfg.Attempts
	if attempts == 0 {
		attempts = defaultAttempts
	}

	retryDelay := cfg.RetryDelay
	if retryDelay <= 0 {
		retryDelay = defaultRetryDelay
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		apiKey:       apiKey,
		baseURL:      baseURL,
		imageBaseURL: imageBaseURL,
		httpClient:   httpClient,
		attempts:     attempts,
		retryDelay:   retryDelay,
		logger:       logger,
	}, nil
}

// Trending returns this week's trending movies.
func (c *Client) Trending(ctx context.Context) (MoviePage, error) {
	var page MoviePage
	err := c.getJSON(ctx, "/trending/movie/week", nil, &page)
	return page, err
}

// Popular returns the current popular movies.
func (c *Client) Popular(ctx context.Context) (MoviePage, error) {
	var page MoviePage
	err := c.getJSON(ctx, "/movie/popular", nil, &page)
	return page, err
}

// Search runs a free-text title search. An empty query yields an empty page
// without calling the catalog.
func (c *Client) Search(ctx context.Context, query string) (MoviePage, error) {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return MoviePage{Results: []Movie{}}, nil
	}
	var page MoviePage
	err := c.getJSON(ctx, "/search/movie", url.Values{"query": {trimmed}}, &page)
	return page, err
}

// Discover lists movies matching the provided TMDB discover filters.
func (c *Client) Discover(ctx context.Context, filters map[string]string) (MoviePage, error) {
	params := url.Values{}
	for key, value := range filters {
		if strings.TrimSpace(key) == "" || key == "api_key" {
			continue
		}
		params.Set(key, value)
	}
	var page MoviePage
	err := c.getJSON(ctx, "/discover/movie", params, &page)
	return page, err
}

// MovieDetails returns the full record for a movie including credits, videos
// and similar titles.
func (c *Client) MovieDetails(ctx context.Context, movieID int) (Movie, error) {
	if movieID <= 0 {
		return Movie{}, errInvalidMovieID
	}
	var movie Movie
	path := "/movie/" + strconv.Itoa(movieID)
	err := c.getJSON(ctx, path, url.Values{"append_to_response": {detailsAppendFields}}, &movie)
	return movie, err
}

// Genres returns the catalog's movie genre list.
func (c *Client) Genres(ctx context.Context) ([]Genre, error) {
	var response genreListResponse
	if err := c.getJSON(ctx, "/genre/movie/list", nil, &response); err != nil {
		return nil, err
	}
	return response.Genres, nil
}

// ImageURL builds a poster or backdrop URL for the configured image host.
func (c *Client) ImageURL(path, size string) string {
	if strings.TrimSpace(path) == "" {
		return placeholderImage
	}
	if strings.TrimSpace(size) == "" {
		size = defaultImageSize
	}
	return c.imageBaseURL + "/" + size + path
}

// YouTubeEmbedURL returns the embeddable player URL for a video key.
func YouTubeEmbedURL(key string) string {
	return youTubeEmbedBaseURL + key
}

type statusError struct {
	status int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("catalog request returned status %d", e.status)
}

func (c *Client) getJSON(ctx context.Context, path string, params url.Values, target any) error {
	endpoint := c.endpoint(path, params)

	err := retry.Do(
		func() error {
			return c.fetch(ctx, endpoint, target)
		},
		retry.Context(ctx),
		retry.Attempts(c.attempts),
		retry.Delay(c.retryDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(isRetryable),
		retry.OnRetry(func(attempt uint, err error) {
			c.logger.Debug("retrying catalog request",
				zap.String("path", path),
				zap.Uint("attempt", attempt+1),
				zap.Error(err))
		}),
	)
	if err == nil {
		return nil
	}

	var status *statusError
	if errors.As(err, &status) {
		if status.status == http.StatusNotFound {
			return ErrNotFound
		}
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrUnavailable, err)
}

func (c *Client) endpoint(path string, params url.Values) string {
	query := url.Values{}
	for key, values := range params {
		query[key] = values
	}
	query.Set("api_key", c.apiKey)

	target := *c.baseURL
	target.Path = strings.TrimRight(c.baseURL.Path, "/") + path
	target.RawQuery = query.Encode()
	return target.String()
}

func (c *Client) fetch(ctx context.Context, endpoint string, target any) error {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return retry.Unrecoverable(err)
	}
	request.Header.Set("Accept", "application/json")

	response, err := c.httpClient.Do(request)
	if err != nil {
		return err
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return &statusError{status: response.StatusCode}
	}

	if err := json.NewDecoder(response.Body).Decode(target); err != nil {
		return retry.Unrecoverable(fmt.Errorf("decode catalog response: %w", err))
	}
	return nil
}

func isRetryable(err error) bool {
	if !retry.IsRecoverable(err) {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var status *statusError
	if errors.As(err, &status) {
		return status.status == http.StatusTooManyRequests || status.status >= http.StatusInternalServerError
	}
	return true
}
