package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"filmtrack/internal/services"
)

const (
	defaultTimeout   = 10 * time.Second
	maxErrorBodySize = 4 << 10

	detailsAppend = "credits,images,videos,recommendations"
)

// API defines the TMDB operations used by the metadata resolver.
type API interface {
	SearchMulti(ctx context.Context, query string, page int) (*Response, error)
	SearchMovie(ctx context.Context, query string, page int) (*Response, error)
	SearchTV(ctx context.Context, query string, page int) (*Response, error)
	MovieDetails(ctx context.Context, id int64) (*Details, error)
	TVDetails(ctx context.Context, id int64) (*Details, error)
	Images(ctx context.Context, kind MediaKind, id int64, includeLanguage string) (*ImagesResponse, error)
	Genres(ctx context.Context, kind MediaKind) (*GenreList, error)
}

// Client provides access to the TMDB API.
type Client struct {
	apiKey       string
	accessToken  string
	baseURL      string
	language     string
	includeAdult bool
	timeout      time.Duration
	httpClient   *http.Client
	customHTTP   bool
}

var _ API = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
			c.customHTTP = true
		}
	}
}

// WithAccessToken authenticates with a v4 read access token instead of the
// api_key query parameter.
func WithAccessToken(token string) Option {
	return func(c *Client) {
		c.accessToken = strings.TrimSpace(token)
	}
}

// WithIncludeAdult sets the include_adult search flag.
func WithIncludeAdult(include bool) Option {
	return func(c *Client) {
		c.includeAdult = include
	}
}

// WithTimeout overrides the per-request timeout of the default HTTP client.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// New creates a TMDB client. Either apiKey or WithAccessToken is required.
func New(apiKey, baseURL, language string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("tmdb base url required")
	}
	client := &Client{
		apiKey:   strings.TrimSpace(apiKey),
		baseURL:  strings.TrimRight(baseURL, "/"),
		language: strings.TrimSpace(language),
		timeout:  defaultTimeout,
	}
	for _, opt := range opts {
		opt(client)
	}
	if client.apiKey == "" && client.accessToken == "" {
		return nil, errors.New("tmdb api key or access token required")
	}
	if !client.customHTTP {
		client.httpClient = &http.Client{Timeout: client.timeout}
	}
	if client.accessToken != "" {
		base := client.httpClient.Transport
		if base == nil {
			base = http.DefaultTransport
		}
		authed := *client.httpClient
		authed.Transport = &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: client.accessToken, TokenType: "Bearer"}),
			Base:   base,
		}
		client.httpClient = &authed
	}
	return client, nil
}

// Language returns the response language sent with every request.
func (c *Client) Language() string { return c.language }

// SearchMulti searches movies and TV shows together.
func (c *Client) SearchMulti(ctx context.Context, query string, page int) (*Response, error) {
	return c.search(ctx, KindMulti, query, page)
}

// SearchMovie searches movies.
func (c *Client) SearchMovie(ctx context.Context, query string, page int) (*Response, error) {
	return c.search(ctx, KindMovie, query, page)
}

// SearchTV searches TV shows.
func (c *Client) SearchTV(ctx context.Context, query string, page int) (*Response, error) {
	return c.search(ctx, KindTV, query, page)
}

func (c *Client) search(ctx context.Context, kind MediaKind, query string, page int) (*Response, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, services.Wrap(services.ErrInvalidInput, "tmdb", "search", "query must not be empty", nil)
	}
	if page < 1 {
		page = 1
	}
	params := url.Values{}
	params.Set("query", query)
	params.Set("page", strconv.Itoa(page))
	params.Set("include_adult", strconv.FormatBool(c.includeAdult))

	var payload Response
	if err := c.getJSON(ctx, "/search/"+string(kind), params, &payload); err != nil {
		return nil, fmt.Errorf("tmdb %s search: %w", kind, err)
	}
	if kind.Concrete() {
		for i := range payload.Results {
			if payload.Results[i].MediaType == "" {
				payload.Results[i].MediaType = string(kind)
			}
		}
	}
	return &payload, nil
}

// MovieDetails fetches a movie with credits, images, videos and
// recommendations appended.
func (c *Client) MovieDetails(ctx context.Context, id int64) (*Details, error) {
	return c.details(ctx, KindMovie, id)
}

// TVDetails fetches a TV show with credits, images, videos and
// recommendations appended.
func (c *Client) TVDetails(ctx context.Context, id int64) (*Details, error) {
	return c.details(ctx, KindTV, id)
}

func (c *Client) details(ctx context.Context, kind MediaKind, id int64) (*Details, error) {
	if id <= 0 {
		return nil, services.Wrap(services.ErrInvalidInput, "tmdb", "details", "id must be positive", nil)
	}
	params := url.Values{}
	params.Set("append_to_response", detailsAppend)

	var payload Details
	if err := c.getJSON(ctx, fmt.Sprintf("/%s/%d", kind, id), params, &payload); err != nil {
		return nil, fmt.Errorf("tmdb %s details: %w", kind, err)
	}
	payload.MediaType = string(kind)
	return &payload, nil
}

// Images lists the images of a movie or TV show. includeLanguage is passed
// as include_image_language (for example "zh,en,null").
func (c *Client) Images(ctx context.Context, kind MediaKind, id int64, includeLanguage string) (*ImagesResponse, error) {
	if !kind.Concrete() {
		return nil, services.Wrap(services.ErrInvalidInput, "tmdb", "images", "kind must be movie or tv", nil)
	}
	if id <= 0 {
		return nil, services.Wrap(services.ErrInvalidInput, "tmdb", "images", "id must be positive", nil)
	}
	params := url.Values{}
	if lang := strings.TrimSpace(includeLanguage); lang != "" {
		params.Set("include_image_language", lang)
	}

	var payload ImagesResponse
	if err := c.getJSON(ctx, fmt.Sprintf("/%s/%d/images", kind, id), params, &payload); err != nil {
		return nil, fmt.Errorf("tmdb %s images: %w", kind, err)
	}
	return &payload, nil
}

// Genres fetches the genre list for movies or TV.
func (c *Client) Genres(ctx context.Context, kind MediaKind) (*GenreList, error) {
	if !kind.Concrete() {
		return nil, services.Wrap(services.ErrInvalidInput, "tmdb", "genres", "kind must be movie or tv", nil)
	}
	var payload GenreList
	if err := c.getJSON(ctx, "/genre/"+string(kind)+"/list", url.Values{}, &payload); err != nil {
		return nil, fmt.Errorf("tmdb %s genres: %w", kind, err)
	}
	return &payload, nil
}

// getJSON issues a GET against path and decodes a 200 response into dst.
func (c *Client) getJSON(ctx context.Context, path string, params url.Values, dst any) error {
	endpoint, err := url.Parse(c.baseURL + path)
	if err != nil {
		return fmt.Errorf("parse tmdb url: %w", err)
	}
	if c.apiKey != "" && c.accessToken == "" {
		params.Set("api_key", c.apiKey)
	}
	if c.language != "" {
		params.Set("language", c.language)
	}
	endpoint.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return fmt.Errorf("execute request (latency=%v): %w", latency, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
		return fmt.Errorf("latency=%v: %w", latency, &HTTPError{StatusCode: resp.StatusCode, Body: body})
	}
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("decode tmdb response: %w", err)
	}
	return nil
}
