package sponsorblock

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"sponsorcut/internal/logging"
	"sponsorcut/internal/segments"
	"sponsorcut/internal/services"
)

const (
	defaultBaseURL     = "https://sponsor.ajay.app"
	defaultUserAgent   = "sponsorcut"
	defaultHTTPTimeout = 10 * time.Second
	skipAction         = "skip"
	stage              = "fetching_segments"
)

// Fetcher returns the raw sponsor intervals for a video id.
type Fetcher interface {
	Fetch(ctx context.Context, videoID string) ([]segments.SponsorSegment, error)
}

// Config describes the client configuration.
type Config struct {
	BaseURL    string
	Categories []string
	UserAgent  string
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// Client wraps the SponsorBlock skipSegments endpoint.
type Client struct {
	baseURL    *url.URL
	categories []string
	userAgent  string
	http       *http.Client
	logger     *slog.Logger
}

// New creates a Client. Empty categories fall back to the default set.
func New(cfg Config) (*Client, error) {
	base := strings.TrimSpace(cfg.BaseURL)
	if base == "" {
		base = defaultBaseURL
	}
	baseURL, err := url.Parse(strings.TrimRight(base, "/"))
	if err != nil {
		return nil, fmt.Errorf("sponsorblock: parse base url: %w", err)
	}
	if baseURL.Scheme != "http" && baseURL.Scheme != "https" {
		return nil, fmt.Errorf("sponsorblock: base url %q must be http or https", base)
	}
	categories := normalizeCategories(cfg.Categories)
	if len(categories) == 0 {
		categories = segments.DefaultCategories()
	}
	userAgent := strings.TrimSpace(cfg.UserAgent)
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	client := cfg.HTTPClient
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultHTTPTimeout
		}
		client = &http.Client{Timeout: timeout}
	}
	return &Client{
		baseURL:    baseURL,
		categories: categories,
		userAgent:  userAgent,
		http:       client,
		logger:     logging.NewComponentLogger(cfg.Logger, "sponsorblock"),
	}, nil
}

// Categories returns the categories requested from the API.
func (c *Client) Categories() []string {
	return append([]string(nil), c.categories...)
}

// Fetch returns the valid skip segments for videoID. A video with no
// submissions yields an empty slice and no error.
func (c *Client) Fetch(ctx context.Context, videoID string) ([]segments.SponsorSegment, error) {
	if c == nil {
		return nil, services.Wrap(services.ErrSponsorFetch, stage, "sponsorblock", "client is nil", nil)
	}
	videoID = strings.TrimSpace(videoID)
	if videoID == "" {
		return nil, services.Wrap(services.ErrSponsorFetch, stage, "sponsorblock", "video id is required", nil)
	}

	endpoint := c.baseURL.JoinPath("api", "skipSegments")
	categories, err := json.Marshal(c.categories)
	if err != nil {
		return nil, services.Wrap(services.ErrSponsorFetch, stage, "encode categories", "", err)
	}
	params := url.Values{}
	params.Set("videoID", videoID)
	params.Set("categories", string(categories))
	params.Set("actionType", skipAction)
	endpoint.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, services.Wrap(services.ErrSponsorFetch, stage, "build request", "", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, services.Wrap(services.ErrSponsorFetch, stage, "request", "", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return []segments.SponsorSegment{}, nil
	}
	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, services.Wrap(services.ErrSponsorFetch, stage, "request",
			fmt.Sprintf("%s: %s", resp.Status, strings.TrimSpace(string(body))), nil)
	}

	var payload []skipSegment
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, services.Wrap(services.ErrSponsorFetch, stage, "decode response", "", err)
	}
	return c.convert(videoID, payload), nil
}

func (c *Client) convert(videoID string, payload []skipSegment) []segments.SponsorSegment {
	wanted := make(map[string]struct{}, len(c.categories))
	for _, category := range c.categories {
		wanted[category] = struct{}{}
	}
	out := make([]segments.SponsorSegment, 0, len(payload))
	for _, entry := range payload {
		if entry.ActionType != "" && entry.ActionType != skipAction {
			continue
		}
		category := strings.ToLower(strings.TrimSpace(entry.Category))
		if _, ok := wanted[category]; !ok {
			continue
		}
		if len(entry.Segment) != 2 {
			c.dropped(videoID, entry, errors.New("segment must have exactly two bounds"))
			continue
		}
		seg := segments.SponsorSegment{
			TimeInterval: segments.TimeInterval{Start: entry.Segment[0], End: entry.Segment[1]},
			Category:     category,
			UUID:         entry.UUID,
			ActionType:   entry.ActionType,
		}
		if err := segments.Validate(seg); err != nil {
			c.dropped(videoID, entry, err)
			continue
		}
		out = append(out, seg)
	}
	return out
}

func (c *Client) dropped(videoID string, entry skipSegment, err error) {
	logging.WarnWithContext(c.logger, "dropping invalid sponsor segment", "sponsor_segment_invalid",
		logging.String(logging.FieldItemID, videoID),
		logging.String("segment_uuid", entry.UUID),
		logging.String("category", entry.Category),
		logging.Error(err),
		logging.String(logging.FieldErrorHint, "the submission is malformed upstream"),
		logging.String(logging.FieldImpact, "this interval will not be removed"),
	)
}

type skipSegment struct {
	Segment       []float64 `json:"segment"`
	UUID          string    `json:"UUID"`
	Category      string    `json:"category"`
	ActionType    string    `json:"actionType"`
	VideoDuration float64   `json:"videoDuration"`
}

func normalizeCategories(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, value := range values {
		value = strings.ToLower(strings.TrimSpace(value))
		if value == "" {
			continue
		}
		if _, ok := seen[value]; ok {
			continue
		}
		seen[value] = struct{}{}
		out = append(out, value)
	}
	return out
}
