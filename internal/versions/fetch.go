package versions

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const userAgent = "devcluster"

// RateLimitError indicates GitHub's API rate limit was hit
type RateLimitError struct {
	StatusCode int
	Status     string
	Remaining  *int
}

func (e *RateLimitError) Error() string {
	remainingText := "unknown"
	if e.Remaining != nil {
		remainingText = fmt.Sprintf("%d", *e.Remaining)
	}
	return fmt.Sprintf("github api rate limit exceeded (%s, remaining=%s)", e.Status, remainingText)
}

// IsRateLimitError reports whether err represents a GitHub API rate-limit condition
func IsRateLimitError(err error) bool {
	var rl *RateLimitError
	return errors.As(err, &rl)
}

// HTTPFetcher fetches versions over HTTP. It makes exactly one request per call.
type HTTPFetcher struct {
	Client *http.Client
	// Token, when set, is sent as a bearer token to api.github.com
	Token string
}

// NewHTTPFetcher creates a fetcher with a 10 second timeout
func NewHTTPFetcher(token string) *HTTPFetcher {
	return &HTTPFetcher{
		Client: &http.Client{Timeout: 10 * time.Second},
		Token:  token,
	}
}

type latestReleaseResponse struct {
	TagName string `json:"tag_name"`
}

// Fetch returns the raw version string published at src.URL
func (f *HTTPFetcher) Fetch(ctx context.Context, src Source) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src.URL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	if src.Format == FormatGitHubRelease {
		req.Header.Set("Accept", "application/vnd.github+json")
		if f.Token != "" {
			req.Header.Set("Authorization", "Bearer "+f.Token)
		}
	}

	resp, err := f.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch %s: %w", src.URL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		if rl := rateLimitErrorFromResponse(resp); rl != nil {
			return "", rl
		}
		return "", fmt.Errorf("unexpected status fetching %s: %s", src.URL, resp.Status)
	}

	switch src.Format {
	case FormatGitHubRelease:
		var payload latestReleaseResponse
		if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
			return "", fmt.Errorf("failed to decode release: %w", err)
		}
		return payload.TagName, nil
	default:
		line, err := bufio.NewReader(io.LimitReader(resp.Body, 1024)).ReadString('\n')
		if err != nil && err != io.EOF {
			return "", fmt.Errorf("failed to read body: %w", err)
		}
		return strings.TrimSpace(line), nil
	}
}

func rateLimitErrorFromResponse(resp *http.Response) *RateLimitError {
	if resp.StatusCode == http.StatusTooManyRequests {
		return &RateLimitError{StatusCode: resp.StatusCode, Status: resp.Status}
	}
	// GitHub returns 403 for unauthenticated exhaustion; confirm with the rate-limit header
	if resp.StatusCode == http.StatusForbidden {
		remaining, err := strconv.Atoi(strings.TrimSpace(resp.Header.Get("X-RateLimit-Remaining")))
		if err == nil && remaining == 0 {
			return &RateLimitError{StatusCode: resp.StatusCode, Status: resp.Status, Remaining: &remaining}
		}
	}
	return nil
}
