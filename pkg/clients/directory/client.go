package directory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// ErrUnknownUser is returned when the directory has no entry for the id.
var ErrUnknownUser = errors.New("unknown user")

// Client resolves users against the directory HTTP API, with an optional
// read-through cache in front of it.
type Client struct {
	httpClient *resty.Client
	cache      KV
	cacheTTL   time.Duration
	logger     *zap.Logger
}

// NewClient creates a directory client. cache may be nil to disable caching.
func NewClient(baseURL, apiToken string, cache KV, cacheTTL time.Duration, logger *zap.Logger) *Client {
	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(10 * time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond).
		SetHeader("Accept", "application/json")
	if apiToken != "" {
		httpClient.SetAuthToken(apiToken)
	}

	return &Client{
		httpClient: httpClient,
		cache:      cache,
		cacheTTL:   cacheTTL,
		logger:     logger,
	}
}

// ResolveUser fetches a user by id, consulting the cache first. Cache
// trouble is logged and treated as a miss; the directory stays the source
// of truth.
func (c *Client) ResolveUser(ctx context.Context, userID string) (*User, error) {
	cacheKey := "directory:user:" + userID

	if c.cache != nil {
		cached, err := c.cache.Get(ctx, cacheKey)
		if err == nil {
			var user User
			if err := json.Unmarshal([]byte(cached), &user); err == nil {
				return &user, nil
			}
		} else if !errors.Is(err, ErrMiss) {
			c.logger.Warn("Directory cache read failed", zap.String("user_id", userID), zap.Error(err))
		}
	}

	var user User
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetResult(&user).
		Get("/users/" + userID)
	if err != nil {
		return nil, fmt.Errorf("directory request failed: %w", err)
	}
	if resp.StatusCode() == http.StatusNotFound {
		return nil, fmt.Errorf("user %s: %w", userID, ErrUnknownUser)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("directory returned %d for user %s", resp.StatusCode(), userID)
	}

	if c.cache != nil {
		if encoded, err := json.Marshal(user); err == nil {
			if err := c.cache.Set(ctx, cacheKey, string(encoded), c.cacheTTL); err != nil {
				c.logger.Warn("Directory cache write failed", zap.String("user_id", userID), zap.Error(err))
			}
		}
	}

	return &user, nil
}
