package creditbureau

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"mortgage-eligibility/internal/domain/eligibility"

	"github.com/avast/retry-go/v4"
)

var errNoCreditFile = errors.New("no credit file")

type Config struct {
	BaseURL       string
	MinScore      int
	HTTPClient    *http.Client
	RetryAttempts uint
	RetryDelay    time.Duration
}

type scoreResponse struct {
	Score int `json:"score"`
}

// Client asks an external credit bureau for a customer's score and treats
// anything at or above MinScore as good credit.
type Client struct {
	config Config
	logger *slog.Logger
}

var _ eligibility.CreditChecker = (*Client)(nil)

func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 5 * time.Second}
	}
	if cfg.RetryAttempts == 0 {
		cfg.RetryAttempts = 1
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &Client{
		config: cfg,
		logger: logger.With("component", "CreditBureauClient"),
	}
}

func (c *Client) HasGoodCredit(ctx context.Context, cust eligibility.Customer) (bool, error) {
	c.logger.DebugContext(ctx, eligibility.TraceLine(eligibility.CheckCredit, cust))

	var score int
	err := retry.Do(
		func() error {
			s, err := c.fetchScore(ctx, cust.Name())
			if err != nil {
				return err
			}
			score = s
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(c.config.RetryAttempts),
		retry.Delay(c.config.RetryDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(attempt uint, err error) {
			c.logger.WarnContext(ctx, "Retrying credit bureau request", slog.Uint64("attempt", uint64(attempt)+1), slog.Any("error", err))
		}),
	)
	if errors.Is(err, errNoCreditFile) {
		c.logger.InfoContext(ctx, "No credit file for customer", slog.String("customer", cust.Name()))
		return false, nil
	}
	if err != nil {
		return false, err
	}

	c.logger.DebugContext(ctx, "Credit score received", slog.String("customer", cust.Name()), slog.Int("score", score))
	return score >= c.config.MinScore, nil
}

func (c *Client) fetchScore(ctx context.Context, name string) (int, error) {
	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodGet,
		fmt.Sprintf("%s/scores/%s", c.config.BaseURL, url.PathEscape(name)),
		nil,
	)
	if err != nil {
		return 0, retry.Unrecoverable(err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.config.HTTPClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("credit bureau request failed: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return 0, retry.Unrecoverable(errNoCreditFile)
	case resp.StatusCode >= http.StatusInternalServerError:
		return 0, fmt.Errorf("credit bureau returned status %d", resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return 0, retry.Unrecoverable(fmt.Errorf("credit bureau returned status %d", resp.StatusCode))
	}

	var body scoreResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return 0, retry.Unrecoverable(fmt.Errorf("failed to decode credit bureau response: %w", err))
	}
	return body.Score, nil
}
