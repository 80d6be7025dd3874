package zepp

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/blaisecz/zepp-sleep-report/pkg/dateutil"
	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const defaultBandDataBaseURL = "https://api-mifit.huami.com"

// bandDataResponse is the top-level band-data envelope. Each day carries its
// summary as a base64 blob; decoding it is the pipeline's job, not the
// transport's.
type bandDataResponse struct {
	Data []daySummary `json:"data"`
}

type daySummary struct {
	DateTime string `json:"date_time"`
	Summary  string `json:"summary"`
}

// Client fetches raw band-data summaries from the Zepp API.
type Client struct {
	httpClient *resty.Client
	creds      *Credentials
	logger     *zap.Logger
}

// NewClient creates a band-data client using an already-resolved credential
// pair. Token refresh and expiry are the authenticator's concern.
func NewClient(creds *Credentials, logger *zap.Logger) *Client {
	httpClient := resty.New().
		SetBaseURL(defaultBandDataBaseURL).
		SetTimeout(30 * time.Second).
		SetHeader("apptoken", creds.AppToken).
		SetHeader("User-Agent", userAgent).
		SetHeader("Accept", "application/json")

	return &Client{
		httpClient: httpClient,
		creds:      creds,
		logger:     logger,
	}
}

// FetchRange retrieves the raw base64 summary for every day the API has in
// [from, to], keyed by YYYY-MM-DD date. Days the vendor has nothing for are
// simply absent from the map.
func (c *Client) FetchRange(ctx context.Context, from, to dateutil.Date) (map[string]string, error) {
	c.logger.Info("fetching band data",
		zap.String("from", from.String()),
		zap.String("to", to.String()),
		zap.String("user_id", c.creds.UserID),
	)

	var response bandDataResponse
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"query_type":  "summary",
			"device_type": "android_phone",
			"userid":      c.creds.UserID,
			"from_date":   from.String(),
			"to_date":     to.String(),
		}).
		SetResult(&response).
		Get("/v1/data/band_data.json")
	if err != nil {
		return nil, fmt.Errorf("band data request: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("band data request: unexpected status %d", resp.StatusCode())
	}

	summaries := make(map[string]string, len(response.Data))
	for _, day := range response.Data {
		summaries[day.DateTime] = day.Summary
	}

	c.logger.Info("band data received", zap.Int("days", len(summaries)))
	return summaries, nil
}

// RangeSource adapts the range-oriented band-data endpoint to the
// collector's per-day lookup. The whole range is fetched once, on the first
// lookup; subsequent days are served from memory. If the range fetch fails,
// every day in the range reports that failure.
type RangeSource struct {
	client *Client
	from   dateutil.Date
	to     dateutil.Date

	once      sync.Once
	summaries map[string]string
	err       error
}

// NewRangeSource creates a RangeSource covering [from, to].
func (c *Client) NewRangeSource(from, to dateutil.Date) *RangeSource {
	return &RangeSource{client: c, from: from, to: to}
}

// FetchDay returns the raw base64 summary for one day, or an empty string
// when the vendor has no data for it.
func (s *RangeSource) FetchDay(ctx context.Context, date dateutil.Date) (string, error) {
	s.once.Do(func() {
		s.summaries, s.err = s.client.FetchRange(ctx, s.from, s.to)
	})
	if s.err != nil {
		return "", s.err
	}
	return s.summaries[date.String()], nil
}
