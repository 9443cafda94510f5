package alphavantage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// Alphavantage is a Stock and ETF API that fetches data including pricing data
// It is a subscription service, but provides free API access
// https://www.alphavantage.co/documentation/
const defaultBaseURL = "https://www.alphavantage.co/query"

// Output sizes for TIME_SERIES_DAILY
const (
	OutputCompact = "compact" // last 100 data points
	OutputFull    = "full"    // 20+ years of history
)

var (
	// ErrSymbolNotFound is returned when AlphaVantage rejects the symbol
	ErrSymbolNotFound = errors.New("alphavantage: unknown symbol")
	// ErrRateLimited is returned when AlphaVantage answers with a throttling note
	ErrRateLimited = errors.New("alphavantage: rate limit reached")
)

// Client is an HTTP client for the AlphaVantage API
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient creates a new AlphaVantage client that sends at most
// requestsPerMinute requests. Zero or less disables throttling.
func NewClient(apiKey string, requestsPerMinute int) *Client {
	return NewClientWithBaseURL(apiKey, defaultBaseURL, requestsPerMinute)
}

// NewClientWithBaseURL creates a new AlphaVantage client with a custom base URL (for testing)
func NewClientWithBaseURL(apiKey, baseURL string, requestsPerMinute int) *Client {
	limit := rate.Inf
	if requestsPerMinute > 0 {
		limit = rate.Every(time.Minute / time.Duration(requestsPerMinute))
	}
	return &Client{
		apiKey:  apiKey,
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		limiter: rate.NewLimiter(limit, 1),
	}
}

// GetDailyPrices fetches daily price data for a symbol, oldest first.
// Rows with unparseable dates or closes are skipped.
func (c *Client) GetDailyPrices(ctx context.Context, symbol string, outputSize string) ([]ParsedPriceData, error) {
	params := url.Values{}
	params.Set("function", "TIME_SERIES_DAILY")
	params.Set("symbol", symbol)
	params.Set("outputsize", outputSize)
	params.Set("apikey", c.apiKey)

	body, err := c.doRequest(ctx, params)
	if err != nil {
		return nil, err
	}

	var tsResp TimeSeriesDailyResponse
	if err := json.Unmarshal(body, &tsResp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	if len(tsResp.TimeSeries) == 0 {
		return nil, fmt.Errorf("%w: no daily series returned for %s", ErrSymbolNotFound, symbol)
	}

	prices := make([]ParsedPriceData, 0, len(tsResp.TimeSeries))
	for dateStr, ohlcv := range tsResp.TimeSeries {
		date, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			log.Debugf("%s: skipping row with bad date %q", symbol, dateStr)
			continue
		}
		closePrice, err := strconv.ParseFloat(ohlcv.Close, 64)
		if err != nil {
			log.Debugf("%s: skipping %s with bad close %q", symbol, dateStr, ohlcv.Close)
			continue
		}

		open, _ := strconv.ParseFloat(ohlcv.Open, 64)
		high, _ := strconv.ParseFloat(ohlcv.High, 64)
		low, _ := strconv.ParseFloat(ohlcv.Low, 64)
		volume, _ := strconv.ParseInt(ohlcv.Volume, 10, 64)

		prices = append(prices, ParsedPriceData{
			Date:   date,
			Open:   open,
			High:   high,
			Low:    low,
			Close:  closePrice,
			Volume: volume,
		})
	}
	sort.Slice(prices, func(i, j int) bool { return prices[i].Date.Before(prices[j].Date) })

	return prices, nil
}

// doRequest waits for the rate limiter, performs the GET and returns the body.
// JSON bodies carrying an AlphaVantage error message are turned into errors.
func (c *Client) doRequest(ctx context.Context, params url.Values) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	reqURL := c.baseURL + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	log.Debugf("AlphaVantage %s %s took %d ms", params.Get("function"), params.Get("symbol"), time.Since(start).Milliseconds())

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if err := checkAPIMessage(body); err != nil {
		return nil, err
	}
	return body, nil
}

// checkAPIMessage detects the error payloads AlphaVantage returns with status 200
func checkAPIMessage(body []byte) error {
	var msg apiMessage
	if json.Unmarshal(body, &msg) != nil {
		// not a JSON object; nothing to inspect
		return nil
	}
	switch {
	case msg.ErrorMessage != "":
		return fmt.Errorf("%w: %s", ErrSymbolNotFound, msg.ErrorMessage)
	case msg.Note != "":
		return fmt.Errorf("%w: %s", ErrRateLimited, msg.Note)
	case msg.Information != "":
		return fmt.Errorf("%w: %s", ErrRateLimited, msg.Information)
	}
	return nil
}
