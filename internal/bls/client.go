// Package bls fetches annual CPI and average-price series from the BLS
// public timeseries API.
package bls

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/francescacollu/prison-inflation/internal"
	"github.com/francescacollu/prison-inflation/internal/config"
)

type Client struct {
	cfg        config.Config
	httpClient *http.Client
	limiter    *pacer
}

type requestPayload struct {
	SeriesIDs       []string `json:"seriesid"`
	StartYear       string   `json:"startyear"`
	EndYear         string   `json:"endyear"`
	RegistrationKey string   `json:"registrationkey,omitempty"`
}

type apiResponse struct {
	Status  string   `json:"status"`
	Message []string `json:"message"`
	Results struct {
		Series []struct {
			SeriesID string `json:"seriesID"`
			Data     []struct {
				Year   string `json:"year"`
				Period string `json:"period"`
				Value  string `json:"value"`
			} `json:"data"`
		} `json:"series"`
	} `json:"Results"`
}

func NewClient(cfg config.Config) *Client {
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: time.Duration(cfg.BLSTimeoutMs) * time.Millisecond},
		limiter:    newPacer(cfg.BLSRateLimitRPS),
	}
}

// FetchCPI pulls every CPI series over the year range and returns annual
// observations labeled with the pipeline's CPI type names.
func (c *Client) FetchCPI(ctx context.Context, startYear, endYear int) ([]internal.CPIObservation, error) {
	return c.fetchLabeled(ctx, CPISeries, startYear, endYear)
}

// FetchAveragePrices pulls the regional APU grocery series over the year
// range.
func (c *Client) FetchAveragePrices(ctx context.Context, startYear, endYear int) ([]internal.CPIObservation, error) {
	return c.fetchLabeled(ctx, AveragePriceSeries(c.cfg.BLSRegionCode), startYear, endYear)
}

func (c *Client) fetchLabeled(ctx context.Context, series map[string]string, startYear, endYear int) ([]internal.CPIObservation, error) {
	ids := make([]string, 0, len(series))
	labelByID := make(map[string]string, len(series))
	for label, id := range series {
		ids = append(ids, id)
		labelByID[id] = label
	}
	sort.Strings(ids)

	resp, err := c.fetchSeries(ctx, ids, startYear, endYear)
	if err != nil {
		return nil, err
	}
	return annualize(resp, labelByID), nil
}

// annualize collapses each series to one observation per year.
func annualize(resp *apiResponse, labelByID map[string]string) []internal.CPIObservation {
	out := []internal.CPIObservation{}
	for _, s := range resp.Results.Series {
		label, ok := labelByID[s.SeriesID]
		if !ok {
			continue
		}
		// M13 is the published annual average; when present it wins over
		// the mean of the monthly values.
		published := map[int]float64{}
		monthly := map[int][]float64{}
		for _, point := range s.Data {
			year, err := strconv.Atoi(point.Year)
			if err != nil {
				continue
			}
			value, err := strconv.ParseFloat(point.Value, 64)
			if err != nil {
				continue
			}
			switch {
			case point.Period == "M13":
				published[year] = value
			case strings.HasPrefix(point.Period, "M"):
				monthly[year] = append(monthly[year], value)
			}
		}

		years := make([]int, 0, len(monthly))
		for y := range monthly {
			years = append(years, y)
		}
		for y := range published {
			if _, ok := monthly[y]; !ok {
				years = append(years, y)
			}
		}
		sort.Ints(years)

		for _, y := range years {
			value, ok := published[y]
			if !ok {
				values := monthly[y]
				sum := 0.0
				for _, v := range values {
					sum += v
				}
				value = sum / float64(len(values))
			}
			out = append(out, internal.CPIObservation{
				Year:    y,
				CPIType: label,
				Value:   value,
			})
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].CPIType != out[j].CPIType {
			return out[i].CPIType < out[j].CPIType
		}
		return out[i].Year < out[j].Year
	})
	return out
}

func (c *Client) fetchSeries(ctx context.Context, ids []string, startYear, endYear int) (*apiResponse, error) {
	payload := requestPayload{
		SeriesIDs:       ids,
		StartYear:       strconv.Itoa(startYear),
		EndYear:         strconv.Itoa(endYear),
		RegistrationKey: strings.TrimSpace(c.cfg.BLSAPIKey),
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	endpoint := strings.TrimRight(c.cfg.BLSAPIBaseURL, "/") + "/timeseries/data/"

	var lastErr error
	for attempt := 1; attempt <= 5; attempt++ {
		c.limiter.wait()

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		respBody, readErr := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if readErr != nil {
			lastErr = readErr
			continue
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			if isRetryableStatus(resp.StatusCode) && attempt < 5 {
				backoff := time.Duration(250*(1<<(attempt-1))+rand.Intn(100)) * time.Millisecond
				time.Sleep(backoff)
				lastErr = fmt.Errorf("bls status %d", resp.StatusCode)
				continue
			}
			return nil, fmt.Errorf("bls api error: status=%d body=%s", resp.StatusCode, string(respBody))
		}

		parsed, err := parseResponse(respBody)
		if err != nil {
			return nil, err
		}
		return parsed, nil
	}

	if lastErr == nil {
		lastErr = errors.New("bls request failed")
	}
	return nil, lastErr
}

func parseResponse(body []byte) (*apiResponse, error) {
	var parsed apiResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode bls response: %w", err)
	}
	if parsed.Status != "REQUEST_SUCCEEDED" {
		return nil, fmt.Errorf("bls api unsuccessful: status=%s message=%s", parsed.Status, strings.Join(parsed.Message, "; "))
	}
	return &parsed, nil
}

func isRetryableStatus(status int) bool {
	switch status {
	case 429, 500, 502, 503, 504:
		return true
	default:
		return false
	}
}
