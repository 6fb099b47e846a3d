package travel

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"fieldops/internal/core/geo"
	perr "fieldops/internal/platform/errors"
	"fieldops/internal/platform/logger"
)

const (
	mapsBaseURLDefault = "https://maps.googleapis.com/maps/api/distancematrix/json"
	mapsTimeoutDefault = 8 * time.Second
	mapsUADefault      = "fieldops-dispatch"
)

// MapsOptions configures the distance-matrix client.
type MapsOptions struct {
	APIKey    string
	BaseURL   string
	UserAgent string
	Timeout   time.Duration

	// DepartNow asks the provider for duration_in_traffic when true.
	DepartNow bool
}

// MapsClient is a minimal Distance Matrix API client. It implements
// Provider; the oracle swallows its failures, so errors here only need
// to be descriptive, never recoverable.
type MapsClient struct {
	http *http.Client
	opts MapsOptions
	log  logger.Logger
}

// NewMapsClient creates a client with sane defaults.
func NewMapsClient(o MapsOptions) *MapsClient {
	if o.BaseURL == "" {
		o.BaseURL = mapsBaseURLDefault
	}
	if o.UserAgent == "" {
		o.UserAgent = mapsUADefault
	}
	if o.Timeout <= 0 {
		o.Timeout = mapsTimeoutDefault
	}
	return &MapsClient{
		http: &http.Client{Timeout: o.Timeout},
		opts: o,
		log:  *logger.Named("maps"),
	}
}

// matrixResponse mirrors the provider wire format, fields we read only.
type matrixResponse struct {
	Status string `json:"status"`
	Rows   []struct {
		Elements []struct {
			Status   string `json:"status"`
			Duration struct {
				Value int64 `json:"value"` // seconds
			} `json:"duration"`
		} `json:"elements"`
	} `json:"rows"`
}

// Durations fetches the driving-duration matrix for origins x destinations.
// Cells the provider marks non-OK come back as zero so the oracle can fall
// back per pair.
func (c *MapsClient) Durations(ctx context.Context, origins, destinations []geo.Location) ([][]time.Duration, error) {
	if len(origins) == 0 || len(destinations) == 0 {
		return nil, perr.InvalidArgf("empty origins or destinations")
	}
	if len(origins) > providerBatchMax || len(destinations) > providerBatchMax {
		return nil, perr.InvalidArgf("matrix batch exceeds %d a side", providerBatchMax)
	}

	q := url.Values{}
	q.Set("origins", joinCoords(origins))
	q.Set("destinations", joinCoords(destinations))
	q.Set("mode", "driving")
	q.Set("key", c.opts.APIKey)
	if c.opts.DepartNow {
		q.Set("departure_time", "now")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.opts.BaseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeUnknown, "maps new request failed")
	}
	req.Header.Set("User-Agent", c.opts.UserAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeUnavailable, "maps request failed")
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, perr.Unavailablef("maps status %d", resp.StatusCode)
	}

	var body matrixResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeJSON, "maps decode failed")
	}
	if body.Status != "OK" {
		return nil, perr.Unavailablef("maps response status %q", body.Status)
	}
	if len(body.Rows) != len(origins) {
		return nil, perr.Unavailablef("maps row count %d, want %d", len(body.Rows), len(origins))
	}

	out := make([][]time.Duration, len(origins))
	for r := range body.Rows {
		els := body.Rows[r].Elements
		out[r] = make([]time.Duration, len(destinations))
		if len(els) != len(destinations) {
			continue // whole row falls back
		}
		for cIdx := range els {
			if els[cIdx].Status != "OK" {
				continue
			}
			out[r][cIdx] = time.Duration(els[cIdx].Duration.Value) * time.Second
		}
	}
	return out, nil
}

func joinCoords(locs []geo.Location) string {
	parts := make([]string, len(locs))
	for i, l := range locs {
		parts[i] = fmt.Sprintf("%.6f,%.6f", l.Lat, l.Lon)
	}
	return strings.Join(parts, "|")
}
