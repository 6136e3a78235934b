package viaggiatreno

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Typed wrappers over Call for the endpoints whose arguments need
// formatting. Passthrough endpoints are called with Call directly.

// Departures fetches the departure board of a station at an instant.
func (c *Client) Departures(ctx context.Context, stationCode string, when time.Time) (Result, error) {
	return c.Call(ctx, EndpointDepartures, stationCode, FormatTimetable(when))
}

// Arrivals fetches the arrival board of a station at an instant.
func (c *Client) Arrivals(ctx context.Context, stationCode string, when time.Time) (Result, error) {
	return c.Call(ctx, EndpointArrivals, stationCode, FormatTimetable(when))
}

// Board fetches either board; endpoint must be EndpointDepartures or
// EndpointArrivals.
func (c *Client) Board(ctx context.Context, endpoint, stationCode string, when time.Time) (Result, error) {
	return c.Call(ctx, endpoint, stationCode, FormatTimetable(when))
}

// TrainStatus fetches the live status of one train run.
func (c *Client) TrainStatus(ctx context.Context, ref TrainRef) (Result, error) {
	return c.Call(ctx, EndpointTrainStatus, ref.Origin, ref.Number, ref.DepartureMillis)
}

// Stats fetches service statistics as of now.
func (c *Client) Stats(ctx context.Context, now time.Time) (Result, error) {
	return c.Call(ctx, EndpointStats, now.UnixMilli())
}

// Region returns the region code of a station, or RegionUnknown when the
// service has none on file. The endpoint answers with a bare number in
// either representation, so both are accepted.
func (c *Client) Region(ctx context.Context, stationCode string) (int, error) {
	res, err := c.Call(ctx, EndpointRegion, stationCode)
	if err != nil {
		return RegionUnknown, err
	}
	if res.Empty() {
		return RegionUnknown, nil
	}

	if res.IsJSON() {
		var code int
		if err := res.Decode(&code); err != nil {
			return RegionUnknown, fmt.Errorf("parsing region for %s: %w", stationCode, err)
		}
		return code, nil
	}

	code, err := strconv.Atoi(strings.TrimSpace(res.Text()))
	if err != nil {
		return RegionUnknown, fmt.Errorf("parsing region for %s: %w", stationCode, err)
	}
	return code, nil
}

// StationDetail fetches detailed station information. Pass RegionUnknown
// when the region lookup came up empty; the service accepts it.
func (c *Client) StationDetail(ctx context.Context, stationCode string, region int) (Result, error) {
	return c.Call(ctx, EndpointStationDetail, stationCode, region)
}
