package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/dltmtt/viaggiatreno-api/internal/bulk"
	"github.com/dltmtt/viaggiatreno-api/internal/dump"
	"github.com/dltmtt/viaggiatreno-api/internal/feed"
	"github.com/dltmtt/viaggiatreno-api/internal/stations"
	"github.com/dltmtt/viaggiatreno-api/internal/viaggiatreno"
)

func (a *app) pipeline(sink bulk.Sink) *bulk.Pipeline {
	p := &bulk.Pipeline{Client: a.client, Workers: a.cfg.Concurrency, Sink: sink}
	if a.collector != nil {
		p.Metrics = a.collector
	}
	return p
}

// sweepRegions fetches every region's station list and prints one merged
// JSON array in region order.
func (a *app) sweepRegions(ctx context.Context) error {
	outcomes := bulk.Run(ctx, stations.RegionCodes(), a.cfg.Concurrency,
		func(ctx context.Context, region int) (viaggiatreno.Result, error) {
			return a.client.Call(ctx, viaggiatreno.EndpointStationList, region)
		})

	bulk.LogFailures(viaggiatreno.EndpointStationList, outcomes)
	logSummary(viaggiatreno.EndpointStationList, bulk.Summarize(outcomes))

	body, err := mergeJSONArrays(outcomes)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(os.Stdout, "%s\n", body)
	return err
}

// sweepLetters fans an initial-letter search out over A-Z and prints the
// merged payloads in alphabetical order: one JSON array for structured
// endpoints, newline-joined chunks for text ones.
func (a *app) sweepLetters(ctx context.Context, endpoint string, asJSON bool) error {
	outcomes := bulk.Run(ctx, letters(), a.cfg.Concurrency,
		func(ctx context.Context, letter string) (viaggiatreno.Result, error) {
			return a.client.Call(ctx, endpoint, letter)
		})

	bulk.LogFailures(endpoint, outcomes)
	logSummary(endpoint, bulk.Summarize(outcomes))

	if asJSON {
		body, err := mergeJSONArrays(outcomes)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(os.Stdout, "%s\n", body)
		return err
	}

	_, err := fmt.Fprint(os.Stdout, mergeText(outcomes))
	return err
}

// sweepBoards fetches one board per directory station and dumps every
// non-empty payload.
func (a *app) sweepBoards(ctx context.Context, endpoint, stationsFile, outDir string, when time.Time) error {
	codes, err := loadStationCodes(stationsFile)
	if err != nil {
		return err
	}

	p := a.pipeline(dump.NewWriter(outDir, time.Now()))
	_, summary := p.StationBoards(ctx, endpoint, codes, when)
	logSummary(endpoint, summary)
	return nil
}

func (a *app) dynamicDump(ctx context.Context, args []string) error {
	fs := newFlagSet("dynamic-dump")
	datetime := fs.String("datetime", "", "board instant (2006-01-02T15:04:05 or 15:04; default now)")
	readFrom := fs.String("read-from", a.cfg.StationsFile, "station directory file")
	outDir := fs.String("o", a.cfg.OutputDir, "dump directory")
	gtfsrt := fs.String("gtfsrt", "", "also export a GTFS-RT TripUpdate feed to this path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 0 {
		return errors.New("usage: dynamic-dump [-datetime X] [-read-from F] [-o DIR] [-gtfsrt FILE]")
	}

	when, err := parseWhen(*datetime, time.Now())
	if err != nil {
		return err
	}
	codes, err := loadStationCodes(*readFrom)
	if err != nil {
		return err
	}

	run := time.Now()
	p := a.pipeline(dump.NewWriter(*outDir, run))

	report, outcomes := p.Snapshot(ctx, codes, when)

	for _, endpoint := range []string{viaggiatreno.EndpointDepartures, viaggiatreno.EndpointArrivals} {
		logSummary(endpoint, report.Boards[endpoint])
	}
	slog.Info("snapshot complete",
		"trains", report.Refs,
		"data", report.Statuses.Data,
		"empty", report.Statuses.Empty,
		"failed", report.Statuses.Failed)

	if *gtfsrt != "" {
		results := bulk.DecodeStatuses(outcomes)
		if err := feed.Save(*gtfsrt, feed.Build(results, run)); err != nil {
			return err
		}
		slog.Info("feed written", "path", *gtfsrt, "trips", len(results))
	}
	return nil
}

func loadStationCodes(path string) ([]string, error) {
	list, err := stations.LoadFile(path)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, fmt.Errorf("station directory %s is empty", path)
	}
	return stations.Codes(list), nil
}
