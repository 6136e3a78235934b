package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/dltmtt/viaggiatreno-api/internal/stations"
	"github.com/dltmtt/viaggiatreno-api/internal/viaggiatreno"
)

func (a *app) statistiche(ctx context.Context, args []string) error {
	fs := newFlagSet("statistiche")
	if err := fs.Parse(args); err != nil {
		return err
	}

	res, err := a.client.Stats(ctx, time.Now())
	if err != nil {
		return err
	}
	return printResult(os.Stdout, res)
}

func (a *app) elencoStazioni(ctx context.Context, args []string) error {
	fs := newFlagSet("elencoStazioni")
	all := addAllFlag(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *all {
		return a.sweepRegions(ctx)
	}

	if fs.NArg() != 1 {
		return errors.New("usage: elencoStazioni [-all] <region 0-22>")
	}
	region, err := strconv.Atoi(fs.Arg(0))
	if err != nil || !stations.ValidRegion(region) {
		return fmt.Errorf("invalid region %q: want 0-22", fs.Arg(0))
	}

	res, err := a.client.Call(ctx, viaggiatreno.EndpointStationList, region)
	if err != nil {
		return err
	}
	return printResult(os.Stdout, res)
}

func (a *app) cercaStazione(ctx context.Context, args []string) error {
	fs := newFlagSet("cercaStazione")
	all := addAllFlag(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *all {
		return a.sweepLetters(ctx, viaggiatreno.EndpointStationSearch, true)
	}

	if fs.NArg() != 1 {
		return errors.New("usage: cercaStazione [-all] <prefix>")
	}
	res, err := a.client.Call(ctx, viaggiatreno.EndpointStationSearch, fs.Arg(0))
	if err != nil {
		return err
	}
	return printResult(os.Stdout, res)
}

func (a *app) autocompleta(ctx context.Context, endpoint string, args []string) error {
	fs := newFlagSet(endpoint)
	all := addAllFlag(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *all {
		return a.sweepLetters(ctx, endpoint, false)
	}

	if fs.NArg() != 1 {
		return fmt.Errorf("usage: %s [-all] <prefix>", endpoint)
	}
	res, err := a.client.Call(ctx, endpoint, fs.Arg(0))
	if err != nil {
		return err
	}
	return printResult(os.Stdout, res)
}

func (a *app) regione(ctx context.Context, args []string) error {
	fs := newFlagSet("regione")
	table := fs.Bool("table", false, "print the region code table and exit")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *table {
		for _, code := range stations.RegionCodes() {
			fmt.Printf("%2d  %s\n", code, stations.Regions[code])
		}
		return nil
	}

	if fs.NArg() != 1 {
		return errors.New("usage: regione [-table] <station>")
	}
	code, err := a.resolver.Station(ctx, fs.Arg(0))
	if err != nil {
		return err
	}

	region, err := a.client.Region(ctx, code)
	if err != nil {
		return err
	}
	if region == viaggiatreno.RegionUnknown {
		fmt.Printf("Region not available for %s.\n", code)
		return nil
	}
	fmt.Printf("%d  %s\n", region, stations.RegionName(region))
	return nil
}

func (a *app) dettaglioStazione(ctx context.Context, args []string) error {
	fs := newFlagSet("dettaglioStazione")
	region := fs.Int("region", viaggiatreno.RegionUnknown, "region code; looked up when omitted")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if fs.NArg() != 1 {
		return errors.New("usage: dettaglioStazione [-region N] <station>")
	}
	code, err := a.resolver.Station(ctx, fs.Arg(0))
	if err != nil {
		return err
	}

	r := *region
	if r == viaggiatreno.RegionUnknown {
		// The detail endpoint accepts -1 when the region lookup has nothing.
		if r, err = a.client.Region(ctx, code); err != nil {
			return err
		}
	}

	res, err := a.client.StationDetail(ctx, code, r)
	if err != nil {
		return err
	}
	return printResult(os.Stdout, res)
}

func (a *app) trainSearch(ctx context.Context, endpoint string, args []string) error {
	fs := newFlagSet(endpoint)
	if err := fs.Parse(args); err != nil {
		return err
	}

	if fs.NArg() != 1 {
		return fmt.Errorf("usage: %s <number>", endpoint)
	}
	number, err := strconv.ParseInt(fs.Arg(0), 10, 64)
	if err != nil {
		return fmt.Errorf("invalid train number %q", fs.Arg(0))
	}

	res, err := a.client.Call(ctx, endpoint, number)
	if err != nil {
		return err
	}
	return printResult(os.Stdout, res)
}

func (a *app) board(ctx context.Context, endpoint string, args []string) error {
	fs := newFlagSet(endpoint)
	all := addAllFlag(fs)
	datetime := fs.String("datetime", "", "board instant (2006-01-02T15:04:05 or 15:04; default now)")
	readFrom := fs.String("read-from", a.cfg.StationsFile, "station directory for -all sweeps")
	outDir := fs.String("o", a.cfg.OutputDir, "dump directory for -all sweeps")
	if err := fs.Parse(args); err != nil {
		return err
	}

	when, err := parseWhen(*datetime, time.Now())
	if err != nil {
		return err
	}

	if *all {
		return a.sweepBoards(ctx, endpoint, *readFrom, *outDir, when)
	}

	if fs.NArg() != 1 {
		return fmt.Errorf("usage: %s [-all] [-datetime X] <station>", endpoint)
	}
	code, err := a.resolver.Station(ctx, fs.Arg(0))
	if err != nil {
		return err
	}

	res, err := a.client.Board(ctx, endpoint, code, when)
	if err != nil {
		return err
	}
	return printResult(os.Stdout, res)
}

func (a *app) andamentoTreno(ctx context.Context, args []string) error {
	fs := newFlagSet("andamentoTreno")
	origin := fs.String("departure-station", "", "origin station code or name")
	fs.StringVar(origin, "s", "", "shorthand for -departure-station")
	date := fs.String("date", "", "departure date (2006-01-02)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if fs.NArg() != 1 {
		return errors.New("usage: andamentoTreno [-departure-station S] [-date D] <number>")
	}
	number, err := strconv.ParseInt(fs.Arg(0), 10, 64)
	if err != nil {
		return fmt.Errorf("invalid train number %q", fs.Arg(0))
	}

	ref, err := a.trainRef(ctx, number, *origin, *date)
	if err != nil {
		return err
	}

	res, err := a.client.TrainStatus(ctx, ref)
	if err != nil {
		return err
	}
	return printResult(os.Stdout, res)
}

// trainRef builds the status-call triple: directly when both origin and
// date are supplied, through the search protocol otherwise.
func (a *app) trainRef(ctx context.Context, number int64, origin, date string) (viaggiatreno.TrainRef, error) {
	if origin != "" && date != "" {
		code, err := a.resolver.Station(ctx, origin)
		if err != nil {
			return viaggiatreno.TrainRef{}, err
		}
		day, err := time.ParseInLocation(dateLayout, date, viaggiatreno.Rome())
		if err != nil {
			return viaggiatreno.TrainRef{}, fmt.Errorf("invalid date %q: want %s", date, dateLayout)
		}
		return viaggiatreno.TrainRef{Number: number, Origin: code, DepartureMillis: day.UnixMilli()}, nil
	}

	if origin != "" || date != "" {
		slog.Warn("need both -departure-station and -date to skip the search; resolving instead")
	}
	match, err := a.resolver.Train(ctx, number)
	if err != nil {
		return viaggiatreno.TrainRef{}, err
	}
	return match.Ref, nil
}
