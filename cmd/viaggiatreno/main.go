// Command viaggiatreno queries the ViaggiaTreno service from the command
// line. Single lookups print their payload to stdout; sweep modes fan out
// over the station directory and dump every payload to disk.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	_ "time/tzdata"

	"github.com/dltmtt/viaggiatreno-api/internal/config"
	"github.com/dltmtt/viaggiatreno-api/internal/metrics"
	"github.com/dltmtt/viaggiatreno-api/internal/resolve"
	"github.com/dltmtt/viaggiatreno-api/internal/viaggiatreno"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:]); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		usage()
		return errors.New("missing command")
	}

	cmd, rest := args[0], args[1:]
	if cmd == "help" || cmd == "-h" || cmd == "--help" {
		usage()
		return nil
	}

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return err
	}

	a := newApp(ctx, cfg)

	switch cmd {
	case "statistiche":
		return a.statistiche(ctx, rest)
	case "elencoStazioni":
		return a.elencoStazioni(ctx, rest)
	case "cercaStazione":
		return a.cercaStazione(ctx, rest)
	case "autocompletaStazione", "autocompletaStazioneImpostaViaggio", "autocompletaStazioneNTS":
		return a.autocompleta(ctx, cmd, rest)
	case "regione":
		return a.regione(ctx, rest)
	case "dettaglioStazione":
		return a.dettaglioStazione(ctx, rest)
	case "cercaNumeroTreno", "cercaNumeroTrenoTrenoAutocomplete":
		return a.trainSearch(ctx, cmd, rest)
	case "partenze", "arrivi":
		return a.board(ctx, cmd, rest)
	case "andamentoTreno":
		return a.andamentoTreno(ctx, rest)
	case "dynamic-dump":
		return a.dynamicDump(ctx, rest)
	default:
		usage()
		return fmt.Errorf("unknown command %q", cmd)
	}
}

// app carries the wired dependencies every subcommand shares.
type app struct {
	cfg       *config.Config
	client    *viaggiatreno.Client
	resolver  *resolve.Resolver
	collector *metrics.Collector
}

func newApp(ctx context.Context, cfg *config.Config) *app {
	opts := viaggiatreno.ClientOptions{
		BaseURL:        cfg.BaseURL,
		Timeout:        cfg.HTTPTimeout,
		MaxAttempts:    cfg.MaxRetries,
		InitialBackoff: cfg.InitialBackoff,
	}

	var collector *metrics.Collector
	if cfg.MetricsAddr != "" {
		collector = metrics.NewCollector()
		opts.Metrics = collector
		go func() {
			if err := collector.Serve(ctx, cfg.MetricsAddr); err != nil {
				slog.Error("metrics listener failed", "error", err)
			}
		}()
	}

	client := viaggiatreno.NewClient(opts)

	return &app{
		cfg:    cfg,
		client: client,
		resolver: &resolve.Resolver{
			Client: client,
			// Prompts share stderr with the logs; stdout stays payload-only.
			Chooser: &resolve.TerminalChooser{In: os.Stdin, Out: os.Stderr},
			Out:     os.Stderr,
		},
		collector: collector,
	}
}

func usage() {
	fmt.Fprint(os.Stderr, `Usage: viaggiatreno <command> [flags] [args]

Lookups (payload on stdout):
  statistiche                                  service-wide counters
  elencoStazioni [-all] <region>               stations of one region (0-22)
  cercaStazione [-all] <prefix>                station search (JSON)
  autocompletaStazione [-all] <prefix>         station autocomplete (NAME|CODE)
  autocompletaStazioneImpostaViaggio [-all] <prefix>
  autocompletaStazioneNTS [-all] <prefix>
  regione [-table] <station>                   region of a station
  dettaglioStazione [-region N] <station>      station record
  cercaNumeroTreno <number>
  cercaNumeroTrenoTrenoAutocomplete <number>
  partenze [-datetime X] <station>             departures board
  arrivi [-datetime X] <station>               arrivals board
  andamentoTreno [-s STATION -date D] <number> train status

Sweeps (dumps on disk, summaries on stderr):
  partenze -all / arrivi -all                  one board per directory station
  dynamic-dump [-gtfsrt FILE]                  boards plus the status of every
                                               train seen on them

Stations may be given as names (resolved interactively) or S-codes.
Configuration comes from VT_* environment variables; a .env file is honored.
`)
}
