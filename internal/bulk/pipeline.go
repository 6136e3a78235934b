package bulk

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/dltmtt/viaggiatreno-api/internal/viaggiatreno"
)

// Sink receives raw payloads as the pipeline fetches them. Implementations
// decide layout and format; a write error counts as that key's failure.
type Sink interface {
	WriteBoard(endpoint, stationCode string, when time.Time, res viaggiatreno.Result) error
	WriteTrainStatus(ref viaggiatreno.TrainRef, res viaggiatreno.Result) error
}

// TaskRecorder observes per-stage batch tallies.
type TaskRecorder interface {
	ObserveTasks(stage string, s Summary)
}

// Pipeline drives the two bulk stages: a board per station, then one status
// call per distinct run seen on those boards. All requests share the
// client's backoff gate, so one rate-limit window stalls every worker.
type Pipeline struct {
	Client  *viaggiatreno.Client
	Workers int
	Sink    Sink         // optional
	Metrics TaskRecorder // optional
}

// StationBoards fetches the departures or arrivals board of every station
// code for the given instant. Outcomes keep the order of codes.
func (p *Pipeline) StationBoards(ctx context.Context, endpoint string, codes []string, when time.Time) ([]Outcome[string], Summary) {
	outcomes := Run(ctx, codes, p.Workers, func(ctx context.Context, code string) (viaggiatreno.Result, error) {
		res, err := p.Client.Board(ctx, endpoint, code, when)
		if err != nil {
			return viaggiatreno.Result{}, err
		}
		if p.Sink != nil && !res.Empty() {
			if err := p.Sink.WriteBoard(endpoint, code, when, res); err != nil {
				return viaggiatreno.Result{}, fmt.Errorf("saving %s board for %s: %w", endpoint, code, err)
			}
		}
		return res, nil
	})

	LogFailures(endpoint, outcomes)
	summary := Summarize(outcomes)
	p.observe(endpoint, summary)
	return outcomes, summary
}

// TrainStatuses fetches the status of every run. Outcomes keep the order
// of refs.
func (p *Pipeline) TrainStatuses(ctx context.Context, refs []viaggiatreno.TrainRef) ([]Outcome[viaggiatreno.TrainRef], Summary) {
	outcomes := Run(ctx, refs, p.Workers, func(ctx context.Context, ref viaggiatreno.TrainRef) (viaggiatreno.Result, error) {
		res, err := p.Client.TrainStatus(ctx, ref)
		if err != nil {
			return viaggiatreno.Result{}, err
		}
		if p.Sink != nil && !res.Empty() {
			if err := p.Sink.WriteTrainStatus(ref, res); err != nil {
				return viaggiatreno.Result{}, fmt.Errorf("saving status of train %s: %w", ref, err)
			}
		}
		return res, nil
	})

	LogFailures(viaggiatreno.EndpointTrainStatus, outcomes)
	summary := Summarize(outcomes)
	p.observe(viaggiatreno.EndpointTrainStatus, summary)
	return outcomes, summary
}

// CollectRefs decodes board payloads and returns the distinct runs they
// mention in ascending order. Identity is the full (number, origin,
// departure) triple; failed, empty and undecodable boards contribute
// nothing.
func CollectRefs(outcomes []Outcome[string]) []viaggiatreno.TrainRef {
	seen := make(map[viaggiatreno.TrainRef]struct{})
	var refs []viaggiatreno.TrainRef

	for _, o := range outcomes {
		if o.Err != nil || o.Result.Empty() || !o.Result.IsJSON() {
			continue
		}
		var entries []viaggiatreno.BoardEntry
		if err := o.Result.Decode(&entries); err != nil {
			slog.Warn("skipping undecodable board", "station", o.Key, "error", err)
			continue
		}
		for _, e := range entries {
			ref, ok := e.Ref()
			if !ok {
				continue
			}
			if _, dup := seen[ref]; dup {
				continue
			}
			seen[ref] = struct{}{}
			refs = append(refs, ref)
		}
	}

	sort.Slice(refs, func(i, j int) bool { return refs[i].Less(refs[j]) })
	return refs
}

// SnapshotReport aggregates both stages of a full sweep.
type SnapshotReport struct {
	Boards   map[string]Summary // keyed by board endpoint
	Refs     int
	Statuses Summary
}

// Snapshot runs the full two-stage sweep: departures and arrivals boards
// for every station, then one status fetch per distinct run seen on any
// board. Stage two starts only after both boards finish, so concurrency
// stays bounded by Workers alone.
func (p *Pipeline) Snapshot(ctx context.Context, codes []string, when time.Time) (SnapshotReport, []Outcome[viaggiatreno.TrainRef]) {
	report := SnapshotReport{Boards: make(map[string]Summary, 2)}

	var boardOutcomes []Outcome[string]
	for _, endpoint := range []string{viaggiatreno.EndpointDepartures, viaggiatreno.EndpointArrivals} {
		outcomes, summary := p.StationBoards(ctx, endpoint, codes, when)
		report.Boards[endpoint] = summary
		boardOutcomes = append(boardOutcomes, outcomes...)
	}

	refs := CollectRefs(boardOutcomes)
	report.Refs = len(refs)

	statusOutcomes, summary := p.TrainStatuses(ctx, refs)
	report.Statuses = summary

	return report, statusOutcomes
}

// StatusResult pairs a run with its decoded status payload.
type StatusResult struct {
	Ref  viaggiatreno.TrainRef
	Info viaggiatreno.TrainStatusInfo
}

// DecodeStatuses decodes successful stage-two payloads, skipping failed,
// empty and undecodable outcomes.
func DecodeStatuses(outcomes []Outcome[viaggiatreno.TrainRef]) []StatusResult {
	results := make([]StatusResult, 0, len(outcomes))
	for _, o := range outcomes {
		if o.Err != nil || o.Result.Empty() || !o.Result.IsJSON() {
			continue
		}
		var info viaggiatreno.TrainStatusInfo
		if err := o.Result.Decode(&info); err != nil {
			slog.Warn("skipping undecodable train status", "train", o.Key.String(), "error", err)
			continue
		}
		results = append(results, StatusResult{Ref: o.Key, Info: info})
	}
	return results
}

func (p *Pipeline) observe(stage string, s Summary) {
	if p.Metrics != nil {
		p.Metrics.ObserveTasks(stage, s)
	}
}
