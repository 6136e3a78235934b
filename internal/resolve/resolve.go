// Package resolve turns free-text station names and train numbers into the
// canonical identifiers the service expects, prompting through a Chooser
// when a search is ambiguous.
package resolve

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dltmtt/viaggiatreno-api/internal/stations"
	"github.com/dltmtt/viaggiatreno-api/internal/viaggiatreno"
)

// maxCandidates caps how many matches a prompt lists. Choices beyond the
// listed ones are still accepted as long as they index a real match.
const maxCandidates = 10

// ErrSelectionCancelled is returned when the user cancels an ambiguous
// selection or picks a number outside the match list.
var ErrSelectionCancelled = errors.New("selection cancelled or invalid")

// NoMatchError is returned when a search yields nothing.
type NoMatchError struct {
	Kind  string
	Input string
}

func (e *NoMatchError) Error() string {
	return fmt.Sprintf("no %ss found matching %q", e.Kind, e.Input)
}

// Chooser picks one entry from an ambiguous candidate list. Implementations
// return the 1-based index of the chosen option, or 0 to cancel. omitted is
// how many further matches exist beyond the listed options; indexes into
// that tail are valid too.
type Chooser interface {
	Choose(header, prompt string, options []string, omitted int) (int, error)
}

// Resolver resolves identifiers through a shared client. Out receives
// confirmation lines for interactive callers; leave it nil to silence them.
// A Resolver without a Chooser fails on ambiguous input instead of
// prompting, which keeps it safe to use from worker pools.
type Resolver struct {
	Client  *viaggiatreno.Client
	Chooser Chooser
	Out     io.Writer
}

// IsStationCode reports whether s already has the shape of a station code:
// an S (either case) followed by exactly five digits.
func IsStationCode(s string) bool {
	if len(s) != 6 {
		return false
	}
	if s[0] != 'S' && s[0] != 's' {
		return false
	}
	for i := 1; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// Station resolves free-text input to a station code. Input already shaped
// like a code is returned uppercased without touching the network, so
// resolution is idempotent for resolved values.
func (r *Resolver) Station(ctx context.Context, input string) (string, error) {
	if IsStationCode(input) {
		return strings.ToUpper(input), nil
	}

	res, err := r.Client.Call(ctx, viaggiatreno.EndpointStationAutocomplete, input)
	if err != nil {
		return "", fmt.Errorf("searching stations: %w", err)
	}

	matches, err := stations.Parse(strings.NewReader(res.Text()))
	if err != nil {
		return "", err
	}

	switch len(matches) {
	case 0:
		return "", &NoMatchError{Kind: "station", Input: input}
	case 1:
		r.echo("Using station: %s (%s).", matches[0].Name, matches[0].Code)
		return matches[0].Code, nil
	}

	options := make([]string, 0, min(len(matches), maxCandidates))
	for i, s := range matches {
		if i == maxCandidates {
			break
		}
		options = append(options, fmt.Sprintf("%s (%s)", s.Name, s.Code))
	}

	choice, err := r.choose(
		fmt.Sprintf("Multiple stations found matching '%s':", input),
		"Please choose a station (or 0 to cancel)",
		options,
		len(matches)-len(options),
	)
	if err != nil {
		return "", err
	}
	if choice <= 0 || choice > len(matches) {
		return "", ErrSelectionCancelled
	}

	chosen := matches[choice-1]
	r.echo("Selected station: %s (%s).", chosen.Name, chosen.Code)
	return chosen.Code, nil
}

// TrainMatch pairs a resolved train run with the display name of its origin
// station.
type TrainMatch struct {
	Ref        viaggiatreno.TrainRef
	OriginName string
}

// Train resolves a train number to a concrete run. The same number can be
// reused by several runs on different days or from different origins, so an
// ambiguous result goes through the Chooser like station searches do.
func (r *Resolver) Train(ctx context.Context, number int64) (TrainMatch, error) {
	res, err := r.Client.Call(ctx, viaggiatreno.EndpointTrainAutocomplete, number)
	if err != nil {
		return TrainMatch{}, fmt.Errorf("searching trains: %w", err)
	}

	matches := parseTrainMatches(res.Text())

	switch len(matches) {
	case 0:
		return TrainMatch{}, &NoMatchError{Kind: "train", Input: strconv.FormatInt(number, 10)}
	case 1:
		m := matches[0]
		r.echo("Using train %d departing from %s (%s) on %s.",
			m.Ref.Number, m.OriginName, m.Ref.Origin, m.Ref.Departure().Format("2006-01-02"))
		return m, nil
	}

	options := make([]string, 0, min(len(matches), maxCandidates))
	for i, m := range matches {
		if i == maxCandidates {
			break
		}
		options = append(options, fmt.Sprintf("Train %d departing from %s (%s) on %s",
			m.Ref.Number, m.OriginName, m.Ref.Origin, m.Ref.Departure().Format("2006-01-02")))
	}

	choice, err := r.choose(
		fmt.Sprintf("Multiple trains found matching '%d':", number),
		"Please choose a train (or 0 to cancel)",
		options,
		len(matches)-len(options),
	)
	if err != nil {
		return TrainMatch{}, err
	}
	if choice <= 0 || choice > len(matches) {
		return TrainMatch{}, ErrSelectionCancelled
	}

	chosen := matches[choice-1]
	r.echo("Selected train %d departing from %s (%s) on %s.",
		chosen.Ref.Number, chosen.OriginName, chosen.Ref.Origin, chosen.Ref.Departure().Format("2006-01-02"))
	return chosen, nil
}

func (r *Resolver) choose(header, prompt string, options []string, omitted int) (int, error) {
	if r.Chooser == nil {
		return 0, fmt.Errorf("%d candidates and no chooser configured: %w",
			len(options)+omitted, ErrSelectionCancelled)
	}
	return r.Chooser.Choose(header, prompt, options, omitted)
}

func (r *Resolver) echo(format string, args ...any) {
	if r.Out == nil {
		return
	}
	fmt.Fprintf(r.Out, format+"\n", args...)
}

// parseTrainMatches reads the train autocomplete payload. Each line carries
// a human-readable half and a machine half separated by a pipe:
//
//	2024 - MILANO CENTRALE - 02/06/2024|2024-S01700-1717279200000
//
// The machine half holds number, origin code and departure epoch millis.
// Lines that do not fit are skipped.
func parseTrainMatches(text string) []TrainMatch {
	var matches []TrainMatch

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		halves := strings.Split(line, "|")
		if len(halves) != 2 {
			continue
		}
		human := strings.Split(halves[0], " - ")
		machine := strings.Split(halves[1], "-")
		if len(human) < 2 || len(machine) < 3 {
			continue
		}
		number, err := strconv.ParseInt(machine[0], 10, 64)
		if err != nil {
			continue
		}
		millis, err := strconv.ParseInt(machine[2], 10, 64)
		if err != nil {
			continue
		}
		matches = append(matches, TrainMatch{
			Ref: viaggiatreno.TrainRef{
				Number:          number,
				Origin:          machine[1],
				DepartureMillis: millis,
			},
			OriginName: human[1],
		})
	}

	return matches
}
