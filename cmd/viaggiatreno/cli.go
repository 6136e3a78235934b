package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/dltmtt/viaggiatreno-api/internal/bulk"
	"github.com/dltmtt/viaggiatreno-api/internal/viaggiatreno"
)

const (
	dateTimeLayout = "2006-01-02T15:04:05"
	timeOnlyLayout = "15:04"
	dateLayout     = "2006-01-02"
)

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	return fs
}

func addAllFlag(fs *flag.FlagSet) *bool {
	all := fs.Bool("all", false, "sweep every key instead of a single lookup")
	fs.BoolVar(all, "a", false, "shorthand for -all")
	return all
}

// parseWhen accepts a full timestamp or a time of day (today assumed),
// interpreted in the service's timezone. Empty means now.
func parseWhen(s string, now time.Time) (time.Time, error) {
	if s == "" {
		return now, nil
	}
	if t, err := time.ParseInLocation(dateTimeLayout, s, viaggiatreno.Rome()); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation(timeOnlyLayout, s, viaggiatreno.Rome()); err == nil {
		today := now.In(viaggiatreno.Rome())
		return time.Date(today.Year(), today.Month(), today.Day(),
			t.Hour(), t.Minute(), 0, 0, viaggiatreno.Rome()), nil
	}
	return time.Time{}, fmt.Errorf("invalid datetime %q: want %s or %s", s, dateTimeLayout, timeOnlyLayout)
}

// printResult writes a payload to w: JSON pretty-printed, text as-is.
func printResult(w io.Writer, res viaggiatreno.Result) error {
	if res.IsJSON() {
		var buf bytes.Buffer
		if err := json.Indent(&buf, res.JSON(), "", "  "); err != nil {
			return fmt.Errorf("formatting payload: %w", err)
		}
		buf.WriteByte('\n')
		_, err := w.Write(buf.Bytes())
		return err
	}

	text := res.Text()
	if text != "" && !strings.HasSuffix(text, "\n") {
		text += "\n"
	}
	_, err := io.WriteString(w, text)
	return err
}

// mergeJSONArrays flattens successful array payloads into one JSON array,
// keeping outcome order. Unmergeable payloads are skipped with a warning,
// like any other per-key failure.
func mergeJSONArrays[K any](outcomes []bulk.Outcome[K]) ([]byte, error) {
	items := make([]json.RawMessage, 0, len(outcomes))
	for _, o := range outcomes {
		if o.Err != nil || o.Result.Empty() || !o.Result.IsJSON() {
			continue
		}
		var chunk []json.RawMessage
		if err := o.Result.Decode(&chunk); err != nil {
			slog.Warn("skipping unmergeable payload", "key", fmt.Sprint(o.Key), "error", err)
			continue
		}
		items = append(items, chunk...)
	}
	return json.MarshalIndent(items, "", "  ")
}

// mergeText joins non-empty text payloads with newlines, keeping outcome
// order.
func mergeText[K any](outcomes []bulk.Outcome[K]) string {
	var chunks []string
	for _, o := range outcomes {
		if o.Err != nil || o.Result.IsJSON() {
			continue
		}
		if text := strings.TrimSpace(o.Result.Text()); text != "" {
			chunks = append(chunks, text)
		}
	}
	if len(chunks) == 0 {
		return ""
	}
	return strings.Join(chunks, "\n") + "\n"
}

func letters() []string {
	out := make([]string, 26)
	for i := range out {
		out[i] = string(rune('A' + i))
	}
	return out
}

func logSummary(stage string, s bulk.Summary) {
	slog.Info("sweep complete",
		"stage", stage, "data", s.Data, "empty", s.Empty, "failed", s.Failed)
}
