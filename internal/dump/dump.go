// Package dump persists raw endpoint payloads on disk, one directory per
// endpoint, using the naming scheme downstream tooling already expects.
package dump

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dltmtt/viaggiatreno-api/internal/viaggiatreno"
)

const isoLayout = "2006-01-02T15:04:05"

// Writer saves payloads under a root directory. It satisfies bulk.Sink.
type Writer struct {
	root string
	run  time.Time
}

// NewWriter saves under root; run stamps train-status dump names so
// successive sweeps of the same run never overwrite each other.
func NewWriter(root string, run time.Time) *Writer {
	return &Writer{root: root, run: run}
}

// Root returns the directory dumps land under.
func (w *Writer) Root() string { return w.root }

// WriteBoard saves a departures or arrivals payload as
// <root>/<endpoint>/<CODE>_<when>_<endpoint>.json.
func (w *Writer) WriteBoard(endpoint, stationCode string, when time.Time, res viaggiatreno.Result) error {
	stem := fmt.Sprintf("%s_%s_%s",
		stationCode,
		when.In(viaggiatreno.Rome()).Format(isoLayout),
		endpoint)
	return w.save(endpoint, stem, res)
}

// WriteTrainStatus saves an andamentoTreno payload as
// <root>/andamentoTreno/<NUM>_<ORIGIN>_<depDate>_<run>_andamentoTreno.json.
func (w *Writer) WriteTrainStatus(ref viaggiatreno.TrainRef, res viaggiatreno.Result) error {
	stem := fmt.Sprintf("%d_%s_%s_%s_%s",
		ref.Number,
		ref.Origin,
		ref.Departure().Format("2006-01-02"),
		w.run.In(viaggiatreno.Rome()).Format(isoLayout),
		viaggiatreno.EndpointTrainStatus)
	return w.save(viaggiatreno.EndpointTrainStatus, stem, res)
}

func (w *Writer) save(endpoint, stem string, res viaggiatreno.Result) error {
	if res.Empty() {
		return nil
	}

	dir := filepath.Join(w.root, endpoint)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating dump directory: %w", err)
	}

	body, ext, err := render(res)
	if err != nil {
		return err
	}

	return writeAtomic(filepath.Join(dir, stem+ext), body)
}

func render(res viaggiatreno.Result) ([]byte, string, error) {
	if !res.IsJSON() {
		return []byte(res.Text()), ".txt", nil
	}

	var buf bytes.Buffer
	if err := json.Indent(&buf, res.JSON(), "", "  "); err != nil {
		return nil, "", fmt.Errorf("formatting payload: %w", err)
	}
	buf.WriteByte('\n')
	return buf.Bytes(), ".json", nil
}

// writeAtomic goes through a temp file in the target directory so a reader
// never sees a partial dump.
func writeAtomic(path string, body []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp dump: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(body); err != nil {
		tmp.Close()
		return fmt.Errorf("writing dump: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing dump: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("publishing dump: %w", err)
	}
	return nil
}
