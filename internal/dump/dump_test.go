package dump

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dltmtt/viaggiatreno-api/internal/viaggiatreno"
)

func TestWriteBoardNamesAndFormatsFile(t *testing.T) {
	root := t.TempDir()
	w := NewWriter(root, time.Date(2024, 6, 2, 16, 0, 5, 0, viaggiatreno.Rome()))

	when := time.Date(2024, 6, 2, 15, 30, 0, 0, viaggiatreno.Rome())
	res := viaggiatreno.JSONResult([]byte(`[{"numeroTreno":635}]`))
	if err := w.WriteBoard(viaggiatreno.EndpointDepartures, "S01700", when, res); err != nil {
		t.Fatalf("WriteBoard returned error: %v", err)
	}

	path := filepath.Join(root, "partenze", "S01700_2024-06-02T15:30:00_partenze.json")
	body, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading dump: %v", err)
	}

	want := "[\n  {\n    \"numeroTreno\": 635\n  }\n]\n"
	if string(body) != want {
		t.Errorf("dump body = %q, want %q", body, want)
	}
}

func TestWriteTrainStatusNamesFile(t *testing.T) {
	root := t.TempDir()
	w := NewWriter(root, time.Date(2024, 6, 2, 16, 0, 5, 0, viaggiatreno.Rome()))

	// 1717320600000 is mid-morning in Rome, so the date half is stable.
	ref := viaggiatreno.TrainRef{Number: 635, Origin: "S01700", DepartureMillis: 1717320600000}
	res := viaggiatreno.JSONResult([]byte(`{"numeroTreno":635}`))
	if err := w.WriteTrainStatus(ref, res); err != nil {
		t.Fatalf("WriteTrainStatus returned error: %v", err)
	}

	path := filepath.Join(root, "andamentoTreno",
		"635_S01700_2024-06-02_2024-06-02T16:00:05_andamentoTreno.json")
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected dump at %s: %v", path, err)
	}
}

func TestWriteSkipsEmptyPayloads(t *testing.T) {
	root := t.TempDir()
	w := NewWriter(root, time.Now())

	when := time.Date(2024, 6, 2, 15, 30, 0, 0, viaggiatreno.Rome())
	if err := w.WriteBoard(viaggiatreno.EndpointArrivals, "S01700", when, viaggiatreno.JSONResult([]byte(`[]`))); err != nil {
		t.Fatalf("WriteBoard returned error: %v", err)
	}

	if _, err := os.Stat(filepath.Join(root, "arrivi")); !os.IsNotExist(err) {
		t.Error("empty payload created a dump directory")
	}
}

func TestWriteTextPayloadUsesTxtExtension(t *testing.T) {
	root := t.TempDir()
	w := NewWriter(root, time.Now())

	when := time.Date(2024, 6, 2, 15, 30, 0, 0, viaggiatreno.Rome())
	if err := w.WriteBoard("autocompletaStazione", "S01700", when, viaggiatreno.TextResult("MILANO CENTRALE|S01700\n")); err != nil {
		t.Fatalf("WriteBoard returned error: %v", err)
	}

	path := filepath.Join(root, "autocompletaStazione",
		"S01700_2024-06-02T15:30:00_autocompletaStazione.txt")
	body, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading dump: %v", err)
	}
	if string(body) != "MILANO CENTRALE|S01700\n" {
		t.Errorf("dump body = %q", body)
	}
}

func TestWriteLeavesNoTempFiles(t *testing.T) {
	root := t.TempDir()
	w := NewWriter(root, time.Now())

	when := time.Date(2024, 6, 2, 15, 30, 0, 0, viaggiatreno.Rome())
	for n := 0; n < 3; n++ {
		if err := w.WriteBoard(viaggiatreno.EndpointDepartures, "S01700", when, viaggiatreno.JSONResult([]byte(`[1]`))); err != nil {
			t.Fatalf("WriteBoard returned error: %v", err)
		}
	}

	entries, err := os.ReadDir(filepath.Join(root, "partenze"))
	if err != nil {
		t.Fatalf("reading dump directory: %v", err)
	}
	if len(entries) != 1 {
		for _, e := range entries {
			t.Logf("entry: %s", e.Name())
		}
		t.Errorf("dump directory holds %d entries, want 1", len(entries))
	}
}
