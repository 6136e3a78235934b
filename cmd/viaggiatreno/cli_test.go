package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/dltmtt/viaggiatreno-api/internal/bulk"
	"github.com/dltmtt/viaggiatreno-api/internal/viaggiatreno"
)

func TestParseWhen(t *testing.T) {
	now := time.Date(2024, 6, 2, 10, 0, 0, 0, viaggiatreno.Rome())

	t.Run("empty means now", func(t *testing.T) {
		got, err := parseWhen("", now)
		if err != nil || !got.Equal(now) {
			t.Errorf("parseWhen(\"\") = %v, %v", got, err)
		}
	})

	t.Run("full timestamp", func(t *testing.T) {
		got, err := parseWhen("2024-06-02T15:30:00", now)
		if err != nil {
			t.Fatalf("parseWhen returned error: %v", err)
		}
		want := time.Date(2024, 6, 2, 15, 30, 0, 0, viaggiatreno.Rome())
		if !got.Equal(want) {
			t.Errorf("parseWhen = %v, want %v", got, want)
		}
	})

	t.Run("time of day assumes today", func(t *testing.T) {
		got, err := parseWhen("15:04", now)
		if err != nil {
			t.Fatalf("parseWhen returned error: %v", err)
		}
		want := time.Date(2024, 6, 2, 15, 4, 0, 0, viaggiatreno.Rome())
		if !got.Equal(want) {
			t.Errorf("parseWhen = %v, want %v", got, want)
		}
	})

	t.Run("garbage rejected", func(t *testing.T) {
		if _, err := parseWhen("sometime soon", now); err == nil {
			t.Error("parseWhen accepted garbage")
		}
	})
}

func TestMergeJSONArraysKeepsOrderAndSkipsBadOutcomes(t *testing.T) {
	outcomes := []bulk.Outcome[string]{
		{Key: "A", Result: viaggiatreno.JSONResult([]byte(`[{"id":1},{"id":2}]`))},
		{Key: "B", Err: errors.New("boom")},
		{Key: "C", Result: viaggiatreno.JSONResult([]byte(`[]`))},
		{Key: "D", Result: viaggiatreno.TextResult("not json")},
		{Key: "E", Result: viaggiatreno.JSONResult([]byte(`[{"id":3}]`))},
	}

	body, err := mergeJSONArrays(outcomes)
	if err != nil {
		t.Fatalf("mergeJSONArrays returned error: %v", err)
	}

	var items []struct {
		ID int `json:"id"`
	}
	if err := json.Unmarshal(body, &items); err != nil {
		t.Fatalf("merged output is not a JSON array: %v\n%s", err, body)
	}
	if len(items) != 3 || items[0].ID != 1 || items[1].ID != 2 || items[2].ID != 3 {
		t.Errorf("merged items = %+v", items)
	}
}

func TestMergeJSONArraysEmptyInput(t *testing.T) {
	body, err := mergeJSONArrays[string](nil)
	if err != nil {
		t.Fatalf("mergeJSONArrays returned error: %v", err)
	}
	if string(body) != "[]" {
		t.Errorf("merged output = %q, want []", body)
	}
}

func TestMergeTextJoinsChunks(t *testing.T) {
	outcomes := []bulk.Outcome[string]{
		{Key: "A", Result: viaggiatreno.TextResult("ABBIATEGRASSO|S01036\n")},
		{Key: "B", Result: viaggiatreno.TextResult("   \n")},
		{Key: "C", Err: errors.New("boom")},
		{Key: "D", Result: viaggiatreno.JSONResult([]byte(`[1]`))},
		{Key: "E", Result: viaggiatreno.TextResult("EMPOLI|S06904")},
	}

	got := mergeText(outcomes)
	want := "ABBIATEGRASSO|S01036\nEMPOLI|S06904\n"
	if got != want {
		t.Errorf("mergeText = %q, want %q", got, want)
	}
}

func TestMergeTextAllEmpty(t *testing.T) {
	if got := mergeText[string](nil); got != "" {
		t.Errorf("mergeText = %q, want empty", got)
	}
}

func TestLetters(t *testing.T) {
	got := letters()
	if len(got) != 26 || got[0] != "A" || got[25] != "Z" {
		t.Errorf("letters() = %v", got)
	}
}

func TestLetterSweepSkipsFailedLetter(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/Q") {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		letter := r.URL.Path[strings.LastIndexByte(r.URL.Path, '/')+1:]
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		fmt.Fprintf(w, "%sNAME|S00001\n", letter)
	}))
	t.Cleanup(server.Close)

	client := viaggiatreno.NewClient(viaggiatreno.ClientOptions{BaseURL: server.URL})
	outcomes := bulk.Run(context.Background(), letters(), 8,
		func(ctx context.Context, letter string) (viaggiatreno.Result, error) {
			return client.Call(ctx, viaggiatreno.EndpointStationAutocomplete, letter)
		})

	if got, want := bulk.Summarize(outcomes), (bulk.Summary{Data: 25, Failed: 1}); got != want {
		t.Errorf("summary = %+v, want %+v", got, want)
	}

	lines := strings.Split(strings.TrimSuffix(mergeText(outcomes), "\n"), "\n")
	if len(lines) != 25 {
		t.Fatalf("merged %d lines, want 25: %v", len(lines), lines)
	}
	if !sort.StringsAreSorted(lines) {
		t.Errorf("merged output not alphabetical: %v", lines)
	}
	for _, line := range lines {
		if strings.HasPrefix(line, "Q") {
			t.Errorf("failed letter leaked into merged output: %q", line)
		}
	}
}
