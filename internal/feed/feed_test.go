package feed

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"google.golang.org/protobuf/proto"

	"github.com/dltmtt/viaggiatreno-api/internal/bulk"
	"github.com/dltmtt/viaggiatreno-api/internal/viaggiatreno"
)

func TestBuildFeedShape(t *testing.T) {
	now := time.Unix(1717333200, 0)
	results := []bulk.StatusResult{
		{
			Ref: viaggiatreno.TrainRef{Number: 635, Origin: "S01700", DepartureMillis: 1717320600000},
			Info: viaggiatreno.TrainStatusInfo{
				TrainNumber: 635,
				Delay:       5,
				Stops: []viaggiatreno.TrainStop{
					{StationCode: "S01700", ScheduledDeparture: 1717320600000, ActualDeparture: 1717320900000, Delay: 5},
					{StationCode: "S08409", ScheduledArrival: 1717334600000, Delay: 5},
					{StationCode: "S09999"},
				},
			},
		},
	}

	msg := Build(results, now)

	header := msg.GetHeader()
	if header.GetGtfsRealtimeVersion() != "2.0" {
		t.Errorf("version = %q, want 2.0", header.GetGtfsRealtimeVersion())
	}
	if header.GetIncrementality() != gtfs.FeedHeader_FULL_DATASET {
		t.Errorf("incrementality = %v, want FULL_DATASET", header.GetIncrementality())
	}
	if header.GetTimestamp() != 1717333200 {
		t.Errorf("timestamp = %d, want 1717333200", header.GetTimestamp())
	}

	if len(msg.GetEntity()) != 1 {
		t.Fatalf("feed holds %d entities, want 1", len(msg.GetEntity()))
	}
	entity := msg.GetEntity()[0]
	if entity.GetId() != "635_S01700_1717320600000" {
		t.Errorf("entity id = %q", entity.GetId())
	}

	trip := entity.GetTripUpdate().GetTrip()
	if trip.GetTripId() != "635" {
		t.Errorf("trip id = %q, want 635", trip.GetTripId())
	}
	if trip.GetStartDate() != "20240602" {
		t.Errorf("start date = %q, want 20240602", trip.GetStartDate())
	}
	wantStart := time.UnixMilli(1717320600000).In(viaggiatreno.Rome()).Format("15:04:05")
	if trip.GetStartTime() != wantStart {
		t.Errorf("start time = %q, want %q", trip.GetStartTime(), wantStart)
	}
	if entity.GetTripUpdate().GetDelay() != 300 {
		t.Errorf("trip delay = %d seconds, want 300", entity.GetTripUpdate().GetDelay())
	}

	updates := entity.GetTripUpdate().GetStopTimeUpdate()
	if len(updates) != 2 {
		t.Fatalf("got %d stop time updates, want 2 (stop without events dropped)", len(updates))
	}

	first := updates[0]
	if first.GetStopId() != "S01700" || first.GetStopSequence() != 0 {
		t.Errorf("first stop = %q seq %d", first.GetStopId(), first.GetStopSequence())
	}
	if first.Arrival != nil {
		t.Error("origin stop should have no arrival event")
	}
	// The measured departure wins over the scheduled one.
	if got := first.GetDeparture().GetTime(); got != 1717320900 {
		t.Errorf("departure time = %d, want 1717320900", got)
	}
	if first.GetDeparture().GetDelay() != 300 {
		t.Errorf("departure delay = %d seconds, want 300", first.GetDeparture().GetDelay())
	}

	second := updates[1]
	if second.GetStopId() != "S08409" || second.GetStopSequence() != 1 {
		t.Errorf("second stop = %q seq %d", second.GetStopId(), second.GetStopSequence())
	}
	// No measured arrival, so the scheduled one stands in.
	if got := second.GetArrival().GetTime(); got != 1717334600 {
		t.Errorf("arrival time = %d, want 1717334600", got)
	}
	if second.Departure != nil {
		t.Error("final stop should have no departure event")
	}
}

func TestBuildEmptySnapshot(t *testing.T) {
	msg := Build(nil, time.Unix(1717333200, 0))
	if len(msg.GetEntity()) != 0 {
		t.Errorf("feed holds %d entities, want 0", len(msg.GetEntity()))
	}
	if msg.GetHeader().GetTimestamp() != 1717333200 {
		t.Errorf("timestamp = %d", msg.GetHeader().GetTimestamp())
	}
}

func TestSaveRoundTrip(t *testing.T) {
	results := []bulk.StatusResult{
		{Ref: viaggiatreno.TrainRef{Number: 1, Origin: "S00001", DepartureMillis: 1717320600000}},
		{Ref: viaggiatreno.TrainRef{Number: 2, Origin: "S00002", DepartureMillis: 1717320600000}},
	}
	msg := Build(results, time.Now())

	path := filepath.Join(t.TempDir(), "out", "feed.pb")
	if err := Save(path, msg); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	body, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading feed: %v", err)
	}
	var got gtfs.FeedMessage
	if err := proto.Unmarshal(body, &got); err != nil {
		t.Fatalf("decoding feed: %v", err)
	}
	if len(got.GetEntity()) != 2 {
		t.Errorf("reloaded feed holds %d entities, want 2", len(got.GetEntity()))
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("reading feed directory: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("feed directory holds %d entries, want 1", len(entries))
	}
}
