// Package feed converts train-status snapshots into a GTFS-Realtime
// TripUpdate feed.
package feed

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"google.golang.org/protobuf/proto"

	"github.com/dltmtt/viaggiatreno-api/internal/bulk"
	"github.com/dltmtt/viaggiatreno-api/internal/viaggiatreno"
)

// Build assembles a full-dataset TripUpdate feed from a snapshot's train
// statuses. The header carries the snapshot instant; entity order follows
// the results.
func Build(results []bulk.StatusResult, now time.Time) *gtfs.FeedMessage {
	msg := &gtfs.FeedMessage{
		Header: &gtfs.FeedHeader{
			GtfsRealtimeVersion: ptr("2.0"),
			Incrementality:      gtfs.FeedHeader_FULL_DATASET.Enum(),
			Timestamp:           ptr(uint64(now.Unix())),
		},
		Entity: make([]*gtfs.FeedEntity, 0, len(results)),
	}

	for _, r := range results {
		msg.Entity = append(msg.Entity, entity(r, now))
	}

	return msg
}

func entity(r bulk.StatusResult, now time.Time) *gtfs.FeedEntity {
	departure := r.Ref.Departure()

	update := &gtfs.TripUpdate{
		Trip: &gtfs.TripDescriptor{
			TripId:    ptr(strconv.FormatInt(r.Ref.Number, 10)),
			StartDate: ptr(departure.Format("20060102")),
			StartTime: ptr(departure.Format("15:04:05")),
		},
		Timestamp: ptr(uint64(now.Unix())),
		Delay:     ptr(int32(r.Info.Delay * 60)),
	}

	for i, stop := range r.Info.Stops {
		if stu := stopTimeUpdate(i, stop); stu != nil {
			update.StopTimeUpdate = append(update.StopTimeUpdate, stu)
		}
	}

	return &gtfs.FeedEntity{
		// The full triple keeps ids unique when a number recurs.
		Id:         ptr(fmt.Sprintf("%d_%s_%d", r.Ref.Number, r.Ref.Origin, r.Ref.DepartureMillis)),
		TripUpdate: update,
	}
}

func stopTimeUpdate(seq int, stop viaggiatreno.TrainStop) *gtfs.TripUpdate_StopTimeUpdate {
	arrival := event(stop.ActualArrival, stop.ScheduledArrival, stop.Delay)
	departure := event(stop.ActualDeparture, stop.ScheduledDeparture, stop.Delay)
	if arrival == nil && departure == nil {
		return nil
	}

	return &gtfs.TripUpdate_StopTimeUpdate{
		StopSequence: ptr(uint32(seq)),
		StopId:       ptr(stop.StationCode),
		Arrival:      arrival,
		Departure:    departure,
	}
}

// event prefers the measured instant over the scheduled one. Both missing
// means the service reported nothing for this half of the stop.
func event(actualMillis, scheduledMillis, delayMinutes int64) *gtfs.TripUpdate_StopTimeEvent {
	millis := actualMillis
	if millis == 0 {
		millis = scheduledMillis
	}
	if millis == 0 {
		return nil
	}

	return &gtfs.TripUpdate_StopTimeEvent{
		Time:  ptr(millis / 1000),
		Delay: ptr(int32(delayMinutes * 60)),
	}
}

// Save marshals the feed and writes it atomically, creating parents.
func Save(path string, msg *gtfs.FeedMessage) error {
	body, err := proto.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encoding feed: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating feed directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp feed: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(body); err != nil {
		tmp.Close()
		return fmt.Errorf("writing feed: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing feed: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("publishing feed: %w", err)
	}
	return nil
}

func ptr[T any](v T) *T { return &v }
