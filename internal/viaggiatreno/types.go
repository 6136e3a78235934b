package viaggiatreno

import (
	"fmt"
	"time"
)

// TrainRef identifies one train run. The same train number legitimately
// recurs on different dates and from different origins, so identity is the
// full triple, never the number alone.
type TrainRef struct {
	Number          int64
	Origin          string
	DepartureMillis int64
}

// Departure returns the run's departure instant in the service's timezone.
func (r TrainRef) Departure() time.Time {
	return time.UnixMilli(r.DepartureMillis).In(Rome())
}

// Less orders refs by number, then origin, then departure instant.
func (r TrainRef) Less(o TrainRef) bool {
	if r.Number != o.Number {
		return r.Number < o.Number
	}
	if r.Origin != o.Origin {
		return r.Origin < o.Origin
	}
	return r.DepartureMillis < o.DepartureMillis
}

// String renders the triple for logs and error messages.
func (r TrainRef) String() string {
	return fmt.Sprintf("%d from %s departing %s", r.Number, r.Origin, r.Departure().Format("2006-01-02"))
}

// BoardEntry is the subset of a departure/arrival record needed to derive
// train references.
type BoardEntry struct {
	TrainNumber     int64  `json:"numeroTreno"`
	OriginCode      string `json:"codOrigine"`
	DepartureMillis int64  `json:"dataPartenzaTreno"`
}

// Ref converts the entry into a TrainRef. ok is false when any of the
// three fields is missing; such records cannot be fetched and are skipped.
func (e BoardEntry) Ref() (ref TrainRef, ok bool) {
	if e.TrainNumber == 0 || e.OriginCode == "" || e.DepartureMillis == 0 {
		return TrainRef{}, false
	}
	return TrainRef{
		Number:          e.TrainNumber,
		Origin:          e.OriginCode,
		DepartureMillis: e.DepartureMillis,
	}, true
}

// TrainStop is one stop of a train-status record.
type TrainStop struct {
	StationCode        string `json:"id"`
	StationName        string `json:"stazione"`
	ScheduledArrival   int64  `json:"arrivo_teorico"`
	ActualArrival      int64  `json:"arrivoReale"`
	ScheduledDeparture int64  `json:"partenza_teorica"`
	ActualDeparture    int64  `json:"partenzaReale"`
	Delay              int64  `json:"ritardo"` // minutes
}

// TrainStatusInfo is the decoded core of a train-status response; the raw
// payload keeps the rest.
type TrainStatusInfo struct {
	TrainNumber int64       `json:"numeroTreno"`
	OriginCode  string      `json:"idOrigine"`
	Origin      string      `json:"origine"`
	Destination string      `json:"destinazione"`
	Delay       int64       `json:"ritardo"` // minutes
	Stops       []TrainStop `json:"fermate"`
}
