package viaggiatreno

import (
	"sync"
	"time"
)

// DefaultBaseURL is the public entry point of the ViaggiaTreno REST service.
const DefaultBaseURL = "http://www.viaggiatreno.it/infomobilita/resteasy/viaggiatreno"

// Endpoint names as they appear in request paths. Some return JSON, some
// pipe-delimited text; the distinction is carried by the response headers,
// not by this catalog.
const (
	// EndpointStats returns service-wide statistics; takes the current epoch millis.
	EndpointStats = "statistiche"
	// EndpointStationList returns every station of a region (0-22).
	EndpointStationList = "elencoStazioni"
	// EndpointStationSearch searches stations by name prefix (JSON).
	EndpointStationSearch = "cercaStazione"
	// EndpointStationAutocomplete searches stations by name prefix (NAME|CODE text).
	EndpointStationAutocomplete = "autocompletaStazione"
	// EndpointStationAutocompleteTravel is the trip-planner variant of the autocomplete.
	EndpointStationAutocompleteTravel = "autocompletaStazioneImpostaViaggio"
	// EndpointStationAutocompleteNTS is the NTS-code variant of the autocomplete.
	EndpointStationAutocompleteNTS = "autocompletaStazioneNTS"
	// EndpointRegion returns the region code of a station.
	EndpointRegion = "regione"
	// EndpointStationDetail returns station details; takes a station and region code.
	EndpointStationDetail = "dettaglioStazione"
	// EndpointTrainSearch returns details for a train number (JSON).
	EndpointTrainSearch = "cercaNumeroTreno"
	// EndpointTrainAutocomplete disambiguates a train number (pipe-delimited text).
	EndpointTrainAutocomplete = "cercaNumeroTrenoTrenoAutocomplete"
	// EndpointDepartures returns the departure board of a station at an instant.
	EndpointDepartures = "partenze"
	// EndpointArrivals returns the arrival board of a station at an instant.
	EndpointArrivals = "arrivi"
	// EndpointTrainStatus returns the live status of one train run.
	EndpointTrainStatus = "andamentoTreno"
)

// RegionUnknown is the region code the service accepts when a station's
// region cannot be determined.
const RegionUnknown = -1

// TimetableLayout is the datetime format the board endpoints expect,
// rendered in the service's timezone (the day of month is not zero-padded).
const TimetableLayout = "Mon Jan 2 2006 15:04:05"

var rome = sync.OnceValue(func() *time.Location {
	loc, err := time.LoadLocation("Europe/Rome")
	if err != nil {
		// Hosts without tzdata; cmd embeds time/tzdata so this stays theoretical.
		return time.FixedZone("CET", 60*60)
	}
	return loc
})

// Rome returns the service's reference timezone. Every instant sent to or
// read from the service is interpreted in it.
func Rome() *time.Location {
	return rome()
}

// FormatTimetable renders an instant the way the board endpoints expect.
func FormatTimetable(t time.Time) string {
	return t.In(Rome()).Format(TimetableLayout)
}
