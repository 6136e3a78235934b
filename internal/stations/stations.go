// Package stations holds the service's fixed region table and the
// pipe-delimited station directory that bulk operations read their
// pre-resolved codes from.
package stations

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
)

// Regions maps the service's region codes to display names. Code 0 is the
// whole-country pseudo-region.
var Regions = map[int]string{
	0:  "Italia",
	1:  "Lombardia",
	2:  "Liguria",
	3:  "Piemonte",
	4:  "Valle d'Aosta",
	5:  "Lazio",
	6:  "Umbria",
	7:  "Molise",
	8:  "Emilia Romagna",
	9:  "Trentino-Alto Adige",
	10: "Friuli-Venezia Giulia",
	11: "Marche",
	12: "Veneto",
	13: "Toscana",
	14: "Sicilia",
	15: "Basilicata",
	16: "Puglia",
	17: "Calabria",
	18: "Campania",
	19: "Abruzzo",
	20: "Sardegna",
	21: "Provincia autonoma di Trento",
	22: "Provincia autonoma di Bolzano",
}

// RegionName returns the display name for a region code.
func RegionName(code int) string {
	if name, ok := Regions[code]; ok {
		return name
	}
	return "Unknown Region"
}

// RegionCodes returns every region code in ascending order.
func RegionCodes() []int {
	codes := make([]int, 0, len(Regions))
	for code := range Regions {
		codes = append(codes, code)
	}
	sort.Ints(codes)
	return codes
}

// ValidRegion reports whether code is in the region table.
func ValidRegion(code int) bool {
	_, ok := Regions[code]
	return ok
}

// Station is one row of the station directory.
type Station struct {
	Name string
	Code string
}

// Parse reads NAME|CODE lines, preserving file order. Malformed lines are
// skipped.
func Parse(r io.Reader) ([]Station, error) {
	var list []Station

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		parts := strings.Split(line, "|")
		if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
			continue
		}
		list = append(list, Station{Name: parts[0], Code: parts[1]})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading station list: %w", err)
	}

	return list, nil
}

// LoadFile parses the station directory at path.
func LoadFile(path string) ([]Station, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening stations file: %w", err)
	}
	defer f.Close()

	return Parse(f)
}

// Codes extracts the station codes, preserving order.
func Codes(list []Station) []string {
	codes := make([]string, len(list))
	for i, s := range list {
		codes[i] = s.Code
	}
	return codes
}
