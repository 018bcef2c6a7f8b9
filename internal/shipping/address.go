package shipping

import (
	"regexp"
	"strings"
)

// cityPrefixes are the municipality markers used in well-formed Indonesian
// addresses.
var cityPrefixes = []string{"Kota ", "Kabupaten ", "Kab. ", "Kab "}

// geoDenylist holds tokens that identify a segment as country, island,
// region or province text rather than a city. Compared lowercased.
var geoDenylist = map[string]struct{}{
	"indonesia":  {},
	"jawa":       {},
	"sumatera":   {},
	"sumatra":    {},
	"kalimantan": {},
	"sulawesi":   {},
	"papua":      {},
	"nusa":       {},
	"tenggara":   {},
	"maluku":     {},
	"provinsi":   {},
	"prov.":      {},
	"daerah":     {},
	"istimewa":   {},
	"d.i.":       {},
	"d.i":        {},
	"di.":        {},
	"dki":        {},
	"dkj":        {},
	"banten":     {},
	"riau":       {},
	"kepulauan":  {},
}

var postalCodePattern = regexp.MustCompile(`^\d{5}$`)

// ExtractCityFromAddress guesses the city out of a free-form comma-separated
// address. Segments carrying a municipality marker win; otherwise segments
// are scanned from the end backward, skipping postal codes and denylisted
// geographic terms, and the first survivor is returned. This is a heuristic,
// not a geocoder; malformed addresses may yield "" or a wrong guess.
func ExtractCityFromAddress(address string) string {
	segments := strings.Split(address, ",")

	for _, segment := range segments {
		segment = strings.TrimSpace(segment)
		for _, prefix := range cityPrefixes {
			if strings.HasPrefix(segment, prefix) {
				if city := strings.TrimSpace(strings.TrimPrefix(segment, prefix)); city != "" {
					return city
				}
			}
		}
	}

	for i := len(segments) - 1; i >= 0; i-- {
		segment := strings.TrimSpace(segments[i])
		if segment == "" {
			continue
		}

		fields := strings.Fields(segment)
		kept := make([]string, 0, len(fields))
		denylisted := false
		for _, field := range fields {
			if postalCodePattern.MatchString(field) {
				continue
			}
			if _, bad := geoDenylist[strings.ToLower(field)]; bad {
				denylisted = true
				break
			}
			kept = append(kept, field)
		}
		if denylisted || len(kept) == 0 {
			continue
		}

		// Street segments ("Jl. Mawar I/207") are address lines, not cities.
		if strings.HasPrefix(strings.ToLower(kept[0]), "jl") || strings.HasPrefix(strings.ToLower(kept[0]), "jalan") {
			continue
		}

		return strings.Join(kept, " ")
	}

	return ""
}
