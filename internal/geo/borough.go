// Package geo infers the NYC borough and geographic level for free-text place
// names found in the open-data extracts. Inference is two-stage: an explicit
// exception dictionary of substrings is consulted before the per-borough
// keyword sets. The ordering matters — several neighborhood names ("park
// slope", "rockaway") are substrings of, or collide with, keywords belonging
// to another borough's generic set, so exceptions must always win.
package geo

import "strings"

// Unknown is the sentinel region returned when no rule matches.
const Unknown = "Unknown"

// Boroughs lists the five borough names in inference priority order.
var Boroughs = []string{"Bronx", "Brooklyn", "Queens", "Manhattan", "Staten Island"}

// exceptionEntry pins a place-name substring to a borough ahead of the
// generic keyword pass.
type exceptionEntry struct {
	substr  string
	borough string
}

// exceptions is ordered; first match wins.
var exceptions = []exceptionEntry{
	// Manhattan
	{"washington heights", "Manhattan"},
	{"stuyvesant town", "Manhattan"},
	{"turtle bay", "Manhattan"},
	{"new york city", "Manhattan"},

	// Bronx
	{"throgs neck", "Bronx"},
	{"co-op city", "Bronx"},
	{"hunts point", "Bronx"},
	{"longwood", "Bronx"},

	// Brooklyn
	{"east new york and starrett city", "Brooklyn"},
	{"downtown", "Brooklyn"},
	{"heights", "Brooklyn"},
	{"slope", "Brooklyn"},
	{"carroll gardens", "Brooklyn"},
	{"park slope", "Brooklyn"},
	{"east new york", "Brooklyn"},
	{"greenpoint", "Brooklyn"},
	{"williamsburg", "Brooklyn"},

	// Queens
	{"rockaways", "Queens"},
	{"rockaway", "Queens"},
	{"broad channel", "Queens"},
	{"jackson heights", "Queens"},
	{"fresh meadows", "Queens"},
	{"hillcrest", "Queens"},

	// Staten Island
	{"southern si", "Staten Island"},
	{"northern si", "Staten Island"},
}

// keywords holds the broader per-borough vocabulary used when no exception
// fires. Checked in the order of Boroughs.
var keywords = map[string][]string{
	"Bronx": {
		"bronx", "fordham", "tremont", "crotona", "morris", "mott haven",
		"pelham", "riverdale", "soundview", "williamsbridge", "concourse",
		"parkchester", "highbridge",
	},
	"Brooklyn": {
		"brooklyn", "flatbush", "bushwick", "bedford", "crown heights",
		"borough park", "bensonhurst", "bay ridge", "brownsville", "canarsie",
		"sheepshead", "coney", "flatlands", "midwood", "prospect", "sunset park",
	},
	"Queens": {
		"queens", "jamaica", "astoria", "flushing", "elmhurst",
		"forest hills", "corona", "far rockaway", "ridgewood", "kew gardens",
		"bayside", "woodside", "rego park", "little neck", "howard beach",
		"ozone park",
	},
	"Manhattan": {
		"manhattan", "harlem", "upper west side", "upper east side", "chelsea",
		"soho", "village", "midtown", "gramercy", "financial district",
		"tribeca", "morningside", "battery park", "inwood", "lower east side",
	},
	"Staten Island": {
		"staten", "tottenville", "st. george", "staten island", "stapleton",
		"willowbrook", "great kills", "new dorp", "richmond", "south beach",
	},
}

// InferBorough returns the borough for a free-text place name, or Unknown.
func InferBorough(name string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	if n == "" {
		return Unknown
	}
	for _, e := range exceptions {
		if strings.Contains(n, e.substr) {
			return e.borough
		}
	}
	for _, b := range Boroughs {
		for _, k := range keywords[b] {
			if strings.Contains(n, k) {
				return b
			}
		}
	}
	return Unknown
}

// InferLevel classifies a place name as "Borough" when it is exactly one of
// the five borough names, "Neighborhood" for any other non-empty name, and
// Unknown for empty input.
func InferLevel(name string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	if n == "" {
		return Unknown
	}
	for _, b := range Boroughs {
		if n == strings.ToLower(b) {
			return "Borough"
		}
	}
	return "Neighborhood"
}
