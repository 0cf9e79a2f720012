package geo

import "testing"

func TestInferBorough(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		// exception dictionary fires before the generic keyword pass
		{"Park Slope", "Brooklyn"},
		{"Washington Heights", "Manhattan"},
		{"Crown Heights", "Brooklyn"},
		{"Throgs Neck", "Bronx"},
		{"Rockaways", "Queens"},
		{"East New York and Starrett City (CD5)", "Brooklyn"},
		{"Southern SI", "Staten Island"},

		// generic keywords
		{"Fordham - Bronx Pk", "Bronx"},
		{"Flushing and Whitestone", "Queens"},
		{"Greenwich Village - SoHo", "Manhattan"},
		{"Bay Ridge and Dyker Heights", "Brooklyn"},
		{"Tottenville", "Staten Island"},

		// plain borough names
		{"Brooklyn", "Brooklyn"},
		{"Staten Island", "Staten Island"},

		// no rule matches
		{"Nowhere Place", "Unknown"},
		{"", "Unknown"},
		{"   ", "Unknown"},
	}
	for _, c := range cases {
		if got := InferBorough(c.in); got != c.want {
			t.Fatalf("InferBorough(%q) = %q; want %q", c.in, got, c.want)
		}
	}
}

/*
TestInferBorough_ExceptionPriority pins the ordering contract: the exception
list is consulted top to bottom and the first substring match wins. Brooklyn's
generic "heights" entry sits above Queens' "jackson heights", so Jackson
Heights resolves to Brooklyn — the dictionaries carry that ordering on
purpose, and a reorder would silently reshuffle borough counts.
*/
func TestInferBorough_ExceptionPriority(t *testing.T) {
	if got := InferBorough("Jackson Heights"); got != "Brooklyn" {
		t.Fatalf("Jackson Heights = %q; want Brooklyn (generic 'heights' entry fires first)", got)
	}
	if got := InferBorough("Washington Heights"); got != "Manhattan" {
		t.Fatalf("Washington Heights = %q; want Manhattan (listed above 'heights')", got)
	}
	if got := InferBorough("Hunts Point - Mott Haven"); got != "Bronx" {
		t.Fatalf("Hunts Point - Mott Haven = %q; want Bronx", got)
	}
}

func TestInferLevel(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Brooklyn", "Borough"},
		{"staten island", "Borough"},
		{"Park Slope", "Neighborhood"},
		{"Upper East Side", "Neighborhood"},
		{"", "Unknown"},
		{"  ", "Unknown"},
	}
	for _, c := range cases {
		if got := InferLevel(c.in); got != c.want {
			t.Fatalf("InferLevel(%q) = %q; want %q", c.in, got, c.want)
		}
	}
}
