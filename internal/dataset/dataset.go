// Package dataset holds the static configurations for every supported
// open-data extract. Each dataset registers itself in an init function; the
// CLI looks them up by name. The column lists are the contract with the
// target tables and must not be reordered.
package dataset

import (
	"fmt"
	"sort"

	"nycetl/internal/schema"
)

var registry = map[string]*schema.Dataset{}

// register adds a dataset at init time. A duplicate name or an invalid
// configuration is a programming error and panics before main runs.
func register(d *schema.Dataset) {
	if _, dup := registry[d.Name]; dup {
		panic(fmt.Sprintf("dataset: %q registered twice", d.Name))
	}
	if err := d.Check(); err != nil {
		panic(fmt.Sprintf("dataset: %v", err))
	}
	registry[d.Name] = d
}

// Get returns the dataset registered under name.
func Get(name string) (*schema.Dataset, bool) {
	d, ok := registry[name]
	return d, ok
}

// Names returns the registered dataset names in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Health bucketing vocabularies. The 1995 and 2005 censuses graded trees on
// a four-step scale (plus single-letter codes) that shifts down one bucket;
// the 2015 census already uses the three-bucket labels.
var (
	legacyHealthVocab = map[string]string{
		"excellent": "Good", "e": "Good",
		"good": "Fair", "g": "Fair",
		"poor": "Poor", "p": "Poor",
		"dead": "Poor", "d": "Poor",
		"fair": "Poor", "f": "Poor",
	}
	modernHealthVocab = map[string]string{
		"good": "Good",
		"fair": "Fair",
		"poor": "Poor",
	}
)

// text is shorthand for an identity text column.
func text(name string) schema.Column {
	return schema.Column{Name: name, Rule: schema.Rule{Kind: schema.Text}}
}

func textCols(names ...string) []schema.Column {
	out := make([]schema.Column, len(names))
	for i, n := range names {
		out[i] = text(n)
	}
	return out
}
