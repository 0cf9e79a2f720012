package main

import (
	"fmt"
	"strings"

	"nycetl/internal/datasource/file"
	"nycetl/internal/datasource/httpds"
	"nycetl/internal/pipeline"
)

// remoteCfg is the HTTP client configuration for portal downloads. Portals
// throttle aggressively, so remote fetches carry a retry budget.
var remoteCfg = httpds.Config{MaxRetries: 3}

// newSource picks the extract source for a resolved path. URLs are fetched
// over HTTP; a .list manifest expands to the URLs it names; everything else
// is a local file or directory.
func newSource(path string) (pipeline.Source, error) {
	if isURL(path) {
		return httpds.NewRemote(remoteCfg, path), nil
	}
	if strings.HasSuffix(path, ".list") {
		entries, err := file.ReadList(path)
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			if !isURL(e) {
				return nil, fmt.Errorf("manifest %s: entry %q is not a URL", path, e)
			}
		}
		return httpds.NewRemote(remoteCfg, entries...), nil
	}
	return file.NewLocal(path), nil
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
