package file

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// ReadList reads a download manifest: a text file with one extract URL (or
// path) per line. Blank lines and lines starting with '#' are skipped, so
// manifests can carry comments and separators. Order is preserved.
func ReadList(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("manifest %s has no entries", path)
	}
	return out, nil
}
