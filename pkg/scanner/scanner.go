package scanner

import (
	"os"
	"sort"
)

// Scan lists the supported files directly inside dir, sorted by name.
// Subdirectories are not descended into.
func Scan(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)

	if err != nil {
		return nil, err
	}

	var names []string

	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}

		if Classify(e.Name()) == KindUnsupported {
			continue
		}

		names = append(names, e.Name())
	}

	sort.Strings(names)

	return names, nil
}
