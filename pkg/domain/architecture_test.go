package domain

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// TestDomainDoesNotImportInternal enforces that the value-type layer stays
// free of dependencies on internal packages. Everything above joins against
// these types; a reverse edge would make the registry and engine circular.
func TestDomainDoesNotImportInternal(t *testing.T) {
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("cannot get working dir: %v", err)
	}

	forbidden := "aquacore/" + "internal"
	var violations []string

	walkErr := filepath.WalkDir(wd, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".go") {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		for _, raw := range strings.Split(string(data), "\n") {
			line := strings.TrimSpace(raw)
			if !strings.Contains(line, `"`+forbidden) {
				continue
			}
			if strings.HasPrefix(line, "//") {
				continue
			}
			violations = append(violations, path+": "+line)
		}
		return nil
	})
	if walkErr != nil {
		t.Fatalf("walk: %v", walkErr)
	}
	for _, v := range violations {
		t.Errorf("forbidden import of internal package: %s", v)
	}
}
