package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := cli(args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestEmbeddedConfigurationPasses(t *testing.T) {
	code, stdout, stderr := runCLI(t)
	if code != 0 {
		t.Fatalf("embedded configuration should pass, code=%d stderr=%s", code, stderr)
	}
	if !strings.Contains(stdout, "ok") {
		t.Fatalf("unexpected stdout %q", stdout)
	}
}

func TestBadFlagReturnsUsageCode(t *testing.T) {
	code, _, _ := runCLI(t, "-no-such-flag")
	if code != 2 {
		t.Fatalf("code %d, want 2", code)
	}
}

func TestMissingFileFails(t *testing.T) {
	code, _, stderr := runCLI(t, "-catalog", "/no/such/file.yaml")
	if code != 1 {
		t.Fatalf("code %d, want 1", code)
	}
	if stderr == "" {
		t.Fatal("expected error output")
	}
}

func TestCatalogFindings(t *testing.T) {
	catalog := writeTemp(t, "catalog.yaml", `
parameters:
  - id: ph
    label: pH
    category: physical
    type: number
    sections: [water-quality]
    rule: "double(value) +"
  - id: ph
    label: pH duplicate
    category: bad-category
    type: bad-type
    sections: [water-quality]
  - id: turbidity
    label: Turbidity
    category: physical
    type: number
    sections: [water-quality]
    default_unit: NTU
    available_units: [FTU]
  - id: water-source
    label: Water source
    category: design
    type: select
    sections: [flow-data]
`)
	code, _, stderr := runCLI(t, "-catalog", catalog)
	if code != 1 {
		t.Fatalf("code %d, want 1", code)
	}
	for _, want := range []string{
		"duplicate parameter id",
		"unknown category",
		"unknown type",
		"rule does not compile",
		"not in available units",
		"select type without options",
	} {
		if !strings.Contains(stderr, want) {
			t.Errorf("stderr missing %q:\n%s", want, stderr)
		}
	}
}

func TestTemplateFindings(t *testing.T) {
	catalog := writeTemp(t, "catalog.yaml", `
parameters:
  - id: ph
    label: pH
    category: physical
    type: number
    sections: [water-quality]
`)
	templates := writeTemp(t, "templates.yaml", `
templates:
  - id: loop-a
    name: Loop A
    extends: loop-b
    sector: industrial
    sections:
      - id: water-quality
        add_fields: [ph, no-such-param]
        operation: explode
        field_overrides:
          ghost-param:
            importance: critical
  - id: loop-b
    name: Loop B
    extends: loop-a
    sector: industrial
    sections: []
`)
	code, _, stderr := runCLI(t, "-catalog", catalog, "-templates", templates)
	if code != 1 {
		t.Fatalf("code %d, want 1", code)
	}
	for _, want := range []string{
		`missing "base" template`,
		"circular inheritance",
		"unknown parameter",
		"unknown operation",
		"override targets unknown parameter",
		"both claim sector",
	} {
		if !strings.Contains(stderr, want) {
			t.Errorf("stderr missing %q:\n%s", want, stderr)
		}
	}
}

func TestUnknownParentFinding(t *testing.T) {
	catalog := writeTemp(t, "catalog.yaml", `
parameters:
  - id: ph
    label: pH
    category: physical
    type: number
    sections: [water-quality]
`)
	templates := writeTemp(t, "templates.yaml", `
templates:
  - id: base
    name: Base
    sections:
      - id: water-quality
        add_fields: [ph]
  - id: orphan
    name: Orphan
    extends: ghost
    sections: []
`)
	code, _, stderr := runCLI(t, "-catalog", catalog, "-templates", templates)
	if code != 1 {
		t.Fatalf("code %d, want 1", code)
	}
	if !strings.Contains(stderr, "unknown parent") {
		t.Fatalf("stderr missing unknown parent finding:\n%s", stderr)
	}
}
