package template

import (
	"reflect"
	"testing"

	"aquacore/internal/registry"
)

// TestFoodProcessingScenario walks the full built-in configuration: the
// food-processing template extends industrial extends base, removing the
// physical parameters that do not drive a food-plant design and pulling in
// the organic load parameters with an elevated BOD5 default.
func TestFoodProcessingScenario(t *testing.T) {
	reg, err := registry.Default()
	if err != nil {
		t.Fatalf("default registry: %v", err)
	}
	store, err := DefaultStore()
	if err != nil {
		t.Fatalf("default templates: %v", err)
	}
	engine := NewEngine(store)

	sections, report := engine.Apply("food-processing", reg)
	if len(report.Diagnostics) != 0 {
		t.Fatalf("built-in configuration should resolve cleanly, got %v", report.Diagnostics)
	}

	wantOrder := []string{"water-quality", "flow-data", "site-conditions", "treatment-objectives", "regulatory"}
	gotOrder := make([]string, len(sections))
	for i, s := range sections {
		gotOrder[i] = s.ID
	}
	if !reflect.DeepEqual(gotOrder, wantOrder) {
		t.Fatalf("section order %v, want %v", gotOrder, wantOrder)
	}

	wq := sections[0]
	wantFields := []string{"ph", "bod5", "cod", "tss", "fats-oils-greases", "nitrogen-total", "phosphorus-total"}
	gotFields := make([]string, len(wq.Fields))
	for i, f := range wq.Fields {
		gotFields[i] = f.ID
	}
	if !reflect.DeepEqual(gotFields, wantFields) {
		t.Fatalf("water-quality fields %v, want %v", gotFields, wantFields)
	}

	for _, f := range wq.Fields {
		switch f.ID {
		case "bod5":
			if f.Value != 2500 {
				t.Fatalf("bod5 default %v, want 2500", f.Value)
			}
		case "cod":
			if string(f.Importance) != "critical" {
				t.Fatalf("cod importance %q, want critical", f.Importance)
			}
		}
	}

	objectives := sections[3]
	if len(objectives.Fields) != 0 || !objectives.AllowCustomFields {
		t.Fatalf("treatment-objectives should be metadata-only and open to custom fields: %+v", objectives)
	}

	regSection := sections[4]
	gotReg := make([]string, len(regSection.Fields))
	for i, f := range regSection.Fields {
		gotReg[i] = f.ID
	}
	if want := []string{"regulatory-framework", "discharge-permit"}; !reflect.DeepEqual(gotReg, want) {
		t.Fatalf("regulatory fields %v, want %v", gotReg, want)
	}
}

func TestBuiltinTemplatesAllResolveCleanly(t *testing.T) {
	reg, err := registry.Default()
	if err != nil {
		t.Fatalf("default registry: %v", err)
	}
	store, err := DefaultStore()
	if err != nil {
		t.Fatalf("default templates: %v", err)
	}
	engine := NewEngine(store)
	for _, cfg := range store.All() {
		sections, report := engine.Apply(cfg.ID, reg)
		if len(report.Diagnostics) != 0 {
			t.Errorf("template %s: diagnostics %v", cfg.ID, report.Diagnostics)
		}
		if len(sections) == 0 {
			t.Errorf("template %s: empty sheet", cfg.ID)
		}
	}
}

func TestMunicipalReuseRequiresStandard(t *testing.T) {
	reg, err := registry.Default()
	if err != nil {
		t.Fatalf("default registry: %v", err)
	}
	store, err := DefaultStore()
	if err != nil {
		t.Fatalf("default templates: %v", err)
	}
	sections, _ := NewEngine(store).Apply("municipal-reuse", reg)
	for _, sec := range sections {
		if sec.ID != "regulatory" {
			continue
		}
		for _, f := range sec.Fields {
			if f.ID == "reuse-standard" {
				if !f.Required {
					t.Fatal("reuse-standard should be required for irrigation reuse")
				}
				return
			}
		}
	}
	t.Fatal("reuse-standard field not found in regulatory section")
}
