// Command registry-check validates the parameter catalog and template
// configuration before they ship. It checks identifier uniqueness, enum
// values, validation rule compilation, unit consistency, inheritance chains,
// and field references, and exits non-zero on any finding.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"sort"

	"aquacore/internal/registry"
	"aquacore/internal/template"
	"aquacore/pkg/domain"
)

var exitFunc = os.Exit

func main() {
	exitFunc(cli(os.Args[1:], os.Stdout, os.Stderr))
}

func cli(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("registry-check", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var catalogPath string
	var templatesPath string
	fs.StringVar(&catalogPath, "catalog", "", "path to parameter catalog yaml (default: embedded catalog)")
	fs.StringVar(&templatesPath, "templates", "", "path to template config yaml (default: embedded templates)")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	params, err := loadCatalog(catalogPath)
	if err != nil {
		fmt.Fprintf(stderr, "registry-check: %v\n", err)
		return 1
	}
	configs, err := loadTemplates(templatesPath)
	if err != nil {
		fmt.Fprintf(stderr, "registry-check: %v\n", err)
		return 1
	}

	findings := checkCatalog(params)
	findings = append(findings, checkTemplates(configs, params)...)
	if len(findings) > 0 {
		for _, f := range findings {
			fmt.Fprintf(stderr, "registry-check: %s\n", f)
		}
		fmt.Fprintf(stderr, "registry-check: %d finding(s)\n", len(findings))
		return 1
	}
	fmt.Fprintf(stdout, "registry-check: %d parameters, %d templates ok\n", len(params), len(configs))
	return 0
}

func loadCatalog(path string) ([]domain.ParameterDefinition, error) {
	if path == "" {
		return registry.DefaultCatalog()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return registry.ParseCatalog(data)
}

func loadTemplates(path string) ([]domain.TemplateConfig, error) {
	if path == "" {
		return template.DefaultTemplates()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return template.ParseTemplates(data)
}

var (
	validCategories = map[domain.ParameterCategory]bool{
		domain.CategoryDesign:            true,
		domain.CategoryPhysical:          true,
		domain.CategoryChemicalInorganic: true,
		domain.CategoryChemicalOrganic:   true,
		domain.CategoryBacteriological:   true,
		domain.CategoryOperational:       true,
		domain.CategoryRegulatory:        true,
	}
	validTypes = map[domain.FieldType]bool{
		domain.FieldTypeText:      true,
		domain.FieldTypeNumber:    true,
		domain.FieldTypeSelect:    true,
		domain.FieldTypeCombobox:  true,
		domain.FieldTypeUnit:      true,
		domain.FieldTypeTags:      true,
		domain.FieldTypeMultiline: true,
	}
	validImportance = map[domain.Importance]bool{
		"":                           true,
		domain.ImportanceCritical:    true,
		domain.ImportanceRecommended: true,
		domain.ImportanceOptional:    true,
	}
)

func checkCatalog(params []domain.ParameterDefinition) []string {
	var findings []string
	seen := map[string]bool{}
	for _, p := range params {
		if p.ID == "" {
			findings = append(findings, "parameter with empty id")
			continue
		}
		if seen[p.ID] {
			findings = append(findings, fmt.Sprintf("duplicate parameter id %q", p.ID))
		}
		seen[p.ID] = true
		if p.Label == "" {
			findings = append(findings, fmt.Sprintf("parameter %s: empty label", p.ID))
		}
		if !validCategories[p.Category] {
			findings = append(findings, fmt.Sprintf("parameter %s: unknown category %q", p.ID, p.Category))
		}
		if !validTypes[p.Type] {
			findings = append(findings, fmt.Sprintf("parameter %s: unknown type %q", p.ID, p.Type))
		}
		if !validImportance[p.Importance] {
			findings = append(findings, fmt.Sprintf("parameter %s: unknown importance %q", p.ID, p.Importance))
		}
		if len(p.Sections) == 0 {
			findings = append(findings, fmt.Sprintf("parameter %s: no sections", p.ID))
		}
		if p.DefaultUnit != "" && len(p.AvailableUnits) > 0 && !contains(p.AvailableUnits, p.DefaultUnit) {
			findings = append(findings, fmt.Sprintf("parameter %s: default unit %q not in available units", p.ID, p.DefaultUnit))
		}
		if (p.Type == domain.FieldTypeSelect || p.Type == domain.FieldTypeCombobox) && len(p.Options) == 0 {
			findings = append(findings, fmt.Sprintf("parameter %s: select type without options", p.ID))
		}
		if p.Rule != "" {
			if _, err := registry.CompileRule(p.Rule); err != nil {
				findings = append(findings, fmt.Sprintf("parameter %s: rule does not compile: %v", p.ID, err))
			}
		}
	}
	return findings
}

func checkTemplates(configs []domain.TemplateConfig, params []domain.ParameterDefinition) []string {
	var findings []string
	byID := map[string]domain.TemplateConfig{}
	for _, c := range configs {
		if c.ID == "" {
			findings = append(findings, "template with empty id")
			continue
		}
		if _, dup := byID[c.ID]; dup {
			findings = append(findings, fmt.Sprintf("duplicate template id %q", c.ID))
			continue
		}
		byID[c.ID] = c
	}
	if _, ok := byID[template.BaseTemplateID]; !ok {
		findings = append(findings, fmt.Sprintf("missing %q template", template.BaseTemplateID))
	}

	paramIDs := map[string]bool{}
	for _, p := range params {
		paramIDs[p.ID] = true
	}

	for _, c := range configs {
		findings = append(findings, checkChain(c, byID)...)
		for _, sec := range c.Sections {
			switch sec.Operation {
			case domain.OpExtend, domain.OpReplace, domain.OpRemove:
			default:
				findings = append(findings, fmt.Sprintf("template %s section %s: unknown operation %q", c.ID, sec.ID, sec.Operation))
			}
			for _, id := range sec.AddFields {
				if !paramIDs[id] {
					findings = append(findings, fmt.Sprintf("template %s section %s: unknown parameter %q", c.ID, sec.ID, id))
				}
			}
			for _, id := range sec.RemoveFields {
				if !paramIDs[id] {
					findings = append(findings, fmt.Sprintf("template %s section %s: remove_fields references unknown parameter %q", c.ID, sec.ID, id))
				}
			}
			overrides := make([]string, 0, len(sec.FieldOverrides))
			for id := range sec.FieldOverrides {
				overrides = append(overrides, id)
			}
			sort.Strings(overrides)
			for _, id := range overrides {
				if !paramIDs[id] {
					findings = append(findings, fmt.Sprintf("template %s section %s: override targets unknown parameter %q", c.ID, sec.ID, id))
				}
			}
		}
	}

	findings = append(findings, checkSelection(configs)...)
	return findings
}

// checkChain walks extends links verifying every parent exists and no cycle
// forms.
func checkChain(c domain.TemplateConfig, byID map[string]domain.TemplateConfig) []string {
	visited := map[string]bool{}
	current := c
	for current.Extends != "" {
		if visited[current.ID] {
			return []string{fmt.Sprintf("template %s: circular inheritance through %q", c.ID, current.ID)}
		}
		visited[current.ID] = true
		parent, ok := byID[current.Extends]
		if !ok {
			return []string{fmt.Sprintf("template %s: unknown parent %q", c.ID, current.Extends)}
		}
		current = parent
	}
	return nil
}

// checkSelection flags sector/subsector pairs claimed by multiple templates,
// which would make template selection order-dependent.
func checkSelection(configs []domain.TemplateConfig) []string {
	var findings []string
	claimed := map[string]string{}
	for _, c := range configs {
		if c.Sector == "" {
			continue
		}
		key := c.Sector + "/" + c.Subsector
		if prev, ok := claimed[key]; ok {
			findings = append(findings, fmt.Sprintf("templates %s and %s both claim sector %q subsector %q", prev, c.ID, c.Sector, c.Subsector))
			continue
		}
		claimed[key] = c.ID
	}
	return findings
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
