package template

import "aquacore/pkg/domain"

// SelectForProject picks the template for a project's sector and subsector.
// Policy, in order: exact sector+subsector match, then a sector-only template
// (matching sector, no subsector), then the base template. It never returns
// nothing: base is the guaranteed default for any populated store.
func (e *Engine) SelectForProject(sector, subsector string) domain.TemplateConfig {
	if sector != "" && subsector != "" {
		for _, cfg := range e.templates.All() {
			if cfg.Sector == sector && cfg.Subsector == subsector {
				return cfg
			}
		}
	}
	if sector != "" {
		for _, cfg := range e.templates.All() {
			if cfg.Sector == sector && cfg.Subsector == "" {
				return cfg
			}
		}
	}
	return e.Base()
}

// Base returns the base template, falling back to the first declared
// configuration when no template carries the canonical base id.
func (e *Engine) Base() domain.TemplateConfig {
	if cfg, ok := e.templates.Get(BaseTemplateID); ok {
		return cfg
	}
	all := e.templates.All()
	if len(all) > 0 {
		return all[0]
	}
	return domain.TemplateConfig{}
}
