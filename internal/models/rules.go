package models

// CategoryRule maps a set of description keywords to a category name. The
// rules live in a YAML file so users can extend them without rebuilding.
type CategoryRule struct {
	Category    string   `yaml:"category"`
	Subcategory string   `yaml:"subcategory,omitempty"`
	Keywords    []string `yaml:"keywords"`
}

// CategoryRulesFile is the top-level shape of the keyword rules YAML file.
type CategoryRulesFile struct {
	Rules []CategoryRule `yaml:"rules"`
}
