package ruleset

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"checkdoc/internal/evaluator"

	"gopkg.in/yaml.v3"
)

// ruleFile is the on-disk schema. Rule sets are YAML; JSON files decode
// through the same path since YAML is a JSON superset.
type ruleFile struct {
	Name    string     `yaml:"name"`
	Version string     `yaml:"version"`
	Rules   []ruleSpec `yaml:"rules"`
}

type ruleSpec struct {
	ID          string         `yaml:"id"`
	Severity    string         `yaml:"severity"`
	Description string         `yaml:"description"`
	Evaluator   string         `yaml:"evaluator"`
	Params      map[string]any `yaml:"params"`
	Message     string         `yaml:"message"`
	Fix         string         `yaml:"fix"`
}

// Load reads and validates a rule set file.
func Load(path string) (*RuleSet, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rule set: %w", err)
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return Parse(content, name)
}

// Parse validates rule set content and binds every rule to its evaluator.
// It fails with ParseError or DuplicateIDError; a rule set either loads
// completely or not at all.
func Parse(content []byte, fallbackName string) (*RuleSet, error) {
	var file ruleFile
	if err := yaml.Unmarshal(content, &file); err != nil {
		return nil, fmt.Errorf("decode rule set: %w", err)
	}
	if len(file.Rules) == 0 {
		return nil, fmt.Errorf("rule set contains no rules")
	}

	rs := &RuleSet{
		Name:    file.Name,
		Version: file.Version,
		Rules:   make([]Rule, 0, len(file.Rules)),
	}
	if rs.Name == "" {
		rs.Name = fallbackName
	}

	seen := make(map[string]bool, len(file.Rules))
	for i, spec := range file.Rules {
		if strings.TrimSpace(spec.ID) == "" {
			return nil, &ParseError{Index: i, Reason: "missing id"}
		}
		if seen[spec.ID] {
			return nil, &DuplicateIDError{ID: spec.ID}
		}
		seen[spec.ID] = true

		severity, err := ParseSeverity(spec.Severity)
		if err != nil {
			return nil, &ParseError{Index: i, ID: spec.ID, Reason: err.Error()}
		}

		if spec.Evaluator == "" {
			return nil, &ParseError{Index: i, ID: spec.ID, Reason: "missing evaluator"}
		}
		check, err := evaluator.New(spec.Evaluator, spec.Params)
		if err != nil {
			return nil, &ParseError{Index: i, ID: spec.ID, Reason: err.Error()}
		}

		rs.Rules = append(rs.Rules, Rule{
			ID:          spec.ID,
			Severity:    severity,
			Description: spec.Description,
			Evaluator:   spec.Evaluator,
			Params:      spec.Params,
			Message:     spec.Message,
			Fix:         spec.Fix,
			Check:       check,
		})
	}

	return rs, nil
}
