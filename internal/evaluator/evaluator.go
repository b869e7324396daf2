// Package evaluator provides the closed registry of predicate evaluators a
// rule set can reference. Every evaluator is a pure function of the parsed
// document: no I/O, no hidden state, so results are reproducible across runs.
package evaluator

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sort"

	"checkdoc/internal/document"

	"gopkg.in/yaml.v3"
)

// Finding is a single violation candidate produced by an evaluator. The rule
// layer tags it with rule id, severity and message.
type Finding struct {
	// StartLine/EndLine locate the finding in the source (1-based,
	// inclusive). Document-level findings use line 1.
	StartLine int
	EndLine   int

	// Matched is the offending text, when the finding points at one.
	Matched string

	// Detail explains the failure in evaluator-specific terms.
	Detail string

	// Unit is the offending unit, if the finding is unit-scoped.
	Unit *document.Unit
}

// Evaluator checks one aspect of a document.
type Evaluator interface {
	// Kind returns the registry name of this evaluator.
	Kind() string

	// AppliesTo reports whether the document contains anything this
	// evaluator can judge. Rules whose evaluator does not apply are
	// excluded from compliance scoring.
	AppliesTo(doc *document.Document) bool

	// Evaluate returns all violation candidates found in the document.
	Evaluate(doc *document.Document) []Finding
}

// Factory builds an evaluator from declarative rule params.
type Factory func(params map[string]any) (Evaluator, error)

// registry is the closed table of evaluator kinds. Rules are data: they can
// only reference what is registered here.
var registry = map[string]Factory{
	"pattern-forbidden": newPatternForbidden,
	"pattern-required":  newPatternRequired,
	"count-bound":       newCountBound,
	"structural-order":  newStructuralOrder,
	"code-block-syntax": newCodeBlockSyntax,
}

// New constructs the named evaluator with the given params.
func New(kind string, params map[string]any) (Evaluator, error) {
	factory, ok := registry[kind]
	if !ok {
		return nil, fmt.Errorf("unknown evaluator %q (known: %v)", kind, Kinds())
	}
	return factory(params)
}

// Known reports whether kind names a registered evaluator.
func Known(kind string) bool {
	_, ok := registry[kind]
	return ok
}

// Kinds returns the registered evaluator names, sorted.
func Kinds() []string {
	out := make([]string, 0, len(registry))
	for k := range registry {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// decodeParams maps the free-form params of a rule onto a typed params
// struct. Unknown keys are an error so rule sets stay auditable.
func decodeParams(params map[string]any, out any) error {
	raw, err := yaml.Marshal(params)
	if err != nil {
		return fmt.Errorf("encode params: %w", err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("invalid params: %w", err)
	}
	return nil
}

// parseScope converts a scope param into unit kinds. An empty scope means
// every unit kind.
func parseScope(scope []string) ([]document.UnitKind, error) {
	kinds := make([]document.UnitKind, 0, len(scope))
	for _, s := range scope {
		switch k := document.UnitKind(s); k {
		case document.KindHeading, document.KindParagraph,
			document.KindListItem, document.KindCodeBlock:
			kinds = append(kinds, k)
		default:
			return nil, fmt.Errorf("unknown unit kind %q in scope", s)
		}
	}
	return kinds, nil
}
