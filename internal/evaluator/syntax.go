package evaluator

import (
	"context"
	"fmt"

	"checkdoc/internal/document"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/bash"
	"github.com/smacker/go-tree-sitter/css"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/html"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/python"
)

// grammars maps code block info strings to tree-sitter grammars.
var grammars = map[string]func() *sitter.Language{
	"go":         golang.GetLanguage,
	"golang":     golang.GetLanguage,
	"javascript": javascript.GetLanguage,
	"js":         javascript.GetLanguage,
	"python":     python.GetLanguage,
	"py":         python.GetLanguage,
	"html":       html.GetLanguage,
	"css":        css.GetLanguage,
	"bash":       bash.GetLanguage,
	"sh":         bash.GetLanguage,
}

// codeBlockSyntax fails fenced code blocks that do not parse cleanly under
// the grammar named by their info string. Blocks tagged with a language
// outside the configured set are ignored.
type codeBlockSyntax struct {
	languages map[string]bool
}

type codeBlockSyntaxParams struct {
	Languages []string `yaml:"languages"`
}

func newCodeBlockSyntax(params map[string]any) (Evaluator, error) {
	var p codeBlockSyntaxParams
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	if len(p.Languages) == 0 {
		return nil, fmt.Errorf("code-block-syntax requires at least one language")
	}
	langs := make(map[string]bool, len(p.Languages))
	for _, l := range p.Languages {
		if _, ok := grammars[l]; !ok {
			return nil, fmt.Errorf("unsupported code-block-syntax language %q", l)
		}
		langs[l] = true
	}
	return &codeBlockSyntax{languages: langs}, nil
}

func (e *codeBlockSyntax) Kind() string { return "code-block-syntax" }

func (e *codeBlockSyntax) AppliesTo(doc *document.Document) bool {
	for _, u := range doc.UnitsOfKind(document.KindCodeBlock) {
		if e.languages[u.Language] {
			return true
		}
	}
	return false
}

func (e *codeBlockSyntax) Evaluate(doc *document.Document) []Finding {
	var findings []Finding
	for _, unit := range doc.UnitsOfKind(document.KindCodeBlock) {
		unit := unit
		if !e.languages[unit.Language] {
			continue
		}

		parser := sitter.NewParser()
		parser.SetLanguage(grammars[unit.Language]())
		tree, err := parser.ParseCtx(context.Background(), nil, []byte(unit.Text))
		if err != nil {
			findings = append(findings, Finding{
				StartLine: unit.StartLine,
				EndLine:   unit.EndLine,
				Detail:    fmt.Sprintf("%s code block failed to parse: %v", unit.Language, err),
				Unit:      &unit,
			})
			continue
		}

		root := tree.RootNode()
		if !root.HasError() {
			continue
		}
		line := unit.StartLine + 1
		excerpt := ""
		if errNode := firstErrorNode(root); errNode != nil {
			line = unit.StartLine + 1 + int(errNode.StartPoint().Row)
			excerpt = errNode.Content([]byte(unit.Text))
		}
		findings = append(findings, Finding{
			StartLine: line,
			EndLine:   line,
			Matched:   excerpt,
			Detail:    fmt.Sprintf("%s code block contains a syntax error", unit.Language),
			Unit:      &unit,
		})
	}
	return findings
}

// firstErrorNode walks the tree depth-first for the first ERROR or missing
// node.
func firstErrorNode(n *sitter.Node) *sitter.Node {
	if n.Type() == "ERROR" || n.IsMissing() {
		return n
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		if child == nil || !child.HasError() {
			continue
		}
		if found := firstErrorNode(child); found != nil {
			return found
		}
	}
	return nil
}
