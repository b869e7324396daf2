package evaluator

import (
	"fmt"
	"regexp"

	"checkdoc/internal/document"
)

// structuralOrder fails when the document's headings do not contain the
// required sequence in order. Each sequence element is a regex matched
// against heading text.
type structuralOrder struct {
	sequence []*regexp.Regexp
	names    []string
}

type structuralOrderParams struct {
	Sequence []string `yaml:"sequence"`
}

func newStructuralOrder(params map[string]any) (Evaluator, error) {
	var p structuralOrderParams
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	if len(p.Sequence) < 1 {
		return nil, fmt.Errorf("structural-order requires a heading sequence")
	}
	compiled, err := compileAll(p.Sequence)
	if err != nil {
		return nil, err
	}
	return &structuralOrder{sequence: compiled, names: p.Sequence}, nil
}

func (e *structuralOrder) Kind() string { return "structural-order" }

func (e *structuralOrder) AppliesTo(doc *document.Document) bool {
	return len(doc.Units) > 0
}

func (e *structuralOrder) Evaluate(doc *document.Document) []Finding {
	if len(doc.Units) == 0 {
		return nil
	}
	headings := doc.Headings()

	cursor := 0
	for i, re := range e.sequence {
		idx := indexOfHeading(headings, re, cursor)
		if idx >= 0 {
			cursor = idx + 1
			continue
		}

		// Not found at or after the cursor. Distinguish out-of-order from
		// missing by looking before the cursor.
		if early := indexOfHeading(headings, re, 0); early >= 0 {
			h := headings[early]
			return []Finding{{
				StartLine: h.StartLine,
				EndLine:   h.EndLine,
				Matched:   h.Text,
				Detail: fmt.Sprintf("heading %q appears before %q, required order is %v",
					h.Text, previousName(e.names, i), e.names),
				Unit: &h,
			}}
		}
		return []Finding{{
			StartLine: 1,
			EndLine:   1,
			Detail:    fmt.Sprintf("required heading matching %q is missing, required order is %v", e.names[i], e.names),
		}}
	}
	return nil
}

func indexOfHeading(headings []document.Unit, re *regexp.Regexp, from int) int {
	for i := from; i < len(headings); i++ {
		if re.MatchString(headings[i].Text) {
			return i
		}
	}
	return -1
}

func previousName(names []string, i int) string {
	if i == 0 {
		return names[0]
	}
	return names[i-1]
}
