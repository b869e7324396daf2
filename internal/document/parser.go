package document

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

var (
	headingPattern  = regexp.MustCompile(`^(#{1,6})\s+(.*)$`)
	listItemPattern = regexp.MustCompile(`^\s*(?:[-*+]|\d+[.)])\s+(.*)$`)
	fencePattern    = regexp.MustCompile("^\\s{0,3}(`{3,}|~{3,})\\s*(\\S*)")
	breakPattern    = regexp.MustCompile(`^\s{0,3}(-{3,}|\*{3,}|_{3,})\s*$`)
)

// ParseFile reads and parses a Markdown document from disk.
func ParseFile(path string) (*Document, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, &ParseError{Path: path, Reason: err.Error()}
	}
	return Parse(path, content)
}

// Parse parses Markdown content into an ordered unit sequence. It recognizes
// ATX headings, fenced code blocks, list items and paragraphs, with optional
// YAML frontmatter. Line numbers always refer to the original source.
func Parse(path string, content []byte) (*Document, error) {
	text := strings.ReplaceAll(string(content), "\r\n", "\n")
	lines := strings.Split(text, "\n")

	doc := &Document{Path: path, Lines: lines}

	start := 0
	if fm, next, ok := extractFrontmatter(lines); ok {
		doc.Frontmatter = fm
		start = next
	}

	p := &parser{doc: doc, lines: lines}
	if err := p.run(start); err != nil {
		return nil, err
	}
	return doc, nil
}

type parser struct {
	doc   *Document
	lines []string

	// accumulation state for the unit under construction
	kind  UnitKind
	buf   []string
	first int
	last  int
}

func (p *parser) run(start int) error {
	for i := start; i < len(p.lines); i++ {
		line := p.lines[i]
		trimmed := strings.TrimSpace(line)

		// Blank lines and thematic breaks terminate the current unit.
		if trimmed == "" || breakPattern.MatchString(line) {
			p.flush()
			continue
		}

		if m := fencePattern.FindStringSubmatch(line); m != nil {
			p.flush()
			next, err := p.consumeFence(i, m[1], m[2])
			if err != nil {
				return err
			}
			i = next
			continue
		}

		if m := headingPattern.FindStringSubmatch(line); m != nil {
			p.flush()
			p.doc.Units = append(p.doc.Units, Unit{
				Kind:      KindHeading,
				Text:      strings.TrimRight(strings.TrimSpace(m[2]), " #"),
				StartLine: i + 1,
				EndLine:   i + 1,
				Level:     len(m[1]),
			})
			continue
		}

		if m := listItemPattern.FindStringSubmatch(line); m != nil {
			// A new marker always starts a new item, even inside a list.
			p.flush()
			p.begin(KindListItem, i, m[1])
			continue
		}

		// Indented continuation lines stay with an open list item.
		if p.kind == KindListItem && (strings.HasPrefix(line, " ") || strings.HasPrefix(line, "\t")) {
			p.appendLine(i, trimmed)
			continue
		}

		if p.kind == KindParagraph {
			p.appendLine(i, trimmed)
			continue
		}

		p.flush()
		p.begin(KindParagraph, i, trimmed)
	}

	p.flush()
	return nil
}

// consumeFence reads a fenced code block starting at open (0-based) and
// returns the index of the closing fence line.
func (p *parser) consumeFence(open int, fence, info string) (int, error) {
	marker := fence[:1]
	var body []string
	for i := open + 1; i < len(p.lines); i++ {
		trimmed := strings.TrimSpace(p.lines[i])
		if strings.HasPrefix(trimmed, strings.Repeat(marker, len(fence))) &&
			strings.TrimLeft(trimmed, marker) == "" {
			p.doc.Units = append(p.doc.Units, Unit{
				Kind:      KindCodeBlock,
				Text:      strings.Join(body, "\n"),
				StartLine: open + 1,
				EndLine:   i + 1,
				Language:  strings.ToLower(info),
			})
			return i, nil
		}
		body = append(body, p.lines[i])
	}
	return 0, &ParseError{
		Path:   p.doc.Path,
		Line:   open + 1,
		Reason: fmt.Sprintf("unterminated fenced code block (opened with %s)", fence),
	}
}

func (p *parser) begin(kind UnitKind, idx int, text string) {
	p.kind = kind
	p.buf = []string{text}
	p.first = idx + 1
	p.last = idx + 1
}

func (p *parser) appendLine(idx int, text string) {
	p.buf = append(p.buf, text)
	p.last = idx + 1
}

func (p *parser) flush() {
	if p.kind == "" {
		return
	}
	p.doc.Units = append(p.doc.Units, Unit{
		Kind:      p.kind,
		Text:      strings.Join(p.buf, "\n"),
		StartLine: p.first,
		EndLine:   p.last,
	})
	p.kind = ""
	p.buf = nil
}

// extractFrontmatter parses a leading YAML frontmatter block. It returns the
// parsed map and the 0-based index of the first body line. Malformed
// frontmatter is not fatal: the block is then treated as regular content.
func extractFrontmatter(lines []string) (map[string]any, int, bool) {
	if len(lines) == 0 || strings.TrimSpace(lines[0]) != "---" {
		return nil, 0, false
	}
	for i := 1; i < len(lines); i++ {
		trimmed := strings.TrimSpace(lines[i])
		if trimmed == "---" || trimmed == "..." {
			var fm map[string]any
			raw := strings.Join(lines[1:i], "\n")
			if err := yaml.Unmarshal([]byte(raw), &fm); err != nil {
				return nil, 0, false
			}
			return fm, i + 1, true
		}
	}
	return nil, 0, false
}
