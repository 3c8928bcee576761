package indexer

import (
	"strings"
	"unicode/utf8"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
)

const (
	// Max runes per chunk, targeting roughly 450 tokens for a 512-token
	// embedding model. Sizes are measured in runes, not bytes.
	maxChunkRunes = 700
	minChunkRunes = 50
)

// MarkdownChunker splits markdown documents into heading-scoped chunks
// using goldmark AST parsing.
type MarkdownChunker struct {
	parser goldmark.Markdown
}

// NewMarkdownChunker creates a new markdown chunker.
func NewMarkdownChunker() *MarkdownChunker {
	return &MarkdownChunker{
		parser: goldmark.New(
			goldmark.WithExtensions(extension.Table),
		),
	}
}

// ChunkDocument parses markdown content and returns one chunk per heading
// scope, merged and split to fit the size constraints. Content before the
// first heading becomes a chunk with an empty section.
func (c *MarkdownChunker) ChunkDocument(content []byte) []Chunk {
	if len(content) == 0 {
		return nil
	}

	doc := c.parser.Parser().Parse(text.NewReader(content))
	chunks := c.collectChunks(doc, content)
	chunks = c.applySizeConstraints(chunks)
	return chunks
}

type headingInfo struct {
	level int
	text  string
}

// collectChunks walks the AST, starting a new chunk at every heading.
func (c *MarkdownChunker) collectChunks(doc ast.Node, content []byte) []Chunk {
	var chunks []Chunk
	var current *Chunk
	var stack []headingInfo

	flush := func() {
		if current != nil && strings.TrimSpace(current.Text) != "" {
			current.Text = strings.TrimSpace(current.Text)
			chunks = append(chunks, *current)
		}
		current = nil
	}

	appendText := func(s string) {
		if current == nil {
			current = &Chunk{Section: sectionPath(stack)}
		}
		current.Text += s
	}

	breakLine := func() {
		if current != nil && current.Text != "" && !strings.HasSuffix(current.Text, "\n") {
			current.Text += "\n"
		}
	}

	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		switch node := n.(type) {
		case *ast.Heading:
			flush()
			for len(stack) > 0 && stack[len(stack)-1].level >= node.Level {
				stack = stack[:len(stack)-1]
			}
			stack = append(stack, headingInfo{level: node.Level, text: nodeText(node, content)})
			current = &Chunk{Section: sectionPath(stack)}
			return ast.WalkSkipChildren, nil

		case *ast.Text:
			appendText(string(node.Segment.Value(content)))

		case *ast.String:
			appendText(string(node.Value))

		case *ast.CodeBlock:
			breakLine()
			lines := node.Lines()
			for i := 0; i < lines.Len(); i++ {
				seg := lines.At(i)
				appendText(string(seg.Value(content)))
			}

		case *ast.FencedCodeBlock:
			breakLine()
			lines := node.Lines()
			for i := 0; i < lines.Len(); i++ {
				seg := lines.At(i)
				appendText(string(seg.Value(content)))
			}

		case *ast.Paragraph, *ast.List, *ast.ListItem:
			breakLine()

		default:
			// Table rows are flattened with pipe-separated cells so the
			// embedding sees one row per line.
			kind := n.Kind().String()
			if kind == "TableRow" || kind == "TableHeader" {
				breakLine()
				appendText(tableRowText(n, content))
				appendText("\n")
				return ast.WalkSkipChildren, nil
			}
		}

		return ast.WalkContinue, nil
	})

	flush()
	return chunks
}

// sectionPath renders the heading stack as "# A > ## B".
func sectionPath(stack []headingInfo) string {
	if len(stack) == 0 {
		return ""
	}
	parts := make([]string, len(stack))
	for i, h := range stack {
		parts[i] = strings.Repeat("#", h.level) + " " + h.text
	}
	return strings.Join(parts, " > ")
}

// nodeText extracts the plain text of a node and its children.
func nodeText(n ast.Node, content []byte) string {
	var b strings.Builder
	_ = ast.Walk(n, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch v := node.(type) {
		case *ast.Text:
			b.Write(v.Segment.Value(content))
		case *ast.String:
			b.Write(v.Value)
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(b.String())
}

// tableRowText renders a table row as pipe-separated cell text.
func tableRowText(row ast.Node, content []byte) string {
	var cells []string
	_ = ast.Walk(row, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if node.Kind().String() == "TableCell" {
			cells = append(cells, nodeText(node, content))
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	return strings.Join(cells, " | ")
}

// applySizeConstraints merges undersized chunks into their successor and
// splits oversized ones, then re-indexes.
func (c *MarkdownChunker) applySizeConstraints(chunks []Chunk) []Chunk {
	if len(chunks) == 0 {
		return chunks
	}

	var result []Chunk
	for i := 0; i < len(chunks); i++ {
		current := chunks[i]

		for i+1 < len(chunks) && utf8.RuneCountInString(current.Text) < minChunkRunes {
			next := chunks[i+1]
			merged := current.Text + "\n\n" + next.Text
			if utf8.RuneCountInString(merged) > maxChunkRunes {
				break
			}
			current.Text = merged
			i++
		}

		if utf8.RuneCountInString(current.Text) > maxChunkRunes {
			result = append(result, splitChunk(current)...)
		} else {
			result = append(result, current)
		}
	}

	for i := range result {
		result[i].Index = i
	}
	return result
}

// splitChunk splits an oversized chunk, preferring paragraph, then line,
// then sentence boundaries before falling back to a hard split.
func splitChunk(chunk Chunk) []Chunk {
	runes := []rune(chunk.Text)
	var splits []Chunk

	start := 0
	for start < len(runes) {
		end := start + maxChunkRunes
		if end >= len(runes) {
			splits = append(splits, Chunk{Section: chunk.Section, Text: string(runes[start:])})
			break
		}

		window := string(runes[start:end])
		split := end
		if b := strings.LastIndex(window, "\n\n"); b != -1 {
			split = start + utf8.RuneCountInString(window[:b]) + 2
		} else if b := strings.LastIndex(window, "\n"); b != -1 {
			split = start + utf8.RuneCountInString(window[:b]) + 1
		} else if b := strings.LastIndex(window, ". "); b != -1 {
			split = start + utf8.RuneCountInString(window[:b]) + 2
		}

		splits = append(splits, Chunk{Section: chunk.Section, Text: string(runes[start:split])})
		start = split
	}

	return splits
}
