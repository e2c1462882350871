package purge

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
)

// NodeKind identifies what a stylesheet Node holds.
type NodeKind int

// Node kinds.
const (
	// NodeRule is a qualified rule: selectors followed by a declaration block.
	NodeRule NodeKind = iota
	// NodeGroup is a block at-rule whose body holds rules (@media, @supports, ...).
	NodeGroup
	// NodeAtBlock is a block at-rule kept verbatim (@keyframes, @font-face, ...).
	NodeAtBlock
	// NodeStatement is anything terminated by a semicolon (@import, @charset, ...).
	NodeStatement
)

// groupingAtRules are recursed into when purging.
var groupingAtRules = map[string]bool{
	"media":          true,
	"supports":       true,
	"layer":          true,
	"container":      true,
	"document":       true,
	"-moz-document":  true,
	"scope":          true,
	"starting-style": true,
}

// Node is one top-level construct of a stylesheet block. Leading holds the
// whitespace and comments in front of it, Prelude everything up to the
// opening brace (or the statement text including its semicolon).
type Node struct {
	Kind     NodeKind
	AtName   string // lowercased at-rule name without '@'
	Leading  string
	Prelude  string
	Body     string  // raw text between the braces of rules and verbatim at-rules
	Children []*Node // rules inside a grouping at-rule, or the declarations and nested rules of a rule
	Trailing string  // whitespace and comments before the closing brace of a node with children

	leadingHasComment bool
}

// Stylesheet is a stylesheet split into nodes. Serializing it with String
// reproduces the original text byte for byte.
type Stylesheet struct {
	Nodes    []*Node
	Trailing string
}

// ParseStylesheet splits css into a node tree. It fails with
// ErrMalformedStylesheet on unbalanced braces.
func ParseStylesheet(content string) (*Stylesheet, error) {
	p := &sheetParser{lexer: css.NewLexer(parse.NewInputString(content))}
	nodes, trailing, err := p.parseBlock(0)
	if err != nil {
		return nil, err
	}
	return &Stylesheet{Nodes: nodes, Trailing: trailing}, nil
}

type sheetParser struct {
	lexer *css.Lexer
}

// pendingNode accumulates tokens until a brace or semicolon decides what the
// node is.
type pendingNode struct {
	leading    strings.Builder
	prelude    strings.Builder
	hasComment bool
	started    bool
	atName     string
}

func (pn *pendingNode) write(tt css.TokenType, text []byte) {
	if !pn.started {
		switch tt {
		case css.WhitespaceToken, css.CDOToken, css.CDCToken:
			pn.leading.Write(text)
			return
		case css.CommentToken:
			pn.hasComment = true
			pn.leading.Write(text)
			return
		case css.AtKeywordToken:
			pn.atName = strings.ToLower(string(text[1:]))
		}
		pn.started = true
	}
	pn.prelude.Write(text)
}

func (pn *pendingNode) reset() {
	*pn = pendingNode{}
}

// parseBlock reads nodes until the closing brace of the current block (or EOF
// at depth 0). It returns the nodes and the trivia after the last one.
func (p *sheetParser) parseBlock(depth int) ([]*Node, string, error) {
	var nodes []*Node
	var pn pendingNode

	for {
		tt, text := p.lexer.Next()
		switch tt {
		case css.ErrorToken:
			if err := p.lexer.Err(); err != nil && !errors.Is(err, io.EOF) {
				return nil, "", fmt.Errorf("%w: %v", ErrMalformedStylesheet, err)
			}
			if depth > 0 {
				return nil, "", fmt.Errorf("%w: unexpected end of input inside block", ErrMalformedStylesheet)
			}
			if pn.started {
				// An unterminated statement at EOF is kept as-is.
				nodes = append(nodes, pn.node(NodeStatement))
				return nodes, "", nil
			}
			return nodes, pn.leading.String(), nil

		case css.SemicolonToken:
			pn.started = true
			pn.prelude.Write(text)
			nodes = append(nodes, pn.node(NodeStatement))
			pn.reset()

		case css.LeftBraceToken:
			node, err := p.openNode(&pn, depth)
			if err != nil {
				return nil, "", err
			}
			nodes = append(nodes, node)
			pn.reset()

		case css.RightBraceToken:
			if depth == 0 {
				return nil, "", fmt.Errorf("%w: unexpected '}'", ErrMalformedStylesheet)
			}
			if pn.started {
				nodes = append(nodes, pn.node(NodeStatement))
				return nodes, "", nil
			}
			return nodes, pn.leading.String(), nil

		default:
			pn.write(tt, text)
		}
	}
}

func (pn *pendingNode) node(kind NodeKind) *Node {
	return &Node{
		Kind:              kind,
		AtName:            pn.atName,
		Leading:           pn.leading.String(),
		Prelude:           pn.prelude.String(),
		leadingHasComment: pn.hasComment,
	}
}

// openNode is called on '{' and consumes the block through its closing brace.
func (p *sheetParser) openNode(pn *pendingNode, depth int) (*Node, error) {
	pn.started = true

	if pn.atName == "" {
		node := pn.node(NodeRule)
		body, err := p.rawBlock()
		if err != nil {
			return nil, err
		}
		node.Body = body
		if strings.HasPrefix(strings.TrimSpace(node.Prelude), "--") {
			// custom property whose value is a block
			node.Kind = NodeAtBlock
			return node, nil
		}
		if strings.Contains(body, "{") {
			node.Children, node.Trailing = nestedNodes(body)
		}
		return node, nil
	}

	if groupingAtRules[pn.atName] {
		node := pn.node(NodeGroup)
		children, trailing, err := p.parseBlock(depth + 1)
		if err != nil {
			return nil, err
		}
		node.Children = children
		node.Trailing = trailing
		return node, nil
	}

	node := pn.node(NodeAtBlock)
	body, err := p.rawBlock()
	if err != nil {
		return nil, err
	}
	node.Body = body
	return node, nil
}

// rawBlock returns the text up to the brace closing the current block. Nested
// blocks (CSS nesting, keyframe stops) stay inside the body.
func (p *sheetParser) rawBlock() (string, error) {
	var b strings.Builder
	level := 1
	for {
		tt, text := p.lexer.Next()
		switch tt {
		case css.ErrorToken:
			if err := p.lexer.Err(); err != nil && !errors.Is(err, io.EOF) {
				return "", fmt.Errorf("%w: %v", ErrMalformedStylesheet, err)
			}
			return "", fmt.Errorf("%w: unexpected end of input inside declaration block", ErrMalformedStylesheet)
		case css.LeftBraceToken:
			level++
		case css.RightBraceToken:
			level--
			if level == 0 {
				return b.String(), nil
			}
		}
		b.Write(text)
	}
}

// nestedNodes splits a rule body holding nested rules. Declarations become
// statement nodes. A body that does not parse on its own yields no children
// and stays opaque.
func nestedNodes(body string) ([]*Node, string) {
	p := &sheetParser{lexer: css.NewLexer(parse.NewInputString(body))}
	nodes, trailing, err := p.parseBlock(0)
	if err != nil {
		return nil, ""
	}
	return nodes, trailing
}

// String serializes the stylesheet.
func (s *Stylesheet) String() string {
	var b strings.Builder
	for _, n := range s.Nodes {
		n.writeTo(&b)
	}
	b.WriteString(s.Trailing)
	return b.String()
}

func (n *Node) writeTo(b *strings.Builder) {
	b.WriteString(n.Leading)
	b.WriteString(n.Prelude)
	switch n.Kind {
	case NodeStatement:
		return
	case NodeGroup:
		b.WriteByte('{')
		for _, c := range n.Children {
			c.writeTo(b)
		}
		b.WriteString(n.Trailing)
		b.WriteByte('}')
	default:
		b.WriteByte('{')
		b.WriteString(n.Body)
		b.WriteByte('}')
	}
}

// Walk calls fn for every rule node, descending into grouping at-rules and
// nested rules.
func (s *Stylesheet) Walk(fn func(*Node)) {
	walkNodes(s.Nodes, fn)
}

func walkNodes(nodes []*Node, fn func(*Node)) {
	for _, n := range nodes {
		switch n.Kind {
		case NodeRule:
			fn(n)
			walkNodes(n.Children, fn)
		case NodeGroup:
			walkNodes(n.Children, fn)
		}
	}
}
