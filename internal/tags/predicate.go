// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package tags

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pdiddy/citegraph/pkg/types"
)

// predicate is a compiled match expression. Evaluation never fails: a
// runtime fault (unknown field, non-numeric operand under an ordering op)
// makes the node a non-match, nothing more.
type predicate interface {
	matches(p *types.Paper) bool
}

type andPred struct{ left, right predicate }

func (a *andPred) matches(p *types.Paper) bool { return a.left.matches(p) && a.right.matches(p) }

type orPred struct{ left, right predicate }

func (o *orPred) matches(p *types.Paper) bool { return o.left.matches(p) || o.right.matches(p) }

type notPred struct{ inner predicate }

func (n *notPred) matches(p *types.Paper) bool { return !n.inner.matches(p) }

// cmpPred is one `field op value` comparison. The author field is special:
// the comparison holds when it holds for any author family name.
type cmpPred struct {
	field string
	op    string
	value string
}

func (c *cmpPred) matches(p *types.Paper) bool {
	if c.field == "author" {
		for _, a := range p.Authors {
			if compareAuthor(a.Family, c.op, c.value) {
				return true
			}
		}
		return false
	}
	val, ok := fieldValue(p, c.field)
	if !ok {
		return false
	}
	return compare(val, c.op, c.value)
}

// fieldValue resolves a field name against the record. Builtin fields
// first, then the Extra map; a name found in neither is a fault.
func fieldValue(p *types.Paper, field string) (string, bool) {
	switch field {
	case "id":
		return string(p.ID), true
	case "title":
		return p.Title, true
	case "venue":
		return p.Venue, true
	case "year":
		if p.Year == 0 {
			return "", false
		}
		return strconv.Itoa(p.Year), true
	case "citations":
		return strconv.Itoa(p.CitationCount), true
	case "references":
		return strconv.Itoa(p.ReferenceCount), true
	}
	v, ok := p.Extra[field]
	return v, ok
}

// compare applies op to two strings. Equality and containment are string
// operations; the ordering ops compare numerically and fault on
// non-numeric operands.
func compare(field, op, value string) bool {
	switch op {
	case "=":
		return field == value
	case "!=":
		return field != value
	case "~":
		return strings.Contains(strings.ToLower(field), strings.ToLower(value))
	}
	a, errA := strconv.ParseFloat(field, 64)
	b, errB := strconv.ParseFloat(value, 64)
	if errA != nil || errB != nil {
		return false
	}
	switch op {
	case "<":
		return a < b
	case "<=":
		return a <= b
	case ">":
		return a > b
	case ">=":
		return a >= b
	}
	return false
}

// compareAuthor is compare with case-insensitive equality, matching how
// family names are treated everywhere else.
func compareAuthor(family, op, value string) bool {
	switch op {
	case "=":
		return strings.EqualFold(family, value)
	case "!=":
		return !strings.EqualFold(family, value)
	}
	return compare(family, op, value)
}

// --- parser ---

// parsePredicate compiles a match expression:
//
//	expr      := and { "or" and }
//	and       := unary { "and" unary }
//	unary     := "not" unary | "(" expr ")" | field op value
//	op        := = | != | < | <= | > | >= | ~
//
// Values quote with single or double quotes when they contain spaces,
// parentheses, or operator characters. Keywords are case-insensitive.
func parsePredicate(src string) (predicate, error) {
	toks, err := lex(src)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	pred, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if tok := p.peek(); tok.kind != tokEOF {
		return nil, fmt.Errorf("unexpected %q at offset %d", tok.text, tok.pos)
	}
	return pred, nil
}

type tokKind int

const (
	tokEOF tokKind = iota
	tokWord
	tokOp
	tokLParen
	tokRParen
)

type token struct {
	kind   tokKind
	text   string
	pos    int
	quoted bool
}

func lex(src string) ([]token, error) {
	var toks []token
	i := 0
	for i < len(src) {
		c := src[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
		case c == '(':
			toks = append(toks, token{kind: tokLParen, text: "(", pos: i})
			i++
		case c == ')':
			toks = append(toks, token{kind: tokRParen, text: ")", pos: i})
			i++
		case c == '=' || c == '~':
			toks = append(toks, token{kind: tokOp, text: string(c), pos: i})
			i++
		case c == '!':
			if i+1 >= len(src) || src[i+1] != '=' {
				return nil, fmt.Errorf("expected != at offset %d", i)
			}
			toks = append(toks, token{kind: tokOp, text: "!=", pos: i})
			i += 2
		case c == '<' || c == '>':
			op := string(c)
			if i+1 < len(src) && src[i+1] == '=' {
				op += "="
				i++
			}
			toks = append(toks, token{kind: tokOp, text: op, pos: i})
			i++
		case c == '"' || c == '\'':
			end := strings.IndexByte(src[i+1:], c)
			if end < 0 {
				return nil, fmt.Errorf("unterminated string at offset %d", i)
			}
			toks = append(toks, token{kind: tokWord, text: src[i+1 : i+1+end], pos: i, quoted: true})
			i += end + 2
		default:
			start := i
			for i < len(src) && !strings.ContainsRune(" \t\n\r()=!<>~'\"", rune(src[i])) {
				i++
			}
			toks = append(toks, token{kind: tokWord, text: src[start:i], pos: start})
		}
	}
	toks = append(toks, token{kind: tokEOF, pos: len(src)})
	return toks, nil
}

type parser struct {
	toks []token
	i    int
}

func (p *parser) peek() token { return p.toks[p.i] }

func (p *parser) next() token {
	t := p.toks[p.i]
	if t.kind != tokEOF {
		p.i++
	}
	return t
}

func (p *parser) keyword(word string) bool {
	t := p.peek()
	if t.kind == tokWord && !t.quoted && strings.EqualFold(t.text, word) {
		p.next()
		return true
	}
	return false
}

func (p *parser) parseOr() (predicate, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.keyword("or") {
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &orPred{left: left, right: right}
	}
	return left, nil
}

func (p *parser) parseAnd() (predicate, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.keyword("and") {
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &andPred{left: left, right: right}
	}
	return left, nil
}

func (p *parser) parseUnary() (predicate, error) {
	if p.keyword("not") {
		inner, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &notPred{inner: inner}, nil
	}
	if p.peek().kind == tokLParen {
		p.next()
		inner, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if tok := p.next(); tok.kind != tokRParen {
			return nil, fmt.Errorf("expected ) at offset %d", tok.pos)
		}
		return inner, nil
	}
	return p.parseComparison()
}

func (p *parser) parseComparison() (predicate, error) {
	field := p.next()
	if field.kind != tokWord {
		return nil, fmt.Errorf("expected field name at offset %d", field.pos)
	}
	op := p.next()
	if op.kind != tokOp {
		return nil, fmt.Errorf("expected operator after %q at offset %d", field.text, op.pos)
	}
	value := p.next()
	if value.kind != tokWord {
		return nil, fmt.Errorf("expected value after %q at offset %d", op.text, value.pos)
	}
	return &cmpPred{field: field.text, op: op.text, value: value.text}, nil
}
