package classify

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// Rule conditions are restricted boolean expressions over the single
// variable "amount": comparisons, arithmetic, and/or/not, parentheses.
// They come from a configuration file, so they are parsed into a small
// AST and evaluated directly; nothing here can reach beyond the one
// bound variable.

type condNode interface {
	eval(amount decimal.Decimal) (condValue, error)
}

// condValue is either a boolean or a numeric intermediate result.
type condValue struct {
	isBool bool
	b      bool
	n      decimal.Decimal
}

func boolValue(b bool) condValue { return condValue{isBool: true, b: b} }

func numValue(n decimal.Decimal) condValue { return condValue{n: n} }

type numberNode struct{ value decimal.Decimal }

func (n numberNode) eval(decimal.Decimal) (condValue, error) {
	return numValue(n.value), nil
}

type amountNode struct{}

func (amountNode) eval(amount decimal.Decimal) (condValue, error) {
	return numValue(amount), nil
}

type notNode struct{ operand condNode }

func (n notNode) eval(amount decimal.Decimal) (condValue, error) {
	v, err := n.operand.eval(amount)
	if err != nil {
		return condValue{}, err
	}
	if !v.isBool {
		return condValue{}, fmt.Errorf("operand of 'not' is not a boolean")
	}
	return boolValue(!v.b), nil
}

type binaryNode struct {
	op          string
	left, right condNode
}

func (n binaryNode) eval(amount decimal.Decimal) (condValue, error) {
	l, err := n.left.eval(amount)
	if err != nil {
		return condValue{}, err
	}
	r, err := n.right.eval(amount)
	if err != nil {
		return condValue{}, err
	}

	switch n.op {
	case "and", "or":
		if !l.isBool || !r.isBool {
			return condValue{}, fmt.Errorf("operands of %q are not booleans", n.op)
		}
		if n.op == "and" {
			return boolValue(l.b && r.b), nil
		}
		return boolValue(l.b || r.b), nil
	}

	if l.isBool || r.isBool {
		return condValue{}, fmt.Errorf("operands of %q are not numbers", n.op)
	}
	switch n.op {
	case "<":
		return boolValue(l.n.LessThan(r.n)), nil
	case "<=":
		return boolValue(l.n.LessThanOrEqual(r.n)), nil
	case ">":
		return boolValue(l.n.GreaterThan(r.n)), nil
	case ">=":
		return boolValue(l.n.GreaterThanOrEqual(r.n)), nil
	case "==":
		return boolValue(l.n.Equal(r.n)), nil
	case "!=":
		return boolValue(!l.n.Equal(r.n)), nil
	case "+":
		return numValue(l.n.Add(r.n)), nil
	case "-":
		return numValue(l.n.Sub(r.n)), nil
	case "*":
		return numValue(l.n.Mul(r.n)), nil
	case "/":
		if r.n.IsZero() {
			return condValue{}, fmt.Errorf("division by zero")
		}
		return numValue(l.n.Div(r.n)), nil
	}
	return condValue{}, fmt.Errorf("unknown operator %q", n.op)
}

// condition is a parsed, evaluable rule condition.
type condition struct {
	src  string
	root condNode
}

// evaluate runs the condition against an amount. The result must be a
// boolean; a numeric-only expression is an evaluation error.
func (c *condition) evaluate(amount decimal.Decimal) (bool, error) {
	v, err := c.root.eval(amount)
	if err != nil {
		return false, fmt.Errorf("condition %q: %w", c.src, err)
	}
	if !v.isBool {
		return false, fmt.Errorf("condition %q does not evaluate to a boolean", c.src)
	}
	return v.b, nil
}

// parseCondition parses a condition expression.
func parseCondition(src string) (*condition, error) {
	tokens, err := tokenizeCondition(src)
	if err != nil {
		return nil, fmt.Errorf("condition %q: %w", src, err)
	}
	p := condParser{tokens: tokens}
	root, err := p.parseOr()
	if err != nil {
		return nil, fmt.Errorf("condition %q: %w", src, err)
	}
	if p.pos != len(p.tokens) {
		return nil, fmt.Errorf("condition %q: unexpected token %q", src, p.tokens[p.pos])
	}
	return &condition{src: src, root: root}, nil
}

func tokenizeCondition(src string) ([]string, error) {
	var tokens []string
	runes := []rune(src)
	i := 0
	for i < len(runes) {
		c := runes[i]
		switch {
		case unicode.IsSpace(c):
			i++
		case unicode.IsDigit(c) || c == '.':
			j := i
			for j < len(runes) && (unicode.IsDigit(runes[j]) || runes[j] == '.') {
				j++
			}
			tokens = append(tokens, string(runes[i:j]))
			i = j
		case unicode.IsLetter(c) || c == '_':
			j := i
			for j < len(runes) && (unicode.IsLetter(runes[j]) || unicode.IsDigit(runes[j]) || runes[j] == '_') {
				j++
			}
			word := strings.ToLower(string(runes[i:j]))
			switch word {
			case "amount", "and", "or", "not":
				tokens = append(tokens, word)
			default:
				return nil, fmt.Errorf("unknown identifier %q", word)
			}
			i = j
		case strings.ContainsRune("<>=!", c):
			if i+1 < len(runes) && runes[i+1] == '=' {
				tokens = append(tokens, string(runes[i:i+2]))
				i += 2
			} else if c == '=' {
				return nil, fmt.Errorf("unexpected character '='")
			} else if c == '!' {
				tokens = append(tokens, "not")
				i++
			} else {
				tokens = append(tokens, string(c))
				i++
			}
		case c == '&' || c == '|':
			if i+1 < len(runes) && runes[i+1] == c {
				if c == '&' {
					tokens = append(tokens, "and")
				} else {
					tokens = append(tokens, "or")
				}
				i += 2
			} else {
				return nil, fmt.Errorf("unexpected character %q", string(c))
			}
		case strings.ContainsRune("+-*/()", c):
			tokens = append(tokens, string(c))
			i++
		default:
			return nil, fmt.Errorf("unexpected character %q", string(c))
		}
	}
	if len(tokens) == 0 {
		return nil, fmt.Errorf("empty expression")
	}
	return tokens, nil
}

// Recursive-descent parser. Precedence, loosest first: or, and, not,
// comparison, additive, multiplicative, unary minus.
type condParser struct {
	tokens []string
	pos    int
}

func (p *condParser) peek() string {
	if p.pos < len(p.tokens) {
		return p.tokens[p.pos]
	}
	return ""
}

func (p *condParser) next() string {
	t := p.peek()
	if t != "" {
		p.pos++
	}
	return t
}

func (p *condParser) parseOr() (condNode, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.peek() == "or" {
		p.next()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = binaryNode{op: "or", left: left, right: right}
	}
	return left, nil
}

func (p *condParser) parseAnd() (condNode, error) {
	left, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	for p.peek() == "and" {
		p.next()
		right, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		left = binaryNode{op: "and", left: left, right: right}
	}
	return left, nil
}

func (p *condParser) parseNot() (condNode, error) {
	if p.peek() == "not" {
		p.next()
		operand, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		return notNode{operand: operand}, nil
	}
	return p.parseComparison()
}

func (p *condParser) parseComparison() (condNode, error) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	switch op := p.peek(); op {
	case "<", "<=", ">", ">=", "==", "!=":
		p.next()
		right, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		return binaryNode{op: op, left: left, right: right}, nil
	}
	return left, nil
}

func (p *condParser) parseAdditive() (condNode, error) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for p.peek() == "+" || p.peek() == "-" {
		op := p.next()
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		left = binaryNode{op: op, left: left, right: right}
	}
	return left, nil
}

func (p *condParser) parseMultiplicative() (condNode, error) {
	left, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for p.peek() == "*" || p.peek() == "/" {
		op := p.next()
		right, err := p.parsePrimary()
		if err != nil {
			return nil, err
		}
		left = binaryNode{op: op, left: left, right: right}
	}
	return left, nil
}

func (p *condParser) parsePrimary() (condNode, error) {
	switch tok := p.next(); {
	case tok == "":
		return nil, fmt.Errorf("unexpected end of expression")
	case tok == "(":
		inner, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if p.next() != ")" {
			return nil, fmt.Errorf("missing closing parenthesis")
		}
		return inner, nil
	case tok == "-":
		operand, err := p.parsePrimary()
		if err != nil {
			return nil, err
		}
		return binaryNode{op: "-", left: numberNode{value: decimal.Zero}, right: operand}, nil
	case tok == "amount":
		return amountNode{}, nil
	case unicode.IsDigit(rune(tok[0])) || tok[0] == '.':
		d, err := decimal.NewFromString(tok)
		if err != nil {
			return nil, fmt.Errorf("bad number %q", tok)
		}
		return numberNode{value: d}, nil
	default:
		return nil, fmt.Errorf("unexpected token %q", tok)
	}
}
