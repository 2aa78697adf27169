// Package calc implements the keypad calculator: key handling on a display
// string and evaluation of the resulting expression.
package calc

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

const ErrorDisplay = "Error"

var (
	ErrSyntax     = errors.New("syntax error")
	ErrDivByZero  = errors.New("division by zero")
	ErrDomain     = errors.New("argument out of domain")
	ErrNotFinite  = errors.New("result is not finite")
	ErrEmptyInput = errors.New("empty expression")
)

// Functions are the keys that open a call, e.g. "sin" appends "sin(".
var Functions = []string{"sin", "cos", "tan", "log", "ln", "√"}

func isFunction(key string) bool {
	for _, f := range Functions {
		if f == key {
			return true
		}
	}
	return false
}

// Press applies one keypad key to the current display and returns the new
// display.
func Press(display, key string) string {
	if display == "" || display == ErrorDisplay {
		display = "0"
	}

	switch {
	case key == "C" || key == "AC":
		return "0"
	case key == "⌫":
		_, size := utf8.DecodeLastRuneInString(display)
		rest := display[:len(display)-size]
		if rest == "" {
			return "0"
		}
		return rest
	case key == "=":
		v, err := Evaluate(display)
		if err != nil {
			return ErrorDisplay
		}
		return Format(v)
	case isFunction(key):
		key += "("
	}

	if display == "0" && replacesZero(key) {
		return key
	}
	return display + key
}

// an operator key extends "0" ("0+"); anything that starts an operand
// replaces it
func replacesZero(key string) bool {
	switch key {
	case "+", "-", "−", "×", "*", "÷", "/", "^", "%", ".", ")":
		return false
	}
	return true
}

// Format renders v rounded to 10 decimal places without trailing zeros.
func Format(v float64) string {
	d := decimal.NewFromFloat(v).Round(10)
	if d.IsZero() {
		return "0"
	}
	return d.String()
}

// Evaluate parses and computes expr. Missing closing parentheses at the end
// of the input are implied. Trigonometric functions take degrees.
func Evaluate(expr string) (float64, error) {
	toks, err := tokenize(expr)
	if err != nil {
		return 0, err
	}
	if len(toks) == 0 {
		return 0, ErrEmptyInput
	}
	p := &parser{toks: toks}
	v, err := p.expr()
	if err != nil {
		return 0, err
	}
	if !p.done() {
		return 0, fmt.Errorf("%w: unexpected %q", ErrSyntax, p.peek().text)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, ErrNotFinite
	}
	return v, nil
}

type tokenKind int

const (
	tokNumber tokenKind = iota
	tokOp
	tokFunc
	tokLParen
	tokRParen
)

type token struct {
	kind  tokenKind
	text  string
	value float64
}

func tokenize(s string) ([]token, error) {
	var toks []token
	rs := []rune(s)
	for i := 0; i < len(rs); {
		r := rs[i]
		switch {
		case unicode.IsSpace(r):
			i++
		case unicode.IsDigit(r) || r == '.':
			j := i
			for j < len(rs) && (unicode.IsDigit(rs[j]) || rs[j] == '.') {
				j++
			}
			text := string(rs[i:j])
			v, err := strconv.ParseFloat(text, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: bad number %q", ErrSyntax, text)
			}
			toks = append(toks, token{kind: tokNumber, text: text, value: v})
			i = j
		case r == 'π':
			toks = append(toks, token{kind: tokNumber, text: "π", value: math.Pi})
			i++
		case r == '√':
			toks = append(toks, token{kind: tokFunc, text: "√"})
			i++
		case r == '(':
			toks = append(toks, token{kind: tokLParen, text: "("})
			i++
		case r == ')':
			toks = append(toks, token{kind: tokRParen, text: ")"})
			i++
		case strings.ContainsRune("+-−×*÷/^%", r):
			op := string(r)
			switch r {
			case '−':
				op = "-"
			case '×':
				op = "*"
			case '÷':
				op = "/"
			}
			toks = append(toks, token{kind: tokOp, text: op})
			i++
		case unicode.IsLetter(r):
			j := i
			for j < len(rs) && unicode.IsLetter(rs[j]) {
				j++
			}
			word := string(rs[i:j])
			switch word {
			case "sin", "cos", "tan", "log", "ln":
				toks = append(toks, token{kind: tokFunc, text: word})
			case "e":
				toks = append(toks, token{kind: tokNumber, text: "e", value: math.E})
			default:
				return nil, fmt.Errorf("%w: unknown name %q", ErrSyntax, word)
			}
			i = j
		default:
			return nil, fmt.Errorf("%w: unexpected %q", ErrSyntax, string(r))
		}
	}
	return toks, nil
}

type parser struct {
	toks []token
	pos  int
}

func (p *parser) done() bool { return p.pos >= len(p.toks) }

func (p *parser) peek() token {
	if p.done() {
		return token{kind: -1}
	}
	return p.toks[p.pos]
}

func (p *parser) isOp(text string) bool {
	t := p.peek()
	return t.kind == tokOp && t.text == text
}

// expr := term { ("+" | "-") term }
func (p *parser) expr() (float64, error) {
	v, err := p.term()
	if err != nil {
		return 0, err
	}
	for p.isOp("+") || p.isOp("-") {
		op := p.peek().text
		p.pos++
		rhs, err := p.term()
		if err != nil {
			return 0, err
		}
		if op == "+" {
			v += rhs
		} else {
			v -= rhs
		}
	}
	return v, nil
}

// term := unary { ("*" | "/") unary | unary }
// The bare second form is implicit multiplication, e.g. 2(3) or 2sin(30).
func (p *parser) term() (float64, error) {
	v, err := p.unary()
	if err != nil {
		return 0, err
	}
	for {
		switch {
		case p.isOp("*"), p.isOp("/"):
			op := p.peek().text
			p.pos++
			rhs, err := p.unary()
			if err != nil {
				return 0, err
			}
			if op == "*" {
				v *= rhs
				continue
			}
			if rhs == 0 {
				return 0, ErrDivByZero
			}
			v /= rhs
		case p.startsOperand():
			rhs, err := p.unary()
			if err != nil {
				return 0, err
			}
			v *= rhs
		default:
			return v, nil
		}
	}
}

func (p *parser) startsOperand() bool {
	switch p.peek().kind {
	case tokNumber, tokFunc, tokLParen:
		return true
	}
	return false
}

// unary := ("-" | "+") unary | power
func (p *parser) unary() (float64, error) {
	if p.isOp("-") {
		p.pos++
		v, err := p.unary()
		return -v, err
	}
	if p.isOp("+") {
		p.pos++
		return p.unary()
	}
	return p.power()
}

// power := postfix [ "^" unary ]
func (p *parser) power() (float64, error) {
	base, err := p.postfix()
	if err != nil {
		return 0, err
	}
	if !p.isOp("^") {
		return base, nil
	}
	p.pos++
	exp, err := p.unary()
	if err != nil {
		return 0, err
	}
	return math.Pow(base, exp), nil
}

// postfix := primary { "%" }
func (p *parser) postfix() (float64, error) {
	v, err := p.primary()
	if err != nil {
		return 0, err
	}
	for p.isOp("%") {
		p.pos++
		v /= 100
	}
	return v, nil
}

func (p *parser) primary() (float64, error) {
	t := p.peek()
	switch t.kind {
	case tokNumber:
		p.pos++
		return t.value, nil
	case tokLParen:
		p.pos++
		return p.group()
	case tokFunc:
		p.pos++
		var arg float64
		var err error
		if p.peek().kind == tokLParen {
			p.pos++
			arg, err = p.group()
		} else {
			arg, err = p.power()
		}
		if err != nil {
			return 0, err
		}
		return apply(t.text, arg)
	case -1:
		return 0, fmt.Errorf("%w: unexpected end of input", ErrSyntax)
	default:
		return 0, fmt.Errorf("%w: unexpected %q", ErrSyntax, t.text)
	}
}

// group parses the inside of an opened parenthesis. The closing one may be
// omitted at the end of input.
func (p *parser) group() (float64, error) {
	v, err := p.expr()
	if err != nil {
		return 0, err
	}
	switch {
	case p.peek().kind == tokRParen:
		p.pos++
	case !p.done():
		return 0, fmt.Errorf("%w: expected )", ErrSyntax)
	}
	return v, nil
}

func apply(fn string, x float64) (float64, error) {
	rad := x * math.Pi / 180
	switch fn {
	case "sin":
		return math.Sin(rad), nil
	case "cos":
		return math.Cos(rad), nil
	case "tan":
		return math.Tan(rad), nil
	case "log":
		if x <= 0 {
			return 0, ErrDomain
		}
		return math.Log10(x), nil
	case "ln":
		if x <= 0 {
			return 0, ErrDomain
		}
		return math.Log(x), nil
	case "√":
		if x < 0 {
			return 0, ErrDomain
		}
		return math.Sqrt(x), nil
	}
	return 0, fmt.Errorf("%w: unknown function %q", ErrSyntax, fn)
}
