package services

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/kweiss-dev/minerva/internal/core/domain"
)

// NewCalculateTool returns the safe arithmetic evaluator. It parses the
// expression itself rather than delegating to any script engine, so there is
// no arbitrary code execution: only numbers, operators, parentheses, and an
// allow-listed function set.
func NewCalculateTool() *domain.Tool {
	return &domain.Tool{
		Name:        "calculate",
		Description: "Evaluates an arithmetic expression. Supports + - * / % ^, parentheses, pi, e, and functions like sqrt, sin, cos, log, min, max.",
		Parameters: domain.ToolParameters{
			Properties: map[string]domain.ParamSpec{
				"expression": {
					Type:        "string",
					Description: "The expression to evaluate, e.g. '17 * 4' or 'sqrt(2) + sin(pi/2)'.",
					Required:    true,
				},
			},
			Required: []string{"expression"},
		},
		Execute: func(ctx context.Context, params map[string]any) (any, error) {
			expr, _ := params["expression"].(string)
			result, err := evalExpression(expr)
			if err != nil {
				return nil, err
			}
			return map[string]any{"expression": expr, "result": result}, nil
		},
	}
}

// unary math functions available to expressions
var calcFuncs1 = map[string]func(float64) float64{
	"abs":   math.Abs,
	"sqrt":  math.Sqrt,
	"cbrt":  math.Cbrt,
	"sin":   math.Sin,
	"cos":   math.Cos,
	"tan":   math.Tan,
	"asin":  math.Asin,
	"acos":  math.Acos,
	"atan":  math.Atan,
	"log":   math.Log,
	"log2":  math.Log2,
	"log10": math.Log10,
	"exp":   math.Exp,
	"floor": math.Floor,
	"ceil":  math.Ceil,
	"round": math.Round,
}

// binary math functions available to expressions
var calcFuncs2 = map[string]func(float64, float64) float64{
	"min": math.Min,
	"max": math.Max,
	"pow": math.Pow,
}

var calcConsts = map[string]float64{
	"pi": math.Pi,
	"e":  math.E,
}

// evalExpression parses and evaluates a restricted arithmetic expression.
// Non-finite and non-numeric outcomes are errors.
func evalExpression(expr string) (float64, error) {
	p := &exprParser{input: expr}
	v, err := p.parseExpr()
	if err != nil {
		return 0, err
	}
	p.skipSpace()
	if p.pos < len(p.input) {
		return 0, fmt.Errorf("invalid expression: unexpected %q at position %d", p.input[p.pos], p.pos)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("invalid expression: result is not a finite number")
	}
	return v, nil
}

// exprParser is a small recursive-descent parser.
// Grammar: expr = term (('+'|'-') term)*
//          term = power (('*'|'/'|'%') power)*
//          power = unary ('^' power)?          (right-associative)
//          unary = '-' unary | atom
//          atom  = number | const | func '(' args ')' | '(' expr ')'
type exprParser struct {
	input string
	pos   int
}

func (p *exprParser) skipSpace() {
	for p.pos < len(p.input) && unicode.IsSpace(rune(p.input[p.pos])) {
		p.pos++
	}
}

func (p *exprParser) peek() byte {
	p.skipSpace()
	if p.pos >= len(p.input) {
		return 0
	}
	return p.input[p.pos]
}

func (p *exprParser) parseExpr() (float64, error) {
	left, err := p.parseTerm()
	if err != nil {
		return 0, err
	}
	for {
		switch p.peek() {
		case '+':
			p.pos++
			right, err := p.parseTerm()
			if err != nil {
				return 0, err
			}
			left += right
		case '-':
			p.pos++
			right, err := p.parseTerm()
			if err != nil {
				return 0, err
			}
			left -= right
		default:
			return left, nil
		}
	}
}

func (p *exprParser) parseTerm() (float64, error) {
	left, err := p.parsePower()
	if err != nil {
		return 0, err
	}
	for {
		switch p.peek() {
		case '*':
			p.pos++
			right, err := p.parsePower()
			if err != nil {
				return 0, err
			}
			left *= right
		case '/':
			p.pos++
			right, err := p.parsePower()
			if err != nil {
				return 0, err
			}
			if right == 0 {
				return 0, fmt.Errorf("invalid expression: division by zero")
			}
			left /= right
		case '%':
			p.pos++
			right, err := p.parsePower()
			if err != nil {
				return 0, err
			}
			if right == 0 {
				return 0, fmt.Errorf("invalid expression: modulo by zero")
			}
			left = math.Mod(left, right)
		default:
			return left, nil
		}
	}
}

func (p *exprParser) parsePower() (float64, error) {
	base, err := p.parseUnary()
	if err != nil {
		return 0, err
	}
	if p.peek() == '^' {
		p.pos++
		exp, err := p.parsePower()
		if err != nil {
			return 0, err
		}
		return math.Pow(base, exp), nil
	}
	return base, nil
}

func (p *exprParser) parseUnary() (float64, error) {
	if p.peek() == '-' {
		p.pos++
		v, err := p.parseUnary()
		return -v, err
	}
	return p.parseAtom()
}

func (p *exprParser) parseAtom() (float64, error) {
	ch := p.peek()

	if ch == '(' {
		p.pos++
		v, err := p.parseExpr()
		if err != nil {
			return 0, err
		}
		if p.peek() != ')' {
			return 0, fmt.Errorf("invalid expression: missing closing parenthesis")
		}
		p.pos++
		return v, nil
	}

	if ch >= '0' && ch <= '9' || ch == '.' {
		return p.parseNumber()
	}

	if unicode.IsLetter(rune(ch)) {
		return p.parseIdent()
	}

	return 0, fmt.Errorf("invalid expression: unexpected character %q", ch)
}

func (p *exprParser) parseNumber() (float64, error) {
	start := p.pos
	for p.pos < len(p.input) {
		c := p.input[p.pos]
		if c >= '0' && c <= '9' || c == '.' {
			p.pos++
		} else {
			break
		}
	}
	v, err := strconv.ParseFloat(p.input[start:p.pos], 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", p.input[start:p.pos])
	}
	return v, nil
}

func (p *exprParser) parseIdent() (float64, error) {
	start := p.pos
	for p.pos < len(p.input) && (unicode.IsLetter(rune(p.input[p.pos])) || unicode.IsDigit(rune(p.input[p.pos]))) {
		p.pos++
	}
	name := strings.ToLower(p.input[start:p.pos])

	if v, ok := calcConsts[name]; ok {
		return v, nil
	}

	if p.peek() != '(' {
		return 0, fmt.Errorf("invalid expression: unknown identifier %q", name)
	}
	p.pos++

	args := []float64{}
	if p.peek() != ')' {
		for {
			v, err := p.parseExpr()
			if err != nil {
				return 0, err
			}
			args = append(args, v)
			if p.peek() != ',' {
				break
			}
			p.pos++
		}
	}
	if p.peek() != ')' {
		return 0, fmt.Errorf("invalid expression: missing closing parenthesis after %s()", name)
	}
	p.pos++

	if fn, ok := calcFuncs1[name]; ok {
		if len(args) != 1 {
			return 0, fmt.Errorf("invalid expression: %s expects 1 argument, got %d", name, len(args))
		}
		return fn(args[0]), nil
	}
	if fn, ok := calcFuncs2[name]; ok {
		if len(args) != 2 {
			return 0, fmt.Errorf("invalid expression: %s expects 2 arguments, got %d", name, len(args))
		}
		return fn(args[0], args[1]), nil
	}
	return 0, fmt.Errorf("invalid expression: function %q is not allowed", name)
}
