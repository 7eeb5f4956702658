package netlist

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ParseError reports where in the circuit description a line could not
// be understood. Line and Column are 1-based.
type ParseError struct {
	Line   int
	Column int
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at line %d, column %d: %s", e.Line, e.Column, e.Reason)
}

// Element is one parsed component declaration. Name is always filled
// in: components declared without one get "<KIND><ordinal>" with a
// per-kind ordinal starting at 1.
type Element struct {
	Kind   string // R, C, L, D, VG
	Name   string
	Nodes  []string
	Value  float64
	Params map[string]float64 // v0/i0 for C and L, i0/m/v0 for D
	Line   int
}

var unitByKind = map[string]string{
	"R":  "ohm",
	"C":  "f",
	"L":  "h",
	"VG": "v",
}

var prefixMap = map[byte]float64{
	'k': 1e3,
	'K': 1e3,
	'M': 1e6,
	'm': 1e-3,
	'u': 1e-6,
	'n': 1e-9,
	'p': 1e-12,
}

type token struct {
	text string
	col  int
}

func tokenize(line string) []token {
	var tokens []token
	i := 0
	for i < len(line) {
		if line[i] == ' ' || line[i] == '\t' {
			i++
			continue
		}
		start := i
		for i < len(line) && line[i] != ' ' && line[i] != '\t' {
			i++
		}
		tokens = append(tokens, token{text: line[start:i], col: start + 1})
	}
	return tokens
}

func isComment(line string) bool {
	return strings.HasPrefix(line, "#") || strings.HasPrefix(line, "//") ||
		strings.HasPrefix(line, ";") || strings.HasPrefix(line, "*")
}

func isGround(node string) bool { return node == "gnd" || node == "0" }

// Parse decodes a circuit description into named elements. A line is
// either a component declaration
//
//	<KIND> [<name>] <node_a> <node_b> <params...>
//
// or a shorthand voltage assignment "<node> = <value>v", which becomes
// an implicit VG between the node and ground.
func Parse(input string) ([]Element, error) {
	var elements []Element
	ordinals := make(map[string]int)
	names := make(map[string]int) // name -> declaring line

	lineNo := 0
	for _, raw := range strings.Split(input, "\n") {
		lineNo++
		line := strings.TrimSpace(raw)
		if len(line) == 0 || isComment(line) {
			continue
		}

		tokens := tokenize(raw)
		var elem *Element
		var err error

		if len(tokens) == 3 && tokens[1].text == "=" {
			elem, err = parseAssignment(tokens, lineNo)
		} else {
			elem, err = parseComponent(tokens, lineNo)
		}
		if err != nil {
			return nil, err
		}
		if elem == nil {
			continue // "gnd = 0" restating the reference
		}

		ordinals[elem.Kind]++
		if elem.Name == "" {
			elem.Name = fmt.Sprintf("%s%d", elem.Kind, ordinals[elem.Kind])
		}
		if prev, used := names[elem.Name]; used {
			return nil, &ParseError{Line: lineNo, Column: tokens[0].col,
				Reason: fmt.Sprintf("component name %q already used on line %d", elem.Name, prev)}
		}
		names[elem.Name] = lineNo

		elements = append(elements, *elem)
	}

	return elements, nil
}

func parseAssignment(tokens []token, line int) (*Element, error) {
	node := tokens[0].text
	value, err := parseValue(tokens[2], line, "v")
	if err != nil {
		return nil, err
	}

	if isGround(node) {
		if value != 0 {
			return nil, &ParseError{Line: line, Column: tokens[2].col,
				Reason: "ground cannot be assigned a nonzero voltage"}
		}
		return nil, nil
	}

	return &Element{
		Kind:   "VG",
		Nodes:  []string{node, "gnd"},
		Value:  value,
		Params: map[string]float64{},
		Line:   line,
	}, nil
}

func parseComponent(tokens []token, line int) (*Element, error) {
	kind := strings.ToUpper(tokens[0].text)
	switch kind {
	case "R", "C", "L", "VG":
		return parseTwoNode(kind, tokens, line)
	case "D":
		return parseDiode(tokens, line)
	default:
		return nil, &ParseError{Line: line, Column: tokens[0].col,
			Reason: fmt.Sprintf("unknown component kind %q", tokens[0].text)}
	}
}

// parseTwoNode handles R, C, L and VG lines. Key=value tokens are
// gathered from the right; what remains is either "node node value" or
// "name node node value".
func parseTwoNode(kind string, tokens []token, line int) (*Element, error) {
	params, end, err := trailingParams(tokens, line)
	if err != nil {
		return nil, err
	}

	head := tokens[1:end]
	var name string
	switch len(head) {
	case 3:
	case 4:
		name = head[0].text
		if err := checkName(name, head[0].col, line); err != nil {
			return nil, err
		}
		head = head[1:]
	default:
		return nil, &ParseError{Line: line, Column: tokens[0].col,
			Reason: fmt.Sprintf("%s: expected [name] node_a node_b value", kind)}
	}

	for key := range params {
		if kind == "R" || kind == "VG" || (key != "v0" && key != "i0") {
			return nil, &ParseError{Line: line, Column: tokens[end].col,
				Reason: fmt.Sprintf("%s: unexpected parameter %q", kind, key)}
		}
	}

	value, err := parseValue(head[2], line, unitByKind[kind])
	if err != nil {
		return nil, err
	}

	return &Element{
		Kind:   kind,
		Name:   name,
		Nodes:  []string{head[0].text, head[1].text},
		Value:  value,
		Params: params,
		Line:   line,
	}, nil
}

func parseDiode(tokens []token, line int) (*Element, error) {
	params, end, err := trailingParams(tokens, line)
	if err != nil {
		return nil, err
	}

	head := tokens[1:end]
	var name string
	switch len(head) {
	case 2:
	case 3:
		name = head[0].text
		if err := checkName(name, head[0].col, line); err != nil {
			return nil, err
		}
		head = head[1:]
	default:
		return nil, &ParseError{Line: line, Column: tokens[0].col,
			Reason: "D: expected [name] node_a node_b i0=... m=... v0=..."}
	}

	for _, required := range []string{"i0", "m", "v0"} {
		if _, ok := params[required]; !ok {
			return nil, &ParseError{Line: line, Column: tokens[0].col,
				Reason: fmt.Sprintf("D: missing required parameter %q", required)}
		}
	}
	for key := range params {
		if key != "i0" && key != "m" && key != "v0" {
			return nil, &ParseError{Line: line, Column: tokens[0].col,
				Reason: fmt.Sprintf("D: unexpected parameter %q", key)}
		}
	}

	return &Element{
		Kind:   "D",
		Name:   name,
		Nodes:  []string{head[0].text, head[1].text},
		Params: params,
		Line:   line,
	}, nil
}

// trailingParams collects key=value tokens from the right end of the
// line. It returns the parameters and the index of the first token past
// the positional part.
func trailingParams(tokens []token, line int) (map[string]float64, int, error) {
	params := make(map[string]float64)
	end := len(tokens)
	for end > 1 {
		tok := tokens[end-1]
		key, valueStr, found := strings.Cut(tok.text, "=")
		if !found {
			break
		}
		value, err := strconv.ParseFloat(valueStr, 64)
		if err != nil {
			return nil, 0, &ParseError{Line: line, Column: tok.col,
				Reason: fmt.Sprintf("expected %q to be a number", valueStr)}
		}
		params[strings.ToLower(key)] = value
		end--
	}
	return params, end, nil
}

func checkName(name string, col, line int) error {
	if name == "" {
		return &ParseError{Line: line, Column: col, Reason: "empty component name"}
	}
	if name[0] >= '0' && name[0] <= '9' {
		return &ParseError{Line: line, Column: col,
			Reason: fmt.Sprintf("component name %q may not start with a digit", name)}
	}
	if strings.Contains(name, ".") {
		return &ParseError{Line: line, Column: col,
			Reason: fmt.Sprintf("component name %q may not contain '.'", name)}
	}
	if isGround(name) {
		return &ParseError{Line: line, Column: col,
			Reason: fmt.Sprintf("component name %q is reserved for ground", name)}
	}
	return nil
}

// parseValue decodes a magnitude with an optional SI prefix and an
// optional unit word, such as "1k", "1kOhm", "30uF", "2.5v". The unit
// word is case-insensitive; prefixes keep their case so that "m" stays
// milli and "M" mega.
func parseValue(tok token, line int, unit string) (float64, error) {
	s := strings.TrimSpace(tok.text)
	if unit != "" && len(s) > len(unit) &&
		strings.EqualFold(s[len(s)-len(unit):], unit) {
		s = s[:len(s)-len(unit)]
	}

	factor := 1.0
	if len(s) > 1 {
		if f, ok := prefixMap[s[len(s)-1]]; ok {
			factor = f
			s = s[:len(s)-1]
		}
	}

	value, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, &ParseError{Line: line, Column: tok.col,
			Reason: fmt.Sprintf("malformed value %q", tok.text)}
	}

	if factor < 1 {
		// Divide by the exact power of ten so "50u" equals 50e-6.
		return value / math.Round(1/factor), nil
	}
	return value * factor, nil
}
