package query

import (
	"fmt"
	"strconv"
	"strings"
)

// Op is a filter clause operator token.
type Op string

const (
	OpLike Op = "~="
	OpGTE  Op = ">="
	OpLTE  Op = "<="
	OpNE   Op = "!="
	OpGT   Op = ">"
	OpLT   Op = "<"
	OpEq   Op = ":"
)

// opOrder fixes the split priority. Two-character tokens come before their
// one-character prefixes so "year>=2010" is never split on ">".
var opOrder = []Op{OpLike, OpGTE, OpLTE, OpNE, OpGT, OpLT, OpEq}

// Predicate is a single compiled comparison against a registered column.
type Predicate struct {
	Column string
	Op     Op
	Value  any
}

// CompileFilters parses a comma-separated filter expression into predicates.
// Clauses with unknown attributes, no operator, or a literal that does not
// coerce to the attribute's kind are dropped.
func CompileFilters(fields FieldSet, raw string) []Predicate {
	if raw == "" {
		return nil
	}

	var preds []Predicate
	for _, clause := range strings.Split(raw, ",") {
		clause = strings.TrimSpace(clause)
		if clause == "" {
			continue
		}
		pred, ok := compileClause(fields, clause)
		if !ok {
			continue
		}
		preds = append(preds, pred)
	}
	return preds
}

func compileClause(fields FieldSet, clause string) (Predicate, bool) {
	for _, op := range opOrder {
		name, literal, found := strings.Cut(clause, string(op))
		if !found {
			continue
		}
		field, ok := fields[strings.TrimSpace(name)]
		if !ok {
			return Predicate{}, false
		}
		value, ok := coerce(field.Kind, op, literal)
		if !ok {
			return Predicate{}, false
		}
		return Predicate{Column: field.Column, Op: op, Value: value}, true
	}
	return Predicate{}, false
}

// coerce converts the raw literal to the attribute's declared kind. Substring
// match is only meaningful on string columns.
func coerce(kind Kind, op Op, literal string) (any, bool) {
	if op == OpLike {
		if kind != KindString {
			return nil, false
		}
		return "%" + literal + "%", true
	}
	switch kind {
	case KindInt:
		n, err := strconv.ParseInt(literal, 10, 64)
		if err != nil {
			return nil, false
		}
		return n, true
	case KindBool:
		b, err := strconv.ParseBool(literal)
		if err != nil {
			return nil, false
		}
		return b, true
	default:
		return literal, true
	}
}

// SQL renders the predicate as a parameterized fragment using the given
// placeholder index.
func (p Predicate) SQL(argIndex int) string {
	return fmt.Sprintf("%s %s $%d", p.Column, p.sqlOp(), argIndex)
}

func (p Predicate) sqlOp() string {
	switch p.Op {
	case OpLike:
		return "ILIKE"
	case OpEq:
		return "="
	case OpNE:
		return "<>"
	default:
		return string(p.Op)
	}
}
