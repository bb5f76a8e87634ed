package store

import (
	"fmt"
	"strings"
)

// Op is a comparison operator.
type Op string

const (
	OpEq    Op = "="
	OpNe    Op = "<>"
	OpGt    Op = ">"
	OpGe    Op = ">="
	OpLt    Op = "<"
	OpLe    Op = "<="
	OpIn    Op = "IN"
	OpNotIn Op = "NOT IN"
)

// Expr is a boolean condition over the columns of one table.
type Expr interface {
	render(wb *WhereBuilder) string
}

// Cond compares a column with a value. For OpIn and OpNotIn, Value must be
// a []any.
type Cond struct {
	Column string
	Op     Op
	Value  any
}

// And holds when every member holds. An empty And is true.
type And []Expr

// Or holds when any member holds. An empty Or is false.
type Or []Expr

// C is shorthand for a Cond.
func C(column string, op Op, value any) Cond {
	return Cond{Column: column, Op: op, Value: value}
}

// In matches rows whose column equals one of values.
func In[T any](column string, values ...T) Cond {
	return Cond{Column: column, Op: OpIn, Value: toAny(values)}
}

// NotIn matches rows whose column equals none of values.
func NotIn[T any](column string, values ...T) Cond {
	return Cond{Column: column, Op: OpNotIn, Value: toAny(values)}
}

func toAny[T any](values []T) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

func (c Cond) render(wb *WhereBuilder) string {
	col := quoteIdentifier(c.Column)

	switch c.Op {
	case OpIn, OpNotIn:
		values, _ := c.Value.([]any)
		if len(values) == 0 {
			if c.Op == OpIn {
				return "1 = 0"
			}
			return "1 = 1"
		}
		placeholders := make([]string, len(values))
		for i, v := range values {
			placeholders[i] = wb.arg(v)
		}
		return fmt.Sprintf("%s %s (%s)", col, c.Op, strings.Join(placeholders, ", "))
	default:
		return fmt.Sprintf("%s %s %s", col, c.Op, wb.arg(c.Value))
	}
}

func (a And) render(wb *WhereBuilder) string {
	if len(a) == 0 {
		return "1 = 1"
	}
	return join(wb, a, " AND ")
}

func (o Or) render(wb *WhereBuilder) string {
	if len(o) == 0 {
		return "1 = 0"
	}
	return join(wb, o, " OR ")
}

func join(wb *WhereBuilder, exprs []Expr, sep string) string {
	parts := make([]string, len(exprs))
	for i, e := range exprs {
		parts[i] = e.render(wb)
	}
	if len(parts) == 1 {
		return parts[0]
	}
	return "(" + strings.Join(parts, sep) + ")"
}

// WhereBuilder accumulates conditions and their arguments.
type WhereBuilder struct {
	conditions  []string
	args        []any
	argIndex    int
	placeholder func(int) string
}

func newWhereBuilder(placeholder func(int) string) *WhereBuilder {
	return &WhereBuilder{argIndex: 1, placeholder: placeholder}
}

func dollarPlaceholder(i int) string { return fmt.Sprintf("$%d", i) }

func questionPlaceholder(int) string { return "?" }

// AddExpr appends e. A nil e is ignored.
func (wb *WhereBuilder) AddExpr(e Expr) {
	if e == nil {
		return
	}
	wb.conditions = append(wb.conditions, e.render(wb))
}

// Build returns the WHERE clause, with a leading space, and its arguments.
// Both are empty when no condition was added.
func (wb *WhereBuilder) Build() (string, []any) {
	if len(wb.conditions) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(wb.conditions, " AND "), wb.args
}

func (wb *WhereBuilder) arg(v any) string {
	p := wb.placeholder(wb.argIndex)
	wb.args = append(wb.args, v)
	wb.argIndex++
	return p
}

func quoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func quoteList(names []string) string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = quoteIdentifier(n)
	}
	return strings.Join(quoted, ", ")
}
