package db

import (
	"strconv"
	"strings"
)

// Where accumulates AND-ed SQL conditions with positional arguments.
type Where struct {
	clauses []string
	Args    []any
}

// Arg registers v and returns its placeholder.
func (w *Where) Arg(v any) string {
	w.Args = append(w.Args, v)
	return "$" + strconv.Itoa(len(w.Args))
}

// Add appends a condition built with Arg placeholders.
func (w *Where) Add(clause string) {
	w.clauses = append(w.clauses, clause)
}

// SQL renders " WHERE a AND b", or "" with no conditions.
func (w *Where) SQL() string {
	if len(w.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.clauses, " AND ")
}

// Page appends LIMIT/OFFSET placeholders.
func (w *Where) Page(limit, offset int) string {
	return " LIMIT " + w.Arg(limit) + " OFFSET " + w.Arg(offset)
}
