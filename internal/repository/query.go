package repository

import (
	"fmt"
	"strings"

	"github.com/insurecare/feedback-portal/internal/domain"
)

const (
	defaultLimit = 10
	maxLimit     = 100
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// where accumulates positional-parameter WHERE clauses.
type where struct {
	clauses []string
	args    []any
}

// add appends a clause whose single %d is replaced by the next placeholder index.
func (w *where) add(format string, arg any) {
	w.args = append(w.args, arg)
	w.clauses = append(w.clauses, fmt.Sprintf(format, len(w.args)))
}

// raw appends a clause without arguments.
func (w *where) raw(clause string) {
	w.clauses = append(w.clauses, clause)
}

// search matches term case-insensitively against any of the columns.
func (w *where) search(term string, columns ...string) {
	term = strings.TrimSpace(term)
	if term == "" || len(columns) == 0 {
		return
	}
	w.args = append(w.args, "%"+likeEscaper.Replace(strings.ToLower(term))+"%")
	placeholder := fmt.Sprintf("$%d", len(w.args))
	parts := make([]string, len(columns))
	for i, col := range columns {
		parts[i] = fmt.Sprintf(`LOWER(%s) LIKE %s ESCAPE '\'`, col, placeholder)
	}
	w.clauses = append(w.clauses, "("+strings.Join(parts, " OR ")+")")
}

// target restricts agent_id/employee_id columns (optionally prefixed) to t. None adds nothing.
func (w *where) target(t domain.Target, prefix string) {
	switch t.Kind() {
	case domain.KindAgent:
		w.add(prefix+"agent_id=$%d", t.ID())
	case domain.KindEmployee:
		w.add(prefix+"employee_id=$%d", t.ID())
	}
}

func (w *where) String() string {
	if len(w.clauses) == 0 {
		return "1=1"
	}
	return strings.Join(w.clauses, " AND ")
}

// pageBounds normalizes limit and offset.
func pageBounds(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
