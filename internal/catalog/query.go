package catalog

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/odyssey-erp/backoffice/internal/platform/httpx"
)

// Where accumulates AND-ed SQL conditions with positional arguments.
type Where struct {
	clauses []string
	args    []any
}

// Add appends a condition. Each %d in cond is replaced with the placeholder
// number assigned to arg.
func (w *Where) Add(cond string, arg any) {
	w.args = append(w.args, arg)
	n := len(w.args)
	w.clauses = append(w.clauses, strings.ReplaceAll(cond, "%d", strconv.Itoa(n)))
}

// SQL renders the WHERE clause, or an empty string when there are no conditions.
func (w *Where) SQL() string {
	if len(w.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.clauses, " AND ")
}

// Args returns the condition arguments.
func (w *Where) Args() []any {
	return w.args
}

// Page returns LIMIT/OFFSET SQL and the full argument list for filters.
func (w *Where) Page(f ListFilters) (string, []any) {
	n := len(w.args)
	args := append(append([]any{}, w.args...), f.Limit, f.Offset())
	return fmt.Sprintf(" LIMIT $%d OFFSET $%d", n+1, n+2), args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// LikePattern turns a search term into a substring ILIKE pattern.
func LikePattern(term string) string {
	return "%" + likeEscaper.Replace(term) + "%"
}

// TotalCountHeader carries the unpaginated row count of list responses.
const TotalCountHeader = "X-Total-Count"

// WriteList writes items as a JSON array and total in TotalCountHeader.
func WriteList[T any](w http.ResponseWriter, items []T, total int) {
	if items == nil {
		items = []T{}
	}
	w.Header().Set(TotalCountHeader, strconv.Itoa(total))
	httpx.JSON(w, http.StatusOK, items)
}
