package job

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
)

// Filters are the AND-combined listing filters accepted by the discovery
// endpoints.
type Filters struct {
	Keyword   string
	MinBudget *int64
	MaxBudget *int64
	Skills    []string
}

// FiltersFromQuery parses ?keyword&minBudget&maxBudget&skills (skills is
// comma-separated). Malformed budget values are reported, not ignored.
func FiltersFromQuery(c echo.Context) (Filters, error) {
	var f Filters
	f.Keyword = strings.TrimSpace(c.QueryParam("keyword"))

	if s := c.QueryParam("minBudget"); s != "" {
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return f, fmt.Errorf("invalid minBudget %q", s)
		}
		f.MinBudget = &v
	}
	if s := c.QueryParam("maxBudget"); s != "" {
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return f, fmt.Errorf("invalid maxBudget %q", s)
		}
		f.MaxBudget = &v
	}
	if s := c.QueryParam("skills"); s != "" {
		for _, sk := range strings.Split(s, ",") {
			if sk = strings.TrimSpace(sk); sk != "" {
				f.Skills = append(f.Skills, sk)
			}
		}
	}
	return f, nil
}

// WhereClause renders the filters as SQL conditions starting at placeholder
// $next. The returned clause begins with " AND" or is empty.
func (f Filters) WhereClause(next int) (string, []interface{}) {
	var (
		sb   strings.Builder
		args []interface{}
	)
	if f.Keyword != "" {
		sb.WriteString(fmt.Sprintf(" AND (title ILIKE '%%' || $%d || '%%' OR description ILIKE '%%' || $%d || '%%')", next, next))
		args = append(args, f.Keyword)
		next++
	}
	if f.MinBudget != nil {
		sb.WriteString(fmt.Sprintf(" AND budget >= $%d", next))
		args = append(args, *f.MinBudget)
		next++
	}
	if f.MaxBudget != nil {
		sb.WriteString(fmt.Sprintf(" AND budget <= $%d", next))
		args = append(args, *f.MaxBudget)
		next++
	}
	if len(f.Skills) > 0 {
		sb.WriteString(fmt.Sprintf(" AND skills_required && $%d", next))
		args = append(args, f.Skills)
		next++
	}
	return sb.String(), args
}
