package job

import (
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/labstack/echo/v4"
)

func queryContext(t *testing.T, rawQuery string) echo.Context {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest("GET", "/job/all?"+rawQuery, nil)
	return e.NewContext(req, httptest.NewRecorder())
}

func TestFiltersFromQuery(t *testing.T) {
	t.Run("all filters", func(t *testing.T) {
		c := queryContext(t, "keyword=api&minBudget=100&maxBudget=5000&skills=go,%20postgres,")
		f, err := FiltersFromQuery(c)
		if err != nil {
			t.Fatalf("FiltersFromQuery: %v", err)
		}
		if f.Keyword != "api" {
			t.Errorf("Keyword = %q, want %q", f.Keyword, "api")
		}
		if f.MinBudget == nil || *f.MinBudget != 100 {
			t.Errorf("MinBudget = %v, want 100", f.MinBudget)
		}
		if f.MaxBudget == nil || *f.MaxBudget != 5000 {
			t.Errorf("MaxBudget = %v, want 5000", f.MaxBudget)
		}
		if want := []string{"go", "postgres"}; !reflect.DeepEqual(f.Skills, want) {
			t.Errorf("Skills = %v, want %v", f.Skills, want)
		}
	})

	t.Run("empty query", func(t *testing.T) {
		f, err := FiltersFromQuery(queryContext(t, ""))
		if err != nil {
			t.Fatalf("FiltersFromQuery: %v", err)
		}
		if f.Keyword != "" || f.MinBudget != nil || f.MaxBudget != nil || f.Skills != nil {
			t.Errorf("expected zero filters, got %+v", f)
		}
	})

	t.Run("malformed budget reported", func(t *testing.T) {
		if _, err := FiltersFromQuery(queryContext(t, "minBudget=abc")); err == nil {
			t.Error("expected error for minBudget=abc")
		}
		if _, err := FiltersFromQuery(queryContext(t, "maxBudget=12.5")); err == nil {
			t.Error("expected error for maxBudget=12.5")
		}
	})
}

func TestFiltersWhereClause(t *testing.T) {
	i64 := func(v int64) *int64 { return &v }

	t.Run("empty filters yield empty clause", func(t *testing.T) {
		clause, args := Filters{}.WhereClause(2)
		if clause != "" {
			t.Errorf("clause = %q, want empty", clause)
		}
		if len(args) != 0 {
			t.Errorf("args = %v, want none", args)
		}
	})

	t.Run("placeholders continue from next", func(t *testing.T) {
		f := Filters{
			Keyword:   "api",
			MinBudget: i64(100),
			MaxBudget: i64(5000),
			Skills:    []string{"go"},
		}
		clause, args := f.WhereClause(3)
		want := " AND (title ILIKE '%' || $3 || '%' OR description ILIKE '%' || $3 || '%')" +
			" AND budget >= $4 AND budget <= $5 AND skills_required && $6"
		if clause != want {
			t.Errorf("clause = %q\nwant %q", clause, want)
		}
		if len(args) != 4 {
			t.Fatalf("args = %v, want 4 values", args)
		}
		if args[0] != "api" || args[1] != int64(100) || args[2] != int64(5000) {
			t.Errorf("unexpected args order: %v", args)
		}
	})

	t.Run("budget only", func(t *testing.T) {
		clause, args := Filters{MinBudget: i64(250)}.WhereClause(1)
		if want := " AND budget >= $1"; clause != want {
			t.Errorf("clause = %q, want %q", clause, want)
		}
		if len(args) != 1 || args[0] != int64(250) {
			t.Errorf("args = %v, want [250]", args)
		}
	})
}
