package job

import (
	"errors"
	"testing"
	"time"

	"github.com/cdileep23/XNL-21BCE9435-server/internal/httpx"
)

func TestParseStatus(t *testing.T) {
	tests := []struct {
		in      string
		want    Status
		wantErr bool
	}{
		{"open", StatusOpen, false},
		{"in_progress", StatusInProgress, false},
		{"completed", StatusCompleted, false},
		{"canceled", StatusCanceled, false},
		{"OPEN", "", true},
		{"cancelled", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := ParseStatus(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseStatus(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseStatus(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestIsTransitionAllowed(t *testing.T) {
	tests := []struct {
		name string
		from Status
		to   Status
		want bool
	}{
		{"open to in_progress", StatusOpen, StatusInProgress, true},
		{"open to canceled", StatusOpen, StatusCanceled, true},
		{"open to completed skips acceptance", StatusOpen, StatusCompleted, false},
		{"in_progress to completed", StatusInProgress, StatusCompleted, true},
		{"in_progress to canceled", StatusInProgress, StatusCanceled, false},
		{"in_progress back to open", StatusInProgress, StatusOpen, false},
		{"completed is terminal", StatusCompleted, StatusOpen, false},
		{"canceled is terminal", StatusCanceled, StatusInProgress, false},
		{"self transition rejected", StatusOpen, StatusOpen, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsTransitionAllowed(tt.from, tt.to); got != tt.want {
				t.Errorf("IsTransitionAllowed(%q, %q) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestCreateParamsValidate(t *testing.T) {
	valid := CreateParams{
		Title:        "Build an API",
		Description:  "REST backend with auth",
		Budget:       50000,
		DeadlineDays: 5,
	}

	if err := valid.Validate(); err != nil {
		t.Fatalf("valid params rejected: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(p *CreateParams)
	}{
		{"empty title", func(p *CreateParams) { p.Title = "" }},
		{"empty description", func(p *CreateParams) { p.Description = "" }},
		{"zero budget", func(p *CreateParams) { p.Budget = 0 }},
		{"negative budget", func(p *CreateParams) { p.Budget = -100 }},
		{"deadline below range", func(p *CreateParams) { p.DeadlineDays = 0 }},
		{"deadline above range", func(p *CreateParams) { p.DeadlineDays = 11 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := valid
			tt.mutate(&p)
			err := p.Validate()
			if err == nil {
				t.Fatal("expected validation error, got nil")
			}
			if !errors.Is(err, httpx.ErrValidation) {
				t.Errorf("error %v is not ErrValidation", err)
			}
		})
	}

	t.Run("deadline bounds inclusive", func(t *testing.T) {
		for _, d := range []int{1, 10} {
			p := valid
			p.DeadlineDays = d
			if err := p.Validate(); err != nil {
				t.Errorf("deadline %d rejected: %v", d, err)
			}
		}
	})
}

func TestPatchValidate(t *testing.T) {
	str := func(s string) *string { return &s }
	i64 := func(v int64) *int64 { return &v }
	in := func(v int) *int { return &v }

	tests := []struct {
		name    string
		patch   Patch
		wantErr bool
	}{
		{"empty patch is valid", Patch{}, false},
		{"title only", Patch{Title: str("New title")}, false},
		{"empty title rejected", Patch{Title: str("")}, true},
		{"zero budget rejected", Patch{Budget: i64(0)}, true},
		{"valid budget", Patch{Budget: i64(2500)}, false},
		{"deadline zero rejected", Patch{DeadlineDays: in(0)}, true},
		{"deadline eleven rejected", Patch{DeadlineDays: in(11)}, true},
		{"deadline in range", Patch{DeadlineDays: in(7)}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.patch.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestPatchApply(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	base := Job{
		Title:          "Old title",
		Description:    "Old description",
		Budget:         1000,
		DeadlineDate:   now.AddDate(0, 0, 3),
		SkillsRequired: []string{"go"},
	}

	t.Run("absent fields untouched", func(t *testing.T) {
		j := base
		Patch{}.Apply(&j, now)
		if j.Title != base.Title || j.Budget != base.Budget {
			t.Errorf("empty patch mutated job: %+v", j)
		}
		if !j.UpdatedAt.Equal(now) {
			t.Errorf("UpdatedAt = %v, want %v", j.UpdatedAt, now)
		}
	})

	t.Run("present fields applied", func(t *testing.T) {
		j := base
		title := "New title"
		budget := int64(9000)
		days := 10
		skills := []string{"go", "postgres"}
		p := Patch{Title: &title, Budget: &budget, DeadlineDays: &days, SkillsRequired: &skills}
		p.Apply(&j, now)

		if j.Title != title {
			t.Errorf("Title = %q, want %q", j.Title, title)
		}
		if j.Budget != budget {
			t.Errorf("Budget = %d, want %d", j.Budget, budget)
		}
		if want := now.AddDate(0, 0, days); !j.DeadlineDate.Equal(want) {
			t.Errorf("DeadlineDate = %v, want %v", j.DeadlineDate, want)
		}
		if len(j.SkillsRequired) != 2 {
			t.Errorf("SkillsRequired = %v, want %v", j.SkillsRequired, skills)
		}
		if j.Description != base.Description {
			t.Errorf("Description changed unexpectedly: %q", j.Description)
		}
	})

	t.Run("empty skills slice clears the list", func(t *testing.T) {
		j := base
		skills := []string{}
		Patch{SkillsRequired: &skills}.Apply(&j, now)
		if len(j.SkillsRequired) != 0 {
			t.Errorf("SkillsRequired = %v, want empty", j.SkillsRequired)
		}
	})
}
