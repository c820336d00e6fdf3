package bid

import (
	"errors"
	"testing"

	"github.com/cdileep23/XNL-21BCE9435-server/internal/httpx"
)

func TestParseStatus(t *testing.T) {
	tests := []struct {
		in      string
		want    Status
		wantErr bool
	}{
		{"pending", StatusPending, false},
		{"accepted", StatusAccepted, false},
		{"rejected", StatusRejected, false},
		{"withdrawn", "", true},
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

func TestStatusIsTerminal(t *testing.T) {
	if StatusPending.IsTerminal() {
		t.Error("pending must not be terminal")
	}
	if !StatusAccepted.IsTerminal() {
		t.Error("accepted must be terminal")
	}
	if !StatusRejected.IsTerminal() {
		t.Error("rejected must be terminal")
	}
}

func TestSubmitParamsValidate(t *testing.T) {
	valid := SubmitParams{
		JobID:            "c0ffee00-0000-0000-0000-000000000001",
		Amount:           4500,
		DeliveryTimeDays: 3,
		Proposal:         "I can deliver this in three days.",
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid params rejected: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(p *SubmitParams)
	}{
		{"zero amount", func(p *SubmitParams) { p.Amount = 0 }},
		{"negative amount", func(p *SubmitParams) { p.Amount = -1 }},
		{"zero delivery time", func(p *SubmitParams) { p.DeliveryTimeDays = 0 }},
		{"empty proposal", func(p *SubmitParams) { p.Proposal = "" }},
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
}
