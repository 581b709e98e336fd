package mutate

import (
	"errors"
	"math"
	"strings"
	"testing"

	"jobtrack/internal/model"
)

func strPtr(s string) *string { return &s }
func f64Ptr(v float64) *float64 { return &v }
func stPtr(s model.Status) *model.Status { return &s }

func TestValidateCreate_DefaultsAndTrims(t *testing.T) {
	p := &model.CreateParams{Company: "  Acme  ", Position: " Go dev ", SalaryMin: 10, SalaryMax: 20}
	if err := ValidateCreate(p); err != nil {
		t.Fatalf("ValidateCreate: %v", err)
	}
	if p.Company != "Acme" || p.Position != "Go dev" {
		t.Fatalf("expected trimmed fields, got %q / %q", p.Company, p.Position)
	}
	if p.Status != model.StatusApplied {
		t.Fatalf("expected default status Applied, got %q", p.Status)
	}
}

func TestValidateCreate_Rules(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		in    model.CreateParams
		field string
	}{
		{"company too short", model.CreateParams{Company: "Ac", Position: "Dev"}, "company"},
		{"company too long", model.CreateParams{Company: strings.Repeat("a", 101), Position: "Dev"}, "company"},
		{"company blank", model.CreateParams{Company: "   ", Position: "Dev"}, "company"},
		{"position too short", model.CreateParams{Company: "Acme", Position: "D"}, "position"},
		{"negative min", model.CreateParams{Company: "Acme", Position: "Dev", SalaryMin: -1}, "salaryMin"},
		{"negative max", model.CreateParams{Company: "Acme", Position: "Dev", SalaryMax: -1}, "salaryMax"},
		{"inverted range", model.CreateParams{Company: "Acme", Position: "Dev", SalaryMin: 50, SalaryMax: 10}, "salary"},
		{"bad status", model.CreateParams{Company: "Acme", Position: "Dev", Status: "Ghosted"}, "status"},
		{"nan key", model.CreateParams{Company: "Acme", Position: "Dev", SortIndex: f64Ptr(math.NaN())}, "sortIndex"},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			p := tc.in
			err := ValidateCreate(&p)
			var verr ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if !verr.Has(tc.field) {
				t.Fatalf("expected error on %q, got %v", tc.field, verr.Fields)
			}
		})
	}
}

func TestValidateCreate_NormalizesStatusCase(t *testing.T) {
	p := &model.CreateParams{Company: "Acme", Position: "Dev", Status: "interview"}
	if err := ValidateCreate(p); err != nil {
		t.Fatalf("ValidateCreate: %v", err)
	}
	if p.Status != model.StatusInterview {
		t.Fatalf("expected Interview, got %q", p.Status)
	}
}

func TestApplyPatch_SalaryCheckedOnMergedRecord(t *testing.T) {
	existing := model.Application{Company: "Acme", Position: "Dev", SalaryMin: 100, SalaryMax: 200, Status: model.StatusApplied}

	_, err := ApplyPatch(existing, model.FieldsPatch{SalaryMax: f64Ptr(50)})
	var verr ValidationError
	if !errors.As(err, &verr) || !verr.Has("salary") {
		t.Fatalf("expected salary range error, got %v", err)
	}

	got, err := ApplyPatch(existing, model.FieldsPatch{SalaryMin: f64Ptr(150)})
	if err != nil {
		t.Fatalf("ApplyPatch: %v", err)
	}
	if got.SalaryMin != 150 || got.SalaryMax != 200 {
		t.Fatalf("unexpected merge: %+v", got)
	}
	if existing.SalaryMin != 100 {
		t.Fatalf("existing must not be mutated")
	}
}

func TestApplyPatch_MoveKeepsOtherFields(t *testing.T) {
	existing := model.Application{ID: "app-1", Company: "Acme", Position: "Dev", Status: model.StatusApplied, SortIndex: 1000, Notes: "n"}
	got, err := ApplyPatch(existing, model.MovePatch{Status: model.StatusOffer, SortIndex: 1500})
	if err != nil {
		t.Fatalf("ApplyPatch: %v", err)
	}
	if got.Status != model.StatusOffer || got.SortIndex != 1500 || got.Notes != "n" || got.Company != "Acme" {
		t.Fatalf("unexpected result: %+v", got)
	}

	if _, err := ApplyPatch(existing, model.MovePatch{Status: model.StatusOffer, SortIndex: math.Inf(1)}); err == nil {
		t.Fatalf("expected error for infinite key")
	}
}

func TestDecodePatch(t *testing.T) {
	t.Parallel()

	t.Run("move", func(t *testing.T) {
		p, err := DecodePatch(model.UpdateParams{Status: stPtr("offer"), SortIndex: f64Ptr(2500)})
		if err != nil {
			t.Fatalf("DecodePatch: %v", err)
		}
		mp, ok := p.(model.MovePatch)
		if !ok {
			t.Fatalf("expected MovePatch, got %T", p)
		}
		if mp.Status != model.StatusOffer || mp.SortIndex != 2500 {
			t.Fatalf("unexpected move patch: %+v", mp)
		}
	})

	t.Run("key without status", func(t *testing.T) {
		if _, err := DecodePatch(model.UpdateParams{SortIndex: f64Ptr(1)}); err == nil {
			t.Fatalf("expected error")
		}
	})

	t.Run("key with other fields", func(t *testing.T) {
		_, err := DecodePatch(model.UpdateParams{Status: stPtr("Offer"), SortIndex: f64Ptr(1), Notes: strPtr("x")})
		var verr ValidationError
		if !errors.As(err, &verr) || !verr.Has("sortIndex") {
			t.Fatalf("expected sortIndex error, got %v", err)
		}
	})

	t.Run("fields", func(t *testing.T) {
		p, err := DecodePatch(model.UpdateParams{Notes: strPtr("call back"), Status: stPtr("rejected")})
		if err != nil {
			t.Fatalf("DecodePatch: %v", err)
		}
		fp, ok := p.(model.FieldsPatch)
		if !ok {
			t.Fatalf("expected FieldsPatch, got %T", p)
		}
		if fp.Status == nil || *fp.Status != model.StatusRejected {
			t.Fatalf("expected normalized status, got %+v", fp.Status)
		}
	})

	t.Run("empty", func(t *testing.T) {
		if _, err := DecodePatch(model.UpdateParams{}); err == nil {
			t.Fatalf("expected error for empty patch")
		}
	})

	t.Run("bad status", func(t *testing.T) {
		if _, err := DecodePatch(model.UpdateParams{Status: stPtr("Nope")}); err == nil {
			t.Fatalf("expected error")
		}
	})
}
