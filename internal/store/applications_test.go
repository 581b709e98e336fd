package store

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"jobtrack/internal/model"
	"jobtrack/internal/mutate"
)

func withEnv(t *testing.T, k, v string, fn func()) {
	t.Helper()
	old, had := os.LookupEnv(k)
	if err := os.Setenv(k, v); err != nil {
		t.Fatalf("setenv %s: %v", k, err)
	}
	t.Cleanup(func() {
		if had {
			_ = os.Setenv(k, old)
		} else {
			_ = os.Unsetenv(k)
		}
	})
	fn()
}

func newTestStore(t *testing.T) Store {
	t.Helper()
	tick := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	return Store{
		Dir: t.TempDir(),
		Now: func() time.Time {
			tick = tick.Add(time.Second)
			return tick
		},
	}
}

func mustCreate(t *testing.T, s Store, owner string, p model.CreateParams) model.Application {
	t.Helper()
	a, err := s.CreateApplication(context.Background(), owner, p)
	if err != nil {
		t.Fatalf("CreateApplication: %v", err)
	}
	return a
}

func f64(v float64) *float64 { return &v }

func TestCreateApplication_DefaultsAndAppend(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a := mustCreate(t, s, "u1", model.CreateParams{Company: "Acme", Position: "Dev"})
	if a.Status != model.StatusApplied {
		t.Fatalf("expected default status Applied, got %q", a.Status)
	}
	if a.SortIndex != 1000 {
		t.Fatalf("expected first key 1000, got %v", a.SortIndex)
	}
	if a.Notes != "" || a.UserID != "u1" {
		t.Fatalf("unexpected defaults: %+v", a)
	}

	b := mustCreate(t, s, "u1", model.CreateParams{Company: "Globex", Position: "SRE"})
	if b.SortIndex != 2000 {
		t.Fatalf("expected appended key 2000, got %v", b.SortIndex)
	}
	c := mustCreate(t, s, "u1", model.CreateParams{Company: "Initech", Position: "Dev", Status: model.StatusOffer})
	if c.SortIndex != 1000 {
		t.Fatalf("expected empty Offer column key 1000, got %v", c.SortIndex)
	}
	d := mustCreate(t, s, "u1", model.CreateParams{Company: "Hooli", Position: "Dev", SortIndex: f64(-5)})
	if d.SortIndex != -5 {
		t.Fatalf("expected explicit key to be kept, got %v", d.SortIndex)
	}

	got, err := s.GetApplication(ctx, "u1", a.ID)
	if err != nil {
		t.Fatalf("GetApplication: %v", err)
	}
	if got.Company != "Acme" || !got.CreatedOn.Equal(a.CreatedOn) {
		t.Fatalf("unexpected stored record: %+v", got)
	}
}

func TestCreateApplication_InvertedSalaryPersistsNothing(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.CreateApplication(ctx, "u1", model.CreateParams{Company: "Acme", Position: "Dev", SalaryMin: 2000, SalaryMax: 1000})
	var verr mutate.ValidationError
	if !errors.As(err, &verr) || !verr.Has("salary") {
		t.Fatalf("expected salary validation error, got %v", err)
	}
	res, err := s.ListApplications(ctx, "u1", model.ListParams{})
	if err != nil {
		t.Fatalf("ListApplications: %v", err)
	}
	if res.Count != 0 {
		t.Fatalf("expected nothing persisted, got %d", res.Count)
	}
}

func TestGetApplication_OtherOwnerIsNotFound(t *testing.T) {
	s := newTestStore(t)
	a := mustCreate(t, s, "u1", model.CreateParams{Company: "Acme", Position: "Dev"})

	_, err := s.GetApplication(context.Background(), "u2", a.ID)
	var nf mutate.NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
	if err := s.DeleteApplication(context.Background(), "u2", a.ID); !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError on foreign delete, got %v", err)
	}
}

func TestListApplications_SearchAndSort(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	mustCreate(t, s, "u1", model.CreateParams{Company: "Acme Corp", Position: "Backend", SortIndex: f64(3000)})
	mustCreate(t, s, "u1", model.CreateParams{Company: "Globex", Position: "Frontend", Notes: "met at ACME meetup", SortIndex: f64(1000)})
	mustCreate(t, s, "u1", model.CreateParams{Company: "Initech", Position: "100% remote", SortIndex: f64(2000)})
	mustCreate(t, s, "u2", model.CreateParams{Company: "Acme Corp", Position: "Other user"})

	res, err := s.ListApplications(ctx, "u1", model.ListParams{})
	if err != nil {
		t.Fatalf("ListApplications: %v", err)
	}
	if res.Count != 3 || len(res.Results) != 3 {
		t.Fatalf("expected 3 results, got %d", res.Count)
	}
	if res.Results[0].Company != "Globex" || res.Results[2].Company != "Acme Corp" {
		t.Fatalf("expected default sortIndex order, got %v, %v, %v", res.Results[0].Company, res.Results[1].Company, res.Results[2].Company)
	}

	res, err = s.ListApplications(ctx, "u1", model.ListParams{Search: "acme"})
	if err != nil {
		t.Fatalf("ListApplications: %v", err)
	}
	if res.Count != 2 {
		t.Fatalf("expected company and notes matches, got %d", res.Count)
	}

	// Pattern characters are literal.
	res, err = s.ListApplications(ctx, "u1", model.ListParams{Search: "100%"})
	if err != nil {
		t.Fatalf("ListApplications: %v", err)
	}
	if res.Count != 1 || res.Results[0].Company != "Initech" {
		t.Fatalf("expected literal match only, got %+v", res.Results)
	}
	res, err = s.ListApplications(ctx, "u1", model.ListParams{Search: "%"})
	if err != nil {
		t.Fatalf("ListApplications: %v", err)
	}
	if res.Count != 1 {
		t.Fatalf("expected %% to match literally, got %d", res.Count)
	}

	res, err = s.ListApplications(ctx, "u1", model.ListParams{Sort: []model.SortField{{Field: "company", Desc: true}}})
	if err != nil {
		t.Fatalf("ListApplications: %v", err)
	}
	if res.Results[0].Company != "Initech" || res.Results[2].Company != "Acme Corp" {
		t.Fatalf("unexpected company desc order: %+v", res.Results)
	}

	if _, err := s.ListApplications(ctx, "u1", model.ListParams{Sort: []model.SortField{{Field: "salary"}}}); err == nil {
		t.Fatalf("expected error for unknown sort field")
	}
}

func TestUpdateApplication_MoveAndFields(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	a := mustCreate(t, s, "u1", model.CreateParams{Company: "Acme", Position: "Dev", SalaryMin: 100, SalaryMax: 200})

	res, err := s.UpdateApplication(ctx, "u1", a.ID, model.MovePatch{Status: model.StatusInterview, SortIndex: 1500})
	if err != nil {
		t.Fatalf("UpdateApplication move: %v", err)
	}
	if !res.Changed || res.Application.Status != model.StatusInterview || res.Application.SortIndex != 1500 {
		t.Fatalf("unexpected move result: %+v", res)
	}

	notes := "second round"
	res, err = s.UpdateApplication(ctx, "u1", a.ID, model.FieldsPatch{Notes: &notes})
	if err != nil {
		t.Fatalf("UpdateApplication fields: %v", err)
	}
	if res.Application.SortIndex != 1500 {
		t.Fatalf("fields update must not touch the order key, got %v", res.Application.SortIndex)
	}

	low := 50.0
	if _, err := s.UpdateApplication(ctx, "u1", a.ID, model.FieldsPatch{SalaryMax: &low}); err == nil {
		t.Fatalf("expected merged salary range error")
	}

	got, err := s.GetApplication(ctx, "u1", a.ID)
	if err != nil {
		t.Fatalf("GetApplication: %v", err)
	}
	if got.Notes != "second round" || got.SalaryMax != 200 || got.Status != model.StatusInterview {
		t.Fatalf("unexpected stored record: %+v", got)
	}
}

func TestDeleteByStatusAndSoftDelete(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	keep := mustCreate(t, s, "u1", model.CreateParams{Company: "Acme", Position: "Dev"})
	mustCreate(t, s, "u1", model.CreateParams{Company: "Globex", Position: "Dev", Status: model.StatusRejected})
	mustCreate(t, s, "u1", model.CreateParams{Company: "Initech", Position: "Dev", Status: model.StatusRejected})
	other := mustCreate(t, s, "u2", model.CreateParams{Company: "Hooli", Position: "Dev", Status: model.StatusRejected})

	n, err := s.DeleteByStatus(ctx, "u1", model.StatusRejected)
	if err != nil {
		t.Fatalf("DeleteByStatus: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 deleted, got %d", n)
	}
	if _, err := s.GetApplication(ctx, "u2", other.ID); err != nil {
		t.Fatalf("other user's application must survive: %v", err)
	}

	if err := s.SoftDeleteApplication(ctx, "u1", keep.ID); err != nil {
		t.Fatalf("SoftDeleteApplication: %v", err)
	}
	if _, err := s.GetApplication(ctx, "u1", keep.ID); err == nil {
		t.Fatalf("soft-deleted application must not be readable")
	}
	res, err := s.ListApplications(ctx, "u1", model.ListParams{})
	if err != nil {
		t.Fatalf("ListApplications: %v", err)
	}
	if res.Count != 0 {
		t.Fatalf("expected no visible applications, got %d", res.Count)
	}
	if err := s.SoftDeleteApplication(ctx, "u1", keep.ID); err == nil {
		t.Fatalf("expected not found on second soft delete")
	}
}

func TestRebalanceColumn(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a := mustCreate(t, s, "u1", model.CreateParams{Company: "Acme", Position: "Dev", SortIndex: f64(1000)})
	b := mustCreate(t, s, "u1", model.CreateParams{Company: "Globex", Position: "Dev", SortIndex: f64(1000.0000001)})
	c := mustCreate(t, s, "u1", model.CreateParams{Company: "Initech", Position: "Dev", SortIndex: f64(1000.0000002)})

	plan, err := s.RebalanceColumn(ctx, "u1", model.StatusApplied)
	if err != nil {
		t.Fatalf("RebalanceColumn: %v", err)
	}
	if _, ok := plan[a.ID]; ok {
		t.Fatalf("first key already matches and must not be rewritten")
	}
	if plan[b.ID] != 2000 || plan[c.ID] != 3000 {
		t.Fatalf("unexpected plan: %v", plan)
	}

	res, err := s.ListApplications(ctx, "u1", model.ListParams{})
	if err != nil {
		t.Fatalf("ListApplications: %v", err)
	}
	want := []string{a.ID, b.ID, c.ID}
	for i, id := range want {
		if res.Results[i].ID != id {
			t.Fatalf("order changed at %d: got %s want %s", i, res.Results[i].ID, id)
		}
	}
}

func TestRemote_ImplementsBoardOperations(t *testing.T) {
	s := newTestStore(t)
	r := Remote{Store: s, Owner: "u1"}
	ctx := context.Background()

	a, err := r.Create(ctx, model.CreateParams{Company: "Acme", Position: "Dev"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := r.Update(ctx, a.ID, model.MovePatch{Status: model.StatusRejected, SortIndex: 1000}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if err := r.DeleteRejected(ctx); err != nil {
		t.Fatalf("DeleteRejected: %v", err)
	}
	res, err := r.List(ctx, model.ListParams{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if res.Count != 0 {
		t.Fatalf("expected rejected application removed, got %d", res.Count)
	}
}
