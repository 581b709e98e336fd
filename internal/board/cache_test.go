package board

import (
	"reflect"
	"testing"

	"jobtrack/internal/model"
)

func TestCache_ValuesAreCopies(t *testing.T) {
	c := NewCache()
	c.Set("k", model.ListResult{Results: []model.Application{app("a", model.StatusApplied, 1)}, Count: 1})

	got, _ := c.Get("k")
	got.Results[0].Company = "mutated"
	again, _ := c.Get("k")
	if again.Results[0].Company == "mutated" {
		t.Fatalf("Get must return a copy")
	}

	snap := c.snapshotOf("k")
	c.Update("k", func(cur *model.ListResult) bool {
		cur.Results[0].SortIndex = 99
		return true
	})
	if snap.Value.Results[0].SortIndex != 1 {
		t.Fatalf("snapshot must not observe later writes")
	}
}

func TestCache_UpdateVersioning(t *testing.T) {
	c := NewCache()
	if c.versionOf("k") != 0 {
		t.Fatalf("expected version 0")
	}
	before, v, ok := c.Update("k", func(cur *model.ListResult) bool { return false })
	if ok || v != 0 || before.Present {
		t.Fatalf("declined update must not write: %v %d %+v", ok, v, before)
	}
	_, v, ok = c.Update("k", func(cur *model.ListResult) bool {
		cur.Results = append(cur.Results, app("a", model.StatusApplied, 1))
		cur.Count = 1
		return true
	})
	if !ok || v != 1 {
		t.Fatalf("expected write at version 1, got %v %d", ok, v)
	}
}

func TestCache_RestoreIfVersion(t *testing.T) {
	c := NewCache()
	c.Set("k", model.ListResult{Count: 0})
	snap := c.snapshotOf("k")
	v := c.Set("k", model.ListResult{Count: 5})

	if c.RestoreIfVersion(snap, v-1) {
		t.Fatalf("restore must fail on version mismatch")
	}
	if !c.RestoreIfVersion(snap, v) {
		t.Fatalf("restore must succeed on matching version")
	}
	got, _ := c.Get("k")
	if !reflect.DeepEqual(got, snap.Value) {
		t.Fatalf("unexpected restored value: %+v", got)
	}
}

func TestCache_RestoreAbsentDeletes(t *testing.T) {
	c := NewCache()
	snap := c.snapshotOf("k")
	v := c.Set("k", model.ListResult{Count: 1})
	if !c.RestoreIfVersion(snap, v) {
		t.Fatalf("expected restore")
	}
	if _, ok := c.Get("k"); ok {
		t.Fatalf("expected key removed")
	}
	if len(c.keys()) != 0 {
		t.Fatalf("expected no keys, got %v", c.keys())
	}
}
