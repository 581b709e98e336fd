package tui

import (
	"strings"
	"testing"

	"jobtrack/internal/board"
	"jobtrack/internal/model"
)

func TestClampSelection_FollowsItemID(t *testing.T) {
	b := board.Build([]model.Application{
		{ID: "a", Company: "Acme", Status: model.StatusApplied, SortIndex: 1000},
		{ID: "b", Company: "Bolt", Status: model.StatusOffer, SortIndex: 1000},
	})

	sel := clampSelection(b, selection{Col: 0, Item: 0, ItemID: "b"})
	if sel.Col != 2 || sel.Item != 0 {
		t.Fatalf("expected selection to follow b into Offer, got %+v", sel)
	}

	sel = clampSelection(b, selection{Col: 1, Item: 5})
	if sel.Item != -1 || sel.ItemID != "" {
		t.Fatalf("expected empty selection in an empty column, got %+v", sel)
	}

	sel = clampSelection(b, selection{Col: 9, Item: 0})
	if sel.Col != 3 {
		t.Fatalf("expected column to clamp to the last one, got %+v", sel)
	}
}

func TestRenderBoard_HeadersAndTruncation(t *testing.T) {
	b := board.Build([]model.Application{
		{ID: "a", Company: "A Very Long Company Name That Will Not Fit", Position: "Engineer", Status: model.StatusApplied, SortIndex: 1000},
	})
	out := renderBoard(b, selection{}, "", 80, 12)

	lines := strings.Split(out, "\n")
	if len(lines) != 12 {
		t.Fatalf("expected 12 lines, got %d", len(lines))
	}
	for _, want := range []string{"Applied (1)", "Interview (0)", "(empty)", "…"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in:\n%s", want, out)
		}
	}
}

func TestTruncateText(t *testing.T) {
	cases := []struct {
		in    string
		width int
		want  string
	}{
		{"hello", 10, "hello"},
		{"hello", 5, "hello"},
		{"hello world", 6, "hello…"},
		{"hello", 1, "h"},
		{"hello", 0, ""},
	}
	for _, tc := range cases {
		if got := truncateText(tc.in, tc.width); got != tc.want {
			t.Fatalf("truncateText(%q, %d): expected %q, got %q", tc.in, tc.width, tc.want, got)
		}
	}
}
