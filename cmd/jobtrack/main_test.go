package main

import (
	"reflect"
	"testing"
)

func TestRewriteDirectAppLookupArgs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{
			name: "no args",
			in:   []string{"jobtrack"},
			want: []string{"jobtrack"},
		},
		{
			name: "direct app id first token",
			in:   []string{"jobtrack", "app-abcd2345"},
			want: []string{"jobtrack", "apps", "show", "app-abcd2345"},
		},
		{
			name: "direct app id after value flag",
			in:   []string{"jobtrack", "--dir", "./tmp-data", "app-abcd2345"},
			want: []string{"jobtrack", "--dir", "./tmp-data", "apps", "show", "app-abcd2345"},
		},
		{
			name: "direct app id after equals flag",
			in:   []string{"jobtrack", "--user=alice", "app-abcd2345"},
			want: []string{"jobtrack", "--user=alice", "apps", "show", "app-abcd2345"},
		},
		{
			name: "direct app id after bool flag",
			in:   []string{"jobtrack", "--pretty", "app-abcd2345"},
			want: []string{"jobtrack", "--pretty", "apps", "show", "app-abcd2345"},
		},
		{
			name: "value flag whose value looks like an id is not rewritten",
			in:   []string{"jobtrack", "--user", "app-abcd2345", "board", "show"},
			want: []string{"jobtrack", "--user", "app-abcd2345", "board", "show"},
		},
		{
			name: "after double dash",
			in:   []string{"jobtrack", "--", "app-abcd2345"},
			want: []string{"jobtrack", "--", "apps", "show", "app-abcd2345"},
		},
		{
			name: "subcommand untouched",
			in:   []string{"jobtrack", "apps", "show", "app-abcd2345"},
			want: []string{"jobtrack", "apps", "show", "app-abcd2345"},
		},
		{
			name: "not an id",
			in:   []string{"jobtrack", "app-"},
			want: []string{"jobtrack", "app-"},
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := rewriteDirectAppLookupArgs(tc.in)
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("got %#v, want %#v", got, tc.want)
			}
		})
	}
}
