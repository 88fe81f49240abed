package main

import (
	"reflect"
	"testing"
)

func TestRewriteScriptArgs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{
			name: "no args",
			in:   []string{"formbuilder"},
			want: []string{"formbuilder"},
		},
		{
			name: "script first token",
			in:   []string{"formbuilder", "drag.jsonl"},
			want: []string{"formbuilder", "gesture", "replay", "drag.jsonl"},
		},
		{
			name: "script after value flag",
			in:   []string{"formbuilder", "--seed", "seed.json", "drag.jsonl"},
			want: []string{"formbuilder", "--seed", "seed.json", "gesture", "replay", "drag.jsonl"},
		},
		{
			name: "script after equals flag",
			in:   []string{"formbuilder", "--format=text", "drag.jsonl"},
			want: []string{"formbuilder", "--format=text", "gesture", "replay", "drag.jsonl"},
		},
		{
			name: "script after bool flag",
			in:   []string{"formbuilder", "--pretty", "drag.jsonl"},
			want: []string{"formbuilder", "--pretty", "gesture", "replay", "drag.jsonl"},
		},
		{
			name: "script after double dash",
			in:   []string{"formbuilder", "--", "drag.jsonl"},
			want: []string{"formbuilder", "--", "gesture", "replay", "drag.jsonl"},
		},
		{
			name: "subcommand not rewritten",
			in:   []string{"formbuilder", "gesture", "replay", "drag.jsonl"},
			want: []string{"formbuilder", "gesture", "replay", "drag.jsonl"},
		},
		{
			name: "seed value is not a script",
			in:   []string{"formbuilder", "--seed", "x.jsonl", "tree", "show"},
			want: []string{"formbuilder", "--seed", "x.jsonl", "tree", "show"},
		},
		{
			name: "bare extension",
			in:   []string{"formbuilder", ".jsonl"},
			want: []string{"formbuilder", ".jsonl"},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := rewriteScriptArgs(tt.in); !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("got %v want %v", got, tt.want)
			}
		})
	}
}
