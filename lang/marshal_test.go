package lang

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSymbol_ToNative(t *testing.T) {
	tests := []struct {
		name string
		sym  *Symbol
		want map[string]any
	}{
		{
			name: "literal",
			sym:  Literal("play"),
			want: map[string]any{"kind": "literal", "text": "play"},
		},
		{
			name: "subtemplate",
			sym:  Call("music service"),
			want: map[string]any{"kind": "subtemplate", "name": "music service"},
		},
		{
			name: "optional varbind",
			sym:  &Symbol{Kind: KindVarBind, Name: "song", Optional: true},
			want: map[string]any{"kind": "varbind", "name": "song", "optional": true},
		},
		{
			name: "group",
			sym:  MustParse("(a | b)").Clauses[0].Symbols[0],
			want: map[string]any{
				"kind": "group",
				"template": map[string]any{"clauses": []any{
					map[string]any{"symbols": []any{map[string]any{"kind": "literal", "text": "a"}}},
					map[string]any{"symbols": []any{map[string]any{"kind": "literal", "text": "b"}}},
				}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, tt.sym.ToNative()); diff != "" {
				t.Errorf("ToNative() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestTemplate_MarshalJSON(t *testing.T) {
	tmpl := MustParse("{greeting} | hi [who]?")

	data, err := json.Marshal(tmpl)
	if err != nil {
		t.Fatal(err)
	}

	var got map[string]any
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatal(err)
	}

	if got["source"] != tmpl.String() {
		t.Errorf("source = %v, want %q", got["source"], tmpl.String())
	}

	clauses, ok := got["clauses"].([]any)
	if !ok || len(clauses) != 2 {
		t.Fatalf("clauses = %v, want 2 entries", got["clauses"])
	}
}
