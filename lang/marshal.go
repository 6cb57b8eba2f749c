package lang

import (
	"encoding/json"
	"strings"
)

// MarshalJSON implements json.Marshaler for Template.
func (t *Template) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.ToMap())
}

// ToMap converts the template to a native Go map structure:
//
//	{"source": "...", "clauses": [{"symbols": [{"kind": "literal", ...}]}]}
func (t *Template) ToMap() map[string]any {
	result := t.toNative()
	result["source"] = t.String()

	return result
}

func (t *Template) toNative() map[string]any {
	clauses := make([]any, len(t.Clauses))

	for i, c := range t.Clauses {
		symbols := make([]any, len(c.Symbols))
		for j, s := range c.Symbols {
			symbols[j] = s.ToNative()
		}

		clauses[i] = map[string]any{"symbols": symbols}
	}

	return map[string]any{"clauses": clauses}
}

// ToNative converts a Symbol to a native Go map. Only the fields relevant to
// the symbol's kind are present; "optional" is present only when set.
func (s *Symbol) ToNative() map[string]any {
	result := map[string]any{
		"kind": strings.ToLower(s.Kind.String()),
	}

	switch s.Kind {
	case KindLiteral:
		result["text"] = s.Text

	case KindSubtemplate, KindVarBind:
		result["name"] = s.Name

	case KindGroup:
		if s.Group != nil {
			result["template"] = s.Group.toNative()
		}
	}

	if s.Optional {
		result["optional"] = true
	}

	return result
}
