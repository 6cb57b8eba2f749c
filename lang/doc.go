// Package lang parses and expands phrase templates: a small grammar for
// describing families of sentences.
//
// A template is a set of alternative clauses; a clause is a sequence of
// symbols. Generation picks one clause uniformly at random and expands each
// of its symbols in order, so a single template describes every sentence it
// can produce.
//
// # Grammar
//
// Informal EBNF:
//
//	Template → Clause ('|' Clause)*
//	Clause   → Symbol*
//	Symbol   → (Literal | Call | Bind | '(' Template ')') '?'?
//	Literal  → <run of letters, and digits unless WithLiteralClass(ClassLetters)>
//	Call     → '{' Name '}'
//	Bind     → '[' Ident ']'
//
// Whitespace (space, tab, CR, LF) and '#' line comments may appear between
// any two tokens. A Name may contain interior spaces; an Ident may not.
//
// # Example
//
//	# Subtemplate "pre command ask"
//	(could|would) you please?
//
//	# Top-level template
//	{pre command ask}? play [song] on Spotify
//
// # Expansion
//
//   - Literal: emits its text.
//   - Call: expands the named template from the Registry.
//   - Bind: emits the value bound to the identifier; the first occurrence of
//     an unbound identifier binds the empty string.
//   - Group: expands the nested template.
//   - A symbol marked '?' is included with the configured probability.
//
// Expansion is deterministic for a given template, registry, seed and
// inclusion probability. Nesting depth and output length are bounded (see
// WithMaxDepth and WithMaxOutput), so cyclic registries terminate with a
// RecursionLimitError.
//
// # Matching
//
// A Matcher runs the other direction: it compiles a template to a regular
// expression and reports which text each Bind captured.
package lang
