// Package library stores named templates and loads them from files.
//
// A [Library] holds two namespaces: subtemplates, which templates call with
// {name}, and top-level templates, which users select by name. A Library
// implements [lang.Registry] over its subtemplates, so it can be passed
// directly to [lang.Generate] and [lang.NewMatcher].
//
// # File Formats
//
// The block format ([FormatBlock]) defines one template per block:
//
//	% sub pre command ask
//	(could | would) you please?
//	% end
//
//	% temp play
//	{pre command ask}? play [song] on Spotify
//	% end
//
// The name follows the "% sub" or "% temp" keyword, or appears alone on the
// next line. Body lines are joined with newlines.
//
// TOML ([FormatTOML]) and YAML ([FormatYAML]) libraries are documents with
// "subtemplates" and "templates" maps from name to template source.
//
// # Search Path
//
// Relative library paths are resolved against the directories given with
// [WithSearchPath], then the directories listed in [PathEnv], then
// [DefaultDir].
package library
