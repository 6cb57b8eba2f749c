// Package cmd implements the phrasegen subcommands: gen, fmt, match, check,
// init, and version.
//
// Commands receive the shared [Globals] flags and a [context.Context]
// carrying the parsed [kong.Context] and the input and output streams (see
// [WithContext] and [WithStreams]).
package cmd

var (
	// CacheIdentifier is the kong variable identifier containing the path to
	// the runtime cache directory.
	CacheIdentifier = "cache"

	// ConfigIdentifier is the kong variable identifier containing the path to
	// the configuration file.
	ConfigIdentifier = "config"
)
