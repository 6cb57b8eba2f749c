// Package cli contains the command line interface for phrasegen.
//
// # Usage
//
//	phrasegen [flags] [gen] [gen flags]
//	phrasegen [flags] <command> [command flags]
//
// With no command, gen is run:
//
//	phrasegen -t '(hi | hello) there' -c 3
//	phrasegen -l assistant -n play --bind song='enter sandman'
//	phrasegen match -l assistant -n play 'play enter sandman on Spotify'
//
// Without a template, match reports the first library template, in
// definition order, that recognizes each input:
//
//	phrasegen match -l assistant 'play enter sandman on Spotify'
//
// # Template Libraries
//
// The --library flag (repeatable) loads block, TOML, or YAML library files.
// Relative names are searched in the --library-path directories, then the
// PHRASEGEN_PATH list, then the library directory inside the configuration
// directory. The extension may be omitted.
//
// # Configuration
//
// Flag values are read, in increasing precedence, from the configuration file
// config.toml in the user configuration directory, from PHRASEGEN_*
// environment variables (which a .env file in the working directory may
// set), and from the command line. The init command writes the current
// global flag values to the configuration file:
//
//	log-level = "debug"
//	library = ["assistant", "greetings.toml"]
//
//	[gen]
//	separator = "_"
//
// See [resolve] for how keys name flags.
//
// # Logging Options
//
//   - --log-level: Set minimum log level (trace, debug, info, warn, error)
//   - --log-format: Set log output format (text, json)
//   - --log-time-layout: Set timestamp format (RFC3339, Kitchen, etc.)
//   - --log-caller: Include caller information in log output
//   - --log-pretty: Colorize log output
//
// # Profiling Options
//
// Profiling is only available when built with the pprof build tag:
//
//	go build -tags pprof -o phrasegen .
//
//   - --pprof-mode: Enable profiling (allocs, block, clock, cpu, goroutine,
//     heap, mem, mutex, thread, trace)
//   - --pprof-dir: Set profile output directory (default:
//     ~/.cache/phrasegen/pprof)
package cli
