package cli

import (
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/pelletier/go-toml/v2"

	"github.com/ardnew/phrasegen/log"
)

// resolve is a [kong.ConfigurationLoader] that reads TOML config files.
//
// It can be used with [kong.Configuration] like this:
//
//	kong.Configuration(resolve, "/path/to/config.toml")
//
// Keys name flags. Nested tables are flattened by joining keys with hyphens,
// so the following are equivalent:
//
//	log-level = "debug"
//
//	[log]
//	level = "debug"
//
// Underscores may be used in place of hyphens. A table named after a command
// holds that command's flags:
//
//	[gen]
//	separator = "_"
//
// Command-line flags override config file values.
func resolve(r io.Reader) (kong.Resolver, error) {
	var doc map[string]any

	err := toml.NewDecoder(r).Decode(&doc)
	if err != nil {
		// Malformed configuration is reported and otherwise ignored so that
		// init can still rewrite it.
		log.Warn("ignoring configuration file", slog.Any("error", err))

		return config{}, nil
	}

	cfg := make(config)
	cfg.flatten("", doc)

	return cfg, nil
}

// config implements [kong.Resolver] for TOML configs.
type config map[string]any

// flatten copies the values of table into c with keys prefixed by prefix.
func (c config) flatten(prefix string, table map[string]any) {
	for key, value := range table {
		key = strings.ReplaceAll(key, "_", "-")
		if prefix != "" {
			key = prefix + "-" + key
		}

		if sub, ok := value.(map[string]any); ok {
			c.flatten(key, sub)

			continue
		}

		c[key] = scalar(value)
	}
}

// scalar converts TOML values to the forms kong decodes. Kong requires
// numbers as strings for parsing.
func scalar(value any) any {
	switch v := value.(type) {
	case int64:
		return strconv.FormatInt(v, 10)

	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)

	case []any:
		out := make([]any, len(v))
		for i, e := range v {
			out[i] = scalar(e)
		}

		return out

	default:
		return v
	}
}

// Validate implements [kong.Resolver].
func (c config) Validate(*kong.Application) error {
	return nil
}

// Resolve implements [kong.Resolver].
func (c config) Resolve(
	_ *kong.Context,
	path *kong.Path,
	flag *kong.Flag,
) (any, error) {
	names := []string{flag.Name}

	if path != nil && path.Command != nil {
		names = append([]string{commandPrefix(path.Command) + flag.Name}, names...)
	}

	for _, name := range names {
		if value, ok := c[name]; ok {
			return value, nil
		}
	}

	// Not found - return nil to let Kong use defaults
	return nil, nil
}

// commandPrefix returns the hyphen-joined names of cmd and its parent
// commands, followed by a hyphen.
func commandPrefix(cmd *kong.Node) string {
	var names []string

	for n := cmd; n != nil && n.Type == kong.CommandNode; n = n.Parent {
		names = append([]string{n.Name}, names...)
	}

	return strings.Join(names, "-") + "-"
}
