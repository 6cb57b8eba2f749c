package library

import (
	"github.com/ardnew/phrasegen/lang"
	"github.com/ardnew/phrasegen/log"
)

// Option configures a [Library].
type Option func(*Library)

// WithLogger sets the logger used to report loads and redefinitions.
func WithLogger(logger log.Logger) Option {
	return func(l *Library) { l.logger = logger }
}

// WithParseOptions sets the options used to parse every loaded template.
func WithParseOptions(opts ...lang.Option) Option {
	return func(l *Library) { l.parseOpts = append(l.parseOpts, opts...) }
}

// WithSearchPath adds directories searched for relative library paths,
// ahead of the directories named by [PathEnv].
func WithSearchPath(dirs ...string) Option {
	return func(l *Library) { l.dirs = append(l.dirs, dirs...) }
}

// WithEnviron sets the function used to read [PathEnv]. The default is
// [os.Getenv].
func WithEnviron(getenv func(string) string) Option {
	return func(l *Library) { l.environ = getenv }
}
