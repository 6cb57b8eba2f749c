package cmd

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/ardnew/phrasegen/lang"
	"github.com/ardnew/phrasegen/library"
	"github.com/ardnew/phrasegen/log"
)

// ContextKey is used to store a [kong.Context] value in [context.Context].
type contextKey struct{}

// WithContext returns a new context.Context containing the given kong.Context.
func WithContext(ctx context.Context, ktx *kong.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, ktx)
}

func kongContextFrom(ctx context.Context) *kong.Context {
	ktx, ok := ctx.Value(contextKey{}).(*kong.Context)
	if !ok || ktx == nil {
		return nil
	}

	return ktx
}

type (
	streamsKey struct{}
	streams    struct {
		in  io.Reader
		out io.Writer
	}
)

// WithStreams returns a new context.Context whose commands read standard
// input from in and write results to out.
func WithStreams(ctx context.Context, in io.Reader, out io.Writer) context.Context {
	return context.WithValue(ctx, streamsKey{}, streams{in: in, out: out})
}

// streamsFrom returns the streams stored by WithStreams, defaulting to
// os.Stdin and os.Stdout.
func streamsFrom(ctx context.Context) (io.Reader, io.Writer) {
	s, _ := ctx.Value(streamsKey{}).(streams)

	if s.in == nil {
		s.in = os.Stdin
	}

	if s.out == nil {
		s.out = os.Stdout
	}

	return s.in, s.out
}

// stdinSource is the special source indicator for reading from stdin.
const stdinSource = "-"

// Vars returns the kong variables referenced by command flag defaults.
func Vars() kong.Vars {
	return kong.Vars{
		"literalClass": lang.DefaultLiteralClass.String(),
		"probability":  strconv.FormatFloat(lang.DefaultInclusionProbability, 'f', -1, 64),
		"maxDepth":     strconv.Itoa(lang.DefaultMaxDepth),
		"maxOutput":    strconv.Itoa(lang.DefaultMaxOutput),
	}
}

// Globals holds the flags shared by every command that reads templates.
type Globals struct {
	Library      []string `help:"Load templates from library file(s)."            placeholder:"FILE" short:"l"`
	LibraryPath  []string `help:"Directory searched for library files."           placeholder:"DIR"  type:"path"`
	LiteralClass string   `default:"${literalClass}" enum:"letters,alphanumeric" help:"Characters allowed in template literals."`
}

// ParseOptions returns the parse options selected by the global flags.
func (g *Globals) ParseOptions() []lang.Option {
	opts := []lang.Option{lang.WithLogger(log.Named("lang"))}

	if g == nil {
		return opts
	}

	if class, ok := lang.ParseClass(g.LiteralClass); ok {
		opts = append(opts, lang.WithLiteralClass(class))
	}

	return opts
}

// Load builds a library from the files named by the global flags. A file
// reached through more than one path is loaded once.
func (g *Globals) Load(ctx context.Context) (*library.Library, error) {
	if g == nil {
		g = &Globals{}
	}

	lib := library.New(
		library.WithLogger(log.Named("library")),
		library.WithParseOptions(g.ParseOptions()...),
		library.WithSearchPath(g.LibraryPath...),
	)

	seen := make(map[fileKey]struct{})

	for _, name := range g.Library {
		path, err := lib.Resolve(name)
		if err != nil {
			return nil, err
		}

		if !markUnique(path, seen) {
			log.DebugContext(ctx, "skipping duplicate library",
				slog.String("name", name),
				slog.String("path", path))

			continue
		}

		if err := lib.Load(ctx, path); err != nil {
			return nil, err
		}
	}

	return lib, nil
}

// fileKey uniquely identifies a file by its device and inode numbers.
// This handles deduplication across symlinks, absolute/relative paths, and
// special device files.
type fileKey struct {
	dev uint64
	ino uint64
}

// markUnique records the file at path in seen and reports whether it was not
// already present. Files that cannot be identified are always unique.
func markUnique(path string, seen map[fileKey]struct{}) bool {
	// Resolve to absolute path to handle relative path duplicates.
	absPath, err := filepath.Abs(path)
	if err != nil {
		return true
	}

	// Resolve symlinks to their target.
	resolved, err := filepath.EvalSymlinks(absPath)
	if err != nil {
		return true
	}

	info, err := os.Stat(resolved)
	if err != nil {
		return true
	}

	key, ok := makeFileKey(info)
	if !ok {
		return true
	}

	if _, exists := seen[key]; exists {
		return false
	}

	seen[key] = struct{}{}

	return true
}

// makeFileKey creates a fileKey from os.FileInfo.
// Returns false if the underlying Sys() data is not of type *syscall.Stat_t.
func makeFileKey(info os.FileInfo) (key fileKey, ok bool) {
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return key, false
	}

	return fileKey{dev: uint64(stat.Dev), ino: uint64(stat.Ino)}, true //nolint:unconvert
}
