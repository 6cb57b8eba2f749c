package library

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/ardnew/mung"

	"github.com/ardnew/phrasegen/pkg"
)

// PathEnv names the environment variable holding a list of library
// directories, separated like PATH.
var PathEnv = strings.ToUpper(pkg.Name) + "_PATH"

// Extensions lists the file extensions tried, in order, when a library is
// named without one.
var Extensions = []string{".phr", ".toml", ".yaml", ".yml", ".txt"}

// DefaultDir returns the library directory inside the user configuration
// directory. It is always searched last.
func DefaultDir() string {
	return filepath.Join(pkg.ConfigDir(), "library")
}

// SearchPath returns the directories searched for relative library paths:
// directories given with [WithSearchPath], then those in [PathEnv], then
// [DefaultDir]. Duplicates are removed.
func (l *Library) SearchPath() []string {
	getenv := l.environ
	if getenv == nil {
		getenv = os.Getenv
	}

	sep := string(os.PathListSeparator)

	joined := mung.Make(
		mung.WithSubjectItems(getenv(PathEnv)),
		mung.WithDelim(sep),
		mung.WithPrefixItems(l.dirs...),
	).String()

	var dirs []string

	seen := make(map[string]bool)

	for _, dir := range append(strings.Split(joined, sep), DefaultDir()) {
		if strings.TrimSpace(dir) == "" {
			continue
		}

		dir = filepath.Clean(dir)
		if seen[dir] {
			continue
		}

		seen[dir] = true
		dirs = append(dirs, dir)
	}

	return dirs
}

// Resolve returns the path of the library file named by path.
//
// Absolute paths and paths starting with "./" or "../" are used as given.
// Other paths are tried relative to the working directory and then to each
// directory of [Library.SearchPath]. A path without an extension also
// matches files with any of the [Extensions].
func (l *Library) Resolve(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", notFound(path)
	}

	candidates := []string{path}
	if filepath.Ext(path) == "" {
		for _, ext := range Extensions {
			candidates = append(candidates, path+ext)
		}
	}

	if found, ok := firstFile(candidates...); ok {
		return found, nil
	}

	if filepath.IsAbs(path) || isExplicitlyRelative(path) {
		return "", notFound(path)
	}

	dirs := l.SearchPath()

	for _, dir := range dirs {
		joined := make([]string, len(candidates))
		for i, c := range candidates {
			joined[i] = filepath.Join(dir, c)
		}

		if found, ok := firstFile(joined...); ok {
			return found, nil
		}
	}

	return "", notFound(path).With(slog.Any("search_path", dirs))
}

func notFound(path string) *Error {
	return ErrNotFound.Wrap(fmt.Errorf("%q", path)).With(slog.String("path", path))
}

func isExplicitlyRelative(path string) bool {
	for _, prefix := range []string{".", ".."} {
		if strings.HasPrefix(path, prefix+"/") ||
			strings.HasPrefix(path, prefix+string(filepath.Separator)) {
			return true
		}
	}

	return false
}

func firstFile(paths ...string) (string, bool) {
	for _, p := range paths {
		info, err := os.Stat(p)
		if err == nil && info.Mode().IsRegular() {
			return p, true
		}
	}

	return "", false
}
