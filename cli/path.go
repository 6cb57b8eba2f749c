package cli

import (
	"os"
	"path/filepath"

	"github.com/ardnew/phrasegen/library"
	"github.com/ardnew/phrasegen/pkg"
)

// baseConfig is the base name of the configuration file.
const baseConfig = "config.toml"

// envFile is the name of the dotenv file loaded from the working directory.
const envFile = ".env"

// DefaultDirMode is the default permission mode for created directories.
var defaultDirMode os.FileMode = 0o700

// configPath returns the absolute path to a file or directory formed by joining
// the global configuration directory path with the given path elements.
//
// If no elements are given, it is equivalent to calling [pkg.ConfigDir].
func configPath(elem ...string) string {
	return filepath.Join(append([]string{pkg.ConfigDir()}, elem...)...)
}

// cacheDir returns the cache directory path used for transient files.
func cacheDir() string {
	return pkg.CacheDir()
}

// mkdirAllRequired creates all required runtime directories.
func mkdirAllRequired() error {
	for _, dir := range []string{
		pkg.ConfigDir(),
		library.DefaultDir(),
		cacheDir(),
	} {
		err := os.MkdirAll(dir, defaultDirMode)
		if err != nil {
			return err
		}
	}

	return nil
}
