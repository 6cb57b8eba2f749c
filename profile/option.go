//go:build pprof

package profile

import "github.com/pkg/profile"

// Option appends profiler settings to a control.
type Option func(control) control

// apply applies multiple options to a control.
func apply(c control, opts ...Option) control {
	for _, opt := range opts {
		c = opt(c)
	}

	return c
}

func withMode(m string) Option {
	return func(c control) control {
		if fn, ok := mode[m]; ok {
			c.mode = append(c.mode, fn)
		}

		return c
	}
}

func withPath(p string) Option {
	return func(c control) control {
		if p != "" {
			c.mode = append(c.mode, profile.ProfilePath(p))
		}

		return c
	}
}

func withQuiet(v bool) Option {
	return func(c control) control {
		if v {
			c.mode = append(c.mode, profile.Quiet)
		}

		return c
	}
}
