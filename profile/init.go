package profile

// Profiler selects what to profile and where profiles are written.
type Profiler struct {
	Mode  string // One of Modes(); empty disables profiling
	Path  string // Output directory; empty uses the working directory
	Quiet bool   // Suppress the profiler's own log output
}

// Stopper stops a running profiler and flushes its output.
type Stopper interface{ Stop() }

// Start starts the profiler and returns a Stopper for it.
//
// If the build tag pprof or p.Mode are unset, then Start returns a no-op
// implementation. Both Start and Stop are always safely callable.
func (p Profiler) Start() Stopper {
	if p.Mode == "" {
		return ignore{}
	}

	return start(p.Mode, p.Path, p.Quiet)
}

// Enabled reports whether profiling support was compiled in.
func Enabled() bool { return len(Modes()) > 0 }

type ignore struct{}

func (ignore) Stop() {}
