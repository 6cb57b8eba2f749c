package lang

import (
	"log/slog"
	"maps"
	"math"
	"math/rand/v2"

	"github.com/ardnew/phrasegen/log"
)

// Class selects the characters accepted in a literal word.
type Class int

const (
	// ClassAlphanumeric accepts letters and decimal digits.
	ClassAlphanumeric Class = iota

	// ClassLetters accepts letters only.
	ClassLetters
)

// String returns a string representation of the literal class.
func (c Class) String() string {
	switch c {
	case ClassAlphanumeric:
		return "alphanumeric"

	case ClassLetters:
		return "letters"

	default:
		return "unknown"
	}
}

// ParseClass parses a literal class name. Unknown names yield
// ClassAlphanumeric and false.
func ParseClass(s string) (Class, bool) {
	switch s {
	case "alphanumeric", "alnum", "":
		return ClassAlphanumeric, true

	case "letters", "alpha":
		return ClassLetters, true

	default:
		return ClassAlphanumeric, false
	}
}

// Defaults. Users may modify these before parsing or generating to change
// the default behavior.
var (
	DefaultMaxDepth               = 100
	DefaultMaxOutput              = 1 << 16
	DefaultInclusionProbability   = 0.5
	DefaultLiteralClass           = ClassAlphanumeric
	DefaultSeed            uint64 = 0
)

// options holds parse and generation configuration. Parsing reads only the
// fields that affect the AST (class, maxDepth) and the logger.
type options struct {
	class       Class
	maxDepth    int
	maxOutput   int
	probability float64
	seed        uint64
	rng         *rand.Rand
	separator   string
	bindings    map[string]string
	logger      log.Logger
}

// Option configures parsing or generation behavior.
type Option func(*options)

func makeOptions(opts ...Option) options {
	o := options{
		class:       DefaultLiteralClass,
		maxDepth:    DefaultMaxDepth,
		maxOutput:   DefaultMaxOutput,
		probability: DefaultInclusionProbability,
		seed:        DefaultSeed,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	return o
}

// random returns the configured random source, or a PCG source seeded from
// the configured seed.
func (o *options) random() *rand.Rand {
	if o.rng != nil {
		return o.rng
	}

	return rand.New(rand.NewPCG(o.seed, o.seed^0x9e3779b97f4a7c15))
}

func (o *options) validate() error {
	switch {
	case math.IsNaN(o.probability) || o.probability < 0 || o.probability > 1:
		return ErrInvalidOption.With(
			slog.String("option", "inclusion probability"),
			slog.Float64("value", o.probability),
		)

	case o.maxDepth < 0:
		return ErrInvalidOption.With(
			slog.String("option", "max depth"),
			slog.Int("value", o.maxDepth),
		)

	case o.maxOutput < 0:
		return ErrInvalidOption.With(
			slog.String("option", "max output"),
			slog.Int("value", o.maxOutput),
		)
	}

	return nil
}

// WithLiteralClass selects the characters accepted in a literal word.
func WithLiteralClass(c Class) Option {
	return func(o *options) { o.class = c }
}

// WithMaxDepth sets the maximum nesting of groups and subtemplate calls.
// The parser enforces it on group nesting as well.
func WithMaxDepth(depth int) Option {
	return func(o *options) { o.maxDepth = depth }
}

// WithMaxOutput sets the maximum length in bytes of generated text.
func WithMaxOutput(n int) Option {
	return func(o *options) { o.maxOutput = n }
}

// WithInclusionProbability sets the probability that an optional symbol is
// included. It must be within [0, 1].
func WithInclusionProbability(p float64) Option {
	return func(o *options) { o.probability = p }
}

// WithSeed seeds the generator's random source. Generation is reproducible
// for a fixed seed, template, and registry.
func WithSeed(seed uint64) Option {
	return func(o *options) {
		o.seed = seed
		o.rng = nil
	}
}

// WithRand supplies the random source directly. The source must not be
// shared with a concurrent generation call.
func WithRand(r *rand.Rand) Option {
	return func(o *options) { o.rng = r }
}

// WithSeparator sets the text inserted between non-empty fragments of a
// clause. The default is the empty string.
func WithSeparator(sep string) Option {
	return func(o *options) { o.separator = sep }
}

// WithBindings pre-populates the binding environment of a generation call.
// The map is copied and never modified.
func WithBindings(b map[string]string) Option {
	return func(o *options) { o.bindings = maps.Clone(b) }
}

// WithLogger sets the structured logger used for trace output.
func WithLogger(logger log.Logger) Option {
	return func(o *options) { o.logger = logger }
}
