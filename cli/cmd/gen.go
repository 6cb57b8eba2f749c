package cmd

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"strings"

	"github.com/ardnew/phrasegen/lang"
	"github.com/ardnew/phrasegen/library"
	"github.com/ardnew/phrasegen/log"
)

// Gen generates random phrases from a template.
type Gen struct {
	TemplateInput `embed:""`

	Seed        int64             `default:"-1"                        help:"Seed of the first output; negative picks one at random."`
	Count       int               `default:"1"                         help:"Number of outputs to generate."                           short:"c"`
	Probability float64           `default:"${probability}"            help:"Probability that an optional symbol is included."         short:"p"`
	MaxDepth    int               `default:"${maxDepth}"               help:"Maximum nesting of groups and subtemplate calls."`
	MaxOutput   int               `default:"${maxOutput}"              help:"Maximum length in bytes of one output."`
	Separator   string            `default:" "                         help:"Text inserted between adjacent fragments."                short:"s"`
	Bind        map[string]string `help:"Pre-bind a variable (NAME=VALUE)." placeholder:"NAME=VALUE"                                  short:"b"`
	Accept      string            `help:"Boolean expression an output must satisfy."                    placeholder:"EXPR"`
	Attempts    int               `default:"100"                       help:"Seeds tried per output before giving up."`
	Format      string            `default:"text"                      enum:"text,json,yaml"                                           help:"Output format (${enum})."`
	Output      string            `help:"Write output to FILE instead of stdout." placeholder:"FILE" short:"o" type:"path"`
}

// Result is one accepted output of the gen command.
type Result struct {
	Text     string            `json:"text"               yaml:"text"`
	Seed     int64             `json:"seed"               yaml:"seed"`
	Bindings map[string]string `json:"bindings,omitempty" yaml:"bindings,omitempty"`
}

// Run executes the gen command.
func (c *Gen) Run(ctx context.Context, g *Globals) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	t, lib, err := c.Resolve(ctx, g)
	if err != nil {
		return err
	}

	results, err := c.Generate(ctx, t, lib, g.ParseOptions()...)
	if err != nil {
		return err
	}

	data, err := c.encode(ctx, results)
	if err != nil {
		return err
	}

	return emit(ctx, c.Output, data)
}

// Generate produces c.Count accepted results from t. Each attempt uses the
// seed following the previous attempt, starting from c.Seed.
func (c *Gen) Generate(
	ctx context.Context,
	t *lang.Template,
	lib *library.Library,
	opts ...lang.Option,
) ([]Result, error) {
	if c.Count < 1 {
		return nil, lang.ErrInvalidOption.With(
			slog.String("option", "count"),
			slog.Int("value", c.Count),
		)
	}

	filter, err := CompileFilter(c.Accept)
	if err != nil {
		return nil, err
	}

	attempts := max(c.Attempts, 1)

	seed := c.Seed
	if seed < 0 {
		seed = rand.Int64()
	}

	opts = append(opts,
		lang.WithInclusionProbability(c.Probability),
		lang.WithMaxDepth(c.MaxDepth),
		lang.WithMaxOutput(c.MaxOutput),
		lang.WithSeparator(c.Separator),
		lang.WithBindings(c.Bind),
	)

	results := make([]Result, 0, c.Count)

	for len(results) < c.Count {
		r, err := c.attempt(ctx, t, lib, filter, seed, attempts, opts)
		if err != nil {
			return nil, err
		}

		results = append(results, r)
		seed = r.Seed + 1
	}

	return results, nil
}

// attempt expands t with successive seeds until filter accepts an output.
func (c *Gen) attempt(
	ctx context.Context,
	t *lang.Template,
	lib *library.Library,
	filter *Filter,
	seed int64,
	attempts int,
	opts []lang.Option,
) (Result, error) {
	for n := range attempts {
		if err := ctx.Err(); err != nil {
			return Result{}, context.Cause(ctx)
		}

		x, err := lang.Expand(ctx, t, lib,
			append(opts, lang.WithSeed(uint64(seed)))...) //nolint:gosec
		if err != nil {
			return Result{}, err
		}

		ok, err := filter.Accept(Candidate{
			Text:     x.Text,
			Seed:     seed,
			Attempt:  n,
			Bindings: x.Bindings,
		})
		if err != nil {
			return Result{}, err
		}

		if ok {
			return Result{Text: x.Text, Seed: seed, Bindings: x.Bindings}, nil
		}

		log.TraceContext(ctx, "rejected output",
			slog.Int64("seed", seed),
			slog.String("text", x.Text))

		seed++
	}

	return Result{}, ErrRejected.With(
		slog.String("accept", filter.String()),
		slog.Int("attempts", attempts),
	)
}

func (c *Gen) encode(ctx context.Context, results []Result) ([]byte, error) {
	if c.Format != formatText && c.Format != "" {
		return marshal(ctx, c.Format, results)
	}

	var sb strings.Builder

	for _, r := range results {
		sb.WriteString(r.Text)
		sb.WriteByte('\n')
	}

	return []byte(sb.String()), nil
}
