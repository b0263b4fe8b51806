// Package roll parses roll command flags and executes draws from the
// terminal.
package roll

import (
	"context"
	"flag"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/louisbranch/entropy.space/internal/core/dice"
	"github.com/louisbranch/entropy.space/internal/services/sampling/app"
	"github.com/louisbranch/entropy.space/internal/services/sampling/storage"
)

// Mode selects which distribution the command draws from.
type Mode string

const (
	// ModeDice rolls dice pools given as positional NdM arguments.
	ModeDice Mode = "dice"
	// ModeProbability samples the unit interval.
	ModeProbability Mode = "probability"
	// ModeUniformInt samples integers from [low, high].
	ModeUniformInt Mode = "int"
	// ModeUniformReal samples reals from [low, high].
	ModeUniformReal Mode = "real"
	// ModeNormal samples a normal distribution.
	ModeNormal Mode = "normal"
)

// Config holds roll command configuration.
type Config struct {
	Mode  Mode
	Dice  []dice.Spec
	Seed  *uint64
	Count int
	Low   float64
	High  float64
	Mean  float64
	Sigma float64
}

// ParseConfig parses flags and positional dice specs into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var seed string
	var probability bool
	var uniformInt bool
	var uniformReal bool
	var normal bool
	cfg := Config{Mode: ModeDice}

	fs.StringVar(&seed, "seed", "", "seed for deterministic draws (decimal, empty = random)")
	fs.IntVar(&cfg.Count, "n", 1, "number of samples for distribution modes")
	fs.BoolVar(&probability, "p", false, "sample probabilities from [0, 1]")
	fs.BoolVar(&uniformInt, "int", false, "sample integers from [low, high]")
	fs.BoolVar(&uniformReal, "real", false, "sample reals from [low, high]")
	fs.BoolVar(&normal, "normal", false, "sample a normal distribution")
	fs.Float64Var(&cfg.Low, "low", 0, "lower bound for -int and -real")
	fs.Float64Var(&cfg.High, "high", 0, "upper bound for -int and -real")
	fs.Float64Var(&cfg.Mean, "mean", 0, "mean for -normal")
	fs.Float64Var(&cfg.Sigma, "sigma", 1, "standard deviation for -normal")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if seed != "" {
		value, err := strconv.ParseUint(seed, 10, 64)
		if err != nil {
			return Config{}, fmt.Errorf("seed must be an unsigned decimal integer: %w", err)
		}
		cfg.Seed = &value
	}

	modes := 0
	if probability {
		modes++
		cfg.Mode = ModeProbability
	}
	if uniformInt {
		modes++
		cfg.Mode = ModeUniformInt
	}
	if uniformReal {
		modes++
		cfg.Mode = ModeUniformReal
	}
	if normal {
		modes++
		cfg.Mode = ModeNormal
	}
	if modes > 1 {
		return Config{}, fmt.Errorf("flags -p, -int, -real, and -normal are mutually exclusive")
	}

	// -low and -high are shared with -real, so the integer mode has to
	// reject fractional bounds instead of silently truncating them.
	if cfg.Mode == ModeUniformInt {
		if cfg.Low != math.Trunc(cfg.Low) || cfg.High != math.Trunc(cfg.High) {
			return Config{}, fmt.Errorf("-low and -high must be whole numbers with -int")
		}
	}

	if cfg.Mode == ModeDice {
		specs, err := parseDiceSpecs(fs.Args())
		if err != nil {
			return Config{}, err
		}
		cfg.Dice = specs
	} else if len(fs.Args()) > 0 {
		return Config{}, fmt.Errorf("dice arguments are only valid without a mode flag")
	}

	return cfg, nil
}

// parseDiceSpecs parses positional NdM arguments, defaulting to one d6.
func parseDiceSpecs(args []string) ([]dice.Spec, error) {
	if len(args) == 0 {
		return []dice.Spec{{Sides: 6, Count: 1}}, nil
	}
	specs := make([]dice.Spec, 0, len(args))
	for _, arg := range args {
		spec, err := parseDiceSpec(arg)
		if err != nil {
			return nil, err
		}
		specs = append(specs, spec)
	}
	return specs, nil
}

// parseDiceSpec parses one dice pool such as "2d6" or "d20".
func parseDiceSpec(arg string) (dice.Spec, error) {
	countPart, sidesPart, found := strings.Cut(strings.ToLower(arg), "d")
	if !found || sidesPart == "" {
		return dice.Spec{}, fmt.Errorf("dice spec %q must look like 2d6 or d20", arg)
	}

	count := 1
	if countPart != "" {
		parsed, err := strconv.Atoi(countPart)
		if err != nil {
			return dice.Spec{}, fmt.Errorf("dice spec %q has an invalid count: %w", arg, err)
		}
		count = parsed
	}

	sides, err := strconv.Atoi(sidesPart)
	if err != nil {
		return dice.Spec{}, fmt.Errorf("dice spec %q has invalid sides: %w", arg, err)
	}

	return dice.Spec{Sides: sides, Count: count}, nil
}

// Run executes the roll command and writes results to out. CLI draws
// are not journaled.
func Run(ctx context.Context, cfg Config, out io.Writer) error {
	if out == nil {
		out = io.Discard
	}
	sampler := app.NewSampler(nil)

	switch cfg.Mode {
	case ModeDice:
		result, meta, err := sampler.RollDice(ctx, cfg.Dice, cfg.Seed)
		if err != nil {
			return err
		}
		for _, roll := range result.Rolls {
			fmt.Fprintf(out, "d%d: %s (total %d)\n", roll.Sides, joinInts(roll.Results), roll.Total)
		}
		fmt.Fprintf(out, "total: %d\n", result.Total)
		printMeta(out, meta)
		return nil

	case ModeProbability:
		values, meta, err := sampler.Probabilities(ctx, cfg.Count, cfg.Seed)
		if err != nil {
			return err
		}
		printFloats(out, values)
		printMeta(out, meta)
		return nil

	case ModeUniformInt:
		values, meta, err := sampler.UniformInts(ctx, app.UniformIntRequest{
			Low:   int64(cfg.Low),
			High:  int64(cfg.High),
			Count: cfg.Count,
			Seed:  cfg.Seed,
		})
		if err != nil {
			return err
		}
		for _, value := range values {
			fmt.Fprintf(out, "%d\n", value)
		}
		printMeta(out, meta)
		return nil

	case ModeUniformReal:
		values, meta, err := sampler.UniformReals(ctx, app.UniformRealRequest{
			Low:   cfg.Low,
			High:  cfg.High,
			Count: cfg.Count,
			Seed:  cfg.Seed,
		})
		if err != nil {
			return err
		}
		printFloats(out, values)
		printMeta(out, meta)
		return nil

	case ModeNormal:
		values, meta, err := sampler.Normals(ctx, app.NormalRequest{
			Mean:  cfg.Mean,
			Sigma: cfg.Sigma,
			Count: cfg.Count,
			Seed:  cfg.Seed,
		})
		if err != nil {
			return err
		}
		printFloats(out, values)
		printMeta(out, meta)
		return nil

	default:
		return fmt.Errorf("mode %q is not supported", cfg.Mode)
	}
}

func printMeta(out io.Writer, meta app.DrawMeta) {
	source := "server"
	if meta.SeedSource == storage.SeedSourceClient {
		source = "client"
	}
	fmt.Fprintf(out, "seed: %d (%s, %s)\n", meta.Seed, source, meta.Algorithm)
}

func printFloats(out io.Writer, values []float64) {
	for _, value := range values {
		fmt.Fprintf(out, "%g\n", value)
	}
}

func joinInts(values []int) string {
	parts := make([]string, len(values))
	for i, value := range values {
		parts[i] = strconv.Itoa(value)
	}
	return strings.Join(parts, " ")
}
