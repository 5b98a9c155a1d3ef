// Package config assembles the big64 run settings from a .env file, BIG64_*
// environment variables and command-line flags, in increasing priority.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/joho/godotenv"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/cocosip/go-image-big64/capability"
)

// FallbackMemory is the budget used when available memory cannot be read
const FallbackMemory = 8 << 30

// Config holds one run's settings
type Config struct {
	Dir           string
	MaxResolution int
	Jobs          int
	MemoryBudget  int64
	CapsFile      string
	ReportPath    string
	Formats       []string
	Verbose       bool
}

// Loader reads a Config
type Loader struct {
	useDotEnv bool
	lookupEnv func(string) (string, bool)
	available func() (uint64, error)
}

// NewLoader creates a loader that reads .env, the process environment and
// the host's available memory
func NewLoader() *Loader {
	return &Loader{
		useDotEnv: true,
		lookupEnv: os.LookupEnv,
		available: availableMemory,
	}
}

// WithDotEnv toggles loading variables from a .env file
func (l *Loader) WithDotEnv(enabled bool) *Loader {
	l.useDotEnv = enabled
	return l
}

// WithEnv replaces the environment lookup (useful for tests)
func (l *Loader) WithEnv(lookup func(string) (string, bool)) *Loader {
	if lookup != nil {
		l.lookupEnv = lookup
	}
	return l
}

// WithMemoryProbe replaces the available memory probe (useful for tests)
func (l *Loader) WithMemoryProbe(probe func() (uint64, error)) *Loader {
	if probe != nil {
		l.available = probe
	}
	return l
}

func availableMemory() (uint64, error) {
	vm, err := mem.VirtualMemory()
	if err != nil {
		return 0, err
	}
	return vm.Available, nil
}

// Load builds the Config. args excludes the program name.
func (l *Loader) Load(args []string) (*Config, error) {
	if l.useDotEnv {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load .env: %w", err)
		}
	}

	cfg := &Config{Dir: ".", Jobs: 1}
	if n, err := l.available(); err == nil && n > 0 {
		cfg.MemoryBudget = int64(n)
	} else {
		slog.Debug("available memory unknown, using fallback", "error", err, "budget", humanize.IBytes(FallbackMemory))
		cfg.MemoryBudget = FallbackMemory
	}

	if err := l.fromEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.parseFlags(args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (l *Loader) fromEnv(cfg *Config) error {
	env := func(key string) (string, bool) {
		v, ok := l.lookupEnv(key)
		return strings.TrimSpace(v), ok && strings.TrimSpace(v) != ""
	}
	if v, ok := env("BIG64_DIR"); ok {
		cfg.Dir = v
	}
	if v, ok := env("BIG64_MAX_RES"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("BIG64_MAX_RES: %w", err)
		}
		cfg.MaxResolution = n
	}
	if v, ok := env("BIG64_JOBS"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("BIG64_JOBS: %w", err)
		}
		cfg.Jobs = n
	}
	if v, ok := env("BIG64_MEM"); ok {
		n, err := humanize.ParseBytes(v)
		if err != nil {
			return fmt.Errorf("BIG64_MEM: %w", err)
		}
		cfg.MemoryBudget = int64(n)
	}
	if v, ok := env("BIG64_CAPS"); ok {
		cfg.CapsFile = v
	}
	if v, ok := env("BIG64_REPORT"); ok {
		cfg.ReportPath = v
	}
	if v, ok := env("BIG64_FORMATS"); ok {
		cfg.Formats = splitList(v)
	}
	if v, ok := env("BIG64_VERBOSE"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("BIG64_VERBOSE: %w", err)
		}
		cfg.Verbose = b
	}
	return nil
}

func (cfg *Config) parseFlags(args []string) error {
	flags := flag.NewFlagSet("big64", flag.ContinueOnError)
	flags.StringVar(&cfg.Dir, "dir", cfg.Dir, "directory for the temporary big.<ext> files")
	flags.IntVar(&cfg.MaxResolution, "max-res", cfg.MaxResolution, "cap on the probe side length (0 means 65536)")
	flags.IntVar(&cfg.Jobs, "jobs", cfg.Jobs, "formats tested at once")
	flags.Var((*byteSize)(&cfg.MemoryBudget), "mem", "memory budget, e.g. 16GiB")
	flags.StringVar(&cfg.CapsFile, "caps", cfg.CapsFile, "YAML file overriding format capabilities")
	flags.StringVar(&cfg.ReportPath, "report", cfg.ReportPath, "write a JSON report to this path")
	flags.Var((*listValue)(&cfg.Formats), "formats", "comma-separated formats to test (default all)")
	flags.BoolVar(&cfg.Verbose, "v", cfg.Verbose, "debug logging")
	if err := flags.Parse(args); err != nil {
		return err
	}
	if flags.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", flags.Args())
	}
	return nil
}

// Validate checks the settings
func (cfg *Config) Validate() error {
	switch {
	case cfg.MaxResolution != 0 && cfg.MaxResolution < capability.MinResolution:
		return fmt.Errorf("max resolution %d below %d", cfg.MaxResolution, capability.MinResolution)
	case cfg.Jobs < 1:
		return fmt.Errorf("jobs must be at least 1, got %d", cfg.Jobs)
	case cfg.MemoryBudget < 0:
		return fmt.Errorf("negative memory budget %d", cfg.MemoryBudget)
	}
	return nil
}

// Capabilities returns the built-in table, merged with CapsFile if set
func (cfg *Config) Capabilities() (*capability.Table, error) {
	table := capability.Default()
	if cfg.CapsFile == "" {
		return table, nil
	}
	override, err := capability.LoadFile(cfg.CapsFile)
	if err != nil {
		return nil, err
	}
	return table.Merge(override), nil
}

type byteSize int64

func (b *byteSize) String() string {
	if b == nil || *b <= 0 {
		return "0 B"
	}
	return humanize.IBytes(uint64(*b))
}

func (b *byteSize) Set(s string) error {
	n, err := humanize.ParseBytes(s)
	if err != nil {
		return err
	}
	*b = byteSize(n)
	return nil
}

type listValue []string

func (l *listValue) String() string {
	if l == nil {
		return ""
	}
	return strings.Join(*l, ",")
}

func (l *listValue) Set(s string) error {
	*l = splitList(s)
	return nil
}

func splitList(s string) []string {
	var out []string
	for part := range strings.SplitSeq(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
