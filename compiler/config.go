package compiler

import (
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/xyproto/env/v2"
)

// Convention selects how arguments reach a user-defined function.
type Convention int

const (
	// ConventionGlobal copies each argument into the callee's parameter
	// variable before the JSR.
	ConventionGlobal Convention = iota
	// ConventionStack pushes arguments on the software stack; the callee's
	// prologue copies them out and the caller drops them afterwards.
	ConventionStack
)

func (c Convention) String() string {
	if c == ConventionStack {
		return "stack"
	}
	return "global"
}

// ParseConvention accepts "global" or "stack".
func ParseConvention(s string) (Convention, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "global", "":
		return ConventionGlobal, nil
	case "stack":
		return ConventionStack, nil
	}
	return ConventionGlobal, fmt.Errorf("unknown calling convention %q (want global or stack)", s)
}

// Config holds compilation settings.
type Config struct {
	Dialect        string
	MemStart       uint16 // first byte of variable storage
	MemEnd         uint16 // last usable byte, inclusive
	Convention     Convention
	MaxInferPasses int
	Verbose        bool
	Logger         *log.Logger
}

const (
	DefaultMemStart       = 0xC000
	DefaultMemEnd         = 0xCFFF
	DefaultMaxInferPasses = 10
)

func DefaultConfig() Config {
	return Config{
		Dialect:        "acme",
		MemStart:       DefaultMemStart,
		MemEnd:         DefaultMemEnd,
		Convention:     ConventionGlobal,
		MaxInferPasses: DefaultMaxInferPasses,
		Logger:         log.New(os.Stderr, "py2c64: ", 0),
	}
}

// ConfigFromEnv starts from DefaultConfig and applies the PY2C64_*
// environment variables. The env cache is reloaded on every call, so
// variables set after the first call are seen.
func ConfigFromEnv() (Config, error) {
	env.Load()
	cfg := DefaultConfig()

	cfg.Dialect = env.Str("PY2C64_DIALECT", cfg.Dialect)
	if _, err := LookupDialect(cfg.Dialect); err != nil {
		return cfg, fmt.Errorf("PY2C64_DIALECT: %w", err)
	}

	if s := env.Str("PY2C64_MEM_START"); s != "" {
		addr, err := ParseAddress(s)
		if err != nil {
			return cfg, fmt.Errorf("PY2C64_MEM_START: %w", err)
		}
		cfg.MemStart = addr
	}
	if s := env.Str("PY2C64_MEM_END"); s != "" {
		addr, err := ParseAddress(s)
		if err != nil {
			return cfg, fmt.Errorf("PY2C64_MEM_END: %w", err)
		}
		cfg.MemEnd = addr
	}

	conv, err := ParseConvention(env.Str("PY2C64_CONVENTION", cfg.Convention.String()))
	if err != nil {
		return cfg, fmt.Errorf("PY2C64_CONVENTION: %w", err)
	}
	cfg.Convention = conv

	cfg.MaxInferPasses = env.Int("PY2C64_MAX_INFER", cfg.MaxInferPasses)
	cfg.Verbose = env.Bool("PY2C64_VERBOSE")

	return cfg, cfg.Validate()
}

// Validate checks that the settings are usable together.
func (c Config) Validate() error {
	if c.MemEnd < c.MemStart {
		return fmt.Errorf("memory end $%04X is below memory start $%04X", c.MemEnd, c.MemStart)
	}
	if c.MaxInferPasses < 1 {
		return fmt.Errorf("max inference passes must be at least 1, got %d", c.MaxInferPasses)
	}
	if _, err := LookupDialect(c.Dialect); err != nil {
		return err
	}
	return nil
}

// ParseAddress reads a 16-bit address written as $C000, 0xC000 or 49152.
func ParseAddress(s string) (uint16, error) {
	s = strings.TrimSpace(s)
	base := 10
	switch {
	case strings.HasPrefix(s, "$"):
		s, base = s[1:], 16
	case strings.HasPrefix(s, "0x"), strings.HasPrefix(s, "0X"):
		s, base = s[2:], 16
	}
	n, err := strconv.ParseUint(s, base, 16)
	if err != nil {
		return 0, fmt.Errorf("invalid address %q", s)
	}
	return uint16(n), nil
}

func (c Config) logger() *log.Logger {
	if c.Logger == nil {
		return log.New(io.Discard, "", 0)
	}
	return c.Logger
}
