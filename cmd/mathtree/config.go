package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/zephyrtronium/mathtree"
)

const appName = "mathtree"

var envConfig = strings.ToUpper(appName) + "_CONFIG"

// Config is the contents of the configuration file.
type Config struct {
	// Prec is the precision of calculations in bits. Zero means float64.
	Prec *uint `yaml:"prec,omitempty"`
	// Format is the formatting verb for results.
	Format string `yaml:"format,omitempty"`
	// Vars maps variable names to expressions giving their values.
	Vars map[string]string `yaml:"vars,omitempty"`
}

// configPath finds the configuration file.
// Priority: --config > $MATHTREE_CONFIG > $XDG_CONFIG_HOME/mathtree > ~/.config/mathtree.
// The boolean result reports whether the path was named explicitly, in which
// case a missing file is an error.
func configPath(flag string) (string, bool, error) {
	if flag != "" {
		return flag, true, nil
	}
	if v := os.Getenv(envConfig); v != "" {
		return v, true, nil
	}
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return filepath.Join(v, appName, "config.yml"), false, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", false, fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".config", appName, "config.yml"), false, nil
}

// loadConfig reads a configuration file. If the file does not exist and must
// is false, the result is the empty configuration.
func loadConfig(path string, must bool) (*Config, error) {
	var cfg Config
	b, err := os.ReadFile(path)
	if err != nil {
		if !must && errors.Is(err, fs.ErrNotExist) {
			return &cfg, nil
		}
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}
	return &cfg, nil
}

// settings are the merged configuration and flags of a command.
type settings struct {
	prec   uint
	format string
	// ctx holds the variables. It evaluates at the configured precision, or
	// 64 bits when prec is zero.
	ctx *mathtree.Context
}

// given is a name=value variable definition.
type given struct {
	name, value string
}

func parseGiven(s string) (given, error) {
	d := strings.SplitN(s, "=", 2)
	if len(d) != 2 {
		return given{}, fmt.Errorf(`variable definitions must be "name=value", not %q`, s)
	}
	return given{strings.TrimSpace(d[0]), strings.TrimSpace(d[1])}, nil
}

// newSettings merges a configuration with flag values. Flag values win. Vars
// of the configuration are set in name order, then givens in order, so that a
// given may refer to configured variables.
func newSettings(cfg *Config, prec *uint, format string, givens []string) (*settings, error) {
	s := settings{prec: 64, format: "%g"}
	if cfg.Prec != nil {
		s.prec = *cfg.Prec
	}
	if prec != nil {
		s.prec = *prec
	}
	if cfg.Format != "" {
		s.format = cfg.Format
	}
	if format != "" {
		s.format = format
	}
	p := s.prec
	if p == 0 {
		p = 64
	}
	s.ctx = mathtree.NewContext(mathtree.Prec(p))

	names := make([]string, 0, len(cfg.Vars))
	for k := range cfg.Vars {
		names = append(names, k)
	}
	sort.Strings(names)
	defs := make([]given, 0, len(names)+len(givens))
	for _, k := range names {
		defs = append(defs, given{k, cfg.Vars[k]})
	}
	for _, g := range givens {
		d, err := parseGiven(g)
		if err != nil {
			return nil, err
		}
		defs = append(defs, d)
	}
	for _, d := range defs {
		if err := s.let(d.name, d.value); err != nil {
			return nil, err
		}
	}
	return &s, nil
}

// let evaluates src and binds the result to name.
func (s *settings) let(name, src string) error {
	a, err := mathtree.Parse(src)
	if err != nil {
		return fmt.Errorf("setting %s: %w", name, err)
	}
	r, err := a.EvalPrecise(s.ctx)
	if err != nil {
		return fmt.Errorf("setting %s: %w", name, err)
	}
	s.ctx.Set(name, r)
	return nil
}

// value evaluates a tree with the settings' variables.
func (s *settings) value(a *mathtree.Tree) (any, error) {
	if s.prec == 0 {
		v, err := a.Eval(s.ctx.Bindings())
		return v, err
	}
	r, err := a.EvalPrecise(s.ctx)
	if err != nil {
		return nil, err
	}
	return r, nil
}

// eval evaluates a tree and formats the result.
func (s *settings) eval(a *mathtree.Tree) (string, error) {
	v, err := s.value(a)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(s.format, v), nil
}
