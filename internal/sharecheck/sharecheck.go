// Package sharecheck stress-tests the ownership protocol of the value
// package. It drives random sequences of construct, copy, move, assign,
// release, clone and container operations over a fixed set of slots,
// mirrors every operation in a model of expected owner counts, and reports
// the first divergence between the model and what the values observe.
//
// Reference values are not exercised: they own nothing, so the protocol has
// nothing to say about them.
package sharecheck

import (
	"context"
	"fmt"
	"time"

	"github.com/caarlos0/env/v6"
)

// Config controls a checker run. Fields default from the environment so CI
// and local runs can be tuned without flag plumbing.
type Config struct {
	Seed  int64 `env:"KARINA_SHARECHECK_SEED"`
	Ops   int   `env:"KARINA_SHARECHECK_OPS" envDefault:"10000"`
	Slots int   `env:"KARINA_SHARECHECK_SLOTS" envDefault:"16"`
}

// FromEnv returns the configuration parsed from the KARINA_SHARECHECK_*
// variables, with defaults applied for unset ones.
func FromEnv() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("sharecheck: parse env: %w", err)
	}
	return cfg, nil
}

// A Report summarizes a checker run up to the point it stopped.
type Report struct {
	Seed        int64 // seed actually used, for reproduction
	Ops         int   // operations executed
	Constructed int   // payloads allocated
	Disposed    int   // payloads torn down
	MaxOwners   int   // highest owner count observed
	Live        int   // payloads still owned at the end (ownership cycles)
}

func (r Report) String() string {
	return fmt.Sprintf("seed %d: %d ops, %d payloads constructed, %d disposed, %d live, max %d owners",
		r.Seed, r.Ops, r.Constructed, r.Disposed, r.Live, r.MaxOwners)
}

// Run executes cfg.Ops random operations over cfg.Slots value slots,
// verifying every tracked payload's owner count after each one. A zero seed
// picks one from the clock; the seed used is reported either way. The
// context is checked periodically so long runs can be interrupted.
func Run(ctx context.Context, cfg Config) (Report, error) {
	if cfg.Ops <= 0 {
		return Report{}, fmt.Errorf("sharecheck: ops must be positive, got %d", cfg.Ops)
	}
	if cfg.Slots < 2 {
		return Report{}, fmt.Errorf("sharecheck: at least 2 slots are required, got %d", cfg.Slots)
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	e := newEngine(seed, cfg.Slots)
	for i := 0; i < cfg.Ops; i++ {
		if i%1024 == 0 && ctx.Err() != nil {
			return e.reportAt(seed, i), ctx.Err()
		}
		label, err := e.step()
		if err == nil {
			err = e.verify()
		}
		if err != nil {
			return e.reportAt(seed, i), fmt.Errorf("sharecheck: seed %d: op %d (%s): %w", seed, i, label, err)
		}
	}

	e.drain()
	if err := e.verify(); err != nil {
		return e.reportAt(seed, cfg.Ops), fmt.Errorf("sharecheck: seed %d: drain: %w", seed, err)
	}
	return e.reportAt(seed, cfg.Ops), nil
}
