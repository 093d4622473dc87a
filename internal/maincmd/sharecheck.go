package maincmd

import (
	"context"
	"fmt"

	"github.com/mna/mainer"
	"github.com/roy2220/Karina/internal/sharecheck"
)

func (c *Cmd) Sharecheck(ctx context.Context, stdio mainer.Stdio, _ []string) error {
	cfg, err := sharecheck.FromEnv()
	if err != nil {
		return printError(stdio, err)
	}
	// explicit flags win over the environment
	if c.flags["seed"] {
		cfg.Seed = c.Seed
	}
	if c.flags["ops"] {
		cfg.Ops = c.Ops
	}
	if c.flags["slots"] {
		cfg.Slots = c.Slots
	}

	rep, err := sharecheck.Run(ctx, cfg)
	if err != nil {
		return printError(stdio, err)
	}
	fmt.Fprintln(stdio.Stdout, rep)
	return nil
}
