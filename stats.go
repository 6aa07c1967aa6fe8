package main

import (
	"context"
	"fmt"
	"regexp"

	version "github.com/hashicorp/go-version"
	"github.com/pkg/errors"
)

var rVersionPattern = regexp.MustCompile(`version (\d+\.\d+(?:\.\d+)?)`)

// StatsRunner runs the per-page statistics scripts that produce the
// mapping files.
type StatsRunner struct {
	Logger
	Runner
	Command string
}

// Generate runs the page's script. Its output is logged at debug level.
func (sr StatsRunner) Generate(ctx context.Context, page Page) error {
	out, err := sr.RunCommand(ctx, nil, sr.Command, []string{page.Script})
	if err != nil {
		return errors.Wrapf(err, "attempted %s %s", sr.Command, page.Script)
	}
	sr.Debugf("%s output: %s", sr.Command, out)
	return nil
}

// GenerateAll runs every page's script in order. A failure is logged and
// the remaining scripts still run; the failed page then renders from
// whatever mapping is already on disk.
func (sr StatsRunner) GenerateAll(ctx context.Context, pages []Page) map[string]error {
	failures := make(map[string]error)
	for _, page := range pages {
		if err := sr.Generate(ctx, page); err != nil {
			sr.WithFields(map[string]interface{}{"page": page.Name}).Warnf("statistics failed: %v", err)
			failures[page.Name] = err
		}
	}
	return failures
}

// CheckVersion fails if the statistics engine is older than minimum.
func (sr StatsRunner) CheckVersion(ctx context.Context, minimum string) error {
	if len(minimum) == 0 {
		return nil
	}

	constraint, err := version.NewConstraint(">= " + minimum)
	if err != nil {
		return errors.Wrap(err, "invalid minimum statistics version")
	}

	out, err := sr.RunCommand(ctx, nil, sr.Command, []string{"--version"})
	if err != nil {
		return errors.Wrap(err, "unable to determine statistics engine version")
	}

	match := rVersionPattern.FindStringSubmatch(out)
	if match == nil {
		return fmt.Errorf("unrecognized version output: %q", out)
	}

	current, err := version.NewVersion(match[1])
	if err != nil {
		return errors.Wrap(err, "unable to parse statistics engine version")
	}

	if !constraint.Check(current) {
		return fmt.Errorf("%s %s is older than required %s", sr.Command, current, minimum)
	}

	sr.Debugf("%s version %s satisfies %s", sr.Command, current, constraint)
	return nil
}
