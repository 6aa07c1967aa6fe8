package main

import (
	"fmt"
	"os"
)

// UpdatePagesCommand specifies options for the update-pages subcommand.
type UpdatePagesCommand struct {
	SkipStats bool `long:"skip-stats" description:"Render from the existing mapping files without running the statistics scripts."`
	SkipPush  bool `long:"skip-push" description:"Do not copy images and pages to the dashboard host."`
}

// RenderCommand specifies options for the render subcommand.
type RenderCommand struct {
	// nothing yet
}

var updatePagesCommand UpdatePagesCommand
var renderCommand RenderCommand

func (x *UpdatePagesCommand) Execute(args []string) error {
	jobs, err := NewDefaultJobs()
	if err != nil {
		return err
	}

	results, err := jobs.UpdatePages(rootContext, UpdateOptions{
		SkipStats: updatePagesCommand.SkipStats,
		SkipPush:  updatePagesCommand.SkipPush,
	})
	if err != nil {
		return err
	}

	return reportResults(results)
}

func (x *RenderCommand) Execute(args []string) error {
	jobs, err := NewDefaultJobs()
	if err != nil {
		return err
	}

	results, err := jobs.RenderPages()
	if err != nil {
		return err
	}

	return reportResults(results)
}

func reportResults(results []Result) error {
	WriteSummary(os.Stdout, results)
	if failed := countFailures(results); failed > 0 {
		return fmt.Errorf("%d of %d pages failed", failed, len(results))
	}
	return nil
}

func init() {
	_, err := parser.AddCommand("update-pages",
		"Regenerate statistics, render every page and publish the dashboard.",
		"",
		&updatePagesCommand)
	if err != nil {
		fmt.Println(err)
	}

	_, err = parser.AddCommand("render",
		"Render every page from its template and mapping.",
		"",
		&renderCommand)
	if err != nil {
		fmt.Println(err)
	}
}
