package main

import "fmt"

// PagesCommand specifies options for the pages subcommand.
type PagesCommand struct {
	// nothing yet
}

var pagesCommand PagesCommand

// Listing pages
func (x *PagesCommand) Execute(args []string) error {
	jobs, err := NewDefaultJobs()
	if err != nil {
		return err
	}

	return runPages(jobs.System, jobs.Settings)
}

func runPages(system System, settings *Settings) error {
	pages, err := LoadPages(system, settings)
	if err != nil {
		return err
	}

	for _, page := range pages {
		system.Stdoutf("%s:\n template: %s\n mapping: %s\n output: %s\n script: %s\n",
			page.Name, page.Template, page.Mapping, page.Output, page.Script)
	}
	return nil
}

func init() {
	_, err := parser.AddCommand("pages",
		"List dashboard pages.",
		"",
		&pagesCommand)

	if err != nil {
		fmt.Println(err)
	}
}
