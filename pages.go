package main

import (
	"fmt"

	"github.com/pkg/errors"
	yaml "gopkg.in/yaml.v2"
)

// DefaultPages is the dashboard, in publishing order.
var DefaultPages = []string{
	"index",
	"ai-support-trend",
	"ai-polarization",
	"research-questions",
	"about",
	"overall-predict-risk",
	"overall-predict-age",
	"overall-predict-trust",
	"overall-predict-sex",
	"americans-say-about-ai",
}

// Page describes where one dashboard page comes from and goes to.
type Page struct {
	Name     string
	Template string
	Mapping  string
	Output   string
	Script   string
}

type pagesFile struct {
	Pages []string `yaml:"pages"`
}

// PageNames returns the configured page list: the pages file when one is
// set, otherwise DefaultPages.
func PageNames(system System, settings *Settings) ([]string, error) {
	if len(settings.Pages.File) == 0 {
		return DefaultPages, nil
	}

	data, err := system.ReadFile(settings.Pages.File)
	if err != nil {
		return nil, errors.Wrap(err, "problems with reading pages file")
	}

	pf := pagesFile{}
	err = yaml.Unmarshal(data, &pf)
	if err != nil {
		return nil, errors.Wrap(err, "problems with unmarshal")
	}

	if len(pf.Pages) == 0 {
		return nil, fmt.Errorf("no pages listed in %s", settings.Pages.File)
	}

	seen := make(map[string]bool)
	for _, name := range pf.Pages {
		if len(name) == 0 {
			return nil, fmt.Errorf("empty page name in %s", settings.Pages.File)
		}
		if seen[name] {
			return nil, fmt.Errorf("page %s listed twice in %s", name, settings.Pages.File)
		}
		seen[name] = true
	}

	return pf.Pages, nil
}

// BuildPages resolves the path templates for each named page.
func BuildPages(settings *Settings, temp Templater, names []string) ([]Page, error) {
	pages := make([]Page, 0, len(names))

	for _, name := range names {
		temp.Page = name
		page := Page{Name: name}

		for _, field := range []struct {
			dest *string
			tmpl string
		}{
			{&page.Template, settings.Pages.Template},
			{&page.Mapping, settings.Pages.Mapping},
			{&page.Output, settings.Pages.Output},
			{&page.Script, settings.Pages.Script},
		} {
			val, err := temp.Template(field.tmpl)
			if err != nil {
				return nil, errors.Wrapf(err, "unable to template path %q", field.tmpl)
			}
			*field.dest = val
		}

		pages = append(pages, page)
	}

	return pages, nil
}

// LoadPages reads the page list and resolves every page's paths.
func LoadPages(system System, settings *Settings) ([]Page, error) {
	names, err := PageNames(system, settings)
	if err != nil {
		return nil, err
	}
	return BuildPages(settings, settings.Templater(system.Now()), names)
}
