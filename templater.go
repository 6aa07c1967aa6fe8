package main

import (
	"bytes"
	"text/template"
)

// Templater contains fields for each piece of data that can be templated
// into a configured path.
type Templater struct {
	Base     string
	Page     string
	Date     string
	Username string
}

// Template expands a configured path such as {{.Base}}/json/{{.Page}}.json.
// Referencing a field that does not exist is an error rather than an empty
// path segment.
func (temp Templater) Template(input string) (string, error) {
	tmpl, err := template.New("path").Option("missingkey=error").Parse(input)
	if err != nil {
		return "", err
	}
	var output bytes.Buffer

	err = tmpl.Execute(&output, temp)
	if err != nil {
		return "", err
	}

	return output.String(), nil
}
