package main

import (
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/kr/pretty"
)

// DateMarker is replaced with the render date. No current template uses it;
// it stays for output compatibility with older templates.
const DateMarker = "TODAYS_DATE_PYTHON"

const dateLayout = "2006-01-02"

// Substitute replaces every whole-word occurrence of each key with its
// value. Entries are applied one after another on the running result, so a
// value that spells a later key is substituted again by that later entry.
func Substitute(content string, m Mapping) string {
	for _, e := range m {
		if len(e.Key) == 0 {
			continue
		}
		content = replaceWord(content, e.Key, Stringify(e.Value))
	}
	return content
}

// replaceWord replaces key wherever it is not directly preceded or followed
// by a word character.
func replaceWord(content, key, value string) string {
	var b strings.Builder
	found := false
	start := 0

	for pos := 0; pos <= len(content)-len(key); {
		i := strings.Index(content[pos:], key)
		if i < 0 {
			break
		}
		i += pos
		end := i + len(key)

		if isWordBoundary(content, i, end) {
			if !found {
				b.Grow(len(content))
				found = true
			}
			b.WriteString(content[start:i])
			b.WriteString(value)
			start = end
			pos = end
			continue
		}

		_, size := utf8.DecodeRuneInString(content[i:])
		pos = i + size
	}

	if !found {
		return content
	}
	b.WriteString(content[start:])
	return b.String()
}

func isWordBoundary(content string, start, end int) bool {
	if start > 0 {
		r, _ := utf8.DecodeLastRuneInString(content[:start])
		if isWordRune(r) {
			return false
		}
	}
	if end < len(content) {
		r, _ := utf8.DecodeRuneInString(content[end:])
		if isWordRune(r) {
			return false
		}
	}
	return true
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsNumber(r)
}

// ReplaceDateMarker replaces every DateMarker with now as YYYY-MM-DD.
func ReplaceDateMarker(content string, now time.Time) string {
	return strings.Replace(content, DateMarker, now.Format(dateLayout), -1)
}

// Result is the outcome of rendering one page. StatsErr records a failed
// statistics run; the page was then rendered from its previous mapping and
// still counts as rendered.
type Result struct {
	Page     string
	Err      error
	StatsErr error
}

func (r Result) OK() bool {
	return r.Err == nil
}

type Renderer struct {
	System
	Logger
}

// RenderPage renders a single page from its template and mapping and writes
// the output atomically. Any failure is returned as a *PageError.
func (r Renderer) RenderPage(page Page) error {
	r.Debugf("rendering page: %# v", pretty.Formatter(page))

	template, err := r.ReadFile(page.Template)
	if err != nil {
		return pageError(page.Name, KindUpstream, err, "unable to read template")
	}

	data, err := r.ReadFile(page.Mapping)
	if err != nil {
		return pageError(page.Name, KindUpstream, err, "unable to read mapping")
	}

	mapping, err := ParseMapping(data)
	if err != nil {
		return pageError(page.Name, KindRender, err, "unable to parse mapping")
	}

	content := Substitute(string(template), mapping.Normalize())
	content = ReplaceDateMarker(content, r.Now())

	err = r.WriteFileAtomic(page.Output, []byte(content))
	if err != nil {
		return pageError(page.Name, KindWrite, err, "unable to write output")
	}

	return nil
}

// RenderAll renders pages in order. A failing page is logged and skipped;
// it never prevents the remaining pages from rendering.
func (r Renderer) RenderAll(pages []Page) []Result {
	results := make([]Result, 0, len(pages))
	date := r.Now().Format(dateLayout)

	for _, page := range pages {
		err := r.RenderPage(page)
		results = append(results, Result{Page: page.Name, Err: err})

		if err != nil {
			fields := map[string]interface{}{"page": page.Name}
			if pe, ok := err.(*PageError); ok {
				fields["kind"] = pe.Kind
			}
			r.WithFields(fields).Errorf("%s failed to update %s.html: %v", date, page.Name, err)
			continue
		}
		r.WithFields(map[string]interface{}{"page": page.Name}).Infof("%s updated %s.html", date, page.Name)
	}

	return results
}
