// internal/citation/rewriter.go
package citation

import (
	"fmt"
	"regexp"
	"strings"
)

// linkPattern matches markdown inline links [text](url). It is deliberately
// conservative: nested brackets in the display text and parentheses or
// whitespace inside the URL are out of scope, since inputs are
// model-generated with constrained link syntax.
var linkPattern = regexp.MustCompile(`\[([^\[\]]+)\]\(([^()\s]+)\)`)

// Markers in the image-rendering encoding: underlined display text followed
// by an escaped bracketed index wrapped in an inert mailto link, which the
// markdown-to-image service renders as a superscript-style citation.
var (
	markerPattern    = regexp.MustCompile(`<u>(.*?)</u>\[\\\[(\d+)\\\]\]\(mailto:blank@example\.org\)`)
	referencePattern = regexp.MustCompile(`\\\[(\d+)\\\]: `)
)

// RewriteOutput is the result of rewriting inline links into indexed
// citation markers. Links is unique and insertion-ordered; every marker
// index in Body is in [1, len(Links)].
type RewriteOutput struct {
	Body  string
	Links []string
}

// Rewrite scans the answer left to right, replacing each inline markdown
// link with a citation marker. Two links to the same URL share one index,
// assigned at first sight.
func Rewrite(answer string) *RewriteOutput {
	var links []string
	indexByURL := make(map[string]int)

	body := linkPattern.ReplaceAllStringFunc(answer, func(match string) string {
		groups := linkPattern.FindStringSubmatch(match)
		text, link := groups[1], groups[2]

		idx, seen := indexByURL[link]
		if !seen {
			links = append(links, link)
			idx = len(links)
			indexByURL[link] = idx
		}

		return fmt.Sprintf(`<u>%s</u>[\[%d\]](mailto:blank@example.org)`, text, idx)
	})

	return &RewriteOutput{Body: body, Links: links}
}

// References formats the trailing reference list in index order, one
// escaped "[n]: url" line per link.
func (r *RewriteOutput) References() string {
	var sb strings.Builder
	for i, link := range r.Links {
		fmt.Fprintf(&sb, `\[%d\]: %s`+"\n", i+1, link)
	}
	return sb.String()
}

// ImageMarkdown returns the rewritten body plus the reference list in the
// encoding expected by the markdown-to-image service.
func (r *RewriteOutput) ImageMarkdown() string {
	if len(r.Links) == 0 {
		return r.Body
	}
	return r.Body + "\n\n" + r.References()
}

// PlainText converts the image-encoded output into the simpler inline form
// used for raw text transport: markers become "text [n]" and the reference
// lines lose their escaping.
func (r *RewriteOutput) PlainText() string {
	out := markerPattern.ReplaceAllString(r.ImageMarkdown(), "$1 [$2]")
	out = referencePattern.ReplaceAllString(out, "[$1]: ")
	return out
}
