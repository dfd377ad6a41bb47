// internal/pipeline/render.go
package pipeline

import (
	"fmt"
	"time"
)

const imageTemplate = "# Search Results\n" +
	"---\n" +
	"> Showing results for `%s`.\n" +
	"\n" +
	"%s\n" +
	"\n" +
	"---\n" +
	"\n" +
	`<div style="display: flex; justify-content: space-between; color: gray; margin-top: -20px;">` + "\n" +
	"    <span>Powered by searchbot</span>\n" +
	"    <span>Answered in: %dms</span>\n" +
	"</div>\n"

const textTemplate = "Search results for \"%s\":\n\n%s\n\nPowered by searchbot · answered in %dms"

// BuildMarkdown assembles the document handed to the markdown-to-image
// service: heading, quoted keyword query, rewritten body, credit footer
// and elapsed wall-clock time.
func BuildMarkdown(keywords, body string, elapsed time.Duration) string {
	return fmt.Sprintf(imageTemplate, keywords, body, elapsed.Milliseconds())
}

// BuildText assembles the plain-text variant of the same template.
func BuildText(keywords, body string, elapsed time.Duration) string {
	return fmt.Sprintf(textTemplate, keywords, body, elapsed.Milliseconds())
}
