// Package verify runs a test suite against a generated web artifact in a
// disposable headless-browser context and reports behavioral equivalence.
package verify

import "strings"

// Artifact is the generated text bundle under verification.
type Artifact struct {
	// HTML is the markup, ideally a complete document.
	HTML string
	// CSS is optional stylesheet text, embedded when the markup carries
	// no style element of its own.
	CSS string
	// JS is optional script text, embedded when the markup carries no
	// script element of its own.
	JS string
}

// Bundle merges the pieces into one self-contained HTML document.
func (a Artifact) Bundle() string {
	html := a.HTML
	if a.CSS != "" && !strings.Contains(html, "<style>") {
		html = strings.Replace(html, "</head>", "<style>"+a.CSS+"</style></head>", 1)
	}
	if a.JS != "" && !strings.Contains(strings.SplitN(html, "</body>", 2)[0], "<script>") {
		html = strings.Replace(html, "</body>", "<script>"+a.JS+"</script></body>", 1)
	}
	return html
}
