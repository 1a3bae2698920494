package report

import (
	"strings"

	"texcheck/internal/format"
	"texcheck/internal/harness"
)

const htmlShell = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>texcheck report</title>
<style>
body { font-family: system-ui, sans-serif; margin: 2rem auto; max-width: 72rem; }
table { border-collapse: collapse; margin: 1rem 0; }
th, td { border: 1px solid #ccc; padding: 0.3rem 0.6rem; text-align: left; }
th { background: #f0f0f0; }
blockquote { color: #8a6d00; border-left: 3px solid #e0c060; padding-left: 0.8rem; }
</style>
</head>
<body id="report">
`

// RenderHTML renders the run as a standalone HTML page for the preview
// server. Tables come out of the same builders as the Markdown report.
func RenderHTML(res *harness.RunResult) string {
	body := Generate(res, format.HTML)

	var b strings.Builder
	b.WriteString(htmlShell)
	for _, line := range strings.Split(body, "\n") {
		switch {
		case strings.HasPrefix(line, "# "):
			b.WriteString("<h1>" + htmlEscape(strings.TrimPrefix(line, "# ")) + "</h1>\n")
		case strings.HasPrefix(line, "## "):
			b.WriteString("<h2>" + htmlEscape(strings.TrimPrefix(line, "## ")) + "</h2>\n")
		case strings.HasPrefix(line, "> "):
			b.WriteString("<blockquote>" + htmlEscape(strings.TrimPrefix(line, "> ")) + "</blockquote>\n")
		case strings.HasPrefix(line, "- "):
			b.WriteString("<p>" + htmlEscape(strings.TrimPrefix(line, "- ")) + "</p>\n")
		case strings.HasPrefix(line, "<"):
			// Table markup from the HTML-mode builder passes through as-is.
			b.WriteString(line + "\n")
		case strings.TrimSpace(line) == "":
		default:
			b.WriteString("<p>" + htmlEscape(line) + "</p>\n")
		}
	}
	b.WriteString("</body>\n</html>\n")
	return b.String()
}

var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
)

func htmlEscape(s string) string { return htmlEscaper.Replace(s) }
