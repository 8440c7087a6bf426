// Package compose assembles the three source buffers into renderable and
// exportable HTML documents. Both entry points are pure functions of the
// buffer contents.
//
// The markup buffer is embedded verbatim and unescaped. That is a
// deliberate trust-the-author trade-off for a single-user local tool: the
// preview runs in a sandboxed frame, and escaping would break intentional
// markup/script interplay.
package compose

import (
	"fmt"
	"strings"
	"text/template"
)

// ExportFilename is the fixed download name for exported pens.
const ExportFilename = "penbox-export.html"

// errorTrapShim is injected ahead of the user's script in the preview
// artifact only. It catches otherwise-uncaught runtime errors (syntax
// errors, async callback errors) and paints them as an in-preview banner
// instead of letting the browser report them. Errors in the user's script
// never reach the hosting editor page.
const errorTrapShim = `(function () {
  function banner(message) {
    var el = document.getElementById("__penbox_error__");
    if (!el) {
      el = document.createElement("div");
      el.id = "__penbox_error__";
      el.style.cssText = "position:fixed;left:0;right:0;bottom:0;z-index:2147483647;" +
        "background:#7f1d1d;color:#fecaca;font:13px/1.5 monospace;" +
        "padding:8px 12px;white-space:pre-wrap;word-break:break-word;";
      document.body ? document.body.appendChild(el)
                    : document.documentElement.appendChild(el);
    }
    el.textContent = message;
  }
  window.addEventListener("error", function (e) {
    banner("Script error: " + (e.message || e.error || "unknown error"));
    e.preventDefault();
  });
  window.addEventListener("unhandledrejection", function (e) {
    banner("Unhandled rejection: " + (e.reason && e.reason.message ? e.reason.message : e.reason));
    e.preventDefault();
  });
})();`

// previewTemplate is the renderable artifact: style verbatim, markup
// verbatim in the body, error trap ahead of the user's script, and the
// user's script wrapped so a top-level throw cannot stop the rest of the
// document from rendering.
var previewTemplate = template.Must(template.New("preview").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<style>
{{.Style}}
</style>
</head>
<body>
{{.Markup}}
<script>
{{.Shim}}
</script>
<script>
try {
{{.Script}}
} catch (e) {
  window.dispatchEvent(new ErrorEvent("error", { message: e && e.message ? e.message : String(e), error: e }));
}
</script>
</body>
</html>
`))

// exportTemplate is the standalone artifact: full page boilerplate, no
// sandbox shim, meant to run as an ordinary page outside the tool.
var exportTemplate = template.Must(template.New("export").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>{{.Title}}</title>
<style>
{{.Style}}
</style>
</head>
<body>
{{.Markup}}
<script>
{{.Script}}
</script>
</body>
</html>
`))

// fallbackDocument is served when assembly itself fails. Distinct from
// errors inside the user's script, which the shim handles in-preview.
const fallbackDocument = `<!DOCTYPE html>
<html>
<head><meta charset="utf-8"></head>
<body><p>Preview unavailable: the document could not be assembled.</p></body>
</html>
`

// Compose builds the live preview document. It always returns a
// renderable artifact: when assembly fails the fallback page is returned
// together with the error so the caller can report it.
func Compose(markup, style, script string) (string, error) {
	var b strings.Builder
	err := previewTemplate.Execute(&b, struct {
		Markup, Style, Script, Shim string
	}{markup, style, script, errorTrapShim})
	if err != nil {
		return fallbackDocument, fmt.Errorf("compose preview: %w", err)
	}
	return b.String(), nil
}

// Export builds the standalone document for download. The three buffers
// are embedded verbatim, unwrapped by any shim.
func Export(markup, style, script string) (string, error) {
	var b strings.Builder
	err := exportTemplate.Execute(&b, struct {
		Title, Markup, Style, Script string
	}{"Penbox Export", markup, style, script})
	if err != nil {
		return "", fmt.Errorf("compose export: %w", err)
	}
	return b.String(), nil
}
