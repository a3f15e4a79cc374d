package liveframe

import (
	"bytes"
	"fmt"
	"html/template"
	"net/http"
)

// hostPageData feeds the built-in page template.
type hostPageData struct {
	Title  string
	Script string
	Frames []ViewportBinding
}

var hostPageTemplate = template.Must(template.New("host").Parse(hostPageHTML))

// The loader and status regions sit outside the wrapper so they stay
// visible while the wrapper is hidden during a (re)load.
const hostPageHTML = `<!DOCTYPE html>
<html>
<head>
	<meta charset="utf-8">
	<title>{{.Title}}</title>
	<style>
		.lf-wrap { position: relative; min-height: 120px; }
		.lf-frame { width: 100%; height: 100%; border: 0; }
		.lf-loader { display: none; font-style: italic; }
		.lf-status { color: #b00020; }
	</style>
</head>
<body>
{{range .Frames}}
	<section class="lf-slot">
		<div id="{{.Wrapper}}" class="lf-wrap">
			<iframe id="{{.Container}}" class="lf-frame" title="{{.Container}}"></iframe>
		</div>
		<div id="{{.Loader}}" class="lf-loader">Loading...</div>
		<div id="{{.Status}}" class="lf-status"></div>
	</section>
{{end}}
	<script src="{{.Script}}"></script>
	<script>LiveFrame.connect();</script>
</body>
</html>`

// servePage renders the built-in host page for the manifest, minified.
func (h *Host) servePage(w http.ResponseWriter, r *http.Request) {
	data := hostPageData{
		Title:  h.manifest.Title,
		Script: clientScriptName,
	}
	if data.Title == "" {
		data.Title = "liveframe"
	}
	for _, f := range h.manifest.Frames {
		data.Frames = append(data.Frames, f.Binding())
	}

	var buf bytes.Buffer
	if err := hostPageTemplate.Execute(&buf, data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, minifyHTML(buf.String()))
}
