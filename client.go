package liveframe

import (
	_ "embed"
	"fmt"
	"net/http"
	"sync"
)

// clientScriptName is the path suffix the handler serves the browser client
// from.
const clientScriptName = "liveframe-client.js"

//go:embed client/liveframe-client.js
var clientScript string

var (
	minifiedClient     string
	minifiedClientOnce sync.Once
)

// serveClientScript serves the embedded browser client, minified once.
func (h *Host) serveClientScript(w http.ResponseWriter, r *http.Request) {
	minifiedClientOnce.Do(func() {
		minifiedClient = minifyJS(clientScript)
	})

	w.Header().Set("Content-Type", "application/javascript")
	fmt.Fprint(w, minifiedClient)
}
