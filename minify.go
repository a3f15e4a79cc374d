package liveframe

import (
	"sync"

	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/html"
	"github.com/tdewolff/minify/v2/js"
)

var (
	minifier *minify.M
	once     sync.Once
)

// getMinifier returns a configured minifier (singleton)
func getMinifier() *minify.M {
	once.Do(func() {
		minifier = minify.New()
		minifier.AddFunc("text/html", html.Minify)
		minifier.AddFunc("application/javascript", js.Minify)
	})
	return minifier
}

// minifyHTML shrinks the rendered host page. A minification failure falls
// back to the original document rather than erroring out.
func minifyHTML(doc string) string {
	minified, err := getMinifier().String("text/html", doc)
	if err != nil {
		return doc
	}
	return minified
}

// minifyJS shrinks the embedded client script, falling back on failure.
func minifyJS(src string) string {
	minified, err := getMinifier().String("application/javascript", src)
	if err != nil {
		return src
	}
	return minified
}
