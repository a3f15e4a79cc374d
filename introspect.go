package liveframe

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// bodyElementCount parses a snapshot of the embedded document and counts
// the element children of its body. This is the secondary content check
// behind success classification: a load that signaled success but rendered
// zero elements is treated like a transient failure.
//
// An error means introspection itself failed, which callers fold into
// success the same way a cross-origin access violation is.
func bodyElementCount(snapshot string) (int, error) {
	doc, err := html.Parse(strings.NewReader(snapshot))
	if err != nil {
		return 0, fmt.Errorf("failed to parse snapshot: %w", err)
	}

	body := findBody(doc)
	if body == nil {
		return 0, fmt.Errorf("snapshot has no body")
	}

	count := 0
	for child := body.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == html.ElementNode {
			count++
		}
	}
	return count, nil
}

// findBody walks the parsed tree for the body element. html.Parse
// synthesizes one for any input, so this only misses on pathological trees.
func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "body" {
		return n
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if body := findBody(child); body != nil {
			return body
		}
	}
	return nil
}
