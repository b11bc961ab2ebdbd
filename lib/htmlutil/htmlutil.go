package htmlutil

import (
	"bytes"
	"strings"

	"tgnvoda/lib/textutil"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

func GetText(node *html.Node) string {
	var buffer bytes.Buffer
	getTextRecursive(node, &buffer)
	return buffer.String()
}

func getTextRecursive(node *html.Node, buffer *bytes.Buffer) {
	if node == nil {
		return
	}
	if node.Type == html.TextNode {
		buffer.WriteString(node.Data)
		return
	}
	child := node.FirstChild
	for child != nil {
		getTextRecursive(child, buffer)
		child = child.NextSibling
	}
}

// Text returns the whitespace normalized text of the first node in sel,
// or "" if sel is empty.
func Text(sel *goquery.Selection) string {
	if sel == nil || sel.Length() == 0 {
		return ""
	}
	return textutil.NormalizeSpaces(GetText(sel.Get(0)))
}

// StripTags parses an html fragment and returns its trimmed text content.
func StripTags(fragment string) string {
	if !strings.Contains(fragment, "<") {
		return textutil.NormalizeSpaces(html.UnescapeString(fragment))
	}
	nodes, err := html.ParseFragment(strings.NewReader(fragment), &html.Node{
		Type:     html.ElementNode,
		Data:     "body",
		DataAtom: atom.Body,
	})
	if err != nil {
		return textutil.NormalizeSpaces(fragment)
	}

	var out strings.Builder
	for _, n := range nodes {
		out.WriteString(GetText(n))
	}
	return textutil.NormalizeSpaces(out.String())
}
