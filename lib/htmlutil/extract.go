package htmlutil

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// OrderedMap is a string to string map that remembers the order in which
// keys were first inserted.
type OrderedMap struct {
	keys   []string
	values map[string]string
}

func NewOrderedMap() *OrderedMap {
	return &OrderedMap{values: map[string]string{}}
}

// Set stores value under key, a repeated key overwrites the value but keeps
// its original position.
func (m *OrderedMap) Set(key, value string) {
	if _, exists := m.values[key]; !exists {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

func (m *OrderedMap) Get(key string) (string, bool) {
	value, ok := m.values[key]
	return value, ok
}

func (m *OrderedMap) Keys() []string {
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

func (m *OrderedMap) Len() int {
	return len(m.keys)
}

// Find returns the first pair, in insertion order, whose key satisfies match.
func (m *OrderedMap) Find(match func(key string) bool) (key, value string, ok bool) {
	for _, k := range m.keys {
		if match(k) {
			return k, m.values[k], true
		}
	}
	return "", "", false
}

// ExtractByIcon finds the first `.mdi.<iconClass>` icon and returns the text of
// the element that holds it. Returns nil when the icon or the text is missing.
func ExtractByIcon(doc *goquery.Document, iconClass string) *string {
	icon := doc.Find(fmt.Sprintf(".mdi.%s", iconClass)).First()
	if icon.Length() == 0 {
		return nil
	}
	parent := icon.Parent()
	if parent.Length() == 0 {
		return nil
	}
	text := Text(parent)
	if text == "" {
		return nil
	}
	return &text
}

// KeyValueRows reads a label/value table, rows with an empty key or value are
// skipped and the last duplicate key wins.
func KeyValueRows(doc *goquery.Document, rowSelector, keySelector, valueSelector string) *OrderedMap {
	out := NewOrderedMap()
	doc.Find(rowSelector).Each(func(_ int, row *goquery.Selection) {
		key := Text(row.Find(keySelector).First())
		value := Text(row.Find(valueSelector).First())
		if key == "" || value == "" {
			return
		}
		out.Set(key, value)
	})
	return out
}

// ExtractCsrfToken returns the value of the hidden `_token` input, falling back
// to the `csrf-token` meta tag.
func ExtractCsrfToken(doc *goquery.Document) *string {
	token := strings.TrimSpace(doc.Find(`input[name="_token"]`).First().AttrOr("value", ""))
	if token != "" {
		return &token
	}
	token = strings.TrimSpace(doc.Find(`meta[name="csrf-token"]`).First().AttrOr("content", ""))
	if token != "" {
		return &token
	}
	return nil
}
