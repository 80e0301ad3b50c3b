package doc

import (
	"strings"

	"github.com/aymerick/douceur/css"
	"github.com/aymerick/douceur/parser"
	"golang.org/x/net/html"
)

func declarations(n *html.Node) []*css.Declaration {
	raw, ok := Attr(n, "style")
	if !ok || strings.TrimSpace(raw) == "" {
		return nil
	}
	decls, err := parser.ParseDeclarations(raw)
	if err != nil {
		return nil
	}
	return decls
}

// Style returns the lower-cased value of an inline style property on n.
func Style(n *html.Node, prop string) string {
	if n == nil || n.Type != html.ElementNode {
		return ""
	}
	val := ""
	for _, d := range declarations(n) {
		if strings.EqualFold(d.Property, prop) {
			val = strings.ToLower(strings.TrimSpace(d.Value))
		}
	}
	return val
}

// SetStyle sets an inline style property on n. An empty value removes it.
func SetStyle(n *html.Node, prop, val string) {
	decls := declarations(n)
	out := decls[:0]
	replaced := false
	for _, d := range decls {
		if strings.EqualFold(d.Property, prop) {
			if val == "" || replaced {
				continue
			}
			d.Value = val
			replaced = true
		}
		out = append(out, d)
	}
	if !replaced && val != "" {
		out = append(out, &css.Declaration{Property: prop, Value: val})
	}
	if len(out) == 0 {
		RemoveAttr(n, "style")
		return
	}
	parts := make([]string, 0, len(out))
	for _, d := range out {
		parts = append(parts, d.Property+": "+d.Value+";")
	}
	SetAttr(n, "style", strings.Join(parts, " "))
}
