package render

import (
	"strings"

	"golang.org/x/text/width"
)

// textWidth estimates the rendered width of s in pixels. Average glyphs are
// taken as 0.6 of the font size; wide and fullwidth East Asian glyphs take a
// full em.
func textWidth(s string, fontSize int) float64 {
	var w float64
	for _, r := range s {
		switch width.LookupRune(r).Kind() {
		case width.EastAsianWide, width.EastAsianFullwidth:
			w += float64(fontSize)
		default:
			w += float64(fontSize) * 0.6
		}
	}
	return w
}

// fitText shortens s with an ellipsis until it fits maxWidth.
func fitText(s string, maxWidth float64, fontSize int) string {
	if textWidth(s, fontSize) <= maxWidth {
		return s
	}
	runes := []rune(s)
	for n := len(runes) - 1; n > 0; n-- {
		cut := strings.TrimRight(string(runes[:n]), " ,") + "…"
		if textWidth(cut, fontSize) <= maxWidth {
			return cut
		}
	}
	return "…"
}

// escapeXML escapes the XML special characters of s for use in SVG text
// and attribute values.
func escapeXML(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	s = strings.ReplaceAll(s, "\"", "&quot;")
	s = strings.ReplaceAll(s, "'", "&apos;")
	return s
}
