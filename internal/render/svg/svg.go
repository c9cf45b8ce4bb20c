// Package svg encodes render scenes as standalone SVG documents. It is
// one of the scene hosts; the renderers themselves know nothing about it.
package svg

import (
	"fmt"
	"strings"

	"github.com/Veraticus/geoscope/internal/render"
)

// Encode serializes a scene into an SVG document.
func Encode(scene render.Scene) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">`,
		scene.Width, scene.Height, scene.Width, scene.Height)
	b.WriteString("\n")

	for _, item := range scene.Items {
		switch p := item.(type) {
		case render.Path:
			writePath(&b, p)
		case render.Line:
			fmt.Fprintf(&b, `<line x1="%s" y1="%s" x2="%s" y2="%s" stroke="%s" stroke-width="%s"%s/>`,
				coord(p.X1), coord(p.Y1), coord(p.X2), coord(p.Y2), p.Stroke, coord(p.Width), dash(p.Dashed))
			b.WriteString("\n")
		case render.Circle:
			fmt.Fprintf(&b, `<circle cx="%s" cy="%s" r="%s" fill="%s"`, coord(p.X), coord(p.Y), coord(p.R), p.Fill)
			if p.Stroke != "" {
				fmt.Fprintf(&b, ` stroke="%s"`, p.Stroke)
			}
			if p.Name != "" {
				fmt.Fprintf(&b, ` data-name="%s"`, escape(p.Name))
			}
			b.WriteString("/>\n")
		case render.Rect:
			fmt.Fprintf(&b, `<rect x="%s" y="%s" width="%s" height="%s" fill="%s"`,
				coord(p.X), coord(p.Y), coord(p.W), coord(p.H), p.Fill)
			if p.Stroke != "" {
				fmt.Fprintf(&b, ` stroke="%s"`, p.Stroke)
			}
			if p.Name != "" {
				fmt.Fprintf(&b, ` data-name="%s"`, escape(p.Name))
			}
			b.WriteString("/>\n")
		case render.Text:
			fmt.Fprintf(&b, `<text x="%s" y="%s" font-size="%s" fill="%s" text-anchor="%s" font-family="sans-serif">%s</text>`,
				coord(p.X), coord(p.Y), coord(p.Size), p.Fill, anchor(p.Anchor), escape(p.S))
			b.WriteString("\n")
		}
	}

	b.WriteString("</svg>\n")
	return []byte(b.String())
}

func writePath(b *strings.Builder, p render.Path) {
	var d strings.Builder
	for _, ring := range p.Rings {
		for i, pt := range ring {
			if i == 0 {
				fmt.Fprintf(&d, "M%s %s", coord(pt[0]), coord(pt[1]))
			} else {
				fmt.Fprintf(&d, "L%s %s", coord(pt[0]), coord(pt[1]))
			}
		}
		if p.Closed {
			d.WriteString("Z")
		}
	}

	fill := p.Fill
	if fill == "" {
		fill = "none"
	}
	fmt.Fprintf(b, `<path d="%s" fill="%s" fill-rule="evenodd"`, d.String(), fill)
	if p.Stroke != "" {
		fmt.Fprintf(b, ` stroke="%s" stroke-width="%s"%s`, p.Stroke, coord(p.Width), dash(p.Dashed))
	}
	if p.Name != "" {
		fmt.Fprintf(b, ` data-name="%s"`, escape(p.Name))
	}
	b.WriteString("/>\n")
}

func coord(v float64) string {
	s := fmt.Sprintf("%.2f", v)
	s = strings.TrimRight(s, "0")
	return strings.TrimRight(s, ".")
}

func dash(dashed bool) string {
	if dashed {
		return ` stroke-dasharray="5,4"`
	}
	return ""
}

func anchor(a render.Anchor) string {
	switch a {
	case render.AnchorMiddle:
		return "middle"
	case render.AnchorEnd:
		return "end"
	default:
		return "start"
	}
}

func escape(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")
	return r.Replace(s)
}
