// Package render turns dataset and view-state snapshots into scenes of
// draw primitives. Renderers here are pure functions of their inputs and
// know nothing about any drawing surface; the TUI, SVG, and chart-export
// hosts each consume the same scenes.
package render

// Anchor positions text relative to its point.
type Anchor int

const (
	AnchorStart Anchor = iota
	AnchorMiddle
	AnchorEnd
)

// Primitive is one drawable element of a scene.
type Primitive interface {
	primitive()
}

// Path is a polygon or polyline in scene coordinates. Rings beyond the
// first are holes, per GeoJSON winding conventions.
type Path struct {
	Fill   string
	Stroke string
	Name   string
	Rings  [][][2]float64
	Width  float64
	Closed bool
	Dashed bool
}

// Line is a straight segment.
type Line struct {
	Stroke string
	X1     float64
	Y1     float64
	X2     float64
	Y2     float64
	Width  float64
	Dashed bool
}

// Circle is a filled dot, used for scatter points.
type Circle struct {
	Fill   string
	Stroke string
	Name   string
	X      float64
	Y      float64
	R      float64
}

// Rect is an axis-aligned rectangle, used for bars and legend swatches.
type Rect struct {
	Fill   string
	Stroke string
	Name   string
	X      float64
	Y      float64
	W      float64
	H      float64
}

// Text is a label anchored at (X, Y).
type Text struct {
	S      string
	Fill   string
	X      float64
	Y      float64
	Size   float64
	Anchor Anchor
}

func (Path) primitive()   {}
func (Line) primitive()   {}
func (Circle) primitive() {}
func (Rect) primitive()   {}
func (Text) primitive()   {}

// Scene is a complete, ordered rendering of one view at one size.
// Redrawing replaces the whole scene; primitives are never patched.
type Scene struct {
	Items  []Primitive
	Width  float64
	Height float64
}

func (s *Scene) add(p Primitive) {
	s.Items = append(s.Items, p)
}

// Message renders a centered literal message, used when a view has no
// valid records to draw.
func Message(width, height float64, msg string) Scene {
	scene := Scene{Width: width, Height: height}
	scene.add(Text{
		X:      width / 2,
		Y:      height / 2,
		S:      msg,
		Size:   14,
		Fill:   colorMuted,
		Anchor: AnchorMiddle,
	})
	return scene
}
