package board

// A single point on the canvas
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// One drawn segment with the rendering attributes in force when it was
// produced. Continuous pen motion arrives as many short strokes, so the
// history is a sequence of segments rather than whole gestures.
type Stroke struct {
	Points    []Point `json:"points"`
	Color     string  `json:"color"`
	LineWidth float64 `json:"lineWidth"`
}

// Strokes with fewer than two points carry no visual information and are
// dropped before they reach the log.
func (s Stroke) Valid() bool {
	return len(s.Points) >= 2
}
