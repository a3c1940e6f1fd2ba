package domain

// Position is a point in canvas space
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Add returns the position shifted by offset
func (p Position) Add(offset Position) Position {
	return Position{X: p.X + offset.X, Y: p.Y + offset.Y}
}

// Sub returns the position shifted by the negated offset
func (p Position) Sub(offset Position) Position {
	return Position{X: p.X - offset.X, Y: p.Y - offset.Y}
}
