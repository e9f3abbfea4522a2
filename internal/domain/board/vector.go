package board

import "fmt"

// Vector is a 1-based tile coordinate.
type Vector struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func Vec(x, y int) Vector {
	return Vector{X: x, Y: y}
}

func (v Vector) String() string {
	return fmt.Sprintf("%d,%d", v.X, v.Y)
}

func (v Vector) Distance(o Vector) int {
	return abs(v.X-o.X) + abs(v.Y-o.Y)
}

func (v Vector) Adjacent() []Vector {
	return []Vector{
		{X: v.X, Y: v.Y - 1},
		{X: v.X + 1, Y: v.Y},
		{X: v.X, Y: v.Y + 1},
		{X: v.X - 1, Y: v.Y},
	}
}

// Less orders vectors row by row, which is the scan order used everywhere a
// deterministic listing of positions is needed.
func (v Vector) Less(o Vector) bool {
	if v.Y != o.Y {
		return v.Y < o.Y
	}
	return v.X < o.X
}

type Direction uint8

const (
	DirectionUp Direction = iota
	DirectionRight
	DirectionDown
	DirectionLeft
)

func (d Direction) String() string {
	switch d {
	case DirectionUp:
		return "up"
	case DirectionRight:
		return "right"
	case DirectionDown:
		return "down"
	case DirectionLeft:
		return "left"
	default:
		return "unknown"
	}
}

func (d Direction) Opposite() Direction {
	return (d + 2) % 4
}

// AttackDirection returns the direction the attacker faces and the direction
// the hit travels away from the target.
func AttackDirection(from, to Vector) [2]Direction {
	dx := to.X - from.X
	dy := to.Y - from.Y
	var d Direction
	switch {
	case abs(dx) >= abs(dy) && dx > 0:
		d = DirectionRight
	case abs(dx) >= abs(dy) && dx < 0:
		d = DirectionLeft
	case dy < 0:
		d = DirectionUp
	default:
		d = DirectionDown
	}
	return [2]Direction{d, d.Opposite()}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
