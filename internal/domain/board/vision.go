package board

// Vision answers "is this position visible to the viewer" for any snapshot of
// the same game. It only captures who is looking; the positions it reveals
// always come from the map passed in.
type Vision struct {
	viewer PlayerID
	team   int
}

func NewVision(m MapData, viewer PlayerID) Vision {
	return Vision{viewer: viewer, team: m.TeamOf(viewer)}
}

func (v Vision) Viewer() PlayerID {
	return v.viewer
}

func (v Vision) IsSpectator() bool {
	return v.viewer == Neutral || v.team == 0
}

func (v Vision) IsVisible(m MapData, pos Vector) bool {
	if !m.config.Fog {
		return true
	}
	if v.IsSpectator() || !m.Contains(pos) {
		return false
	}
	for p, u := range m.units {
		if m.TeamOf(u.Player) != v.team {
			continue
		}
		if p.Distance(pos) <= u.Info().Vision {
			return true
		}
	}
	for p, b := range m.buildings {
		if m.TeamOf(b.Player) != v.team {
			continue
		}
		if p.Distance(pos) <= b.Info().Vision {
			return true
		}
	}
	return false
}

// VisiblePositions lists visible positions in scan order.
func (v Vision) VisiblePositions(m MapData) []Vector {
	out := make([]Vector, 0)
	for _, pos := range m.Positions() {
		if v.IsVisible(m, pos) {
			out = append(out, pos)
		}
	}
	return out
}

// Apply returns the map as the viewer is allowed to see it: units outside
// vision are removed and buildings outside vision lose their owner and label.
func (v Vision) Apply(m MapData) MapData {
	if !m.config.Fog {
		return m
	}
	out := m
	for _, e := range m.Units() {
		if !v.IsVisible(m, e.Pos) {
			out = out.WithoutUnit(e.Pos)
		}
	}
	for _, e := range m.Buildings() {
		if !v.IsVisible(m, e.Pos) {
			b := e.Building
			b.Player = Neutral
			b.Label = 0
			out = out.WithBuilding(e.Pos, b)
		}
	}
	return out
}
