package board

import (
	"errors"
	"maps"
	"slices"
	"sort"
)

var (
	ErrUnknownPlayer = errors.New("unknown player")
	ErrOutOfBounds   = errors.New("position out of bounds")
)

type Size struct {
	Width  int
	Height int
}

func (s Size) Contains(v Vector) bool {
	return v.X >= 1 && v.Y >= 1 && v.X <= s.Width && v.Y <= s.Height
}

type Config struct {
	Fog        bool
	Biome      Biome
	Objectives []Objective
}

// MapData is an immutable snapshot. Every With* method returns a new value
// and leaves the receiver untouched, so snapshots can be shared freely.
type MapData struct {
	size      Size
	config    Config
	players   []Player
	current   PlayerID
	round     int
	units     map[Vector]Unit
	buildings map[Vector]Building
}

// New builds an empty map. The first player moves first.
func New(size Size, config Config, players []Player) MapData {
	m := MapData{
		size:      size,
		config:    config,
		players:   slices.Clone(players),
		round:     1,
		units:     map[Vector]Unit{},
		buildings: map[Vector]Building{},
	}
	if len(players) > 0 {
		m.current = players[0].ID
	}
	return m
}

func (m MapData) Size() Size                { return m.size }
func (m MapData) Config() Config            { return m.config }
func (m MapData) Round() int                { return m.round }
func (m MapData) CurrentPlayerID() PlayerID { return m.current }

func (m MapData) Players() []Player {
	return slices.Clone(m.players)
}

func (m MapData) Player(id PlayerID) (Player, bool) {
	for _, p := range m.players {
		if p.ID == id {
			return p, true
		}
	}
	return Player{}, false
}

func (m MapData) CurrentPlayer() Player {
	p, _ := m.Player(m.current)
	return p
}

// NextPlayer returns the player after id in turn order and whether the turn
// order wrapped around.
func (m MapData) NextPlayer(id PlayerID) (Player, bool) {
	for i, p := range m.players {
		if p.ID != id {
			continue
		}
		if i+1 < len(m.players) {
			return m.players[i+1], false
		}
		return m.players[0], true
	}
	return Player{}, false
}

func (m MapData) TeamOf(id PlayerID) int {
	p, ok := m.Player(id)
	if !ok {
		return 0
	}
	return p.Team
}

func (m MapData) IsOpponent(a, b PlayerID) bool {
	if a == Neutral || b == Neutral {
		return false
	}
	return m.TeamOf(a) != m.TeamOf(b)
}

func (m MapData) UnitAt(v Vector) (Unit, bool) {
	u, ok := m.units[v]
	return u, ok
}

func (m MapData) BuildingAt(v Vector) (Building, bool) {
	b, ok := m.buildings[v]
	return b, ok
}

func (m MapData) Units() []UnitEntry {
	out := make([]UnitEntry, 0, len(m.units))
	for v, u := range m.units {
		out = append(out, UnitEntry{Pos: v, Unit: u})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Pos.Less(out[j].Pos) })
	return out
}

func (m MapData) Buildings() []BuildingEntry {
	out := make([]BuildingEntry, 0, len(m.buildings))
	for v, b := range m.buildings {
		out = append(out, BuildingEntry{Pos: v, Building: b})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Pos.Less(out[j].Pos) })
	return out
}

func (m MapData) UnitsOf(id PlayerID) []UnitEntry {
	out := make([]UnitEntry, 0)
	for _, e := range m.Units() {
		if e.Unit.Player == id {
			out = append(out, e)
		}
	}
	return out
}

func (m MapData) TeamHasUnits(team int) bool {
	for _, u := range m.units {
		if m.TeamOf(u.Player) == team {
			return true
		}
	}
	return false
}

// Positions lists every tile of the map in scan order.
func (m MapData) Positions() []Vector {
	out := make([]Vector, 0, m.size.Width*m.size.Height)
	for y := 1; y <= m.size.Height; y++ {
		for x := 1; x <= m.size.Width; x++ {
			out = append(out, Vector{X: x, Y: y})
		}
	}
	return out
}

func (m MapData) Contains(v Vector) bool {
	return m.size.Contains(v)
}

func (m MapData) WithUnit(v Vector, u Unit) MapData {
	units := maps.Clone(m.units)
	if units == nil {
		units = map[Vector]Unit{}
	}
	units[v] = u
	m.units = units
	return m
}

func (m MapData) WithoutUnit(v Vector) MapData {
	if _, ok := m.units[v]; !ok {
		return m
	}
	units := maps.Clone(m.units)
	delete(units, v)
	m.units = units
	return m
}

// MapUnits rewrites every unit matched by fn in one copy.
func (m MapData) MapUnits(fn func(Vector, Unit) Unit) MapData {
	units := make(map[Vector]Unit, len(m.units))
	for v, u := range m.units {
		units[v] = fn(v, u)
	}
	m.units = units
	return m
}

func (m MapData) WithBuilding(v Vector, b Building) MapData {
	buildings := maps.Clone(m.buildings)
	if buildings == nil {
		buildings = map[Vector]Building{}
	}
	buildings[v] = b
	m.buildings = buildings
	return m
}

func (m MapData) WithoutBuilding(v Vector) MapData {
	if _, ok := m.buildings[v]; !ok {
		return m
	}
	buildings := maps.Clone(m.buildings)
	delete(buildings, v)
	m.buildings = buildings
	return m
}

func (m MapData) WithPlayer(p Player) MapData {
	players := slices.Clone(m.players)
	for i := range players {
		if players[i].ID == p.ID {
			players[i] = p
		}
	}
	m.players = players
	return m
}

func (m MapData) WithCurrentPlayer(id PlayerID) MapData {
	m.current = id
	return m
}

func (m MapData) WithRound(round int) MapData {
	m.round = round
	return m
}

func (m MapData) WithConfig(c Config) MapData {
	m.config = c
	return m
}

func (m MapData) Equal(o MapData) bool {
	if m.size != o.size || m.current != o.current || m.round != o.round {
		return false
	}
	if !configEqual(m.config, o.config) {
		return false
	}
	if !slices.EqualFunc(m.players, o.players, func(a, b Player) bool { return a.Equal(b) }) {
		return false
	}
	if !maps.EqualFunc(m.units, o.units, func(a, b Unit) bool { return a.Equal(b) }) {
		return false
	}
	return maps.Equal(m.buildings, o.buildings)
}

func configEqual(a, b Config) bool {
	if a.Fog != b.Fog || a.Biome != b.Biome {
		return false
	}
	return slices.EqualFunc(a.Objectives, b.Objectives, func(x, y Objective) bool {
		return x.Type == y.Type && x.Hidden == y.Hidden && slices.Equal(x.Labels, y.Labels)
	})
}
