package board

import (
	"encoding/json"
	"fmt"

	"skirmish/internal/domain/tuple"
)

// PlainMap is the serializable form of MapData used across process
// boundaries and in storage.
type PlainMap struct {
	Size      [2]int        `json:"size"`
	Config    PlainConfig   `json:"config"`
	Players   []PlainPlayer `json:"players"`
	Current   PlayerID      `json:"current"`
	Round     int           `json:"round"`
	Units     tuple.Tuple   `json:"units,omitempty"`
	Buildings tuple.Tuple   `json:"buildings,omitempty"`
}

type PlainConfig struct {
	Fog        bool             `json:"fog,omitempty"`
	Biome      Biome            `json:"biome"`
	Objectives []PlainObjective `json:"objectives,omitempty"`
}

type PlainObjective struct {
	Type   ObjectiveType `json:"type"`
	Hidden bool          `json:"hidden,omitempty"`
	Labels []Label       `json:"labels,omitempty"`
}

type PlainPlayer struct {
	ID           PlayerID `json:"id"`
	Team         int      `json:"team"`
	Funds        int      `json:"funds"`
	Charge       int      `json:"charge,omitempty"`
	Skills       []Skill  `json:"skills,omitempty"`
	ActiveSkills []Skill  `json:"activeSkills,omitempty"`
	UserID       string   `json:"userId,omitempty"`
}

func (m MapData) ToPlain() PlainMap {
	out := PlainMap{
		Size:    [2]int{m.size.Width, m.size.Height},
		Current: m.current,
		Round:   m.round,
		Config: PlainConfig{
			Fog:   m.config.Fog,
			Biome: m.config.Biome,
		},
		Units:     EncodeUnits(m.Units()),
		Buildings: EncodeBuildings(m.Buildings()),
	}
	for _, o := range m.config.Objectives {
		out.Config.Objectives = append(out.Config.Objectives, PlainObjective{Type: o.Type, Hidden: o.Hidden, Labels: o.Labels})
	}
	for _, p := range m.players {
		out.Players = append(out.Players, PlainPlayer{
			ID:           p.ID,
			Team:         p.Team,
			Funds:        p.Funds,
			Charge:       p.Charge,
			Skills:       p.Skills,
			ActiveSkills: p.ActiveSkills,
			UserID:       p.UserID,
		})
	}
	return out
}

func FromPlain(p PlainMap) (MapData, error) {
	size := Size{Width: p.Size[0], Height: p.Size[1]}
	if size.Width <= 0 || size.Height <= 0 {
		return MapData{}, fmt.Errorf("plain map: invalid size %dx%d", size.Width, size.Height)
	}
	if !p.Config.Biome.Valid() {
		return MapData{}, fmt.Errorf("plain map: invalid biome %d", p.Config.Biome)
	}
	config := Config{Fog: p.Config.Fog, Biome: p.Config.Biome}
	for _, o := range p.Config.Objectives {
		config.Objectives = append(config.Objectives, Objective{Type: o.Type, Hidden: o.Hidden, Labels: o.Labels})
	}
	players := make([]Player, 0, len(p.Players))
	for _, pp := range p.Players {
		if pp.ID == Neutral {
			return MapData{}, fmt.Errorf("plain map: %w: player id 0 is reserved", ErrUnknownPlayer)
		}
		players = append(players, Player{
			ID:           pp.ID,
			Team:         pp.Team,
			Funds:        pp.Funds,
			Charge:       pp.Charge,
			Skills:       pp.Skills,
			ActiveSkills: pp.ActiveSkills,
			UserID:       pp.UserID,
		})
	}
	m := New(size, config, players)
	if p.Current != Neutral {
		if _, ok := m.Player(p.Current); !ok {
			return MapData{}, fmt.Errorf("plain map: %w: current %d", ErrUnknownPlayer, p.Current)
		}
		m.current = p.Current
	}
	if p.Round > 0 {
		m.round = p.Round
	}

	units, err := DecodeUnits(p.Units)
	if err != nil {
		return MapData{}, fmt.Errorf("plain map: %w", err)
	}
	for _, e := range units {
		if !size.Contains(e.Pos) {
			return MapData{}, fmt.Errorf("plain map: unit at %s: %w", e.Pos, ErrOutOfBounds)
		}
		m.units[e.Pos] = e.Unit
	}
	buildings, err := DecodeBuildings(p.Buildings)
	if err != nil {
		return MapData{}, fmt.Errorf("plain map: %w", err)
	}
	for _, e := range buildings {
		if !size.Contains(e.Pos) {
			return MapData{}, fmt.Errorf("plain map: building at %s: %w", e.Pos, ErrOutOfBounds)
		}
		m.buildings[e.Pos] = e.Building
	}
	return m, nil
}

func (m MapData) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.ToPlain())
}

func (m *MapData) UnmarshalJSON(b []byte) error {
	var p PlainMap
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	out, err := FromPlain(p)
	if err != nil {
		return err
	}
	*m = out
	return nil
}

func EncodeVector(v Vector) tuple.Tuple {
	return tuple.Tuple{v.X, v.Y}
}

func DecodeVector(t tuple.Tuple) (Vector, error) {
	r := tuple.NewReader(t)
	v := Vector{X: r.Int("x"), Y: r.Int("y")}
	return v, r.Err()
}

func EncodeUnit(u Unit) tuple.Tuple {
	return tuple.Tuple{
		u.ID,
		int(u.Player),
		u.Health,
		tuple.List(EncodeAmmo(u.Ammo)),
		u.Fuel,
		tuple.Bool(u.Shield),
		int(u.Label),
		tuple.Bool(u.Moved),
		tuple.Bool(u.Completed),
	}
}

func DecodeUnit(t tuple.Tuple) (Unit, error) {
	r := tuple.NewReader(t)
	u := Unit{
		ID:     r.Int("unit.id"),
		Player: PlayerID(r.Int("unit.player")),
		Health: r.Int("unit.health"),
	}
	u.Ammo = DecodeAmmo(r, "unit.ammo")
	u.Fuel = r.Int("unit.fuel")
	u.Shield = r.Bool("unit.shield")
	u.Label = Label(r.Int("unit.label"))
	u.Moved = r.Bool("unit.moved")
	u.Completed = r.Bool("unit.completed")
	if err := r.Err(); err != nil {
		return Unit{}, err
	}
	if _, ok := LookupUnit(u.ID); !ok {
		return Unit{}, &tuple.MalformedError{Field: "unit.id", Value: u.ID}
	}
	return u, nil
}

// DecodeAmmo reads an ammo list slot; nil reads as no ammo.
func DecodeAmmo(r *tuple.Reader, field string) Ammo {
	var out Ammo
	for _, raw := range r.List(field) {
		slot, ok := tuple.AsList(raw)
		if !ok {
			r.Fail(&tuple.MalformedError{Field: field, Value: raw})
			return nil
		}
		sr := tuple.NewReader(slot)
		w, c := sr.Int(field+".weapon"), sr.Int(field+".count")
		if err := sr.Err(); err != nil {
			r.Fail(err)
			return nil
		}
		out = out.Set(w, c)
	}
	return out
}

func EncodeAmmo(a Ammo) tuple.Tuple {
	var out tuple.Tuple
	for _, s := range a {
		out = append(out, tuple.Tuple{s.Weapon, s.Count})
	}
	return out
}

func EncodeBuilding(b Building) tuple.Tuple {
	return tuple.Tuple{b.ID, int(b.Player), b.Health, int(b.Label)}
}

func DecodeBuilding(t tuple.Tuple) (Building, error) {
	r := tuple.NewReader(t)
	b := Building{
		ID:     r.Int("building.id"),
		Player: PlayerID(r.Int("building.player")),
		Health: r.Int("building.health"),
		Label:  Label(r.Int("building.label")),
	}
	if err := r.Err(); err != nil {
		return Building{}, err
	}
	if _, ok := LookupBuilding(b.ID); !ok {
		return Building{}, &tuple.MalformedError{Field: "building.id", Value: b.ID}
	}
	return b, nil
}

// EncodeUnits produces [[x, y, unit], ...] or nil for an empty list.
func EncodeUnits(entries []UnitEntry) tuple.Tuple {
	if len(entries) == 0 {
		return nil
	}
	out := make(tuple.Tuple, 0, len(entries))
	for _, e := range entries {
		out = append(out, tuple.Tuple{e.Pos.X, e.Pos.Y, EncodeUnit(e.Unit)})
	}
	return out
}

func DecodeUnits(t tuple.Tuple) ([]UnitEntry, error) {
	if len(t) == 0 {
		return nil, nil
	}
	out := make([]UnitEntry, 0, len(t))
	for _, raw := range t {
		pos, body, err := decodeEntry(raw, "units")
		if err != nil {
			return nil, err
		}
		u, err := DecodeUnit(body)
		if err != nil {
			return nil, err
		}
		out = append(out, UnitEntry{Pos: pos, Unit: u})
	}
	return out, nil
}

func EncodeBuildings(entries []BuildingEntry) tuple.Tuple {
	if len(entries) == 0 {
		return nil
	}
	out := make(tuple.Tuple, 0, len(entries))
	for _, e := range entries {
		out = append(out, tuple.Tuple{e.Pos.X, e.Pos.Y, EncodeBuilding(e.Building)})
	}
	return out
}

func DecodeBuildings(t tuple.Tuple) ([]BuildingEntry, error) {
	if len(t) == 0 {
		return nil, nil
	}
	out := make([]BuildingEntry, 0, len(t))
	for _, raw := range t {
		pos, body, err := decodeEntry(raw, "buildings")
		if err != nil {
			return nil, err
		}
		b, err := DecodeBuilding(body)
		if err != nil {
			return nil, err
		}
		out = append(out, BuildingEntry{Pos: pos, Building: b})
	}
	return out, nil
}

func decodeEntry(raw any, field string) (Vector, tuple.Tuple, error) {
	entry, ok := tuple.AsList(raw)
	if !ok {
		return Vector{}, nil, &tuple.MalformedError{Field: field, Value: raw}
	}
	r := tuple.NewReader(entry)
	pos := Vector{X: r.Int(field + ".x"), Y: r.Int(field + ".y")}
	body := r.List(field + ".entity")
	if err := r.Err(); err != nil {
		return Vector{}, nil, err
	}
	if body == nil {
		return Vector{}, nil, &tuple.MalformedError{Field: field + ".entity", Value: nil}
	}
	return pos, body, nil
}
