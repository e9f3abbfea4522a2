package board

import "sort"

const MaxHealth = 100

// Label tags entities for objectives. Zero means unlabeled.
type Label int

type AmmoSlot struct {
	Weapon int
	Count  int
}

// Ammo is kept sorted by weapon id and never mutated in place.
type Ammo []AmmoSlot

func (a Ammo) Get(weapon int) (int, bool) {
	for _, s := range a {
		if s.Weapon == weapon {
			return s.Count, true
		}
	}
	return 0, false
}

func (a Ammo) Set(weapon, count int) Ammo {
	out := make(Ammo, 0, len(a)+1)
	replaced := false
	for _, s := range a {
		if s.Weapon == weapon {
			out = append(out, AmmoSlot{Weapon: weapon, Count: count})
			replaced = true
			continue
		}
		out = append(out, s)
	}
	if !replaced {
		out = append(out, AmmoSlot{Weapon: weapon, Count: count})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Weapon < out[j].Weapon })
	return out
}

func (a Ammo) Equal(o Ammo) bool {
	if len(a) != len(o) {
		return false
	}
	for i := range a {
		if a[i] != o[i] {
			return false
		}
	}
	return true
}

type Unit struct {
	ID        int
	Player    PlayerID
	Health    int
	Ammo      Ammo
	Fuel      int
	Shield    bool
	Label     Label
	Moved     bool
	Completed bool
}

func (u Unit) Info() UnitInfo {
	info, _ := LookupUnit(u.ID)
	return info
}

func (u Unit) Equal(o Unit) bool {
	return u.ID == o.ID &&
		u.Player == o.Player &&
		u.Health == o.Health &&
		u.Ammo.Equal(o.Ammo) &&
		u.Fuel == o.Fuel &&
		u.Shield == o.Shield &&
		u.Label == o.Label &&
		u.Moved == o.Moved &&
		u.Completed == o.Completed
}

// SameOccupant reports whether two units are the same kind of unit owned by
// the same player, ignoring transient state.
func (u Unit) SameOccupant(o Unit) bool {
	return u.ID == o.ID && u.Player == o.Player
}

// AttackWeapon picks the first weapon that can still fire at a target at the
// given distance.
func (u Unit) AttackWeapon(distance int) (WeaponInfo, bool) {
	for _, w := range u.Info().Weapons {
		if distance > w.Range {
			continue
		}
		if w.Limited() {
			if n, _ := u.Ammo.Get(w.ID); n <= 0 {
				continue
			}
		}
		return w, true
	}
	return WeaponInfo{}, false
}

func (u Unit) WithAmmo(a Ammo) Unit {
	u.Ammo = a
	return u
}

func (u Unit) WithPlayer(p PlayerID) Unit {
	u.Player = p
	return u
}

// Recover clears the per-turn flags.
func (u Unit) Recover() Unit {
	u.Moved = false
	u.Completed = false
	return u
}

func (u Unit) Complete() Unit {
	u.Moved = true
	u.Completed = true
	return u
}

// Refill restores every limited weapon to full ammo.
func (u Unit) Refill() Unit {
	for _, w := range u.Info().Weapons {
		if w.Limited() {
			u.Ammo = u.Ammo.Set(w.ID, w.Ammo)
		}
	}
	return u
}

func (u Unit) NeedsSupply() bool {
	for _, w := range u.Info().Weapons {
		if !w.Limited() {
			continue
		}
		if n, _ := u.Ammo.Get(w.ID); n < w.Ammo {
			return true
		}
	}
	return false
}

type Building struct {
	ID     int
	Player PlayerID
	Health int
	Label  Label
}

func (b Building) Info() BuildingInfo {
	info, _ := LookupBuilding(b.ID)
	return info
}

func (b Building) SameOccupant(o Building) bool {
	return b.ID == o.ID && b.Player == o.Player
}

// UnitEntry and BuildingEntry pair an entity with its position; listings are
// always in Vector.Less order.
type UnitEntry struct {
	Pos  Vector
	Unit Unit
}

type BuildingEntry struct {
	Pos      Vector
	Building Building
}
