package board

import "sort"

type WeaponInfo struct {
	ID     int
	Name   string
	Damage int
	Ammo   int
	// Range is the maximum Manhattan distance the weapon reaches.
	Range int
}

type UnitInfo struct {
	ID      int
	Name    string
	Cost    int
	Vision  int
	Radius  int
	Fuel    int
	Capture bool
	Weapons []WeaponInfo
}

type BuildingInfo struct {
	ID         int
	Name       string
	Defense    int
	Vision     int
	Income     bool
	CanCreate  bool
	Purchasing bool
}

const (
	UnitSmallTank = 1
	UnitInfantry  = 2
	UnitPioneer   = 3
	UnitArtillery = 4
)

const (
	BuildingHQ      = 1
	BuildingHouse   = 2
	BuildingFactory = 3
	BuildingBar     = 4
)

var unitCatalog = map[int]UnitInfo{
	UnitSmallTank: {
		ID: UnitSmallTank, Name: "Small Tank", Cost: 250, Vision: 2, Radius: 4, Fuel: 40,
		Weapons: []WeaponInfo{{ID: 1, Name: "Cannon", Damage: 40, Ammo: 7, Range: 1}},
	},
	UnitInfantry: {
		ID: UnitInfantry, Name: "Infantry", Cost: 150, Vision: 2, Radius: 3, Fuel: 50, Capture: true,
		Weapons: []WeaponInfo{{ID: 2, Name: "Rifle", Damage: 25, Ammo: 0, Range: 1}},
	},
	UnitPioneer: {
		ID: UnitPioneer, Name: "Pioneer", Cost: 100, Vision: 2, Radius: 4, Fuel: 40, Capture: true,
	},
	UnitArtillery: {
		ID: UnitArtillery, Name: "Artillery", Cost: 300, Vision: 1, Radius: 3, Fuel: 30,
		Weapons: []WeaponInfo{{ID: 3, Name: "Howitzer", Damage: 45, Ammo: 5, Range: 3}},
	},
}

var buildingCatalog = map[int]BuildingInfo{
	BuildingHQ:      {ID: BuildingHQ, Name: "HQ", Defense: 20, Vision: 2, Income: true, CanCreate: true, Purchasing: true},
	BuildingHouse:   {ID: BuildingHouse, Name: "House", Defense: 10, Vision: 1, Income: true},
	BuildingFactory: {ID: BuildingFactory, Name: "Factory", Defense: 10, Vision: 1, Income: true, CanCreate: true},
	BuildingBar:     {ID: BuildingBar, Name: "Bar", Defense: 5, Vision: 1, Purchasing: true},
}

func LookupUnit(id int) (UnitInfo, bool) {
	info, ok := unitCatalog[id]
	return info, ok
}

func LookupBuilding(id int) (BuildingInfo, bool) {
	info, ok := buildingCatalog[id]
	return info, ok
}

func UnitIDs() []int {
	out := make([]int, 0, len(unitCatalog))
	for id := range unitCatalog {
		out = append(out, id)
	}
	sort.Ints(out)
	return out
}

// Weapon ammo of zero means the weapon is unlimited.
func (w WeaponInfo) Limited() bool {
	return w.Ammo > 0
}

// Create returns a fresh unit of this type owned by player.
func (i UnitInfo) Create(player PlayerID) Unit {
	u := Unit{ID: i.ID, Player: player, Health: MaxHealth, Fuel: i.Fuel}
	for _, w := range i.Weapons {
		if w.Limited() {
			u.Ammo = u.Ammo.Set(w.ID, w.Ammo)
		}
	}
	return u
}

func (i BuildingInfo) Create(player PlayerID) Building {
	return Building{ID: i.ID, Player: player, Health: MaxHealth}
}
