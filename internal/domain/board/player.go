package board

import (
	"slices"
	"sort"
)

// PlayerID zero is the neutral player; as a viewer it is a spectator.
type PlayerID int

const Neutral PlayerID = 0

type Skill int

const (
	SkillAttackIncreaseMinor                     Skill = 1
	SkillDefenseIncreaseMinor                    Skill = 2
	SkillAttackIncreaseMajorDefenseDecreaseMajor Skill = 3
	SkillSupplyAll                               Skill = 12
	SkillShield                                  Skill = 38
)

type SkillInfo struct {
	Skill   Skill
	Price   int
	Charges int
	Attack  int
	Defense int
	Shield  bool
	Supply  bool
}

// Charge is the amount of charge that makes up one power charge.
const (
	Charge     = 1500
	MaxCharges = 10
)

var skillCatalog = map[Skill]SkillInfo{
	SkillAttackIncreaseMinor:                     {Skill: SkillAttackIncreaseMinor, Price: 300, Charges: 2, Attack: 10},
	SkillDefenseIncreaseMinor:                    {Skill: SkillDefenseIncreaseMinor, Price: 300, Charges: 2, Defense: 10},
	SkillAttackIncreaseMajorDefenseDecreaseMajor: {Skill: SkillAttackIncreaseMajorDefenseDecreaseMajor, Price: 800, Charges: 4, Attack: 30, Defense: -30},
	SkillSupplyAll:                               {Skill: SkillSupplyAll, Price: 500, Charges: 3, Supply: true},
	SkillShield:                                  {Skill: SkillShield, Price: 1000, Charges: 5, Shield: true},
}

func LookupSkill(s Skill) (SkillInfo, bool) {
	info, ok := skillCatalog[s]
	return info, ok
}

func (s Skill) Valid() bool {
	_, ok := skillCatalog[s]
	return ok
}

// Cost is the charge needed to activate the skill's power.
func (i SkillInfo) Cost() int {
	return i.Charges * Charge
}

type Crystal int

const (
	CrystalPower Crystal = iota
	CrystalHelp
	CrystalPhantom
	CrystalCommand
	CrystalMemory
)

func (c Crystal) Valid() bool {
	return c >= CrystalPower && c <= CrystalMemory
}

type Biome int

const (
	BiomeGrassland Biome = iota
	BiomeDesert
	BiomeSnow
	BiomeSwamp
	BiomeVolcano
)

func (b Biome) Valid() bool {
	return b >= BiomeGrassland && b <= BiomeVolcano
}

type Player struct {
	ID           PlayerID
	Team         int
	Funds        int
	Charge       int
	Skills       []Skill
	ActiveSkills []Skill
	UserID       string
}

// IsBot reports whether the player is driven by the game rather than a user.
func (p Player) IsBot() bool {
	return p.UserID == ""
}

func (p Player) HasSkill(s Skill) bool {
	return slices.Contains(p.Skills, s)
}

func (p Player) HasActiveSkill(s Skill) bool {
	return slices.Contains(p.ActiveSkills, s)
}

func (p Player) WithSkill(s Skill) Player {
	p.Skills = addSkill(p.Skills, s)
	return p
}

func (p Player) WithActiveSkill(s Skill) Player {
	p.ActiveSkills = addSkill(p.ActiveSkills, s)
	return p
}

func (p Player) WithoutActiveSkills() Player {
	p.ActiveSkills = nil
	return p
}

func (p Player) Equal(o Player) bool {
	return p.ID == o.ID &&
		p.Team == o.Team &&
		p.Funds == o.Funds &&
		p.Charge == o.Charge &&
		slices.Equal(p.Skills, o.Skills) &&
		slices.Equal(p.ActiveSkills, o.ActiveSkills) &&
		p.UserID == o.UserID
}

func addSkill(in []Skill, s Skill) []Skill {
	if slices.Contains(in, s) {
		return in
	}
	out := append(slices.Clone(in), s)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
