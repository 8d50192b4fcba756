package actor

import (
	"encoding/json"
	"fmt"

	"github.com/jwebster45206/d20"
)

// Stats represents the six core ability scores.
type Stats struct {
	Strength     int `json:"strength"`
	Dexterity    int `json:"dexterity"`
	Constitution int `json:"constitution"`
	Intelligence int `json:"intelligence"`
	Wisdom       int `json:"wisdom"`
	Charisma     int `json:"charisma"`
}

// ToAttributes converts Stats to a map for d20.Actor compatibility.
func (s *Stats) ToAttributes() map[string]int {
	return map[string]int{
		"strength":     s.Strength,
		"dexterity":    s.Dexterity,
		"constitution": s.Constitution,
		"intelligence": s.Intelligence,
		"wisdom":       s.Wisdom,
		"charisma":     s.Charisma,
	}
}

// PlayerSpec is the serializable specification for the player character.
// It is the source of truth for HP and gold; the d20 actor mirrors it
// at runtime for attribute lookups and checks.
type PlayerSpec struct {
	Name       string         `json:"name"`
	Class      string         `json:"class,omitempty"`
	Level      int            `json:"level,omitempty"`
	Stats      Stats          `json:"stats,omitempty"`
	HP         int            `json:"hp"`
	MaxHP      int            `json:"max_hp"`
	AC         int            `json:"ac,omitempty"`
	Gold       int            `json:"gold"`
	Experience int            `json:"experience,omitempty"`
	Inventory  map[string]int `json:"inventory,omitempty"` // item ID → quantity
}

// Player is the runtime representation of the player character.
type Player struct {
	Spec  *PlayerSpec
	Actor *d20.Actor
}

// NewPlayerFromSpec creates a Player and builds its d20 actor.
func NewPlayerFromSpec(spec *PlayerSpec) (*Player, error) {
	if spec == nil {
		return nil, fmt.Errorf("spec cannot be nil")
	}
	if spec.AC == 0 {
		spec.AC = 10
	}
	if spec.Inventory == nil {
		spec.Inventory = make(map[string]int)
	}

	actor, err := d20.NewActor(spec.Name).
		WithHP(spec.MaxHP).
		WithAC(spec.AC).
		WithAttributes(spec.Stats.ToAttributes()).
		Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build actor: %w", err)
	}

	if spec.HP != spec.MaxHP && spec.HP > 0 {
		if err := actor.SetHP(spec.HP); err != nil {
			return nil, fmt.Errorf("failed to set HP: %w", err)
		}
	}

	return &Player{Spec: spec, Actor: actor}, nil
}

// HP returns the current hit points.
func (p *Player) HP() int { return p.Spec.HP }

// MaxHP returns the maximum hit points.
func (p *Player) MaxHP() int { return p.Spec.MaxHP }

// SetHP sets current hit points, clamped into [0, MaxHP].
func (p *Player) SetHP(hp int) {
	if hp < 0 {
		hp = 0
	}
	if hp > p.Spec.MaxHP {
		hp = p.Spec.MaxHP
	}
	p.Spec.HP = hp
	// The d20 builder treats zero HP as unset, so only mirror positive values.
	if p.Actor != nil && hp > 0 {
		_ = p.Actor.SetHP(hp)
	}
}

// Gold returns the player's gold.
func (p *Player) Gold() int { return p.Spec.Gold }

// AddGold adds delta to the player's gold, clamped at zero,
// and returns the new total.
func (p *Player) AddGold(delta int) int {
	p.Spec.Gold += delta
	if p.Spec.Gold < 0 {
		p.Spec.Gold = 0
	}
	return p.Spec.Gold
}

// AddItem increments the inventory quantity for an item ID,
// creating the slot if absent.
func (p *Player) AddItem(itemID string, qty int) {
	if p.Spec.Inventory == nil {
		p.Spec.Inventory = make(map[string]int)
	}
	p.Spec.Inventory[itemID] += qty
}

// RemoveItem decrements quantity, deleting the slot at zero.
// Returns false if the player doesn't hold enough.
func (p *Player) RemoveItem(itemID string, qty int) bool {
	have := p.Spec.Inventory[itemID]
	if have < qty {
		return false
	}
	if have == qty {
		delete(p.Spec.Inventory, itemID)
	} else {
		p.Spec.Inventory[itemID] = have - qty
	}
	return true
}

// Attribute looks up an ability score or skill on the runtime actor.
func (p *Player) Attribute(key string) (int, bool) {
	if p.Actor == nil {
		return 0, false
	}
	return p.Actor.Attribute(key)
}

// MarshalJSON serializes the player spec.
func (p *Player) MarshalJSON() ([]byte, error) {
	if p == nil || p.Spec == nil {
		return []byte("null"), nil
	}
	return json.Marshal(p.Spec)
}

// UnmarshalJSON reconstructs a Player from JSON and rebuilds its Actor.
func (p *Player) UnmarshalJSON(data []byte) error {
	var spec PlayerSpec
	if err := json.Unmarshal(data, &spec); err != nil {
		return fmt.Errorf("failed to unmarshal player spec: %w", err)
	}

	rebuilt, err := NewPlayerFromSpec(&spec)
	if err != nil {
		return err
	}
	*p = *rebuilt
	return nil
}
