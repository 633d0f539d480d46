// pkg/core/entity.go
package core

import "fmt"

// Category identifies an entity class in a trial roster.
type Category uint8

const (
	CategoryRedDismount Category = iota
	CategoryRedTruck
	CategoryNeutralDismount
	CategoryNeutralTruck
	CategoryBluePolice
	CategoryHeavyUAV
	CategorySmallUAV
	CategoryBalloon
)

// LocalCategories lists locally simulated categories in generation order.
var LocalCategories = []Category{
	CategoryRedDismount,
	CategoryRedTruck,
	CategoryNeutralDismount,
	CategoryNeutralTruck,
	CategoryBluePolice,
}

// RemoteCategories lists remotely controlled categories in generation order.
var RemoteCategories = []Category{
	CategoryHeavyUAV,
	CategorySmallUAV,
	CategoryBalloon,
}

var categoryNames = [...]string{
	CategoryRedDismount:     "RedDismount",
	CategoryRedTruck:        "RedTruck",
	CategoryNeutralDismount: "NeutralDismount",
	CategoryNeutralTruck:    "NeutralTruck",
	CategoryBluePolice:      "BluePolice",
	CategoryHeavyUAV:        "HeavyUAV",
	CategorySmallUAV:        "SmallUAV",
	CategoryBalloon:         "Balloon",
}

var categoryKeys = [...]string{
	CategoryRedDismount:     "red_dismount",
	CategoryRedTruck:        "red_truck",
	CategoryNeutralDismount: "neutral_dismount",
	CategoryNeutralTruck:    "neutral_truck",
	CategoryBluePolice:      "blue_police",
	CategoryHeavyUAV:        "heavy_uav",
	CategorySmallUAV:        "small_uav",
	CategoryBalloon:         "balloon",
}

// String returns the display name used in trial output.
func (c Category) String() string {
	if int(c) < len(categoryNames) {
		return categoryNames[c]
	}
	return fmt.Sprintf("Category(%d)", uint8(c))
}

// Key returns the configuration key for the category.
func (c Category) Key() string {
	if int(c) < len(categoryKeys) {
		return categoryKeys[c]
	}
	return ""
}

// IsRemote reports whether entities of this category receive a remote ID.
func (c Category) IsRemote() bool {
	return c >= CategoryHeavyUAV && c <= CategoryBalloon
}

// Weaponizable reports whether entities of this category carry a weapon flag.
func (c Category) Weaponizable() bool {
	return c == CategoryRedDismount || c == CategoryRedTruck
}

// CategoryFromKey resolves a configuration key back to its category.
func CategoryFromKey(key string) (Category, bool) {
	for i, k := range categoryKeys {
		if k == key {
			return Category(i), true
		}
	}
	return 0, false
}

// Entity is one generated roster record. The set of implementations is closed:
// each category has exactly one concrete type carrying only the fields it needs.
type Entity interface {
	Category() Category
	Pos() Position3D
	entity()
}

// RedDismount is a local red foot unit.
type RedDismount struct {
	Position  Position3D
	HasWeapon bool
}

// RedTruck is a local red vehicle.
type RedTruck struct {
	Position  Position3D
	HasWeapon bool
}

// NeutralDismount is a local civilian foot unit.
type NeutralDismount struct {
	Position Position3D
}

// NeutralTruck is a local civilian vehicle.
type NeutralTruck struct {
	Position Position3D
}

// BluePolice is a local blue ground unit.
type BluePolice struct {
	Position Position3D
}

// HeavyUAV is a remote heavy unmanned aircraft.
type HeavyUAV struct {
	Position Position3D
	ID       int
}

// SmallUAV is a remote small unmanned aircraft.
type SmallUAV struct {
	Position Position3D
	ID       int
}

// Balloon is a remote aerostat.
type Balloon struct {
	Position Position3D
	ID       int
}

func (RedDismount) Category() Category     { return CategoryRedDismount }
func (RedTruck) Category() Category        { return CategoryRedTruck }
func (NeutralDismount) Category() Category { return CategoryNeutralDismount }
func (NeutralTruck) Category() Category    { return CategoryNeutralTruck }
func (BluePolice) Category() Category      { return CategoryBluePolice }
func (HeavyUAV) Category() Category        { return CategoryHeavyUAV }
func (SmallUAV) Category() Category        { return CategorySmallUAV }
func (Balloon) Category() Category         { return CategoryBalloon }

func (e RedDismount) Pos() Position3D     { return e.Position }
func (e RedTruck) Pos() Position3D        { return e.Position }
func (e NeutralDismount) Pos() Position3D { return e.Position }
func (e NeutralTruck) Pos() Position3D    { return e.Position }
func (e BluePolice) Pos() Position3D      { return e.Position }
func (e HeavyUAV) Pos() Position3D        { return e.Position }
func (e SmallUAV) Pos() Position3D        { return e.Position }
func (e Balloon) Pos() Position3D         { return e.Position }

func (RedDismount) entity()     {}
func (RedTruck) entity()        {}
func (NeutralDismount) entity() {}
func (NeutralTruck) entity()    {}
func (BluePolice) entity()      {}
func (HeavyUAV) entity()        {}
func (SmallUAV) entity()        {}
func (Balloon) entity()         {}

// RemoteID returns the identifier of a remote entity.
// ok is false for local entities.
func RemoteID(e Entity) (id int, ok bool) {
	switch v := e.(type) {
	case HeavyUAV:
		return v.ID, true
	case SmallUAV:
		return v.ID, true
	case Balloon:
		return v.ID, true
	}
	return 0, false
}

// Armed returns the weapon flag of a weaponizable entity.
// ok is false for categories without a weapon concept.
func Armed(e Entity) (armed bool, ok bool) {
	switch v := e.(type) {
	case RedDismount:
		return v.HasWeapon, true
	case RedTruck:
		return v.HasWeapon, true
	}
	return false, false
}

// NewLocal builds the record for a local category at pos.
// armed is ignored for categories without a weapon concept.
func NewLocal(c Category, pos Position3D, armed bool) (Entity, error) {
	switch c {
	case CategoryRedDismount:
		return RedDismount{Position: pos, HasWeapon: armed}, nil
	case CategoryRedTruck:
		return RedTruck{Position: pos, HasWeapon: armed}, nil
	case CategoryNeutralDismount:
		return NeutralDismount{Position: pos}, nil
	case CategoryNeutralTruck:
		return NeutralTruck{Position: pos}, nil
	case CategoryBluePolice:
		return BluePolice{Position: pos}, nil
	}
	return nil, fmt.Errorf("%s is not a local category", c)
}

// NewRemote builds the record for a remote category at pos with the given ID.
func NewRemote(c Category, pos Position3D, id int) (Entity, error) {
	switch c {
	case CategoryHeavyUAV:
		return HeavyUAV{Position: pos, ID: id}, nil
	case CategorySmallUAV:
		return SmallUAV{Position: pos, ID: id}, nil
	case CategoryBalloon:
		return Balloon{Position: pos, ID: id}, nil
	}
	return nil, fmt.Errorf("%s is not a remote category", c)
}
