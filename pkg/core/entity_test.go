package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategoryKeysRoundTrip(t *testing.T) {
	all := append(append([]Category{}, LocalCategories...), RemoteCategories...)
	require.Len(t, all, 8)

	for _, c := range all {
		t.Run(c.String(), func(t *testing.T) {
			got, ok := CategoryFromKey(c.Key())
			require.True(t, ok)
			assert.Equal(t, c, got)
		})
	}

	_, ok := CategoryFromKey("tank")
	assert.False(t, ok)
}

func TestCategoryClassification(t *testing.T) {
	for _, c := range LocalCategories {
		assert.False(t, c.IsRemote(), c.String())
	}
	for _, c := range RemoteCategories {
		assert.True(t, c.IsRemote(), c.String())
		assert.False(t, c.Weaponizable(), c.String())
	}
	assert.True(t, CategoryRedDismount.Weaponizable())
	assert.True(t, CategoryRedTruck.Weaponizable())
	assert.False(t, CategoryNeutralTruck.Weaponizable())
	assert.Equal(t, "Category(42)", Category(42).String())
}

func TestNewLocal(t *testing.T) {
	pos := Position3D{X: 1, Y: 0.6, Z: 2}

	e, err := NewLocal(CategoryRedTruck, pos, true)
	require.NoError(t, err)
	assert.Equal(t, RedTruck{Position: pos, HasWeapon: true}, e)

	armed, ok := Armed(e)
	assert.True(t, ok)
	assert.True(t, armed)

	_, ok = RemoteID(e)
	assert.False(t, ok)

	e, err = NewLocal(CategoryBluePolice, pos, true)
	require.NoError(t, err)
	_, ok = Armed(e)
	assert.False(t, ok, "blue police has no weapon flag")
	assert.Equal(t, pos, e.Pos())

	_, err = NewLocal(CategoryBalloon, pos, false)
	assert.Error(t, err)
}

func TestNewRemote(t *testing.T) {
	pos := Position3D{X: 5, Y: 0.6, Z: 5}

	e, err := NewRemote(CategorySmallUAV, pos, 201)
	require.NoError(t, err)
	assert.Equal(t, CategorySmallUAV, e.Category())

	id, ok := RemoteID(e)
	assert.True(t, ok)
	assert.Equal(t, 201, id)

	_, err = NewRemote(CategoryRedDismount, pos, 1)
	assert.Error(t, err)
}

func TestCellSet(t *testing.T) {
	s := NewCellSet([]Cell{{0, 0}, {1, 0}}, []Cell{{1, 0}, {2, 2}})
	assert.Equal(t, 3, s.Len())
	assert.True(t, s.Contains(Cell{2, 2}))
	assert.False(t, s.Contains(Cell{0, 1}))
}

func TestEnvironmentSets(t *testing.T) {
	env := &Environment{
		LandCells:     []Cell{{0, 0}},
		WaterCells:    []Cell{{1, 0}},
		MountainCells: []Cell{{2, 0}},
		NGOSiteCells:  []Cell{{5, 5}},
		VillageCells:  []Cell{{6, 6}, {7, 7}},
	}

	assert.Equal(t, 1, env.LandSet().Len())
	assert.Equal(t, 3, env.AllSet().Len())
	assert.False(t, env.LandSet().Contains(Cell{1, 0}))
	assert.Equal(t, []Cell{{5, 5}, {6, 6}, {7, 7}}, env.NeutralSiteCells())
}

func TestTrialCountByCategory(t *testing.T) {
	tr := &Trial{
		Local: []Entity{
			RedDismount{}, RedDismount{}, BluePolice{},
		},
		Remote: []Entity{
			HeavyUAV{ID: 200}, Balloon{ID: 201},
		},
	}
	counts := tr.CountByCategory()
	assert.Equal(t, 2, counts[CategoryRedDismount])
	assert.Equal(t, 1, counts[CategoryBluePolice])
	assert.Equal(t, 1, counts[CategoryBalloon])
	assert.Zero(t, counts[CategorySmallUAV])
}
