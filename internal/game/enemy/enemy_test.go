package enemy_test

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thornvale/mud/internal/game/content"
	"github.com/thornvale/mud/internal/game/enemy"
	"github.com/thornvale/mud/internal/testutil"
)

func wolfTemplate(t *testing.T) *content.Enemy {
	t.Helper()
	store, err := content.Load(testutil.ContentFixture(t))
	require.NoError(t, err)
	tmpl, ok := store.Enemy("wolf")
	require.True(t, ok)
	return tmpl
}

func TestNewInstanceCopiesTemplate(t *testing.T) {
	tmpl := wolfTemplate(t)
	inst := enemy.NewInstance(tmpl, "forest.glade", false)

	assert.NotEmpty(t, inst.ID)
	assert.Equal(t, "wolf", inst.EnemyID)
	assert.Equal(t, 30, inst.CurrentHealth)
	assert.Equal(t, 30, inst.MaxHealth)
	assert.Empty(t, inst.Threat)
	assert.False(t, inst.IsDead())

	// The attack table is a copy; mutating it leaves the template alone.
	require.NotEmpty(t, inst.Attacks)
	inst.Attacks[0].Damage = content.Range{Min: 99, Max: 99}
	assert.Equal(t, 5, tmpl.Attacks[0].Damage.Min)
}

func TestThreatWeightedTargetSelection(t *testing.T) {
	tmpl := wolfTemplate(t)
	inst := enemy.NewInstance(tmpl, "forest.glade", false)
	inst.AddThreat("Alice", 10)
	inst.AddThreat("Bob", 5)

	rng := rand.New(rand.NewSource(42))
	counts := map[string]int{}
	for i := 0; i < 3000; i++ {
		counts[inst.PickTarget([]string{"Alice", "Bob"}, rng)]++
	}
	// Alice holds 2/3 of the threat; allow a generous band around it.
	ratio := float64(counts["Alice"]) / 3000
	assert.InDelta(t, 2.0/3.0, ratio, 0.05)
}

func TestTargetSelectionUniformWithoutThreat(t *testing.T) {
	tmpl := wolfTemplate(t)
	inst := enemy.NewInstance(tmpl, "forest.glade", false)

	rng := rand.New(rand.NewSource(7))
	counts := map[string]int{}
	for i := 0; i < 2000; i++ {
		counts[inst.PickTarget([]string{"Alice", "Bob"}, rng)]++
	}
	assert.InDelta(t, 0.5, float64(counts["Alice"])/2000, 0.05)
}

func TestClearThreatExcludesFromSelection(t *testing.T) {
	tmpl := wolfTemplate(t)
	inst := enemy.NewInstance(tmpl, "forest.glade", false)
	inst.AddThreat("Alice", 100)
	inst.ClearThreat("Alice")
	assert.NotContains(t, inst.Threat, "Alice")
}

func TestManagerRoomIndex(t *testing.T) {
	tmpl := wolfTemplate(t)
	m := enemy.NewManager()

	a := enemy.NewInstance(tmpl, "forest.glade", false)
	b := enemy.NewInstance(tmpl, "forest.glade", false)
	m.Add(a)
	m.Add(b)

	assert.Len(t, m.InstancesInRoom("forest.glade"), 2)
	assert.Equal(t, 2, m.CountInRoom("forest.glade", "wolf"))
	assert.Empty(t, m.InstancesInRoom("town.square"))

	require.NoError(t, m.Remove(a.ID))
	assert.Len(t, m.InstancesInRoom("forest.glade"), 1)
	_, ok := m.Get(a.ID)
	assert.False(t, ok)
	assert.Error(t, m.Remove(a.ID), "double remove")
}

func TestRespawnQueueDueOrdering(t *testing.T) {
	q := enemy.NewRespawnQueue()
	now := time.Now()

	q.Schedule("wolf", "forest.glade", now, 60*time.Second)
	q.Schedule("wolf", "forest.glade", now, 0)
	assert.Equal(t, 1, q.Len(), "zero delay never queues")

	assert.Empty(t, q.Due(now.Add(59*time.Second)))
	due := q.Due(now.Add(60 * time.Second))
	require.Len(t, due, 1)
	assert.Equal(t, enemy.Spawn{EnemyID: "wolf", RoomID: "forest.glade"}, due[0])
	assert.Zero(t, q.Len(), "drained")
}

func TestHealthDescriptionBands(t *testing.T) {
	tmpl := wolfTemplate(t)
	inst := enemy.NewInstance(tmpl, "forest.glade", false)

	assert.Equal(t, "unharmed", inst.HealthDescription())
	inst.CurrentHealth = 10
	assert.Equal(t, "heavily wounded", inst.HealthDescription())
	inst.CurrentHealth = 0
	assert.Equal(t, "dead", inst.HealthDescription())
}

func TestOnceKey(t *testing.T) {
	tmpl := wolfTemplate(t)
	inst := enemy.NewInstance(tmpl, "forest.glade", true)
	assert.Equal(t, "forest.glade.wolf", inst.OnceKey())
	assert.True(t, inst.Once)
}
