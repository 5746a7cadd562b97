package quest_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thornvale/mud/internal/game/character"
	"github.com/thornvale/mud/internal/game/content"
	"github.com/thornvale/mud/internal/game/inventory"
	"github.com/thornvale/mud/internal/game/quest"
	"github.com/thornvale/mud/internal/testutil"
)

type fixture struct {
	store *content.Store
	inv   *inventory.Service
	svc   *quest.Service
}

func newFixture(t *testing.T, extraFiles map[string]string) *fixture {
	t.Helper()
	dir := testutil.ContentFixture(t)
	for rel, body := range extraFiles {
		testutil.WriteContentFile(t, dir, rel, body)
	}
	store, err := content.Load(dir)
	require.NoError(t, err)
	inv := inventory.NewService(store, 30)
	return &fixture{store: store, inv: inv, svc: quest.NewService(store, inv)}
}

func newCharacter() *character.Character {
	return character.New("Alice", character.Location{Area: "town", Room: "square"})
}

func TestAcceptAddsActiveQuestWithZeroProgress(t *testing.T) {
	f := newFixture(t, nil)
	c := newCharacter()

	require.NoError(t, f.svc.Accept(c, "gather_herbs"))
	aq, ok := c.ActiveQuest("gather_herbs")
	require.True(t, ok)
	require.Len(t, aq.Objectives, 1)
	assert.Equal(t, content.ObjectiveCollect, aq.Objectives[0].Type)
	assert.Equal(t, 3, aq.Objectives[0].Quantity)
	assert.Equal(t, 0, aq.Objectives[0].Current)
}

func TestAcceptRejectsDuplicateAndCompleted(t *testing.T) {
	f := newFixture(t, nil)
	c := newCharacter()

	require.NoError(t, f.svc.Accept(c, "gather_herbs"))
	assert.ErrorIs(t, f.svc.Accept(c, "gather_herbs"), quest.ErrAlreadyActive)

	require.NoError(t, f.svc.Abandon(c, "gather_herbs"))
	c.CompletedQuests = []string{"gather_herbs"}
	assert.ErrorIs(t, f.svc.Accept(c, "gather_herbs"), quest.ErrAlreadyCompleted)
}

func TestAcceptEnforcesLevelAndPrereqs(t *testing.T) {
	f := newFixture(t, map[string]string{
		"quests/cull_wolves.yaml": `
name: Cull the Wolves
description: The forest road is not safe.
giver_npc: guard
level: 3
objectives:
  - type: kill
    target: wolf
    quantity: 2
rewards:
  experience: 80
prereqs:
  quests:
    - gather_herbs
`,
	})
	c := newCharacter()

	err := f.svc.Accept(c, "cull_wolves")
	assert.ErrorIs(t, err, quest.ErrRequirementsUnmet)

	c.Level = 3
	err = f.svc.Accept(c, "cull_wolves")
	assert.ErrorIs(t, err, quest.ErrRequirementsUnmet, "prereq quest missing")

	c.CompletedQuests = []string{"gather_herbs"}
	assert.NoError(t, f.svc.Accept(c, "cull_wolves"))
}

func TestAcceptReconcilesExistingInventory(t *testing.T) {
	f := newFixture(t, nil)
	c := newCharacter()
	require.NoError(t, f.inv.Add(c, "thyme", 2))

	require.NoError(t, f.svc.Accept(c, "gather_herbs"))
	aq, _ := c.ActiveQuest("gather_herbs")
	assert.Equal(t, 2, aq.Objectives[0].Current, "already-carried items count")
}

func TestStarterItemsGrantedAndReclaimedOnAbandon(t *testing.T) {
	f := newFixture(t, map[string]string{
		"quests/deliver_tonic.yaml": `
name: Deliver the Tonic
description: Mira's tonic must reach the guard.
giver_npc: herbalist
turn_in_npc: guard
objectives:
  - type: collect
    target: bread
    quantity: 2
    given_by_quest_giver: true
rewards:
  experience: 20
`,
	})
	c := newCharacter()

	require.NoError(t, f.svc.Accept(c, "deliver_tonic"))
	assert.Equal(t, 2, c.InventoryCount("bread"), "starter items granted")
	aq, _ := c.ActiveQuest("deliver_tonic")
	assert.Equal(t, 2, aq.Objectives[0].Current, "starter items satisfy collect")

	require.NoError(t, f.svc.Abandon(c, "deliver_tonic"))
	assert.Equal(t, 0, c.InventoryCount("bread"), "starter items reclaimed")
	_, active := c.ActiveQuest("deliver_tonic")
	assert.False(t, active)
	assert.False(t, c.HasCompleted("deliver_tonic"), "abandon records nothing")
}

// Collect progress follows the live inventory: takes raise it, drops lower
// it, and it caps at the objective quantity.
func TestCollectReconcileFollowsInventory(t *testing.T) {
	f := newFixture(t, nil)
	c := newCharacter()
	require.NoError(t, f.svc.Accept(c, "gather_herbs"))
	aq, _ := c.ActiveQuest("gather_herbs")

	require.NoError(t, f.inv.Add(c, "thyme", 2))
	f.svc.Reconcile(c)
	assert.Equal(t, 2, aq.Objectives[0].Current)

	require.NoError(t, f.inv.Remove(c, "thyme", 1))
	f.svc.Reconcile(c)
	assert.Equal(t, 1, aq.Objectives[0].Current, "dropping lowers progress")

	require.NoError(t, f.inv.Add(c, "thyme", 3))
	f.svc.Reconcile(c)
	assert.Equal(t, 3, aq.Objectives[0].Current, "capped at quantity")
	assert.True(t, aq.Complete())

	// Idempotent: a second reconcile changes nothing.
	f.svc.Reconcile(c)
	assert.Equal(t, 3, aq.Objectives[0].Current)

	_, active := c.ActiveQuest("gather_herbs")
	assert.True(t, active, "eligible quests never auto-complete")
}

func TestRecordProgressCapsAtQuantity(t *testing.T) {
	f := newFixture(t, map[string]string{
		"quests/cull_wolves.yaml": `
name: Cull the Wolves
description: The forest road is not safe.
giver_npc: guard
objectives:
  - type: kill
    target: wolf
    quantity: 2
rewards:
  experience: 80
`,
	})
	c := newCharacter()
	require.NoError(t, f.svc.Accept(c, "cull_wolves"))
	aq, _ := c.ActiveQuest("cull_wolves")

	f.svc.RecordProgress(c, content.ObjectiveKill, "wolf", 1)
	assert.Equal(t, 1, aq.Objectives[0].Current)
	f.svc.RecordProgress(c, content.ObjectiveKill, "bear", 1)
	assert.Equal(t, 1, aq.Objectives[0].Current, "other targets ignored")
	f.svc.RecordProgress(c, content.ObjectiveKill, "wolf", 5)
	assert.Equal(t, 2, aq.Objectives[0].Current, "capped")
}

func TestTurnInConsumesCollectTargetsAndGrantsRewards(t *testing.T) {
	f := newFixture(t, nil)
	c := newCharacter()
	require.NoError(t, f.svc.Accept(c, "gather_herbs"))
	require.NoError(t, f.inv.Add(c, "thyme", 4))
	f.svc.Reconcile(c)

	res, err := f.svc.TurnIn(c, "gather_herbs", "herbalist")
	require.NoError(t, err)

	assert.Equal(t, 50, res.Experience)
	assert.Equal(t, 10, res.Gold)
	assert.Equal(t, []string{"bread"}, res.Items)
	assert.Equal(t, 1, c.InventoryCount("thyme"), "only the objective quantity consumed")
	assert.Equal(t, 1, c.InventoryCount("bread"))
	assert.Equal(t, 10, c.Gold)
	assert.Equal(t, 50, c.Experience)

	_, active := c.ActiveQuest("gather_herbs")
	assert.False(t, active)
	assert.True(t, c.HasCompleted("gather_herbs"))
}

func TestTurnInPreconditions(t *testing.T) {
	f := newFixture(t, nil)
	c := newCharacter()

	_, err := f.svc.TurnIn(c, "gather_herbs", "herbalist")
	assert.ErrorIs(t, err, quest.ErrNotActive)

	require.NoError(t, f.svc.Accept(c, "gather_herbs"))
	_, err = f.svc.TurnIn(c, "gather_herbs", "herbalist")
	assert.ErrorIs(t, err, quest.ErrObjectivesIncomplete)

	require.NoError(t, f.inv.Add(c, "thyme", 3))
	f.svc.Reconcile(c)
	_, err = f.svc.TurnIn(c, "gather_herbs", "guard")
	assert.ErrorIs(t, err, quest.ErrWrongNPC)

	_, err = f.svc.TurnIn(c, "gather_herbs", "herbalist")
	assert.NoError(t, err)
}

func TestTurnInRollsBackWhenRewardsDoNotFit(t *testing.T) {
	dir := testutil.ContentFixture(t)
	testutil.WriteContentFile(t, dir, "quests/cull_wolves.yaml", `
name: Cull the Wolves
description: The forest road is not safe.
giver_npc: guard
objectives:
  - type: kill
    target: wolf
    quantity: 2
rewards:
  experience: 80
  gold: 15
  items:
    - bread
`)
	store, err := content.Load(dir)
	require.NoError(t, err)
	inv := inventory.NewService(store, 2)
	svc := quest.NewService(store, inv)

	c := newCharacter()
	require.NoError(t, svc.Accept(c, "cull_wolves"))
	require.NoError(t, inv.Add(c, "rusty_sword", 2), "fill every slot")
	svc.RecordProgress(c, content.ObjectiveKill, "wolf", 2)

	_, err = svc.TurnIn(c, "cull_wolves", "guard")
	require.Error(t, err, "reward bread cannot fit")
	assert.Equal(t, 2, c.InventoryCount("rusty_sword"), "inventory unchanged")
	_, active := c.ActiveQuest("cull_wolves")
	assert.True(t, active, "quest stays active after failed turn-in")
	assert.Equal(t, 0, c.Gold)
	assert.Equal(t, 0, c.Experience)
}

func TestRepeatableQuestCanBeAcceptedAgain(t *testing.T) {
	f := newFixture(t, map[string]string{
		"quests/daily_herbs.yaml": `
name: Daily Herbs
description: Mira always needs more thyme.
giver_npc: herbalist
repeatable: true
objectives:
  - type: collect
    target: thyme
    quantity: 1
rewards:
  experience: 5
`,
	})
	c := newCharacter()

	require.NoError(t, f.svc.Accept(c, "daily_herbs"))
	require.NoError(t, f.inv.Add(c, "thyme", 1))
	f.svc.Reconcile(c)
	_, err := f.svc.TurnIn(c, "daily_herbs", "herbalist")
	require.NoError(t, err)

	require.NoError(t, f.svc.Accept(c, "daily_herbs"), "repeatable accepts again")

	// Completing twice records the id once.
	require.NoError(t, f.inv.Add(c, "thyme", 1))
	f.svc.Reconcile(c)
	_, err = f.svc.TurnIn(c, "daily_herbs", "herbalist")
	require.NoError(t, err)
	count := 0
	for _, id := range c.CompletedQuests {
		if id == "daily_herbs" {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestOfferedByFiltersIneligible(t *testing.T) {
	f := newFixture(t, nil)
	c := newCharacter()

	offered := f.svc.OfferedBy(c, "herbalist")
	require.Len(t, offered, 1)
	assert.Equal(t, "gather_herbs", offered[0].ID)

	require.NoError(t, f.svc.Accept(c, "gather_herbs"))
	assert.Empty(t, f.svc.OfferedBy(c, "herbalist"), "active quests are not re-offered")
	assert.Empty(t, f.svc.OfferedBy(c, "guard"), "guard offers nothing")
}
