package command_test

import (
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/thornvale/mud/internal/config"
	"github.com/thornvale/mud/internal/game/character"
	"github.com/thornvale/mud/internal/game/combat"
	"github.com/thornvale/mud/internal/game/command"
	"github.com/thornvale/mud/internal/game/content"
	"github.com/thornvale/mud/internal/game/enemy"
	"github.com/thornvale/mud/internal/game/event"
	"github.com/thornvale/mud/internal/game/inventory"
	"github.com/thornvale/mud/internal/game/quest"
	"github.com/thornvale/mud/internal/game/session"
	"github.com/thornvale/mud/internal/game/world"
	"github.com/thornvale/mud/internal/testutil"
)

// fakePersistence stands in for the file store and the combat roster.
type fakePersistence struct {
	chars     map[string]*character.Character
	saves     int
	passwords []string
}

func (f *fakePersistence) Save(c *character.Character) error {
	f.saves++
	return nil
}

func (f *fakePersistence) SetPassword(c *character.Character, newPassword string) error {
	f.passwords = append(f.passwords, newPassword)
	return nil
}

func (f *fakePersistence) Character(name string) (*character.Character, bool) {
	c, ok := f.chars[name]
	return c, ok
}

type routerHarness struct {
	store    *content.Store
	world    *world.State
	inv      *inventory.Service
	quests   *quest.Service
	engine   *combat.Engine
	sessions *session.Registry
	persist  *fakePersistence
	router   *command.Router
	quit     []string
	now      time.Time
}

func newRouterHarness(t *testing.T) *routerHarness {
	t.Helper()
	store, err := content.Load(testutil.ContentFixture(t))
	require.NoError(t, err)

	mgr := enemy.NewManager()
	w := world.NewState(store, mgr, zap.NewNop())
	inv := inventory.NewService(store, 10)
	quests := quest.NewService(store, inv)
	persist := &fakePersistence{chars: make(map[string]*character.Character)}

	cfg := config.GameConfig{
		FleeSuccessChance:    1.0,
		DefaultRespawnRoom:   "town.square",
		EnemyRespawnInterval: time.Minute,
		InventoryCapacity:    10,
		NameMinLength:        3,
		NameMaxLength:        20,
		PasswordMinLength:    8,
	}
	engine := combat.NewEngine(store, w, inv, quests, enemy.NewRespawnQueue(),
		persist, persist, cfg, rand.New(rand.NewSource(11)), zap.NewNop())

	h := &routerHarness{
		store: store, world: w, inv: inv, quests: quests,
		engine: engine, sessions: session.NewRegistry(zap.NewNop()),
		persist: persist, now: time.Now(),
	}
	h.router, err = command.NewRouter(command.Deps{
		Content:    store,
		World:      w,
		Inventory:  inv,
		Quests:     quests,
		Combat:     engine,
		Sessions:   h.sessions,
		Characters: persist,
		Cfg:        cfg,
		Logger:     zap.NewNop(),
		OnQuit:     func(s *session.Session) { h.quit = append(h.quit, s.Name()) },
	})
	require.NoError(t, err)
	return h
}

// play creates a playing session for a fresh character at the location.
func (h *routerHarness) play(t *testing.T, name, area, room string) *session.Session {
	t.Helper()
	c := character.New(name, character.Location{Area: area, Room: room})
	h.persist.chars[name] = c
	s := session.New(32)
	s.Character = c
	h.sessions.Add(s)
	h.sessions.SetPlaying(s, name)
	return s
}

func (h *routerHarness) run(s *session.Session, line string) []event.Event {
	return h.router.Dispatch(s, line, h.now)
}

// texts collects the event texts addressed to one character.
func texts(evs []event.Event, name string) []string {
	var out []string
	for _, ev := range evs {
		if ev.Audience == event.AudienceCharacter && ev.Target == name {
			out = append(out, ev.Text)
		}
	}
	return out
}

func containsText(evs []event.Event, name, substr string) bool {
	for _, text := range texts(evs, name) {
		if strings.Contains(text, substr) {
			return true
		}
	}
	return false
}

func TestDispatchUnknownVerb(t *testing.T) {
	h := newRouterHarness(t)
	s := h.play(t, "Alice", "town", "square")

	evs := h.run(s, "frobnicate the thing")
	require.Len(t, evs, 1)
	assert.Equal(t, event.KindWarning, evs[0].Kind)
	assert.Contains(t, evs[0].Text, `Unknown command "frobnicate"`)
}

// Vertical movement has no bare verbs; rooms with up/down exits are walked
// with "go up" and "go down".
func TestNoBareVerticalMovementVerbs(t *testing.T) {
	h := newRouterHarness(t)
	s := h.play(t, "Alice", "town", "square")

	for _, line := range []string{"up", "down", "u", "d"} {
		evs := h.run(s, line)
		require.Len(t, evs, 1, line)
		assert.Equal(t, event.KindWarning, evs[0].Kind, line)
		assert.Contains(t, evs[0].Text, "Unknown command", line)
	}
	assert.Equal(t, "town.square", s.Character.RoomID())
}

func TestDispatchBlankLine(t *testing.T) {
	h := newRouterHarness(t)
	s := h.play(t, "Alice", "town", "square")
	assert.Nil(t, h.run(s, "   "))
}

func TestDispatchRecoversFromHandlerPanic(t *testing.T) {
	h := newRouterHarness(t)
	s := h.play(t, "Alice", "town", "square")
	// A playing session with its character torn away violates the handler
	// contract and panics inside the handler.
	s.Character = nil

	evs := h.router.Dispatch(s, "inventory", h.now)
	require.Len(t, evs, 1)
	assert.Equal(t, event.KindError, evs[0].Kind)
	assert.Equal(t, "An error occurred.", evs[0].Text)
}

func TestMovementAndAutoLook(t *testing.T) {
	h := newRouterHarness(t)
	s := h.play(t, "Alice", "town", "square")

	evs := h.run(s, "east")
	assert.Equal(t, "town.gate", s.Character.RoomID())
	joined := texts(evs, "Alice")
	require.NotEmpty(t, joined)
	assert.Contains(t, joined[len(joined)-1], "Town Gate")

	evs = h.run(s, "go w")
	assert.Equal(t, "town.square", s.Character.RoomID())
	assert.NotEmpty(t, texts(evs, "Alice"))

	evs = h.run(s, "north")
	require.Len(t, evs, 1)
	assert.Equal(t, event.KindWarning, evs[0].Kind)
	assert.Contains(t, evs[0].Text, "can't go that way")
}

func TestMovementBlockedInCombat(t *testing.T) {
	h := newRouterHarness(t)
	s := h.play(t, "Alice", "forest", "glade")

	evs := h.run(s, "attack wolf")
	assert.True(t, s.Character.InCombat)
	assert.NotEmpty(t, evs)

	evs = h.run(s, "west")
	require.Len(t, evs, 1)
	assert.Equal(t, event.KindWarning, evs[0].Kind)
	assert.Equal(t, "You can't leave while in combat.", evs[0].Text)
	assert.Equal(t, "forest.glade", s.Character.RoomID())
}

func TestTakeDropRoundTrip(t *testing.T) {
	h := newRouterHarness(t)
	s := h.play(t, "Alice", "forest", "glade")

	evs := h.run(s, "take thyme")
	assert.True(t, containsText(evs, "Alice", "You take"))
	assert.Equal(t, 1, s.Character.InventoryCount("thyme"))

	evs = h.run(s, "drop thyme")
	assert.True(t, containsText(evs, "Alice", "You drop"))
	assert.Equal(t, 0, s.Character.InventoryCount("thyme"))
}

func TestTakeFuzzyEchoesCanonicalName(t *testing.T) {
	h := newRouterHarness(t)
	s := h.play(t, "Alice", "forest", "glade")

	evs := h.run(s, "take rusty")
	got := texts(evs, "Alice")
	require.NotEmpty(t, got)
	assert.Equal(t, "(Rusty Sword)", got[0], "non-exact match echoes the canonical name")
	assert.Equal(t, 1, s.Character.InventoryCount("rusty_sword"))
}

func TestEquipFromCommand(t *testing.T) {
	h := newRouterHarness(t)
	s := h.play(t, "Alice", "forest", "glade")

	h.run(s, "take rusty sword")
	evs := h.run(s, "equip rusty sword")
	assert.True(t, containsText(evs, "Alice", "You equip Rusty Sword"))
	assert.True(t, s.Character.IsEquipped("rusty_sword"))

	evs = h.run(s, "drop rusty sword")
	require.Len(t, evs, 1)
	assert.Equal(t, event.KindWarning, evs[0].Kind)
	assert.Contains(t, evs[0].Text, "Unequip")

	evs = h.run(s, "unequip rusty sword")
	assert.True(t, containsText(evs, "Alice", "You unequip Rusty Sword"))
	assert.False(t, s.Character.IsEquipped("rusty_sword"))
}

func TestSayAndTellAndReply(t *testing.T) {
	h := newRouterHarness(t)
	alice := h.play(t, "Alice", "town", "square")
	bob := h.play(t, "Bob", "town", "gate")

	evs := h.run(alice, "say hello   there")
	require.Len(t, evs, 2)
	assert.Equal(t, "You say: hello   there", evs[0].Text, "inner spacing preserved")
	assert.Equal(t, event.AudienceRoom, evs[1].Audience)
	assert.Equal(t, "Alice", evs[1].Exclude)

	evs = h.run(alice, "tell bob meet me at the gate")
	assert.True(t, containsText(evs, "Bob", "Alice tells you: meet me at the gate"))
	assert.Equal(t, "Alice", bob.LastWhisperFrom)

	evs = h.run(bob, "reply on my way")
	assert.True(t, containsText(evs, "Alice", "Bob tells you: on my way"))
	assert.Equal(t, "Bob", alice.LastWhisperFrom)
}

func TestWhoListsPlayingSessions(t *testing.T) {
	h := newRouterHarness(t)
	alice := h.play(t, "Alice", "town", "square")
	h.play(t, "Bob", "town", "gate")

	evs := h.run(alice, "who")
	require.Len(t, evs, 1)
	assert.Contains(t, evs[0].Text, "Online (2):")
	assert.Contains(t, evs[0].Text, "Alice")
	assert.Contains(t, evs[0].Text, "Bob")
}

func TestTalkOffersQuestAndAcceptByNumber(t *testing.T) {
	h := newRouterHarness(t)
	s := h.play(t, "Alice", "town", "square")

	evs := h.run(s, "talk herbalist")
	assert.True(t, containsText(evs, "Alice", "The forest provides"))
	assert.True(t, containsText(evs, "Alice", "1. Gather Herbs"))

	evs = h.run(s, "accept 1")
	assert.True(t, containsText(evs, "Alice", "Quest accepted: Gather Herbs."))
	_, active := s.Character.ActiveQuest("gather_herbs")
	assert.True(t, active)
}

func TestAcceptByNumberExpiresAfterUnrelatedCommand(t *testing.T) {
	h := newRouterHarness(t)
	s := h.play(t, "Alice", "town", "square")

	h.run(s, "talk herbalist")
	h.run(s, "look")
	evs := h.run(s, "accept 1")
	require.Len(t, evs, 1)
	assert.Equal(t, event.KindWarning, evs[0].Kind)

	// Accepting by name still works without the numbered context.
	evs = h.run(s, "accept gather herbs")
	assert.True(t, containsText(evs, "Alice", "Quest accepted: Gather Herbs."))
}

func TestAcceptRequiresGiverPresent(t *testing.T) {
	h := newRouterHarness(t)
	s := h.play(t, "Alice", "forest", "glade")

	evs := h.run(s, "accept gather herbs")
	require.Len(t, evs, 1)
	assert.Equal(t, event.KindWarning, evs[0].Kind)
}

func TestQuestLifecycleThroughCommands(t *testing.T) {
	h := newRouterHarness(t)
	s := h.play(t, "Alice", "town", "square")
	c := s.Character

	h.run(s, "talk herbalist")
	h.run(s, "accept 1")

	// Gather three sprigs in the glade.
	h.run(s, "go east")
	h.run(s, "go east")
	for i := 0; i < 3; i++ {
		h.run(s, "take thyme")
	}

	evs := h.run(s, "quest")
	require.Len(t, evs, 1)
	assert.Contains(t, evs[0].Text, "1. Gather Herbs (complete)")
	assert.Contains(t, evs[0].Text, "Thyme Sprig: 3/3")

	// Turn-in fails away from the herbalist.
	evs = h.run(s, "turn in gather herbs")
	require.Len(t, evs, 1)
	assert.Equal(t, event.KindWarning, evs[0].Kind)
	assert.Contains(t, evs[0].Text, "isn't here")

	h.run(s, "go west")
	h.run(s, "go west")
	evs = h.run(s, "turn in gather herbs")
	assert.True(t, containsText(evs, "Alice", "Quest complete: Gather Herbs!"))
	assert.Equal(t, 50, c.Experience)
	assert.Equal(t, 10, c.Gold)
	assert.Equal(t, 0, c.InventoryCount("thyme"))
	assert.Equal(t, 1, c.InventoryCount("bread"))
	assert.True(t, c.HasCompleted("gather_herbs"))
}

func TestAbandonByNumberFromQuestListing(t *testing.T) {
	h := newRouterHarness(t)
	s := h.play(t, "Alice", "town", "square")

	h.run(s, "talk herbalist")
	h.run(s, "accept 1")
	h.run(s, "quest")

	evs := h.run(s, "abandon 1")
	assert.True(t, containsText(evs, "Alice", "Quest abandoned: Gather Herbs."))
	_, active := s.Character.ActiveQuest("gather_herbs")
	assert.False(t, active)
}

func TestAskAboutTopic(t *testing.T) {
	h := newRouterHarness(t)
	s := h.play(t, "Alice", "town", "square")

	evs := h.run(s, "ask herbalist about herbs")
	assert.True(t, containsText(evs, "Alice", "Thyme grows in the glade"))

	evs = h.run(s, "ask herbalist about dragons")
	assert.True(t, containsText(evs, "Alice", "shrugs"))
}

func TestBindHomestone(t *testing.T) {
	h := newRouterHarness(t)
	s := h.play(t, "Alice", "town", "square")
	require.Nil(t, s.Character.Homestone)

	evs := h.run(s, "bind")
	assert.True(t, containsText(evs, "Alice", "binds your homestone"))
	require.NotNil(t, s.Character.Homestone)
	assert.Equal(t, "town.square", s.Character.Homestone.RoomID())

	// No binder at the gate.
	h.run(s, "go east")
	evs = h.run(s, "bind")
	require.Len(t, evs, 1)
	assert.Equal(t, event.KindWarning, evs[0].Kind)
}

func TestUseConsumable(t *testing.T) {
	h := newRouterHarness(t)
	s := h.play(t, "Alice", "town", "square")
	c := s.Character
	c.Health = 30

	h.run(s, "take bread")
	evs := h.run(s, "use bread")
	assert.True(t, containsText(evs, "Alice", "recover 10 health (40/50)"))
	assert.Equal(t, 0, c.InventoryCount("bread"))
}

func TestFleeLeavesCombatThroughExit(t *testing.T) {
	h := newRouterHarness(t)
	s := h.play(t, "Alice", "forest", "glade")
	s.Character.BaseStats.Defense = 10

	h.run(s, "attack wolf")
	require.True(t, s.Character.InCombat)

	evs := h.run(s, "flee")
	assert.False(t, s.Character.InCombat)
	assert.Equal(t, "town.gate", s.Character.RoomID())
	assert.True(t, containsText(evs, "Alice", "Town Gate"), "auto-look after a successful flee")
}

func TestHelpOutput(t *testing.T) {
	h := newRouterHarness(t)
	s := h.play(t, "Alice", "town", "square")

	evs := h.run(s, "help")
	require.Len(t, evs, 1)
	assert.Contains(t, evs[0].Text, "movement:")
	assert.Contains(t, evs[0].Text, "attack")

	evs = h.run(s, "help flee")
	require.Len(t, evs, 1)
	assert.Contains(t, evs[0].Text, "flee - Try to escape combat")
	assert.Contains(t, evs[0].Text, "Aliases: run")

	evs = h.run(s, "help bogus")
	require.Len(t, evs, 1)
	assert.Equal(t, event.KindWarning, evs[0].Kind)
}

func TestQuitSavesAndSignals(t *testing.T) {
	h := newRouterHarness(t)
	s := h.play(t, "Alice", "town", "square")

	before := h.persist.saves
	evs := h.run(s, "quit")
	assert.True(t, containsText(evs, "Alice", "Goodbye."))
	assert.Greater(t, h.persist.saves, before)
	assert.Equal(t, []string{"Alice"}, h.quit)
}

func TestPasswordChange(t *testing.T) {
	h := newRouterHarness(t)
	s := h.play(t, "Alice", "town", "square")

	evs := h.run(s, "password short")
	require.Len(t, evs, 1)
	assert.Equal(t, event.KindWarning, evs[0].Kind)
	assert.Empty(t, h.persist.passwords)

	evs = h.run(s, "password correcthorse")
	assert.True(t, containsText(evs, "Alice", "Password changed."))
	assert.Equal(t, []string{"correcthorse"}, h.persist.passwords)
}

func TestAliasesResolve(t *testing.T) {
	h := newRouterHarness(t)
	s := h.play(t, "Alice", "town", "square")

	evs := h.run(s, "l")
	require.NotEmpty(t, evs)
	assert.Contains(t, evs[0].Text, "Town Square")

	evs = h.run(s, "i")
	require.Len(t, evs, 1)
	assert.Equal(t, "You are carrying nothing.", evs[0].Text)
}
