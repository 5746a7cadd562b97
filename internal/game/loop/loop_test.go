package loop_test

import (
	"context"
	"math/rand"
	"sync"
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
	"github.com/thornvale/mud/internal/game/loop"
	"github.com/thornvale/mud/internal/game/quest"
	"github.com/thornvale/mud/internal/game/session"
	"github.com/thornvale/mud/internal/game/world"
	"github.com/thornvale/mud/internal/testutil"
)

type fakePersistence struct {
	mu    sync.Mutex
	chars map[string]*character.Character
	saves int
}

func (f *fakePersistence) Save(c *character.Character) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saves++
	return nil
}

func (f *fakePersistence) SetPassword(c *character.Character, newPassword string) error {
	return nil
}

func (f *fakePersistence) Character(name string) (*character.Character, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.chars[name]
	return c, ok
}

func (f *fakePersistence) saveCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.saves
}

type loopHarness struct {
	loop     *loop.Loop
	sessions *session.Registry
	world    *world.State
	enemies  *enemy.Manager
	respawns *enemy.RespawnQueue
	engine   *combat.Engine
	persist  *fakePersistence
}

func newLoopHarness(t *testing.T) *loopHarness {
	t.Helper()
	store, err := content.Load(testutil.ContentFixture(t))
	require.NoError(t, err)

	mgr := enemy.NewManager()
	w := world.NewState(store, mgr, zap.NewNop())
	inv := inventory.NewService(store, 30)
	quests := quest.NewService(store, inv)
	respawns := enemy.NewRespawnQueue()
	persist := &fakePersistence{chars: make(map[string]*character.Character)}
	sessions := session.NewRegistry(zap.NewNop())
	bus := event.NewBus(sessions, zap.NewNop())

	cfg := config.GameConfig{
		TickInterval:         time.Hour, // ticks are driven by the tests
		CombatTickInterval:   time.Hour,
		RegenRatePerTick:     0.05,
		FleeSuccessChance:    0.6,
		DefaultRespawnRoom:   "town.square",
		EnemyRespawnInterval: time.Minute,
		InventoryCapacity:    30,
		NameMinLength:        3,
		NameMaxLength:        12,
		PasswordMinLength:    3,
	}
	engine := combat.NewEngine(store, w, inv, quests, respawns,
		persist, persist, cfg, rand.New(rand.NewSource(3)), zap.NewNop())
	router, err := command.NewRouter(command.Deps{
		Content: store, World: w, Inventory: inv, Quests: quests,
		Combat: engine, Sessions: sessions, Characters: persist,
		Cfg: cfg, Logger: zap.NewNop(),
	})
	require.NoError(t, err)

	l := loop.New(loop.Deps{
		Router:     router,
		Bus:        bus,
		Sessions:   sessions,
		Engine:     engine,
		World:      w,
		Respawns:   respawns,
		Inventory:  inv,
		Characters: persist,
		Cfg:        cfg,
		Logger:     zap.NewNop(),
	})
	return &loopHarness{
		loop: l, sessions: sessions, world: w, enemies: mgr,
		respawns: respawns, engine: engine, persist: persist,
	}
}

func (h *loopHarness) play(t *testing.T, name, area, room string) *session.Session {
	t.Helper()
	c := character.New(name, character.Location{Area: area, Room: room})
	h.persist.chars[name] = c
	s := session.New(64)
	s.Character = c
	h.sessions.Add(s)
	h.sessions.SetPlaying(s, name)
	return s
}

// start runs the loop until the test ends.
func (h *loopHarness) start(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = h.loop.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
}

// barrier waits until all previously submitted work has executed.
func (h *loopHarness) barrier(t *testing.T) {
	t.Helper()
	ch := make(chan struct{})
	require.NoError(t, h.loop.Submit(func() { close(ch) }))
	select {
	case <-ch:
	case <-time.After(5 * time.Second):
		t.Fatal("game loop did not drain in time")
	}
}

// drain collects whatever is buffered on a session's outbox.
func drain(s *session.Session) []event.Event {
	var out []event.Event
	for {
		select {
		case ev, ok := <-s.Outbox().Events():
			if !ok {
				return out
			}
			out = append(out, ev)
		default:
			return out
		}
	}
}

func hasText(evs []event.Event, substr string) bool {
	for _, ev := range evs {
		if ev.Text == substr {
			return true
		}
	}
	return false
}

func TestGameTickRegeneratesOutOfCombat(t *testing.T) {
	h := newLoopHarness(t)
	resting := h.play(t, "Alice", "town", "square")
	resting.Character.Health = 10
	fighting := h.play(t, "Bob", "town", "gate")
	fighting.Character.Health = 10
	fighting.Character.InCombat = true

	h.loop.GameTick(time.Now())

	// ceil(50 * 0.05) = 3 per tick for the resting character only.
	assert.Equal(t, 13, resting.Character.Health)
	assert.Equal(t, 10, fighting.Character.Health)
}

func TestGameTickAnnouncesFullRefresh(t *testing.T) {
	h := newLoopHarness(t)
	s := h.play(t, "Alice", "town", "square")
	s.Character.Health = 49

	h.loop.GameTick(time.Now())

	assert.Equal(t, 50, s.Character.Health, "regeneration never overshoots")
	assert.True(t, hasText(drain(s), "You feel fully refreshed."))

	// Already at full: no further regen events.
	h.loop.GameTick(time.Now())
	assert.False(t, hasText(drain(s), "You feel fully refreshed."))
}

func TestGameTickSpawnsDueEnemies(t *testing.T) {
	h := newLoopHarness(t)
	watcher := h.play(t, "Alice", "forest", "glade")
	now := time.Now()

	before := h.enemies.CountInRoom("forest.glade", "wolf")
	h.respawns.Schedule("wolf", "forest.glade", now, time.Minute)

	h.loop.GameTick(now)
	assert.Equal(t, before, h.enemies.CountInRoom("forest.glade", "wolf"), "not due yet")

	h.loop.GameTick(now.Add(2 * time.Minute))
	assert.Equal(t, before+1, h.enemies.CountInRoom("forest.glade", "wolf"))
	assert.True(t, hasText(drain(watcher), "A Grey Wolf prowls in."))
}

func TestRunExecutesSubmittedWorkInOrder(t *testing.T) {
	h := newLoopHarness(t)
	h.start(t)

	var got []int
	for i := 1; i <= 3; i++ {
		i := i
		require.NoError(t, h.loop.Submit(func() { got = append(got, i) }))
	}
	h.barrier(t)
	assert.Equal(t, []int{1, 2, 3}, got)
}

func TestSubmitFailsAfterShutdown(t *testing.T) {
	h := newLoopHarness(t)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = h.loop.Run(ctx)
	}()
	cancel()
	<-done

	assert.ErrorIs(t, h.loop.Submit(func() {}), loop.ErrStopped)
}

func TestHandleLineDispatchesToOutbox(t *testing.T) {
	h := newLoopHarness(t)
	h.start(t)
	s := h.play(t, "Alice", "town", "square")

	require.NoError(t, h.loop.HandleLine(s, "say hello"))
	h.barrier(t)

	assert.True(t, hasText(drain(s), "You say: hello"))
}

func TestStartPlayingSupersedesOldSession(t *testing.T) {
	h := newLoopHarness(t)
	h.start(t)

	c := character.New("Alice", character.Location{Area: "town", Room: "square"})
	h.persist.chars["Alice"] = c

	oldClosed := false
	old := session.New(64)
	old.CloseTransport = func() { oldClosed = true }
	h.sessions.Add(old)
	require.NoError(t, h.loop.StartPlaying(old, c))
	h.barrier(t)
	require.True(t, old.Playing())

	fresh := session.New(64)
	h.sessions.Add(fresh)
	require.NoError(t, h.loop.StartPlaying(fresh, c))
	h.barrier(t)

	assert.Equal(t, session.StateDisconnecting, old.State)
	assert.True(t, oldClosed, "the superseded transport is closed")
	assert.True(t, hasText(drain(old), "Your character has logged in from another connection."))

	// Subsequent events reach only the fresh session.
	got, ok := h.sessions.FindByName("Alice")
	require.True(t, ok)
	assert.Same(t, fresh, got)
	assert.NotEmpty(t, drain(fresh), "login produces the room view")
}

func TestSupersedeLeavesCombat(t *testing.T) {
	h := newLoopHarness(t)
	h.start(t)
	old := h.play(t, "Alice", "forest", "glade")
	c := old.Character
	c.BaseStats.Damage = 5

	require.NoError(t, h.loop.Submit(func() {
		wolf := h.enemies.InstancesInRoom("forest.glade")[0]
		_, err := h.engine.Attack(c, wolf, time.Now())
		require.NoError(t, err)
	}))
	h.barrier(t)
	require.True(t, c.InCombat)

	fresh := session.New(64)
	h.sessions.Add(fresh)
	require.NoError(t, h.loop.StartPlaying(fresh, c))
	h.barrier(t)

	// The old session was already superseded when its transport tore down,
	// so the fight must be left here, not by Disconnect.
	assert.False(t, h.engine.InCombat("Alice"))
	assert.False(t, c.InCombat)
}

func TestDisconnectLeavesCombatAndSaves(t *testing.T) {
	h := newLoopHarness(t)
	h.start(t)
	s := h.play(t, "Alice", "forest", "glade")
	c := s.Character
	c.BaseStats.Damage = 5

	require.NoError(t, h.loop.Submit(func() {
		wolf := h.enemies.InstancesInRoom("forest.glade")[0]
		_, err := h.engine.Attack(c, wolf, time.Now())
		require.NoError(t, err)
	}))
	h.barrier(t)
	require.True(t, c.InCombat)

	before := h.persist.saveCount()
	h.loop.Disconnect(s)
	h.barrier(t)

	assert.False(t, h.engine.InCombat("Alice"))
	assert.Greater(t, h.persist.saveCount(), before)
	_, ok := h.sessions.Get(s.ID)
	assert.False(t, ok)
	assert.Equal(t, session.StateDisconnecting, s.State)
}
