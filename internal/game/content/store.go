package content

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// ContentError is the fatal startup error produced when the content tree is
// inconsistent. It aggregates every broken reference found during loading so
// operators can fix them in one pass.
type ContentError struct {
	Problems []string
}

// Error implements the error interface.
func (e *ContentError) Error() string {
	return fmt.Sprintf("content validation failed with %d problem(s):\n  %s",
		len(e.Problems), strings.Join(e.Problems, "\n  "))
}

// Counts reports how many templates of each category were loaded.
type Counts struct {
	Items   int
	Enemies int
	NPCs    int
	Quests  int
	Rooms   int
	Areas   int
}

// Store owns all loaded templates and exposes read-only lookups by id.
// A Store is immutable after Load returns; concurrent reads are safe
// without locking.
type Store struct {
	items   map[string]*Item
	enemies map[string]*Enemy
	npcs    map[string]*NPC
	quests  map[string]*Quest
	rooms   map[string]*Room
	// areaRooms maps an area name to its room ids, sorted.
	areaRooms map[string][]string
	// areaGrids maps an area name to its declared grid size, if any.
	areaGrids map[string]GridSize
	counts    Counts
}

// Load walks the content directory tree and builds a fully cross-checked
// Store. Expected layout: items/, npcs/, quests/, enemies/, areas/<area>/.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns a Store whose every template reference resolves, or
// a *ContentError listing every broken reference, duplicate id, or parse
// failure encountered.
func Load(dir string) (*Store, error) {
	s := &Store{
		items:     make(map[string]*Item),
		enemies:   make(map[string]*Enemy),
		npcs:      make(map[string]*NPC),
		quests:    make(map[string]*Quest),
		rooms:     make(map[string]*Room),
		areaRooms: make(map[string][]string),
		areaGrids: make(map[string]GridSize),
	}

	var problems []string
	addProblem := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	loadCategory(filepath.Join(dir, "items"), addProblem, func(id string, data []byte) {
		var it Item
		if err := strictUnmarshal(data, &it); err != nil {
			addProblem("items/%s: %v", id, err)
			return
		}
		it.ID = id
		if err := it.Validate(); err != nil {
			addProblem("items/%s: %v", id, err)
			return
		}
		if _, dup := s.items[id]; dup {
			addProblem("items/%s: duplicate item id", id)
			return
		}
		s.items[id] = &it
	})

	loadCategory(filepath.Join(dir, "enemies"), addProblem, func(id string, data []byte) {
		var en Enemy
		if err := strictUnmarshal(data, &en); err != nil {
			addProblem("enemies/%s: %v", id, err)
			return
		}
		en.ID = id
		if err := en.Validate(); err != nil {
			addProblem("enemies/%s: %v", id, err)
			return
		}
		if _, dup := s.enemies[id]; dup {
			addProblem("enemies/%s: duplicate enemy id", id)
			return
		}
		s.enemies[id] = &en
	})

	loadCategory(filepath.Join(dir, "npcs"), addProblem, func(id string, data []byte) {
		var n NPC
		if err := strictUnmarshal(data, &n); err != nil {
			addProblem("npcs/%s: %v", id, err)
			return
		}
		n.ID = id
		if err := n.Validate(); err != nil {
			addProblem("npcs/%s: %v", id, err)
			return
		}
		if _, dup := s.npcs[id]; dup {
			addProblem("npcs/%s: duplicate npc id", id)
			return
		}
		s.npcs[id] = &n
	})

	loadCategory(filepath.Join(dir, "quests"), addProblem, func(id string, data []byte) {
		var q Quest
		if err := strictUnmarshal(data, &q); err != nil {
			addProblem("quests/%s: %v", id, err)
			return
		}
		q.ID = id
		if err := q.Validate(); err != nil {
			addProblem("quests/%s: %v", id, err)
			return
		}
		if _, dup := s.quests[id]; dup {
			addProblem("quests/%s: duplicate quest id", id)
			return
		}
		s.quests[id] = &q
	})

	s.loadAreas(filepath.Join(dir, "areas"), addProblem)

	s.verifyReferences(addProblem)

	if len(problems) > 0 {
		return nil, &ContentError{Problems: problems}
	}

	s.counts = Counts{
		Items:   len(s.items),
		Enemies: len(s.enemies),
		NPCs:    len(s.npcs),
		Quests:  len(s.quests),
		Rooms:   len(s.rooms),
		Areas:   len(s.areaRooms),
	}
	return s, nil
}

// loadCategory reads every YAML file in dir and hands (baseName, bytes) to fn.
// A missing directory is reported as a problem; an empty one is allowed.
func loadCategory(dir string, addProblem func(string, ...any), fn func(id string, data []byte)) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		addProblem("reading %s: %v", dir, err)
		return
	}
	for _, entry := range entries {
		name := entry.Name()
		ext := filepath.Ext(name)
		if entry.IsDir() || (ext != ".yaml" && ext != ".yml") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			addProblem("reading %s: %v", filepath.Join(dir, name), err)
			continue
		}
		fn(strings.TrimSuffix(name, ext), data)
	}
}

// loadAreas walks areas/<areaName>/*.yaml, deriving room ids as
// "areaName.fileBaseName". The first room file in an area declaring a
// grid_size fixes the area grid.
func (s *Store) loadAreas(dir string, addProblem func(string, ...any)) {
	areas, err := os.ReadDir(dir)
	if err != nil {
		addProblem("reading %s: %v", dir, err)
		return
	}
	for _, areaEntry := range areas {
		if !areaEntry.IsDir() {
			continue
		}
		area := areaEntry.Name()
		areaDir := filepath.Join(dir, area)
		files, err := os.ReadDir(areaDir)
		if err != nil {
			addProblem("reading %s: %v", areaDir, err)
			continue
		}
		// Deterministic order so "first grid_size wins" is stable.
		sort.Slice(files, func(i, j int) bool { return files[i].Name() < files[j].Name() })
		for _, f := range files {
			name := f.Name()
			ext := filepath.Ext(name)
			if f.IsDir() || (ext != ".yaml" && ext != ".yml") {
				continue
			}
			data, err := os.ReadFile(filepath.Join(areaDir, name))
			if err != nil {
				addProblem("reading %s: %v", filepath.Join(areaDir, name), err)
				continue
			}
			var r Room
			if err := strictUnmarshal(data, &r); err != nil {
				addProblem("areas/%s/%s: %v", area, name, err)
				continue
			}
			r.Area = area
			r.ID = area + "." + strings.TrimSuffix(name, ext)
			if err := r.Validate(); err != nil {
				addProblem("areas/%s/%s: %v", area, name, err)
				continue
			}
			if _, dup := s.rooms[r.ID]; dup {
				addProblem("areas/%s/%s: duplicate room id %q", area, name, r.ID)
				continue
			}
			s.rooms[r.ID] = &r
			s.areaRooms[area] = append(s.areaRooms[area], r.ID)
			if r.GridSize != nil {
				if _, have := s.areaGrids[area]; !have {
					s.areaGrids[area] = *r.GridSize
				}
			}
		}
		sort.Strings(s.areaRooms[area])
	}
}

// verifyReferences checks every cross-template reference and records every
// failure rather than stopping at the first.
func (s *Store) verifyReferences(addProblem func(string, ...any)) {
	for _, r := range sortedRooms(s.rooms) {
		for _, dir := range r.ExitDirections() {
			target := r.Exits[dir]
			if _, ok := s.rooms[target]; !ok {
				addProblem("room %q: exit %q references unknown room %q", r.ID, dir, target)
			}
		}
		for _, ri := range r.Items {
			if _, ok := s.items[ri.ItemID]; !ok {
				addProblem("room %q: references unknown item %q", r.ID, ri.ItemID)
			}
		}
		for _, id := range r.NPCs {
			if _, ok := s.npcs[id]; !ok {
				addProblem("room %q: references unknown npc %q", r.ID, id)
			}
		}
		for _, re := range r.Enemies {
			if _, ok := s.enemies[re.EnemyID]; !ok {
				addProblem("room %q: references unknown enemy %q", r.ID, re.EnemyID)
			}
		}
	}

	for _, en := range sortedEnemies(s.enemies) {
		for i, entry := range en.Loot {
			if _, ok := s.items[entry.ItemID]; !ok {
				addProblem("enemy %q: loot[%d] references unknown item %q", en.ID, i, entry.ItemID)
			}
		}
	}

	for _, n := range sortedNPCs(s.npcs) {
		for _, qid := range n.Quests {
			if _, ok := s.quests[qid]; !ok {
				addProblem("npc %q: offers unknown quest %q", n.ID, qid)
			}
		}
	}

	for _, q := range sortedQuests(s.quests) {
		if _, ok := s.npcs[q.GiverNPC]; !ok {
			addProblem("quest %q: giver references unknown npc %q", q.ID, q.GiverNPC)
		}
		if q.TurnInNPC != "" {
			if _, ok := s.npcs[q.TurnInNPC]; !ok {
				addProblem("quest %q: turn-in references unknown npc %q", q.ID, q.TurnInNPC)
			}
		}
		for i, obj := range q.Objectives {
			switch obj.Type {
			case ObjectiveKill:
				if _, ok := s.enemies[obj.Target]; !ok {
					addProblem("quest %q: objective[%d] references unknown enemy %q", q.ID, i, obj.Target)
				}
			case ObjectiveCollect, ObjectiveDeliver:
				if _, ok := s.items[obj.Target]; !ok {
					addProblem("quest %q: objective[%d] references unknown item %q", q.ID, i, obj.Target)
				}
			case ObjectiveVisit:
				if _, ok := s.rooms[obj.Target]; !ok {
					addProblem("quest %q: objective[%d] references unknown room %q", q.ID, i, obj.Target)
				}
			}
		}
		for _, pq := range q.Prereqs.Quests {
			if _, ok := s.quests[pq]; !ok {
				addProblem("quest %q: prereq references unknown quest %q", q.ID, pq)
			}
		}
		for _, pi := range q.Prereqs.Items {
			if _, ok := s.items[pi]; !ok {
				addProblem("quest %q: prereq references unknown item %q", q.ID, pi)
			}
		}
		for _, ri := range q.Rewards.Items {
			if _, ok := s.items[ri]; !ok {
				addProblem("quest %q: reward references unknown item %q", q.ID, ri)
			}
		}
	}
}

// strictUnmarshal decodes YAML rejecting unknown fields.
func strictUnmarshal(data []byte, out any) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil {
		if err == io.EOF {
			return fmt.Errorf("empty file")
		}
		return err
	}
	return nil
}

// Item returns the item template with the given id.
//
// Postcondition: Returns (item, true) if found, or (nil, false).
func (s *Store) Item(id string) (*Item, bool) {
	it, ok := s.items[id]
	return it, ok
}

// Enemy returns the enemy template with the given id.
func (s *Store) Enemy(id string) (*Enemy, bool) {
	en, ok := s.enemies[id]
	return en, ok
}

// NPC returns the NPC template with the given id.
func (s *Store) NPC(id string) (*NPC, bool) {
	n, ok := s.npcs[id]
	return n, ok
}

// Quest returns the quest template with the given id.
func (s *Store) Quest(id string) (*Quest, bool) {
	q, ok := s.quests[id]
	return q, ok
}

// Room returns the room template with the given fully qualified id.
func (s *Store) Room(id string) (*Room, bool) {
	r, ok := s.rooms[id]
	return r, ok
}

// Quests returns all quest templates sorted by id.
func (s *Store) Quests() []*Quest {
	return sortedQuests(s.quests)
}

// Areas returns every area name, sorted.
func (s *Store) Areas() []string {
	out := make([]string, 0, len(s.areaRooms))
	for area := range s.areaRooms {
		out = append(out, area)
	}
	sort.Strings(out)
	return out
}

// Rooms returns all room templates sorted by id.
func (s *Store) Rooms() []*Room {
	return sortedRooms(s.rooms)
}

// RoomsInArea returns the room ids of an area, sorted.
//
// Postcondition: Returns a non-nil slice; empty when the area is unknown.
func (s *Store) RoomsInArea(area string) []string {
	return append([]string(nil), s.areaRooms[area]...)
}

// AreaGrid returns the declared grid size of an area.
//
// Postcondition: Returns (grid, true) if any room file declared one.
func (s *Store) AreaGrid(area string) (GridSize, bool) {
	g, ok := s.areaGrids[area]
	return g, ok
}

// Counts returns the per-category template counts.
func (s *Store) Counts() Counts {
	return s.counts
}

func sortedRooms(m map[string]*Room) []*Room {
	out := make([]*Room, 0, len(m))
	for _, v := range m {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func sortedEnemies(m map[string]*Enemy) []*Enemy {
	out := make([]*Enemy, 0, len(m))
	for _, v := range m {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func sortedNPCs(m map[string]*NPC) []*NPC {
	out := make([]*NPC, 0, len(m))
	for _, v := range m {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func sortedQuests(m map[string]*Quest) []*Quest {
	out := make([]*Quest, 0, len(m))
	for _, v := range m {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
