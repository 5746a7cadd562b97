// Package testutil provides test helpers: content fixture trees and
// container management for the optional PostgreSQL mirror.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// ContentFixture writes a small, fully cross-referenced content tree to a
// temp directory and returns its path. The tree contains:
//
//	items:   rusty_sword (weapon, main_hand), thyme (misc), bread (consumable),
//	         wolf_pelt (misc), leather_cap (armor, head)
//	enemies: wolf (30 HP, bite 5, pelt loot)
//	npcs:    herbalist (offers gather_herbs, binder), guard
//	quests:  gather_herbs (collect thyme x3)
//	areas:   town/square, town/gate, forest/glade
//
// Postcondition: content.Load on the returned dir succeeds.
func ContentFixture(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	files := map[string]string{
		"items/rusty_sword.yaml": `
name: Rusty Sword
description: A pitted old blade.
kind: weapon
slot: main_hand
stats:
  damage: 5
value: 10
weight: 3.0
stackable: false
`,
		"items/thyme.yaml": `
name: Thyme Sprig
description: A fragrant herb.
kind: misc
value: 1
weight: 0.1
`,
		"items/bread.yaml": `
name: Crusty Bread
description: Still warm.
kind: consumable
effect:
  heal: 10
value: 2
weight: 0.5
`,
		"items/wolf_pelt.yaml": `
name: Wolf Pelt
description: A rough grey pelt.
kind: misc
value: 5
weight: 1.0
`,
		"items/leather_cap.yaml": `
name: Leather Cap
description: Better than nothing.
kind: armor
slot: head
stats:
  defense: 2
value: 8
weight: 1.0
stackable: false
`,
		"enemies/wolf.yaml": `
name: Grey Wolf
description: A lean, hungry wolf.
max_health: 30
attacks:
  - name: bite
    damage: [5, 5]
    accuracy: 100
defense: 0
experience: 25
gold: [3, 7]
loot:
  - item: wolf_pelt
    chance: 50
    quantity: 1
`,
		"npcs/herbalist.yaml": `
name: Mira the Herbalist
description: An old woman surrounded by drying herbs.
dialogue:
  greeting: "Welcome, traveler. The forest provides."
  responses:
    herbs: "Thyme grows in the glade east of the gate."
quests:
  - gather_herbs
homestone_binder: true
`,
		"npcs/guard.yaml": `
name: Town Guard
description: Bored but watchful.
dialogue:
  greeting: "Keep out of trouble."
`,
		"quests/gather_herbs.yaml": `
name: Gather Herbs
description: Mira needs thyme for her tinctures.
giver_npc: herbalist
level: 1
objectives:
  - type: collect
    target: thyme
    quantity: 3
rewards:
  experience: 50
  gold: 10
  items:
    - bread
dialogue:
  offer: "Bring me three sprigs of thyme, would you?"
  progress: "Still gathering? The glade is just east."
  complete: "Wonderful! These will do nicely."
`,
		"areas/town/square.yaml": `
name: Town Square
description: A cobbled square around a dry fountain.
grid_size:
  width: 2
  height: 1
x: 0
y: 0
exits:
  east: town.gate
npcs:
  - herbalist
  - guard
items:
  - bread
`,
		"areas/town/gate.yaml": `
name: Town Gate
description: The eastern gate, open to the forest road.
x: 1
y: 0
exits:
  west: town.square
  east: forest.glade
`,
		"areas/forest/glade.yaml": `
name: Forest Glade
description: Sunlight pools on wild herbs.
exits:
  west: town.gate
items:
  - item: thyme
    quantity: 5
  - item: rusty_sword
    once: true
  - item: leather_cap
    once: true
enemies:
  - wolf
`,
	}

	for rel, body := range files {
		WriteContentFile(t, dir, rel, body)
	}
	return dir
}

// WriteContentFile writes one content file under dir, creating parents.
//
// Precondition: rel must be a relative path; body is raw YAML.
func WriteContentFile(t *testing.T, dir, rel, body string) {
	t.Helper()
	path := filepath.Join(dir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("creating %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
}

// RemoveContentFile deletes one content file under dir.
func RemoveContentFile(t *testing.T, dir, rel string) {
	t.Helper()
	if err := os.Remove(filepath.Join(dir, filepath.FromSlash(rel))); err != nil {
		t.Fatalf("removing %s: %v", rel, err)
	}
}
