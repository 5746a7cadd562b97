package content

import (
	"fmt"
	"strings"
)

// NPCDialogue holds an NPC's canned speech.
type NPCDialogue struct {
	// Greeting is spoken when a character talks to the NPC.
	Greeting string `yaml:"greeting"`
	// Responses maps ask-about topics to replies.
	Responses map[string]string `yaml:"responses"`
}

// NPC is an immutable non-player character template. ID is assigned by the
// loader from the file base name.
type NPC struct {
	ID          string      `yaml:"-"`
	Name        string      `yaml:"name"`
	Description string      `yaml:"description"`
	Dialogue    NPCDialogue `yaml:"dialogue"`
	// Quests lists the quest ids this NPC offers.
	Quests []string `yaml:"quests"`
	// Hostile marks NPCs that refuse interaction.
	Hostile bool `yaml:"hostile"`
	// HomestoneBinder marks NPCs that can bind a character's homestone.
	HomestoneBinder bool `yaml:"homestone_binder"`
}

// Validate checks NPC template invariants.
//
// Precondition: n must not be nil and must have ID assigned.
// Postcondition: Returns nil iff the template is well formed.
func (n *NPC) Validate() error {
	if n.ID == "" {
		return fmt.Errorf("npc: id must not be empty")
	}
	if n.Name == "" {
		return fmt.Errorf("npc %q: name must not be empty", n.ID)
	}
	return nil
}

// ResponseFor returns the reply for a topic, matching case-insensitively.
//
// Postcondition: Returns (reply, true) if the topic is known, or ("", false).
func (n *NPC) ResponseFor(topic string) (string, bool) {
	if r, ok := n.Dialogue.Responses[topic]; ok {
		return r, true
	}
	for k, r := range n.Dialogue.Responses {
		if strings.EqualFold(k, topic) {
			return r, true
		}
	}
	return "", false
}
