package command

// builtinCommands returns the closed verb set.
func builtinCommands() []Command {
	return []Command{
		// Movement
		{Name: "north", Aliases: []string{"n"}, Help: "Move north", Category: CategoryMovement, Handler: handleMove},
		{Name: "south", Aliases: []string{"s"}, Help: "Move south", Category: CategoryMovement, Handler: handleMove},
		{Name: "east", Aliases: []string{"e"}, Help: "Move east", Category: CategoryMovement, Handler: handleMove},
		{Name: "west", Aliases: []string{"w"}, Help: "Move west", Category: CategoryMovement, Handler: handleMove},
		{Name: "go", Aliases: nil, Help: "Move in a direction (go <dir>)", Category: CategoryMovement, Handler: handleGo},

		// Observation
		{Name: "look", Aliases: []string{"l"}, Help: "Look around, or look at a target", Category: CategoryObservation, Handler: handleLook},
		{Name: "examine", Aliases: []string{"ex"}, Help: "Examine a target closely", Category: CategoryObservation, Handler: handleExamine},

		// Inventory
		{Name: "inventory", Aliases: []string{"inv", "i"}, Help: "Show carried items", Category: CategoryInventory, Handler: handleInventory},
		{Name: "take", Aliases: []string{"get"}, Help: "Pick up an item (take <item>)", Category: CategoryInventory, Handler: handleTake},
		{Name: "drop", Aliases: nil, Help: "Drop an item (drop <item>)", Category: CategoryInventory, Handler: handleDrop},
		{Name: "use", Aliases: nil, Help: "Use a consumable item", Category: CategoryInventory, Handler: handleUse},

		// Equipment
		{Name: "equip", Aliases: []string{"wield", "wear"}, Help: "Equip an item (equip <item>)", Category: CategoryEquipment, Handler: handleEquip},
		{Name: "unequip", Aliases: []string{"unwield", "remove"}, Help: "Unequip an item or slot", Category: CategoryEquipment, Handler: handleUnequip},
		{Name: "equipment", Aliases: []string{"eq"}, Help: "Show equipped items", Category: CategoryEquipment, Handler: handleEquipment},

		// Social
		{Name: "say", Aliases: nil, Help: "Say something to the room", Category: CategorySocial, Handler: handleSay},
		{Name: "tell", Aliases: nil, Help: "Whisper to a player (tell <player> <msg>)", Category: CategorySocial, Handler: handleTell},
		{Name: "reply", Aliases: nil, Help: "Reply to the last whisper", Category: CategorySocial, Handler: handleReply},
		{Name: "emote", Aliases: nil, Help: "Perform an action (emote <action>)", Category: CategorySocial, Handler: handleEmote},
		{Name: "who", Aliases: nil, Help: "List who is online", Category: CategorySocial, Handler: handleWho},
		{Name: "friends", Aliases: []string{"f"}, Help: "Manage your friends list", Category: CategorySocial, Handler: handleFriends},

		// NPCs
		{Name: "talk", Aliases: []string{"speak"}, Help: "Talk to an NPC (talk <npc>)", Category: CategoryNPC, Handler: handleTalk},
		{Name: "ask", Aliases: nil, Help: "Ask an NPC about a topic (ask <npc> about <topic>)", Category: CategoryNPC, Handler: handleAsk},

		// Quests
		{Name: "quest", Aliases: []string{"quests"}, Help: "List quests, show info, or complete (quest [list|info|complete])", Category: CategoryQuests, Handler: handleQuest},
		{Name: "accept", Aliases: nil, Help: "Accept an offered quest (accept <quest|number>)", Category: CategoryQuests, Handler: handleAccept},
		{Name: "abandon", Aliases: nil, Help: "Abandon an active quest (abandon <quest|number>)", Category: CategoryQuests, Handler: handleAbandon},
		{Name: "turn", Aliases: nil, Help: "Turn in a finished quest (turn in <quest>)", Category: CategoryQuests, Handler: handleTurnIn},

		// Combat
		{Name: "attack", Aliases: []string{"fight", "kill"}, Help: "Attack an enemy (attack <target>)", Category: CategoryCombat, Handler: handleAttack},
		{Name: "flee", Aliases: []string{"run"}, Help: "Try to escape combat", Category: CategoryCombat, Handler: handleFlee},
		{Name: "bind", Aliases: nil, Help: "Bind your homestone at a binder NPC", Category: CategoryCombat, Handler: handleBind},

		// Meta
		{Name: "help", Aliases: nil, Help: "Show available commands", Category: CategoryMeta, Handler: handleHelp},
		{Name: "stats", Aliases: nil, Help: "Show your character sheet", Category: CategoryMeta, Handler: handleStats},
		{Name: "health", Aliases: nil, Help: "Show your health", Category: CategoryMeta, Handler: handleHealth},
		{Name: "save", Aliases: nil, Help: "Save your character", Category: CategoryMeta, Handler: handleSave},
		{Name: "quit", Aliases: []string{"logout", "exit"}, Help: "Save and disconnect", Category: CategoryMeta, Handler: handleQuit},
		{Name: "password", Aliases: nil, Help: "Change your password (password <new>)", Category: CategoryMeta, Handler: handlePassword},
	}
}
