package session

// contextEntry is one ephemeral prompt state, such as a numbered list of
// offered quests. It survives only the verbs named in keep.
type contextEntry struct {
	values []string
	keep   map[string]bool
}

// Context keys used by command handlers.
const (
	// CtxOfferedQuests holds quest ids in the order they were offered, so
	// "accept 2" can resolve a number.
	CtxOfferedQuests = "offeredQuests"
	// CtxActiveQuestsNumbered holds active quest ids in last-listed order,
	// so "abandon 1" can resolve a number.
	CtxActiveQuestsNumbered = "activeQuestsNumbered"
)

// SetContext stores an ephemeral numbered list under key. The list stays
// valid while the player issues verbs named in keepVerbs; any other verb
// clears it.
//
// Postcondition: ContextValues(key) returns values until a non-kept verb runs.
func (s *Session) SetContext(key string, values []string, keepVerbs ...string) {
	keep := make(map[string]bool, len(keepVerbs))
	for _, v := range keepVerbs {
		keep[v] = true
	}
	s.ctx[key] = &contextEntry{values: values, keep: keep}
}

// ContextValues returns the stored list for key, or nil.
func (s *Session) ContextValues(key string) []string {
	e, ok := s.ctx[key]
	if !ok {
		return nil
	}
	return e.values
}

// ClearContext drops one ephemeral entry.
func (s *Session) ClearContext(key string) {
	delete(s.ctx, key)
}

// ClearStaleContext drops every entry that does not list verb as a keeper.
// Called by the router after resolving a command, before dispatch.
func (s *Session) ClearStaleContext(verb string) {
	for key, e := range s.ctx {
		if !e.keep[verb] {
			delete(s.ctx, key)
		}
	}
}
