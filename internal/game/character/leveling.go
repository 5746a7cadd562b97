package character

// xpPerLevelStep is the experience required to advance from level L to L+1,
// expressed as L * xpPerLevelStep.
const xpPerLevelStep = 100

// healthPerLevel is the max-health gain per level-up.
const healthPerLevel = 10

// ExperienceToNext returns the experience still needed for the next level.
//
// Postcondition: Returns >= 0.
func (c *Character) ExperienceToNext() int {
	need := c.Level * xpPerLevelStep
	if c.Experience >= need {
		return 0
	}
	return need - c.Experience
}

// GrantExperience adds experience and applies any resulting level-ups.
// Each level-up consumes the threshold, raises max health, and restores the
// character to full health.
//
// Precondition: amount must be >= 0.
// Postcondition: Returns the number of levels gained (possibly 0).
func (c *Character) GrantExperience(amount int) int {
	c.Experience += amount
	levels := 0
	for c.Experience >= c.Level*xpPerLevelStep {
		c.Experience -= c.Level * xpPerLevelStep
		c.Level++
		c.MaxHealth += healthPerLevel
		c.Health = c.MaxHealth
		levels++
	}
	return levels
}
