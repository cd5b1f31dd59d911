package bot

// ComputeLevel derives a user's level from cumulative XP (the sum of all
// usage counters).
//
// The threshold for the first level-up is 10 XP and grows by 10 per
// level: while the remaining XP covers the current threshold, consume it
// and advance. Returns the level, the XP accumulated toward the next
// level, and that next threshold.
//
// Examples: 0 XP is level 1 with 10 to go; 10 XP is level 2 with 0/20;
// 25 XP is level 2 with 15/20.
func ComputeLevel(totalXP int) (level, currentXP, nextXP int) {
	level = 1
	nextXP = 10
	currentXP = totalXP

	for currentXP >= nextXP {
		currentXP -= nextXP
		level++
		nextXP += 10
	}
	return level, currentXP, nextXP
}
