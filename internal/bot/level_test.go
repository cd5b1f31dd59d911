package bot

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeLevel(t *testing.T) {
	testCases := []struct {
		name      string
		totalXP   int
		level     int
		currentXP int
		nextXP    int
	}{
		{name: "fresh user", totalXP: 0, level: 1, currentXP: 0, nextXP: 10},
		{name: "just below first threshold", totalXP: 9, level: 1, currentXP: 9, nextXP: 10},
		{name: "first level up", totalXP: 10, level: 2, currentXP: 0, nextXP: 20},
		{name: "mid second level", totalXP: 25, level: 2, currentXP: 15, nextXP: 20},
		{name: "just below second threshold", totalXP: 29, level: 2, currentXP: 19, nextXP: 20},
		{name: "second level up", totalXP: 30, level: 3, currentXP: 0, nextXP: 30},
		{name: "deep progression", totalXP: 100, level: 5, currentXP: 0, nextXP: 50},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			level, currentXP, nextXP := ComputeLevel(tc.totalXP)
			assert.Equal(t, tc.level, level)
			assert.Equal(t, tc.currentXP, currentXP)
			assert.Equal(t, tc.nextXP, nextXP)
		})
	}
}
