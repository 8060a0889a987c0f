package reconcile

import (
	"strings"

	"skyline/opsboard/internal/constants"
	gormModels "skyline/opsboard/internal/models/gorm"
)

// NextColor picks the least-used palette colour, ties going to palette
// order. Unused colours are therefore handed out first and assignment wraps
// around deterministically once the palette is exhausted.
func NextColor(used map[string]int) string {
	best := constants.CustomerPalette[0]
	bestCount := -1
	for _, c := range constants.CustomerPalette {
		n := used[c]
		if bestCount < 0 || n < bestCount {
			best, bestCount = c, n
		}
	}
	return best
}

// UsedColors counts the colours held by active customers.
func UsedColors(customers []gormModels.Customer) map[string]int {
	used := make(map[string]int, len(constants.CustomerPalette))
	for _, c := range customers {
		if !c.IsActive || c.Color == "" {
			continue
		}
		used[strings.ToUpper(c.Color)]++
	}
	return used
}

// AssignColors fills in a colour for every customer lacking one, threading
// the usage counts through the batch. Colours given explicitly in the batch
// are counted before any assignment.
func AssignColors(customers []gormModels.Customer, used map[string]int) {
	for _, c := range customers {
		if c.Color != "" {
			used[strings.ToUpper(c.Color)]++
		}
	}
	for i := range customers {
		if customers[i].Color != "" {
			continue
		}
		c := NextColor(used)
		customers[i].Color = c
		used[c]++
	}
}
