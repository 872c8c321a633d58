package world

import "sort"

type hateEntry struct {
	PlayerID string
	Points   int
}

// HateList accumulates hate per player. Ranking is by descending points;
// equal points keep first-insertion order.
type HateList struct {
	entries []hateEntry
}

// Add increases the hate for playerID, creating the entry if needed.
// It returns the new total.
func (h *HateList) Add(playerID string, points int) int {
	for i := range h.entries {
		if h.entries[i].PlayerID == playerID {
			h.entries[i].Points += points
			return h.entries[i].Points
		}
	}
	h.entries = append(h.entries, hateEntry{PlayerID: playerID, Points: points})
	return points
}

func (h *HateList) Points(playerID string) int {
	for _, e := range h.entries {
		if e.PlayerID == playerID {
			return e.Points
		}
	}
	return 0
}

func (h *HateList) Has(playerID string) bool {
	for _, e := range h.entries {
		if e.PlayerID == playerID {
			return true
		}
	}
	return false
}

func (h *HateList) Remove(playerID string) bool {
	for i, e := range h.entries {
		if e.PlayerID == playerID {
			h.entries = append(h.entries[:i], h.entries[i+1:]...)
			return true
		}
	}
	return false
}

func (h *HateList) Len() int {
	return len(h.entries)
}

// IDs returns the hated player ids in insertion order.
func (h *HateList) IDs() []string {
	ids := make([]string, len(h.entries))
	for i, e := range h.entries {
		ids[i] = e.PlayerID
	}
	return ids
}

// Ranked returns player ids from most to least hated.
func (h *HateList) Ranked() []string {
	sorted := append([]hateEntry(nil), h.entries...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Points > sorted[j].Points
	})
	ids := make([]string, len(sorted))
	for i, e := range sorted {
		ids[i] = e.PlayerID
	}
	return ids
}

func (h *HateList) Clear() {
	h.entries = nil
}
