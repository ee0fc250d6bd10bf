package book

// PriceLevel is the set of resting orders at one exact price on one side.
// Entries are kept in insertion order (time priority); equal-price inserts
// always land at the tail, and removals/mutations that don't touch an
// entry must never reorder the rest.
type PriceLevel struct {
	Price   Price
	Side    Side
	Entries []*LevelEntry
}

// append adds a new entry to the tail of the equal-price run.
func (lvl *PriceLevel) append(entry *LevelEntry) {
	entry.level = lvl
	lvl.Entries = append(lvl.Entries, entry)
}

// remove erases the given entry by identity, preserving the relative order
// of the remaining entries. Returns false if the entry was not found (a
// bug, never expected in correct use).
func (lvl *PriceLevel) remove(entry *LevelEntry) bool {
	for i, e := range lvl.Entries {
		if e == entry {
			lvl.Entries = append(lvl.Entries[:i], lvl.Entries[i+1:]...)
			return true
		}
	}
	return false
}

func (lvl *PriceLevel) empty() bool {
	return len(lvl.Entries) == 0
}

// volume sums the volume of every entry on this level.
func (lvl *PriceLevel) volume() Volume {
	var total Volume
	for _, e := range lvl.Entries {
		total += e.Volume
	}
	return total
}

// bidLess orders bid levels highest-price-first.
func bidLess(a, b *PriceLevel) bool {
	return a.Price > b.Price
}

// askLess orders ask levels lowest-price-first.
func askLess(a, b *PriceLevel) bool {
	return a.Price < b.Price
}
