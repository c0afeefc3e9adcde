package catalog

// Tracker remembers which identity tokens belong to records currently in
// a catalog, counting the records that hold each one. It does no locking
// of its own; the owning Catalog's mutex covers it together with the
// record list.
type Tracker struct {
	holders         map[string]int
	dedupCategories bool
}

func NewTracker() *Tracker {
	return &Tracker{holders: make(map[string]int)}
}

// Admit decides whether a record may enter the catalog and, if so,
// claims its token.
//
// By default categories are always admitted but still claim a non-empty
// token, so a later question reusing a category's marker is rejected.
// This means re-importing a bank adds its categories again rather than
// adding nothing; use WithCategoryDedup for the idempotent reading, where
// categories go through the same check as questions. Records without a
// token are always admitted.
func (t *Tracker) Admit(token string, isCategory bool) bool {
	if isCategory && !t.dedupCategories {
		if token != "" {
			t.holders[token]++
		}
		return true
	}
	if token == "" {
		return true
	}
	if t.holders[token] > 0 {
		return false
	}
	t.holders[token] = 1
	return true
}

// Release drops one holder of token. The token becomes free for import
// again once no record holds it.
func (t *Tracker) Release(token string) {
	n, ok := t.holders[token]
	if token == "" || !ok {
		return
	}
	if n <= 1 {
		delete(t.holders, token)
		return
	}
	t.holders[token] = n - 1
}

// Has reports whether token is currently claimed.
func (t *Tracker) Has(token string) bool {
	return t.holders[token] > 0
}

// Len returns the number of distinct claimed tokens.
func (t *Tracker) Len() int {
	return len(t.holders)
}

// Reset forgets every token.
func (t *Tracker) Reset() {
	t.holders = make(map[string]int)
}
