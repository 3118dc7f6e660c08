package models

// Bracket is the full tree view: every round mapped to its matches in slot
// order. Rounds with no matches yet are present with an empty list.
type Bracket struct {
	Rounds map[Round][]*Match `json:"rounds"`
}

func NewBracket() *Bracket {
	b := &Bracket{Rounds: make(map[Round][]*Match, len(Rounds))}
	for _, r := range Rounds {
		b.Rounds[r] = []*Match{}
	}
	return b
}
