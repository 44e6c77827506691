package engine

// ResolveTrick returns the seat that won a trick of four plays. The highest
// spade wins; with no spade played, the highest card of the lead suit wins.
// The function is pure, so re-resolving the same plays is idempotent.
func ResolveTrick(plays []Play) int {
	lead := plays[0].Card.Suit
	best := 0
	for i := 1; i < len(plays); i++ {
		if plays[i].Card.Beats(plays[best].Card, lead) {
			best = i
		}
	}
	return plays[best].Seat
}
