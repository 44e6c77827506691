package engine

// ScoreHand converts the seats' bids and trick counts into per-side point
// deltas and bag counts for one completed hand. Bag-threshold penalties are
// applied by the caller against the running counters.
//
// Nil bids score ±100 (±200 blind) per seat and contribute nothing to the
// side's made-bid requirement; tricks a nil bidder won count as bags for the
// side. A made regular bid scores 10×bid plus one point per bag; a set bid
// scores −10×bid with no bag credit.
func ScoreHand(mode Mode, seats [4]Seat) (deltas, bags []int) {
	sides := 2
	if mode == Solo {
		sides = 4
	}
	deltas = make([]int, sides)
	bags = make([]int, sides)

	teamBid := make([]int, sides)
	teamTricks := make([]int, sides)

	for i := range seats {
		s := &seats[i]
		side := i % 2
		if mode == Solo {
			side = i
		}
		bid := 0
		if s.Bid != nil {
			bid = *s.Bid
		}

		if bid == 0 {
			unit := 100
			if s.BlindNil {
				unit = 200
			}
			if s.Tricks == 0 {
				deltas[side] += unit
			} else {
				deltas[side] -= unit
				// The broken nil's tricks still land on the side as bags.
				bags[side] += s.Tricks
				deltas[side] += s.Tricks
			}
			continue
		}
		teamBid[side] += bid
		teamTricks[side] += s.Tricks
	}

	for side := 0; side < sides; side++ {
		if teamBid[side] == 0 {
			continue
		}
		if teamTricks[side] >= teamBid[side] {
			over := teamTricks[side] - teamBid[side]
			deltas[side] += 10*teamBid[side] + over
			bags[side] += over
		} else {
			deltas[side] -= 10 * teamBid[side]
		}
	}
	return deltas, bags
}
