package rules

import (
	"errors"
	"testing"

	"github.com/tomBUXDAO2/bux-spades-sub005/internal/cards"
)

func mustCards(t *testing.T, codes ...string) []cards.Card {
	t.Helper()
	out := make([]cards.Card, 0, len(codes))
	for _, code := range codes {
		c, err := cards.Parse(code)
		if err != nil {
			t.Fatalf("bad test card %q: %v", code, err)
		}
		out = append(out, c)
	}
	return out
}

func intPtr(v int) *int { return &v }

func TestWhizBidSet(t *testing.T) {
	hand := mustCards(t, "AS", "KS", "4S", "2H", "3H", "7D", "8D", "9D", "JC", "QC", "KC", "AC", "2C")
	// 3 spades: exactly {0, 3} legal.
	f := Format{Kind: Whiz}
	for bid := 0; bid <= 13; bid++ {
		err := CheckBid(f, hand, BidContext{}, bid, false)
		wantLegal := bid == 0 || bid == 3
		if wantLegal && err != nil {
			t.Fatalf("whiz bid %d: unexpected err %v", bid, err)
		}
		if !wantLegal && err == nil {
			t.Fatalf("whiz bid %d: expected rejection", bid)
		}
	}
}

func TestMirrorBidForced(t *testing.T) {
	hand := mustCards(t, "AS", "KS", "4S", "7S", "3H", "7D", "8D", "9D", "JC", "QC", "KC", "AC", "2C")
	f := Format{Kind: Mirror}
	if err := CheckBid(f, hand, BidContext{}, 4, false); err != nil {
		t.Fatalf("mirror bid == spade count should be legal: %v", err)
	}
	for _, off := range []int{3, 5} {
		if err := CheckBid(f, hand, BidContext{}, off, false); err == nil {
			t.Fatalf("mirror bid %d (spades±1) must be rejected", off)
		}
	}
}

func TestRegularBidBounds(t *testing.T) {
	hand := mustCards(t, "AS", "KS", "4S", "7S", "3H", "7D", "8D", "9D", "JC", "QC", "KC", "AC", "2C")
	cases := []struct {
		name    string
		f       Format
		bid     int
		blind   bool
		ctx     BidContext
		wantErr bool
	}{
		{"any count legal", Format{Kind: Regular, AllowNil: true}, 7, false, BidContext{}, false},
		{"nil legal when allowed", Format{Kind: Regular, AllowNil: true}, 0, false, BidContext{}, false},
		{"nil illegal when disallowed", Format{Kind: Regular}, 0, false, BidContext{}, true},
		{"out of range", Format{Kind: Regular, AllowNil: true}, 14, false, BidContext{}, true},
		{"blind nil before seeing hand", Format{Kind: Regular, AllowNil: true, AllowBlindNil: true}, 0, true, BidContext{}, false},
		{"blind nil after seeing hand", Format{Kind: Regular, AllowNil: true, AllowBlindNil: true}, 0, true, BidContext{SeenHand: true}, true},
		{"blind nil disallowed", Format{Kind: Regular, AllowNil: true}, 0, true, BidContext{}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := CheckBid(tc.f, hand, tc.ctx, tc.bid, tc.blind)
			if tc.wantErr && err == nil {
				t.Fatalf("expected rejection")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected err: %v", err)
			}
		})
	}
}

func TestGimmickBidSets(t *testing.T) {
	// 2 hearts, 2 aces, 4 spades.
	hand := mustCards(t, "AS", "KS", "4S", "7S", "3H", "AH", "8D", "9D", "JC", "QC", "KC", "AC", "2C")
	cases := []struct {
		name string
		f    Format
		ctx  BidContext
		want []int
	}{
		{"bid 4 or nil", Format{Kind: Gimmick, Gimmick: Bid4OrNil}, BidContext{}, []int{0, 4}},
		{"bid 3", Format{Kind: Gimmick, Gimmick: Bid3}, BidContext{}, []int{3}},
		{"bid hearts", Format{Kind: Gimmick, Gimmick: BidHearts}, BidContext{}, []int{2}},
		{"crazy aces", Format{Kind: Gimmick, Gimmick: CrazyAces}, BidContext{}, []int{9}},
		{"suicide second partner forced nil", Format{Kind: Gimmick, Gimmick: Suicide}, BidContext{PartnerBid: intPtr(4)}, []int{0}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := LegalBids(tc.f, hand, tc.ctx)
			if len(got) != len(tc.want) {
				t.Fatalf("LegalBids = %v, want %v", got, tc.want)
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Fatalf("LegalBids = %v, want %v", got, tc.want)
				}
			}
		})
	}
}

func TestSuicideSecondPartnerForcedAwayFromNil(t *testing.T) {
	hand := mustCards(t, "AS", "KS", "4S", "7S", "3H", "AH", "8D", "9D", "JC", "QC", "KC", "AC", "2C")
	f := Format{Kind: Gimmick, Gimmick: Suicide}
	ctx := BidContext{PartnerBid: intPtr(0)}
	if err := CheckBid(f, hand, ctx, 0, false); !errors.Is(err, ErrIllegalBid) {
		t.Fatalf("second suicide partner may not also bid nil, got %v", err)
	}
	if err := CheckBid(f, hand, ctx, 5, false); err != nil {
		t.Fatalf("non-nil bid should be legal: %v", err)
	}
	// First partner is unconstrained.
	if err := CheckBid(f, hand, BidContext{}, 0, false); err != nil {
		t.Fatalf("first suicide partner may bid nil: %v", err)
	}
}

func TestFollowSuit(t *testing.T) {
	hand := mustCards(t, "2H", "9H", "4D", "AS")
	hearts := cards.Hearts
	legal := LegalPlays(Special{}, hand, TrickView{LeadSuit: &hearts, SpadesBroken: true})
	if len(legal) != 2 {
		t.Fatalf("holding the lead suit must restrict to it, got %v", legal)
	}
	for _, c := range legal {
		if c.Suit != cards.Hearts {
			t.Fatalf("non-heart %v in legal set", c)
		}
	}

	// Void in lead suit: anything goes.
	void := mustCards(t, "4D", "AS", "JC")
	legal = LegalPlays(Special{}, void, TrickView{LeadSuit: &hearts, SpadesBroken: true})
	if len(legal) != 3 {
		t.Fatalf("void seat may play anything, got %v", legal)
	}
}

func TestSpadesNotLedUntilBroken(t *testing.T) {
	hand := mustCards(t, "AS", "2H", "9C")
	legal := LegalPlays(Special{}, hand, TrickView{SpadesBroken: false})
	for _, c := range legal {
		if c.Suit == cards.Spades {
			t.Fatalf("spade lead before break: %v", legal)
		}
	}

	onlySpades := mustCards(t, "AS", "4S")
	legal = LegalPlays(Special{}, onlySpades, TrickView{SpadesBroken: false})
	if len(legal) != 2 {
		t.Fatalf("all-spade hand must still be able to lead, got %v", legal)
	}
}

func TestScreamer(t *testing.T) {
	hand := mustCards(t, "AS", "4S", "2H", "9C")
	hearts := cards.Hearts
	spades := cards.Spades

	// Discarding while void in lead suit: spades stay in hand.
	void := mustCards(t, "AS", "4S", "9C")
	diamonds := cards.Diamonds
	legal := LegalPlays(Special{Screamer: true}, void, TrickView{LeadSuit: &diamonds, SpadesBroken: true})
	if len(legal) != 1 || legal[0].Suit != cards.Clubs {
		t.Fatalf("screamer discard must avoid spades, got %v", legal)
	}

	// Following a spade lead is allowed.
	legal = LegalPlays(Special{Screamer: true}, hand, TrickView{LeadSuit: &spades, SpadesBroken: true})
	for _, c := range legal {
		if c.Suit != cards.Spades {
			t.Fatalf("must follow spade lead, got %v", legal)
		}
	}

	// Void in everything else: spades become playable.
	onlySpades := mustCards(t, "AS", "4S")
	legal = LegalPlays(Special{Screamer: true}, onlySpades, TrickView{LeadSuit: &hearts, SpadesBroken: true})
	if len(legal) != 2 {
		t.Fatalf("spades-only hand must keep a legal play, got %v", legal)
	}
}

func TestAssassin(t *testing.T) {
	// Void in the lead suit and holding spades: must cut.
	hand := mustCards(t, "AS", "4S", "9C")
	hearts := cards.Hearts
	legal := LegalPlays(Special{Assassin: true}, hand, TrickView{LeadSuit: &hearts, SpadesBroken: true})
	for _, c := range legal {
		if c.Suit != cards.Spades {
			t.Fatalf("assassin must cut with a spade, got %v", legal)
		}
	}

	// Holding the lead suit: following still wins over the overlay.
	follow := mustCards(t, "AS", "2H", "9C")
	legal = LegalPlays(Special{Assassin: true}, follow, TrickView{LeadSuit: &hearts, SpadesBroken: true})
	if len(legal) != 1 || legal[0].Suit != cards.Hearts {
		t.Fatalf("must follow suit before assassin applies, got %v", legal)
	}
}
