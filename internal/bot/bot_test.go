package bot

import (
	"math/rand"
	"testing"

	"github.com/tomBUXDAO2/bux-spades-sub005/internal/cards"
	"github.com/tomBUXDAO2/bux-spades-sub005/internal/engine"
	"github.com/tomBUXDAO2/bux-spades-sub005/internal/rules"
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

func allFormats() []struct {
	name    string
	format  rules.Format
	special rules.Special
} {
	return []struct {
		name    string
		format  rules.Format
		special rules.Special
	}{
		{"regular", rules.Format{Kind: rules.Regular, AllowNil: true}, rules.Special{}},
		{"regular no nil", rules.Format{Kind: rules.Regular}, rules.Special{}},
		{"whiz", rules.Format{Kind: rules.Whiz}, rules.Special{}},
		{"mirror", rules.Format{Kind: rules.Mirror}, rules.Special{}},
		{"suicide", rules.Format{Kind: rules.Gimmick, Gimmick: rules.Suicide}, rules.Special{}},
		{"bid 4 or nil", rules.Format{Kind: rules.Gimmick, Gimmick: rules.Bid4OrNil}, rules.Special{}},
		{"bid 3", rules.Format{Kind: rules.Gimmick, Gimmick: rules.Bid3}, rules.Special{}},
		{"bid hearts", rules.Format{Kind: rules.Gimmick, Gimmick: rules.BidHearts}, rules.Special{}},
		{"crazy aces", rules.Format{Kind: rules.Gimmick, Gimmick: rules.CrazyAces}, rules.Special{}},
		{"screamer", rules.Format{Kind: rules.Regular, AllowNil: true}, rules.Special{Screamer: true}},
		{"assassin", rules.Format{Kind: rules.Regular, AllowNil: true}, rules.Special{Assassin: true}},
	}
}

// Every decision the bot makes over a whole game must pass the rule engine;
// the game Apply rejects anything illegal, so a clean run is the assertion.
func TestBotDecisionsAlwaysLegal(t *testing.T) {
	for _, tc := range allFormats() {
		t.Run(tc.name, func(t *testing.T) {
			g := engine.NewGame("g1", tc.format, tc.special, engine.Partners, -150, 250)
			rng := rand.New(rand.NewSource(17))
			if _, err := g.Apply(engine.Command{Type: engine.CmdFillWithBots}, rng); err != nil {
				t.Fatalf("fill: %v", err)
			}
			if _, err := g.Apply(engine.Command{Type: engine.CmdStartGame}, rng); err != nil {
				t.Fatalf("start: %v", err)
			}

			for steps := 0; g.Phase != engine.PhaseFinished; steps++ {
				if steps > 20000 {
					t.Fatalf("game did not terminate")
				}
				seat := g.Current
				var cmd engine.Command
				switch g.Phase {
				case engine.PhaseBidding:
					cmd = engine.Command{Type: engine.CmdMakeBid, Seat: seat, Bid: Bid(g, seat)}
				case engine.PhasePlaying:
					cmd = engine.Command{Type: engine.CmdPlayCard, Seat: seat, Card: Play(g, seat)}
				default:
					t.Fatalf("unexpected phase %s", g.Phase)
				}
				if _, err := g.Apply(cmd, rng); err != nil {
					t.Fatalf("%s: seat %d made an illegal move: %v", tc.name, seat, err)
				}
			}
		})
	}
}

func TestSuicideFirstPartnerBid(t *testing.T) {
	safe := mustCards(t, "2S", "4S", "2H", "3H", "4H", "6H", "2D", "5D", "7D", "8D", "2C", "4C", "6C")
	unsafe := mustCards(t, "AS", "KS", "QS", "JS", "4S", "AH", "KH", "2D", "5D", "7D", "AC", "KC", "6C")

	g := engine.NewGame("g1", rules.Format{Kind: rules.Gimmick, Gimmick: rules.Suicide}, rules.Special{}, engine.Partners, -200, 500)
	g.Phase = engine.PhaseBidding
	g.Seats[0] = engine.Seat{State: engine.SeatBot, Hand: safe, SeenHand: true}
	g.Current = 0
	if bid := Bid(g, 0); bid != 0 {
		t.Fatalf("nil-safe first partner should bid nil, got %d", bid)
	}

	g.Seats[0].Hand = unsafe
	want := Estimate(unsafe) + 1
	if bid := Bid(g, 0); bid != want {
		t.Fatalf("nil-unsafe first partner should bid estimate+1 = %d, got %d", want, bid)
	}

	// Second partner follows the forced rule.
	four := 4
	g.Seats[2] = engine.Seat{State: engine.SeatBot, Hand: safe, SeenHand: true, Bid: &four}
	if bid := Bid(g, 0); bid != 0 {
		t.Fatalf("second partner must take the nil, got %d", bid)
	}
	zero := 0
	g.Seats[2].Bid = &zero
	if bid := Bid(g, 0); bid == 0 {
		t.Fatalf("second partner must be forced away from nil")
	}
}

func TestCoverNilPlaysHighBeforePartner(t *testing.T) {
	g := engine.NewGame("g1", rules.Format{Kind: rules.Regular, AllowNil: true}, rules.Special{}, engine.Partners, -200, 500)
	g.Phase = engine.PhasePlaying
	g.SpadesBroken = true
	zero, three := 0, 3
	g.Seats[1] = engine.Seat{State: engine.SeatBot, SeenHand: true, Bid: &three,
		Hand: mustCards(t, "2H", "9H", "KH", "4D")}
	g.Seats[3] = engine.Seat{State: engine.SeatHuman, SeenHand: true, Bid: &zero,
		Hand: mustCards(t, "3H", "5H", "6D", "7D")}

	// Seat 1 leads, nil partner (3) still to play: lead high.
	g.Current = 1
	g.Trick = engine.Trick{Number: 2, Lead: 1, Winner: -1}
	c := Play(g, 1)
	if c.String() != "KH" {
		t.Fatalf("cover before nil partner: want KH, got %s", c)
	}

	// Nil partner already played: stay low.
	g.Trick.Plays = []engine.Play{
		{Seat: 2, Card: mustCards(t, "4H")[0]},
		{Seat: 3, Card: mustCards(t, "3H")[0]},
	}
	c = Play(g, 1)
	if c.String() != "2H" {
		t.Fatalf("cover after nil partner: want 2H, got %s", c)
	}
}

func TestNilBidderDucks(t *testing.T) {
	g := engine.NewGame("g1", rules.Format{Kind: rules.Regular, AllowNil: true}, rules.Special{}, engine.Partners, -200, 500)
	g.Phase = engine.PhasePlaying
	g.SpadesBroken = true
	zero := 0
	g.Seats[2] = engine.Seat{State: engine.SeatBot, SeenHand: true, Bid: &zero,
		Hand: mustCards(t, "3H", "10H", "QH", "2C")}
	g.Current = 2
	g.Trick = engine.Trick{Number: 1, Lead: 0, Winner: -1, Plays: []engine.Play{
		{Seat: 0, Card: mustCards(t, "JH")[0]},
		{Seat: 1, Card: mustCards(t, "5H")[0]},
	}}

	// Highest heart under the jack keeps the nil alive.
	c := Play(g, 2)
	if c.String() != "10H" {
		t.Fatalf("duck: want 10H (highest non-winning), got %s", c)
	}
}

func TestForcedFormatsBidTheForcedValue(t *testing.T) {
	hand := mustCards(t, "AS", "KS", "4S", "7S", "3H", "AH", "8D", "9D", "JC", "QC", "KC", "AC", "2C")
	cases := []struct {
		name   string
		format rules.Format
		want   int
	}{
		{"mirror", rules.Format{Kind: rules.Mirror}, 4},
		{"bid 3", rules.Format{Kind: rules.Gimmick, Gimmick: rules.Bid3}, 3},
		{"bid hearts", rules.Format{Kind: rules.Gimmick, Gimmick: rules.BidHearts}, 2},
		{"crazy aces", rules.Format{Kind: rules.Gimmick, Gimmick: rules.CrazyAces}, 9},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			g := engine.NewGame("g1", tc.format, rules.Special{}, engine.Partners, -200, 500)
			g.Phase = engine.PhaseBidding
			g.Seats[0] = engine.Seat{State: engine.SeatBot, Hand: hand, SeenHand: true}
			g.Current = 0
			if bid := Bid(g, 0); bid != tc.want {
				t.Fatalf("want forced bid %d, got %d", tc.want, bid)
			}
		})
	}
}
