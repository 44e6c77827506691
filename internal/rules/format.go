package rules

import "fmt"

// FormatKind is the closed set of bidding formats. Gimmick formats carry a
// subtype; every switch over FormatKind/GimmickKind in this package is
// exhaustive so an unknown variant cannot fall through silently.
type FormatKind int

const (
	Regular FormatKind = iota
	Whiz
	Mirror
	Gimmick
)

func (k FormatKind) String() string {
	switch k {
	case Regular:
		return "REGULAR"
	case Whiz:
		return "WHIZ"
	case Mirror:
		return "MIRROR"
	case Gimmick:
		return "GIMMICK"
	}
	return "UNKNOWN"
}

type GimmickKind int

const (
	Suicide GimmickKind = iota
	Bid4OrNil
	Bid3
	BidHearts
	CrazyAces
)

func (k GimmickKind) String() string {
	switch k {
	case Suicide:
		return "SUICIDE"
	case Bid4OrNil:
		return "BID_4_OR_NIL"
	case Bid3:
		return "BID_3"
	case BidHearts:
		return "BID_HEARTS"
	case CrazyAces:
		return "CRAZY_ACES"
	}
	return "UNKNOWN"
}

// Format fully describes the bidding variant of one game.
type Format struct {
	Kind          FormatKind  `json:"kind"`
	Gimmick       GimmickKind `json:"gimmick,omitempty"`
	AllowNil      bool        `json:"allowNil"`
	AllowBlindNil bool        `json:"allowBlindNil"`
}

func (f Format) String() string {
	if f.Kind == Gimmick {
		return fmt.Sprintf("%s/%s", f.Kind, f.Gimmick)
	}
	return f.Kind.String()
}

// ParseFormat maps the wire names onto the variant type.
func ParseFormat(kind, gimmick string) (FormatKind, GimmickKind, error) {
	var k FormatKind
	switch kind {
	case "REGULAR":
		k = Regular
	case "WHIZ":
		k = Whiz
	case "MIRROR":
		k = Mirror
	case "GIMMICK":
		k = Gimmick
	default:
		return 0, 0, fmt.Errorf("unknown format %q", kind)
	}
	if k != Gimmick {
		return k, 0, nil
	}
	switch gimmick {
	case "SUICIDE":
		return k, Suicide, nil
	case "BID_4_OR_NIL":
		return k, Bid4OrNil, nil
	case "BID_3":
		return k, Bid3, nil
	case "BID_HEARTS":
		return k, BidHearts, nil
	case "CRAZY_ACES":
		return k, CrazyAces, nil
	default:
		return 0, 0, fmt.Errorf("unknown gimmick %q", gimmick)
	}
}

// Special holds the play-constraint overlays. At most one is set in practice;
// if both are, Screamer wins where they conflict.
type Special struct {
	Screamer bool `json:"screamer"`
	Assassin bool `json:"assassin"`
}
