package card

// Wire encoding matches the aigames server: suit 1..5 where 5 is the
// joker pseudo-suit, value 3..17 where 16/17 are the two jokers.

type Suit int

const (
	Spades   Suit = 1
	Hearts   Suit = 2
	Diamonds Suit = 3
	Clubs    Suit = 4
	Joker    Suit = 5
)

type Value int

const (
	Three      Value = 3
	Four       Value = 4
	Five       Value = 5
	Six        Value = 6
	Seven      Value = 7
	Eight      Value = 8
	Nine       Value = 9
	Ten        Value = 10
	Jack       Value = 11
	Queen      Value = 12
	King       Value = 13
	Ace        Value = 14
	Two        Value = 15
	SmallJoker Value = 16
	BigJoker   Value = 17
)

var suitGlyphs = map[Suit]string{
	Spades:   "♠",
	Hearts:   "♥",
	Diamonds: "♦",
	Clubs:    "♣",
	Joker:    "王",
}

var valueLabels = map[Value]string{
	Three: "3", Four: "4", Five: "5", Six: "6", Seven: "7",
	Eight: "8", Nine: "9", Ten: "10",
	Jack: "J", Queen: "Q", King: "K", Ace: "A", Two: "2",
	SmallJoker: "小王", BigJoker: "大王",
}

type Card struct {
	Suit  Suit  `json:"suit"`
	Value Value `json:"value"`
}

// String renders the card for display. Jokers are named by value alone,
// everything else is suit glyph plus rank label.
func (c Card) String() string {
	if c.Suit == Joker {
		return valueLabels[c.Value]
	}
	return suitGlyphs[c.Suit] + valueLabels[c.Value]
}

// Color returns "red" for hearts and diamonds, "black" for everything
// else, jokers included.
func (c Card) Color() string {
	if c.Suit == Hearts || c.Suit == Diamonds {
		return "red"
	}
	return "black"
}

func (c Card) IsJoker() bool {
	return c.Suit == Joker
}

// Deck returns the full 54-card deck in suit-then-value order.
func Deck() []Card {
	deck := make([]Card, 0, 54)
	for _, s := range []Suit{Spades, Hearts, Diamonds, Clubs} {
		for v := Three; v <= Two; v++ {
			deck = append(deck, Card{Suit: s, Value: v})
		}
	}
	deck = append(deck, Card{Suit: Joker, Value: SmallJoker})
	deck = append(deck, Card{Suit: Joker, Value: BigJoker})
	return deck
}
