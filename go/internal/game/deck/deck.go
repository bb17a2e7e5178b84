package deck

import (
	"math/rand/v2"
	"strings"
)

// DefaultAlphabet is the board alphabet. Hard letters (Q U V W X Y Z) are left
// out so every letter is playable for most themes.
var DefaultAlphabet = []string{
	"A", "B", "C", "D", "E", "F", "G", "H", "I", "J",
	"K", "L", "M", "N", "O", "P", "R", "S", "T",
}

// DefaultWildcard stands in for any letter.
const DefaultWildcard = "*"

const roomCodeChars = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Deck produces shuffled boards from a fixed set of symbols.
type Deck struct {
	symbols []string
}

// New builds a deck from an alphabet plus one wildcard symbol.
func New(alphabet []string, wildcard string) *Deck {
	symbols := make([]string, 0, len(alphabet)+1)
	symbols = append(symbols, alphabet...)
	symbols = append(symbols, wildcard)
	return &Deck{symbols: symbols}
}

// DefaultDeck returns the 19 letter + wildcard deck.
func DefaultDeck() *Deck {
	return New(DefaultAlphabet, DefaultWildcard)
}

// Size is the number of symbols on every board.
func (d *Deck) Size() int {
	return len(d.symbols)
}

// Generate returns every symbol of the deck in uniformly random order.
func (d *Deck) Generate() []string {
	board := make([]string, len(d.symbols))
	copy(board, d.symbols)
	rand.Shuffle(len(board), func(i, j int) {
		board[i], board[j] = board[j], board[i]
	})
	return board
}

// NewRoomCode returns an n character code of uppercase letters and digits.
func NewRoomCode(n int) string {
	var b strings.Builder
	b.Grow(n)
	for range n {
		b.WriteByte(roomCodeChars[rand.IntN(len(roomCodeChars))])
	}
	return b.String()
}
