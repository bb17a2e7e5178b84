package settings

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/mcdev12/letterturn/go/internal/game/deck"
	"gopkg.in/yaml.v3"
)

// Settings holds the tunable game constants.
type Settings struct {
	TurnTimeLimitMs int      `yaml:"turn_time_limit_ms"`
	Alphabet        []string `yaml:"alphabet"`
	Wildcard        string   `yaml:"wildcard"`
	RoomCodeLength  int      `yaml:"room_code_length"`
}

// Default returns the standard game: 10s turns, 19 letters plus a wildcard,
// six character room codes.
func Default() Settings {
	return Settings{
		TurnTimeLimitMs: 10000,
		Alphabet:        append([]string(nil), deck.DefaultAlphabet...),
		Wildcard:        deck.DefaultWildcard,
		RoomCodeLength:  6,
	}
}

// TurnTimeLimit returns the per turn countdown.
func (s Settings) TurnTimeLimit() time.Duration {
	return time.Duration(s.TurnTimeLimitMs) * time.Millisecond
}

// Deck builds the letter deck described by the settings.
func (s Settings) Deck() *deck.Deck {
	return deck.New(s.Alphabet, s.Wildcard)
}

// Validate checks the settings describe a playable game.
func (s Settings) Validate() error {
	if s.TurnTimeLimitMs <= 0 {
		return fmt.Errorf("turn_time_limit_ms must be positive, got %d", s.TurnTimeLimitMs)
	}
	if s.RoomCodeLength < 4 {
		return fmt.Errorf("room_code_length must be at least 4, got %d", s.RoomCodeLength)
	}
	if s.Wildcard == "" {
		return errors.New("wildcard must not be empty")
	}
	if len(s.Alphabet) == 0 {
		return errors.New("alphabet must not be empty")
	}
	seen := map[string]bool{s.Wildcard: true}
	for _, l := range s.Alphabet {
		if l == "" {
			return errors.New("alphabet contains an empty symbol")
		}
		if seen[l] {
			return fmt.Errorf("duplicate symbol %q", l)
		}
		seen[l] = true
	}
	return nil
}

// Load reads settings from a YAML file. Keys missing from the file keep
// their default values; an empty path returns the defaults.
func Load(path string) (Settings, error) {
	s := Default()
	if path == "" {
		return s, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("failed to read game config: %w", err)
	}

	if err := yaml.Unmarshal(data, &s); err != nil {
		return Settings{}, fmt.Errorf("failed to parse game config: %w", err)
	}

	if err := s.Validate(); err != nil {
		return Settings{}, fmt.Errorf("invalid game config: %w", err)
	}
	return s, nil
}
