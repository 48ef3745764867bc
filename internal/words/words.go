package words

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"math/big"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	constants "vortfluo/internal/constants"
	models "vortfluo/internal/models"
)

// Source supplies the secret word for new games.
type Source struct {
	words []string
}

// Load reads the dictionary file and keeps the entries of the configured
// word length, uppercased.
func Load(path string) (*Source, error) {
	log.Info().Str("path", path).Msg("loading words")

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var wl models.WordList
	if err := json.Unmarshal(data, &wl); err != nil {
		return nil, err
	}

	list := lo.FilterMap(wl.Words, func(entry models.WordEntry, _ int) (string, bool) {
		w := strings.ToUpper(strings.TrimSpace(entry.Word))
		if len(w) != constants.WordLength {
			log.Warn().Str("word", entry.Word).Msgf("skipping word: not %d letters", constants.WordLength)
			return "", false
		}
		return w, true
	})

	if len(list) == 0 {
		return nil, errors.New("word list is empty")
	}

	log.Info().Int("count", len(list)).Msg("loaded words")
	return &Source{words: list}, nil
}

func (s *Source) Count() int {
	return len(s.words)
}

// Draw returns a randomly selected secret word.
func (s *Source) Draw(ctx context.Context) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	default:
	}

	n, err := rand.Int(rand.Reader, big.NewInt(int64(len(s.words))))
	if err != nil {
		log.Warn().Err(err).Msg("random draw failed, using fallback word")
		return s.words[0], nil
	}
	return s.words[n.Int64()], nil
}
