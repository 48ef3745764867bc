package game

import (
	"errors"
	"strings"

	"github.com/samber/lo"

	constants "vortfluo/internal/constants"
	models "vortfluo/internal/models"
)

var ErrInvalidGuessLength = errors.New("guess length does not match secret word")

// CheckGuess scores one guess against the secret word, position by position:
// exact on a positional match, present when the letter occurs anywhere in the
// secret, absent otherwise. Present is a pure membership check; repeated
// letters in the guess are not reconciled against how often they occur in the
// secret.
func CheckGuess(secret, guess string) (models.AttemptResult, error) {
	if len(guess) != len(secret) {
		return nil, ErrInvalidGuessLength
	}

	result := make(models.AttemptResult, len(guess))
	for i := range guess {
		letter := string(guess[i])
		switch {
		case guess[i] == secret[i]:
			result[i] = models.GuessResult{Letter: letter, Status: constants.GuessStatusExact}
		case strings.ContainsRune(secret, rune(guess[i])):
			result[i] = models.GuessResult{Letter: letter, Status: constants.GuessStatusPresent}
		default:
			result[i] = models.GuessResult{Letter: letter, Status: constants.GuessStatusAbsent}
		}
	}
	return result, nil
}

// IsWinning reports whether every judgement in the attempt is exact.
func IsWinning(result models.AttemptResult) bool {
	if len(result) == 0 {
		return false
	}
	return lo.EveryBy(result, func(r models.GuessResult) bool {
		return r.Status == constants.GuessStatusExact
	})
}

// Resolve derives the terminal status from the attempt history. The win
// check runs before the attempt-cap check, so an all-exact guess on the
// final allowed attempt wins.
func Resolve(attempts []models.AttemptResult) models.Outcome {
	if len(attempts) == 0 {
		return models.OutcomeOngoing
	}
	if IsWinning(attempts[len(attempts)-1]) {
		return models.OutcomeWon
	}
	if len(attempts) >= constants.MaxAttempts {
		return models.OutcomeLost
	}
	return models.OutcomeOngoing
}
