package models

import "time"

type WordEntry struct {
	Word string `json:"word"`
}

type WordList struct {
	Words []WordEntry `json:"words"`
}

// GuessResult is the judgement for a single letter position.
type GuessResult struct {
	Letter string `json:"letter"`
	Status string `json:"status"`
}

// AttemptResult is one fully scored guess, one judgement per position.
type AttemptResult []GuessResult

// Game is the per-session document held by the game store. The secret word
// never changes after creation; attempts only ever grow, up to MaxAttempts.
type Game struct {
	ID        string          `json:"id"`
	Word      string          `json:"word"`
	Attempts  []AttemptResult `json:"attempts"`
	CreatedAt time.Time       `json:"createdAt"`
}

func (g Game) AttemptCount() int {
	return len(g.Attempts)
}

type Outcome string

const (
	OutcomeOngoing Outcome = "ongoing"
	OutcomeWon     Outcome = "won"
	OutcomeLost    Outcome = "lost"
)
