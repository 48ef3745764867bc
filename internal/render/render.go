package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"

	"github.com/samber/lo"

	constants "vortfluo/internal/constants"
	game "vortfluo/internal/game"
	models "vortfluo/internal/models"
)

const boardTemplate = `<main id="main" class="gc" style="grid-template-rows: repeat({{.GridRows}}, 1fr);">
{{- range .Rows}}
<div class="line">
{{- if .Current}}
{{- range $i, $sq := .Squares}}<div class="square current" data-index="{{$i}}"></div>{{end}}
{{- else}}
{{- range .Squares}}<div class="square {{.Status}}">{{.Letter}}</div>{{end}}
{{- end}}
</div>
{{- end}}
</main>`

var boardTpl = template.Must(template.New("board").Parse(boardTemplate))

type boardRow struct {
	Current bool
	Squares []models.GuessResult
}

type boardData struct {
	GridRows int
	Rows     []boardRow
}

// HTML renders game state into the fragments pushed over the update stream.
type HTML struct{}

// Board renders the full board: scored rows, the current input row while the
// game is ongoing, and blank rows for the remaining attempts.
func (HTML) Board(g models.Game) (string, error) {
	ongoing := game.Resolve(g.Attempts) == models.OutcomeOngoing

	rows := lo.Times(constants.MaxAttempts, func(n int) boardRow {
		if n < len(g.Attempts) {
			return boardRow{Squares: g.Attempts[n]}
		}
		if ongoing && n == len(g.Attempts) {
			return boardRow{Current: true, Squares: blankSquares()}
		}
		return boardRow{Squares: blankSquares()}
	})

	var buf bytes.Buffer
	err := boardTpl.Execute(&buf, boardData{
		GridRows: constants.MaxAttempts + 1,
		Rows:     rows,
	})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}

// ResetSignal clears the client's transient input state.
func (HTML) ResetSignal() string {
	payload := struct {
		Current int      `json:"current"`
		Squares []string `json:"squares"`
	}{
		Squares: make([]string, constants.WordLength),
	}
	b, _ := json.Marshal(payload)
	return string(b)
}

func (HTML) WonMessage(tries int) string {
	return fmt.Sprintf(`<main id="main" class="gc">YAY, found the word in %d tries!</main>`, tries)
}

func (HTML) LostMessage(word string) string {
	return fmt.Sprintf(`<main id="main" class="gc">:(, the word was %s...</main>`, template.HTMLEscapeString(word))
}

func blankSquares() []models.GuessResult {
	return make([]models.GuessResult, constants.WordLength)
}
