package shell

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/samber/lo"

	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
)

// render - draws the board with free cells numbered and the winning line in brackets, then the status.
func render(game *entity.Game) string {
	board := game.Board
	size := board.Size()
	width := len(strconv.Itoa(size*size - 1))

	var sb strings.Builder

	for row := range size {
		for col := range size {
			index := row*size + col

			text := board.Cell(index).String()
			if text == "" {
				text = strconv.Itoa(index)
			}

			if lo.Contains(game.Outcome.Line, index) {
				fmt.Fprintf(&sb, "[%*s]", width, text)
			} else {
				fmt.Fprintf(&sb, " %*s ", width, text)
			}
		}

		sb.WriteString("\n")
	}

	sb.WriteString(status(game))

	return sb.String()
}

func status(game *entity.Game) string {
	switch game.Outcome.Kind {
	case entity.OutcomeWin:
		if game.AIMark() == game.Outcome.Winner {
			return "Computer wins"
		}
		return game.Outcome.Winner.String() + " wins"
	case entity.OutcomeDraw:
		return "Draw"
	case entity.OutcomeInProgress:
	}

	if game.IsAITurn() {
		return game.Turn.String() + " to move (computer)"
	}

	return game.Turn.String() + " to move"
}
