package entity

type OutcomeKind string

const (
	OutcomeInProgress OutcomeKind = "in_progress"
	OutcomeWin        OutcomeKind = "win"
	OutcomeDraw       OutcomeKind = "draw"
)

// Outcome is derived from a board on demand and never stored as the source of truth.
type Outcome struct {
	Kind   OutcomeKind `json:"kind"`
	Winner Mark        `json:"winner,omitempty"`
	Line   []int       `json:"line,omitempty"`
}

func (that Outcome) IsOver() bool {
	return that.Kind == OutcomeWin || that.Kind == OutcomeDraw
}

// NoMove marks a SearchResult for a board without empty cells.
const NoMove = -1

type SearchResult struct {
	Move  int `json:"move"`
	Score int `json:"score"`
}

func (that SearchResult) HasMove() bool {
	return that.Move != NoMove
}
