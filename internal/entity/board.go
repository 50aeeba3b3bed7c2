package entity

import (
	"encoding/json"
	"fmt"
	"iter"
	"math"
	"slices"
	"strings"
	"unicode"

	"github.com/samber/lo"

	"github.com/rocketscienceinc/tictactoe-engine/internal/apperror"
)

const (
	MinBoardSize = 3

	rowSeparator = "/"
	emptySymbol  = '.'
)

// Board is a fixed size square grid stored row-major.
type Board struct {
	size  int
	cells []Mark

	// lines is shared between clones and never mutated.
	lines [][]int
}

// NewBoard - creates an empty size x size board.
func NewBoard(size int) (*Board, error) {
	if size < MinBoardSize {
		return nil, fmt.Errorf("%w: %d is too small to form a line", apperror.ErrInvalidSize, size)
	}

	return &Board{
		size:  size,
		cells: make([]Mark, size*size),
		lines: boardLines(size),
	}, nil
}

func (that *Board) Size() int {
	return that.size
}

// Cell - returns the mark at index, Empty for an index outside the board.
func (that *Board) Cell(index int) Mark {
	if !that.inBounds(index) {
		return Empty
	}

	return that.cells[index]
}

// Cells - returns a copy of the cells in row-major order.
func (that *Board) Cells() []Mark {
	return slices.Clone(that.cells)
}

func (that *Board) Clone() *Board {
	return &Board{
		size:  that.size,
		cells: slices.Clone(that.cells),
		lines: that.lines,
	}
}

// Place - writes mark into an empty cell. The board is left untouched on error.
func (that *Board) Place(index int, mark Mark) error {
	if !that.inBounds(index) {
		return fmt.Errorf("%w: cell %d", apperror.ErrIndexOutOfBounds, index)
	}

	if !mark.IsPlayer() {
		return fmt.Errorf("%w: cannot place an empty mark", apperror.ErrInvalidMark)
	}

	if that.cells[index] != Empty {
		return fmt.Errorf("%w: cell %d", apperror.ErrCellOccupied, index)
	}

	that.cells[index] = mark

	return nil
}

// Clear - resets a cell to Empty.
func (that *Board) Clear(index int) error {
	if !that.inBounds(index) {
		return fmt.Errorf("%w: cell %d", apperror.ErrIndexOutOfBounds, index)
	}

	that.cells[index] = Empty

	return nil
}

// EmptyCells - yields the indices of empty cells in ascending order.
// The sequence reads the board lazily, so it reflects the board at iteration time.
func (that *Board) EmptyCells() iter.Seq[int] {
	return func(yield func(int) bool) {
		for i, cell := range that.cells {
			if cell != Empty {
				continue
			}

			if !yield(i) {
				return
			}
		}
	}
}

func (that *Board) IsFull() bool {
	return !slices.Contains(that.cells, Empty)
}

// Winner - returns the mark of the first complete line, scanning rows, columns, then both diagonals.
func (that *Board) Winner() Mark {
	for _, line := range that.lines {
		if mark := that.lineOwner(line); mark != Empty {
			return mark
		}
	}

	return Empty
}

// WinningLine - returns every index belonging to a complete line held by mark, sorted.
func (that *Board) WinningLine(mark Mark) []int {
	if !mark.IsPlayer() {
		return nil
	}

	var indices []int
	for _, line := range that.lines {
		if that.lineOwner(line) == mark {
			indices = append(indices, line...)
		}
	}

	indices = lo.Uniq(indices)
	slices.Sort(indices)

	return indices
}

// Evaluate - derives the game outcome from the board.
func (that *Board) Evaluate() Outcome {
	if winner := that.Winner(); winner != Empty {
		return Outcome{
			Kind:   OutcomeWin,
			Winner: winner,
			Line:   that.WinningLine(winner),
		}
	}

	if that.IsFull() {
		return Outcome{Kind: OutcomeDraw}
	}

	return Outcome{Kind: OutcomeInProgress}
}

// boardLines - rows, columns, main diagonal i*(n+1) and anti-diagonal (i+1)*(n-1), in scan order.
func boardLines(n int) [][]int {
	lines := make([][]int, 0, 2*n+2)

	for row := range n {
		line := make([]int, n)
		for col := range n {
			line[col] = row*n + col
		}
		lines = append(lines, line)
	}

	for col := range n {
		line := make([]int, n)
		for row := range n {
			line[row] = row*n + col
		}
		lines = append(lines, line)
	}

	mainDiagonal := make([]int, n)
	antiDiagonal := make([]int, n)
	for i := range n {
		mainDiagonal[i] = i * (n + 1)
		antiDiagonal[i] = (i + 1) * (n - 1)
	}

	return append(lines, mainDiagonal, antiDiagonal)
}

func (that *Board) lineOwner(line []int) Mark {
	first := that.cells[line[0]]
	if first == Empty {
		return Empty
	}

	for _, index := range line[1:] {
		if that.cells[index] != first {
			return Empty
		}
	}

	return first
}

func (that *Board) inBounds(index int) bool {
	return index >= 0 && index < len(that.cells)
}

// String - renders rows joined by "/" with "." for empty cells, e.g. "XO./.X./..O".
func (that *Board) String() string {
	rows := make([]string, 0, that.size)

	for row := range that.size {
		var sb strings.Builder
		for _, cell := range that.cells[row*that.size : (row+1)*that.size] {
			if cell == Empty {
				sb.WriteRune(emptySymbol)
				continue
			}
			sb.WriteString(cell.String())
		}
		rows = append(rows, sb.String())
	}

	return strings.Join(rows, rowSeparator)
}

// ParseBoard - parses the String form. Separators and whitespace are ignored,
// the size is inferred from the number of cells.
func ParseBoard(s string) (*Board, error) {
	symbols := []rune(strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || string(r) == rowSeparator {
			return -1
		}
		return r
	}, s))

	count := len(symbols)
	size := int(math.Sqrt(float64(count)))
	if size*size != count {
		return nil, fmt.Errorf("%w: %d cells do not form a square", apperror.ErrInvalidBoard, count)
	}

	board, err := NewBoard(size)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperror.ErrInvalidBoard, err)
	}

	for i, r := range symbols {
		mark, err := ParseMark(string(r))
		if err != nil {
			return nil, fmt.Errorf("%w: cell %d: %w", apperror.ErrInvalidBoard, i, err)
		}
		board.cells[i] = mark
	}

	return board, nil
}

type boardJSON struct {
	Size  int    `json:"size"`
	Cells []Mark `json:"cells"`
}

func (that *Board) MarshalJSON() ([]byte, error) {
	return json.Marshal(boardJSON{Size: that.size, Cells: that.cells})
}

func (that *Board) UnmarshalJSON(data []byte) error {
	var raw boardJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("failed to unmarshal board: %w", err)
	}

	if raw.Size < MinBoardSize {
		return fmt.Errorf("%w: %d", apperror.ErrInvalidSize, raw.Size)
	}

	if len(raw.Cells) != raw.Size*raw.Size {
		return fmt.Errorf("%w: expected %d cells, got %d", apperror.ErrInvalidBoard, raw.Size*raw.Size, len(raw.Cells))
	}

	that.size = raw.Size
	that.cells = raw.Cells
	that.lines = boardLines(raw.Size)

	return nil
}
