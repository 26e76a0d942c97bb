package tracker

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
)

// ErrUnsolvable is returned by Compute when the relaxation step can make no
// further progress on the cost matrix
var ErrUnsolvable = errors.New("munkres: matrix is unsolvable")

// zero markings used in the marked matrix
const (
	markNone    = 0
	markStarred = 1
	markPrimed  = 2
)

// Munkres solves the minimum cost assignment problem on dense cost matrices
// using the Kuhn-Munkres (Hungarian) algorithm.  A Munkres instance is
// reusable but not safe for concurrent use
type Munkres struct {
	// working copy of the cost matrix, padded to square
	c [][]float64
	// side of the padded square matrix
	n int
	// dimensions of the matrix as given by the caller
	origRows int
	origCols int
	// row and column covers
	rowCovered []bool
	colCovered []bool
	// zero markings, markStarred or markPrimed
	marked [][]int
	// alternating path built in step five
	path [][2]int
	// position of the uncovered prime found in step four
	z0r int
	z0c int
}

// NewMunkres initializes and returns a new Munkres solver
func NewMunkres() *Munkres {
	return &Munkres{}
}

// Compute returns a minimum cost assignment for the given cost matrix as
// (row, column) pairs in lexicographic order.  Rectangular matrices are
// padded to square internally, the result holds min(rows, cols) pairs.  All
// entries must be finite
func (m *Munkres) Compute(cost [][]float32) ([][2]int, error) {

	m.origRows = len(cost)
	m.origCols = 0

	if m.origRows > 0 {
		m.origCols = len(cost[0])
	}

	if m.origRows == 0 || m.origCols == 0 {
		return nil, nil
	}

	for i, row := range cost {
		if len(row) != m.origCols {
			return nil, errors.Errorf("munkres: row %d has %d columns, want %d",
				i, len(row), m.origCols)
		}
		for j, v := range row {
			if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
				return nil, errors.Errorf(
					"munkres: non-finite cost at (%d, %d)", i, j)
			}
		}
	}

	m.padMatrix(cost)

	m.rowCovered = make([]bool, m.n)
	m.colCovered = make([]bool, m.n)
	m.z0r = 0
	m.z0c = 0
	m.path = make([][2]int, m.n*m.n)

	m.marked = make([][]int, m.n)
	for i := range m.marked {
		m.marked[i] = make([]int, m.n)
	}

	step := 1

	for step >= 1 && step <= 6 {
		switch step {
		case 1:
			step = m.stepOne()
		case 2:
			step = m.stepTwo()
		case 3:
			step = m.stepThree()
		case 4:
			step = m.stepFour()
		case 5:
			step = m.stepFive()
		case 6:
			var err error
			step, err = m.stepSix()
			if err != nil {
				return nil, err
			}
		}
	}

	var pairs [][2]int

	for i := 0; i < m.origRows; i++ {
		for j := 0; j < m.origCols; j++ {
			if m.marked[i][j] == markStarred {
				pairs = append(pairs, [2]int{i, j})
			}
		}
	}

	return pairs, nil
}

// MakeCostMatrix converts a profit matrix into a cost matrix.  When invert
// is nil each entry x becomes max - x with max the largest entry of the
// whole matrix, otherwise invert is applied to every entry
func MakeCostMatrix(profit [][]float32,
	invert func(float32) float32) [][]float32 {

	if invert == nil {

		maximum := float32(math.Inf(-1))

		for _, row := range profit {
			for _, v := range row {
				if v > maximum {
					maximum = v
				}
			}
		}

		invert = func(x float32) float32 { return maximum - x }
	}

	cost := make([][]float32, len(profit))

	for i, row := range profit {
		cost[i] = make([]float32, len(row))
		for j, v := range row {
			cost[i][j] = invert(v)
		}
	}

	return cost
}

// padMatrix copies the cost matrix into a square float64 working matrix,
// filling padding rows and columns with a constant no smaller than any real
// entry so padding never displaces a real assignment
func (m *Munkres) padMatrix(cost [][]float32) {

	m.n = max(m.origRows, m.origCols)

	padValue := math.Inf(-1)

	for _, row := range cost {
		for _, v := range row {
			padValue = math.Max(padValue, float64(v))
		}
	}

	m.c = make([][]float64, m.n)

	for i := range m.c {
		m.c[i] = make([]float64, m.n)

		for j := range m.c[i] {
			if i < m.origRows && j < m.origCols {
				m.c[i][j] = float64(cost[i][j])
			} else {
				m.c[i][j] = padValue
			}
		}
	}
}

// stepOne subtracts the row minimum from every entry of each row
func (m *Munkres) stepOne() int {

	for i := 0; i < m.n; i++ {
		minVal := floats.Min(m.c[i])

		for j := 0; j < m.n; j++ {
			m.c[i][j] -= minVal
		}
	}

	return 2
}

// stepTwo greedily stars one zero per row and column
func (m *Munkres) stepTwo() int {

	for i := 0; i < m.n; i++ {
		for j := 0; j < m.n; j++ {
			if m.c[i][j] == 0 && !m.colCovered[j] && !m.rowCovered[i] {
				m.marked[i][j] = markStarred
				m.colCovered[j] = true
				m.rowCovered[i] = true
				break
			}
		}
	}

	m.clearCovers()
	return 3
}

// stepThree covers every column containing a starred zero, the assignment is
// complete once all columns are covered
func (m *Munkres) stepThree() int {

	count := 0

	for i := 0; i < m.n; i++ {
		for j := 0; j < m.n; j++ {
			if m.marked[i][j] == markStarred && !m.colCovered[j] {
				m.colCovered[j] = true
				count++
			}
		}
	}

	if count >= m.n {
		// done
		return 7
	}

	return 4
}

// stepFour primes uncovered zeros until one with no starred zero in its row
// is found, or no uncovered zero remains
func (m *Munkres) stepFour() int {

	row, col := 0, 0

	for {
		row, col = m.findZero(row, col)

		if row < 0 {
			return 6
		}

		m.marked[row][col] = markPrimed
		starCol := m.findStarInRow(row)

		if starCol < 0 {
			m.z0r = row
			m.z0c = col
			return 5
		}

		col = starCol
		m.rowCovered[row] = true
		m.colCovered[col] = false
	}
}

// stepFive flips stars and primes along the alternating path starting at the
// prime found in step four
func (m *Munkres) stepFive() int {

	count := 0
	m.path[count][0] = m.z0r
	m.path[count][1] = m.z0c

	for {
		row := m.findStarInCol(m.path[count][1])

		if row < 0 {
			break
		}

		count++
		m.path[count][0] = row
		m.path[count][1] = m.path[count-1][1]

		col := m.findPrimeInRow(m.path[count][0])
		count++
		m.path[count][0] = m.path[count-1][0]
		m.path[count][1] = col
	}

	m.convertPath(count)
	m.clearCovers()
	m.erasePrimes()

	return 3
}

// stepSix relaxes the matrix by the smallest uncovered entry, adding it to
// covered rows and subtracting it from uncovered columns.  When the pass
// changes nothing the matrix cannot be solved
func (m *Munkres) stepSix() (int, error) {

	minVal := m.findSmallest()
	events := 0

	for i := 0; i < m.n; i++ {
		for j := 0; j < m.n; j++ {
			if m.rowCovered[i] {
				m.c[i][j] += minVal
				events++
			}

			if !m.colCovered[j] {
				m.c[i][j] -= minVal
				events++
			}

			if m.rowCovered[i] && !m.colCovered[j] {
				// change reversed, no net difference
				events -= 2
			}
		}
	}

	if events == 0 {
		return 0, ErrUnsolvable
	}

	return 4, nil
}

// findSmallest returns the smallest uncovered entry
func (m *Munkres) findSmallest() float64 {

	minVal := math.MaxFloat64

	for i := 0; i < m.n; i++ {
		for j := 0; j < m.n; j++ {
			if !m.rowCovered[i] && !m.colCovered[j] && minVal > m.c[i][j] {
				minVal = m.c[i][j]
			}
		}
	}

	return minVal
}

// findZero returns the position of an uncovered zero, scanning from the
// given position and wrapping around, or (-1, -1) when none remains
func (m *Munkres) findZero(i0, j0 int) (int, int) {

	i := i0

	for {
		j := j0

		for {
			if m.c[i][j] == 0 && !m.rowCovered[i] && !m.colCovered[j] {
				return i, j
			}

			j = (j + 1) % m.n

			if j == j0 {
				break
			}
		}

		i = (i + 1) % m.n

		if i == i0 {
			return -1, -1
		}
	}
}

// findStarInRow returns the column of the starred zero in the given row, or
// -1 when the row holds none
func (m *Munkres) findStarInRow(row int) int {

	for j := 0; j < m.n; j++ {
		if m.marked[row][j] == markStarred {
			return j
		}
	}

	return -1
}

// findStarInCol returns the row of the starred zero in the given column, or
// -1 when the column holds none
func (m *Munkres) findStarInCol(col int) int {

	for i := 0; i < m.n; i++ {
		if m.marked[i][col] == markStarred {
			return i
		}
	}

	return -1
}

// findPrimeInRow returns the column of the primed zero in the given row, or
// -1 when the row holds none
func (m *Munkres) findPrimeInRow(row int) int {

	for j := 0; j < m.n; j++ {
		if m.marked[row][j] == markPrimed {
			return j
		}
	}

	return -1
}

// convertPath unstars every starred zero and stars every primed zero on the
// alternating path
func (m *Munkres) convertPath(count int) {

	for i := 0; i <= count; i++ {
		r, c := m.path[i][0], m.path[i][1]

		if m.marked[r][c] == markStarred {
			m.marked[r][c] = markNone
		} else {
			m.marked[r][c] = markStarred
		}
	}
}

// clearCovers uncovers all rows and columns
func (m *Munkres) clearCovers() {

	for i := 0; i < m.n; i++ {
		m.rowCovered[i] = false
		m.colCovered[i] = false
	}
}

// erasePrimes removes all prime markings
func (m *Munkres) erasePrimes() {

	for i := 0; i < m.n; i++ {
		for j := 0; j < m.n; j++ {
			if m.marked[i][j] == markPrimed {
				m.marked[i][j] = markNone
			}
		}
	}
}
