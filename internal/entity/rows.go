package entity

// GenerateWinnableRows returns every row that wins a game on an n x n board:
// the n horizontal rows, the n vertical rows, then the main and the anti diagonal.
// Cell indices are row-major. The order is stable and decides which row is
// reported when a single move completes more than one.
func GenerateWinnableRows(n int) [][]int {
	if n < 1 {
		return nil
	}

	rows := make([][]int, 0, 2*n+2)

	for i := 0; i < n; i++ {
		rows = append(rows, intRange(n*i, 1, n))
	}

	for i := 0; i < n; i++ {
		rows = append(rows, intRange(i, n, n))
	}

	rows = append(rows,
		intRange(0, n+1, n),
		intRange(n-1, n-1, n),
	)

	return rows
}

// intRange - count terms of the arithmetic sequence starting at start.
func intRange(start, step, count int) []int {
	out := make([]int, count)
	for i := range out {
		out[i] = start + i*step
	}
	return out
}
