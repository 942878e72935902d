package odim

import (
	"errors"
	"fmt"
)

// cellValue covers the stored widths a composite's data array may use.
type cellValue interface {
	~int8 | ~int16 | ~int32 | ~int64 | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~float32 | ~float64
}

// cellsFrom converts the container's raw variable payload into a rectangular
// [][]float64. The container types the nested slices by stored width; every
// width is widened the same way so sentinel codes survive exactly.
func cellsFrom(values any) ([][]float64, error) {
	switch rows := values.(type) {
	case [][]uint8:
		return widenCells(rows)
	case [][]int8:
		return widenCells(rows)
	case [][]uint16:
		return widenCells(rows)
	case [][]int16:
		return widenCells(rows)
	case [][]uint32:
		return widenCells(rows)
	case [][]int32:
		return widenCells(rows)
	case [][]uint64:
		return widenCells(rows)
	case [][]int64:
		return widenCells(rows)
	case [][]float32:
		return widenCells(rows)
	case [][]float64:
		return widenCells(rows)
	}
	return nil, fmt.Errorf("not a 2-D numeric array (container type %T)", values)
}

func widenCells[T cellValue](rows [][]T) ([][]float64, error) {
	if len(rows) == 0 {
		return nil, errors.New("array has no rows")
	}
	cols := len(rows[0])
	if cols == 0 {
		return nil, errors.New("array has no columns")
	}
	out := make([][]float64, len(rows))
	for i, row := range rows {
		if len(row) != cols {
			return nil, fmt.Errorf("ragged array: row %d has %d cells, want %d", i, len(row), cols)
		}
		widened := make([]float64, cols)
		for j, c := range row {
			widened[j] = float64(c)
		}
		out[i] = widened
	}
	return out, nil
}
