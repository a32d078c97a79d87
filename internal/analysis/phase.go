package analysis

import (
	"fmt"
	"strings"

	"github.com/jmarren/fluxion/internal/ode"
)

// PhaseScatter renders two solution components against each other as an
// ASCII scatter plot with axes drawn where they cross the visible area.
func PhaseScatter(sol *ode.Solution, xIdx, yIdx, width, height int) (string, error) {
	if sol.Len() == 0 {
		return "", fmt.Errorf("empty solution")
	}
	dim := len(sol.States[0])
	if xIdx >= dim || yIdx >= dim {
		return "", fmt.Errorf("component out of range: dim=%d, x=%d, y=%d", dim, xIdx, yIdx)
	}

	minX, maxX := sol.States[0][xIdx], sol.States[0][xIdx]
	minY, maxY := sol.States[0][yIdx], sol.States[0][yIdx]
	for _, row := range sol.States {
		x, y := row[xIdx], row[yIdx]
		if x < minX {
			minX = x
		}
		if x > maxX {
			maxX = x
		}
		if y < minY {
			minY = y
		}
		if y > maxY {
			maxY = y
		}
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	maxX += rangeX * 0.1
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeX = maxX - minX
	rangeY = maxY - minY

	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = make([]rune, width)
		for j := range canvas[i] {
			canvas[i][j] = ' '
		}
	}

	for _, row := range sol.States {
		col := int((row[xIdx] - minX) / rangeX * float64(width-1))
		r := height - 1 - int((row[yIdx]-minY)/rangeY*float64(height-1))
		if r >= 0 && r < height && col >= 0 && col < width {
			canvas[r][col] = '•'
		}
	}

	if minX <= 0 && maxX >= 0 {
		col := int((0 - minX) / rangeX * float64(width-1))
		for r := 0; r < height; r++ {
			if canvas[r][col] == ' ' {
				canvas[r][col] = '│'
			}
		}
	}
	if minY <= 0 && maxY >= 0 {
		r := height - 1 - int((0-minY)/rangeY*float64(height-1))
		for col := 0; col < width; col++ {
			if canvas[r][col] == ' ' {
				canvas[r][col] = '─'
			}
		}
	}

	var sb strings.Builder
	for _, row := range canvas {
		sb.WriteString(string(row))
		sb.WriteRune('\n')
	}
	return sb.String(), nil
}
