package export

import (
	"fmt"
	"os"
	"strings"

	"github.com/jmarren/fluxion/internal/ode"
)

// TrajectorySVG renders two solution components as an SVG path. When
// the system is one-dimensional, pass xIdx = -1 to plot y[yIdx]
// against time instead.
func TrajectorySVG(sol *ode.Solution, xIdx, yIdx, width, height int) (string, error) {
	if sol.Len() < 2 {
		return "", fmt.Errorf("need at least 2 rows, have %d", sol.Len())
	}
	dim := len(sol.States[0])
	if xIdx >= dim || yIdx < 0 || yIdx >= dim {
		return "", fmt.Errorf("component out of range: dim=%d, x=%d, y=%d", dim, xIdx, yIdx)
	}

	xs := make([]float64, sol.Len())
	ys := make([]float64, sol.Len())
	for i, row := range sol.States {
		if xIdx < 0 {
			xs[i] = sol.Times[i]
		} else {
			xs[i] = row[xIdx]
		}
		ys[i] = row[yIdx]
	}

	minX, maxX := xs[0], xs[0]
	minY, maxY := ys[0], ys[0]
	for i := range xs {
		if xs[i] < minX {
			minX = xs[i]
		}
		if xs[i] > maxX {
			maxX = xs[i]
		}
		if ys[i] < minY {
			minY = ys[i]
		}
		if ys[i] > maxY {
			maxY = ys[i]
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
	minY -= rangeY * 0.1
	rangeX *= 1.2
	rangeY *= 1.2

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<path fill="none" stroke="#00ff00" stroke-width="1.5" d="M`,
		width, height, width, height))

	for i := range xs {
		px := (xs[i] - minX) / rangeX * float64(width)
		py := float64(height) - (ys[i]-minY)/rangeY*float64(height)
		if i == 0 {
			sb.WriteString(fmt.Sprintf("%.1f,%.1f", px, py))
		} else {
			sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", px, py))
		}
	}

	sb.WriteString(`"/>
</svg>`)
	return sb.String(), nil
}

// WriteSVG plots the solution to an SVG file: the first two components
// against each other, or the single component against time.
func WriteSVG(path string, sol *ode.Solution) error {
	xIdx := 0
	yIdx := 1
	if sol.Len() > 0 && len(sol.States[0]) < 2 {
		xIdx, yIdx = -1, 0
	}
	svg, err := TrajectorySVG(sol, xIdx, yIdx, 800, 600)
	if err != nil {
		return err
	}
	return os.WriteFile(path, []byte(svg), 0644)
}
