package bench

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"strconv"
)

// WriteReport writes a step-size sweep as CSV: one row per (backend, dt).
func WriteReport(path string, results []Result) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	w := csv.NewWriter(file)
	defer w.Flush()

	if err := w.Write([]string{"problem", "backend", "dt", "steps", "seconds", "max_error", "final_error"}); err != nil {
		return err
	}
	for _, r := range results {
		row := []string{
			r.Problem,
			r.Backend,
			strconv.FormatFloat(r.Dt, 'g', -1, 64),
			strconv.Itoa(r.Steps),
			strconv.FormatFloat(r.Elapsed.Seconds(), 'f', 6, 64),
			formatError(r.MaxError),
			formatError(r.FinalError),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

func formatError(v float64) string {
	if math.IsNaN(v) {
		return "n/a"
	}
	return fmt.Sprintf("%.3e", v)
}
