// Package export writes recorded solutions to CSV and JSON.
package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/jmarren/fluxion/internal/ode"
)

// WriteCSV writes one row per step: t, y0..yn.
func WriteCSV(path string, sol *ode.Solution) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	w := csv.NewWriter(file)
	defer w.Flush()

	if sol.Len() == 0 {
		return fmt.Errorf("export: empty solution")
	}

	header := []string{"t"}
	for i := range sol.States[0] {
		header = append(header, fmt.Sprintf("y%d", i))
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for i, y := range sol.States {
		row := make([]string, 0, len(y)+1)
		row = append(row, strconv.FormatFloat(sol.Times[i], 'g', -1, 64))
		for _, v := range y {
			row = append(row, strconv.FormatFloat(v, 'g', -1, 64))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}
