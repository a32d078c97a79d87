package export

import (
	"encoding/json"
	"io"
	"os"

	"github.com/jmarren/fluxion/internal/ode"
)

// RunData is the JSON export shape: run metadata plus the full solution
// matrix.
type RunData struct {
	Problem string      `json:"problem"`
	Backend string      `json:"backend"`
	Dt      float64     `json:"dt"`
	Steps   int         `json:"steps"`
	Times   []float64   `json:"times"`
	States  [][]float64 `json:"states"`
}

func NewRunData(problem, backend string, dt float64, sol *ode.Solution) RunData {
	states := make([][]float64, len(sol.States))
	for i, s := range sol.States {
		states[i] = s
	}
	return RunData{
		Problem: problem,
		Backend: backend,
		Dt:      dt,
		Steps:   sol.Len(),
		Times:   sol.Times,
		States:  states,
	}
}

func WriteJSON(path string, data RunData) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return encodeJSON(file, data)
}

func WriteJSONTo(w io.Writer, data RunData) error {
	return encodeJSON(w, data)
}

func encodeJSON(w io.Writer, data RunData) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}
