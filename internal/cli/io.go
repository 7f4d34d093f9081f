package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// readParams decodes a JSON object of native parameters from a file, or
// from stdin when path is "-".
func readParams(path string) (map[string]any, error) {
	var r io.Reader
	if path == "-" {
		r = os.Stdin
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}
	var params map[string]any
	dec := json.NewDecoder(r)
	if err := dec.Decode(&params); err != nil {
		return nil, fmt.Errorf("decode parameters from %s: %w", path, err)
	}
	return params, nil
}

// writeJSON writes v as indented JSON to a file, or to out when path is
// "-".
func writeJSON(out io.Writer, path string, v any) error {
	w := out
	if path != "-" {
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// parseEpochs expands a start:end:step spec (MJD) into an epoch grid. The
// end value is included when it lands on the grid.
func parseEpochs(spec string) ([]float64, error) {
	if spec == "" {
		return nil, nil
	}
	parts := strings.Split(spec, ":")
	if len(parts) != 3 {
		return nil, usageErrorf("epochs spec %q must be start:end:step", spec)
	}
	vals := make([]float64, 3)
	for i, p := range parts {
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return nil, usageErrorf("epochs spec %q: %v", spec, err)
		}
		vals[i] = v
	}
	start, end, step := vals[0], vals[1], vals[2]
	if step <= 0 {
		return nil, usageErrorf("epochs spec %q: step must be positive", spec)
	}
	if end < start {
		return nil, usageErrorf("epochs spec %q: end precedes start", spec)
	}
	var epochs []float64
	for i := 0; ; i++ {
		e := start + float64(i)*step
		if e > end+1e-9 {
			break
		}
		epochs = append(epochs, e)
	}
	return epochs, nil
}
