package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, v any) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "input.json")
	data, err := json.Marshal(v)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

func eventParams() map[string]any {
	return map[string]any{
		"t0": 55775.0, "tE": 20.0, "u0_amp": 0.1, "u0_sign": 1.0,
		"piEE": 0.2, "piEN": -0.1,
		"raL": 268.5, "decL": -29.0, "t0par": 55770.0,
	}
}

func TestParseEpochs(t *testing.T) {
	epochs, err := parseEpochs("55700:55710:2.5")
	require.NoError(t, err)
	assert.Equal(t, []float64{55700, 55702.5, 55705, 55707.5, 55710}, epochs)

	epochs, err = parseEpochs("")
	require.NoError(t, err)
	assert.Nil(t, epochs)

	for _, spec := range []string{"55700:55710", "a:b:c", "55700:55710:0", "55710:55700:1"} {
		_, err := parseEpochs(spec)
		var ue *usageError
		assert.ErrorAs(t, err, &ue, "spec %q", spec)
	}
}

func TestReadParams(t *testing.T) {
	path := writeTempJSON(t, eventParams())
	params, err := readParams(path)
	require.NoError(t, err)
	assert.Equal(t, 55775.0, params["t0"])

	_, err = readParams(filepath.Join(t.TempDir(), "absent.json"))
	require.Error(t, err)
}

func TestRunConvert(t *testing.T) {
	input := writeTempJSON(t, eventParams())
	var out bytes.Buffer

	err := runConvert(convertFlags{
		source:   "bagle",
		target:   "vbm",
		input:    input,
		output:   "-",
		observer: "earth",
		origin:   "lens1@t0",
	}, &out)
	require.NoError(t, err)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &payload))
	assert.Equal(t, 55775.0, payload["t0"])
	assert.Equal(t, 0.1, payload["u0"])
	assert.Equal(t, 0.2, payload["piEE"])
}

func TestRunConvertToFile(t *testing.T) {
	input := writeTempJSON(t, eventParams())
	output := filepath.Join(t.TempDir(), "out.json")

	err := runConvert(convertFlags{
		source:   "bagle",
		target:   "mulensmodel",
		input:    input,
		output:   output,
		observer: "earth",
		origin:   "lens1@t0",
	}, &bytes.Buffer{})
	require.NoError(t, err)

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	var payload map[string]any
	require.NoError(t, json.Unmarshal(data, &payload))
	assert.Equal(t, 55775.0, payload["t_0"])
}

func TestRunConvertUsageErrors(t *testing.T) {
	var ue *usageError

	err := runConvert(convertFlags{target: "vbm"}, &bytes.Buffer{})
	assert.ErrorAs(t, err, &ue)

	err = runConvert(convertFlags{
		source: "bagle", target: "vbm",
		input: writeTempJSON(t, eventParams()), epochs: "bad",
	}, &bytes.Buffer{})
	assert.ErrorAs(t, err, &ue)
}

func TestRunConvertUnknownPackage(t *testing.T) {
	input := writeTempJSON(t, eventParams())
	err := runConvert(convertFlags{
		source: "nightshade", target: "vbm", input: input,
		observer: "earth", origin: "lens1@t0",
	}, &bytes.Buffer{})
	require.Error(t, err)
	var ue *usageError
	assert.False(t, errors.As(err, &ue), "adapter errors are not usage errors")
}

func TestRunFrames(t *testing.T) {
	input := writeTempJSON(t, eventParams())
	var out bytes.Buffer

	err := runFrames(framesFlags{
		source:   "bagle",
		input:    input,
		observer: "earth",
		epochs:   "55765:55785:10",
	}, &out)
	require.NoError(t, err)

	text := out.String()
	assert.Contains(t, text, "kind: PSPL")
	assert.Contains(t, text, "piEE")
	assert.Contains(t, text, "coords=icrs")
	assert.Contains(t, text, "source_traj")
}

func TestRunPlotWritesFiles(t *testing.T) {
	input := writeTempJSON(t, eventParams())
	dir := t.TempDir()
	htmlPath := filepath.Join(dir, "traj.html")
	pngPath := filepath.Join(dir, "traj.png")

	err := runPlot(plotFlags{
		source:   "bagle",
		input:    input,
		observer: "earth",
		epochs:   "55700:55850:5",
		htmlPath: htmlPath,
		pngPath:  pngPath,
	})
	require.NoError(t, err)

	html, err := os.ReadFile(htmlPath)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(html), "trajectory"), "chart HTML names the series")

	png, err := os.ReadFile(pngPath)
	require.NoError(t, err)
	assert.NotEmpty(t, png)
}

func TestRunPlotUsageErrors(t *testing.T) {
	var ue *usageError
	err := runPlot(plotFlags{source: "bagle", input: "-"})
	assert.ErrorAs(t, err, &ue, "missing output paths")

	err = runPlot(plotFlags{source: "bagle", input: "-", htmlPath: "x.html"})
	assert.ErrorAs(t, err, &ue, "missing epochs")
}

func TestEphemImportAndCovers(t *testing.T) {
	db := filepath.Join(t.TempDir(), "ephem.db")
	samples := []ephemSample{
		{MJD: 55000, Pos: [3]float64{1, 0, 0}, Vel: [3]float64{0, 29.8, 0}},
		{MJD: 55010, Pos: [3]float64{0.98, 0.17, 0}, Vel: [3]float64{-5, 29.3, 0}},
	}
	input := writeTempJSON(t, samples)

	var out bytes.Buffer
	err := runEphemImport(ephemImportFlags{db: db, observer: "earth", input: input}, &out)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "imported 2 samples")

	out.Reset()
	require.NoError(t, runEphemCovers(ephemCoversFlags{db: db, observer: "earth", mjd: 55005}, &out))
	assert.Contains(t, out.String(), "covered")

	err = runEphemCovers(ephemCoversFlags{db: db, observer: "earth", mjd: 56000}, &out)
	require.Error(t, err)

	var ue *usageError
	err = runEphemImport(ephemImportFlags{observer: "earth"}, &out)
	assert.ErrorAs(t, err, &ue)
}
