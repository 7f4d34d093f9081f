package cli

import (
	"fmt"
	"os"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/spf13/cobra"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/banshee-data/microlens/internal/convert"
	"github.com/banshee-data/microlens/internal/model"
)

type plotFlags struct {
	source     string
	input      string
	observer   string
	epochs     string
	coords     string
	projection string
	htmlPath   string
	pngPath    string
}

var plotOpts plotFlags

var plotCmd = &cobra.Command{
	Use:   "plot",
	Short: "Render the source trajectory as an interactive HTML chart or a PNG",
	Example: `  microlens plot --source bagle --input event.json \
      --epochs 55700:55850:0.5 --html traj.html --png traj.png`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPlot(plotOpts)
	},
}

func init() {
	f := plotCmd.Flags()
	f.StringVar(&plotOpts.source, "source", "", "package the input parameters belong to")
	f.StringVar(&plotOpts.input, "input", "-", "input JSON parameter file (- for stdin)")
	f.StringVar(&plotOpts.observer, "observer", model.ObserverEarth, "observer the input parameters were fit for")
	f.StringVar(&plotOpts.epochs, "epochs", "", "epoch grid start:end:step (MJD), required")
	f.StringVar(&plotOpts.coords, "coords", "", "coordinate basis to render (default: the trajectory's native basis)")
	f.StringVar(&plotOpts.projection, "projection", "", "projection to render (default: the trajectory's native projection)")
	f.StringVar(&plotOpts.htmlPath, "html", "", "write an interactive chart to this HTML file")
	f.StringVar(&plotOpts.pngPath, "png", "", "write a static chart to this PNG file")
	rootCmd.AddCommand(plotCmd)
}

func runPlot(flags plotFlags) error {
	if flags.source == "" {
		return usageErrorf("--source is required")
	}
	if flags.htmlPath == "" && flags.pngPath == "" {
		return usageErrorf("at least one of --html or --png is required")
	}
	epochs, err := parseEpochs(flags.epochs)
	if err != nil {
		return err
	}
	if len(epochs) == 0 {
		return usageErrorf("--epochs is required to materialize the trajectory")
	}
	params, err := readParams(flags.input)
	if err != nil {
		return err
	}
	loadOpts, cleanup, err := converterOptions()
	if err != nil {
		return err
	}
	defer cleanup()

	c, err := convert.Load(flags.source, params, flags.observer, epochs, loadOpts...)
	if err != nil {
		return err
	}
	ts, err := trajectorySeries(c, flags.coords, flags.projection)
	if err != nil {
		return err
	}

	if flags.htmlPath != "" {
		if err := renderTrajectoryHTML(ts, c.Source(), flags.htmlPath); err != nil {
			return err
		}
	}
	if flags.pngPath != "" {
		if err := renderTrajectoryPNG(ts, c.Source(), flags.pngPath); err != nil {
			return err
		}
	}
	return nil
}

// trajectorySeries fetches the source trajectory in its native frame, then
// re-requests it with any coords/projection overrides so derivations run
// through the model's frame machinery.
func trajectorySeries(c *convert.Converter, coords, projection string) (model.TimeSeries, error) {
	m := c.Model()
	frames := m.Frames()
	if len(frames) == 0 {
		return model.TimeSeries{}, fmt.Errorf("model carries no series; pass --epochs to materialize the trajectory")
	}
	target := frames[0]
	if coords != "" {
		target.Coords = coords
	}
	if projection != "" {
		target.Projection = projection
	}
	return m.GetSeries(model.SeriesSourceTraj, target)
}

func axisLabels(fc model.FrameConfig) (x, y string) {
	switch fc.Coords {
	case model.CoordsICRS:
		return "East (thetaE)", "North (thetaE)"
	case model.CoordsLensXY:
		return "x (thetaE)", "y (thetaE)"
	default:
		return "tau", "beta"
	}
}

func renderTrajectoryHTML(ts model.TimeSeries, source, path string) error {
	xLabel, yLabel := axisLabels(ts.Frame())

	data := make([]opts.ScatterData, 0, ts.Len())
	for i := 0; i < ts.Len(); i++ {
		mjd, v := ts.At(i)
		data = append(data, opts.ScatterData{Value: []interface{}{v[0], v[1], mjd}})
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Source Trajectory", Width: "900px", Height: "900px"}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Source Trajectory",
			Subtitle: fmt.Sprintf("source=%s frame=%s points=%d", source, ts.Frame(), ts.Len()),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: xLabel, NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Name: yLabel, NameLocation: "middle", NameGap: 30}),
	)
	scatter.AddSeries("trajectory", data, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 4}))

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return scatter.Render(f)
}

func renderTrajectoryPNG(ts model.TimeSeries, source, path string) error {
	xLabel, yLabel := axisLabels(ts.Frame())

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Source Trajectory (%s)", source)
	p.X.Label.Text = xLabel
	p.Y.Label.Text = yLabel

	pts := make(plotter.XYs, ts.Len())
	for i := 0; i < ts.Len(); i++ {
		_, v := ts.At(i)
		pts[i] = plotter.XY{X: v[0], Y: v[1]}
	}
	line, err := plotter.NewLine(pts)
	if err != nil {
		return err
	}
	line.Width = vg.Points(1)
	p.Add(line)

	return p.Save(6*vg.Inch, 6*vg.Inch, path)
}
