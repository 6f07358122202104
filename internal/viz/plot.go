package viz

import (
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/skalor/trajlab/internal/trajectory"
)

var palette = []color.RGBA{
	{R: 31, G: 119, B: 180, A: 255},
	{R: 255, G: 127, B: 14, A: 255},
	{R: 44, G: 160, B: 44, A: 255},
	{R: 214, G: 39, B: 40, A: 255},
	{R: 148, G: 103, B: 189, A: 255},
}

// WritePlot saves the named channels against time. The output format
// follows the file extension (.svg, .png, .pdf).
func WritePlot(traj *trajectory.Trajectory, channels []string, path string) error {
	if len(channels) == 0 {
		channels = traj.ChannelNames()
	}
	if len(channels) == 0 {
		return fmt.Errorf("viz: trajectory has no channels to plot")
	}

	p := plot.New()
	p.Title.Text = "trajectory"
	p.X.Label.Text = "time [s]"

	for i, name := range channels {
		col, err := traj.Column(name)
		if err != nil {
			return err
		}
		pts := make(plotter.XYs, len(col))
		for j := range col {
			pts[j].X = traj.Time[j]
			pts[j].Y = col[j]
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return err
		}
		line.Width = vg.Points(1)
		line.Color = palette[i%len(palette)]
		p.Add(line)
		p.Legend.Add(name, line)
	}

	return p.Save(10*vg.Inch, 6*vg.Inch, path)
}
