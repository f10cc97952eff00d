// Package report draws summary charts of a trajectory batch.
package report

import (
	"image"
	"image/color"

	"github.com/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/flightning/quadviz/scene"
	"github.com/flightning/quadviz/trajectory"
)

// Altitude plots the height of every trajectory over its playable steps and marks where each one
// ends. Colors match the trails of the animation.
func Altitude(batch *trajectory.Batch) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = "Altitude"
	p.X.Label.Text = "time (s)"
	p.Y.Label.Text = "z (m)"
	p.Add(plotter.NewGrid())

	colors := scene.Palette(batch.Len())
	interval := batch.Interval().Seconds()
	var ends plotter.XYs
	for k, traj := range batch.Trajectories() {
		n := traj.TerminationIndex()
		pts := make(plotter.XYs, n)
		for i := 0; i < n; i++ {
			pts[i].X = stepTime(traj, i, interval)
			pts[i].Y = traj.Positions[i].Z
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return nil, errors.Wrapf(err, "trajectory %d", k)
		}
		line.LineStyle.Width = vg.Points(1.5)
		line.LineStyle.Color = colors[k]
		p.Add(line)
		if traj.DoneStep() >= 0 {
			ends = append(ends, pts[n-1])
		}
	}
	if len(ends) > 0 {
		scatter, err := plotter.NewScatter(ends)
		if err != nil {
			return nil, err
		}
		scatter.GlyphStyle.Shape = draw.CrossGlyph{}
		scatter.GlyphStyle.Color = color.Black
		scatter.GlyphStyle.Radius = vg.Points(4)
		p.Add(scatter)
		p.Legend.Add("done", scatter)
	}
	return p, nil
}

// stepTime is the recorded time of step i, or i intervals when the trajectory has no timestamps.
func stepTime(traj *trajectory.Trajectory, i int, interval float64) float64 {
	if i < len(traj.Times) {
		return traj.Times[i]
	}
	return float64(i) * interval
}

// Image rasterizes p at the given size in pixels.
func Image(p *plot.Plot, width, height int) image.Image {
	c := vgimg.NewWith(
		vgimg.UseWH(vg.Length(width)*vg.Inch/vgimg.DefaultDPI, vg.Length(height)*vg.Inch/vgimg.DefaultDPI),
		vgimg.UseDPI(vgimg.DefaultDPI),
	)
	p.Draw(draw.New(c))
	return c.Image()
}

// Save writes p to path. The format follows the extension (png, svg, pdf, ...).
func Save(p *plot.Plot, path string, width, height vg.Length) error {
	return errors.Wrapf(p.Save(width, height, path), "cannot save plot %q", path)
}
