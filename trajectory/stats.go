package trajectory

import (
	"fmt"

	"github.com/golang/geo/r3"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/montanaflynn/stats"
	"github.com/samber/lo"
)

// Stats describes the playable part of one trajectory.
type Stats struct {
	Summary
	Duration   float64
	PathLength float64
	MeanSpeed  float64
	MaxSpeed   float64
	MinZ, MaxZ float64
}

// Stats computes flight statistics over the playable steps of trajectory i. Speeds come from
// consecutive positions and timestamps; steps without a positive time difference are skipped.
func (b *Batch) Stats(i int) Stats {
	t := b.trajectories[i]
	n := t.TerminationIndex()
	s := Stats{Summary: b.Summaries()[i]}

	heights := stats.Float64Data(lo.Map(t.Positions[:n], func(p r3.Vector, _ int) float64 { return p.Z }))
	s.MinZ, _ = heights.Min()
	s.MaxZ, _ = heights.Max()

	var speeds stats.Float64Data
	for j := 1; j < n; j++ {
		d := t.Positions[j].Sub(t.Positions[j-1]).Norm()
		s.PathLength += d
		if j < len(t.Times) {
			if dt := t.Times[j] - t.Times[j-1]; dt > 0 {
				speeds = append(speeds, d/dt)
			}
		}
	}
	if n > 0 && n <= len(t.Times) {
		s.Duration = t.Times[n-1] - t.Times[0]
	}
	if len(speeds) > 0 {
		s.MeanSpeed, _ = speeds.Mean()
		s.MaxSpeed, _ = speeds.Max()
	}
	return s
}

// String prints a table of every trajectory with its length, how it ended and how it flew.
func (b *Batch) String() string {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"#", "Steps", "Last", "Ended", "Duration", "Path", "Mean speed", "Max speed", "Altitude"})
	for i := range b.trajectories {
		s := b.Stats(i)
		t.AppendRow(table.Row{
			s.Index,
			s.Steps,
			s.TerminationIndex - 1,
			s.Reason(),
			fmt.Sprintf("%.2fs", s.Duration),
			fmt.Sprintf("%.2fm", s.PathLength),
			fmt.Sprintf("%.2fm/s", s.MeanSpeed),
			fmt.Sprintf("%.2fm/s", s.MaxSpeed),
			fmt.Sprintf("%.2f to %.2fm", s.MinZ, s.MaxZ),
		})
	}
	return t.Render()
}

// Reason names how the episode ended.
func (s Summary) Reason() string {
	switch {
	case s.Terminated:
		return "terminated"
	case s.Truncated:
		return "truncated"
	default:
		return "running"
	}
}
