package viz

import (
	"fmt"

	"github.com/guptarohit/asciigraph"

	"github.com/skalor/trajlab/internal/trajectory"
)

// Channel renders one named channel of a trajectory as a terminal graph.
func Channel(traj *trajectory.Trajectory, name string, width, height int) (string, error) {
	col, err := traj.Column(name)
	if err != nil {
		return "", err
	}
	if len(col) == 0 {
		return "", fmt.Errorf("viz: channel %q has no samples", name)
	}

	data := downsample(col, width)
	graph := asciigraph.Plot(data,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(fmt.Sprintf("%s (%d samples, t=%.2f..%.2f)",
			name, len(col), traj.Time[0], traj.Time[len(traj.Time)-1])),
	)
	return graph, nil
}

// downsample thins a series to roughly width points by striding.
func downsample(data []float64, width int) []float64 {
	if width <= 0 || len(data) <= width {
		return data
	}
	stride := len(data) / width
	out := make([]float64, 0, width)
	for i := 0; i < len(data); i += stride {
		out = append(out, data[i])
	}
	return out
}
