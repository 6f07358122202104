package model

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"
)

func Save(path string, m *Model) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func Load(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	m := New("")
	if err := yaml.Unmarshal(data, m); err != nil {
		return nil, err
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// Summary writes a table of the model's components to the builder.
func (m *Model) Summary() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "model: %s\n", m.Name)
	w := tabwriter.NewWriter(&sb, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "bodies\t%d\n", len(m.Bodies))
	fmt.Fprintf(w, "joints\t%d\n", len(m.Joints))
	fmt.Fprintf(w, "coordinates\t%d\n", m.NumCoordinates())
	fmt.Fprintf(w, "actuators\t%d\n", len(m.Actuators))
	fmt.Fprintf(w, "markers\t%d\n", len(m.Markers))
	w.Flush()
	if paths := m.CoordinatePaths(); len(paths) > 0 {
		sb.WriteString("coordinates: " + strings.Join(paths, ", ") + "\n")
	}
	if controls := m.ControlChannels(); len(controls) > 0 {
		sb.WriteString("controls: " + strings.Join(controls, ", ") + "\n")
	}
	return sb.String()
}
