package config

import "github.com/5hells/icm/internal/protocol"

// MonitorInfos converts configured outputs to their wire form.
func (s ServerConfig) MonitorInfos() []protocol.MonitorInfo {
	out := make([]protocol.MonitorInfo, 0, len(s.Monitors))
	for _, m := range s.Monitors {
		out = append(out, protocol.MonitorInfo{
			X:              m.X,
			Y:              m.Y,
			Width:          m.Width,
			Height:         m.Height,
			PhysicalWidth:  m.PhysicalWidth,
			PhysicalHeight: m.PhysicalHeight,
			RefreshRate:    m.RefreshRate,
			Scale:          m.Scale,
			Enabled:        !m.Disabled,
			Primary:        m.Primary,
			Name:           m.Name,
		})
	}
	return out
}
