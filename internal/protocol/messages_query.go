package protocol

import (
	"github.com/5hells/icm/internal/protocol/schema"
	"github.com/5hells/icm/internal/protocol/wire"
)

type QueryWindowPosition struct {
	WindowID uint32 `yaml:"window_id"`
}

func (*QueryWindowPosition) Type() schema.MessageType { return schema.QueryWindowPosition }
func (*QueryWindowPosition) isMessage()               {}

func (m *QueryWindowPosition) Fields() []wire.Field {
	return []wire.Field{wire.U32(&m.WindowID)}
}

type QueryWindowSize struct {
	WindowID uint32 `yaml:"window_id"`
}

func (*QueryWindowSize) Type() schema.MessageType { return schema.QueryWindowSize }
func (*QueryWindowSize) isMessage()               {}

func (m *QueryWindowSize) Fields() []wire.Field {
	return []wire.Field{wire.U32(&m.WindowID)}
}

type QueryWindowAttributes struct {
	WindowID uint32 `yaml:"window_id"`
}

func (*QueryWindowAttributes) Type() schema.MessageType { return schema.QueryWindowAttributes }
func (*QueryWindowAttributes) isMessage()               {}

func (m *QueryWindowAttributes) Fields() []wire.Field {
	return []wire.Field{wire.U32(&m.WindowID)}
}

type WindowPositionData struct {
	WindowID uint32 `yaml:"window_id"`
	X        int32  `yaml:"x"`
	Y        int32  `yaml:"y"`
}

func (*WindowPositionData) Type() schema.MessageType { return schema.WindowPositionData }
func (*WindowPositionData) isMessage()               {}

func (m *WindowPositionData) Fields() []wire.Field {
	return []wire.Field{
		wire.U32(&m.WindowID),
		wire.I32(&m.X),
		wire.I32(&m.Y),
	}
}

type WindowSizeData struct {
	WindowID uint32 `yaml:"window_id"`
	Width    uint32 `yaml:"width"`
	Height   uint32 `yaml:"height"`
}

func (*WindowSizeData) Type() schema.MessageType { return schema.WindowSizeData }
func (*WindowSizeData) isMessage()               {}

func (m *WindowSizeData) Fields() []wire.Field {
	return []wire.Field{
		wire.U32(&m.WindowID),
		wire.U32(&m.Width),
		wire.U32(&m.Height),
	}
}

type WindowAttributesData struct {
	WindowID uint32  `yaml:"window_id"`
	Visible  bool    `yaml:"visible"`
	Opacity  float32 `yaml:"opacity"`
	ScaleX   float32 `yaml:"scale_x"`
	ScaleY   float32 `yaml:"scale_y"`
	Rotation float32 `yaml:"rotation"`
}

func (*WindowAttributesData) Type() schema.MessageType { return schema.WindowAttributesData }
func (*WindowAttributesData) isMessage()               {}

func (m *WindowAttributesData) Fields() []wire.Field {
	return []wire.Field{
		wire.U32(&m.WindowID),
		wire.Bool(&m.Visible),
		wire.F32(&m.Opacity),
		wire.F32(&m.ScaleX),
		wire.F32(&m.ScaleY),
		wire.F32(&m.Rotation),
	}
}

type QueryWindowLayer struct {
	WindowID uint32 `yaml:"window_id"`
}

func (*QueryWindowLayer) Type() schema.MessageType { return schema.QueryWindowLayer }
func (*QueryWindowLayer) isMessage()               {}

func (m *QueryWindowLayer) Fields() []wire.Field {
	return []wire.Field{wire.U32(&m.WindowID)}
}

type QueryWindowState struct {
	WindowID uint32 `yaml:"window_id"`
}

func (*QueryWindowState) Type() schema.MessageType { return schema.QueryWindowState }
func (*QueryWindowState) isMessage()               {}

func (m *QueryWindowState) Fields() []wire.Field {
	return []wire.Field{wire.U32(&m.WindowID)}
}

type WindowLayerData struct {
	WindowID uint32 `yaml:"window_id"`
	Layer    int32  `yaml:"layer"`
	ParentID uint32 `yaml:"parent_id"`
}

func (*WindowLayerData) Type() schema.MessageType { return schema.WindowLayerData }
func (*WindowLayerData) isMessage()               {}

func (m *WindowLayerData) Fields() []wire.Field {
	return []wire.Field{
		wire.U32(&m.WindowID),
		wire.I32(&m.Layer),
		wire.U32(&m.ParentID),
	}
}

type WindowStateData struct {
	WindowID uint32 `yaml:"window_id"`
	State    uint32 `yaml:"state"`
	Focused  bool   `yaml:"focused"`
}

func (*WindowStateData) Type() schema.MessageType { return schema.WindowStateData }
func (*WindowStateData) isMessage()               {}

func (m *WindowStateData) Fields() []wire.Field {
	return []wire.Field{
		wire.U32(&m.WindowID),
		wire.U32(&m.State),
		wire.Bool(&m.Focused),
	}
}

type QueryScreenDimensions struct{}

func (*QueryScreenDimensions) Type() schema.MessageType { return schema.QueryScreenDimensions }
func (*QueryScreenDimensions) isMessage()               {}
func (*QueryScreenDimensions) Fields() []wire.Field     { return nil }

type ScreenDimensionsData struct {
	TotalWidth  uint32  `yaml:"total_width"`
	TotalHeight uint32  `yaml:"total_height"`
	Scale       float32 `yaml:"scale"`
}

func (*ScreenDimensionsData) Type() schema.MessageType { return schema.ScreenDimensionsData }
func (*ScreenDimensionsData) isMessage()               {}

func (m *ScreenDimensionsData) Fields() []wire.Field {
	return []wire.Field{
		wire.U32(&m.TotalWidth),
		wire.U32(&m.TotalHeight),
		wire.F32(&m.Scale),
	}
}

type QueryMonitors struct{}

func (*QueryMonitors) Type() schema.MessageType { return schema.QueryMonitors }
func (*QueryMonitors) isMessage()               {}
func (*QueryMonitors) Fields() []wire.Field     { return nil }

// MonitorNameLen is the fixed width of MonitorInfo.Name on the wire.
const MonitorNameLen = 32

type MonitorInfo struct {
	X              int32   `yaml:"x"`
	Y              int32   `yaml:"y"`
	Width          uint32  `yaml:"width"`
	Height         uint32  `yaml:"height"`
	PhysicalWidth  uint32  `yaml:"physical_width"`
	PhysicalHeight uint32  `yaml:"physical_height"`
	RefreshRate    uint32  `yaml:"refresh_rate"`
	Scale          float32 `yaml:"scale"`
	Enabled        bool    `yaml:"enabled"`
	Primary        bool    `yaml:"primary"`
	Name           string  `yaml:"name"`
}

func monitorFields(m *MonitorInfo) []wire.Field {
	return []wire.Field{
		wire.I32(&m.X),
		wire.I32(&m.Y),
		wire.U32(&m.Width),
		wire.U32(&m.Height),
		wire.U32(&m.PhysicalWidth),
		wire.U32(&m.PhysicalHeight),
		wire.U32(&m.RefreshRate),
		wire.F32(&m.Scale),
		wire.Bool(&m.Enabled),
		wire.Bool(&m.Primary),
		wire.Padded(&m.Name, MonitorNameLen),
	}
}

type MonitorsData struct {
	Monitors []MonitorInfo `yaml:"monitors"`
}

func (*MonitorsData) Type() schema.MessageType { return schema.MonitorsData }
func (*MonitorsData) isMessage()               {}

func (m *MonitorsData) Fields() []wire.Field {
	return []wire.Field{wire.Records(&m.Monitors, monitorFields)}
}

type QueryWindowInfo struct {
	WindowID uint32 `yaml:"window_id"`
}

func (*QueryWindowInfo) Type() schema.MessageType { return schema.QueryWindowInfo }
func (*QueryWindowInfo) isMessage()               {}

func (m *QueryWindowInfo) Fields() []wire.Field {
	return []wire.Field{wire.U32(&m.WindowID)}
}

// WindowInfoData answers QueryWindowInfo with everything the compositor
// knows about one window, ending in the owning process name.
type WindowInfoData struct {
	WindowID    uint32  `yaml:"window_id"`
	X           int32   `yaml:"x"`
	Y           int32   `yaml:"y"`
	Width       uint32  `yaml:"width"`
	Height      uint32  `yaml:"height"`
	Visible     bool    `yaml:"visible"`
	Opacity     float32 `yaml:"opacity"`
	ScaleX      float32 `yaml:"scale_x"`
	ScaleY      float32 `yaml:"scale_y"`
	Rotation    float32 `yaml:"rotation"`
	Layer       int32   `yaml:"layer"`
	ParentID    uint32  `yaml:"parent_id"`
	State       uint32  `yaml:"state"`
	Focused     bool    `yaml:"focused"`
	PID         uint32  `yaml:"pid"`
	ProcessName string  `yaml:"process_name"`
}

func (*WindowInfoData) Type() schema.MessageType { return schema.WindowInfoData }
func (*WindowInfoData) isMessage()               {}

func (m *WindowInfoData) Fields() []wire.Field {
	return []wire.Field{
		wire.U32(&m.WindowID),
		wire.I32(&m.X),
		wire.I32(&m.Y),
		wire.U32(&m.Width),
		wire.U32(&m.Height),
		wire.Bool(&m.Visible),
		wire.F32(&m.Opacity),
		wire.F32(&m.ScaleX),
		wire.F32(&m.ScaleY),
		wire.F32(&m.Rotation),
		wire.I32(&m.Layer),
		wire.U32(&m.ParentID),
		wire.U32(&m.State),
		wire.Bool(&m.Focused),
		wire.U32(&m.PID),
		wire.CString(&m.ProcessName),
	}
}
