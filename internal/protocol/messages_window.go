package protocol

import (
	"github.com/5hells/icm/internal/protocol/schema"
	"github.com/5hells/icm/internal/protocol/wire"
)

// Window state bits carried by SetWindowState, WindowStateData and the
// shell notifications.
const (
	StateMinimized uint32 = 1 << iota
	StateMaximized
	StateFullscreen
	StateDecorated
)

// CreateWindow asks the compositor to create a window with a solid
// background color.
type CreateWindow struct {
	WindowID  uint32 `yaml:"window_id"`
	X         int32  `yaml:"x"`
	Y         int32  `yaml:"y"`
	Width     uint32 `yaml:"width"`
	Height    uint32 `yaml:"height"`
	Layer     uint32 `yaml:"layer"`
	ColorRGBA uint32 `yaml:"color_rgba"`
}

func (*CreateWindow) Type() schema.MessageType { return schema.CreateWindow }
func (*CreateWindow) isMessage()               {}

func (m *CreateWindow) Fields() []wire.Field {
	return []wire.Field{
		wire.U32(&m.WindowID),
		wire.I32(&m.X),
		wire.I32(&m.Y),
		wire.U32(&m.Width),
		wire.U32(&m.Height),
		wire.U32(&m.Layer),
		wire.U32(&m.ColorRGBA),
	}
}

type DestroyWindow struct {
	WindowID uint32 `yaml:"window_id"`
}

func (*DestroyWindow) Type() schema.MessageType { return schema.DestroyWindow }
func (*DestroyWindow) isMessage()               {}

func (m *DestroyWindow) Fields() []wire.Field {
	return []wire.Field{wire.U32(&m.WindowID)}
}

// SetWindow moves and resizes a window in one message.
type SetWindow struct {
	WindowID uint32 `yaml:"window_id"`
	X        int32  `yaml:"x"`
	Y        int32  `yaml:"y"`
	Width    uint32 `yaml:"width"`
	Height   uint32 `yaml:"height"`
}

func (*SetWindow) Type() schema.MessageType { return schema.SetWindow }
func (*SetWindow) isMessage()               {}

func (m *SetWindow) Fields() []wire.Field {
	return []wire.Field{
		wire.U32(&m.WindowID),
		wire.I32(&m.X),
		wire.I32(&m.Y),
		wire.U32(&m.Width),
		wire.U32(&m.Height),
	}
}

type SetLayer struct {
	WindowID uint32 `yaml:"window_id"`
	Layer    uint32 `yaml:"layer"`
}

func (*SetLayer) Type() schema.MessageType { return schema.SetLayer }
func (*SetLayer) isMessage()               {}

func (m *SetLayer) Fields() []wire.Field {
	return []wire.Field{
		wire.U32(&m.WindowID),
		wire.U32(&m.Layer),
	}
}

// SetAttachments has no defined body beyond the target window.
type SetAttachments struct {
	WindowID uint32 `yaml:"window_id"`
}

func (*SetAttachments) Type() schema.MessageType { return schema.SetAttachments }
func (*SetAttachments) isMessage()               {}

func (m *SetAttachments) Fields() []wire.Field {
	return []wire.Field{wire.U32(&m.WindowID)}
}

type SetWindowVisible struct {
	WindowID uint32 `yaml:"window_id"`
	Visible  bool   `yaml:"visible"`
}

func (*SetWindowVisible) Type() schema.MessageType { return schema.SetWindowVisible }
func (*SetWindowVisible) isMessage()               {}

func (m *SetWindowVisible) Fields() []wire.Field {
	return []wire.Field{
		wire.U32(&m.WindowID),
		wire.Bool(&m.Visible),
	}
}

type SetWindowPosition struct {
	WindowID uint32 `yaml:"window_id"`
	X        int32  `yaml:"x"`
	Y        int32  `yaml:"y"`
}

func (*SetWindowPosition) Type() schema.MessageType { return schema.SetWindowPosition }
func (*SetWindowPosition) isMessage()               {}

func (m *SetWindowPosition) Fields() []wire.Field {
	return []wire.Field{
		wire.U32(&m.WindowID),
		wire.I32(&m.X),
		wire.I32(&m.Y),
	}
}

type SetWindowSize struct {
	WindowID uint32 `yaml:"window_id"`
	Width    uint32 `yaml:"width"`
	Height   uint32 `yaml:"height"`
}

func (*SetWindowSize) Type() schema.MessageType { return schema.SetWindowSize }
func (*SetWindowSize) isMessage()               {}

func (m *SetWindowSize) Fields() []wire.Field {
	return []wire.Field{
		wire.U32(&m.WindowID),
		wire.U32(&m.Width),
		wire.U32(&m.Height),
	}
}

type SetWindowOpacity struct {
	WindowID uint32  `yaml:"window_id"`
	Opacity  float32 `yaml:"opacity"`
}

func (*SetWindowOpacity) Type() schema.MessageType { return schema.SetWindowOpacity }
func (*SetWindowOpacity) isMessage()               {}

func (m *SetWindowOpacity) Fields() []wire.Field {
	return []wire.Field{
		wire.U32(&m.WindowID),
		wire.F32(&m.Opacity),
	}
}

type SetWindowTransform struct {
	WindowID uint32  `yaml:"window_id"`
	ScaleX   float32 `yaml:"scale_x"`
	ScaleY   float32 `yaml:"scale_y"`
	Rotation float32 `yaml:"rotation"`
}

func (*SetWindowTransform) Type() schema.MessageType { return schema.SetWindowTransform }
func (*SetWindowTransform) isMessage()               {}

func (m *SetWindowTransform) Fields() []wire.Field {
	return []wire.Field{
		wire.U32(&m.WindowID),
		wire.F32(&m.ScaleX),
		wire.F32(&m.ScaleY),
		wire.F32(&m.Rotation),
	}
}

type SetWindowLayer struct {
	WindowID uint32 `yaml:"window_id"`
	Layer    int32  `yaml:"layer"`
}

func (*SetWindowLayer) Type() schema.MessageType { return schema.SetWindowLayer }
func (*SetWindowLayer) isMessage()               {}

func (m *SetWindowLayer) Fields() []wire.Field {
	return []wire.Field{
		wire.U32(&m.WindowID),
		wire.I32(&m.Layer),
	}
}

type RaiseWindow struct {
	WindowID uint32 `yaml:"window_id"`
}

func (*RaiseWindow) Type() schema.MessageType { return schema.RaiseWindow }
func (*RaiseWindow) isMessage()               {}

func (m *RaiseWindow) Fields() []wire.Field {
	return []wire.Field{wire.U32(&m.WindowID)}
}

type LowerWindow struct {
	WindowID uint32 `yaml:"window_id"`
}

func (*LowerWindow) Type() schema.MessageType { return schema.LowerWindow }
func (*LowerWindow) isMessage()               {}

func (m *LowerWindow) Fields() []wire.Field {
	return []wire.Field{wire.U32(&m.WindowID)}
}

type SetWindowParent struct {
	WindowID uint32 `yaml:"window_id"`
	ParentID uint32 `yaml:"parent_id"`
}

func (*SetWindowParent) Type() schema.MessageType { return schema.SetWindowParent }
func (*SetWindowParent) isMessage()               {}

func (m *SetWindowParent) Fields() []wire.Field {
	return []wire.Field{
		wire.U32(&m.WindowID),
		wire.U32(&m.ParentID),
	}
}

type SetWindowTransform3D struct {
	WindowID   uint32  `yaml:"window_id"`
	TranslateX float32 `yaml:"translate_x"`
	TranslateY float32 `yaml:"translate_y"`
	TranslateZ float32 `yaml:"translate_z"`
	RotateX    float32 `yaml:"rotate_x"`
	RotateY    float32 `yaml:"rotate_y"`
	RotateZ    float32 `yaml:"rotate_z"`
	ScaleX     float32 `yaml:"scale_x"`
	ScaleY     float32 `yaml:"scale_y"`
	ScaleZ     float32 `yaml:"scale_z"`
}

func (*SetWindowTransform3D) Type() schema.MessageType { return schema.SetWindowTransform3D }
func (*SetWindowTransform3D) isMessage()               {}

func (m *SetWindowTransform3D) Fields() []wire.Field {
	return []wire.Field{
		wire.U32(&m.WindowID),
		wire.F32(&m.TranslateX),
		wire.F32(&m.TranslateY),
		wire.F32(&m.TranslateZ),
		wire.F32(&m.RotateX),
		wire.F32(&m.RotateY),
		wire.F32(&m.RotateZ),
		wire.F32(&m.ScaleX),
		wire.F32(&m.ScaleY),
		wire.F32(&m.ScaleZ),
	}
}

// SetWindowMatrix replaces the window transform with a column-major 4x4
// matrix.
type SetWindowMatrix struct {
	WindowID uint32      `yaml:"window_id"`
	Matrix   [16]float32 `yaml:"matrix"`
}

func (*SetWindowMatrix) Type() schema.MessageType { return schema.SetWindowMatrix }
func (*SetWindowMatrix) isMessage()               {}

func (m *SetWindowMatrix) Fields() []wire.Field {
	return append([]wire.Field{wire.U32(&m.WindowID)}, wire.F32s(m.Matrix[:])...)
}

// State is a bitfield of the State* constants.
type SetWindowState struct {
	WindowID uint32 `yaml:"window_id"`
	State    uint32 `yaml:"state"`
}

func (*SetWindowState) Type() schema.MessageType { return schema.SetWindowState }
func (*SetWindowState) isMessage()               {}

func (m *SetWindowState) Fields() []wire.Field {
	return []wire.Field{
		wire.U32(&m.WindowID),
		wire.U32(&m.State),
	}
}

type FocusWindow struct {
	WindowID uint32 `yaml:"window_id"`
}

func (*FocusWindow) Type() schema.MessageType { return schema.FocusWindow }
func (*FocusWindow) isMessage()               {}

func (m *FocusWindow) Fields() []wire.Field {
	return []wire.Field{wire.U32(&m.WindowID)}
}
