package protocol

import (
	"github.com/5hells/icm/internal/protocol/schema"
	"github.com/5hells/icm/internal/protocol/wire"
)

// EquationLen is the fixed width of effect equations on the wire.
const EquationLen = 256

type SetWindowBlur struct {
	WindowID   uint32  `yaml:"window_id"`
	BlurRadius float32 `yaml:"blur_radius"`
	Enabled    bool    `yaml:"enabled"`
}

func (*SetWindowBlur) Type() schema.MessageType { return schema.SetWindowBlur }
func (*SetWindowBlur) isMessage()               {}

func (m *SetWindowBlur) Fields() []wire.Field {
	return []wire.Field{
		wire.U32(&m.WindowID),
		wire.F32(&m.BlurRadius),
		wire.Bool(&m.Enabled),
	}
}

// Equations longer than EquationLen bytes are truncated on encode.
type SetScreenEffect struct {
	Equation string `yaml:"equation"`
	Enabled  bool   `yaml:"enabled"`
}

func (*SetScreenEffect) Type() schema.MessageType { return schema.SetScreenEffect }
func (*SetScreenEffect) isMessage()               {}

func (m *SetScreenEffect) Fields() []wire.Field {
	return []wire.Field{
		wire.Padded(&m.Equation, EquationLen),
		wire.Bool(&m.Enabled),
	}
}

type SetWindowEffect struct {
	WindowID uint32 `yaml:"window_id"`
	Equation string `yaml:"equation"`
	Enabled  bool   `yaml:"enabled"`
}

func (*SetWindowEffect) Type() schema.MessageType { return schema.SetWindowEffect }
func (*SetWindowEffect) isMessage()               {}

func (m *SetWindowEffect) Fields() []wire.Field {
	return []wire.Field{
		wire.U32(&m.WindowID),
		wire.Padded(&m.Equation, EquationLen),
		wire.Bool(&m.Enabled),
	}
}

type AnimateWindow struct {
	WindowID         uint32  `yaml:"window_id"`
	DurationMS       uint32  `yaml:"duration_ms"`
	TargetX          float32 `yaml:"target_x"`
	TargetY          float32 `yaml:"target_y"`
	TargetScaleX     float32 `yaml:"target_scale_x"`
	TargetScaleY     float32 `yaml:"target_scale_y"`
	TargetOpacity    float32 `yaml:"target_opacity"`
	TargetTranslateX float32 `yaml:"target_translate_x"`
	TargetTranslateY float32 `yaml:"target_translate_y"`
	TargetTranslateZ float32 `yaml:"target_translate_z"`
	TargetRotateX    float32 `yaml:"target_rotate_x"`
	TargetRotateY    float32 `yaml:"target_rotate_y"`
	TargetRotateZ    float32 `yaml:"target_rotate_z"`
	TargetScaleZ     float32 `yaml:"target_scale_z"`
	Flags            uint32  `yaml:"flags"`
}

func (*AnimateWindow) Type() schema.MessageType { return schema.AnimateWindow }
func (*AnimateWindow) isMessage()               {}

func (m *AnimateWindow) Fields() []wire.Field {
	return []wire.Field{
		wire.U32(&m.WindowID),
		wire.U32(&m.DurationMS),
		wire.F32(&m.TargetX),
		wire.F32(&m.TargetY),
		wire.F32(&m.TargetScaleX),
		wire.F32(&m.TargetScaleY),
		wire.F32(&m.TargetOpacity),
		wire.F32(&m.TargetTranslateX),
		wire.F32(&m.TargetTranslateY),
		wire.F32(&m.TargetTranslateZ),
		wire.F32(&m.TargetRotateX),
		wire.F32(&m.TargetRotateY),
		wire.F32(&m.TargetRotateZ),
		wire.F32(&m.TargetScaleZ),
		wire.U32(&m.Flags),
	}
}

type StopAnimation struct {
	WindowID uint32 `yaml:"window_id"`
}

func (*StopAnimation) Type() schema.MessageType { return schema.StopAnimation }
func (*StopAnimation) isMessage()               {}

func (m *StopAnimation) Fields() []wire.Field {
	return []wire.Field{wire.U32(&m.WindowID)}
}

type BlurWindow struct {
	WindowID uint32 `yaml:"window_id"`
}

func (*BlurWindow) Type() schema.MessageType { return schema.BlurWindow }
func (*BlurWindow) isMessage()               {}

func (m *BlurWindow) Fields() []wire.Field {
	return []wire.Field{wire.U32(&m.WindowID)}
}

type MeshVertex struct {
	X float32 `yaml:"x"`
	Y float32 `yaml:"y"`
	U float32 `yaml:"u"`
	V float32 `yaml:"v"`
}

func meshVertexFields(v *MeshVertex) []wire.Field {
	return []wire.Field{wire.F32(&v.X), wire.F32(&v.Y), wire.F32(&v.U), wire.F32(&v.V)}
}

// SetWindowMeshTransform replaces the window's deformation mesh. Vertices
// holds MeshWidth*MeshHeight entries in row-major order.
type SetWindowMeshTransform struct {
	WindowID   uint32       `yaml:"window_id"`
	MeshWidth  uint32       `yaml:"mesh_width"`
	MeshHeight uint32       `yaml:"mesh_height"`
	Vertices   []MeshVertex `yaml:"vertices"`
}

func (*SetWindowMeshTransform) Type() schema.MessageType { return schema.SetWindowMeshTransform }
func (*SetWindowMeshTransform) isMessage()               {}

func (m *SetWindowMeshTransform) Fields() []wire.Field {
	return []wire.Field{
		wire.U32(&m.WindowID),
		wire.U32(&m.MeshWidth),
		wire.U32(&m.MeshHeight),
		wire.Trailing(&m.Vertices, func() int64 {
			return int64(m.MeshWidth) * int64(m.MeshHeight)
		}, meshVertexFields),
	}
}

type ClearWindowMeshTransform struct {
	WindowID uint32 `yaml:"window_id"`
}

func (*ClearWindowMeshTransform) Type() schema.MessageType { return schema.ClearWindowMeshTransform }
func (*ClearWindowMeshTransform) isMessage()               {}

func (m *ClearWindowMeshTransform) Fields() []wire.Field {
	return []wire.Field{wire.U32(&m.WindowID)}
}

// UpdateWindowMeshVertices overwrites a contiguous run of mesh vertices
// starting at StartIndex.
type UpdateWindowMeshVertices struct {
	WindowID   uint32       `yaml:"window_id"`
	StartIndex uint32       `yaml:"start_index"`
	Vertices   []MeshVertex `yaml:"vertices"`
}

func (*UpdateWindowMeshVertices) Type() schema.MessageType { return schema.UpdateWindowMeshVertices }
func (*UpdateWindowMeshVertices) isMessage()               {}

func (m *UpdateWindowMeshVertices) Fields() []wire.Field {
	n := uint32(len(m.Vertices))
	return []wire.Field{
		wire.U32(&m.WindowID),
		wire.U32(&m.StartIndex),
		wire.U32(&n),
		wire.Trailing(&m.Vertices, func() int64 { return int64(n) }, meshVertexFields),
	}
}
