package protocol

import (
	"github.com/5hells/icm/internal/protocol/schema"
	"github.com/5hells/icm/internal/protocol/wire"
)

// Point is one polygon vertex.
type Point struct {
	X int32 `yaml:"x"`
	Y int32 `yaml:"y"`
}

func pointFields(p *Point) []wire.Field {
	return []wire.Field{wire.I32(&p.X), wire.I32(&p.Y)}
}

type DrawRect struct {
	WindowID  uint32 `yaml:"window_id"`
	X         int32  `yaml:"x"`
	Y         int32  `yaml:"y"`
	Width     uint32 `yaml:"width"`
	Height    uint32 `yaml:"height"`
	ColorRGBA uint32 `yaml:"color_rgba"`
}

func (*DrawRect) Type() schema.MessageType { return schema.DrawRect }
func (*DrawRect) isMessage()               {}

func (m *DrawRect) Fields() []wire.Field {
	return []wire.Field{
		wire.U32(&m.WindowID),
		wire.I32(&m.X),
		wire.I32(&m.Y),
		wire.U32(&m.Width),
		wire.U32(&m.Height),
		wire.U32(&m.ColorRGBA),
	}
}

type ClearRects struct {
	WindowID uint32 `yaml:"window_id"`
}

func (*ClearRects) Type() schema.MessageType { return schema.ClearRects }
func (*ClearRects) isMessage()               {}

func (m *ClearRects) Fields() []wire.Field {
	return []wire.Field{wire.U32(&m.WindowID)}
}

type DrawLine struct {
	WindowID  uint32 `yaml:"window_id"`
	X0        int32  `yaml:"x0"`
	Y0        int32  `yaml:"y0"`
	X1        int32  `yaml:"x1"`
	Y1        int32  `yaml:"y1"`
	ColorRGBA uint32 `yaml:"color_rgba"`
	Thickness uint32 `yaml:"thickness"`
}

func (*DrawLine) Type() schema.MessageType { return schema.DrawLine }
func (*DrawLine) isMessage()               {}

func (m *DrawLine) Fields() []wire.Field {
	return []wire.Field{
		wire.U32(&m.WindowID),
		wire.I32(&m.X0),
		wire.I32(&m.Y0),
		wire.I32(&m.X1),
		wire.I32(&m.Y1),
		wire.U32(&m.ColorRGBA),
		wire.U32(&m.Thickness),
	}
}

// Fill is 0 for an outline and 1 for a filled disc.
type DrawCircle struct {
	WindowID  uint32 `yaml:"window_id"`
	CX        int32  `yaml:"cx"`
	CY        int32  `yaml:"cy"`
	Radius    uint32 `yaml:"radius"`
	ColorRGBA uint32 `yaml:"color_rgba"`
	Fill      uint32 `yaml:"fill"`
}

func (*DrawCircle) Type() schema.MessageType { return schema.DrawCircle }
func (*DrawCircle) isMessage()               {}

func (m *DrawCircle) Fields() []wire.Field {
	return []wire.Field{
		wire.U32(&m.WindowID),
		wire.I32(&m.CX),
		wire.I32(&m.CY),
		wire.U32(&m.Radius),
		wire.U32(&m.ColorRGBA),
		wire.U32(&m.Fill),
	}
}

// DrawPolygon carries its point count in the fixed part of the payload; the
// points trail without a second count.
type DrawPolygon struct {
	WindowID  uint32  `yaml:"window_id"`
	ColorRGBA uint32  `yaml:"color_rgba"`
	Fill      uint32  `yaml:"fill"`
	Points    []Point `yaml:"points"`
}

func (*DrawPolygon) Type() schema.MessageType { return schema.DrawPolygon }
func (*DrawPolygon) isMessage()               {}

func (m *DrawPolygon) Fields() []wire.Field {
	n := uint32(len(m.Points))
	return []wire.Field{
		wire.U32(&m.WindowID),
		wire.U32(&n),
		wire.U32(&m.ColorRGBA),
		wire.U32(&m.Fill),
		wire.Trailing(&m.Points, func() int64 { return int64(n) }, pointFields),
	}
}

type DrawImage struct {
	WindowID  uint32 `yaml:"window_id"`
	BufferID  uint32 `yaml:"buffer_id"`
	X         int32  `yaml:"x"`
	Y         int32  `yaml:"y"`
	Width     uint32 `yaml:"width"`
	Height    uint32 `yaml:"height"`
	SrcX      uint32 `yaml:"src_x"`
	SrcY      uint32 `yaml:"src_y"`
	SrcWidth  uint32 `yaml:"src_width"`
	SrcHeight uint32 `yaml:"src_height"`
	Alpha     uint8  `yaml:"alpha"`
}

func (*DrawImage) Type() schema.MessageType { return schema.DrawImage }
func (*DrawImage) isMessage()               {}

func (m *DrawImage) Fields() []wire.Field {
	return []wire.Field{
		wire.U32(&m.WindowID),
		wire.U32(&m.BufferID),
		wire.I32(&m.X),
		wire.I32(&m.Y),
		wire.U32(&m.Width),
		wire.U32(&m.Height),
		wire.U32(&m.SrcX),
		wire.U32(&m.SrcY),
		wire.U32(&m.SrcWidth),
		wire.U32(&m.SrcHeight),
		wire.U8(&m.Alpha),
	}
}

type BlitBuffer struct {
	WindowID    uint32 `yaml:"window_id"`
	SrcBufferID uint32 `yaml:"src_buffer_id"`
	DstBufferID uint32 `yaml:"dst_buffer_id"`
	SrcX        int32  `yaml:"src_x"`
	SrcY        int32  `yaml:"src_y"`
	DstX        int32  `yaml:"dst_x"`
	DstY        int32  `yaml:"dst_y"`
	Width       uint32 `yaml:"width"`
	Height      uint32 `yaml:"height"`
}

func (*BlitBuffer) Type() schema.MessageType { return schema.BlitBuffer }
func (*BlitBuffer) isMessage()               {}

func (m *BlitBuffer) Fields() []wire.Field {
	return []wire.Field{
		wire.U32(&m.WindowID),
		wire.U32(&m.SrcBufferID),
		wire.U32(&m.DstBufferID),
		wire.I32(&m.SrcX),
		wire.I32(&m.SrcY),
		wire.I32(&m.DstX),
		wire.I32(&m.DstY),
		wire.U32(&m.Width),
		wire.U32(&m.Height),
	}
}

type BatchBegin struct {
	BatchID          uint32 `yaml:"batch_id"`
	ExpectedCommands uint32 `yaml:"expected_commands"`
}

func (*BatchBegin) Type() schema.MessageType { return schema.BatchBegin }
func (*BatchBegin) isMessage()               {}

func (m *BatchBegin) Fields() []wire.Field {
	return []wire.Field{
		wire.U32(&m.BatchID),
		wire.U32(&m.ExpectedCommands),
	}
}

type BatchEnd struct {
	BatchID uint32 `yaml:"batch_id"`
}

func (*BatchEnd) Type() schema.MessageType { return schema.BatchEnd }
func (*BatchEnd) isMessage()               {}

func (m *BatchEnd) Fields() []wire.Field {
	return []wire.Field{wire.U32(&m.BatchID)}
}

// UploadImage transfers raw pixel data that later DrawUploadedImage calls
// reference by ImageID.
type UploadImage struct {
	ImageID uint32 `yaml:"image_id"`
	Width   uint32 `yaml:"width"`
	Height  uint32 `yaml:"height"`
	Format  uint32 `yaml:"format"`
	Data    []byte `yaml:"data"`
}

func (*UploadImage) Type() schema.MessageType { return schema.UploadImage }
func (*UploadImage) isMessage()               {}

func (m *UploadImage) Fields() []wire.Field {
	return []wire.Field{
		wire.U32(&m.ImageID),
		wire.U32(&m.Width),
		wire.U32(&m.Height),
		wire.U32(&m.Format),
		wire.Blob(&m.Data),
	}
}

type DestroyImage struct {
	ImageID uint32 `yaml:"image_id"`
}

func (*DestroyImage) Type() schema.MessageType { return schema.DestroyImage }
func (*DestroyImage) isMessage()               {}

func (m *DestroyImage) Fields() []wire.Field {
	return []wire.Field{wire.U32(&m.ImageID)}
}

type DrawUploadedImage struct {
	WindowID  uint32 `yaml:"window_id"`
	ImageID   uint32 `yaml:"image_id"`
	X         int32  `yaml:"x"`
	Y         int32  `yaml:"y"`
	Width     uint32 `yaml:"width"`
	Height    uint32 `yaml:"height"`
	SrcX      uint32 `yaml:"src_x"`
	SrcY      uint32 `yaml:"src_y"`
	SrcWidth  uint32 `yaml:"src_width"`
	SrcHeight uint32 `yaml:"src_height"`
	Alpha     uint8  `yaml:"alpha"`
}

func (*DrawUploadedImage) Type() schema.MessageType { return schema.DrawUploadedImage }
func (*DrawUploadedImage) isMessage()               {}

func (m *DrawUploadedImage) Fields() []wire.Field {
	return []wire.Field{
		wire.U32(&m.WindowID),
		wire.U32(&m.ImageID),
		wire.I32(&m.X),
		wire.I32(&m.Y),
		wire.U32(&m.Width),
		wire.U32(&m.Height),
		wire.U32(&m.SrcX),
		wire.U32(&m.SrcY),
		wire.U32(&m.SrcWidth),
		wire.U32(&m.SrcHeight),
		wire.U8(&m.Alpha),
	}
}

type DrawText struct {
	WindowID  uint32 `yaml:"window_id"`
	X         int32  `yaml:"x"`
	Y         int32  `yaml:"y"`
	ColorRGBA uint32 `yaml:"color_rgba"`
	FontSize  uint32 `yaml:"font_size"`
	Text      string `yaml:"text"`
}

func (*DrawText) Type() schema.MessageType { return schema.DrawText }
func (*DrawText) isMessage()               {}

func (m *DrawText) Fields() []wire.Field {
	return []wire.Field{
		wire.U32(&m.WindowID),
		wire.I32(&m.X),
		wire.I32(&m.Y),
		wire.U32(&m.ColorRGBA),
		wire.U32(&m.FontSize),
		wire.CString(&m.Text),
	}
}
