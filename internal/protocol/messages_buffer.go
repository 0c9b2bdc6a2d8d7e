package protocol

import (
	"github.com/5hells/icm/internal/protocol/schema"
	"github.com/5hells/icm/internal/protocol/wire"
)

// DmabufPlane describes one plane of an imported buffer. FD is the
// descriptor number as seen by the sender; the handle itself travels as
// ancillary data.
type DmabufPlane struct {
	FD       int32  `yaml:"fd"`
	Offset   uint32 `yaml:"offset"`
	Stride   uint32 `yaml:"stride"`
	Modifier uint64 `yaml:"modifier"`
}

type ImportDmabuf struct {
	BufferID  uint32         `yaml:"buffer_id"`
	Width     int32          `yaml:"width"`
	Height    int32          `yaml:"height"`
	Format    uint32         `yaml:"format"`
	Flags     uint32         `yaml:"flags"`
	NumPlanes uint32         `yaml:"num_planes"`
	Planes    [4]DmabufPlane `yaml:"planes"`
}

func (*ImportDmabuf) Type() schema.MessageType { return schema.ImportDmabuf }
func (*ImportDmabuf) isMessage()               {}

func (m *ImportDmabuf) Fields() []wire.Field {
	fields := []wire.Field{
		wire.U32(&m.BufferID),
		wire.I32(&m.Width),
		wire.I32(&m.Height),
		wire.U32(&m.Format),
		wire.U32(&m.Flags),
		wire.U32(&m.NumPlanes),
	}
	for i := range m.Planes {
		p := &m.Planes[i]
		fields = append(fields, wire.I32(&p.FD), wire.U32(&p.Offset), wire.U32(&p.Stride), wire.U64(&p.Modifier))
	}
	return fields
}

type ExportDmabuf struct {
	BufferID uint32 `yaml:"buffer_id"`
	Flags    uint32 `yaml:"flags"`
}

func (*ExportDmabuf) Type() schema.MessageType { return schema.ExportDmabuf }
func (*ExportDmabuf) isMessage()               {}

func (m *ExportDmabuf) Fields() []wire.Field {
	return []wire.Field{
		wire.U32(&m.BufferID),
		wire.U32(&m.Flags),
	}
}

type ExportSurface struct {
	WindowID  uint32 `yaml:"window_id"`
	SurfaceID uint32 `yaml:"surface_id"`
	Flags     uint32 `yaml:"flags"`
}

func (*ExportSurface) Type() schema.MessageType { return schema.ExportSurface }
func (*ExportSurface) isMessage()               {}

func (m *ExportSurface) Fields() []wire.Field {
	return []wire.Field{
		wire.U32(&m.WindowID),
		wire.U32(&m.SurfaceID),
		wire.U32(&m.Flags),
	}
}

type ImportSurface struct {
	SurfaceID uint32 `yaml:"surface_id"`
	WindowID  uint32 `yaml:"window_id"`
	X         int32  `yaml:"x"`
	Y         int32  `yaml:"y"`
	Width     uint32 `yaml:"width"`
	Height    uint32 `yaml:"height"`
}

func (*ImportSurface) Type() schema.MessageType { return schema.ImportSurface }
func (*ImportSurface) isMessage()               {}

func (m *ImportSurface) Fields() []wire.Field {
	return []wire.Field{
		wire.U32(&m.SurfaceID),
		wire.U32(&m.WindowID),
		wire.I32(&m.X),
		wire.I32(&m.Y),
		wire.U32(&m.Width),
		wire.U32(&m.Height),
	}
}

type CreateBuffer struct {
	BufferID   uint32 `yaml:"buffer_id"`
	Width      uint32 `yaml:"width"`
	Height     uint32 `yaml:"height"`
	Format     uint32 `yaml:"format"`
	UsageFlags uint32 `yaml:"usage_flags"`
}

func (*CreateBuffer) Type() schema.MessageType { return schema.CreateBuffer }
func (*CreateBuffer) isMessage()               {}

func (m *CreateBuffer) Fields() []wire.Field {
	return []wire.Field{
		wire.U32(&m.BufferID),
		wire.U32(&m.Width),
		wire.U32(&m.Height),
		wire.U32(&m.Format),
		wire.U32(&m.UsageFlags),
	}
}

type DestroyBuffer struct {
	BufferID uint32 `yaml:"buffer_id"`
}

func (*DestroyBuffer) Type() schema.MessageType { return schema.DestroyBuffer }
func (*DestroyBuffer) isMessage()               {}

func (m *DestroyBuffer) Fields() []wire.Field {
	return []wire.Field{wire.U32(&m.BufferID)}
}

type QueryBufferInfo struct {
	BufferID uint32 `yaml:"buffer_id"`
}

func (*QueryBufferInfo) Type() schema.MessageType { return schema.QueryBufferInfo }
func (*QueryBufferInfo) isMessage()               {}

func (m *QueryBufferInfo) Fields() []wire.Field {
	return []wire.Field{wire.U32(&m.BufferID)}
}

type RequestScreenCopy struct {
	RequestID uint32 `yaml:"request_id"`
	X         uint32 `yaml:"x"`
	Y         uint32 `yaml:"y"`
	Width     uint32 `yaml:"width"`
	Height    uint32 `yaml:"height"`
}

func (*RequestScreenCopy) Type() schema.MessageType { return schema.RequestScreenCopy }
func (*RequestScreenCopy) isMessage()               {}

func (m *RequestScreenCopy) Fields() []wire.Field {
	return []wire.Field{
		wire.U32(&m.RequestID),
		wire.U32(&m.X),
		wire.U32(&m.Y),
		wire.U32(&m.Width),
		wire.U32(&m.Height),
	}
}

type ScreenCopyData struct {
	RequestID uint32 `yaml:"request_id"`
	Width     uint32 `yaml:"width"`
	Height    uint32 `yaml:"height"`
	Format    uint32 `yaml:"format"`
	Data      []byte `yaml:"data"`
}

func (*ScreenCopyData) Type() schema.MessageType { return schema.ScreenCopyData }
func (*ScreenCopyData) isMessage()               {}

func (m *ScreenCopyData) Fields() []wire.Field {
	return []wire.Field{
		wire.U32(&m.RequestID),
		wire.U32(&m.Width),
		wire.U32(&m.Height),
		wire.U32(&m.Format),
		wire.Blob(&m.Data),
	}
}
