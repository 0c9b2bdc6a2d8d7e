package protocol

import (
	"github.com/5hells/icm/internal/protocol/schema"
	"github.com/5hells/icm/internal/protocol/wire"
)

type RegisterPointerEvent struct {
	WindowID uint32 `yaml:"window_id"`
}

func (*RegisterPointerEvent) Type() schema.MessageType { return schema.RegisterPointerEvent }
func (*RegisterPointerEvent) isMessage()               {}

func (m *RegisterPointerEvent) Fields() []wire.Field {
	return []wire.Field{wire.U32(&m.WindowID)}
}

type RegisterKeyboardEvent struct {
	WindowID uint32 `yaml:"window_id"`
}

func (*RegisterKeyboardEvent) Type() schema.MessageType { return schema.RegisterKeyboardEvent }
func (*RegisterKeyboardEvent) isMessage()               {}

func (m *RegisterKeyboardEvent) Fields() []wire.Field {
	return []wire.Field{wire.U32(&m.WindowID)}
}

type QueryCaptureMouse struct {
	WindowID uint32 `yaml:"window_id"`
}

func (*QueryCaptureMouse) Type() schema.MessageType { return schema.QueryCaptureMouse }
func (*QueryCaptureMouse) isMessage()               {}

func (m *QueryCaptureMouse) Fields() []wire.Field {
	return []wire.Field{wire.U32(&m.WindowID)}
}

type QueryCaptureKeyboard struct {
	WindowID uint32 `yaml:"window_id"`
}

func (*QueryCaptureKeyboard) Type() schema.MessageType { return schema.QueryCaptureKeyboard }
func (*QueryCaptureKeyboard) isMessage()               {}

func (m *QueryCaptureKeyboard) Fields() []wire.Field {
	return []wire.Field{wire.U32(&m.WindowID)}
}

type PointerEvent struct {
	WindowID uint32 `yaml:"window_id"`
	Time     uint32 `yaml:"time"`
	Button   uint32 `yaml:"button"`
	State    uint32 `yaml:"state"`
	X        int32  `yaml:"x"`
	Y        int32  `yaml:"y"`
}

func (*PointerEvent) Type() schema.MessageType { return schema.PointerEvent }
func (*PointerEvent) isMessage()               {}

func (m *PointerEvent) Fields() []wire.Field {
	return []wire.Field{
		wire.U32(&m.WindowID),
		wire.U32(&m.Time),
		wire.U32(&m.Button),
		wire.U32(&m.State),
		wire.I32(&m.X),
		wire.I32(&m.Y),
	}
}

type KeyboardEvent struct {
	WindowID  uint32 `yaml:"window_id"`
	Time      uint32 `yaml:"time"`
	Keycode   uint32 `yaml:"keycode"`
	State     uint32 `yaml:"state"`
	Modifiers uint32 `yaml:"modifiers"`
}

func (*KeyboardEvent) Type() schema.MessageType { return schema.KeyboardEvent }
func (*KeyboardEvent) isMessage()               {}

func (m *KeyboardEvent) Fields() []wire.Field {
	return []wire.Field{
		wire.U32(&m.WindowID),
		wire.U32(&m.Time),
		wire.U32(&m.Keycode),
		wire.U32(&m.State),
		wire.U32(&m.Modifiers),
	}
}

type RegisterKeybind struct {
	KeybindID uint32 `yaml:"keybind_id"`
	Modifiers uint32 `yaml:"modifiers"`
	Keycode   uint32 `yaml:"keycode"`
}

func (*RegisterKeybind) Type() schema.MessageType { return schema.RegisterKeybind }
func (*RegisterKeybind) isMessage()               {}

func (m *RegisterKeybind) Fields() []wire.Field {
	return []wire.Field{
		wire.U32(&m.KeybindID),
		wire.U32(&m.Modifiers),
		wire.U32(&m.Keycode),
	}
}

type UnregisterKeybind struct {
	KeybindID uint32 `yaml:"keybind_id"`
}

func (*UnregisterKeybind) Type() schema.MessageType { return schema.UnregisterKeybind }
func (*UnregisterKeybind) isMessage()               {}

func (m *UnregisterKeybind) Fields() []wire.Field {
	return []wire.Field{wire.U32(&m.KeybindID)}
}

type KeybindEvent struct {
	KeybindID uint32 `yaml:"keybind_id"`
}

func (*KeybindEvent) Type() schema.MessageType { return schema.KeybindEvent }
func (*KeybindEvent) isMessage()               {}

func (m *KeybindEvent) Fields() []wire.Field {
	return []wire.Field{wire.U32(&m.KeybindID)}
}

type RegisterClickRegion struct {
	WindowID uint32 `yaml:"window_id"`
	RegionID uint32 `yaml:"region_id"`
	X        int32  `yaml:"x"`
	Y        int32  `yaml:"y"`
	Width    uint32 `yaml:"width"`
	Height   uint32 `yaml:"height"`
}

func (*RegisterClickRegion) Type() schema.MessageType { return schema.RegisterClickRegion }
func (*RegisterClickRegion) isMessage()               {}

func (m *RegisterClickRegion) Fields() []wire.Field {
	return []wire.Field{
		wire.U32(&m.WindowID),
		wire.U32(&m.RegionID),
		wire.I32(&m.X),
		wire.I32(&m.Y),
		wire.U32(&m.Width),
		wire.U32(&m.Height),
	}
}

type UnregisterClickRegion struct {
	RegionID uint32 `yaml:"region_id"`
}

func (*UnregisterClickRegion) Type() schema.MessageType { return schema.UnregisterClickRegion }
func (*UnregisterClickRegion) isMessage()               {}

func (m *UnregisterClickRegion) Fields() []wire.Field {
	return []wire.Field{wire.U32(&m.RegionID)}
}

type ClickRegionEvent struct {
	RegionID uint32 `yaml:"region_id"`
	Button   uint32 `yaml:"button"`
	State    uint32 `yaml:"state"`
}

func (*ClickRegionEvent) Type() schema.MessageType { return schema.ClickRegionEvent }
func (*ClickRegionEvent) isMessage()               {}

func (m *ClickRegionEvent) Fields() []wire.Field {
	return []wire.Field{
		wire.U32(&m.RegionID),
		wire.U32(&m.Button),
		wire.U32(&m.State),
	}
}

// The global registrations have empty payloads; the sending connection
// is the subject.
type RegisterGlobalPointerEvent struct{}

func (*RegisterGlobalPointerEvent) Type() schema.MessageType {
	return schema.RegisterGlobalPointerEvent
}
func (*RegisterGlobalPointerEvent) isMessage()           {}
func (*RegisterGlobalPointerEvent) Fields() []wire.Field { return nil }

type RegisterGlobalKeyboardEvent struct{}

func (*RegisterGlobalKeyboardEvent) Type() schema.MessageType {
	return schema.RegisterGlobalKeyboardEvent
}
func (*RegisterGlobalKeyboardEvent) isMessage()           {}
func (*RegisterGlobalKeyboardEvent) Fields() []wire.Field { return nil }

type RegisterGlobalCaptureMouse struct{}

func (*RegisterGlobalCaptureMouse) Type() schema.MessageType {
	return schema.RegisterGlobalCaptureMouse
}
func (*RegisterGlobalCaptureMouse) isMessage()           {}
func (*RegisterGlobalCaptureMouse) Fields() []wire.Field { return nil }

type RegisterGlobalCaptureKeyboard struct{}

func (*RegisterGlobalCaptureKeyboard) Type() schema.MessageType {
	return schema.RegisterGlobalCaptureKeyboard
}
func (*RegisterGlobalCaptureKeyboard) isMessage()           {}
func (*RegisterGlobalCaptureKeyboard) Fields() []wire.Field { return nil }

type UnregisterGlobalCaptureKeyboard struct{}

func (*UnregisterGlobalCaptureKeyboard) Type() schema.MessageType {
	return schema.UnregisterGlobalCaptureKeyboard
}
func (*UnregisterGlobalCaptureKeyboard) isMessage()           {}
func (*UnregisterGlobalCaptureKeyboard) Fields() []wire.Field { return nil }

type UnregisterGlobalCaptureMouse struct{}

func (*UnregisterGlobalCaptureMouse) Type() schema.MessageType {
	return schema.UnregisterGlobalCaptureMouse
}
func (*UnregisterGlobalCaptureMouse) isMessage()           {}
func (*UnregisterGlobalCaptureMouse) Fields() []wire.Field { return nil }
