package protocol

import (
	"github.com/5hells/icm/internal/protocol/schema"
	"github.com/5hells/icm/internal/protocol/wire"
)

// Window event subscription bits for SubscribeWindowEvents.
const (
	EventCreated uint32 = 1 << iota
	EventDestroyed
	EventTitle
	EventState
	EventFocus
)

// ToplevelVisibleOnly restricts QueryToplevelWindows to visible windows.
const ToplevelVisibleOnly uint32 = 1

const (
	TitleLen = 256
	AppIDLen = 128
)

type WindowCreated struct {
	WindowID  uint32 `yaml:"window_id"`
	Width     uint32 `yaml:"width"`
	Height    uint32 `yaml:"height"`
	Decorated bool   `yaml:"decorated"`
	Focused   bool   `yaml:"focused"`
}

func (*WindowCreated) Type() schema.MessageType { return schema.WindowCreated }
func (*WindowCreated) isMessage()               {}

func (m *WindowCreated) Fields() []wire.Field {
	return []wire.Field{
		wire.U32(&m.WindowID),
		wire.U32(&m.Width),
		wire.U32(&m.Height),
		wire.Bool(&m.Decorated),
		wire.Bool(&m.Focused),
	}
}

type WindowDestroyed struct {
	WindowID uint32 `yaml:"window_id"`
}

func (*WindowDestroyed) Type() schema.MessageType { return schema.WindowDestroyed }
func (*WindowDestroyed) isMessage()               {}

func (m *WindowDestroyed) Fields() []wire.Field {
	return []wire.Field{wire.U32(&m.WindowID)}
}

// CompositorShutdown is the last message a compositor sends before it
// closes every connection.
type CompositorShutdown struct{}

func (*CompositorShutdown) Type() schema.MessageType { return schema.CompositorShutdown }
func (*CompositorShutdown) isMessage()               {}
func (*CompositorShutdown) Fields() []wire.Field     { return nil }

type QueryToplevelWindows struct {
	Flags uint32 `yaml:"flags"`
}

func (*QueryToplevelWindows) Type() schema.MessageType { return schema.QueryToplevelWindows }
func (*QueryToplevelWindows) isMessage()               {}

func (m *QueryToplevelWindows) Fields() []wire.Field {
	return []wire.Field{wire.U32(&m.Flags)}
}

type ToplevelWindow struct {
	WindowID uint32 `yaml:"window_id"`
	X        int32  `yaml:"x"`
	Y        int32  `yaml:"y"`
	Width    uint32 `yaml:"width"`
	Height   uint32 `yaml:"height"`
	Visible  bool   `yaml:"visible"`
	Focused  bool   `yaml:"focused"`
	State    uint32 `yaml:"state"`
	Title    string `yaml:"title"`
	AppID    string `yaml:"app_id"`
}

func toplevelFields(w *ToplevelWindow) []wire.Field {
	return []wire.Field{
		wire.U32(&w.WindowID),
		wire.I32(&w.X),
		wire.I32(&w.Y),
		wire.U32(&w.Width),
		wire.U32(&w.Height),
		wire.Bool(&w.Visible),
		wire.Bool(&w.Focused),
		wire.U32(&w.State),
		wire.Padded(&w.Title, TitleLen),
		wire.Padded(&w.AppID, AppIDLen),
	}
}

type ToplevelWindowsData struct {
	Windows []ToplevelWindow `yaml:"windows"`
}

func (*ToplevelWindowsData) Type() schema.MessageType { return schema.ToplevelWindowsData }
func (*ToplevelWindowsData) isMessage()               {}

func (m *ToplevelWindowsData) Fields() []wire.Field {
	return []wire.Field{wire.Records(&m.Windows, toplevelFields)}
}

type SubscribeWindowEvents struct {
	EventMask uint32 `yaml:"event_mask"`
}

func (*SubscribeWindowEvents) Type() schema.MessageType { return schema.SubscribeWindowEvents }
func (*SubscribeWindowEvents) isMessage()               {}

func (m *SubscribeWindowEvents) Fields() []wire.Field {
	return []wire.Field{wire.U32(&m.EventMask)}
}

type UnsubscribeWindowEvents struct {
	EventMask uint32 `yaml:"event_mask"`
}

func (*UnsubscribeWindowEvents) Type() schema.MessageType { return schema.UnsubscribeWindowEvents }
func (*UnsubscribeWindowEvents) isMessage()               {}

func (m *UnsubscribeWindowEvents) Fields() []wire.Field {
	return []wire.Field{wire.U32(&m.EventMask)}
}

type WindowTitleChanged struct {
	WindowID uint32 `yaml:"window_id"`
	Title    string `yaml:"title"`
}

func (*WindowTitleChanged) Type() schema.MessageType { return schema.WindowTitleChanged }
func (*WindowTitleChanged) isMessage()               {}

func (m *WindowTitleChanged) Fields() []wire.Field {
	return []wire.Field{
		wire.U32(&m.WindowID),
		wire.Padded(&m.Title, TitleLen),
	}
}

type WindowStateChanged struct {
	WindowID uint32 `yaml:"window_id"`
	State    uint32 `yaml:"state"`
	Visible  bool   `yaml:"visible"`
	Focused  bool   `yaml:"focused"`
}

func (*WindowStateChanged) Type() schema.MessageType { return schema.WindowStateChanged }
func (*WindowStateChanged) isMessage()               {}

func (m *WindowStateChanged) Fields() []wire.Field {
	return []wire.Field{
		wire.U32(&m.WindowID),
		wire.U32(&m.State),
		wire.Bool(&m.Visible),
		wire.Bool(&m.Focused),
	}
}

// LaunchApp asks the compositor to run Command through the shell. The
// redundant length prefix is written on encode and ignored on decode.
type LaunchApp struct {
	Command string `yaml:"command"`
}

func (*LaunchApp) Type() schema.MessageType { return schema.LaunchApp }
func (*LaunchApp) isMessage()               {}

func (m *LaunchApp) Fields() []wire.Field {
	return []wire.Field{wire.LenCString(&m.Command)}
}
