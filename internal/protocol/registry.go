package protocol

import (
	"fmt"

	"github.com/5hells/icm/internal/protocol/frame"
	"github.com/5hells/icm/internal/protocol/schema"
	"github.com/5hells/icm/internal/protocol/wire"
)

var constructors = map[schema.MessageType]func() Message{
	schema.CreateWindow:                    func() Message { return &CreateWindow{} },
	schema.DestroyWindow:                   func() Message { return &DestroyWindow{} },
	schema.SetWindow:                       func() Message { return &SetWindow{} },
	schema.SetLayer:                        func() Message { return &SetLayer{} },
	schema.SetAttachments:                  func() Message { return &SetAttachments{} },
	schema.DrawRect:                        func() Message { return &DrawRect{} },
	schema.ClearRects:                      func() Message { return &ClearRects{} },
	schema.ImportDmabuf:                    func() Message { return &ImportDmabuf{} },
	schema.ExportDmabuf:                    func() Message { return &ExportDmabuf{} },
	schema.DrawLine:                        func() Message { return &DrawLine{} },
	schema.DrawCircle:                      func() Message { return &DrawCircle{} },
	schema.DrawPolygon:                     func() Message { return &DrawPolygon{} },
	schema.DrawImage:                       func() Message { return &DrawImage{} },
	schema.BlitBuffer:                      func() Message { return &BlitBuffer{} },
	schema.BatchBegin:                      func() Message { return &BatchBegin{} },
	schema.BatchEnd:                        func() Message { return &BatchEnd{} },
	schema.ExportSurface:                   func() Message { return &ExportSurface{} },
	schema.ImportSurface:                   func() Message { return &ImportSurface{} },
	schema.CreateBuffer:                    func() Message { return &CreateBuffer{} },
	schema.DestroyBuffer:                   func() Message { return &DestroyBuffer{} },
	schema.QueryBufferInfo:                 func() Message { return &QueryBufferInfo{} },
	schema.RegisterPointerEvent:            func() Message { return &RegisterPointerEvent{} },
	schema.RegisterKeyboardEvent:           func() Message { return &RegisterKeyboardEvent{} },
	schema.QueryCaptureMouse:               func() Message { return &QueryCaptureMouse{} },
	schema.QueryCaptureKeyboard:            func() Message { return &QueryCaptureKeyboard{} },
	schema.PointerEvent:                    func() Message { return &PointerEvent{} },
	schema.KeyboardEvent:                   func() Message { return &KeyboardEvent{} },
	schema.UploadImage:                     func() Message { return &UploadImage{} },
	schema.DestroyImage:                    func() Message { return &DestroyImage{} },
	schema.DrawUploadedImage:               func() Message { return &DrawUploadedImage{} },
	schema.DrawText:                        func() Message { return &DrawText{} },
	schema.SetWindowVisible:                func() Message { return &SetWindowVisible{} },
	schema.RegisterKeybind:                 func() Message { return &RegisterKeybind{} },
	schema.UnregisterKeybind:               func() Message { return &UnregisterKeybind{} },
	schema.KeybindEvent:                    func() Message { return &KeybindEvent{} },
	schema.WindowCreated:                   func() Message { return &WindowCreated{} },
	schema.WindowDestroyed:                 func() Message { return &WindowDestroyed{} },
	schema.RegisterClickRegion:             func() Message { return &RegisterClickRegion{} },
	schema.UnregisterClickRegion:           func() Message { return &UnregisterClickRegion{} },
	schema.ClickRegionEvent:                func() Message { return &ClickRegionEvent{} },
	schema.RequestScreenCopy:               func() Message { return &RequestScreenCopy{} },
	schema.ScreenCopyData:                  func() Message { return &ScreenCopyData{} },
	schema.RegisterGlobalPointerEvent:      func() Message { return &RegisterGlobalPointerEvent{} },
	schema.RegisterGlobalKeyboardEvent:     func() Message { return &RegisterGlobalKeyboardEvent{} },
	schema.RegisterGlobalCaptureMouse:      func() Message { return &RegisterGlobalCaptureMouse{} },
	schema.RegisterGlobalCaptureKeyboard:   func() Message { return &RegisterGlobalCaptureKeyboard{} },
	schema.SetWindowPosition:               func() Message { return &SetWindowPosition{} },
	schema.SetWindowSize:                   func() Message { return &SetWindowSize{} },
	schema.SetWindowOpacity:                func() Message { return &SetWindowOpacity{} },
	schema.SetWindowTransform:              func() Message { return &SetWindowTransform{} },
	schema.CompositorShutdown:              func() Message { return &CompositorShutdown{} },
	schema.QueryWindowPosition:             func() Message { return &QueryWindowPosition{} },
	schema.QueryWindowSize:                 func() Message { return &QueryWindowSize{} },
	schema.QueryWindowAttributes:           func() Message { return &QueryWindowAttributes{} },
	schema.WindowPositionData:              func() Message { return &WindowPositionData{} },
	schema.WindowSizeData:                  func() Message { return &WindowSizeData{} },
	schema.WindowAttributesData:            func() Message { return &WindowAttributesData{} },
	schema.UnregisterGlobalCaptureKeyboard: func() Message { return &UnregisterGlobalCaptureKeyboard{} },
	schema.UnregisterGlobalCaptureMouse:    func() Message { return &UnregisterGlobalCaptureMouse{} },
	schema.SetWindowLayer:                  func() Message { return &SetWindowLayer{} },
	schema.RaiseWindow:                     func() Message { return &RaiseWindow{} },
	schema.LowerWindow:                     func() Message { return &LowerWindow{} },
	schema.SetWindowParent:                 func() Message { return &SetWindowParent{} },
	schema.SetWindowTransform3D:            func() Message { return &SetWindowTransform3D{} },
	schema.SetWindowMatrix:                 func() Message { return &SetWindowMatrix{} },
	schema.SetWindowState:                  func() Message { return &SetWindowState{} },
	schema.FocusWindow:                     func() Message { return &FocusWindow{} },
	schema.QueryWindowLayer:                func() Message { return &QueryWindowLayer{} },
	schema.QueryWindowState:                func() Message { return &QueryWindowState{} },
	schema.WindowLayerData:                 func() Message { return &WindowLayerData{} },
	schema.WindowStateData:                 func() Message { return &WindowStateData{} },
	schema.QueryScreenDimensions:           func() Message { return &QueryScreenDimensions{} },
	schema.ScreenDimensionsData:            func() Message { return &ScreenDimensionsData{} },
	schema.QueryMonitors:                   func() Message { return &QueryMonitors{} },
	schema.MonitorsData:                    func() Message { return &MonitorsData{} },
	schema.QueryWindowInfo:                 func() Message { return &QueryWindowInfo{} },
	schema.WindowInfoData:                  func() Message { return &WindowInfoData{} },
	schema.SetWindowBlur:                   func() Message { return &SetWindowBlur{} },
	schema.SetScreenEffect:                 func() Message { return &SetScreenEffect{} },
	schema.SetWindowEffect:                 func() Message { return &SetWindowEffect{} },
	schema.AnimateWindow:                   func() Message { return &AnimateWindow{} },
	schema.StopAnimation:                   func() Message { return &StopAnimation{} },
	schema.BlurWindow:                      func() Message { return &BlurWindow{} },
	schema.SetWindowMeshTransform:          func() Message { return &SetWindowMeshTransform{} },
	schema.ClearWindowMeshTransform:        func() Message { return &ClearWindowMeshTransform{} },
	schema.UpdateWindowMeshVertices:        func() Message { return &UpdateWindowMeshVertices{} },
	schema.QueryToplevelWindows:            func() Message { return &QueryToplevelWindows{} },
	schema.ToplevelWindowsData:             func() Message { return &ToplevelWindowsData{} },
	schema.SubscribeWindowEvents:           func() Message { return &SubscribeWindowEvents{} },
	schema.UnsubscribeWindowEvents:         func() Message { return &UnsubscribeWindowEvents{} },
	schema.WindowTitleChanged:              func() Message { return &WindowTitleChanged{} },
	schema.WindowStateChanged:              func() Message { return &WindowStateChanged{} },
	schema.LaunchApp:                       func() Message { return &LaunchApp{} },
}

type sizeInfo struct {
	size  int
	fixed bool
}

var sizes = func() map[schema.MessageType]sizeInfo {
	out := make(map[schema.MessageType]sizeInfo, len(constructors))
	for t, ctor := range constructors {
		fields := ctor().Fields()
		out[t] = sizeInfo{size: wire.Size(fields), fixed: !wire.Variable(fields)}
	}
	return out
}()

// New returns a zero value of the message registered for t.
func New(t schema.MessageType) (Message, error) {
	ctor, ok := constructors[t]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownMessageType, uint16(t))
	}
	return ctor(), nil
}

// ExpectedSize reports the exact payload size of a fixed-size type, or the
// minimum payload size of a variable-size type with fixed=false. Unknown
// types report (0, false).
func ExpectedSize(t schema.MessageType) (size int, fixed bool) {
	info, ok := sizes[t]
	if !ok {
		return 0, false
	}
	return info.size, info.fixed
}

// Encode serializes msg's payload. The header is the session's concern.
func Encode(msg Message) ([]byte, error) {
	b, err := wire.Encode(msg.Fields())
	if err != nil {
		return nil, fmt.Errorf("protocol: encode %s: %w", msg.Type(), err)
	}
	return b, nil
}

// Decode parses payload as message type t. Length is checked against the
// registry before any field is read.
func Decode(t uint16, payload []byte) (Message, error) {
	mt := schema.MessageType(t)
	ctor, ok := constructors[mt]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownMessageType, t)
	}
	info := sizes[mt]
	if info.fixed && len(payload) != info.size {
		return nil, &SizeError{MessageType: t, Got: len(payload), Want: info.size, Exact: true}
	}
	if !info.fixed && len(payload) < info.size {
		return nil, &SizeError{MessageType: t, Got: len(payload), Want: info.size}
	}
	msg := ctor()
	if err := wire.Decode(payload, msg.Fields()); err != nil {
		return nil, fmt.Errorf("protocol: decode %s: %w", mt, err)
	}
	return msg, nil
}

// EncodeFrame builds a complete frame for msg with reserved header fields
// zeroed.
func EncodeFrame(msg Message) (frame.Frame, error) {
	payload, err := Encode(msg)
	if err != nil {
		return frame.Frame{}, err
	}
	return frame.New(uint16(msg.Type()), payload), nil
}

// DecodeFrame decodes the payload of f according to its header type.
func DecodeFrame(f frame.Frame) (Message, error) {
	return Decode(f.Header.Type, f.Payload)
}
