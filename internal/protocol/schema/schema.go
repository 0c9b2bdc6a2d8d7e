package schema

import (
	"fmt"
	"sort"

	"github.com/rs/zerolog/log"
)

// MessageType is the u16 msg_type carried in every frame header.
type MessageType uint16

// Message type IDs. 58 and 59 were allocated after 57 for the global capture
// unregistrations and are intentionally out of family order.
const (
	CreateWindow                    MessageType = 1
	DestroyWindow                   MessageType = 2
	SetWindow                       MessageType = 3
	SetLayer                        MessageType = 4
	SetAttachments                  MessageType = 5
	DrawRect                        MessageType = 6
	ClearRects                      MessageType = 7
	ImportDmabuf                    MessageType = 8
	ExportDmabuf                    MessageType = 9
	DrawLine                        MessageType = 10
	DrawCircle                      MessageType = 11
	DrawPolygon                     MessageType = 12
	DrawImage                       MessageType = 13
	BlitBuffer                      MessageType = 14
	BatchBegin                      MessageType = 15
	BatchEnd                        MessageType = 16
	ExportSurface                   MessageType = 17
	ImportSurface                   MessageType = 18
	CreateBuffer                    MessageType = 19
	DestroyBuffer                   MessageType = 20
	QueryBufferInfo                 MessageType = 21
	RegisterPointerEvent            MessageType = 22
	RegisterKeyboardEvent           MessageType = 23
	QueryCaptureMouse               MessageType = 24
	QueryCaptureKeyboard            MessageType = 25
	PointerEvent                    MessageType = 26
	KeyboardEvent                   MessageType = 27
	UploadImage                     MessageType = 28
	DestroyImage                    MessageType = 29
	DrawUploadedImage               MessageType = 30
	DrawText                        MessageType = 31
	SetWindowVisible                MessageType = 32
	RegisterKeybind                 MessageType = 33
	UnregisterKeybind               MessageType = 34
	KeybindEvent                    MessageType = 35
	WindowCreated                   MessageType = 36
	WindowDestroyed                 MessageType = 37
	RegisterClickRegion             MessageType = 38
	UnregisterClickRegion           MessageType = 39
	ClickRegionEvent                MessageType = 40
	RequestScreenCopy               MessageType = 41
	ScreenCopyData                  MessageType = 42
	RegisterGlobalPointerEvent      MessageType = 43
	RegisterGlobalKeyboardEvent     MessageType = 44
	RegisterGlobalCaptureMouse      MessageType = 45
	RegisterGlobalCaptureKeyboard   MessageType = 46
	SetWindowPosition               MessageType = 47
	SetWindowSize                   MessageType = 48
	SetWindowOpacity                MessageType = 49
	SetWindowTransform              MessageType = 50
	CompositorShutdown              MessageType = 51
	QueryWindowPosition             MessageType = 52
	QueryWindowSize                 MessageType = 53
	QueryWindowAttributes           MessageType = 54
	WindowPositionData              MessageType = 55
	WindowSizeData                  MessageType = 56
	WindowAttributesData            MessageType = 57
	UnregisterGlobalCaptureKeyboard MessageType = 58
	UnregisterGlobalCaptureMouse    MessageType = 59
	SetWindowLayer                  MessageType = 60
	RaiseWindow                     MessageType = 61
	LowerWindow                     MessageType = 62
	SetWindowParent                 MessageType = 63
	SetWindowTransform3D            MessageType = 64
	SetWindowMatrix                 MessageType = 65
	SetWindowState                  MessageType = 66
	FocusWindow                     MessageType = 67
	QueryWindowLayer                MessageType = 68
	QueryWindowState                MessageType = 69
	WindowLayerData                 MessageType = 70
	WindowStateData                 MessageType = 71
	QueryScreenDimensions           MessageType = 72
	ScreenDimensionsData            MessageType = 73
	QueryMonitors                   MessageType = 74
	MonitorsData                    MessageType = 75
	QueryWindowInfo                 MessageType = 76
	WindowInfoData                  MessageType = 77
	SetWindowBlur                   MessageType = 78
	SetScreenEffect                 MessageType = 79
	SetWindowEffect                 MessageType = 80
	AnimateWindow                   MessageType = 81
	StopAnimation                   MessageType = 82
	BlurWindow                      MessageType = 83
	SetWindowMeshTransform          MessageType = 84
	ClearWindowMeshTransform        MessageType = 85
	UpdateWindowMeshVertices        MessageType = 86
	QueryToplevelWindows            MessageType = 87
	ToplevelWindowsData             MessageType = 88
	SubscribeWindowEvents           MessageType = 89
	UnsubscribeWindowEvents         MessageType = 90
	WindowTitleChanged              MessageType = 91
	WindowStateChanged              MessageType = 92
	LaunchApp                       MessageType = 93
)

// Pattern names the payload encoding family of a message type.
type Pattern uint8

const (
	PatternFixed Pattern = iota + 1
	PatternBlob
	PatternCString
	PatternPadded
	PatternArray
	PatternEmpty
)

func (p Pattern) String() string {
	switch p {
	case PatternFixed:
		return "fixed"
	case PatternBlob:
		return "blob"
	case PatternCString:
		return "cstring"
	case PatternPadded:
		return "padded"
	case PatternArray:
		return "array"
	case PatternEmpty:
		return "empty"
	default:
		return fmt.Sprintf("pattern(%d)", uint8(p))
	}
}

// Direction is the side that originates a message type.
type Direction uint8

const (
	ToCompositor Direction = iota + 1
	ToClient
)

func (d Direction) String() string {
	switch d {
	case ToCompositor:
		return "client->compositor"
	case ToClient:
		return "compositor->client"
	default:
		return fmt.Sprintf("direction(%d)", uint8(d))
	}
}

type Entry struct {
	Type      MessageType
	Name      string
	Pattern   Pattern
	Direction Direction
}

type ValidationError struct {
	MessageType uint16
	Reason      string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("schema: message_type=%d: %s", e.MessageType, e.Reason)
}

const (
	f = PatternFixed
	b = PatternBlob
	s = PatternCString
	p = PatternPadded
	a = PatternArray
	e = PatternEmpty

	up   = ToCompositor
	down = ToClient
)

var entries = map[MessageType]Entry{
	CreateWindow:                    {CreateWindow, "create_window", f, up},
	DestroyWindow:                   {DestroyWindow, "destroy_window", f, up},
	SetWindow:                       {SetWindow, "set_window", f, up},
	SetLayer:                        {SetLayer, "set_layer", f, up},
	SetAttachments:                  {SetAttachments, "set_attachments", f, up},
	DrawRect:                        {DrawRect, "draw_rect", f, up},
	ClearRects:                      {ClearRects, "clear_rects", f, up},
	ImportDmabuf:                    {ImportDmabuf, "import_dmabuf", f, up},
	ExportDmabuf:                    {ExportDmabuf, "export_dmabuf", f, up},
	DrawLine:                        {DrawLine, "draw_line", f, up},
	DrawCircle:                      {DrawCircle, "draw_circle", f, up},
	DrawPolygon:                     {DrawPolygon, "draw_polygon", a, up},
	DrawImage:                       {DrawImage, "draw_image", f, up},
	BlitBuffer:                      {BlitBuffer, "blit_buffer", f, up},
	BatchBegin:                      {BatchBegin, "batch_begin", f, up},
	BatchEnd:                        {BatchEnd, "batch_end", f, up},
	ExportSurface:                   {ExportSurface, "export_surface", f, up},
	ImportSurface:                   {ImportSurface, "import_surface", f, up},
	CreateBuffer:                    {CreateBuffer, "create_buffer", f, up},
	DestroyBuffer:                   {DestroyBuffer, "destroy_buffer", f, up},
	QueryBufferInfo:                 {QueryBufferInfo, "query_buffer_info", f, up},
	RegisterPointerEvent:            {RegisterPointerEvent, "register_pointer_event", f, up},
	RegisterKeyboardEvent:           {RegisterKeyboardEvent, "register_keyboard_event", f, up},
	QueryCaptureMouse:               {QueryCaptureMouse, "query_capture_mouse", f, up},
	QueryCaptureKeyboard:            {QueryCaptureKeyboard, "query_capture_keyboard", f, up},
	PointerEvent:                    {PointerEvent, "pointer_event", f, down},
	KeyboardEvent:                   {KeyboardEvent, "keyboard_event", f, down},
	UploadImage:                     {UploadImage, "upload_image", b, up},
	DestroyImage:                    {DestroyImage, "destroy_image", f, up},
	DrawUploadedImage:               {DrawUploadedImage, "draw_uploaded_image", f, up},
	DrawText:                        {DrawText, "draw_text", s, up},
	SetWindowVisible:                {SetWindowVisible, "set_window_visible", f, up},
	RegisterKeybind:                 {RegisterKeybind, "register_keybind", f, up},
	UnregisterKeybind:               {UnregisterKeybind, "unregister_keybind", f, up},
	KeybindEvent:                    {KeybindEvent, "keybind_event", f, down},
	WindowCreated:                   {WindowCreated, "window_created", f, down},
	WindowDestroyed:                 {WindowDestroyed, "window_destroyed", f, down},
	RegisterClickRegion:             {RegisterClickRegion, "register_click_region", f, up},
	UnregisterClickRegion:           {UnregisterClickRegion, "unregister_click_region", f, up},
	ClickRegionEvent:                {ClickRegionEvent, "click_region_event", f, down},
	RequestScreenCopy:               {RequestScreenCopy, "request_screen_copy", f, up},
	ScreenCopyData:                  {ScreenCopyData, "screen_copy_data", b, down},
	RegisterGlobalPointerEvent:      {RegisterGlobalPointerEvent, "register_global_pointer_event", e, up},
	RegisterGlobalKeyboardEvent:     {RegisterGlobalKeyboardEvent, "register_global_keyboard_event", e, up},
	RegisterGlobalCaptureMouse:      {RegisterGlobalCaptureMouse, "register_global_capture_mouse", e, up},
	RegisterGlobalCaptureKeyboard:   {RegisterGlobalCaptureKeyboard, "register_global_capture_keyboard", e, up},
	SetWindowPosition:               {SetWindowPosition, "set_window_position", f, up},
	SetWindowSize:                   {SetWindowSize, "set_window_size", f, up},
	SetWindowOpacity:                {SetWindowOpacity, "set_window_opacity", f, up},
	SetWindowTransform:              {SetWindowTransform, "set_window_transform", f, up},
	CompositorShutdown:              {CompositorShutdown, "compositor_shutdown", e, down},
	QueryWindowPosition:             {QueryWindowPosition, "query_window_position", f, up},
	QueryWindowSize:                 {QueryWindowSize, "query_window_size", f, up},
	QueryWindowAttributes:           {QueryWindowAttributes, "query_window_attributes", f, up},
	WindowPositionData:              {WindowPositionData, "window_position_data", f, down},
	WindowSizeData:                  {WindowSizeData, "window_size_data", f, down},
	WindowAttributesData:            {WindowAttributesData, "window_attributes_data", f, down},
	UnregisterGlobalCaptureKeyboard: {UnregisterGlobalCaptureKeyboard, "unregister_global_capture_keyboard", e, up},
	UnregisterGlobalCaptureMouse:    {UnregisterGlobalCaptureMouse, "unregister_global_capture_mouse", e, up},
	SetWindowLayer:                  {SetWindowLayer, "set_window_layer", f, up},
	RaiseWindow:                     {RaiseWindow, "raise_window", f, up},
	LowerWindow:                     {LowerWindow, "lower_window", f, up},
	SetWindowParent:                 {SetWindowParent, "set_window_parent", f, up},
	SetWindowTransform3D:            {SetWindowTransform3D, "set_window_transform_3d", f, up},
	SetWindowMatrix:                 {SetWindowMatrix, "set_window_matrix", f, up},
	SetWindowState:                  {SetWindowState, "set_window_state", f, up},
	FocusWindow:                     {FocusWindow, "focus_window", f, up},
	QueryWindowLayer:                {QueryWindowLayer, "query_window_layer", f, up},
	QueryWindowState:                {QueryWindowState, "query_window_state", f, up},
	WindowLayerData:                 {WindowLayerData, "window_layer_data", f, down},
	WindowStateData:                 {WindowStateData, "window_state_data", f, down},
	QueryScreenDimensions:           {QueryScreenDimensions, "query_screen_dimensions", e, up},
	ScreenDimensionsData:            {ScreenDimensionsData, "screen_dimensions_data", f, down},
	QueryMonitors:                   {QueryMonitors, "query_monitors", e, up},
	MonitorsData:                    {MonitorsData, "monitors_data", a, down},
	QueryWindowInfo:                 {QueryWindowInfo, "query_window_info", f, up},
	WindowInfoData:                  {WindowInfoData, "window_info_data", s, down},
	SetWindowBlur:                   {SetWindowBlur, "set_window_blur", f, up},
	SetScreenEffect:                 {SetScreenEffect, "set_screen_effect", p, up},
	SetWindowEffect:                 {SetWindowEffect, "set_window_effect", p, up},
	AnimateWindow:                   {AnimateWindow, "animate_window", f, up},
	StopAnimation:                   {StopAnimation, "stop_animation", f, up},
	BlurWindow:                      {BlurWindow, "blur_window", f, up},
	SetWindowMeshTransform:          {SetWindowMeshTransform, "set_window_mesh_transform", a, up},
	ClearWindowMeshTransform:        {ClearWindowMeshTransform, "clear_window_mesh_transform", f, up},
	UpdateWindowMeshVertices:        {UpdateWindowMeshVertices, "update_window_mesh_vertices", a, up},
	QueryToplevelWindows:            {QueryToplevelWindows, "query_toplevel_windows", f, up},
	ToplevelWindowsData:             {ToplevelWindowsData, "toplevel_windows_data", a, down},
	SubscribeWindowEvents:           {SubscribeWindowEvents, "subscribe_window_events", f, up},
	UnsubscribeWindowEvents:         {UnsubscribeWindowEvents, "unsubscribe_window_events", f, up},
	WindowTitleChanged:              {WindowTitleChanged, "window_title_changed", p, down},
	WindowStateChanged:              {WindowStateChanged, "window_state_changed", f, down},
	LaunchApp:                       {LaunchApp, "launch_app", s, up},
}

var byName = func() map[string]MessageType {
	out := make(map[string]MessageType, len(entries))
	for t, e := range entries {
		out[e.Name] = t
	}
	return out
}()

// Lookup returns the registry entry for a message type.
func Lookup(t MessageType) (Entry, bool) {
	e, ok := entries[t]
	return e, ok
}

// ByName resolves a snake_case message name.
func ByName(name string) (MessageType, bool) {
	t, ok := byName[name]
	return t, ok
}

// All returns every registered entry ordered by id.
func All() []Entry {
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Type < out[j].Type })
	return out
}

func (t MessageType) String() string {
	if e, ok := entries[t]; ok {
		return e.Name
	}
	return fmt.Sprintf("unknown(%d)", uint16(t))
}

// Validate checks that msgType is registered and originates from want.
// Endpoints call it on inbound headers before decoding.
func Validate(msgType uint16, want Direction) error {
	e, ok := entries[MessageType(msgType)]
	if !ok {
		log.Debug().Uint16("msg_type", msgType).Msg("schema.Validate unknown message type")
		return ValidationError{MessageType: msgType, Reason: "unknown message_type"}
	}
	if e.Direction != want {
		log.Debug().
			Uint16("msg_type", msgType).
			Str("got", e.Direction.String()).
			Str("want", want.String()).
			Msg("schema.Validate direction mismatch")
		return ValidationError{MessageType: msgType, Reason: "unexpected direction " + e.Direction.String()}
	}
	return nil
}
