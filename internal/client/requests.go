package client

import (
	"context"

	"github.com/5hells/icm/internal/protocol"
)

func (c *Client) CreateWindow(id uint32, x, y int32, width, height, layer, color uint32) error {
	return c.Send(&protocol.CreateWindow{
		WindowID:  id,
		X:         x,
		Y:         y,
		Width:     width,
		Height:    height,
		Layer:     layer,
		ColorRGBA: color,
	})
}

func (c *Client) DestroyWindow(id uint32) error {
	return c.Send(&protocol.DestroyWindow{WindowID: id})
}

func (c *Client) SetWindowPosition(id uint32, x, y int32) error {
	return c.Send(&protocol.SetWindowPosition{WindowID: id, X: x, Y: y})
}

func (c *Client) SetWindowSize(id, width, height uint32) error {
	return c.Send(&protocol.SetWindowSize{WindowID: id, Width: width, Height: height})
}

func (c *Client) SetWindowVisible(id uint32, visible bool) error {
	return c.Send(&protocol.SetWindowVisible{WindowID: id, Visible: visible})
}

func (c *Client) SetWindowOpacity(id uint32, opacity float32) error {
	return c.Send(&protocol.SetWindowOpacity{WindowID: id, Opacity: opacity})
}

func (c *Client) SetWindowState(id, state uint32) error {
	return c.Send(&protocol.SetWindowState{WindowID: id, State: state})
}

func (c *Client) SetWindowParent(id, parent uint32) error {
	return c.Send(&protocol.SetWindowParent{WindowID: id, ParentID: parent})
}

func (c *Client) FocusWindow(id uint32) error {
	return c.Send(&protocol.FocusWindow{WindowID: id})
}

func (c *Client) RaiseWindow(id uint32) error {
	return c.Send(&protocol.RaiseWindow{WindowID: id})
}

func (c *Client) LowerWindow(id uint32) error {
	return c.Send(&protocol.LowerWindow{WindowID: id})
}

func (c *Client) DrawRect(id uint32, x, y int32, width, height, color uint32) error {
	return c.Send(&protocol.DrawRect{WindowID: id, X: x, Y: y, Width: width, Height: height, ColorRGBA: color})
}

func (c *Client) DrawText(id uint32, x, y int32, color, fontSize uint32, text string) error {
	return c.Send(&protocol.DrawText{WindowID: id, X: x, Y: y, ColorRGBA: color, FontSize: fontSize, Text: text})
}

// DrawPolygon draws the polygon through points, filled or outlined. The
// point count is derived from points.
func (c *Client) DrawPolygon(id uint32, color uint32, fill bool, points []protocol.Point) error {
	m := &protocol.DrawPolygon{WindowID: id, ColorRGBA: color, Points: points}
	if fill {
		m.Fill = 1
	}
	return c.Send(m)
}

func (c *Client) UploadImage(imageID, width, height, format uint32, data []byte) error {
	return c.Send(&protocol.UploadImage{ImageID: imageID, Width: width, Height: height, Format: format, Data: data})
}

// ImportDmabuf sends the buffer description with one handle per plane.
func (c *Client) ImportDmabuf(m *protocol.ImportDmabuf, fds []int) error {
	return c.SendWithFDs(m, fds)
}

func (c *Client) RegisterKeybind(id, modifiers, keycode uint32) error {
	return c.Send(&protocol.RegisterKeybind{KeybindID: id, Modifiers: modifiers, Keycode: keycode})
}

func (c *Client) UnregisterKeybind(id uint32) error {
	return c.Send(&protocol.UnregisterKeybind{KeybindID: id})
}

func (c *Client) RegisterClickRegion(windowID, regionID uint32, x, y int32, width, height uint32) error {
	return c.Send(&protocol.RegisterClickRegion{
		WindowID: windowID,
		RegionID: regionID,
		X:        x,
		Y:        y,
		Width:    width,
		Height:   height,
	})
}

func (c *Client) UnregisterClickRegion(regionID uint32) error {
	return c.Send(&protocol.UnregisterClickRegion{RegionID: regionID})
}

func (c *Client) RegisterGlobalPointer() error {
	return c.Send(&protocol.RegisterGlobalPointerEvent{})
}

func (c *Client) RegisterGlobalKeyboard() error {
	return c.Send(&protocol.RegisterGlobalKeyboardEvent{})
}

func (c *Client) SubscribeWindowEvents(mask uint32) error {
	return c.Send(&protocol.SubscribeWindowEvents{EventMask: mask})
}

func (c *Client) UnsubscribeWindowEvents(mask uint32) error {
	return c.Send(&protocol.UnsubscribeWindowEvents{EventMask: mask})
}

func (c *Client) LaunchApp(command string) error {
	return c.Send(&protocol.LaunchApp{Command: command})
}

func (c *Client) QueryWindowPosition(ctx context.Context, id uint32) (*protocol.WindowPositionData, error) {
	return query[*protocol.WindowPositionData](ctx, c, &protocol.QueryWindowPosition{WindowID: id})
}

func (c *Client) QueryWindowSize(ctx context.Context, id uint32) (*protocol.WindowSizeData, error) {
	return query[*protocol.WindowSizeData](ctx, c, &protocol.QueryWindowSize{WindowID: id})
}

func (c *Client) QueryWindowAttributes(ctx context.Context, id uint32) (*protocol.WindowAttributesData, error) {
	return query[*protocol.WindowAttributesData](ctx, c, &protocol.QueryWindowAttributes{WindowID: id})
}

func (c *Client) QueryWindowLayer(ctx context.Context, id uint32) (*protocol.WindowLayerData, error) {
	return query[*protocol.WindowLayerData](ctx, c, &protocol.QueryWindowLayer{WindowID: id})
}

func (c *Client) QueryWindowState(ctx context.Context, id uint32) (*protocol.WindowStateData, error) {
	return query[*protocol.WindowStateData](ctx, c, &protocol.QueryWindowState{WindowID: id})
}

func (c *Client) QueryWindowInfo(ctx context.Context, id uint32) (*protocol.WindowInfoData, error) {
	return query[*protocol.WindowInfoData](ctx, c, &protocol.QueryWindowInfo{WindowID: id})
}

func (c *Client) QueryScreenDimensions(ctx context.Context) (*protocol.ScreenDimensionsData, error) {
	return query[*protocol.ScreenDimensionsData](ctx, c, &protocol.QueryScreenDimensions{})
}

func (c *Client) QueryMonitors(ctx context.Context) ([]protocol.MonitorInfo, error) {
	resp, err := query[*protocol.MonitorsData](ctx, c, &protocol.QueryMonitors{})
	if err != nil {
		return nil, err
	}
	return resp.Monitors, nil
}

func (c *Client) QueryToplevelWindows(ctx context.Context, flags uint32) ([]protocol.ToplevelWindow, error) {
	resp, err := query[*protocol.ToplevelWindowsData](ctx, c, &protocol.QueryToplevelWindows{Flags: flags})
	if err != nil {
		return nil, err
	}
	return resp.Windows, nil
}

func (c *Client) RequestScreenCopy(ctx context.Context, req *protocol.RequestScreenCopy) (*protocol.ScreenCopyData, error) {
	return query[*protocol.ScreenCopyData](ctx, c, req)
}
