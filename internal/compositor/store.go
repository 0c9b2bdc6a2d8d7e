package compositor

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/5hells/icm/internal/protocol"
	"github.com/5hells/icm/internal/protocol/session"
)

var (
	ErrUnknownWindow = errors.New("compositor: unknown window")
	ErrWindowExists  = errors.New("compositor: window id already in use")
	ErrMeshRange     = errors.New("compositor: mesh vertex range out of bounds")
)

// maxScreenCopyBytes caps the pixel data of one ScreenCopyData reply.
const maxScreenCopyBytes = 16 << 20

type window struct {
	id       uint32
	owner    uint64
	x, y     int32
	width    uint32
	height   uint32
	layer    int32
	parent   uint32
	visible  bool
	opacity  float32
	scaleX   float32
	scaleY   float32
	rotation float32
	state    uint32
	color    uint32
	title    string
	appID    string
	pid      uint32
	process  string
	meshLen  int
}

type clientState struct {
	conn            *Conn
	eventMask       uint32
	globalPointer   bool
	globalKeyboard  bool
	captureMouse    bool
	captureKeyboard bool
	pointerWindow   uint32
	keyboardWindow  uint32
}

type keybind struct {
	id        uint32
	modifiers uint32
	keycode   uint32
	conn      *Conn
}

type clickRegion struct {
	id     uint32
	window uint32
	x, y   int32
	width  uint32
	height uint32
	conn   *Conn
}

func (r clickRegion) contains(x, y int32) bool {
	px, py := int64(x), int64(y)
	return px >= int64(r.x) && px < int64(r.x)+int64(r.width) &&
		py >= int64(r.y) && py < int64(r.y)+int64(r.height)
}

type outbound struct {
	conn *Conn
	msg  protocol.Message
}

// Store is a Handler that keeps the window and monitor table in memory.
type Store struct {
	mu       sync.Mutex
	monitors []protocol.MonitorInfo
	windows  map[uint32]*window
	stack    []uint32
	focused  uint32
	clients  map[uint64]*clientState
	keybinds []keybind
	regions  []clickRegion
	images   map[uint32]struct{}
	buffers  map[uint32]struct{}
	launcher Launcher
	started  time.Time
	log      zerolog.Logger
}

// NewStore builds a store for the given outputs. When no output is marked
// primary the first enabled one becomes primary.
func NewStore(monitors []protocol.MonitorInfo, launcher Launcher) *Store {
	mons := slices.Clone(monitors)
	if !slices.ContainsFunc(mons, func(m protocol.MonitorInfo) bool { return m.Primary }) {
		for i := range mons {
			if mons[i].Enabled {
				mons[i].Primary = true
				break
			}
		}
	}
	if launcher == nil {
		launcher = LogLauncher{}
	}
	return &Store{
		monitors: mons,
		windows:  make(map[uint32]*window),
		clients:  make(map[uint64]*clientState),
		images:   make(map[uint32]struct{}),
		buffers:  make(map[uint32]struct{}),
		launcher: launcher,
		started:  time.Now(),
		log:      log.With().Str("component", "store").Logger(),
	}
}

func (s *Store) Connected(c *Conn) {
	s.mu.Lock()
	s.clients[c.ID()] = &clientState{conn: c}
	s.mu.Unlock()
}

// Disconnected drops the client's registrations and destroys the windows
// it created.
func (s *Store) Disconnected(c *Conn) {
	s.mu.Lock()
	delete(s.clients, c.ID())
	s.keybinds = slices.DeleteFunc(s.keybinds, func(k keybind) bool { return k.conn == c })
	s.regions = slices.DeleteFunc(s.regions, func(r clickRegion) bool { return r.conn == c })
	var out []outbound
	for _, id := range slices.Clone(s.stack) {
		if w := s.windows[id]; w != nil && w.owner == c.ID() {
			out = append(out, s.destroyLocked(id)...)
		}
	}
	s.mu.Unlock()
	s.deliver(out)
}

func (s *Store) Handle(ctx context.Context, c *Conn, msg protocol.Message, fds []int) error {
	// Nothing here imports GPU buffers, so received handles are released.
	session.CloseFDs(fds)
	if m, ok := msg.(*protocol.LaunchApp); ok {
		return s.launcher.Launch(ctx, m.Command)
	}
	s.mu.Lock()
	out, err := s.apply(c, msg)
	s.mu.Unlock()
	s.deliver(out)
	return err
}

func (s *Store) deliver(out []outbound) {
	for _, o := range out {
		if err := o.conn.Send(o.msg); err != nil {
			s.log.Debug().Err(err).Uint64("conn", o.conn.ID()).Str("msg_type", o.msg.Type().String()).Msg("event not delivered")
		}
	}
}

func (s *Store) apply(c *Conn, msg protocol.Message) ([]outbound, error) {
	reply := func(m protocol.Message) []outbound { return []outbound{{c, m}} }

	switch m := msg.(type) {
	case *protocol.CreateWindow:
		return s.createLocked(c, m)
	case *protocol.DestroyWindow:
		if _, err := s.lookup(m.WindowID); err != nil {
			return nil, err
		}
		return s.destroyLocked(m.WindowID), nil

	case *protocol.SetWindow:
		return s.update(m.WindowID, func(w *window) { w.x, w.y, w.width, w.height = m.X, m.Y, m.Width, m.Height })
	case *protocol.SetWindowPosition:
		return s.update(m.WindowID, func(w *window) { w.x, w.y = m.X, m.Y })
	case *protocol.SetWindowSize:
		return s.update(m.WindowID, func(w *window) { w.width, w.height = m.Width, m.Height })
	case *protocol.SetWindowOpacity:
		return s.update(m.WindowID, func(w *window) { w.opacity = clamp01(m.Opacity) })
	case *protocol.SetWindowTransform:
		return s.update(m.WindowID, func(w *window) { w.scaleX, w.scaleY, w.rotation = m.ScaleX, m.ScaleY, m.Rotation })
	case *protocol.SetWindowTransform3D:
		return s.update(m.WindowID, func(w *window) { w.scaleX, w.scaleY, w.rotation = m.ScaleX, m.ScaleY, m.RotateZ })
	case *protocol.SetWindowLayer:
		return s.update(m.WindowID, func(w *window) { w.layer = m.Layer })
	case *protocol.SetLayer:
		return s.update(m.WindowID, func(w *window) { w.layer = int32(m.Layer) })
	case *protocol.SetWindowParent:
		if m.ParentID != 0 {
			if _, err := s.lookup(m.ParentID); err != nil {
				return nil, err
			}
		}
		return s.update(m.WindowID, func(w *window) { w.parent = m.ParentID })
	case *protocol.RaiseWindow:
		return s.restack(m.WindowID, true)
	case *protocol.LowerWindow:
		return s.restack(m.WindowID, false)
	case *protocol.AnimateWindow:
		// No clock drives animations; the target state applies at once.
		return s.update(m.WindowID, func(w *window) {
			w.x, w.y = int32(m.TargetX), int32(m.TargetY)
			w.scaleX, w.scaleY = m.TargetScaleX, m.TargetScaleY
			w.opacity = clamp01(m.TargetOpacity)
			w.rotation = m.TargetRotateZ
		})

	case *protocol.SetWindowVisible:
		w, err := s.lookup(m.WindowID)
		if err != nil {
			return nil, err
		}
		w.visible = m.Visible
		return s.notify(protocol.EventState, s.stateChanged(w)), nil
	case *protocol.SetWindowState:
		w, err := s.lookup(m.WindowID)
		if err != nil {
			return nil, err
		}
		w.state = m.State
		return s.notify(protocol.EventState, s.stateChanged(w)), nil
	case *protocol.FocusWindow:
		return s.focusLocked(m.WindowID)

	case *protocol.SetWindowMeshTransform:
		return s.update(m.WindowID, func(w *window) { w.meshLen = len(m.Vertices) })
	case *protocol.ClearWindowMeshTransform:
		return s.update(m.WindowID, func(w *window) { w.meshLen = 0 })
	case *protocol.UpdateWindowMeshVertices:
		w, err := s.lookup(m.WindowID)
		if err != nil {
			return nil, err
		}
		if int(m.StartIndex)+len(m.Vertices) > w.meshLen {
			return nil, fmt.Errorf("%w: window %d start %d count %d mesh %d", ErrMeshRange, m.WindowID, m.StartIndex, len(m.Vertices), w.meshLen)
		}
		return nil, nil

	case *protocol.QueryWindowPosition:
		w, err := s.lookup(m.WindowID)
		if err != nil {
			return nil, err
		}
		return reply(&protocol.WindowPositionData{WindowID: w.id, X: w.x, Y: w.y}), nil
	case *protocol.QueryWindowSize:
		w, err := s.lookup(m.WindowID)
		if err != nil {
			return nil, err
		}
		return reply(&protocol.WindowSizeData{WindowID: w.id, Width: w.width, Height: w.height}), nil
	case *protocol.QueryWindowAttributes:
		w, err := s.lookup(m.WindowID)
		if err != nil {
			return nil, err
		}
		return reply(&protocol.WindowAttributesData{
			WindowID: w.id,
			Visible:  w.visible,
			Opacity:  w.opacity,
			ScaleX:   w.scaleX,
			ScaleY:   w.scaleY,
			Rotation: w.rotation,
		}), nil
	case *protocol.QueryWindowLayer:
		w, err := s.lookup(m.WindowID)
		if err != nil {
			return nil, err
		}
		return reply(&protocol.WindowLayerData{WindowID: w.id, Layer: w.layer, ParentID: w.parent}), nil
	case *protocol.QueryWindowState:
		w, err := s.lookup(m.WindowID)
		if err != nil {
			return nil, err
		}
		return reply(&protocol.WindowStateData{WindowID: w.id, State: w.state, Focused: s.focused == w.id}), nil
	case *protocol.QueryWindowInfo:
		w, err := s.lookup(m.WindowID)
		if err != nil {
			return nil, err
		}
		return reply(s.info(w)), nil
	case *protocol.QueryScreenDimensions:
		return reply(s.screenDimensions()), nil
	case *protocol.QueryMonitors:
		return reply(&protocol.MonitorsData{Monitors: slices.Clone(s.monitors)}), nil
	case *protocol.QueryToplevelWindows:
		return reply(&protocol.ToplevelWindowsData{Windows: s.toplevels(m.Flags)}), nil
	case *protocol.RequestScreenCopy:
		return reply(s.screenCopy(m)), nil

	case *protocol.SubscribeWindowEvents:
		s.client(c).eventMask |= m.EventMask
		return nil, nil
	case *protocol.UnsubscribeWindowEvents:
		s.client(c).eventMask &^= m.EventMask
		return nil, nil

	case *protocol.RegisterKeybind:
		s.keybinds = append(s.keybinds, keybind{id: m.KeybindID, modifiers: m.Modifiers, keycode: m.Keycode, conn: c})
		return nil, nil
	case *protocol.UnregisterKeybind:
		s.keybinds = slices.DeleteFunc(s.keybinds, func(k keybind) bool { return k.id == m.KeybindID && k.conn == c })
		return nil, nil
	case *protocol.RegisterClickRegion:
		if _, err := s.lookup(m.WindowID); err != nil {
			return nil, err
		}
		s.regions = append(s.regions, clickRegion{
			id:     m.RegionID,
			window: m.WindowID,
			x:      m.X,
			y:      m.Y,
			width:  m.Width,
			height: m.Height,
			conn:   c,
		})
		return nil, nil
	case *protocol.UnregisterClickRegion:
		s.regions = slices.DeleteFunc(s.regions, func(r clickRegion) bool { return r.id == m.RegionID && r.conn == c })
		return nil, nil

	case *protocol.RegisterPointerEvent:
		s.client(c).pointerWindow = m.WindowID
		return nil, nil
	case *protocol.RegisterKeyboardEvent:
		s.client(c).keyboardWindow = m.WindowID
		return nil, nil
	case *protocol.QueryCaptureMouse:
		s.client(c).pointerWindow = m.WindowID
		return nil, nil
	case *protocol.QueryCaptureKeyboard:
		s.client(c).keyboardWindow = m.WindowID
		return nil, nil
	case *protocol.RegisterGlobalPointerEvent:
		s.client(c).globalPointer = true
		return nil, nil
	case *protocol.RegisterGlobalKeyboardEvent:
		s.client(c).globalKeyboard = true
		return nil, nil
	case *protocol.RegisterGlobalCaptureMouse:
		s.client(c).captureMouse = true
		return nil, nil
	case *protocol.RegisterGlobalCaptureKeyboard:
		s.client(c).captureKeyboard = true
		return nil, nil
	case *protocol.UnregisterGlobalCaptureMouse:
		s.client(c).captureMouse = false
		return nil, nil
	case *protocol.UnregisterGlobalCaptureKeyboard:
		s.client(c).captureKeyboard = false
		return nil, nil

	case *protocol.UploadImage:
		s.images[m.ImageID] = struct{}{}
		return nil, nil
	case *protocol.DestroyImage:
		delete(s.images, m.ImageID)
		return nil, nil
	case *protocol.CreateBuffer:
		s.buffers[m.BufferID] = struct{}{}
		return nil, nil
	case *protocol.ImportDmabuf:
		s.buffers[m.BufferID] = struct{}{}
		return nil, nil
	case *protocol.DestroyBuffer:
		delete(s.buffers, m.BufferID)
		return nil, nil

	case *protocol.DrawRect:
		return s.touch(m.WindowID)
	case *protocol.DrawLine:
		return s.touch(m.WindowID)
	case *protocol.DrawCircle:
		return s.touch(m.WindowID)
	case *protocol.DrawPolygon:
		return s.touch(m.WindowID)
	case *protocol.DrawText:
		return s.touch(m.WindowID)
	case *protocol.DrawImage:
		return s.touch(m.WindowID)
	case *protocol.DrawUploadedImage:
		if _, ok := s.images[m.ImageID]; !ok {
			return nil, fmt.Errorf("compositor: unknown image %d", m.ImageID)
		}
		return s.touch(m.WindowID)
	case *protocol.BlitBuffer:
		return s.touch(m.WindowID)
	case *protocol.ClearRects:
		return s.touch(m.WindowID)
	case *protocol.SetWindowBlur:
		return s.touch(m.WindowID)
	case *protocol.BlurWindow:
		return s.touch(m.WindowID)
	case *protocol.SetWindowEffect:
		return s.touch(m.WindowID)
	case *protocol.StopAnimation:
		return s.touch(m.WindowID)
	case *protocol.SetWindowMatrix:
		return s.touch(m.WindowID)
	case *protocol.SetAttachments:
		return s.touch(m.WindowID)
	case *protocol.ExportSurface:
		return s.touch(m.WindowID)
	case *protocol.ImportSurface:
		return s.touch(m.WindowID)
	}

	s.log.Debug().Str("msg_type", msg.Type().String()).Msg("accepted without state change")
	return nil, nil
}

func (s *Store) client(c *Conn) *clientState {
	st, ok := s.clients[c.ID()]
	if !ok {
		st = &clientState{conn: c}
		s.clients[c.ID()] = st
	}
	return st
}

func (s *Store) lookup(id uint32) (*window, error) {
	w, ok := s.windows[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownWindow, id)
	}
	return w, nil
}

func (s *Store) touch(id uint32) ([]outbound, error) {
	_, err := s.lookup(id)
	return nil, err
}

func (s *Store) update(id uint32, fn func(*window)) ([]outbound, error) {
	w, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	fn(w)
	return nil, nil
}

func (s *Store) createLocked(c *Conn, m *protocol.CreateWindow) ([]outbound, error) {
	if _, ok := s.windows[m.WindowID]; ok {
		return nil, fmt.Errorf("%w: %d", ErrWindowExists, m.WindowID)
	}
	w := &window{
		id:      m.WindowID,
		owner:   c.ID(),
		x:       m.X,
		y:       m.Y,
		width:   m.Width,
		height:  m.Height,
		layer:   int32(m.Layer),
		visible: true,
		opacity: 1,
		scaleX:  1,
		scaleY:  1,
		color:   m.ColorRGBA,
	}
	if peer, ok := c.Peer(); ok {
		w.pid = uint32(peer.PID)
		w.process = processName(peer.PID)
	}
	return s.insertLocked(w), nil
}

func (s *Store) insertLocked(w *window) []outbound {
	s.windows[w.id] = w
	s.stack = append(s.stack, w.id)
	s.log.Debug().Uint32("window", w.id).Uint32("width", w.width).Uint32("height", w.height).Msg("window created")
	return s.notify(protocol.EventCreated, &protocol.WindowCreated{
		WindowID:  w.id,
		Width:     w.width,
		Height:    w.height,
		Decorated: w.state&protocol.StateDecorated != 0,
		Focused:   s.focused == w.id,
	})
}

func (s *Store) destroyLocked(id uint32) []outbound {
	delete(s.windows, id)
	s.stack = slices.DeleteFunc(s.stack, func(v uint32) bool { return v == id })
	s.regions = slices.DeleteFunc(s.regions, func(r clickRegion) bool { return r.window == id })
	for _, st := range s.clients {
		if st.pointerWindow == id {
			st.pointerWindow = 0
		}
		if st.keyboardWindow == id {
			st.keyboardWindow = 0
		}
	}
	if s.focused == id {
		s.focused = 0
	}
	for _, w := range s.windows {
		if w.parent == id {
			w.parent = 0
		}
	}
	s.log.Debug().Uint32("window", id).Msg("window destroyed")
	return s.notify(protocol.EventDestroyed, &protocol.WindowDestroyed{WindowID: id})
}

func (s *Store) restack(id uint32, top bool) ([]outbound, error) {
	if _, err := s.lookup(id); err != nil {
		return nil, err
	}
	s.stack = slices.DeleteFunc(s.stack, func(v uint32) bool { return v == id })
	if top {
		s.stack = append(s.stack, id)
	} else {
		s.stack = slices.Insert(s.stack, 0, id)
	}
	return nil, nil
}

func (s *Store) focusLocked(id uint32) ([]outbound, error) {
	w, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	prev := s.focused
	if prev == id {
		return nil, nil
	}
	s.focused = id
	out, _ := s.restack(id, true)
	if old, ok := s.windows[prev]; ok {
		out = append(out, s.notify(protocol.EventFocus, s.stateChanged(old))...)
	}
	return append(out, s.notify(protocol.EventFocus, s.stateChanged(w))...), nil
}

func (s *Store) stateChanged(w *window) *protocol.WindowStateChanged {
	return &protocol.WindowStateChanged{
		WindowID: w.id,
		State:    w.state,
		Visible:  w.visible,
		Focused:  s.focused == w.id,
	}
}

// notify addresses msg to every client subscribed to any bit of mask.
func (s *Store) notify(mask uint32, msg protocol.Message) []outbound {
	var out []outbound
	for _, st := range s.clients {
		if st.eventMask&mask != 0 {
			out = append(out, outbound{st.conn, msg})
		}
	}
	return out
}

func (s *Store) info(w *window) *protocol.WindowInfoData {
	return &protocol.WindowInfoData{
		WindowID:    w.id,
		X:           w.x,
		Y:           w.y,
		Width:       w.width,
		Height:      w.height,
		Visible:     w.visible,
		Opacity:     w.opacity,
		ScaleX:      w.scaleX,
		ScaleY:      w.scaleY,
		Rotation:    w.rotation,
		Layer:       w.layer,
		ParentID:    w.parent,
		State:       w.state,
		Focused:     s.focused == w.id,
		PID:         w.pid,
		ProcessName: w.process,
	}
}

func (s *Store) toplevels(flags uint32) []protocol.ToplevelWindow {
	out := make([]protocol.ToplevelWindow, 0, len(s.stack))
	for _, id := range s.stack {
		w := s.windows[id]
		if w.parent != 0 {
			continue
		}
		if flags&protocol.ToplevelVisibleOnly != 0 && !w.visible {
			continue
		}
		out = append(out, protocol.ToplevelWindow{
			WindowID: w.id,
			X:        w.x,
			Y:        w.y,
			Width:    w.width,
			Height:   w.height,
			Visible:  w.visible,
			Focused:  s.focused == w.id,
			State:    w.state,
			Title:    w.title,
			AppID:    w.appID,
		})
	}
	return out
}

// screenDimensions is the bounding box of the enabled outputs and the
// largest output scale, falling back to 1920x1080.
func (s *Store) screenDimensions() *protocol.ScreenDimensionsData {
	var (
		seen                   bool
		minX, minY, maxX, maxY int64
		scale                  float32 = 1
	)
	for _, m := range s.monitors {
		if !m.Enabled {
			continue
		}
		if m.Scale > scale {
			scale = m.Scale
		}
		l, t := int64(m.X), int64(m.Y)
		r, b := l+int64(m.Width), t+int64(m.Height)
		if !seen {
			minX, minY, maxX, maxY, seen = l, t, r, b, true
			continue
		}
		minX, minY = min(minX, l), min(minY, t)
		maxX, maxY = max(maxX, r), max(maxY, b)
	}
	out := &protocol.ScreenDimensionsData{TotalWidth: 1920, TotalHeight: 1080, Scale: scale}
	if seen && maxX > minX && maxY > minY {
		out.TotalWidth, out.TotalHeight = uint32(maxX-minX), uint32(maxY-minY)
	}
	return out
}

// screenCopy answers with transparent RGBA pixels, or an empty image when
// the region exceeds maxScreenCopyBytes.
func (s *Store) screenCopy(m *protocol.RequestScreenCopy) *protocol.ScreenCopyData {
	out := &protocol.ScreenCopyData{RequestID: m.RequestID}
	size := uint64(m.Width) * uint64(m.Height) * 4
	if size == 0 || size > maxScreenCopyBytes {
		return out
	}
	out.Width, out.Height = m.Width, m.Height
	out.Data = make([]byte, size)
	return out
}

// AddToplevel registers a window not created over IPC, such as a native
// shell surface, and announces it to subscribers.
func (s *Store) AddToplevel(t protocol.ToplevelWindow) error {
	s.mu.Lock()
	if _, ok := s.windows[t.WindowID]; ok {
		s.mu.Unlock()
		return fmt.Errorf("%w: %d", ErrWindowExists, t.WindowID)
	}
	w := &window{
		id:      t.WindowID,
		x:       t.X,
		y:       t.Y,
		width:   t.Width,
		height:  t.Height,
		visible: t.Visible,
		opacity: 1,
		scaleX:  1,
		scaleY:  1,
		state:   t.State,
		title:   t.Title,
		appID:   t.AppID,
		process: t.AppID,
	}
	out := s.insertLocked(w)
	if t.Title != "" {
		out = append(out, s.notify(protocol.EventTitle, &protocol.WindowTitleChanged{WindowID: w.id, Title: w.title})...)
	}
	s.mu.Unlock()
	s.deliver(out)
	return nil
}

func (s *Store) SetTitle(id uint32, title string) error {
	s.mu.Lock()
	w, err := s.lookup(id)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	w.title = title
	out := s.notify(protocol.EventTitle, &protocol.WindowTitleChanged{WindowID: id, Title: title})
	s.mu.Unlock()
	s.deliver(out)
	return nil
}

// InjectKey delivers a key event from the input backend: matching
// keybinds fire and keyboard listeners receive the raw event.
func (s *Store) InjectKey(modifiers, keycode, state uint32) {
	s.mu.Lock()
	var out []outbound
	for _, k := range s.keybinds {
		if k.modifiers == modifiers && k.keycode == keycode {
			out = append(out, outbound{k.conn, &protocol.KeybindEvent{KeybindID: k.id}})
		}
	}
	ev := &protocol.KeyboardEvent{
		WindowID:  s.focused,
		Time:      s.now(),
		Keycode:   keycode,
		State:     state,
		Modifiers: modifiers,
	}
	for _, st := range s.clients {
		if st.globalKeyboard || st.captureKeyboard || (st.keyboardWindow != 0 && st.keyboardWindow == s.focused) {
			out = append(out, outbound{st.conn, ev})
		}
	}
	s.mu.Unlock()
	s.deliver(out)
}

// InjectPointer delivers a button event at window-local x, y: click
// regions containing the point fire and pointer listeners receive the raw
// event.
func (s *Store) InjectPointer(windowID uint32, x, y int32, button, state uint32) {
	s.mu.Lock()
	var out []outbound
	for _, r := range s.regions {
		if r.window == windowID && r.contains(x, y) {
			out = append(out, outbound{r.conn, &protocol.ClickRegionEvent{RegionID: r.id, Button: button, State: state}})
		}
	}
	ev := &protocol.PointerEvent{
		WindowID: windowID,
		Time:     s.now(),
		Button:   button,
		State:    state,
		X:        x,
		Y:        y,
	}
	for _, st := range s.clients {
		if st.globalPointer || st.captureMouse || (st.pointerWindow != 0 && st.pointerWindow == windowID) {
			out = append(out, outbound{st.conn, ev})
		}
	}
	s.mu.Unlock()
	s.deliver(out)
}

func (s *Store) now() uint32 {
	return uint32(time.Since(s.started).Milliseconds())
}

func clamp01(v float32) float32 {
	return min(max(v, 0), 1)
}
