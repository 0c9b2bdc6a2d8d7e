package protocol

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/5hells/icm/internal/protocol/frame"
	"github.com/5hells/icm/internal/protocol/schema"
	"github.com/5hells/icm/internal/protocol/wire"
	"github.com/5hells/icm/internal/testutil/testlog"
)

// fill sets every exported field of v to a deterministic non-zero value.
func fill(v reflect.Value, seed *int) {
	*seed++
	n := *seed
	switch v.Kind() {
	case reflect.Uint8, reflect.Uint32, reflect.Uint64:
		v.SetUint(uint64(n))
	case reflect.Int32:
		v.SetInt(int64(-n))
	case reflect.Float32:
		v.SetFloat(float64(n) + 0.5)
	case reflect.Bool:
		v.SetBool(n%2 == 1)
	case reflect.String:
		v.SetString(fmt.Sprintf("s%d-ü", n))
	case reflect.Slice:
		s := reflect.MakeSlice(v.Type(), 2, 2)
		for i := 0; i < s.Len(); i++ {
			fill(s.Index(i), seed)
		}
		v.Set(s)
	case reflect.Array:
		for i := 0; i < v.Len(); i++ {
			fill(v.Index(i), seed)
		}
	case reflect.Struct:
		for i := 0; i < v.NumField(); i++ {
			if v.Type().Field(i).IsExported() {
				fill(v.Field(i), seed)
			}
		}
	}
}

func sample(t *testing.T, mt schema.MessageType) Message {
	t.Helper()
	msg, err := New(mt)
	if err != nil {
		t.Fatalf("new %s: %v", mt, err)
	}
	seed := int(mt) * 100
	fill(reflect.ValueOf(msg).Elem(), &seed)
	if m, ok := msg.(*SetWindowMeshTransform); ok {
		m.MeshWidth, m.MeshHeight = 2, 1
	}
	return msg
}

func TestRoundTripEveryType(t *testing.T) {
	testlog.Start(t)
	for _, e := range schema.All() {
		in := sample(t, e.Type)
		if in.Type() != e.Type {
			t.Fatalf("%s: Type() = %d", e.Name, in.Type())
		}
		payload, err := Encode(in)
		if err != nil {
			t.Fatalf("%s: encode: %v", e.Name, err)
		}
		out, err := Decode(uint16(e.Type), payload)
		if err != nil {
			t.Fatalf("%s: decode: %v", e.Name, err)
		}
		if !reflect.DeepEqual(in, out) {
			t.Fatalf("%s: round trip mismatch:\n in=%+v\nout=%+v", e.Name, in, out)
		}
	}
}

func TestZeroValuesRoundTrip(t *testing.T) {
	testlog.Start(t)
	for _, e := range schema.All() {
		in, _ := New(e.Type)
		payload, err := Encode(in)
		if err != nil {
			t.Fatalf("%s: encode: %v", e.Name, err)
		}
		size, fixed := ExpectedSize(e.Type)
		if fixed && len(payload) != size {
			t.Fatalf("%s: fixed payload is %d bytes, registry says %d", e.Name, len(payload), size)
		}
		if !fixed && len(payload) != size {
			t.Fatalf("%s: minimal payload is %d bytes, registry says %d", e.Name, len(payload), size)
		}
		if _, err := Decode(uint16(e.Type), payload); err != nil {
			t.Fatalf("%s: decode zero: %v", e.Name, err)
		}
	}
}

func TestPatternsAgreeWithRegistry(t *testing.T) {
	testlog.Start(t)
	for _, e := range schema.All() {
		size, fixed := ExpectedSize(e.Type)
		switch e.Pattern {
		case schema.PatternEmpty:
			if !fixed || size != 0 {
				t.Fatalf("%s: empty type has size=%d fixed=%v", e.Name, size, fixed)
			}
		case schema.PatternFixed, schema.PatternPadded:
			if !fixed || size == 0 {
				t.Fatalf("%s: expected fixed non-empty layout, size=%d fixed=%v", e.Name, size, fixed)
			}
		default:
			if fixed {
				t.Fatalf("%s: %s type reported fixed", e.Name, e.Pattern)
			}
		}
	}
}

func TestKnownFixedSizes(t *testing.T) {
	cases := map[schema.MessageType]int{
		schema.CreateWindow:         28,
		schema.ImportDmabuf:         24 + 4*20,
		schema.DrawImage:            41,
		schema.SetWindowVisible:     5,
		schema.SetWindowMatrix:      68,
		schema.AnimateWindow:        60,
		schema.SetScreenEffect:      257,
		schema.SetWindowEffect:      261,
		schema.WindowTitleChanged:   260,
		schema.WindowStateChanged:   10,
		schema.WindowAttributesData: 21,
		schema.ScreenDimensionsData: 12,
	}
	for mt, want := range cases {
		size, fixed := ExpectedSize(mt)
		if !fixed || size != want {
			t.Fatalf("%s: size=%d fixed=%v want %d", mt, size, fixed, want)
		}
	}
	if got := wire.RecordSize(monitorFields); got != 66 {
		t.Fatalf("monitor record is %d bytes, want 66", got)
	}
	if got := wire.RecordSize(toplevelFields); got != 410 {
		t.Fatalf("toplevel record is %d bytes, want 410", got)
	}
	if size, fixed := ExpectedSize(schema.WindowInfoData); fixed || size != 55 {
		t.Fatalf("window_info_data minimum: size=%d fixed=%v", size, fixed)
	}
}

func TestScenarioCreateWindowBytes(t *testing.T) {
	testlog.Start(t)
	msg := &CreateWindow{WindowID: 1, X: 10, Y: 20, Width: 640, Height: 480, Layer: 0, ColorRGBA: 0xFF0000FF}
	f, err := EncodeFrame(msg)
	if err != nil {
		t.Fatalf("encode frame: %v", err)
	}
	b, err := frame.Marshal(f, frame.DefaultLimits())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	h, _ := frame.DecodeHeader(b)
	// Seven 4-byte fields: 16 + 28.
	if h.Length != 44 || h.Type != 1 {
		t.Fatalf("unexpected header: %+v", h)
	}
	want := make([]byte, 0, 28)
	for _, v := range []uint32{1, 10, 20, 640, 480, 0, 0xFF0000FF} {
		want = binary.LittleEndian.AppendUint32(want, v)
	}
	if !bytes.Equal(b[frame.HeaderLen:], want) {
		t.Fatalf("payload mismatch:\n got=%v\nwant=%v", b[frame.HeaderLen:], want)
	}
}

func TestScenarioScreenEffectTruncation(t *testing.T) {
	testlog.Start(t)
	long := strings.Repeat("a", 300)
	payload, err := Encode(&SetScreenEffect{Equation: long, Enabled: true})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if len(payload) != 257 {
		t.Fatalf("expected 257 bytes, got %d", len(payload))
	}
	if string(payload[:256]) != long[:256] || payload[256] != 0x01 {
		t.Fatalf("unexpected truncated payload")
	}
	out, err := Decode(uint16(schema.SetScreenEffect), payload)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got := out.(*SetScreenEffect).Equation; got != long[:256] {
		t.Fatalf("decoded equation has %d bytes", len(got))
	}
}

func TestPaddedDecodeStripsAllTrailingNULs(t *testing.T) {
	payload, _ := Encode(&WindowTitleChanged{WindowID: 3, Title: "term\x00\x00"})
	out, err := Decode(uint16(schema.WindowTitleChanged), payload)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got := out.(*WindowTitleChanged).Title; got != "term" {
		t.Fatalf("expected trailing NULs stripped, got %q", got)
	}
}

func TestScenarioUploadImageBlob(t *testing.T) {
	testlog.Start(t)
	in := &UploadImage{ImageID: 5, Width: 2, Height: 2, Format: 0, Data: make([]byte, 16)}
	payload, err := Encode(in)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	out, err := Decode(uint16(schema.UploadImage), payload)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	img := out.(*UploadImage)
	if len(img.Data) != 16 || !bytes.Equal(img.Data, make([]byte, 16)) {
		t.Fatalf("unexpected data: %v", img.Data)
	}
}

func TestEmptyBoundaries(t *testing.T) {
	payload, _ := Encode(&MonitorsData{})
	if !bytes.Equal(payload, []byte{0, 0, 0, 0}) {
		t.Fatalf("empty monitor list: %v", payload)
	}
	payload, _ = Encode(&DrawText{})
	if len(payload) != 21 || payload[20] != 0 {
		t.Fatalf("empty text should end in a single NUL: %v", payload)
	}
	payload, _ = Encode(&QueryMonitors{})
	if len(payload) != 0 {
		t.Fatalf("empty payload type wrote %d bytes", len(payload))
	}
}

func TestMonitorsDataLayout(t *testing.T) {
	in := &MonitorsData{Monitors: []MonitorInfo{{
		Width: 1920, Height: 1080, RefreshRate: 60, Scale: 1, Enabled: true, Primary: true, Name: "eDP-1",
	}}}
	payload, err := Encode(in)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if len(payload) != 4+66 {
		t.Fatalf("unexpected length %d", len(payload))
	}
	if binary.LittleEndian.Uint32(payload) != 1 {
		t.Fatalf("count prefix missing")
	}
	name := payload[4+34 : 4+66]
	if !bytes.HasPrefix(name, []byte("eDP-1")) || !bytes.Equal(name[5:], make([]byte, 27)) {
		t.Fatalf("unexpected name field: %v", name)
	}
}

func TestDecodeSizeChecks(t *testing.T) {
	_, err := Decode(uint16(schema.CreateWindow), make([]byte, 27))
	var se *SizeError
	if !errors.As(err, &se) || !se.Exact || se.Want != 28 {
		t.Fatalf("expected exact SizeError, got %v", err)
	}
	if !errors.Is(err, ErrSizeMismatch) {
		t.Fatalf("SizeError must wrap ErrSizeMismatch")
	}
	_, err = Decode(uint16(schema.CreateWindow), make([]byte, 29))
	if !errors.Is(err, ErrSizeMismatch) {
		t.Fatalf("oversized fixed payload accepted: %v", err)
	}
	_, err = Decode(uint16(schema.UploadImage), make([]byte, 19))
	if !errors.As(err, &se) || se.Exact || se.Want != 20 {
		t.Fatalf("expected minimum SizeError, got %v", err)
	}
}

func TestDecodeUnknownType(t *testing.T) {
	for _, id := range []uint16{0, 94, 95, 0xffff} {
		if _, err := Decode(id, nil); !errors.Is(err, ErrUnknownMessageType) {
			t.Fatalf("id %d: expected ErrUnknownMessageType, got %v", id, err)
		}
	}
	if _, err := New(200); !errors.Is(err, ErrUnknownMessageType) {
		t.Fatalf("New(200): %v", err)
	}
}

func TestDecodePayloadViolations(t *testing.T) {
	// draw_text with a non-UTF-8 body.
	payload, _ := Encode(&DrawText{WindowID: 1, Text: "ok"})
	payload[20] = 0xff
	if _, err := Decode(uint16(schema.DrawText), payload); !errors.Is(err, wire.ErrInvalidUTF8) {
		t.Fatalf("expected ErrInvalidUTF8, got %v", err)
	}

	// draw_polygon declaring more points than were sent.
	payload, _ = Encode(&DrawPolygon{WindowID: 1, Points: []Point{{1, 1}}})
	binary.LittleEndian.PutUint32(payload[4:8], 5)
	if _, err := Decode(uint16(schema.DrawPolygon), payload); !errors.Is(err, wire.ErrTruncated) {
		t.Fatalf("expected ErrTruncated, got %v", err)
	}

	// monitors_data with a stray byte after the last record.
	payload, _ = Encode(&MonitorsData{Monitors: []MonitorInfo{{Name: "x"}}})
	payload = append(payload, 0)
	if _, err := Decode(uint16(schema.MonitorsData), payload); !errors.Is(err, wire.ErrTrailingBytes) {
		t.Fatalf("expected ErrTrailingBytes, got %v", err)
	}
}

func TestMeshCountMismatchOnEncode(t *testing.T) {
	msg := &SetWindowMeshTransform{WindowID: 1, MeshWidth: 3, MeshHeight: 3, Vertices: make([]MeshVertex, 4)}
	if _, err := Encode(msg); !errors.Is(err, wire.ErrCountMismatch) {
		t.Fatalf("expected ErrCountMismatch, got %v", err)
	}
}

func TestLaunchAppLayout(t *testing.T) {
	payload, err := Encode(&LaunchApp{Command: "foot"})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	want := []byte{5, 0, 0, 0, 'f', 'o', 'o', 't', 0}
	if !bytes.Equal(payload, want) {
		t.Fatalf("payload mismatch: %v", payload)
	}
}
