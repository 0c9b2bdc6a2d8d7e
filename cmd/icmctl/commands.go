package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/pflag"

	"github.com/5hells/icm/internal/capture"
	"github.com/5hells/icm/internal/client"
	"github.com/5hells/icm/internal/protocol"
)

const allWindowEvents = protocol.EventCreated | protocol.EventDestroyed |
	protocol.EventTitle | protocol.EventState | protocol.EventFocus

func subFlags(name string, out io.Writer) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(out)
	return fs
}

func parseWindowID(args []string) (uint32, error) {
	if len(args) != 1 {
		return 0, errors.New("exactly one window id required")
	}
	v, err := strconv.ParseUint(args[0], 0, 32)
	if err != nil {
		return 0, fmt.Errorf("window id %q: %w", args[0], err)
	}
	return uint32(v), nil
}

func cmdMonitors(ctx context.Context, a *app, args []string) error {
	if len(args) > 0 {
		return fmt.Errorf("monitors takes no arguments")
	}
	c, err := a.connect(ctx, nil)
	if err != nil {
		return err
	}
	defer c.Close()

	qctx, cancel := a.queryContext(ctx)
	defer cancel()
	monitors, err := c.QueryMonitors(qctx)
	if err != nil {
		return err
	}
	return a.emit(monitors, func(w io.Writer) {
		table(w, "NAME\tPOSITION\tSIZE\tREFRESH\tSCALE\tPRIMARY\tENABLED", func(tw *tabwriter.Writer) {
			for _, m := range monitors {
				fmt.Fprintf(tw, "%s\t%d,%d\t%dx%d\t%dHz\t%g\t%s\t%s\n",
					m.Name, m.X, m.Y, m.Width, m.Height, m.RefreshRate, m.Scale,
					yesNo(m.Primary), yesNo(m.Enabled))
			}
		})
	})
}

func cmdScreen(ctx context.Context, a *app, args []string) error {
	if len(args) > 0 {
		return fmt.Errorf("screen takes no arguments")
	}
	c, err := a.connect(ctx, nil)
	if err != nil {
		return err
	}
	defer c.Close()

	qctx, cancel := a.queryContext(ctx)
	defer cancel()
	dims, err := c.QueryScreenDimensions(qctx)
	if err != nil {
		return err
	}
	return a.emit(dims, func(w io.Writer) {
		fmt.Fprintf(w, "%dx%d scale %g\n", dims.TotalWidth, dims.TotalHeight, dims.Scale)
	})
}

func cmdWindows(ctx context.Context, a *app, args []string) error {
	fs := subFlags("windows", a.out)
	visible := fs.Bool("visible", false, "only list visible windows")
	if err := fs.Parse(args); err != nil {
		return err
	}
	var flags uint32
	if *visible {
		flags |= protocol.ToplevelVisibleOnly
	}

	c, err := a.connect(ctx, nil)
	if err != nil {
		return err
	}
	defer c.Close()

	qctx, cancel := a.queryContext(ctx)
	defer cancel()
	windows, err := c.QueryToplevelWindows(qctx, flags)
	if err != nil {
		return err
	}
	return a.emit(windows, func(w io.Writer) {
		table(w, "ID\tTITLE\tAPP\tPOSITION\tSIZE\tVISIBLE\tFOCUSED\tSTATE", func(tw *tabwriter.Writer) {
			for _, win := range windows {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%d,%d\t%dx%d\t%s\t%s\t%d\n",
					win.WindowID, win.Title, win.AppID, win.X, win.Y, win.Width, win.Height,
					yesNo(win.Visible), yesNo(win.Focused), win.State)
			}
		})
	})
}

func cmdInfo(ctx context.Context, a *app, args []string) error {
	id, err := parseWindowID(args)
	if err != nil {
		return err
	}
	c, err := a.connect(ctx, nil)
	if err != nil {
		return err
	}
	defer c.Close()
	return a.showInfo(ctx, c, id)
}

func (a *app) showInfo(ctx context.Context, c *client.Client, id uint32) error {
	qctx, cancel := a.queryContext(ctx)
	defer cancel()
	info, err := c.QueryWindowInfo(qctx, id)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("no answer for window %d (unknown window?)", id)
		}
		return err
	}
	return a.emit(info, func(w io.Writer) {
		table(w, "FIELD\tVALUE", func(tw *tabwriter.Writer) {
			fmt.Fprintf(tw, "window\t%d\n", info.WindowID)
			fmt.Fprintf(tw, "position\t%d,%d\n", info.X, info.Y)
			fmt.Fprintf(tw, "size\t%dx%d\n", info.Width, info.Height)
			fmt.Fprintf(tw, "visible\t%s\n", yesNo(info.Visible))
			fmt.Fprintf(tw, "opacity\t%g\n", info.Opacity)
			fmt.Fprintf(tw, "scale\t%g,%g\n", info.ScaleX, info.ScaleY)
			fmt.Fprintf(tw, "rotation\t%g\n", info.Rotation)
			fmt.Fprintf(tw, "layer\t%d\n", info.Layer)
			fmt.Fprintf(tw, "parent\t%d\n", info.ParentID)
			fmt.Fprintf(tw, "state\t%d\n", info.State)
			fmt.Fprintf(tw, "focused\t%s\n", yesNo(info.Focused))
			fmt.Fprintf(tw, "pid\t%d\n", info.PID)
			fmt.Fprintf(tw, "process\t%s\n", info.ProcessName)
		})
	})
}

func cmdCreateWindow(ctx context.Context, a *app, args []string) error {
	fs := subFlags("create-window", a.out)
	var (
		id, width, height, layer, color uint32
		x, y                            int32
	)
	fs.Uint32Var(&id, "id", 0, "window id (required)")
	fs.Int32Var(&x, "x", 0, "left edge")
	fs.Int32Var(&y, "y", 0, "top edge")
	fs.Uint32Var(&width, "width", 640, "width in pixels")
	fs.Uint32Var(&height, "height", 480, "height in pixels")
	fs.Uint32Var(&layer, "layer", 0, "stacking layer")
	fs.Uint32Var(&color, "color", 0xff202020, "background color as 0xAARRGGBB")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if id == 0 {
		return errors.New("--id is required")
	}

	c, err := a.connect(ctx, nil)
	if err != nil {
		return err
	}
	defer c.Close()
	if err := c.CreateWindow(id, x, y, width, height, layer, color); err != nil {
		return err
	}
	return a.showInfo(ctx, c, id)
}

func cmdDestroyWindow(ctx context.Context, a *app, args []string) error {
	id, err := parseWindowID(args)
	if err != nil {
		return err
	}
	c, err := a.connect(ctx, nil)
	if err != nil {
		return err
	}
	defer c.Close()
	return c.DestroyWindow(id)
}

func cmdLaunch(ctx context.Context, a *app, args []string) error {
	command := strings.TrimSpace(strings.Join(args, " "))
	if command == "" {
		return errors.New("command required")
	}
	c, err := a.connect(ctx, nil)
	if err != nil {
		return err
	}
	defer c.Close()
	return c.LaunchApp(command)
}

func cmdWatch(ctx context.Context, a *app, args []string) error {
	fs := subFlags("watch", a.out)
	var (
		mask   uint32
		global bool
		record string
	)
	fs.Uint32Var(&mask, "mask", allWindowEvents, "window event subscription mask")
	fs.BoolVar(&global, "global", false, "also register for global pointer and keyboard events")
	fs.StringVar(&record, "record", "", "append every frame to this capture file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var recorder client.Recorder
	if record != "" {
		f, err := os.Create(record)
		if err != nil {
			return err
		}
		defer f.Close()
		w, err := capture.NewWriter(f)
		if err != nil {
			return err
		}
		recorder = w
	}

	c, err := a.connect(ctx, func(o *client.Options) { o.Recorder = recorder })
	if err != nil {
		return err
	}
	defer c.Close()

	if err := c.SubscribeWindowEvents(mask); err != nil {
		return err
	}
	if global {
		if err := c.RegisterGlobalPointer(); err != nil {
			return err
		}
		if err := c.RegisterGlobalKeyboard(); err != nil {
			return err
		}
	}

	var emitErr error
	err = c.Events(ctx, func(msg protocol.Message) {
		if err := a.emitMessage(time.Now(), "", msg); err != nil && emitErr == nil {
			emitErr = err
		}
	})
	switch {
	case errors.Is(err, client.ErrCompositorShutdown):
	case ctx.Err() != nil:
	default:
		return err
	}
	return emitErr
}

func cmdReplay(_ context.Context, a *app, args []string) error {
	if len(args) != 1 {
		return errors.New("exactly one capture file required")
	}
	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	r, err := capture.NewReader(f)
	if err != nil {
		return err
	}
	for {
		rec, err := r.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		msg, err := protocol.DecodeFrame(rec.Frame())
		if err != nil {
			fmt.Fprintf(a.out, "%s %s undecodable type %d: %v\n",
				rec.Time().Format("15:04:05.000"), rec.Direction, rec.Type, err)
			continue
		}
		if err := a.emitMessage(rec.Time(), rec.Direction.String(), msg); err != nil {
			return err
		}
	}
}
