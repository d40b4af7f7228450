// Command example runs a scrolling feed demo: items come from a local
// sqlite database, the window virtualizes them as colored cards, and new
// items arrive over a websocket subscription or by polling.
//
// Prerequisites:
//
//	A desktop OpenGL 4.1 environment with GLFW build dependencies.
//	go run ./example/ --db feed.db --seed 200
//
// Scroll with the mouse wheel, arrow keys, PageUp/PageDown, Home and End.
// Approaching either end of the loaded range fetches the next page.
package main

import (
	"context"
	"fmt"
	"hash/fnv"
	"os"
	"runtime"
	"time"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/spf13/cobra"

	"github.com/adamsharifc/feedview"
	"github.com/adamsharifc/feedview/backend/opengl"
	"github.com/adamsharifc/feedview/source/live"
	"github.com/adamsharifc/feedview/source/sqlitefeed"
)

const windowTitle = "feedview example"

const (
	cardMargin  = 8.0
	cardPadding = 16.0
	trackWidth  = 10.0
)

type options struct {
	dbPath   string
	wsURL    string
	width    int
	height   int
	pageSize int
	seed     int
	poll     time.Duration
	verbose  bool
}

func init() {
	// GLFW must run on the main thread.
	runtime.LockOSThread()
}

func main() {
	opts := options{}

	cmd := &cobra.Command{
		Use:          "example",
		Short:        "Scrolling feed demo over a sqlite item store",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(opts)
		},
	}

	cmd.Flags().StringVar(&opts.dbPath, "db", "feed.db", "sqlite database path")
	cmd.Flags().StringVar(&opts.wsURL, "ws", "", "websocket URL for live items (polling is used when empty)")
	cmd.Flags().IntVar(&opts.width, "width", 800, "window width")
	cmd.Flags().IntVar(&opts.height, "height", 600, "window height")
	cmd.Flags().IntVar(&opts.pageSize, "page-size", 20, "items per fetch")
	cmd.Flags().IntVar(&opts.seed, "seed", 0, "seed this many demo items into an empty database")
	cmd.Flags().DurationVar(&opts.poll, "poll", live.DefaultPollInterval, "poll interval for new items")
	cmd.Flags().BoolVar(&opts.verbose, "verbose", false, "enable debug logging")

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(opts options) error {
	if opts.verbose {
		feedview.SetVerbose(true)
	}

	store, err := sqlitefeed.Open(sqlitefeed.Options{
		Path:     opts.dbPath,
		PageSize: opts.pageSize,
	})
	if err != nil {
		return err
	}
	defer store.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if opts.seed > 0 {
		if err := store.Seed(ctx, opts.seed); err != nil {
			return err
		}
	}

	feed := feedview.New(store,
		feedview.WithDefaultItemHeight(120),
		feedview.WithOnEvent(func(ev feedview.Event) {
			if ev.Kind == feedview.EventLoadFailed {
				fmt.Fprintf(os.Stderr, "load failed (%v): %v\n", ev.Edge, ev.Err)
			}
		}),
	)
	defer feed.Close()

	items, topCur, bottomCur, err := store.InitialPage(ctx)
	if err != nil {
		return err
	}
	if err := feed.Reset(items, topCur, bottomCur); err != nil {
		return err
	}

	// Live updates: push when a websocket URL is given, poll otherwise.
	if opts.wsURL != "" {
		sub := live.NewSubscriber(opts.wsURL, feed)
		go sub.Run(ctx)
	} else {
		go live.NewPoller(store, feed, bottomCur, opts.poll).Run(ctx)
	}

	return runWindow(opts, feed)
}

func runWindow(opts options, feed *feedview.Feed) error {
	if err := glfw.Init(); err != nil {
		return fmt.Errorf("glfw init: %w", err)
	}
	defer glfw.Terminate()

	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)

	window, err := glfw.CreateWindow(opts.width, opts.height, windowTitle, nil, nil)
	if err != nil {
		return fmt.Errorf("create window: %w", err)
	}
	window.MakeContextCurrent()
	glfw.SwapInterval(1) // vsync

	if err := gl.Init(); err != nil {
		return fmt.Errorf("gl init: %w", err)
	}

	adapter := opengl.NewScrollAdapter(window)
	w, h := adapter.Size()

	renderer, err := opengl.NewRenderer(w, h)
	if err != nil {
		return fmt.Errorf("renderer: %w", err)
	}
	defer renderer.Delete()

	feed.SetViewportHeight(float64(h))

	// Heights reported by layout once a card is on screen. In a real view
	// these would come from text wrapping and image decode.
	measured := map[string]bool{}

	for !window.ShouldClose() {
		glfw.PollEvents()

		if adapter.TakeResized() {
			w, h = adapter.Size()
			renderer.Resize(w, h)
			feed.SetViewportHeight(float64(h))
		}

		offset := adapter.Update()
		win := feed.Update(offset, time.Now())

		// Prepends rewrite the offset; pick the correction up before
		// drawing so the visible cards do not jump.
		if corrected := feed.ScrollOffset(); corrected != offset {
			adapter.SetOffset(corrected)
			offset = corrected
		}
		adapter.SetMaxOffset(feed.TotalHeight() - float64(h))

		rects := make([]opengl.Rect, 0, win.Count()+1)
		for i := win.Start; i < win.End; i++ {
			id := feed.ItemID(i)
			if !measured[id] {
				measured[id] = true
				feed.RecordMeasured(id, measuredHeight(id))
			}

			top := feed.ItemTop(i) - offset
			rects = append(rects, opengl.Rect{
				X:     cardMargin,
				Y:     float32(top + cardMargin/2),
				W:     float32(w) - 2*cardMargin - trackWidth,
				H:     float32(feed.ItemHeight(i) - cardMargin),
				Color: cardColor(id),
			})
		}

		if thumbY, thumbH := opengl.ScrollbarThumb(float64(h), feed.TotalHeight(), offset); thumbH < float64(h) {
			rects = append(rects, opengl.Rect{
				X:     float32(w) - trackWidth,
				Y:     float32(thumbY),
				W:     trackWidth,
				H:     float32(thumbH),
				Color: opengl.Color{0.6, 0.6, 0.65, 0.8},
			})
		}

		renderer.Begin(opengl.Color{0.12, 0.12, 0.14, 1.0})
		renderer.DrawRects(rects)
		window.SwapBuffers()
	}

	return nil
}

// measuredHeight derives a stable per-item height, standing in for real
// content measurement.
func measuredHeight(id string) float64 {
	return 80 + float64(hashID(id)%7)*25
}

func cardColor(id string) opengl.Color {
	h := hashID(id)
	return opengl.Color{
		0.25 + float32(h%5)*0.08,
		0.30 + float32(h/5%5)*0.06,
		0.40 + float32(h/25%5)*0.07,
		1.0,
	}
}

func hashID(id string) uint32 {
	f := fnv.New32a()
	f.Write([]byte(id))
	return f.Sum32()
}
