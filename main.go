// Command pipes grows the classic 3D pipes in a lattice, frame after frame,
// and exports or streams the resulting geometry.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/chazu/pipes/pkg/config"
	"github.com/chazu/pipes/pkg/stream"
)

func main() {
	var (
		cfgPath   string
		scenePath string
		frames    int
		jsonPath  string
		stlPath   string
		listen    string
		watch     bool
	)
	flag.StringVar(&cfgPath, "config", "", "path to a YAML, TOML or JSON configuration file")
	flag.StringVar(&scenePath, "scene", "", "path to a scene script")
	flag.IntVar(&frames, "frames", -1, "frames to grow; 0 runs until interrupted (overrides output.frames)")
	flag.StringVar(&jsonPath, "json", "", "write completed frames as JSON (overrides output.json)")
	flag.StringVar(&stlPath, "stl", "", "write the last frame as STL (overrides output.stl)")
	flag.StringVar(&listen, "listen", "", "stream frames over WebSocket at this address (overrides output.listen)")
	flag.BoolVar(&watch, "watch", false, "re-run the scene script whenever it changes")
	flag.Parse()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	app, err := NewApp(cfg)
	if err != nil {
		log.Fatalf("initialise pipes: %v", err)
	}
	if scenePath != "" {
		src, err := os.ReadFile(scenePath)
		if err != nil {
			log.Fatalf("read scene: %v", err)
		}
		if errs := app.ApplyScene(string(src)); len(errs) > 0 {
			for _, e := range errs {
				log.Printf("scene error (line %d): %s", e.Line, e.Message)
			}
			log.Fatalf("scene %s failed", scenePath)
		}
	}

	out := app.Config().Output
	if frames >= 0 {
		out.Frames = frames
	}
	if jsonPath != "" {
		out.JSON = jsonPath
	}
	if stlPath != "" {
		out.STL = stlPath
	}
	if listen != "" {
		out.Listen = listen
	}

	ctx, cancel := signalContext()
	defer cancel()

	pause := time.Duration(0)
	if out.Listen != "" {
		hub := stream.NewHub()
		defer hub.Close()
		app.SetHub(hub)
		pause = out.Tick.Duration()
		go func() {
			if err := serve(ctx, out.Listen, hub); err != nil {
				log.Printf("stream server: %v", err)
			}
		}()
	}

	var scenes <-chan string
	if watch && scenePath != "" {
		scenes, err = watchScene(ctx, scenePath)
		if err != nil {
			log.Fatalf("watch scene: %v", err)
		}
	}

	done, err := app.Run(ctx, out.Frames, pause, scenes)
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("run: %v", err)
	}

	if out.JSON != "" {
		if err := WriteJSON(out.JSON, done); err != nil {
			log.Fatalf("export json: %v", err)
		}
		log.Printf("wrote %d frames to %s", len(done), out.JSON)
	}
	if out.STL != "" {
		if err := app.WriteSTL(out.STL); err != nil {
			log.Fatalf("export stl: %v", err)
		}
		log.Printf("wrote %s", out.STL)
	}
}

// serve streams the hub on addr until ctx is cancelled and the server has
// shut down.
func serve(ctx context.Context, addr string, hub *stream.Hub) error {
	mux := http.NewServeMux()
	mux.Handle("/ws", hub)
	srv := &http.Server{Addr: addr, Handler: mux}

	done := make(chan error, 1)
	go func() {
		<-ctx.Done()
		shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		done <- srv.Shutdown(shutdown)
	}()

	log.Printf("streaming frames on ws://%s/ws", addr)
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	if err := <-done; err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// watchScene sends the scene's new source every time the file is written.
// The directory is watched so editors that replace the file are noticed.
func watchScene(ctx context.Context, path string) (<-chan string, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(filepath.Dir(path)); err != nil {
		w.Close()
		return nil, err
	}

	scenes := make(chan string, 1)
	target := filepath.Clean(path)
	go func() {
		defer w.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != target || ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				src, err := os.ReadFile(path)
				if err != nil {
					log.Printf("watch: read %s: %v", path, err)
					continue
				}
				log.Printf("watch: %s changed, restarting", path)
				// Only the newest source matters.
				select {
				case <-scenes:
				default:
				}
				scenes <- string(src)
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				log.Printf("watch: %v", err)
			}
		}
	}()
	return scenes, nil
}

func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		defer signal.Stop(signals)
		select {
		case <-signals:
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}
