package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/chazu/pipes/pkg/stream"
)

// ---------------------------------------------------------------------------
// Scene errors leave the run alone
// ---------------------------------------------------------------------------

func TestE2ESceneSyntaxError(t *testing.T) {
	app := newTestApp(t, smallConfig("1"))
	before := app.Config()

	errs := app.ApplyScene("(pipes :kind :flex")
	if len(errs) == 0 {
		t.Fatal("expected scene errors for a syntax error")
	}
	if errs[0].Message == "" {
		t.Error("scene error message should not be empty")
	}
	if app.Config() != before {
		t.Error("a broken scene replaced the configuration")
	}
}

func TestE2ESceneSyntaxErrorWithLineInfo(t *testing.T) {
	app := newTestApp(t, smallConfig("1"))

	errs := app.ApplyScene("(pipes :kind :flex)\n(joints :style")
	if len(errs) == 0 {
		t.Fatal("expected scene errors")
	}
	// Line info depends on the zygomys message format; it is logged when
	// present.
	if errs[0].Line > 0 {
		t.Logf("extracted line info: line=%d, message=%q", errs[0].Line, errs[0].Message)
	}
}

func TestE2ESceneInvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		wantErr string
	}{
		{"zero slots", `(budget :max-slots 0)`, "budget.maxSlots must be positive"},
		{"fat pipes", `(geometry :radius 4)`, "geometry.radius"},
		{"unknown style", `(joints :style :teapots)`, `joints.style "teapots"`},
		{"unknown option", `(view :depth 9)`, "unknown option :depth"},
		{"undefined symbol", `(budget :max-slots slot-count)`, "slot_count"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApp(t, smallConfig("1"))
			errs := app.ApplyScene(tt.src)
			if len(errs) == 0 {
				t.Fatal("expected a scene error")
			}
			if !strings.Contains(errs[0].Message, tt.wantErr) {
				t.Errorf("message %q, want containing %q", errs[0].Message, tt.wantErr)
			}
		})
	}
}

func TestE2ECommentsOnlyScene(t *testing.T) {
	app := newTestApp(t, smallConfig("1"))
	source := `
; nothing but comments
;; and more comments
`
	if errs := app.ApplyScene(source); len(errs) > 0 {
		t.Fatalf("unexpected errors for a comments-only scene: %v", errs)
	}
	if app.Config().Pipes.Kind != "normal" {
		t.Error("comments changed the configuration")
	}
}

func TestE2EScenesDoNotAccumulate(t *testing.T) {
	app := newTestApp(t, smallConfig("1"))

	if errs := app.ApplyScene(`(pipes :chase true)`); len(errs) > 0 {
		t.Fatalf("scene errors: %v", errs)
	}
	if errs := app.ApplyScene(`(joints :style :balls)`); len(errs) > 0 {
		t.Fatalf("scene errors: %v", errs)
	}
	cfg := app.Config()
	if cfg.Pipes.Chase {
		t.Error("second scene inherited the first scene's settings")
	}
	if cfg.Joints.Style != "balls" {
		t.Errorf("joint style %q", cfg.Joints.Style)
	}
}

func TestE2ERapidSceneChanges(t *testing.T) {
	app := newTestApp(t, smallConfig("1"))
	kinds := []string{"normal", "flex", "turnomania", "mixed"}

	for i := 0; i < 20; i++ {
		kind := kinds[i%len(kinds)]
		if errs := app.ApplyScene(fmt.Sprintf(`(pipes :kind :%s)`, kind)); len(errs) > 0 {
			t.Fatalf("iteration %d: scene errors: %v", i, errs)
		}
		if _, err := app.Step(); err != nil {
			t.Fatalf("iteration %d: Step: %v", i, err)
		}
		if got := app.Config().Pipes.Kind; got != kind {
			t.Fatalf("iteration %d: kind %q, want %q", i, got, kind)
		}
	}
}

// ---------------------------------------------------------------------------
// Running
// ---------------------------------------------------------------------------

func TestE2ERunPicksUpScenes(t *testing.T) {
	app := newTestApp(t, smallConfig("1"))
	scenes := make(chan string, 1)
	scenes <- `(pipes :kind :flex)`

	frames, err := app.Run(context.Background(), 1, 0, scenes)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(frames) != 1 || frames[0].Kind != "flex" {
		t.Fatalf("frames %+v", frames)
	}
}

func TestE2ERunCancelled(t *testing.T) {
	app := newTestApp(t, smallConfig("1"))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := app.Run(ctx, 0, time.Millisecond, nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestE2EColorPaletteWrapping(t *testing.T) {
	cfg := smallConfig("9")
	cfg.Budget.PipesPerFrame = 20
	cfg.Budget.MaxSlots = 1
	app := newTestApp(t, cfg)

	fd, err := app.RunFrame(context.Background(), 0)
	if err != nil {
		t.Fatalf("RunFrame: %v", err)
	}
	if len(fd.Meshes) <= len(colorPalette) {
		t.Skipf("only %d pipes fit; palette never wraps", len(fd.Meshes))
	}
	for i, m := range fd.Meshes {
		if want := colorPalette[i%len(colorPalette)]; m.Color != want {
			t.Errorf("mesh %d: color %s, want %s", i, m.Color, want)
		}
	}
}

func TestE2EStreamsTicks(t *testing.T) {
	app := newTestApp(t, smallConfig("5"))
	hub := stream.NewHub()
	defer hub.Close()
	app.SetHub(hub)

	srv := httptest.NewServer(hub)
	defer srv.Close()
	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	deadline := time.Now().Add(2 * time.Second)
	for hub.Clients() != 1 {
		if time.Now().After(deadline) {
			t.Fatal("viewer never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	if _, err := app.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var b stream.Batch
	if err := json.Unmarshal(msg, &b); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !b.Started || b.Frame != 1 || len(b.Meshes) == 0 || b.RunID != hub.RunID().String() {
		t.Errorf("first batch: frame %d started %v, %d meshes", b.Frame, b.Started, len(b.Meshes))
	}
}
