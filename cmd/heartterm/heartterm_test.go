package main

import (
	"math/rand"
	"testing"

	"github.com/gdamore/tcell/v2"

	"github.com/decker502/heartbloom/pkg/config"
	"github.com/decker502/heartbloom/pkg/scenes"
	"github.com/decker502/heartbloom/pkg/systems"
)

func newSimView(t *testing.T) (tcell.SimulationScreen, *termView) {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatalf("init simulation screen: %v", err)
	}
	t.Cleanup(screen.Fini)
	screen.SetSize(80, 24)
	return screen, newTermView(screen, 0.5, 0.7)
}

func newTestController(t *testing.T) (*inputController, *scenes.HeartScene, *scenes.ManualClock) {
	t.Helper()
	cfg := config.DefaultSceneConfig()
	cfg.Particles.AmbientChance = 0

	scene, err := scenes.NewHeartScene(cfg, rand.New(rand.NewSource(1)), nil)
	if err != nil {
		t.Fatalf("NewHeartScene: %v", err)
	}
	_, view := newSimView(t)
	clock := &scenes.ManualClock{}
	return &inputController{scene: scene, view: view, clock: clock.Now}, scene, clock
}

func TestCellToScene(t *testing.T) {
	_, view := newSimView(t)

	// 80x24 屏幕，底部 2 行 HUD，场景区域 80x22
	x, y := view.cellToScene(0, 0)
	if x != 0.5/80 || y != 0.5/22 {
		t.Errorf("cellToScene(0,0) = (%v,%v)", x, y)
	}
	if !view.inField(79, 21) {
		t.Error("(79,21) should be inside the field")
	}
	if view.inField(10, 22) || view.inField(-1, 0) || view.inField(80, 0) {
		t.Error("HUD rows and off-screen cells must be outside the field")
	}
}

func TestMousePressReleasePops(t *testing.T) {
	c, scene, clock := newTestController(t)

	c.handle(tcell.NewEventMouse(40, 10, tcell.Button1, tcell.ModNone))
	if !c.holding {
		t.Fatal("button press should start holding")
	}
	clock.Advance(1)
	c.handle(tcell.NewEventMouse(40, 10, tcell.ButtonNone, tcell.ModNone))
	if c.holding {
		t.Fatal("button release should end holding")
	}

	f := scene.Update(clock.Now())
	if len(f.Pops) != 1 {
		t.Fatalf("pops = %d, want 1", len(f.Pops))
	}
	if f.Pops[0].Cancelled {
		t.Error("release inside the field should not be cancelled")
	}
	if f.Pops[0].HeldSeconds != 1 {
		t.Errorf("held = %v, want 1", f.Pops[0].HeldSeconds)
	}
}

func TestLeavingFieldCancelsHold(t *testing.T) {
	tests := []struct {
		name  string
		event tcell.Event
	}{
		{"pointer on HUD", tcell.NewEventMouse(40, 23, tcell.Button1, tcell.ModNone)},
		{"focus lost", tcell.NewEventFocus(false)},
		{"resize", tcell.NewEventResize(100, 30)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, scene, clock := newTestController(t)

			c.handle(tcell.NewEventMouse(40, 10, tcell.Button1, tcell.ModNone))
			clock.Advance(0.5)
			c.handle(tt.event)

			if c.holding {
				t.Fatal("hold should be cancelled")
			}
			f := scene.Update(clock.Now())
			if len(f.Pops) != 1 || !f.Pops[0].Cancelled {
				t.Errorf("expected one cancelled pop, got %+v", f.Pops)
			}
		})
	}
}

func TestSpaceTogglesHold(t *testing.T) {
	c, scene, clock := newTestController(t)

	c.handle(tcell.NewEventKey(tcell.KeyRune, ' ', tcell.ModNone))
	clock.Advance(2)
	c.handle(tcell.NewEventKey(tcell.KeyRune, ' ', tcell.ModNone))

	f := scene.Update(clock.Now())
	if len(f.Pops) != 1 || f.Pops[0].HeldSeconds != 2 {
		t.Errorf("expected one 2s pop, got %+v", f.Pops)
	}
}

func TestKeyActions(t *testing.T) {
	tests := []struct {
		name string
		ev   *tcell.EventKey
		want inputAction
	}{
		{"q", tcell.NewEventKey(tcell.KeyRune, 'q', tcell.ModNone), actionQuit},
		{"escape", tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone), actionQuit},
		{"n", tcell.NewEventKey(tcell.KeyRune, 'n', tcell.ModNone), actionReflect},
		{"other", tcell.NewEventKey(tcell.KeyRune, 'x', tcell.ModNone), actionNone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _, _ := newTestController(t)
			if got := c.handle(tt.ev); got != tt.want {
				t.Errorf("handle(%s) = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}

func TestDrawPlacesHeartsAndHUD(t *testing.T) {
	screen, view := newSimView(t)

	f := scenes.Frame{
		Mood:        42,
		Band:        "Red/Intensity",
		BubbleScale: 1,
		Hearts: []systems.HeartView{
			{X: 0.5, Y: 0.5, Progress: 0.2},
			{X: 1.5, Y: 0.5}, // 场景外，忽略
		},
	}
	view.draw(f)

	cells, w, _ := screen.GetContents()
	cell := cells[11*w+40]
	if len(cell.Runes) == 0 || cell.Runes[0] != heartRune {
		t.Errorf("cell (40,11) = %q, want heart", cell.Runes)
	}

	hud := cells[22*w : 22*w+4]
	var got []rune
	for _, c := range hud {
		got = append(got, c.Runes...)
	}
	if string(got) != "Mood" {
		t.Errorf("HUD starts with %q, want \"Mood\"", string(got))
	}
}

func TestDrawTextUsesDisplayWidth(t *testing.T) {
	screen, _ := newSimView(t)

	if end := drawText(screen, 0, 0, "心情ok", tcell.StyleDefault); end != 6 {
		t.Errorf("end column = %d, want 6 (two wide runes + two narrow)", end)
	}
}
