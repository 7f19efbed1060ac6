// heartterm 在终端中运行心情场景
//
// 用法:
//
//	go run ./cmd/heartterm [--config data/scene.yaml] [--seed 42] [--verbose]
//
// 鼠标左键按住膨胀泡泡，松开破裂；n 记录一条随笔；q / Esc 退出。
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"time"

	"github.com/gdamore/tcell/v2"

	haudio "github.com/decker502/heartbloom/internal/audio"
	"github.com/decker502/heartbloom/pkg/config"
	"github.com/decker502/heartbloom/pkg/game"
	"github.com/decker502/heartbloom/pkg/scenes"
)

// 与桌面版共用同一个随笔存储目录
const appName = "heartbloom"

var (
	verbose    = flag.Bool("verbose", false, "显示详细日志（写入 --log 文件）")
	logPath    = flag.String("log", "heartterm.log", "详细日志文件路径")
	configPath = flag.String("config", "", "场景配置文件路径（默认使用内置配置）")
	seed       = flag.Int64("seed", 0, "随机种子，0 表示使用当前时间")
	tps        = flag.Int("tps", 30, "每秒 tick 数")
	mute       = flag.Bool("mute", false, "关闭提示音")
)

func main() {
	flag.Parse()

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "heartterm: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// tcell 占用终端，日志只能写文件
	closeLog, err := setupLogging()
	if err != nil {
		return err
	}
	defer closeLog()

	cfg := config.DefaultSceneConfig()
	if *configPath != "" {
		if cfg, err = config.LoadSceneConfig(*configPath); err != nil {
			return err
		}
	}

	s := *seed
	if s == 0 {
		s = time.Now().UnixNano()
	}

	journal := game.OpenJournal(appName)
	scene, err := scenes.NewHeartScene(cfg, rand.New(rand.NewSource(s)), journal)
	if err != nil {
		return err
	}

	chimes := haudio.NewChimePlayer()
	if !*mute {
		if err := chimes.Initialize(); err != nil {
			// 没有声卡也能运行
			log.Printf("[Term] Audio initialization failed: %v", err)
		}
	}
	defer chimes.Close()

	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	defer screen.Fini()
	screen.EnableMouse()
	screen.EnableFocus()
	screen.HideCursor()

	view := newTermView(screen, cfg.Bubble.AnchorX, cfg.Bubble.AnchorY)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	loop := scenes.NewSceneLoop(scene, scenes.NewWallClock(), *tps, func(f scenes.Frame) {
		view.draw(f)
		for _, pop := range f.Pops {
			chimes.PlayPop(pop.BurstSize)
		}
		if f.BloomFired {
			chimes.PlayBloom()
			go scene.ReflectBand()
		}
	})

	loopErr := make(chan error, 1)
	go func() {
		loopErr <- loop.Run(ctx)
	}()

	// 信号取消时唤醒阻塞的 PollEvent
	go func() {
		<-ctx.Done()
		screen.PostEvent(tcell.NewEventInterrupt(nil))
	}()

	input := &inputController{scene: scene, view: view, clock: loop.Clock()}
	for ctx.Err() == nil {
		ev := screen.PollEvent()
		if ev == nil {
			break
		}
		switch input.handle(ev) {
		case actionQuit:
			cancel()
		case actionReflect:
			go scene.ReflectBand()
		}
	}

	if err := <-loopErr; err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	log.Printf("[Term] Exit: mood=%.1f, %d notes in journal", scene.Mood(), journal.Len())
	return nil
}

func setupLogging() (func(), error) {
	if !*verbose {
		log.SetOutput(io.Discard)
		return func() {}, nil
	}
	f, err := os.OpenFile(*logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("打开日志文件失败: %w", err)
	}
	log.SetOutput(f)
	return func() { f.Close() }, nil
}
