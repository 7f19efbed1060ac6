package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/decker502/heartbloom/pkg/app"
	"github.com/decker502/heartbloom/pkg/embedded"
)

var (
	verbose    = flag.Bool("verbose", false, "显示详细日志")
	configPath = flag.String("config", "", "场景配置文件路径（默认使用内嵌的 data/scene.yaml）")
	musicPath  = flag.String("music", "", "背景音乐文件（.mp3 / .ogg），用于音频可视化")
	seed       = flag.Int64("seed", 0, "随机种子，0 表示使用当前时间")
	notesDSN   = flag.String("notes-dsn", "", "PostgreSQL 连接串，设置后随笔同时写入数据库")
)

func main() {
	flag.Parse()

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "heartbloom: %v\n", err)
		os.Exit(1)
	}
}

// run 返回后才退出进程，保证 Close 一定执行
func run() error {
	// dataFS 在 embed.go 中声明
	embedded.Init(dataFS)

	heartApp, err := app.NewApp(app.Config{
		Verbose:    *verbose,
		ConfigPath: *configPath,
		MusicPath:  *musicPath,
		Seed:       *seed,
		NotesDSN:   *notesDSN,
	})
	if err != nil {
		return fmt.Errorf("初始化失败: %w", err)
	}
	defer heartApp.Close()

	ebiten.SetWindowSize(app.ScreenWidth, app.ScreenHeight)
	ebiten.SetWindowTitle("Heart Bloom")
	ebiten.SetTPS(app.TPS)

	if err := ebiten.RunGame(heartApp); err != nil && !errors.Is(err, ebiten.Termination) {
		return err
	}
	return nil
}
