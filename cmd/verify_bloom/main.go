// verify_bloom 无界面验证"按住 → 破裂 → 心情上升 → 绽放"的完整流程
//
// 用法:
//
//	go run ./cmd/verify_bloom [--hold 3] [--gap 0.5] [--seconds 60] [--verbose]
//
// 以固定 60 TPS 推进手动时钟，反复按住/松开泡泡，打印每次破裂和绽放。
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"math/rand"
	"os"

	"github.com/decker502/heartbloom/pkg/config"
	"github.com/decker502/heartbloom/pkg/game"
	"github.com/decker502/heartbloom/pkg/scenes"
)

var (
	verbose    = flag.Bool("verbose", false, "显示详细调试信息")
	configPath = flag.String("config", "", "场景配置文件路径（默认使用内置配置）")
	holdSecs   = flag.Float64("hold", 3, "每次按住的秒数")
	gapSecs    = flag.Float64("gap", 0.5, "两次按住之间的间隔秒数")
	totalSecs  = flag.Float64("seconds", 60, "模拟总时长（秒）")
	seed       = flag.Int64("seed", 1, "随机种子")
)

const tps = scenes.DefaultTPS

// printSink 把随笔打印到标准输出
type printSink struct{}

func (printSink) SaveNote(n game.Note) error {
	fmt.Printf("  note: %q (mood %.1f, accent %s)\n", n.Text, n.Mood, n.Accent)
	return nil
}

func main() {
	flag.Parse()

	if !*verbose {
		log.SetOutput(io.Discard)
	}

	cfg := config.DefaultSceneConfig()
	if *configPath != "" {
		var err error
		if cfg, err = config.LoadSceneConfig(*configPath); err != nil {
			fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
			os.Exit(1)
		}
	}

	scene, err := scenes.NewHeartScene(cfg, rand.New(rand.NewSource(*seed)), printSink{})
	if err != nil {
		fmt.Fprintf(os.Stderr, "场景初始化失败: %v\n", err)
		os.Exit(1)
	}

	result := simulate(scene, *holdSecs, *gapSecs, *totalSecs, os.Stdout)

	fmt.Printf("\n=== %.0fs simulated: %d pops, %d blooms, final mood %.1f ===\n",
		*totalSecs, result.pops, result.blooms, result.finalMood)
	if result.blooms == 0 {
		fmt.Println("no bloom reached")
		os.Exit(2)
	}
}

type simResult struct {
	pops      int
	blooms    int
	maxLive   int
	finalMood float64
}

// simulate 以固定步长推进场景，按 hold/gap 节奏循环按住和松开
func simulate(scene *scenes.HeartScene, hold, gap, total float64, out io.Writer) simResult {
	clock := &scenes.ManualClock{}
	dt := 1.0 / tps

	var res simResult
	holding := false
	phaseStart := 0.0

	steps := int(total * tps)
	for i := 0; i < steps; i++ {
		now := clock.Advance(dt)

		switch {
		case !holding && now-phaseStart >= gap:
			scene.HoldStart(now)
			holding = true
			phaseStart = now
		case holding && now-phaseStart >= hold:
			scene.HoldEnd(now)
			holding = false
			phaseStart = now
		}

		f := scene.Update(now)
		for _, pop := range f.Pops {
			res.pops++
			fmt.Fprintf(out, "[%6.2fs] pop   held=%.2fs burst=%d delta=+%.1f mood=%.1f %s\n",
				now, pop.HeldSeconds, pop.BurstSize, pop.MoodDelta, f.Mood, f.Band)
		}
		if f.BloomFired {
			res.blooms++
			fmt.Fprintf(out, "[%6.2fs] BLOOM #%d accent=%v hearts=%d\n",
				now, f.BloomCount, f.Theme.Accent, len(f.Hearts))
			scene.ReflectBand()
		}
		res.maxLive = max(res.maxLive, len(f.Hearts))
	}
	res.finalMood = scene.Mood()
	return res
}
