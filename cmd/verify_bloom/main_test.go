package main

import (
	"bytes"
	"math/rand"
	"strings"
	"testing"

	"github.com/decker502/heartbloom/pkg/config"
	"github.com/decker502/heartbloom/pkg/scenes"
)

func TestSimulateReachesBloom(t *testing.T) {
	cfg := config.DefaultSceneConfig()
	scene, err := scenes.NewHeartScene(cfg, rand.New(rand.NewSource(1)), nil)
	if err != nil {
		t.Fatalf("NewHeartScene: %v", err)
	}

	var out bytes.Buffer
	// 每轮 3.5 秒得到 +20 心情，60 秒内必然饱和
	res := simulate(scene, 3, 0.5, 60, &out)

	if res.pops < 10 {
		t.Errorf("pops = %d, want at least 10", res.pops)
	}
	if res.blooms == 0 {
		t.Fatalf("no bloom in 60s:\n%s", out.String())
	}
	if !strings.Contains(out.String(), "BLOOM #1") {
		t.Error("bloom line missing from output")
	}
	if res.maxLive > cfg.Particles.MaxLive {
		t.Errorf("live hearts %d exceeded limit %d", res.maxLive, cfg.Particles.MaxLive)
	}
}
