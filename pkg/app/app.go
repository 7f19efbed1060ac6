// Package app 提供心情场景的 ebiten 应用包装器
//
// 该包将初始化逻辑从 main 包提取出来，使其可以被桌面端和移动端共用。
// 桌面端通过 main.go 调用 NewApp()，移动端通过 mobile/mobile.go 调用。
package app

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"io"
	"log"
	"math/rand"
	"sync/atomic"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/audio"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	haudio "github.com/decker502/heartbloom/internal/audio"
	"github.com/decker502/heartbloom/pkg/config"
	"github.com/decker502/heartbloom/pkg/embedded"
	"github.com/decker502/heartbloom/pkg/game"
	"github.com/decker502/heartbloom/pkg/scenes"
	"github.com/decker502/heartbloom/pkg/utils"
)

const (
	// AppName gdata 存储目录名
	AppName = "heartbloom"

	ScreenWidth  = 800
	ScreenHeight = 600
	TPS          = 60

	// 每隔多少 tick 计算一次频谱
	audioFrameInterval = 4
	sqlConnectTimeout  = 5 * time.Second
	historyTimeout     = 2 * time.Second
)

// Config 定义应用启动配置
type Config struct {
	// Verbose 启用详细日志输出
	Verbose bool
	// ConfigPath 场景配置文件路径，为空则使用内嵌的 data/scene.yaml
	ConfigPath string
	// MusicPath 可选的背景音乐（.mp3 / .ogg）
	MusicPath string
	// Seed 随机种子，0 表示使用当前时间
	Seed int64
	// NotesDSN 可选的 PostgreSQL 连接串，设置后随笔同时写入数据库
	NotesDSN string
}

// App 实现 ebiten.Game 接口
type App struct {
	scene *scenes.HeartScene
	frame scenes.Frame
	ticks atomic.Int64

	hold utils.HoldTracker

	journal  *game.JournalStore
	sqlNotes *game.SQLNoteStore
	prefs    *game.Preferences
	lastNote atomic.Pointer[game.Note]

	analyzer     *haudio.SpectrumAnalyzer
	audioContext *audio.Context
	music        *audio.Player
	musicPath    string

	heartOutline [][2]float32
	whitePixel   *ebiten.Image
	vertices     []ebiten.Vertex
	indices      []uint16

	verbose                  bool
	pendingWindowSizeReset   bool
	windowSizeResetCountdown int
}

// NewApp 创建并初始化应用
//
// 使用内嵌配置时，调用前必须先调用 embedded.Init()。
func NewApp(cfg Config) (*App, error) {
	// 配置日志输出
	if !cfg.Verbose {
		log.SetOutput(io.Discard)
		log.SetFlags(0)
	}

	sceneCfg, err := loadSceneConfig(cfg.ConfigPath)
	if err != nil {
		return nil, err
	}

	a := &App{
		verbose:      cfg.Verbose,
		heartOutline: utils.HeartOutline(24),
	}

	a.prefs = game.OpenPreferences(AppName)

	// 随笔持久化：gdata 日志，可选数据库
	a.journal = game.OpenJournal(AppName)
	sinks := game.MultiNoteSink{a.journal}
	if cfg.NotesDSN != "" {
		ctx, cancel := context.WithTimeout(context.Background(), sqlConnectTimeout)
		store, err := game.NewSQLNoteStore(ctx, cfg.NotesDSN)
		cancel()
		if err != nil {
			return nil, fmt.Errorf("随笔数据库连接失败: %w", err)
		}
		a.sqlNotes = store
		sinks = append(sinks, store)
	}
	a.loadLastNote()

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	scene, err := scenes.NewHeartScene(sceneCfg, rand.New(rand.NewSource(seed)), sinks)
	if err != nil {
		return nil, fmt.Errorf("场景初始化失败: %w", err)
	}
	a.scene = scene
	a.frame = scene.Snapshot()

	settings := a.prefs.Settings()
	if settings.Fullscreen {
		ebiten.SetFullscreen(true)
	}

	a.musicPath = cfg.MusicPath
	a.applyMusicSettings()

	a.scene.StartAmbient(a.clock)

	log.Printf("[App] Initialized (seed=%d, journal persistent=%v)", seed, a.journal.Persistent())
	return a, nil
}

func loadSceneConfig(path string) (*config.SceneConfig, error) {
	if path != "" {
		cfg, err := config.LoadSceneConfig(path)
		if err != nil {
			return nil, fmt.Errorf("场景配置加载失败: %w", err)
		}
		log.Printf("[Config] 加载场景配置: %s", path)
		return cfg, nil
	}

	data, err := embedded.ReadFile(embedded.DefaultSceneConfigPath)
	if err != nil {
		return nil, fmt.Errorf("内嵌场景配置读取失败: %w", err)
	}
	cfg, err := config.ParseSceneConfig(data)
	if err != nil {
		return nil, fmt.Errorf("内嵌场景配置无效: %w", err)
	}
	log.Printf("[Config] 使用内嵌场景配置")
	return cfg, nil
}

// loadLastNote 从数据库（若已配置）或本地日志取最近一条随笔显示在 HUD 上
func (a *App) loadLastNote() {
	var history game.NoteHistory = a.journal
	if a.sqlNotes != nil {
		history = a.sqlNotes
	}

	ctx, cancel := context.WithTimeout(context.Background(), historyTimeout)
	defer cancel()
	note, ok, err := game.LatestNote(ctx, history)
	if err != nil {
		log.Printf("[App] Warning: failed to read last note: %v", err)
		return
	}
	if ok {
		a.lastNote.Store(&note)
	}
}

// reflect 生成一条随笔，持久化可能较慢，在 goroutine 中调用
func (a *App) reflect() {
	if note, ok := a.scene.ReflectBand(); ok {
		a.lastNote.Store(&note)
	}
}

func (a *App) startMusic(path string, volume float64) error {
	// 音频上下文每个进程只能创建一次
	if a.audioContext == nil {
		a.audioContext = audio.NewContext(game.MusicSampleRate)
	}
	analyzer := haudio.NewSpectrumAnalyzer(1024, 16)
	loader := game.NewMusicLoader(a.audioContext, analyzer)
	loader.SetVolume(volume)
	player, err := loader.Load(path)
	if err != nil {
		return err
	}
	player.Play()
	a.music = player
	a.analyzer = analyzer
	log.Printf("[App] Playing music: %s", path)
	return nil
}

// applyMusicSettings 按当前偏好播放、暂停音乐并设置音量
func (a *App) applyMusicSettings() {
	if a.musicPath == "" {
		return
	}
	s := a.prefs.Settings()
	if a.music == nil {
		if !s.MusicEnabled {
			return
		}
		if err := a.startMusic(a.musicPath, s.MusicVolume); err != nil {
			// 音乐只是可选的可视化输入
			log.Printf("[App] Warning: music disabled: %v", err)
			a.musicPath = ""
		}
		return
	}

	a.music.SetVolume(s.MusicVolume)
	switch {
	case s.MusicEnabled && !a.music.IsPlaying():
		a.music.Play()
	case !s.MusicEnabled && a.music.IsPlaying():
		a.music.Pause()
	}
}

// handleMusicKeys M 切换音乐，+/- 调整音量
func (a *App) handleMusicKeys() {
	changed := false
	if inpututil.IsKeyJustPressed(ebiten.KeyM) {
		enabled := a.prefs.ToggleMusic()
		log.Printf("[App] Music enabled: %v", enabled)
		changed = true
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEqual) || inpututil.IsKeyJustPressed(ebiten.KeyNumpadAdd) {
		log.Printf("[App] Music volume: %.1f", a.prefs.StepMusicVolume(1))
		changed = true
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyMinus) || inpututil.IsKeyJustPressed(ebiten.KeyNumpadSubtract) {
		log.Printf("[App] Music volume: %.1f", a.prefs.StepMusicVolume(-1))
		changed = true
	}
	if !changed {
		return
	}
	a.applyMusicSettings()
	a.savePreferences()
}

// clock 场景时钟：按 tick 计数，与 ebiten 的固定 TPS 一致
func (a *App) clock() float64 {
	return float64(a.ticks.Load()) / TPS
}

// Update 更新逻辑，每个 tick 调用一次
func (a *App) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	a.handleFullscreen()

	a.ticks.Add(1)
	now := a.clock()

	sample := utils.SamplePointer(ScreenWidth, ScreenHeight)
	if sample.Inside {
		a.scene.PointerMove(utils.NormalizePoint(sample.X, sample.Y, ScreenWidth, ScreenHeight))
	}
	switch a.hold.Feed(sample) {
	case utils.HoldBegan:
		a.scene.HoldStart(now)
	case utils.HoldEnded:
		a.scene.HoldEnd(now)
	case utils.HoldCancelled:
		a.scene.HoldCancel(now)
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyH) {
		a.prefs.Update(func(s *game.Settings) { s.ShowHUD = !s.ShowHUD })
		a.savePreferences()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyN) {
		go a.reflect()
	}
	a.handleMusicKeys()

	if a.analyzer != nil && a.ticks.Load()%audioFrameInterval == 0 {
		// 暂停后分析器里留着最后一帧，音频强度归零
		if a.music.IsPlaying() {
			a.scene.AudioFrame(a.analyzer.Magnitudes())
		} else {
			a.scene.AudioFrame(nil)
		}
	}

	a.frame = a.scene.Update(now)
	if a.frame.BloomFired {
		// 持久化可能较慢，不阻塞游戏循环
		go a.reflect()
	}
	return nil
}

// handleFullscreen F11 切换全屏
func (a *App) handleFullscreen() {
	// 延迟设置窗口大小（退出全屏后需要等待几帧才能正确设置）
	if a.pendingWindowSizeReset {
		a.windowSizeResetCountdown--
		if a.windowSizeResetCountdown <= 0 {
			ebiten.SetWindowSize(ScreenWidth, ScreenHeight)
			a.pendingWindowSizeReset = false
		}
	}

	if !inpututil.IsKeyJustPressed(ebiten.KeyF11) {
		return
	}
	fullscreen := !ebiten.IsFullscreen()
	a.prefs.Update(func(s *game.Settings) { s.Fullscreen = fullscreen })
	a.savePreferences()

	if !fullscreen {
		ebiten.SetFullscreen(false)
		if ebiten.IsWindowMaximized() || ebiten.IsWindowMinimized() {
			ebiten.RestoreWindow()
		}
		a.pendingWindowSizeReset = true
		a.windowSizeResetCountdown = 3
	} else {
		ebiten.SetFullscreen(true)
	}
}

func (a *App) savePreferences() {
	if err := a.prefs.Save(); err != nil {
		log.Printf("[App] Warning: %v", err)
	}
}

// Draw 绘制画面
func (a *App) Draw(screen *ebiten.Image) {
	drawFrame(screen, a, a.frame)
}

// DrawFinalScreen 控制全屏时的缩放和 letterbox 颜色
func (a *App) DrawFinalScreen(screen ebiten.FinalScreen, offscreen *ebiten.Image, geoM ebiten.GeoM) {
	screen.Fill(color.Black)
	op := &ebiten.DrawImageOptions{}
	op.GeoM = geoM
	op.Filter = ebiten.FilterLinear
	screen.DrawImage(offscreen, op)
}

// Layout 返回逻辑屏幕尺寸
func (a *App) Layout(outsideWidth, outsideHeight int) (int, int) {
	return ScreenWidth, ScreenHeight
}

// Close 停止环境计时器并释放外部资源，可重复调用
func (a *App) Close() {
	a.scene.Stop()
	if a.music != nil {
		a.music.Pause()
	}
	if a.sqlNotes != nil {
		a.sqlNotes.Close()
		a.sqlNotes = nil
	}
	log.Printf("[App] Closed (%d notes in journal)", a.journal.Len())
}

// Scene 返回场景
func (a *App) Scene() *scenes.HeartScene {
	return a.scene
}

// IsVerbose 返回是否启用了详细日志
func (a *App) IsVerbose() bool {
	return a.verbose
}

// whiteImage 1x1 白色子图，供 DrawTriangles 使用顶点色着色
func (a *App) whiteImage() *ebiten.Image {
	if a.whitePixel == nil {
		img := ebiten.NewImage(3, 3)
		img.Fill(color.White)
		a.whitePixel = img.SubImage(image.Rect(1, 1, 2, 2)).(*ebiten.Image)
	}
	return a.whitePixel
}
