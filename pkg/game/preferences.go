package game

import (
	"fmt"
	"log"
	"math"
	"sync"

	"github.com/quasilyte/gdata/v2"
	"gopkg.in/yaml.v3"
)

// 存储路径常量
const (
	preferencesObject   = "settings"
	preferencesProperty = "global"

	// MusicVolumeStep +/- 键每次调整的音量
	MusicVolumeStep = 0.1
)

// Settings 应用偏好设置（与随笔日志分开保存）
type Settings struct {
	// 音频设置
	MusicVolume  float64 `yaml:"musicVolume"`  // 背景音乐音量 0.0 ~ 1.0
	MusicEnabled bool    `yaml:"musicEnabled"` // 音乐开关

	// 显示设置
	Fullscreen bool `yaml:"fullscreen"` // 启动时是否全屏
	ShowHUD    bool `yaml:"showHUD"`    // 是否显示心情数值和提示
}

// DefaultSettings 返回默认设置
func DefaultSettings() Settings {
	return Settings{
		MusicVolume:  0.7,
		MusicEnabled: true,
		Fullscreen:   false,
		ShowHUD:      true,
	}
}

// Preferences 偏好设置管理器
//
// gdataManager 为 nil 时为降级模式：修改只保存在内存中，Save 不报错。
type Preferences struct {
	mu           sync.Mutex
	gdataManager *gdata.Manager
	settings     Settings
}

// OpenPreferences 打开应用数据目录下的偏好设置，失败时降级为内存模式
func OpenPreferences(appName string) *Preferences {
	manager, err := gdata.Open(gdata.Config{
		AppName: appName,
	})
	if err != nil {
		log.Printf("[Preferences] Warning: gdata unavailable: %v (using defaults)", err)
		manager = nil
	}
	return NewPreferences(manager)
}

// NewPreferences 创建偏好设置管理器并尝试加载已保存的设置
//
// 加载失败不是致命错误，使用默认设置。
func NewPreferences(gdataManager *gdata.Manager) *Preferences {
	p := &Preferences{
		gdataManager: gdataManager,
		settings:     DefaultSettings(),
	}
	if err := p.Load(); err != nil {
		log.Printf("[Preferences] Warning: %v (using defaults)", err)
	}
	return p
}

// Load 从 gdata 加载设置，不存在时使用默认值
func (p *Preferences) Load() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.settings = DefaultSettings()
	if p.gdataManager == nil || !p.gdataManager.ObjectPropExists(preferencesObject, preferencesProperty) {
		return nil
	}

	data, err := p.gdataManager.LoadObjectProp(preferencesObject, preferencesProperty)
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	loaded := DefaultSettings()
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		return fmt.Errorf("failed to unmarshal settings: %w", err)
	}
	loaded.MusicVolume = clampUnitVolume(loaded.MusicVolume)

	p.settings = loaded
	log.Printf("[Preferences] Settings loaded")
	return nil
}

// Save 保存设置到 gdata
func (p *Preferences) Save() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.gdataManager == nil {
		return nil
	}

	data, err := yaml.Marshal(p.settings)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}
	if err := p.gdataManager.SaveObjectProp(preferencesObject, preferencesProperty, data); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return nil
}

// Settings 返回当前设置的副本
func (p *Preferences) Settings() Settings {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.settings
}

// Update 修改设置（仅内存），需调用 Save 持久化
func (p *Preferences) Update(fn func(*Settings)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fn(&p.settings)
	p.settings.MusicVolume = clampUnitVolume(p.settings.MusicVolume)
}

// StepMusicVolume 按 steps 个 MusicVolumeStep 调整音量，返回调整后的音量
//
// 结果取整到步长，反复加减不会累积浮点误差。
func (p *Preferences) StepMusicVolume(steps int) float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	v := p.settings.MusicVolume + float64(steps)*MusicVolumeStep
	v = math.Round(v/MusicVolumeStep) * MusicVolumeStep
	p.settings.MusicVolume = clampUnitVolume(v)
	return p.settings.MusicVolume
}

// ToggleMusic 切换音乐开关，返回切换后的状态
func (p *Preferences) ToggleMusic() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.settings.MusicEnabled = !p.settings.MusicEnabled
	return p.settings.MusicEnabled
}
