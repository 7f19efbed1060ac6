package game

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/quasilyte/gdata/v2"
	"gopkg.in/yaml.v3"
)

// 存储路径常量
const (
	journalObject   = "journal"
	journalProperty = "notes"

	// DefaultJournalLimit 日志最多保留的随笔条数，超出时丢弃最旧的
	DefaultJournalLimit = 200
)

// journalData 日志的 YAML 存储结构
type journalData struct {
	Notes []Note `yaml:"notes"`
}

// JournalStore 基于 gdata 的随笔日志
//
// 整个日志作为一个 YAML 属性保存（journal/notes），每次写入都会整体覆盖。
// gdataManager 为 nil 时进入降级模式：随笔只保存在内存中。
//
// 并发安全：场景在互斥锁之外调用 SaveNote。
type JournalStore struct {
	mu           sync.Mutex
	gdataManager *gdata.Manager
	notes        []Note
	limit        int
}

// OpenJournal 打开应用数据目录下的日志
//
// gdata 初始化失败时返回降级模式的日志（仅内存），不会返回错误。
func OpenJournal(appName string) *JournalStore {
	manager, err := gdata.Open(gdata.Config{
		AppName: appName,
	})
	if err != nil {
		log.Printf("[JournalStore] Warning: gdata unavailable: %v (notes kept in memory)", err)
		manager = nil
	}

	js, err := NewJournalStore(manager, DefaultJournalLimit)
	if err != nil {
		log.Printf("[JournalStore] Warning: %v", err)
	}
	return js
}

// NewJournalStore 创建日志并尝试加载已保存的随笔
//
// 参数：
//   - gdataManager: 可为 nil（降级模式）
//   - limit: 保留条数上限，<= 0 时使用 DefaultJournalLimit
//
// 返回：
//   - *JournalStore: 始终非 nil
//   - error: 加载失败时返回（日志仍可使用，从空开始）
func NewJournalStore(gdataManager *gdata.Manager, limit int) (*JournalStore, error) {
	if limit <= 0 {
		limit = DefaultJournalLimit
	}
	js := &JournalStore{
		gdataManager: gdataManager,
		limit:        limit,
	}
	if err := js.Load(); err != nil {
		return js, fmt.Errorf("failed to load journal: %w", err)
	}
	return js, nil
}

// Load 从 gdata 重新加载日志
func (js *JournalStore) Load() error {
	js.mu.Lock()
	defer js.mu.Unlock()

	js.notes = nil
	if js.gdataManager == nil {
		return nil
	}
	if !js.gdataManager.ObjectPropExists(journalObject, journalProperty) {
		return nil
	}

	data, err := js.gdataManager.LoadObjectProp(journalObject, journalProperty)
	if err != nil {
		return fmt.Errorf("failed to read journal: %w", err)
	}

	var loaded journalData
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		return fmt.Errorf("failed to unmarshal journal: %w", err)
	}
	js.notes = loaded.Notes
	js.trimLocked()

	log.Printf("[JournalStore] Loaded %d notes", len(js.notes))
	return nil
}

// SaveNote 追加一条随笔并持久化
//
// 持久化失败时随笔仍保留在内存中。
func (js *JournalStore) SaveNote(note Note) error {
	js.mu.Lock()
	defer js.mu.Unlock()

	js.notes = append(js.notes, note)
	js.trimLocked()

	if js.gdataManager == nil {
		return nil
	}

	data, err := yaml.Marshal(journalData{Notes: js.notes})
	if err != nil {
		return fmt.Errorf("failed to marshal journal: %w", err)
	}
	if err := js.gdataManager.SaveObjectProp(journalObject, journalProperty, data); err != nil {
		return fmt.Errorf("failed to save journal: %w", err)
	}
	return nil
}

// RecentNotes 返回最近的 limit 条随笔副本（从旧到新），limit <= 0 返回全部
func (js *JournalStore) RecentNotes(_ context.Context, limit int) ([]Note, error) {
	js.mu.Lock()
	defer js.mu.Unlock()

	start := 0
	if limit > 0 && len(js.notes) > limit {
		start = len(js.notes) - limit
	}
	out := make([]Note, len(js.notes)-start)
	copy(out, js.notes[start:])
	return out, nil
}

// Len 返回当前随笔条数
func (js *JournalStore) Len() int {
	js.mu.Lock()
	defer js.mu.Unlock()
	return len(js.notes)
}

// Persistent 是否连接了 gdata 存储
func (js *JournalStore) Persistent() bool {
	return js.gdataManager != nil
}

func (js *JournalStore) trimLocked() {
	if over := len(js.notes) - js.limit; over > 0 {
		js.notes = append([]Note(nil), js.notes[over:]...)
	}
}
