package game

import (
	"context"
	"fmt"
	"log"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// sqlWriteTimeout 单条随笔写入数据库的超时
const sqlWriteTimeout = 3 * time.Second

type noteModel struct {
	ID        uint `gorm:"primaryKey"`
	Text      string
	Band      string `gorm:"index"`
	Accent    string
	Mood      float64
	CreatedAt time.Time `gorm:"index"`
}

func (noteModel) TableName() string {
	return "mood_notes"
}

// SQLNoteStore 将随笔写入 PostgreSQL
type SQLNoteStore struct {
	db *gorm.DB
}

// NewSQLNoteStore 连接数据库并确保表结构存在
func NewSQLNoteStore(ctx context.Context, databaseURL string) (*SQLNoteStore, error) {
	return newSQLNoteStore(ctx, postgres.Open(databaseURL))
}

func newSQLNoteStore(ctx context.Context, dialector gorm.Dialector) (*SQLNoteStore, error) {
	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to open gorm database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql db: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := db.WithContext(ctx).AutoMigrate(&noteModel{}); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to migrate notes table: %w", err)
	}

	log.Printf("[SQLNoteStore] Connected, table %s ready", noteModel{}.TableName())
	return &SQLNoteStore{db: db}, nil
}

// SaveNote 实现 NoteSink
func (s *SQLNoteStore) SaveNote(note Note) error {
	ctx, cancel := context.WithTimeout(context.Background(), sqlWriteTimeout)
	defer cancel()

	record := noteModelFrom(note)
	if err := s.db.WithContext(ctx).Create(&record).Error; err != nil {
		return fmt.Errorf("failed to insert note: %w", err)
	}
	return nil
}

// RecentNotes 返回最近的 limit 条随笔（从旧到新）
func (s *SQLNoteStore) RecentNotes(ctx context.Context, limit int) ([]Note, error) {
	var records []noteModel
	if err := s.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to query notes: %w", err)
	}

	notes := make([]Note, len(records))
	for i, record := range records {
		notes[len(records)-1-i] = record.toNote()
	}
	return notes, nil
}

// Close 关闭数据库连接
func (s *SQLNoteStore) Close() {
	if s.db == nil {
		return
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return
	}
	_ = sqlDB.Close()
}

func noteModelFrom(note Note) noteModel {
	createdAt := note.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	return noteModel{
		Text:      note.Text,
		Band:      note.Band,
		Accent:    note.Accent,
		Mood:      note.Mood,
		CreatedAt: createdAt,
	}
}

func (m noteModel) toNote() Note {
	return Note{
		Text:      m.Text,
		Band:      m.Band,
		Accent:    m.Accent,
		Mood:      m.Mood,
		CreatedAt: m.CreatedAt,
	}
}
