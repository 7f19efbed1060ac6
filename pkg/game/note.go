package game

import (
	"context"
	"errors"
	"time"
)

// Note 一条心情随笔
//
// 由场景在生成随笔时发出，持久化方式由 NoteSink 决定。
type Note struct {
	Text      string    `yaml:"text"`
	Band      string    `yaml:"band"`   // 生成时所在色带名
	Accent    string    `yaml:"accent"` // 色带粒子色，"#rrggbb"
	Mood      float64   `yaml:"mood"`
	CreatedAt time.Time `yaml:"createdAt"`
}

// NoteSink 随笔的持久化接口
//
// 场景以 fire-and-forget 方式调用：返回的错误只会被记录，不影响场景状态。
type NoteSink interface {
	SaveNote(note Note) error
}

// MultiNoteSink 将随笔依次写入多个 sink
//
// 某个 sink 失败不会阻止后续 sink 写入，所有错误合并返回。
type MultiNoteSink []NoteSink

// SaveNote 实现 NoteSink
func (m MultiNoteSink) SaveNote(note Note) error {
	var errs []error
	for _, sink := range m {
		if sink == nil {
			continue
		}
		if err := sink.SaveNote(note); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// NoteHistory 可回读的随笔存储（JournalStore、SQLNoteStore）
type NoteHistory interface {
	RecentNotes(ctx context.Context, limit int) ([]Note, error)
}

// LatestNote 返回最新一条随笔；存储为空时 ok 为 false
func LatestNote(ctx context.Context, h NoteHistory) (note Note, ok bool, err error) {
	notes, err := h.RecentNotes(ctx, 1)
	if err != nil || len(notes) == 0 {
		return Note{}, false, err
	}
	return notes[len(notes)-1], true, nil
}
