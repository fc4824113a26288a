// Package history 保存本次会话内的指南生成记录。
//
// Store 只在内存中维护列表，进程退出即丢失；所有修改都经过 Append / ReplaceAll，
// 读者拿到的永远是副本。
package history

import (
	"sync"

	"docsynth/internal/model"
)

type Store struct {
	mu      sync.RWMutex
	records []model.HistoryRecord
	subs    map[int]chan []model.HistoryRecord
	nextSub int
}

func New(initial ...model.HistoryRecord) *Store {
	s := &Store{subs: make(map[int]chan []model.HistoryRecord)}
	if len(initial) > 0 {
		s.records = cloneRecords(initial)
	}
	return s
}

// ReplaceAll 丢弃当前列表并原样装入 records（dashboard 从服务端拉取历史时使用）
func (s *Store) ReplaceAll(records []model.HistoryRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = cloneRecords(records)
	s.notifyLocked()
}

// Append 追加一条记录到末尾。不校验 id 唯一性，由调用方保证。
func (s *Store) Append(record model.HistoryRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, record)
	s.notifyLocked()
}

// Records 返回当前列表的副本
func (s *Store) Records() []model.HistoryRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneRecords(s.records)
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

func (s *Store) Contains(id model.RecordID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.records {
		if r.ID == id {
			return true
		}
	}
	return false
}

// CountByProjectType 按项目类型统计记录数（dashboard 柱状图）
func (s *Store) CountByProjectType() map[string]int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	counts := make(map[string]int)
	for _, r := range s.records {
		counts[r.ProjectType]++
	}
	return counts
}

// Subscribe 注册一个读者，每次修改后收到最新快照。
// 读者处理不过来时只保留最新的一份快照。返回的 cancel 用于注销并关闭通道。
func (s *Store) Subscribe() (<-chan []model.HistoryRecord, func()) {
	ch := make(chan []model.HistoryRecord, 1)

	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	s.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

// notifyLocked 调用方必须持有写锁；发送只在写锁内发生，所以腾出缓冲后的发送不会阻塞
func (s *Store) notifyLocked() {
	for _, ch := range s.subs {
		select {
		case <-ch:
		default:
		}
		ch <- cloneRecords(s.records)
	}
}

func cloneRecords(in []model.HistoryRecord) []model.HistoryRecord {
	out := make([]model.HistoryRecord, len(in))
	copy(out, in)
	return out
}
