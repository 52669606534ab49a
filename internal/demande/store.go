package demande

import (
	"sync"

	"github.com/mariamguerraf/Systeme-de-Gestion-des-Ressources-Humaines-et-des-Demandes-Administratives-sub000/internal/model"
)

// Store 当前会话可见申请的本地索引副本
//
// 只在后端调用成功之后写入；顺序保持后端返回的顺序，新建的申请排在最前。
type Store struct {
	mu    sync.RWMutex
	byID  map[int64]model.Demande
	order []int64
}

// NewStore 创建空 Store
func NewStore() *Store {
	return &Store{byID: make(map[int64]model.Demande)}
}

// Replace 用后端列表整体替换
func (s *Store) Replace(list []model.Demande) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID = make(map[int64]model.Demande, len(list))
	s.order = make([]int64, 0, len(list))
	for _, d := range list {
		if _, dup := s.byID[d.ID]; !dup {
			s.order = append(s.order, d.ID)
		}
		s.byID[d.ID] = d
	}
}

// Upsert 已存在则原位替换，否则插入到最前
func (s *Store) Upsert(d model.Demande) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[d.ID]; !ok {
		s.order = append([]int64{d.ID}, s.order...)
	}
	s.byID[d.ID] = d
}

// Remove 删除；不存在时返回 false
func (s *Store) Remove(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[id]; !ok {
		return false
	}
	delete(s.byID, id)
	for i, x := range s.order {
		if x == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

// Get 按 id 读取
func (s *Store) Get(id int64) (model.Demande, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.byID[id]
	return d, ok
}

// List 按顺序返回副本
func (s *Store) List() []model.Demande {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Demande, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.byID[id])
	}
	return out
}

// Len 条目数
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

// Clear 清空（登出时调用）
func (s *Store) Clear() {
	s.Replace(nil)
}
