// Package events 进程内类型化事件总线
//
// 发布是同步的：Publish 返回前，发布时刻已注册的所有监听器都已按注册顺序被调用。
// 不保证跨类型的顺序，也不做持久化或重放。
package events

import (
	"reflect"
	"sync"
)

// Bus 事件总线
type Bus struct {
	mu        sync.RWMutex
	nextID    uint64
	listeners map[reflect.Type][]listener
}

type listener struct {
	id uint64
	fn func(any)
}

// NewBus 创建事件总线
func NewBus() *Bus {
	return &Bus{listeners: make(map[reflect.Type][]listener)}
}

// Subscribe 注册类型为 T 的事件监听器，返回取消订阅函数（可重复调用）
func Subscribe[T any](b *Bus, fn func(T)) (unsubscribe func()) {
	t := reflect.TypeFor[T]()

	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.listeners[t] = append(b.listeners[t], listener{
		id: id,
		fn: func(v any) { fn(v.(T)) },
	})
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { b.remove(t, id) })
	}
}

// Publish 同步派发事件
func Publish[T any](b *Bus, event T) {
	t := reflect.TypeFor[T]()

	b.mu.RLock()
	snapshot := append([]listener(nil), b.listeners[t]...)
	b.mu.RUnlock()

	for _, l := range snapshot {
		l.fn(event)
	}
}

// Count 当前某类型的监听器数量
func Count[T any](b *Bus) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.listeners[reflect.TypeFor[T]()])
}

func (b *Bus) remove(t reflect.Type, id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	ls := b.listeners[t]
	for i, l := range ls {
		if l.id == id {
			b.listeners[t] = append(ls[:i:i], ls[i+1:]...)
			break
		}
	}
	if len(b.listeners[t]) == 0 {
		delete(b.listeners, t)
	}
}
