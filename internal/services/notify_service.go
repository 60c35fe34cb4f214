// internal/services/notify_service.go
package services

import (
	"sync"

	"github.com/lovesim/lovesim/internal/game"
)

// 每个订阅者的通知缓冲大小
const noticeBufferSize = 64

// sessionHub 维护单个对局的全部订阅通道
type sessionHub struct {
	mutex       sync.Mutex
	subscribers map[chan game.Notice]bool
	closed      bool
}

// NotifyService 把会话状态通知分发给WebSocket订阅者
// 发送是非阻塞的，通道满时丢弃该条通知
type NotifyService struct {
	mutex sync.RWMutex
	hubs  map[string]*sessionHub
}

// NewNotifyService 创建通知分发服务
func NewNotifyService() *NotifyService {
	return &NotifyService{
		hubs: make(map[string]*sessionHub),
	}
}

func (s *NotifyService) hub(sessionID string) *sessionHub {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if h, exists := s.hubs[sessionID]; exists {
		return h
	}
	h := &sessionHub{subscribers: make(map[chan game.Notice]bool)}
	s.hubs[sessionID] = h
	return h
}

// Subscribe 订阅指定对局的通知流
func (s *NotifyService) Subscribe(sessionID string) chan game.Notice {
	h := s.hub(sessionID)

	h.mutex.Lock()
	defer h.mutex.Unlock()

	ch := make(chan game.Notice, noticeBufferSize)
	if h.closed {
		close(ch)
		return ch
	}
	h.subscribers[ch] = true
	return ch
}

// Unsubscribe 取消订阅并关闭通道
func (s *NotifyService) Unsubscribe(sessionID string, ch chan game.Notice) {
	s.mutex.RLock()
	h, exists := s.hubs[sessionID]
	s.mutex.RUnlock()
	if !exists {
		return
	}

	h.mutex.Lock()
	defer h.mutex.Unlock()

	if h.subscribers[ch] {
		delete(h.subscribers, ch)
		close(ch)
	}
}

// Publish 把一条通知分发给对局的所有订阅者
func (s *NotifyService) Publish(sessionID string, notice game.Notice) {
	s.mutex.RLock()
	h, exists := s.hubs[sessionID]
	s.mutex.RUnlock()
	if !exists {
		return
	}

	h.mutex.Lock()
	defer h.mutex.Unlock()

	for subscriber := range h.subscribers {
		select {
		case subscriber <- notice:
		default:
		}
	}
}

// CloseSession 关闭对局的全部订阅并移除分发器
func (s *NotifyService) CloseSession(sessionID string) {
	s.mutex.Lock()
	h, exists := s.hubs[sessionID]
	delete(s.hubs, sessionID)
	s.mutex.Unlock()
	if !exists {
		return
	}

	h.mutex.Lock()
	defer h.mutex.Unlock()

	h.closed = true
	for subscriber := range h.subscribers {
		close(subscriber)
		delete(h.subscribers, subscriber)
	}
}
