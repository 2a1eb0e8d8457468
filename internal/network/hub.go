package network

import (
	"sync"

	"github.com/sirupsen/logrus"

	"warplanes-server/internal/domain"
	"warplanes-server/pkg/api"
	"warplanes-server/pkg/logger"
)

// Размер личного канала. Медленный клиент теряет сообщения, а не тормозит матч.
const inboxSize = 100

type seat struct {
	matchID string
	side    domain.Side
}

// Broadcaster занимается только рассылкой сообщений подписчикам.
// Подписчик - это сторона конкретного матча: WebSocket-клиент или бот.
type Broadcaster struct {
	mu          sync.RWMutex
	subscribers map[seat]chan api.ServerMessage
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		subscribers: make(map[seat]chan api.ServerMessage),
	}
}

// Register создает личный канал для стороны матча.
// Если сторона уже была подписана (переподключение), старый канал закрывается,
// и прежнее соединение завершается само.
func (b *Broadcaster) Register(matchID string, side domain.Side) chan api.ServerMessage {
	b.mu.Lock()
	defer b.mu.Unlock()

	key := seat{matchID, side}
	if old, ok := b.subscribers[key]; ok {
		close(old)
	}

	ch := make(chan api.ServerMessage, inboxSize)
	b.subscribers[key] = ch
	return ch
}

// Unregister удаляет подписчика, только если ch все еще его текущий канал.
// Возвращает false, если сторону уже перехватило новое соединение.
func (b *Broadcaster) Unregister(matchID string, side domain.Side, ch chan api.ServerMessage) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	key := seat{matchID, side}
	current, ok := b.subscribers[key]
	if !ok || current != ch {
		return false
	}
	close(current)
	delete(b.subscribers, key)
	return true
}

// Drop отписывает обе стороны матча. Вызывается, когда матч удаляется.
func (b *Broadcaster) Drop(matchID string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, side := range domain.Sides {
		key := seat{matchID, side}
		if ch, ok := b.subscribers[key]; ok {
			close(ch)
			delete(b.subscribers, key)
		}
	}
}

// SendTo отправляет сообщение одной стороне (Unicast)
func (b *Broadcaster) SendTo(matchID string, side domain.Side, msg api.ServerMessage) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	b.deliver(seat{matchID, side}, msg)
}

// Broadcast отправляет сообщение обеим сторонам матча
func (b *Broadcaster) Broadcast(matchID string, msg api.ServerMessage) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, side := range domain.Sides {
		b.deliver(seat{matchID, side}, msg)
	}
}

// deliver вызывается под RLock.
func (b *Broadcaster) deliver(key seat, msg api.ServerMessage) {
	ch, ok := b.subscribers[key]
	if !ok {
		return
	}
	select {
	case ch <- msg:
	default:
		logger.Log.WithFields(logrus.Fields{
			"match": key.matchID,
			"side":  key.side,
			"type":  msg.Type,
		}).Warn("Hub: inbox full, message dropped")
	}
}

// HasSubscriber проверяет, подключен ли кто-то к стороне
func (b *Broadcaster) HasSubscriber(matchID string, side domain.Side) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	_, ok := b.subscribers[seat{matchID, side}]
	return ok
}

// SubscriberCount возвращает количество подключенных сторон матча.
func (b *Broadcaster) SubscriberCount(matchID string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	n := 0
	for _, side := range domain.Sides {
		if _, ok := b.subscribers[seat{matchID, side}]; ok {
			n++
		}
	}
	return n
}
