package network

import (
	"testing"

	"warplanes-server/internal/domain"
	"warplanes-server/pkg/api"
)

func receive(t *testing.T, ch chan api.ServerMessage) api.ServerMessage {
	t.Helper()
	select {
	case msg, ok := <-ch:
		if !ok {
			t.Fatal("channel closed")
		}
		return msg
	default:
		t.Fatal("no message")
	}
	return api.ServerMessage{}
}

func empty(ch chan api.ServerMessage) bool {
	select {
	case <-ch:
		return false
	default:
		return true
	}
}

func TestBroadcaster_Routing(t *testing.T) {
	b := NewBroadcaster()
	p1 := b.Register("m1", domain.SidePlayer1)
	p2 := b.Register("m1", domain.SidePlayer2)
	other := b.Register("m2", domain.SidePlayer1)

	b.SendTo("m1", domain.SidePlayer2, api.ServerMessage{Type: "ONLY_P2"})
	if got := receive(t, p2).Type; got != "ONLY_P2" {
		t.Errorf("p2 got %q", got)
	}
	if !empty(p1) || !empty(other) {
		t.Error("unicast leaked to other subscribers")
	}

	b.Broadcast("m1", api.ServerMessage{Type: "BOTH"})
	if receive(t, p1).Type != "BOTH" || receive(t, p2).Type != "BOTH" {
		t.Error("broadcast missed a side")
	}
	if !empty(other) {
		t.Error("broadcast leaked to another match")
	}

	if n := b.SubscriberCount("m1"); n != 2 {
		t.Errorf("SubscriberCount(m1) = %d, want 2", n)
	}
}

func TestBroadcaster_ReconnectReplacesChannel(t *testing.T) {
	b := NewBroadcaster()
	old := b.Register("m1", domain.SidePlayer1)
	fresh := b.Register("m1", domain.SidePlayer1)

	if _, ok := <-old; ok {
		t.Error("old channel should be closed")
	}

	// Отписка старого соединения не трогает новое
	if b.Unregister("m1", domain.SidePlayer1, old) {
		t.Error("Unregister(old) = true, want false")
	}
	if !b.HasSubscriber("m1", domain.SidePlayer1) {
		t.Fatal("fresh subscriber was removed")
	}

	if !b.Unregister("m1", domain.SidePlayer1, fresh) {
		t.Error("Unregister(fresh) = false, want true")
	}
	if b.HasSubscriber("m1", domain.SidePlayer1) {
		t.Error("subscriber still present")
	}
}

func TestBroadcaster_FullInboxDrops(t *testing.T) {
	b := NewBroadcaster()
	ch := b.Register("m1", domain.SidePlayer1)

	for i := 0; i < inboxSize+10; i++ {
		b.SendTo("m1", domain.SidePlayer1, api.ServerMessage{Type: "SPAM"})
	}
	if len(ch) != inboxSize {
		t.Errorf("len = %d, want %d", len(ch), inboxSize)
	}
}

func TestBroadcaster_Drop(t *testing.T) {
	b := NewBroadcaster()
	p1 := b.Register("m1", domain.SidePlayer1)
	b.Register("m1", domain.SidePlayer2)

	b.Drop("m1")
	if b.SubscriberCount("m1") != 0 {
		t.Error("subscribers left after Drop")
	}
	if _, ok := <-p1; ok {
		t.Error("channel should be closed after Drop")
	}
}
