// internal/services/notify_service_test.go
package services

import (
	"testing"

	"github.com/lovesim/lovesim/internal/game"
)

func TestNotifyPublishReachesSubscribers(t *testing.T) {
	svc := NewNotifyService()

	ch1 := svc.Subscribe("s1")
	ch2 := svc.Subscribe("s1")

	svc.Publish("s1", game.Notice{Type: game.NoticeAffection, Payload: 15})

	for i, ch := range []chan game.Notice{ch1, ch2} {
		select {
		case n := <-ch:
			if n.Type != game.NoticeAffection {
				t.Errorf("订阅者%d收到错误类型: %s", i, n.Type)
			}
		default:
			t.Errorf("订阅者%d未收到通知", i)
		}
	}
}

func TestNotifyPublishToUnknownSessionIsNoop(t *testing.T) {
	svc := NewNotifyService()
	svc.Publish("missing", game.Notice{Type: game.NoticeMessage})
}

func TestNotifyUnsubscribeClosesChannel(t *testing.T) {
	svc := NewNotifyService()

	ch := svc.Subscribe("s1")
	svc.Unsubscribe("s1", ch)

	if _, open := <-ch; open {
		t.Error("取消订阅后通道应已关闭")
	}

	// 重复取消订阅不应崩溃
	svc.Unsubscribe("s1", ch)

	svc.Publish("s1", game.Notice{Type: game.NoticeMessage})
}

func TestNotifyFullBufferDropsNotice(t *testing.T) {
	svc := NewNotifyService()
	ch := svc.Subscribe("s1")

	for i := 0; i < noticeBufferSize+10; i++ {
		svc.Publish("s1", game.Notice{Type: game.NoticeGiftProgress})
	}

	if len(ch) != noticeBufferSize {
		t.Errorf("通道满后应丢弃通知, 缓冲长度 %d", len(ch))
	}
}

func TestNotifyCloseSession(t *testing.T) {
	svc := NewNotifyService()

	ch := svc.Subscribe("s1")
	svc.CloseSession("s1")

	if _, open := <-ch; open {
		t.Error("关闭对局后订阅通道应已关闭")
	}

	// 关闭后重新订阅会得到全新的分发器
	late := svc.Subscribe("s1")
	svc.Publish("s1", game.Notice{Type: game.NoticeStage})
	select {
	case n := <-late:
		if n.Type != game.NoticeStage {
			t.Errorf("新分发器收到错误类型: %s", n.Type)
		}
	default:
		t.Error("重新订阅后应能收到通知")
	}
}
