package websocket

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/wfunc/card-slot/internal/game"
	"go.uber.org/zap"
)

// Pusher 引擎通知推送器
// 订阅会话的引擎通知，按通知类型原样推送给会话的所有客户端。
// 推送异步执行，引擎回合处理不等待网络IO。
type Pusher struct {
	hub    *Hub
	logger *zap.Logger
}

// NewPusher 创建通知推送器
func NewPusher(hub *Hub, logger *zap.Logger) *Pusher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pusher{
		hub:    hub,
		logger: logger,
	}
}

// SubscriberFor 为会话创建通知订阅者
func (p *Pusher) SubscriberFor(sessionID string) game.EventHandler {
	return func(event game.Event) {
		data, err := json.Marshal(event.Payload)
		if err != nil {
			p.logger.Error("序列化通知负载失败",
				zap.String("session_id", sessionID),
				zap.String("event", string(event.Type)),
				zap.Error(err))
			return
		}

		msg := &Message{
			Type:      string(event.Type),
			SessionID: sessionID,
			Data:      data,
			Timestamp: event.Timestamp.Unix(),
		}

		// 通知在引擎锁内分发，推送放到goroutine避免阻塞回合处理
		go p.push(sessionID, msg)
	}
}

// push 推送消息给会话客户端
func (p *Pusher) push(sessionID string, msg *Message) {
	err := p.hub.SendToSession(sessionID, msg)
	if err != nil {
		// 没有在线客户端不算错误，客户端重连后通过状态快照追平
		if errors.Is(err, ErrSessionNotConnected) {
			return
		}
		p.logger.Warn("通知推送失败",
			zap.String("session_id", sessionID),
			zap.String("type", msg.Type),
			zap.Error(err))
	}
}

// PushState 主动推送对局状态快照
func (p *Pusher) PushState(sessionID string, snapshot *game.GameSnapshot) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}

	msg := &Message{
		Type:      MessageTypeGameState,
		SessionID: sessionID,
		Data:      data,
		Timestamp: time.Now().Unix(),
	}

	return p.hub.SendToSession(sessionID, msg)
}
