package services

import (
	"encoding/json"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/bonmvsk/nightfall-werewolf-moderator/models"
)

const (
	writeTimeout = 5 * time.Second
	pingInterval = 15 * time.Second
	maxFailures  = 3
	readLimit    = 64 * 1024
)

// Message 推送给界面的消息
type Message struct {
	Type  string            `json:"type"`
	Event *models.Event     `json:"event,omitempty"`
	State *models.GameState `json:"state,omitempty"`
}

type connection struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
}

func (c *connection) writeJSON(v interface{}) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	err := c.conn.WriteJSON(v)
	_ = c.conn.SetWriteDeadline(time.Time{})
	return err
}

func (c *connection) ping() error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	return c.conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(time.Second))
}

// WebSocketManager 管理界面的 WebSocket 连接，把引擎事件和最新状态推送出去
type WebSocketManager struct {
	connections map[string]*connection // connectionID -> connection
	game        *GameController
	debug       bool
	mutex       sync.RWMutex
}

// NewWebSocketManager 创建WebSocket管理器实例
func NewWebSocketManager(gc *GameController) *WebSocketManager {
	return &WebSocketManager{
		connections: make(map[string]*connection),
		game:        gc,
	}
}

// SetGameController 设置状态来源
func (wm *WebSocketManager) SetGameController(gc *GameController) {
	wm.mutex.Lock()
	defer wm.mutex.Unlock()

	wm.game = gc
}

// SetDebug 打开逐条事件日志
func (wm *WebSocketManager) SetDebug(debug bool) {
	wm.debug = debug
}

// RegisterConnection 注册新连接并立即发送一次完整状态
func (wm *WebSocketManager) RegisterConnection(conn *websocket.Conn) string {
	id := uuid.New().String()
	c := &connection{conn: conn}

	wm.mutex.Lock()
	wm.connections[id] = c
	wm.mutex.Unlock()

	log.Printf("[WebSocket] 新连接 %s, 当前连接数: %d", id, wm.ConnectionCount())

	if err := c.writeJSON(wm.syncMessage()); err != nil {
		log.Printf("[WebSocket] 发送初始状态失败: %v", err)
	}
	go wm.handleMessages(id, c)
	go wm.startPingHandler(id, c)
	return id
}

// ConnectionCount 当前连接数
func (wm *WebSocketManager) ConnectionCount() int {
	wm.mutex.RLock()
	defer wm.mutex.RUnlock()

	return len(wm.connections)
}

// Publish 向所有连接广播事件和最新状态，实现 Notifier
func (wm *WebSocketManager) Publish(event models.Event) {
	msg := Message{Type: "event", Event: &event, State: wm.snapshot()}

	wm.mutex.RLock()
	targets := make(map[string]*connection, len(wm.connections))
	for id, c := range wm.connections {
		targets[id] = c
	}
	wm.mutex.RUnlock()

	if wm.debug {
		log.Printf("[WebSocket广播] 事件 %s 发往 %d 个连接", event.Type, len(targets))
	}

	for id, c := range targets {
		if err := c.writeJSON(msg); err != nil {
			log.Printf("[WebSocket广播] 向连接 %s 发送失败: %v", id, err)
			go wm.RemoveConnection(id)
		}
	}
}

// RemoveConnection 关闭并移除连接
func (wm *WebSocketManager) RemoveConnection(id string) {
	wm.mutex.Lock()
	c, exists := wm.connections[id]
	if exists {
		delete(wm.connections, id)
	}
	wm.mutex.Unlock()

	if !exists {
		return
	}

	c.writeMu.Lock()
	closeMsg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye")
	err := c.conn.WriteControl(websocket.CloseMessage, closeMsg, time.Now().Add(100*time.Millisecond))
	c.writeMu.Unlock()
	if err != nil && !errors.Is(err, websocket.ErrCloseSent) {
		log.Printf("[WebSocket] 发送关闭消息失败: %v", err)
	}
	c.conn.Close()

	log.Printf("[WebSocket] 已移除连接 %s", id)
}

// CloseAll 关闭全部连接
func (wm *WebSocketManager) CloseAll() {
	wm.mutex.RLock()
	ids := make([]string, 0, len(wm.connections))
	for id := range wm.connections {
		ids = append(ids, id)
	}
	wm.mutex.RUnlock()

	for _, id := range ids {
		wm.RemoveConnection(id)
	}
}

func (wm *WebSocketManager) snapshot() *models.GameState {
	wm.mutex.RLock()
	gc := wm.game
	wm.mutex.RUnlock()

	if gc == nil {
		return nil
	}
	return gc.Snapshot()
}

func (wm *WebSocketManager) syncMessage() Message {
	return Message{Type: "sync", State: wm.snapshot()}
}

// startPingHandler 心跳检测，连续失败达到上限后移除连接
func (wm *WebSocketManager) startPingHandler(id string, c *connection) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	failures := 0
	for range ticker.C {
		wm.mutex.RLock()
		_, alive := wm.connections[id]
		wm.mutex.RUnlock()
		if !alive {
			return
		}

		if err := c.ping(); err != nil {
			failures++
			log.Printf("[WebSocket] 心跳检测失败 (%d/%d): %v", failures, maxFailures, err)
			if failures >= maxFailures {
				wm.RemoveConnection(id)
				return
			}
			continue
		}
		failures = 0
	}
}

// handleMessages 读取界面发来的消息，目前只处理状态同步请求
func (wm *WebSocketManager) handleMessages(id string, c *connection) {
	c.conn.SetReadLimit(readLimit)

	for {
		_, p, err := c.conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[WebSocket] 读取消息失败: %v", err)
			}
			wm.RemoveConnection(id)
			return
		}

		var msg struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(p, &msg); err != nil {
			log.Printf("[WebSocket] 解析消息失败: %v", err)
			continue
		}

		switch msg.Type {
		case "sync":
			if err := c.writeJSON(wm.syncMessage()); err != nil {
				log.Printf("[WebSocket] 同步状态失败: %v", err)
			}
		default:
			log.Printf("[WebSocket] 未知的消息类型: %s", msg.Type)
		}
	}
}
