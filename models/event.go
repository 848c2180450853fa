package models

// 推送给界面的事件类型
const (
	EventNotice        = "notice"
	EventError         = "error"
	EventPlayerAdded   = "player_added"
	EventPlayerRemoved = "player_removed"
	EventRolesChanged  = "roles_changed"
	EventGameStarted   = "game_started"
	EventRoleRevealed  = "role_revealed"
	EventPhaseChanged  = "phase_changed"
	EventNightAction   = "night_action"
	EventSeerVision    = "seer_vision"
	EventNightResolved = "night_resolved"
	EventEliminated    = "player_eliminated"
	EventGameOver      = "game_over"
	EventGameReset     = "game_reset"
	EventTimerTick     = "timer_tick"
	EventTimerExpired  = "timer_expired"
)

// 通知级别
const (
	LevelInfo    = "info"
	LevelSuccess = "success"
	LevelWarning = "warning"
	LevelError   = "error"
)

// Event 引擎发出的通知
type Event struct {
	Type    string                 `json:"type"`
	Level   string                 `json:"level,omitempty"`
	Message string                 `json:"message,omitempty"`
	Data    map[string]interface{} `json:"data,omitempty"`
}
