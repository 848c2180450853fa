package services

import (
	"fmt"
	"log"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bonmvsk/nightfall-werewolf-moderator/models"
)

// DefaultMinPlayers 开局最少人数
const DefaultMinPlayers = 5

// DefaultTimerSettings 默认计时：白天5分钟，夜晚1分钟
var DefaultTimerSettings = models.TimerSettings{Day: 300, Night: 60}

// Notifier 接收引擎发出的事件，例如推送给界面
type Notifier interface {
	Publish(event models.Event)
}

// NotifierFunc 函数形式的 Notifier
type NotifierFunc func(event models.Event)

// Publish 调用函数本身
func (f NotifierFunc) Publish(event models.Event) {
	f(event)
}

type nopNotifier struct{}

func (nopNotifier) Publish(models.Event) {}

// Option 控制器配置项
type Option func(*GameController)

// WithRand 指定洗牌用的随机源
func WithRand(rng *rand.Rand) Option {
	return func(gc *GameController) {
		gc.rng = rng
	}
}

// WithIDGenerator 指定玩家ID生成方式
func WithIDGenerator(newID func() string) Option {
	return func(gc *GameController) {
		gc.newID = newID
	}
}

// WithNotifier 指定事件接收方
func WithNotifier(n Notifier) Option {
	return func(gc *GameController) {
		gc.notifier = n
	}
}

// WithTimerSettings 指定计时时长
func WithTimerSettings(settings models.TimerSettings) Option {
	return func(gc *GameController) {
		gc.settings = settings
	}
}

// WithMinPlayers 指定开局最少人数
func WithMinPlayers(n int) Option {
	return func(gc *GameController) {
		gc.minPlayers = n
	}
}

// GameController 一局游戏的流程控制器。
// 所有操作串行执行：先在副本上修改，成功后整体替换，失败时状态保持不变。
type GameController struct {
	game       *models.GameState
	rng        *rand.Rand
	newID      func() string
	notifier   Notifier
	settings   models.TimerSettings
	minPlayers int
	mutex      sync.Mutex
}

// NewGameController 创建游戏控制器实例
func NewGameController(opts ...Option) *GameController {
	gc := &GameController{
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
		newID:      func() string { return uuid.New().String() },
		notifier:   nopNotifier{},
		settings:   DefaultTimerSettings,
		minPlayers: DefaultMinPlayers,
	}
	for _, opt := range opts {
		opt(gc)
	}
	if gc.notifier == nil {
		gc.notifier = nopNotifier{}
	}

	gc.game = &models.GameState{
		Players:       make([]models.Player, 0),
		Phase:         models.PhaseSetup,
		Mode:          models.SystemMode,
		Settings:      gc.settings,
		SelectedRoles: RecommendRoles(0),
		WerewolfKills: 1,
	}
	resetTimers(gc.game)
	return gc
}

// apply 在状态副本上执行修改，成功才提交，事件在释放锁之后发出
func (gc *GameController) apply(op string, fn func(next *models.GameState) ([]models.Event, error)) error {
	gc.mutex.Lock()
	next := gc.game.Clone()
	events, err := fn(next)
	if err == nil {
		gc.game = next
	}
	gc.mutex.Unlock()

	if err != nil {
		log.Printf("[%s] 操作失败: %v", op, err)
		if IsValidation(err) {
			gc.notifier.Publish(models.Event{
				Type:    models.EventError,
				Level:   models.LevelError,
				Message: err.Error(),
				Data:    map[string]interface{}{"operation": op},
			})
		}
		return err
	}

	for _, ev := range events {
		gc.notifier.Publish(ev)
	}
	return nil
}

// Snapshot 返回当前状态的深拷贝
func (gc *GameController) Snapshot() *models.GameState {
	gc.mutex.Lock()
	defer gc.mutex.Unlock()

	return gc.game.Clone()
}

// MinPlayers 开局最少人数
func (gc *GameController) MinPlayers() int {
	return gc.minPlayers
}

// AddPlayer 添加玩家，名字不能为空且不区分大小写不能重复
func (gc *GameController) AddPlayer(name string) (models.Player, error) {
	var added models.Player
	err := gc.apply("add_player", func(next *models.GameState) ([]models.Event, error) {
		if next.Phase != models.PhaseSetup {
			return nil, fmt.Errorf("add player: %w", ErrWrongPhase)
		}
		trimmed := strings.TrimSpace(name)
		if trimmed == "" {
			return nil, ErrEmptyName
		}
		for _, p := range next.Players {
			if strings.EqualFold(p.Name, trimmed) {
				return nil, fmt.Errorf("%w: %q", ErrDuplicateName, trimmed)
			}
		}

		added = models.Player{
			ID:     gc.newID(),
			Name:   trimmed,
			Status: models.StatusAlive,
		}
		next.Players = append(next.Players, added)
		resetRoleSelection(next)

		return []models.Event{{
			Type:    models.EventPlayerAdded,
			Level:   models.LevelSuccess,
			Message: "Added player: " + trimmed,
			Data:    map[string]interface{}{"player_id": added.ID, "name": trimmed},
		}}, nil
	})
	return added, err
}

// RemovePlayer 移除玩家，未知ID忽略
func (gc *GameController) RemovePlayer(id string) error {
	return gc.apply("remove_player", func(next *models.GameState) ([]models.Event, error) {
		if next.Phase != models.PhaseSetup {
			return nil, fmt.Errorf("remove player: %w", ErrWrongPhase)
		}
		i := next.FindPlayer(id)
		if i < 0 {
			return nil, nil
		}
		removed := next.Players[i]
		next.Players = append(next.Players[:i], next.Players[i+1:]...)
		resetRoleSelection(next)

		return []models.Event{{
			Type:    models.EventPlayerRemoved,
			Level:   models.LevelInfo,
			Message: "Removed player: " + removed.Name,
			Data:    map[string]interface{}{"player_id": removed.ID},
		}}, nil
	})
}

// SetGameMode 设置角色发放方式
func (gc *GameController) SetGameMode(mode models.GameMode) error {
	return gc.apply("set_game_mode", func(next *models.GameState) ([]models.Event, error) {
		if !mode.Valid() {
			return nil, fmt.Errorf("%w: %q", ErrInvalidMode, mode)
		}
		if next.Phase != models.PhaseSetup {
			return nil, fmt.Errorf("set game mode: %w", ErrWrongPhase)
		}
		next.Mode = mode
		return []models.Event{{
			Type: models.EventRolesChanged,
			Data: map[string]interface{}{"mode": mode},
		}}, nil
	})
}

// SelectionView 当前角色选择及其数量
type SelectionView struct {
	Roles       []models.Role       `json:"roles"`
	Count       int                 `json:"count"`
	Counts      map[models.Role]int `json:"counts"`
	PlayerCount int                 `json:"player_count"`
	Custom      bool                `json:"custom"`
}

// RoleSelection 返回当前角色选择，界面无需自行统计
func (gc *GameController) RoleSelection() SelectionView {
	gc.mutex.Lock()
	defer gc.mutex.Unlock()

	sel := NewRoleSelection(gc.game.SelectedRoles)
	return SelectionView{
		Roles:       sel.Roles(),
		Count:       sel.Count(),
		Counts:      sel.Counts(),
		PlayerCount: len(gc.game.Players),
		Custom:      gc.game.CustomRoles,
	}
}

// UseRecommendedRoles 恢复为推荐配置
func (gc *GameController) UseRecommendedRoles() ([]models.Role, error) {
	var roles []models.Role
	err := gc.apply("use_recommended_roles", func(next *models.GameState) ([]models.Event, error) {
		if next.Phase != models.PhaseSetup {
			return nil, fmt.Errorf("recommend roles: %w", ErrWrongPhase)
		}
		resetRoleSelection(next)
		roles = append([]models.Role(nil), next.SelectedRoles...)
		return []models.Event{rolesChangedEvent(next)}, nil
	})
	return roles, err
}

// SetCustomRoles 直接指定整套角色，数量必须与人数一致
func (gc *GameController) SetCustomRoles(roles []models.Role) error {
	return gc.apply("set_custom_roles", func(next *models.GameState) ([]models.Event, error) {
		if next.Phase != models.PhaseSetup {
			return nil, fmt.Errorf("set custom roles: %w", ErrWrongPhase)
		}
		for _, r := range roles {
			if !IsKnownRole(r) {
				return nil, fmt.Errorf("%w: %q", ErrUnknownRole, r)
			}
		}
		if len(roles) != len(next.Players) {
			return nil, fmt.Errorf("%w: %d roles for %d players", ErrRoleCountMismatch, len(roles), len(next.Players))
		}
		next.SelectedRoles = append([]models.Role(nil), roles...)
		next.CustomRoles = true
		return []models.Event{rolesChangedEvent(next)}, nil
	})
}

// AddSelectedRole 在自定义选择中加入一个角色
func (gc *GameController) AddSelectedRole(role models.Role) error {
	return gc.editSelection("add_selected_role", role, func(sel *RoleSelection, capacity int) {
		sel.Add(role, capacity)
	})
}

// RemoveSelectedRole 从自定义选择中移除一个角色
func (gc *GameController) RemoveSelectedRole(role models.Role) error {
	return gc.editSelection("remove_selected_role", role, func(sel *RoleSelection, capacity int) {
		sel.Remove(role, capacity)
	})
}

func (gc *GameController) editSelection(op string, role models.Role, edit func(sel *RoleSelection, capacity int)) error {
	return gc.apply(op, func(next *models.GameState) ([]models.Event, error) {
		if next.Phase != models.PhaseSetup {
			return nil, fmt.Errorf("edit roles: %w", ErrWrongPhase)
		}
		if !IsKnownRole(role) {
			return nil, fmt.Errorf("%w: %q", ErrUnknownRole, role)
		}
		sel := NewRoleSelection(next.SelectedRoles)
		edit(sel, len(next.Players))
		next.SelectedRoles = sel.Roles()
		next.CustomRoles = true
		return []models.Event{rolesChangedEvent(next)}, nil
	})
}

// AssignRolesAndStart 发放角色并进入身份查看阶段
func (gc *GameController) AssignRolesAndStart() error {
	return gc.apply("start_game", func(next *models.GameState) ([]models.Event, error) {
		if next.Phase != models.PhaseSetup {
			return nil, fmt.Errorf("start game: %w", ErrWrongPhase)
		}
		if len(next.Players) < gc.minPlayers {
			return nil, fmt.Errorf("%w: need at least %d, have %d", ErrNotEnoughPlayers, gc.minPlayers, len(next.Players))
		}

		roles := next.SelectedRoles
		if len(roles) == 0 {
			roles = RecommendRoles(len(next.Players))
		}
		if len(roles) != len(next.Players) {
			return nil, fmt.Errorf("%w: %d roles for %d players", ErrRoleCountMismatch, len(roles), len(next.Players))
		}

		resetPlayers(next)
		if next.Mode == models.SystemMode {
			assigned, err := AssignRoles(next.Players, roles, gc.rng)
			if err != nil {
				return nil, err
			}
			next.Players = assigned
		} else {
			for i := range next.Players {
				next.Players[i].Role = ""
			}
		}
		next.SelectedRoles = append([]models.Role(nil), roles...)
		startNewGame(next)
		next.Phase = models.PhaseRoleReveal

		log.Printf("[游戏开始] 模式: %s, 玩家数量: %d", next.Mode, len(next.Players))
		return []models.Event{
			{
				Type:    models.EventGameStarted,
				Level:   models.LevelInfo,
				Message: "Time to reveal roles to players",
				Data:    map[string]interface{}{"mode": next.Mode, "players": len(next.Players)},
			},
			phaseChangedEvent(next),
		}, nil
	})
}

// RevealRole 玩家查看自己的身份；未知ID不提示错误
func (gc *GameController) RevealRole(playerID string) (models.Role, error) {
	var role models.Role
	err := gc.apply("reveal_role", func(next *models.GameState) ([]models.Event, error) {
		if next.Phase != models.PhaseRoleReveal {
			return nil, fmt.Errorf("reveal role: %w", ErrWrongPhase)
		}
		i := next.FindPlayer(playerID)
		if i < 0 {
			return nil, ErrPlayerNotFound
		}
		if next.Players[i].Role == "" {
			return nil, fmt.Errorf("%w: %s", ErrRoleNotAssigned, next.Players[i].Name)
		}
		next.Players[i].Revealed = true
		role = next.Players[i].Role

		return []models.Event{{
			Type: models.EventRoleRevealed,
			Data: map[string]interface{}{
				"player_id": playerID,
				"remaining": unrevealedCount(next),
			},
		}}, nil
	})
	return role, err
}

// UpdatePlayerRole 直接设置玩家角色。
// 线下发牌模式下只能选择牌池中还剩余的角色，选择即视为已查看身份。
func (gc *GameController) UpdatePlayerRole(playerID string, role models.Role) error {
	return gc.apply("update_player_role", func(next *models.GameState) ([]models.Event, error) {
		if next.Phase != models.PhaseSetup && next.Phase != models.PhaseRoleReveal {
			return nil, fmt.Errorf("update role: %w", ErrWrongPhase)
		}
		if !IsKnownRole(role) {
			return nil, fmt.Errorf("%w: %q", ErrUnknownRole, role)
		}
		i := next.FindPlayer(playerID)
		if i < 0 {
			return nil, ErrPlayerNotFound
		}

		if next.Mode == models.CardsMode && next.Phase == models.PhaseRoleReveal {
			if remainingCards(next, role, playerID) <= 0 {
				return nil, fmt.Errorf("%w: %s", ErrRoleUnavailable, RoleName(role))
			}
			next.Players[i].Revealed = true
		}
		next.Players[i].Role = role

		return []models.Event{{
			Type: models.EventRoleRevealed,
			Data: map[string]interface{}{
				"player_id": playerID,
				"remaining": unrevealedCount(next),
			},
		}}, nil
	})
}

// ResetGame 回到准备阶段，保留玩家ID和名字
func (gc *GameController) ResetGame() {
	_ = gc.apply("reset_game", func(next *models.GameState) ([]models.Event, error) {
		resetPlayers(next)
		for i := range next.Players {
			next.Players[i].Role = ""
		}
		startNewGame(next)
		next.Phase = models.PhaseSetup
		next.Mode = models.SystemMode
		next.Round = 0
		resetRoleSelection(next)

		return []models.Event{
			{Type: models.EventGameReset, Level: models.LevelInfo, Message: "Game has been reset"},
			phaseChangedEvent(next),
		}, nil
	})
}

func rolesChangedEvent(state *models.GameState) models.Event {
	return models.Event{
		Type: models.EventRolesChanged,
		Data: map[string]interface{}{
			"roles":  state.SelectedRoles,
			"count":  len(state.SelectedRoles),
			"custom": state.CustomRoles,
		},
	}
}

func phaseChangedEvent(state *models.GameState) models.Event {
	return models.Event{
		Type: models.EventPhaseChanged,
		Data: map[string]interface{}{
			"phase": state.Phase,
			"round": state.Round,
		},
	}
}
