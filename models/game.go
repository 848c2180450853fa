package models

// GameMode 角色发放方式
type GameMode string

const (
	SystemMode GameMode = "system" // 系统随机分配角色
	CardsMode  GameMode = "cards"  // 线下发牌，玩家自行登记
)

// Valid 判断游戏模式是否合法
func (m GameMode) Valid() bool {
	return m == SystemMode || m == CardsMode
}

// Role 游戏角色
type Role string

const (
	Werewolf    Role = "werewolf"
	Villager    Role = "villager"
	Seer        Role = "seer"
	Doctor      Role = "doctor"
	Bodyguard   Role = "bodyguard"
	Hunter      Role = "hunter"
	Witch       Role = "witch"
	WolfCub     Role = "wolf-cub"
	Spellcaster Role = "spellcaster"
)

// Team 阵营
type Team string

const (
	TeamVillage    Team = "village"
	TeamWerewolves Team = "werewolves"
)

// PlayerStatus 存活状态
type PlayerStatus string

const (
	StatusAlive PlayerStatus = "alive"
	StatusDead  PlayerStatus = "dead"
)

// Phase 游戏阶段
type Phase string

const (
	PhaseSetup      Phase = "setup"
	PhaseRoleReveal Phase = "role-reveal"
	PhaseNight      Phase = "night"
	PhaseDay        Phase = "day"
	PhaseResult     Phase = "result"
)

// Winner 获胜阵营，空字符串表示尚未决出
type Winner string

const (
	NoWinner      Winner = ""
	WerewolvesWin Winner = "werewolves"
	VillagersWin  Winner = "villagers"
)

// Player 玩家信息
type Player struct {
	ID     string       `json:"id"`
	Name   string       `json:"name"`
	Role   Role         `json:"role,omitempty"` // 分配前为空
	Status PlayerStatus `json:"status"`

	// 每晚结算时重置的临时状态
	Protected  bool   `json:"protected"`
	Poisoned   bool   `json:"poisoned"`
	Silenced   bool   `json:"silenced"`
	TargetedBy []Role `json:"targeted_by,omitempty"`

	Revealed bool `json:"revealed"` // 是否已查看身份
}

// Alive 玩家是否存活
func (p Player) Alive() bool {
	return p.Status == StatusAlive
}

// NightAction 夜晚行动记录，TargetID 为空表示跳过
type NightAction struct {
	RoleID   Role       `json:"role_id"`
	RoleName string     `json:"role_name"`
	TargetID string     `json:"target_id,omitempty"`
	Kind     ActionKind `json:"kind"`
}

// TimerSettings 白天/夜晚计时时长（秒）
type TimerSettings struct {
	Day   int `json:"day"`
	Night int `json:"night"`
}

// TimerSettingsPatch 部分更新计时设置，nil 字段保持不变
type TimerSettingsPatch struct {
	Day   *int `json:"day,omitempty"`
	Night *int `json:"night,omitempty"`
}

// TimerState 计时器运行状态
type TimerState struct {
	DayRemaining   int  `json:"day_remaining"`
	NightRemaining int  `json:"night_remaining"`
	DayActive      bool `json:"day_active"`
	NightActive    bool `json:"night_active"`
}

// GameState 整局游戏状态
type GameState struct {
	Players             []Player      `json:"players"`
	Phase               Phase         `json:"phase"`
	Mode                GameMode      `json:"mode"`
	Round               int           `json:"round"`
	CurrentNightRole    Role          `json:"current_night_role,omitempty"`
	NightQueue          []Role        `json:"night_queue"`
	NightActions        []NightAction `json:"night_actions"`
	EliminatedLastNight []string      `json:"eliminated_last_night"`
	Winner              Winner        `json:"winner,omitempty"`
	Timers              TimerState    `json:"timers"`
	Settings            TimerSettings `json:"settings"`

	// 准备阶段的角色选择，未自定义时为推荐配置
	SelectedRoles []Role `json:"selected_roles"`
	CustomRoles   bool   `json:"custom_roles"`

	// 角色技能相关
	SavePotionUsed   bool   `json:"save_potion_used"`
	PoisonPotionUsed bool   `json:"poison_potion_used"`
	WerewolfKills    int    `json:"werewolf_kills"`
	PendingHunter    string `json:"pending_hunter,omitempty"`
}

// Clone 深拷贝游戏状态
func (s *GameState) Clone() *GameState {
	if s == nil {
		return nil
	}
	out := *s
	out.Players = ClonePlayers(s.Players)
	if s.SelectedRoles != nil {
		out.SelectedRoles = append([]Role(nil), s.SelectedRoles...)
	}
	if s.NightQueue != nil {
		out.NightQueue = append([]Role(nil), s.NightQueue...)
	}
	if s.NightActions != nil {
		out.NightActions = append([]NightAction(nil), s.NightActions...)
	}
	if s.EliminatedLastNight != nil {
		out.EliminatedLastNight = append([]string(nil), s.EliminatedLastNight...)
	}
	return &out
}

// FindPlayer 按ID查找玩家下标，不存在返回 -1
func (s *GameState) FindPlayer(id string) int {
	for i := range s.Players {
		if s.Players[i].ID == id {
			return i
		}
	}
	return -1
}

func (p Player) clone() Player {
	if p.TargetedBy != nil {
		p.TargetedBy = append([]Role(nil), p.TargetedBy...)
	}
	return p
}

// ClonePlayers 深拷贝玩家列表
func ClonePlayers(players []Player) []Player {
	if players == nil {
		return nil
	}
	out := make([]Player, len(players))
	for i, p := range players {
		out[i] = p.clone()
	}
	return out
}
