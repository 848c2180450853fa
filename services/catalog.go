package services

import "github.com/bonmvsk/nightfall-werewolf-moderator/models"

// RoleDefinition 角色定义，所有持有该角色的玩家共享
type RoleDefinition struct {
	ID            models.Role `json:"id"`
	Name          string      `json:"name"`
	Description   string      `json:"description"`
	Team          models.Team `json:"team"`
	NightAction   string      `json:"night_action,omitempty"`
	NightPriority int         `json:"night_priority,omitempty"` // 0 表示夜晚无行动
}

// HasNightAction 是否在夜晚行动
func (d RoleDefinition) HasNightAction() bool {
	return d.NightPriority > 0
}

// 顺序即遍历顺序，夜晚同优先级的角色按此顺序行动
var catalog = []RoleDefinition{
	{
		ID:            models.Werewolf,
		Name:          "Werewolf",
		Description:   "Each night, choose a player to eliminate. Win when werewolves equal or outnumber villagers.",
		Team:          models.TeamWerewolves,
		NightAction:   "Choose a player to eliminate",
		NightPriority: 2,
	},
	{
		ID:          models.Villager,
		Name:        "Villager",
		Description: "You have no special abilities, but must use deduction to identify the werewolves.",
		Team:        models.TeamVillage,
	},
	{
		ID:            models.Seer,
		Name:          "Seer",
		Description:   "Each night, you may look at one player's card to learn their role.",
		Team:          models.TeamVillage,
		NightAction:   "Choose a player to identify",
		NightPriority: 1,
	},
	{
		ID:            models.Doctor,
		Name:          "Doctor",
		Description:   "Each night, choose one player (including yourself) to protect from elimination.",
		Team:          models.TeamVillage,
		NightAction:   "Choose a player to protect",
		NightPriority: 3,
	},
	{
		ID:            models.Bodyguard,
		Name:          "Bodyguard",
		Description:   "Each night, choose one player (excluding yourself) to protect from elimination.",
		Team:          models.TeamVillage,
		NightAction:   "Choose a player to protect",
		NightPriority: 3,
	},
	{
		ID:          models.Hunter,
		Name:        "Hunter",
		Description: "If you are eliminated, you may immediately eliminate another player.",
		Team:        models.TeamVillage,
	},
	{
		ID:            models.Witch,
		Name:          "Witch",
		Description:   "You have two potions: one to save a player targeted by werewolves, and one to eliminate a player. Each can be used once per game.",
		Team:          models.TeamVillage,
		NightAction:   "Use save potion or poison potion",
		NightPriority: 4,
	},
	{
		ID:            models.WolfCub,
		Name:          "Wolf Cub",
		Description:   "Part of the werewolf team. If eliminated, the werewolves get two kills the following night.",
		Team:          models.TeamWerewolves,
		NightAction:   "Wake with the pack; the werewolves choose the victim",
		NightPriority: 2,
	},
	{
		ID:            models.Spellcaster,
		Name:          "Spellcaster",
		Description:   "Each night, choose one player to silence during the next day. They cannot vote or participate in discussions.",
		Team:          models.TeamVillage,
		NightAction:   "Choose a player to silence",
		NightPriority: 5,
	},
}

// 每个角色允许的夜晚行动，第一个为默认行动
var roleActions = map[models.Role][]models.ActionKind{
	models.Werewolf:    {models.ActionKill},
	models.WolfCub:     {models.ActionView}, // 随狼队睁眼，击杀由狼人提交
	models.Seer:        {models.ActionView},
	models.Doctor:      {models.ActionHeal},
	models.Bodyguard:   {models.ActionProtect},
	models.Witch:       {models.ActionPoison, models.ActionHeal},
	models.Spellcaster: {models.ActionSilence},
}

// AllRoles 按目录顺序返回全部角色
func AllRoles() []RoleDefinition {
	out := make([]RoleDefinition, len(catalog))
	copy(out, catalog)
	return out
}

// LookupRole 查询角色定义
func LookupRole(id models.Role) (RoleDefinition, bool) {
	for _, def := range catalog {
		if def.ID == id {
			return def, true
		}
	}
	return RoleDefinition{}, false
}

// IsKnownRole 角色是否在目录中
func IsKnownRole(id models.Role) bool {
	_, ok := LookupRole(id)
	return ok
}

// TeamOf 返回角色阵营，未知角色视为村民阵营
func TeamOf(id models.Role) models.Team {
	if def, ok := LookupRole(id); ok {
		return def.Team
	}
	return models.TeamVillage
}

// NightPriority 返回夜晚行动优先级，数字越小越先行动
func NightPriority(id models.Role) (int, bool) {
	def, ok := LookupRole(id)
	if !ok || !def.HasNightAction() {
		return 0, false
	}
	return def.NightPriority, true
}

// RoleName 角色显示名称
func RoleName(id models.Role) string {
	if def, ok := LookupRole(id); ok {
		return def.Name
	}
	return string(id)
}

// RoleActions 角色允许的夜晚行动类型
func RoleActions(id models.Role) []models.ActionKind {
	return append([]models.ActionKind(nil), roleActions[id]...)
}

// DefaultAction 角色默认的夜晚行动
func DefaultAction(id models.Role) (models.ActionKind, bool) {
	kinds := roleActions[id]
	if len(kinds) == 0 {
		return 0, false
	}
	return kinds[0], true
}

func roleAllows(id models.Role, kind models.ActionKind) bool {
	for _, k := range roleActions[id] {
		if k == kind {
			return true
		}
	}
	return false
}
