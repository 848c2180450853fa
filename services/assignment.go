package services

import (
	"fmt"
	"math/rand"

	"github.com/bonmvsk/nightfall-werewolf-moderator/models"
)

// 常见人数的推荐配置
var roleRecommendations = map[int][]models.Role{
	5:  {models.Werewolf, models.Werewolf, models.Villager, models.Villager, models.Seer},
	6:  {models.Werewolf, models.Werewolf, models.Villager, models.Villager, models.Seer, models.Doctor},
	7:  {models.Werewolf, models.Werewolf, models.Villager, models.Villager, models.Villager, models.Seer, models.Doctor},
	8:  {models.Werewolf, models.Werewolf, models.Villager, models.Villager, models.Villager, models.Villager, models.Seer, models.Doctor},
	9:  {models.Werewolf, models.Werewolf, models.Werewolf, models.Villager, models.Villager, models.Villager, models.Villager, models.Seer, models.Doctor},
	10: {models.Werewolf, models.Werewolf, models.Werewolf, models.Villager, models.Villager, models.Villager, models.Villager, models.Villager, models.Seer, models.Doctor},
	11: {models.Werewolf, models.Werewolf, models.Werewolf, models.Villager, models.Villager, models.Villager, models.Villager, models.Villager, models.Villager, models.Seer, models.Doctor},
	12: {models.Werewolf, models.Werewolf, models.Werewolf, models.Villager, models.Villager, models.Villager, models.Villager, models.Villager, models.Villager, models.Seer, models.Doctor, models.Bodyguard},
	13: {models.Werewolf, models.Werewolf, models.Werewolf, models.Werewolf, models.Villager, models.Villager, models.Villager, models.Villager, models.Villager, models.Villager, models.Seer, models.Doctor, models.Bodyguard},
	14: {models.Werewolf, models.Werewolf, models.Werewolf, models.Werewolf, models.Villager, models.Villager, models.Villager, models.Villager, models.Villager, models.Villager, models.Villager, models.Seer, models.Doctor, models.Bodyguard},
	15: {models.Werewolf, models.Werewolf, models.Werewolf, models.Werewolf, models.Villager, models.Villager, models.Villager, models.Villager, models.Villager, models.Villager, models.Villager, models.Villager, models.Seer, models.Doctor, models.Witch},
}

// RecommendRoles 按人数生成推荐角色列表，长度始终等于 playerCount
func RecommendRoles(playerCount int) []models.Role {
	if playerCount <= 0 {
		return []models.Role{}
	}
	if preset, ok := roleRecommendations[playerCount]; ok {
		return append([]models.Role(nil), preset...)
	}

	werewolfCount := playerCount / 3
	if werewolfCount < 1 {
		werewolfCount = 1
	}
	specialRoles := []models.Role{models.Seer}
	if playerCount > 6 {
		specialRoles = append(specialRoles, models.Doctor)
	}
	if playerCount > 10 {
		specialRoles = append(specialRoles, models.Witch)
	}
	if playerCount > 12 {
		specialRoles = append(specialRoles, models.Bodyguard)
	}
	if playerCount > 14 {
		specialRoles = append(specialRoles, models.Spellcaster)
	}

	roles := make([]models.Role, 0, playerCount)
	for i := 0; i < werewolfCount; i++ {
		roles = append(roles, models.Werewolf)
	}
	for i := werewolfCount + len(specialRoles); i < playerCount; i++ {
		roles = append(roles, models.Villager)
	}
	roles = append(roles, specialRoles...)

	return fitRoleCount(roles, playerCount)
}

// fitRoleCount 补齐村民，或优先移除村民、其次移除末尾角色
func fitRoleCount(roles []models.Role, count int) []models.Role {
	for len(roles) < count {
		roles = append(roles, models.Villager)
	}
	for len(roles) > count {
		if i := indexOfRole(roles, models.Villager); i >= 0 {
			roles = append(roles[:i], roles[i+1:]...)
			continue
		}
		roles = roles[:len(roles)-1]
	}
	return roles
}

// AssignRoles 随机打乱角色牌并按位置发给玩家，不修改入参
func AssignRoles(players []models.Player, roles []models.Role, rng *rand.Rand) ([]models.Player, error) {
	if len(roles) != len(players) {
		return nil, fmt.Errorf("%w: %d roles for %d players", ErrRoleCountMismatch, len(roles), len(players))
	}

	shuffled := append([]models.Role(nil), roles...)
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	assigned := models.ClonePlayers(players)
	for i := range assigned {
		assigned[i].Role = shuffled[i]
	}
	return assigned, nil
}

// RoleSelection 自定义角色选择，编辑时自动维持与人数一致
type RoleSelection struct {
	roles []models.Role
}

// NewRoleSelection 以给定角色创建选择
func NewRoleSelection(roles []models.Role) *RoleSelection {
	return &RoleSelection{roles: append([]models.Role(nil), roles...)}
}

// Add 添加一个角色；已满时先移除一个村民，没有村民则移除最早加入的角色
func (s *RoleSelection) Add(role models.Role, capacity int) {
	if len(s.roles) >= capacity && len(s.roles) > 0 {
		if i := indexOfRole(s.roles, models.Villager); i >= 0 {
			s.roles = append(s.roles[:i], s.roles[i+1:]...)
		} else {
			s.roles = s.roles[1:]
		}
	}
	s.roles = append(s.roles, role)
}

// Remove 移除一个角色，不足人数时补一个村民
func (s *RoleSelection) Remove(role models.Role, capacity int) bool {
	i := indexOfRole(s.roles, role)
	if i < 0 {
		return false
	}
	s.roles = append(s.roles[:i], s.roles[i+1:]...)
	if len(s.roles) < capacity {
		s.roles = append(s.roles, models.Villager)
	}
	return true
}

// Reconcile 把角色数调整到 capacity
func (s *RoleSelection) Reconcile(capacity int) {
	s.roles = fitRoleCount(s.roles, capacity)
}

// Roles 当前选择的副本
func (s *RoleSelection) Roles() []models.Role {
	return append([]models.Role(nil), s.roles...)
}

// Count 当前选择的角色总数
func (s *RoleSelection) Count() int {
	return len(s.roles)
}

// Counts 各角色数量
func (s *RoleSelection) Counts() map[models.Role]int {
	counts := make(map[models.Role]int)
	for _, r := range s.roles {
		counts[r]++
	}
	return counts
}

func indexOfRole(roles []models.Role, role models.Role) int {
	for i, r := range roles {
		if r == role {
			return i
		}
	}
	return -1
}
