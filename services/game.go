package services

import "errors"

// 校验类错误：可恢复，操作被放弃且状态不变
var (
	ErrEmptyName         = errors.New("player name cannot be empty")
	ErrDuplicateName     = errors.New("player name already exists")
	ErrRoleCountMismatch = errors.New("the number of roles must match the number of players")
	ErrNotEnoughPlayers  = errors.New("not enough players to start the game")
	ErrUnknownRole       = errors.New("unknown role")
	ErrInvalidMode       = errors.New("invalid game mode")
	ErrWrongPhase        = errors.New("operation not allowed in the current phase")
	ErrRolesNotRevealed  = errors.New("every player must see their role before night falls")
	ErrRoleNotAssigned   = errors.New("player has no role yet")
	ErrRoleUnavailable   = errors.New("no card of that role is left in the pool")
	ErrNotYourTurn       = errors.New("it is not this role's turn to act")
	ErrNoPendingRole     = errors.New("no role is waiting to act")
	ErrInvalidAction     = errors.New("role cannot perform this action")
	ErrInvalidTarget     = errors.New("invalid target for this action")
	ErrPotionUsed        = errors.New("potion already used this game")
	ErrPlayerNotAlive    = errors.New("player is already eliminated")
	ErrNoPendingShot     = errors.New("no hunter shot is pending")
	ErrInvalidTimer      = errors.New("invalid timer")
)

// ErrPlayerNotFound 引用了不存在的玩家，通常是界面持有的过期ID，不作为用户错误提示
var ErrPlayerNotFound = errors.New("player not found")

var validationErrors = []error{
	ErrEmptyName, ErrDuplicateName, ErrRoleCountMismatch, ErrNotEnoughPlayers,
	ErrUnknownRole, ErrInvalidMode, ErrWrongPhase, ErrRolesNotRevealed,
	ErrRoleNotAssigned, ErrRoleUnavailable, ErrNotYourTurn, ErrNoPendingRole,
	ErrInvalidAction, ErrInvalidTarget, ErrPotionUsed, ErrPlayerNotAlive,
	ErrNoPendingShot, ErrInvalidTimer,
}

// IsValidation 判断是否为校验类错误
func IsValidation(err error) bool {
	if err == nil {
		return false
	}
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// IsLookupMiss 判断是否为找不到引用对象
func IsLookupMiss(err error) bool {
	return errors.Is(err, ErrPlayerNotFound)
}
