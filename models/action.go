package models

import (
	"encoding/json"
	"fmt"
)

// ActionKind 夜晚行动类型
type ActionKind int

const (
	ActionKill ActionKind = iota + 1
	ActionProtect
	ActionHeal
	ActionPoison
	ActionSilence
	ActionView
)

var actionKindNames = map[ActionKind]string{
	ActionKill:    "kill",
	ActionProtect: "protect",
	ActionHeal:    "heal",
	ActionPoison:  "poison",
	ActionSilence: "silence",
	ActionView:    "view",
}

func (k ActionKind) String() string {
	if s, ok := actionKindNames[k]; ok {
		return s
	}
	return "unknown"
}

// Valid 是否为已定义的行动类型
func (k ActionKind) Valid() bool {
	_, ok := actionKindNames[k]
	return ok
}

// ParseActionKind 解析行动类型名称
func ParseActionKind(s string) (ActionKind, error) {
	for k, name := range actionKindNames {
		if name == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown action kind %q", s)
}

// MarshalJSON 以名称形式输出
func (k ActionKind) MarshalJSON() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("invalid action kind %d", int(k))
	}
	return json.Marshal(k.String())
}

// UnmarshalJSON 只接受已定义的名称
func (k *ActionKind) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("action kind must be a string: %w", err)
	}
	parsed, err := ParseActionKind(s)
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}
