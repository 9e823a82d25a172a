package model

import "encoding/json"

const (
	PuzzleTypeMultipleChoice  = "multiple_choice"
	PuzzleTypeCode            = "code"
	PuzzleTypeTerminalCommand = "terminal_command"
	PuzzleTypeTerminal        = "terminal"
	PuzzleTypePassword        = "password"
	PuzzleTypeSequence        = "sequence"
	PuzzleTypeLogic           = "logic"
	PuzzleTypePointAndClick   = "point_and_click"
)

// swagger:model Puzzle
type Puzzle struct {
	BaseModel
	RoomID      uint   `gorm:"index;type:bigint unsigned" json:"roomId"`
	Name        string `gorm:"size:255;not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`
	PuzzleType  string `gorm:"size:50;default:'logic'" json:"puzzleType"`

	// Solution 是通用答案字段；按类型的细节（选项、允许的命令前缀、
	// 摘要值等）放在 TypeData 里，由校验器解码
	Solution string          `gorm:"type:text" json:"-"`
	TypeData json.RawMessage `gorm:"type:json" json:"-"`

	// 不挂 default 标签：gorm 对带默认值的零值字段不写入，
	// 会把 false/0 悄悄存成 true/5，选做谜题和不限次数就没法表达了
	MaxAttempts int  `json:"maxAttempts"` // <=0 表示不限次数
	IsRequired  bool `json:"isRequired"`
	HintText    string `gorm:"type:text" json:"-"`
	Order       int    `gorm:"default:0" json:"order"`
	IsActive    bool   `json:"isActive"`
}

func (Puzzle) TableName() string {
	return "puzzles"
}

// PuzzleTypeData 各谜题类型的附加配置，存储为 JSON
type PuzzleTypeData struct {
	Options         []string `json:"options,omitempty"`          // multiple_choice
	ExpectedInput   string   `json:"expected_input,omitempty"`   // code
	CaseInsensitive bool     `json:"case_insensitive,omitempty"` // code
	AllowPartial    bool     `json:"allow_partial,omitempty"`    // code
	AllowedCommands []string `json:"allowed_commands,omitempty"` // terminal_command
	Accepted        []string `json:"accepted,omitempty"`         // terminal
	SolutionHash    string   `json:"solution_hash,omitempty"`    // password
	HashAlgo        string   `json:"hash_algo,omitempty"`        // password, 默认 sha256
	ExpectedNext    *int     `json:"expected_next,omitempty"`    // sequence
}
