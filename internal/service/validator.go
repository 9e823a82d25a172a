package service

import (
	"crypto/md5"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strconv"
	"strings"

	"cyber_heist_backend/internal/model"
)

// checkerFunc 按谜题类型比对答案，纯函数，不做任何 I/O
type checkerFunc func(puzzle *model.Puzzle, answer string) bool

// 新增谜题类型只需要在这里挂一个分支
var solutionCheckers = map[string]checkerFunc{
	model.PuzzleTypeMultipleChoice:  checkMultipleChoice,
	model.PuzzleTypeCode:            checkCode,
	model.PuzzleTypeTerminalCommand: checkTerminalCommand,
	model.PuzzleTypeTerminal:        checkTerminal,
	model.PuzzleTypePassword:        checkPassword,
	model.PuzzleTypeSequence:        checkSequence,
	model.PuzzleTypeLogic:           checkLogic,
	model.PuzzleTypePointAndClick:   checkExact,
}

// CheckSolution 校验玩家提交的答案。对任何输入都返回布尔值：
// 存量数据损坏（JSON 不合法、字段缺失）一律按答错处理，不报错
func CheckSolution(puzzle *model.Puzzle, answer string) bool {
	if puzzle == nil {
		return false
	}
	checker, ok := solutionCheckers[puzzle.PuzzleType]
	if !ok {
		checker = checkExact
	}
	return checker(puzzle, answer)
}

func decodeTypeData(puzzle *model.Puzzle) model.PuzzleTypeData {
	var data model.PuzzleTypeData
	if len(puzzle.TypeData) > 0 {
		// 解析失败按零值配置处理
		_ = json.Unmarshal(puzzle.TypeData, &data)
	}
	return data
}

// checkMultipleChoice 提交的是选项字母（a/b/c...），存储的是正确选项原文。
// 在选项列表里找不到正确原文时判错，不让脏数据打断请求
func checkMultipleChoice(puzzle *model.Puzzle, answer string) bool {
	data := decodeTypeData(puzzle)
	want := strings.TrimSpace(puzzle.Solution)
	if want == "" || len(data.Options) == 0 {
		return false
	}

	correctIndex := -1
	for i, option := range data.Options {
		if strings.EqualFold(strings.TrimSpace(option), want) {
			correctIndex = i
			break
		}
	}
	if correctIndex < 0 {
		return false
	}

	letter := strings.ToLower(strings.TrimSpace(answer))
	if len(letter) != 1 || letter[0] < 'a' || letter[0] > 'z' {
		return false
	}
	return int(letter[0]-'a') == correctIndex
}

// checkCode 优先用 expected_input，缺失时退回通用 solution 字段；
// allow_partial 仅在严格相等失败后才允许包含匹配
func checkCode(puzzle *model.Puzzle, answer string) bool {
	data := decodeTypeData(puzzle)
	want := strings.TrimSpace(data.ExpectedInput)
	if want == "" {
		want = strings.TrimSpace(puzzle.Solution)
	}
	if want == "" {
		return false
	}
	got := strings.TrimSpace(answer)

	if data.CaseInsensitive {
		if strings.EqualFold(got, want) {
			return true
		}
	} else if got == want {
		return true
	}

	if data.AllowPartial {
		if data.CaseInsensitive {
			return strings.Contains(strings.ToLower(got), strings.ToLower(want))
		}
		return strings.Contains(got, want)
	}
	return false
}

// checkTerminalCommand 前缀放行制：命中任意允许的命令前缀即算对。
// 这是刻意宽松的检查，不模拟命令输出
func checkTerminalCommand(puzzle *model.Puzzle, answer string) bool {
	data := decodeTypeData(puzzle)
	got := strings.ToLower(strings.TrimSpace(answer))
	if got == "" {
		return false
	}
	for _, command := range data.AllowedCommands {
		prefix := strings.ToLower(strings.TrimSpace(command))
		if prefix != "" && strings.HasPrefix(got, prefix) {
			return true
		}
	}
	return false
}

func checkTerminal(puzzle *model.Puzzle, answer string) bool {
	data := decodeTypeData(puzzle)
	accepted := data.Accepted
	if len(accepted) == 0 && puzzle.Solution != "" {
		accepted = []string{puzzle.Solution}
	}
	got := strings.TrimSpace(answer)
	for _, candidate := range accepted {
		if strings.EqualFold(strings.TrimSpace(candidate), got) {
			return true
		}
	}
	return false
}

// checkPassword 配置了摘要时用摘要比对，否则退回明文相等
func checkPassword(puzzle *model.Puzzle, answer string) bool {
	data := decodeTypeData(puzzle)
	if data.SolutionHash != "" {
		algo := strings.ToLower(data.HashAlgo)
		if algo == "" {
			algo = "sha256"
		}
		var digest string
		switch algo {
		case "sha256":
			sum := sha256.Sum256([]byte(answer))
			digest = hex.EncodeToString(sum[:])
		case "md5": // 兼容早期内容
			sum := md5.Sum([]byte(answer))
			digest = hex.EncodeToString(sum[:])
		default:
			return false
		}
		return strings.EqualFold(digest, data.SolutionHash)
	}
	return puzzle.Solution != "" && answer == puzzle.Solution
}

func checkSequence(puzzle *model.Puzzle, answer string) bool {
	got, err := strconv.Atoi(strings.TrimSpace(answer))
	if err != nil {
		return false
	}
	data := decodeTypeData(puzzle)
	if data.ExpectedNext != nil {
		return got == *data.ExpectedNext
	}
	want, err := strconv.Atoi(strings.TrimSpace(puzzle.Solution))
	if err != nil {
		return false
	}
	return got == want
}

// checkLogic 数字答案按数值比较（"07" == "7"），其余忽略大小写比较
func checkLogic(puzzle *model.Puzzle, answer string) bool {
	got := strings.TrimSpace(answer)
	want := strings.TrimSpace(puzzle.Solution)
	if want == "" {
		return false
	}
	if gotNum, err := strconv.ParseFloat(got, 64); err == nil {
		if wantNum, err := strconv.ParseFloat(want, 64); err == nil {
			return gotNum == wantNum
		}
	}
	return strings.EqualFold(got, want)
}

// checkExact point_and_click 及未知类型的兜底：去空白后全等
func checkExact(puzzle *model.Puzzle, answer string) bool {
	want := strings.TrimSpace(puzzle.Solution)
	if want == "" {
		return false
	}
	return strings.TrimSpace(answer) == want
}
