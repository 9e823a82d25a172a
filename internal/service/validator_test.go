package service

import (
	"encoding/json"
	"testing"

	"cyber_heist_backend/internal/model"

	"github.com/stretchr/testify/assert"
)

func makePuzzle(puzzleType, solution, typeData string) *model.Puzzle {
	p := &model.Puzzle{
		PuzzleType: puzzleType,
		Solution:   solution,
	}
	if typeData != "" {
		p.TypeData = json.RawMessage(typeData)
	}
	return p
}

func TestCheckSolutionMultipleChoice(t *testing.T) {
	puzzle := makePuzzle(model.PuzzleTypeMultipleChoice, "Paris",
		`{"options":["Berlin","Paris","Tokyo"]}`)

	assert.True(t, CheckSolution(puzzle, "b"))
	assert.True(t, CheckSolution(puzzle, "B"))
	assert.True(t, CheckSolution(puzzle, " b "))
	assert.False(t, CheckSolution(puzzle, "a"))
	assert.False(t, CheckSolution(puzzle, "c"))
	assert.False(t, CheckSolution(puzzle, "1"))
	assert.False(t, CheckSolution(puzzle, "bb"))
	assert.False(t, CheckSolution(puzzle, ""))

	// 正确原文不在选项里：判错而不是报错
	broken := makePuzzle(model.PuzzleTypeMultipleChoice, "London",
		`{"options":["Berlin","Paris","Tokyo"]}`)
	assert.False(t, CheckSolution(broken, "a"))
}

func TestCheckSolutionCode(t *testing.T) {
	puzzle := makePuzzle(model.PuzzleTypeCode, "",
		`{"expected_input":"fmt.Println(42)"}`)
	assert.True(t, CheckSolution(puzzle, "fmt.Println(42)"))
	assert.True(t, CheckSolution(puzzle, "  fmt.Println(42)  "))
	assert.False(t, CheckSolution(puzzle, "fmt.println(42)"))
	assert.False(t, CheckSolution(puzzle, "x := fmt.Println(42)"))

	insensitive := makePuzzle(model.PuzzleTypeCode, "",
		`{"expected_input":"SELECT * FROM vault","case_insensitive":true}`)
	assert.True(t, CheckSolution(insensitive, "select * from vault"))

	partial := makePuzzle(model.PuzzleTypeCode, "",
		`{"expected_input":"unlock()","allow_partial":true}`)
	assert.True(t, CheckSolution(partial, "door.unlock() // done"))
	assert.False(t, CheckSolution(partial, "lock()"))

	// type_data 缺失时退回通用 solution 字段
	fallback := makePuzzle(model.PuzzleTypeCode, "print(1)", "")
	assert.True(t, CheckSolution(fallback, "print(1)"))
}

func TestCheckSolutionTerminalCommand(t *testing.T) {
	puzzle := makePuzzle(model.PuzzleTypeTerminalCommand, "",
		`{"allowed_commands":["ls","cat /etc/passwd"]}`)

	assert.True(t, CheckSolution(puzzle, "ls"))
	assert.True(t, CheckSolution(puzzle, "LS -la"))
	assert.True(t, CheckSolution(puzzle, "cat /etc/passwd | head"))
	assert.False(t, CheckSolution(puzzle, "rm -rf /"))
	assert.False(t, CheckSolution(puzzle, ""))
}

func TestCheckSolutionTerminal(t *testing.T) {
	puzzle := makePuzzle(model.PuzzleTypeTerminal, "",
		`{"accepted":["open sesame","opensesame"]}`)
	assert.True(t, CheckSolution(puzzle, "Open Sesame"))
	assert.True(t, CheckSolution(puzzle, " opensesame "))
	assert.False(t, CheckSolution(puzzle, "close sesame"))

	fallback := makePuzzle(model.PuzzleTypeTerminal, "override", "")
	assert.True(t, CheckSolution(fallback, "OVERRIDE"))
}

func TestCheckSolutionPassword(t *testing.T) {
	sha := makePuzzle(model.PuzzleTypePassword, "",
		`{"solution_hash":"f52fbd32b2b3b86ff88ef6c490628285f482af15ddcb29541f94bcf526a3f6c7"}`)
	assert.True(t, CheckSolution(sha, "hunter2"))
	assert.False(t, CheckSolution(sha, "hunter3"))

	legacy := makePuzzle(model.PuzzleTypePassword, "",
		`{"solution_hash":"2ab96390c7dbe3439de74d0c9b0b1767","hash_algo":"md5"}`)
	assert.True(t, CheckSolution(legacy, "hunter2"))

	unknownAlgo := makePuzzle(model.PuzzleTypePassword, "",
		`{"solution_hash":"deadbeef","hash_algo":"crc32"}`)
	assert.False(t, CheckSolution(unknownAlgo, "anything"))

	plain := makePuzzle(model.PuzzleTypePassword, "swordfish", "")
	assert.True(t, CheckSolution(plain, "swordfish"))
	assert.False(t, CheckSolution(plain, "Swordfish"))
}

func TestCheckSolutionSequence(t *testing.T) {
	puzzle := makePuzzle(model.PuzzleTypeSequence, "", `{"expected_next":13}`)
	assert.True(t, CheckSolution(puzzle, "13"))
	assert.True(t, CheckSolution(puzzle, " 13 "))
	assert.False(t, CheckSolution(puzzle, "12"))
	assert.False(t, CheckSolution(puzzle, "thirteen"))

	fallback := makePuzzle(model.PuzzleTypeSequence, "21", "")
	assert.True(t, CheckSolution(fallback, "21"))
	assert.False(t, CheckSolution(fallback, "22"))
}

func TestCheckSolutionLogic(t *testing.T) {
	numeric := makePuzzle(model.PuzzleTypeLogic, "7", "")
	assert.True(t, CheckSolution(numeric, "7"))
	assert.True(t, CheckSolution(numeric, "07"))
	assert.True(t, CheckSolution(numeric, "7.0"))
	assert.False(t, CheckSolution(numeric, "8"))

	textual := makePuzzle(model.PuzzleTypeLogic, "Yes", "")
	assert.True(t, CheckSolution(textual, "yes"))
	assert.False(t, CheckSolution(textual, "no"))
}

func TestCheckSolutionPointAndClick(t *testing.T) {
	puzzle := makePuzzle(model.PuzzleTypePointAndClick, "vault_door", "")
	assert.True(t, CheckSolution(puzzle, "vault_door"))
	assert.True(t, CheckSolution(puzzle, " vault_door "))
	assert.False(t, CheckSolution(puzzle, "window"))
}

func TestCheckSolutionTotality(t *testing.T) {
	assert.False(t, CheckSolution(nil, "anything"))

	// 未知类型走全等兜底
	unknown := makePuzzle("hologram", "42", "")
	assert.True(t, CheckSolution(unknown, "42"))

	// 空答案配置永远判错
	empty := makePuzzle(model.PuzzleTypeLogic, "", "")
	assert.False(t, CheckSolution(empty, ""))

	// 损坏的 JSON 不会 panic，也不会误判为对
	corrupt := makePuzzle(model.PuzzleTypeMultipleChoice, "Paris", `{"options": [broken`)
	assert.False(t, CheckSolution(corrupt, "a"))
}
