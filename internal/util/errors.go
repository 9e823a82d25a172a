package util

import "errors"

var (
	ErrUserNotFound    = errors.New("用户不存在")
	ErrCityNotFound    = errors.New("city not found")
	ErrMissionNotFound = errors.New("mission not found")
	ErrRoomNotFound    = errors.New("room not found")
	// 下架谜题对玩家等同于不存在，统一走 ErrPuzzleNotFound
	ErrPuzzleNotFound  = errors.New("puzzle not found")
	ErrNoHintAvailable = errors.New("no hint available for this puzzle")
)
