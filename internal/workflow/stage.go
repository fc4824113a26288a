package workflow

import (
	"errors"
	"fmt"
)

// Stage 指南生成流程所处的阶段
type Stage int

const (
	StageCollectingURLs Stage = iota
	StageCollectingFiles
	StageCollectingProjectType
	StageShowingResult
)

func (s Stage) String() string {
	switch s {
	case StageCollectingURLs:
		return "CollectingUrls"
	case StageCollectingFiles:
		return "CollectingFiles"
	case StageCollectingProjectType:
		return "CollectingProjectType"
	case StageShowingResult:
		return "ShowingResult"
	}
	return fmt.Sprintf("Stage(%d)", int(s))
}

// Label 给用户看的步骤名
func (s Stage) Label() string {
	switch s {
	case StageCollectingURLs:
		return "Enter URLs"
	case StageCollectingFiles:
		return "Upload Files"
	case StageCollectingProjectType:
		return "Specify Project Type"
	case StageShowingResult:
		return "Generated Guide"
	}
	return s.String()
}

type Trigger int

const (
	TriggerAdvance Trigger = iota
	TriggerBack
	TriggerAddFiles
	TriggerRemoveFile
	TriggerSubmit
	TriggerSubmitSucceeded
	TriggerSubmitFailed
)

func (t Trigger) String() string {
	switch t {
	case TriggerAdvance:
		return "advance"
	case TriggerBack:
		return "back"
	case TriggerAddFiles:
		return "addFiles"
	case TriggerRemoveFile:
		return "removeFile"
	case TriggerSubmit:
		return "submit"
	case TriggerSubmitSucceeded:
		return "submitSucceeded"
	case TriggerSubmitFailed:
		return "submitFailed"
	}
	return fmt.Sprintf("Trigger(%d)", int(t))
}

var ErrInvalidTransition = errors.New("非法的阶段切换")

// Transition 纯函数：给定当前阶段与触发事件，返回下一阶段。
// 阶段 2 之后只能经 submit -> submitSucceeded 进入结果页，普通 advance 不行。
func Transition(from Stage, t Trigger) (Stage, error) {
	switch from {
	case StageCollectingURLs:
		if t == TriggerAdvance {
			return StageCollectingFiles, nil
		}
	case StageCollectingFiles:
		switch t {
		case TriggerAdvance:
			return StageCollectingProjectType, nil
		case TriggerBack:
			return StageCollectingURLs, nil
		case TriggerAddFiles, TriggerRemoveFile:
			return StageCollectingFiles, nil
		}
	case StageCollectingProjectType:
		switch t {
		case TriggerBack:
			return StageCollectingFiles, nil
		case TriggerSubmit, TriggerSubmitFailed:
			return StageCollectingProjectType, nil
		case TriggerSubmitSucceeded:
			return StageShowingResult, nil
		}
	}
	return from, fmt.Errorf("%w: %s 不接受 %s", ErrInvalidTransition, from, t)
}
