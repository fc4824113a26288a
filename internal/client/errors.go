package client

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

// ErrNetwork 所有请求失败（连不上、非 2xx、响应无法解析）都能用 errors.Is 匹配到它
var ErrNetwork = errors.New("network failure")

// NetworkFailure 一次调用生成服务失败的详情
type NetworkFailure struct {
	Op         string
	StatusCode int
	Body       string
	Err        error
}

func (e *NetworkFailure) Error() string {
	switch {
	case e.StatusCode != 0 && e.Body != "":
		return fmt.Sprintf("%s: API返回错误: %d, %s", e.Op, e.StatusCode, e.Body)
	case e.StatusCode != 0:
		return fmt.Sprintf("%s: API返回错误: %d", e.Op, e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return e.Op + ": network failure"
}

func (e *NetworkFailure) Unwrap() error {
	return e.Err
}

func (e *NetworkFailure) Is(target error) bool {
	return target == ErrNetwork
}

// truncate 按字符截断，避免把多字节字符切成非法 UTF-8
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + "..."
}
