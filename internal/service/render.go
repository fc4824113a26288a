package service

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

var (
	titleRe  = regexp.MustCompile(`(?m)^#\s+(.+)$`)
	markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))
	ugc      = bluemonday.UGCPolicy()
)

// ExtractTitle 取第一个一级标题
func ExtractTitle(md string) string {
	m := titleRe.FindStringSubmatch(md)
	if len(m) >= 2 {
		return strings.TrimSpace(m[1])
	}
	return ""
}

// RenderHTML 把指南 Markdown 渲染成 HTML，并清理掉脚本等不安全内容
func RenderHTML(md string) (string, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(md), &buf); err != nil {
		return "", fmt.Errorf("渲染 markdown 失败: %w", err)
	}
	return ugc.Sanitize(buf.String()), nil
}
