package service

import (
	"fmt"
	"strings"
)

// Prompt 表示发送给 LLM 的消息
type Prompt struct {
	System string
	User   string
	// Subject 指南主题（项目类型），MockLLM 用它生成标题
	Subject string
}

const guideSystemPrompt = `You are a senior engineer who writes project setup guides.
Write the guide in Markdown only, without extra explanation.
- Start with a level-1 heading that names the project type.
- Give prerequisites, installation, configuration and verification sections.
- Use fenced code blocks for every command.
- Only rely on the provided sources; say so when something is missing.`

// BuildGuidePrompt 汇总抓取到的页面与附件，生成一次指南请求
func BuildGuidePrompt(projectType string, pages []Page, files []FileExcerpt) Prompt {
	var sb strings.Builder
	if projectType != "" {
		sb.WriteString(fmt.Sprintf("Project type: %s\n\n", projectType))
	}

	if len(pages) > 0 {
		sb.WriteString("Documentation pages:\n")
		for i, p := range pages {
			if p.Err != nil {
				sb.WriteString(fmt.Sprintf("%d. %s (could not be fetched)\n", i+1, p.URL))
				continue
			}
			sb.WriteString(fmt.Sprintf("%d. %s\n%s\n\n", i+1, p.URL, p.Text))
		}
		sb.WriteString("\n")
	}

	if len(files) > 0 {
		sb.WriteString("Attached files:\n")
		for i, f := range files {
			sb.WriteString(fmt.Sprintf("%d. %s\n%s\n\n", i+1, f.Name, f.Text))
		}
	}

	sb.WriteString("Write the complete setup guide.")

	return Prompt{
		System:  guideSystemPrompt,
		User:    sb.String(),
		Subject: projectType,
	}
}
