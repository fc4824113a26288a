package service

import (
	"context"
	"fmt"
	"strings"
)

// MockLLM 本地调试用，不调用外部模型，输出稳定的 Markdown
type MockLLM struct{}

func (m MockLLM) Complete(_ context.Context, prompt Prompt) (string, error) {
	subject := prompt.Subject
	if subject == "" {
		subject = "Project"
	}
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("# %s Setup Guide\n\n", subject))
	sb.WriteString("This guide was generated locally without a language model.\n\n")
	sb.WriteString("## Steps\n\n")
	sb.WriteString("1. Install the toolchain listed in the sources.\n")
	sb.WriteString("2. Clone the repository and install dependencies.\n")
	sb.WriteString("3. Run the test suite to verify the setup.\n\n")
	sb.WriteString("## Sources\n\n")
	sb.WriteString("```\n")
	sb.WriteString(prompt.User)
	sb.WriteString("\n```\n")
	return sb.String(), nil
}
