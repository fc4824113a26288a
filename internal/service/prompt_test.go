package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildGuidePrompt(t *testing.T) {
	p := BuildGuidePrompt("web-app",
		[]Page{{URL: "https://a.dev", Text: "install node"}, {URL: "https://b.dev", Err: errors.New("x")}},
		[]FileExcerpt{{Name: "README.md", Text: "npm start"}},
	)

	assert.Equal(t, "web-app", p.Subject)
	assert.Contains(t, p.System, "Markdown")
	assert.Contains(t, p.User, "Project type: web-app")
	assert.Contains(t, p.User, "https://a.dev\ninstall node")
	assert.Contains(t, p.User, "https://b.dev (could not be fetched)")
	assert.Contains(t, p.User, "README.md\nnpm start")
}

func TestMockLLM(t *testing.T) {
	out, err := MockLLM{}.Complete(context.Background(), Prompt{User: "sources", Subject: "cli"})
	require.NoError(t, err)
	assert.Equal(t, "cli Setup Guide", ExtractTitle(out))
	assert.Contains(t, out, "sources")
}
