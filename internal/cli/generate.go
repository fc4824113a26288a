package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"docsynth/internal/client"
	"docsynth/internal/history"
	"docsynth/internal/workflow"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

type generateOptions struct {
	urls        []string
	urlsFile    string
	files       []string
	projectType string
	server      string
	out         string
}

func newGenerateCommand(opts *rootOptions) *cobra.Command {
	g := &generateOptions{}
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Submit URLs and files and print the generated setup guide",
		RunE: func(cmd *cobra.Command, args []string) error {
			return g.run(cmd, opts)
		},
	}
	cmd.Flags().StringArrayVarP(&g.urls, "url", "u", nil, "documentation URL (repeatable)")
	cmd.Flags().StringVar(&g.urlsFile, "urls-file", "", "file with one URL per line")
	cmd.Flags().StringArrayVarP(&g.files, "file", "f", nil, "file to attach (repeatable)")
	cmd.Flags().StringVarP(&g.projectType, "project-type", "t", "", "project type, e.g. web-app")
	cmd.Flags().StringVar(&g.server, "server", "", "generation service base URL (overrides client.base_url)")
	cmd.Flags().StringVarP(&g.out, "out", "o", "", "write the guide to this file instead of stdout")
	return cmd
}

// run 依次走完四个阶段：urls -> 附件 -> 项目类型 -> 结果
func (g *generateOptions) run(cmd *cobra.Command, opts *rootOptions) error {
	clientCfg := opts.cfg.Client
	if g.server != "" {
		clientCfg.BaseURL = g.server
	}
	c := client.New(clientCfg)
	ctx := cmd.Context()

	store := history.New()
	if err := c.LoadHistory(ctx, store); err != nil {
		logrus.WithError(err).Warn("加载历史失败，继续生成")
	}

	wf, err := workflow.New(c, store, workflow.WithLogger(logrus.WithField("cmd", "generate")))
	if err != nil {
		return err
	}

	urlsText, err := g.urlsText()
	if err != nil {
		return err
	}
	wf.SetURLs(urlsText)
	if err := wf.Advance(); err != nil {
		return err
	}

	for _, path := range g.files {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("读取附件失败: %w", err)
		}
		if err := wf.AddFiles(workflow.Attachment{Name: filepath.Base(path), Data: data}); err != nil {
			return err
		}
	}
	if err := wf.Advance(); err != nil {
		return err
	}

	wf.SetProjectType(g.projectType)
	res, err := wf.Submit(ctx)
	if err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), wf.Notice())
		return err
	}

	if g.out != "" {
		if err := os.WriteFile(g.out, []byte(res.Content+"\n"), 0o644); err != nil {
			return fmt.Errorf("写入指南失败: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "guide %s written to %s (%d records in history)\n", res.ID, g.out, store.Len())
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), res.Content)
	return nil
}

func (g *generateOptions) urlsText() (string, error) {
	lines := append([]string(nil), g.urls...)
	if g.urlsFile != "" {
		data, err := os.ReadFile(g.urlsFile)
		if err != nil {
			return "", fmt.Errorf("读取地址文件失败: %w", err)
		}
		lines = append(lines, strings.TrimRight(string(data), "\n"))
	}
	return strings.Join(lines, "\n"), nil
}
