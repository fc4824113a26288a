// Package cli 命令行入口：serve 启动生成服务，generate / history 作为客户端调用它。
package cli

import (
	"errors"
	"io/fs"

	"docsynth/internal/config"
	"docsynth/internal/logging"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	configPath string
	verbose    bool
	cfg        *config.Config
}

func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "docsynth",
		Short:         "Generate project setup guides from documentation URLs and files",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.load(cmd.Flags().Changed("config"))
		},
	}
	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "config/config.yaml", "path to config.yaml")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logs")

	cmd.AddCommand(
		newServeCommand(opts),
		newGenerateCommand(opts),
		newHistoryCommand(opts),
	)
	return cmd
}

// load 读取配置；未显式指定且默认路径不存在时退回默认配置
func (o *rootOptions) load(explicit bool) error {
	cfg, err := config.LoadConfig(o.configPath)
	if err != nil {
		if explicit || !errors.Is(err, fs.ErrNotExist) {
			return err
		}
		cfg = config.FromEnv()
	}
	if o.verbose {
		cfg.Log.Level = "debug"
	}
	if err := logging.Setup(cfg.Log); err != nil {
		return err
	}
	logrus.WithField("config", o.configPath).Debug("配置已加载")
	o.cfg = cfg
	return nil
}

func Execute() error {
	return NewRootCommand().Execute()
}
