package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"docsynth/internal/db"
	"docsynth/internal/router"
	"docsynth/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func newServeCommand(opts *rootOptions) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the guide generation service",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := opts.cfg
			if !opts.verbose {
				gin.SetMode(gin.ReleaseMode)
			}

			// 初始化数据库
			if err := db.InitDB(cfg); err != nil {
				return fmt.Errorf("初始化数据库失败: %w", err)
			}

			// 初始化服务
			svc, err := service.NewServiceContext(cfg)
			if err != nil {
				return fmt.Errorf("初始化服务失败: %w", err)
			}

			listen := addr
			if listen == "" {
				listen = fmt.Sprintf(":%d", cfg.Server.Port)
			}
			srv := &http.Server{
				Addr:              listen,
				Handler:           router.SetupRouter(svc),
				ReadHeaderTimeout: 10 * time.Second,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				logrus.WithFields(logrus.Fields{"addr": listen, "llm": cfg.LLM.Provider}).Info("服务启动")
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				if err != nil {
					return fmt.Errorf("启动服务失败: %w", err)
				}
				return nil
			case <-ctx.Done():
			}

			logrus.Info("正在关闭服务")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "http listen address (overrides server.port)")
	return cmd
}
