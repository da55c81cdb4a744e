package app

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"video-translate-service/ddd/application/cqe"
	"video-translate-service/pkg/errno"
)

// NewRootCommand 命令行入口: 默认启动服务，translate/retranslate 在本进程内执行一次翻译
func NewRootCommand() *cobra.Command {
	var cfgPath string

	root := &cobra.Command{
		Use:           "video-translate-service",
		Short:         "Translate videos into another language with dubbed audio or burned-in subtitles",
		SilenceUsage:  true,
		SilenceErrors: true,
		Run: func(cmd *cobra.Command, args []string) {
			Run(cfgPath)
		},
	}
	root.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "config file (default: $CONFIG_PATH or configs/config.<env>.yaml)")

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Start the HTTP API, worker pool and background consumers",
			Run: func(cmd *cobra.Command, args []string) {
				Run(cfgPath)
			},
		},
		&cobra.Command{
			Use:   "worker",
			Short: "Consume translate requests from kafka without serving HTTP",
			Run: func(cmd *cobra.Command, args []string) {
				RunWorker(cfgPath)
			},
		},
		newTranslateCommand(&cfgPath),
		newRetranslateCommand(&cfgPath),
	)
	return root
}

// Execute 运行命令行，失败时以非零状态退出
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newTranslateCommand(cfgPath *string) *cobra.Command {
	req := &cqe.TranslateVideoReq{}
	var file string
	cmd := &cobra.Command{
		Use:   "translate",
		Short: "Translate a local file or a remote URL once and print the result as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			req.LocalPath = file
			return runOnce(cmd.Context(), *cfgPath, func(ctx context.Context, c *Container) (interface{}, error) {
				return c.App.TranslateVideo(ctx, req)
			})
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "local video file")
	cmd.Flags().StringVar(&req.OriginalURL, "url", "", "remote video URL")
	cmd.Flags().StringVar(&req.TargetLang, "lang", "", "target language (default translate.default_target_lang)")
	cmd.Flags().StringVar(&req.TranslationMode, "mode", "voice", "voice or subtitle")
	cmd.Flags().StringVar(&req.UserID, "user", "", "owner user id")
	cmd.Flags().StringVar(&req.Title, "title", "", "video title")
	return cmd
}

func newRetranslateCommand(cfgPath *string) *cobra.Command {
	req := &cqe.RetranslateVideoReq{}
	cmd := &cobra.Command{
		Use:   "retranslate <video-id>",
		Short: "Re-translate a stored video and print the result as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req.VideoID = args[0]
			return runOnce(cmd.Context(), *cfgPath, func(ctx context.Context, c *Container) (interface{}, error) {
				return c.App.Retranslate(ctx, req)
			})
		},
	}
	cmd.Flags().StringVar(&req.TargetLang, "lang", "", "target language")
	cmd.Flags().StringVar(&req.TranslationMode, "mode", "voice", "voice or subtitle")
	return cmd
}

// runOnce 装配依赖并只启动工作池，执行 fn 后输出 JSON
func runOnce(ctx context.Context, cfgPath string, fn func(context.Context, *Container) (interface{}, error)) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, cleanup := bootstrap(cfgPath)
	defer cleanup()

	c, err := Build(ctx, cfg, Options{})
	if err != nil {
		return err
	}
	defer c.Close()
	if err := c.Tasks.StartAll(ctx); err != nil {
		return err
	}

	result, err := fn(ctx, c)
	if err != nil {
		return fmt.Errorf("[%d] %w", errno.Decode(err).Code, err)
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}
