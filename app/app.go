package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"google.golang.org/grpc"

	translateGrpc "video-translate-service/ddd/adapter/grpc"
	translateHttp "video-translate-service/ddd/adapter/http"
	"video-translate-service/pkg/config"
	"video-translate-service/pkg/logger"
	"video-translate-service/pkg/observability"
)

// Run 启动完整服务: HTTP API、gRPC 健康检查、工作池、kafka 消费与 etcd 注册
func Run(cfgPath string) {
	fmt.Println("[STARTUP] Starting video translate service...")

	cfg, cleanup := bootstrap(cfgPath)
	defer cleanup()

	ctx := context.Background()
	container, err := Build(ctx, cfg, Options{Consume: true, Register: true})
	if err != nil {
		logger.Fatal(fmt.Sprintf("Failed to initialize service error=%v", err))
	}

	// gRPC 健康检查服务需要先于 etcd 注册监听
	grpcAddr := fmt.Sprintf("%s:%d", cfg.GRPCServer.Host, cfg.GRPCServer.Port)
	grpcListener, err := net.Listen("tcp", grpcAddr)
	if err != nil {
		logger.Fatal(fmt.Sprintf("Failed to listen on gRPC port address=%s error=%v", grpcAddr, err))
	}
	healthServer := translateGrpc.NewHealthServer()
	go func() {
		logger.Infof("gRPC server started address=%s service=%s", grpcAddr, translateGrpc.ServiceName)
		if err := healthServer.Server().Serve(grpcListener); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			logger.Errorf("gRPC server encountered an error error=%v", err)
		}
	}()

	logger.Infof("Starting background tasks...")
	if err := container.Tasks.StartAll(ctx); err != nil {
		logger.Fatal(fmt.Sprintf("Failed to start background tasks error=%v", err))
	}
	healthServer.SetServing(true)

	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	engine := gin.New()
	router := translateHttp.NewRouter(container.App, translateHttp.ControllerOptions{
		UploadDir:      cfg.Media.FFmpeg.TempDir,
		MaxUploadSize:  cfg.Server.MaxUploadSize,
		RequestTimeout: cfg.Server.RequestTimeout,
	}, cfg.JWT)
	router.SetupMiddleware(engine)
	router.SetupRoutes(engine)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal(fmt.Sprintf("Failed to start HTTP server error=%v", err))
		}
	}()
	logger.Infof("HTTP server started address=%s health_url=%s api_url=%s", addr,
		fmt.Sprintf("http://localhost:%d/health", cfg.Server.Port), fmt.Sprintf("http://localhost:%d/api/v1", cfg.Server.Port))

	waitForSignal()
	logger.Infof("Received shutdown signal, shutting down server...")
	healthServer.SetServing(false)

	// 先停止接收新请求，再让工作池在宽限期内收尾
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Server forced to close error=%v", err)
	}

	logger.Infof("Shutting down components...")
	container.Close()

	logger.Infof("Stopping gRPC server... address=%s", grpcAddr)
	healthServer.GracefulStop()

	logger.Infof("Server exited safely")
	fmt.Println("[SHUTDOWN] Video translate service exited safely")
}

// RunWorker 只运行工作池和 kafka 消费，不对外提供 HTTP
func RunWorker(cfgPath string) {
	cfg, cleanup := bootstrap(cfgPath)
	defer cleanup()

	if !cfg.Kafka.Enabled {
		logger.Fatal("Worker mode requires kafka.enabled")
	}
	ctx := context.Background()
	container, err := Build(ctx, cfg, Options{Consume: true})
	if err != nil {
		logger.Fatal(fmt.Sprintf("Failed to initialize worker error=%v", err))
	}
	if err := container.Tasks.StartAll(ctx); err != nil {
		logger.Fatal(fmt.Sprintf("Failed to start background tasks error=%v", err))
	}
	logger.Infof("Translate worker started id=%s concurrency=%d topic=%s",
		cfg.Worker.WorkerID, cfg.Worker.MaxConcurrentTasks, cfg.Kafka.Topics.TranslateRequests)

	waitForSignal()
	logger.Infof("Received shutdown signal, draining worker...")
	container.Close()
	stats := container.Worker.GetStats()
	logger.Infof("Worker exited processed=%d successful=%d failed=%d abandoned=%d",
		stats.ProcessedJobs, stats.SuccessfulJobs, stats.FailedJobs, stats.AbandonedJobs)
}

// bootstrap 加载配置、初始化日志与持续剖析并检查外部二进制，返回的函数在退出前调用
func bootstrap(cfgPath string) (*config.Config, func()) {
	if cfgPath == "" {
		cfgPath = resolveConfigPath()
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Printf("[ERROR] Failed to load config (%s): %v\n", cfgPath, err)
		os.Exit(1)
	}
	config.SetGlobalConfig(cfg)

	logService := logger.NewLogger(cfg)
	logger.SetGlobalLogger(logService)
	logger.Debug("Logger initialized", map[string]interface{}{
		"level":  cfg.Log.Level,
		"format": cfg.Log.Format,
		"output": cfg.Log.Output,
	})
	logger.Infof("Config loaded path=%s storage=%s database=%s", cfgPath, cfg.Storage.Backend, cfg.Database.Driver)

	// 缺少 ffmpeg/ffprobe/whisper 时直接在启动阶段失败
	for key, bin := range map[string]string{
		"media.ffmpeg.binary_path": cfg.Media.FFmpeg.BinaryPath,
		"media.ffmpeg.probe_path":  cfg.Media.FFmpeg.ProbePath,
		"whisper.binary_path":      cfg.Whisper.BinaryPath,
	} {
		if _, err := exec.LookPath(bin); err != nil {
			logger.Fatal(fmt.Sprintf("Binary not found, please install or set %s binary=%s error=%s", key, bin, err.Error()))
		}
	}
	if strings.Contains(strings.ToLower(cfg.Media.FFmpeg.VideoCodec), "nvenc") {
		if out, err := exec.Command(cfg.Media.FFmpeg.BinaryPath, "-hide_banner", "-encoders").Output(); err == nil {
			if !strings.Contains(strings.ToLower(string(out)), "nvenc") {
				logger.Warnf("NVENC encoder not detected in FFmpeg, codec=%s", cfg.Media.FFmpeg.VideoCodec)
			}
		}
	}
	profiler := observability.StartProfiling(cfg.Profiling)
	return cfg, func() {
		if profiler != nil {
			_ = profiler.Stop()
		}
		logService.Close()
	}
}

func waitForSignal() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
}

// resolveConfigPath 根据环境选择配置文件，支持CONFIG_PATH覆盖、CONFIG_ENV区分环境
func resolveConfigPath() string {
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		return path
	}

	env := strings.ToLower(strings.TrimSpace(os.Getenv("CONFIG_ENV")))
	if env == "" {
		env = "dev"
	}

	switch env {
	case "prod", "production":
		return "configs/config_prod.yaml"
	case "dev", "development":
		return "configs/config.dev.yaml"
	default:
		return fmt.Sprintf("configs/config.%s.yaml", env)
	}
}
