package app

import (
	"context"
	"fmt"
	"net"
	"strconv"

	"video-translate-service/ddd/adapter/component"
	translateApp "video-translate-service/ddd/application/app"
	"video-translate-service/ddd/domain/gateway"
	"video-translate-service/ddd/domain/repo"
	"video-translate-service/ddd/domain/service"
	"video-translate-service/ddd/infrastructure/asr"
	"video-translate-service/ddd/infrastructure/cache"
	"video-translate-service/ddd/infrastructure/caption"
	"video-translate-service/ddd/infrastructure/database/persistence"
	"video-translate-service/ddd/infrastructure/database/po"
	"video-translate-service/ddd/infrastructure/events"
	"video-translate-service/ddd/infrastructure/executor"
	"video-translate-service/ddd/infrastructure/fetcher"
	"video-translate-service/ddd/infrastructure/progress"
	"video-translate-service/ddd/infrastructure/queue"
	"video-translate-service/ddd/infrastructure/storage"
	"video-translate-service/ddd/infrastructure/translator"
	"video-translate-service/ddd/infrastructure/tts"
	"video-translate-service/ddd/infrastructure/worker"
	"video-translate-service/internal/resource"
	"video-translate-service/pkg/config"
	"video-translate-service/pkg/logger"
	"video-translate-service/pkg/registry"
	"video-translate-service/pkg/task"
)

// Container 进程内的依赖装配结果
type Container struct {
	Config    *config.Config
	Resources *resource.Resources
	App       translateApp.TranslateApp
	Worker    *worker.TranslateWorker
	Tasks     *task.Manager
}

// Options 控制装配哪些后台任务
type Options struct {
	// Consume 是否订阅 kafka 翻译请求
	Consume bool
	// Register 是否向 etcd 注册 gRPC 地址
	Register bool
}

// Build 打开外部资源并装配应用层、工作池与后台任务
func Build(ctx context.Context, cfg *config.Config, opts Options) (c *Container, err error) {
	res, err := resource.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			res.Close()
		}
	}()

	records, err := buildRecordRepository(cfg, res)
	if err != nil {
		return nil, err
	}
	store, err := buildStorage(cfg, res)
	if err != nil {
		return nil, err
	}
	renderer, err := caption.NewRenderer(cfg.Caption)
	if err != nil {
		return nil, fmt.Errorf("load caption font: %w", err)
	}

	var (
		statusStore gateway.JobStatusStore
		transcripts gateway.TranscriptCache
		reporter    gateway.TranslationResultReporter
	)
	if res.Redis != nil {
		statusStore = progress.NewRedisStore(res.Redis.Client(), cfg.Cache.StatusTTL)
		transcripts = cache.NewRedisTranscriptCache(res.Redis.Client(), cfg.Cache.TranscriptTTL)
	} else {
		statusStore = progress.NewMemoryStore(cfg.Cache.StatusTTL)
	}
	if res.Kafka != nil && cfg.Kafka.Topics.TranslateEvents != "" {
		reporter = events.NewKafkaReporter(res.Kafka.Client(), cfg.Kafka.Topics.TranslateEvents)
	}
	sink := progress.NewStoreSink(statusStore)

	runner := executor.NewCmdRunner()
	media := executor.NewFFmpegExecutor(cfg.Media, cfg.Caption, runner)
	translation := service.NewTranslationService(translator.NewGoogleTranslator(cfg.Translate, nil))

	pipeline := service.NewPipelineService(service.PipelineDeps{
		Resolver:    service.NewSourceResolver(fetcher.NewHTTPFetcher(nil, cfg.Server.MaxUploadSize)),
		Speech:      service.NewSpeechToTextService(media, asr.NewWhisperRecognizer(cfg.Whisper, runner)),
		Synthesis:   service.NewSynthesisService(translation, tts.NewGoogleTTS(cfg.TTS, nil), renderer),
		Media:       media,
		Publisher:   service.NewArtifactPublisher(store, cfg.Storage.SignedURLTTL),
		Records:     service.NewJobRecordWriter(records),
		Transcripts: transcripts,
		Progress:    sink,
		Reporter:    reporter,
	}, service.PipelineOptions{
		TempRoot:        cfg.Media.FFmpeg.TempDir,
		ThumbnailOffset: cfg.Media.Thumbnail.Offset,
		VideoPrefix:     cfg.Storage.VideoPrefix,
		ThumbnailPrefix: cfg.Storage.ThumbnailPrefix,
		OriginalPrefix:  cfg.Storage.OriginalPrefix,
	})

	jobQueue := queue.NewMemoryJobQueue(cfg.Worker.QueueCapacity)
	ta := translateApp.NewTranslateApp(translateApp.TranslateAppDeps{
		Pipeline:    pipeline,
		Queue:       jobQueue,
		Status:      statusStore,
		Progress:    sink,
		DefaultLang: cfg.Translate.DefaultTargetLang,
	})
	w := worker.NewTranslateWorker(jobQueue, ta.HandleJob, worker.Options{
		ID:          cfg.Worker.WorkerID,
		Concurrency: cfg.Worker.MaxConcurrentTasks,
		JobTimeout:  cfg.Worker.JobTimeout,
		GracePeriod: cfg.Worker.ShutdownGracePeriod,
		OnAbandon:   ta.AbandonJob,
	})

	tasks := task.NewManager()
	tasks.Register(w)
	if opts.Consume && res.Kafka != nil {
		reader := res.Kafka.Client().Reader(cfg.Kafka.Topics.TranslateRequests, cfg.Kafka.GroupID)
		tasks.Register(component.NewTranslateRequestConsumer(ta, reader, cfg.Kafka.CommitOnDecodeError))
	}
	if opts.Register && cfg.ServiceRegistry.Enabled {
		reg, err := registry.NewServiceRegistry(cfg.ServiceRegistry, registerAddr(cfg))
		if err != nil {
			return nil, err
		}
		tasks.Register(reg)
	}

	return &Container{
		Config:    cfg,
		Resources: res,
		App:       ta,
		Worker:    w,
		Tasks:     tasks,
	}, nil
}

// Close 停止后台任务并释放资源
func (c *Container) Close() {
	if err := c.Tasks.StopAll(); err != nil {
		logger.Warnf("Background tasks stopped with error error=%v", err)
	}
	c.Resources.Close()
}

func buildRecordRepository(cfg *config.Config, res *resource.Resources) (repo.VideoRecordRepository, error) {
	if res.Mysql != nil {
		if cfg.Database.AutoMigrate {
			if err := res.Mysql.MainDB().AutoMigrate(&po.VideoRecord{}); err != nil {
				return nil, fmt.Errorf("auto migrate videos: %w", err)
			}
		}
		return persistence.NewVideoRecordRepository(res.Mysql.MainDB()), nil
	}
	if res.Supabase != nil && cfg.Database.Driver == "supabase" {
		return persistence.NewSupabaseVideoRepository(res.Supabase.Client(), res.Supabase.Table()), nil
	}
	return nil, fmt.Errorf("no record store for database driver %q", cfg.Database.Driver)
}

func buildStorage(cfg *config.Config, res *resource.Resources) (gateway.StorageGateway, error) {
	switch {
	case res.Minio != nil:
		return storage.NewMinioStorage(res.Minio, cfg.Public.StorageBase), nil
	case res.Supabase != nil && cfg.Storage.Backend == "supabase":
		return storage.NewSupabaseStorage(res.Supabase), nil
	}
	return nil, fmt.Errorf("no object storage for backend %q", cfg.Storage.Backend)
}

// registerAddr 注册到 etcd 的 gRPC 地址，监听 0.0.0.0 时需要 register_host
func registerAddr(cfg *config.Config) string {
	host := cfg.ServiceRegistry.RegisterHost
	if host == "" {
		host = cfg.GRPCServer.Host
	}
	return net.JoinHostPort(host, strconv.Itoa(cfg.GRPCServer.Port))
}
