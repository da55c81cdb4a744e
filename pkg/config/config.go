package config

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/spf13/viper"
)

// Config 应用配置
type Config struct {
	Server          ServerConfig          `mapstructure:"server"`
	Database        DatabaseConfig        `mapstructure:"database"`
	Redis           RedisConfig           `mapstructure:"redis"`
	Kafka           KafkaConfig           `mapstructure:"kafka"`
	JWT             JWTConfig             `mapstructure:"jwt"`
	Log             LogConfig             `mapstructure:"log"`
	Minio           MinioConfig           `mapstructure:"minio"`
	Supabase        SupabaseConfig        `mapstructure:"supabase"`
	Storage         StorageConfig         `mapstructure:"storage"`
	Media           MediaConfig           `mapstructure:"media"`
	Whisper         WhisperConfig         `mapstructure:"whisper"`
	Translate       TranslateConfig       `mapstructure:"translate"`
	TTS             TTSConfig             `mapstructure:"tts"`
	Caption         CaptionConfig         `mapstructure:"caption"`
	Worker          WorkerConfig          `mapstructure:"worker"`
	Cache           CacheConfig           `mapstructure:"cache"`
	ServiceRegistry ServiceRegistryConfig `mapstructure:"service_registry"`
	GRPCServer      GRPCServerConfig      `mapstructure:"grpc_server"`
	Profiling       ProfilingConfig       `mapstructure:"profiling"`
	Public          PublicConfig          `mapstructure:"public"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Host           string        `mapstructure:"host"`
	Port           int           `mapstructure:"port"`
	Mode           string        `mapstructure:"mode"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	MaxUploadSize  int64         `mapstructure:"max_upload_size"`
}

// DatabaseConfig 数据库配置, driver 取值 mysql 或 supabase
type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"`
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Username        string        `mapstructure:"username"`
	Password        string        `mapstructure:"password"`
	Database        string        `mapstructure:"database"`
	Charset         string        `mapstructure:"charset"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
}

// RedisConfig Redis配置
type RedisConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	EnableTLS    bool          `mapstructure:"enable_tls"`
	KeyPrefix    string        `mapstructure:"key_prefix"`
}

// KafkaConfig Kafka配置
type KafkaConfig struct {
	BootstrapServers    []string          `mapstructure:"bootstrap_servers"`
	ClientID            string            `mapstructure:"client_id"`
	GroupID             string            `mapstructure:"group_id"`
	Enabled             bool              `mapstructure:"enabled"`
	Topics              KafkaTopicsConfig `mapstructure:"topics"`
	RewriteLocalhost    bool              `mapstructure:"rewrite_localhost"`
	CommitOnDecodeError bool              `mapstructure:"commit_on_decode_error"`
}

type KafkaTopicsConfig struct {
	TranslateRequests string `mapstructure:"translate_requests"`
	TranslateEvents   string `mapstructure:"translate_events"`
}

// JWTConfig JWT配置, secret 为空时不启用鉴权
type JWTConfig struct {
	Secret string `mapstructure:"secret"`
	Issuer string `mapstructure:"issuer"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level    string `mapstructure:"level"`
	Format   string `mapstructure:"format"`
	Output   string `mapstructure:"output"`
	Filename string `mapstructure:"filename"`
}

// MinioConfig MinIO配置
type MinioConfig struct {
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	AccessKey       string `mapstructure:"access_key"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	SecretKey       string `mapstructure:"secret_key"`
	UseSSL          bool   `mapstructure:"use_ssl"`
	BucketName      string `mapstructure:"bucket_name"`
	Region          string `mapstructure:"region"`
}

// SupabaseConfig Supabase项目配置（存储与数据表）
type SupabaseConfig struct {
	URL    string `mapstructure:"url"`
	Key    string `mapstructure:"key"`
	Bucket string `mapstructure:"bucket"`
	Table  string `mapstructure:"table"`
}

// StorageConfig 产物存储配置, backend 取值 minio 或 supabase
type StorageConfig struct {
	Backend         string        `mapstructure:"backend"`
	SignedURLTTL    time.Duration `mapstructure:"signed_url_ttl"`
	VideoPrefix     string        `mapstructure:"video_prefix"`
	ThumbnailPrefix string        `mapstructure:"thumbnail_prefix"`
	OriginalPrefix  string        `mapstructure:"original_prefix"`
}

// MediaConfig 音视频处理配置
type MediaConfig struct {
	FFmpeg    FFmpegConfig    `mapstructure:"ffmpeg"`
	Thumbnail ThumbnailConfig `mapstructure:"thumbnail"`
	Compose   ComposeConfig   `mapstructure:"compose"`
}

// FFmpegConfig FFmpeg相关配置
type FFmpegConfig struct {
	BinaryPath  string        `mapstructure:"binary_path"`
	ProbePath   string        `mapstructure:"probe_path"`
	TempDir     string        `mapstructure:"temp_dir"`
	Timeout     time.Duration `mapstructure:"timeout"`
	VideoCodec  string        `mapstructure:"video_codec"`
	VideoPreset string        `mapstructure:"video_preset"`
	Threads     int           `mapstructure:"threads"`
}

// ThumbnailConfig 缩略图配置
type ThumbnailConfig struct {
	Offset time.Duration `mapstructure:"offset"`
}

// ComposeConfig 合成配置
type ComposeConfig struct {
	TrimToShortest bool `mapstructure:"trim_to_shortest"`
}

// WhisperConfig 语音识别配置
type WhisperConfig struct {
	BinaryPath string `mapstructure:"binary_path"`
	Model      string `mapstructure:"model"`
	Language   string `mapstructure:"language"`
}

// TranslateConfig 文本翻译配置
type TranslateConfig struct {
	Endpoint          string        `mapstructure:"endpoint"`
	DefaultTargetLang string        `mapstructure:"default_target_lang"`
	Timeout           time.Duration `mapstructure:"timeout"`
	MaxChunkChars     int           `mapstructure:"max_chunk_chars"`
}

// TTSConfig 语音合成配置
type TTSConfig struct {
	Endpoint      string        `mapstructure:"endpoint"`
	Timeout       time.Duration `mapstructure:"timeout"`
	MaxChunkChars int           `mapstructure:"max_chunk_chars"`
}

// CaptionConfig 字幕渲染配置
type CaptionConfig struct {
	FontPath       string  `mapstructure:"font_path"`
	FontSize       float64 `mapstructure:"font_size"`
	MinFontSize    float64 `mapstructure:"min_font_size"`
	FontStep       float64 `mapstructure:"font_step"`
	Padding        int     `mapstructure:"padding"`
	BottomMargin   int     `mapstructure:"bottom_margin"`
	MaxWidthRatio  float64 `mapstructure:"max_width_ratio"`
	MaxHeightRatio float64 `mapstructure:"max_height_ratio"` // 字幕块占画面高度的上限
	MaxLines       int     `mapstructure:"max_lines"`
}

// WorkerConfig Worker相关配置
type WorkerConfig struct {
	WorkerID            string        `mapstructure:"worker_id"`
	MaxConcurrentTasks  int           `mapstructure:"max_concurrent_tasks"`
	QueueCapacity       int           `mapstructure:"queue_capacity"`
	JobTimeout          time.Duration `mapstructure:"job_timeout"`
	ShutdownGracePeriod time.Duration `mapstructure:"shutdown_grace_period"`
}

// CacheConfig Redis缓存过期时间
type CacheConfig struct {
	TranscriptTTL time.Duration `mapstructure:"transcript_ttl"`
	StatusTTL     time.Duration `mapstructure:"status_ttl"`
}

// ServiceRegistryConfig registration configuration.
type ServiceRegistryConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	Endpoints       []string      `mapstructure:"endpoints"`
	DialTimeout     time.Duration `mapstructure:"dial_timeout"`
	Username        string        `mapstructure:"username"`
	Password        string        `mapstructure:"password"`
	ServiceName     string        `mapstructure:"service_name"`
	ServiceID       string        `mapstructure:"service_id"`
	RegisterHost    string        `mapstructure:"register_host"`
	TTL             time.Duration `mapstructure:"ttl"`
	RefreshInterval time.Duration `mapstructure:"refresh_interval"`
}

// GRPCServerConfig gRPC server configuration.
type GRPCServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// ProfilingConfig pyroscope 持续剖析配置, server_address 为空时关闭
type ProfilingConfig struct {
	ApplicationName string `mapstructure:"application_name"`
	ServerAddress   string `mapstructure:"server_address"`
}

// PublicConfig 对外访问配置
type PublicConfig struct {
	StorageBase string `mapstructure:"storage_base"`
}

var (
	globalMu  sync.RWMutex
	globalCfg *Config
)

// SetGlobalConfig 设置全局配置
func SetGlobalConfig(cfg *Config) {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalCfg = cfg
}

// GetGlobalConfig 获取全局配置
func GetGlobalConfig() *Config {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return globalCfg
}

// Load 加载配置
func Load(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	v.SetDefault("database.driver", "mysql")
	v.SetDefault("storage.backend", "minio")
	v.SetDefault("kafka.enabled", false)
	v.SetDefault("kafka.client_id", "video-translate-service")
	v.SetDefault("kafka.group_id", "video-translate-service-group")
	v.SetDefault("kafka.topics.translate_requests", "video.translate.requests")
	v.SetDefault("kafka.topics.translate_events", "video.translate.events")
	v.SetDefault("kafka.commit_on_decode_error", true)
	v.SetDefault("translate.default_target_lang", "fr")
	v.SetDefault("whisper.model", "base")

	// 设置环境变量前缀
	v.SetEnvPrefix("GO_VIDEO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	config.normalize()

	return &config, nil
}

// normalize 补全配置的默认值
func (c *Config) normalize() {
	// 兼容不同的密钥字段
	if c.Minio.AccessKeyID == "" {
		c.Minio.AccessKeyID = c.Minio.AccessKey
	}
	if c.Minio.SecretAccessKey == "" {
		c.Minio.SecretAccessKey = c.Minio.SecretKey
	}
	if c.Minio.BucketName == "" {
		c.Minio.BucketName = "translated-videos"
	}
	if c.Supabase.Bucket == "" {
		c.Supabase.Bucket = "translated_videos"
	}
	if c.Supabase.Table == "" {
		c.Supabase.Table = "videos"
	}

	if c.Server.Port == 0 {
		c.Server.Port = 8083
	}
	if c.Server.RequestTimeout <= 0 {
		c.Server.RequestTimeout = 15 * time.Minute
	}
	if c.Server.MaxUploadSize <= 0 {
		c.Server.MaxUploadSize = 512 << 20
	}

	if c.Storage.VideoPrefix == "" {
		c.Storage.VideoPrefix = "translated"
	}
	if c.Storage.ThumbnailPrefix == "" {
		c.Storage.ThumbnailPrefix = "thumbnails"
	}
	if c.Storage.OriginalPrefix == "" {
		c.Storage.OriginalPrefix = "originals"
	}
	if c.Storage.SignedURLTTL < 0 {
		c.Storage.SignedURLTTL = 0
	}

	// Worker相关默认值
	if c.Worker.MaxConcurrentTasks <= 0 {
		c.Worker.MaxConcurrentTasks = 2
	}
	if c.Worker.QueueCapacity <= 0 {
		c.Worker.QueueCapacity = c.Worker.MaxConcurrentTasks * 10
	}
	if c.Worker.JobTimeout <= 0 {
		c.Worker.JobTimeout = 30 * time.Minute
	}
	if c.Worker.ShutdownGracePeriod == 0 {
		c.Worker.ShutdownGracePeriod = 10 * time.Second
	}
	if c.Worker.WorkerID == "" {
		c.Worker.WorkerID = "translate-worker"
	}

	// FFmpeg临时目录默认值
	ff := &c.Media.FFmpeg
	if ff.TempDir == "" {
		ff.TempDir = "/tmp/video-translate"
	}
	if ff.BinaryPath == "" {
		ff.BinaryPath = "ffmpeg"
	}
	if ff.ProbePath == "" {
		ff.ProbePath = "ffprobe"
	}
	if ff.VideoCodec == "" {
		ff.VideoCodec = "libx264"
	}
	if ff.VideoPreset == "" {
		ff.VideoPreset = "medium"
	}
	if ff.Threads < 0 {
		ff.Threads = 0
	}
	if ff.Timeout == 0 {
		ff.Timeout = time.Hour
	}
	if c.Media.Thumbnail.Offset <= 0 {
		c.Media.Thumbnail.Offset = time.Second
	}

	if c.Whisper.BinaryPath == "" {
		c.Whisper.BinaryPath = "whisper"
	}
	if c.Whisper.Model == "" {
		c.Whisper.Model = "base"
	}

	if c.Translate.Endpoint == "" {
		c.Translate.Endpoint = "https://translate.googleapis.com/translate_a/single"
	}
	if c.Translate.DefaultTargetLang == "" {
		c.Translate.DefaultTargetLang = "fr"
	}
	if c.Translate.Timeout <= 0 {
		c.Translate.Timeout = 30 * time.Second
	}
	if c.Translate.MaxChunkChars <= 0 {
		c.Translate.MaxChunkChars = 4500
	}

	if c.TTS.Endpoint == "" {
		c.TTS.Endpoint = "https://translate.google.com/translate_tts"
	}
	if c.TTS.Timeout <= 0 {
		c.TTS.Timeout = 30 * time.Second
	}
	if c.TTS.MaxChunkChars <= 0 {
		c.TTS.MaxChunkChars = 100
	}

	cp := &c.Caption
	if cp.FontSize <= 0 {
		cp.FontSize = 48
	}
	if cp.MinFontSize <= 0 {
		cp.MinFontSize = 16
	}
	if cp.MinFontSize > cp.FontSize {
		cp.MinFontSize = cp.FontSize
	}
	if cp.FontStep <= 0 {
		cp.FontStep = 4
	}
	if cp.Padding <= 0 {
		cp.Padding = 12
	}
	if cp.BottomMargin <= 0 {
		cp.BottomMargin = 40
	}
	if cp.MaxWidthRatio <= 0 || cp.MaxWidthRatio > 1 {
		cp.MaxWidthRatio = 0.9
	}
	if cp.MaxHeightRatio <= 0 || cp.MaxHeightRatio > 1 {
		cp.MaxHeightRatio = 0.3
	}
	if cp.MaxLines <= 0 {
		cp.MaxLines = 3
	}

	if c.Cache.TranscriptTTL <= 0 {
		c.Cache.TranscriptTTL = 7 * 24 * time.Hour
	}
	if c.Cache.StatusTTL <= 0 {
		c.Cache.StatusTTL = 24 * time.Hour
	}
	if c.Redis.KeyPrefix == "" {
		c.Redis.KeyPrefix = "vts"
	}

	if c.GRPCServer.Host == "" {
		c.GRPCServer.Host = "0.0.0.0"
	}
	if c.GRPCServer.Port == 0 {
		c.GRPCServer.Port = 9095
	}
	if c.ServiceRegistry.ServiceName == "" {
		c.ServiceRegistry.ServiceName = "video-translate-service"
	}
	if c.ServiceRegistry.TTL == 0 {
		c.ServiceRegistry.TTL = 30 * time.Second
	}
	if c.ServiceRegistry.RefreshInterval == 0 {
		c.ServiceRegistry.RefreshInterval = 10 * time.Second
	}
	if c.ServiceRegistry.DialTimeout == 0 {
		c.ServiceRegistry.DialTimeout = 5 * time.Second
	}
	if len(c.Kafka.BootstrapServers) == 0 {
		c.Kafka.BootstrapServers = []string{"localhost:29092"}
	}
	if c.Kafka.ClientID == "" {
		c.Kafka.ClientID = "video-translate-service"
	}
	if c.Profiling.ApplicationName == "" {
		c.Profiling.ApplicationName = "video-translate-service"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// GetDSN 获取数据库连接字符串
func (c *DatabaseConfig) GetDSN() string {
	charset := c.Charset
	if charset == "" {
		charset = "utf8mb4"
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=True&loc=Local",
		c.Username, c.Password, c.Host, c.Port, c.Database, charset)
}

// GetRedisAddr 获取Redis地址
func (c *RedisConfig) GetRedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
