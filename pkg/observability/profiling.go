package observability

import (
	"os"

	"github.com/grafana/pyroscope-go"

	"video-translate-service/pkg/config"
	"video-translate-service/pkg/logger"
)

// StartProfiling 启动 pyroscope 持续剖析; 未配置地址时返回 nil。
// 调用方负责在退出前调用 Stop。
func StartProfiling(cfg config.ProfilingConfig) *pyroscope.Profiler {
	addr := cfg.ServerAddress
	if env := os.Getenv("PYROSCOPE_SERVER_ADDRESS"); env != "" {
		addr = env
	}
	if addr == "" {
		return nil
	}
	hostname, _ := os.Hostname()
	profiler, err := pyroscope.Start(pyroscope.Config{
		ApplicationName: cfg.ApplicationName,
		ServerAddress:   addr,
		Tags:            map[string]string{"hostname": hostname},
		ProfileTypes: []pyroscope.ProfileType{
			pyroscope.ProfileCPU,
			pyroscope.ProfileAllocObjects,
			pyroscope.ProfileAllocSpace,
			pyroscope.ProfileInuseObjects,
			pyroscope.ProfileInuseSpace,
			pyroscope.ProfileGoroutines,
		},
	})
	if err != nil {
		logger.Warnf("Pyroscope profiling disabled error=%v", err)
		return nil
	}
	logger.Infof("Pyroscope profiling started app=%s server=%s", cfg.ApplicationName, addr)
	return profiler
}
