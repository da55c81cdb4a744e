package main

import (
	"flag"

	"video-translate-service/app"
)

// 独立的 kafka 工作进程，等价于 video-translate-service worker
func main() {
	cfgPath := flag.String("config", "", "config file")
	flag.Parse()
	app.RunWorker(*cfgPath)
}
