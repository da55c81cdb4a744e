package vo

// MediaInfo ffprobe 探测到的基础信息
type MediaInfo struct {
	DurationSeconds float64
	Width           int
	Height          int
	HasAudio        bool
}
