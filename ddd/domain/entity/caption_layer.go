package entity

// CaptionLayer 一张字幕图片及其显示窗口 [Start, End)
type CaptionLayer struct {
	ImagePath string
	Text      string
	Start     float64
	End       float64
	Width     int
	Height    int
}
