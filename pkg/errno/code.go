package errno

// code=0 请求成功
// code=4xx 客户端请求错误
// code=5xx 服务器端错误
// code=2xxxx 业务处理错误码

type Errno struct {
	Code    int
	Message string
}

// Error 实现error接口
func (e *Errno) Error() string {
	return e.Message
}

var (
	OK = &Errno{Code: 200, Message: "Success"}

	ErrInvalidParam   = &Errno{Code: 400, Message: "Invalid parameter"}
	ErrUnauthorized   = &Errno{Code: 401, Message: "Unauthorized"}
	ErrNotFound       = &Errno{Code: 404, Message: "Not found"}
	ErrInternalServer = &Errno{Code: 500, Message: "Internal server error"}
	ErrDatabase       = &Errno{Code: 501, Message: "Database error"}

	// 翻译流水线错误码
	ErrInvalidInput      = &Errno{Code: 20101, Message: "Invalid input"}
	ErrMissingSource     = &Errno{Code: 20102, Message: "Either a video file or an original URL is required"}
	ErrAmbiguousSource   = &Errno{Code: 20103, Message: "Provide either a video file or an original URL, not both"}
	ErrInvalidMode       = &Errno{Code: 20104, Message: "Translation mode must be voice or subtitle"}
	ErrVideoIDRequired   = &Errno{Code: 20105, Message: "Video id is required"}
	ErrMedia             = &Errno{Code: 20201, Message: "Media processing failed"}
	ErrTranscription     = &Errno{Code: 20202, Message: "Transcription failed"}
	ErrTranslation       = &Errno{Code: 20203, Message: "Translation failed"}
	ErrPublish           = &Errno{Code: 20204, Message: "Publishing artifacts failed"}
	ErrRecordNotFound    = &Errno{Code: 20301, Message: "Video not found"}
	ErrInvalidState      = &Errno{Code: 20302, Message: "Video has no original URL"}
	ErrQueueFull         = &Errno{Code: 20401, Message: "Job queue is full"}
	ErrJobNotFound       = &Errno{Code: 20402, Message: "Job not found"}
	ErrJobTimeout        = &Errno{Code: 20403, Message: "Job did not finish before the deadline"}
	ErrStatusTrackingOff = &Errno{Code: 20404, Message: "Job status tracking is not enabled"}
)
