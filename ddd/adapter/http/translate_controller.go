package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"video-translate-service/ddd/application/app"
	"video-translate-service/ddd/application/cqe"
	"video-translate-service/pkg/errno"
	"video-translate-service/pkg/logger"
	"video-translate-service/pkg/middleware"
	"video-translate-service/pkg/restapi"
)

// ControllerOptions 上传与同步等待相关参数
type ControllerOptions struct {
	UploadDir      string
	MaxUploadSize  int64
	RequestTimeout time.Duration
}

type TranslateController struct {
	translateApp app.TranslateApp
	opts         ControllerOptions
}

func NewTranslateController(translateApp app.TranslateApp, opts ControllerOptions) *TranslateController {
	if opts.UploadDir == "" {
		opts.UploadDir = os.TempDir()
	}
	return &TranslateController{translateApp: translateApp, opts: opts}
}

// TranslateVideo POST /translate，multipart 字段 video 或表单字段 original_url
func (t *TranslateController) TranslateVideo(ctx *gin.Context) {
	if t.opts.MaxUploadSize > 0 {
		ctx.Request.Body = http.MaxBytesReader(ctx.Writer, ctx.Request.Body, t.opts.MaxUploadSize)
	}

	var req cqe.TranslateVideoReq
	if err := ctx.ShouldBind(&req); err != nil {
		restapi.Failed(ctx, errno.NewBizError(errno.ErrInvalidInput, err))
		return
	}
	if req.UserID == "" {
		req.UserID = middleware.UserUUID(ctx)
	}

	path, err := t.saveUpload(ctx)
	if err != nil {
		restapi.Failed(ctx, err)
		return
	}
	if path != "" {
		req.LocalPath = path
		req.TempUpload = true
	}

	if isAsync(ctx) {
		accepted, err := t.translateApp.SubmitTranslateVideo(ctx.Request.Context(), &req)
		if err != nil {
			restapi.Failed(ctx, err)
			return
		}
		restapi.Accepted(ctx, accepted)
		return
	}

	reqCtx, cancel := t.waitContext(ctx)
	defer cancel()
	result, err := t.translateApp.TranslateVideo(reqCtx, &req)
	if err != nil {
		restapi.Failed(ctx, err)
		return
	}
	restapi.Success(ctx, result)
}

// Retranslate POST /retranslate
func (t *TranslateController) Retranslate(ctx *gin.Context) {
	var req cqe.RetranslateVideoReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		restapi.Failed(ctx, errno.NewBizError(errno.ErrInvalidInput, err))
		return
	}

	if isAsync(ctx) {
		accepted, err := t.translateApp.SubmitRetranslate(ctx.Request.Context(), &req)
		if err != nil {
			restapi.Failed(ctx, err)
			return
		}
		restapi.Accepted(ctx, accepted)
		return
	}

	reqCtx, cancel := t.waitContext(ctx)
	defer cancel()
	result, err := t.translateApp.Retranslate(reqCtx, &req)
	if err != nil {
		restapi.Failed(ctx, err)
		return
	}
	restapi.Success(ctx, result)
}

// GetJob GET /jobs/:job_id
func (t *TranslateController) GetJob(ctx *gin.Context) {
	status, err := t.translateApp.GetJobStatus(ctx.Request.Context(), ctx.Param("job_id"))
	if err != nil {
		restapi.Failed(ctx, err)
		return
	}
	restapi.Success(ctx, status)
}

// saveUpload 把上传文件写入 UploadDir; 没有上传文件时返回空路径
func (t *TranslateController) saveUpload(ctx *gin.Context) (string, error) {
	file, err := ctx.FormFile("video")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return "", nil
		}
		return "", errno.NewBizError(errno.ErrInvalidInput, err)
	}
	if file.Size == 0 {
		return "", errno.NewBizError(errno.ErrInvalidInput, errors.New("uploaded video is empty"))
	}

	if err := os.MkdirAll(t.opts.UploadDir, 0o755); err != nil {
		return "", errno.NewBizError(errno.ErrInternalServer, err)
	}
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if ext == "" || len(ext) > 8 {
		ext = ".mp4"
	}
	// 保留原始文件名的主干，发布原视频时用作对象名
	stem := strings.TrimSuffix(filepath.Base(file.Filename), filepath.Ext(file.Filename))
	dir, err := os.MkdirTemp(t.opts.UploadDir, "upload-")
	if err != nil {
		return "", errno.NewBizError(errno.ErrInternalServer, err)
	}
	if stem == "" || stem == "." {
		stem = "upload-" + uuid.NewString()[:8]
	}
	dst := filepath.Join(dir, filepath.Base(stem)+ext)
	if err := ctx.SaveUploadedFile(file, dst); err != nil {
		_ = os.RemoveAll(dir)
		return "", errno.NewBizError(errno.ErrInternalServer, fmt.Errorf("save upload: %w", err))
	}
	logger.Info("Upload saved", map[string]interface{}{
		"file_name": file.Filename,
		"size":      file.Size,
		"path":      dst,
	})
	return dst, nil
}

func (t *TranslateController) waitContext(ctx *gin.Context) (context.Context, context.CancelFunc) {
	if t.opts.RequestTimeout > 0 {
		return context.WithTimeout(ctx.Request.Context(), t.opts.RequestTimeout)
	}
	return context.WithCancel(ctx.Request.Context())
}

func isAsync(ctx *gin.Context) bool {
	v := strings.ToLower(ctx.Query("async"))
	return v == "true" || v == "1"
}
