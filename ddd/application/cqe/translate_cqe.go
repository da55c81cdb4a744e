package cqe

import (
	"strings"

	"video-translate-service/ddd/domain/entity"
	"video-translate-service/ddd/domain/vo"
	"video-translate-service/pkg/errno"
)

// TranslateVideoReq 首次翻译请求; LocalPath 由上传适配器填写
type TranslateVideoReq struct {
	OriginalURL     string `form:"original_url" json:"original_url"`         // 原视频地址
	TargetLang      string `form:"target_lang" json:"target_lang"`           // 目标语言
	TranslationMode string `form:"translation_mode" json:"translation_mode"` // voice 或 subtitle
	UserID          string `form:"user_id" json:"user_id"`                   // 用户ID
	Title           string `form:"title" json:"title"`                       // 标题
	LocalPath       string `form:"-" json:"-"`                               // 已保存的上传文件
	TempUpload      bool   `form:"-" json:"-"`                               // LocalPath 所在目录在作业结束后删除
}

// Source 视频来源
func (r *TranslateVideoReq) Source() vo.MediaSource {
	return vo.MediaSource{
		LocalPath: strings.TrimSpace(r.LocalPath),
		RemoteURL: strings.TrimSpace(r.OriginalURL),
	}
}

// Validate 校验来源与模式
func (r *TranslateVideoReq) Validate() error {
	if err := r.Source().Validate(); err != nil {
		return err
	}
	if _, err := vo.ParseTranslationMode(r.TranslationMode); err != nil {
		return err
	}
	return nil
}

// ToJob 校验并构造作业，目标语言为空时使用 defaultLang
func (r *TranslateVideoReq) ToJob(defaultLang string) (*entity.TranslationJob, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	mode, _ := vo.ParseTranslationMode(r.TranslationMode)
	return entity.NewTranslationJob(r.Source(), pickLang(r.TargetLang, defaultLang), mode, r.UserID, r.Title), nil
}

// RetranslateVideoReq 重新翻译请求
type RetranslateVideoReq struct {
	VideoID         string `json:"video_id"`
	TargetLang      string `json:"target_lang"`
	TranslationMode string `json:"translation_mode"`
}

// Normalize 校验并返回目标语言与模式
func (r *RetranslateVideoReq) Normalize(defaultLang string) (string, vo.TranslationMode, error) {
	if strings.TrimSpace(r.VideoID) == "" {
		return "", "", errno.ErrVideoIDRequired
	}
	mode, err := vo.ParseTranslationMode(r.TranslationMode)
	if err != nil {
		return "", "", err
	}
	return pickLang(r.TargetLang, defaultLang), mode, nil
}

func pickLang(lang, def string) string {
	if s := strings.TrimSpace(lang); s != "" {
		return s
	}
	return def
}
