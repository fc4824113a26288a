package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"docsynth/internal/db"
	"docsynth/internal/model"
	"docsynth/internal/service"

	"github.com/gin-gonic/gin"
)

type GuideHandler struct {
	guideService   *service.GuideService
	requestTimeout time.Duration
	maxUploadBytes int64
}

func NewGuideHandler(guideService *service.GuideService, requestTimeout time.Duration, maxUploadBytes int64) *GuideHandler {
	if requestTimeout <= 0 {
		requestTimeout = 120 * time.Second
	}
	if maxUploadBytes <= 0 {
		maxUploadBytes = 10 << 20
	}
	return &GuideHandler{
		guideService:   guideService,
		requestTimeout: requestTimeout,
		maxUploadBytes: maxUploadBytes,
	}
}

// GenerateGuide 接收 multipart 表单（urls / project_type / files）并生成指南
func (h *GuideHandler) GenerateGuide(c *gin.Context) {
	files, err := h.readFiles(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	in := service.GenerateInput{
		URLs:        c.PostForm("urls"),
		ProjectType: c.PostForm("project_type"),
		Files:       files,
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.requestTimeout)
	defer cancel()
	guide, err := h.guideService.Generate(ctx, in)
	if err != nil {
		_ = c.Error(err)
		switch {
		case errors.Is(err, service.ErrEmptyInput):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrUpstream), errors.Is(err, service.ErrEmptyGuide):
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, model.GuideResult{
		ID:      model.RecordID(guide.ID),
		Content: guide.Content,
		Title:   guide.Title,
	})
}

// GetGuide 获取单个指南；?format=html 返回渲染后的 HTML
func (h *GuideHandler) GetGuide(c *gin.Context) {
	guide, err := h.guideService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "指南不存在"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if c.Query("format") == "html" {
		out, err := service.RenderHTML(guide.Content)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(out))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"guide": guide,
	})
}

func (h *GuideHandler) readFiles(c *gin.Context) ([]service.UploadedFile, error) {
	form, err := c.MultipartForm()
	if err != nil {
		if errors.Is(err, http.ErrNotMultipart) {
			return nil, nil
		}
		return nil, fmt.Errorf("解析表单失败: %w", err)
	}

	var files []service.UploadedFile
	for _, fh := range form.File["files"] {
		if fh.Size > h.maxUploadBytes {
			return nil, fmt.Errorf("文件 %s 超过大小限制 %d 字节", fh.Filename, h.maxUploadBytes)
		}
		f, err := fh.Open()
		if err != nil {
			return nil, fmt.Errorf("读取文件失败: %w", err)
		}
		data, err := io.ReadAll(f)
		_ = f.Close()
		if err != nil {
			return nil, fmt.Errorf("读取文件失败: %w", err)
		}
		files = append(files, service.UploadedFile{Name: fh.Filename, Data: data})
	}
	return files, nil
}
