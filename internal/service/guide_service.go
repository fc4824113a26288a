package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"docsynth/internal/config"
	"docsynth/internal/db"
	"docsynth/internal/model"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var (
	ErrEmptyInput = errors.New("urls 与 files 不能同时为空")
	ErrEmptyGuide = errors.New("model returned empty markdown")
	ErrUpstream   = errors.New("调用模型失败")
)

// UploadedFile 表单里的一个 files 字段
type UploadedFile struct {
	Name string
	Data []byte
}

type GenerateInput struct {
	URLs        string
	ProjectType string
	Files       []UploadedFile
}

type GuideService struct {
	llm     LLMClient
	fetcher *Fetcher
	cfg     config.GeneratorConfig
	now     func() time.Time
	log     logrus.FieldLogger
}

func NewGuideService(llm LLMClient, fetcher *Fetcher, cfg config.GeneratorConfig) (*GuideService, error) {
	if llm == nil {
		return nil, errors.New("llm client is required")
	}
	if fetcher == nil {
		fetcher = NewFetcher(cfg)
	}
	return &GuideService{
		llm:     llm,
		fetcher: fetcher,
		cfg:     cfg,
		now:     time.Now,
		log:     logrus.WithField("component", "guide"),
	}, nil
}

// Generate 抓取文档、读取附件、调用模型，并把指南与历史记录一起落库
func (s *GuideService) Generate(ctx context.Context, in GenerateInput) (*model.Guide, error) {
	urls := ParseURLs(in.URLs)
	if len(urls) == 0 && len(in.Files) == 0 {
		return nil, ErrEmptyInput
	}
	if s.cfg.MaxURLs > 0 && len(urls) > s.cfg.MaxURLs {
		s.log.WithFields(logrus.Fields{"urls": len(urls), "max": s.cfg.MaxURLs}).Warn("地址过多，只抓取前若干个")
		urls = urls[:s.cfg.MaxURLs]
	}

	pages := s.fetcher.FetchAll(ctx, urls)
	excerpts := make([]FileExcerpt, 0, len(in.Files))
	names := make([]string, 0, len(in.Files))
	for _, f := range in.Files {
		excerpts = append(excerpts, ExcerptFile(f.Name, f.Data, s.cfg.ExcerptChars))
		names = append(names, f.Name)
	}

	projectType := strings.TrimSpace(in.ProjectType)
	prompt := BuildGuidePrompt(projectType, pages, excerpts)
	raw, err := s.llm.Complete(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	md := strings.TrimSpace(raw)
	if md == "" {
		return nil, ErrEmptyGuide
	}

	now := s.now().UTC()
	guide := &model.Guide{
		ID:          uuid.NewString(),
		ProjectType: projectType,
		URLs:        in.URLs,
		FileNames:   strings.Join(names, ","),
		Title:       ExtractTitle(md),
		Content:     md,
		CreatedAt:   now,
	}
	record := &model.HistoryRecord{
		ID:          model.RecordID(guide.ID),
		ProjectType: projectType,
		Status:      model.StatusCompleted,
		CreatedAt:   now,
	}
	if err := db.CreateGuideWithHistory(ctx, guide, record); err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"id":           guide.ID,
		"project_type": projectType,
		"urls":         len(urls),
		"files":        len(in.Files),
	}).Info("指南已生成")
	return guide, nil
}

func (s *GuideService) Get(ctx context.Context, id string) (*model.Guide, error) {
	return db.GetGuide(ctx, id)
}
