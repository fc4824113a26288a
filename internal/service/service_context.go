package service

import (
	"docsynth/internal/config"
)

type ServiceContext struct {
	Config       *config.Config
	GuideService *GuideService
}

func NewServiceContext(cfg *config.Config) (*ServiceContext, error) {
	llm, err := BuildLLM(cfg)
	if err != nil {
		return nil, err
	}
	fetcher := NewFetcher(cfg.Generator)
	guideService, err := NewGuideService(llm, fetcher, cfg.Generator)
	if err != nil {
		return nil, err
	}

	return &ServiceContext{
		Config:       cfg,
		GuideService: guideService,
	}, nil
}
