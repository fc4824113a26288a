// Package client 调用指南生成服务：一次 multipart 提交与一次历史查询。
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"docsynth/internal/config"
	"docsynth/internal/history"
	"docsynth/internal/model"
	"docsynth/internal/workflow"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
)

const maxErrorBody = 500

type Client struct {
	http         *resty.Client
	generatePath string
	historyPath  string
	log          logrus.FieldLogger
}

var _ workflow.Generator = (*Client)(nil)

func New(cfg config.ClientConfig) *Client {
	if cfg.GeneratePath == "" {
		cfg.GeneratePath = "/generate_guide"
	}
	if cfg.HistoryPath == "" {
		cfg.HistoryPath = "/api/history"
	}
	h := resty.New().
		SetBaseURL(strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")).
		SetHeader("Accept", "application/json")
	// 不设超时时与浏览器行为一致：一直等到服务端返回
	if cfg.Timeout > 0 {
		h.SetTimeout(cfg.Timeout)
	}
	return &Client{
		http:         h,
		generatePath: cfg.GeneratePath,
		historyPath:  cfg.HistoryPath,
		log:          logrus.WithField("component", "client"),
	}
}

// GenerateGuide 发送聚合请求：urls 原文、project_type 与每个附件一个 files 字段。不重试。
func (c *Client) GenerateGuide(ctx context.Context, req workflow.GenerateRequest) (*model.GuideResult, error) {
	const op = "generate guide"

	r := c.http.R().
		SetContext(ctx).
		SetMultipartFormData(map[string]string{
			"urls":         req.URLs,
			"project_type": req.ProjectType,
		})
	for _, f := range req.Files {
		r.SetFileReader("files", f.Name, bytes.NewReader(f.Data))
	}

	resp, err := r.Post(c.generatePath)
	if err != nil {
		return nil, &NetworkFailure{Op: op, Err: fmt.Errorf("请求失败: %w", err)}
	}
	if !resp.IsSuccess() {
		return nil, &NetworkFailure{
			Op:         op,
			StatusCode: resp.StatusCode(),
			Body:       truncate(errorMessage(resp.Body()), maxErrorBody),
		}
	}

	var result model.GuideResult
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return nil, &NetworkFailure{Op: op, Err: fmt.Errorf("解析响应失败: %w", err)}
	}
	c.log.WithFields(logrus.Fields{"id": result.ID, "chars": len(result.Content)}).Debug("收到生成结果")
	return &result, nil
}

// FetchHistory 拉取服务端的全部历史记录
func (c *Client) FetchHistory(ctx context.Context) ([]model.HistoryRecord, error) {
	const op = "fetch history"

	resp, err := c.http.R().SetContext(ctx).Get(c.historyPath)
	if err != nil {
		return nil, &NetworkFailure{Op: op, Err: fmt.Errorf("请求失败: %w", err)}
	}
	if !resp.IsSuccess() {
		return nil, &NetworkFailure{
			Op:         op,
			StatusCode: resp.StatusCode(),
			Body:       truncate(errorMessage(resp.Body()), maxErrorBody),
		}
	}

	var records []model.HistoryRecord
	if err := json.Unmarshal(resp.Body(), &records); err != nil {
		return nil, &NetworkFailure{Op: op, Err: fmt.Errorf("解析响应失败: %w", err)}
	}
	return records, nil
}

// LoadHistory 拉取历史并整体替换 store 中的列表。失败时 store 不变。
func (c *Client) LoadHistory(ctx context.Context, store *history.Store) error {
	records, err := c.FetchHistory(ctx)
	if err != nil {
		return err
	}
	store.ReplaceAll(records)
	c.log.WithField("records", len(records)).Debug("历史已加载")
	return nil
}

// errorMessage 优先取 {"error": "..."} / {"message": "..."}，否则返回原始 body
func errorMessage(body []byte) string {
	var errResp map[string]interface{}
	if json.Unmarshal(body, &errResp) == nil {
		for _, k := range []string{"error", "message", "detail"} {
			if msg, ok := errResp[k].(string); ok && msg != "" {
				return msg
			}
		}
	}
	return strings.TrimSpace(string(body))
}
