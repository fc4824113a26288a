package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"docsynth/internal/config"

	"github.com/go-resty/resty/v2"
)

type DifyClient struct {
	http              *resty.Client
	AppType           string
	ResponseMode      string
	WorkflowSystemKey string
	WorkflowQueryKey  string
	WorkflowOutputKey string
}

func NewDifyClient(cfg config.DifyConfig) *DifyClient {
	if cfg.ResponseMode == "" {
		cfg.ResponseMode = "blocking"
	}
	if cfg.WorkflowSystemKey == "" {
		cfg.WorkflowSystemKey = "system"
	}
	if cfg.WorkflowQueryKey == "" {
		cfg.WorkflowQueryKey = "query"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	h := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetAuthToken(cfg.APIKey).
		SetHeader("Content-Type", "application/json").
		SetTimeout(cfg.Timeout)
	return &DifyClient{
		http:              h,
		AppType:           cfg.AppType,
		ResponseMode:      cfg.ResponseMode,
		WorkflowSystemKey: cfg.WorkflowSystemKey,
		WorkflowQueryKey:  cfg.WorkflowQueryKey,
		WorkflowOutputKey: cfg.WorkflowOutputKey,
	}
}

type messageRequest struct {
	Inputs       map[string]interface{} `json:"inputs"`
	Query        string                 `json:"query"`
	ResponseMode string                 `json:"response_mode"`
	User         string                 `json:"user"`
}

type messageResponse struct {
	MessageID string `json:"message_id"`
	Answer    string `json:"answer"`
}

type workflowRunRequest struct {
	Inputs       map[string]interface{} `json:"inputs"`
	ResponseMode string                 `json:"response_mode"`
	User         string                 `json:"user"`
}

type workflowRunResponse struct {
	TaskID string `json:"task_id"`
	Data   struct {
		ID      string                 `json:"id"`
		Outputs map[string]interface{} `json:"outputs"`
		Status  string                 `json:"status"`
		Error   string                 `json:"error"`
	} `json:"data"`
}

// Complete 智能选择API端点：workflow -> completion -> chat
func (c *DifyClient) Complete(ctx context.Context, prompt Prompt) (string, error) {
	if c.AppType == "workflow" {
		return c.WorkflowRun(ctx, map[string]interface{}{
			c.WorkflowSystemKey: prompt.System,
			c.WorkflowQueryKey:  prompt.User,
		})
	}

	query := prompt.System + "\n\n" + prompt.User
	answer, err := c.message(ctx, "/completion-messages", query)
	if err == nil {
		return answer, nil
	}
	completionErr := err

	answer, chatErr := c.message(ctx, "/chat-messages", query)
	if chatErr == nil {
		return answer, nil
	}

	// 所有模式都失败，返回详细错误信息
	return "", fmt.Errorf("所有API端点都失败: appType=%s, completion(%v), chat(%v)",
		c.AppType, completionErr, chatErr)
}

// message 调用 completion-messages / chat-messages
func (c *DifyClient) message(ctx context.Context, path, query string) (string, error) {
	var out messageResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(messageRequest{
			Inputs:       map[string]interface{}{},
			Query:        query,
			ResponseMode: c.ResponseMode,
			User:         "docsynth",
		}).
		Post(path)
	if err != nil {
		return "", fmt.Errorf("请求失败: %w", err)
	}
	if !resp.IsSuccess() {
		return "", apiError(resp)
	}
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return "", fmt.Errorf("解析响应失败: %w", err)
	}
	return out.Answer, nil
}

func (c *DifyClient) WorkflowRun(ctx context.Context, inputs map[string]interface{}) (string, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(workflowRunRequest{
			Inputs:       inputs,
			ResponseMode: c.ResponseMode,
			User:         "docsynth",
		}).
		Post("/workflows/run")
	if err != nil {
		return "", fmt.Errorf("请求失败: %w", err)
	}
	if !resp.IsSuccess() {
		return "", apiError(resp)
	}

	// streaming 模式会返回 SSE；这里不解析 SSE，建议用 blocking
	var runResp workflowRunResponse
	if err := json.Unmarshal(resp.Body(), &runResp); err != nil {
		return "", fmt.Errorf("解析响应失败: %w", err)
	}
	if runResp.Data.Status == "failed" {
		return "", fmt.Errorf("workflow 执行失败: %s", runResp.Data.Error)
	}
	return extractWorkflowAnswer(runResp.Data.Outputs, c.WorkflowOutputKey), nil
}

func apiError(resp *resty.Response) error {
	body := resp.Body()
	// 尝试解析错误信息
	var errResp map[string]interface{}
	if json.Unmarshal(body, &errResp) == nil {
		if msg, ok := errResp["message"].(string); ok {
			return fmt.Errorf("API返回错误: %d, %s", resp.StatusCode(), msg)
		}
	}
	// 如果无法解析，返回原始body（截取前500字符避免过长）
	bodyStr := string(body)
	if len(bodyStr) > 500 {
		bodyStr = bodyStr[:500] + "..."
	}
	return fmt.Errorf("API返回错误: %d, %s", resp.StatusCode(), bodyStr)
}

func extractWorkflowAnswer(outputs map[string]interface{}, outputKey string) string {
	if outputs == nil {
		return ""
	}

	if outputKey != "" {
		if v, ok := outputs[outputKey]; ok {
			return stringify(v)
		}
	}

	for _, k := range []string{"answer", "text", "output", "result", "guide"} {
		if v, ok := outputs[k]; ok {
			return stringify(v)
		}
	}

	for _, v := range outputs {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}

	b, _ := json.Marshal(outputs)
	return string(b)
}

func stringify(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	b, _ := json.Marshal(v)
	return string(b)
}
