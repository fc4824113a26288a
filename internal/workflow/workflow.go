package workflow

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"docsynth/internal/history"
	"docsynth/internal/model"

	"github.com/sirupsen/logrus"
)

var (
	ErrBusy      = errors.New("上一次提交仍在进行中")
	ErrFileIndex = errors.New("文件下标越界")
	ErrMissingID = errors.New("生成服务未返回 id")
)

// Attachment 用户选中的一个附件
type Attachment struct {
	Name string
	Data []byte
}

// Draft 一次生成流程中尚未提交的输入
type Draft struct {
	URLs        string
	Files       []Attachment
	ProjectType string
}

func (d Draft) clone() Draft {
	out := d
	out.Files = make([]Attachment, len(d.Files))
	copy(out.Files, d.Files)
	return out
}

// GenerateRequest 聚合后的一次提交：原始 urls 文本、项目类型与全部附件
type GenerateRequest struct {
	URLs        string
	ProjectType string
	Files       []Attachment
}

// Generator 生成服务的调用方，client.Client 实现了它
type Generator interface {
	GenerateGuide(ctx context.Context, req GenerateRequest) (*model.GuideResult, error)
}

type Option func(*Workflow)

func WithClock(now func() time.Time) Option {
	return func(w *Workflow) { w.now = now }
}

func WithLogger(l logrus.FieldLogger) Option {
	return func(w *Workflow) { w.log = l }
}

// Workflow 四阶段的指南生成流程：urls -> 附件 -> 项目类型 -> 结果
type Workflow struct {
	mu     sync.Mutex
	stage  Stage
	draft  Draft
	busy   bool
	result *model.GuideResult
	notice string

	gen   Generator
	store *history.Store
	now   func() time.Time
	log   logrus.FieldLogger
}

func New(gen Generator, store *history.Store, opts ...Option) (*Workflow, error) {
	if gen == nil {
		return nil, errors.New("generator is required")
	}
	if store == nil {
		return nil, errors.New("history store is required")
	}
	w := &Workflow{
		stage: StageCollectingURLs,
		gen:   gen,
		store: store,
		now:   time.Now,
		log:   logrus.WithField("component", "workflow"),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

func (w *Workflow) Stage() Stage {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stage
}

// Draft 返回草稿副本
func (w *Workflow) Draft() Draft {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.draft.clone()
}

func (w *Workflow) Busy() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.busy
}

// Result 仅在 ShowingResult 阶段非空
func (w *Workflow) Result() *model.GuideResult {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.result == nil {
		return nil
	}
	res := *w.result
	return &res
}

// Notice 最近一次提交失败的提示，成功或重新提交时清空
func (w *Workflow) Notice() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.notice
}

// CanSubmit 提交按钮是否可用
func (w *Workflow) CanSubmit() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stage == StageCollectingProjectType && !w.busy
}

func (w *Workflow) SetURLs(text string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.draft.URLs = text
}

func (w *Workflow) SetProjectType(text string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.draft.ProjectType = text
}

func (w *Workflow) Advance() error {
	return w.move(TriggerAdvance)
}

func (w *Workflow) Back() error {
	return w.move(TriggerBack)
}

func (w *Workflow) move(t Trigger) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.busy {
		return ErrBusy
	}
	next, err := Transition(w.stage, t)
	if err != nil {
		return err
	}
	w.log.WithFields(logrus.Fields{"from": w.stage, "to": next}).Debug("阶段切换")
	w.stage = next
	return nil
}

// AddFiles 追加附件，不去重也不限数量
func (w *Workflow) AddFiles(files ...Attachment) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, err := Transition(w.stage, TriggerAddFiles); err != nil {
		return err
	}
	w.draft.Files = append(w.draft.Files, files...)
	return nil
}

// RemoveFile 删除下标 i 的附件，后续附件前移一位；越界时不改动草稿
func (w *Workflow) RemoveFile(i int) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, err := Transition(w.stage, TriggerRemoveFile); err != nil {
		return err
	}
	if i < 0 || i >= len(w.draft.Files) {
		return fmt.Errorf("%w: %d (共 %d 个)", ErrFileIndex, i, len(w.draft.Files))
	}
	files := make([]Attachment, 0, len(w.draft.Files)-1)
	files = append(files, w.draft.Files[:i]...)
	files = append(files, w.draft.Files[i+1:]...)
	w.draft.Files = files
	return nil
}

// Submit 发出唯一一次聚合请求。
// 请求未返回前再次调用直接返回 ErrBusy，不会发出第二个请求。
// 成功后进入结果页并向历史追加一条 Completed 记录；失败时停留在当前阶段，草稿保持不变。
func (w *Workflow) Submit(ctx context.Context) (*model.GuideResult, error) {
	w.mu.Lock()
	if w.busy {
		w.mu.Unlock()
		return nil, ErrBusy
	}
	if _, err := Transition(w.stage, TriggerSubmit); err != nil {
		w.mu.Unlock()
		return nil, err
	}
	w.busy = true
	w.notice = ""
	d := w.draft.clone()
	w.mu.Unlock()

	req := GenerateRequest{URLs: d.URLs, ProjectType: d.ProjectType, Files: d.Files}
	w.log.WithFields(logrus.Fields{
		"project_type": req.ProjectType,
		"files":        len(req.Files),
	}).Info("提交指南生成请求")

	res, err := w.gen.GenerateGuide(ctx, req)
	if err == nil && (res == nil || res.ID == "") {
		err = ErrMissingID
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.busy = false

	if err != nil {
		w.stage, _ = Transition(w.stage, TriggerSubmitFailed)
		w.notice = fmt.Sprintf("生成指南失败，请稍后重试: %v", err)
		w.log.WithError(err).Error("指南生成失败")
		return nil, fmt.Errorf("提交失败: %w", err)
	}

	w.stage, _ = Transition(w.stage, TriggerSubmitSucceeded)
	stored := *res
	w.result = &stored
	w.store.Append(model.HistoryRecord{
		ID:          res.ID,
		ProjectType: req.ProjectType,
		Status:      model.StatusCompleted,
		CreatedAt:   w.now().UTC(),
	})
	w.log.WithField("id", res.ID).Info("指南生成完成")

	out := stored
	return &out, nil
}
