package workflow

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"docsynth/internal/history"
	"docsynth/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGenerator struct {
	mu     sync.Mutex
	calls  []GenerateRequest
	result *model.GuideResult
	err    error
	// entered 非空时，调用开始会先通知 entered，再等待 release
	entered chan struct{}
	release chan struct{}
}

func (f *fakeGenerator) GenerateGuide(ctx context.Context, req GenerateRequest) (*model.GuideResult, error) {
	f.mu.Lock()
	f.calls = append(f.calls, req)
	f.mu.Unlock()
	if f.entered != nil {
		f.entered <- struct{}{}
		<-f.release
	}
	return f.result, f.err
}

func (f *fakeGenerator) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

var fixedNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func newWorkflow(t *testing.T, gen Generator) (*Workflow, *history.Store) {
	t.Helper()
	store := history.New()
	w, err := New(gen, store, WithClock(func() time.Time { return fixedNow }))
	require.NoError(t, err)
	return w, store
}

// toProjectType 把流程推进到项目类型阶段并填好草稿
func toProjectType(t *testing.T, w *Workflow) {
	t.Helper()
	w.SetURLs("https://example.com/docs\nhttps://example.com/api")
	require.NoError(t, w.Advance())
	require.NoError(t, w.AddFiles(Attachment{Name: "a.md", Data: []byte("# a")}, Attachment{Name: "b.txt", Data: []byte("b")}))
	require.NoError(t, w.Advance())
	w.SetProjectType("web-app")
}

func TestNewRequiresCollaborators(t *testing.T) {
	_, err := New(nil, history.New())
	assert.Error(t, err)
	_, err = New(&fakeGenerator{}, nil)
	assert.Error(t, err)
}

func TestWorkflowStartsCollectingURLs(t *testing.T) {
	w, _ := newWorkflow(t, &fakeGenerator{})
	assert.Equal(t, StageCollectingURLs, w.Stage())
	assert.False(t, w.Busy())
	assert.False(t, w.CanSubmit())
	assert.Nil(t, w.Result())
	assert.Empty(t, w.Draft().Files)
}

func TestAdvanceCannotLeaveProjectTypeStage(t *testing.T) {
	w, _ := newWorkflow(t, &fakeGenerator{})
	toProjectType(t, w)

	err := w.Advance()
	require.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, StageCollectingProjectType, w.Stage())
}

func TestBackNavigation(t *testing.T) {
	w, _ := newWorkflow(t, &fakeGenerator{})
	require.ErrorIs(t, w.Back(), ErrInvalidTransition)
	toProjectType(t, w)

	require.NoError(t, w.Back())
	assert.Equal(t, StageCollectingFiles, w.Stage())
	require.NoError(t, w.Back())
	assert.Equal(t, StageCollectingURLs, w.Stage())
	// 草稿在来回切换中保留
	assert.Len(t, w.Draft().Files, 2)
	assert.Equal(t, "web-app", w.Draft().ProjectType)
}

func TestFilesOnlyEditableInFilesStage(t *testing.T) {
	w, _ := newWorkflow(t, &fakeGenerator{})
	require.ErrorIs(t, w.AddFiles(Attachment{Name: "x"}), ErrInvalidTransition)
	require.ErrorIs(t, w.RemoveFile(0), ErrInvalidTransition)
}

func TestRemoveFileShiftsFollowingFiles(t *testing.T) {
	w, _ := newWorkflow(t, &fakeGenerator{})
	require.NoError(t, w.Advance())
	require.NoError(t, w.AddFiles(Attachment{Name: "a"}, Attachment{Name: "b"}))
	// 允许重复文件
	require.NoError(t, w.AddFiles(Attachment{Name: "c"}, Attachment{Name: "a"}))

	require.NoError(t, w.RemoveFile(1))
	names := func() []string {
		var out []string
		for _, f := range w.Draft().Files {
			out = append(out, f.Name)
		}
		return out
	}
	assert.Equal(t, []string{"a", "c", "a"}, names())

	for _, bad := range []int{-1, 3, 100} {
		err := w.RemoveFile(bad)
		require.ErrorIs(t, err, ErrFileIndex)
	}
	assert.Equal(t, []string{"a", "c", "a"}, names())
}

func TestDraftIsACopy(t *testing.T) {
	w, _ := newWorkflow(t, &fakeGenerator{})
	require.NoError(t, w.Advance())
	require.NoError(t, w.AddFiles(Attachment{Name: "a"}))

	d := w.Draft()
	d.Files[0].Name = "changed"
	assert.Equal(t, "a", w.Draft().Files[0].Name)
}

func TestSubmitSuccess(t *testing.T) {
	gen := &fakeGenerator{result: &model.GuideResult{ID: "42", Content: "# Setup\nrun make"}}
	w, store := newWorkflow(t, gen)
	toProjectType(t, w)
	require.True(t, w.CanSubmit())

	res, err := w.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "# Setup\nrun make", res.Content)

	assert.Equal(t, StageShowingResult, w.Stage())
	require.NotNil(t, w.Result())
	assert.Equal(t, "# Setup\nrun make", w.Result().Content)
	assert.False(t, w.Busy())
	assert.Empty(t, w.Notice())

	records := store.Records()
	require.Len(t, records, 1)
	assert.Equal(t, model.HistoryRecord{
		ID:          "42",
		ProjectType: "web-app",
		Status:      model.StatusCompleted,
		CreatedAt:   fixedNow,
	}, records[0])

	// 聚合请求带上了全部草稿内容
	require.Equal(t, 1, gen.callCount())
	req := gen.calls[0]
	assert.Equal(t, "https://example.com/docs\nhttps://example.com/api", req.URLs)
	assert.Equal(t, "web-app", req.ProjectType)
	require.Len(t, req.Files, 2)
	assert.Equal(t, "a.md", req.Files[0].Name)

	// 结果页是终态
	require.ErrorIs(t, w.Advance(), ErrInvalidTransition)
	_, err = w.Submit(context.Background())
	require.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, 1, gen.callCount())
}

func TestSubmitSuccessUsesNearNowTimestamp(t *testing.T) {
	gen := &fakeGenerator{result: &model.GuideResult{ID: "42", Content: "ok"}}
	store := history.New()
	w, err := New(gen, store)
	require.NoError(t, err)
	toProjectType(t, w)

	before := time.Now().Add(-time.Second)
	_, err = w.Submit(context.Background())
	require.NoError(t, err)

	created := store.Records()[0].CreatedAt
	assert.WithinDuration(t, time.Now(), created, 5*time.Second)
	assert.True(t, created.After(before))
}

func TestSubmitFailureKeepsDraft(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("connection refused")}
	w, store := newWorkflow(t, gen)
	toProjectType(t, w)
	before := w.Draft()

	res, err := w.Submit(context.Background())
	require.Error(t, err)
	assert.Nil(t, res)
	assert.Contains(t, err.Error(), "connection refused")

	assert.Equal(t, StageCollectingProjectType, w.Stage())
	assert.False(t, w.Busy())
	assert.True(t, w.CanSubmit())
	assert.Equal(t, before, w.Draft())
	assert.Nil(t, w.Result())
	assert.Contains(t, w.Notice(), "connection refused")
	assert.Equal(t, 0, store.Len())

	// 可以直接再次提交
	gen.err = nil
	gen.result = &model.GuideResult{ID: "7", Content: "ok"}
	_, err = w.Submit(context.Background())
	require.NoError(t, err)
	assert.Empty(t, w.Notice())
	assert.Equal(t, 1, store.Len())
}

func TestSubmitWithoutIDIsAFailure(t *testing.T) {
	gen := &fakeGenerator{result: &model.GuideResult{Content: "no id"}}
	w, store := newWorkflow(t, gen)
	toProjectType(t, w)

	_, err := w.Submit(context.Background())
	require.ErrorIs(t, err, ErrMissingID)
	assert.Equal(t, StageCollectingProjectType, w.Stage())
	assert.Equal(t, 0, store.Len())
}

func TestSubmitRejectedWhilePending(t *testing.T) {
	gen := &fakeGenerator{
		result:  &model.GuideResult{ID: "42", Content: "done"},
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	w, store := newWorkflow(t, gen)
	toProjectType(t, w)

	done := make(chan error, 1)
	go func() {
		_, err := w.Submit(context.Background())
		done <- err
	}()
	<-gen.entered

	// 整个等待期间触发器都不可用
	assert.True(t, w.Busy())
	assert.False(t, w.CanSubmit())
	for i := 0; i < 3; i++ {
		_, err := w.Submit(context.Background())
		require.ErrorIs(t, err, ErrBusy)
	}
	require.ErrorIs(t, w.Back(), ErrBusy)
	assert.Equal(t, 1, gen.callCount())

	close(gen.release)
	require.NoError(t, <-done)
	assert.False(t, w.Busy())
	assert.Equal(t, StageShowingResult, w.Stage())
	assert.Equal(t, 1, store.Len())
	assert.Equal(t, 1, gen.callCount())
}

func TestSubmitOnlyFromProjectTypeStage(t *testing.T) {
	gen := &fakeGenerator{result: &model.GuideResult{ID: "1"}}
	w, _ := newWorkflow(t, gen)

	_, err := w.Submit(context.Background())
	require.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, 0, gen.callCount())
}
