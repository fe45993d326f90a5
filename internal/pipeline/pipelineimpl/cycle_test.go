package pipelineimpl

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/snapwatch/tiktok-monitor/internal/domain"
	"github.com/snapwatch/tiktok-monitor/internal/ratelimit"
	"github.com/snapwatch/tiktok-monitor/internal/repositories/post"
	"github.com/snapwatch/tiktok-monitor/pkg/config"
	"github.com/snapwatch/tiktok-monitor/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 2, 6, 10, 30, 0, 0, time.UTC)

type fakeRepo struct {
	mu        sync.Mutex
	records   map[string]domain.Post
	order     []string
	existsErr map[string]error
	createErr error
	markCalls []string
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{records: make(map[string]domain.Post)}
}

func (r *fakeRepo) Exists(_ context.Context, postID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err, ok := r.existsErr[postID]; ok {
		return false, err
	}
	_, ok := r.records[postID]
	return ok, nil
}

func (r *fakeRepo) Create(_ context.Context, p domain.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	// pgx encodes a nil []string as SQL NULL, which the NOT NULL hashtags
	// column rejects. The fake enforces the same constraint.
	if p.Hashtags == nil {
		return errors.New(`null value in column "hashtags" violates not-null constraint`)
	}
	if _, ok := r.records[p.PostID]; ok {
		return post.ErrAlreadyExists
	}
	p.ID = int64(len(r.order) + 1)
	r.records[p.PostID] = p
	r.order = append(r.order, p.PostID)
	return nil
}

func (r *fakeRepo) MarkNotified(_ context.Context, postID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.markCalls = append(r.markCalls, postID)
	p, ok := r.records[postID]
	if !ok {
		return false, nil
	}
	p.Notified = true
	r.records[postID] = p
	return true, nil
}

func (r *fakeRepo) GetByPostID(_ context.Context, postID string) (*domain.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.records[postID]
	if !ok {
		return nil, post.ErrNotFound
	}
	return &p, nil
}

func (r *fakeRepo) ListRecent(_ context.Context, author string, limit int) ([]*domain.Post, error) {
	if limit <= 0 {
		return nil, nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Post
	for _, id := range r.order {
		p := r.records[id]
		if author != "" && p.Author != author {
			continue
		}
		out = append(out, &p)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].PublishedAt > out[j].PublishedAt
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeRepo) snapshot() map[string]domain.Post {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]domain.Post, len(r.records))
	for k, v := range r.records {
		out[k] = v
	}
	return out
}

type fakeFetcher struct {
	posts        map[string][]domain.RawPost
	fetchErr     map[string]error
	fetchedUsers []string
	downloadPath string
	downloadErr  error
}

func (f *fakeFetcher) FetchPosts(_ context.Context, username string) ([]domain.RawPost, error) {
	f.fetchedUsers = append(f.fetchedUsers, username)
	if err, ok := f.fetchErr[username]; ok {
		return nil, err
	}
	return f.posts[username], nil
}

func (f *fakeFetcher) DownloadMedia(_ context.Context, _ domain.RawPost, _ string) (string, error) {
	return f.downloadPath, f.downloadErr
}

type fakeArchiver struct {
	url   string
	err   error
	calls int
}

func (a *fakeArchiver) Archive(_ context.Context, _, _, _ string) (string, error) {
	a.calls++
	return a.url, a.err
}

// fakeNotifier asserts the persist-before-notify ordering: every notified
// post must already be readable from the record store.
type fakeNotifier struct {
	t     *testing.T
	repo  *fakeRepo
	err   error
	calls []domain.Post
}

func (n *fakeNotifier) Notify(ctx context.Context, p domain.Post) error {
	if n.repo != nil {
		stored, err := n.repo.GetByPostID(ctx, p.PostID)
		require.NoError(n.t, err, "post %s notified before being persisted", p.PostID)
		require.NotNil(n.t, stored)
	}
	n.calls = append(n.calls, p)
	return n.err
}

type fakeAccounts struct {
	accounts []domain.Account
	err      error
}

func (a *fakeAccounts) ListAccounts(context.Context) ([]domain.Account, error) {
	return a.accounts, a.err
}

func newTestPipeline(t *testing.T, repo post.Repository, f *fakeFetcher) *PipelineImpl {
	t.Helper()
	cfg := &config.Config{}
	cfg.Monitor.Accounts = "alice"
	cfg.Monitor.DefaultAccount = "danieljensen"
	cfg.Monitor.DownloadDir = t.TempDir()
	return &PipelineImpl{
		Fetcher:  f,
		PostRepo: repo,
		Limiter:  ratelimit.NewInMemoryLimiter(1000, time.Second, 1000),
		Logger:   logger.NewNop(),
		Config:   cfg,
		now:      func() time.Time { return fixedNow },
	}
}

func rawPost(id string) domain.RawPost {
	return domain.RawPost{
		"aweme_id":    id,
		"unique_id":   "alice",
		"desc":        "caption " + id,
		"create_time": float64(1700000000),
	}
}

func TestRunCycleIdempotent(t *testing.T) {
	repo := newFakeRepo()
	f := &fakeFetcher{posts: map[string][]domain.RawPost{
		"alice": {rawPost("1"), rawPost("2")},
	}}
	p := newTestPipeline(t, repo, f)
	n := &fakeNotifier{t: t, repo: repo}
	p.Notifier = n

	assert.Equal(t, 2, p.RunCycle(context.Background()))
	first := repo.snapshot()
	assert.Len(t, n.calls, 2)

	// Unchanged fetch result: the second cycle finds nothing new and the
	// stored rows are byte-identical.
	assert.Equal(t, 0, p.RunCycle(context.Background()))
	assert.Equal(t, first, repo.snapshot())
	assert.Len(t, n.calls, 2)
}

func TestRunCycleCountsDuplicateAsSeen(t *testing.T) {
	repo := newFakeRepo()
	f := &fakeFetcher{posts: map[string][]domain.RawPost{
		"alice": {rawPost("1"), rawPost("2"), rawPost("3")},
	}}
	p := newTestPipeline(t, repo, f)
	n := &fakeNotifier{t: t, repo: repo}
	p.Notifier = n

	// Post 2 was persisted by an earlier cycle.
	require.NoError(t, repo.Create(context.Background(), domain.Post{PostID: "2", Author: "alice", Hashtags: []string{}}))

	got := p.RunCycle(context.Background())

	assert.Equal(t, 2, got)
	assert.Len(t, repo.snapshot(), 3)
	assert.Len(t, n.calls, 2)
}

func TestPostWithoutHashtagsPersists(t *testing.T) {
	repo := newFakeRepo()
	// rawPost carries no text_extra, the common case for plain videos.
	f := &fakeFetcher{posts: map[string][]domain.RawPost{
		"alice": {rawPost("1")},
	}}
	p := newTestPipeline(t, repo, f)
	n := &fakeNotifier{t: t, repo: repo}
	p.Notifier = n

	assert.Equal(t, 1, p.RunCycle(context.Background()))

	stored, err := repo.GetByPostID(context.Background(), "1")
	require.NoError(t, err)
	assert.NotNil(t, stored.Hashtags)
	assert.Empty(t, stored.Hashtags)
	assert.Len(t, n.calls, 1)
}

func TestInsertRaceSkipsNotification(t *testing.T) {
	repo := newFakeRepo()
	repo.createErr = post.ErrAlreadyExists
	f := &fakeFetcher{posts: map[string][]domain.RawPost{
		"alice": {rawPost("1")},
	}}
	p := newTestPipeline(t, repo, f)
	n := &fakeNotifier{t: t}
	p.Notifier = n

	assert.Equal(t, 0, p.RunCycle(context.Background()))
	assert.Empty(t, n.calls)
}

func TestArchiveFailureDoesNotBlockPersistence(t *testing.T) {
	repo := newFakeRepo()
	media := filepath.Join(t.TempDir(), "1.mp4")
	require.NoError(t, os.WriteFile(media, []byte("video"), 0o644))

	f := &fakeFetcher{
		posts:        map[string][]domain.RawPost{"alice": {rawPost("1")}},
		downloadPath: media,
	}
	p := newTestPipeline(t, repo, f)
	arch := &fakeArchiver{err: errors.New("drive unavailable")}
	p.Archiver = arch
	n := &fakeNotifier{t: t, repo: repo}
	p.Notifier = n

	assert.Equal(t, 1, p.RunCycle(context.Background()))
	assert.Equal(t, 1, arch.calls)

	stored, err := repo.GetByPostID(context.Background(), "1")
	require.NoError(t, err)
	assert.Empty(t, stored.ArchiveURL)
	assert.Equal(t, "caption 1", stored.Caption)
	assert.Equal(t, "alice", stored.Author)
	assert.Len(t, n.calls, 1)
}

func TestSuccessfulArchiveStoresURLAndRemovesLocalFile(t *testing.T) {
	repo := newFakeRepo()
	media := filepath.Join(t.TempDir(), "1.mp4")
	require.NoError(t, os.WriteFile(media, []byte("video"), 0o644))

	f := &fakeFetcher{
		posts:        map[string][]domain.RawPost{"alice": {rawPost("1")}},
		downloadPath: media,
	}
	p := newTestPipeline(t, repo, f)
	p.Archiver = &fakeArchiver{url: "https://drive.google.com/file/d/abc/view"}

	assert.Equal(t, 1, p.RunCycle(context.Background()))

	stored, err := repo.GetByPostID(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, "https://drive.google.com/file/d/abc/view", stored.ArchiveURL)

	_, statErr := os.Stat(media)
	assert.True(t, os.IsNotExist(statErr))
}

func TestAccountSourceFailureFallsBack(t *testing.T) {
	repo := newFakeRepo()
	f := &fakeFetcher{posts: map[string][]domain.RawPost{}}
	p := newTestPipeline(t, repo, f)
	p.Config.Monitor.Accounts = "alice,bob"
	p.Accounts = &fakeAccounts{err: errors.New("sheet unreachable")}

	assert.Equal(t, 0, p.RunCycle(context.Background()))
	assert.Equal(t, []string{"alice", "bob"}, f.fetchedUsers)
}

func TestDisabledAccountsAreSkipped(t *testing.T) {
	repo := newFakeRepo()
	f := &fakeFetcher{posts: map[string][]domain.RawPost{
		"alice": {rawPost("1")},
		"bob":   {rawPost("2")},
	}}
	p := newTestPipeline(t, repo, f)
	p.Accounts = &fakeAccounts{accounts: []domain.Account{
		{Username: "alice", Enabled: true},
		{Username: "bob", Enabled: false},
	}}

	assert.Equal(t, 1, p.RunCycle(context.Background()))
	assert.Equal(t, []string{"alice"}, f.fetchedUsers)
}

func TestFetchFailureSkipsAccountOnly(t *testing.T) {
	repo := newFakeRepo()
	f := &fakeFetcher{
		posts:    map[string][]domain.RawPost{"bob": {rawPost("2")}},
		fetchErr: map[string]error{"alice": errors.New("actor timeout")},
	}
	p := newTestPipeline(t, repo, f)
	p.Config.Monitor.Accounts = "alice,bob"

	assert.Equal(t, 1, p.RunCycle(context.Background()))
	assert.Equal(t, []string{"alice", "bob"}, f.fetchedUsers)
}

func TestStorageErrorSkipsPostOnly(t *testing.T) {
	repo := newFakeRepo()
	repo.existsErr = map[string]error{"2": errors.New("connection reset")}
	f := &fakeFetcher{posts: map[string][]domain.RawPost{
		"alice": {rawPost("1"), rawPost("2"), rawPost("3")},
	}}
	p := newTestPipeline(t, repo, f)

	assert.Equal(t, 2, p.RunCycle(context.Background()))
	assert.Len(t, repo.snapshot(), 2)
}

func TestNotifyFailureLeavesRecordUnnotified(t *testing.T) {
	repo := newFakeRepo()
	f := &fakeFetcher{posts: map[string][]domain.RawPost{
		"alice": {rawPost("1")},
	}}
	p := newTestPipeline(t, repo, f)
	n := &fakeNotifier{t: t, repo: repo, err: errors.New("slack 500")}
	p.Notifier = n

	assert.Equal(t, 1, p.RunCycle(context.Background()))

	stored, err := repo.GetByPostID(context.Background(), "1")
	require.NoError(t, err)
	assert.False(t, stored.Notified)
	assert.Empty(t, repo.markCalls)

	// A later cycle dedups the post and does not retry the notification.
	n.err = nil
	assert.Equal(t, 0, p.RunCycle(context.Background()))
	assert.Len(t, n.calls, 1)
	stored, err = repo.GetByPostID(context.Background(), "1")
	require.NoError(t, err)
	assert.False(t, stored.Notified)
}

func TestNotifySuccessMarksRecord(t *testing.T) {
	repo := newFakeRepo()
	f := &fakeFetcher{posts: map[string][]domain.RawPost{
		"alice": {rawPost("1")},
	}}
	p := newTestPipeline(t, repo, f)
	p.Notifier = &fakeNotifier{t: t, repo: repo}

	assert.Equal(t, 1, p.RunCycle(context.Background()))

	stored, err := repo.GetByPostID(context.Background(), "1")
	require.NoError(t, err)
	assert.True(t, stored.Notified)
	assert.Equal(t, []string{"1"}, repo.markCalls)
}

func TestUnknownPostIDSentinelCollides(t *testing.T) {
	repo := newFakeRepo()
	noID := domain.RawPost{"desc": "first"}
	alsoNoID := domain.RawPost{"desc": "second"}
	f := &fakeFetcher{posts: map[string][]domain.RawPost{
		"alice": {noID, alsoNoID},
	}}
	p := newTestPipeline(t, repo, f)

	// Both items normalize to the sentinel ID, so the second one dedups
	// against the first. That aliasing is the documented degenerate case.
	assert.Equal(t, 1, p.RunCycle(context.Background()))

	stored, err := repo.GetByPostID(context.Background(), UnknownPostID)
	require.NoError(t, err)
	assert.Equal(t, "first", stored.Caption)
	assert.Len(t, repo.snapshot(), 1)
}

func TestCreateFailureIsNotCountedOrNotified(t *testing.T) {
	repo := newFakeRepo()
	repo.createErr = fmt.Errorf("disk full")
	f := &fakeFetcher{posts: map[string][]domain.RawPost{
		"alice": {rawPost("1")},
	}}
	p := newTestPipeline(t, repo, f)
	n := &fakeNotifier{t: t}
	p.Notifier = n

	assert.Equal(t, 0, p.RunCycle(context.Background()))
	assert.Empty(t, n.calls)
}
