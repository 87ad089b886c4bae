package usecase

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"telegram-job-scout/internal/domain"
	"telegram-job-scout/internal/domain/model"
	"telegram-job-scout/internal/domain/ports/adapter"
	"telegram-job-scout/internal/domain/ports/repository"
)

func testLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

// --- In-memory repositories ---

type memUserRepo struct {
	mu    sync.Mutex
	users map[string]*model.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: map[string]*model.User{}}
}

func (m *memUserRepo) Save(ctx context.Context, tx repository.Tx, u *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m *memUserRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memUserRepo) ListAll(ctx context.Context, tx repository.Tx) ([]*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.User
	for _, u := range m.users {
		cp := *u
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memUserRepo) UpdateResumeFile(ctx context.Context, tx repository.Tx, id, resumeFile string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return domain.ErrNotFound
	}
	u.ResumeFile = resumeFile
	return nil
}

func (m *memUserRepo) Delete(ctx context.Context, tx repository.Tx, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.users, id)
	return nil
}

func (m *memUserRepo) CountUsers(ctx context.Context, tx repository.Tx) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.users), nil
}

type memPostingRepo struct {
	mu       sync.Mutex
	postings []*model.JobPosting // insertion order
}

func newMemPostingRepo() *memPostingRepo { return &memPostingRepo{} }

func (m *memPostingRepo) byURL(url string) *model.JobPosting {
	for _, p := range m.postings {
		if p.URL == url {
			return p
		}
	}
	return nil
}

func (m *memPostingRepo) SaveMany(ctx context.Context, tx repository.Tx, postings []*model.JobPosting) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range postings {
		if m.byURL(p.URL) != nil {
			continue // first insert wins
		}
		cp := *p
		m.postings = append(m.postings, &cp)
	}
	return nil
}

func (m *memPostingRepo) FindOldestUnread(ctx context.Context, tx repository.Tx) (*model.JobPosting, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var oldest *model.JobPosting
	for _, p := range m.postings {
		if p.ReadAt != nil {
			continue
		}
		if oldest == nil || p.CreatedAt.Before(oldest.CreatedAt) {
			oldest = p
		}
	}
	if oldest == nil {
		return nil, domain.ErrNoUnread
	}
	cp := *oldest
	return &cp, nil
}

func (m *memPostingRepo) MarkRead(ctx context.Context, tx repository.Tx, url string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := m.byURL(url)
	if p == nil {
		return domain.ErrNotFound
	}
	if p.ReadAt == nil {
		now := time.Now()
		p.ReadAt = &now
	}
	return nil
}

func (m *memPostingRepo) UpdateContentDoc(ctx context.Context, tx repository.Tx, id, contentDoc string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.postings {
		if p.ID == id {
			p.ContentDoc = contentDoc
			return nil
		}
	}
	return domain.ErrNotFound
}

func (m *memPostingRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.JobPosting, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.postings {
		if p.ID == id {
			cp := *p
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memPostingRepo) FindByURL(ctx context.Context, tx repository.Tx, url string) (*model.JobPosting, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p := m.byURL(url); p != nil {
		cp := *p
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (m *memPostingRepo) Latest(ctx context.Context, tx repository.Tx, limit int) ([]*model.JobPosting, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*model.JobPosting, 0, len(m.postings))
	for _, p := range m.postings {
		cp := *p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memPostingRepo) ListByUser(ctx context.Context, tx repository.Tx, userID string) ([]*model.JobPosting, error) {
	return nil, nil // overridden per test when needed
}

type memMapRepo struct {
	mu    sync.Mutex
	pairs map[[2]string]bool
}

func newMemMapRepo() *memMapRepo { return &memMapRepo{pairs: map[[2]string]bool{}} }

func (m *memMapRepo) Save(ctx context.Context, tx repository.Tx, mp *model.JobPostingUserMap) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pairs[[2]string{mp.UserID, mp.JobPostingID}] = true
	return nil
}

func (m *memMapRepo) ListPostingIDs(ctx context.Context, tx repository.Tx, userID string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for k := range m.pairs {
		if k[0] == userID {
			out = append(out, k[1])
		}
	}
	sort.Strings(out)
	return out, nil
}

type memSourceRepo struct {
	mu   sync.Mutex
	rows []*model.ResumeSource
}

func newMemSourceRepo() *memSourceRepo { return &memSourceRepo{} }

func (m *memSourceRepo) Save(ctx context.Context, tx repository.Tx, src *model.ResumeSource) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *src
	m.rows = append(m.rows, &cp)
	return nil
}

func (m *memSourceRepo) ListByUser(ctx context.Context, tx repository.Tx, userID string) ([]*model.ResumeSource, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.ResumeSource
	for _, r := range m.rows {
		if r.UserID == userID {
			cp := *r
			out = append(out, &cp)
		}
	}
	return out, nil
}

// --- In-memory file store ---

type memFiles struct {
	mu    sync.Mutex
	blobs map[string][]byte
}

func newMemFiles() *memFiles { return &memFiles{blobs: map[string][]byte{}} }

func fileKey(kind adapter.FileKind, name string) string { return string(kind) + "/" + name }

func (m *memFiles) Write(ctx context.Context, kind adapter.FileKind, name string, content []byte) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blobs[fileKey(kind, name)] = content
	return fileKey(kind, name), nil
}

func (m *memFiles) Read(ctx context.Context, kind adapter.FileKind, name string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.blobs[fileKey(kind, name)]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return b, nil
}

func (m *memFiles) List(ctx context.Context, kind adapter.FileKind) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	prefix := string(kind) + "/"
	var out []string
	for k := range m.blobs {
		if len(k) > len(prefix) && k[:len(prefix)] == prefix {
			out = append(out, k[len(prefix):])
		}
	}
	sort.Strings(out)
	return out, nil
}

// --- Capability mocks ---

type mockAI struct {
	ChatFunc        func(ctx context.Context, model string, messages []adapter.Message) (string, error)
	ChatJSONFunc    func(ctx context.Context, model string, messages []adapter.Message) (string, error)
	CountTokensFunc func(ctx context.Context, model string, messages []adapter.Message) (int, error)
}

func (m *mockAI) ListModels(ctx context.Context) ([]string, error) { return nil, nil }
func (m *mockAI) GetModelInfo(model string) (adapter.ModelInfo, error) {
	return adapter.ModelInfo{Name: model}, nil
}
func (m *mockAI) CountTokens(ctx context.Context, model string, messages []adapter.Message) (int, error) {
	if m.CountTokensFunc != nil {
		return m.CountTokensFunc(ctx, model, messages)
	}
	return 0, nil
}
func (m *mockAI) Chat(ctx context.Context, model string, messages []adapter.Message) (string, error) {
	return m.ChatFunc(ctx, model, messages)
}
func (m *mockAI) ChatJSON(ctx context.Context, model string, messages []adapter.Message) (string, error) {
	return m.ChatJSONFunc(ctx, model, messages)
}

type mockFetcher struct {
	FetchFunc func(ctx context.Context, url string) (*adapter.FetchResult, error)
}

func (m *mockFetcher) Fetch(ctx context.Context, url string) (*adapter.FetchResult, error) {
	return m.FetchFunc(ctx, url)
}

type mockBrowser struct {
	RenderFunc func(ctx context.Context, url string) (string, error)
}

func (m *mockBrowser) Render(ctx context.Context, url string) (string, error) {
	return m.RenderFunc(ctx, url)
}

// mockTM runs the callback outside any real transaction.
type mockTM struct{}

func (mockTM) WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	return fn(ctx, repository.NoTX)
}
