package httpapi

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/staffdesk/staffdesk/internal/auth"
	"github.com/staffdesk/staffdesk/internal/roles"
	"github.com/staffdesk/staffdesk/internal/users"
)

// memUserRepo is an in-memory users.Repository for handler tests.
type memUserRepo struct {
	mu     sync.Mutex
	byID   map[int64]*users.User
	nextID int64
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{byID: make(map[int64]*users.User), nextID: 1}
}

var _ users.Repository = (*memUserRepo)(nil)

func (m *memUserRepo) Create(_ context.Context, u *users.User) (*users.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.byID {
		if existing.Email == u.Email {
			return nil, users.ErrDuplicate
		}
	}
	stored := *u
	stored.ID = m.nextID
	stored.CreatedAt = time.Now()
	stored.UpdatedAt = stored.CreatedAt
	m.nextID++
	m.byID[stored.ID] = &stored
	copied := stored
	return &copied, nil
}

func (m *memUserRepo) FindByID(_ context.Context, id int64) (*users.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.byID[id]; ok {
		copied := *u
		return &copied, nil
	}
	return nil, users.ErrNotFound
}

func (m *memUserRepo) FindByEmail(_ context.Context, email string) (*users.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byID {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, users.ErrNotFound
}

func (m *memUserRepo) Update(_ context.Context, id int64, upd users.Update) (*users.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return nil, users.ErrNotFound
	}
	u.Name = upd.Name
	u.Email = upd.Email
	u.Department = upd.Department
	u.UpdatedAt = time.Now()
	copied := *u
	return &copied, nil
}

func (m *memUserRepo) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.byID, id)
	return nil
}

func (m *memUserRepo) List(_ context.Context) ([]*users.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var res []*users.User
	for _, u := range m.byID {
		copied := *u
		res = append(res, &copied)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })
	return res, nil
}

func (m *memUserRepo) ListByDepartment(ctx context.Context, department string) ([]*users.User, error) {
	all, _ := m.List(ctx)
	var res []*users.User
	for _, u := range all {
		if u.Department == department {
			res = append(res, u)
		}
	}
	return res, nil
}

func (m *memUserRepo) SearchByName(ctx context.Context, pattern string, limit int) ([]*users.User, error) {
	needle := strings.ToLower(strings.Trim(pattern, "%"))
	all, _ := m.List(ctx)
	var res []*users.User
	for _, u := range all {
		if strings.Contains(strings.ToLower(u.Name), needle) {
			res = append(res, u)
			if len(res) == limit {
				break
			}
		}
	}
	return res, nil
}

func (m *memUserRepo) CountByDepartment(ctx context.Context, department string) (int64, error) {
	list, _ := m.ListByDepartment(ctx, department)
	return int64(len(list)), nil
}

func (m *memUserRepo) EmailsByDepartment(ctx context.Context, department string) ([]string, error) {
	list, _ := m.ListByDepartment(ctx, department)
	seen := make(map[string]struct{})
	var emails []string
	for _, u := range list {
		if _, ok := seen[u.Email]; ok {
			continue
		}
		seen[u.Email] = struct{}{}
		emails = append(emails, u.Email)
	}
	sort.Strings(emails)
	return emails, nil
}

// memRoleRepo is an in-memory roles.Repository seeded with USER and ADMIN.
type memRoleRepo struct {
	mu      sync.Mutex
	byID    map[int64]*roles.Role
	nextID  int64
	links   map[[2]int64]int64
	nextRel int64
}

func newMemRoleRepo() *memRoleRepo {
	return &memRoleRepo{
		byID: map[int64]*roles.Role{
			1: {ID: 1, Name: "USER", Description: "default role"},
			2: {ID: 2, Name: "ADMIN", Description: "administrator"},
		},
		nextID:  3,
		links:   make(map[[2]int64]int64),
		nextRel: 1,
	}
}

var _ roles.Repository = (*memRoleRepo)(nil)

func (m *memRoleRepo) Create(_ context.Context, role *roles.Role) (*roles.Role, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.byID {
		if existing.Name == role.Name {
			return nil, roles.ErrDuplicateRole
		}
	}
	stored := *role
	stored.ID = m.nextID
	m.nextID++
	m.byID[stored.ID] = &stored
	copied := stored
	return &copied, nil
}

func (m *memRoleRepo) FindByID(_ context.Context, id int64) (*roles.Role, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r, ok := m.byID[id]; ok {
		copied := *r
		return &copied, nil
	}
	return nil, roles.ErrNotFound
}

func (m *memRoleRepo) FindByName(_ context.Context, name string) (*roles.Role, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.byID {
		if r.Name == name {
			copied := *r
			return &copied, nil
		}
	}
	return nil, roles.ErrNotFound
}

func (m *memRoleRepo) List(_ context.Context) ([]*roles.Role, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var res []*roles.Role
	for _, r := range m.byID {
		copied := *r
		res = append(res, &copied)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })
	return res, nil
}

func (m *memRoleRepo) ListForUser(_ context.Context, userID int64) ([]*roles.Role, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var res []*roles.Role
	for link := range m.links {
		if link[0] == userID {
			copied := *m.byID[link[1]]
			res = append(res, &copied)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })
	return res, nil
}

func (m *memRoleRepo) NamesForUser(ctx context.Context, userID int64) ([]string, error) {
	list, err := m.ListForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, r := range list {
		names = append(names, r.Name)
	}
	return names, nil
}

func (m *memRoleRepo) Assign(_ context.Context, userID, roleID int64) (*roles.Assignment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := [2]int64{userID, roleID}
	if _, ok := m.links[key]; ok {
		return nil, roles.ErrDuplicateAssignment
	}
	id := m.nextRel
	m.nextRel++
	m.links[key] = id
	return &roles.Assignment{ID: id, UserID: userID, RoleID: roleID}, nil
}

func (m *memRoleRepo) Remove(_ context.Context, userID, roleID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.links, [2]int64{userID, roleID})
	return nil
}

func (m *memRoleRepo) AssignmentExists(_ context.Context, userID, roleID int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.links[[2]int64{userID, roleID}]
	return ok, nil
}

// testEnv bundles the API under test with its backing stores.
type testEnv struct {
	handler  http.Handler
	userRepo *memUserRepo
	roleRepo *memRoleRepo
	codec    *auth.Codec
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	codec, err := auth.NewCodec([]byte("test-secret-at-least-16-bytes"), "staffdesk")
	if err != nil {
		t.Fatalf("NewCodec: %v", err)
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	userRepo := newMemUserRepo()
	roleRepo := newMemRoleRepo()
	authSvc := auth.NewService(userRepo, roleRepo, codec, time.Hour)
	usersSvc := users.NewService(userRepo, nil, logger)
	evaluator := auth.NewEvaluator(codec)

	api := New(Params{
		Logger:    logger,
		Auth:      authSvc,
		Evaluator: evaluator,
		Policy:    auth.DefaultPolicy(),
		Users:     usersSvc,
		Roles:     roles.NewService(roleRepo),
		Version:   "test",
	})
	return &testEnv{
		handler:  api.Handler(),
		userRepo: userRepo,
		roleRepo: roleRepo,
		codec:    codec,
	}
}

// seedUser stores an enabled account with the given roles and returns it.
func (e *testEnv) seedUser(t *testing.T, email, password string, roleNames ...string) *users.User {
	t.Helper()
	hash, err := auth.HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	u, err := e.userRepo.Create(context.Background(), &users.User{
		Name:         "John Doe",
		Email:        email,
		PasswordHash: hash,
		Department:   "IT",
		Enabled:      true,
	})
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	for _, name := range roleNames {
		role, err := e.roleRepo.FindByName(context.Background(), name)
		if err != nil {
			t.Fatalf("seed role %s: %v", name, err)
		}
		if _, err := e.roleRepo.Assign(context.Background(), u.ID, role.ID); err != nil {
			t.Fatalf("assign role %s: %v", name, err)
		}
	}
	return u
}

// issueToken mints a token the API under test will accept.
func (e *testEnv) issueToken(t *testing.T, subject string, roleNames ...string) string {
	t.Helper()
	token, _, err := e.codec.Issue(subject, roleNames, time.Hour)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	return token
}
