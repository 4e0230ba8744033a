package router

import (
	"context"
	"sort"
	"sync"
	"time"

	"gorm.io/gorm"

	"tasktracker/internal/model"
	"tasktracker/internal/repository"
)

// memStore backs both fake repositories so tasks can be checked against
// users the way the real schema does.
type memStore struct {
	mu     sync.Mutex
	users  map[uint]model.User
	tasks  map[uint]model.Task
	nextID uint
}

func newMemStore() *memStore {
	return &memStore{users: map[uint]model.User{}, tasks: map[uint]model.Task{}}
}

func (s *memStore) id() uint {
	s.nextID++
	return s.nextID
}

type memUserRepository struct{ s *memStore }

func (r memUserRepository) Create(_ context.Context, user *model.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Username == user.Username || u.Email == user.Email {
			return gorm.ErrDuplicatedKey
		}
	}
	user.ID = r.s.id()
	user.CreatedAt = time.Now()
	r.s.users[user.ID] = *user
	return nil
}

func (r memUserRepository) FindByID(_ context.Context, id uint) (*model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &u, nil
}

func (r memUserRepository) FindByUsername(_ context.Context, username string) (*model.User, error) {
	return r.find(func(u model.User) bool { return u.Username == username })
}

func (r memUserRepository) FindByEmail(_ context.Context, email string) (*model.User, error) {
	return r.find(func(u model.User) bool { return u.Email == email })
}

func (r memUserRepository) find(match func(model.User) bool) (*model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if match(u) {
			return &u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

type memTaskRepository struct{ s *memStore }

func (r memTaskRepository) Create(_ context.Context, task *model.Task) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	task.ID = r.s.id()
	task.CreatedAt = time.Now()
	task.UpdatedAt = task.CreatedAt
	r.s.tasks[task.ID] = *task
	return nil
}

func (r memTaskRepository) Update(_ context.Context, task *model.Task) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	task.UpdatedAt = time.Now()
	r.s.tasks[task.ID] = *task
	return nil
}

func (r memTaskRepository) Delete(_ context.Context, task *model.Task) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.tasks[task.ID]
	if !ok || stored.UserID != task.UserID {
		return gorm.ErrRecordNotFound
	}
	delete(r.s.tasks, task.ID)
	return nil
}

func (r memTaskRepository) FindByIDAndOwner(_ context.Context, id, ownerID uint) (*model.Task, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.tasks[id]
	if !ok || t.UserID != ownerID {
		return nil, gorm.ErrRecordNotFound
	}
	return &t, nil
}

func (r memTaskRepository) FindByIDAndOwnerForUpdate(ctx context.Context, id, ownerID uint) (*model.Task, error) {
	return r.FindByIDAndOwner(ctx, id, ownerID)
}

func (r memTaskRepository) ListByOwner(_ context.Context, ownerID uint) ([]model.Task, error) {
	return r.list(func(t model.Task) bool { return t.UserID == ownerID }), nil
}

func (r memTaskRepository) ListCompletedByOwner(_ context.Context, ownerID uint) ([]model.Task, error) {
	return r.list(func(t model.Task) bool { return t.UserID == ownerID && t.Completed }), nil
}

func (r memTaskRepository) list(match func(model.Task) bool) []model.Task {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	tasks := []model.Task{}
	for _, t := range r.s.tasks {
		if match(t) {
			tasks = append(tasks, t)
		}
	}
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].ID < tasks[j].ID })
	return tasks
}

func (r memTaskRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context, repo repository.TaskRepository) error) error {
	return fn(ctx, r)
}
