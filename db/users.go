package db

import (
	"context"
	"errors"
	"metro-routing/model"
	"sync"

	"gorm.io/gorm"
)

var (
	// ErrUserNotFound 用户不存在
	ErrUserNotFound = errors.New("user not found")
	// ErrUserExists 用户名已存在
	ErrUserExists = errors.New("user already exists")
)

// UserRepository 基于 gorm 的用户表
type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository 创建用户仓库
func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// FindByUsername 按用户名查找
func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	var u model.User
	err := r.db.WithContext(ctx).Where("username = ?", username).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Create 创建用户, 用户名重复时返回 ErrUserExists
func (r *UserRepository) Create(ctx context.Context, u *model.User) error {
	err := r.db.WithContext(ctx).Create(u).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrUserExists
	}
	return err
}

// MemoryUserStore 未启用数据库时使用的内存用户表
type MemoryUserStore struct {
	mu    sync.RWMutex
	users map[string]*model.User
}

// NewMemoryUserStore 创建内存用户表, 可以预置用户
func NewMemoryUserStore(seed ...*model.User) *MemoryUserStore {
	s := &MemoryUserStore{users: make(map[string]*model.User)}
	for _, u := range seed {
		s.users[u.Username] = u
	}
	return s
}

// FindByUsername 按用户名查找
func (s *MemoryUserStore) FindByUsername(_ context.Context, username string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[username]
	if !ok {
		return nil, ErrUserNotFound
	}
	return u, nil
}

// Create 创建用户
func (s *MemoryUserStore) Create(_ context.Context, u *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[u.Username]; ok {
		return ErrUserExists
	}
	s.users[u.Username] = u
	return nil
}
