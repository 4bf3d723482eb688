package memory

import (
	"context"
	"slices"
	"strings"

	"courtbook/internal/repository"
	"courtbook/pkg/model"
)

type userRepository struct {
	db *DB
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	unlock, err := r.db.write(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	if _, exists := r.db.data.users[user.NationalID]; exists {
		return repository.ErrDuplicateKey
	}
	if r.emailTaken(user.Email, user.NationalID) {
		return repository.ErrDuplicateEmail
	}
	r.db.data.users[user.NationalID] = cloneUser(*user)
	return nil
}

func (r *userRepository) emailTaken(email, exceptID string) bool {
	for id, u := range r.db.data.users {
		if id != exceptID && strings.EqualFold(u.Email, email) {
			return true
		}
	}
	return false
}

func (r *userRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	unlock, err := r.db.read(ctx)
	if err != nil {
		return nil, err
	}
	defer unlock()

	u, ok := r.db.data.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	c := cloneUser(u)
	return &c, nil
}

func (r *userRepository) FindByStaffID(ctx context.Context, staffID string) (*model.User, error) {
	unlock, err := r.db.read(ctx)
	if err != nil {
		return nil, err
	}
	defer unlock()

	for _, u := range r.db.data.users {
		if u.StaffDetails != nil && u.StaffDetails.StaffID == staffID {
			c := cloneUser(u)
			return &c, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *userRepository) FindAll(ctx context.Context, filter model.UserFilter) ([]*model.User, error) {
	unlock, err := r.db.read(ctx)
	if err != nil {
		return nil, err
	}
	defer unlock()

	users := r.match(filter)
	return page(users, filter.Limit, filter.Offset), nil
}

func (r *userRepository) Count(ctx context.Context, filter model.UserFilter) (int64, error) {
	unlock, err := r.db.read(ctx)
	if err != nil {
		return 0, err
	}
	defer unlock()

	return int64(len(r.match(filter))), nil
}

func (r *userRepository) match(filter model.UserFilter) []*model.User {
	users := []*model.User{}
	for _, u := range r.db.data.users {
		if filter.Role != "" && u.Role != filter.Role {
			continue
		}
		if filter.Status != "" && u.Status != filter.Status {
			continue
		}
		c := cloneUser(u)
		users = append(users, &c)
	}
	slices.SortFunc(users, func(a, b *model.User) int {
		return strings.Compare(a.NationalID, b.NationalID)
	})
	return users
}

func (r *userRepository) Replace(ctx context.Context, user *model.User) error {
	unlock, err := r.db.write(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	if _, exists := r.db.data.users[user.NationalID]; !exists {
		return repository.ErrNotFound
	}
	if r.emailTaken(user.Email, user.NationalID) {
		return repository.ErrDuplicateEmail
	}
	r.db.data.users[user.NationalID] = cloneUser(*user)
	return nil
}

func (r *userRepository) Delete(ctx context.Context, id string) error {
	unlock, err := r.db.write(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	if _, exists := r.db.data.users[id]; !exists {
		return repository.ErrNotFound
	}
	delete(r.db.data.users, id)
	return nil
}

func (r *userRepository) CountSupervisedBy(ctx context.Context, staffID string) (int64, error) {
	unlock, err := r.db.read(ctx)
	if err != nil {
		return 0, err
	}
	defer unlock()

	var n int64
	for _, u := range r.db.data.users {
		if u.StudentDetails != nil && u.StudentDetails.SupervisorStaffID == staffID {
			n++
		}
	}
	return n, nil
}
