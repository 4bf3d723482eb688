package memory

import (
	"cmp"
	"context"
	"slices"

	"courtbook/internal/repository"
	"courtbook/pkg/model"
)

type sportRepository struct {
	db *DB
}

func (r *sportRepository) Create(ctx context.Context, sport *model.Sport) error {
	unlock, err := r.db.write(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	if _, exists := r.db.data.sports[sport.ID]; exists {
		return repository.ErrDuplicateKey
	}
	r.db.data.sports[sport.ID] = *sport
	return nil
}

func (r *sportRepository) FindByID(ctx context.Context, id int) (*model.Sport, error) {
	unlock, err := r.db.read(ctx)
	if err != nil {
		return nil, err
	}
	defer unlock()

	s, ok := r.db.data.sports[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &s, nil
}

func (r *sportRepository) FindAll(ctx context.Context, p model.Page) ([]*model.Sport, error) {
	unlock, err := r.db.read(ctx)
	if err != nil {
		return nil, err
	}
	defer unlock()

	sports := make([]*model.Sport, 0, len(r.db.data.sports))
	for _, s := range r.db.data.sports {
		c := s
		sports = append(sports, &c)
	}
	slices.SortFunc(sports, func(a, b *model.Sport) int { return cmp.Compare(a.ID, b.ID) })
	return page(sports, p.Limit, p.Offset), nil
}

func (r *sportRepository) Count(ctx context.Context) (int64, error) {
	unlock, err := r.db.read(ctx)
	if err != nil {
		return 0, err
	}
	defer unlock()

	return int64(len(r.db.data.sports)), nil
}

func (r *sportRepository) Replace(ctx context.Context, sport *model.Sport) error {
	unlock, err := r.db.write(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	if _, exists := r.db.data.sports[sport.ID]; !exists {
		return repository.ErrNotFound
	}
	r.db.data.sports[sport.ID] = *sport
	return nil
}

func (r *sportRepository) Delete(ctx context.Context, id int) error {
	unlock, err := r.db.write(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	if _, exists := r.db.data.sports[id]; !exists {
		return repository.ErrNotFound
	}
	delete(r.db.data.sports, id)
	return nil
}
