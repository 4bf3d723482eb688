package memory

import (
	"cmp"
	"context"
	"slices"

	"courtbook/internal/repository"
	"courtbook/pkg/model"
)

type gymnasiumRepository struct {
	db *DB
}

func (r *gymnasiumRepository) Create(ctx context.Context, gym *model.Gymnasium) error {
	unlock, err := r.db.write(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	if _, exists := r.db.data.gymnasiums[gym.ID]; exists {
		return repository.ErrDuplicateKey
	}
	r.db.data.gymnasiums[gym.ID] = cloneGymnasium(*gym)
	return nil
}

func (r *gymnasiumRepository) FindByID(ctx context.Context, id int) (*model.Gymnasium, error) {
	unlock, err := r.db.read(ctx)
	if err != nil {
		return nil, err
	}
	defer unlock()

	g, ok := r.db.data.gymnasiums[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	c := cloneGymnasium(g)
	return &c, nil
}

func (r *gymnasiumRepository) FindAll(ctx context.Context, p model.Page) ([]*model.Gymnasium, error) {
	unlock, err := r.db.read(ctx)
	if err != nil {
		return nil, err
	}
	defer unlock()

	gyms := make([]*model.Gymnasium, 0, len(r.db.data.gymnasiums))
	for _, g := range r.db.data.gymnasiums {
		c := cloneGymnasium(g)
		gyms = append(gyms, &c)
	}
	slices.SortFunc(gyms, func(a, b *model.Gymnasium) int { return cmp.Compare(a.ID, b.ID) })
	return page(gyms, p.Limit, p.Offset), nil
}

func (r *gymnasiumRepository) Count(ctx context.Context) (int64, error) {
	unlock, err := r.db.read(ctx)
	if err != nil {
		return 0, err
	}
	defer unlock()

	return int64(len(r.db.data.gymnasiums)), nil
}

func (r *gymnasiumRepository) Replace(ctx context.Context, gym *model.Gymnasium) error {
	unlock, err := r.db.write(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	if _, exists := r.db.data.gymnasiums[gym.ID]; !exists {
		return repository.ErrNotFound
	}
	r.db.data.gymnasiums[gym.ID] = cloneGymnasium(*gym)
	return nil
}

func (r *gymnasiumRepository) Delete(ctx context.Context, id int) error {
	unlock, err := r.db.write(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	if _, exists := r.db.data.gymnasiums[id]; !exists {
		return repository.ErrNotFound
	}
	delete(r.db.data.gymnasiums, id)
	return nil
}

func (r *gymnasiumRepository) CountBySport(ctx context.Context, sportID int) (int64, error) {
	unlock, err := r.db.read(ctx)
	if err != nil {
		return 0, err
	}
	defer unlock()

	var n int64
	for _, g := range r.db.data.gymnasiums {
		if slices.ContainsFunc(g.Courts, func(c model.Court) bool { return slices.Contains(c.AllowedSports, sportID) }) {
			n++
		}
	}
	return n, nil
}

func (r *gymnasiumRepository) ReserveEquipment(ctx context.Context, gymID, equipmentID, qty int) error {
	unlock, err := r.db.write(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	g, ok := r.db.data.gymnasiums[gymID]
	if !ok {
		return repository.ErrNotFound
	}
	item, _ := g.FindEquipment(equipmentID)
	if item == nil {
		return repository.ErrNotFound
	}
	if item.AvailableQuantity < qty {
		return repository.ErrInsufficientQuantity
	}
	item.AvailableQuantity -= qty
	r.db.data.gymnasiums[gymID] = g
	return nil
}

func (r *gymnasiumRepository) ReleaseEquipment(ctx context.Context, gymID, equipmentID, qty int) error {
	unlock, err := r.db.write(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	g, ok := r.db.data.gymnasiums[gymID]
	if !ok {
		return repository.ErrNotFound
	}
	item, _ := g.FindEquipment(equipmentID)
	if item == nil {
		return repository.ErrNotFound
	}
	item.AvailableQuantity = min(item.TotalQuantity, item.AvailableQuantity+qty)
	r.db.data.gymnasiums[gymID] = g
	return nil
}
