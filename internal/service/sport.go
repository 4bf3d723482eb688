package service

import (
	"context"
	"errors"

	"courtbook/internal/repository"
	"courtbook/pkg/config"
	apperrors "courtbook/pkg/errors"
	"courtbook/pkg/model"
	"courtbook/pkg/sanitizer"
)

type SportService interface {
	Create(ctx context.Context, sport *model.Sport) (*model.Sport, error)
	GetByKey(ctx context.Context, id int) (*model.Sport, error)
	List(ctx context.Context, page model.Page) ([]*model.Sport, int64, error)
	Update(ctx context.Context, id int, patch *model.SportUpdate) (*model.Sport, error)
	Delete(ctx context.Context, id int) error
}

type sportService struct {
	base
}

func NewSportService(d Deps) SportService {
	return &sportService{base: newBase(d, "sports")}
}

func (s *sportService) Create(ctx context.Context, sport *model.Sport) (*model.Sport, error) {
	if sport == nil {
		return nil, missingDocument()
	}
	sport.Name = sanitizer.NormalizeName(sport.Name)

	if err := s.Validator.ValidateSport(sport); err != nil {
		return nil, s.fail("Sport validation failed", err, "id", sport.ID)
	}

	ctx, cancel := s.writeCtx(ctx)
	defer cancel()

	if err := s.Repos.Sports.Create(ctx, sport); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			err = apperrors.DuplicateKey(repository.SportsCollection, sport.ID)
		}
		return nil, s.fail("Failed to create sport", s.mapError(err, "create sport"), "id", sport.ID)
	}

	s.log.Info("Sport created successfully", "id", sport.ID, "name", sport.Name)
	return sport, nil
}

func (s *sportService) GetByKey(ctx context.Context, id int) (*model.Sport, error) {
	ctx, cancel := s.readCtx(ctx)
	defer cancel()

	sport, err := s.Repos.Sports.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapError(lookupError(err, "sport", id), "get sport")
	}
	return sport, nil
}

func (s *sportService) List(ctx context.Context, page model.Page) ([]*model.Sport, int64, error) {
	page.Limit = config.NormalizePaginationLimit(page.Limit)
	page.Offset = config.NormalizeOffset(page.Offset)

	return listWithCount(ctx, &s.base, "sports",
		func(ctx context.Context) ([]*model.Sport, error) { return s.Repos.Sports.FindAll(ctx, page) },
		s.Repos.Sports.Count,
	)
}

func (s *sportService) Update(ctx context.Context, id int, patch *model.SportUpdate) (*model.Sport, error) {
	if patch == nil {
		return nil, missingPatch()
	}

	ctx, cancel := s.writeCtx(ctx)
	defer cancel()

	var updated *model.Sport
	err := s.inTx(ctx, "update sport", func(ctx context.Context) error {
		existing, err := s.Repos.Sports.FindByID(ctx, id)
		if err != nil {
			return lookupError(err, "sport", id)
		}

		merged := *existing
		if patch.Name != nil {
			merged.Name = sanitizer.NormalizeName(*patch.Name)
		}
		if patch.MaxPlayers != nil {
			merged.MaxPlayers = *patch.MaxPlayers
		}
		if err := s.Validator.ValidateSport(&merged); err != nil {
			return err
		}
		if err := s.Repos.Sports.Replace(ctx, &merged); err != nil {
			return lookupError(err, "sport", id)
		}
		updated = &merged
		return nil
	})
	if err != nil {
		return nil, s.fail("Failed to update sport", err, "id", id)
	}

	s.log.Info("Sport updated successfully", "id", id)
	return updated, nil
}

func (s *sportService) Delete(ctx context.Context, id int) error {
	ctx, cancel := s.writeCtx(ctx)
	defer cancel()

	err := s.inTx(ctx, "delete sport", func(ctx context.Context) error {
		if _, err := s.Repos.Sports.FindByID(ctx, id); err != nil {
			return lookupError(err, "sport", id)
		}

		refs, err := references(ctx, refCheck{repository.GymnasiumsCollection, func(ctx context.Context) (int64, error) {
			return s.Repos.Gymnasiums.CountBySport(ctx, id)
		}})
		if err != nil {
			return err
		}
		if len(refs) > 0 {
			return apperrors.ReferentialConflict("sport", id, refs)
		}

		return lookupError(s.Repos.Sports.Delete(ctx, id), "sport", id)
	})
	if err != nil {
		return s.fail("Failed to delete sport", err, "id", id)
	}

	s.log.Info("Sport deleted successfully", "id", id)
	return nil
}
