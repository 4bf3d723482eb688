package service

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"courtbook/internal/lock"
	"courtbook/internal/propagation"
	"courtbook/internal/repository"
	"courtbook/pkg/config"
	apperrors "courtbook/pkg/errors"
	"courtbook/pkg/model"
	"courtbook/pkg/sanitizer"
)

type GymnasiumService interface {
	Create(ctx context.Context, g *model.Gymnasium) (*model.Gymnasium, error)
	GetByKey(ctx context.Context, id int) (*model.Gymnasium, error)
	List(ctx context.Context, page model.Page) ([]*model.Gymnasium, int64, error)
	Update(ctx context.Context, id int, patch *model.GymnasiumUpdate) (*model.Gymnasium, error)
	Delete(ctx context.Context, id int) error

	AddCourt(ctx context.Context, gymID int, court model.Court) (*model.Gymnasium, error)
	UpdateCourt(ctx context.Context, gymID, number int, patch *model.CourtUpdate) (*model.Gymnasium, error)
	RemoveCourt(ctx context.Context, gymID, number int) (*model.Gymnasium, error)
	SetCourtSports(ctx context.Context, gymID, number int, sports []int) (*model.Gymnasium, error)

	AddEquipment(ctx context.Context, gymID int, eq model.Equipment) (*model.Gymnasium, error)
	UpdateEquipment(ctx context.Context, gymID, equipmentID int, patch *model.EquipmentUpdate) (*model.Gymnasium, error)
	RemoveEquipment(ctx context.Context, gymID, equipmentID int) (*model.Gymnasium, error)
	ListEquipment(ctx context.Context) ([]model.EquipmentView, error)
}

type gymnasiumService struct {
	base
}

func NewGymnasiumService(d Deps) GymnasiumService {
	return &gymnasiumService{base: newBase(d, "gymnasiums")}
}

func (s *gymnasiumService) Create(ctx context.Context, g *model.Gymnasium) (*model.Gymnasium, error) {
	if g == nil {
		return nil, missingDocument()
	}

	sanitizeGymnasium(g)
	g.CreatedAt = now()
	g.UpdatedAt = g.CreatedAt

	if err := s.Validator.ValidateGymnasium(g); err != nil {
		return nil, s.fail("Gymnasium validation failed", err, "id", g.ID)
	}

	ctx, cancel := s.writeCtx(ctx)
	defer cancel()

	err := s.inTx(ctx, "create gymnasium", func(ctx context.Context) error {
		if err := s.checkSports(ctx, g); err != nil {
			return err
		}
		if err := s.Repos.Gymnasiums.Create(ctx, g); err != nil {
			if errors.Is(err, repository.ErrDuplicateKey) {
				return apperrors.DuplicateKey(repository.GymnasiumsCollection, g.ID)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, s.fail("Failed to create gymnasium", err, "id", g.ID)
	}

	s.log.Info("Gymnasium created successfully",
		"id", g.ID,
		"name", g.Name,
		"courts", len(g.Courts),
		"equipment", len(g.Equipment),
	)
	return g, nil
}

func (s *gymnasiumService) GetByKey(ctx context.Context, id int) (*model.Gymnasium, error) {
	ctx, cancel := s.readCtx(ctx)
	defer cancel()

	g, err := s.Repos.Gymnasiums.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapError(lookupError(err, "gymnasium", id), "get gymnasium")
	}
	return g, nil
}

func (s *gymnasiumService) List(ctx context.Context, page model.Page) ([]*model.Gymnasium, int64, error) {
	page.Limit = config.NormalizePaginationLimit(page.Limit)
	page.Offset = config.NormalizeOffset(page.Offset)

	return listWithCount(ctx, &s.base, "gymnasiums",
		func(ctx context.Context) ([]*model.Gymnasium, error) { return s.Repos.Gymnasiums.FindAll(ctx, page) },
		s.Repos.Gymnasiums.Count,
	)
}

func (s *gymnasiumService) Update(ctx context.Context, id int, patch *model.GymnasiumUpdate) (*model.Gymnasium, error) {
	if patch == nil {
		return nil, missingPatch()
	}

	return s.modify(ctx, "update gymnasium", id, nil, func(ctx context.Context, g *model.Gymnasium, q *propagation.Queue) error {
		oldName := g.Name
		if patch.Name != nil {
			g.Name = *patch.Name
		}
		if patch.Address != nil {
			g.Address = *patch.Address
		}
		if patch.Capacity != nil {
			g.Capacity = *patch.Capacity
		}

		if sanitizer.NormalizeName(g.Name) != oldName {
			q.Push(propagation.RenameGymnasium(id, sanitizer.NormalizeName(g.Name)))
		}
		return nil
	})
}

func (s *gymnasiumService) Delete(ctx context.Context, id int) error {
	ctx, cancel := s.writeCtx(ctx)
	defer cancel()

	release, err := s.lockKeys(ctx, "gymnasium", lock.GymnasiumKey(id))
	if err != nil {
		return err
	}
	defer release()

	err = s.inTx(ctx, "delete gymnasium", func(ctx context.Context) error {
		if _, err := s.Repos.Gymnasiums.FindByID(ctx, id); err != nil {
			return lookupError(err, "gymnasium", id)
		}

		refs, err := references(ctx,
			refCheck{repository.BookingsCollection, func(ctx context.Context) (int64, error) { return s.Repos.Bookings.CountByGymnasium(ctx, id) }},
			refCheck{repository.EventsCollection, func(ctx context.Context) (int64, error) { return s.Repos.Events.CountByGymnasium(ctx, id) }},
			refCheck{repository.TicketsCollection, func(ctx context.Context) (int64, error) { return s.Repos.Tickets.CountByGymnasium(ctx, id) }},
		)
		if err != nil {
			return err
		}
		if len(refs) > 0 {
			return apperrors.ReferentialConflict("gymnasium", id, refs)
		}

		return lookupError(s.Repos.Gymnasiums.Delete(ctx, id), "gymnasium", id)
	})
	if err != nil {
		return s.fail("Failed to delete gymnasium", err, "id", id)
	}

	s.log.Info("Gymnasium deleted successfully", "id", id)
	return nil
}

func (s *gymnasiumService) AddCourt(ctx context.Context, gymID int, court model.Court) (*model.Gymnasium, error) {
	ref := model.CourtRef{GymnasiumID: gymID, CourtNumber: court.Number}
	return s.modify(ctx, "add court", gymID, []string{ref.Key()}, func(ctx context.Context, g *model.Gymnasium, q *propagation.Queue) error {
		if court.Status == "" {
			court.Status = model.CourtAvailable
		}
		g.Courts = append(g.Courts, court)
		return nil
	})
}

func (s *gymnasiumService) UpdateCourt(ctx context.Context, gymID, number int, patch *model.CourtUpdate) (*model.Gymnasium, error) {
	if patch == nil {
		return nil, missingPatch()
	}

	from := model.CourtRef{GymnasiumID: gymID, CourtNumber: number}
	keys := []string{from.Key()}
	if patch.Number != nil {
		keys = append(keys, model.CourtRef{GymnasiumID: gymID, CourtNumber: *patch.Number}.Key())
	}

	return s.modify(ctx, "update court", gymID, keys, func(ctx context.Context, g *model.Gymnasium, q *propagation.Queue) error {
		court, _ := g.FindCourt(number)
		if court == nil {
			return apperrors.NotFoundWithKey("court", from.Key())
		}
		before := *court

		if patch.Number != nil {
			court.Number = *patch.Number
		}
		if patch.Capacity != nil {
			court.Capacity = *patch.Capacity
		}
		if patch.FloorType != nil {
			court.FloorType = *patch.FloorType
		}
		if patch.Covered != nil {
			court.Covered = *patch.Covered
		}
		if patch.Status != nil {
			court.Status = *patch.Status
		}
		if patch.AllowedSports != nil {
			court.AllowedSports = slices.Clone(*patch.AllowedSports)
		}

		// Renumber first so the status cascade finds documents under the new number.
		if court.Number != before.Number {
			q.Push(propagation.RenumberCourt(gymID, before.Number, court.Number))
		}
		if court.Status != before.Status {
			q.Push(propagation.ChangeCourtStatus(model.CourtRef{GymnasiumID: gymID, CourtNumber: court.Number}, court.Status))
		}
		return nil
	})
}

func (s *gymnasiumService) RemoveCourt(ctx context.Context, gymID, number int) (*model.Gymnasium, error) {
	ref := model.CourtRef{GymnasiumID: gymID, CourtNumber: number}
	return s.modify(ctx, "remove court", gymID, []string{ref.Key()}, func(ctx context.Context, g *model.Gymnasium, q *propagation.Queue) error {
		_, idx := g.FindCourt(number)
		if idx < 0 {
			return apperrors.NotFoundWithKey("court", ref.Key())
		}

		refs, err := references(ctx,
			refCheck{repository.BookingsCollection, func(ctx context.Context) (int64, error) { return s.Repos.Bookings.CountActiveByCourt(ctx, ref) }},
			refCheck{repository.EventsCollection, func(ctx context.Context) (int64, error) { return s.Repos.Events.CountByCourt(ctx, ref) }},
			refCheck{repository.TicketsCollection, func(ctx context.Context) (int64, error) { return s.Repos.Tickets.CountOpenByCourt(ctx, ref) }},
		)
		if err != nil {
			return err
		}
		if len(refs) > 0 {
			return apperrors.ReferentialConflict("court", ref.Key(), refs)
		}

		g.Courts = slices.Delete(g.Courts, idx, idx+1)
		return nil
	})
}

func (s *gymnasiumService) SetCourtSports(ctx context.Context, gymID, number int, sports []int) (*model.Gymnasium, error) {
	if sports == nil {
		sports = []int{}
	}
	return s.UpdateCourt(ctx, gymID, number, &model.CourtUpdate{AllowedSports: &sports})
}

func (s *gymnasiumService) AddEquipment(ctx context.Context, gymID int, eq model.Equipment) (*model.Gymnasium, error) {
	return s.modify(ctx, "add equipment", gymID, nil, func(ctx context.Context, g *model.Gymnasium, q *propagation.Queue) error {
		if eq.Condition == "" {
			eq.Condition = model.ConditionGood
		}
		g.Equipment = append(g.Equipment, eq)
		return nil
	})
}

// UpdateEquipment keeps the number of units held by bookings constant when
// only the total changes.
func (s *gymnasiumService) UpdateEquipment(ctx context.Context, gymID, equipmentID int, patch *model.EquipmentUpdate) (*model.Gymnasium, error) {
	if patch == nil {
		return nil, missingPatch()
	}

	return s.modify(ctx, "update equipment", gymID, nil, func(ctx context.Context, g *model.Gymnasium, q *propagation.Queue) error {
		item, idx := g.FindEquipment(equipmentID)
		if item == nil {
			return apperrors.NotFoundWithKey("equipment", fmt.Sprintf("%d:%d", gymID, equipmentID))
		}
		held := item.TotalQuantity - item.AvailableQuantity

		if patch.Name != nil {
			item.Name = *patch.Name
		}
		if patch.Description != nil {
			item.Description = *patch.Description
		}
		if patch.Brand != nil {
			item.Brand = *patch.Brand
		}
		if patch.Condition != nil {
			item.Condition = *patch.Condition
		}
		if patch.TotalQuantity != nil {
			item.TotalQuantity = *patch.TotalQuantity
			if patch.AvailableQuantity == nil {
				item.AvailableQuantity = item.TotalQuantity - held
				if item.AvailableQuantity < 0 {
					return apperrors.SchemaViolation(apperrors.Violation{
						Field:  fmt.Sprintf("equipment[%d].total_quantity", idx),
						Reason: fmt.Sprintf("cannot drop below the %d units currently held", held),
					})
				}
			}
		}
		if patch.AvailableQuantity != nil {
			item.AvailableQuantity = *patch.AvailableQuantity
			if free := item.TotalQuantity - held; item.AvailableQuantity > free {
				return apperrors.SchemaViolation(apperrors.Violation{
					Field:  fmt.Sprintf("equipment[%d].available_quantity", idx),
					Reason: fmt.Sprintf("cannot exceed %d while %d units are held by bookings", free, held),
				})
			}
		}
		return nil
	})
}

func (s *gymnasiumService) RemoveEquipment(ctx context.Context, gymID, equipmentID int) (*model.Gymnasium, error) {
	key := fmt.Sprintf("%d:%d", gymID, equipmentID)
	return s.modify(ctx, "remove equipment", gymID, nil, func(ctx context.Context, g *model.Gymnasium, q *propagation.Queue) error {
		_, idx := g.FindEquipment(equipmentID)
		if idx < 0 {
			return apperrors.NotFoundWithKey("equipment", key)
		}

		refs, err := references(ctx, refCheck{repository.BookingsCollection, func(ctx context.Context) (int64, error) {
			return s.Repos.Bookings.CountHoldingEquipment(ctx, gymID, equipmentID)
		}})
		if err != nil {
			return err
		}
		if len(refs) > 0 {
			return apperrors.ReferentialConflict("equipment", key, refs)
		}

		g.Equipment = slices.Delete(g.Equipment, idx, idx+1)
		return nil
	})
}

// ListEquipment flattens the equipment of every gymnasium, ordered by
// gymnasium id and then by position within the gymnasium.
func (s *gymnasiumService) ListEquipment(ctx context.Context) ([]model.EquipmentView, error) {
	ctx, cancel := s.readCtx(ctx)
	defer cancel()

	gyms, err := s.Repos.Gymnasiums.FindAll(ctx, model.Page{})
	if err != nil {
		return nil, s.fail("Failed to list equipment", s.mapError(err, "list equipment"))
	}

	views := []model.EquipmentView{}
	for _, g := range gyms {
		for _, eq := range g.Equipment {
			views = append(views, model.EquipmentView{
				Equipment:     eq,
				GymnasiumID:   g.ID,
				GymnasiumName: g.Name,
			})
		}
	}

	s.log.Debug("Listed equipment", "gymnasiums", len(gyms), "items", len(views))
	return views, nil
}

type gymnasiumEdit func(ctx context.Context, g *model.Gymnasium, q *propagation.Queue) error

// modify is the shared write path of every structural gymnasium edit: lock
// the gymnasium (plus any court keys), load, edit, re-validate, replace and
// drain the cascades the edit queued, all in one transaction.
func (s *gymnasiumService) modify(ctx context.Context, op string, gymID int, courtKeys []string, edit gymnasiumEdit) (*model.Gymnasium, error) {
	ctx, cancel := s.writeCtx(ctx)
	defer cancel()

	release, err := s.lockKeys(ctx, "gymnasium", append([]string{lock.GymnasiumKey(gymID)}, courtKeys...)...)
	if err != nil {
		return nil, err
	}
	defer release()

	var (
		updated *model.Gymnasium
		res     propagation.Result
	)
	err = s.inTx(ctx, op, func(ctx context.Context) error {
		g, err := s.Repos.Gymnasiums.FindByID(ctx, gymID)
		if err != nil {
			return lookupError(err, "gymnasium", gymID)
		}

		q := &propagation.Queue{}
		if err := edit(ctx, g, q); err != nil {
			return err
		}

		sanitizeGymnasium(g)
		g.UpdatedAt = now()
		if err := s.Validator.ValidateGymnasium(g); err != nil {
			return err
		}
		if err := s.checkSports(ctx, g); err != nil {
			return err
		}
		if err := s.Repos.Gymnasiums.Replace(ctx, g); err != nil {
			return lookupError(err, "gymnasium", gymID)
		}

		res, err = s.drain(ctx, q)
		updated = g
		return err
	})
	if err != nil {
		return nil, s.fail("Failed to "+op, err, "gymnasium_id", gymID)
	}

	s.log.Info("Gymnasium updated successfully", "operation", op, "id", gymID)
	s.announce(ctx, "gymnasium", gymID, res)
	return updated, nil
}

// checkSports verifies every sport a court allows exists.
func (s *gymnasiumService) checkSports(ctx context.Context, g *model.Gymnasium) error {
	known := map[int]bool{}
	for i, court := range g.Courts {
		for _, sportID := range court.AllowedSports {
			if known[sportID] {
				continue
			}
			if _, err := s.Repos.Sports.FindByID(ctx, sportID); err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					return apperrors.SchemaViolation(apperrors.Violation{
						Field:  fmt.Sprintf("courts[%d].allowed_sports", i),
						Reason: fmt.Sprintf("sport %d does not exist", sportID),
					})
				}
				return err
			}
			known[sportID] = true
		}
	}
	return nil
}

func sanitizeGymnasium(g *model.Gymnasium) {
	g.Name = sanitizer.NormalizeName(g.Name)
	g.Address = sanitizer.NormalizeAddress(g.Address)
	if g.Courts == nil {
		g.Courts = []model.Court{}
	}
	if g.Equipment == nil {
		g.Equipment = []model.Equipment{}
	}
	for i := range g.Courts {
		g.Courts[i].FloorType = sanitizer.NormalizeLabel(g.Courts[i].FloorType)
		g.Courts[i].AllowedSports = sanitizer.NormalizeIDs(g.Courts[i].AllowedSports)
	}
	for i := range g.Equipment {
		g.Equipment[i].Name = sanitizer.NormalizeName(g.Equipment[i].Name)
		g.Equipment[i].Description = sanitizer.NormalizeText(g.Equipment[i].Description)
		g.Equipment[i].Brand = sanitizer.NormalizeLabel(g.Equipment[i].Brand)
	}
}
