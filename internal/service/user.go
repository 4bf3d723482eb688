package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"courtbook/internal/propagation"
	"courtbook/internal/repository"
	"courtbook/pkg/config"
	apperrors "courtbook/pkg/errors"
	"courtbook/pkg/model"
	"courtbook/pkg/sanitizer"
	"courtbook/pkg/secret"
)

type UserService interface {
	Create(ctx context.Context, u *model.User) (*model.User, error)
	GetByKey(ctx context.Context, id string) (*model.User, error)
	List(ctx context.Context, filter model.UserFilter) ([]*model.User, int64, error)
	Update(ctx context.Context, id string, patch *model.UserUpdate) (*model.User, error)
	SetStatus(ctx context.Context, id string, status model.UserStatus) (*model.User, error)
	Delete(ctx context.Context, id string) error
}

type userService struct {
	base
}

func NewUserService(d Deps) UserService {
	return &userService{base: newBase(d, "users")}
}

func (s *userService) Create(ctx context.Context, u *model.User) (*model.User, error) {
	if u == nil {
		return nil, missingDocument()
	}

	s.sanitize(u)
	if u.Status == "" {
		u.Status = model.UserActive
	}
	u.CreatedAt = now()
	u.UpdatedAt = u.CreatedAt

	if err := s.hashPassword(u); err != nil {
		return nil, err
	}
	if err := s.Validator.ValidateUser(u); err != nil {
		return nil, s.fail("User validation failed", err, "id", u.NationalID)
	}

	ctx, cancel := s.writeCtx(ctx)
	defer cancel()

	err := s.inTx(ctx, "create user", func(ctx context.Context) error {
		if err := s.checkStaffReferences(ctx, u, nil); err != nil {
			return err
		}
		if err := s.Repos.Users.Create(ctx, u); err != nil {
			return userWriteError(err, u)
		}
		return nil
	})
	if err != nil {
		return nil, s.fail("Failed to create user", err, "id", u.NationalID)
	}

	s.log.Info("User created successfully",
		"id", u.NationalID,
		"role", u.Role,
		"status", u.Status,
	)
	return u, nil
}

func (s *userService) GetByKey(ctx context.Context, id string) (*model.User, error) {
	id = sanitizer.NormalizeNationalID(id)
	if id == "" {
		return nil, apperrors.InvalidInput("User ID cannot be empty")
	}

	ctx, cancel := s.readCtx(ctx)
	defer cancel()

	u, err := s.Repos.Users.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapError(lookupError(err, "user", id), "get user")
	}
	return u, nil
}

func (s *userService) List(ctx context.Context, filter model.UserFilter) ([]*model.User, int64, error) {
	filter.Limit = config.NormalizePaginationLimit(filter.Limit)
	filter.Offset = config.NormalizeOffset(filter.Offset)

	return listWithCount(ctx, &s.base, "users",
		func(ctx context.Context) ([]*model.User, error) { return s.Repos.Users.FindAll(ctx, filter) },
		func(ctx context.Context) (int64, error) { return s.Repos.Users.Count(ctx, filter) },
	)
}

func (s *userService) Update(ctx context.Context, id string, patch *model.UserUpdate) (*model.User, error) {
	if patch == nil {
		return nil, missingPatch()
	}
	id = sanitizer.NormalizeNationalID(id)

	ctx, cancel := s.writeCtx(ctx)
	defer cancel()

	var (
		updated *model.User
		res     propagation.Result
	)
	err := s.inTx(ctx, "update user", func(ctx context.Context) error {
		existing, err := s.Repos.Users.FindByID(ctx, id)
		if err != nil {
			return lookupError(err, "user", id)
		}

		merged := mergeUser(existing, patch)
		s.sanitize(merged)
		merged.UpdatedAt = now()
		if err := s.hashPassword(merged); err != nil {
			return err
		}
		if err := s.Validator.ValidateUser(merged); err != nil {
			return err
		}
		if err := s.checkStaffReferences(ctx, merged, existing); err != nil {
			return err
		}
		if err := s.Repos.Users.Replace(ctx, merged); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return apperrors.NotFoundWithKey("user", id)
			}
			return userWriteError(err, merged)
		}

		q := &propagation.Queue{}
		if merged.Name != existing.Name {
			q.Push(propagation.RenameUser(id, merged.Snapshot()))
		}
		res, err = s.drain(ctx, q)
		updated = merged
		return err
	})
	if err != nil {
		return nil, s.fail("Failed to update user", err, "id", id)
	}

	s.log.Info("User updated successfully", "id", id)
	s.announce(ctx, "user", id, res)
	return updated, nil
}

func (s *userService) SetStatus(ctx context.Context, id string, status model.UserStatus) (*model.User, error) {
	return s.Update(ctx, id, &model.UserUpdate{Status: &status})
}

func (s *userService) Delete(ctx context.Context, id string) error {
	id = sanitizer.NormalizeNationalID(id)

	ctx, cancel := s.writeCtx(ctx)
	defer cancel()

	err := s.inTx(ctx, "delete user", func(ctx context.Context) error {
		u, err := s.Repos.Users.FindByID(ctx, id)
		if err != nil {
			return lookupError(err, "user", id)
		}

		checks := []refCheck{
			{repository.BookingsCollection, func(ctx context.Context) (int64, error) { return s.Repos.Bookings.CountByUser(ctx, id) }},
			{repository.EventsCollection, func(ctx context.Context) (int64, error) { return s.Repos.Events.CountByOrganizer(ctx, id) }},
			{repository.TicketsCollection, func(ctx context.Context) (int64, error) { return s.Repos.Tickets.CountByReporter(ctx, id) }},
		}
		if u.StaffDetails != nil {
			staffID := u.StaffDetails.StaffID
			checks = append(checks, refCheck{repository.UsersCollection, func(ctx context.Context) (int64, error) {
				return s.Repos.Users.CountSupervisedBy(ctx, staffID)
			}})
		}
		refs, err := references(ctx, checks...)
		if err != nil {
			return err
		}
		if len(refs) > 0 {
			return apperrors.ReferentialConflict("user", id, refs)
		}

		return lookupError(s.Repos.Users.Delete(ctx, id), "user", id)
	})
	if err != nil {
		return s.fail("Failed to delete user", err, "id", id)
	}

	s.log.Info("User deleted successfully", "id", id)
	return nil
}

func (s *userService) sanitize(u *model.User) {
	u.NationalID = sanitizer.NormalizeNationalID(u.NationalID)
	u.Name = sanitizer.NormalizeName(u.Name)
	u.Email = sanitizer.NormalizeEmail(u.Email)
	if u.StudentDetails != nil {
		u.StudentDetails.EnrollmentID = strings.TrimSpace(u.StudentDetails.EnrollmentID)
		u.StudentDetails.Program = sanitizer.NormalizeName(u.StudentDetails.Program)
		u.StudentDetails.SupervisorStaffID = strings.TrimSpace(u.StudentDetails.SupervisorStaffID)
	}
	if u.StaffDetails != nil {
		u.StaffDetails.StaffID = strings.TrimSpace(u.StaffDetails.StaffID)
	}
	if u.AdminDetails != nil {
		u.AdminDetails.ResponsibilityArea = sanitizer.NormalizeLabel(u.AdminDetails.ResponsibilityArea)
	}
}

// hashPassword replaces a plain credential with its bcrypt hash. The plain
// value never leaves this function.
func (s *userService) hashPassword(u *model.User) error {
	if u.Password != "" {
		hash, err := secret.Hash(u.Password, s.Cfg.BcryptCost)
		u.Password = ""
		if err != nil {
			return apperrors.Internal("Failed to hash credential", err)
		}
		u.PasswordHash = hash
		return nil
	}
	if u.PasswordHash != "" && !secret.IsHash(u.PasswordHash) {
		return apperrors.SchemaViolation(apperrors.Violation{
			Field:  "password_hash",
			Reason: "must be a bcrypt hash; pass the plain credential as password instead",
		})
	}
	return nil
}

// checkStaffReferences enforces the staff id links between users: a
// scholarship student's supervisor must exist, staff ids are unique, and a
// staff id cannot disappear while students still point at it.
func (s *userService) checkStaffReferences(ctx context.Context, u, previous *model.User) error {
	if sd := u.StudentDetails; sd != nil && sd.Category == model.Scholarship {
		supervisor, err := s.Repos.Users.FindByStaffID(ctx, sd.SupervisorStaffID)
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.SchemaViolation(apperrors.Violation{
				Field:  "student_details.supervisor_staff_id",
				Reason: fmt.Sprintf("no staff member with staff id %q", sd.SupervisorStaffID),
			})
		}
		if err != nil {
			return err
		}
		if supervisor.NationalID == u.NationalID {
			return apperrors.SchemaViolation(apperrors.Violation{
				Field:  "student_details.supervisor_staff_id",
				Reason: "a student cannot supervise themselves",
			})
		}
	}

	if u.StaffDetails != nil {
		other, err := s.Repos.Users.FindByStaffID(ctx, u.StaffDetails.StaffID)
		switch {
		case err == nil && other.NationalID != u.NationalID:
			return apperrors.DuplicateKey(repository.UsersCollection, u.StaffDetails.StaffID)
		case err != nil && !errors.Is(err, repository.ErrNotFound):
			return err
		}
	}

	if previous != nil && previous.StaffDetails != nil {
		oldID := previous.StaffDetails.StaffID
		if u.StaffDetails == nil || u.StaffDetails.StaffID != oldID {
			n, err := s.Repos.Users.CountSupervisedBy(ctx, oldID)
			if err != nil {
				return err
			}
			if n > 0 {
				return apperrors.ReferentialConflict("user", u.NationalID, map[string]int64{repository.UsersCollection: n})
			}
		}
	}

	return nil
}

func userWriteError(err error, u *model.User) error {
	switch {
	case errors.Is(err, repository.ErrDuplicateEmail):
		return apperrors.DuplicateKey(repository.UsersCollection, u.Email)
	case errors.Is(err, repository.ErrDuplicateKey):
		return apperrors.DuplicateKey(repository.UsersCollection, u.NationalID)
	}
	return err
}

func mergeUser(existing *model.User, patch *model.UserUpdate) *model.User {
	merged := *existing

	if patch.Name != nil {
		merged.Name = *patch.Name
	}
	if patch.Email != nil {
		merged.Email = *patch.Email
	}
	if patch.Password != nil {
		merged.Password = *patch.Password
	}
	if patch.BirthDate != nil {
		merged.BirthDate = *patch.BirthDate
	}
	if patch.Status != nil {
		merged.Status = *patch.Status
	}
	if patch.Role != nil {
		merged.Role = *patch.Role
	}

	if patch.StudentDetails != nil {
		sd := *patch.StudentDetails
		merged.StudentDetails = &sd
	}
	if patch.StaffDetails != nil {
		sd := *patch.StaffDetails
		merged.StaffDetails = &sd
	}
	if patch.AdminDetails != nil {
		ad := *patch.AdminDetails
		merged.AdminDetails = &ad
	}
	if patch.RemoveStudentDetails {
		merged.StudentDetails = nil
	}
	if patch.RemoveStaffDetails {
		merged.StaffDetails = nil
	}
	if patch.RemoveAdminDetails {
		merged.AdminDetails = nil
	}

	return &merged
}
