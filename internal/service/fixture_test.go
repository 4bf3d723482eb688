package service

import (
	"context"
	"testing"
	"time"

	"courtbook/internal/lock"
	"courtbook/internal/notify"
	"courtbook/internal/repository"
	"courtbook/internal/repository/memory"
	"courtbook/internal/validator"
	"courtbook/pkg/config"
	"courtbook/pkg/model"

	"github.com/stretchr/testify/require"
)

const (
	joseID  = "11122233344"
	anaID   = "22233344455"
	adminID = "00000000000"
)

type fixture struct {
	ctx      context.Context
	repos    *repository.Repositories
	pub      *notify.Recorder
	users    UserService
	sports   SportService
	gyms     GymnasiumService
	bookings BookingService
	events   EventService
	tickets  TicketService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureWith(t, memory.NewRepositories())
}

func newFixtureWith(t *testing.T, repos *repository.Repositories) *fixture {
	t.Helper()

	cfg := config.NewForTest(nil)
	pub := &notify.Recorder{}
	d := Deps{
		Repos:     repos,
		Validator: validator.New(cfg.Log),
		Locker:    lock.NewLocal(cfg.LockWait),
		Publisher: pub,
		Cfg:       cfg,
	}

	return &fixture{
		ctx:      context.Background(),
		repos:    repos,
		pub:      pub,
		users:    NewUserService(d),
		sports:   NewSportService(d),
		gyms:     NewGymnasiumService(d),
		bookings: NewBookingService(d),
		events:   NewEventService(d),
		tickets:  NewTicketService(d),
	}
}

func adminUser() *model.User {
	return &model.User{
		NationalID: adminID,
		Name:       "Administrador Geral",
		Email:      "admin@sistema.com",
		Password:   "admin123",
		BirthDate:  time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC),
		Role:       model.RoleAdmin,
		StaffDetails: &model.StaffDetails{
			StaffID:       "SERV001",
			AdmissionDate: time.Date(2020, 3, 1, 0, 0, 0, 0, time.UTC),
		},
		AdminDetails: &model.AdminDetails{AccessLevel: 1, ResponsibilityArea: "Gestão Geral"},
	}
}

func joseUser() *model.User {
	return &model.User{
		NationalID: joseID,
		Name:       "José Testador",
		Email:      "jose@teste.com",
		Password:   "123",
		BirthDate:  time.Date(2002, 5, 10, 0, 0, 0, 0, time.UTC),
		Role:       model.RoleStudent,
		StudentDetails: &model.StudentDetails{
			EnrollmentID: "202501",
			Program:      "Ciência da Computação",
			StartYear:    2025,
			Category:     model.NonScholarship,
		},
	}
}

func anaUser() *model.User {
	return &model.User{
		NationalID: anaID,
		Name:       "Ana Bolsista",
		Email:      "ana.bolsista@email.com",
		Password:   "123",
		BirthDate:  time.Date(2003, 2, 15, 0, 0, 0, 0, time.UTC),
		Role:       model.RoleStudent,
		StudentDetails: &model.StudentDetails{
			EnrollmentID:      "202502",
			Program:           "Engenharia de Software",
			StartYear:         2025,
			Category:          model.Scholarship,
			Stipend:           700,
			WeeklyHours:       20,
			ShiftStart:        "13:30",
			ShiftEnd:          "17:30",
			SupervisorStaffID: "SERV001",
		},
	}
}

func mainGym() *model.Gymnasium {
	return &model.Gymnasium{
		ID:       1,
		Name:     "Ginásio Principal A",
		Address:  "Rua UDESC, 123",
		Capacity: 1000,
		Courts: []model.Court{
			{Number: 1, Capacity: 100, FloorType: "Madeira", Covered: true, Status: model.CourtAvailable, AllowedSports: []int{1, 3}},
			{Number: 2, Capacity: 80, FloorType: "Cimento", Covered: true, Status: model.CourtMaintenance, AllowedSports: []int{2}},
		},
		Equipment: []model.Equipment{
			{ID: 101, Name: "Bola de Basquete", Description: "Tamanho oficial", Brand: "Spalding", Condition: model.ConditionGood, TotalQuantity: 10, AvailableQuantity: 8},
			{ID: 102, Name: "Bola de Vôlei", Description: "Couro sintético", Brand: "Penalty", Condition: model.ConditionGood, TotalQuantity: 15, AvailableQuantity: 15},
		},
	}
}

func annexGym() *model.Gymnasium {
	return &model.Gymnasium{
		ID:       2,
		Name:     "Ginásio Anexo B",
		Address:  "Rua dos Esportes, 456",
		Capacity: 500,
		Courts: []model.Court{
			{Number: 1, Capacity: 50, FloorType: "Areia", Covered: false, Status: model.CourtAvailable, AllowedSports: []int{3}},
		},
		Equipment: []model.Equipment{
			{ID: 201, Name: "Rede de Vôlei de Praia", Brand: "Master Rede", Condition: model.ConditionMaintenance, TotalQuantity: 2, AvailableQuantity: 1},
		},
	}
}

// seed creates the reference data every scenario starts from.
func (f *fixture) seed(t *testing.T) {
	t.Helper()

	for _, sp := range []*model.Sport{
		{ID: 1, Name: "Basquete", MaxPlayers: 10},
		{ID: 2, Name: "Futsal", MaxPlayers: 10},
		{ID: 3, Name: "Vôlei", MaxPlayers: 12},
	} {
		_, err := f.sports.Create(f.ctx, sp)
		require.NoError(t, err)
	}
	for _, u := range []*model.User{adminUser(), joseUser(), anaUser()} {
		_, err := f.users.Create(f.ctx, u)
		require.NoError(t, err)
	}
	for _, g := range []*model.Gymnasium{mainGym(), annexGym()} {
		_, err := f.gyms.Create(f.ctx, g)
		require.NoError(t, err)
	}
}

func court(gym, number int) model.CourtRef {
	return model.CourtRef{GymnasiumID: gym, CourtNumber: number}
}

// tomorrowAt returns hour:minute of the next calendar day in UTC.
func tomorrowAt(hour, minute int) time.Time {
	d := time.Now().UTC().AddDate(0, 0, 1)
	return time.Date(d.Year(), d.Month(), d.Day(), hour, minute, 0, 0, time.UTC)
}

func bookingRequest(c model.CourtRef, start, end time.Time, lines ...model.EquipmentLine) *model.Booking {
	return &model.Booking{
		RequesterID: joseID,
		GymnasiumID: c.GymnasiumID,
		CourtNumber: c.CourtNumber,
		Start:       start,
		End:         end,
		Reason:      "Treino de Basquete",
		Equipment:   lines,
	}
}

func (f *fixture) available(t *testing.T, gymID, equipmentID int) int {
	t.Helper()
	g, err := f.gyms.GetByKey(f.ctx, gymID)
	require.NoError(t, err)
	item, _ := g.FindEquipment(equipmentID)
	require.NotNil(t, item)
	return item.AvailableQuantity
}
