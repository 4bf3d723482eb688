package seed

import (
	"time"

	"courtbook/pkg/model"

	"github.com/google/uuid"
)

// Data is one full set of seed documents, one slice per collection.
type Data struct {
	Users      []*model.User
	Gymnasiums []*model.Gymnasium
	Sports     []*model.Sport
	Bookings   []*model.Booking
	Events     []*model.Event
	Tickets    []*model.Ticket
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Documents returns the reference data set. Booking and event windows are
// placed relative to now: the booking starts one day out and lasts one hour,
// the event starts two days out and lasts four.
func Documents(now time.Time) *Data {
	now = now.UTC().Truncate(time.Second)
	bookingStart := now.AddDate(0, 0, 1)
	bookingEnd := bookingStart.Add(time.Hour)
	eventStart := now.AddDate(0, 0, 2)
	eventEnd := eventStart.Add(4 * time.Hour)

	return &Data{
		Users: []*model.User{
			{
				NationalID: "11122233344",
				Name:       "José Testador",
				Email:      "jose@teste.com",
				Password:   "123",
				BirthDate:  date(2002, time.May, 10),
				Status:     model.UserActive,
				Role:       model.RoleStudent,
				StudentDetails: &model.StudentDetails{
					EnrollmentID: "202501",
					Program:      "Ciência da Computação",
					StartYear:    2025,
					Category:     model.NonScholarship,
				},
			},
			{
				NationalID: "22233344455",
				Name:       "Ana Bolsista",
				Email:      "ana.bolsista@email.com",
				Password:   "123",
				BirthDate:  date(2003, time.February, 15),
				Status:     model.UserActive,
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
			},
			{
				NationalID: "00000000000",
				Name:       "Administrador Geral",
				Email:      "admin@sistema.com",
				Password:   "admin123",
				BirthDate:  date(1990, time.January, 1),
				Status:     model.UserActive,
				Role:       model.RoleAdmin,
				StaffDetails: &model.StaffDetails{
					StaffID:       "SERV001",
					AdmissionDate: date(2020, time.March, 1),
				},
				AdminDetails: &model.AdminDetails{
					AccessLevel:        1,
					ResponsibilityArea: "Gestão Geral",
				},
			},
		},

		Gymnasiums: []*model.Gymnasium{
			{
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
			},
			{
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
			},
		},

		Sports: []*model.Sport{
			{ID: 1, Name: "Basquete", MaxPlayers: 10},
			{ID: 2, Name: "Futsal", MaxPlayers: 10},
			{ID: 3, Name: "Vôlei", MaxPlayers: 12},
		},

		// Two of the ten basketballs are missing from gymnasium 1 because this
		// booking already holds them.
		Bookings: []*model.Booking{
			{
				ID:            uuid.NewString(),
				RequesterID:   "11122233344",
				RequesterInfo: model.UserSnapshot{Name: "José Testador"},
				GymnasiumID:   1,
				CourtNumber:   1,
				LocationInfo:  model.VenueSnapshot{GymnasiumName: "Ginásio Principal A", CourtStatus: model.CourtAvailable},
				RequestedAt:   now,
				Start:         bookingStart,
				End:           bookingEnd,
				Reason:        "Treino de Basquete",
				Status:        model.BookingConfirmed,
				Equipment:     []model.EquipmentLine{{EquipmentID: 101, Name: "Bola de Basquete", Quantity: 2}},
				EquipmentHeld: true,
				UpdatedAt:     now,
			},
		},

		Events: []*model.Event{
			{
				ID:            uuid.NewString(),
				Name:          "Campeonato Intercursos",
				Description:   "Primeira fase do campeonato.",
				OrganizerID:   "00000000000",
				OrganizerInfo: model.UserSnapshot{Name: "Administrador Geral"},
				Type:          model.EventOneOff,
				Start:         &eventStart,
				End:           &eventEnd,
				BlockedCourts: []model.CourtRef{
					{GymnasiumID: 1, CourtNumber: 1},
					{GymnasiumID: 1, CourtNumber: 2},
				},
				CreatedAt: now,
				UpdatedAt: now,
			},
		},

		Tickets: []*model.Ticket{
			{
				ID:           uuid.NewString(),
				ReporterID:   "22233344455",
				ReporterInfo: model.UserSnapshot{Name: "Ana Bolsista"},
				GymnasiumID:  2,
				CourtNumber:  1,
				LocationInfo: model.VenueSnapshot{GymnasiumName: "Ginásio Anexo B"},
				CreatedAt:    now,
				Description:  "A rede da quadra de areia está rasgada.",
				Status:       model.TicketOpen,
				UpdatedAt:    now,
			},
		},
	}
}
