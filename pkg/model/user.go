package model

import "time"

type UserStatus string

const (
	UserActive   UserStatus = "active"
	UserInactive UserStatus = "inactive"
)

type Role string

const (
	RoleStudent Role = "student"
	RoleStaff   Role = "staff"
	RoleAdmin   Role = "admin"
)

type StudentCategory string

const (
	Scholarship    StudentCategory = "scholarship"
	NonScholarship StudentCategory = "non_scholarship"
)

// User is keyed by national ID. Role is the primary role; capabilities are
// the optional detail records, so one user can be staff and admin at once.
type User struct {
	NationalID     string          `json:"national_id" bson:"_id" validate:"required,national_id"`
	Name           string          `json:"name" bson:"name" validate:"required,min=2,max=120"`
	Email          string          `json:"email" bson:"email" validate:"required,email"`
	Password       string          `json:"-" bson:"-"`
	PasswordHash   string          `json:"-" bson:"password_hash" validate:"required"`
	BirthDate      time.Time       `json:"birth_date" bson:"birth_date" validate:"required"`
	Status         UserStatus      `json:"status" bson:"status" validate:"required,oneof=active inactive"`
	Role           Role            `json:"role" bson:"role" validate:"required,oneof=student staff admin"`
	StudentDetails *StudentDetails `json:"student_details,omitempty" bson:"student_details,omitempty" validate:"omitempty"`
	StaffDetails   *StaffDetails   `json:"staff_details,omitempty" bson:"staff_details,omitempty" validate:"omitempty"`
	AdminDetails   *AdminDetails   `json:"admin_details,omitempty" bson:"admin_details,omitempty" validate:"omitempty"`
	CreatedAt      time.Time       `json:"created_at" bson:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at" bson:"updated_at"`
}

type StudentDetails struct {
	EnrollmentID string          `json:"enrollment_id" bson:"enrollment_id" validate:"required,max=30"`
	Program      string          `json:"program" bson:"program" validate:"required,max=120"`
	StartYear    int             `json:"start_year" bson:"start_year" validate:"required,min=1950,max=2100"`
	Category     StudentCategory `json:"category" bson:"category" validate:"required,oneof=scholarship non_scholarship"`

	// Scholarship only.
	Stipend           float64 `json:"stipend,omitempty" bson:"stipend,omitempty" validate:"required_if=Category scholarship,omitempty,gt=0"`
	WeeklyHours       int     `json:"weekly_hours,omitempty" bson:"weekly_hours,omitempty" validate:"required_if=Category scholarship,omitempty,min=1,max=44"`
	ShiftStart        string  `json:"shift_start,omitempty" bson:"shift_start,omitempty" validate:"required_if=Category scholarship,omitempty,hhmm"`
	ShiftEnd          string  `json:"shift_end,omitempty" bson:"shift_end,omitempty" validate:"required_if=Category scholarship,omitempty,hhmm"`
	SupervisorStaffID string  `json:"supervisor_staff_id,omitempty" bson:"supervisor_staff_id,omitempty" validate:"required_if=Category scholarship"`
}

type StaffDetails struct {
	StaffID       string    `json:"staff_id" bson:"staff_id" validate:"required,max=30"`
	AdmissionDate time.Time `json:"admission_date" bson:"admission_date" validate:"required"`
}

type AdminDetails struct {
	AccessLevel        int    `json:"access_level" bson:"access_level" validate:"required,min=1,max=10"`
	ResponsibilityArea string `json:"responsibility_area" bson:"responsibility_area" validate:"required,max=120"`
}

// HasCapability reports whether the user carries the detail record for role.
func (u *User) HasCapability(role Role) bool {
	switch role {
	case RoleStudent:
		return u.StudentDetails != nil
	case RoleStaff:
		return u.StaffDetails != nil
	case RoleAdmin:
		return u.AdminDetails != nil
	}
	return false
}

func (u *User) Snapshot() UserSnapshot {
	return UserSnapshot{Name: u.Name}
}

// UserUpdate is a partial patch. Nil fields are left untouched; the Remove*
// flags drop a capability record.
type UserUpdate struct {
	Name                 *string         `json:"name,omitempty"`
	Email                *string         `json:"email,omitempty"`
	Password             *string         `json:"-"`
	BirthDate            *time.Time      `json:"birth_date,omitempty"`
	Status               *UserStatus     `json:"status,omitempty"`
	Role                 *Role           `json:"role,omitempty"`
	StudentDetails       *StudentDetails `json:"student_details,omitempty"`
	StaffDetails         *StaffDetails   `json:"staff_details,omitempty"`
	AdminDetails         *AdminDetails   `json:"admin_details,omitempty"`
	RemoveStudentDetails bool            `json:"remove_student_details,omitempty"`
	RemoveStaffDetails   bool            `json:"remove_staff_details,omitempty"`
	RemoveAdminDetails   bool            `json:"remove_admin_details,omitempty"`
}

type UserFilter struct {
	Role   Role
	Status UserStatus
	Limit  int
	Offset int64
}
