package store

import (
	"time"

	"crm/internal/domain"
)

type NotificationInsert struct {
	Message    string
	TargetType string
	CreatedBy  int64
	Now        time.Time
}

type CustomerInsert struct {
	Name  string
	Email string
	Phone string
	Type  string
}

type UserInsert struct {
	Name         string
	Email        string
	Phone        string
	Address      string
	PasswordHash string
	Role         domain.Role
}

type UserUpdate struct {
	ID           int64
	Name         *string
	Email        *string
	Phone        *string
	Address      *string
	PasswordHash *string
}

type TaskInsert struct {
	CustomerID          int64
	EmployeeID          int64
	ServiceType         string
	FormServiceType     string
	ApplicationID       string
	ApplicationPassword string
	Description         string
	TotalAmount         float64
	DeductionAmount     float64
	Revenue             float64
	PaymentMode         string
}
