package domain

import "time"

type User struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone,omitempty"`
	Address      string    `json:"address,omitempty"`
	Role         Role      `json:"role"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

type Customer struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Type      string    `json:"type,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

const (
	ServiceForm  = "form"
	ServiceXerox = "xerox"

	PaymentUnpaid = "unpaid"
	PaymentPaid   = "paid"

	WorkPending   = "pending"
	WorkCompleted = "completed"
)

type Task struct {
	ID                  int64      `json:"id"`
	CustomerID          int64      `json:"customer_id"`
	EmployeeID          int64      `json:"employee_id"`
	ServiceType         string     `json:"service_type"`
	FormServiceType     string     `json:"form_service_type,omitempty"`
	ApplicationID       string     `json:"application_id,omitempty"`
	ApplicationPassword string     `json:"application_password,omitempty"`
	Description         string     `json:"description,omitempty"`
	TotalAmount         float64    `json:"total_amount"`
	DeductionAmount     float64    `json:"deduction_amount"`
	Revenue             float64    `json:"revenue"`
	PaymentMode         string     `json:"payment_mode,omitempty"`
	PaymentStatus       string     `json:"payment_status"`
	WorkStatus          string     `json:"work_status"`
	ScreenshotURL       string     `json:"screenshot_url,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
	CompletedAt         *time.Time `json:"completed_at,omitempty"`

	CustomerName  string `json:"customer_name,omitempty"`
	CustomerPhone string `json:"customer_phone,omitempty"`
	CustomerEmail string `json:"customer_email,omitempty"`
	CustomerType  string `json:"customer_type,omitempty"`
}

// TaskPatch carries the optional fields of a task edit. Nil leaves the column alone.
type TaskPatch struct {
	ApplicationID       *string
	ApplicationPassword *string
	Description         *string
	TotalAmount         *float64
	DeductionAmount     *float64
	Revenue             *float64
	PaymentStatus       *string
	PaymentMode         *string
	FormServiceType     *string
	WorkStatus          *string

	CustomerName  *string
	CustomerPhone *string
	CustomerEmail *string
}

type Notification struct {
	ID         int64     `json:"id"`
	Message    string    `json:"message"`
	TargetType string    `json:"target_type"`
	CreatedBy  int64     `json:"created_by"`
	CreatedAt  time.Time `json:"created_at"`
}
