package httpserver

import (
	"net/http"

	"crm/internal/domain"
	"crm/internal/service"
	"crm/internal/store"
)

// ---- customers ----

type createCustomerRequest struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"omitempty,email"`
	Phone string `json:"phone"`
	Type  string `json:"type"`
}

func (a *API) handleListCustomers(w http.ResponseWriter, r *http.Request) {
	list, err := a.Customers.List(r.Context())
	if err != nil {
		writeServiceError(w, r, "list customers", err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (a *API) handleCreateCustomer(w http.ResponseWriter, r *http.Request) {
	var req createCustomerRequest
	if !a.decode(w, r, &req) {
		return
	}
	c, err := a.Customers.Create(r.Context(), store.CustomerInsert{
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
		Type:  req.Type,
	})
	if err != nil {
		writeServiceError(w, r, "create customer", err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

// ---- users ----

type createEmployeeRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
	Password string `json:"password" validate:"required,min=6"`
}

type updateEmployeeRequest struct {
	Name     *string `json:"name"`
	Email    *string `json:"email" validate:"omitempty,email"`
	Phone    *string `json:"phone"`
	Address  *string `json:"address"`
	Password *string `json:"password" validate:"omitempty,min=6"`
}

func (a *API) handleListUsers(w http.ResponseWriter, r *http.Request) {
	list, err := a.Users.List(r.Context())
	if err != nil {
		writeServiceError(w, r, "list users", err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (a *API) handleCreateEmployee(w http.ResponseWriter, r *http.Request) {
	var req createEmployeeRequest
	if !a.decode(w, r, &req) {
		return
	}
	id, err := a.Users.CreateEmployee(r.Context(), service.NewEmployee{
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		Address:  req.Address,
		Password: req.Password,
	})
	if err != nil {
		writeServiceError(w, r, "create employee", err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"id": id, "message": "Employee created successfully"})
}

func (a *API) handleUpdateEmployee(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, ErrInvalidID)
		return
	}
	var req updateEmployeeRequest
	if !a.decode(w, r, &req) {
		return
	}
	if err := a.Users.Update(r.Context(), id, req.Name, req.Email, req.Phone, req.Address, req.Password); err != nil {
		writeServiceError(w, r, "update employee", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Employee updated successfully"})
}

// ---- tasks ----

type createTaskRequest struct {
	CustomerID          int64   `json:"customer_id" validate:"required,gt=0"`
	EmployeeID          int64   `json:"employee_id" validate:"gte=0"`
	ServiceType         string  `json:"service_type" validate:"required,oneof=form xerox"`
	FormServiceType     string  `json:"form_service_type"`
	ApplicationID       string  `json:"application_id"`
	ApplicationPassword string  `json:"application_password"`
	Description         string  `json:"description"`
	TotalAmount         float64 `json:"total_amount" validate:"gte=0"`
	DeductionAmount     float64 `json:"deduction_amount" validate:"gte=0"`
	Revenue             float64 `json:"revenue"`
	PaymentMode         string  `json:"payment_mode"`
}

type updateTaskRequest struct {
	ApplicationID       *string  `json:"application_id"`
	ApplicationPassword *string  `json:"application_password"`
	Description         *string  `json:"description"`
	TotalAmount         *float64 `json:"total_amount" validate:"omitempty,gte=0"`
	DeductionAmount     *float64 `json:"deduction_amount" validate:"omitempty,gte=0"`
	Revenue             *float64 `json:"revenue"`
	PaymentStatus       *string  `json:"payment_status" validate:"omitempty,oneof=paid unpaid"`
	PaymentMode         *string  `json:"payment_mode"`
	FormServiceType     *string  `json:"form_service_type"`
	WorkStatus          *string  `json:"work_status" validate:"omitempty,oneof=pending completed"`

	CustomerName  *string `json:"customer_name"`
	CustomerPhone *string `json:"customer_phone"`
	CustomerEmail *string `json:"customer_email" validate:"omitempty,email"`
}

func (a *API) handleListTasks(w http.ResponseWriter, r *http.Request) {
	list, err := a.Tasks.List(r.Context())
	if err != nil {
		writeServiceError(w, r, "list tasks", err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (a *API) handleMyTasks(w http.ResponseWriter, r *http.Request) {
	claims, _ := ClaimsFrom(r.Context())
	list, err := a.Tasks.ListMine(r.Context(), claims.UserID)
	if err != nil {
		writeServiceError(w, r, "list my tasks", err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (a *API) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	var req createTaskRequest
	if !a.decode(w, r, &req) {
		return
	}
	claims, _ := ClaimsFrom(r.Context())
	id, err := a.Tasks.Create(r.Context(), claims.UserID, claims.Role, store.TaskInsert{
		CustomerID:          req.CustomerID,
		EmployeeID:          req.EmployeeID,
		ServiceType:         req.ServiceType,
		FormServiceType:     req.FormServiceType,
		ApplicationID:       req.ApplicationID,
		ApplicationPassword: req.ApplicationPassword,
		Description:         req.Description,
		TotalAmount:         req.TotalAmount,
		DeductionAmount:     req.DeductionAmount,
		Revenue:             req.Revenue,
		PaymentMode:         req.PaymentMode,
	})
	if err != nil {
		writeServiceError(w, r, "create task", err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"id": id, "message": "Task created"})
}

func (a *API) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, ErrInvalidID)
		return
	}
	var req updateTaskRequest
	if !a.decode(w, r, &req) {
		return
	}
	err := a.Tasks.Update(r.Context(), id, domain.TaskPatch{
		ApplicationID:       req.ApplicationID,
		ApplicationPassword: req.ApplicationPassword,
		Description:         req.Description,
		TotalAmount:         req.TotalAmount,
		DeductionAmount:     req.DeductionAmount,
		Revenue:             req.Revenue,
		PaymentStatus:       req.PaymentStatus,
		PaymentMode:         req.PaymentMode,
		FormServiceType:     req.FormServiceType,
		WorkStatus:          req.WorkStatus,
		CustomerName:        req.CustomerName,
		CustomerPhone:       req.CustomerPhone,
		CustomerEmail:       req.CustomerEmail,
	})
	if err != nil {
		writeServiceError(w, r, "update task", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Task updated"})
}
