package service

import (
	"context"

	"crm/internal/domain"
	"crm/internal/store"
)

type TaskStore interface {
	ListTasks(ctx context.Context) ([]domain.Task, error)
	ListTasksByEmployee(ctx context.Context, employeeID int64) ([]domain.Task, error)
	CreateTask(ctx context.Context, in store.TaskInsert) (int64, error)
	UpdateTask(ctx context.Context, id int64, p domain.TaskPatch) (bool, error)
}

type TaskService struct {
	Store TaskStore
}

func (s *TaskService) List(ctx context.Context) ([]domain.Task, error) {
	return s.Store.ListTasks(ctx)
}

func (s *TaskService) ListMine(ctx context.Context, employeeID int64) ([]domain.Task, error) {
	return s.Store.ListTasksByEmployee(ctx, employeeID)
}

// Create assigns the task. Admins pick the employee; everyone else gets
// the task assigned to themselves.
func (s *TaskService) Create(ctx context.Context, actorID int64, actorRole domain.Role, in store.TaskInsert) (int64, error) {
	if actorRole != domain.RoleAdmin {
		in.EmployeeID = actorID
	}
	if in.CustomerID <= 0 || in.EmployeeID <= 0 {
		return 0, domain.NewValidationError("Invalid customer_id or employee_id")
	}
	switch in.ServiceType {
	case domain.ServiceForm, domain.ServiceXerox:
	default:
		return 0, domain.NewValidationError("service_type must be form or xerox")
	}
	return s.Store.CreateTask(ctx, in)
}

func (s *TaskService) Update(ctx context.Context, id int64, p domain.TaskPatch) error {
	if id <= 0 {
		return domain.NewValidationError("Invalid task id")
	}
	if p.PaymentStatus != nil && *p.PaymentStatus != domain.PaymentPaid && *p.PaymentStatus != domain.PaymentUnpaid {
		return domain.NewValidationError("payment_status must be paid or unpaid")
	}
	if p.WorkStatus != nil && *p.WorkStatus != domain.WorkPending && *p.WorkStatus != domain.WorkCompleted {
		return domain.NewValidationError("work_status must be pending or completed")
	}
	ok, err := s.Store.UpdateTask(ctx, id, p)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrNotFound
	}
	return nil
}
