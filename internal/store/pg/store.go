package pg

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"crm/internal/domain"
	"crm/internal/store"
)

type Store struct {
	DB *pgxpool.Pool
}

func New(db *pgxpool.Pool) *Store { return &Store{DB: db} }

func (s *Store) Ping(ctx context.Context) error { return s.DB.Ping(ctx) }

// ---- notifications ----

func (s *Store) InsertNotification(ctx context.Context, in store.NotificationInsert) (int64, error) {
	var id int64
	err := s.DB.QueryRow(ctx, `
		INSERT INTO notifications (message, target_type, created_by, created_at)
		VALUES ($1,$2,$3,$4)
		RETURNING id
	`, in.Message, in.TargetType, in.CreatedBy, in.Now).Scan(&id)
	return id, err
}

func (s *Store) ListNotifications(ctx context.Context, limit int) ([]domain.Notification, error) {
	rows, err := s.DB.Query(ctx, `
		SELECT id, message, target_type, created_by, created_at
		FROM notifications ORDER BY id DESC LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Notification, error) {
		var n domain.Notification
		err := row.Scan(&n.ID, &n.Message, &n.TargetType, &n.CreatedBy, &n.CreatedAt)
		return n, err
	})
}

// ---- customers ----

func (s *Store) ListCustomerContacts(ctx context.Context, category string) ([]domain.Recipient, error) {
	rows, err := s.DB.Query(ctx, `
		SELECT phone, COALESCE(type,'')
		FROM customers
		WHERE phone IS NOT NULL AND phone <> ''
		  AND ($1 = '' OR type = $1)
		ORDER BY id
	`, category)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Recipient, error) {
		var r domain.Recipient
		err := row.Scan(&r.Destination, &r.Category)
		return r, err
	})
}

func (s *Store) ListCustomers(ctx context.Context) ([]domain.Customer, error) {
	rows, err := s.DB.Query(ctx, `
		SELECT id, name, COALESCE(email,''), COALESCE(phone,''), COALESCE(type,''), created_at
		FROM customers ORDER BY id DESC
	`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Customer, error) {
		var c domain.Customer
		err := row.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.Type, &c.CreatedAt)
		return c, err
	})
}

func (s *Store) CreateCustomer(ctx context.Context, in store.CustomerInsert) (domain.Customer, error) {
	c := domain.Customer{Name: in.Name, Email: in.Email, Phone: in.Phone, Type: in.Type}
	err := s.DB.QueryRow(ctx, `
		INSERT INTO customers (name, email, phone, type)
		VALUES ($1,$2,$3,$4)
		RETURNING id, created_at
	`, in.Name, nullIfEmpty(in.Email), nullIfEmpty(in.Phone), nullIfEmpty(in.Type)).Scan(&c.ID, &c.CreatedAt)
	return c, err
}

// ---- users ----

func (s *Store) FindUserByEmail(ctx context.Context, email string) (domain.User, bool, error) {
	var u domain.User
	err := s.DB.QueryRow(ctx, `
		SELECT id, name, email, COALESCE(phone,''), COALESCE(address,''), role, password, created_at
		FROM users WHERE email=$1
	`, email).Scan(&u.ID, &u.Name, &u.Email, &u.Phone, &u.Address, &u.Role, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, false, nil
		}
		return domain.User{}, false, err
	}
	return u, true, nil
}

func (s *Store) ListUsers(ctx context.Context) ([]domain.User, error) {
	rows, err := s.DB.Query(ctx, `
		SELECT id, name, email, COALESCE(phone,''), COALESCE(address,''), role, created_at
		FROM users ORDER BY id DESC
	`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.User, error) {
		var u domain.User
		err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Phone, &u.Address, &u.Role, &u.CreatedAt)
		return u, err
	})
}

func (s *Store) CreateUser(ctx context.Context, in store.UserInsert) (int64, error) {
	var id int64
	err := s.DB.QueryRow(ctx, `
		INSERT INTO users (name, email, phone, address, password, role)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING id
	`, in.Name, in.Email, nullIfEmpty(in.Phone), nullIfEmpty(in.Address), in.PasswordHash, string(in.Role)).Scan(&id)
	if isUniqueViolation(err) {
		return 0, domain.ErrDuplicateEmail
	}
	return id, err
}

func (s *Store) UpdateUser(ctx context.Context, in store.UserUpdate) (bool, error) {
	ct, err := s.DB.Exec(ctx, `
		UPDATE users SET
			name     = COALESCE($2, name),
			email    = COALESCE($3, email),
			phone    = COALESCE($4, phone),
			address  = COALESCE($5, address),
			password = COALESCE($6, password)
		WHERE id=$1
	`, in.ID, in.Name, in.Email, in.Phone, in.Address, in.PasswordHash)
	if isUniqueViolation(err) {
		return false, domain.ErrDuplicateEmail
	}
	if err != nil {
		return false, err
	}
	return ct.RowsAffected() > 0, nil
}

// ---- tasks ----

const taskColumns = `
	t.id, t.customer_id, t.employee_id, t.service_type, COALESCE(t.form_service_type,''),
	COALESCE(t.application_id,''), COALESCE(t.application_password,''), COALESCE(t.description,''),
	t.total_amount, t.deduction_amount, t.revenue, COALESCE(t.payment_mode,''),
	t.payment_status, t.work_status, COALESCE(t.screenshot_url,''), t.created_at, t.completed_at,
	COALESCE(c.name,''), COALESCE(c.phone,''), COALESCE(c.email,''), COALESCE(c.type,'')
`

func scanTask(row pgx.CollectableRow) (domain.Task, error) {
	var t domain.Task
	err := row.Scan(&t.ID, &t.CustomerID, &t.EmployeeID, &t.ServiceType, &t.FormServiceType,
		&t.ApplicationID, &t.ApplicationPassword, &t.Description,
		&t.TotalAmount, &t.DeductionAmount, &t.Revenue, &t.PaymentMode,
		&t.PaymentStatus, &t.WorkStatus, &t.ScreenshotURL, &t.CreatedAt, &t.CompletedAt,
		&t.CustomerName, &t.CustomerPhone, &t.CustomerEmail, &t.CustomerType)
	return t, err
}

func (s *Store) ListTasks(ctx context.Context) ([]domain.Task, error) {
	rows, err := s.DB.Query(ctx, `
		SELECT `+taskColumns+`
		FROM tasks t LEFT JOIN customers c ON c.id = t.customer_id
		ORDER BY t.created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, scanTask)
}

func (s *Store) ListTasksByEmployee(ctx context.Context, employeeID int64) ([]domain.Task, error) {
	rows, err := s.DB.Query(ctx, `
		SELECT `+taskColumns+`
		FROM tasks t LEFT JOIN customers c ON c.id = t.customer_id
		WHERE t.employee_id = $1
		ORDER BY t.created_at DESC
	`, employeeID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, scanTask)
}

func (s *Store) CreateTask(ctx context.Context, in store.TaskInsert) (int64, error) {
	var id int64
	err := s.DB.QueryRow(ctx, `
		INSERT INTO tasks (
			customer_id, employee_id, service_type, form_service_type,
			application_id, application_password, description,
			total_amount, deduction_amount, revenue, payment_mode,
			payment_status, work_status
		)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
		RETURNING id
	`, in.CustomerID, in.EmployeeID, in.ServiceType, nullIfEmpty(in.FormServiceType),
		nullIfEmpty(in.ApplicationID), nullIfEmpty(in.ApplicationPassword), nullIfEmpty(in.Description),
		in.TotalAmount, in.DeductionAmount, in.Revenue, nullIfEmpty(in.PaymentMode),
		domain.PaymentUnpaid, domain.WorkPending).Scan(&id)
	return id, err
}

// UpdateTask patches the task and its customer in one transaction. Nil fields
// keep their stored value; completed_at is stamped when work_status becomes completed.
func (s *Store) UpdateTask(ctx context.Context, id int64, p domain.TaskPatch) (bool, error) {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	ct, err := tx.Exec(ctx, `
		UPDATE tasks SET
			application_id       = COALESCE($2, application_id),
			application_password = COALESCE($3, application_password),
			description          = COALESCE($4, description),
			total_amount         = COALESCE($5, total_amount),
			deduction_amount     = COALESCE($6, deduction_amount),
			revenue              = COALESCE($7, revenue),
			payment_status       = COALESCE($8, payment_status),
			payment_mode         = COALESCE($9, payment_mode),
			form_service_type    = COALESCE($10, form_service_type),
			work_status          = COALESCE($11, work_status),
			completed_at = CASE
				WHEN $11::text = 'completed' AND work_status <> 'completed' THEN now()
				ELSE completed_at
			END
		WHERE id=$1
	`, id, p.ApplicationID, p.ApplicationPassword, p.Description,
		p.TotalAmount, p.DeductionAmount, p.Revenue,
		p.PaymentStatus, p.PaymentMode, p.FormServiceType, p.WorkStatus)
	if err != nil {
		return false, err
	}
	if ct.RowsAffected() == 0 {
		return false, nil
	}

	if p.CustomerName != nil || p.CustomerPhone != nil || p.CustomerEmail != nil {
		if _, err := tx.Exec(ctx, `
			UPDATE customers SET
				name  = COALESCE($2, name),
				phone = COALESCE($3, phone),
				email = COALESCE($4, email)
			WHERE id = (SELECT customer_id FROM tasks WHERE id=$1)
		`, id, p.CustomerName, p.CustomerPhone, p.CustomerEmail); err != nil {
			return false, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return false, err
	}
	return true, nil
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
