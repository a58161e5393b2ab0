package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"

	"crm/internal/domain"
	"crm/internal/service"
)

type API struct {
	Notifications *service.NotificationService
	Auth          *service.AuthService
	Customers     *service.CustomerService
	Tasks         *service.TaskService
	Users         *service.UserService
	Tokens        TokenValidator

	validate *validator.Validate
}

func (a *API) Register(r *mux.Router) {
	a.validate = newValidator()

	authed := Auth(a.Tokens)
	protect := func(h http.HandlerFunc) http.Handler { return authed(h) }
	admin := func(h http.HandlerFunc) http.Handler { return authed(RequireRole(domain.RoleAdmin)(h)) }

	r.HandleFunc("/auth/login", a.handleLogin).Methods(http.MethodPost)

	r.Handle("/notifications", admin(a.handleBroadcast)).Methods(http.MethodPost)
	r.Handle("/notifications", admin(a.handleListNotifications)).Methods(http.MethodGet)
	r.Handle("/notifications/{id}", admin(a.handleGetBroadcast)).Methods(http.MethodGet)

	r.Handle("/customers", protect(a.handleListCustomers)).Methods(http.MethodGet)
	r.Handle("/customers", protect(a.handleCreateCustomer)).Methods(http.MethodPost)

	r.Handle("/users", admin(a.handleListUsers)).Methods(http.MethodGet)
	r.Handle("/users", admin(a.handleCreateEmployee)).Methods(http.MethodPost)
	r.Handle("/users/{id:[0-9]+}", admin(a.handleUpdateEmployee)).Methods(http.MethodPut)

	r.Handle("/tasks", protect(a.handleListTasks)).Methods(http.MethodGet)
	r.Handle("/tasks/my", protect(a.handleMyTasks)).Methods(http.MethodGet)
	r.Handle("/tasks", protect(a.handleCreateTask)).Methods(http.MethodPost)
	r.Handle("/tasks/{id:[0-9]+}", protect(a.handleUpdateTask)).Methods(http.MethodPut)
}

// newValidator reports json field names in validation errors.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// decode reads a JSON body into dst and validates it. On failure the
// response has already been written.
func (a *API) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := decodeJSON(r, dst); err != nil {
		writeError(w, http.StatusBadRequest, ErrInvalidJSON)
		return false
	}
	if err := a.validate.Struct(dst); err != nil {
		writeError(w, http.StatusBadRequest, validationMessage(err))
		return false
	}
	return true
}

func decodeJSON(r *http.Request, dst any) error {
	return json.NewDecoder(http.MaxBytesReader(nil, r.Body, 1<<20)).Decode(dst)
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "invalid request"
	}
	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "email":
		return fe.Field() + " must be a valid email"
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}

func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// ---- auth ----

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Token string      `json:"token"`
	User  domain.User `json:"user"`
}

func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !a.decode(w, r, &req) {
		return
	}
	tok, u, err := a.Auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, r, "login", err)
		return
	}
	writeJSON(w, http.StatusOK, loginResponse{Token: tok, User: u})
}
