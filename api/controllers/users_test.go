package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	usersvc "github.com/angelmondragon/libraria-backend/internal/users"
	pkgerrors "github.com/angelmondragon/libraria-backend/pkg/errors"
)

type stubUserService struct {
	create func(ctx context.Context, input usersvc.CreateUserInput) (*usersvc.UserView, error)
	adjust func(ctx context.Context, id int64, input usersvc.AdjustBorrowsInput) (*usersvc.UserView, error)
	stats  func(ctx context.Context) (*usersvc.StatsView, error)
}

func (s stubUserService) Create(ctx context.Context, input usersvc.CreateUserInput) (*usersvc.UserView, error) {
	return s.create(ctx, input)
}

func (s stubUserService) GetByID(context.Context, int64) (*usersvc.UserView, error) {
	return &usersvc.UserView{ID: 1}, nil
}

func (s stubUserService) Update(_ context.Context, id int64, _ usersvc.UpdateUserInput) (*usersvc.UserView, error) {
	return &usersvc.UserView{ID: id}, nil
}

func (s stubUserService) AdjustBorrows(ctx context.Context, id int64, input usersvc.AdjustBorrowsInput) (*usersvc.UserView, error) {
	return s.adjust(ctx, id, input)
}

func (s stubUserService) MostActive(context.Context) (*usersvc.ActiveUsersView, error) {
	return &usersvc.ActiveUsersView{Users: []usersvc.UserView{}, Total: 0}, nil
}

func (s stubUserService) Stats(ctx context.Context) (*usersvc.StatsView, error) {
	return s.stats(ctx)
}

func TestCreateUserCreated(t *testing.T) {
	svc := stubUserService{
		create: func(_ context.Context, input usersvc.CreateUserInput) (*usersvc.UserView, error) {
			if input.Email != "ada@example.edu" {
				t.Fatalf("unexpected email %q", input.Email)
			}
			return &usersvc.UserView{ID: 12, Name: input.Name, Email: input.Email, Role: "student"}, nil
		},
	}
	handler := CreateUser(svc, testHandlerLogger())

	body := `{"name":"Ada","email":"ada@example.edu"}`
	req := httptest.NewRequest(http.MethodPost, "/api/users", bytes.NewReader([]byte(body)))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d", rec.Code)
	}
	var view usersvc.UserView
	if err := json.NewDecoder(rec.Body).Decode(&view); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if view.Role != "student" {
		t.Fatalf("expected default role got %q", view.Role)
	}
}

func TestCreateUserRejectsBadEmail(t *testing.T) {
	handler := CreateUser(stubUserService{}, testHandlerLogger())

	req := httptest.NewRequest(http.MethodPost, "/api/users", bytes.NewReader([]byte(`{"name":"Ada","email":"not-an-email"}`)))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestAdjustUserBorrowsBelowZero(t *testing.T) {
	svc := stubUserService{
		adjust: func(context.Context, int64, usersvc.AdjustBorrowsInput) (*usersvc.UserView, error) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "User has no open borrows")
		},
	}
	handler := AdjustUserBorrows(svc, testHandlerLogger())

	req := httptest.NewRequest(http.MethodPatch, "/api/users/12/borrows", bytes.NewReader([]byte(`{"operation":"decrement"}`)))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, withPathParam(req, "id", "12"))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
	if detail := decodeDetail(t, rec); detail != "User has no open borrows" {
		t.Fatalf("unexpected detail %q", detail)
	}
}

func TestUserStatsOK(t *testing.T) {
	svc := stubUserService{
		stats: func(context.Context) (*usersvc.StatsView, error) {
			return &usersvc.StatsView{TotalUsers: 8, ActiveUsers: 3}, nil
		},
	}
	handler := UserStats(svc, testHandlerLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/users/stats", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	var view usersvc.StatsView
	if err := json.NewDecoder(rec.Body).Decode(&view); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if view.TotalUsers != 8 || view.ActiveUsers != 3 {
		t.Fatalf("unexpected stats %+v", view)
	}
}
