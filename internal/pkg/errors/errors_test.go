package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestAppError_Error(t *testing.T) {
	plain := New("ISSUE_NOT_FOUND", "issue not found", http.StatusNotFound)
	if got := plain.Error(); got != "ISSUE_NOT_FOUND: issue not found" {
		t.Errorf("Error() = %q", got)
	}

	wrapped := Wrap(fmt.Errorf("db error"), "DB_ERROR", "database failure", http.StatusInternalServerError)
	if got := wrapped.Error(); got != "DB_ERROR: database failure: db error" {
		t.Errorf("Error() = %q", got)
	}
}

func TestAppError_Unwrap(t *testing.T) {
	inner := fmt.Errorf("inner error")
	if !errors.Is(Wrap(inner, "CODE", "msg", 500), inner) {
		t.Error("errors.Is should match the wrapped cause")
	}
}

func TestIsAppError(t *testing.T) {
	appErr := NotFound("NOT_FOUND", "resource not found")
	wrapped := fmt.Errorf("handler: %w", appErr)

	got, ok := IsAppError(wrapped)
	if !ok {
		t.Fatal("IsAppError should find the AppError through wrapping")
	}
	if got.Code != "NOT_FOUND" {
		t.Errorf("Code = %q", got.Code)
	}

	if _, ok := IsAppError(fmt.Errorf("plain")); ok {
		t.Error("IsAppError should reject plain errors")
	}
}

func TestStatusConstructors(t *testing.T) {
	for want, err := range map[int]*AppError{
		http.StatusNotFound:            NotFound("NF", "not found"),
		http.StatusBadRequest:          BadRequest("BR", "bad request"),
		http.StatusUnauthorized:        Unauthorized("UA", "unauthorized"),
		http.StatusForbidden:           Forbidden("FB", "forbidden"),
		http.StatusConflict:            Conflict("CF", "conflict"),
		http.StatusInternalServerError: Internal("IE", "internal"),
	} {
		if err.HTTPStatus != want {
			t.Errorf("%s: HTTPStatus = %d, want %d", err.Code, err.HTTPStatus, want)
		}
	}
}

func TestWithParams(t *testing.T) {
	err := BadRequest("BR", "bad").WithParams(Params{"field": "title"})
	if err.Params["field"] != "title" {
		t.Errorf("Params = %v", err.Params)
	}
	if got := BadRequest("BR", "bad").WithParams(nil); got.Params != nil {
		t.Errorf("empty params should stay nil, got %v", got.Params)
	}
}

func TestDomainConstructors(t *testing.T) {
	if err := ErrIssueNotFoundf("i-1"); err.HTTPStatus != http.StatusNotFound || err.Params["issue_id"] != "i-1" {
		t.Errorf("ErrIssueNotFoundf mismatch: %+v", err)
	}
	if err := ErrMachineNotFoundf("m-1"); err.Code != CodeMachineNotFound {
		t.Errorf("ErrMachineNotFoundf code = %q", err.Code)
	}
	if err := ErrInvalidTransitionf("closed", "new"); err.Code != CodeInvalidTransition || err.Params["from"] != "closed" {
		t.Errorf("ErrInvalidTransitionf mismatch: %+v", err)
	}
	if err := ErrOrgPermDeniedf("admin"); err.HTTPStatus != http.StatusForbidden {
		t.Errorf("ErrOrgPermDeniedf status = %d", err.HTTPStatus)
	}
}
