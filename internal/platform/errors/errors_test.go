package errors

import (
	stderrs "errors"
	"fmt"
	"net/http"
	"testing"
)

func TestHTTPStatusCode(t *testing.T) {
	tests := map[ErrorCode]int{
		ErrorCodeNotFound:        http.StatusNotFound,
		ErrorCodeInvalidArgument: http.StatusUnprocessableEntity,
		ErrorCodeValidation:      http.StatusBadRequest,
		ErrorCodeJSON:            http.StatusBadRequest,
		ErrorCodeDuplicateKey:    http.StatusConflict,
		ErrorCodeTooManyRequests: http.StatusTooManyRequests,
		ErrorCodeUnavailable:     http.StatusServiceUnavailable,
		ErrorCodeDB:              http.StatusInternalServerError,
		ErrorCodePanic:           http.StatusInternalServerError,
		ErrorCode(999):           http.StatusInternalServerError,
	}
	for code, want := range tests {
		if got := HTTPStatusCode(code); got != want {
			t.Errorf("HTTPStatusCode(%d) = %d, want %d", code, got, want)
		}
	}
}

func TestWrapChain(t *testing.T) {
	cause := stderrs.New("eof")
	err := Wrapf(cause, ErrorCodeJSON, "decode %s", "05-03-2024")
	outer := fmt.Errorf("ingest: %w", err)

	if err.Error() != "decode 05-03-2024: eof" {
		t.Fatalf("Error() = %q", err.Error())
	}
	if !stderrs.Is(outer, cause) || Root(outer) != cause {
		t.Fatal("cause lost")
	}
	if CodeOf(outer) != ErrorCodeJSON || !IsCode(outer, ErrorCodeJSON) {
		t.Fatalf("CodeOf = %d", CodeOf(outer))
	}
	if HTTPStatus(outer) != http.StatusBadRequest {
		t.Fatalf("HTTPStatus = %d", HTTPStatus(outer))
	}
	if CodeOf(cause) != ErrorCodeUnknown || HTTPStatus(nil) != http.StatusInternalServerError {
		t.Fatal("foreign errors are unknown")
	}
}

func TestWithField(t *testing.T) {
	base := InvalidArgf("bad date %q", "31-02-2024")
	named := WithField(base, "sitting_date")

	e, ok := As(named)
	if !ok || e.Field() != "sitting_date" || e.Code() != ErrorCodeInvalidArgument {
		t.Fatalf("got %+v", e)
	}
	if b, _ := As(base); b.Field() != "" {
		t.Fatal("WithField must not mutate its input")
	}
	plain := stderrs.New("x")
	if WithField(plain, "f") != plain {
		t.Fatal("foreign error should pass through")
	}
}

func TestWireFrom(t *testing.T) {
	w := WireFrom(WithField(Wrap(stderrs.New("secret dsn"), ErrorCodeUnavailable, "store down"), "pg"))
	if w.Code != ErrorCodeUnavailable || w.Message != "store down" || w.Field != "pg" {
		t.Fatalf("wire = %+v", w)
	}
	if w := WireFrom(stderrs.New("boom")); w.Code != ErrorCodeUnknown || w.Message != "boom" {
		t.Fatalf("foreign wire = %+v", w)
	}
	if WireFrom(nil) != (Wire{}) {
		t.Fatal("nil wire should be zero")
	}
}

func TestHelpers(t *testing.T) {
	tests := []struct {
		err  error
		code ErrorCode
	}{
		{NotFoundf("sitting %s", "x"), ErrorCodeNotFound},
		{JSONErrf("bad body"), ErrorCodeJSON},
		{PanicErrf("boom"), ErrorCodePanic},
		{Unavailablef("pg"), ErrorCodeUnavailable},
		{New(ErrorCodeConflict, "held"), ErrorCodeConflict},
	}
	for _, tc := range tests {
		if CodeOf(tc.err) != tc.code {
			t.Errorf("%v: code %d, want %d", tc.err, CodeOf(tc.err), tc.code)
		}
	}
	var nilErr *Error
	if nilErr.Error() != "<nil>" {
		t.Fatal("nil *Error should print")
	}
}
