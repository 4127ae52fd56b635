package bind

import (
	"net/http/httptest"
	"testing"

	perr "hansard/internal/platform/errors"
)

type listQuery struct {
	From  string `query:"from"  json:"from"  validate:"omitempty,datetime=2006-01-02"`
	Limit int    `query:"limit" json:"limit" validate:"omitempty,min=1,max=500"`
	Full  bool   `query:"full"  json:"full"`
	Skip  string
}

func TestParseQuery(t *testing.T) {
	r := httptest.NewRequest("GET", "/x?from=2024-03-05&limit=20&full=true&Skip=no", nil)
	got, err := ParseQuery[listQuery](r)
	if err != nil {
		t.Fatalf("ParseQuery: %v", err)
	}
	if got.From != "2024-03-05" || got.Limit != 20 || !got.Full || got.Skip != "" {
		t.Fatalf("got %+v", got)
	}
}

func TestParseQuery_Errors(t *testing.T) {
	tests := []struct {
		url   string
		field string
	}{
		{"/x?limit=abc", "limit"},
		{"/x?limit=-1", "limit"},
		{"/x?limit=501", "limit"},
		{"/x?from=05-03-2024", "from"},
	}
	for _, tc := range tests {
		_, err := ParseQuery[listQuery](httptest.NewRequest("GET", tc.url, nil))
		if !perr.IsCode(err, perr.ErrorCodeValidation) {
			t.Fatalf("%s: err = %v", tc.url, err)
		}
		if e, ok := perr.As(err); !ok || e.Field() != tc.field {
			t.Fatalf("%s: field = %v", tc.url, err)
		}
	}
}

func TestParseQuery_Message(t *testing.T) {
	_, err := ParseQuery[listQuery](httptest.NewRequest("GET", "/x?limit=900", nil))
	if err == nil || err.Error() != "limit must be at most 500" {
		t.Fatalf("err = %v", err)
	}
}
