package handler

import (
	"net/http"
	"testing"

	"gorm.io/gorm"

	"github.com/sgyeong97/gbti-calendar-sub000/internal/recur"
)

func TestParseMinuteOfDay(t *testing.T) {
	cases := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"00:00", 0, false},
		{"09:30", 9*60 + 30, false},
		{"23:59", 23*60 + 59, false},
		{"24:00", 0, true},
		{"12:60", 0, true},
		{"9:30", 0, true},
		{"abcd", 0, true},
		{"", 0, true},
	}

	for _, tc := range cases {
		got, err := parseMinuteOfDay(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("%q: expected error", tc.in)
			}
			continue
		}
		if err != nil {
			t.Fatalf("%q: unexpected error: %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("%q: expected %d, got %d", tc.in, tc.want, got)
		}
	}
}

func TestHttpError_StatusMapping(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{recur.ErrMalformedIdentifier, http.StatusBadRequest},
		{recur.ErrInvalidTimeRange, http.StatusBadRequest},
		{recur.ErrSeriesNotFound, http.StatusNotFound},
		{recur.ErrConcurrentModification, http.StatusConflict},
		{recur.ErrPartialWrite, http.StatusConflict},
		{gorm.ErrRecordNotFound, http.StatusNotFound},
	}

	for _, tc := range cases {
		he := httpError(tc.err)
		if he.Code != tc.code {
			t.Fatalf("%v: expected status %d, got %d", tc.err, tc.code, he.Code)
		}
	}
}
