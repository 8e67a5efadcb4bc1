package pagination

import (
	"testing"

	"recruit-backend/internal/shared/apperr"
)

func TestParse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		page      string
		limit     string
		want      Params
		wantError bool
	}{
		{name: "defaults", want: Params{Page: 1, Limit: 10}},
		{name: "explicit", page: "3", limit: "25", want: Params{Page: 3, Limit: 25}},
		{name: "max limit", page: "1", limit: "100", want: Params{Page: 1, Limit: 100}},
		{name: "zero page", page: "0", wantError: true},
		{name: "limit too high", limit: "101", wantError: true},
		{name: "limit zero", limit: "0", wantError: true},
		{name: "non numeric", page: "abc", wantError: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := Parse(tt.page, tt.limit)
			if tt.wantError {
				if !apperr.Is(err, apperr.KindValidation) {
					t.Fatalf("expected validation error, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			if got != tt.want {
				t.Fatalf("Parse(%q, %q) = %+v, want %+v", tt.page, tt.limit, got, tt.want)
			}
		})
	}
}

func TestTotalPagesAndWindow(t *testing.T) {
	p := Params{Page: 3, Limit: 10}
	if got := p.TotalPages(21); got != 3 {
		t.Fatalf("expected 3 pages, got %d", got)
	}
	if got := p.TotalPages(0); got != 0 {
		t.Fatalf("expected 0 pages, got %d", got)
	}
	start, end := p.Window(21)
	if start != 20 || end != 21 {
		t.Fatalf("unexpected window [%d,%d)", start, end)
	}
	start, end = Params{Page: 5, Limit: 10}.Window(21)
	if start != 21 || end != 21 {
		t.Fatalf("expected empty window past the end, got [%d,%d)", start, end)
	}
}
