package paging_test

import (
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/accesshub/internal/app/system/paging"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name       string
		url        string
		wantLimit  int64
		wantOffset int64
	}{
		{"defaults", "/groups", paging.DefaultLimit, 0},
		{"explicit window", "/groups?limit=10&offset=20", 10, 20},
		{"limit clamped", "/groups?limit=5000", paging.MaxLimit, 0},
		{"zero limit falls back", "/groups?limit=0", paging.DefaultLimit, 0},
		{"negative offset ignored", "/groups?offset=-5", paging.DefaultLimit, 0},
		{"garbage ignored", "/groups?limit=abc&offset=xyz", paging.DefaultLimit, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", tt.url, nil)
			w := paging.Parse(r)
			if w.Limit != tt.wantLimit {
				t.Errorf("Limit = %d, want %d", w.Limit, tt.wantLimit)
			}
			if w.Offset != tt.wantOffset {
				t.Errorf("Offset = %d, want %d", w.Offset, tt.wantOffset)
			}
		})
	}
}
