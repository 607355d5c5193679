package service

import (
	"testing"
	"time"
)

func TestCheckExpiryWindow(t *testing.T) {
	cases := []struct {
		name    string
		expires time.Time
		wantMsg string
	}{
		{"past", time.Now().Add(-time.Hour), "Tugash vaqti noto'g'ri!"},
		{"now", time.Now(), "Tugash vaqti noto'g'ri!"},
		{"tomorrow", time.Now().Add(24 * time.Hour), ""},
		{"just inside a week", time.Now().Add(7*24*time.Hour - time.Minute), ""},
		{"beyond a week", time.Now().Add(8 * 24 * time.Hour), "Muddat 1 haftadan oshmasligi kerak!"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := checkExpiry(tc.expires)
			if tc.wantMsg == "" {
				if err != nil {
					t.Fatalf("expected accept, got %v", err)
				}
				return
			}
			expErr, ok := err.(*ExpiryError)
			if !ok {
				t.Fatalf("expected ExpiryError, got %v", err)
			}
			if expErr.Error() != tc.wantMsg {
				t.Errorf("message = %q, want %q", expErr.Error(), tc.wantMsg)
			}
		})
	}
}
