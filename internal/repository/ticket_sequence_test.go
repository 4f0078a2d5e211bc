package repository

import "testing"

func TestFormatTicketKey(t *testing.T) {
	tests := []struct {
		year int
		n    int64
		want string
	}{
		{2026, 1, "2026-00001"},
		{2026, 42, "2026-00042"},
		{2026, 99999, "2026-99999"},
		// Beyond five digits the key widens rather than wrapping.
		{2026, 123456, "2026-123456"},
	}
	for _, tt := range tests {
		if got := FormatTicketKey(tt.year, tt.n); got != tt.want {
			t.Errorf("FormatTicketKey(%d, %d) = %q, want %q", tt.year, tt.n, got, tt.want)
		}
	}
}
