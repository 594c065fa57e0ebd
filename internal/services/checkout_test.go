package services

import "testing"

func TestTaxKobo(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		taxable int64
		rateBps int
		want    int64
	}{
		{"zero rate", 1000000, 0, 0},
		{"zero taxable", 0, 750, 0},
		{"negative taxable", -500, 750, 0},
		{"vat on round amount", 1000000, 750, 75000},
		{"rounds half up", 9999, 750, 750},
		{"rounds down below half", 100, 33, 0},
		{"full rate", 250000, 10000, 250000},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := taxKobo(tt.taxable, tt.rateBps); got != tt.want {
				t.Fatalf("taxKobo(%d, %d) = %d, want %d", tt.taxable, tt.rateBps, got, tt.want)
			}
		})
	}
}
