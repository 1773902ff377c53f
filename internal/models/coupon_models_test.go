package models

import "testing"

func TestCouponRemainingUses(t *testing.T) {
	tests := []struct {
		name    string
		maxUses int
		uses    int
		want    int
	}{
		{"fresh coupon", 10, 0, 10},
		{"partially used", 10, 4, 6},
		{"fully used", 10, 10, 0},
		{"over cap clamps to zero", 10, 12, 0},
		{"single use", 1, 0, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Coupon{MaxUses: tt.maxUses, Uses: tt.uses}
			if got := c.RemainingUses(); got != tt.want {
				t.Errorf("RemainingUses() with max %d uses %d = %d, want %d",
					tt.maxUses, tt.uses, got, tt.want)
			}
		})
	}
}
