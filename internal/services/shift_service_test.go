package services

import "testing"

func TestComputeVariance(t *testing.T) {
	tests := []struct {
		name   string
		system MethodTotals
		manual ManualCounts
		want   VarianceResult
	}{
		{
			name:   "drawer short on cash",
			system: MethodTotals{Cash: 50, QR: 120, Bank: 0},
			manual: ManualCounts{Cash: 40, QR: 120, Bank: 0},
			want:   VarianceResult{Cash: 10, QR: 0, Bank: 0, Total: 10},
		},
		{
			name:   "drawer over on cash",
			system: MethodTotals{Cash: 100, QR: 0, Bank: 0},
			manual: ManualCounts{Cash: 105.50, QR: 0, Bank: 0},
			want:   VarianceResult{Cash: -5.50, QR: 0, Bank: 0, Total: -5.50},
		},
		{
			name:   "balanced drawer",
			system: MethodTotals{Cash: 250, QR: 80, Bank: 30},
			manual: ManualCounts{Cash: 250, QR: 80, Bank: 30},
			want:   VarianceResult{},
		},
		{
			name:   "opposite variances cancel in total",
			system: MethodTotals{Cash: 100, QR: 50, Bank: 0},
			manual: ManualCounts{Cash: 90, QR: 60, Bank: 0},
			want:   VarianceResult{Cash: 10, QR: -10, Bank: 0, Total: 0},
		},
		{
			name:   "empty shift with counted cash",
			system: MethodTotals{},
			manual: ManualCounts{Cash: 20},
			want:   VarianceResult{Cash: -20, Total: -20},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeVariance(tt.system, tt.manual)
			if got != tt.want {
				t.Errorf("ComputeVariance(%+v, %+v) = %+v, want %+v", tt.system, tt.manual, got, tt.want)
			}
		})
	}
}
