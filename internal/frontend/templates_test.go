package frontend

import "testing"

func TestFormatSigned(t *testing.T) {
	tests := []struct {
		name   string
		format func(*float64) string
		value  *float64
		want   string
	}{
		{"absent", formatSignedKg, nil, ""},
		{"gain", formatSignedKg, ptr(1.5), "+1.5kg"},
		{"loss", formatSignedKg, ptr(-2), "-2.0kg"},
		{"tiny loss has no sign", formatSignedKg, ptr(-0.04), "0.0kg"},
		{"zero", formatSignedKg, ptr(0), "0.0kg"},
		{"rate keeps two decimals", formatSignedRate, ptr(-0.3457), "-0.35kg/week"},
		{"rate gain", formatSignedRate, ptr(0.25), "+0.25kg/week"},
		{"tiny rate has no sign", formatSignedRate, ptr(-0.004), "0.00kg/week"},
		{"absent rate", formatSignedRate, nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.format(tt.value); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}
