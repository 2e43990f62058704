package folio

import "testing"

func TestMoney_SignedString(t *testing.T) {
	tests := []struct {
		m    Money
		want string
	}{
		{USD(1234.5), "+$1,234.50"},
		{USD(0), "-"},
		{USD(-3), "-$3.00"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.m.SignedString(); got != tt.want {
				t.Errorf("SignedString() = %q, want %q", got, tt.want)
			}
		})
	}
}
