package entity

import "testing"

func TestCanStatus_FullCount(t *testing.T) {
	tests := []struct {
		name string
		in   CanStatus
		want int
	}{
		{name: "all empty", in: CanStatus{}, want: 0},
		{name: "one full", in: CanStatus{Can2Full: true}, want: 1},
		{name: "all full", in: CanStatus{Can1Full: true, Can2Full: true, Can3Full: true}, want: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.in.FullCount(); got != tt.want {
				t.Fatalf("FullCount() = %d, want %d", got, tt.want)
			}
		})
	}
}
