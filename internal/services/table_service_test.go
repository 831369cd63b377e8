package services

import (
	"sort"
	"testing"
)

func TestNaturalLess(t *testing.T) {
	names := []string{"Masa 10", "Bahçe 2", "Masa 2", "Masa 1", "Bahçe 10", "Teras"}
	sort.SliceStable(names, func(i, j int) bool {
		return naturalLess(names[i], names[j])
	})
	want := []string{"Bahçe 2", "Bahçe 10", "Masa 1", "Masa 2", "Masa 10", "Teras"}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("sorted = %v, want %v", names, want)
		}
	}
}

func TestNaturalLessEdgeCases(t *testing.T) {
	tests := []struct {
		a, b string
		want bool
	}{
		{"Masa 2", "Masa 10", true},
		{"Masa 10", "Masa 2", false},
		{"Masa 2", "Masa 2", false},
		{"Masa", "Masa 1", true},
		{"A9", "A10", true},
		{"", "A", true},
		{"A", "", false},
		{"Şadırvan 2", "Şadırvan 10", true},
		{"Çay Bahçesi 3", "Çay Bahçesi 21", true},
		{"Salon", "Şömine", true},
	}
	for _, tt := range tests {
		if got := naturalLess(tt.a, tt.b); got != tt.want {
			t.Errorf("naturalLess(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}
