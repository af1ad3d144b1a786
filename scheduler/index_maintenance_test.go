package scheduler

import "testing"

func TestOptimalLists(t *testing.T) {
	tests := []struct {
		name       string
		chunkCount int
		want       int
	}{
		{"empty table", 0, 100},
		{"below minimum", 2500, 100},
		{"at minimum boundary", 10000, 100},
		{"above minimum", 40000, 200},
		{"large corpus", 1000000, 1000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := optimalLists(tt.chunkCount); got != tt.want {
				t.Errorf("optimalLists(%d) = %d, want %d", tt.chunkCount, got, tt.want)
			}
		})
	}
}
