package swallow

import (
	"slices"
	"testing"
)

func TestDiffList(t *testing.T) {
	tests := []struct {
		name     string
		tracked  []string
		fresh    []string
		wantNew  []string
		wantList []string
	}{
		{
			name:     "Append and remove",
			tracked:  []string{"A", "B", "C"},
			fresh:    []string{"B", "C", "D"},
			wantNew:  []string{"D"},
			wantList: []string{"B", "C", "D"},
		},
		{
			name:     "Empty to full",
			tracked:  nil,
			fresh:    []string{"A", "B"},
			wantNew:  []string{"A", "B"},
			wantList: []string{"A", "B"},
		},
		{
			name:     "Everything closed",
			tracked:  []string{"A", "B"},
			fresh:    []string{},
			wantNew:  nil,
			wantList: []string{},
		},
		{
			name:     "Reordered",
			tracked:  []string{"A", "B", "C"},
			fresh:    []string{"C", "A", "B"},
			wantNew:  nil,
			wantList: []string{"C", "A", "B"},
		},
		{
			name:     "New in the middle",
			tracked:  []string{"A", "C"},
			fresh:    []string{"A", "B", "C", "D"},
			wantNew:  []string{"B", "D"},
			wantList: []string{"A", "B", "C", "D"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			list := slices.Clone(tt.tracked)
			var got []string
			diffList(&list, tt.fresh, func(s string) {
				got = append(got, s)
			})
			if !slices.Equal(got, tt.wantNew) {
				t.Errorf("new = %v, want %v", got, tt.wantNew)
			}
			if !slices.Equal(list, tt.wantList) {
				t.Errorf("tracked = %v, want %v", list, tt.wantList)
			}
		})
	}
}

func TestDiffListIdempotent(t *testing.T) {
	list := []int{1, 2, 3}
	fresh := []int{2, 3, 4, 5}

	calls := 0
	diffList(&list, fresh, func(int) { calls++ })
	if calls != 2 {
		t.Fatalf("first pass calls = %d, want 2", calls)
	}

	before := slices.Clone(list)
	calls = 0
	diffList(&list, fresh, func(int) { calls++ })
	if calls != 0 {
		t.Errorf("second pass calls = %d, want 0", calls)
	}
	if !slices.Equal(list, before) {
		t.Errorf("second pass changed list: %v -> %v", before, list)
	}
}

func BenchmarkDiffListStablePrefix(b *testing.B) {
	fresh := make([]int, 200)
	for i := range fresh {
		fresh[i] = i
	}
	for i := 0; i < b.N; i++ {
		list := slices.Clone(fresh[:199])
		diffList(&list, fresh, func(int) {})
	}
}
