package pagination

import "testing"

func TestNew(t *testing.T) {
	tests := []struct {
		page, size int
		want       Params
	}{
		{0, 10, Params{Page: 0, Size: 10, Offset: 0}},
		{2, 20, Params{Page: 2, Size: 20, Offset: 40}},
		{-1, 0, Params{Page: 0, Size: DefaultSize, Offset: 0}},
		{1, 1000, Params{Page: 1, Size: MaxSize, Offset: MaxSize}},
	}
	for _, tt := range tests {
		if got := New(tt.page, tt.size); got != tt.want {
			t.Errorf("New(%d, %d) = %+v, want %+v", tt.page, tt.size, got, tt.want)
		}
	}
}

func TestSlice(t *testing.T) {
	items := []int{1, 2, 3, 4, 5, 6, 7}

	p := Slice(items, New(0, 3))
	if len(p.Content) != 3 || p.Content[0] != 1 || !p.First || p.Last || p.TotalPages != 3 || p.TotalElements != 7 {
		t.Errorf("first page = %+v", p)
	}

	p = Slice(items, New(2, 3))
	if len(p.Content) != 1 || p.Content[0] != 7 || p.First || !p.Last {
		t.Errorf("last page = %+v", p)
	}

	p = Slice(items, New(9, 3))
	if len(p.Content) != 0 || p.Content == nil {
		t.Errorf("out of range page = %+v", p)
	}

	p = Slice([]int{}, New(0, 3))
	if !p.First || !p.Last || p.TotalPages != 0 {
		t.Errorf("empty page = %+v", p)
	}
}
