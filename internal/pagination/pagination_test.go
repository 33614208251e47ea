package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
		errMsg  string
	}{
		{name: "valid", cfg: Config{Page: 1, PageSize: 10}},
		{name: "zero size", cfg: Config{Page: 1, PageSize: 0}, wantErr: true, errMsg: "positive"},
		{name: "negative size", cfg: Config{Page: 1, PageSize: -4}, wantErr: true, errMsg: "positive"},
		{name: "page zero", cfg: Config{Page: 0, PageSize: 4}, wantErr: true, errMsg: "at least 1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestTotalPages(t *testing.T) {
	assert.Equal(t, 0, TotalPages(0, 4))
	assert.Equal(t, 1, TotalPages(4, 4))
	assert.Equal(t, 3, TotalPages(10, 4))
	assert.Equal(t, 0, TotalPages(10, 0))
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 1, Clamp(0, 10, 4))
	assert.Equal(t, 3, Clamp(9, 10, 4))
	assert.Equal(t, 2, Clamp(2, 10, 4))
	assert.Equal(t, 1, Clamp(5, 0, 4), "empty datasets still have page 1")
}

func TestApply(t *testing.T) {
	arr := []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}

	tests := []struct {
		name string
		cfg  Config
		want []int
	}{
		{name: "first page", cfg: Config{Page: 1, PageSize: 4}, want: []int{1, 2, 3, 4}},
		{name: "middle page", cfg: Config{Page: 2, PageSize: 4}, want: []int{5, 6, 7, 8}},
		{name: "short last page", cfg: Config{Page: 3, PageSize: 4}, want: []int{9, 10}},
		{name: "past the end", cfg: Config{Page: 4, PageSize: 4}, want: []int{}},
		{name: "size larger than data", cfg: Config{Page: 1, PageSize: 50}, want: arr},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Apply(tt.cfg, arr))
		})
	}
}

func TestPagesCoverDataset(t *testing.T) {
	for n := 0; n <= 23; n++ {
		data := make([]int, n)
		for size := 1; size <= 7; size++ {
			sum := 0
			pages := TotalPages(n, size)
			for p := 1; p <= pages; p++ {
				sum += len(Apply(Config{Page: p, PageSize: size}, data))
			}
			assert.Equal(t, n, sum, "n=%d size=%d", n, size)
		}
	}
}
