package vectorstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a    []float32
		b    []float32
		want float64
	}{
		{
			name: "same vector is 1",
			a:    []float32{1, 2, 3},
			b:    []float32{1, 2, 3},
			want: 1,
		},
		{
			name: "opposite vector is -1",
			a:    []float32{1, 2, 3},
			b:    []float32{-1, -2, -3},
			want: -1,
		},
		{
			name: "orthogonal vectors are 0",
			a:    []float32{1, 0},
			b:    []float32{0, 1},
			want: 0,
		},
		{
			name: "zero vector is 0 without division by zero",
			a:    []float32{1, 2, 3},
			b:    []float32{0, 0, 0},
			want: 0,
		},
		{
			name: "both zero vectors are 0",
			a:    []float32{0, 0},
			b:    []float32{0, 0},
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CosineSimilarity(tt.a, tt.b)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}
