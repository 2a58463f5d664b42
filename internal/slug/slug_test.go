package slug

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMake(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Hello World", "hello-world"},
		{"  Retail & Health  ", "retail-and-health"},
		{"Café Déjà Vu", "cafe-deja-vu"},
		{"It's 2024/Q3", "its-2024-q3"},
		{"---", ""},
		{"multi   space", "multi-space"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Make(tt.in), tt.in)
	}
}
