package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestModelsFor(t *testing.T) {
	tests := []struct {
		name   string
		brand  string
		expect []string
	}{
		{"known brand", "Toyota", []string{"Camry", "Corolla", "RAV4", "Land Cruiser", "Yaris"}},
		{"single model brand", "OMODA", []string{"C5"}},
		{"unknown brand", "DeLorean", nil},
		{"empty brand", "", nil},
		{"case sensitive", "toyota", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expect, ModelsFor(tt.brand))
		})
	}
}

func TestEveryBrandHasModels(t *testing.T) {
	for _, brand := range Brands {
		assert.True(t, HasBrand(brand), "brand %q missing from model table", brand)
		assert.NotEmpty(t, ModelsFor(brand), "brand %q has no models", brand)
	}
}
