package places

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewNominatimGeocoder_サーバー未指定でも既定値で初期化される(t *testing.T) {
	assert.NotNil(t, NewNominatimGeocoder(""))
}

func TestNewNominatimGeocoder_サーバー指定で初期化される(t *testing.T) {
	assert.NotNil(t, NewNominatimGeocoder("https://nominatim.example.com"))
}
