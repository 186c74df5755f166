package media

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispersionPath(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"magento.jpg", "/m/a"},
		{"Magento.JPG", "/m/a"},
		{".htaccess", "/_/h"},
		{"a.png", "/a/_"},
		{"x", "/x"},
		{"", ""},
		{"ü.png", "/_/_"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, DispersionPath(tt.in))
		})
	}
}

func TestDispersionPathIsDeterministic(t *testing.T) {
	first := DispersionPath("magento.jpg")
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, DispersionPath("magento.jpg"))
	}
}

func TestCorrectFileName(t *testing.T) {
	assert.Equal(t, "my_photo__1_.jpg", CorrectFileName("My Photo (1).jpg"))
	assert.Equal(t, "magento.jpg", CorrectFileName("magento.jpg"))
	assert.Equal(t, "a-b_c.png", CorrectFileName("A-B_C.PNG"))
}

func TestNewFileName(t *testing.T) {
	existing := map[string]bool{"magento.jpg": true, "magento_1.jpg": true}
	exists := func(name string) (bool, error) { return existing[name], nil }

	got, err := NewFileName("magento.jpg", exists)
	require.NoError(t, err)
	assert.Equal(t, "magento_2.jpg", got)

	got, err = NewFileName("other.jpg", exists)
	require.NoError(t, err)
	assert.Equal(t, "other.jpg", got)

	existing["noext"] = true
	got, err = NewFileName("noext", exists)
	require.NoError(t, err)
	assert.Equal(t, "noext_1", got)
}

func TestNewFileNamePropagatesError(t *testing.T) {
	boom := errors.New("boom")
	_, err := NewFileName("a.jpg", func(string) (bool, error) { return false, boom })
	assert.ErrorIs(t, err, boom)
}
