package media

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImageContentJSON(t *testing.T) {
	content := NewImageContent("magento.jpg", "IMAGE/JPEG", []byte("hello"))
	data, err := json.Marshal(content)
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"magento.jpg","type":"image/jpeg","base64_encoded_data":"aGVsbG8="}`, string(data))

	var decoded ImageContent
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, *content, decoded)
}

func TestImageContentFromDataURL(t *testing.T) {
	content := NewImageContentFromBase64("a.png", "", "data:image/png;base64,aGVsbG8=")
	assert.Equal(t, "image/png", content.Type())
	assert.Equal(t, "aGVsbG8=", content.Base64EncodedData())
	assert.Equal(t, "data:image/png;base64,aGVsbG8=", content.DataURL())
}

func TestImageContentValidate(t *testing.T) {
	tests := []struct {
		name    string
		content *ImageContent
		field   string
	}{
		{"valid", NewImageContent("magento.jpg", "image/jpeg", []byte{1, 2, 3}), ""},
		{"empty data", NewImageContentFromBase64("a.jpg", "image/jpeg", ""), "base64_encoded_data"},
		{"bad base64", NewImageContentFromBase64("a.jpg", "image/jpeg", "@@@"), "base64_encoded_data"},
		{"bad type", NewImageContent("a.pdf", "application/pdf", []byte{1}), "type"},
		{"slash in name", NewImageContent("a/b.jpg", "image/jpeg", []byte{1}), "name"},
		{"traversal in name", NewImageContent("..jpg", "image/png", []byte{1}), "name"},
		{"empty name", NewImageContent("", "image/png", []byte{1}), "name"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.content.Validate()
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.field, ve.Field)
			assert.ErrorIs(t, err, ErrInvalidContent)
		})
	}
}
