package media

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateFilePath(t *testing.T) {
	valid := []string{"magento.jpg", "/magento.jpg", "m/a/magento.jpg", "magento..jpg", "..hidden.jpg"}
	for _, p := range valid {
		assert.NoError(t, ValidateFilePath(p), p)
	}
	invalidPaths := []string{"", "  ", "../../invalidFile.xyz", `..\invalidFile.xyz`, "a/..", "a/../b", "..", "a\x00.jpg", ".", "./tmp/a.jpg", "tmp/.", `a\.\b.jpg`}
	for _, p := range invalidPaths {
		err := ValidateFilePath(p)
		assert.ErrorIs(t, err, ErrInvalidPath, p)
		assert.True(t, IsValidation(err), p)
	}
}

func TestValidateEntityTypeCode(t *testing.T) {
	assert.NoError(t, ValidateEntityTypeCode("customer_address"))
	assert.Error(t, ValidateEntityTypeCode("Customer"))
	assert.Error(t, ValidateEntityTypeCode("customer/tmp"))
	assert.Error(t, ValidateEntityTypeCode(""))
}

func TestValidatorExtensionAllowList(t *testing.T) {
	v := NewValidator(Limits{AllowedExtensions: []string{".JPG", "png", " "}})
	assert.NoError(t, v.ValidateExtension("a.jpg"))
	assert.NoError(t, v.ValidateExtension("A.PNG"))
	assert.ErrorIs(t, v.ValidateExtension("a.gif"), ErrExtensionNotAllowed)
	assert.ErrorIs(t, v.ValidateExtension("noext"), ErrExtensionNotAllowed)

	open := NewValidator(Limits{})
	assert.NoError(t, open.ValidateExtension("anything.xyz"))
}

func TestValidatorImageDimensions(t *testing.T) {
	v := NewValidator(Limits{MaxImageWidth: 10, MaxImageHeight: 10})
	assert.NoError(t, v.ValidateImage("ok.jpg", bytes.NewReader(jpegFixture(t, 10, 10))))
	assert.ErrorIs(t, v.ValidateImage("tall.jpg", bytes.NewReader(jpegFixture(t, 2, 11))), ErrImageTooLarge)
	assert.ErrorIs(t, v.ValidateImage("broken.png", bytes.NewReader([]byte("nope"))), ErrInvalidImage)
	assert.NoError(t, v.ValidateImage("notes.txt", bytes.NewReader([]byte("nope"))))
}

func TestValidationErrorMessage(t *testing.T) {
	err := ValidateFilePath("../../invalidFile.xyz")
	assert.Equal(t, `file "../../invalidFile.xyz": path is not valid`, err.Error())
}
