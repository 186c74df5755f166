package media

import (
	"fmt"
	"image"
	_ "image/gif"  // register decoder for DecodeConfig
	_ "image/jpeg" // register decoder for DecodeConfig
	_ "image/png"  // register decoder for DecodeConfig
	"io"
	"path"
	"regexp"
	"strings"
)

var (
	dotSegmentPattern = regexp.MustCompile(`(^|[\\/])\.\.?([\\/]|$)`)
	entityCodePattern = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)
)

var imageExtensions = map[string]struct{}{
	"jpg":  {},
	"jpeg": {},
	"gif":  {},
	"png":  {},
}

// ValidateFilePath rejects upload paths that could leave the entity tmp
// directory or alias another path: "." and ".." segments, NUL bytes and
// empty values.
func ValidateFilePath(p string) error {
	if strings.TrimSpace(p) == "" {
		return invalid("file", p, ErrInvalidPath)
	}
	if strings.ContainsRune(p, 0) || dotSegmentPattern.MatchString(p) {
		return invalid("file", p, ErrInvalidPath)
	}
	return nil
}

// ValidateEntityTypeCode checks code is safe to use as a directory name.
func ValidateEntityTypeCode(code string) error {
	if !entityCodePattern.MatchString(code) {
		return invalid("entityTypeCode", code, ErrInvalidPath)
	}
	return nil
}

// Limits bounds accepted uploads. Zero values disable the corresponding check.
type Limits struct {
	MaxFileSize       int64
	MaxImageWidth     int
	MaxImageHeight    int
	AllowedExtensions []string
}

// Validator checks upload descriptors and image payloads against Limits.
type Validator struct {
	limits  Limits
	allowed map[string]struct{}
}

// NewValidator builds a validator; extensions are matched case-insensitively without the dot.
func NewValidator(limits Limits) *Validator {
	allowed := make(map[string]struct{}, len(limits.AllowedExtensions))
	for _, ext := range limits.AllowedExtensions {
		ext = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
		if ext != "" {
			allowed[ext] = struct{}{}
		}
	}
	return &Validator{limits: limits, allowed: allowed}
}

// ValidateDescriptor checks everything knowable without reading the file.
func (v *Validator) ValidateDescriptor(value UploadDescriptor) error {
	if value.Error != UploadErrOK {
		return invalid("error", fmt.Sprint(value.Error), ErrUploadFailed)
	}
	if err := ValidateFilePath(value.File); err != nil {
		return err
	}
	if v.limits.MaxFileSize > 0 && value.Size > v.limits.MaxFileSize {
		return invalid("size", fmt.Sprint(value.Size), ErrFileTooLarge)
	}
	return v.ValidateExtension(value.File)
}

// ValidateExtension checks the extension of name against the allow-list.
func (v *Validator) ValidateExtension(name string) error {
	if len(v.allowed) == 0 {
		return nil
	}
	if _, ok := v.allowed[extension(name)]; !ok {
		return invalid("file", name, ErrExtensionNotAllowed)
	}
	return nil
}

// ValidateImage decodes the image header of files with an image extension
// and checks the dimensions. Other files pass untouched.
func (v *Validator) ValidateImage(name string, r io.Reader) error {
	if _, ok := imageExtensions[extension(name)]; !ok {
		return nil
	}
	cfg, _, err := image.DecodeConfig(r)
	if err != nil {
		return invalid("file", name, fmt.Errorf("%w: %v", ErrInvalidImage, err))
	}
	if v.limits.MaxImageWidth > 0 && cfg.Width > v.limits.MaxImageWidth {
		return invalid("width", fmt.Sprint(cfg.Width), ErrImageTooLarge)
	}
	if v.limits.MaxImageHeight > 0 && cfg.Height > v.limits.MaxImageHeight {
		return invalid("height", fmt.Sprint(cfg.Height), ErrImageTooLarge)
	}
	return nil
}

func extension(name string) string {
	return strings.ToLower(strings.TrimPrefix(path.Ext(name), "."))
}
