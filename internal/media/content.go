package media

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/memohai/formmedia/internal/attachment"
)

// allowedContentTypes are the MIME types an ImageContent may carry.
var allowedContentTypes = map[string]struct{}{
	"image/jpg":  {},
	"image/jpeg": {},
	"image/gif":  {},
	"image/png":  {},
}

const forbiddenNameChars = `/\:*?"<>|`

// ImageContent is file bytes plus MIME metadata, for API payloads instead of disk.
// It is immutable once built.
type ImageContent struct {
	name string
	mime string
	data string
}

// NewImageContent wraps raw bytes.
func NewImageContent(name, mime string, raw []byte) *ImageContent {
	return &ImageContent{
		name: name,
		mime: attachment.NormalizeMime(mime),
		data: attachment.EncodeBase64(raw),
	}
}

// NewImageContentFromBase64 wraps an already encoded payload (raw or data URL).
func NewImageContentFromBase64(name, mime, encoded string) *ImageContent {
	value := strings.TrimSpace(encoded)
	if m := attachment.MimeFromDataURL(value); m != "" {
		if mime == "" {
			mime = m
		}
		if idx := strings.Index(value, ","); idx >= 0 {
			value = value[idx+1:]
		}
	}
	return &ImageContent{
		name: name,
		mime: attachment.NormalizeMime(mime),
		data: value,
	}
}

func (c *ImageContent) Name() string              { return c.name }
func (c *ImageContent) Type() string              { return c.mime }
func (c *ImageContent) Base64EncodedData() string { return c.data }

// Bytes decodes the payload.
func (c *ImageContent) Bytes() ([]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(c.data)
	if err != nil {
		return nil, fmt.Errorf("decode image content: %w", err)
	}
	return raw, nil
}

// DataURL renders the payload as a data URL.
func (c *ImageContent) DataURL() string {
	return attachment.NormalizeBase64DataURL(c.data, c.mime)
}

// Validate checks the payload decodes, the MIME type is an allowed image
// type and the name has no forbidden characters.
func (c *ImageContent) Validate() error {
	if c.data == "" {
		return invalid("base64_encoded_data", "", ErrInvalidContent)
	}
	if _, err := c.Bytes(); err != nil {
		return invalid("base64_encoded_data", "", fmt.Errorf("%w: %v", ErrInvalidContent, err))
	}
	if _, ok := allowedContentTypes[c.mime]; !ok {
		return invalid("type", c.mime, ErrInvalidContent)
	}
	if c.name == "" || strings.ContainsAny(c.name, forbiddenNameChars) || strings.Contains(c.name, "..") {
		return invalid("name", c.name, ErrInvalidContent)
	}
	return nil
}

type imageContentJSON struct {
	Name              string `json:"name" yaml:"name"`
	Type              string `json:"type" yaml:"type"`
	Base64EncodedData string `json:"base64_encoded_data" yaml:"base64_encoded_data"`
}

// MarshalJSON implements json.Marshaler.
func (c *ImageContent) MarshalJSON() ([]byte, error) {
	return json.Marshal(imageContentJSON{
		Name:              c.name,
		Type:              c.mime,
		Base64EncodedData: c.data,
	})
}

// MarshalYAML implements yaml.Marshaler.
func (c *ImageContent) MarshalYAML() (any, error) {
	return imageContentJSON{
		Name:              c.name,
		Type:              c.mime,
		Base64EncodedData: c.data,
	}, nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (c *ImageContent) UnmarshalJSON(data []byte) error {
	var raw imageContentJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*c = *NewImageContentFromBase64(raw.Name, raw.Type, raw.Base64EncodedData)
	return nil
}
