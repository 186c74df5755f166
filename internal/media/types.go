package media

// TmpDir is the per-entity directory uploads land in before the form is saved.
const TmpDir = "tmp"

// UploadDescriptor describes a file uploaded for an image/file attribute.
// File is relative to "<entity>/tmp".
type UploadDescriptor struct {
	Name        string `json:"name" yaml:"name"`
	Type        string `json:"type" yaml:"type"`
	TmpName     string `json:"tmp_name" yaml:"tmp_name"`
	File        string `json:"file" yaml:"file"`
	Error       int    `json:"error" yaml:"error"`
	Size        int64  `json:"size" yaml:"size"`
	PreviewType string `json:"previewType,omitempty" yaml:"previewType,omitempty"`
}

// ProcessingParameters selects the processing branch for a submitted value.
type ProcessingParameters struct {
	EntityTypeCode string           `json:"entityTypeCode" yaml:"entityTypeCode"`
	FormCode       string           `json:"formCode" yaml:"formCode"`
	IsAjax         bool             `json:"isAjax" yaml:"isAjax"`
	Value          UploadDescriptor `json:"value" yaml:"value"`
}

// Result is the outcome of processing a value. Exactly one field is set:
// Path for moved files, Content for wrapped files, Value when nothing was done.
type Result struct {
	Path    string            `json:"path,omitempty" yaml:"path,omitempty"`
	Content *ImageContent     `json:"content,omitempty" yaml:"content,omitempty"`
	Value   *UploadDescriptor `json:"value,omitempty" yaml:"value,omitempty"`
}

// Upload error codes carried in UploadDescriptor.Error.
const (
	UploadErrOK        = 0
	UploadErrIniSize   = 1
	UploadErrFormSize  = 2
	UploadErrPartial   = 3
	UploadErrNoFile    = 4
	UploadErrNoTmpDir  = 6
	UploadErrCantWrite = 7
	UploadErrExtension = 8
)
