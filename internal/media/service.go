package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/memohai/formmedia/internal/attachment"
	"github.com/memohai/formmedia/internal/storage"
)

// maxNameAttempts bounds retries when a concurrent writer claims a picked name.
const maxNameAttempts = 16

// stagingPrefix marks uploads spooled into a tmp directory before they get
// their final name.
const stagingPrefix = ".staging-"

// Mode selects how a saved value is processed for an entity type.
type Mode string

const (
	// ModeMove moves the temporary file into the entity dispersion path.
	ModeMove Mode = "move"
	// ModeContent wraps the temporary file into an ImageContent.
	ModeContent Mode = "content"
)

// Options configures a Service.
type Options struct {
	Limits      Limits
	EntityModes map[string]Mode
}

// Service processes image/file attribute values against a media directory.
// Uploads land in "<entity>/tmp/<file>"; saved files live in
// "<entity>/<c1>/<c2>/<file>".
type Service struct {
	dir       storage.Directory
	validator *Validator
	modes     map[string]Mode
	maxBytes  int64
	logger    *slog.Logger
}

// NewService creates a media service over dir.
func NewService(log *slog.Logger, dir storage.Directory, opts Options) *Service {
	if log == nil {
		log = slog.Default()
	}
	modes := make(map[string]Mode, len(opts.EntityModes))
	for code, mode := range opts.EntityModes {
		modes[code] = mode
	}
	return &Service{
		dir:       dir,
		validator: NewValidator(opts.Limits),
		modes:     modes,
		maxBytes:  opts.Limits.MaxFileSize,
		logger:    log.With(slog.String("service", "media")),
	}
}

// ModeFor returns the configured mode for an entity type code.
func (s *Service) ModeFor(entityTypeCode string) (Mode, error) {
	mode, ok := s.modes[entityTypeCode]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownEntityType, entityTypeCode)
	}
	return mode, nil
}

// Process validates the submitted value and dispatches it to the branch
// configured for params.EntityTypeCode.
func (s *Service) Process(ctx context.Context, params ProcessingParameters) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	entity := params.EntityTypeCode
	mode, err := s.ModeFor(entity)
	if err != nil {
		return Result{}, err
	}
	value := params.Value
	if err := s.validator.ValidateDescriptor(value); err != nil {
		return Result{}, err
	}
	if err := s.validateTemporaryImage(entity, value); err != nil {
		return Result{}, err
	}

	switch mode {
	case ModeMove:
		p, err := s.MoveTemporaryFile(ctx, entity, value)
		if err != nil {
			return Result{}, err
		}
		return Result{Path: p}, nil
	case ModeContent:
		return s.EncodeTemporaryFile(ctx, entity, value)
	default:
		return Result{}, fmt.Errorf("%w: unsupported mode %q", ErrUnknownEntityType, mode)
	}
}

// MoveTemporaryFile moves "<entity>/tmp/<file>" into the entity dispersion
// path and returns the stored path relative to the entity directory, e.g.
// "/m/a/magento.jpg". An existing file at the destination is never
// overwritten; a numeric suffix is appended instead.
func (s *Service) MoveTemporaryFile(ctx context.Context, entityTypeCode string, value UploadDescriptor) (string, error) {
	file, err := s.checkPaths(entityTypeCode, value.File)
	if err != nil {
		return "", err
	}
	fileName := CorrectFileName(path.Base(file))
	dispersion := DispersionPath(fileName)
	destDir := entityTypeCode + dispersion

	if err := s.dir.Create(destDir); err != nil {
		return "", fmt.Errorf("%w: %w", ErrSaveFailed, err)
	}
	tmpRel := path.Join(entityTypeCode, TmpDir, file)
	name, err := s.placeUnique(tmpRel, destDir, fileName)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrSaveFailed, err)
	}

	stored := dispersion + "/" + name
	s.logger.InfoContext(ctx, "temporary file moved",
		slog.String("entity_type", entityTypeCode),
		slog.String("from", tmpRel),
		slog.String("path", stored),
	)
	return stored, nil
}

// EncodeTemporaryFile reads "<entity>/tmp/<file>" into an ImageContent and
// removes the temporary file. When the temporary file does not exist the
// value is returned untouched. Image payloads are validated before the
// temporary file is removed.
func (s *Service) EncodeTemporaryFile(ctx context.Context, entityTypeCode string, value UploadDescriptor) (Result, error) {
	file, err := s.checkPaths(entityTypeCode, value.File)
	if err != nil {
		return Result{}, err
	}
	tmpRel := path.Join(entityTypeCode, TmpDir, file)
	exists, err := s.dir.IsExist(tmpRel)
	if err != nil {
		return Result{}, fmt.Errorf("check temporary file: %w", err)
	}
	if !exists {
		s.logger.DebugContext(ctx, "temporary file missing, keeping value",
			slog.String("entity_type", entityTypeCode),
			slog.String("file", file),
		)
		v := value
		return Result{Value: &v}, nil
	}

	raw, err := s.dir.ReadFile(tmpRel)
	if err != nil {
		return Result{}, fmt.Errorf("read temporary file: %w", err)
	}
	content := NewImageContent(value.Name, value.Type, raw)
	if attachment.IsImageMime(content.Type()) {
		if err := content.Validate(); err != nil {
			return Result{}, err
		}
	}
	if err := s.dir.DeleteFile(tmpRel); err != nil {
		return Result{}, fmt.Errorf("remove temporary file: %w", err)
	}

	s.logger.InfoContext(ctx, "temporary file encoded",
		slog.String("entity_type", entityTypeCode),
		slog.String("file", file),
		slog.Int("bytes", len(raw)),
	)
	return Result{Content: content}, nil
}

// SaveTemporary stores an uploaded stream in "<entity>/tmp/" under a
// corrected, non-colliding name and returns the descriptor a later
// Process call expects.
func (s *Service) SaveTemporary(ctx context.Context, entityTypeCode, fileName, declaredMime string, reader io.Reader) (UploadDescriptor, error) {
	if _, err := s.ModeFor(entityTypeCode); err != nil {
		return UploadDescriptor{}, err
	}
	if err := ValidateFilePath(fileName); err != nil {
		return UploadDescriptor{}, err
	}
	base := fileName
	if idx := strings.LastIndexAny(base, `/\`); idx >= 0 {
		base = base[idx+1:]
	}
	name := CorrectFileName(base)
	if name == "" || strings.Trim(name, ".") == "" {
		return UploadDescriptor{}, invalid("file", fileName, ErrInvalidPath)
	}
	if err := s.validator.ValidateExtension(name); err != nil {
		return UploadDescriptor{}, err
	}

	prepared, mime, err := attachment.PrepareReaderAndMime(reader, declaredMime)
	if err != nil {
		return UploadDescriptor{}, fmt.Errorf("read upload: %w", err)
	}
	tmpDir := path.Join(entityTypeCode, TmpDir)
	staged := path.Join(tmpDir, stagingPrefix+uuid.NewString())
	size, err := s.dir.WriteFile(staged, prepared, s.maxBytes)
	if err != nil {
		if errors.Is(err, storage.ErrTooLarge) {
			return UploadDescriptor{}, invalid("size", "", ErrFileTooLarge)
		}
		return UploadDescriptor{}, fmt.Errorf("store upload: %w", err)
	}
	if size == 0 {
		_ = s.dir.DeleteFile(staged)
		return UploadDescriptor{}, invalid("file", fileName, ErrUploadFailed)
	}
	name, err = s.placeUnique(staged, tmpDir, name)
	if err != nil {
		_ = s.dir.DeleteFile(staged)
		return UploadDescriptor{}, fmt.Errorf("store upload: %w", err)
	}
	rel := path.Join(tmpDir, name)
	if err := s.validateTemporaryImage(entityTypeCode, UploadDescriptor{File: name}); err != nil {
		_ = s.dir.DeleteFile(rel)
		return UploadDescriptor{}, err
	}

	s.logger.InfoContext(ctx, "upload stored",
		slog.String("entity_type", entityTypeCode),
		slog.String("file", rel),
		slog.Int64("size", size),
	)
	return UploadDescriptor{
		Name:        base,
		Type:        mime,
		TmpName:     rel,
		File:        name,
		Error:       UploadErrOK,
		Size:        size,
		PreviewType: string(attachment.KindFromMime(mime)),
	}, nil
}

// OpenStored opens a saved file by its entity-relative path ("/m/a/magento.jpg")
// and returns its MIME type derived from the extension. Unprocessed uploads
// under tmp/ are not served.
func (s *Service) OpenStored(ctx context.Context, entityTypeCode, storedPath string) (io.ReadCloser, string, error) {
	file, err := s.checkStoredPath(entityTypeCode, storedPath)
	if err != nil {
		return nil, "", err
	}
	rc, err := s.dir.Open(path.Join(entityTypeCode, file))
	if err != nil {
		return nil, "", err
	}
	return rc, attachment.MimeFromExtension(file), nil
}

// RemoveStored deletes a saved file. Removing a missing file is not an error;
// directories and tmp/ paths are refused.
func (s *Service) RemoveStored(ctx context.Context, entityTypeCode, storedPath string) error {
	file, err := s.checkStoredPath(entityTypeCode, storedPath)
	if err != nil {
		return err
	}
	if err := s.dir.DeleteFile(path.Join(entityTypeCode, file)); err != nil {
		return fmt.Errorf("remove stored file: %w", err)
	}
	s.logger.InfoContext(ctx, "stored file removed",
		slog.String("entity_type", entityTypeCode),
		slog.String("path", storedPath),
	)
	return nil
}

// PurgeTemporary removes files in every configured "<entity>/tmp" directory
// last modified before cutoff and returns how many were removed.
func (s *Service) PurgeTemporary(ctx context.Context, cutoff time.Time) (int, error) {
	entities := make([]string, 0, len(s.modes))
	for code := range s.modes {
		entities = append(entities, code)
	}
	sort.Strings(entities)

	removed := 0
	for _, entity := range entities {
		if err := ctx.Err(); err != nil {
			return removed, err
		}
		if ValidateEntityTypeCode(entity) != nil {
			continue
		}
		tmpDir := path.Join(entity, TmpDir)
		entries, err := s.dir.List(tmpDir)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				continue
			}
			return removed, fmt.Errorf("list %s: %w", tmpDir, err)
		}
		for _, entry := range entries {
			if entry.IsDir || !entry.ModTime.Before(cutoff) {
				continue
			}
			if err := s.dir.DeleteFile(path.Join(tmpDir, entry.Name)); err != nil {
				return removed, fmt.Errorf("purge %s/%s: %w", tmpDir, entry.Name, err)
			}
			removed++
		}
	}
	if removed > 0 {
		s.logger.InfoContext(ctx, "temporary files purged",
			slog.Int("count", removed),
			slog.Time("cutoff", cutoff),
		)
	}
	return removed, nil
}

// checkPaths validates the entity code and file path and returns the file
// path without leading slashes.
func (s *Service) checkPaths(entityTypeCode, file string) (string, error) {
	if err := ValidateEntityTypeCode(entityTypeCode); err != nil {
		return "", err
	}
	if err := ValidateFilePath(file); err != nil {
		return "", err
	}
	cleaned := path.Clean(strings.TrimLeft(file, "/"))
	if cleaned == "." || cleaned == "" {
		return "", invalid("file", file, ErrInvalidPath)
	}
	return cleaned, nil
}

// checkStoredPath is checkPaths for saved files: paths inside tmp/ are refused.
func (s *Service) checkStoredPath(entityTypeCode, storedPath string) (string, error) {
	file, err := s.checkPaths(entityTypeCode, storedPath)
	if err != nil {
		return "", err
	}
	if file == TmpDir || strings.HasPrefix(file, TmpDir+"/") {
		return "", invalid("file", storedPath, ErrInvalidPath)
	}
	return file, nil
}

// placeUnique renames from into dir as fileName, or the next free
// "name_N.ext" when another writer claims the picked name first.
func (s *Service) placeUnique(from, dir, fileName string) (string, error) {
	for attempt := 1; ; attempt++ {
		name, err := NewFileName(fileName, func(n string) (bool, error) {
			return s.dir.IsExist(path.Join(dir, n))
		})
		if err != nil {
			return "", err
		}
		err = s.dir.RenameFile(from, path.Join(dir, name))
		if err == nil {
			return name, nil
		}
		if !errors.Is(err, storage.ErrExist) || attempt >= maxNameAttempts {
			return "", err
		}
	}
}

// validateTemporaryImage checks image dimensions of an existing temporary
// file. A missing file is left to the processing branch to handle.
func (s *Service) validateTemporaryImage(entityTypeCode string, value UploadDescriptor) error {
	file, err := s.checkPaths(entityTypeCode, value.File)
	if err != nil {
		return err
	}
	rc, err := s.dir.Open(path.Join(entityTypeCode, TmpDir, file))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("open temporary file: %w", err)
	}
	defer func() {
		_ = rc.Close()
	}()
	return s.validator.ValidateImage(file, rc)
}
