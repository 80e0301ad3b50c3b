package engine

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidFileType = errors.New("engine: file is not an image")
	ErrFileTooLarge    = errors.New("engine: file exceeds size limit")
	ErrUpload          = errors.New("engine: image upload failed")
	ErrInvalidURL      = errors.New("engine: invalid url")
)

// BrokenImageError reports an inserted image whose source cannot be loaded.
// The image stays in the document.
type BrokenImageError struct {
	ID  string
	Src string
	Err error
}

func (e *BrokenImageError) Error() string {
	return fmt.Sprintf("engine: broken image %q: %v", e.ID, e.Err)
}

func (e *BrokenImageError) Unwrap() error { return e.Err }
