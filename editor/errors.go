package editor

import (
	"errors"
	"io/fs"

	"github.com/iw2rmb/inkwell/engine"
)

// errorText turns an action error into a status line message.
func errorText(err error) string {
	switch {
	case errors.Is(err, engine.ErrInvalidURL):
		return "Enter a valid URL"
	case errors.Is(err, engine.ErrInvalidFileType):
		return "Only image files can be inserted"
	case errors.Is(err, engine.ErrFileTooLarge):
		return "Image exceeds the size limit"
	case errors.Is(err, engine.ErrUpload):
		return "Image upload failed"
	case errors.Is(err, fs.ErrNotExist):
		return "File not found"
	}
	return err.Error()
}
