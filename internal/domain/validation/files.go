package validation

import (
	"path/filepath"
	"strings"

	"github.com/okian/convention/internal/domain/model"
)

// MaxVideoBytes is the default pitch video limit.
const MaxVideoBytes = 50 << 20

// VideoTypes are the accepted pitch video MIME types.
var VideoTypes = []string{"video/mp4", "video/quicktime", "video/x-msvideo"}

// VideoExtensions are the accepted pitch video extensions.
var VideoExtensions = []string{"mp4", "mov", "avi"}

// DocumentTypes are the accepted pitch document MIME types.
var DocumentTypes = []string{
	"application/pdf",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	"application/vnd.openxmlformats-officedocument.presentationml.presentation",
}

// DocumentExtensions are the accepted pitch document extensions.
var DocumentExtensions = []string{"pdf", "docx", "pptx"}

// Extension returns the lower-cased extension of name without the dot.
func Extension(name string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
}

func hasExtension(name string, allowed []string) bool {
	ext := Extension(name)
	return ext != "" && oneOf(ext, allowed)
}

func hasType(contentType string, allowed []string) bool {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	return ct != "" && oneOf(ct, allowed)
}

// Video checks a pitch video. A file passes on either MIME type or extension.
func Video(u *model.Upload, maxBytes int64) error {
	if u == nil || u.Filename == "" {
		return newError(MsgPitchFilesMissing, FieldErrors{"video": MsgPitchFilesMissing})
	}
	if !hasType(u.ContentType, VideoTypes) && !hasExtension(u.Filename, VideoExtensions) {
		return newError(MsgVideoFormat, FieldErrors{"video": MsgVideoFormat})
	}
	if maxBytes > 0 && u.Size > maxBytes {
		msg := VideoTooLarge(maxBytes)
		return newError(msg, FieldErrors{"video": msg})
	}
	return nil
}

// Document checks a pitch document.
func Document(u *model.Upload) error {
	if u == nil || u.Filename == "" {
		return newError(MsgPitchFilesMissing, FieldErrors{"document": MsgPitchFilesMissing})
	}
	if !hasType(u.ContentType, DocumentTypes) && !hasExtension(u.Filename, DocumentExtensions) {
		return newError(MsgDocumentFormat, FieldErrors{"document": MsgDocumentFormat})
	}
	return nil
}

// PitchFiles checks both uploads, reporting a missing file first.
func PitchFiles(video, document *model.Upload, maxVideo int64) error {
	if video == nil || video.Filename == "" || document == nil || document.Filename == "" {
		return newError(MsgPitchFilesMissing, nil)
	}
	if err := Video(video, maxVideo); err != nil {
		return err
	}
	return Document(document)
}

// Agreement checks the pitch guidelines checkbox.
func Agreement(agreed bool) error {
	if !agreed {
		return newError(MsgAgreementRequired, FieldErrors{"agree": MsgAgreementRequired})
	}
	return nil
}

// VideoExtension names the stored video file. A file accepted only by its
// MIME type gets the matching extension.
func VideoExtension(u *model.Upload) string {
	return extensionFor(u, VideoTypes, VideoExtensions)
}

// DocumentExtension is VideoExtension for pitch documents.
func DocumentExtension(u *model.Upload) string {
	return extensionFor(u, DocumentTypes, DocumentExtensions)
}

// extensionFor relies on types and exts being index aligned.
func extensionFor(u *model.Upload, types, exts []string) string {
	if hasExtension(u.Filename, exts) {
		return Extension(u.Filename)
	}
	for i, t := range types {
		if hasType(u.ContentType, []string{t}) {
			return exts[i]
		}
	}
	return "bin"
}
