package applications

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"recruit-backend/internal/shared/apperr"
)

// MaxResumeBytes caps a resume upload.
const MaxResumeBytes = 5 << 20

type resumeFormat struct {
	mimeType string
	sniffed  []string
}

var resumeFormats = map[string]resumeFormat{
	".pdf": {
		mimeType: "application/pdf",
		sniffed:  []string{"application/pdf"},
	},
	".doc": {
		mimeType: "application/msword",
		sniffed:  []string{"application/octet-stream", "application/msword"},
	},
	".docx": {
		mimeType: "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		sniffed:  []string{"application/zip"},
	},
}

// checkResume validates name and leading bytes of an upload and returns the
// canonical mime type plus a reader that replays the sniffed bytes.
func checkResume(upload *Upload) (string, io.Reader, error) {
	if upload == nil || upload.Body == nil {
		return "", nil, apperr.Validation("Please upload a resume file", apperr.Field("resume", "file is required", nil))
	}
	if upload.Size > MaxResumeBytes {
		return "", nil, apperr.Validation("File too large", apperr.Field("resume", "must be 5MB or smaller", upload.Size))
	}
	ext := strings.ToLower(filepath.Ext(upload.FileName))
	format, ok := resumeFormats[ext]
	if !ok {
		return "", nil, apperr.Validation("Only PDF, DOC and DOCX files are allowed", apperr.Field("resume", "unsupported file type", upload.FileName))
	}

	head := make([]byte, 512)
	n, err := io.ReadFull(upload.Body, head)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return "", nil, err
	}
	if n == 0 {
		return "", nil, apperr.Validation("Uploaded file is empty", apperr.Field("resume", "file is empty", upload.FileName))
	}
	head = head[:n]
	detected := http.DetectContentType(head)
	if i := strings.IndexByte(detected, ';'); i >= 0 {
		detected = detected[:i]
	}
	matched := false
	for _, m := range format.sniffed {
		if detected == m {
			matched = true
			break
		}
	}
	if !matched {
		return "", nil, apperr.Validation("File content does not match its extension", apperr.Field("resume", "content is "+detected, upload.FileName))
	}
	return format.mimeType, io.MultiReader(bytes.NewReader(head), upload.Body), nil
}

// limitedReader fails once more than MaxResumeBytes have been read.
type limitedReader struct {
	r    io.Reader
	read int64
}

func (l *limitedReader) Read(p []byte) (int, error) {
	n, err := l.r.Read(p)
	l.read += int64(n)
	if l.read > MaxResumeBytes {
		return n, apperr.Validation("File too large", apperr.Field("resume", "must be 5MB or smaller", l.read))
	}
	return n, err
}

func (s *Service) storeResume(ctx context.Context, applicantID string, upload *Upload) (Resume, error) {
	if s.Store == nil {
		return Resume{}, apperr.Internal("Resume storage is not configured", nil)
	}
	mimeType, body, err := checkResume(upload)
	if err != nil {
		return Resume{}, err
	}
	key, size, _, err := s.Store.Save(ctx, applicantID, upload.FileName, &limitedReader{r: body})
	if err != nil {
		if apperr.Is(err, apperr.KindValidation) {
			return Resume{}, err
		}
		return Resume{}, apperr.Internal("Failed to store resume", err)
	}
	return Resume{
		FileName:    filepath.Base(upload.FileName),
		StoragePath: key,
		Size:        size,
		MimeType:    mimeType,
		UploadedAt:  s.now(),
	}, nil
}
