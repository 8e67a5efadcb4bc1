package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"recruit-backend/internal/shared/storage/object/local"
)

const documentXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
<w:body>
<w:p><w:r><w:t>Jane Doe</w:t></w:r></w:p>
<w:p><w:r><w:t>Skills: Go, PostgreSQL</w:t></w:r></w:p>
</w:body>
</w:document>`

func buildZip(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, body := range files {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("create zip entry: %v", err)
		}
		if _, err := w.Write([]byte(body)); err != nil {
			t.Fatalf("write zip entry: %v", err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

func TestFromBytes_ZipDocxNormalizes(t *testing.T) {
	data := buildZip(t, map[string]string{"word/document.xml": documentXML})

	text, err := FromBytes(context.Background(), data, "application/zip", "resume.docx")
	if err != nil {
		t.Fatalf("expected docx to extract from zip mime, got error: %v", err)
	}
	if text != "Jane Doe\nSkills: Go, PostgreSQL" {
		t.Fatalf("unexpected text: %q", text)
	}
}

func TestFromBytes_RealZipRejected(t *testing.T) {
	data := buildZip(t, map[string]string{"notes.txt": "hello"})

	_, err := FromBytes(context.Background(), data, "application/zip", "notes.zip")
	if !errors.Is(err, ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported, got %v", err)
	}
	if !strings.Contains(err.Error(), "application/zip") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestFromBytes_LegacyDocUnsupported(t *testing.T) {
	_, err := FromBytes(context.Background(), []byte{0xD0, 0xCF, 0x11, 0xE0}, "application/octet-stream", "cv.doc")
	if !errors.Is(err, ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported, got %v", err)
	}
}

func TestFromBytes_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := FromBytes(ctx, []byte("x"), mimePDF, "a.pdf"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestFromObject(t *testing.T) {
	store := local.New(t.TempDir())
	data := buildZip(t, map[string]string{"word/document.xml": documentXML})
	key, _, _, err := store.Save(context.Background(), "resumes/u1", "resume.docx", bytes.NewReader(data))
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	text, err := FromObject(context.Background(), store, key, mimeDOCX, "resume.docx")
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if !strings.Contains(text, "PostgreSQL") {
		t.Fatalf("unexpected text: %q", text)
	}

	if _, err := FromObject(context.Background(), store, "resumes/u1/missing.pdf", mimePDF, "missing.pdf"); err == nil {
		t.Fatal("expected error for missing object")
	}
}
