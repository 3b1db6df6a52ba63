package task

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Benjamin-Hogan/restload/internal/constants"
)

// PayloadKind tags the request encoding chosen for a task.
type PayloadKind int

const (
	PayloadNone PayloadKind = iota
	PayloadRaw
	PayloadForm
	PayloadMultipart
)

func (k PayloadKind) String() string {
	switch k {
	case PayloadNone:
		return "none"
	case PayloadRaw:
		return "raw"
	case PayloadForm:
		return "form"
	case PayloadMultipart:
		return "multipart"
	default:
		return "unknown"
	}
}

// Payload is a fully materialized request body. The bytes are complete so
// the transport can replay them on retry.
type Payload struct {
	Kind        PayloadKind
	ContentType string
	Body        []byte
}

// ResolveFunc substitutes template placeholders in one string.
type ResolveFunc func(s string) (string, error)

// FileError reports a missing or unreadable file, naming the task field
// (or multipart field) it belongs to.
type FileError struct {
	Field string
	Path  string
	Err   error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Field, e.Path, e.Err)
}

func (e *FileError) Unwrap() error { return e.Err }

// BuildPayload picks the effective encoding for t and materializes the
// body. Precedence is fixed: bodyFile beats body, either beats the
// multipart fields. The resolve callback is applied to bodyFile content
// and inline body text; multipartData values must already be resolved.
func BuildPayload(t *Task, resolve ResolveFunc) (*Payload, error) {
	switch {
	case strings.TrimSpace(t.BodyFile) != "":
		raw, err := os.ReadFile(t.BodyFile)
		if err != nil {
			return nil, &FileError{Field: "bodyFile", Path: t.BodyFile, Err: err}
		}
		content, err := resolve(string(raw))
		if err != nil {
			return nil, err
		}
		return rawPayload(content), nil

	case t.Body != "":
		content, err := resolve(t.Body)
		if err != nil {
			return nil, err
		}
		return rawPayload(content), nil

	case len(t.MultipartFiles) > 0:
		return multipartPayload(t)

	case t.MultipartData.Len() > 0:
		return formPayload(t.MultipartData), nil

	default:
		return &Payload{Kind: PayloadNone}, nil
	}
}

func isJSON(s string) bool {
	t := strings.TrimSpace(s)
	if t == "" {
		return false
	}
	if (strings.HasPrefix(t, "{") && strings.HasSuffix(t, "}")) || (strings.HasPrefix(t, "[") && strings.HasSuffix(t, "]")) {
		var js json.RawMessage
		return json.Unmarshal([]byte(t), &js) == nil
	}
	return false
}

func rawPayload(content string) *Payload {
	ct := "text/plain"
	if isJSON(content) {
		ct = constants.DefaultContentType
	}
	return &Payload{Kind: PayloadRaw, ContentType: ct, Body: []byte(content)}
}

func formPayload(data Pairs) *Payload {
	var b strings.Builder
	for i, kv := range data {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(kv.Key))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(kv.Value))
	}
	return &Payload{
		Kind:        PayloadForm,
		ContentType: "application/x-www-form-urlencoded",
		Body:        []byte(b.String()),
	}
}

// multipartPayload builds the full multipart body in memory: the data
// fields in document order, then the file parts sorted by field name so
// the encoding is deterministic.
func multipartPayload(t *Task) (*Payload, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for _, kv := range t.MultipartData {
		if err := w.WriteField(kv.Key, kv.Value); err != nil {
			return nil, fmt.Errorf("write form field %q: %w", kv.Key, err)
		}
	}

	fields := make([]string, 0, len(t.MultipartFiles))
	for name := range t.MultipartFiles {
		fields = append(fields, name)
	}
	sort.Strings(fields)

	for _, field := range fields {
		if err := writeFilePart(w, field, t.MultipartFiles[field]); err != nil {
			return nil, err
		}
	}

	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("finalize multipart body: %w", err)
	}
	return &Payload{
		Kind:        PayloadMultipart,
		ContentType: w.FormDataContentType(),
		Body:        buf.Bytes(),
	}, nil
}

func writeFilePart(w *multipart.Writer, field string, spec FileSpec) error {
	f, err := os.Open(spec.Path)
	if err != nil {
		return &FileError{Field: field, Path: spec.Path, Err: err}
	}
	defer func() { _ = f.Close() }()

	filename := spec.Filename
	if filename == "" {
		filename = filepath.Base(spec.Path)
	}

	var part io.Writer
	if spec.ContentType != "" {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, field, filename))
		h.Set("Content-Type", spec.ContentType)
		part, err = w.CreatePart(h)
	} else {
		part, err = w.CreateFormFile(field, filename)
	}
	if err != nil {
		return fmt.Errorf("create multipart part %q: %w", field, err)
	}

	if _, err := io.Copy(part, f); err != nil {
		return &FileError{Field: field, Path: spec.Path, Err: err}
	}
	return nil
}
