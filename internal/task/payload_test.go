package task

import (
	"bytes"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func noResolve(s string) (string, error) { return s, nil }

func TestBuildPayload_Precedence(t *testing.T) {
	dir := t.TempDir()
	bodyFile := filepath.Join(dir, "body.json")
	if err := os.WriteFile(bodyFile, []byte(`{"from":"file"}`), 0o600); err != nil {
		t.Fatal(err)
	}
	dataFile := filepath.Join(dir, "part.txt")
	if err := os.WriteFile(dataFile, []byte("part"), 0o600); err != nil {
		t.Fatal(err)
	}

	tk := &Task{
		ConfigName:     "api",
		Method:         "POST",
		Path:           "/x",
		Body:           `{"from":"body"}`,
		BodyFile:       bodyFile,
		MultipartData:  Pairs{{Key: "k", Value: "v"}},
		MultipartFiles: map[string]FileSpec{"doc": {Path: dataFile}},
	}

	// bodyFile wins over everything
	p, err := BuildPayload(tk, noResolve)
	if err != nil {
		t.Fatalf("bodyFile: %v", err)
	}
	if p.Kind != PayloadRaw || string(p.Body) != `{"from":"file"}` {
		t.Fatalf("expected bodyFile content, got kind=%s body=%s", p.Kind, p.Body)
	}

	// then body
	tk.BodyFile = ""
	p, err = BuildPayload(tk, noResolve)
	if err != nil {
		t.Fatalf("body: %v", err)
	}
	if p.Kind != PayloadRaw || string(p.Body) != `{"from":"body"}` {
		t.Fatalf("expected inline body, got kind=%s body=%s", p.Kind, p.Body)
	}

	// then multipart files
	tk.Body = ""
	p, err = BuildPayload(tk, noResolve)
	if err != nil {
		t.Fatalf("multipart: %v", err)
	}
	if p.Kind != PayloadMultipart {
		t.Fatalf("expected multipart, got %s", p.Kind)
	}

	// then form data
	tk.MultipartFiles = nil
	p, err = BuildPayload(tk, noResolve)
	if err != nil {
		t.Fatalf("form: %v", err)
	}
	if p.Kind != PayloadForm || string(p.Body) != "k=v" {
		t.Fatalf("expected form body, got kind=%s body=%s", p.Kind, p.Body)
	}

	// nothing set
	tk.MultipartData = nil
	p, err = BuildPayload(tk, noResolve)
	if err != nil {
		t.Fatalf("none: %v", err)
	}
	if p.Kind != PayloadNone {
		t.Fatalf("expected empty payload, got %s", p.Kind)
	}
}

func TestBuildPayload_ContentTypeSniff(t *testing.T) {
	p, err := BuildPayload(&Task{Body: `{"a":1}`}, noResolve)
	if err != nil {
		t.Fatal(err)
	}
	if p.ContentType != "application/json" {
		t.Errorf("expected json content type, got %q", p.ContentType)
	}

	p, err = BuildPayload(&Task{Body: "plain text"}, noResolve)
	if err != nil {
		t.Fatal(err)
	}
	if p.ContentType != "text/plain" {
		t.Errorf("expected text content type, got %q", p.ContentType)
	}

	// looks like JSON but is not
	p, err = BuildPayload(&Task{Body: "{not json}"}, noResolve)
	if err != nil {
		t.Fatal(err)
	}
	if p.ContentType != "text/plain" {
		t.Errorf("expected text for invalid JSON, got %q", p.ContentType)
	}
}

func TestBuildPayload_ResolveApplied(t *testing.T) {
	upper := func(s string) (string, error) { return strings.ToUpper(s), nil }
	p, err := BuildPayload(&Task{Body: "abc"}, upper)
	if err != nil {
		t.Fatal(err)
	}
	if string(p.Body) != "ABC" {
		t.Errorf("expected resolved body, got %s", p.Body)
	}

	boom := errors.New("boom")
	fail := func(string) (string, error) { return "", boom }
	if _, err := BuildPayload(&Task{Body: "abc"}, fail); !errors.Is(err, boom) {
		t.Errorf("expected resolver error passed through, got %v", err)
	}
}

func TestBuildPayload_BodyFileMissing(t *testing.T) {
	_, err := BuildPayload(&Task{BodyFile: "/definitely/not/here.json"}, noResolve)
	var fe *FileError
	if !errors.As(err, &fe) {
		t.Fatalf("expected FileError, got %T %v", err, err)
	}
	if fe.Field != "bodyFile" {
		t.Errorf("expected field bodyFile, got %q", fe.Field)
	}
}

func TestBuildPayload_MultipartDeterministic(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.txt", "a.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(name), 0o600); err != nil {
			t.Fatal(err)
		}
	}

	tk := &Task{
		MultipartData: Pairs{{Key: "first", Value: "1"}, {Key: "second", Value: "2"}},
		MultipartFiles: map[string]FileSpec{
			"zeta":  {Path: filepath.Join(dir, "b.txt")},
			"alpha": {Path: filepath.Join(dir, "a.txt"), ContentType: "text/csv", Filename: "named.csv"},
		},
	}

	p, err := BuildPayload(tk, noResolve)
	if err != nil {
		t.Fatal(err)
	}

	_, params, err := mime.ParseMediaType(p.ContentType)
	if err != nil {
		t.Fatalf("content type: %v", err)
	}
	r := multipart.NewReader(bytes.NewReader(p.Body), params["boundary"])

	type part struct {
		name, filename, contentType, body string
	}
	var parts []part
	for {
		pt, err := r.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("next part: %v", err)
		}
		data, _ := io.ReadAll(pt)
		parts = append(parts, part{
			name:        pt.FormName(),
			filename:    pt.FileName(),
			contentType: pt.Header.Get("Content-Type"),
			body:        string(data),
		})
	}

	wantOrder := []string{"first", "second", "alpha", "zeta"}
	if len(parts) != len(wantOrder) {
		t.Fatalf("expected %d parts, got %d", len(wantOrder), len(parts))
	}
	for i, name := range wantOrder {
		if parts[i].name != name {
			t.Errorf("part %d: expected %q, got %q", i, name, parts[i].name)
		}
	}
	if parts[2].filename != "named.csv" || parts[2].contentType != "text/csv" {
		t.Errorf("expected explicit filename and content type, got %+v", parts[2])
	}
	if parts[3].filename != "b.txt" {
		t.Errorf("expected basename fallback, got %q", parts[3].filename)
	}
	if parts[3].body != "b.txt" {
		t.Errorf("expected file content, got %q", parts[3].body)
	}
}

func TestBuildPayload_MultipartFileMissing(t *testing.T) {
	tk := &Task{MultipartFiles: map[string]FileSpec{"doc": {Path: "/nope/doc.txt"}}}
	_, err := BuildPayload(tk, noResolve)
	var fe *FileError
	if !errors.As(err, &fe) {
		t.Fatalf("expected FileError, got %T %v", err, err)
	}
	if fe.Field != "doc" {
		t.Errorf("expected multipart field name, got %q", fe.Field)
	}
}

func TestFormPayload_Escaping(t *testing.T) {
	p, err := BuildPayload(&Task{MultipartData: Pairs{{Key: "q space", Value: "a&b=c"}}}, noResolve)
	if err != nil {
		t.Fatal(err)
	}
	if p.ContentType != "application/x-www-form-urlencoded" {
		t.Errorf("unexpected content type %q", p.ContentType)
	}
	if string(p.Body) != "q+space=a%26b%3Dc" {
		t.Errorf("unexpected encoding %q", p.Body)
	}
}
