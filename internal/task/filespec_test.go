package task

import (
	"encoding/json"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestFileSpec_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    FileSpec
		wantErr bool
	}{
		{"bare path", `"./a.txt"`, FileSpec{Path: "./a.txt"}, false},
		{"array path only", `["./a.txt"]`, FileSpec{Path: "./a.txt"}, false},
		{"array with content type", `["./a.txt","text/csv"]`, FileSpec{Path: "./a.txt", ContentType: "text/csv"}, false},
		{
			"array full",
			`["./a.txt","text/csv","report.csv"]`,
			FileSpec{Path: "./a.txt", ContentType: "text/csv", Filename: "report.csv"},
			false,
		},
		{
			"object form",
			`{"path":"./a.txt","contentType":"text/csv","filename":"r.csv"}`,
			FileSpec{Path: "./a.txt", ContentType: "text/csv", Filename: "r.csv"},
			false,
		},
		{"empty string", `""`, FileSpec{}, true},
		{"empty array", `[]`, FileSpec{}, true},
		{"too many elements", `["a","b","c","d"]`, FileSpec{}, true},
		{"object without path", `{"contentType":"text/csv"}`, FileSpec{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var f FileSpec
			err := json.Unmarshal([]byte(tt.input), &f)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %s", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if f != tt.want {
				t.Errorf("expected %+v, got %+v", tt.want, f)
			}
		})
	}
}

func TestFileSpec_UnmarshalYAML(t *testing.T) {
	var doc struct {
		F FileSpec `yaml:"f"`
	}

	if err := yaml.Unmarshal([]byte("f: ./a.txt\n"), &doc); err != nil {
		t.Fatalf("scalar: %v", err)
	}
	if doc.F.Path != "./a.txt" {
		t.Errorf("expected path, got %+v", doc.F)
	}

	if err := yaml.Unmarshal([]byte("f: [./a.txt, text/csv]\n"), &doc); err != nil {
		t.Fatalf("sequence: %v", err)
	}
	if doc.F.ContentType != "text/csv" {
		t.Errorf("expected content type, got %+v", doc.F)
	}

	if err := yaml.Unmarshal([]byte("f:\n  path: ./a.txt\n  filename: r.csv\n"), &doc); err != nil {
		t.Fatalf("mapping: %v", err)
	}
	if doc.F.Filename != "r.csv" {
		t.Errorf("expected filename, got %+v", doc.F)
	}

	if err := yaml.Unmarshal([]byte("f: \"\"\n"), &doc); err == nil {
		t.Error("expected error for empty path")
	}
}
