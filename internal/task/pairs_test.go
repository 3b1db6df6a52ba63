package task

import (
	"encoding/json"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestPairs_OrderPreservedJSON(t *testing.T) {
	var p Pairs
	data := []byte(`{"zeta":"1","alpha":"2","mid":"3"}`)
	if err := json.Unmarshal(data, &p); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	want := []string{"zeta", "alpha", "mid"}
	if p.Len() != len(want) {
		t.Fatalf("expected %d entries, got %d", len(want), p.Len())
	}
	for i, k := range want {
		if p[i].Key != k {
			t.Errorf("entry %d: expected key %q, got %q", i, k, p[i].Key)
		}
	}

	out, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != `{"zeta":"1","alpha":"2","mid":"3"}` {
		t.Errorf("expected order kept on marshal, got %s", out)
	}
}

func TestPairs_OrderPreservedYAML(t *testing.T) {
	var p Pairs
	data := []byte("zeta: one\nalpha: two\nmid: three\n")
	if err := yaml.Unmarshal(data, &p); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	want := []string{"zeta", "alpha", "mid"}
	for i, k := range want {
		if p[i].Key != k {
			t.Errorf("entry %d: expected key %q, got %q", i, k, p[i].Key)
		}
	}
}

func TestPairs_ScalarCoercion(t *testing.T) {
	tests := []struct {
		name string
		json string
		key  string
		want string
	}{
		{"number", `{"n": 42}`, "n", "42"},
		{"float", `{"n": 1.5}`, "n", "1.5"},
		{"bool", `{"b": true}`, "b", "true"},
		{"null", `{"x": null}`, "x", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p Pairs
			if err := json.Unmarshal([]byte(tt.json), &p); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			got, ok := p.Get(tt.key)
			if !ok || got != tt.want {
				t.Errorf("expected %q, got %q (ok=%t)", tt.want, got, ok)
			}
		})
	}
}

func TestPairs_RejectsCompositeValues(t *testing.T) {
	var p Pairs
	if err := json.Unmarshal([]byte(`{"a": {"nested": true}}`), &p); err == nil {
		t.Fatal("expected error for object value")
	}
	if err := json.Unmarshal([]byte(`[1,2]`), &p); err == nil {
		t.Fatal("expected error for non-object document")
	}
}

func TestPairs_DuplicateKeyKeepsPosition(t *testing.T) {
	var p Pairs
	if err := json.Unmarshal([]byte(`{"a":"1","b":"2","a":"3"}`), &p); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if p.Len() != 2 {
		t.Fatalf("expected 2 entries, got %d", p.Len())
	}
	if p[0].Key != "a" || p[0].Value != "3" {
		t.Errorf("expected first entry a=3, got %s=%s", p[0].Key, p[0].Value)
	}
}

func TestPairs_SetGet(t *testing.T) {
	var p Pairs
	p.Set("k1", "v1")
	p.Set("k2", "v2")
	p.Set("k1", "v3")

	if v, ok := p.Get("k1"); !ok || v != "v3" {
		t.Errorf("expected k1=v3, got %q (ok=%t)", v, ok)
	}
	if p.Len() != 2 {
		t.Errorf("expected 2 entries after overwrite, got %d", p.Len())
	}
	if _, ok := p.Get("missing"); ok {
		t.Error("expected miss for unknown key")
	}
}

func TestPairs_MapAndFromMap(t *testing.T) {
	p := FromMap(map[string]string{"b": "2", "a": "1"})
	if p[0].Key != "a" || p[1].Key != "b" {
		t.Errorf("FromMap should sort keys, got %v", p)
	}

	m := p.Map()
	if len(m) != 2 || m["a"] != "1" || m["b"] != "2" {
		t.Errorf("unexpected map %v", m)
	}

	var nilPairs Pairs
	if nilPairs.Map() != nil {
		t.Error("nil pairs should yield nil map")
	}
	if FromMap(nil) != nil {
		t.Error("empty map should yield nil pairs")
	}
}
