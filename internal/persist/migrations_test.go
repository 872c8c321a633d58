package persist

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/pressly/goose/v3"
)

func TestSchemaFilesAreVersioned(t *testing.T) {
	fsys, err := schemaFS()
	if err != nil {
		t.Fatalf("schemaFS: %v", err)
	}
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) == 0 {
		t.Fatal("no schema files embedded")
	}

	var last int64
	for _, e := range entries {
		v, err := goose.NumericComponent(e.Name())
		if err != nil {
			t.Fatalf("%s: %v", e.Name(), err)
		}
		if v <= last {
			t.Errorf("%s: version %d not after %d", e.Name(), v, last)
		}
		last = v

		body, err := fs.ReadFile(fsys, e.Name())
		if err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(string(body), "-- +goose Up") {
			t.Errorf("%s has no Up section", e.Name())
		}
	}
}
