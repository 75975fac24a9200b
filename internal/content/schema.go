package content

import (
	"embed"
	"fmt"
	"path"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schemas/*.json
var schemaFS embed.FS

const schemaBase = "https://bourse.local/schemas/"

var (
	schemasOnce sync.Once
	schemas     map[Kind]*jsonschema.Schema
	schemasErr  error
)

var schemaFiles = map[Kind]string{
	KindEnvironment: "environment.schema.json",
	KindTradeable:   "tradeable.schema.json",
	KindEvent:       "event.schema.json",
	KindPack:        "pack.schema.json",
}

// recordSchemas compiles the embedded schemas once.
func recordSchemas() (map[Kind]*jsonschema.Schema, error) {
	schemasOnce.Do(func() {
		schemas, schemasErr = compileSchemas()
	})
	return schemas, schemasErr
}

func compileSchemas() (map[Kind]*jsonschema.Schema, error) {
	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft2020

	entries, err := schemaFS.ReadDir("schemas")
	if err != nil {
		return nil, fmt.Errorf("read schemas: %w", err)
	}
	for _, entry := range entries {
		f, err := schemaFS.Open(path.Join("schemas", entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("open schema %s: %w", entry.Name(), err)
		}
		err = c.AddResource(schemaBase+entry.Name(), f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("add schema %s: %w", entry.Name(), err)
		}
	}

	out := make(map[Kind]*jsonschema.Schema, len(schemaFiles))
	for kind, file := range schemaFiles {
		s, err := c.Compile(schemaBase + file)
		if err != nil {
			return nil, fmt.Errorf("compile schema %s: %w", file, err)
		}
		out[kind] = s
	}
	return out, nil
}
