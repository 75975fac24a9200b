package content

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

// ErrUnsupportedFormat is returned for files that are neither YAML nor CUE.
var ErrUnsupportedFormat = errors.New("unsupported content format")

// Content is the validated records of one or more files, in load order.
type Content struct {
	Environments []EnvironmentRecord
	Tradeables   []TradeableRecord
	Events       []EventRecord
	Packs        []PackRecord

	// Files lists every loaded file.
	Files []string

	sources map[Kind][]source
}

// Len returns the number of records across all kinds.
func (c *Content) Len() int {
	return len(c.Environments) + len(c.Tradeables) + len(c.Events) + len(c.Packs)
}

func (c *Content) addSource(kind Kind, s source) {
	if c.sources == nil {
		c.sources = make(map[Kind][]source)
	}
	c.sources[kind] = append(c.sources[kind], s)
}

func (c *Content) source(kind Kind, i int) source {
	if i < len(c.sources[kind]) {
		return c.sources[kind][i]
	}
	return source{file: "<memory>", index: i}
}

// Loader reads content files.
type Loader struct {
	logger *slog.Logger
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithLogger sets the logger skipped records are reported to.
func WithLogger(l *slog.Logger) LoaderOption {
	return func(ld *Loader) {
		ld.logger = l
	}
}

// NewLoader creates a loader.
func NewLoader(opts ...LoaderOption) *Loader {
	ld := &Loader{logger: slog.Default()}
	for _, opt := range opts {
		opt(ld)
	}
	return ld
}

// Load reads every path in order. A directory contributes its .yaml, .yml
// and .cue files in lexical order, recursively.
//
// The returned error is fatal (unreadable file, unparseable document,
// unsupported format). Skipped records are returned separately as
// *RecordError values and have already been logged.
func (ld *Loader) Load(paths ...string) (*Content, []error, error) {
	files, err := expand(paths)
	if err != nil {
		return nil, nil, err
	}

	c := &Content{}
	var skipped []error
	for _, file := range files {
		errs, err := ld.loadFile(c, file)
		if err != nil {
			return nil, nil, err
		}
		skipped = append(skipped, errs...)
	}
	return c, skipped, nil
}

// LoadBytes parses one document. name is used for format detection and
// error reporting.
func (ld *Loader) LoadBytes(name string, data []byte) (*Content, []error, error) {
	c := &Content{}
	errs, err := ld.decode(c, name, data)
	if err != nil {
		return nil, nil, err
	}
	return c, errs, nil
}

func expand(paths []string) ([]string, error) {
	var files []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("content path: %w", err)
		}
		if !info.IsDir() {
			files = append(files, p)
			continue
		}
		var found []string
		err = filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && isContentFile(path) {
				found = append(found, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", p, err)
		}
		slices.Sort(found)
		files = append(files, found...)
	}
	return files, nil
}

func isContentFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml", ".cue":
		return true
	}
	return false
}

func (ld *Loader) loadFile(c *Content, file string) ([]error, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("read content: %w", err)
	}
	return ld.decode(c, file, data)
}

func (ld *Loader) decode(c *Content, file string, data []byte) ([]error, error) {
	doc, err := parseDocument(file, data)
	if err != nil {
		return nil, err
	}

	validators, err := recordSchemas()
	if err != nil {
		return nil, err
	}

	var skipped []error
	for _, kind := range Kinds {
		for i, raw := range doc[kind] {
			src := source{file: file, index: i}
			if err := ld.decodeRecord(c, kind, src, raw, validators[kind]); err != nil {
				ld.logger.Warn("content record skipped", "file", file, "kind", kind, "index", i, "error", err.Err)
				skipped = append(skipped, err)
			}
		}
	}
	c.Files = append(c.Files, file)
	return skipped, nil
}

// parseDocument turns a YAML or CUE file into JSON records per kind.
func parseDocument(file string, data []byte) (map[Kind][]json.RawMessage, error) {
	var (
		js  []byte
		err error
	)
	switch strings.ToLower(filepath.Ext(file)) {
	case ".yaml", ".yml":
		js, err = yamlToJSON(data)
	case ".cue":
		js, err = cueToJSON(file, data)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, file)
	}
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", file, err)
	}

	var top map[string]json.RawMessage
	if err := json.Unmarshal(js, &top); err != nil {
		return nil, fmt.Errorf("parse %s: document must be a mapping: %w", file, err)
	}

	doc := make(map[Kind][]json.RawMessage, len(top))
	for key, raw := range top {
		kind := Kind(key)
		if !slices.Contains(Kinds, kind) {
			return nil, fmt.Errorf("parse %s: unknown section %q", file, key)
		}
		var records []json.RawMessage
		if err := json.Unmarshal(raw, &records); err != nil {
			return nil, fmt.Errorf("parse %s: section %q must be a list: %w", file, key, err)
		}
		doc[kind] = records
	}
	return doc, nil
}

func yamlToJSON(data []byte) ([]byte, error) {
	var v map[string]any
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	if v == nil {
		v = map[string]any{}
	}
	return json.Marshal(v)
}

func cueToJSON(file string, data []byte) ([]byte, error) {
	v := cuecontext.New().CompileBytes(data, cue.Filename(file))
	if err := v.Err(); err != nil {
		return nil, err
	}
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return nil, err
	}
	return v.MarshalJSON()
}

func (ld *Loader) decodeRecord(c *Content, kind Kind, src source, raw json.RawMessage, schema *jsonschema.Schema) *RecordError {
	var inst any
	if err := json.Unmarshal(raw, &inst); err != nil {
		return src.errorf(kind, "", "%v", err)
	}
	name := recordName(inst)
	if err := schema.Validate(inst); err != nil {
		return src.errorf(kind, name, "%v", err)
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()

	switch kind {
	case KindEnvironment:
		var r EnvironmentRecord
		if err := dec.Decode(&r); err != nil {
			return src.errorf(kind, name, "%v", err)
		}
		r.normalize()
		c.Environments = append(c.Environments, r)
	case KindTradeable:
		var r TradeableRecord
		if err := dec.Decode(&r); err != nil {
			return src.errorf(kind, name, "%v", err)
		}
		r.normalize()
		c.Tradeables = append(c.Tradeables, r)
	case KindEvent:
		var r EventRecord
		if err := dec.Decode(&r); err != nil {
			return src.errorf(kind, name, "%v", err)
		}
		r.normalize()
		c.Events = append(c.Events, r)
	case KindPack:
		var r PackRecord
		if err := dec.Decode(&r); err != nil {
			return src.errorf(kind, name, "%v", err)
		}
		r.normalize()
		c.Packs = append(c.Packs, r)
	}
	c.addSource(kind, src)
	return nil
}

func recordName(inst any) string {
	m, ok := inst.(map[string]any)
	if !ok {
		return ""
	}
	name, _ := m["name"].(string)
	return normalize(name)
}
