package schema

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"
	"cuelang.org/go/cue/token"
	"gopkg.in/yaml.v3"
)

// Load error codes, shared with the CLI.
const (
	ErrCodeGeneric     = "E001" // generic/unknown error
	ErrCodeScanError   = "E002" // directory scan error
	ErrCodeNoFiles     = "E003" // no model files found
	ErrCodeLoadFailed  = "E004" // CUE load failed
	ErrCodeNotFound    = "E005" // path not found
	ErrCodeBuildFailed = "E006" // CUE build failed
	ErrCodeYAML        = "E008" // YAML parse failed
)

// LoadMode controls how errors are handled while loading.
type LoadMode int

const (
	// LoadModeFailFast stops on the first error.
	LoadModeFailFast LoadMode = iota
	// LoadModeCollectAll keeps going and returns every error.
	LoadModeCollectAll
)

// LoadResult holds the type declarations found in a directory, CUE files
// first, then YAML files in name order.
type LoadResult struct {
	Types []TypeSpec
	Files []string
}

// LoadError is a failure to read or parse model files.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// LoadDir reads the *.cue, *.yaml and *.yml files directly inside dir.
// CUE files form one instance whose top-level "type" struct declares the
// types; a YAML file holds a "types" list.
func LoadDir(dir string, mode LoadMode) (*LoadResult, []error) {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("model directory not found: %s", dir)}}
	}
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing model directory: %v", err)}}
	}
	if !info.IsDir() {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("not a directory: %s", dir)}}
	}

	cueFiles, yamlFiles, err := FindModelFiles(dir)
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeScanError, Message: fmt.Sprintf("error scanning directory: %v", err)}}
	}
	if len(cueFiles) == 0 && len(yamlFiles) == 0 {
		return nil, []error{&LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("no model files found in %s", dir)}}
	}

	result := &LoadResult{Files: append(slices.Clone(cueFiles), yamlFiles...)}
	var errs []error
	failed := func(err error) bool {
		errs = append(errs, err)
		return mode == LoadModeFailFast
	}

	if len(cueFiles) > 0 {
		types, cueErrs := loadCUE(dir)
		result.Types = append(result.Types, types...)
		for _, err := range cueErrs {
			if failed(err) {
				return result, errs
			}
		}
	}
	for _, path := range yamlFiles {
		types, err := LoadYAML(path)
		if err != nil {
			if failed(err) {
				return result, errs
			}
			continue
		}
		result.Types = append(result.Types, types...)
	}

	if len(result.Types) == 0 && len(errs) == 0 {
		errs = append(errs, &LoadError{Code: ErrCodeGeneric, Message: "no types found in model files"})
	}
	return result, errs
}

func loadCUE(dir string) ([]TypeSpec, []error) {
	ctx := cuecontext.New()
	instances := load.Instances([]string{"."}, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return nil, []error{&LoadError{Code: ErrCodeLoadFailed, Message: "no CUE instances loaded"}}
	}
	inst := instances[0]
	if inst.Err != nil {
		return nil, []error{&LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("loading CUE files: %v", inst.Err)}}
	}
	value := ctx.BuildInstance(inst)
	if err := value.Err(); err != nil {
		return nil, []error{&LoadError{Code: ErrCodeBuildFailed, Message: fmt.Sprintf("building CUE value: %v", err)}}
	}
	return TypesFromCUE(value)
}

// TypesFromCUE compiles every field of the top-level "type" struct of v.
func TypesFromCUE(v cue.Value) ([]TypeSpec, []error) {
	typesVal := v.LookupPath(cue.ParsePath("type"))
	if !typesVal.Exists() {
		return nil, nil
	}
	iter, err := typesVal.Fields()
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeGeneric, Message: fmt.Sprintf("iterating types: %v", err)}}
	}
	var (
		types []TypeSpec
		errs  []error
	)
	for iter.Next() {
		spec, err := CompileType(iter.Value())
		if err != nil {
			errs = append(errs, convertCompileError(err, "type."+iter.Label()))
			continue
		}
		types = append(types, *spec)
	}
	return types, errs
}

func convertCompileError(err error, context string) *LoadError {
	if ce, ok := err.(*CompileError); ok {
		return &LoadError{Code: ErrCodeGeneric, Message: context + ": " + ce.Field + ": " + ce.Message, Pos: ce.Pos}
	}
	return &LoadError{Code: ErrCodeGeneric, Message: fmt.Sprintf("%s: %v", context, err)}
}

// LoadYAML reads a YAML model file. Unknown keys are rejected.
func LoadYAML(path string) ([]TypeSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("failed to read model file: %v", err)}
	}

	var file modelFile
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&file); err != nil {
		return nil, &LoadError{Code: ErrCodeYAML, Message: fmt.Sprintf("%s: failed to parse YAML: %v", path, err)}
	}

	// A second pass over the node tree recovers declaration lines.
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err == nil {
		for i, line := range typeLines(&root) {
			if i < len(file.Types) {
				file.Types[i].Source = position(path, line)
			}
		}
	}
	return file.Types, nil
}

func typeLines(root *yaml.Node) []int {
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		return nil
	}
	m := root.Content[0]
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value != "types" {
			continue
		}
		var lines []int
		for _, item := range m.Content[i+1].Content {
			lines = append(lines, item.Line)
		}
		return lines
	}
	return nil
}

// FindModelFiles lists the model files directly inside dir, sorted by name.
func FindModelFiles(dir string) (cueFiles, yamlFiles []string, err error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, err
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		path := filepath.Join(dir, e.Name())
		switch filepath.Ext(e.Name()) {
		case ".cue":
			cueFiles = append(cueFiles, path)
		case ".yaml", ".yml":
			yamlFiles = append(yamlFiles, path)
		}
	}
	return cueFiles, yamlFiles, nil
}
