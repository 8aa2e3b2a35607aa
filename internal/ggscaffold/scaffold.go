// Package ggscaffold renders the skeleton Go file gg's "new" subcommand
// writes for a freshly-named thunk function: package main, one ThunkBody
// stub, and a two-line main wired through gg.Run. It compiles a text/template
// with sprig's string-case helpers, the way internal/templates renders
// user-facing text, simplified to a single fixed template with no sandboxing
// since the output path is a local developer command, not request-driven.
package ggscaffold

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"text/template"

	sprig "github.com/Masterminds/sprig/v3"
)

var thunkFile = template.Must(
	template.New("thunk").Funcs(sprig.TxtFuncMap()).Parse(thunkFileTemplate),
)

const thunkFileTemplate = `{{- $fn := .ThunkName | replace "-" "_" | replace " " "_" | lower | camelcase -}}
package main

import (
	"os"

	"github.com/alex-ozdemir/gg"
)

// {{$fn}} is a stub thunk body. Replace its parameter list, return
// kind, and implementation, then update the Register call below to match.
func {{$fn}}(rt *gg.Runtime, args []any) (any, error) {
	return nil, nil
}

func main() {
	registry := gg.NewRegistry()
	if err := registry.Register("{{.ThunkName}}", nil, gg.ReturnValue, {{$fn}}); err != nil {
		panic(err)
	}
	os.Exit(gg.Run(registry))
}
`

type thunkFileData struct {
	ThunkName string
}

// WriteThunkFile renders the skeleton thunk file into a new file at path,
// naming its ThunkBody stub after thunkName: the template normalizes "-"
// and " " to "_" and lowercases before piping through sprig's camelcase
// helper, since Go exported identifiers can't contain the separators
// thunk names otherwise allow.
func WriteThunkFile(path string, thunkName string) error {
	if thunkName == "" {
		return errors.New("ggscaffold: thunk name must not be empty")
	}
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("ggscaffold: %s already exists", path)
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("ggscaffold: stat %s: %w", path, err)
	}

	data := thunkFileData{ThunkName: thunkName}

	var buf bytes.Buffer
	if err := thunkFile.Execute(&buf, data); err != nil {
		return fmt.Errorf("ggscaffold: render %s: %w", path, err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("ggscaffold: mkdir %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("ggscaffold: write %s: %w", path, err)
	}
	return nil
}
