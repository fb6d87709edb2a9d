package config

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
)

//go:embed schema.cue
var schemaSource string

var (
	schemaOnce sync.Once
	schemaCtx  *cue.Context
	schemaDef  cue.Value
	schemaErr  error
)

func loadSchema() (*cue.Context, cue.Value, error) {
	schemaOnce.Do(func() {
		schemaCtx = cuecontext.New()
		v := schemaCtx.CompileString(schemaSource, cue.Filename("schema.cue"))
		if err := v.Err(); err != nil {
			schemaErr = fmt.Errorf("compile schema: %w", err)
			return
		}
		schemaDef = v.LookupPath(cue.ParsePath("#Config"))
		if !schemaDef.Exists() {
			schemaErr = errors.New("schema has no #Config definition")
		}
	})
	return schemaCtx, schemaDef, schemaErr
}

// Validate checks a decoded document against the embedded schema. Every
// violation becomes its own E005 LoadError; they are returned joined.
func Validate(f *File) error {
	ctx, def, err := loadSchema()
	if err != nil {
		return &LoadError{Code: ErrCodeGeneric, Message: "schema unavailable", Err: err}
	}

	doc := ctx.Encode(f)
	if err := doc.Err(); err != nil {
		return &LoadError{Code: ErrCodeGeneric, Message: "encode document", Err: err}
	}

	err = def.Unify(doc).Validate(cue.Concrete(true))
	if err == nil {
		return nil
	}

	var errs []error
	for _, e := range cueerrors.Errors(err) {
		format, args := e.Msg()
		errs = append(errs, &LoadError{
			Code:    ErrCodeSchema,
			Message: fmt.Sprintf("%s: %s", fieldPath(e.Path()), fmt.Sprintf(format, args...)),
		})
	}
	if len(errs) == 0 {
		return &LoadError{Code: ErrCodeSchema, Message: err.Error()}
	}
	return errors.Join(errs...)
}

// fieldPath renders a CUE path the way command.ConfigError fields look,
// e.g. "commands[0].listen.type".
func fieldPath(path []string) string {
	var b strings.Builder
	for _, p := range path {
		if p == "" {
			continue
		}
		if p[0] >= '0' && p[0] <= '9' {
			fmt.Fprintf(&b, "[%s]", p)
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(p)
	}
	if b.Len() == 0 {
		return "(root)"
	}
	return b.String()
}
