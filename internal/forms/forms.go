// Package forms holds the client-side validation rules for every form the
// marketplace submits. Structural rules live in JSON Schema documents under
// schemas/; rules spanning several fields are plain Go.
package forms

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"net/mail"
	"net/url"
	"path"
	"sort"
	"strconv"
	"strings"

	"github.com/qri-io/jsonschema"
)

//go:embed schemas/*.json
var schemaFS embed.FS

// Errors maps a form field to the message shown next to it.
type Errors map[string]string

func (e Errors) Error() string {
	keys := make([]string, 0, len(e))
	for k := range e {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// add records msg unless the field already has a message.
func (e Errors) add(field, msg string) {
	if _, ok := e[field]; !ok {
		e[field] = msg
	}
}

func (e Errors) orNil() error {
	if len(e) == 0 {
		return nil
	}
	return e
}

// form pairs a compiled schema with the messages shown for its fields.
type form struct {
	name     string
	schema   *jsonschema.Schema
	messages map[string]string
}

func load(name string, messages map[string]string) *form {
	b, err := schemaFS.ReadFile(path.Join("schemas", name+".json"))
	if err != nil {
		panic(fmt.Sprintf("forms: read schema %s: %v", name, err))
	}
	rs := &jsonschema.Schema{}
	if err := json.Unmarshal(b, rs); err != nil {
		panic(fmt.Sprintf("forms: compile schema %s: %v", name, err))
	}
	return &form{name: name, schema: rs, messages: messages}
}

// check validates doc against the schema and records one message per failing field.
func (f *form) check(doc any, errs Errors) {
	b, err := json.Marshal(doc)
	if err != nil {
		errs.add("form", "invalid input")
		return
	}
	kerrs, err := f.schema.ValidateBytes(context.Background(), b)
	if err != nil {
		errs.add("form", "invalid input")
		return
	}
	for _, ke := range kerrs {
		field := fieldOf(ke.PropertyPath)
		if field == "" {
			continue
		}
		msg, ok := f.messages[field]
		if !ok {
			msg = ke.Message
		}
		errs.add(field, msg)
	}
}

func fieldOf(p string) string {
	p = strings.TrimPrefix(p, "#")
	p = strings.TrimPrefix(p, "/")
	field, _, _ := strings.Cut(p, "/")
	return field
}

func validEmail(s string) bool {
	a, err := mail.ParseAddress(s)
	return err == nil && a.Address == s
}

// validURL accepts absolute http(s) URLs.
func validURL(s string) bool {
	u, err := url.ParseRequestURI(s)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func amount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
