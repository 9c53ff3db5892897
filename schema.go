package jobly

import (
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/gertd/go-pluralize"
	"github.com/iancoleman/strcase"
	"github.com/jedib0t/go-pretty/table"

	"github.com/jobly/jobly/qb"
)

type field struct {
	Logical string
	Column  string
	IsPK    bool
	Virtual bool
	Type    reflect.Type
}

type fieldTag struct {
	Name    string
	Virtual bool
	PK      bool
}

// fieldMetadataFromTag parses `jobly:"col=logo_url pk=true"`. col=_ marks a
// field that has no column of its own.
func fieldMetadataFromTag(t string) fieldTag {
	if t == "" {
		return fieldTag{}
	}
	var tag fieldTag
	for _, tuple := range strings.Fields(t) {
		key, value, _ := strings.Cut(tuple, "=")
		if key == "col" {
			tag.Name = value
		} else if key == "pk" {
			tag.PK = value == "" || value == "true"
		}
		if tag.Name == "_" {
			tag.Virtual = true
		}
	}
	return tag
}

func structType(obj interface{}) reflect.Type {
	t := reflect.TypeOf(obj)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() == reflect.Slice {
		t = t.Elem()
		for t.Kind() == reflect.Ptr {
			t = t.Elem()
		}
	}
	return t
}

func fieldsOf(obj interface{}) []*field {
	t := structType(obj)
	var fms []*field
	for i := 0; i < t.NumField(); i++ {
		ft := t.Field(i)
		if !ft.IsExported() {
			continue
		}
		jsonName, _, _ := strings.Cut(ft.Tag.Get("json"), ",")
		if jsonName == "-" {
			continue
		}
		tagParsed := fieldMetadataFromTag(ft.Tag.Get("jobly"))
		fm := &field{Type: ft.Type, Virtual: tagParsed.Virtual}
		if jsonName != "" {
			fm.Logical = jsonName
		} else {
			fm.Logical = strcase.ToLowerCamel(ft.Name)
		}
		if tagParsed.Name != "" && !tagParsed.Virtual {
			fm.Column = tagParsed.Name
		} else {
			fm.Column = strcase.ToSnake(ft.Name)
		}
		if tagParsed.PK || strings.ToLower(ft.Name) == "id" {
			fm.IsPK = true
		}
		fms = append(fms, fm)
	}
	return fms
}

// FieldMapOf maps the logical (JSON) names of obj's fields to their columns.
func FieldMapOf(obj interface{}) qb.FieldMap {
	m := qb.FieldMap{}
	for _, f := range fieldsOf(obj) {
		if f.Virtual {
			continue
		}
		m[f.Logical] = f.Column
	}
	return m
}

// ColumnsOf lists obj's stored columns in declaration order.
func ColumnsOf(obj interface{}, withPK bool) []string {
	var cols []string
	for _, f := range fieldsOf(obj) {
		if f.Virtual {
			continue
		}
		if !withPK && f.IsPK {
			continue
		}
		cols = append(cols, f.Column)
	}
	return cols
}

var pluralizer = pluralize.NewClient()

// TableNameOf derives a table name from the type name: Company -> companies.
func TableNameOf(obj interface{}) string {
	return pluralizer.Plural(strcase.ToSnake(structType(obj).Name()))
}

// Schematic prints the logical field to column mapping of every model.
func Schematic(w io.Writer, models ...interface{}) {
	for _, model := range models {
		fmt.Fprintf(w, "Table: %s\n", TableNameOf(model))
		tw := table.NewWriter()
		tw.AppendHeader(table.Row{"Field", "Column", "Type", "Is Primary Key", "Is Virtual"})
		for _, f := range fieldsOf(model) {
			column := f.Column
			if f.Virtual {
				column = "-"
			}
			tw.AppendRow(table.Row{f.Logical, column, f.Type, f.IsPK, f.Virtual})
		}
		fmt.Fprintln(w, tw.Render())
		fmt.Fprintln(w)
	}
}
