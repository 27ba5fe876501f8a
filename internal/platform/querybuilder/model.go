package querybuilder

import (
	"errors"
	"reflect"
	"strings"
	"sync"
)

var (
	errNilModel    = errors.New("querybuilder: model is nil")
	errNotStruct   = errors.New("querybuilder: model is not a struct")
	errNoDBColumns = errors.New("querybuilder: model has no db columns")
)

type column struct {
	name  string
	index int
}

// columnCache maps reflect.Type to the []column derived from its db tags.
var columnCache sync.Map

func columnsFor(typ reflect.Type) []column {
	if cached, ok := columnCache.Load(typ); ok {
		return cached.([]column)
	}
	var cols []column
	for i := range typ.NumField() {
		field := typ.Field(i)
		name, _, _ := strings.Cut(field.Tag.Get("db"), ",")
		if name = strings.TrimSpace(name); !field.IsExported() || name == "" || name == "-" {
			continue
		}
		cols = append(cols, column{name: name, index: i})
	}
	columnCache.Store(typ, cols)
	return cols
}

// ColumnsOf lists db column names and values of a struct in field order.
func ColumnsOf(model any) ([]string, []any, error) {
	v := reflect.ValueOf(model)
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return nil, nil, errNilModel
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return nil, nil, errNotStruct
	}

	cols := columnsFor(v.Type())
	if len(cols) == 0 {
		return nil, nil, errNoDBColumns
	}
	names := make([]string, len(cols))
	values := make([]any, len(cols))
	for i, c := range cols {
		names[i] = c.name
		values[i] = v.Field(c.index).Interface()
	}
	return names, values, nil
}

// InsertModel builds an insert from the db-tagged exported fields of model.
func InsertModel(table string, model any, suffix string) (string, []any, error) {
	names, values, err := ColumnsOf(model)
	if err != nil {
		return "", nil, err
	}
	return InsertInto(table).Columns(names...).Values(values...).Suffix(suffix).ToSQL()
}

// Excluded renders "col = EXCLUDED.col" pairs for an ON CONFLICT update.
func Excluded(columns ...string) string {
	var b strings.Builder
	for i, c := range columns {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(c + " = EXCLUDED." + c)
	}
	return b.String()
}
