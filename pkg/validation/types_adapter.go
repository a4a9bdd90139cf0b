package validation

import (
	"reflect"

	"github.com/aarondl/null/v8"
	"github.com/go-playground/validator/v10"
)

// registerNullTypes lets rules see the value inside null.* fields. An invalid value validates as nil,
// so `omitempty` skips it.
func registerNullTypes(v *validator.Validate) {
	v.RegisterCustomTypeFunc(nullValue, null.String{}, null.Int{}, null.Bool{}, null.Time{})
}

func nullValue(field reflect.Value) interface{} {
	switch val := field.Interface().(type) {
	case null.String:
		if val.Valid {
			return val.String
		}
	case null.Int:
		if val.Valid {
			return val.Int
		}
	case null.Bool:
		if val.Valid {
			return val.Bool
		}
	case null.Time:
		if val.Valid {
			return val.Time
		}
	}
	return nil
}
