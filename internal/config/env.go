package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
)

// envOverrides applies BGRS_* style environment variables to a config struct
type envOverrides struct {
	prefix  string
	applied []string
}

// apply walks s, which must point to a struct, and sets every field whose env tag
// names a variable present in the environment. Nested structs are walked with their
// yaml key added to the path used in errors.
func (o *envOverrides) apply(s interface{}) error {
	val := reflect.ValueOf(s)
	if val.Kind() != reflect.Ptr || val.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("env overrides need a pointer to a struct, got %T", s)
	}
	return o.walk(val.Elem(), "")
}

func (o *envOverrides) walk(val reflect.Value, path string) error {
	typ := val.Type()
	for i := 0; i < val.NumField(); i++ {
		field := val.Field(i)
		sf := typ.Field(i)
		if !sf.IsExported() {
			continue
		}
		key := joinKey(path, yamlKey(sf))

		if field.Kind() == reflect.Struct {
			if err := o.walk(field, key); err != nil {
				return err
			}
			continue
		}

		tag := sf.Tag.Get("env")
		if tag == "" {
			continue
		}
		name := o.prefix + tag
		raw, ok := os.LookupEnv(name)
		if !ok {
			continue
		}
		if err := setField(field, raw); err != nil {
			return fmt.Errorf("%s (%s): %w", name, key, err)
		}
		o.applied = append(o.applied, name)
	}
	return nil
}

// setField parses value into field according to its kind. Strings are taken verbatim.
func setField(field reflect.Value, value string) error {
	if field.Kind() == reflect.String {
		field.SetString(value)
		return nil
	}

	value = strings.TrimSpace(value)
	switch field.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid integer %q", value)
		}
		if field.OverflowInt(n) {
			return fmt.Errorf("integer %d out of range", n)
		}
		field.SetInt(n)

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(value, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid unsigned integer %q", value)
		}
		if field.OverflowUint(n) {
			return fmt.Errorf("integer %d out of range", n)
		}
		field.SetUint(n)

	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean %q", value)
		}
		field.SetBool(b)

	case reflect.Slice:
		if field.Type().Elem().Kind() != reflect.String {
			return fmt.Errorf("unsupported slice of %s", field.Type().Elem().Kind())
		}
		var items []string
		for _, item := range strings.Split(value, ",") {
			if item = strings.TrimSpace(item); item != "" {
				items = append(items, item)
			}
		}
		field.Set(reflect.ValueOf(items))

	default:
		return fmt.Errorf("unsupported field type %s", field.Kind())
	}
	return nil
}

// yamlKey is the yaml name of a field, falling back to the Go name
func yamlKey(sf reflect.StructField) string {
	name, _, _ := strings.Cut(sf.Tag.Get("yaml"), ",")
	if name == "" || name == "-" {
		return sf.Name
	}
	return name
}

func joinKey(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}
