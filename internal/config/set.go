package config

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/san-kum/orbitlab/internal/dynamo"
)

// Set assigns a numeric value to the field with the given yaml key.
// Integer fields truncate and booleans take any non-zero value as true.
// The config is left unchanged if the result does not validate.
func (c *Config) Set(key string, value float64) error {
	next := *c
	v := reflect.ValueOf(&next).Elem()
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		tag, _, _ := strings.Cut(t.Field(i).Tag.Get("yaml"), ",")
		if tag != key {
			continue
		}
		f := v.Field(i)
		switch f.Kind() {
		case reflect.Float64:
			f.SetFloat(value)
		case reflect.Int, reflect.Int64:
			f.SetInt(int64(value))
		case reflect.Bool:
			f.SetBool(value != 0)
		default:
			return fmt.Errorf("%w: %s is not numeric", dynamo.ErrInvalidConfig, key)
		}
		if err := next.Validate(); err != nil {
			return err
		}
		*c = next
		return nil
	}
	return fmt.Errorf("%w: unknown key %s", dynamo.ErrInvalidConfig, key)
}

// Keys lists the yaml keys Set accepts.
func Keys() []string {
	t := reflect.TypeOf(Config{})
	keys := make([]string, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		tag, _, _ := strings.Cut(t.Field(i).Tag.Get("yaml"), ",")
		keys = append(keys, tag)
	}
	return keys
}

// Get reads the field with the given yaml key as a number.
func (c *Config) Get(key string) (float64, error) {
	v := reflect.ValueOf(c).Elem()
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		tag, _, _ := strings.Cut(t.Field(i).Tag.Get("yaml"), ",")
		if tag != key {
			continue
		}
		f := v.Field(i)
		switch f.Kind() {
		case reflect.Float64:
			return f.Float(), nil
		case reflect.Int, reflect.Int64:
			return float64(f.Int()), nil
		case reflect.Bool:
			if f.Bool() {
				return 1, nil
			}
			return 0, nil
		}
		return 0, fmt.Errorf("%w: %s is not numeric", dynamo.ErrInvalidConfig, key)
	}
	return 0, fmt.Errorf("%w: unknown key %s", dynamo.ErrInvalidConfig, key)
}
