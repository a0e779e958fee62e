/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package config

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/carverauto/cyclescan/pkg/logger"
	"github.com/carverauto/cyclescan/pkg/models"
)

var (
	// ErrDstMustBeNonNilPointer indicates that the destination must be a non-nil pointer.
	ErrDstMustBeNonNilPointer = errors.New("dst must be a non-nil pointer")
	// ErrDstMustBePointerToStruct indicates that the destination must be a pointer to a struct.
	ErrDstMustBePointerToStruct = errors.New("dst must be a pointer to a struct")
)

var (
	stdDurationType   = reflect.TypeOf(time.Duration(0))
	modelDurationType = reflect.TypeOf(models.Duration(0))
)

// EnvConfigLoader loads configuration from environment variables.
// Nested struct fields are joined with underscores, so
// CYCLESCAN_SPACE_TREE_BUDGET maps to cfg.SpaceTree.Budget.
type EnvConfigLoader struct {
	logger logger.Logger
	prefix string
}

// NewEnvConfigLoader creates a new environment variable config loader.
func NewEnvConfigLoader(log logger.Logger, prefix string) *EnvConfigLoader {
	return &EnvConfigLoader{
		logger: log,
		prefix: prefix,
	}
}

// Load implements ConfigLoader by reading from environment variables.
// <prefix>CONFIG_JSON, when set, replaces per-field lookup.
func (e *EnvConfigLoader) Load(_ context.Context, _ string, dst interface{}) error {
	if e.logger != nil {
		e.logger.Debug().Msg("Loading configuration from environment variables")
	}

	if jsonConfig := os.Getenv(e.prefix + "CONFIG_JSON"); jsonConfig != "" {
		if err := json.Unmarshal([]byte(jsonConfig), dst); err != nil {
			return fmt.Errorf("failed to unmarshal CONFIG_JSON: %w", err)
		}

		if e.logger != nil {
			e.logger.Info().Msg("Loaded configuration from CONFIG_JSON environment variable")
		}

		return nil
	}

	v := reflect.ValueOf(dst)
	if v.Kind() != reflect.Ptr || v.IsNil() {
		return ErrDstMustBeNonNilPointer
	}

	v = v.Elem()
	if v.Kind() != reflect.Struct {
		return ErrDstMustBePointerToStruct
	}

	return e.loadStruct(v, e.prefix)
}

// loadStruct recursively loads a struct from environment variables. A value
// that does not parse is an error.
func (e *EnvConfigLoader) loadStruct(v reflect.Value, prefix string) error {
	t := v.Type()

	for i := 0; i < t.NumField(); i++ {
		field := v.Field(i)
		fieldType := t.Field(i)

		if !field.CanSet() {
			continue
		}

		jsonTag := fieldType.Tag.Get("json")
		if jsonTag == "-" {
			continue
		}

		fieldName := strings.Split(jsonTag, ",")[0]
		if fieldName == "" {
			if fieldType.Anonymous && field.Kind() == reflect.Struct {
				if err := e.loadStruct(field, prefix); err != nil {
					return err
				}
			}

			continue
		}

		if err := e.setFieldValue(field, e.buildEnvName(prefix, fieldName)); err != nil {
			return err
		}
	}

	return nil
}

func (*EnvConfigLoader) buildEnvName(prefix, fieldName string) string {
	envName := strings.ToUpper(fieldName)
	envName = strings.ReplaceAll(envName, ".", "_")
	envName = strings.ReplaceAll(envName, "-", "_")

	return prefix + envName
}

func (e *EnvConfigLoader) setFieldValue(field reflect.Value, envName string) error {
	if isStruct(field.Type()) {
		return e.handleNestedStruct(field, envName)
	}

	envValue, ok := os.LookupEnv(envName)
	if !ok || envValue == "" {
		return nil
	}

	if err := e.setFieldByKind(field, envName, envValue); err != nil {
		return err
	}

	if e.logger != nil {
		e.logger.Debug().
			Str("env", envName).
			Str("value", "[set]").
			Msg("Loaded value from environment variable")
	}

	return nil
}

func isStruct(t reflect.Type) bool {
	return t.Kind() == reflect.Struct || (t.Kind() == reflect.Ptr && t.Elem().Kind() == reflect.Struct)
}

// handleNestedStruct descends into struct fields. A nil pointer is only
// allocated when some variable under its prefix is set.
func (e *EnvConfigLoader) handleNestedStruct(field reflect.Value, envName string) error {
	prefix := envName + "_"

	if field.Kind() != reflect.Ptr {
		return e.loadStruct(field, prefix)
	}

	if field.IsNil() {
		if !hasEnvPrefix(prefix) {
			return nil
		}

		field.Set(reflect.New(field.Type().Elem()))
	}

	return e.loadStruct(field.Elem(), prefix)
}

func hasEnvPrefix(prefix string) bool {
	for _, kv := range os.Environ() {
		if strings.HasPrefix(kv, prefix) {
			return true
		}
	}

	return false
}

func (e *EnvConfigLoader) setFieldByKind(field reflect.Value, envName, envValue string) error {
	switch field.Kind() {
	case reflect.String:
		field.SetString(envValue)

	case reflect.Bool:
		return setBoolField(field, envName, envValue)

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return setIntField(field, envName, envValue)

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return setUintField(field, envName, envValue)

	case reflect.Float32, reflect.Float64:
		return setFloatField(field, envName, envValue)

	case reflect.Slice:
		return setSliceField(field, envName, envValue)

	case reflect.Ptr:
		if field.IsNil() {
			field.Set(reflect.New(field.Type().Elem()))
		}

		return e.setFieldByKind(field.Elem(), envName, envValue)

	case reflect.Invalid, reflect.Uintptr, reflect.Complex64, reflect.Complex128,
		reflect.Array, reflect.Chan, reflect.Func, reflect.Interface, reflect.Map,
		reflect.Struct, reflect.UnsafePointer:
		return setComplexField(field, envName, envValue)
	}

	return nil
}

func setBoolField(field reflect.Value, envName, envValue string) error {
	b, err := strconv.ParseBool(envValue)
	if err != nil {
		return fmt.Errorf("invalid boolean value for %s: %w", envName, err)
	}

	field.SetBool(b)

	return nil
}

// setIntField parses durations for time.Duration and models.Duration.
func setIntField(field reflect.Value, envName, envValue string) error {
	if field.Type() == stdDurationType || field.Type() == modelDurationType {
		d, err := time.ParseDuration(envValue)
		if err != nil {
			return fmt.Errorf("invalid duration value for %s: %w", envName, err)
		}

		field.SetInt(int64(d))

		return nil
	}

	i, err := strconv.ParseInt(envValue, 10, field.Type().Bits())
	if err != nil {
		return fmt.Errorf("invalid integer value for %s: %w", envName, err)
	}

	field.SetInt(i)

	return nil
}

func setUintField(field reflect.Value, envName, envValue string) error {
	u, err := strconv.ParseUint(envValue, 10, field.Type().Bits())
	if err != nil {
		return fmt.Errorf("invalid unsigned integer value for %s: %w", envName, err)
	}

	field.SetUint(u)

	return nil
}

func setFloatField(field reflect.Value, envName, envValue string) error {
	f, err := strconv.ParseFloat(envValue, field.Type().Bits())
	if err != nil {
		return fmt.Errorf("invalid float value for %s: %w", envName, err)
	}

	field.SetFloat(f)

	return nil
}

// setSliceField splits string slices on commas and decodes others as JSON.
func setSliceField(field reflect.Value, envName, envValue string) error {
	if field.Type().Elem().Kind() != reflect.String {
		if err := json.Unmarshal([]byte(envValue), field.Addr().Interface()); err != nil {
			return fmt.Errorf("invalid slice value for %s: %w", envName, err)
		}

		return nil
	}

	values := strings.Split(envValue, ",")
	slice := reflect.MakeSlice(field.Type(), len(values), len(values))

	for i, v := range values {
		slice.Index(i).SetString(strings.TrimSpace(v))
	}

	field.Set(slice)

	return nil
}

func setComplexField(field reflect.Value, envName, envValue string) error {
	if err := json.Unmarshal([]byte(envValue), field.Addr().Interface()); err != nil {
		return fmt.Errorf("unsupported type %s for %s: %w", field.Kind(), envName, err)
	}

	return nil
}
