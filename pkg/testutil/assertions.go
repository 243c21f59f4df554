package testutil

import (
	"fmt"
	"reflect"
	"strings"
	"testing"
)

// AssertEqual checks if two values are equal using deep equality
func AssertEqual(t *testing.T, expected, actual interface{}, msgAndArgs ...interface{}) {
	t.Helper()

	if !reflect.DeepEqual(expected, actual) {
		msg := formatMessage(msgAndArgs...)
		t.Errorf("%sExpected: %+v\nActual: %+v", msg, expected, actual)
	}
}

// AssertNil checks if a value is nil
func AssertNil(t *testing.T, value interface{}, msgAndArgs ...interface{}) {
	t.Helper()

	if !isNil(value) {
		msg := formatMessage(msgAndArgs...)
		t.Errorf("%sExpected nil, got: %+v", msg, value)
	}
}

// AssertNotNil checks if a value is not nil
func AssertNotNil(t *testing.T, value interface{}, msgAndArgs ...interface{}) {
	t.Helper()

	if isNil(value) {
		msg := formatMessage(msgAndArgs...)
		t.Errorf("%sExpected non-nil value", msg)
	}
}

// AssertTrue checks if a value is true
func AssertTrue(t *testing.T, value bool, msgAndArgs ...interface{}) {
	t.Helper()

	if !value {
		msg := formatMessage(msgAndArgs...)
		t.Errorf("%sExpected true, got false", msg)
	}
}

// AssertFalse checks if a value is false
func AssertFalse(t *testing.T, value bool, msgAndArgs ...interface{}) {
	t.Helper()

	if value {
		msg := formatMessage(msgAndArgs...)
		t.Errorf("%sExpected false, got true", msg)
	}
}

// AssertContains checks if a string contains a substring
func AssertContains(t *testing.T, str, substr string, msgAndArgs ...interface{}) {
	t.Helper()

	if !strings.Contains(str, substr) {
		msg := formatMessage(msgAndArgs...)
		t.Errorf("%sString %q does not contain %q", msg, str, substr)
	}
}

// AssertError checks if an error occurred
func AssertError(t *testing.T, err error, msgAndArgs ...interface{}) {
	t.Helper()

	if err == nil {
		msg := formatMessage(msgAndArgs...)
		t.Errorf("%sExpected an error but got nil", msg)
	}
}

// AssertNoError checks if no error occurred
func AssertNoError(t *testing.T, err error, msgAndArgs ...interface{}) {
	t.Helper()

	if err != nil {
		msg := formatMessage(msgAndArgs...)
		t.Errorf("%sUnexpected error: %v", msg, err)
	}
}

// AssertPanic checks if a function panics
func AssertPanic(t *testing.T, fn func(), msgAndArgs ...interface{}) {
	t.Helper()

	defer func() {
		if r := recover(); r == nil {
			msg := formatMessage(msgAndArgs...)
			t.Errorf("%sExpected panic but function completed normally", msg)
		}
	}()

	fn()
}

// AssertNoPanic checks if a function does not panic
func AssertNoPanic(t *testing.T, fn func(), msgAndArgs ...interface{}) {
	t.Helper()

	defer func() {
		if r := recover(); r != nil {
			msg := formatMessage(msgAndArgs...)
			t.Errorf("%sUnexpected panic: %v", msg, r)
		}
	}()

	fn()
}

// Helper functions

func isNil(value interface{}) bool {
	if value == nil {
		return true
	}

	v := reflect.ValueOf(value)
	switch v.Kind() {
	case reflect.Chan, reflect.Func, reflect.Interface, reflect.Map, reflect.Ptr, reflect.Slice:
		return v.IsNil()
	}

	return false
}

func formatMessage(msgAndArgs ...interface{}) string {
	if len(msgAndArgs) == 0 {
		return ""
	}

	if len(msgAndArgs) == 1 {
		if msg, ok := msgAndArgs[0].(string); ok {
			return msg + "\n"
		}
		return fmt.Sprint(msgAndArgs[0]) + "\n"
	}

	// Check if first arg is a format string with format verbs
	if format, ok := msgAndArgs[0].(string); ok && len(msgAndArgs) > 1 {
		// Simple check for format verbs
		if strings.Contains(format, "%") {
			return fmt.Sprintf(format, msgAndArgs[1:]...) + "\n"
		}
	}

	// Otherwise, just concatenate with spaces
	parts := make([]string, len(msgAndArgs))
	for i, arg := range msgAndArgs {
		parts[i] = fmt.Sprint(arg)
	}
	return strings.Join(parts, " ") + "\n"
}
