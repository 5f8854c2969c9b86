package assert

// this is a subset of github.com/stretchr/testify/assert
// without the testify dependency and only the functions we use

import (
	"bytes"
	"fmt"
	"reflect"

	"github.com/davecgh/go-spew/spew"
	"github.com/pmezard/go-difflib/difflib"
)

// TestingT is an interface wrapper around *testing.T
type TestingT interface {
	Errorf(format string, args ...interface{})
}

var spewConfig = spew.ConfigState{
	Indent:                  " ",
	DisablePointerAddresses: true,
	DisableCapacities:       true,
	SortKeys:                true,
}

// ObjectsAreEqual determines if two objects are considered equal.
func ObjectsAreEqual(expected, actual interface{}) bool {
	if expected == nil || actual == nil {
		return expected == actual
	}
	exp, ok := expected.([]byte)
	if !ok {
		return reflect.DeepEqual(expected, actual)
	}
	act, ok := actual.([]byte)
	if !ok {
		return false
	}
	return bytes.Equal(exp, act)
}

func messageFromMsgAndArgs(msgAndArgs ...interface{}) string {
	if len(msgAndArgs) == 0 {
		return ""
	}
	if len(msgAndArgs) == 1 {
		if format, ok := msgAndArgs[0].(string); ok {
			return format
		}
		return fmt.Sprintf("%+v", msgAndArgs[0])
	}
	if format, ok := msgAndArgs[0].(string); ok {
		return fmt.Sprintf(format, msgAndArgs[1:]...)
	}
	return ""
}

func fail(t TestingT, failureMessage string, msgAndArgs ...interface{}) bool {
	msg := messageFromMsgAndArgs(msgAndArgs...)
	if msg == "" {
		t.Errorf("%s", failureMessage)
	} else {
		t.Errorf("%s\nMessage: %s", failureMessage, msg)
	}
	return false
}

// diff returns a unified diff of the spew dumps of expected and actual,
// or "" for types where a line diff adds nothing over the inline values.
func diff(expected, actual interface{}) string {
	if expected == nil || actual == nil {
		return ""
	}
	et := reflect.TypeOf(expected)
	if et != reflect.TypeOf(actual) {
		return ""
	}
	switch et.Kind() {
	case reflect.Struct, reflect.Map, reflect.Slice, reflect.Array:
	default:
		return ""
	}
	e := spewConfig.Sdump(expected)
	a := spewConfig.Sdump(actual)
	d, _ := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(e),
		B:        difflib.SplitLines(a),
		FromFile: "Expected",
		ToFile:   "Actual",
		Context:  1,
	})
	if d == "" {
		return ""
	}
	return "\n\nDiff:\n" + d
}

func isNil(object interface{}) bool {
	if object == nil {
		return true
	}
	v := reflect.ValueOf(object)
	switch v.Kind() {
	case reflect.Chan, reflect.Func, reflect.Interface, reflect.Map,
		reflect.Ptr, reflect.Slice, reflect.UnsafePointer:
		return v.IsNil()
	}
	return false
}

// Equal asserts that two objects are equal.
//
//	assert.Equal(t, 123, i)
func Equal(t TestingT, expected, actual interface{}, msgAndArgs ...interface{}) bool {
	if ObjectsAreEqual(expected, actual) {
		return true
	}
	return fail(t, fmt.Sprintf("Not equal:\nexpected: %s\nactual  : %s%s",
		spewConfig.Sprintf("%#v", expected), spewConfig.Sprintf("%#v", actual),
		diff(expected, actual)), msgAndArgs...)
}

// NotEqual asserts that the specified values are NOT equal.
func NotEqual(t TestingT, expected, actual interface{}, msgAndArgs ...interface{}) bool {
	if !ObjectsAreEqual(expected, actual) {
		return true
	}
	return fail(t, fmt.Sprintf("Should not be equal: %s",
		spewConfig.Sprintf("%#v", actual)), msgAndArgs...)
}

// Nil asserts that the specified object is nil.
//
//	assert.Nil(t, err)
func Nil(t TestingT, object interface{}, msgAndArgs ...interface{}) bool {
	if isNil(object) {
		return true
	}
	return fail(t, fmt.Sprintf("Expected nil, but got: %s",
		spewConfig.Sprintf("%#v", object)), msgAndArgs...)
}

// NotNil asserts that the specified object is not nil.
func NotNil(t TestingT, object interface{}, msgAndArgs ...interface{}) bool {
	if !isNil(object) {
		return true
	}
	return fail(t, "Expected value not to be nil", msgAndArgs...)
}

// NoError asserts that a function returned no error (i.e. `nil`).
//
//	assert.NoError(t, err)
func NoError(t TestingT, err error, msgAndArgs ...interface{}) bool {
	if err == nil {
		return true
	}
	return fail(t, fmt.Sprintf("Received unexpected error:\n%+v", err), msgAndArgs...)
}

// Error asserts that a function returned an error (i.e. not `nil`).
func Error(t TestingT, err error, msgAndArgs ...interface{}) bool {
	if err != nil {
		return true
	}
	return fail(t, "An error is expected but got nil", msgAndArgs...)
}

// True asserts that the specified value is true.
func True(t TestingT, value bool, msgAndArgs ...interface{}) bool {
	if value {
		return true
	}
	return fail(t, "Should be true", msgAndArgs...)
}

// False asserts that the specified value is false.
func False(t TestingT, value bool, msgAndArgs ...interface{}) bool {
	if !value {
		return true
	}
	return fail(t, "Should be false", msgAndArgs...)
}

// Len asserts that the specified object has specific length.
// Len also fails if the object has a type that len() does not accept.
//
//	assert.Len(t, mySlice, 3)
func Len(t TestingT, object interface{}, length int, msgAndArgs ...interface{}) bool {
	v := reflect.ValueOf(object)
	switch v.Kind() {
	case reflect.Array, reflect.Chan, reflect.Map, reflect.Slice, reflect.String:
	default:
		return fail(t, fmt.Sprintf("\"%v\" could not be applied builtin len()", object), msgAndArgs...)
	}
	if v.Len() == length {
		return true
	}
	return fail(t, fmt.Sprintf("\"%v\" should have %d item(s), but has %d",
		object, length, v.Len()), msgAndArgs...)
}

// Panics asserts that the code inside the specified function panics.
//
//	assert.Panics(t, func(){ GoCrazy() })
func Panics(t TestingT, f func(), msgAndArgs ...interface{}) bool {
	didPanic := func() (panicked bool) {
		defer func() {
			if r := recover(); r != nil {
				panicked = true
			}
		}()
		f()
		return false
	}()
	if didPanic {
		return true
	}
	return fail(t, "func should panic", msgAndArgs...)
}
