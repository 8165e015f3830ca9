// Package chk includes some very basic utilities for invariant checking.
//
// A failed check is a programmer error, never a recoverable condition: every
// function here panics instead of returning an error. Callers use it for
// preconditions such as asking a column for the unencoded layer or handing a
// gadget a path of the wrong arity.
//
// Format arguments are only rendered when the check fails, so True(ok, "foo")
// stays allocation free in tight loops.
package chk

import "fmt"

// True panics if a boolean condition is not true.
func True(cond bool, formatAndArgs ...interface{}) {
	if cond {
		return
	}
	if len(formatAndArgs) == 0 {
		panic("invariant violation")
	}
	panic(args(formatAndArgs[0], formatAndArgs[1:]...))
}

// False panics is a boolean condition is true.
func False(cond bool, formatAndArgs ...interface{}) {
	True(!cond, formatAndArgs...)
}

// Nil panics if a thing is not nil.
func Nil(thing interface{}, formatAndArgs ...interface{}) {
	True(thing == nil, formatAndArgs...)
}

// NotNil panics if a thing is nil.
func NotNil(thing interface{}, formatAndArgs ...interface{}) {
	True(thing != nil, formatAndArgs...)
}

// Equal panics if two values are not equal in the sense of Go's == operator.
func Equal(expected, actual interface{}, formatAndArgs ...interface{}) {
	if expected == actual {
		return
	}
	msg := fmt.Sprintf("expected: %v - actual: %v", expected, actual)
	if len(formatAndArgs) > 0 {
		msg += " - " + args(formatAndArgs[0], formatAndArgs[1:]...)
	}
	panic(msg)
}

func args(format interface{}, args ...interface{}) string {
	formatStr, ok := format.(string)
	if !ok {
		formatStr = fmt.Sprintf("%v", format)
	}
	if len(args) == 0 {
		return formatStr
	}
	return fmt.Sprintf(formatStr, args...)
}
