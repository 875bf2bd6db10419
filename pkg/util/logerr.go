package util

import (
	log "github.com/sirupsen/logrus"
)

// LogErr logs the error with the message and arguments if the error is not nil.
// It returns true if the error is not nil.
// Examples:
// LogErr(err)
// LogErr(err, "error message")
// LogErr(err, "error message %s", "with argument")
func LogErr(err error, msgAndArgs ...interface{}) bool {
	if err == nil {
		return false
	}

	entry := log.WithError(err)
	switch len(msgAndArgs) {
	case 0:
		entry.Error(err.Error())
	case 1:
		entry.Error(msgAndArgs[0])
	default:
		entry.Errorf(msgAndArgs[0].(string), msgAndArgs[1:]...)
	}

	return true
}
