package common

import (
	"reflect"
	"strings"
)

// RequestName strips the pointer and package prefix from a request type.
// "*commands.BuildStationCommand" becomes "BuildStationCommand".
func RequestName(request Request) string {
	if request == nil {
		return "UnknownRequest"
	}

	fullName := strings.TrimPrefix(reflect.TypeOf(request).String(), "*")
	if idx := strings.LastIndex(fullName, "."); idx >= 0 {
		return fullName[idx+1:]
	}
	return fullName
}
