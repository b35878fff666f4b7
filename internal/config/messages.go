package config

import (
	"fmt"
	"strings"
)

const (
	errRequiredEnvNotSetFmt = "required environment variable %s is not set"
	errUnsupportedValueFmt  = "%s=%q is not supported (expected one of: %s)"
)

type messageBuilders struct {
	requiredEnvNotSet func(string) string
	unsupportedValue  func(key, value string, allowed ...string) string
}

func newMessageBuilders() messageBuilders {
	return messageBuilders{
		requiredEnvNotSet: func(key string) string {
			return fmt.Sprintf(errRequiredEnvNotSetFmt, key)
		},
		unsupportedValue: func(key, value string, allowed ...string) string {
			return fmt.Sprintf(errUnsupportedValueFmt, key, value, strings.Join(allowed, ", "))
		},
	}
}

var messages = newMessageBuilders()
