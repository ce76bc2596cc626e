package utils

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/bytedance/sonic"
)

// Size limits (in bytes)
const (
	MaxJSONSize     = 1 * 1024 * 1024 // 1MB - maximum JSON payload size
	MaxManifestSize = 256 * 1024      // 256KB - application manifest size limit
)

// String length limits
const (
	MaxIDLength          = 128
	MaxNameLength        = 256
	MaxDescriptionLength = 2048
	MaxURLLength         = 2048
	MaxTagLength         = 32
	MaxTagCount          = 20
	MaxHeaderCount       = 32
)

// Window geometry limits
const (
	MaxWindowDimension = 16384
	MaxWindowOffset    = 65536
)

// Regular expressions for validation
var (
	// SafeIDPattern allows alphanumeric, hyphens, underscores
	SafeIDPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
	// HeaderNamePattern allows RFC 7230 token characters
	HeaderNamePattern = regexp.MustCompile("^[!#$%&'*+\\-.^_`|~0-9a-zA-Z]+$")
)

// JSONSizeValidator validates JSON size limits
type JSONSizeValidator struct {
	maxSize int
}

// NewJSONSizeValidator creates a new validator with the specified max size
func NewJSONSizeValidator(maxSize int) *JSONSizeValidator {
	return &JSONSizeValidator{maxSize: maxSize}
}

// DefaultJSONValidator returns a validator with the default 1MB limit
func DefaultJSONValidator() *JSONSizeValidator {
	return NewJSONSizeValidator(MaxJSONSize)
}

// ValidateSize checks if the data size is within limits
func (v *JSONSizeValidator) ValidateSize(data []byte) error {
	size := len(data)
	if size > v.maxSize {
		return fmt.Errorf("payload size %d bytes exceeds maximum %d bytes", size, v.maxSize)
	}
	return nil
}

// ValidateJSON validates both size and JSON structure
func (v *JSONSizeValidator) ValidateJSON(data []byte) error {
	if err := v.ValidateSize(data); err != nil {
		return err
	}

	if !sonic.Valid(data) {
		return fmt.Errorf("invalid JSON")
	}

	return nil
}

// ValidateString validates a string field with length and content checks
func ValidateString(value, fieldName string, minLen, maxLen int, required bool) error {
	if required && value == "" {
		return fmt.Errorf("%s is required", fieldName)
	}

	if value == "" && !required {
		return nil
	}

	length := utf8.RuneCountInString(value)
	if length < minLen {
		return fmt.Errorf("%s must be at least %d characters", fieldName, minLen)
	}
	if length > maxLen {
		return fmt.Errorf("%s must not exceed %d characters", fieldName, maxLen)
	}

	// Null bytes never belong in identifiers or paths
	if strings.Contains(value, "\x00") {
		return fmt.Errorf("%s contains invalid characters", fieldName)
	}

	return nil
}

// ValidateID validates an ID field
func ValidateID(id, fieldName string, required bool) error {
	if err := ValidateString(id, fieldName, 1, MaxIDLength, required); err != nil {
		return err
	}

	if id != "" && !SafeIDPattern.MatchString(id) {
		return fmt.Errorf("%s contains invalid characters (only alphanumeric, hyphens, and underscores allowed)", fieldName)
	}

	return nil
}

// ValidateName validates a name field
func ValidateName(name, fieldName string) error {
	return ValidateString(name, fieldName, 1, MaxNameLength, true)
}

// ValidateDescription validates a description field
func ValidateDescription(description, fieldName string, required bool) error {
	return ValidateString(description, fieldName, 0, MaxDescriptionLength, required)
}

// ValidateURL validates an absolute http(s) or file URL
func ValidateURL(raw, fieldName string, required bool) error {
	if err := ValidateString(raw, fieldName, 1, MaxURLLength, required); err != nil {
		return err
	}
	if raw == "" {
		return nil
	}

	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s is not a valid URL: %w", fieldName, err)
	}

	switch u.Scheme {
	case "http", "https":
		if u.Host == "" {
			return fmt.Errorf("%s must include a host", fieldName)
		}
	case "file":
		if u.Path == "" {
			return fmt.Errorf("%s must include a path", fieldName)
		}
	default:
		return fmt.Errorf("%s must use http, https or file scheme", fieldName)
	}

	return nil
}

// ValidateHeaders validates probe headers
func ValidateHeaders(headers map[string]string) error {
	if len(headers) > MaxHeaderCount {
		return fmt.Errorf("too many headers (maximum %d)", MaxHeaderCount)
	}

	for name, value := range headers {
		if !HeaderNamePattern.MatchString(name) {
			return fmt.Errorf("invalid header name %q", name)
		}
		if strings.ContainsAny(value, "\r\n\x00") {
			return fmt.Errorf("header %s contains invalid characters", name)
		}
	}

	return nil
}

// ValidateTags validates an array of tags
func ValidateTags(tags []string) error {
	if len(tags) > MaxTagCount {
		return fmt.Errorf("too many tags (maximum %d)", MaxTagCount)
	}

	for i, tag := range tags {
		if err := ValidateString(tag, fmt.Sprintf("tag[%d]", i), 1, MaxTagLength, false); err != nil {
			return err
		}
	}

	return nil
}

// ValidateWindowGeometry validates a reported window rectangle
func ValidateWindowGeometry(x, y, width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("window size must be positive, got %dx%d", width, height)
	}
	if width > MaxWindowDimension || height > MaxWindowDimension {
		return fmt.Errorf("window size %dx%d exceeds maximum %d", width, height, MaxWindowDimension)
	}
	if x < -MaxWindowOffset || x > MaxWindowOffset || y < -MaxWindowOffset || y > MaxWindowOffset {
		return fmt.Errorf("window position (%d,%d) out of range", x, y)
	}
	return nil
}
