package interfaces

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// LocalUserID identifies a user in the calling application's own system.
// It is only ever used as a request path segment towards the platform.
type LocalUserID string

// NewLocalUserID converts a string, a fmt.Stringer or any integer into a
// LocalUserID.
func NewLocalUserID(v any) (LocalUserID, error) {
	var s string
	switch id := v.(type) {
	case LocalUserID:
		s = string(id)
	case string:
		s = id
	case fmt.Stringer:
		s = id.String()
	case int:
		s = strconv.FormatInt(int64(id), 10)
	case int8:
		s = strconv.FormatInt(int64(id), 10)
	case int16:
		s = strconv.FormatInt(int64(id), 10)
	case int32:
		s = strconv.FormatInt(int64(id), 10)
	case int64:
		s = strconv.FormatInt(id, 10)
	case uint:
		s = strconv.FormatUint(uint64(id), 10)
	case uint8:
		s = strconv.FormatUint(uint64(id), 10)
	case uint16:
		s = strconv.FormatUint(uint64(id), 10)
	case uint32:
		s = strconv.FormatUint(uint64(id), 10)
	case uint64:
		s = strconv.FormatUint(id, 10)
	default:
		return "", fmt.Errorf("%w: unsupported type %T", ErrInvalidUserID, v)
	}

	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("%w: empty identifier", ErrInvalidUserID)
	}
	return LocalUserID(s), nil
}

func (id LocalUserID) String() string {
	return string(id)
}

// PathSegment returns the identifier escaped for use as a single URL path segment.
func (id LocalUserID) PathSegment() string {
	return url.PathEscape(string(id))
}
