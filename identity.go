package graphmap

import (
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// IdentityKey normalizes an identity value to its canonical external string
// representation. Freshly constructed and previously loaded instances of the
// same entity must produce the same key, so comparison is by normalized
// value, never by in-memory reference.
//
// Supported values are the driver-native scalars (strings, integers, floats,
// booleans, byte slices), uuid.UUID, time.Time, and anything implementing
// fmt.Stringer. A nil or unsupported value returns ok=false.
func IdentityKey(v any) (string, bool) {
	switch v := v.(type) {
	case nil:
		return "", false
	case string:
		if v == "" {
			return "", false
		}
		return v, true
	case uuid.UUID:
		if v == uuid.Nil {
			return "", false
		}
		return v.String(), true
	case []byte:
		if len(v) == 0 {
			return "", false
		}
		return string(v), true
	case int:
		return strconv.FormatInt(int64(v), 10), true
	case int8:
		return strconv.FormatInt(int64(v), 10), true
	case int16:
		return strconv.FormatInt(int64(v), 10), true
	case int32:
		return strconv.FormatInt(int64(v), 10), true
	case int64:
		return strconv.FormatInt(v, 10), true
	case uint:
		return strconv.FormatUint(uint64(v), 10), true
	case uint8:
		return strconv.FormatUint(uint64(v), 10), true
	case uint16:
		return strconv.FormatUint(uint64(v), 10), true
	case uint32:
		return strconv.FormatUint(uint64(v), 10), true
	case uint64:
		return strconv.FormatUint(v, 10), true
	case float32:
		return strconv.FormatFloat(float64(v), 'g', -1, 32), true
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64), true
	case bool:
		return strconv.FormatBool(v), true
	case time.Time:
		return v.UTC().Format(time.RFC3339Nano), true
	case fmt.Stringer:
		s := v.String()
		return s, s != ""
	default:
		return "", false
	}
}
