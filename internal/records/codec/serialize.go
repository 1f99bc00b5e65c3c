package codec

import (
	"encoding/binary"
	"math"
	"time"

	apperrors "github.com/mrlynn/securehealth-sub006/internal/errors"
)

// Value serialization tags. Values are serialized to a canonical tagged
// binary form before encryption so that deterministic ciphertext is stable:
// the same value always produces the same bytes, with no map ordering or
// locale effects.
const (
	tagString      byte = 0x01
	tagStringSlice byte = 0x02
	tagBool        byte = 0x03
	tagInt64       byte = 0x04
	tagFloat64     byte = 0x05
	tagTime        byte = 0x06
)

// ErrUnsupportedValueType indicates a field value of a type the codec cannot
// serialize.
var ErrUnsupportedValueType = apperrors.Wrap(apperrors.ErrInvalidInput, "unsupported field value type")

// serializeValue encodes a field value to its canonical binary form.
func serializeValue(value any) ([]byte, error) {
	switch v := value.(type) {
	case string:
		out := make([]byte, 0, 1+len(v))
		out = append(out, tagString)
		return append(out, v...), nil
	case []string:
		out := []byte{tagStringSlice}
		out = binary.AppendUvarint(out, uint64(len(v)))
		for _, item := range v {
			out = binary.AppendUvarint(out, uint64(len(item)))
			out = append(out, item...)
		}
		return out, nil
	case bool:
		if v {
			return []byte{tagBool, 1}, nil
		}
		return []byte{tagBool, 0}, nil
	case int:
		return serializeInt64(int64(v)), nil
	case int32:
		return serializeInt64(int64(v)), nil
	case int64:
		return serializeInt64(v), nil
	case float64:
		out := make([]byte, 9)
		out[0] = tagFloat64
		binary.BigEndian.PutUint64(out[1:], math.Float64bits(v))
		return out, nil
	case time.Time:
		out := make([]byte, 9)
		out[0] = tagTime
		binary.BigEndian.PutUint64(out[1:], uint64(v.UTC().UnixNano()))
		return out, nil
	default:
		return nil, ErrUnsupportedValueType
	}
}

func serializeInt64(v int64) []byte {
	out := make([]byte, 9)
	out[0] = tagInt64
	binary.BigEndian.PutUint64(out[1:], uint64(v))
	return out
}

// deserializeValue decodes a canonical binary form back to a field value.
// Integers come back as int64 and times as UTC instants.
func deserializeValue(data []byte) (any, error) {
	if len(data) == 0 {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "empty serialized value")
	}

	payload := data[1:]
	switch data[0] {
	case tagString:
		return string(payload), nil
	case tagStringSlice:
		count, n := binary.Uvarint(payload)
		if n <= 0 {
			return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "malformed serialized slice")
		}
		payload = payload[n:]
		items := make([]string, 0, count)
		for range count {
			itemLen, n := binary.Uvarint(payload)
			if n <= 0 || uint64(len(payload)-n) < itemLen {
				return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "malformed serialized slice")
			}
			payload = payload[n:]
			items = append(items, string(payload[:itemLen]))
			payload = payload[itemLen:]
		}
		if len(payload) != 0 {
			return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "malformed serialized slice")
		}
		return items, nil
	case tagBool:
		if len(payload) != 1 || payload[0] > 1 {
			return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "malformed serialized bool")
		}
		return payload[0] == 1, nil
	case tagInt64:
		if len(payload) != 8 {
			return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "malformed serialized integer")
		}
		return int64(binary.BigEndian.Uint64(payload)), nil
	case tagFloat64:
		if len(payload) != 8 {
			return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "malformed serialized float")
		}
		return math.Float64frombits(binary.BigEndian.Uint64(payload)), nil
	case tagTime:
		if len(payload) != 8 {
			return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "malformed serialized time")
		}
		return time.Unix(0, int64(binary.BigEndian.Uint64(payload))).UTC(), nil
	default:
		return nil, ErrUnsupportedValueType
	}
}
