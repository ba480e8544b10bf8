package wrapper

import (
	"context"
	"strconv"
	"sync"

	"github.com/pkg/errors"

	"github.com/code-payments/pnft-transfer/pkg/config"
)

// ErrUnsupportedConversion indicates the source produced a value of a type
// the wrapper can't convert.
var ErrUnsupportedConversion = errors.New("config: wrapper conversion from source type not implemented")

// value adapts an untyped source into a typed config. The default is used
// while the source has no value, and the last good value is kept when the
// source errors.
type value[T any] struct {
	source       config.Config
	defaultValue T
	convert      func(interface{}) (T, error)

	stateMu   sync.RWMutex
	lastValue T
}

func newValue[T any](source config.Config, defaultValue T, convert func(interface{}) (T, error)) *value[T] {
	return &value[T]{
		source:       source,
		defaultValue: defaultValue,
		convert:      convert,
		lastValue:    defaultValue,
	}
}

func (v *value[T]) GetSafe(ctx context.Context) (T, error) {
	raw, err := v.source.Get(ctx)

	v.stateMu.Lock()
	defer v.stateMu.Unlock()

	if errors.Is(err, config.ErrNoValue) {
		v.lastValue = v.defaultValue
		return v.defaultValue, nil
	} else if err != nil {
		return v.lastValue, err
	}

	converted, err := v.convert(raw)
	if err != nil {
		return v.lastValue, err
	}
	v.lastValue = converted
	return converted, nil
}

func (v *value[T]) Get(ctx context.Context) T {
	val, _ := v.GetSafe(ctx)
	return val
}

func (v *value[T]) Shutdown() {
	v.source.Shutdown()
}

// NewBoolConfig returns a bool config reading from source. Byte values,
// such as those from env, are parsed with strconv.ParseBool.
func NewBoolConfig(source config.Config, defaultValue bool) config.Bool {
	return newValue(source, defaultValue, func(raw interface{}) (bool, error) {
		switch raw := raw.(type) {
		case bool:
			return raw, nil
		case []byte:
			return strconv.ParseBool(string(raw))
		case string:
			return strconv.ParseBool(raw)
		default:
			return false, ErrUnsupportedConversion
		}
	})
}

// NewStringConfig returns a string config reading from source.
func NewStringConfig(source config.Config, defaultValue string) config.String {
	return newValue(source, defaultValue, func(raw interface{}) (string, error) {
		switch raw := raw.(type) {
		case string:
			return raw, nil
		case []byte:
			return string(raw), nil
		default:
			return "", ErrUnsupportedConversion
		}
	})
}
