package jsonify

import (
	"sync"

	j "github.com/goccy/go-json"
)

// ScalarDriver encodes primitive leaves (strings, numbers, booleans, null,
// and opaque values such as json.Marshaler implementors) into JSON text via
// a pluggable SPI. The default implementation is based on goccy/go-json and
// may be swapped with SetScalarDriver.
type ScalarDriver interface {
	// AppendScalar appends the JSON encoding of v to dst.
	AppendScalar(dst []byte, v any) ([]byte, error)
	Name() string
}

var (
	scalarDriverMu      sync.RWMutex
	currentScalarDriver ScalarDriver = goJSONDriver{}
)

// SetScalarDriver replaces the global scalar driver; nil values are ignored.
// Streams created afterwards use the new driver.
func SetScalarDriver(d ScalarDriver) {
	if d == nil {
		return
	}
	scalarDriverMu.Lock()
	currentScalarDriver = d
	scalarDriverMu.Unlock()
}

// UseDefaultScalarDriver restores the default go-json-backed driver.
func UseDefaultScalarDriver() {
	scalarDriverMu.Lock()
	currentScalarDriver = goJSONDriver{}
	scalarDriverMu.Unlock()
}

func getScalarDriver() ScalarDriver {
	scalarDriverMu.RLock()
	d := currentScalarDriver
	scalarDriverMu.RUnlock()
	return d
}

// goJSONDriver wraps the goccy/go-json implementation.
type goJSONDriver struct{}

func (goJSONDriver) AppendScalar(dst []byte, v any) ([]byte, error) {
	b, err := j.Marshal(v)
	if err != nil {
		return dst, err
	}
	return append(dst, b...), nil
}

func (goJSONDriver) Name() string { return "go-json" }
