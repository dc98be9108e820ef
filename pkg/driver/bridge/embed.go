// pkg/driver/bridge/embed.go
package bridge

import (
	_ "embed"
	stdjson "encoding/json"

	jsoniter "github.com/json-iterator/go"
)

//go:embed inspection.js
var inspectionScriptSource string

// jsonRaw defers decoding of polymorphic verdict values.
type jsonRaw = stdjson.RawMessage

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// inspectionScript returns the page-side script installed before every
// bridge call. The script guards against double installation itself.
func inspectionScript() string {
	return inspectionScriptSource
}
