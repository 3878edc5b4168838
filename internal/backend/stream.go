package backend

import (
	"errors"
	"io"
	"net/http"
)

// Sensitivity run defaults.
const (
	DefaultSensitivityConfigFile = "config/sensitivity_config.json"
	DefaultSensitivityPrefix     = "sensitivity_results"
)

const relayBufferSize = 4 * 1024

// Relay copies src to dst, flushing after every read so events reach the client as
// they arrive. It returns when src ends or a write fails.
func Relay(dst io.Writer, src io.Reader) (int64, error) {
	flusher, _ := dst.(http.Flusher)
	buf := make([]byte, relayBufferSize)
	var written int64
	for {
		n, rerr := src.Read(buf)
		if n > 0 {
			w, werr := dst.Write(buf[:n])
			written += int64(w)
			if werr != nil {
				return written, werr
			}
			if flusher != nil {
				flusher.Flush()
			}
		}
		if errors.Is(rerr, io.EOF) {
			return written, nil
		}
		if rerr != nil {
			return written, rerr
		}
	}
}

// SensitivityRequest shapes a UI request for the sensitivity stream. An inline config
// wins over a config file; without either the default file is used.
func SensitivityRequest(body map[string]any) map[string]any {
	out := map[string]any{}

	prefix, _ := body["prefix"].(string)
	if prefix == "" {
		prefix = DefaultSensitivityPrefix
	}

	switch {
	case truthy(body["config"]):
		out["config"] = body["config"]
	case truthy(body["config_file"]):
		out["config_file"] = body["config_file"]
	default:
		out["config_file"] = DefaultSensitivityConfigFile
	}
	out["prefix"] = prefix

	if truthy(body["portfolio"]) {
		out["portfolio"] = body["portfolio"]
	}
	return out
}

func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case string:
		return t != ""
	case bool:
		return t
	case float64:
		return t != 0
	default:
		return true
	}
}
