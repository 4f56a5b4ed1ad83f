// Package mockserver serves a bridge.Caller over XML-RPC, so the in-memory
// fake bridge can stand in for real conferencing hardware.
package mockserver

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/kolo/xmlrpc"
	"go.uber.org/zap"

	"github.com/purezhi/mcu/internal/bridge"
)

const maxBodyBytes = 1 << 20

// Server handles XML-RPC POST requests.
type Server struct {
	caller bridge.Caller
	logger *zap.Logger
}

// Compile-time assertion that Server implements http.Handler
var _ http.Handler = (*Server)(nil)

// New creates a server answering with caller.
func New(caller bridge.Caller) *Server {
	return &Server{caller: caller, logger: zap.NewNop()}
}

// SetLogger sets the request logger.
func (s *Server) SetLogger(logger *zap.Logger) {
	if logger != nil {
		s.logger = logger
	}
}

type methodCall struct {
	MethodName string `xml:"methodName"`
}

// ServeHTTP decodes one methodCall and writes its methodResponse.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	start := time.Now()
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		http.Error(w, "failed to read request", http.StatusBadRequest)
		return
	}

	method, params, err := decodeCall(body)
	if err != nil {
		s.logger.Warn("malformed call", zap.Error(err))
		http.Error(w, "malformed methodCall", http.StatusBadRequest)
		return
	}

	result, err := s.caller.Call(r.Context(), method, params)

	s.logger.Info("call processed",
		zap.String("method", method),
		zap.Duration("duration", time.Since(start)),
		zap.Error(err),
	)

	if err != nil {
		var fault *bridge.Fault
		if !errors.As(err, &fault) {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeXML(w, encodeFault(fault))
		return
	}

	out, err := encodeResult(result)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeXML(w, out)
}

func writeXML(w http.ResponseWriter, body []byte) {
	w.Header().Set("Content-Type", "text/xml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

// decodeCall reads the method name and the single struct parameter.
func decodeCall(body []byte) (string, bridge.Params, error) {
	var call methodCall
	if err := xml.Unmarshal(body, &call); err != nil {
		return "", nil, fmt.Errorf("decode methodCall: %w", err)
	}
	if call.MethodName == "" {
		return "", nil, fmt.Errorf("methodName is required")
	}

	params := bridge.Params{}
	if bytes.Contains(body, []byte("<param>")) {
		var raw map[string]any
		if err := xmlrpc.Response(body).Unmarshal(&raw); err != nil {
			return "", nil, fmt.Errorf("decode params: %w", err)
		}
		for k, v := range raw {
			params[k] = normalize(v)
		}
	}
	return call.MethodName, params, nil
}

// normalize maps decoded XML-RPC values back to the types the gateway sends.
func normalize(v any) any {
	switch val := v.(type) {
	case int64:
		return int(val)
	case []any:
		strs := make([]string, 0, len(val))
		for _, item := range val {
			s, ok := item.(string)
			if !ok {
				return val
			}
			strs = append(strs, s)
		}
		return strs
	default:
		return v
	}
}

func encodeResult(result bridge.Result) ([]byte, error) {
	value, err := encodeValue(map[string]any(result))
	if err != nil {
		return nil, err
	}
	var b bytes.Buffer
	b.WriteString(xml.Header)
	b.WriteString("<methodResponse><params><param>")
	b.Write(value)
	b.WriteString("</param></params></methodResponse>")
	return b.Bytes(), nil
}

func encodeFault(f *bridge.Fault) []byte {
	value, _ := encodeValue(xmlrpc.FaultError{Code: f.Code, String: f.String})
	var b bytes.Buffer
	b.WriteString(xml.Header)
	b.WriteString("<methodResponse><fault>")
	b.Write(value)
	b.WriteString("</fault></methodResponse>")
	return b.Bytes()
}

// encodeValue renders v as a single <value> element using the library's
// methodCall encoder.
func encodeValue(v any) ([]byte, error) {
	call, err := xmlrpc.EncodeMethodCall("value", v)
	if err != nil {
		return nil, err
	}
	start := bytes.Index(call, []byte("<param>"))
	end := bytes.LastIndex(call, []byte("</param>"))
	if start < 0 || end < start {
		return nil, fmt.Errorf("unexpected encoder output")
	}
	return call[start+len("<param>") : end], nil
}
