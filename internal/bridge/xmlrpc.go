package bridge

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/kolo/xmlrpc"
)

// XMLRPC is the Caller speaking XML-RPC over HTTP to the bridge.
type XMLRPC struct {
	url        string
	httpClient *http.Client
}

// Compile-time assertion for Caller conformance
var _ Caller = (*XMLRPC)(nil)

// NewXMLRPC creates a caller for the endpoint at url. timeout bounds the whole
// HTTP exchange; zero means no limit beyond the request context.
func NewXMLRPC(url string, timeout time.Duration) *XMLRPC {
	return &XMLRPC{
		url: url,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Call encodes params as the single struct parameter of method and decodes
// the struct the bridge returns.
func (x *XMLRPC) Call(ctx context.Context, method string, params Params) (Result, error) {
	body, err := xmlrpc.EncodeMethodCall(method, map[string]any(params))
	if err != nil {
		return nil, &TransportError{Message: fmt.Sprintf("encode %s request: %v", method, err), Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, x.url, bytes.NewReader(body))
	if err != nil {
		return nil, &TransportError{Message: fmt.Sprintf("create request: %v", err), Err: err}
	}
	req.Header.Set("Content-Type", "text/xml")

	resp, err := x.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Message: err.Error(), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &TransportError{Code: resp.StatusCode, Message: fmt.Sprintf("unexpected HTTP status %s", resp.Status)}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Message: fmt.Sprintf("read response: %v", err), Err: err}
	}

	response := xmlrpc.Response(typeUntypedValues(data))
	if err := response.Err(); err != nil {
		return nil, faultFrom(err)
	}

	var out map[string]any
	if err := response.Unmarshal(&out); err != nil {
		return nil, &TransportError{Message: fmt.Sprintf("malformed response: %v", err), Err: err}
	}
	if out == nil {
		return nil, &TransportError{Message: "malformed response: empty struct"}
	}
	return Result(out), nil
}

// faultFrom converts the codec's fault into a *Fault. Anything else means
// the fault document itself could not be read.
func faultFrom(err error) error {
	var fe xmlrpc.FaultError
	if errors.As(err, &fe) {
		return &Fault{Code: fe.Code, String: fe.String}
	}
	var pfe *xmlrpc.FaultError
	if errors.As(err, &pfe) && pfe != nil {
		return &Fault{Code: pfe.Code, String: pfe.String}
	}
	return &TransportError{Message: fmt.Sprintf("malformed fault response: %v", err), Err: err}
}

// typeUntypedValues rewrites <value>text</value> as
// <value><string>text</string></value>. XML-RPC reads an untyped value as a
// string but the codec only decodes typed ones into interfaces. Documents the
// pre-pass cannot read are returned unchanged for the codec to reject.
func typeUntypedValues(data []byte) []byte {
	dec := xml.NewDecoder(bytes.NewReader(data))
	var buf bytes.Buffer
	enc := xml.NewEncoder(&buf)

	var (
		open bool
		text []byte
	)
	// flush writes whitespace held after a <value> that turned out typed.
	flush := func() error {
		if !open {
			return nil
		}
		open = false
		if len(text) == 0 {
			return nil
		}
		return enc.EncodeToken(xml.CharData(text))
	}

	for {
		tok, err := dec.RawToken()
		if err == io.EOF {
			break
		}
		if err != nil {
			return data
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if err := flush(); err != nil {
				return data
			}
			if err := enc.EncodeToken(t); err != nil {
				return data
			}
			if t.Name.Local == "value" {
				open, text = true, nil
			}
			continue
		case xml.CharData:
			if open {
				text = append(text, t...)
				continue
			}
		case xml.EndElement:
			if open && t.Name.Local == "value" {
				open = false
				str := xml.StartElement{Name: xml.Name{Local: "string"}}
				if err := enc.EncodeToken(str); err != nil {
					return data
				}
				if err := enc.EncodeToken(xml.CharData(text)); err != nil {
					return data
				}
				if err := enc.EncodeToken(str.End()); err != nil {
					return data
				}
			}
		}

		if err := flush(); err != nil {
			return data
		}
		if err := enc.EncodeToken(tok); err != nil {
			return data
		}
	}

	if err := enc.Flush(); err != nil {
		return data
	}
	return buf.Bytes()
}
