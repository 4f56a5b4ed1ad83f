// Package locale holds the user-facing strings returned in the gateway's
// JSON envelope.
//
// Two catalogs ship with the gateway: "en" (default) and "zh", which carries the
// wording operators of the bridge UI were already used to.
package locale

import (
	"fmt"
	"sort"
)

// Key identifies a catalog message.
type Key string

// Catalog keys.
const (
	UnknownAction        Key = "unknown_action"
	MethodNotAllowed     Key = "method_not_allowed"
	MissingParameter     Key = "missing_parameter"
	InvalidParameter     Key = "invalid_parameter"
	InvalidLayout        Key = "invalid_layout"
	DuplicateConference  Key = "duplicate_conference"
	ConferenceNotFound   Key = "conference_not_found"
	ProtocolNotSupported Key = "protocol_not_supported"
	CreateFailed         Key = "create_failed"
	NoValidData          Key = "no_valid_data"
	AuthRequired         Key = "auth_required"
	Forbidden            Key = "forbidden"
	InternalError        Key = "internal_error"
)

// Default is the locale used when none is configured.
const Default = "en"

var catalogs = map[string]map[Key]string{
	"en": {
		UnknownAction:        "unknown action",
		MethodNotAllowed:     "action %s requires %s",
		MissingParameter:     "missing parameter: %s",
		InvalidParameter:     "invalid parameter: %s",
		InvalidLayout:        "invalid layout type",
		DuplicateConference:  "duplicate conference name, creation failed",
		ConferenceNotFound:   "conference does not exist",
		ProtocolNotSupported: "participant protocol or client is not supported",
		CreateFailed:         "conference creation failed",
		NoValidData:          "no valid data retrieved",
		AuthRequired:         "authentication required",
		Forbidden:            "insufficient permissions",
		InternalError:        "internal error",
	},
	"zh": {
		UnknownAction:        "未知操作",
		MethodNotAllowed:     "操作 %s 需要使用 %s 请求",
		MissingParameter:     "缺少参数：%s",
		InvalidParameter:     "无效的参数：%s",
		InvalidLayout:        "无效的布局类型",
		DuplicateConference:  "会议名称重复，创建失败",
		ConferenceNotFound:   "会议不存在",
		ProtocolNotSupported: "用户使用协议或者客户端不被支持",
		CreateFailed:         "会议创建失败",
		NoValidData:          "未取到有效数据",
		AuthRequired:         "需要身份认证",
		Forbidden:            "权限不足",
		InternalError:        "内部错误",
	},
}

// Catalog renders messages for one locale.
type Catalog struct {
	name     string
	messages map[Key]string
}

// New returns the catalog for name. Unknown names are an error so that a
// misconfigured locale is caught at startup.
func New(name string) (*Catalog, error) {
	messages, ok := catalogs[name]
	if !ok {
		return nil, fmt.Errorf("unknown locale %q (available: %v)", name, Available())
	}
	return &Catalog{name: name, messages: messages}, nil
}

// MustNew is New for package-level and test use.
func MustNew(name string) *Catalog {
	c, err := New(name)
	if err != nil {
		panic(err)
	}
	return c
}

// Available lists the shipped locales.
func Available() []string {
	names := make([]string, 0, len(catalogs))
	for name := range catalogs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Name returns the locale name.
func (c *Catalog) Name() string {
	return c.name
}

// Text renders key with optional fmt arguments. A key missing from the
// catalog falls back to the English text.
func (c *Catalog) Text(key Key, args ...any) string {
	format, ok := c.messages[key]
	if !ok {
		format, ok = catalogs[Default][key]
		if !ok {
			return string(key)
		}
	}
	if len(args) == 0 {
		return format
	}
	return fmt.Sprintf(format, args...)
}
