package fault

import (
	"errors"
	"strings"

	"github.com/purezhi/mcu/internal/action"
	"github.com/purezhi/mcu/internal/bridge"
	"github.com/purezhi/mcu/internal/locale"
	"github.com/purezhi/mcu/internal/params"
)

// Rule overrides the verbatim message of a fault raised by one action.
type Rule struct {
	Action   string
	Contains string
	Key      locale.Key
}

// DefaultRules are the bridge wordings callers get a friendlier message for.
var DefaultRules = []Rule{
	{Action: action.ConferenceCreate, Contains: "conference already present", Key: locale.DuplicateConference},
	{Action: action.ConferenceEnd, Contains: "not found", Key: locale.ConferenceNotFound},
	{Action: action.ParticipantAdd, Contains: "not supported", Key: locale.ProtocolNotSupported},
}

// Translator renders errors through a locale catalog. It is safe for
// concurrent use.
type Translator struct {
	catalog *locale.Catalog
	rules   []Rule
}

// NewTranslator creates a translator with DefaultRules.
func NewTranslator(catalog *locale.Catalog) *Translator {
	return NewTranslatorWithRules(catalog, DefaultRules)
}

// NewTranslatorWithRules creates a translator with a custom rule table.
func NewTranslatorWithRules(catalog *locale.Catalog, rules []Rule) *Translator {
	if catalog == nil {
		catalog = locale.MustNew(locale.Default)
	}
	r := make([]Rule, len(rules))
	copy(r, rules)
	return &Translator{catalog: catalog, rules: r}
}

// Catalog returns the translator's catalog.
func (t *Translator) Catalog() *locale.Catalog {
	return t.catalog
}

// Text renders a catalog key.
func (t *Translator) Text(key locale.Key, args ...any) string {
	return t.catalog.Text(key, args...)
}

// Message returns the caller-facing message for err raised while handling
// actionCode.
func (t *Translator) Message(actionCode string, err error) string {
	if err == nil {
		return ""
	}

	var paramErr *params.Error
	if errors.As(err, &paramErr) {
		return paramErr.Message(t.catalog)
	}

	var methodErr *action.MethodError
	if errors.As(err, &methodErr) {
		return t.catalog.Text(locale.MethodNotAllowed, methodErr.Code, methodErr.Verb)
	}

	if errors.Is(err, action.ErrUnknownAction) {
		return t.catalog.Text(locale.UnknownAction)
	}

	if f, ok := bridge.IsFault(err); ok {
		return t.faultMessage(actionCode, f)
	}

	var transportErr *bridge.TransportError
	if errors.As(err, &transportErr) {
		return transportErr.Error()
	}

	if errors.Is(err, bridge.ErrUnsuccessful) {
		return t.Unsuccessful(actionCode)
	}

	return t.catalog.Text(locale.InternalError)
}

// Unsuccessful returns the default failure message of an action.
func (t *Translator) Unsuccessful(actionCode string) string {
	if actionCode == action.ConferenceCreate {
		return t.catalog.Text(locale.CreateFailed)
	}
	return t.catalog.Text(locale.NoValidData)
}

func (t *Translator) faultMessage(actionCode string, f *bridge.Fault) string {
	for _, rule := range t.rules {
		if rule.Action == actionCode && strings.Contains(f.String, rule.Contains) {
			return t.catalog.Text(rule.Key)
		}
	}
	return f.Error()
}
