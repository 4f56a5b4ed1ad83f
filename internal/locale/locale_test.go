package locale

import "testing"

func TestCatalogsAreComplete(t *testing.T) {
	en := catalogs["en"]
	for name, messages := range catalogs {
		for key := range en {
			if _, ok := messages[key]; !ok {
				t.Errorf("locale %s is missing key %s", name, key)
			}
		}
	}
}

func TestText(t *testing.T) {
	tests := []struct {
		locale string
		key    Key
		args   []any
		want   string
	}{
		{"en", UnknownAction, nil, "unknown action"},
		{"zh", UnknownAction, nil, "未知操作"},
		{"en", MissingParameter, []any{"conferenceName"}, "missing parameter: conferenceName"},
		{"zh", DuplicateConference, nil, "会议名称重复，创建失败"},
		{"en", MethodNotAllowed, []any{"cd", "POST"}, "action cd requires POST"},
		{"en", Key("no_such_key"), nil, "no_such_key"},
	}

	for _, tt := range tests {
		t.Run(tt.locale+"/"+string(tt.key), func(t *testing.T) {
			got := MustNew(tt.locale).Text(tt.key, tt.args...)
			if got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestNewUnknownLocale(t *testing.T) {
	if _, err := New("fr"); err == nil {
		t.Fatal("Expected error for unknown locale")
	}
}
