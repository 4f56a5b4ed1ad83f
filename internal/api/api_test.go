package api

import (
	"context"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/golang-jwt/jwt/v5"

	"github.com/purezhi/mcu/internal/action"
	"github.com/purezhi/mcu/internal/auth"
	"github.com/purezhi/mcu/internal/bridge"
	"github.com/purezhi/mcu/internal/bridge/fake"
	"github.com/purezhi/mcu/internal/command"
	"github.com/purezhi/mcu/internal/fault"
	"github.com/purezhi/mcu/internal/locale"
	"github.com/purezhi/mcu/internal/metrics"
	"github.com/purezhi/mcu/internal/params"
)

const testSecret = "gateway-test-secret"

func newTestServer(t *testing.T, fb *fake.Bridge) *Server {
	t.Helper()
	client := bridge.NewClient(fb, bridge.Credentials{}, "")
	translator := fault.NewTranslator(locale.MustNew("en"))
	dispatcher := command.NewDispatcher(client, translator)
	return NewServer(dispatcher, action.NewRouter(), translator, 5*time.Second, 5*time.Second, 5*time.Second)
}

func do(t *testing.T, h http.Handler, method, target string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, target, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json; charset=utf-8" {
		t.Errorf("Expected JSON content type, got %q", ct)
	}
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("Failed to decode body %q: %v", w.Body.String(), err)
	}
	return body
}

func expectFailure(t *testing.T, body map[string]any, msg string) {
	t.Helper()
	if body["success"] != false {
		t.Errorf("Expected success false, got %v", body["success"])
	}
	if body["msg"] != msg {
		t.Errorf("Expected msg %q, got %q", msg, body["msg"])
	}
}

func TestGatewayConferenceFlow(t *testing.T) {
	fb := fake.New()
	h := newTestServer(t, fb).Handler()

	body := decode(t, do(t, h, http.MethodGet, "/?action=cc&conferenceName=weekly&mainPin=1234", nil))
	if body["success"] != true {
		t.Fatalf("Expected create to succeed, got %v", body)
	}
	if body["conferenceId"] != "1001" {
		t.Errorf("Expected conferenceId 1001, got %v", body["conferenceId"])
	}

	body = decode(t, do(t, h, http.MethodGet, "/serv.php?action=cl", nil))
	list, ok := body["conferences"].([]any)
	if !ok || len(list) != 1 {
		t.Fatalf("Expected one conference, got %v", body["conferences"])
	}

	body = decode(t, do(t, h, http.MethodGet, "/?action=cc&conferenceName=weekly", nil))
	expectFailure(t, body, "duplicate conference name, creation failed")

	body = decode(t, do(t, h, http.MethodGet, "/?action=ce&conferenceName=weekly", nil))
	if body["success"] != true {
		t.Errorf("Expected end to succeed, got %v", body)
	}
	if _, ok := body["msg"]; ok {
		t.Errorf("Expected no msg on end, got %v", body["msg"])
	}
	if fb.HasConference("weekly") {
		t.Error("Expected conference to be gone")
	}

	body = decode(t, do(t, h, http.MethodGet, "/?action=ce&conferenceName=weekly", nil))
	expectFailure(t, body, "conference does not exist")
}

func TestGatewayLayoutUsesFormBody(t *testing.T) {
	fb := fake.New()
	fb.WithConference("weekly")
	h := newTestServer(t, fb).Handler()

	form := url.Values{
		"factoryConferenceId":         {"weekly"},
		"customLayoutEnabled":         {"true"},
		"newParticipantsCustomLayout": {"0"},
		"customLayout":                {"5"},
	}
	body := decode(t, do(t, h, http.MethodPost, "/?action=cd", form))
	if body["success"] != true {
		t.Fatalf("Expected layout change to succeed, got %v", body)
	}
	if _, ok := body["result"]; !ok {
		t.Error("Expected result in payload")
	}
	if layout, _ := fb.Layout("weekly"); layout != 5 {
		t.Errorf("Expected layout 5, got %d", layout)
	}

	// Parameters in the query string are not read for POST actions.
	body = decode(t, do(t, h, http.MethodPost, "/?action=cd&factoryConferenceId=weekly", url.Values{}))
	expectFailure(t, body, "missing parameter: factoryConferenceId")

	body = decode(t, do(t, h, http.MethodGet, "/?action=cd", nil))
	expectFailure(t, body, "action cd requires POST")
}

func TestGatewayLayoutUsesMultipartBody(t *testing.T) {
	fb := fake.New()
	fb.WithConference("weekly")
	h := newTestServer(t, fb).Handler()

	var buf strings.Builder
	mw := multipart.NewWriter(&buf)
	for _, field := range [][2]string{
		{"factoryConferenceId", "weekly"},
		{"customLayoutEnabled", "1"},
		{"newParticipantsCustomLayout", "1"},
		{"customLayout", "2"},
	} {
		if err := mw.WriteField(field[0], field[1]); err != nil {
			t.Fatalf("Failed to write field: %v", err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("Failed to close multipart writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/serv.php?action=cd", strings.NewReader(buf.String()))
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	body := decode(t, w)
	if body["success"] != true {
		t.Fatalf("Expected layout change to succeed, got %v", body)
	}
	if layout, _ := fb.Layout("weekly"); layout != 2 {
		t.Errorf("Expected layout 2, got %d", layout)
	}

	// A multipart body that cannot be read is a parameter error.
	req = httptest.NewRequest(http.MethodPost, "/serv.php?action=cd", strings.NewReader("garbage"))
	req.Header.Set("Content-Type", "multipart/form-data; boundary=missing")
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	expectFailure(t, decode(t, w), "invalid parameter: body")
}

func TestGatewayParticipants(t *testing.T) {
	fb := fake.New()
	id := fb.WithConference("weekly")
	fb.WithParticipant("weekly", "alice", "sip")
	h := newTestServer(t, fb).Handler()

	body := decode(t, do(t, h, http.MethodGet, "/?action=pl&factoryConferenceIds="+id, nil))
	list, ok := body["participants"].([]any)
	if !ok || len(list) != 1 {
		t.Fatalf("Expected one participant, got %v", body["participants"])
	}

	tests := []struct {
		name   string
		query  string
		expect string
	}{
		{"add", "action=pc&conferenceName=weekly&participantName=bob&address=10.0.0.2&participantProtocol=H.323", ""},
		{"mute audio", "action=pa&conferenceName=weekly&participantName=alice&audioRxMuted=1&participantProtocol=sip", ""},
		{"mute video", "action=pv&conferenceName=weekly&participantName=alice&videoRxMuted=false&participantProtocol=sip", ""},
		{"rename", "action=pn&conferenceName=weekly&participantName=alice&displayNameOverrideStatus=1&displayNameOverrideValue=Room&participantProtocol=sip", ""},
		{"message", "action=ps&conferenceName=weekly&participantName=alice&message=hello&participantProtocol=sip", ""},
		{"remove", "action=pr&conferenceName=weekly&participantName=alice&participantProtocol=sip", ""},
		{"bad protocol", "action=pc&conferenceName=weekly&participantName=x&address=a&participantProtocol=skype", "participant protocol or client is not supported"},
		{"unknown conference", "action=pc&conferenceName=nope&participantName=x&address=a&participantProtocol=sip", "4 conference not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := decode(t, do(t, h, http.MethodGet, "/?"+tt.query, nil))
			if tt.expect != "" {
				expectFailure(t, body, tt.expect)
				return
			}
			if body["success"] != true {
				t.Errorf("Expected success, got %v", body)
			}
			if _, ok := body["msg"]; !ok {
				t.Error("Expected msg payload")
			}
		})
	}
}

func TestGatewayRequestErrors(t *testing.T) {
	h := newTestServer(t, fake.New()).Handler()

	tests := []struct {
		name   string
		method string
		target string
		expect string
	}{
		{"missing action", http.MethodGet, "/", "unknown action"},
		{"unknown action", http.MethodGet, "/?action=zz", "unknown action"},
		{"wrong verb", http.MethodPost, "/?action=cl", "action cl requires GET"},
		{"missing parameter", http.MethodGet, "/?action=ce", "missing parameter: conferenceName"},
		{"blank parameter", http.MethodGet, "/?action=ce&conferenceName=%20", "missing parameter: conferenceName"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var form url.Values
			if tt.method == http.MethodPost {
				form = url.Values{}
			}
			expectFailure(t, decode(t, do(t, h, tt.method, tt.target, form)), tt.expect)
		})
	}
}

func TestGatewayUnsuccessfulStatus(t *testing.T) {
	fb := fake.New()
	fb.SetStatus("operation pending")
	h := newTestServer(t, fb).Handler()

	expectFailure(t, decode(t, do(t, h, http.MethodGet, "/?action=cc&conferenceName=a", nil)), "conference creation failed")
	expectFailure(t, decode(t, do(t, h, http.MethodGet, "/?action=ce&conferenceName=a", nil)), "no valid data retrieved")
}

func TestUnknownPathNotFound(t *testing.T) {
	h := newTestServer(t, fake.New()).Handler()

	w := do(t, h, http.MethodGet, "/favicon.ico", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", w.Code)
	}
}

func TestRequestID(t *testing.T) {
	h := newTestServer(t, fake.New()).Handler()

	w := do(t, h, http.MethodGet, "/?action=cl", nil)
	if w.Header().Get(HeaderRequestID) == "" {
		t.Error("Expected generated request ID")
	}

	req := httptest.NewRequest(http.MethodGet, "/?action=cl", nil)
	req.Header.Set(HeaderRequestID, "abc-123")
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if got := w.Header().Get(HeaderRequestID); got != "abc-123" {
		t.Errorf("Expected request ID abc-123, got %q", got)
	}
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, fake.New())
	s.SetVersion("1.2.3")

	body := decode(t, do(t, s.Handler(), http.MethodGet, "/health", nil))
	if body["status"] != "ok" {
		t.Errorf("Expected status ok, got %v", body["status"])
	}
	if body["version"] != "1.2.3" {
		t.Errorf("Expected version 1.2.3, got %v", body["version"])
	}
}

type panicDispatcher struct{}

func (panicDispatcher) Dispatch(_ context.Context, _ *action.Descriptor, _ params.Values) (command.Payload, error) {
	panic("boom")
}

func TestPanicRecovery(t *testing.T) {
	translator := fault.NewTranslator(locale.MustNew("en"))
	s := NewServer(panicDispatcher{}, action.NewRouter(), translator, time.Second, time.Second, time.Second)

	expectFailure(t, decode(t, do(t, s.Handler(), http.MethodGet, "/?action=cl", nil)), "internal error")
}

func TestMetricsRoute(t *testing.T) {
	s := newTestServer(t, fake.New())
	s.SetMetrics(metrics.New())
	h := s.Handler()

	do(t, h, http.MethodGet, "/?action=cl", nil)

	w := do(t, h, http.MethodGet, "/metrics", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `mcugw_http_requests_total{method="GET",path="/",status="200"} 1`) {
		t.Errorf("Expected request counter in metrics output, got:\n%s", w.Body.String())
	}
}

func TestCORS(t *testing.T) {
	s := newTestServer(t, fake.New())
	s.SetCORSOrigins([]string{"https://console.example.com"})

	req := httptest.NewRequest(http.MethodGet, "/?action=cl", nil)
	req.Header.Set("Origin", "https://console.example.com")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://console.example.com" {
		t.Errorf("Expected allowed origin header, got %q", got)
	}
}

func signToken(t *testing.T, scopes ...string) string {
	t.Helper()
	list := make([]any, len(scopes))
	for i, s := range scopes {
		list[i] = s
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":    "operator",
		"scopes": list,
		"exp":    time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("Failed to sign token: %v", err)
	}
	return token
}

func TestGatewayAuth(t *testing.T) {
	verifier, err := auth.NewVerifier(auth.VerifierConfig{Algorithm: auth.AlgorithmHS256, SecretKey: testSecret})
	if err != nil {
		t.Fatalf("Failed to create verifier: %v", err)
	}
	fb := fake.New()
	s := newTestServer(t, fb)
	s.SetAuthMiddleware(auth.NewMiddleware(verifier, s.AuthFailure))
	h := s.Handler()

	tests := []struct {
		name   string
		token  string
		target string
		expect string
	}{
		{"no token", "", "/?action=cl", "authentication required"},
		{"unknown action without token", "", "/?action=zz", "unknown action"},
		{"missing action without token", "", "/serv.php", "unknown action"},
		{"wrong verb without token", "", "/?action=cd", "action cd requires POST"},
		{"bad token", "not-a-jwt", "/?action=cl", "authentication required"},
		{"read may list", signToken(t, auth.ScopeRead), "/?action=cl", ""},
		{"read may not create", signToken(t, auth.ScopeRead), "/?action=cc&conferenceName=a", "insufficient permissions"},
		{"control may create", signToken(t, auth.ScopeControl), "/?action=cc&conferenceName=a", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)

			body := decode(t, w)
			if tt.expect != "" {
				expectFailure(t, body, tt.expect)
				return
			}
			if body["success"] != true {
				t.Errorf("Expected success, got %v", body)
			}
		})
	}

	if n := fb.CallCount(bridge.MethodConferenceCreate); n != 1 {
		t.Errorf("Expected exactly one create call, got %d", n)
	}

	// Health stays open.
	if w := do(t, h, http.MethodGet, "/health", nil); w.Code != http.StatusOK {
		t.Errorf("Expected health to be reachable without a token, got %d", w.Code)
	}
}

func TestServeAndStop(t *testing.T) {
	s := newTestServer(t, fake.New())

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Failed to listen: %v", err)
	}

	errCh := make(chan error, 1)
	go func() { errCh <- s.Serve(ln) }()

	target := "http://" + ln.Addr().String() + "/serv.php?action=cl"
	var resp *http.Response
	for i := 0; i < 50; i++ {
		resp, err = http.Get(target)
		if err == nil {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	if err != nil {
		t.Fatalf("Failed to reach server: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected 200, got %d", resp.StatusCode)
	}

	if err := s.Stop(context.Background()); err != nil {
		t.Errorf("Expected clean stop, got %v", err)
	}
	select {
	case err := <-errCh:
		if err != nil {
			t.Errorf("Expected Serve to return nil, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after Stop")
	}
}

func TestStopBeforeServe(t *testing.T) {
	s := newTestServer(t, fake.New())
	if err := s.Stop(context.Background()); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Failed to listen: %v", err)
	}
	if err := s.Serve(ln); err != nil {
		t.Errorf("Expected Serve after Stop to return nil, got %v", err)
	}
}
