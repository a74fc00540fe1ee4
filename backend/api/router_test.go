package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"strix/backend/domain"
	"strix/backend/repository"
	"strix/backend/repository/events"
	"strix/backend/repository/memory"
	"strix/backend/service"
	"strix/backend/service/downloads"
	"strix/backend/service/history"
	"strix/backend/service/sessionproxy"
	settingssvc "strix/backend/service/settings"
	"strix/backend/service/shared"
	"strix/backend/service/telemetry"
	"strix/backend/service/vpn"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type noopProber struct{}

func (noopProber) Probe(ctx context.Context) (domain.BatteryStatus, error) {
	return domain.BatteryStatus{Percentage: 50}, nil
}

func newTestRouter(t *testing.T) (*gin.Engine, *service.Facade, *memory.Store) {
	t.Helper()

	eventBus := events.NewBus()
	memStore := memory.NewStore(eventBus)

	settingsRepo := memory.NewSettingsRepo(memStore)
	historyRepo := memory.NewHistoryRepo(memStore)
	vpnStateRepo := memory.NewVPNStateRepo(memStore)
	repos := repository.NewRepositories(settingsRepo, historyRepo, vpnStateRepo)

	flags := shared.NewLaunchFlagsFile(filepath.Join(t.TempDir(), "launch-flags.json"))

	sessionProxySvc := sessionproxy.NewService(eventBus)
	vpnSvc := vpn.NewService(vpn.NewLaunchFlagsApplier(flags), sessionProxySvc, vpnStateRepo, eventBus)
	settingsSvc := settingssvc.NewService(settingsRepo, eventBus, flags)
	telemetrySvc := telemetry.NewService(noopProber{}, telemetry.NewSampler(func() (uint64, uint64, bool, error) {
		return 0, 0, false, nil
	}))
	historySvc := history.NewService(historyRepo)
	downloadsSvc := downloads.NewService(eventBus, t.TempDir())
	settingsSvc.SetDownloadDirBinder(downloadsSvc)

	facade := service.NewFacade(settingsSvc, vpnSvc, sessionProxySvc, telemetrySvc, historySvc, downloadsSvc, repos)
	facade.SetStateSource(memStore)

	return NewRouter(facade, eventBus), facade, memStore
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body == "" {
		reader = bytes.NewReader(nil)
	} else {
		reader = bytes.NewReader([]byte(body))
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	return recorder
}

func TestVPNConnectAndStatus(t *testing.T) {
	t.Parallel()

	router, _, _ := newTestRouter(t)

	resp := doJSON(t, router, http.MethodPost, "/vpn/connect", `{"location":"de"}`)
	if resp.Code != http.StatusOK {
		t.Fatalf("connect: status %d body %s", resp.Code, resp.Body.String())
	}

	var body struct {
		Success  bool   `json:"success"`
		Message  string `json:"message"`
		Proxy    string `json:"proxy"`
		Location string `json:"location"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !body.Success || body.Location != "de" || body.Proxy == "" {
		t.Fatalf("unexpected body: %+v", body)
	}
	if !strings.Contains(body.Message, "de") {
		t.Fatalf("message should mention location: %q", body.Message)
	}

	status := doJSON(t, router, http.MethodGet, "/vpn/status", "")
	var vpnStatus domain.VPNStatus
	if err := json.Unmarshal(status.Body.Bytes(), &vpnStatus); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	if !vpnStatus.Connected || vpnStatus.Location != "de" {
		t.Fatalf("unexpected status: %+v", vpnStatus)
	}
}

func TestVPNConnectRejectsUnknownLocation(t *testing.T) {
	t.Parallel()

	router, _, _ := newTestRouter(t)

	resp := doJSON(t, router, http.MethodPost, "/vpn/connect", `{"location":"atlantis"}`)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}

	var body struct {
		Success bool `json:"success"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Success {
		t.Fatal("expected success=false")
	}
}

func TestVPNDisconnect(t *testing.T) {
	t.Parallel()

	router, _, _ := newTestRouter(t)

	doJSON(t, router, http.MethodPost, "/vpn/connect", `{"location":"us"}`)
	resp := doJSON(t, router, http.MethodPost, "/vpn/disconnect", "")
	if resp.Code != http.StatusOK {
		t.Fatalf("disconnect: status %d", resp.Code)
	}

	status := doJSON(t, router, http.MethodGet, "/vpn/status", "")
	var vpnStatus domain.VPNStatus
	if err := json.Unmarshal(status.Body.Bytes(), &vpnStatus); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	if vpnStatus.Connected {
		t.Fatalf("expected disconnected, got %+v", vpnStatus)
	}
}

func TestSettingsRoundTripAndDefaults(t *testing.T) {
	t.Parallel()

	router, _, _ := newTestRouter(t)

	resp := doJSON(t, router, http.MethodGet, "/settings", "")
	var settings map[string]any
	if err := json.Unmarshal(resp.Body.Bytes(), &settings); err != nil {
		t.Fatalf("decode settings: %v", err)
	}
	if settings["theme"] != "system" || settings["trackingProtection"] != true {
		t.Fatalf("unexpected defaults: %+v", settings)
	}

	update := doJSON(t, router, http.MethodPut, "/settings", `{"theme":"dark"}`)
	if update.Code != http.StatusAccepted {
		t.Fatalf("update: status %d", update.Code)
	}

	resp = doJSON(t, router, http.MethodGet, "/settings", "")
	if err := json.Unmarshal(resp.Body.Bytes(), &settings); err != nil {
		t.Fatalf("decode settings: %v", err)
	}
	if settings["theme"] != "dark" {
		t.Fatalf("theme not updated: %+v", settings)
	}
}

func TestPermissionPolicyFollowsTrackingProtection(t *testing.T) {
	t.Parallel()

	router, _, _ := newTestRouter(t)

	doJSON(t, router, http.MethodPut, "/settings", `{"trackingProtection":false}`)

	resp := doJSON(t, router, http.MethodGet, "/permissions", "")
	var policy domain.PermissionPolicy
	if err := json.Unmarshal(resp.Body.Bytes(), &policy); err != nil {
		t.Fatalf("decode policy: %v", err)
	}
	if !policy.AllowAll {
		t.Fatalf("expected allow-all after disabling tracking protection: %+v", policy)
	}
}

func TestHistorySuggestionsEndpoint(t *testing.T) {
	t.Parallel()

	router, _, _ := newTestRouter(t)

	visit := doJSON(t, router, http.MethodPost, "/history/visits", `{"url":"https://golang.org","title":"The Go Programming Language"}`)
	if visit.Code != http.StatusCreated {
		t.Fatalf("visit: status %d body %s", visit.Code, visit.Body.String())
	}

	resp := doJSON(t, router, http.MethodGet, "/history/suggestions?q=go", "")
	var body struct {
		Suggestions []domain.Suggestion `json:"suggestions"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Suggestions) != 1 || body.Suggestions[0].URL != "https://golang.org" {
		t.Fatalf("unexpected suggestions: %+v", body.Suggestions)
	}

	clear := doJSON(t, router, http.MethodDelete, "/history", "")
	if clear.Code != http.StatusNoContent {
		t.Fatalf("clear: status %d", clear.Code)
	}

	resp = doJSON(t, router, http.MethodGet, "/history/suggestions?q=go", "")
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Suggestions) != 0 {
		t.Fatalf("expected empty suggestions after clear, got %+v", body.Suggestions)
	}
}

func TestTelemetryEndpointsAlwaysSucceed(t *testing.T) {
	t.Parallel()

	router, _, _ := newTestRouter(t)

	battery := doJSON(t, router, http.MethodGet, "/telemetry/battery", "")
	if battery.Code != http.StatusOK {
		t.Fatalf("battery: status %d", battery.Code)
	}
	var batteryStatus domain.BatteryStatus
	if err := json.Unmarshal(battery.Body.Bytes(), &batteryStatus); err != nil {
		t.Fatalf("decode battery: %v", err)
	}
	if batteryStatus.Percentage != 50 {
		t.Fatalf("unexpected battery: %+v", batteryStatus)
	}

	ram := doJSON(t, router, http.MethodGet, "/telemetry/ram", "")
	if ram.Code != http.StatusOK {
		t.Fatalf("ram: status %d", ram.Code)
	}

	speed := doJSON(t, router, http.MethodGet, "/telemetry/network-speed", "")
	if speed.Code != http.StatusOK {
		t.Fatalf("network-speed: status %d", speed.Code)
	}
	var networkSpeed domain.NetworkSpeed
	if err := json.Unmarshal(speed.Body.Bytes(), &networkSpeed); err != nil {
		t.Fatalf("decode speed: %v", err)
	}
	if networkSpeed.DownloadSpeed != 0 || networkSpeed.UploadSpeed != 0 {
		t.Fatalf("expected zero speed, got %+v", networkSpeed)
	}
}

func TestSessionProxyEndpoints(t *testing.T) {
	t.Parallel()

	router, facade, _ := newTestRouter(t)

	apply := doJSON(t, router, http.MethodPut, "/session/proxy", `{"rules":"socks5://127.0.0.1:9050"}`)
	if apply.Code != http.StatusOK {
		t.Fatalf("apply: status %d", apply.Code)
	}
	if got := facade.SessionProxy().Current(); got != "socks5://127.0.0.1:9050" {
		t.Fatalf("rules not applied: %q", got)
	}

	clear := doJSON(t, router, http.MethodDelete, "/session/proxy", "")
	if clear.Code != http.StatusOK {
		t.Fatalf("clear: status %d", clear.Code)
	}
	if got := facade.SessionProxy().Current(); got != "" {
		t.Fatalf("rules not cleared: %q", got)
	}
}

func TestStartDownloadRejectsBadURL(t *testing.T) {
	t.Parallel()

	router, _, _ := newTestRouter(t)

	resp := doJSON(t, router, http.MethodPost, "/downloads", `{"url":"ftp://example.com/x"}`)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d body %s", resp.Code, resp.Body.String())
	}
}

func TestDownloadLocationRoundTrip(t *testing.T) {
	t.Parallel()

	router, facade, _ := newTestRouter(t)
	target := t.TempDir()

	put := doJSON(t, router, http.MethodPut, "/downloads/location", `{"location":"`+strings.ReplaceAll(target, `\`, `\\`)+`"}`)
	if put.Code != http.StatusOK {
		t.Fatalf("put location: status %d body %s", put.Code, put.Body.String())
	}

	get := doJSON(t, router, http.MethodGet, "/downloads/location", "")
	var body struct {
		Location string `json:"location"`
	}
	if err := json.Unmarshal(get.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Location != target {
		t.Fatalf("expected %q, got %q", target, body.Location)
	}
	if facade.Downloads().Directory() != target {
		t.Fatalf("downloads dir not rebound: %q", facade.Downloads().Directory())
	}
}

func TestSnapshotEndpointReflectsState(t *testing.T) {
	t.Parallel()

	router, _, _ := newTestRouter(t)

	doJSON(t, router, http.MethodPut, "/settings", `{"startupPage":true}`)
	doJSON(t, router, http.MethodPost, "/history/visits", `{"url":"https://example.com","title":"Example"}`)

	resp := doJSON(t, router, http.MethodGet, "/snapshot", "")
	if resp.Code != http.StatusOK {
		t.Fatalf("snapshot: status %d", resp.Code)
	}
	var state domain.ShellState
	if err := json.Unmarshal(resp.Body.Bytes(), &state); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	if len(state.History) != 1 || state.Settings["startupPage"] != true {
		t.Fatalf("unexpected snapshot: %+v", state)
	}
}

func TestHealthEndpoint(t *testing.T) {
	t.Parallel()

	router, _, _ := newTestRouter(t)
	resp := doJSON(t, router, http.MethodGet, "/health", "")
	if resp.Code != http.StatusOK {
		t.Fatalf("health: status %d", resp.Code)
	}
}
