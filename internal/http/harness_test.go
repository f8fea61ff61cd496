package httpx

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	redisadapter "github.com/naidizakupku/portal/internal/adapters/redis"
	domainauth "github.com/naidizakupku/portal/internal/domain/auth"
	"github.com/naidizakupku/portal/internal/mocks"
	mockauth "github.com/naidizakupku/portal/internal/mocks/auth"
	"github.com/naidizakupku/portal/internal/ports"
	"github.com/naidizakupku/portal/internal/service"
	"github.com/naidizakupku/portal/internal/testutil"
)

// deviceChannels hands out one in-memory client channel per device.
type deviceChannels struct {
	mu sync.Mutex
	m  map[string]*mockauth.MemoryChannel
}

func (d *deviceChannels) For(device string) ports.CredentialChannel {
	return d.get(device)
}

func (d *deviceChannels) get(device string) *mockauth.MemoryChannel {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.m == nil {
		d.m = make(map[string]*mockauth.MemoryChannel)
	}
	ch, ok := d.m[device]
	if !ok {
		ch = mockauth.NewMemoryChannel()
		d.m[device] = ch
	}
	return ch
}

type harness struct {
	t        *testing.T
	gateway  *mocks.MockAuthGateway
	bot      *mocks.MockBotGateway
	content  *mocks.MockContentGateway
	channels *deviceChannels
	fence    *service.AuthFence
	mr       *miniredis.Miniredis
	pages    *testutil.FakeBackend
	server   *httptest.Server
	client   *http.Client
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	ctrl := gomock.NewController(t)
	mr, redisClient := testutil.NewMiniRedis(t)
	cacheRepo := redisadapter.NewCacheRepo(redisClient)

	h := &harness{
		t:        t,
		gateway:  mocks.NewMockAuthGateway(ctrl),
		bot:      mocks.NewMockBotGateway(ctrl),
		content:  mocks.NewMockContentGateway(ctrl),
		channels: &deviceChannels{},
		fence:    service.NewAuthFence(cacheRepo, "portal:", 15*time.Second),
		mr:       mr,
		pages:    testutil.NewFakeBackend(t),
	}

	contentSvc, err := service.NewContentService(service.ContentServiceOptions{Gateway: h.content})
	require.NoError(t, err)

	router, err := NewRouter(RouterServices{
		Auth: &AuthHandlers{
			Gateway:       h.gateway,
			Extractor:     mockauth.StaticExtractor{Claim: domainauth.IdentityClaim{ID: 42, FirstName: "Ivan", Hash: "h"}},
			ClientChannel: h.channels.For,
			Fence:         h.fence,
			CredentialTTL: time.Hour,
		},
		Bot:               &BotHandlers{Gateway: h.bot},
		Content:           &ContentHandlers{Svc: contentSvc},
		Ready:             cacheRepo,
		ProtectedPrefixes: []string{"/tenders", "/my-purchases", "/profile"},
		PagesOrigin:       h.pages.URL,
	})
	require.NoError(t, err)

	h.server = httptest.NewServer(router)
	t.Cleanup(h.server.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	h.client = &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	return h
}

func (h *harness) do(method, path, body string, header http.Header) (*http.Response, map[string]any) {
	h.t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequestWithContext(context.Background(), method, h.server.URL+path, reader)
	require.NoError(h.t, err)
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := h.client.Do(req)
	require.NoError(h.t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(h.t, err)
	var decoded map[string]any
	if len(raw) > 0 && strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		require.NoError(h.t, json.Unmarshal(raw, &decoded))
	}
	return resp, decoded
}

// cookie returns the value of a cookie currently held by the jar.
func (h *harness) cookie(name string) (string, bool) {
	u, _ := url.Parse(h.server.URL)
	for _, c := range h.client.Jar.Cookies(u) {
		if c.Name == name {
			return c.Value, true
		}
	}
	return "", false
}

func (h *harness) device() string {
	h.t.Helper()
	d, ok := h.cookie("portal_device")
	require.True(h.t, ok, "device cookie not issued")
	return d
}
