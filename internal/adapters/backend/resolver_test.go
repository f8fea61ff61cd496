package backend

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/naidizakupku/portal/config"
)

func defaultBackendConfig() config.BackendConfig {
	return config.BackendConfig{
		LoopbackBaseURL:  "http://localhost:9000/api",
		PublicOrigin:     "https://naidizakupku.ru",
		PublicPathPrefix: "/api/backend/api",
	}
}

func TestResolver_DefaultOrder(t *testing.T) {
	r := NewResolver(defaultBackendConfig())

	assert.Equal(t, []string{
		"http://localhost:9000/api/news/top",
		"https://naidizakupku.ru/api/backend/api/news/top",
	}, r.Resolve("/news/top"))
}

func TestResolver_OverrideIsSoleCandidate(t *testing.T) {
	cfg := defaultBackendConfig()
	cfg.BaseURL = "http://backend.internal:9000/api/"

	r := NewResolver(cfg)
	got := r.Resolve("/admin/common/info")
	assert.Equal(t, []string{"http://backend.internal:9000/api/admin/common/info"}, got)
}

func TestResolver_JoinsPathsCleanly(t *testing.T) {
	r := NewStaticResolver("http://a/", " ", "http://b")

	assert.Equal(t, []string{"http://a/news/top", "http://b/news/top"}, r.Resolve("news/top/"))
	assert.Equal(t,
		[]string{"http://a/auth/telegram/logout?sessionId=s1", "http://b/auth/telegram/logout?sessionId=s1"},
		r.Resolve("/auth/telegram/logout?sessionId=s1"))
}

func TestResolver_SkipsEmptyDefaults(t *testing.T) {
	cfg := defaultBackendConfig()
	cfg.LoopbackBaseURL = ""

	r := NewResolver(cfg)
	assert.Equal(t, []string{"https://naidizakupku.ru/api/backend/api"}, r.Bases())
}

func TestResolver_BasesIsACopy(t *testing.T) {
	r := NewStaticResolver("http://a")
	b := r.Bases()
	b[0] = "mutated"
	assert.Equal(t, []string{"http://a"}, r.Bases())
}
