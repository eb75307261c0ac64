package i18n

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestTranslateFallback(t *testing.T) {
	if got := T(LocaleEN, "error.not_found"); got != "resource not found" {
		t.Fatalf("en translation mismatch: %s", got)
	}
	if got := T("", "error.not_found"); got != "资源不存在" {
		t.Fatalf("empty locale should fall back to default: %s", got)
	}
	if got := T(LocaleEN, "error.no_such_key"); got != "error.no_such_key" {
		t.Fatalf("missing key should return key itself: %s", got)
	}
}

func TestSprintfWithArgs(t *testing.T) {
	got := Sprintf(LocaleEN, "error.password_min_length", 8)
	if got != "password must be at least 8 characters" {
		t.Fatalf("formatted translation mismatch: %s", got)
	}
}

func TestResolveLocalePriority(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/ping?locale=en-US", nil)
	c.Request.Header.Set("Accept-Language", "zh-CN,zh;q=0.9")
	c.Set("locale", "zh-CN")
	if got := ResolveLocale(c); got != LocaleEN {
		t.Fatalf("query should win, got %s", got)
	}

	c2, _ := gin.CreateTestContext(httptest.NewRecorder())
	c2.Request = httptest.NewRequest(http.MethodGet, "/ping", nil)
	c2.Set("locale", "en")
	c2.Request.Header.Set("Accept-Language", "zh-CN")
	if got := ResolveLocale(c2); got != LocaleEN {
		t.Fatalf("context preference should win over header, got %s", got)
	}

	c3, _ := gin.CreateTestContext(httptest.NewRecorder())
	c3.Request = httptest.NewRequest(http.MethodGet, "/ping", nil)
	c3.Request.Header.Set("Accept-Language", "en-GB,en;q=0.8")
	if got := ResolveLocale(c3); got != LocaleEN {
		t.Fatalf("header should be used last, got %s", got)
	}

	c4, _ := gin.CreateTestContext(httptest.NewRecorder())
	c4.Request = httptest.NewRequest(http.MethodGet, "/ping", nil)
	if got := ResolveLocale(c4); got != DefaultLocale {
		t.Fatalf("default locale expected, got %s", got)
	}
}

func TestCatalogParity(t *testing.T) {
	zh := catalogs[LocaleZH]
	en := catalogs[LocaleEN]
	for key := range zh {
		if _, ok := en[key]; !ok {
			t.Fatalf("key %s missing in en catalog", key)
		}
	}
	for key := range en {
		if _, ok := zh[key]; !ok {
			t.Fatalf("key %s missing in zh catalog", key)
		}
	}
}
