package helpers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsSafeRedirect(t *testing.T) {
	allowed := []string{"lms.example.com"}

	cases := []struct {
		name   string
		target string
		want   bool
	}{
		{"relative path", "/courses/some-course", true},
		{"allow-listed host", "http://lms.example.com/dashboard", true},
		{"allow-listed host https", "https://LMS.example.com/dashboard", true},
		{"foreign host", "http://evil.example.net/", false},
		{"protocol relative", "//evil.example.net/", false},
		{"backslash trick", "/\\evil.example.net", false},
		{"javascript scheme", "javascript:alert(1)", false},
		{"empty", "", false},
		{"bare fragment", "dashboard", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, IsSafeRedirect(tc.target, allowed))
		})
	}
}

func TestRestorePlusSigns(t *testing.T) {
	assert.Equal(t,
		"/courses/course-v1:ARTS+D1+2018_T/course/",
		RestorePlusSigns("/courses/course-v1:ARTS D1 2018_T/course/"))
	assert.Equal(t, "/dashboard", RestorePlusSigns("/dashboard"))
}

func TestBuildLogoutURL(t *testing.T) {
	assert.Equal(t,
		"http://ecommerce.example.com/logout?no_redirect=1",
		BuildLogoutURL("http://ecommerce.example.com/logout"))
	assert.Equal(t,
		"http://ecommerce.example.com/logout?client_id=abc&no_redirect=1",
		BuildLogoutURL("http://ecommerce.example.com/logout?client_id=abc"))
}

func TestIsEnterpriseTarget(t *testing.T) {
	assert.True(t, IsEnterpriseTarget("/enterprise/acme-corp/course/welcome"))
	assert.True(t, IsEnterpriseTarget("/enterprise/acme%2Dcorp/course"))
	assert.False(t, IsEnterpriseTarget("/courses/course-v1:ARTS+D1+2018_T/course/"))
	assert.False(t, IsEnterpriseTarget("/enterprise/"))
}
