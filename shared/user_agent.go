package shared

import (
	"fmt"
	"net/http"
	"os"
	"strings"
)

const (
	versionFileName   = "www/version.txt"
	userAgentTemplate = "FediEngine/%s (+https://%s)"
)

type IUserAgent interface {
	AddUserAgent(req *http.Request)
	Header() http.Header
}

type userAgent struct {
	userAgentValue string
}

func NewUserAgent(cfg *Config) IUserAgent {
	return &userAgent{
		userAgentValue: buildUserAgentString(cfg.Host),
	}
}

func buildUserAgentString(host string) string {
	versionBytes, _ := os.ReadFile(versionFileName)
	versionStr := strings.TrimSpace(string(versionBytes))
	versionStr = strings.TrimPrefix(versionStr, "v")
	if versionStr == "" {
		versionStr = "dev"
	}
	return fmt.Sprintf(userAgentTemplate, versionStr, host)
}

func (ua *userAgent) AddUserAgent(req *http.Request) {
	req.Header.Add("User-Agent", ua.userAgentValue)
}

// Header returns the headers every outbound request carries, for merging into signed requests.
func (ua *userAgent) Header() http.Header {
	res := http.Header{}
	res.Set("User-Agent", ua.userAgentValue)
	return res
}
