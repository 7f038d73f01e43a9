package logic

import (
	"bufio"
	"fedi_engine/shared"
	"os"
	"strings"
)

//go:generate mockgen --build_flags=--mod=mod -destination ../test/mocks/mock_federation_policy.go -package mocks fedi_engine/logic IFederationPolicy

// IFederationPolicy decides which remote hosts we talk to.
type IFederationPolicy interface {
	IsAllowed(host string) bool
}

type federationPolicy struct {
	mode    string
	blocked []string
	allowed []string
}

func NewFederationPolicy(cfg *shared.Config, logger shared.ILogger) IFederationPolicy {

	fp := federationPolicy{
		mode:    cfg.Federation.Mode,
		blocked: append([]string{}, cfg.Federation.BlockedHosts...),
		allowed: append([]string{}, cfg.Federation.AllowedHosts...),
	}

	if cfg.BlockedHostsFile != "" {
		fileHosts, err := readHostsFile(cfg.BlockedHostsFile)
		if err != nil {
			logger.Warnf("Failed to read blocked hosts file %s: %v", cfg.BlockedHostsFile, err)
		} else {
			fp.blocked = append(fp.blocked, fileHosts...)
		}
	}
	return &fp
}

// One host per line; empty lines and lines starting with # are ignored.
func readHostsFile(fileName string) ([]string, error) {

	readFile, err := os.Open(fileName)
	if err != nil {
		return nil, err
	}
	defer readFile.Close()
	fileScanner := bufio.NewScanner(readFile)
	fileScanner.Split(bufio.ScanLines)

	var res []string
	for fileScanner.Scan() {
		line := strings.TrimSpace(fileScanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		res = append(res, shared.NormalizeHost(line))
	}
	return res, fileScanner.Err()
}

func matchesAny(host string, patterns []string) bool {
	for _, pattern := range patterns {
		if shared.IsHostMatch(host, pattern) {
			return true
		}
	}
	return false
}

func (fp *federationPolicy) IsAllowed(host string) bool {
	if host == "" {
		return false
	}
	switch fp.mode {
	case shared.FederationModeNone:
		return false
	case shared.FederationModeSpecified:
		return matchesAny(host, fp.allowed) && !matchesAny(host, fp.blocked)
	default:
		return !matchesAny(host, fp.blocked)
	}
}
