package logic

import (
	"context"
	"encoding/json"
	"fedi_engine/dal"
	"fedi_engine/dto"
	"fedi_engine/shared"
	"fmt"
	"net/http"
	"time"
)

//go:generate mockgen --build_flags=--mod=mod -destination ../test/mocks/mock_instance_metadata.go -package mocks fedi_engine/logic IInstanceMetadata

const nodeInfoRefreshInterval = 24 * time.Hour

// IInstanceMetadata keeps what remote servers tell about themselves through nodeinfo.
type IInstanceMetadata interface {
	RefreshIfStale(ctx context.Context, inst *dal.Instance) *dal.Instance
}

type instanceMetadata struct {
	logger shared.ILogger
	repo   dal.IRepo
	clock  shared.IClock
	client IApHttpClient
	locks  ILockManager
	ua     shared.IUserAgent
}

func NewInstanceMetadata(
	logger shared.ILogger,
	repo dal.IRepo,
	clock shared.IClock,
	client IApHttpClient,
	locks ILockManager,
	ua shared.IUserAgent,
) IInstanceMetadata {
	return &instanceMetadata{logger, repo, clock, client, locks, ua}
}

// RefreshIfStale never fails: on any problem the instance is returned as it was.
func (im *instanceMetadata) RefreshIfStale(ctx context.Context, inst *dal.Instance) *dal.Instance {

	now := im.clock.Now()
	if inst.InfoUpdatedAt != nil && now.Sub(*inst.InfoUpdatedAt) < nodeInfoRefreshInterval {
		return inst
	}

	// Someone else is already on it
	guard, ok, err := im.locks.TryAcquire(ctx, "nodeinfo:"+inst.Host)
	if err != nil || !ok {
		return inst
	}
	defer guard.Release()

	info, err := im.fetchNodeInfo(ctx, inst.Host)
	if err != nil {
		im.logger.Warnf("Failed to fetch nodeinfo of %s: %v", inst.Host, err)
		return inst
	}

	updated := *inst
	updated.SoftwareName = info.Software.Name
	updated.SoftwareVersion = info.Software.Version
	updated.NodeName = info.NodeName()
	updated.OpenRegistrations = info.OpenRegistrations
	updated.InfoUpdatedAt = &now
	if level := info.SignatureLevel(); level != "" {
		updated.SigLevel = level
	}
	if err = im.repo.UpdateInstanceMetadata(&updated); err != nil {
		im.logger.Errorf("Failed to store nodeinfo of %s: %v", inst.Host, err)
		return inst
	}
	return &updated
}

func (im *instanceMetadata) getJson(ctx context.Context, url string, target any) error {
	header := im.ua.Header()
	header.Set("Accept", "application/json")
	resp, err := im.client.Do(ctx, &ApRequest{Method: http.MethodGet, Url: url, Header: header})
	if err != nil {
		return err
	}
	return json.Unmarshal(resp.Body, target)
}

func (im *instanceMetadata) fetchNodeInfo(ctx context.Context, host string) (*dto.NodeInfo, error) {

	var links dto.NodeInfoLinks
	if err := im.getJson(ctx, fmt.Sprintf("https://%s/.well-known/nodeinfo", host), &links); err != nil {
		return nil, err
	}

	href := ""
	for _, link := range links.Links {
		if link.Rel == dto.NodeInfoSchema21 {
			href = link.Href
			break
		}
		if link.Rel == dto.NodeInfoSchema20 {
			href = link.Href
		}
	}
	if href == "" {
		return nil, fmt.Errorf("no supported nodeinfo schema advertised")
	}
	if shared.HostOf(href) != shared.NormalizeHost(host) {
		return nil, fmt.Errorf("nodeinfo link points to another host: %s", href)
	}

	var info dto.NodeInfo
	if err := im.getJson(ctx, href, &info); err != nil {
		return nil, err
	}
	return &info, nil
}
