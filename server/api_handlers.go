package server

import (
	"encoding/json"
	"fedi_engine/dal"
	"fedi_engine/dto"
	"fedi_engine/logic"
	"fedi_engine/shared"
	"github.com/gorilla/mux"
	"net/http"
)

type apiHandlerGroup struct {
	cfg       *shared.Config
	logger    shared.ILogger
	repo      dal.IRepo
	health    logic.IInstanceHealth
	messenger logic.IMessenger
}

func NewApiHandlerGroup(
	cfg *shared.Config,
	logger shared.ILogger,
	repo dal.IRepo,
	health logic.IInstanceHealth,
	messenger logic.IMessenger,
) IHandlerGroup {
	res := apiHandlerGroup{
		cfg:       cfg,
		logger:    logger,
		repo:      repo,
		health:    health,
		messenger: messenger,
	}
	return &res
}

func (hg *apiHandlerGroup) Prefix() string {
	return "/api"
}

func (hg *apiHandlerGroup) GroupDefs() []handlerDef {
	return []handlerDef{
		{"GET", "/instances/{host}", func(w http.ResponseWriter, r *http.Request) { hg.getInstance(w, r) }},
		{"POST", "/instances/{host}/suspension", func(w http.ResponseWriter, r *http.Request) { hg.postSuspension(w, r) }},
		{"POST", "/jobs", func(w http.ResponseWriter, r *http.Request) { hg.postJob(w, r) }},
	}
}

func (hg *apiHandlerGroup) AuthMW() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return hg.authMW(next)
	}
}

func (hg *apiHandlerGroup) authMW(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var apiKey = r.Header.Get(apiKeyHeader)
		found := false
		for _, key := range hg.cfg.Secrets.ApiKeys {
			if apiKey != "" && apiKey == key {
				found = true
			}
		}
		if !found {
			keyPart := apiKey
			if len(apiKey) > 4 {
				keyPart = apiKey[:4] + "..."
			}
			hg.logger.Warnf("API request with missing or invalid key '%s': %s", keyPart, r.URL.Path)
			writeErrorResponse(w, badApiKeyStr, http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (hg *apiHandlerGroup) getInstance(w http.ResponseWriter, r *http.Request) {

	host := shared.NormalizeHost(mux.Vars(r)["host"])
	hg.logger.Infof("GET /api/instances: %s", host)

	inst, err := hg.repo.GetInstance(host)
	if err != nil {
		hg.logger.Errorf("Failed to get instance %s: %v", host, err)
		writeErrorResponse(w, internalErrorStr, http.StatusInternalServerError)
		return
	}
	if inst == nil {
		writeErrorResponse(w, notFoundStr, http.StatusNotFound)
		return
	}
	writeJsonResponse(hg.logger, w, false, dto.Instance{
		Host:               inst.Host,
		SuspensionState:    inst.SuspensionState,
		IsNotResponding:    inst.IsNotResponding,
		NotRespondingSince: inst.NotRespondingSince,
		SigLevel:           inst.SigLevel,
		SoftwareName:       inst.SoftwareName,
		SoftwareVersion:    inst.SoftwareVersion,
		NodeName:           inst.NodeName,
		OpenRegistrations:  inst.OpenRegistrations,
		InfoUpdatedAt:      inst.InfoUpdatedAt,
		FirstRetrievedAt:   inst.FirstRetrievedAt,
	})
}

func (hg *apiHandlerGroup) postSuspension(w http.ResponseWriter, r *http.Request) {

	host := shared.NormalizeHost(mux.Vars(r)["host"])
	hg.logger.Infof("POST /api/instances/suspension: %s", host)

	bodyBytes := readBody(hg.logger, w, r)
	if bodyBytes == nil {
		return
	}
	var req dto.SuspensionRequest
	if err := json.Unmarshal(bodyBytes, &req); err != nil || host == "" {
		writeErrorResponse(w, badRequestStr, http.StatusBadRequest)
		return
	}
	if req.State != dal.SuspensionNone && req.State != dal.SuspensionManual {
		writeErrorResponse(w, "State must be 'none' or 'manualSuspended'", http.StatusBadRequest)
		return
	}
	if err := hg.health.SetSuspension(host, req.State); err != nil {
		hg.logger.Errorf("Failed to set suspension of %s: %v", host, err)
		writeErrorResponse(w, internalErrorStr, http.StatusInternalServerError)
		return
	}
	writeJsonResponse(hg.logger, w, false, "OK")
}

func (hg *apiHandlerGroup) postJob(w http.ResponseWriter, r *http.Request) {

	hg.logger.Info("POST /api/jobs: Request received")

	bodyBytes := readBody(hg.logger, w, r)
	if bodyBytes == nil {
		return
	}
	var req dto.DeliveryJobRequest
	if err := json.Unmarshal(bodyBytes, &req); err != nil {
		writeErrorResponse(w, badRequestStr, http.StatusBadRequest)
		return
	}
	if req.To == "" || req.SenderId == "" || req.Content == "" || !json.Valid([]byte(req.Content)) {
		writeErrorResponse(w, "'to', 'sender_id' and a JSON 'content' are required", http.StatusBadRequest)
		return
	}

	job := dal.DeliveryJob{
		To:            req.To,
		SenderId:      req.SenderId,
		Content:       req.Content,
		IsSharedInbox: req.IsSharedInbox,
	}
	if err := hg.messenger.Enqueue(&job); err != nil {
		hg.logger.Errorf("Failed to enqueue job to %s: %v", req.To, err)
		writeErrorResponse(w, internalErrorStr, http.StatusInternalServerError)
		return
	}
	writeJsonResponse(hg.logger, w, false, dto.DeliveryJobResponse{Id: job.Id, NextAttemptAt: job.NextAttemptAt})
}
