package server

import (
	"errors"
	"fedi_engine/dal"
	"fedi_engine/dto"
	"fedi_engine/logic"
	"fedi_engine/shared"
	"fmt"
	"github.com/gorilla/mux"
	"net/http"
)

// Groups together the handlers needed to implement an ActivityPub server.
type apubHandlerGroup struct {
	cfg        *shared.Config
	logger     shared.ILogger
	metrics    logic.IMetrics
	sigChecker logic.IHttpSigChecker
	resolver   logic.IResolver
	inbox      logic.IInbox
	idb        shared.IdBuilder
}

func NewApubHandlerGroup(
	cfg *shared.Config,
	logger shared.ILogger,
	metrics logic.IMetrics,
	sigChecker logic.IHttpSigChecker,
	resolver logic.IResolver,
	ibox logic.IInbox,
) IHandlerGroup {
	res := apubHandlerGroup{
		cfg:        cfg,
		logger:     logger,
		metrics:    metrics,
		sigChecker: sigChecker,
		resolver:   resolver,
		inbox:      ibox,
		idb:        shared.IdBuilder{Host: cfg.Host},
	}
	return &res
}

func (hg *apubHandlerGroup) Prefix() string {
	return ""
}

func (hg *apubHandlerGroup) GroupDefs() []handlerDef {
	getLocal := func(label string) func(w http.ResponseWriter, r *http.Request) {
		return func(w http.ResponseWriter, r *http.Request) { hg.getLocalObject(label, w, r) }
	}
	return []handlerDef{
		{"GET", "/users/{id}", getLocal("user")},
		{"GET", "/notes/{id}", getLocal("note")},
		{"GET", "/notes/{id}/activity", getLocal("note/activity")},
		{"GET", "/questions/{id}", getLocal("question")},
		{"GET", "/like/{id}", getLocal("like")},
		{"GET", "/likes/{id}", getLocal("like")},
		{"GET", "/follows/{follower}/{followee}", getLocal("follow")},
		{"POST", "/users/{id}/inbox", func(w http.ResponseWriter, r *http.Request) { hg.postInbox(w, r) }},
		{"POST", "/inbox", func(w http.ResponseWriter, r *http.Request) { hg.postInbox(w, r) }},
	}
}

func (hg *apubHandlerGroup) AuthMW() func(next http.Handler) http.Handler {
	return emptyMW
}

// Serves any locally owned object through the same lookup the resolver uses for local URIs.
func (hg *apubHandlerGroup) getLocalObject(label string, w http.ResponseWriter, r *http.Request) {

	hg.logger.Infof("Handling %s GET: %s", label, r.URL.Path)
	obs := hg.metrics.StartApubRequestIn(label)
	defer obs.Finish()

	uri := hg.idb.SiteUrl() + r.URL.Path
	obj, err := hg.resolver.Resolve(r.Context(), dto.UriRef(uri), logic.NewResolutionContext(""))
	if err != nil {
		if errors.Is(err, shared.ErrUnresolvableReference) || errors.Is(err, shared.ErrUnrecognizedLocalResource) {
			hg.logger.Infof("Local object not found: %s", r.URL.Path)
			writeErrorResponse(w, notFoundStr, http.StatusNotFound)
			return
		}
		hg.logger.Errorf("Failed to render local object %s: %v", r.URL.Path, err)
		writeErrorResponse(w, internalErrorStr, http.StatusInternalServerError)
		return
	}
	writeJsonResponse(hg.logger, w, true, obj)
}

func (hg *apubHandlerGroup) postInbox(w http.ResponseWriter, r *http.Request) {

	var err error
	hg.logger.Infof("Handling inbox POST: %s", r.URL.Path)

	if mux.Vars(r)["id"] == "" {
		obs := hg.metrics.StartApubRequestIn("inbox")
		defer obs.Finish()
	} else {
		obs := hg.metrics.StartApubRequestIn("user/inbox")
		defer obs.Finish()
	}

	bodyBytes := readBody(hg.logger, w, r)
	if bodyBytes == nil {
		return
	}
	if len(bodyBytes) == 0 {
		hg.logger.Info("Empty request body")
		writeErrorResponse(w, "Request body must not be empty", http.StatusBadRequest)
		return
	}

	hg.logger.Debug(string(bodyBytes))

	// Parse just enough to know who claims to be sending it
	var raw dto.Object
	if raw, err = dto.ParseObject(bodyBytes); err != nil {
		hg.logger.Infof("Invalid JSON in request body: %v", err)
		writeErrorResponse(w, "Request body is not valid JSON", http.StatusBadRequest)
		return
	}
	actorUri := raw.RefId("actor")
	if actorUri == "" {
		hg.logger.Infof("Activity without actor: %s", raw.Id())
		writeErrorResponse(w, "Activity has no actor", http.StatusBadRequest)
		return
	}

	// Verify signature
	var signer *dal.Actor
	var sigProblem string
	signer, sigProblem, err = hg.sigChecker.Check(r.Context(), r, bodyBytes)

	if err != nil {
		hg.logger.Errorf("Unexpected error trying to verify signature: %v", err)
		writeErrorResponse(w, internalErrorStr, http.StatusInternalServerError)
		return
	}

	if sigProblem != "" {
		// Deleted accounts can no longer serve their key; nothing we could do with it anyway
		if raw.Type() == dto.TypeDelete {
			hg.logger.Infof("Ignoring Delete request with unverified actor signature")
			w.WriteHeader(http.StatusAccepted)
		} else {
			hg.logger.Warnf("Incorrectly signed inbox POST request: %s", sigProblem)
			msg := fmt.Sprintf("Invalid HTTP signature: %s", sigProblem)
			writeErrorResponse(w, msg, http.StatusUnauthorized)
		}
		return
	}

	// Does signer match actor?
	if signer.Uri != actorUri {
		hg.logger.Warnf("Activity signed by %s, but actor is %s", signer.Uri, actorUri)
		writeErrorResponse(w, "Signer does not match actor", http.StatusUnauthorized)
		return
	}

	var outcome string
	if outcome, err = hg.inbox.PerformActivity(r.Context(), signer, raw); err != nil {
		if shared.IsMalformedInput(err) {
			hg.logger.Infof("Invalid '%s' activity from %s: %v", raw.Type(), signer.Uri, err)
			writeErrorResponse(w, fmt.Sprintf("Bad request: %v", err), http.StatusBadRequest)
			return
		}
		hg.logger.Errorf("Error handling inbox activity: %v", err)
		writeErrorResponse(w, internalErrorStr, http.StatusInternalServerError)
		return
	}

	hg.logger.Infof("%s from %s: %s", raw.Type(), signer.Uri, outcome)
	w.WriteHeader(http.StatusAccepted)
}
