package server_test

import (
	"context"
	"encoding/json"
	"errors"
	"fedi_engine/dal"
	"fedi_engine/dto"
	"fedi_engine/logic"
	"fedi_engine/server"
	"fedi_engine/shared"
	"fedi_engine/test"
	"fedi_engine/test/fakes"
	"fedi_engine/test/mocks"
	"fmt"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

const apiKey = "0123456789abcdef"

type handlerHarness struct {
	cfg        *shared.Config
	repo       *fakes.MemRepo
	sigChecker *mocks.MockIHttpSigChecker
	resolver   *mocks.MockIResolver
	inbox      *mocks.MockIInbox
	health     *mocks.MockIInstanceHealth
	messenger  *mocks.MockIMessenger
	bob        *dal.Actor
}

func setupHandlerTest(t *testing.T) (*gomock.Controller, *handlerHarness, *mux.Router) {
	ctrl := gomock.NewController(t)
	h := handlerHarness{
		cfg:        test.MakeConfig(),
		repo:       fakes.NewMemRepo(),
		sigChecker: mocks.NewMockIHttpSigChecker(ctrl),
		resolver:   mocks.NewMockIResolver(ctrl),
		inbox:      mocks.NewMockIInbox(ctrl),
		health:     mocks.NewMockIInstanceHealth(ctrl),
		messenger:  mocks.NewMockIMessenger(ctrl),
		bob:        test.MakeRemoteActor(test.RemoteHost, "bob"),
	}
	h.cfg.Secrets.ApiKeys = []string{apiKey}
	h.cfg.Secrets.MetricsAuth = "scrape-me"

	mockLogger := mocks.NewMockILogger(ctrl)
	test.StubLogger(mockLogger)
	metrics := logic.NewMetrics(h.cfg)

	groups := []server.IHandlerGroup{
		server.NewApubHandlerGroup(h.cfg, mockLogger, metrics, h.sigChecker, h.resolver, h.inbox),
		server.NewApiHandlerGroup(h.cfg, mockLogger, h.repo, h.health, h.messenger),
		server.NewMetricsHandlerGroup(h.cfg, mockLogger, h.repo, metrics),
	}
	return ctrl, &h, server.NewMux(groups, mockLogger)
}

func serve(router http.Handler, method, path, body string, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	for name, vals := range header {
		req.Header[name] = vals
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func likeJs(actor string) string {
	return fmt.Sprintf(`{"id":"%s/likes/1","type":"Like","actor":%q,"object":"https://local.example/notes/1"}`, actor, actor)
}

func (h *handlerHarness) signedBy(actor *dal.Actor) {
	h.sigChecker.EXPECT().Check(gomock.Any(), gomock.Any(), gomock.Any()).Return(actor, "", nil)
}

func TestInboxPost_Accepted(t *testing.T) {
	_, h, router := setupHandlerTest(t)
	h.signedBy(h.bob)
	h.inbox.EXPECT().PerformActivity(gomock.Any(), h.bob, gomock.Any()).DoAndReturn(
		func(_ context.Context, _ *dal.Actor, act dto.Object) (string, error) {
			assert.Equal(t, "Like", act.Type())
			return "ok", nil
		})

	rec := serve(router, "POST", "/users/alice/inbox", likeJs(h.bob.Uri), nil)
	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, "no-cache, no-store, must-revalidate", rec.Header().Get("Cache-Control"))
}

func TestInboxPost_SharedInboxSkipIsAccepted(t *testing.T) {
	_, h, router := setupHandlerTest(t)
	h.signedBy(h.bob)
	h.inbox.EXPECT().PerformActivity(gomock.Any(), gomock.Any(), gomock.Any()).Return("skip: already liked", nil)

	rec := serve(router, "POST", "/inbox", likeJs(h.bob.Uri), nil)
	assert.Equal(t, http.StatusAccepted, rec.Code)
}

func TestInboxPost_BadRequests(t *testing.T) {
	_, _, router := setupHandlerTest(t)

	for name, body := range map[string]string{
		"empty":    "",
		"not json": "hello",
		"no actor": `{"id":"https://remote.example/x","type":"Like"}`,
	} {
		rec := serve(router, "POST", "/inbox", body, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code, name)
	}

	rec := serve(router, "POST", "/inbox", `{"actor":"`+strings.Repeat("x", 2<<20)+`"}`, nil)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestInboxPost_MalformedActivity(t *testing.T) {
	_, h, router := setupHandlerTest(t)
	h.signedBy(h.bob)
	h.inbox.EXPECT().PerformActivity(gomock.Any(), gomock.Any(), gomock.Any()).
		Return("", fmt.Errorf("%w: no object", shared.ErrMalformedActivity))

	rec := serve(router, "POST", "/inbox", likeJs(h.bob.Uri), nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "no object")
}

func TestInboxPost_InternalError(t *testing.T) {
	_, h, router := setupHandlerTest(t)
	h.signedBy(h.bob)
	h.inbox.EXPECT().PerformActivity(gomock.Any(), gomock.Any(), gomock.Any()).Return("", errors.New("disk full"))

	rec := serve(router, "POST", "/inbox", likeJs(h.bob.Uri), nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "disk full")
}

func TestInboxPost_BadSignature(t *testing.T) {
	_, h, router := setupHandlerTest(t)
	h.sigChecker.EXPECT().Check(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, "Incorrect signature", nil)

	rec := serve(router, "POST", "/inbox", likeJs(h.bob.Uri), nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Incorrect signature")
}

func TestInboxPost_UnverifiableDeleteIsDropped(t *testing.T) {
	_, h, router := setupHandlerTest(t)
	h.sigChecker.EXPECT().Check(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, "Failed to retrieve owner", nil)

	body := fmt.Sprintf(`{"id":"%s#delete","type":"Delete","actor":%q,"object":%q}`, h.bob.Uri, h.bob.Uri, h.bob.Uri)
	rec := serve(router, "POST", "/inbox", body, nil)
	assert.Equal(t, http.StatusAccepted, rec.Code)
}

func TestInboxPost_SignerIsNotActor(t *testing.T) {
	_, h, router := setupHandlerTest(t)
	h.signedBy(test.MakeRemoteActor(test.ThirdHost, "eve"))

	rec := serve(router, "POST", "/inbox", likeJs(h.bob.Uri), nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGetLocalObject(t *testing.T) {
	_, h, router := setupHandlerTest(t)
	note := test.Obj(t, `{"@context":"https://www.w3.org/ns/activitystreams","id":"https://local.example/notes/n1","type":"Note"}`)
	h.resolver.EXPECT().Resolve(gomock.Any(), dto.UriRef("https://local.example/notes/n1"), gomock.Any()).Return(note, nil)

	rec := serve(router, "GET", "/notes/n1", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/activity+json; charset=utf-8", rec.Header().Get("Content-Type"))
	var got map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "Note", got["type"])
}

func TestGetLocalObject_Errors(t *testing.T) {
	_, h, router := setupHandlerTest(t)
	h.resolver.EXPECT().Resolve(gomock.Any(), dto.UriRef("https://local.example/notes/gone"), gomock.Any()).
		Return(nil, shared.ErrUnresolvableReference)
	h.resolver.EXPECT().Resolve(gomock.Any(), dto.UriRef("https://local.example/follows/a/b"), gomock.Any()).
		Return(nil, errors.New("db locked"))

	assert.Equal(t, http.StatusNotFound, serve(router, "GET", "/notes/gone", "", nil).Code)
	assert.Equal(t, http.StatusInternalServerError, serve(router, "GET", "/follows/a/b", "", nil).Code)
	assert.Equal(t, http.StatusNotFound, serve(router, "GET", "/tags/go", "", nil).Code)
}

func apiHeader() http.Header {
	return http.Header{"X-Api-Key": {apiKey}}
}

func TestApi_RequiresKey(t *testing.T) {
	_, _, router := setupHandlerTest(t)

	assert.Equal(t, http.StatusUnauthorized, serve(router, "GET", "/api/instances/remote.example", "", nil).Code)
	rec := serve(router, "GET", "/api/instances/remote.example", "", http.Header{"X-Api-Key": {"wrong"}})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestApi_GetInstance(t *testing.T) {
	_, h, router := setupHandlerTest(t)
	since := test.StartTime.Add(-time.Hour)
	_, _ = h.repo.AddInstanceIfNotExist(&dal.Instance{
		Host:               test.RemoteHost,
		SuspensionState:    dal.SuspensionNone,
		IsNotResponding:    true,
		NotRespondingSince: &since,
		SigLevel:           "00",
	})

	rec := serve(router, "GET", "/api/instances/Remote.Example", "", apiHeader())
	require.Equal(t, http.StatusOK, rec.Code)
	var inst dto.Instance
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &inst))
	assert.Equal(t, test.RemoteHost, inst.Host)
	assert.True(t, inst.IsNotResponding)
	assert.True(t, since.Equal(*inst.NotRespondingSince))

	assert.Equal(t, http.StatusNotFound, serve(router, "GET", "/api/instances/third.example", "", apiHeader()).Code)
}

func TestApi_Suspension(t *testing.T) {
	_, h, router := setupHandlerTest(t)
	h.health.EXPECT().SetSuspension(test.RemoteHost, dal.SuspensionManual).Return(nil)
	h.health.EXPECT().SetSuspension(test.RemoteHost, dal.SuspensionNone).Return(nil)

	for _, state := range []string{dal.SuspensionManual, dal.SuspensionNone} {
		rec := serve(router, "POST", "/api/instances/remote.example/suspension", `{"state":"`+state+`"}`, apiHeader())
		assert.Equal(t, http.StatusOK, rec.Code, state)
	}

	rec := serve(router, "POST", "/api/instances/remote.example/suspension", `{"state":"goneSuspended"}`, apiHeader())
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = serve(router, "POST", "/api/instances/remote.example/suspension", `nope`, apiHeader())
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestApi_PostJob(t *testing.T) {
	_, h, router := setupHandlerTest(t)
	h.messenger.EXPECT().Enqueue(gomock.Any()).DoAndReturn(func(job *dal.DeliveryJob) error {
		assert.Equal(t, "https://remote.example/inbox", job.To)
		assert.Equal(t, "alice", job.SenderId)
		assert.True(t, job.IsSharedInbox)
		job.Id = 42
		job.NextAttemptAt = test.StartTime
		return nil
	})

	body := `{"to":"https://remote.example/inbox","sender_id":"alice","content":"{\"type\":\"Update\"}","is_shared_inbox":true}`
	rec := serve(router, "POST", "/api/jobs", body, apiHeader())
	require.Equal(t, http.StatusOK, rec.Code)
	var resp dto.DeliveryJobResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(42), resp.Id)

	rec = serve(router, "POST", "/api/jobs", `{"to":"https://remote.example/inbox","sender_id":"alice","content":"not json"}`, apiHeader())
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMetrics_RequiresBearer(t *testing.T) {
	_, _, router := setupHandlerTest(t)

	assert.Equal(t, http.StatusUnauthorized, serve(router, "GET", "/metrics", "", nil).Code)
	assert.Equal(t, http.StatusUnauthorized,
		serve(router, "GET", "/metrics", "", http.Header{"Authorization": {"Bearer scrape-me-not"}}).Code)
	assert.Equal(t, http.StatusUnauthorized,
		serve(router, "GET", "/metrics", "", http.Header{"Authorization": {"scrape-me"}}).Code)
	rec := serve(router, "GET", "/metrics", "", http.Header{"Authorization": {"Bearer scrape-me"}})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMetrics_ScrapeReportsQueueLength(t *testing.T) {
	_, h, router := setupHandlerTest(t)
	for i := 0; i < 3; i++ {
		require.NoError(t, h.repo.AddDeliveryJob(&dal.DeliveryJob{To: "https://remote.example/inbox", SenderId: "alice", Content: "{}"}))
	}

	rec := serve(router, "GET", "/metrics", "", http.Header{"Authorization": {"Bearer scrape-me"}})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "fedi_delivery_queue_length 3")
}
