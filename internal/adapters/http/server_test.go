package http_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aretw0/bitrig"
	bitrighttp "github.com/aretw0/bitrig/internal/adapters/http"
	"github.com/aretw0/bitrig/internal/metrics"
	"github.com/aretw0/bitrig/pkg/adapters/memory"
	"github.com/aretw0/bitrig/pkg/dsl"
	"github.com/aretw0/bitrig/pkg/session"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T, opts ...bitrig.Option) (http.Handler, *memory.Store) {
	t.Helper()
	b := dsl.New()
	b.Bit("hero", "").Character("hero").Module("hero_body", 0)
	b.Bit("hip", "hero").Joint("hip_jnt").Curve("hip_ctl", "circle")
	b.Bit("spine", "hip").Module("spine", 1).Joint("spine_jnt")
	b.Bit("arm", "spine").Module("arm", 2).Joint("arm_jnt").Curve("arm_ctl", "square")

	eng, err := bitrig.New(b.MustBuild())
	require.NoError(t, err)
	store := memory.NewStore()
	require.NoError(t, eng.Save(context.Background(), store, "stage"))

	reg := prometheus.NewRegistry()
	m, err := metrics.New(reg)
	require.NoError(t, err)

	srv := &bitrighttp.Server{
		Scenes:   session.NewManager(store),
		Options:  append([]bitrig.Option{bitrig.WithHooks(m.Hooks())}, opts...),
		Gatherer: reg,
	}
	return bitrighttp.NewHandler(srv), store
}

func do(t *testing.T, h http.Handler, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestHealthAndInfo(t *testing.T) {
	h, _ := newServer(t)

	rr := do(t, h, "GET", "/health")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())

	rr = do(t, h, "GET", "/info")
	require.Equal(t, http.StatusOK, rr.Code)
	var info map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &info))
	assert.Equal(t, "bitrig-http", info["app"])
	assert.NotEmpty(t, info["version"])
	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
}

func TestListing(t *testing.T) {
	h, _ := newServer(t)

	rr := do(t, h, "GET", "/scenes/")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `["stage"]`, rr.Body.String())

	rr = do(t, h, "GET", "/scenes/stage/characters/")
	require.Equal(t, http.StatusOK, rr.Code)
	var chars []bitrighttp.CharacterView
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &chars))
	require.Len(t, chars, 1)
	assert.Equal(t, "hero", chars[0].Name)
	assert.Equal(t, "hero_rig", chars[0].RigGroup)

	rr = do(t, h, "GET", "/scenes/stage/characters/hero/modules")
	require.Equal(t, http.StatusOK, rr.Code)
	var modules []bitrighttp.ModuleView
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &modules))
	require.Len(t, modules, 3)
	assert.Equal(t, "hero_body", modules[0].Name)
	assert.True(t, modules[0].Implicit)
	assert.Len(t, modules[0].Bits, 2, "hero and hip")

	assert.Equal(t, http.StatusNotFound, do(t, h, "GET", "/scenes/nowhere/characters/").Code)
	assert.Equal(t, http.StatusNotFound, do(t, h, "GET", "/scenes/stage/characters/villain/modules").Code)
}

func TestBuild(t *testing.T) {
	h, store := newServer(t)

	rr := do(t, h, "GET", "/scenes/stage/characters/hero/graph")
	assert.Equal(t, http.StatusNotFound, rr.Code, "nothing built yet")

	rr = do(t, h, "POST", "/scenes/stage/characters/hero/build")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var resp bitrighttp.BuildResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.NotNil(t, resp.Report)
	assert.Equal(t, 7, resp.Report.Created(), "three joints, two controls, two spacers")
	assert.Empty(t, resp.Errors)

	doc, err := store.Load(context.Background(), "stage")
	require.NoError(t, err)
	var names []string
	for _, n := range doc.Nodes {
		names = append(names, n.Name)
	}
	assert.Contains(t, names, "arm_jnt", "build result is stored")
	assert.NotContains(t, names, "arm_build")

	rr = do(t, h, "POST", "/scenes/stage/characters/hero/build")
	require.Equal(t, http.StatusOK, rr.Code)
	resp = bitrighttp.BuildResponse{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Zero(t, resp.Report.Created())
	assert.Zero(t, resp.Report.Reparented())

	rr = do(t, h, "GET", "/scenes/stage/characters/hero/graph")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, strings.HasPrefix(rr.Body.String(), "graph"), rr.Body.String())
	assert.Contains(t, rr.Body.String(), "arm_jnt")

	rr = do(t, h, "GET", "/metrics")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "bitrig_modules_built_total")

	assert.Equal(t, http.StatusNotFound, do(t, h, "POST", "/scenes/stage/characters/villain/build").Code)
}

func TestBuild_FailureIsReported(t *testing.T) {
	// Descending order builds the arm before the spine it hangs from.
	h, store := newServer(t, bitrig.WithOrder("descending"))

	rr := do(t, h, "POST", "/scenes/stage/characters/hero/build")
	require.Equal(t, http.StatusUnprocessableEntity, rr.Code, rr.Body.String())
	var resp bitrighttp.BuildResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Contains(t, resp.Errors, "arm")
	assert.Contains(t, resp.Errors["arm"], "spine_jnt")

	doc, err := store.Load(context.Background(), "stage")
	require.NoError(t, err)
	var names []string
	for _, n := range doc.Nodes {
		names = append(names, n.Name)
	}
	assert.Contains(t, names, "hip_jnt", "modules built before the failure are kept")
}
