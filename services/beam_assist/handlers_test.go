// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package beam_assist

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/AleutianAI/BeamBuddy/services/beam_assist/completions"
	"github.com/AleutianAI/BeamBuddy/services/beam_assist/config"
	"github.com/AleutianAI/BeamBuddy/services/beam_assist/engine"
	"github.com/AleutianAI/BeamBuddy/services/beam_assist/namespace"
	"github.com/AleutianAI/BeamBuddy/services/beam_assist/protocol"
	"github.com/AleutianAI/BeamBuddy/services/beam_assist/signatures"
)

func testRouter(store *namespace.Store) *gin.Engine {
	gin.SetMode(gin.TestMode)

	eng := engine.New()
	comp := completions.NewProvider(store, eng, config.DefaultConfig().Completions)
	sig := signatures.NewProvider(store, eng)
	handlers := NewHandlers(NewService(store, comp, sig))

	router := gin.New()
	RegisterRoutes(router.Group("/v1"), handlers)
	return router
}

func populatedStore() *namespace.Store {
	store := namespace.NewStore()
	store.Replace(namespace.Mapping{
		"dev": {
			Name: "dev",
			Kind: namespace.KindNamespace,
			Items: map[string]*namespace.Object{
				"samx": {Name: "samx", Kind: namespace.KindDevice, Enabled: true},
			},
		},
		"umv": {
			Name:      "umv",
			Kind:      namespace.KindCallable,
			Signature: "def umv(*args, relative=False)",
		},
	})
	return store
}

func doRequest(t *testing.T, router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHandleHealth(t *testing.T) {
	router := testRouter(populatedStore())
	w := doRequest(t, router, http.MethodGet, "/v1/beambuddy/health", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp HealthResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Status != "ok" || resp.Version != ServiceVersion {
		t.Errorf("unexpected response %+v", resp)
	}
}

func TestHandleReady(t *testing.T) {
	t.Run("no snapshot yet", func(t *testing.T) {
		router := testRouter(namespace.NewStore())
		w := doRequest(t, router, http.MethodGet, "/v1/beambuddy/ready", "")
		if w.Code != http.StatusServiceUnavailable {
			t.Fatalf("status = %d, want 503", w.Code)
		}
	})

	t.Run("snapshot received", func(t *testing.T) {
		router := testRouter(populatedStore())
		w := doRequest(t, router, http.MethodGet, "/v1/beambuddy/ready", "")
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", w.Code)
		}
		var resp ReadyResponse
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if !resp.Ready || resp.SnapshotVersion != 1 {
			t.Errorf("unexpected response %+v", resp)
		}
	})
}

func TestHandleNamespace(t *testing.T) {
	router := testRouter(populatedStore())
	w := doRequest(t, router, http.MethodGet, "/v1/beambuddy/namespace", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp NamespaceResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Version != 1 {
		t.Errorf("version = %d", resp.Version)
	}
	if len(resp.Names) != 2 || resp.Names[0] != "dev" || resp.Names[1] != "umv" {
		t.Errorf("names = %v", resp.Names)
	}
}

func TestHandleResolve(t *testing.T) {
	router := testRouter(populatedStore())

	t.Run("present path", func(t *testing.T) {
		w := doRequest(t, router, http.MethodGet, "/v1/beambuddy/namespace/resolve?path=dev.samx", "")
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d", w.Code)
		}
		var resp ResolveResponse
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if !resp.Found || resp.Object.Name != "samx" {
			t.Errorf("unexpected response %+v", resp)
		}
	})

	t.Run("absent path is found=false not an error", func(t *testing.T) {
		w := doRequest(t, router, http.MethodGet, "/v1/beambuddy/namespace/resolve?path=dev.ghost", "")
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d", w.Code)
		}
		var resp ResolveResponse
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if resp.Found || resp.Object != nil {
			t.Errorf("unexpected response %+v", resp)
		}
	})

	t.Run("missing path parameter", func(t *testing.T) {
		w := doRequest(t, router, http.MethodGet, "/v1/beambuddy/namespace/resolve", "")
		if w.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", w.Code)
		}
	})
}

func TestHandleComplete(t *testing.T) {
	router := testRouter(populatedStore())

	w := doRequest(t, router, http.MethodPost, "/v1/beambuddy/complete",
		`{"content": "dev.", "offset": 4}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	var list protocol.CompletionList
	if err := json.Unmarshal(w.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(list.Items) != 1 || list.Items[0].Label != "samx" {
		t.Errorf("items = %+v", list.Items)
	}

	t.Run("malformed body", func(t *testing.T) {
		w := doRequest(t, router, http.MethodPost, "/v1/beambuddy/complete", `{"offset": -1}`)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", w.Code)
		}
	})
}

func TestHandleSignature(t *testing.T) {
	router := testRouter(populatedStore())

	t.Run("inside a call", func(t *testing.T) {
		w := doRequest(t, router, http.MethodPost, "/v1/beambuddy/signature",
			`{"content": "umv(dev.samx, ", "offset": 14}`)
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d: %s", w.Code, w.Body.String())
		}
		var resp SignatureResponse
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if resp.Help == nil || len(resp.Help.Signatures) != 1 {
			t.Fatalf("unexpected response %+v", resp)
		}
		if resp.Help.ActiveParameter != 0 {
			t.Errorf("active parameter = %d, want 0", resp.Help.ActiveParameter)
		}
	})

	t.Run("outside any call", func(t *testing.T) {
		w := doRequest(t, router, http.MethodPost, "/v1/beambuddy/signature",
			`{"content": "x = 1", "offset": 5}`)
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d", w.Code)
		}
		var resp SignatureResponse
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if resp.Help != nil {
			t.Errorf("expected null help, got %+v", resp.Help)
		}
	})
}
