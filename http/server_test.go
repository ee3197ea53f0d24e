package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fwojciec/docqa"
	docqahttp "github.com/fwojciec/docqa/http"
	"github.com/fwojciec/docqa/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(t *testing.T, svc *mock.CorpusService, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, path, nil)
	} else {
		r = httptest.NewRequest(method, path, strings.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	docqahttp.NewServer(svc).ServeHTTP(w, r)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var out map[string]any
	require.NoError(t, json.NewDecoder(w.Body).Decode(&out))
	return out
}

func TestServer_Health(t *testing.T) {
	t.Parallel()

	w := serve(t, &mock.CorpusService{}, http.MethodGet, "/api/health", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "healthy", decodeBody(t, w)["status"])
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestServer_CORSPreflight(t *testing.T) {
	t.Parallel()

	w := serve(t, &mock.CorpusService{}, http.MethodOptions, "/api/query", "")

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "POST")
}

func TestServer_ListDocs(t *testing.T) {
	t.Parallel()

	t.Run("lists corpora with page counts", func(t *testing.T) {
		t.Parallel()

		svc := &mock.CorpusService{
			ListCorporaFn: func(_ context.Context) ([]*docqa.CorpusSummary, error) {
				return []*docqa.CorpusSummary{
					{Name: "alpha", PageCount: 2, State: docqa.CorpusReady},
					{Name: "beta", PageCount: 0, State: docqa.CorpusUnprocessed},
				}, nil
			},
		}

		w := serve(t, svc, http.MethodGet, "/api/docs", "")

		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"docs":[
			{"name":"alpha","page_count":2,"state":"ready"},
			{"name":"beta","page_count":0,"state":"unprocessed"}
		]}`, w.Body.String())
	})

	t.Run("returns empty list", func(t *testing.T) {
		t.Parallel()

		svc := &mock.CorpusService{
			ListCorporaFn: func(_ context.Context) ([]*docqa.CorpusSummary, error) {
				return nil, nil
			},
		}

		w := serve(t, svc, http.MethodGet, "/api/docs", "")

		assert.JSONEq(t, `{"docs":[]}`, w.Body.String())
	})

	t.Run("hides internal error details", func(t *testing.T) {
		t.Parallel()

		svc := &mock.CorpusService{
			ListCorporaFn: func(_ context.Context) ([]*docqa.CorpusSummary, error) {
				return nil, errors.New("disk on fire")
			},
		}

		w := serve(t, svc, http.MethodGet, "/api/docs", "")

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.NotContains(t, w.Body.String(), "disk on fire")
		assert.Equal(t, docqa.EINTERNAL, decodeBody(t, w)["code"])
	})
}

func TestServer_GetDocs(t *testing.T) {
	t.Parallel()

	t.Run("returns the corpus record", func(t *testing.T) {
		t.Parallel()

		svc := &mock.CorpusService{
			FindCorpusFn: func(_ context.Context, name string) (*docqa.Corpus, error) {
				return &docqa.Corpus{Name: name, State: docqa.CorpusReady, ChunkCount: 6}, nil
			},
		}

		w := serve(t, svc, http.MethodGet, "/api/docs/alpha", "")

		require.Equal(t, http.StatusOK, w.Code)
		body := decodeBody(t, w)
		assert.Equal(t, "alpha", body["name"])
		assert.Equal(t, "ready", body["state"])
		assert.InDelta(t, 6, body["chunkCount"], 0)
	})

	t.Run("maps not found", func(t *testing.T) {
		t.Parallel()

		svc := &mock.CorpusService{
			FindCorpusFn: func(_ context.Context, name string) (*docqa.Corpus, error) {
				return nil, docqa.Errorf(docqa.ENOTFOUND, "corpus %q not found", name)
			},
		}

		w := serve(t, svc, http.MethodGet, "/api/docs/missing", "")

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, `corpus "missing" not found`, decodeBody(t, w)["error"])
	})
}

func TestServer_DeleteDocs(t *testing.T) {
	t.Parallel()

	var deleted string
	svc := &mock.CorpusService{
		DeleteCorpusFn: func(_ context.Context, name string) error {
			deleted = name
			return nil
		},
	}

	w := serve(t, svc, http.MethodDelete, "/api/docs/alpha", "")

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "alpha", deleted)
}

func TestServer_Process(t *testing.T) {
	t.Parallel()

	t.Run("processes the named corpus", func(t *testing.T) {
		t.Parallel()

		svc := &mock.CorpusService{
			ProcessFn: func(_ context.Context, name string) (*docqa.Corpus, error) {
				return &docqa.Corpus{Name: name, State: docqa.CorpusReady, PageCount: 2, ChunkCount: 6}, nil
			},
		}

		w := serve(t, svc, http.MethodPost, "/api/process", `{"docs_name":"alpha"}`)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "ready", decodeBody(t, w)["state"])
	})

	t.Run("rejects malformed body", func(t *testing.T) {
		t.Parallel()

		w := serve(t, &mock.CorpusService{}, http.MethodPost, "/api/process", `{"docs_name":`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, docqa.EINVALID, decodeBody(t, w)["code"])
	})

	codes := []struct {
		code   string
		status int
	}{
		{docqa.ENODIR, http.StatusNotFound},
		{docqa.ENODOCS, http.StatusUnprocessableEntity},
		{docqa.EEMBED, http.StatusBadGateway},
		{docqa.EINVALID, http.StatusBadRequest},
	}
	for _, tc := range codes {
		t.Run("maps "+tc.code, func(t *testing.T) {
			t.Parallel()

			svc := &mock.CorpusService{
				ProcessFn: func(_ context.Context, _ string) (*docqa.Corpus, error) {
					return nil, docqa.Errorf(tc.code, "failed")
				},
			}

			w := serve(t, svc, http.MethodPost, "/api/process", `{"docs_name":"alpha"}`)

			assert.Equal(t, tc.status, w.Code)
			assert.Equal(t, tc.code, decodeBody(t, w)["code"])
		})
	}
}

func TestServer_Query(t *testing.T) {
	t.Parallel()

	t.Run("processes then answers", func(t *testing.T) {
		t.Parallel()

		var calls []string
		svc := &mock.CorpusService{
			ProcessFn: func(_ context.Context, name string) (*docqa.Corpus, error) {
				calls = append(calls, "process "+name)
				return &docqa.Corpus{Name: name, State: docqa.CorpusReady}, nil
			},
			QueryFn: func(_ context.Context, name, question string) (*docqa.QueryResult, error) {
				calls = append(calls, "query "+name)
				return &docqa.QueryResult{
					Question:   question,
					Answer:     "Use the frobnicate flag.",
					Reasoning:  "Page one describes the flag.",
					CorpusName: name,
					Sources:    []docqa.Source{{Title: "One", URL: "https://example.com/one"}},
				}, nil
			},
		}

		w := serve(t, svc, http.MethodPost, "/api/query", `{"docs_name":"alpha","question":"How do I frobnicate?"}`)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, []string{"process alpha", "query alpha"}, calls)
		assert.JSONEq(t, `{
			"question":"How do I frobnicate?",
			"answer":"Use the frobnicate flag.",
			"chain_of_thought":"Page one describes the flag.",
			"docs_name":"alpha",
			"sources":[{"title":"One","url":"https://example.com/one"}]
		}`, w.Body.String())
	})

	t.Run("rejects empty question without processing", func(t *testing.T) {
		t.Parallel()

		w := serve(t, &mock.CorpusService{}, http.MethodPost, "/api/query", `{"docs_name":"alpha","question":"  "}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("reports processing failure", func(t *testing.T) {
		t.Parallel()

		svc := &mock.CorpusService{
			ProcessFn: func(_ context.Context, name string) (*docqa.Corpus, error) {
				return nil, docqa.Errorf(docqa.ENODIR, "corpus directory %q does not exist", name)
			},
		}

		w := serve(t, svc, http.MethodPost, "/api/query", `{"docs_name":"ghost","question":"why?"}`)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, docqa.ENODIR, decodeBody(t, w)["code"])
	})

	t.Run("maps synthesis failure", func(t *testing.T) {
		t.Parallel()

		svc := &mock.CorpusService{
			ProcessFn: func(_ context.Context, name string) (*docqa.Corpus, error) {
				return &docqa.Corpus{Name: name, State: docqa.CorpusReady}, nil
			},
			QueryFn: func(_ context.Context, _, _ string) (*docqa.QueryResult, error) {
				return nil, docqa.Errorf(docqa.ESYNTHESIS, "language model failed")
			},
		}

		w := serve(t, svc, http.MethodPost, "/api/query", `{"docs_name":"alpha","question":"why?"}`)

		assert.Equal(t, http.StatusBadGateway, w.Code)
	})
}

func TestStatusCode(t *testing.T) {
	t.Parallel()

	assert.Equal(t, http.StatusConflict, docqahttp.StatusCode(docqa.ENOTREADY))
	assert.Equal(t, http.StatusConflict, docqahttp.StatusCode(docqa.ECONFLICT))
	assert.Equal(t, http.StatusNotFound, docqahttp.StatusCode(docqa.ENOTFOUND))
	assert.Equal(t, http.StatusInternalServerError, docqahttp.StatusCode(docqa.EINTERNAL))
}

func TestServer_Serve(t *testing.T) {
	t.Parallel()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- docqahttp.NewServer(&mock.CorpusService{}).Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/api/health")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	require.NoError(t, <-done)
}
