package requester_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/peerberrygo/peerberry/requester"
)

func TestAddIndexed(t *testing.T) {
	query := url.Values{}
	requester.AddIndexed(query, "countryIds", []string{"A", "B"})

	require.Equal(t, "A", query.Get("countryIds[0]"))
	require.Equal(t, "B", query.Get("countryIds[1]"))
	require.Len(t, query, 2)
}

func TestSession_DoJSON(t *testing.T) {
	var gotPath, gotQuery, gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{"balance": "12.34"}`))
	}))
	defer server.Close()

	session := requester.New(requester.WithBaseURL(server.URL))
	session.AddHeader("Authorization", "Bearer abc")

	query := url.Values{}
	query.Set("pageSize", "10")

	var out map[string]any
	err := session.DoJSON(requester.Request{Path: "/v1/investor/overview", Query: query}, &out)
	require.NoError(t, err)
	require.Equal(t, "/v1/investor/overview", gotPath)
	require.Equal(t, "pageSize=10", gotQuery)
	require.Equal(t, "Bearer abc", gotAuth)
	require.Equal(t, "12.34", out["balance"])
}

func TestSession_Do_RawBytes(t *testing.T) {
	payload := []byte{0x50, 0x4b, 0x03, 0x04, 0x00} // not valid JSON
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(payload)
	}))
	defer server.Close()

	session := requester.New(requester.WithBaseURL(server.URL))
	body, err := session.Do(requester.Request{Path: "/v1/investments/1/agreement"})
	require.NoError(t, err)
	require.Equal(t, payload, body)
}

func TestSession_Headers(t *testing.T) {
	var gotAuth []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = append(gotAuth, r.Header.Get("Authorization"))
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	session := requester.New(requester.WithBaseURL(server.URL))

	session.AddHeader("Authorization", "Bearer one")
	require.NoError(t, session.DoJSON(requester.Request{Path: "/a"}, nil))

	session.AddHeader("Authorization", "Bearer two")
	require.NoError(t, session.DoJSON(requester.Request{Path: "/b"}, nil))

	session.RemoveHeader("Authorization")
	require.NoError(t, session.DoJSON(requester.Request{Path: "/c"}, nil))

	require.Equal(t, []string{"Bearer one", "Bearer two", ""}, gotAuth)
	require.Empty(t, session.HeaderValue("Authorization"))
}

func TestSession_RequestIDPerCall(t *testing.T) {
	var ids []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ids = append(ids, r.Header.Get("X-Request-Id"))
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	session := requester.New(requester.WithBaseURL(server.URL))
	require.NoError(t, session.DoJSON(requester.Request{Path: "/a"}, nil))
	require.NoError(t, session.DoJSON(requester.Request{Path: "/b"}, nil))

	require.Len(t, ids, 2)
	require.NotEmpty(t, ids[0])
	require.NotEqual(t, ids[0], ids[1])
}

func TestSession_FailureTranslation(t *testing.T) {
	override := errors.New("business rule rejected")

	newStub := func(status int, body string) *httptest.Server {
		return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
			w.Write([]byte(body))
		}))
	}

	t.Run("list-shaped error body", func(t *testing.T) {
		server := newStub(400, `{"errors":[{"message":"too poor"}]}`)
		defer server.Close()

		session := requester.New(requester.WithBaseURL(server.URL))
		err := session.DoJSON(requester.Request{Path: "/x", OnFailure: override}, nil)
		require.Error(t, err)
		require.ErrorIs(t, err, override)

		var apiErr *requester.APIError
		require.ErrorAs(t, err, &apiErr)
		require.Equal(t, 400, apiErr.StatusCode)
		require.Equal(t, "too poor", apiErr.Message)
	})

	t.Run("map-shaped error body", func(t *testing.T) {
		server := newStub(401, `{"errors":{"credentials":"wrong password"}}`)
		defer server.Close()

		session := requester.New(requester.WithBaseURL(server.URL))
		err := session.DoJSON(requester.Request{Path: "/x"}, nil)

		var apiErr *requester.APIError
		require.ErrorAs(t, err, &apiErr)
		require.Equal(t, "wrong password", apiErr.Message)
	})

	t.Run("flat message body", func(t *testing.T) {
		server := newStub(403, `{"message":"forbidden"}`)
		defer server.Close()

		session := requester.New(requester.WithBaseURL(server.URL))
		err := session.DoJSON(requester.Request{Path: "/x"}, nil)

		var apiErr *requester.APIError
		require.ErrorAs(t, err, &apiErr)
		require.Equal(t, "forbidden", apiErr.Message)
	})

	t.Run("unrecognized body passes through", func(t *testing.T) {
		server := newStub(502, `upstream exploded`)
		defer server.Close()

		session := requester.New(requester.WithBaseURL(server.URL))
		err := session.DoJSON(requester.Request{Path: "/x"}, nil)

		var apiErr *requester.APIError
		require.ErrorAs(t, err, &apiErr)
		require.Equal(t, 502, apiErr.StatusCode)
		require.Equal(t, "upstream exploded", apiErr.Message)
	})

	t.Run("override does not apply to server errors", func(t *testing.T) {
		server := newStub(500, `{"message":"boom"}`)
		defer server.Close()

		session := requester.New(requester.WithBaseURL(server.URL))
		err := session.DoJSON(requester.Request{Path: "/x", OnFailure: override}, nil)
		require.Error(t, err)
		require.NotErrorIs(t, err, override)
	})
}

func TestSession_NetworkFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // nothing listening anymore

	session := requester.New(requester.WithBaseURL(server.URL))
	err := session.DoJSON(requester.Request{Path: "/x"}, nil)
	require.Error(t, err)
	require.ErrorIs(t, err, requester.ErrNetwork)
}
