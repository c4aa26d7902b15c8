package wompi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetTransaction_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/transactions/tx-1", r.URL.Path)
		assert.Equal(t, "Bearer prv_test", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":{"id":"tx-1","status":"APPROVED","amount_in_cents":5000000,"reference":"crebit-x-1","currency":"COP"}}`))
	}))
	defer server.Close()

	client := NewClient("prv_test", server.URL+"/")
	tx, err := client.GetTransaction(context.Background(), "tx-1")

	require.NoError(t, err)
	assert.Equal(t, "tx-1", tx.ID)
	assert.Equal(t, StatusApproved, tx.Status)
	assert.Equal(t, int64(5000000), tx.AmountInCents)
	assert.Equal(t, "crebit-x-1", tx.Reference)
}

func TestGetTransaction_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	_, err := NewClient("", server.URL).GetTransaction(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrTransactionNotFound)
}

func TestGetTransaction_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{"data":{"id":"tx-2","status":"DECLINED","amount_in_cents":100}}`))
	}))
	defer server.Close()

	tx, err := NewClient("", server.URL).GetTransaction(context.Background(), "tx-2")

	require.NoError(t, err)
	assert.Equal(t, "DECLINED", tx.Status)
	assert.Equal(t, int32(3), calls.Load())
}

func TestGetTransaction_ClientErrorIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"type":"INVALID_ACCESS_TOKEN","reason":"bad key"}}`))
	}))
	defer server.Close()

	_, err := NewClient("bad", server.URL).GetTransaction(context.Background(), "tx-3")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "INVALID_ACCESS_TOKEN")
	assert.Equal(t, int32(1), calls.Load())
}
