package topdeck

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewClient(&Config{
		BaseURL:     srv.URL,
		APIKey:      "test-key",
		Timeout:     2 * time.Second,
		MinInterval: time.Millisecond,
	})
}

func TestFetchWeekSendsListRequest(t *testing.T) {
	var got tournamentListRequest
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/tournaments", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"TID":"t1","tournamentName":"Weekly","startDate":1735689600,"topCut":4,"standings":[]}]`))
	}))

	tournaments, err := client.FetchWeek(context.Background(), 1735689600, 1736294400)
	require.NoError(t, err)
	require.Len(t, tournaments, 1)
	assert.Equal(t, "t1", tournaments[0].TID)
	assert.Equal(t, 4, tournaments[0].TopCut)

	assert.Equal(t, "Magic: The Gathering", got.Game)
	assert.Equal(t, "EDH", got.Format)
	assert.Equal(t, int64(1735689600), got.Start)
	assert.Equal(t, int64(1736294400), got.End)
	assert.True(t, got.Rounds)
	assert.Equal(t, []string{"table", "players", "winner"}, got.Tables)
	assert.Equal(t, []string{"name", "id", "decklist"}, got.Players)
}

func TestFetchWeekNon2xxIsExternalServiceError(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error":"bad key"}`))
	}))

	_, err := client.FetchWeek(context.Background(), 0, 1)
	var svcErr *ExternalServiceError
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, http.StatusForbidden, svcErr.Status)
	assert.Contains(t, svcErr.Body, "bad key")
}

func TestFetchWeekMalformedBodyIsExternalServiceError(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"not":"an array"`))
	}))

	_, err := client.FetchWeek(context.Background(), 0, 1)
	var svcErr *ExternalServiceError
	require.ErrorAs(t, err, &svcErr)
	assert.Zero(t, svcErr.Status)
}

func TestFetchWeekMissingTIDIsExternalServiceError(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"tournamentName":"No ID","startDate":1735689600}]`))
	}))

	_, err := client.FetchWeek(context.Background(), 0, 1)
	var svcErr *ExternalServiceError
	require.ErrorAs(t, err, &svcErr)
	assert.Contains(t, svcErr.Body, "missing TID")
}

func TestSlowResponseIsTimeoutError(t *testing.T) {
	block := make(chan struct{})
	defer close(block)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	t.Cleanup(srv.Close)

	client := NewClient(&Config{
		BaseURL:     srv.URL,
		APIKey:      "test-key",
		Timeout:     50 * time.Millisecond,
		MinInterval: time.Millisecond,
	})

	_, err := client.FetchTournament(context.Background(), "t1")
	var timeoutErr *TimeoutError
	require.ErrorAs(t, err, &timeoutErr)
}

func TestFetchTournamentEscapesID(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/tournaments/t%2F1", r.URL.EscapedPath())
		w.Write([]byte(`{"TID":"t/1","startDate":1735689600}`))
	}))

	got, err := client.FetchTournament(context.Background(), "t/1")
	require.NoError(t, err)
	assert.Equal(t, "t/1", got.TID)
}

func TestFetchPlayersRejectsOversizedBatch(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("request should not be sent")
	}))

	ids := make([]string, 16)
	for i := range ids {
		ids[i] = "p"
	}
	_, err := client.FetchPlayers(context.Background(), ids)
	assert.Error(t, err)
}

func TestFetchPlayersBatchDedupesAndChunks(t *testing.T) {
	var requests [][]string
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ids := r.URL.Query()["id"]
		requests = append(requests, ids)

		players := make([]Player, 0, len(ids))
		for _, id := range ids {
			players = append(players, Player{ID: id, Name: "player " + id, Elo: 1200})
		}
		json.NewEncoder(w).Encode(players)
	}))

	// 20 unique ids, each duplicated, plus empties to drop.
	var ids []string
	for i := 0; i < 20; i++ {
		id := string(rune('a'+i/10)) + string(rune('0'+i%10))
		ids = append(ids, id, id, "")
	}

	players, err := client.FetchPlayersBatch(context.Background(), ids)
	require.NoError(t, err)
	assert.Len(t, players, 20)

	require.Len(t, requests, 2)
	assert.Len(t, requests[0], 15)
	assert.Len(t, requests[1], 5)
}

func TestFetchPlayersEmptyInput(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("request should not be sent")
	}))

	players, err := client.FetchPlayers(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, players)
}
