package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"fragportal/internal/client"
	"fragportal/internal/model"
	"fragportal/internal/stats"
)

func TestRun_MatchSortsLocally(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("sort") != "" {
			t.Errorf("Expected no server-side sort, got %q", r.URL.RawQuery)
		}
		view := stats.MatchView{
			Match:   model.Match{ID: "m1", Teams: [2]string{"faze", "g2"}},
			Round:   1,
			Winners: []stats.StatLine{{PlayerRoundStat: model.PlayerRoundStat{Nickname: "low", Kills: 5, Deaths: 10}}, {PlayerRoundStat: model.PlayerRoundStat{Nickname: "high", Kills: 30, Deaths: 10}}},
			Losers:  []stats.StatLine{},
		}
		_ = json.NewEncoder(w).Encode(view)
	}))
	defer srv.Close()

	var out bytes.Buffer
	c := client.New(srv.URL, nil)
	if err := run(context.Background(), c, &out, "match", []string{"-sort", "kills", "-dir", "desc", "m1"}); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	text := out.String()
	if strings.Index(text, "high") > strings.Index(text, "low") {
		t.Errorf("Expected high before low, got:\n%s", text)
	}
	if !strings.Contains(text, "3.00") {
		t.Errorf("Expected formatted K/D 3.00, got:\n%s", text)
	}
}

func TestRun_RejectsBadInput(t *testing.T) {
	c := client.New("http://127.0.0.1:0", nil)
	var out bytes.Buffer
	for _, tc := range []struct {
		cmd  string
		args []string
	}{
		{"nope", nil},
		{"match", nil},
		{"match", []string{"-sort", "bogus", "m1"}},
		{"team", nil},
		{"tournaments", nil},
	} {
		if err := run(context.Background(), c, &out, tc.cmd, tc.args); err == nil {
			t.Errorf("Expected error for %s %v", tc.cmd, tc.args)
		}
	}
}
