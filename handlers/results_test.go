// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers_test

import (
	"net/http"
	"strings"
	"testing"

	"github.com/danielhkuo/pollroom/models"
	"github.com/danielhkuo/pollroom/testutil"
)

func TestGetResults(t *testing.T) {
	a := setupAPI(t)
	pollID, code, optionIDs := testutil.CreateTestPoll(t, a.conn, "Q", "A", "B")
	testutil.CastTestVote(t, a.conn, pollID, optionIDs[0], "10.0.0.1", "t1")
	testutil.CastTestVote(t, a.conn, pollID, optionIDs[0], "10.0.0.2", "t2")
	testutil.CastTestVote(t, a.conn, pollID, optionIDs[1], "10.0.0.3", "t3")

	w := a.do(testutil.MakeRequest("GET", "/polls/"+code+"/results", nil, nil))
	testutil.AssertStatus(t, w, http.StatusOK)

	var snap models.ResultSnapshot
	testutil.AssertJSON(t, w, &snap)

	if snap.PollCode != code {
		t.Errorf("Expected code %s, got %s", code, snap.PollCode)
	}
	if snap.TotalVotes != 3 {
		t.Errorf("Expected 3 total votes, got %d", snap.TotalVotes)
	}
	if snap.Options[0].VoteCount != 2 || snap.Options[1].VoteCount != 1 {
		t.Errorf("Unexpected counts: %+v", snap.Options)
	}
}

func TestGetResultsEmptyPoll(t *testing.T) {
	a := setupAPI(t)
	_, code, _ := testutil.CreateTestPoll(t, a.conn, "Q", "A", "B")

	w := a.do(testutil.MakeRequest("GET", "/polls/"+code+"/results", nil, nil))
	testutil.AssertStatus(t, w, http.StatusOK)

	var snap models.ResultSnapshot
	testutil.AssertJSON(t, w, &snap)
	if snap.TotalVotes != 0 {
		t.Errorf("Expected 0 votes, got %d", snap.TotalVotes)
	}
	for _, opt := range snap.Options {
		if opt.Percentage != 0 {
			t.Errorf("Expected 0%% for %s, got %.1f", opt.Label, opt.Percentage)
		}
	}
}

func TestGetResultsNotFound(t *testing.T) {
	a := setupAPI(t)

	w := a.do(testutil.MakeRequest("GET", "/polls/DEADBEEF/results", nil, nil))
	testutil.AssertStatus(t, w, http.StatusNotFound)

	w = a.do(testutil.MakeRequest("GET", "/polls/bad!/results", nil, nil))
	testutil.AssertStatus(t, w, http.StatusNotFound)
}

func TestGetResultsCodeNormalized(t *testing.T) {
	a := setupAPI(t)
	_, code, _ := testutil.CreateTestPoll(t, a.conn, "Q", "A", "B")

	w := a.do(testutil.MakeRequest("GET", "/polls/"+strings.ToLower(code)+"/results", nil, nil))
	testutil.AssertStatus(t, w, http.StatusOK)
}
