// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers_test

import (
	"net/http"
	"strings"
	"testing"

	"github.com/danielhkuo/pollroom/auth"
	"github.com/danielhkuo/pollroom/middleware"
	"github.com/danielhkuo/pollroom/models"
	"github.com/danielhkuo/pollroom/testutil"
)

func TestCreatePoll(t *testing.T) {
	a := setupAPI(t)

	req := testutil.MakeRequest("POST", "/polls", models.CreatePollRequest{
		Question: "Tabs or spaces?",
		Options:  []string{"Tabs", "Spaces"},
	}, nil)
	w := a.do(req)

	testutil.AssertStatus(t, w, http.StatusCreated)

	var resp models.CreatePollResponse
	testutil.AssertJSON(t, w, &resp)

	if !auth.ValidCode(resp.Poll.Code) {
		t.Errorf("Expected a valid poll code, got %q", resp.Poll.Code)
	}
	if resp.Poll.Question != "Tabs or spaces?" {
		t.Errorf("Unexpected question: %q", resp.Poll.Question)
	}
	if len(resp.Options) != 2 {
		t.Fatalf("Expected 2 options, got %d", len(resp.Options))
	}
	if resp.Options[0].Label != "Tabs" || resp.Options[1].Label != "Spaces" {
		t.Errorf("Options out of order: %+v", resp.Options)
	}
	if !strings.HasSuffix(resp.ShareURL, "/poll/"+resp.Poll.Code) {
		t.Errorf("Unexpected share URL: %q", resp.ShareURL)
	}
	if resp.Poll.CreatedAgo == "" {
		t.Error("Expected created_ago to be set")
	}
}

func TestCreatePollTrimsInput(t *testing.T) {
	a := setupAPI(t)

	req := testutil.MakeRequest("POST", "/polls", models.CreatePollRequest{
		Question: "  Lunch?  ",
		Options:  []string{" Pizza ", "Sushi"},
	}, nil)
	w := a.do(req)

	testutil.AssertStatus(t, w, http.StatusCreated)

	var resp models.CreatePollResponse
	testutil.AssertJSON(t, w, &resp)
	if resp.Poll.Question != "Lunch?" {
		t.Errorf("Question not trimmed: %q", resp.Poll.Question)
	}
	if resp.Options[0].Label != "Pizza" {
		t.Errorf("Option not trimmed: %q", resp.Options[0].Label)
	}
}

func TestCreatePollValidation(t *testing.T) {
	a := setupAPI(t)

	long := strings.Repeat("x", 501)
	longOption := strings.Repeat("x", 201)

	tests := []struct {
		name string
		body models.CreatePollRequest
	}{
		{"empty question", models.CreatePollRequest{Question: "", Options: []string{"A", "B"}}},
		{"blank question", models.CreatePollRequest{Question: "   ", Options: []string{"A", "B"}}},
		{"question too long", models.CreatePollRequest{Question: long, Options: []string{"A", "B"}}},
		{"too few options", models.CreatePollRequest{Question: "Q", Options: []string{"A"}}},
		{"no options", models.CreatePollRequest{Question: "Q"}},
		{"too many options", models.CreatePollRequest{Question: "Q", Options: []string{
			"1", "2", "3", "4", "5", "6", "7", "8", "9", "10", "11"}}},
		{"empty option", models.CreatePollRequest{Question: "Q", Options: []string{"A", " "}}},
		{"option too long", models.CreatePollRequest{Question: "Q", Options: []string{"A", longOption}}},
		{"duplicate options", models.CreatePollRequest{Question: "Q", Options: []string{"A", "A"}}},
		{"duplicate after trim", models.CreatePollRequest{Question: "Q", Options: []string{"A", " A "}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := a.do(testutil.MakeRequest("POST", "/polls", tt.body, nil))
			testutil.AssertStatus(t, w, http.StatusBadRequest)
		})
	}
}

func TestCreatePollInvalidJSON(t *testing.T) {
	a := setupAPI(t)

	req := testutil.MakeRequest("POST", "/polls", nil, nil)
	w := a.do(req)
	testutil.AssertStatus(t, w, http.StatusBadRequest)
}

func TestCreatePollRateLimited(t *testing.T) {
	a := setupAPIWithLimit(t, 1)

	body := models.CreatePollRequest{Question: "Q", Options: []string{"A", "B"}}

	w := a.do(testutil.MakeRequest("POST", "/polls", body, nil))
	testutil.AssertStatus(t, w, http.StatusCreated)

	w = a.do(testutil.MakeRequest("POST", "/polls", body, nil))
	testutil.AssertStatus(t, w, http.StatusTooManyRequests)
}

func TestGetPoll(t *testing.T) {
	a := setupAPI(t)
	_, code, _ := testutil.CreateTestPoll(t, a.conn, "Tabs or spaces?", "Tabs", "Spaces")

	w := a.do(testutil.MakeRequest("GET", "/polls/"+code, nil, nil))
	testutil.AssertStatus(t, w, http.StatusOK)

	var resp models.PollViewResponse
	testutil.AssertJSON(t, w, &resp)

	if resp.Poll.Code != code {
		t.Errorf("Expected code %s, got %s", code, resp.Poll.Code)
	}
	if len(resp.Options) != 2 {
		t.Errorf("Expected 2 options, got %d", len(resp.Options))
	}
	if resp.HasVoted {
		t.Error("Fresh browser should not have voted")
	}
	if resp.Snapshot.TotalVotes != 0 {
		t.Errorf("Expected empty snapshot, got %d votes", resp.Snapshot.TotalVotes)
	}
}

func TestGetPollMintsVoterToken(t *testing.T) {
	a := setupAPI(t)
	_, code, _ := testutil.CreateTestPoll(t, a.conn, "Q", "A", "B")

	w := a.do(testutil.MakeRequest("GET", "/polls/"+code, nil, nil))
	testutil.AssertStatus(t, w, http.StatusOK)

	var token *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == middleware.VoterTokenCookie {
			token = c
		}
	}
	if token == nil {
		t.Fatal("Expected a voter_token cookie on first visit")
	}
	if token.Value == "" || !token.HttpOnly {
		t.Errorf("Unexpected cookie attributes: %+v", token)
	}

	// A returning browser keeps its token.
	w = a.do(testutil.MakeRequest("GET", "/polls/"+code, nil,
		map[string]string{"X-Voter-Token": token.Value}))
	testutil.AssertStatus(t, w, http.StatusOK)
	for _, c := range w.Result().Cookies() {
		if c.Name == middleware.VoterTokenCookie {
			t.Error("Returning browser should not get a fresh token")
		}
	}
}

func TestGetPollShowsExistingVote(t *testing.T) {
	a := setupAPI(t)
	pollID, code, optionIDs := testutil.CreateTestPoll(t, a.conn, "Q", "A", "B")
	testutil.CastTestVote(t, a.conn, pollID, optionIDs[1], "192.0.2.1", "tok-1")

	w := a.do(testutil.MakeRequest("GET", "/polls/"+code, nil,
		map[string]string{"X-Voter-Token": "tok-1"}))
	testutil.AssertStatus(t, w, http.StatusOK)

	var resp models.PollViewResponse
	testutil.AssertJSON(t, w, &resp)

	if !resp.HasVoted {
		t.Error("Expected has_voted for a returning voter")
	}
	if resp.VotedOptionID != optionIDs[1] {
		t.Errorf("Expected voted option %s, got %s", optionIDs[1], resp.VotedOptionID)
	}
	if resp.Snapshot.TotalVotes != 1 {
		t.Errorf("Expected 1 vote in snapshot, got %d", resp.Snapshot.TotalVotes)
	}
}

func TestGetPollNotFound(t *testing.T) {
	a := setupAPI(t)

	// Well-formed but unknown.
	w := a.do(testutil.MakeRequest("GET", "/polls/DEADBEEF", nil, nil))
	testutil.AssertStatus(t, w, http.StatusNotFound)

	// Malformed code never reaches the database.
	w = a.do(testutil.MakeRequest("GET", "/polls/not-a-code", nil, nil))
	testutil.AssertStatus(t, w, http.StatusNotFound)
}

func TestGetPollCodeNormalized(t *testing.T) {
	a := setupAPI(t)
	_, code, _ := testutil.CreateTestPoll(t, a.conn, "Q", "A", "B")

	w := a.do(testutil.MakeRequest("GET", "/polls/"+strings.ToLower(code), nil, nil))
	testutil.AssertStatus(t, w, http.StatusOK)
}
