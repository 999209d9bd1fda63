package tests

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strengthlab/overload/internal/config"
	"github.com/strengthlab/overload/internal/server"
)

// TestGoldenPath walks the happy path end to end: login, build a template,
// schedule a workout for today, start it, log sets, finish it, ask for the
// next session's suggestion.
func TestGoldenPath(t *testing.T) {
	// 1. Setup Infrastructure
	// MongoDB (Container)
	db, cleanupDB := SetupTestDB(t)
	defer cleanupDB()

	// Redis (Miniredis for speed/simplicity)
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	// Mock Auth
	mockAuth := NewMockAuthClient()

	// Every request in this test happens at 10:00 on 2025-12-10.
	now := time.Date(2025, 12, 10, 10, 0, 0, 0, time.UTC)

	// Config (Minimal)
	cfg := &config.Config{}
	cfg.Server.MaxBodySizeMB = 10
	cfg.App.SuggestionCacheTTL = 15 * time.Minute
	cfg.JWT.Secret = "test-secret-key-123"
	cfg.JWT.AccessTokenExpiry = time.Hour
	cfg.JWT.RefreshTokenExpiry = 24 * time.Hour

	fileRepo := NewMemoryFileRepo()

	// 2. Initialize App
	app := server.NewApp(server.AppDependencies{
		Config:      cfg,
		MongoDB:     db,
		RedisClient: redisClient,
		AuthClient:  mockAuth,
		Clock:       FixedClock{T: now},
		FileRepo:    fileRepo,
	})

	// Helper for requests
	request := func(method, path, token string, body interface{}) *http.Response {
		var bodyReader io.Reader
		if body != nil {
			jsonBytes, _ := json.Marshal(body)
			bodyReader = bytes.NewReader(jsonBytes)
		}
		req, _ := http.NewRequest(method, path, bodyReader)
		req.Header.Set("Content-Type", "application/json")
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		return resp
	}
	decode := func(resp *http.Response) map[string]interface{} {
		var data map[string]interface{}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&data))
		return data
	}

	// ==========================================
	// STEP 1: Login (auto-registers the user)
	// ==========================================
	mockAuth.AddMockUser("token_lifter", "uid_lifter", "lifter@example.com")

	resp := request("POST", "/v1/auth/login", "token_lifter", nil)
	require.Equal(t, 200, resp.StatusCode)

	loginData := decode(resp)
	accessToken, _ := loginData["token"].(string)
	require.NotEmpty(t, accessToken)
	assert.Equal(t, true, loginData["is_new_user"])

	fmt.Println("✓ Logged in")

	// Logging in again with the same identity must not create a second user.
	resp = request("POST", "/v1/auth/login", "token_lifter", nil)
	require.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, false, decode(resp)["is_new_user"])

	// ==========================================
	// STEP 2: Create a template
	// ==========================================
	resp = request("POST", "/v1/templates/", accessToken, map[string]interface{}{
		"name": "Push Day",
		"exercises": []map[string]interface{}{
			{"name": "Barbell Bench Press", "target_sets": 3, "target_rep_min": 8, "target_rep_max": 12},
			{"name": "Overhead Press", "target_sets": 3, "target_rep_min": 6, "target_rep_max": 10},
		},
	})
	require.Equal(t, 201, resp.StatusCode)
	templateID, _ := decode(resp)["id"].(string)
	require.NotEmpty(t, templateID)

	fmt.Println("✓ Template created")

	// ==========================================
	// STEP 3: Schedule today's workout
	// ==========================================
	resp = request("POST", "/v1/workouts/", accessToken, map[string]string{
		"date":        "2025-12-10",
		"template_id": templateID,
	})
	require.Equal(t, 201, resp.StatusCode)
	workoutData := decode(resp)
	workoutID, _ := workoutData["id"].(string)
	require.NotEmpty(t, workoutID)
	assert.Nil(t, workoutData["exercises"])

	// A workout scheduled for another day cannot be started today.
	resp = request("POST", "/v1/workouts/", accessToken, map[string]string{"date": "2025-12-09"})
	require.Equal(t, 201, resp.StatusCode)
	yesterdayID, _ := decode(resp)["id"].(string)

	resp = request("POST", "/v1/workouts/"+yesterdayID+"/start", accessToken, nil)
	require.Equal(t, 400, resp.StatusCode)
	assert.Contains(t, decode(resp)["error"], "not scheduled for today")

	// ==========================================
	// STEP 4: Suggestion before starting (from the template, no history)
	// ==========================================
	resp = request("POST", "/v1/workouts/"+workoutID+"/suggestions", accessToken, nil)
	require.Equal(t, 200, resp.StatusCode)
	suggestion := decode(resp)
	exercises, _ := suggestion["exercises"].([]interface{})
	require.Len(t, exercises, 2)
	first, _ := exercises[0].(map[string]interface{})
	assert.Contains(t, first["notes"], "First time")

	fmt.Println("✓ First-time suggestion served")

	// ==========================================
	// STEP 5: Start the workout (snapshots the template)
	// ==========================================
	resp = request("POST", "/v1/workouts/"+workoutID+"/start", accessToken, nil)
	require.Equal(t, 200, resp.StatusCode)
	started := decode(resp)
	snapshot, _ := started["exercises"].([]interface{})
	require.Len(t, snapshot, 2)
	bench, _ := snapshot[0].(map[string]interface{})
	assert.Equal(t, "Barbell Bench Press", bench["name"])
	benchSets, _ := bench["sets"].([]interface{})
	assert.Len(t, benchSets, 3)

	// Starting twice is rejected.
	resp = request("POST", "/v1/workouts/"+workoutID+"/start", accessToken, nil)
	require.Equal(t, 400, resp.StatusCode)
	assert.Contains(t, decode(resp)["error"], "already started")

	fmt.Println("✓ Workout started, template snapshotted")

	// ==========================================
	// STEP 6: Log the performed sets
	// ==========================================
	logged := []map[string]interface{}{
		{
			"exercise_id": bench["exercise_id"], "name": "Barbell Bench Press",
			"target_sets": 3, "target_rep_min": 8, "target_rep_max": 12,
			"sets": []map[string]interface{}{
				{"reps": 12, "weight": 60, "completed": true},
				{"reps": 12, "weight": 60, "completed": true},
				{"reps": 12, "weight": 60, "completed": true},
			},
		},
		{
			"name":        "Overhead Press",
			"target_sets": 3, "target_rep_min": 6, "target_rep_max": 10,
			"sets": []map[string]interface{}{
				{"reps": 8, "weight": 40, "completed": true},
				{"reps": 7, "weight": 40, "completed": true},
				{"reps": 6, "weight": 40, "completed": true},
			},
		},
	}
	resp = request("PUT", "/v1/workouts/"+workoutID+"/exercises", accessToken, map[string]interface{}{
		"exercises": logged,
	})
	require.Equal(t, 200, resp.StatusCode)

	// ==========================================
	// STEP 7: Finish
	// ==========================================
	resp = request("POST", "/v1/workouts/"+workoutID+"/finish", accessToken, nil)
	require.Equal(t, 200, resp.StatusCode)
	finished := decode(resp)
	assert.NotNil(t, finished["end_time"])

	// Completed is terminal.
	resp = request("POST", "/v1/workouts/"+workoutID+"/finish", accessToken, nil)
	require.Equal(t, 400, resp.StatusCode)

	// And immutable.
	resp = request("PATCH", "/v1/workouts/"+workoutID, accessToken, map[string]string{"date": "2025-12-11"})
	require.Equal(t, 400, resp.StatusCode)

	// A completed workout has nothing left to suggest.
	resp = request("POST", "/v1/workouts/"+workoutID+"/suggestions", accessToken, nil)
	require.Equal(t, 400, resp.StatusCode)

	fmt.Println("✓ Workout completed")

	// ==========================================
	// STEP 8: Next session's suggestion uses the logged history
	// ==========================================
	resp = request("POST", "/v1/workouts/", accessToken, map[string]string{
		"date":        "2025-12-11",
		"template_id": templateID,
	})
	require.Equal(t, 201, resp.StatusCode)
	nextID, _ := decode(resp)["id"].(string)

	resp = request("POST", "/v1/workouts/"+nextID+"/suggestions", accessToken, nil)
	require.Equal(t, 200, resp.StatusCode)
	nextSuggestion := decode(resp)
	nextExercises, _ := nextSuggestion["exercises"].([]interface{})
	require.Len(t, nextExercises, 2)

	// Bench hit the top of the range on every set, so the load goes up 2.5.
	nextBench, _ := nextExercises[0].(map[string]interface{})
	nextBenchSets, _ := nextBench["sets"].([]interface{})
	require.Len(t, nextBenchSets, 3)
	firstSet, _ := nextBenchSets[0].(map[string]interface{})
	assert.Equal(t, 62.5, firstSet["weight"])

	// Overhead press stayed inside its range, so the load holds.
	nextPress, _ := nextExercises[1].(map[string]interface{})
	nextPressSets, _ := nextPress["sets"].([]interface{})
	require.Len(t, nextPressSets, 3)
	pressSet, _ := nextPressSets[0].(map[string]interface{})
	assert.Equal(t, 40.0, pressSet["weight"])

	fmt.Println("✓ Progressive overload suggestion computed")

	// ==========================================
	// STEP 9: Export the training history
	// ==========================================
	resp = request("POST", "/v1/workouts/export", accessToken, nil)
	require.Equal(t, 200, resp.StatusCode)
	exportURL, _ := decode(resp)["url"].(string)
	require.NotEmpty(t, exportURL)
	require.Len(t, fileRepo.Files, 1)
	for _, raw := range fileRepo.Files {
		var export map[string]interface{}
		require.NoError(t, json.Unmarshal(raw, &export))
		workouts, _ := export["workouts"].([]interface{})
		assert.Len(t, workouts, 1)
	}

	fmt.Println("✓ History exported")

	// ==========================================
	// STEP 10: Isolation between users
	// ==========================================
	mockAuth.AddMockUser("token_other", "uid_other", "other@example.com")
	resp = request("POST", "/v1/auth/login", "token_other", nil)
	require.Equal(t, 200, resp.StatusCode)
	otherToken, _ := decode(resp)["token"].(string)
	require.NotEmpty(t, otherToken)

	resp = request("GET", "/v1/workouts/"+workoutID, otherToken, nil)
	assert.Equal(t, 404, resp.StatusCode)

	resp = request("GET", "/v1/workouts/"+workoutID, "", nil)
	assert.Equal(t, 401, resp.StatusCode)

	fmt.Println("✓ User isolation enforced")
}

// TestIdempotentTransitions covers the retry contract: replaying a lifecycle
// request with the same correlation id returns the stored response instead of
// re-running the transition.
func TestIdempotentTransitions(t *testing.T) {
	db, cleanupDB := SetupTestDB(t)
	defer cleanupDB()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	mockAuth := NewMockAuthClient()
	mockAuth.AddMockUser("token_lifter", "uid_lifter", "lifter@example.com")

	now := time.Date(2025, 12, 10, 10, 0, 0, 0, time.UTC)
	cfg := &config.Config{}
	cfg.Server.MaxBodySizeMB = 10
	cfg.JWT.Secret = "test-secret-key-123"
	cfg.JWT.AccessTokenExpiry = time.Hour
	cfg.JWT.RefreshTokenExpiry = 24 * time.Hour

	app := server.NewApp(server.AppDependencies{
		Config:      cfg,
		MongoDB:     db,
		RedisClient: redisClient,
		AuthClient:  mockAuth,
		Clock:       FixedClock{T: now},
		FileRepo:    NewMemoryFileRepo(),
	})

	request := func(method, path, token, correlationID string, body interface{}) *http.Response {
		var bodyReader io.Reader
		if body != nil {
			jsonBytes, _ := json.Marshal(body)
			bodyReader = bytes.NewReader(jsonBytes)
		}
		req, _ := http.NewRequest(method, path, bodyReader)
		req.Header.Set("Content-Type", "application/json")
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		if correlationID != "" {
			req.Header.Set("X-Correlation-ID", correlationID)
		}
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		return resp
	}

	resp := request("POST", "/v1/auth/login", "token_lifter", "", nil)
	require.Equal(t, 200, resp.StatusCode)
	var loginData map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&loginData))
	accessToken, _ := loginData["token"].(string)

	resp = request("POST", "/v1/workouts/", accessToken, "", map[string]string{"date": "2025-12-10"})
	require.Equal(t, 201, resp.StatusCode)
	var workoutData map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&workoutData))
	workoutID, _ := workoutData["id"].(string)
	require.NotEmpty(t, workoutID)

	// First start succeeds; the replay with the same correlation id returns
	// the stored 200 instead of the "already started" rejection.
	resp = request("POST", "/v1/workouts/"+workoutID+"/start", accessToken, "corr-1", nil)
	require.Equal(t, 200, resp.StatusCode)
	firstBody, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Contains(t, string(firstBody), "in_progress")

	// The response cache write is asynchronous.
	require.Eventually(t, func() bool {
		return mr.Exists("idempotency:corr-1")
	}, 2*time.Second, 10*time.Millisecond)

	// A fresh correlation id sees the real state machine. This also recycles
	// the server's response buffers before the replay.
	resp = request("POST", "/v1/workouts/"+workoutID+"/start", accessToken, "corr-2", nil)
	assert.Equal(t, 400, resp.StatusCode)

	resp = request("POST", "/v1/workouts/"+workoutID+"/start", accessToken, "corr-1", nil)
	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, "true", resp.Header.Get("X-Idempotent-Replay"))
	replayedBody, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, string(firstBody), string(replayedBody))
}
