// Package main is the entry point for the thread builder Lambda function.
package main

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-lambda-go/lambdacontext"

	"github.com/threadkit/bsky-threader/internal/config"
	"github.com/threadkit/bsky-threader/internal/domain"
	"github.com/threadkit/bsky-threader/internal/handler"
	"github.com/threadkit/bsky-threader/internal/logger"
)

// Routes served behind an API Gateway HTTP API.
var routes = map[string]string{
	"/process_tweet": handler.ActionProcess,
	"/publish":       handler.ActionPublish,
	"/batch":         handler.ActionBatch,
}

var (
	initOnce sync.Once
	h        *handler.Handler
	initErr  error
)

func main() {
	lambda.Start(handleRequest)
}

// setup loads configuration and sentence models once per container.
func setup() (*handler.Handler, error) {
	initOnce.Do(func() {
		if err := config.LoadDotEnv(); err != nil {
			initErr = err
			return
		}
		cfg, err := config.Load()
		if err != nil {
			initErr = err
			return
		}
		logger.Init(&logger.Config{Level: logger.ParseLevel(cfg.LogLevel), JSON: true})
		h, initErr = handler.NewFromConfig(cfg)
	})
	return h, initErr
}

func handleRequest(ctx context.Context, event json.RawMessage) (interface{}, error) {
	// Warmup detection (MUST be first - before any other processing)
	if warmup, ok := IsWarmupEvent(event); ok {
		return HandleWarmup(ctx, warmup)
	}

	h, err := setup()
	if err != nil {
		logger.Error("initialization failed", "error", err)
		return nil, err
	}

	log := logger.With("request_id", requestID(ctx))

	if httpReq, ok := asHTTPRequest(event); ok {
		resp := serveHTTP(ctx, h, httpReq)
		log.Info("http request served", "route", httpReq.RawPath, "status", resp.StatusCode)
		return resp, nil
	}

	// Direct invocation: the event is the request itself
	var req handler.Request
	if err := json.Unmarshal(event, &req); err != nil {
		return handler.NewErrorResponse(&domain.ValidationError{Message: "invalid JSON payload"}), nil
	}

	result, err := h.Handle(ctx, req)
	if err != nil {
		log.Warn("request failed", "action", req.Action, "error", err)
		return handler.NewErrorResponse(err), nil
	}
	return result, nil
}

// asHTTPRequest reports whether event came from an API Gateway HTTP API.
func asHTTPRequest(event json.RawMessage) (events.APIGatewayV2HTTPRequest, bool) {
	var req events.APIGatewayV2HTTPRequest
	if err := json.Unmarshal(event, &req); err != nil {
		return req, false
	}
	if req.RawPath == "" || req.RequestContext.HTTP.Method == "" {
		return req, false
	}
	return req, true
}

func serveHTTP(ctx context.Context, h *handler.Handler, req events.APIGatewayV2HTTPRequest) events.APIGatewayV2HTTPResponse {
	action, ok := routes[strings.TrimRight(req.RawPath, "/")]
	if !ok {
		return jsonResponse(http.StatusNotFound, map[string]string{"error": "not found"})
	}
	if req.RequestContext.HTTP.Method != http.MethodPost {
		return jsonResponse(http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
	}

	var body handler.Request
	if err := json.Unmarshal([]byte(req.Body), &body); err != nil {
		errResp := handler.NewErrorResponse(&domain.ValidationError{Message: "invalid JSON payload"})
		return jsonResponse(errResp.StatusCode, errResp)
	}
	body.Action = action

	result, err := h.Handle(ctx, body)
	if err != nil {
		errResp := handler.NewErrorResponse(err)
		return jsonResponse(errResp.StatusCode, errResp)
	}
	return jsonResponse(http.StatusOK, result)
}

func jsonResponse(status int, v any) events.APIGatewayV2HTTPResponse {
	body, err := json.Marshal(v)
	if err != nil {
		status = http.StatusInternalServerError
		body = []byte(`{"error":"failed to encode response"}`)
	}
	return events.APIGatewayV2HTTPResponse{
		StatusCode: status,
		Headers:    map[string]string{"Content-Type": "application/json; charset=utf-8"},
		Body:       string(body),
	}
}

func requestID(ctx context.Context) string {
	if lc, ok := lambdacontext.FromContext(ctx); ok {
		return lc.AwsRequestID
	}
	return ""
}
