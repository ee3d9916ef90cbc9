// Package chatbot routes chat requests: cache probe, intent classification,
// handler dispatch, response caching. HandleUserQuery never returns an error;
// every failure becomes a degraded reply.
package chatbot

import (
	"context"
	"fmt"
	"time"

	"retail-chatbot/internal/analytics"
	"retail-chatbot/internal/cache"
	"retail-chatbot/internal/common/errors"
	"retail-chatbot/internal/common/logger"
	"retail-chatbot/internal/common/metrics"
	"retail-chatbot/internal/common/observability"
	"retail-chatbot/internal/concept"
	"retail-chatbot/internal/handlers"
	"retail-chatbot/internal/model"
)

const errorResponseMessage = "An error occurred while processing your request."

// IntentClassifier resolves a query to an intent label.
// *classifier.Classifier satisfies it.
type IntentClassifier interface {
	Classify(ctx context.Context, query string) model.Intent
}

// Service is the request router.
type Service struct {
	classifier IntentClassifier
	registry   *handlers.Registry
	cache      cache.ResponseCache
	recorder   analytics.Recorder
	obs        *observability.Observability
	errHandler *errors.ErrorHandler
	log        logger.Logger
}

func NewService(
	cls IntentClassifier,
	registry *handlers.Registry,
	responseCache cache.ResponseCache,
	recorder analytics.Recorder,
	obs *observability.Observability,
	log logger.Logger,
) *Service {
	if recorder == nil {
		recorder = analytics.NewNoopRecorder()
	}
	return &Service{
		classifier: cls,
		registry:   registry,
		cache:      responseCache,
		recorder:   recorder,
		obs:        obs,
		errHandler: errors.NewErrorHandler(log),
		log:        log,
	}
}

// HandleUserQuery processes one chat request end to end.
func (s *Service) HandleUserQuery(ctx context.Context, req *model.ChatRequest) (resp *model.ChatbotResponse) {
	start := time.Now()
	query := req.Query()

	defer func() {
		if r := recover(); r != nil {
			s.log.Error("Panic while processing query", map[string]interface{}{
				"query": query,
				"panic": fmt.Sprintf("%v", r),
			})
			resp = s.errorResponse(req, model.IntentError, start, fmt.Errorf("panic: %v", r))
		}
	}()

	s.log.Info("Processing query", map[string]interface{}{
		"query":   query,
		"concept": req.Concept,
	})

	cacheable := cache.Cacheable(req)
	var cacheKey string
	if cacheable && s.cache != nil {
		cacheKey = cache.Key(req)
		if cached, ok := s.cache.Get(ctx, cacheKey); ok {
			metrics.ResponseCacheHits.Inc()
			s.log.Info("Cache hit", map[string]interface{}{"query": query})
			return cached.WithCacheInfo(true, time.Since(start).Milliseconds())
		}
		metrics.ResponseCacheMisses.Inc()
	}

	intent := s.classifier.Classify(ctx, query)
	metrics.ChatRequestsTotal.WithLabelValues(string(intent)).Inc()
	if s.obs != nil {
		s.obs.RecordRequestProcessed(ctx, string(intent))
	}

	handler, ok := s.registry.Resolve(intent)
	if !ok {
		s.log.Warn("No handler for intent, falling back to general", map[string]interface{}{
			"intent": intent,
		})
		handler, ok = s.registry.Resolve(model.IntentGeneralQuery)
		if !ok {
			return s.errorResponse(req, intent, start, fmt.Errorf("no handler registered for %s", intent))
		}
	}

	out, err := handler.Handle(ctx, req, start)
	if err != nil {
		return s.errorResponse(req, intent, start, err)
	}

	if cacheable && s.cache != nil {
		s.cache.Put(ctx, cacheKey, out)
	}

	elapsed := time.Since(start)
	metrics.ChatRequestDuration.WithLabelValues(string(intent)).Observe(elapsed.Seconds())
	if s.obs != nil {
		s.obs.RecordRequestDuration(ctx, elapsed, string(intent))
	}

	s.track(ctx, req, out)
	return out.WithCacheInfo(false, elapsed.Milliseconds())
}

// errorResponse is the degraded reply for any failure. The apology carries
// the brand's support line so the customer is never left without a next step.
func (s *Service) errorResponse(req *model.ChatRequest, intent model.Intent, start time.Time, err error) *model.ChatbotResponse {
	stdErr := s.errHandler.Normalize(err)
	s.errHandler.LogError(string(intent), req.Concept, stdErr)
	metrics.ChatRequestsFailed.WithLabelValues(string(intent), string(stdErr.Code)).Inc()

	elapsed := time.Since(start).Milliseconds()
	return &model.ChatbotResponse{
		Data: fmt.Sprintf(
			"I'm sorry, I couldn't process that right now. Please try again, or call %s for assistance.",
			concept.SupportPhone(req.Concept),
		),
		Intent:         model.IntentError,
		ResponseTimeMs: elapsed,
		Success:        false,
		ErrorResponse:  errorResponseMessage,
		Metadata: map[string]interface{}{
			"error":            stdErr.Message,
			"errorCode":        string(stdErr.Code),
			"processingTimeMs": elapsed,
		},
	}
}

// track hands the conversation to analytics without blocking the reply.
func (s *Service) track(ctx context.Context, req *model.ChatRequest, resp *model.ChatbotResponse) {
	rec := analytics.Record{
		UserID:         req.UserID,
		Concept:        req.Concept,
		Query:          req.Query(),
		Intent:         string(resp.Intent),
		Success:        resp.Success,
		ResponseTimeMs: resp.ResponseTimeMs,
		Timestamp:      time.Now().UTC(),
	}
	if resp.TokenUsage != nil {
		rec.PromptTokens = resp.TokenUsage.PromptTokens
		rec.CompletionTokens = resp.TokenUsage.CompletionTokens
		rec.Model = resp.TokenUsage.Model
		rec.FinishReason = resp.TokenUsage.FinishReason
	}

	go func() {
		trackCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := s.recorder.Track(trackCtx, rec); err != nil {
			s.log.Warn("Analytics tracking failed", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}()
}
