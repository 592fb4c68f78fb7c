package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kweiss-dev/minerva/internal/core/domain"
)

func TestClassifierParsesClassification(t *testing.T) {
	gen := NewGenClient(testLogger(), &fakeGenerator{script: []fakeReply{
		{Text: `{
			"intent": "code_request",
			"response_kind": "code",
			"requires_tools": ["search_personal_notes"],
			"complexity": "moderate",
			"keywords": ["http", "server"]
		}`},
	}}, fastOpts())
	classifier := NewClassifier(testLogger(), gen, nil)

	c := classifier.Classify(context.Background(), "write me an http server")
	assert.Equal(t, domain.IntentCodeRequest, c.Intent)
	assert.Equal(t, domain.KindCode, c.ResponseKind)
	assert.Equal(t, []string{"search_personal_notes"}, c.RequiresTools)
	assert.Equal(t, domain.ComplexityModerate, c.Complexity)
	assert.Equal(t, []string{"http", "server"}, c.Keywords)
}

func TestClassifierBackendFailureFallsBackToDefault(t *testing.T) {
	backendErr := errors.New("connection refused")
	gen := NewGenClient(testLogger(), &fakeGenerator{script: []fakeReply{
		{Err: backendErr}, {Err: backendErr}, {Err: backendErr},
	}}, fastOpts())
	classifier := NewClassifier(testLogger(), gen, nil)

	c := classifier.Classify(context.Background(), "hello")
	assert.Equal(t, domain.DefaultClassification(), c)
}

func TestClassifierMalformedReplyNormalizesToDefaults(t *testing.T) {
	// The raw-text wrap decodes into an empty classificationShape; every field
	// must be normalized to a safe value.
	gen := NewGenClient(testLogger(), &fakeGenerator{script: []fakeReply{
		{Text: "I cannot classify that."},
	}}, fastOpts())
	classifier := NewClassifier(testLogger(), gen, nil)

	c := classifier.Classify(context.Background(), "hello")
	assert.Equal(t, domain.IntentQuestion, c.Intent)
	assert.Equal(t, domain.KindConversational, c.ResponseKind)
	assert.Equal(t, domain.ComplexitySimple, c.Complexity)
	require.NotNil(t, c.RequiresTools)
	assert.Empty(t, c.RequiresTools)
	require.NotNil(t, c.Keywords)
	assert.Empty(t, c.Keywords)
}

func TestClassifierPromptIncludesToolCatalogue(t *testing.T) {
	registry := domain.NewToolRegistry()
	require.NoError(t, registry.Register(NewCalculateTool()))
	classifier := NewClassifier(testLogger(), nil, registry)

	prompt := classifier.buildPrompt("what is 2+2")
	assert.Contains(t, prompt, "Available Tools:")
	assert.Contains(t, prompt, "calculate")
	assert.Contains(t, prompt, "what is 2+2")
}
