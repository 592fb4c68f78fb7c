package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kweiss-dev/minerva/internal/core/domain"
)

func newTestSynthesizer(fake *fakeGenerator) *Synthesizer {
	gen := NewGenClient(testLogger(), fake, fastOpts())
	return NewSynthesizer(testLogger(), gen, domain.NewSchemaRegistry())
}

func TestSynthesizeNormalizesCandidate(t *testing.T) {
	synth := newTestSynthesizer(&fakeGenerator{script: []fakeReply{
		{Text: `{"topic": "Greetings", "message": "Hello there!", "confidence": 0.92}`},
	}})

	resp, err := synth.Synthesize(context.Background(), "hi", domain.KindConversational, nil, nil)
	require.NoError(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, domain.KindConversational, resp.Kind)
	assert.Equal(t, "Greetings", resp.Topic)
	assert.Equal(t, "Hello there!", resp.Message)
	assert.Equal(t, 0.92, resp.Confidence)
}

func TestSynthesizeDefaultsTopicAndConfidence(t *testing.T) {
	synth := newTestSynthesizer(&fakeGenerator{script: []fakeReply{
		{Text: `{"message": "Just a message."}`},
	}})

	resp, err := synth.Synthesize(context.Background(), "hi", domain.KindConversational, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "Response", resp.Topic)
	assert.Equal(t, 0.8, resp.Confidence)
}

func TestSynthesizeSurfacesRawTextAsMessage(t *testing.T) {
	// An unparseable backend reply arrives wrapped as {"text": raw}; the
	// normalizer keeps it as the message instead of losing it.
	synth := newTestSynthesizer(&fakeGenerator{script: []fakeReply{
		{Text: "Plain prose, no JSON at all."},
	}})

	resp, err := synth.Synthesize(context.Background(), "hi", domain.KindConversational, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "Plain prose, no JSON at all.", resp.Message)
	assert.Equal(t, domain.KindConversational, resp.Kind)
}

func TestSynthesizeForcesResolvedKind(t *testing.T) {
	// The model lies about its own kind; the resolved schema wins.
	synth := newTestSynthesizer(&fakeGenerator{script: []fakeReply{
		{Text: `{"kind": "conversational", "topic": "Code", "code_blocks": [{"language": "go", "code": "package main"}]}`},
	}})

	resp, err := synth.Synthesize(context.Background(), "code please", domain.KindCode, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, domain.KindCode, resp.Kind)
}

func TestSynthesizeAttachesSources(t *testing.T) {
	sources := []domain.Source{{Type: "note", Title: "Runbook", NoteID: "n1"}}
	synth := newTestSynthesizer(&fakeGenerator{script: []fakeReply{
		{Text: `{"topic": "Deploys", "message": "Canary first."}`},
	}})

	resp, err := synth.Synthesize(context.Background(), "deploy?", domain.KindConversational, []string{"Note: Runbook"}, sources)
	require.NoError(t, err)
	assert.Equal(t, sources, resp.Sources)
}

func TestSynthesizeFallbackOnBackendFailure(t *testing.T) {
	backendErr := errors.New("connection refused")
	synth := newTestSynthesizer(&fakeGenerator{script: []fakeReply{
		{Err: backendErr}, {Err: backendErr}, {Err: backendErr},
	}})
	sources := []domain.Source{{Type: "web", Title: "Result", URL: "https://example.com"}}

	resp, err := synth.Synthesize(context.Background(), "hi", domain.KindConversational, nil, sources)
	require.Error(t, err)
	require.NotNil(t, resp, "fallback response must be returned alongside the error")
	assert.Equal(t, domain.KindConversational, resp.Kind)
	assert.NotEmpty(t, resp.Message)
	assert.Zero(t, resp.Confidence)
	assert.Equal(t, sources, resp.Sources)

	var genErr *GenerationError
	assert.ErrorAs(t, err, &genErr)
}

func TestSynthesizeUnknownKindUsesConversationalSchema(t *testing.T) {
	synth := newTestSynthesizer(&fakeGenerator{script: []fakeReply{
		{Text: `{"topic": "X", "message": "fallback schema"}`},
	}})

	resp, err := synth.Synthesize(context.Background(), "hi", domain.ResponseKind("bogus"), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, domain.KindConversational, resp.Kind)
}
