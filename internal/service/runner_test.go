package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"user-insight/internal/domain"
	"user-insight/internal/llm"
)

func newRunner(wh *fakeWarehouse, an *fakeAnalytics, client llm.Client, version int64, workers int) *Runner {
	predictor := newPredictor(wh, &fakeVector{}, an, client, nil, 10)
	sink := NewSink(wh, an, 0.6, false, zap.NewNop())
	return NewRunner(wh, predictor, sink, version, workers, zap.NewNop())
}

func TestRunIsolatesPerUserFailures(t *testing.T) {
	wh := newFakeWarehouse()
	// Usuario 1: ok. Usuario 2: sin perfil. Usuario 3: pocos prompts. Usuario 4: ok.
	wh.profiles[1] = domain.UserProfile{ID: 1}
	wh.prompts[1] = manyPrompts(11)
	wh.profiles[3] = domain.UserProfile{ID: 3}
	wh.prompts[3] = manyPrompts(3)
	wh.profiles[4] = domain.UserProfile{ID: 4}
	wh.prompts[4] = manyPrompts(11)

	an := &fakeAnalytics{}
	client := &llm.MockClient{Response: fullReply}
	runner := newRunner(wh, an, client, 500, 1)

	if err := runner.Run(context.Background(), []int64{1, 2, 3, 4}); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if len(wh.upserts) != 2 {
		t.Fatalf("expected rows for users 1 and 4 only, got %d", len(wh.upserts))
	}
	if _, ok := wh.upserts["1:500"]; !ok {
		t.Fatalf("missing row for user 1")
	}
	if _, ok := wh.upserts["4:500"]; !ok {
		t.Fatalf("missing row for user 4")
	}
}

func TestRunMalformedReplySkipsPersistence(t *testing.T) {
	wh := newFakeWarehouse()
	wh.profiles[1] = domain.UserProfile{ID: 1}
	wh.prompts[1] = manyPrompts(11)
	an := &fakeAnalytics{}
	client := &llm.MockClient{Response: "not json at all"}
	runner := newRunner(wh, an, client, 500, 1)

	if err := runner.Run(context.Background(), []int64{1}); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if wh.upsertCalls != 0 || an.setCalls != 0 {
		t.Fatalf("malformed reply must not reach persistence")
	}
}

func TestRunLoadsWorklistWhenNoExplicitIDs(t *testing.T) {
	wh := newFakeWarehouse()
	wh.eligible = []int64{5}
	wh.profiles[5] = domain.UserProfile{ID: 5}
	wh.prompts[5] = manyPrompts(11)
	runner := newRunner(wh, &fakeAnalytics{}, &llm.MockClient{Response: fullReply}, 500, 1)

	if err := runner.Run(context.Background(), nil); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if _, ok := wh.upserts["5:500"]; !ok {
		t.Fatalf("expected eligible user 5 to be processed")
	}
}

func TestRunFailsWhenWorklistUnavailable(t *testing.T) {
	wh := newFakeWarehouse()
	wh.eligibleErr = errors.New("warehouse offline")
	runner := newRunner(wh, &fakeAnalytics{}, &llm.MockClient{Response: fullReply}, 500, 1)

	if err := runner.Run(context.Background(), nil); err == nil {
		t.Fatalf("expected error when worklist cannot be loaded")
	}
}

func TestRunParallelWorkersPreserveIsolation(t *testing.T) {
	wh := newFakeWarehouse()
	ids := make([]int64, 0, 8)
	for i := int64(1); i <= 8; i++ {
		ids = append(ids, i)
		if i%2 == 0 {
			// Los pares no tienen perfil y deben saltarse.
			continue
		}
		wh.profiles[i] = domain.UserProfile{ID: i}
		wh.prompts[i] = manyPrompts(11)
	}
	client := &llm.MockClient{Response: fullReply}
	runner := newRunner(wh, &fakeAnalytics{}, client, 500, 4)

	if err := runner.Run(context.Background(), ids); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(wh.upserts) != 4 {
		t.Fatalf("expected 4 persisted rows, got %d", len(wh.upserts))
	}
	// Los cuatro workers escriben sobre el mismo mock; ninguna llamada se pierde.
	if len(client.CompleteCalls) != 4 {
		t.Fatalf("expected 4 recorded llm calls, got %d", len(client.CompleteCalls))
	}
}
