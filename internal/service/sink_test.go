package service

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"user-insight/internal/domain"
)

func strptr(s string) *string { return &s }

func samplePrediction(userID int64) *domain.Prediction {
	mk := func(v string) domain.CandidateSet {
		return domain.CandidateSet{Candidates: []domain.Candidate{{Value: strptr(v), Confidence: 0.9}}}
	}
	return &domain.Prediction{
		UserID:          userID,
		Occupation:      mk("Data Analysis"),
		Industry:        mk("Education"),
		School:          mk("MIT"),
		PrimaryLanguage: mk("zh-CN"),
		Major:           mk("Physics"),
		DegreeLevel:     mk("PhD"),
		Gender:          mk("Female"),
	}
}

func TestPersistIsIdempotent(t *testing.T) {
	wh := newFakeWarehouse()
	an := &fakeAnalytics{}
	sink := NewSink(wh, an, 0.6, false, zap.NewNop())

	pred := samplePrediction(7)
	first, err := sink.Persist(context.Background(), 1700000000, pred)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := sink.Persist(context.Background(), 1700000000, pred)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(wh.upserts) != 1 {
		t.Fatalf("expected exactly one row for (user, version), got %d", len(wh.upserts))
	}
	if first != second {
		t.Fatalf("repeated persist must produce identical rows: %+v vs %+v", first, second)
	}
	stored := wh.upserts["7:1700000000"]
	if stored.Occupation != "data analysis" || stored.Version != 1700000000 {
		t.Fatalf("unexpected stored row: %+v", stored)
	}
}

func TestPersistNewVersionCreatesNewRow(t *testing.T) {
	wh := newFakeWarehouse()
	sink := NewSink(wh, &fakeAnalytics{}, 0.6, false, zap.NewNop())

	pred := samplePrediction(7)
	if _, err := sink.Persist(context.Background(), 100, pred); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := sink.Persist(context.Background(), 200, pred); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(wh.upserts) != 2 {
		t.Fatalf("distinct versions must keep distinct rows, got %d", len(wh.upserts))
	}
}

func TestPersistSyncsRemappedProperties(t *testing.T) {
	wh := newFakeWarehouse()
	an := &fakeAnalytics{}
	sink := NewSink(wh, an, 0.6, false, zap.NewNop())

	if _, err := sink.Persist(context.Background(), 100, samplePrediction(7)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if an.setCalls != 1 {
		t.Fatalf("expected one analytics sync, got %d", an.setCalls)
	}
	if an.lastSet["predict_primary_language"] != "simplified chinese" {
		t.Fatalf("expected zh-cn remap, got %q", an.lastSet["predict_primary_language"])
	}
	if an.lastSet["predict_school"] != "mit" {
		t.Fatalf("expected lowercased passthrough, got %q", an.lastSet["predict_school"])
	}
	if _, ok := an.lastSet["predict_user_id"]; ok {
		t.Fatalf("user_id must not reach analytics")
	}
}

func TestPersistDryRunSkipsBothEffects(t *testing.T) {
	wh := newFakeWarehouse()
	an := &fakeAnalytics{}
	sink := NewSink(wh, an, 0.6, true, zap.NewNop())

	row, err := sink.Persist(context.Background(), 100, samplePrediction(7))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if wh.upsertCalls != 0 || an.setCalls != 0 {
		t.Fatalf("dry run must not touch warehouse or analytics")
	}
	if row.Occupation != "data analysis" {
		t.Fatalf("dry run still resolves the row, got %+v", row)
	}
}
