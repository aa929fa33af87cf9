package service

import (
	"errors"
	"math"
	"testing"
	"time"

	"digitcam/internal/model"
)

type recordingSaver struct {
	saved []model.Configuration
	err   error
}

func (s *recordingSaver) Save(cfg model.Configuration) error {
	if s.err != nil {
		return s.err
	}
	s.saved = append(s.saved, cfg)
	return nil
}

func TestRegionSet_NilInitialIsEmpty(t *testing.T) {
	rs := NewRegionSet(nil, nil, 0, 0, testLogger())
	if cur := rs.Current(); cur == nil || len(cur) != 0 {
		t.Errorf("expected empty non-nil configuration, got %#v", cur)
	}
}

func TestRegionSet_InvalidInitialBecomesEmpty(t *testing.T) {
	tests := []struct {
		name    string
		initial model.Configuration
	}{
		{"zero size", model.Configuration{{X: 1, Y: 1, Width: 10, Height: 10}, {Width: 0, Height: 5}}},
		{"outside frame", model.Configuration{{X: 95, Y: 0, Width: 10, Height: 10}}},
		{"coordinate overflow", model.Configuration{{X: math.MaxInt64, Width: 2, Height: 2}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rs := NewRegionSet(tt.initial, nil, 100, 100, testLogger())
			if cur := rs.Current(); cur == nil || len(cur) != 0 {
				t.Errorf("expected empty configuration, got %+v", cur)
			}
		})
	}

	valid := model.Configuration{{X: 90, Y: 90, Width: 10, Height: 10}}
	if cur := NewRegionSet(valid, nil, 100, 100, testLogger()).Current(); len(cur) != 1 {
		t.Errorf("valid initial configuration dropped: %+v", cur)
	}
}

func TestRegionSet_Update(t *testing.T) {
	tests := []struct {
		name    string
		cfg     model.Configuration
		saveErr error
		wantErr bool
	}{
		{name: "valid", cfg: model.Configuration{{X: 10, Y: 10, Width: 20, Height: 30}}},
		{name: "empty list", cfg: model.Configuration{}},
		{name: "zero width", cfg: model.Configuration{{Width: 0, Height: 10}}, wantErr: true},
		{name: "outside frame", cfg: model.Configuration{{X: 90, Y: 0, Width: 20, Height: 10}}, wantErr: true},
		{name: "save fails", cfg: model.Configuration{{Width: 5, Height: 5}}, saveErr: errors.New("disk full"), wantErr: true},
	}

	initial := model.Configuration{{X: 1, Y: 2, Width: 3, Height: 4}}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			saver := &recordingSaver{err: tt.saveErr}
			rs := NewRegionSet(initial, saver, 100, 100, testLogger())

			err := rs.Update(tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Update() error = %v, wantErr %v", err, tt.wantErr)
			}

			cur := rs.Current()
			if tt.wantErr {
				if len(cur) != 1 || cur[0] != initial[0] {
					t.Errorf("failed update changed the snapshot: %+v", cur)
				}
				return
			}
			if len(cur) != len(tt.cfg) {
				t.Errorf("expected %d regions, got %d", len(tt.cfg), len(cur))
			}
			if len(saver.saved) != 1 {
				t.Errorf("expected one save, got %d", len(saver.saved))
			}
		})
	}
}

func TestRegionSet_SnapshotIsIsolated(t *testing.T) {
	cfg := model.Configuration{{Width: 10, Height: 10}}
	rs := NewRegionSet(cfg, nil, 0, 0, testLogger())

	held := rs.Current()
	cfg[0].Width = 99
	if err := rs.Update(model.Configuration{{Width: 1, Height: 1}, {Width: 2, Height: 2}}); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	if len(held) != 1 || held[0].Width != 10 {
		t.Errorf("held snapshot changed: %+v", held)
	}
	if len(rs.Current()) != 2 {
		t.Errorf("expected new snapshot with 2 regions, got %d", len(rs.Current()))
	}
}

func TestFormatTimestamp(t *testing.T) {
	loc := time.FixedZone("CET", 3600)
	ts := time.Date(2024, 1, 2, 4, 5, 6, 0, loc)
	if got := FormatTimestamp(ts); got != "2024-01-02T03:05:06Z" {
		t.Errorf("FormatTimestamp() = %q", got)
	}
}
