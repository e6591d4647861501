package thermo

import "testing"

func TestBuildPhaseSegmentsH2OAcrossFullRange(t *testing.T) {
	cfg := DefaultCoreConfig()
	rows := h2oRows()
	segments, warnings := BuildPhaseSegments(rows, 250, 400, cfg)
	if len(segments) != 3 {
		t.Fatalf("expected 3 segments (solid/liquid/gas), got %d; warnings=%v", len(segments), warnings)
	}
	if segments[0].TStart != 250 || segments[len(segments)-1].TEnd != 400 {
		t.Fatalf("expected segments to span [250,400], got [%v,%v]", segments[0].TStart, segments[len(segments)-1].TEnd)
	}
	for i := 0; i+1 < len(segments); i++ {
		if segments[i].TEnd != segments[i+1].TStart {
			t.Errorf("segment %d end %v does not meet segment %d start %v", i, segments[i].TEnd, i+1, segments[i+1].TStart)
		}
	}
}

func TestBuildPhaseSegmentsEmptyInput(t *testing.T) {
	cfg := DefaultCoreConfig()
	segments, warnings := BuildPhaseSegments(nil, 250, 400, cfg)
	if segments != nil {
		t.Fatalf("expected nil segments for empty input, got %v", segments)
	}
	if len(warnings) == 0 {
		t.Fatal("expected a warning for empty input")
	}
}

func TestBuildPhaseSegmentsSingleRowWholeRange(t *testing.T) {
	cfg := DefaultCoreConfig()
	rows := cecl3Rows()
	segments, _ := BuildPhaseSegments(rows, 298, 1100, cfg)
	if len(segments) != 1 {
		t.Fatalf("expected a single segment with no declared transitions, got %d", len(segments))
	}
	if segments[0].TStart != 298 || segments[0].TEnd != 1100 {
		t.Fatalf("expected the whole range [298,1100], got [%v,%v]", segments[0].TStart, segments[0].TEnd)
	}
}

func TestDetectTransitionsMeltAndBoil(t *testing.T) {
	cfg := DefaultCoreConfig()
	rows := h2oRows()
	segments, _ := BuildPhaseSegments(rows, 250, 400, cfg)
	transitions := DetectTransitions(segments, 273.15, true, 373.15, true, cfg)
	if len(transitions) != 2 {
		t.Fatalf("expected melting and boiling transitions, got %d: %+v", len(transitions), transitions)
	}
	if transitions[0].Kind != TransitionMelting {
		t.Errorf("expected first transition to be melting, got %q", transitions[0].Kind)
	}
	if transitions[1].Kind != TransitionBoiling {
		t.Errorf("expected second transition to be boiling, got %q", transitions[1].Kind)
	}
	if transitions[0].DeltaHTr != DefaultMeltEnthalpy {
		t.Errorf("expected the default melt enthalpy prior, got %v", transitions[0].DeltaHTr)
	}
}
