package cli

import (
	"testing"

	"weapon-quiz-service/internal/catalog"
	"weapon-quiz-service/internal/config"
)

func TestNormalizeOptionsRejectsUnknownGrade(t *testing.T) {
	var cfg config.Config
	cfg.Catalog.MinGrade = "F"

	if _, err := normalizeOptions(cfg); err == nil {
		t.Fatalf("expected unknown grade to be rejected")
	}
}

func TestNormalizeOptionsParsesSettings(t *testing.T) {
	var cfg config.Config
	cfg.Catalog.Mode = "attack"
	cfg.Catalog.MinGrade = " c "

	opts, err := normalizeOptions(cfg)
	if err != nil {
		t.Fatalf("normalize options: %v", err)
	}
	if opts.Mode != catalog.ModeAttack || opts.MinGrade != "C" {
		t.Fatalf("unexpected options %+v", opts)
	}
}

func TestNewRecordSourceMirrorNeedsPostgres(t *testing.T) {
	var cfg config.Config
	cfg.Catalog.Source = "mirror"

	if _, err := newRecordSource(cfg, nil, nil); err == nil {
		t.Fatalf("expected mirror without postgres to fail")
	}
}
