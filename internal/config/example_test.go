package config

import (
	"strings"
	"testing"

	"github.com/thywilljoshua/study-companion/internal/study"
)

func TestExampleConfigLoads(t *testing.T) {
	cfg, err := Load("../../config.example.yml", env(nil))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !strings.Contains(cfg.Prompts.Summary, "RÉSUMÉ PÉDAGOGIQUE") {
		t.Errorf("summary template = %q", cfg.Prompts.Summary)
	}
	prompts, err := cfg.StudyPrompts()
	if err != nil {
		t.Fatalf("StudyPrompts: %v", err)
	}
	levels := map[study.Level]string{
		study.Beginner:     "pour étudiant Débutant.",
		study.Intermediate: "pour étudiant Intermédiaire.",
		study.Advanced:     "pour étudiant Avancé.",
	}
	for l, want := range levels {
		got, err := prompts.Summary(l, "Mécanique", "contenu")
		if err != nil {
			t.Fatalf("Summary(%s): %v", l, err)
		}
		if !strings.Contains(got, want) {
			t.Errorf("Summary(%s) missing %q:\n%s", l, want, got)
		}
	}
	if cfg.Session.Store != StoreMemory || cfg.LLM.Timeout.Seconds() != 120 {
		t.Errorf("cfg = %+v", cfg)
	}
}
