package usecase

import (
	"math"
	"strings"
	"testing"

	learningdomain "replyhub-backend/internal/learning/domain"
)

type fakeProfileRepo struct {
	profiles map[string]*learningdomain.LearningProfile
	saves    int
}

func newFakeProfileRepo() *fakeProfileRepo {
	return &fakeProfileRepo{profiles: make(map[string]*learningdomain.LearningProfile)}
}

func (r *fakeProfileRepo) FindByAccount(mailAccountID string) (*learningdomain.LearningProfile, error) {
	return r.profiles[mailAccountID], nil
}

func (r *fakeProfileRepo) FindOrCreate(workspaceID, mailAccountID string) (*learningdomain.LearningProfile, error) {
	if p, ok := r.profiles[mailAccountID]; ok {
		return p, nil
	}
	p := &learningdomain.LearningProfile{
		ID:            "profile-" + mailAccountID,
		WorkspaceID:   workspaceID,
		MailAccountID: mailAccountID,
		Enabled:       true,
		Rules:         []learningdomain.StyleRule{},
	}
	r.profiles[mailAccountID] = p
	return p, nil
}

func (r *fakeProfileRepo) Save(profile *learningdomain.LearningProfile) error {
	r.saves++
	r.profiles[profile.MailAccountID] = profile
	return nil
}

func ruleConfidence(t *testing.T, profile *learningdomain.LearningProfile, substr string) float64 {
	t.Helper()
	for _, rule := range profile.Rules {
		if strings.Contains(strings.ToLower(rule.Text), strings.ToLower(substr)) {
			return rule.Confidence
		}
	}
	t.Fatalf("no rule containing %q in %+v", substr, profile.Rules)
	return 0
}

func TestRecordEditShorterReply(t *testing.T) {
	repo := newFakeProfileRepo()
	u := NewLearningUsecase(repo)

	draft := strings.Repeat("word ", 100)
	final := strings.Repeat("word ", 60)

	if err := u.RecordEdit("ws", "acc", draft, final); err != nil {
		t.Fatalf("RecordEdit: %v", err)
	}

	profile := repo.profiles["acc"]
	if got := ruleConfidence(t, profile, "shorter"); got != 0.55 {
		t.Errorf("new rule confidence = %v, want 0.55", got)
	}
}

func TestRecordEditLongerReply(t *testing.T) {
	repo := newFakeProfileRepo()
	u := NewLearningUsecase(repo)

	draft := strings.Repeat("word ", 50)
	final := strings.Repeat("word ", 80)

	if err := u.RecordEdit("ws", "acc", draft, final); err != nil {
		t.Fatalf("RecordEdit: %v", err)
	}
	ruleConfidence(t, repo.profiles["acc"], "more detail")
}

func TestRecordEditFillerRemoved(t *testing.T) {
	repo := newFakeProfileRepo()
	u := NewLearningUsecase(repo)

	draft := "Hope this finds you well! Your refund has been processed and should arrive within five business days on the original payment method."
	final := "Your refund has been processed and should arrive within five business days on the original payment method, let us know if anything else comes up."

	if err := u.RecordEdit("ws", "acc", draft, final); err != nil {
		t.Fatalf("RecordEdit: %v", err)
	}

	profile := repo.profiles["acc"]
	ruleConfidence(t, profile, "filler greetings")
	ruleConfidence(t, profile, "clear next step")
}

func TestRecordEditRepeatedMergesConfidence(t *testing.T) {
	repo := newFakeProfileRepo()
	u := NewLearningUsecase(repo)

	draft := strings.Repeat("word ", 100)
	final := strings.Repeat("word ", 60)

	for i := 0; i < 5; i++ {
		if err := u.RecordEdit("ws", "acc", draft, final); err != nil {
			t.Fatalf("RecordEdit #%d: %v", i, err)
		}
	}

	profile := repo.profiles["acc"]
	if len(profile.Rules) != 1 {
		t.Fatalf("repeated observation must merge into one rule, got %d", len(profile.Rules))
	}
	// 0.55 + 4 * 0.05
	if got := profile.Rules[0].Confidence; math.Abs(got-0.75) > 1e-9 {
		t.Errorf("confidence after 5 merges = %v, want 0.75", got)
	}
}

func TestRecordEditConfidenceCap(t *testing.T) {
	repo := newFakeProfileRepo()
	u := NewLearningUsecase(repo)

	draft := strings.Repeat("word ", 100)
	final := strings.Repeat("word ", 60)

	for i := 0; i < 20; i++ {
		if err := u.RecordEdit("ws", "acc", draft, final); err != nil {
			t.Fatalf("RecordEdit #%d: %v", i, err)
		}
	}

	if got := repo.profiles["acc"].Rules[0].Confidence; got > 0.95+1e-9 {
		t.Errorf("confidence exceeded cap: %v", got)
	}
}

func TestRecordEditNoops(t *testing.T) {
	repo := newFakeProfileRepo()
	u := NewLearningUsecase(repo)

	// Identical text, empty draft, empty final: nothing to learn.
	cases := [][2]string{
		{"same text", "same text"},
		{"", "anything"},
		{"anything", ""},
	}
	for _, c := range cases {
		if err := u.RecordEdit("ws", "acc", c[0], c[1]); err != nil {
			t.Fatalf("RecordEdit(%q, %q): %v", c[0], c[1], err)
		}
	}
	if repo.saves != 0 {
		t.Errorf("no-op edits must not save, got %d saves", repo.saves)
	}
}

func TestRecordEditDisabledProfile(t *testing.T) {
	repo := newFakeProfileRepo()
	profile, _ := repo.FindOrCreate("ws", "acc")
	profile.Enabled = false

	u := NewLearningUsecase(repo)
	draft := strings.Repeat("word ", 100)
	final := strings.Repeat("word ", 10)

	if err := u.RecordEdit("ws", "acc", draft, final); err != nil {
		t.Fatalf("RecordEdit: %v", err)
	}
	if len(repo.profiles["acc"].Rules) != 0 {
		t.Error("disabled profile must not accumulate rules")
	}
}

func TestPromptRulesThreshold(t *testing.T) {
	repo := newFakeProfileRepo()
	profile, _ := repo.FindOrCreate("ws", "acc")
	profile.Rules = []learningdomain.StyleRule{
		{Text: "Keep replies shorter and more direct.", Confidence: 0.75},
		{Text: "Include more detail and context in replies.", Confidence: 0.55},
	}

	u := NewLearningUsecase(repo)
	rules, err := u.PromptRules("acc")
	if err != nil {
		t.Fatalf("PromptRules: %v", err)
	}
	if len(rules) != 1 || !strings.Contains(rules[0], "shorter") {
		t.Errorf("only rules at or above the injection threshold belong in prompts, got %v", rules)
	}
}
