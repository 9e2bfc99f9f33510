package usecase

import (
	"log"
	"strings"

	learningdomain "replyhub-backend/internal/learning/domain"
	"replyhub-backend/internal/learning/repository"
)

const (
	// significantRatio is the word-count delta ratio beyond which an edit
	// counts as a length preference.
	significantRatio = 0.2

	newRuleConfidence  = 0.55
	confidenceStep     = 0.05
	confidenceCap      = 0.95
	InjectionThreshold = 0.6
)

var fillerPhrases = []string{
	"hope this finds you well",
	"hope you are doing well",
	"i hope this email finds you well",
	"thank you for reaching out",
}

var nextStepPhrases = []string{
	"let us know",
	"let me know",
	"next step",
	"feel free to reply",
	"get back to us",
}

// LearningUsecase turns operator edits of AI drafts into per-mailbox style
// rules that feed back into future draft prompts.
type LearningUsecase interface {
	// RecordEdit compares the AI draft with what the operator actually sent
	// and folds the differences into the mailbox's style rules.
	RecordEdit(workspaceID, mailAccountID, draftText, finalText string) error
	// PromptRules returns the rule texts confident enough to inject into
	// draft prompts.
	PromptRules(mailAccountID string) ([]string, error)
	Profile(workspaceID, mailAccountID string) (*learningdomain.LearningProfile, error)
	SetEnabled(workspaceID, mailAccountID string, enabled bool) error
}

type learningUsecase struct {
	profiles repository.LearningProfileRepository
}

func NewLearningUsecase(profiles repository.LearningProfileRepository) LearningUsecase {
	return &learningUsecase{profiles: profiles}
}

func (u *learningUsecase) RecordEdit(workspaceID, mailAccountID, draftText, finalText string) error {
	draftText = strings.TrimSpace(draftText)
	finalText = strings.TrimSpace(finalText)
	if draftText == "" || finalText == "" || draftText == finalText {
		return nil
	}

	profile, err := u.profiles.FindOrCreate(workspaceID, mailAccountID)
	if err != nil {
		return err
	}
	if !profile.Enabled {
		return nil
	}

	observations := observeEdit(draftText, finalText)
	if len(observations) == 0 {
		return nil
	}

	for _, text := range observations {
		profile.Rules = mergeRule(profile.Rules, text)
	}

	log.Printf("[Learning] Recorded %d observation(s) for account %s", len(observations), mailAccountID)
	return u.profiles.Save(profile)
}

func (u *learningUsecase) PromptRules(mailAccountID string) ([]string, error) {
	profile, err := u.profiles.FindByAccount(mailAccountID)
	if err != nil {
		return nil, err
	}
	if profile == nil || !profile.Enabled {
		return nil, nil
	}

	var rules []string
	for _, rule := range profile.Rules {
		if rule.Confidence >= InjectionThreshold {
			rules = append(rules, rule.Text)
		}
	}
	return rules, nil
}

func (u *learningUsecase) Profile(workspaceID, mailAccountID string) (*learningdomain.LearningProfile, error) {
	return u.profiles.FindOrCreate(workspaceID, mailAccountID)
}

func (u *learningUsecase) SetEnabled(workspaceID, mailAccountID string, enabled bool) error {
	profile, err := u.profiles.FindOrCreate(workspaceID, mailAccountID)
	if err != nil {
		return err
	}
	profile.Enabled = enabled
	return u.profiles.Save(profile)
}

// observeEdit derives style observations from one draft-vs-sent pair.
func observeEdit(draftText, finalText string) []string {
	var observations []string

	draftWords := len(strings.Fields(draftText))
	finalWords := len(strings.Fields(finalText))
	base := draftWords
	if base < 1 {
		base = 1
	}
	ratio := float64(finalWords-draftWords) / float64(base)

	if ratio < -significantRatio {
		observations = append(observations, "Keep replies shorter and more direct.")
	} else if ratio > significantRatio {
		observations = append(observations, "Include more detail and context in replies.")
	}

	if containsAny(draftText, fillerPhrases) && !containsAny(finalText, fillerPhrases) {
		observations = append(observations, `Avoid filler greetings like "Hope this finds you well".`)
	}

	if containsAny(finalText, nextStepPhrases) && !containsAny(draftText, nextStepPhrases) {
		observations = append(observations, "End replies with a clear next step for the customer.")
	}

	return observations
}

func containsAny(text string, phrases []string) bool {
	lower := strings.ToLower(text)
	for _, phrase := range phrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}

// mergeRule bumps the confidence of an existing rule (matched
// case-insensitively) or appends a new one at the starting confidence.
func mergeRule(rules []learningdomain.StyleRule, text string) []learningdomain.StyleRule {
	for i := range rules {
		if strings.EqualFold(rules[i].Text, text) {
			rules[i].Confidence += confidenceStep
			if rules[i].Confidence > confidenceCap {
				rules[i].Confidence = confidenceCap
			}
			return rules
		}
	}
	return append(rules, learningdomain.StyleRule{Text: text, Confidence: newRuleConfidence})
}
