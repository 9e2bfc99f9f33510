package usecase

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"

	mailboxdomain "replyhub-backend/internal/mailbox/domain"
	mailboxrepository "replyhub-backend/internal/mailbox/repository"
	ticketdomain "replyhub-backend/internal/ticket/domain"
	"replyhub-backend/internal/ticket/repository"
	"replyhub-backend/pkg/ai"

	"github.com/google/uuid"
)

const snippetLength = 200

// CommitSentInput is the record of one successful provider delivery, ready
// to be written into thread state.
type CommitSentInput struct {
	Thread  *ticketdomain.Thread
	Account *mailboxdomain.MailAccount

	// DraftMessageID, when set, points at the local draft row the operator
	// sent from; that row is converted in place instead of inserting.
	DraftMessageID string

	ProviderMessageID string
	Provider          mailboxdomain.ProviderKind

	Identity mailboxdomain.SenderIdentity
	Subject  string
	BodyText string
	BodyHTML string
	To       []string
	Cc       []string
	Bcc      []string
}

// StyleRuleSource provides the prompt rules for a mailbox.
type StyleRuleSource interface {
	PromptRules(mailAccountID string) ([]string, error)
}

// TicketUsecase owns thread and message state: reads for the inbox UI,
// the post-send bookkeeping, and AI draft generation.
type TicketUsecase interface {
	ListThreads(workspaceID, status string, limit, offset int) ([]*ticketdomain.Thread, int64, error)
	GetThread(workspaceID, threadID string) (*ticketdomain.Thread, []*ticketdomain.Message, error)

	// CommitSent records a delivered reply: the message row, cleared AI
	// drafts, thread bookkeeping, and pending draft jobs, in that order.
	CommitSent(in *CommitSentInput) (*ticketdomain.Message, error)

	// GenerateDraft produces an AI reply draft for the thread's latest
	// inbound message and stores it on that message.
	GenerateDraft(ctx context.Context, workspaceID, threadID string) (string, error)
}

type ticketUsecase struct {
	threads   repository.ThreadRepository
	messages  repository.MessageRepository
	draftJobs repository.DraftJobRepository
	accounts  mailboxrepository.MailAccountRepository
	drafts    ai.DraftService
	rules     StyleRuleSource
}

func NewTicketUsecase(threads repository.ThreadRepository, messages repository.MessageRepository,
	draftJobs repository.DraftJobRepository, accounts mailboxrepository.MailAccountRepository,
	drafts ai.DraftService, rules StyleRuleSource) TicketUsecase {
	return &ticketUsecase{
		threads:   threads,
		messages:  messages,
		draftJobs: draftJobs,
		accounts:  accounts,
		drafts:    drafts,
		rules:     rules,
	}
}

func (u *ticketUsecase) ListThreads(workspaceID, status string, limit, offset int) ([]*ticketdomain.Thread, int64, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return u.threads.ListByWorkspace(workspaceID, status, limit, offset)
}

func (u *ticketUsecase) GetThread(workspaceID, threadID string) (*ticketdomain.Thread, []*ticketdomain.Message, error) {
	thread, err := u.threads.FindByID(workspaceID, threadID)
	if err != nil {
		return nil, nil, err
	}
	if thread == nil {
		return nil, nil, fmt.Errorf("thread not found")
	}

	messages, err := u.messages.ListByThread(threadID)
	if err != nil {
		return nil, nil, err
	}
	return thread, messages, nil
}

func (u *ticketUsecase) CommitSent(in *CommitSentInput) (*ticketdomain.Message, error) {
	now := time.Now()

	var message *ticketdomain.Message
	if in.DraftMessageID != "" {
		existing, err := u.messages.FindByID(in.Thread.WorkspaceID, in.DraftMessageID)
		if err != nil {
			return nil, err
		}
		message = existing
	}

	if message != nil {
		// The operator sent from a local draft: convert that row rather
		// than leaving a stale draft next to a new outbound copy.
		message.IsDraft = false
		message.FromMe = true
		message.ProviderMessageID = in.ProviderMessageID
		message.Subject = in.Subject
		message.Snippet = makeSnippet(in.BodyHTML, in.BodyText)
		message.BodyText = in.BodyText
		message.BodyHTML = in.BodyHTML
		message.FromEmail = in.Identity.Email
		message.FromName = in.Identity.Name
		message.To = in.To
		message.Cc = in.Cc
		message.Bcc = in.Bcc
		message.SentAt = &now
		if err := u.messages.Update(message); err != nil {
			return nil, err
		}
	} else {
		message = &ticketdomain.Message{
			ID:                uuid.New().String(),
			ThreadID:          in.Thread.ID,
			WorkspaceID:       in.Thread.WorkspaceID,
			MailAccountID:     in.Account.ID,
			ProviderMessageID: in.ProviderMessageID,
			FromMe:            true,
			Subject:           in.Subject,
			Snippet:           makeSnippet(in.BodyHTML, in.BodyText),
			BodyText:          in.BodyText,
			BodyHTML:          in.BodyHTML,
			FromEmail:         in.Identity.Email,
			FromName:          in.Identity.Name,
			To:                in.To,
			Cc:                in.Cc,
			Bcc:               in.Bcc,
			SentAt:            &now,
			CreatedAt:         now,
		}
		if err := u.messages.Create(message); err != nil {
			return nil, err
		}
	}

	if err := u.messages.ClearAIDrafts(in.Thread.ID); err != nil {
		return nil, err
	}

	in.Thread.LastMessageAt = now
	in.Thread.Snippet = makeSnippet(in.BodyHTML, in.BodyText)
	in.Thread.Subject = in.Subject
	if in.Thread.Status == ticketdomain.ThreadStatusNew || in.Thread.Status == ticketdomain.ThreadStatusOpen {
		in.Thread.Status = ticketdomain.ThreadStatusWaiting
	}
	if err := u.threads.Update(in.Thread); err != nil {
		return nil, err
	}

	if err := u.draftJobs.DeletePending(in.Thread.ID, string(in.Provider)); err != nil {
		log.Printf("[WARN] Failed to clear pending draft jobs for thread %s: %v", in.Thread.ID, err)
	}

	return message, nil
}

func (u *ticketUsecase) GenerateDraft(ctx context.Context, workspaceID, threadID string) (string, error) {
	if u.drafts == nil {
		return "", fmt.Errorf("AI drafting is not configured")
	}

	thread, err := u.threads.FindByID(workspaceID, threadID)
	if err != nil {
		return "", err
	}
	if thread == nil {
		return "", fmt.Errorf("thread not found")
	}

	inbound, err := u.messages.LatestInbound(threadID)
	if err != nil {
		return "", err
	}
	if inbound == nil {
		return "", fmt.Errorf("thread has no inbound message to answer")
	}

	provider := ""
	if account, err := u.accounts.FindByID(workspaceID, thread.MailAccountID); err == nil && account != nil {
		provider = string(account.Provider)
	}

	job := &ticketdomain.DraftJob{
		ID:            uuid.New().String(),
		WorkspaceID:   workspaceID,
		ThreadID:      threadID,
		MailAccountID: thread.MailAccountID,
		Provider:      provider,
		Status:        ticketdomain.DraftJobPending,
		CreatedAt:     time.Now(),
	}
	if err := u.draftJobs.Create(job); err != nil {
		return "", err
	}

	styleRules, err := u.rules.PromptRules(thread.MailAccountID)
	if err != nil {
		log.Printf("[WARN] Unable to load style rules for account %s: %v", thread.MailAccountID, err)
	}

	inboundText := inbound.BodyText
	if inboundText == "" {
		inboundText = stripHTML(inbound.BodyHTML)
	}

	draft, err := u.drafts.DraftReply(ctx, ai.DraftContext{
		Subject:      thread.Subject,
		CustomerName: inbound.FromName,
		InboundText:  inboundText,
		StyleRules:   styleRules,
	})
	if err != nil {
		_ = u.draftJobs.SetStatus(job.ID, ticketdomain.DraftJobFailed)
		return "", err
	}

	inbound.AIDraftText = draft
	if err := u.messages.Update(inbound); err != nil {
		_ = u.draftJobs.SetStatus(job.ID, ticketdomain.DraftJobFailed)
		return "", err
	}

	if err := u.draftJobs.SetStatus(job.ID, ticketdomain.DraftJobDone); err != nil {
		log.Printf("[WARN] Unable to mark draft job %s done: %v", job.ID, err)
	}
	return draft, nil
}

var (
	tagPattern        = regexp.MustCompile(`<[^>]*>`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

func stripHTML(html string) string {
	return strings.TrimSpace(whitespacePattern.ReplaceAllString(tagPattern.ReplaceAllString(html, " "), " "))
}

// makeSnippet builds the short thread preview from the best available body.
func makeSnippet(bodyHTML, bodyText string) string {
	text := bodyText
	if text == "" {
		text = stripHTML(bodyHTML)
	}
	text = strings.TrimSpace(whitespacePattern.ReplaceAllString(text, " "))

	runes := []rune(text)
	if len(runes) <= snippetLength {
		return text
	}
	return string(runes[:snippetLength])
}
